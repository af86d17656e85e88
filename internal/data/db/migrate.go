package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.AllModels()...); err != nil {
		return err
	}
	return ensureIndexes(db)
}

// ensureIndexes adds composite indexes gorm tags cannot express portably.
func ensureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_user_story_product_order ON user_story (product_id, priority, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_requirement_story_order ON requirement (user_story_id, priority, created_at)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("index: %w", err)
		}
	}
	return nil
}
