package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type UserStoryRepo interface {
	Create(dbc dbctx.Context, rows []*types.UserStory) ([]*types.UserStory, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserStory, error)
	ListByEpic(dbc dbctx.Context, epicID uuid.UUID) ([]*types.UserStory, error)
	ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.UserStory, error)
	ListByProductPriorityOrder(dbc dbctx.Context, productID uuid.UUID) ([]*types.UserStory, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.UserStory, error)
	ListIDsByEpicIDs(dbc dbctx.Context, epicIDs []uuid.UUID) ([]uuid.UUID, error)
	ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)
	CountByEpic(dbc dbctx.Context, epicID uuid.UUID) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type userStoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserStoryRepo(db *gorm.DB, baseLog *logger.Logger) UserStoryRepo {
	return &userStoryRepo{db: db, log: baseLog.With("repo", "UserStoryRepo")}
}

func (r *userStoryRepo) Create(dbc dbctx.Context, rows []*types.UserStory) ([]*types.UserStory, error) {
	if len(rows) == 0 {
		return []*types.UserStory{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *userStoryRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.UserStory, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.UserStory
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *userStoryRepo) ListByEpic(dbc dbctx.Context, epicID uuid.UUID) ([]*types.UserStory, error) {
	var out []*types.UserStory
	if epicID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("epic_id = ?", epicID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *userStoryRepo) ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.UserStory, error) {
	var out []*types.UserStory
	if productID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("product_id = ?", productID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

// ListByProductPriorityOrder returns every story of the product, drafts included, in backlog order.
func (r *userStoryRepo) ListByProductPriorityOrder(dbc dbctx.Context, productID uuid.UUID) ([]*types.UserStory, error) {
	var out []*types.UserStory
	if productID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("product_id = ?", productID).Order(priorityOrder("")).Find(&out).Error
	return out, err
}

func (r *userStoryRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.UserStory, error) {
	var out []*types.UserStory
	if ownerID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN product ON product.id = user_story.product_id").
		Where("product.owner_id = ?", ownerID).
		Order("user_story.created_at ASC, user_story.id ASC").
		Find(&out).Error
	return out, err
}

func (r *userStoryRepo) ListIDsByEpicIDs(dbc dbctx.Context, epicIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(epicIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Model(&types.UserStory{}).Where("epic_id IN ?", epicIDs).Pluck("id", &out).Error
	return out, err
}

func (r *userStoryRepo) ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(productIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Model(&types.UserStory{}).Where("product_id IN ?", productIDs).Pluck("id", &out).Error
	return out, err
}

func (r *userStoryRepo) CountByEpic(dbc dbctx.Context, epicID uuid.UUID) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&types.UserStory{}).Where("epic_id = ?", epicID).Count(&n).Error
	return n, err
}

func (r *userStoryRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.UserStory{}).Where("id = ?", id).Updates(updates).Error
}

func (r *userStoryRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.UserStory{}).Error
}
