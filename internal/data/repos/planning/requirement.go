package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type RequirementRepo interface {
	Create(dbc dbctx.Context, rows []*types.Requirement) ([]*types.Requirement, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Requirement, error)
	ListByStory(dbc dbctx.Context, storyID uuid.UUID) ([]*types.Requirement, error)
	ListByStoryIDsPriorityOrder(dbc dbctx.Context, storyIDs []uuid.UUID) ([]*types.Requirement, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Requirement, error)
	ListIDsByStoryIDs(dbc dbctx.Context, storyIDs []uuid.UUID) ([]uuid.UUID, error)
	CountByStoryIDs(dbc dbctx.Context, storyIDs []uuid.UUID, status types.RequirementStatus) (int64, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type requirementRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRequirementRepo(db *gorm.DB, baseLog *logger.Logger) RequirementRepo {
	return &requirementRepo{db: db, log: baseLog.With("repo", "RequirementRepo")}
}

func (r *requirementRepo) Create(dbc dbctx.Context, rows []*types.Requirement) ([]*types.Requirement, error) {
	if len(rows) == 0 {
		return []*types.Requirement{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *requirementRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Requirement, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Requirement
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *requirementRepo) ListByStory(dbc dbctx.Context, storyID uuid.UUID) ([]*types.Requirement, error) {
	var out []*types.Requirement
	if storyID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("user_story_id = ?", storyID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *requirementRepo) ListByStoryIDsPriorityOrder(dbc dbctx.Context, storyIDs []uuid.UUID) ([]*types.Requirement, error) {
	var out []*types.Requirement
	if len(storyIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Where("user_story_id IN ?", storyIDs).Order(priorityOrder("")).Find(&out).Error
	return out, err
}

func (r *requirementRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Requirement, error) {
	var out []*types.Requirement
	if ownerID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN user_story ON user_story.id = requirement.user_story_id").
		Joins("JOIN product ON product.id = user_story.product_id").
		Where("product.owner_id = ?", ownerID).
		Order("requirement.created_at ASC, requirement.id ASC").
		Find(&out).Error
	return out, err
}

func (r *requirementRepo) ListIDsByStoryIDs(dbc dbctx.Context, storyIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(storyIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Model(&types.Requirement{}).Where("user_story_id IN ?", storyIDs).Pluck("id", &out).Error
	return out, err
}

// CountByStoryIDs counts requirements under the stories; an empty status counts all.
func (r *requirementRepo) CountByStoryIDs(dbc dbctx.Context, storyIDs []uuid.UUID, status types.RequirementStatus) (int64, error) {
	var n int64
	if len(storyIDs) == 0 {
		return 0, nil
	}
	q := dbc.DB(r.db).Model(&types.Requirement{}).Where("user_story_id IN ?", storyIDs)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Count(&n).Error
	return n, err
}

func (r *requirementRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Requirement{}).Where("id = ?", id).Updates(updates).Error
}

func (r *requirementRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Requirement{}).Error
}
