package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type BacklogRepo interface {
	Create(dbc dbctx.Context, row *types.Backlog) (*types.Backlog, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Backlog, error)
	GetByProduct(dbc dbctx.Context, productID uuid.UUID) (*types.Backlog, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Backlog, error)
	ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type backlogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBacklogRepo(db *gorm.DB, baseLog *logger.Logger) BacklogRepo {
	return &backlogRepo{db: db, log: baseLog.With("repo", "BacklogRepo")}
}

func (r *backlogRepo) Create(dbc dbctx.Context, row *types.Backlog) (*types.Backlog, error) {
	if row == nil {
		return nil, nil
	}
	if err := dbc.DB(r.db).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *backlogRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Backlog, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Backlog
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *backlogRepo) GetByProduct(dbc dbctx.Context, productID uuid.UUID) (*types.Backlog, error) {
	if productID == uuid.Nil {
		return nil, nil
	}
	var row types.Backlog
	if err := dbc.DB(r.db).Where("product_id = ?", productID).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *backlogRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Backlog, error) {
	var out []*types.Backlog
	if ownerID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN product ON product.id = backlog.product_id").
		Where("product.owner_id = ?", ownerID).
		Order("backlog.updated_at DESC, backlog.id ASC").
		Find(&out).Error
	return out, err
}

func (r *backlogRepo) ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(productIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Model(&types.Backlog{}).Where("product_id IN ?", productIDs).Pluck("id", &out).Error
	return out, err
}

func (r *backlogRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Backlog{}).Where("id = ?", id).Updates(updates).Error
}

func (r *backlogRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Backlog{}).Error
}
