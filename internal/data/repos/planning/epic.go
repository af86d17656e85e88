package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type EpicRepo interface {
	Create(dbc dbctx.Context, rows []*types.Epic) ([]*types.Epic, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Epic, error)
	ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Epic, error)
	ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Epic, error)
	ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
}

type epicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEpicRepo(db *gorm.DB, baseLog *logger.Logger) EpicRepo {
	return &epicRepo{db: db, log: baseLog.With("repo", "EpicRepo")}
}

func (r *epicRepo) Create(dbc dbctx.Context, rows []*types.Epic) ([]*types.Epic, error) {
	if len(rows) == 0 {
		return []*types.Epic{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *epicRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Epic, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Epic
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *epicRepo) ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Epic, error) {
	var out []*types.Epic
	if productID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("product_id = ?", productID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *epicRepo) ListByOwner(dbc dbctx.Context, ownerID uuid.UUID) ([]*types.Epic, error) {
	var out []*types.Epic
	if ownerID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).
		Joins("JOIN product ON product.id = epic.product_id").
		Where("product.owner_id = ?", ownerID).
		Order("epic.created_at ASC, epic.id ASC").
		Find(&out).Error
	return out, err
}

func (r *epicRepo) ListIDsByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) ([]uuid.UUID, error) {
	var out []uuid.UUID
	if len(productIDs) == 0 {
		return out, nil
	}
	err := dbc.DB(r.db).Model(&types.Epic{}).Where("product_id IN ?", productIDs).Pluck("id", &out).Error
	return out, err
}

func (r *epicRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return dbc.DB(r.db).Model(&types.Epic{}).Where("id = ?", id).Updates(updates).Error
}

func (r *epicRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Epic{}).Error
}
