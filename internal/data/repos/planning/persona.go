package planning

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type PersonaRepo interface {
	Create(dbc dbctx.Context, rows []*types.Persona) ([]*types.Persona, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Persona, error)
	ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Persona, error)
	FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error
	FullDeleteByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) error
}

type personaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPersonaRepo(db *gorm.DB, baseLog *logger.Logger) PersonaRepo {
	return &personaRepo{db: db, log: baseLog.With("repo", "PersonaRepo")}
}

func (r *personaRepo) Create(dbc dbctx.Context, rows []*types.Persona) ([]*types.Persona, error) {
	if len(rows) == 0 {
		return []*types.Persona{}, nil
	}
	if err := dbc.DB(r.db).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *personaRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Persona, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Persona
	if err := dbc.DB(r.db).Where("id = ?", id).Limit(1).Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *personaRepo) ListByProduct(dbc dbctx.Context, productID uuid.UUID) ([]*types.Persona, error) {
	var out []*types.Persona
	if productID == uuid.Nil {
		return out, nil
	}
	err := dbc.DB(r.db).Where("product_id = ?", productID).Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

func (r *personaRepo) FullDeleteByIDs(dbc dbctx.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("id IN ?", ids).Delete(&types.Persona{}).Error
}

func (r *personaRepo) FullDeleteByProductIDs(dbc dbctx.Context, productIDs []uuid.UUID) error {
	if len(productIDs) == 0 {
		return nil
	}
	return dbc.DB(r.db).Where("product_id IN ?", productIDs).Delete(&types.Persona{}).Error
}
