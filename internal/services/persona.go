package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type PersonaInput struct {
	Name         string `json:"name"`
	Description  string `json:"description"`
	Demographics string `json:"demographics"`
	Goals        string `json:"goals"`
	PainPoints   string `json:"pain_points"`
}

type PersonaService interface {
	Create(ctx context.Context, ownerID, productID uuid.UUID, in PersonaInput) (*types.Persona, error)
	ListByProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]*types.Persona, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type personaService struct {
	db     *gorm.DB
	log    *logger.Logger
	r      repos.Repos
	access access
}

func NewPersonaService(db *gorm.DB, log *logger.Logger, r repos.Repos) PersonaService {
	return &personaService{
		db:     db,
		log:    log.With("service", "PersonaService"),
		r:      r,
		access: access{r: r},
	}
}

func (s *personaService) Create(ctx context.Context, ownerID, productID uuid.UUID, in PersonaInput) (*types.Persona, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	dbc := dbctx.Of(ctx)
	p, err := s.access.product(dbc, productID, &ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product")
	}
	rows, err := s.r.Persona.Create(dbc, []*types.Persona{{
		ProductID:    productID,
		Name:         in.Name,
		Description:  in.Description,
		Demographics: in.Demographics,
		Goals:        in.Goals,
		PainPoints:   in.PainPoints,
	}})
	if err != nil {
		return nil, fmt.Errorf("create persona: %w", err)
	}
	return rows[0], nil
}

func (s *personaService) ListByProduct(ctx context.Context, ownerID, productID uuid.UUID) ([]*types.Persona, error) {
	dbc := dbctx.Of(ctx)
	p, err := s.access.product(dbc, productID, &ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product")
	}
	return s.r.Persona.ListByProduct(dbc, productID)
}

func (s *personaService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		row, err := s.r.Persona.GetByID(dbc, id)
		if err != nil {
			return err
		}
		if row == nil {
			return apierr.NotFound("persona")
		}
		p, err := s.access.product(dbc, row.ProductID, &ownerID)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("persona")
		}
		return s.r.Persona.FullDeleteByIDs(dbc, []uuid.UUID{id})
	})
}
