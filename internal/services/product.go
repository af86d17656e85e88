package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type ProductInput struct {
	Name              string `json:"name"`
	Description       string `json:"description"`
	ValueProposition  string `json:"value_proposition"`
	ChannelsPlatforms string `json:"channels_platforms"`
}

type ProductPatch struct {
	Name              *string `json:"name"`
	Description       *string `json:"description"`
	ValueProposition  *string `json:"value_proposition"`
	ChannelsPlatforms *string `json:"channels_platforms"`
}

// ProductService scopes every call to the owner. Products of other users
// are reported as not found.
type ProductService interface {
	Create(ctx context.Context, ownerID uuid.UUID, in ProductInput) (*types.Product, error)
	Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Product, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Product, error)
	Update(ctx context.Context, ownerID, id uuid.UUID, patch ProductPatch) (*types.Product, error)
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type productService struct {
	db      *gorm.DB
	log     *logger.Logger
	r       repos.Repos
	access  access
	cascade cascade
}

func NewProductService(db *gorm.DB, log *logger.Logger, r repos.Repos) ProductService {
	return &productService{
		db:      db,
		log:     log.With("service", "ProductService"),
		r:       r,
		access:  access{r: r},
		cascade: cascade{r: r},
	}
}

func (s *productService) Create(ctx context.Context, ownerID uuid.UUID, in ProductInput) (*types.Product, error) {
	if err := required("name", in.Name); err != nil {
		return nil, err
	}
	rows, err := s.r.Product.Create(dbctx.Of(ctx), []*types.Product{{
		Name:              strings.TrimSpace(in.Name),
		Description:       in.Description,
		ValueProposition:  in.ValueProposition,
		ChannelsPlatforms: in.ChannelsPlatforms,
		OwnerID:           ownerID,
	}})
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return rows[0], nil
}

func (s *productService) Get(ctx context.Context, ownerID, id uuid.UUID) (*types.Product, error) {
	p, err := s.access.product(dbctx.Of(ctx), id, &ownerID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product")
	}
	return p, nil
}

func (s *productService) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*types.Product, error) {
	return s.r.Product.ListByOwner(dbctx.Of(ctx), ownerID)
}

func (s *productService) Update(ctx context.Context, ownerID, id uuid.UUID, patch ProductPatch) (*types.Product, error) {
	var out *types.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cur, err := s.access.product(dbc, id, &ownerID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apierr.NotFound("product")
		}
		cs := newChangeSet()
		if err := cs.text("name", cur.Name, patch.Name, true); err != nil {
			return err
		}
		if err := cs.text("description", cur.Description, patch.Description, false); err != nil {
			return err
		}
		if err := cs.text("value_proposition", cur.ValueProposition, patch.ValueProposition, false); err != nil {
			return err
		}
		if err := cs.text("channels_platforms", cur.ChannelsPlatforms, patch.ChannelsPlatforms, false); err != nil {
			return err
		}
		if cs.empty() {
			out = cur
			return nil
		}
		if err := s.r.Product.UpdateFields(dbc, id, cs.updates); err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		out, err = s.r.Product.GetByID(dbc, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *productService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		p, err := s.access.product(dbc, id, &ownerID)
		if err != nil {
			return err
		}
		if p == nil {
			return apierr.NotFound("product")
		}
		return s.cascade.products(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return err
	}
	s.log.Info("product deleted", "product_id", id, "owner_id", ownerID)
	return nil
}
