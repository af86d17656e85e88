package services

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/generation/parse"
	"github.com/yungbote/productforge-backend/internal/generation/prompts"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/llm"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type EpicInput struct {
	ProductID      uuid.UUID
	Title          string
	Description    string
	GeneratedByLLM bool
}

type EpicPatch struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Status      *types.EpicStatus `json:"status"`
}

type EpicStats struct {
	TotalStories      int64 `json:"total_stories"`
	TotalRequirements int64 `json:"total_requirements"`
	DoneRequirements  int64 `json:"done_requirements"`
	Progress          int   `json:"progress"`
}

type EpicService interface {
	Create(ctx context.Context, userID *uuid.UUID, in EpicInput) (*types.Epic, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Epic, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*types.Epic, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Epic, error)
	Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch EpicPatch) (*types.Epic, error)
	Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error
	GenerateForProduct(ctx context.Context, userID *uuid.UUID, productID uuid.UUID, instruction string) ([]*types.Epic, error)
	Stats(ctx context.Context, id uuid.UUID) (*EpicStats, error)
}

type epicService struct {
	db        *gorm.DB
	log       *logger.Logger
	r         repos.Repos
	access    access
	cascade   cascade
	revisions RevisionService
	backlog   BacklogRefresher
	gen       generator
}

func NewEpicService(
	db *gorm.DB,
	log *logger.Logger,
	r repos.Repos,
	revisions RevisionService,
	backlog BacklogRefresher,
	gateway llm.Caller,
	set *prompts.Set,
	metrics *observability.Metrics,
) EpicService {
	serviceLog := log.With("service", "EpicService")
	return &epicService{
		db:        db,
		log:       serviceLog,
		r:         r,
		access:    access{r: r},
		cascade:   cascade{r: r},
		revisions: revisions,
		backlog:   backlog,
		gen:       generator{log: serviceLog, gateway: gateway, prompts: set, metrics: metrics},
	}
}

func (s *epicService) Create(ctx context.Context, userID *uuid.UUID, in EpicInput) (*types.Epic, error) {
	if err := required("title", in.Title); err != nil {
		return nil, err
	}
	var out *types.Epic
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		product, err := s.access.product(dbc, in.ProductID, userID)
		if err != nil {
			return err
		}
		if product == nil {
			return parentNotFound("product")
		}
		rows, err := s.r.Epic.Create(dbc, []*types.Epic{{
			ProductID:      product.ID,
			Title:          in.Title,
			Description:    in.Description,
			Status:         types.EpicDraft,
			GeneratedByLLM: in.GeneratedByLLM,
		}})
		if err != nil {
			return fmt.Errorf("create epic: %w", err)
		}
		out = rows[0]
		_, err = s.revisions.Append(dbc, types.KindEpic, out.ID, out, changeCreated, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *epicService) GetByID(ctx context.Context, id uuid.UUID) (*types.Epic, error) {
	e, _, err := s.access.epic(dbctx.Of(ctx), id, requester(ctx))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("epic")
	}
	return e, nil
}

func (s *epicService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*types.Epic, error) {
	dbc := dbctx.Of(ctx)
	p, err := s.access.product(dbc, productID, requester(ctx))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product")
	}
	return s.r.Epic.ListByProduct(dbc, productID)
}

func (s *epicService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Epic, error) {
	return s.r.Epic.ListByOwner(dbctx.Of(ctx), userID)
}

func (s *epicService) Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch EpicPatch) (*types.Epic, error) {
	var out *types.Epic
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cur, _, err := s.access.epic(dbc, id, userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apierr.NotFound("epic")
		}
		cs := newChangeSet()
		if err := cs.text("title", cur.Title, patch.Title, true); err != nil {
			return err
		}
		if err := cs.text("description", cur.Description, patch.Description, false); err != nil {
			return err
		}
		if err := enumField(cs, "status", cur.Status, patch.Status); err != nil {
			return err
		}
		if cs.empty() {
			out = cur
			return nil
		}
		if err := s.r.Epic.UpdateFields(dbc, id, cs.updates); err != nil {
			return fmt.Errorf("update epic: %w", err)
		}
		if out, err = s.r.Epic.GetByID(dbc, id); err != nil {
			return err
		}
		_, err = s.revisions.Append(dbc, types.KindEpic, id, out, cs.description(), userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *epicService) Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error {
	var productID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		e, _, err := s.access.epic(dbc, id, userID)
		if err != nil {
			return err
		}
		if e == nil {
			return apierr.NotFound("epic")
		}
		productID = e.ProductID
		return s.cascade.epics(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return err
	}
	s.log.Info("epic deleted", "epic_id", id, "product_id", productID)
	// the epic's stories and requirements left the backlog with it
	s.backlog.AutoRefresh(ctx, productID, userID)
	return nil
}

func (s *epicService) GenerateForProduct(ctx context.Context, userID *uuid.UUID, productID uuid.UUID, instruction string) ([]*types.Epic, error) {
	dbc := dbctx.Of(ctx)
	product, err := s.access.product(dbc, productID, userID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apierr.NotFound("product")
	}
	personas, err := personaContext(dbc, s.r.Persona, product)
	if err != nil {
		return nil, err
	}
	p, rerr := s.gen.prompts.Epics(prompts.EpicInput{
		Product:     productContext(product),
		Personas:    personas,
		Instruction: instruction,
	})
	raw, err := s.gen.call(ctx, p, rerr)
	if err != nil {
		return nil, err
	}

	res := parse.ParseEpics(raw)
	if len(res.Candidates) == 0 {
		s.gen.noteEmpty(parse.KindEpic, raw, res.Strategy, res.Dropped)
		return []*types.Epic{}, nil
	}
	out := make([]*types.Epic, 0, len(res.Candidates))
	for _, c := range res.Candidates {
		e, err := s.Create(ctx, userID, EpicInput{
			ProductID:      productID,
			Title:          c.Title,
			Description:    c.Description,
			GeneratedByLLM: true,
		})
		if err != nil {
			return out, fmt.Errorf("persist generated epic: %w", err)
		}
		out = append(out, e)
	}
	s.gen.metrics.AddGenerated(string(types.KindEpic), len(out))
	s.log.Info("epics generated", "product_id", productID, "count", len(out), "strategy", res.Strategy, "dropped", res.Dropped)
	return out, nil
}

func (s *epicService) Stats(ctx context.Context, id uuid.UUID) (*EpicStats, error) {
	dbc := dbctx.Of(ctx)
	e, _, err := s.access.epic(dbc, id, requester(ctx))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("epic")
	}
	storyIDs, err := s.r.UserStory.ListIDsByEpicIDs(dbc, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	total, err := s.r.Requirement.CountByStoryIDs(dbc, storyIDs, "")
	if err != nil {
		return nil, err
	}
	done, err := s.r.Requirement.CountByStoryIDs(dbc, storyIDs, types.RequirementDone)
	if err != nil {
		return nil, err
	}
	return &EpicStats{
		TotalStories:      int64(len(storyIDs)),
		TotalRequirements: total,
		DoneRequirements:  done,
		Progress:          progress(done, total),
	}, nil
}

func progress(done, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}
