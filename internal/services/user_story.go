package services

import (
	"context"
	"fmt"

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

// UserStoryInput needs EpicID or ProductID. With an epic, ProductID may be
// left empty and is taken from the epic.
type UserStoryInput struct {
	ProductID      uuid.UUID
	EpicID         *uuid.UUID
	Actor          string
	Action         string
	Benefit        string
	Priority       types.Priority
	GeneratedByLLM bool
}

type UserStoryPatch struct {
	Actor    *string            `json:"actor"`
	Action   *string            `json:"action"`
	Benefit  *string            `json:"benefit"`
	Priority *types.Priority    `json:"priority"`
	Status   *types.StoryStatus `json:"status"`
}

type PrioritySuggestion struct {
	StoryID    uuid.UUID      `json:"story_id"`
	Priority   types.Priority `json:"priority"`
	Recognized bool           `json:"recognized"`
}

type UserStoryService interface {
	Create(ctx context.Context, userID *uuid.UUID, in UserStoryInput) (*types.UserStory, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.UserStory, error)
	ListByEpic(ctx context.Context, epicID uuid.UUID) ([]*types.UserStory, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]*types.UserStory, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.UserStory, error)
	Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch UserStoryPatch) (*types.UserStory, error)
	Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error
	GenerateForEpic(ctx context.Context, userID *uuid.UUID, epicID uuid.UUID, instruction string) ([]*types.UserStory, error)
	GenerateForProduct(ctx context.Context, userID *uuid.UUID, productID uuid.UUID, instruction string) ([]*types.UserStory, error)
	RequirementCount(ctx context.Context, id uuid.UUID) (int64, error)
	SuggestPriority(ctx context.Context, id uuid.UUID) (*PrioritySuggestion, error)
}

type userStoryService struct {
	db        *gorm.DB
	log       *logger.Logger
	r         repos.Repos
	access    access
	cascade   cascade
	revisions RevisionService
	backlog   BacklogRefresher
	gen       generator
}

func NewUserStoryService(
	db *gorm.DB,
	log *logger.Logger,
	r repos.Repos,
	revisions RevisionService,
	backlog BacklogRefresher,
	gateway llm.Caller,
	set *prompts.Set,
	metrics *observability.Metrics,
) UserStoryService {
	serviceLog := log.With("service", "UserStoryService")
	return &userStoryService{
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

func (s *userStoryService) Create(ctx context.Context, userID *uuid.UUID, in UserStoryInput) (*types.UserStory, error) {
	out, err := s.create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.backlog.AutoRefresh(ctx, out.ProductID, userID)
	return out, nil
}

// create commits the story and its revision without touching the backlog.
func (s *userStoryService) create(ctx context.Context, userID *uuid.UUID, in UserStoryInput) (*types.UserStory, error) {
	for _, f := range []struct{ name, v string }{{"actor", in.Actor}, {"action", in.Action}, {"benefit", in.Benefit}} {
		if err := required(f.name, f.v); err != nil {
			return nil, err
		}
	}
	prio, err := priorityOrDefault(in.Priority)
	if err != nil {
		return nil, err
	}
	if in.EpicID == nil && in.ProductID == uuid.Nil {
		return nil, apierr.Validation("", "epic_id or product_id is required")
	}

	var out *types.UserStory
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		productID := in.ProductID
		if in.EpicID != nil {
			epic, _, err := s.access.epic(dbc, *in.EpicID, userID)
			if err != nil {
				return err
			}
			if epic == nil {
				return parentNotFound("epic")
			}
			if productID != uuid.Nil && productID != epic.ProductID {
				return apierr.Validation("", "product_id does not match the epic's product")
			}
			productID = epic.ProductID
		} else {
			p, err := s.access.product(dbc, productID, userID)
			if err != nil {
				return err
			}
			if p == nil {
				return parentNotFound("product")
			}
		}
		rows, err := s.r.UserStory.Create(dbc, []*types.UserStory{{
			ProductID:      productID,
			EpicID:         in.EpicID,
			Actor:          in.Actor,
			Action:         in.Action,
			Benefit:        in.Benefit,
			Priority:       prio,
			Status:         types.StoryDraft,
			GeneratedByLLM: in.GeneratedByLLM,
		}})
		if err != nil {
			return fmt.Errorf("create story: %w", err)
		}
		out = rows[0]
		_, err = s.revisions.Append(dbc, types.KindUserStory, out.ID, out, changeCreated, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *userStoryService) GetByID(ctx context.Context, id uuid.UUID) (*types.UserStory, error) {
	st, _, err := s.access.story(dbctx.Of(ctx), id, requester(ctx))
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierr.NotFound("user story")
	}
	return st, nil
}

func (s *userStoryService) ListByEpic(ctx context.Context, epicID uuid.UUID) ([]*types.UserStory, error) {
	dbc := dbctx.Of(ctx)
	e, _, err := s.access.epic(dbc, epicID, requester(ctx))
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, apierr.NotFound("epic")
	}
	return s.r.UserStory.ListByEpic(dbc, epicID)
}

func (s *userStoryService) ListByProduct(ctx context.Context, productID uuid.UUID) ([]*types.UserStory, error) {
	dbc := dbctx.Of(ctx)
	p, err := s.access.product(dbc, productID, requester(ctx))
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apierr.NotFound("product")
	}
	return s.r.UserStory.ListByProduct(dbc, productID)
}

func (s *userStoryService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.UserStory, error) {
	return s.r.UserStory.ListByOwner(dbctx.Of(ctx), userID)
}

func (s *userStoryService) Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch UserStoryPatch) (*types.UserStory, error) {
	var (
		out     *types.UserStory
		refresh bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cur, _, err := s.access.story(dbc, id, userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apierr.NotFound("user story")
		}
		cs := newChangeSet()
		if err := cs.text("actor", cur.Actor, patch.Actor, true); err != nil {
			return err
		}
		if err := cs.text("action", cur.Action, patch.Action, true); err != nil {
			return err
		}
		if err := cs.text("benefit", cur.Benefit, patch.Benefit, true); err != nil {
			return err
		}
		if err := enumField(cs, "priority", cur.Priority, patch.Priority); err != nil {
			return err
		}
		if err := enumField(cs, "status", cur.Status, patch.Status); err != nil {
			return err
		}
		if cs.empty() {
			out = cur
			return nil
		}
		refresh = cs.has("status") || cs.has("priority")
		if err := s.r.UserStory.UpdateFields(dbc, id, cs.updates); err != nil {
			return fmt.Errorf("update story: %w", err)
		}
		if out, err = s.r.UserStory.GetByID(dbc, id); err != nil {
			return err
		}
		_, err = s.revisions.Append(dbc, types.KindUserStory, id, out, cs.description(), userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if refresh {
		s.backlog.AutoRefresh(ctx, out.ProductID, userID)
	}
	return out, nil
}

func (s *userStoryService) Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error {
	var productID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		st, _, err := s.access.story(dbc, id, userID)
		if err != nil {
			return err
		}
		if st == nil {
			return apierr.NotFound("user story")
		}
		productID = st.ProductID
		return s.cascade.stories(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return err
	}
	s.backlog.AutoRefresh(ctx, productID, userID)
	return nil
}

func (s *userStoryService) GenerateForEpic(ctx context.Context, userID *uuid.UUID, epicID uuid.UUID, instruction string) ([]*types.UserStory, error) {
	dbc := dbctx.Of(ctx)
	epic, product, err := s.access.epic(dbc, epicID, userID)
	if err != nil {
		return nil, err
	}
	if epic == nil {
		return nil, apierr.NotFound("epic")
	}
	return s.generate(ctx, userID, product, epic, instruction)
}

func (s *userStoryService) GenerateForProduct(ctx context.Context, userID *uuid.UUID, productID uuid.UUID, instruction string) ([]*types.UserStory, error) {
	product, err := s.access.product(dbctx.Of(ctx), productID, userID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apierr.NotFound("product")
	}
	return s.generate(ctx, userID, product, nil, instruction)
}

func (s *userStoryService) generate(ctx context.Context, userID *uuid.UUID, product *types.Product, epic *types.Epic, instruction string) ([]*types.UserStory, error) {
	personas, err := personaContext(dbctx.Of(ctx), s.r.Persona, product)
	if err != nil {
		return nil, err
	}
	in := prompts.StoryInput{
		Product:     productContext(product),
		Personas:    personas,
		Instruction: instruction,
	}
	var epicID *uuid.UUID
	if epic != nil {
		in.EpicTitle, in.EpicDescription = epic.Title, epic.Description
		id := epic.ID
		epicID = &id
	}
	p, rerr := s.gen.prompts.Stories(in)
	raw, err := s.gen.call(ctx, p, rerr)
	if err != nil {
		return nil, err
	}

	res := parse.ParseStories(raw)
	if len(res.Candidates) == 0 {
		s.gen.noteEmpty(parse.KindUserStory, raw, res.Strategy, res.Dropped)
		return []*types.UserStory{}, nil
	}
	out := make([]*types.UserStory, 0, len(res.Candidates))
	// one refresh covers the whole batch, including a partially persisted one
	defer func() {
		if len(out) > 0 {
			s.backlog.AutoRefresh(ctx, product.ID, userID)
		}
	}()
	for _, c := range res.Candidates {
		st, err := s.create(ctx, userID, UserStoryInput{
			ProductID:      product.ID,
			EpicID:         epicID,
			Actor:          c.Actor,
			Action:         c.Action,
			Benefit:        c.Benefit,
			Priority:       c.Priority,
			GeneratedByLLM: true,
		})
		if err != nil {
			return out, fmt.Errorf("persist generated story: %w", err)
		}
		out = append(out, st)
	}
	s.gen.metrics.AddGenerated(string(types.KindUserStory), len(out))
	s.log.Info("stories generated", "product_id", product.ID, "epic_id", epicID, "count", len(out), "strategy", res.Strategy, "dropped", res.Dropped)
	return out, nil
}

func (s *userStoryService) RequirementCount(ctx context.Context, id uuid.UUID) (int64, error) {
	dbc := dbctx.Of(ctx)
	st, _, err := s.access.story(dbc, id, requester(ctx))
	if err != nil {
		return 0, err
	}
	if st == nil {
		return 0, apierr.NotFound("user story")
	}
	return s.r.Requirement.CountByStoryIDs(dbc, []uuid.UUID{id}, "")
}

// SuggestPriority asks for a MoSCoW classification. Nothing is persisted.
func (s *userStoryService) SuggestPriority(ctx context.Context, id uuid.UUID) (*PrioritySuggestion, error) {
	st, product, err := s.access.story(dbctx.Of(ctx), id, requester(ctx))
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierr.NotFound("user story")
	}
	p, rerr := s.gen.prompts.Priority(prompts.PriorityInput{
		Story:            st.Sentence(),
		ValueProposition: product.ValueProposition,
	})
	raw, err := s.gen.call(ctx, p, rerr)
	if err != nil {
		return nil, err
	}
	prio, ok := parse.SuggestedPriority(raw)
	if !ok {
		s.log.Warn("priority suggestion not recognized", "story_id", id, "preview", logger.Preview(raw, previewRunes))
	}
	return &PrioritySuggestion{StoryID: id, Priority: prio, Recognized: ok}, nil
}
