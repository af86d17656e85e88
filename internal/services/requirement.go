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

type RequirementInput struct {
	UserStoryID    uuid.UUID
	Description    string
	Priority       types.Priority
	GeneratedByLLM bool
}

type RequirementPatch struct {
	Description *string                  `json:"description"`
	Priority    *types.Priority          `json:"priority"`
	Status      *types.RequirementStatus `json:"status"`
}

type RequirementService interface {
	Create(ctx context.Context, userID *uuid.UUID, in RequirementInput) (*types.Requirement, error)
	GetByID(ctx context.Context, id uuid.UUID) (*types.Requirement, error)
	ListByStory(ctx context.Context, storyID uuid.UUID) ([]*types.Requirement, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Requirement, error)
	Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch RequirementPatch) (*types.Requirement, error)
	Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error
	GenerateForStory(ctx context.Context, userID *uuid.UUID, storyID uuid.UUID, instruction string) ([]*types.Requirement, error)
}

type requirementService struct {
	db        *gorm.DB
	log       *logger.Logger
	r         repos.Repos
	access    access
	cascade   cascade
	revisions RevisionService
	backlog   BacklogRefresher
	gen       generator
}

func NewRequirementService(
	db *gorm.DB,
	log *logger.Logger,
	r repos.Repos,
	revisions RevisionService,
	backlog BacklogRefresher,
	gateway llm.Caller,
	set *prompts.Set,
	metrics *observability.Metrics,
) RequirementService {
	serviceLog := log.With("service", "RequirementService")
	return &requirementService{
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

func (s *requirementService) Create(ctx context.Context, userID *uuid.UUID, in RequirementInput) (*types.Requirement, error) {
	out, productID, err := s.create(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.backlog.AutoRefresh(ctx, productID, userID)
	return out, nil
}

// create commits the requirement and its revision and reports the owning
// product so callers can refresh its backlog.
func (s *requirementService) create(ctx context.Context, userID *uuid.UUID, in RequirementInput) (*types.Requirement, uuid.UUID, error) {
	if err := required("description", in.Description); err != nil {
		return nil, uuid.Nil, err
	}
	prio, err := priorityOrDefault(in.Priority)
	if err != nil {
		return nil, uuid.Nil, err
	}
	var (
		out       *types.Requirement
		productID uuid.UUID
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		story, _, err := s.access.story(dbc, in.UserStoryID, userID)
		if err != nil {
			return err
		}
		if story == nil {
			return parentNotFound("user story")
		}
		productID = story.ProductID
		rows, err := s.r.Requirement.Create(dbc, []*types.Requirement{{
			UserStoryID:    story.ID,
			Description:    in.Description,
			Priority:       prio,
			Status:         types.RequirementDraft,
			GeneratedByLLM: in.GeneratedByLLM,
		}})
		if err != nil {
			return fmt.Errorf("create requirement: %w", err)
		}
		out = rows[0]
		_, err = s.revisions.Append(dbc, types.KindRequirement, out.ID, out, changeCreated, userID)
		return err
	})
	if err != nil {
		return nil, uuid.Nil, err
	}
	return out, productID, nil
}

func (s *requirementService) GetByID(ctx context.Context, id uuid.UUID) (*types.Requirement, error) {
	r, _, err := s.access.requirement(dbctx.Of(ctx), id, requester(ctx))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, apierr.NotFound("requirement")
	}
	return r, nil
}

func (s *requirementService) ListByStory(ctx context.Context, storyID uuid.UUID) ([]*types.Requirement, error) {
	dbc := dbctx.Of(ctx)
	st, _, err := s.access.story(dbc, storyID, requester(ctx))
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, apierr.NotFound("user story")
	}
	return s.r.Requirement.ListByStory(dbc, storyID)
}

func (s *requirementService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Requirement, error) {
	return s.r.Requirement.ListByOwner(dbctx.Of(ctx), userID)
}

func (s *requirementService) Update(ctx context.Context, userID *uuid.UUID, id uuid.UUID, patch RequirementPatch) (*types.Requirement, error) {
	var (
		out       *types.Requirement
		productID uuid.UUID
		refresh   bool
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cur, story, err := s.access.requirement(dbc, id, userID)
		if err != nil {
			return err
		}
		if cur == nil {
			return apierr.NotFound("requirement")
		}
		productID = story.ProductID
		cs := newChangeSet()
		if err := cs.text("description", cur.Description, patch.Description, true); err != nil {
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
		if err := s.r.Requirement.UpdateFields(dbc, id, cs.updates); err != nil {
			return fmt.Errorf("update requirement: %w", err)
		}
		if out, err = s.r.Requirement.GetByID(dbc, id); err != nil {
			return err
		}
		_, err = s.revisions.Append(dbc, types.KindRequirement, id, out, cs.description(), userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if refresh {
		s.backlog.AutoRefresh(ctx, productID, userID)
	}
	return out, nil
}

func (s *requirementService) Delete(ctx context.Context, userID *uuid.UUID, id uuid.UUID) error {
	var productID uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		r, story, err := s.access.requirement(dbc, id, userID)
		if err != nil {
			return err
		}
		if r == nil {
			return apierr.NotFound("requirement")
		}
		productID = story.ProductID
		return s.cascade.requirements(dbc, []uuid.UUID{id})
	})
	if err != nil {
		return err
	}
	s.backlog.AutoRefresh(ctx, productID, userID)
	return nil
}

// GenerateForStory persists one requirement per candidate. Acceptance
// criteria are appended to the last requirement actually created, and the
// backlog is refreshed once for the batch.
func (s *requirementService) GenerateForStory(ctx context.Context, userID *uuid.UUID, storyID uuid.UUID, instruction string) ([]*types.Requirement, error) {
	dbc := dbctx.Of(ctx)
	story, product, err := s.access.story(dbc, storyID, userID)
	if err != nil {
		return nil, err
	}
	if story == nil {
		return nil, apierr.NotFound("user story")
	}
	in := prompts.RequirementInput{
		Story:       story.Sentence(),
		ProductName: product.Name,
		Instruction: instruction,
	}
	if story.EpicID != nil {
		epic, err := s.r.Epic.GetByID(dbc, *story.EpicID)
		if err != nil {
			return nil, err
		}
		if epic != nil {
			in.EpicTitle = epic.Title
		}
	}
	p, rerr := s.gen.prompts.Requirements(in)
	raw, err := s.gen.call(ctx, p, rerr)
	if err != nil {
		return nil, err
	}

	res := parse.ParseRequirements(raw)
	if len(res.Requirements) == 0 {
		if len(res.Criteria) > 0 {
			s.log.Info("acceptance criteria without requirements discarded", "story_id", storyID, "criteria", len(res.Criteria))
		}
		s.gen.noteEmpty(parse.KindRequirement, raw, res.Strategy, res.Dropped)
		return []*types.Requirement{}, nil
	}

	criteria := parse.FormatCriteria(res.Criteria)
	if criteria != "" {
		res.Requirements[len(res.Requirements)-1].Text += criteria
	}
	out := make([]*types.Requirement, 0, len(res.Requirements))
	var persistErr error
	for _, c := range res.Requirements {
		r, _, err := s.create(ctx, userID, RequirementInput{
			UserStoryID:    storyID,
			Description:    c.Text,
			Priority:       c.Priority,
			GeneratedByLLM: true,
		})
		if err != nil {
			persistErr = fmt.Errorf("persist generated requirement: %w", err)
			break
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		if len(res.Criteria) > 0 {
			s.log.Info("acceptance criteria without requirements discarded", "story_id", storyID, "criteria", len(res.Criteria))
		}
		return out, persistErr
	}
	// the batch stopped before the candidate carrying the criteria was created
	if criteria != "" && len(out) < len(res.Requirements) {
		last, err := s.attachCriteria(ctx, userID, out[len(out)-1], criteria)
		if err != nil {
			s.log.Warn("attach acceptance criteria failed", "requirement_id", out[len(out)-1].ID, "error", err)
		} else {
			out[len(out)-1] = last
		}
	}
	s.backlog.AutoRefresh(ctx, story.ProductID, userID)
	if persistErr != nil {
		return out, persistErr
	}
	s.gen.metrics.AddGenerated(string(types.KindRequirement), len(out))
	s.log.Info("requirements generated", "story_id", storyID, "count", len(out), "criteria", len(res.Criteria), "strategy", res.Strategy)
	return out, nil
}

// attachCriteria appends the rendered criteria to a created requirement and
// records the change as a revision.
func (s *requirementService) attachCriteria(ctx context.Context, userID *uuid.UUID, r *types.Requirement, criteria string) (*types.Requirement, error) {
	var out *types.Requirement
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		cs := newChangeSet()
		next := r.Description + criteria
		if err := cs.text("description", r.Description, &next, true); err != nil {
			return err
		}
		if cs.empty() {
			out = r
			return nil
		}
		if err := s.r.Requirement.UpdateFields(dbc, r.ID, cs.updates); err != nil {
			return err
		}
		var err error
		if out, err = s.r.Requirement.GetByID(dbc, r.ID); err != nil {
			return err
		}
		if out == nil {
			return apierr.NotFound("requirement")
		}
		_, err = s.revisions.Append(dbc, types.KindRequirement, r.ID, out, cs.description(), userID)
		return err
	})
	return out, err
}
