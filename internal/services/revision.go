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

const (
	changeCreated          = "created"
	changeBacklogGenerated = "Backlog generated"
	changeBacklogUpdated   = "Backlog updated"
)

type RevisionService interface {
	// Append writes one snapshot inside the caller's transaction.
	Append(dbc dbctx.Context, kind types.ArtifactKind, artifactID uuid.UUID, snapshot any, description string, userID *uuid.UUID) (*types.Revision, error)
	List(ctx context.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error)
	// ListForArtifact checks the artifact exists and is visible before listing.
	ListForArtifact(ctx context.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error)
}

// locator reports whether an artifact of one kind exists for the user.
type locator func(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (bool, error)

type revisionService struct {
	db       *gorm.DB
	log      *logger.Logger
	revs     repos.RevisionRepo
	locators map[types.ArtifactKind]locator
}

func NewRevisionService(db *gorm.DB, log *logger.Logger, r repos.Repos) RevisionService {
	a := access{r: r}
	return &revisionService{
		db:   db,
		log:  log.With("service", "RevisionService"),
		revs: r.Revision,
		locators: map[types.ArtifactKind]locator{
			types.KindEpic: func(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
				e, _, err := a.epic(dbc, id, userID)
				return e != nil, err
			},
			types.KindUserStory: func(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
				s, _, err := a.story(dbc, id, userID)
				return s != nil, err
			},
			types.KindRequirement: func(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
				req, _, err := a.requirement(dbc, id, userID)
				return req != nil, err
			},
			types.KindBacklog: func(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (bool, error) {
				b, err := r.Backlog.GetByID(dbc, id)
				if err != nil || b == nil {
					return false, err
				}
				p, err := a.product(dbc, b.ProductID, userID)
				return p != nil, err
			},
		},
	}
}

func (s *revisionService) Append(dbc dbctx.Context, kind types.ArtifactKind, artifactID uuid.UUID, snapshot any, description string, userID *uuid.UUID) (*types.Revision, error) {
	content, err := toJSON(snapshot)
	if err != nil {
		return nil, err
	}
	rows, err := s.revs.Create(dbc, []*types.Revision{{
		ArtifactKind:      kind,
		ArtifactID:        artifactID,
		Content:           content,
		ChangeDescription: description,
		UserID:            userID,
	}})
	if err != nil {
		return nil, fmt.Errorf("append %s revision: %w", kind, err)
	}
	return rows[0], nil
}

func (s *revisionService) List(ctx context.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error) {
	return s.revs.ListByArtifact(dbctx.Of(ctx), kind, artifactID)
}

func (s *revisionService) ListForArtifact(ctx context.Context, kind types.ArtifactKind, artifactID uuid.UUID) ([]*types.Revision, error) {
	locate, ok := s.locators[kind]
	if !ok {
		return nil, apierr.Validation("invalid_kind", "unknown artifact kind %q", kind)
	}
	dbc := dbctx.Of(ctx)
	found, err := locate(dbc, artifactID, requester(ctx))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apierr.NotFound(string(kind))
	}
	return s.revs.ListByArtifact(dbc, kind, artifactID)
}
