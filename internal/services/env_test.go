package services

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	"github.com/yungbote/productforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/generation/prompts"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/ctxutil"
)

type fakeGateway struct {
	mu    sync.Mutex
	out   string
	err   error
	calls []string
}

func (f *fakeGateway) Call(_ context.Context, operation, _, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, operation)
	return f.out, f.err
}

// countingRefresher wraps the real aggregator, or stands in for a failing
// one when inner is nil.
type countingRefresher struct {
	inner BacklogRefresher
	calls int
}

func (c *countingRefresher) AutoRefresh(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) *types.Backlog {
	c.calls++
	if c.inner == nil {
		return nil
	}
	return c.inner.AutoRefresh(ctx, productID, userID)
}

type env struct {
	ctx       context.Context
	db        *gorm.DB
	r         repos.Repos
	revisions RevisionService
	backlog   BacklogService
	refresher *countingRefresher
	gateway   *fakeGateway
	epics     EpicService
	stories   UserStoryService
	reqs      RequirementService
	products  ProductService
	personas  PersonaService
	owner     *types.User
	product   *types.Product
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := repos.New(db, log)
	metrics := observability.NewMetrics()
	revs := NewRevisionService(db, log, r)
	backlog := NewBacklogService(db, log, r, revs, nil, nil, metrics)
	refresher := &countingRefresher{inner: backlog}
	gw := &fakeGateway{}
	set := prompts.MustLoad()

	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, db, "owner@example.com")
	product := testutil.SeedProduct(t, ctx, db, owner.ID, "Acme")

	return &env{
		ctx:       ctx,
		db:        db,
		r:         r,
		revisions: revs,
		backlog:   backlog,
		refresher: refresher,
		gateway:   gw,
		epics:     NewEpicService(db, log, r, revs, refresher, gw, set, metrics),
		stories:   NewUserStoryService(db, log, r, revs, refresher, gw, set, metrics),
		reqs:      NewRequirementService(db, log, r, revs, refresher, gw, set, metrics),
		products:  NewProductService(db, log, r),
		personas:  NewPersonaService(db, log, r),
		owner:     owner,
		product:   product,
	}
}

func (e *env) ownerID() *uuid.UUID {
	id := e.owner.ID
	return &id
}

func (e *env) as(userID uuid.UUID) context.Context {
	return ctxutil.WithRequestData(e.ctx, &ctxutil.RequestData{UserID: userID})
}

func (e *env) countRevisions(t *testing.T, kind types.ArtifactKind) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(&types.Revision{}).Where("artifact_kind = ?", kind).Count(&n).Error; err != nil {
		t.Fatalf("count revisions: %v", err)
	}
	return n
}

func (e *env) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := e.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func (e *env) mustEpic(t *testing.T, title string) *types.Epic {
	t.Helper()
	ep, err := e.epics.Create(e.ctx, e.ownerID(), EpicInput{ProductID: e.product.ID, Title: title})
	if err != nil {
		t.Fatalf("create epic: %v", err)
	}
	return ep
}

func (e *env) mustStory(t *testing.T, epicID *uuid.UUID, prio types.Priority) *types.UserStory {
	t.Helper()
	st, err := e.stories.Create(e.ctx, e.ownerID(), UserStoryInput{
		ProductID: e.product.ID,
		EpicID:    epicID,
		Actor:     "shopper",
		Action:    "save a card",
		Benefit:   "checkout is faster",
		Priority:  prio,
	})
	if err != nil {
		t.Fatalf("create story: %v", err)
	}
	return st
}

func (e *env) mustRequirement(t *testing.T, storyID uuid.UUID, desc string) *types.Requirement {
	t.Helper()
	r, err := e.reqs.Create(e.ctx, e.ownerID(), RequirementInput{UserStoryID: storyID, Description: desc})
	if err != nil {
		t.Fatalf("create requirement: %v", err)
	}
	return r
}
