package services

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	"github.com/yungbote/productforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/generation/prompts"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
)

var errStorage = errors.New("storage unavailable")

type failingStoryDeletes struct {
	repos.UserStoryRepo
}

func (failingStoryDeletes) FullDeleteByIDs(dbctx.Context, []uuid.UUID) error { return errStorage }

// failingRequirementCreates fails the failAt-th Create call (1-based).
type failingRequirementCreates struct {
	repos.RequirementRepo
	failAt int
	n      int
}

func (f *failingRequirementCreates) Create(dbc dbctx.Context, rows []*types.Requirement) ([]*types.Requirement, error) {
	f.n++
	if f.n == f.failAt {
		return nil, errStorage
	}
	return f.RequirementRepo.Create(dbc, rows)
}

func TestEpicDeleteRollsBackWhenCascadeStepFails(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Checkout")
	for i := 0; i < 2; i++ {
		st := e.mustStory(t, &epic.ID, types.PriorityHigh)
		e.mustRequirement(t, st.ID, "store the card token")
		e.mustRequirement(t, st.ID, "mask the card number")
	}

	r := e.r
	r.UserStory = failingStoryDeletes{UserStoryRepo: e.r.UserStory}
	svc := NewEpicService(e.db, testutil.Logger(t), r, e.revisions, e.refresher, e.gateway, prompts.MustLoad(), observability.NewMetrics())
	calls := e.refresher.calls

	err := svc.Delete(e.ctx, e.ownerID(), epic.ID)
	if !errors.Is(err, errStorage) {
		t.Fatalf("Delete: want storage error got=%v", err)
	}

	rows := map[string]struct {
		model any
		want  int64
	}{
		"epics":        {&types.Epic{}, 1},
		"stories":      {&types.UserStory{}, 2},
		"requirements": {&types.Requirement{}, 4},
	}
	for name, c := range rows {
		if n := e.countRows(t, c.model); n != c.want {
			t.Fatalf("%s after failed delete: want=%d got=%d", name, c.want, n)
		}
	}
	revs := map[types.ArtifactKind]int64{types.KindEpic: 1, types.KindUserStory: 2, types.KindRequirement: 4}
	for kind, want := range revs {
		if n := e.countRevisions(t, kind); n != want {
			t.Fatalf("%s revisions after failed delete: want=%d got=%d", kind, want, n)
		}
	}
	if e.refresher.calls != calls {
		t.Fatalf("failed delete must not refresh the backlog")
	}
}

func TestGenerateRequirementsCriteriaFollowLastCreated(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityHigh)
	e.gateway.out = `{"functional_requirements":[{"requirement":"Validate card number"},{"requirement":"Store token"}],
	"acceptance_criteria":[{"scenario":"Valid card","given":"a valid card","when":"saved","then":"a token exists"}]}`

	r := e.r
	r.Requirement = &failingRequirementCreates{RequirementRepo: e.r.Requirement, failAt: 2}
	svc := NewRequirementService(e.db, testutil.Logger(t), r, e.revisions, e.refresher, e.gateway, prompts.MustLoad(), observability.NewMetrics())
	calls := e.refresher.calls

	got, err := svc.GenerateForStory(e.ctx, e.ownerID(), st.ID, "")
	if !errors.Is(err, errStorage) {
		t.Fatalf("Generate: want storage error got=%v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want the first requirement kept, got=%d", len(got))
	}
	if !strings.HasPrefix(got[0].Description, "Validate card number\n\nAcceptance Criteria:") || !strings.Contains(got[0].Description, "Then a token exists") {
		t.Fatalf("criteria not on the last created requirement: %q", got[0].Description)
	}

	stored, err := e.r.Requirement.GetByID(dbcOf(e), got[0].ID)
	if err != nil || stored == nil || !strings.Contains(stored.Description, "Acceptance Criteria:") {
		t.Fatalf("stored description: %+v %v", stored, err)
	}
	trail, _ := e.revisions.List(e.ctx, types.KindRequirement, got[0].ID)
	if len(trail) != 2 || trail[0].ChangeDescription != changeCreated || trail[1].ChangeDescription != "updated: description" {
		t.Fatalf("trail: %+v", trail)
	}
	if n := e.countRows(t, &types.Requirement{}); n != 1 {
		t.Fatalf("requirement rows: want=1 got=%d", n)
	}
	if e.refresher.calls != calls+1 {
		t.Fatalf("refresh calls: want=%d got=%d", calls+1, e.refresher.calls)
	}
}

func TestGenerateRefreshesBacklogOncePerBatch(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityHigh)
	calls := e.refresher.calls
	backlogRevs := e.countRevisions(t, types.KindBacklog)

	e.gateway.out = `{"functional_requirements":[{"requirement":"Validate card number"},{"requirement":"Store token"},{"requirement":"Mask digits"}]}`
	got, err := e.reqs.GenerateForStory(e.ctx, e.ownerID(), st.ID, "")
	if err != nil || len(got) != 3 {
		t.Fatalf("Generate requirements: %d %v", len(got), err)
	}
	if e.refresher.calls != calls+1 {
		t.Fatalf("requirement batch refresh calls: want=%d got=%d", calls+1, e.refresher.calls)
	}
	if n := e.countRevisions(t, types.KindBacklog); n != backlogRevs+1 {
		t.Fatalf("backlog revisions: want=%d got=%d", backlogRevs+1, n)
	}

	e.gateway.out = `{"user_stories":[
	{"as_a":"buyer","i_want":"to pay by card","so_that":"checkout is quick","priority":"high"},
	{"as_a":"admin","i_want":"to refund orders","so_that":"customers trust us","priority":"low"}]}`
	stories, err := e.stories.GenerateForProduct(e.ctx, e.ownerID(), e.product.ID, "")
	if err != nil || len(stories) != 2 {
		t.Fatalf("Generate stories: %d %v", len(stories), err)
	}
	if e.refresher.calls != calls+2 {
		t.Fatalf("story batch refresh calls: want=%d got=%d", calls+2, e.refresher.calls)
	}

	row, err := e.r.Backlog.GetByProduct(dbcOf(e), e.product.ID)
	if err != nil || row == nil {
		t.Fatalf("backlog: %v", err)
	}
	v, err := e.backlog.View(e.ctx, e.product.ID)
	if err != nil || v.Total != 6 {
		t.Fatalf("view after batches: %+v %v", v, err)
	}
}
