package services

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/llm"
)

func apiCode(t *testing.T, err error) (int, string) {
	t.Helper()
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("want *apierr.Error got=%T %v", err, err)
	}
	return ae.Status, ae.Code
}

func TestEpicDeleteCascadesRowsAndRevisions(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Checkout")
	for i := 0; i < 2; i++ {
		st := e.mustStory(t, &epic.ID, types.PriorityHigh)
		for j := 0; j < 3; j++ {
			e.mustRequirement(t, st.ID, "store the card token")
		}
	}
	before := e.countRevisions(t, types.KindEpic) + e.countRevisions(t, types.KindUserStory) + e.countRevisions(t, types.KindRequirement)
	if before != 9 {
		t.Fatalf("revisions before delete: want=9 got=%d", before)
	}

	if err := e.epics.Delete(e.ctx, e.ownerID(), epic.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, m := range []any{&types.Epic{}, &types.UserStory{}, &types.Requirement{}} {
		if n := e.countRows(t, m); n != 0 {
			t.Fatalf("%T rows left: %d", m, n)
		}
	}
	for _, k := range []types.ArtifactKind{types.KindEpic, types.KindUserStory, types.KindRequirement} {
		if n := e.countRevisions(t, k); n != 0 {
			t.Fatalf("%s revisions left: %d", k, n)
		}
	}
	if _, err := e.epics.GetByID(e.ctx, epic.ID); err == nil {
		t.Fatalf("epic still readable")
	}
}

func TestRequirementCreateAppendsRevisionAndRefreshesOnce(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityMedium)
	calls := e.refresher.calls

	req := e.mustRequirement(t, st.ID, "the card is tokenized")
	if e.refresher.calls != calls+1 {
		t.Fatalf("refresh calls: want=%d got=%d", calls+1, e.refresher.calls)
	}
	revs, err := e.revisions.List(e.ctx, types.KindRequirement, req.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(revs) != 1 || revs[0].ChangeDescription != "created" {
		t.Fatalf("revisions: %+v", revs)
	}
	if revs[0].UserID == nil || *revs[0].UserID != e.owner.ID {
		t.Fatalf("revision author: %v", revs[0].UserID)
	}
	if req.Status != types.RequirementDraft || req.Priority != types.PriorityMedium {
		t.Fatalf("defaults: %+v", req)
	}
}

func TestRequirementCreateSurvivesFailedRefresh(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityMedium)
	e.refresher.inner = nil

	req := e.mustRequirement(t, st.ID, "persisted even if the backlog fails")
	got, err := e.reqs.GetByID(e.ctx, req.ID)
	if err != nil || got.ID != req.ID {
		t.Fatalf("requirement not persisted: %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	e := newEnv(t)

	_, err := e.epics.Create(e.ctx, e.ownerID(), EpicInput{ProductID: e.product.ID, Title: "  "})
	if status, code := apiCode(t, err); status != http.StatusBadRequest || code != "validation_failed" {
		t.Fatalf("blank title: %d %s", status, code)
	}

	_, err = e.epics.Create(e.ctx, e.ownerID(), EpicInput{ProductID: uuid.New(), Title: "x"})
	if _, code := apiCode(t, err); code != "parent_not_found" {
		t.Fatalf("missing product: %s", code)
	}

	_, err = e.reqs.Create(e.ctx, e.ownerID(), RequirementInput{UserStoryID: uuid.New(), Description: "x"})
	if _, code := apiCode(t, err); code != "parent_not_found" {
		t.Fatalf("missing story: %s", code)
	}

	_, err = e.stories.Create(e.ctx, e.ownerID(), UserStoryInput{ProductID: e.product.ID, Actor: "a", Action: "b", Benefit: "c", Priority: "urgent"})
	if status, _ := apiCode(t, err); status != http.StatusBadRequest {
		t.Fatalf("bad priority: %d", status)
	}
}

func TestStoryTakesEpicProductAndRejectsMismatch(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Payments")

	st, err := e.stories.Create(e.ctx, e.ownerID(), UserStoryInput{EpicID: &epic.ID, Actor: "a", Action: "b", Benefit: "c"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if st.ProductID != e.product.ID {
		t.Fatalf("product not inherited from epic")
	}

	other := e.mustOtherProduct(t)
	_, err = e.stories.Create(e.ctx, e.ownerID(), UserStoryInput{ProductID: other, EpicID: &epic.ID, Actor: "a", Action: "b", Benefit: "c"})
	if status, code := apiCode(t, err); status != http.StatusBadRequest || code != "validation_failed" {
		t.Fatalf("mismatch: %d %s", status, code)
	}
}

func (e *env) mustOtherProduct(t *testing.T) uuid.UUID {
	t.Helper()
	p, err := e.products.Create(e.ctx, e.owner.ID, ProductInput{Name: "Other"})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p.ID
}

func TestUpdateDiffsFieldsAndSkipsNoop(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Search")

	same := "Search"
	if _, err := e.epics.Update(e.ctx, e.ownerID(), epic.ID, EpicPatch{Title: &same}); err != nil {
		t.Fatalf("noop Update: %v", err)
	}
	revs, _ := e.revisions.List(e.ctx, types.KindEpic, epic.ID)
	if len(revs) != 1 {
		t.Fatalf("noop wrote a revision: %d", len(revs))
	}

	title, status := "Search v2", types.EpicApproved
	got, err := e.epics.Update(e.ctx, e.ownerID(), epic.ID, EpicPatch{Title: &title, Status: &status})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Title != title || got.Status != status {
		t.Fatalf("row not updated: %+v", got)
	}
	revs, _ = e.revisions.List(e.ctx, types.KindEpic, epic.ID)
	if len(revs) != 2 || revs[1].ChangeDescription != "updated: title, status" {
		t.Fatalf("revisions: %+v", revs)
	}

	bad := types.EpicStatus("shipped")
	if _, err := e.epics.Update(e.ctx, e.ownerID(), epic.ID, EpicPatch{Status: &bad}); !apierr.IsValidation(err) {
		t.Fatalf("invalid enum: %v", err)
	}
}

func TestStoryUpdateRefreshesOnlyOnStatusOrPriority(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityLow)
	calls := e.refresher.calls

	action := "save two cards"
	if _, err := e.stories.Update(e.ctx, e.ownerID(), st.ID, UserStoryPatch{Action: &action}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if e.refresher.calls != calls {
		t.Fatalf("text change should not refresh")
	}
	prio := types.PriorityCritical
	if _, err := e.stories.Update(e.ctx, e.ownerID(), st.ID, UserStoryPatch{Priority: &prio}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if e.refresher.calls != calls+1 {
		t.Fatalf("priority change should refresh")
	}
}

func TestOwnershipHidesForeignArtifacts(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Private")
	stranger := uuid.New()

	if _, err := e.epics.GetByID(e.as(stranger), epic.ID); err == nil {
		t.Fatalf("stranger read foreign epic")
	} else if status, _ := apiCode(t, err); status != http.StatusNotFound {
		t.Fatalf("want 404 got=%d", status)
	}
	if _, err := e.epics.GetByID(e.as(e.owner.ID), epic.ID); err != nil {
		t.Fatalf("owner read: %v", err)
	}
	if err := e.epics.Delete(e.ctx, &stranger, epic.ID); err == nil {
		t.Fatalf("stranger deleted foreign epic")
	}
	if _, err := e.revisions.ListForArtifact(e.as(stranger), types.KindEpic, epic.ID); err == nil {
		t.Fatalf("stranger listed foreign revisions")
	}
}

func TestListForArtifactDispatch(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "History")

	revs, err := e.revisions.ListForArtifact(e.ctx, types.KindEpic, epic.ID)
	if err != nil || len(revs) != 1 {
		t.Fatalf("ListForArtifact: %v %d", err, len(revs))
	}
	if _, err := e.revisions.ListForArtifact(e.ctx, types.KindUserStory, epic.ID); err == nil {
		t.Fatalf("wrong kind should be not found")
	}
	if _, err := e.revisions.ListForArtifact(e.ctx, "product", epic.ID); !apierr.IsValidation(err) {
		t.Fatalf("unknown kind: %v", err)
	}
}

func TestGenerateEpicsPersistsCandidates(t *testing.T) {
	e := newEnv(t)
	e.gateway.out = `<think>plan</think>{"epics":[{"name":"Onboarding","description":"first run"},{"name":""},{"title":"Billing"}]}`

	got, err := e.epics.GenerateForProduct(e.ctx, e.ownerID(), e.product.ID, "focus on SMBs")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 epics got=%d", len(got))
	}
	for _, ep := range got {
		if !ep.GeneratedByLLM || ep.Status != types.EpicDraft {
			t.Fatalf("generated epic flags: %+v", ep)
		}
	}
	if e.gateway.calls[0] != "generate_epics" {
		t.Fatalf("operation: %v", e.gateway.calls)
	}
	if n := e.countRevisions(t, types.KindEpic); n != 2 {
		t.Fatalf("revisions: %d", n)
	}
}

func TestGenerateEmptyParseIsNotAnError(t *testing.T) {
	e := newEnv(t)
	e.gateway.out = "```json\n{\"nope\": 1}\n```"
	got, err := e.epics.GenerateForProduct(e.ctx, e.ownerID(), e.product.ID, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want none got=%d", len(got))
	}
}

func TestGenerateGatewayFailure(t *testing.T) {
	e := newEnv(t)
	e.gateway.err = llm.ErrGatewayTimeout
	_, err := e.epics.GenerateForProduct(e.ctx, e.ownerID(), e.product.ID, "")
	status, code := apiCode(t, err)
	if status != http.StatusInternalServerError || code != "generation_failed" {
		t.Fatalf("want 500 generation_failed got=%d %s", status, code)
	}
	if !errors.Is(err, llm.ErrGatewayTimeout) {
		t.Fatalf("cause lost: %v", err)
	}

	if _, err := e.epics.GenerateForProduct(e.ctx, e.ownerID(), uuid.New(), ""); err == nil {
		t.Fatalf("missing product should fail")
	} else if status, _ := apiCode(t, err); status != http.StatusNotFound {
		t.Fatalf("missing product: %d", status)
	}
}

func TestGenerateStoriesForProductWithoutEpic(t *testing.T) {
	e := newEnv(t)
	e.gateway.out = `{"user_stories":[{"story":"As a buyer, I want to filter by size, so that I find shoes fast","priority":"Alta"}]}`
	got, err := e.stories.GenerateForProduct(e.ctx, e.ownerID(), e.product.ID, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("want 1 got=%d", len(got))
	}
	st := got[0]
	if st.EpicID != nil || st.Actor != "buyer" || st.Priority != types.PriorityHigh || !st.GeneratedByLLM {
		t.Fatalf("story: %+v", st)
	}
}

func TestGenerateRequirementsAttachesCriteriaToLast(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityHigh)
	e.gateway.out = `{"functional_requirements":[{"requirement":"Validate card number"},{"requirement":"Store token"}],
	"acceptance_criteria":[{"scenario":"Valid card","given":"a valid card","when":"saved","then":"a token exists"}]}`

	got, err := e.reqs.GenerateForStory(e.ctx, e.ownerID(), st.ID, "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("want 2 got=%d", len(got))
	}
	if strings.Contains(got[0].Description, "Acceptance Criteria") {
		t.Fatalf("criteria attached to first requirement")
	}
	if !strings.HasPrefix(got[1].Description, "Store token\n\nAcceptance Criteria:") || !strings.Contains(got[1].Description, "Given a valid card") {
		t.Fatalf("last requirement: %q", got[1].Description)
	}
	revs, _ := e.revisions.List(e.ctx, types.KindRequirement, got[1].ID)
	if len(revs) != 1 {
		t.Fatalf("want one revision for the annotated requirement got=%d", len(revs))
	}
}

func TestEpicStatsProgress(t *testing.T) {
	e := newEnv(t)
	epic := e.mustEpic(t, "Stats")
	stats, err := e.epics.Stats(e.ctx, epic.ID)
	if err != nil || stats.Progress != 0 || stats.TotalRequirements != 0 {
		t.Fatalf("empty stats: %+v %v", stats, err)
	}

	st := e.mustStory(t, &epic.ID, types.PriorityHigh)
	r1 := e.mustRequirement(t, st.ID, "one")
	e.mustRequirement(t, st.ID, "two")
	e.mustRequirement(t, st.ID, "three")
	done := types.RequirementDone
	if _, err := e.reqs.Update(e.ctx, e.ownerID(), r1.ID, RequirementPatch{Status: &done}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	stats, err = e.epics.Stats(e.ctx, epic.ID)
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.TotalStories != 1 || stats.TotalRequirements != 3 || stats.DoneRequirements != 1 || stats.Progress != 33 {
		t.Fatalf("stats: %+v", stats)
	}
	n, err := e.stories.RequirementCount(e.ctx, st.ID)
	if err != nil || n != 3 {
		t.Fatalf("RequirementCount: %d %v", n, err)
	}
}

func TestSuggestPriority(t *testing.T) {
	e := newEnv(t)
	st := e.mustStory(t, nil, types.PriorityLow)

	e.gateway.out = `{"priority_analysis":{"priority":"Must-have","justification":"core flow"}}`
	got, err := e.stories.SuggestPriority(e.ctx, st.ID)
	if err != nil || got.Priority != types.PriorityCritical || !got.Recognized {
		t.Fatalf("must-have: %+v %v", got, err)
	}

	e.gateway.out = "no idea"
	got, err = e.stories.SuggestPriority(e.ctx, st.ID)
	if err != nil || got.Priority != types.PriorityMedium || got.Recognized {
		t.Fatalf("fallback: %+v %v", got, err)
	}

	cur, _ := e.r.UserStory.GetByID(dbctx.Of(e.ctx), st.ID)
	if cur.Priority != types.PriorityLow {
		t.Fatalf("suggestion must not persist")
	}
}
