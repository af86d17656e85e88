package planning

import (
	"context"
	"testing"

	"gorm.io/datatypes"

	"github.com/yungbote/productforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
)

func TestBacklogRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewBacklogRepo(db, testutil.Logger(t))

	u := testutil.SeedUser(t, ctx, tx, "backlog@example.com")
	p := testutil.SeedProduct(t, ctx, tx, u.ID, "shop")

	if got, err := repo.GetByProduct(dbc, p.ID); err != nil || got != nil {
		t.Fatalf("GetByProduct before create: err=%v row=%v", err, got)
	}
	b, err := repo.Create(dbc, &types.Backlog{ProductID: p.ID, Name: "Product Backlog shop", Content: datatypes.JSON(`[]`)})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.UpdateFields(dbc, b.ID, map[string]interface{}{"content": datatypes.JSON(`[{"type":"user_story"}]`)}); err != nil {
		t.Fatalf("UpdateFields: %v", err)
	}
	got, err := repo.GetByProduct(dbc, p.ID)
	if err != nil || got == nil || string(got.Content) != `[{"type":"user_story"}]` {
		t.Fatalf("GetByProduct: err=%v row=%+v", err, got)
	}
	list, err := repo.ListByOwner(dbc, u.ID)
	if err != nil || len(list) != 1 {
		t.Fatalf("ListByOwner: err=%v len=%d", err, len(list))
	}
}
