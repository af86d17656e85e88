package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/data/repos/testutil"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.Create(dbc, []*types.User{
		{Username: "ada", Email: "ada@example.com", PasswordHash: "x"},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 1 || created[0].ID == uuid.Nil {
		t.Fatalf("Create: expected 1 user with id, got %+v", created)
	}

	byID, err := repo.GetByID(dbc, created[0].ID)
	if err != nil || byID == nil || byID.Username != "ada" {
		t.Fatalf("GetByID: got=%+v err=%v", byID, err)
	}

	byEmail, err := repo.GetByEmail(dbc, "  ADA@example.com ")
	if err != nil || byEmail == nil || byEmail.ID != created[0].ID {
		t.Fatalf("GetByEmail: got=%+v err=%v", byEmail, err)
	}

	byName, err := repo.GetByUsername(dbc, "ada")
	if err != nil || byName == nil || byName.ID != created[0].ID {
		t.Fatalf("GetByUsername: got=%+v err=%v", byName, err)
	}

	missing, err := repo.GetByUsername(dbc, "grace")
	if err != nil || missing != nil {
		t.Fatalf("GetByUsername(missing): got=%+v err=%v", missing, err)
	}

	exists, err := repo.ExistsByEmailOrUsername(dbc, "other@example.com", "ada")
	if err != nil || !exists {
		t.Fatalf("ExistsByEmailOrUsername(username): exists=%v err=%v", exists, err)
	}
	exists, err = repo.ExistsByEmailOrUsername(dbc, "ada@example.com", "someone")
	if err != nil || !exists {
		t.Fatalf("ExistsByEmailOrUsername(email): exists=%v err=%v", exists, err)
	}
	exists, err = repo.ExistsByEmailOrUsername(dbc, "grace@example.com", "grace")
	if err != nil || exists {
		t.Fatalf("ExistsByEmailOrUsername(missing): exists=%v err=%v", exists, err)
	}
}
