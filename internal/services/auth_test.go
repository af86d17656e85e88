package services

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yungbote/productforge-backend/internal/data/repos/testutil"
	domainerrs "github.com/yungbote/productforge-backend/internal/pkg/errors"
)

func newAuth(t *testing.T) (AuthService, *env) {
	t.Helper()
	e := newEnv(t)
	return NewAuthService(e.db, testutil.Logger(t), e.r.User, "test-secret", time.Hour), e
}

func TestRegisterLoginParse(t *testing.T) {
	auth, e := newAuth(t)
	u, err := auth.Register(e.ctx, "ana", " Ana@Example.com ", "s3cret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Email != "ana@example.com" || u.PasswordHash == "s3cret" {
		t.Fatalf("user: %+v", u)
	}

	for _, login := range []string{"ana", "ana@example.com"} {
		tok, got, err := auth.Login(e.ctx, login, "s3cret")
		if err != nil {
			t.Fatalf("Login(%s): %v", login, err)
		}
		if got.ID != u.ID {
			t.Fatalf("Login(%s) returned another user", login)
		}
		id, err := auth.ParseToken(tok)
		if err != nil || id != u.ID {
			t.Fatalf("ParseToken: %v %v", id, err)
		}
	}
}

func TestRegisterConflictAndBadLogin(t *testing.T) {
	auth, e := newAuth(t)
	if _, err := auth.Register(e.ctx, "bob", "bob@example.com", "pw"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	_, err := auth.Register(e.ctx, "bob", "other@example.com", "pw")
	if status, code := apiCode(t, err); status != http.StatusConflict || code != "conflict" {
		t.Fatalf("duplicate: %d %s", status, code)
	}
	if !errors.Is(err, domainerrs.ErrConflict) {
		t.Fatalf("want ErrConflict: %v", err)
	}

	_, _, err = auth.Login(e.ctx, "bob", "wrong")
	if status, _ := apiCode(t, err); status != http.StatusUnauthorized {
		t.Fatalf("wrong password: %d", status)
	}
	_, _, err = auth.Login(e.ctx, "nobody", "pw")
	if status, _ := apiCode(t, err); status != http.StatusUnauthorized {
		t.Fatalf("unknown user: %d", status)
	}
	if _, err := auth.Register(e.ctx, "c", "not-an-email", "pw"); err == nil {
		t.Fatalf("invalid email accepted")
	}
}

func TestParseTokenRejects(t *testing.T) {
	auth, _ := newAuth(t)
	if _, err := auth.ParseToken(""); !errors.Is(err, domainerrs.ErrUnauthorized) {
		t.Fatalf("empty: %v", err)
	}

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"})
	signed, _ := foreign.SignedString([]byte("other-secret"))
	if _, err := auth.ParseToken(signed); err == nil {
		t.Fatalf("foreign signature accepted")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "b0f3a7c2-8a4e-4d55-9e6b-2f2d8c1e7a10",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
	})
	signed, _ = expired.SignedString([]byte("test-secret"))
	if _, err := auth.ParseToken(signed); err == nil {
		t.Fatalf("expired token accepted")
	}
	if auth.AccessTTL() != time.Hour {
		t.Fatalf("ttl: %v", auth.AccessTTL())
	}
}
