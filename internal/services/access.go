package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/ctxutil"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
)

// access resolves products and the artifacts hanging off them, hiding
// anything the requesting user does not own. A nil user sees everything.
type access struct {
	r repos.Repos
}

func (a access) product(dbc dbctx.Context, productID uuid.UUID, userID *uuid.UUID) (*types.Product, error) {
	p, err := a.r.Product.GetByID(dbc, productID)
	if err != nil || p == nil {
		return nil, err
	}
	if userID != nil && p.OwnerID != *userID {
		return nil, nil
	}
	return p, nil
}

func (a access) epic(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (*types.Epic, *types.Product, error) {
	e, err := a.r.Epic.GetByID(dbc, id)
	if err != nil || e == nil {
		return nil, nil, err
	}
	p, err := a.product(dbc, e.ProductID, userID)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return e, p, nil
}

func (a access) story(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (*types.UserStory, *types.Product, error) {
	s, err := a.r.UserStory.GetByID(dbc, id)
	if err != nil || s == nil {
		return nil, nil, err
	}
	p, err := a.product(dbc, s.ProductID, userID)
	if err != nil || p == nil {
		return nil, nil, err
	}
	return s, p, nil
}

func (a access) requirement(dbc dbctx.Context, id uuid.UUID, userID *uuid.UUID) (*types.Requirement, *types.UserStory, error) {
	r, err := a.r.Requirement.GetByID(dbc, id)
	if err != nil || r == nil {
		return nil, nil, err
	}
	s, _, err := a.story(dbc, r.UserStoryID, userID)
	if err != nil || s == nil {
		return nil, nil, err
	}
	return r, s, nil
}

// requester is the authenticated user behind ctx, nil for system work.
func requester(ctx context.Context) *uuid.UUID {
	return ctxutil.UserID(ctx)
}
