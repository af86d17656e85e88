package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/productforge-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:           uuid.New(),
		Username:     email,
		Email:        email,
		PasswordHash: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, ownerID uuid.UUID, name string) *types.Product {
	tb.Helper()
	p := &types.Product{
		ID:               uuid.New(),
		Name:             name,
		Description:      name + " description",
		ValueProposition: "saves time",
		OwnerID:          ownerID,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedEpic(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, title string) *types.Epic {
	tb.Helper()
	e := &types.Epic{
		ID:        uuid.New(),
		ProductID: productID,
		Title:     title,
		Status:    types.EpicDraft,
	}
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed epic: %v", err)
	}
	return e
}

// SeedStory creates a story; createdAt pins ordering when non-zero.
func SeedStory(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, epicID *uuid.UUID, prio types.Priority, createdAt time.Time) *types.UserStory {
	tb.Helper()
	s := &types.UserStory{
		ID:        uuid.New(),
		ProductID: productID,
		EpicID:    epicID,
		Actor:     "shopper",
		Action:    "pay with a saved card",
		Benefit:   "checkout is faster",
		Priority:  prio,
		Status:    types.StoryDraft,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed story: %v", err)
	}
	return s
}

func SeedRequirement(tb testing.TB, ctx context.Context, tx *gorm.DB, storyID uuid.UUID, prio types.Priority, createdAt time.Time) *types.Requirement {
	tb.Helper()
	r := &types.Requirement{
		ID:          uuid.New(),
		UserStoryID: storyID,
		Description: "the system stores the card token",
		Priority:    prio,
		Status:      types.RequirementDraft,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	if err := tx.WithContext(ctx).Create(r).Error; err != nil {
		tb.Fatalf("seed requirement: %v", err)
	}
	return r
}
