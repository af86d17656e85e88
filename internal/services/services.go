// Package services holds the artifact services, the revision log, the backlog
// aggregator and the account glue. Every multi-row write runs in one gorm
// transaction; backlog refreshes run after commit.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
)

// BacklogRefresher is the post-commit hook artifact services call. It must
// never fail the caller.
type BacklogRefresher interface {
	AutoRefresh(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) *types.Backlog
}

func parentNotFound(what string) error {
	return apierr.Validation("parent_not_found", "%s not found", what)
}

func generationFailed(err error) error {
	return apierr.New(http.StatusInternalServerError, "generation_failed", err)
}

func required(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return apierr.Validation("", "%s is required", field)
	}
	return nil
}

func toJSON(v any) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return datatypes.JSON(b), nil
}

// changeSet collects the fields a patch actually changes.
type changeSet struct {
	fields  []string
	updates map[string]interface{}
}

func newChangeSet() *changeSet {
	return &changeSet{updates: map[string]interface{}{}}
}

func (c *changeSet) empty() bool { return len(c.fields) == 0 }

func (c *changeSet) description() string {
	return "updated: " + strings.Join(c.fields, ", ")
}

// text records a string field. A present but blank value is rejected when
// the field is mandatory.
func (c *changeSet) text(field string, cur string, next *string, mandatory bool) error {
	if next == nil {
		return nil
	}
	v := strings.TrimSpace(*next)
	if mandatory && v == "" {
		return apierr.Validation("", "%s cannot be empty", field)
	}
	if v != cur {
		c.fields = append(c.fields, field)
		c.updates[field] = v
	}
	return nil
}

type validatable interface {
	comparable
	Valid() bool
}

func enumField[T validatable](c *changeSet, field string, cur T, next *T) error {
	if next == nil {
		return nil
	}
	if !(*next).Valid() {
		return apierr.Validation("", "invalid %s %v", field, *next)
	}
	if *next != cur {
		c.fields = append(c.fields, field)
		c.updates[field] = *next
	}
	return nil
}

func (c *changeSet) has(field string) bool {
	_, ok := c.updates[field]
	return ok
}

// priorityOrDefault maps an empty priority to medium.
func priorityOrDefault(p types.Priority) (types.Priority, error) {
	if p == "" {
		return types.PriorityMedium, nil
	}
	if !p.Valid() {
		return "", apierr.Validation("", "invalid priority %q", p)
	}
	return p, nil
}
