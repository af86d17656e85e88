package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	types "github.com/yungbote/productforge-backend/internal/domain"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/apierr"
	"github.com/yungbote/productforge-backend/internal/platform/cache"
	"github.com/yungbote/productforge-backend/internal/platform/dbctx"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/platform/objectstore"
)

const backlogViewTTL = 10 * time.Minute

type BacklogView struct {
	ProductID uuid.UUID            `json:"product_id"`
	BacklogID uuid.UUID            `json:"backlog_id"`
	Name      string               `json:"name"`
	Items     []types.BacklogEntry `json:"items"`
	Total     int                  `json:"total"`
	UpdatedAt time.Time            `json:"updated_at"`
}

type BacklogService interface {
	BacklogRefresher
	// Refresh rebuilds the product's backlog. A revision is appended only
	// when userID is set.
	Refresh(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) (*types.Backlog, error)
	View(ctx context.Context, productID uuid.UUID) (*BacklogView, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Backlog, error)
}

type backlogService struct {
	db        *gorm.DB
	log       *logger.Logger
	r         repos.Repos
	access    access
	revisions RevisionService
	cache     cache.Cache
	archive   objectstore.Archiver
	metrics   *observability.Metrics
	now       func() time.Time
}

func NewBacklogService(
	db *gorm.DB,
	log *logger.Logger,
	r repos.Repos,
	revisions RevisionService,
	c cache.Cache,
	archive objectstore.Archiver,
	metrics *observability.Metrics,
) BacklogService {
	if c == nil {
		c = cache.NewMemory()
	}
	if archive == nil {
		archive = objectstore.Nop()
	}
	return &backlogService{
		db:        db,
		log:       log.With("service", "BacklogService"),
		r:         r,
		access:    access{r: r},
		revisions: revisions,
		cache:     c,
		archive:   archive,
		metrics:   metrics,
		now:       time.Now,
	}
}

func backlogViewKey(productID uuid.UUID) string {
	return "backlog:view:" + productID.String()
}

func stamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// buildEntries flattens stories and their requirements. Both slices must
// already be in backlog order.
func buildEntries(stories []*types.UserStory, reqs []*types.Requirement) []types.BacklogEntry {
	byStory := make(map[uuid.UUID][]*types.Requirement, len(stories))
	for _, r := range reqs {
		byStory[r.UserStoryID] = append(byStory[r.UserStoryID], r)
	}
	out := make([]types.BacklogEntry, 0, len(stories)+len(reqs))
	for _, s := range stories {
		productID := s.ProductID
		var epicID *uuid.UUID
		if s.EpicID != nil {
			id := *s.EpicID
			epicID = &id
		}
		out = append(out, types.BacklogEntry{
			Type:      types.EntryUserStory,
			ID:        s.ID,
			Text:      s.Sentence(),
			Actor:     s.Actor,
			Action:    s.Action,
			Benefit:   s.Benefit,
			Priority:  s.Priority,
			Status:    string(s.Status),
			EpicID:    epicID,
			ProductID: &productID,
			CreatedAt: stamp(s.CreatedAt),
			UpdatedAt: stamp(s.UpdatedAt),
		})
		for _, r := range byStory[s.ID] {
			storyID := r.UserStoryID
			out = append(out, types.BacklogEntry{
				Type:        types.EntryRequirement,
				ID:          r.ID,
				Description: r.Description,
				Priority:    r.Priority,
				Status:      string(r.Status),
				UserStoryID: &storyID,
				CreatedAt:   stamp(r.CreatedAt),
				UpdatedAt:   stamp(r.UpdatedAt),
			})
		}
	}
	return out
}

func (s *backlogService) Refresh(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) (*types.Backlog, error) {
	start := s.now()
	var (
		out   *types.Backlog
		items int
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}
		product, err := s.access.product(dbc, productID, userID)
		if err != nil {
			return err
		}
		if product == nil {
			return apierr.NotFound("product")
		}
		stories, err := s.r.UserStory.ListByProductPriorityOrder(dbc, productID)
		if err != nil {
			return fmt.Errorf("load stories: %w", err)
		}
		storyIDs := make([]uuid.UUID, len(stories))
		for i, st := range stories {
			storyIDs[i] = st.ID
		}
		reqs, err := s.r.Requirement.ListByStoryIDsPriorityOrder(dbc, storyIDs)
		if err != nil {
			return fmt.Errorf("load requirements: %w", err)
		}
		entries := buildEntries(stories, reqs)
		items = len(entries)
		content, err := toJSON(entries)
		if err != nil {
			return err
		}

		name := "Product Backlog " + product.Name
		existing, err := s.r.Backlog.GetByProduct(dbc, productID)
		if err != nil {
			return err
		}
		change := changeBacklogUpdated
		if existing == nil {
			change = changeBacklogGenerated
			created, err := s.r.Backlog.Create(dbc, &types.Backlog{
				ProductID:   productID,
				Name:        name,
				Description: "Backlog generated for product " + product.Name,
				Content:     content,
			})
			if err != nil {
				return fmt.Errorf("create backlog: %w", err)
			}
			out = created
		} else {
			if err := s.r.Backlog.UpdateFields(dbc, existing.ID, map[string]interface{}{
				"name":    name,
				"content": content,
			}); err != nil {
				return fmt.Errorf("update backlog: %w", err)
			}
			out, err = s.r.Backlog.GetByID(dbc, existing.ID)
			if err != nil {
				return err
			}
		}

		if userID != nil {
			snap := map[string]interface{}{
				"backlog_id":  out.ID,
				"product_id":  productID,
				"total_items": items,
				"content":     json.RawMessage(content),
			}
			if _, err := s.revisions.Append(dbc, types.KindBacklog, out.ID, snap, change, userID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.metrics.ObserveBacklogRefresh("error", s.now().Sub(start), 0)
		return nil, err
	}
	s.metrics.ObserveBacklogRefresh("ok", s.now().Sub(start), items)

	if err := s.cache.Delete(ctx, backlogViewKey(productID)); err != nil {
		s.log.Warn("backlog view invalidation failed", "product_id", productID, "error", err)
	}
	if err := s.archive.Put(ctx, objectstore.BacklogKey(productID.String(), out.UpdatedAt), out.Content, "application/json"); err != nil {
		s.log.Warn("backlog archive failed", "product_id", productID, "error", err)
	}
	s.log.Debug("backlog refreshed", "product_id", productID, "items", items)
	return out, nil
}

func (s *backlogService) AutoRefresh(ctx context.Context, productID uuid.UUID, userID *uuid.UUID) (out *types.Backlog) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("backlog auto-refresh panicked", "product_id", productID, "panic", fmt.Sprint(rec))
			out = nil
		}
	}()
	b, err := s.Refresh(ctx, productID, userID)
	if err != nil {
		s.log.Error("backlog auto-refresh failed", "product_id", productID, "user_id", userID, "error", err)
		return nil
	}
	return b
}

func (s *backlogService) View(ctx context.Context, productID uuid.UUID) (*BacklogView, error) {
	dbc := dbctx.Of(ctx)
	userID := requester(ctx)
	product, err := s.access.product(dbc, productID, userID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apierr.NotFound("product")
	}

	key := backlogViewKey(productID)
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var v BacklogView
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		s.log.Warn("discarding unreadable backlog view", "product_id", productID)
	} else if !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("backlog view cache read failed", "product_id", productID, "error", err)
	}

	row, err := s.r.Backlog.GetByProduct(dbc, productID)
	if err != nil {
		return nil, err
	}
	if row == nil {
		// First read computes the backlog without a revision.
		if row, err = s.Refresh(ctx, productID, nil); err != nil {
			return nil, err
		}
	}
	items := []types.BacklogEntry{}
	if len(row.Content) > 0 {
		if err := json.Unmarshal(row.Content, &items); err != nil {
			return nil, fmt.Errorf("decode backlog content: %w", err)
		}
	}
	v := &BacklogView{
		ProductID: productID,
		BacklogID: row.ID,
		Name:      row.Name,
		Items:     items,
		Total:     len(items),
		UpdatedAt: row.UpdatedAt,
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := s.cache.Set(ctx, key, raw, backlogViewTTL); err != nil {
			s.log.Warn("backlog view cache write failed", "product_id", productID, "error", err)
		}
	}
	return v, nil
}

func (s *backlogService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*types.Backlog, error) {
	return s.r.Backlog.ListByOwner(dbctx.Of(ctx), userID)
}
