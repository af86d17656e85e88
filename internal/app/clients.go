package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/cache"
	"github.com/yungbote/productforge-backend/internal/platform/llm"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/platform/objectstore"
)

// Clients are the outbound integrations. Redis and GCS are optional and
// fall back to an in-process cache and a no-op archive.
type Clients struct {
	Gateway *llm.Gateway
	Cache   cache.Cache
	Archive objectstore.Archiver
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")

	provider, err := llm.NewProvider(cfg.Provider())
	if err != nil {
		return Clients{}, fmt.Errorf("init llm provider: %w", err)
	}
	gateway := llm.NewGateway(log, provider, metrics, cfg.Gateway())

	c := cache.NewMemory()
	if strings.TrimSpace(cfg.RedisAddr) != "" {
		rc, err := cache.NewRedis(log, cfg.Redis())
		if err != nil {
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		c = rc
	} else {
		log.Info("REDIS_ADDR not set, using in-process backlog cache")
	}

	archive := objectstore.Nop()
	if strings.TrimSpace(cfg.GCSBucket) != "" {
		a, err := objectstore.NewGCS(ctx, log, cfg.ObjectStore())
		if err != nil {
			_ = c.Close()
			return Clients{}, fmt.Errorf("init backlog archive: %w", err)
		}
		archive = a
	}

	return Clients{Gateway: gateway, Cache: c, Archive: archive}, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Cache != nil {
		_ = c.Cache.Close()
	}
	if c.Archive != nil {
		_ = c.Archive.Close()
	}
}
