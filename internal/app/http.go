package app

import (
	"context"

	"github.com/yungbote/productforge-backend/internal/http"
	httpH "github.com/yungbote/productforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/productforge-backend/internal/http/middleware"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health      *httpH.HealthHandler
	Auth        *httpH.AuthHandler
	Product     *httpH.ProductHandler
	Epic        *httpH.EpicHandler
	Story       *httpH.StoryHandler
	Requirement *httpH.RequirementHandler
	Backlog     *httpH.BacklogHandler
}

func wireHandlers(log *logger.Logger, services Services, ping func(context.Context) error) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:      httpH.NewHealthHandler(ping),
		Auth:        httpH.NewAuthHandler(log, services.Auth),
		Product:     httpH.NewProductHandler(log, services.Products, services.Personas),
		Epic:        httpH.NewEpicHandler(log, services.Epics),
		Story:       httpH.NewStoryHandler(log, services.Stories),
		Requirement: httpH.NewRequirementHandler(log, services.Requirements),
		Backlog:     httpH.NewBacklogHandler(log, services.Backlog, services.Revisions),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *http.Server {
	return http.NewServer(http.RouterConfig{
		Log:                log,
		Metrics:            metrics,
		ServiceName:        cfg.OtelServiceName,
		Tracing:            cfg.OtelEnabled,
		CORSOrigins:        cfg.CORSOrigins,
		HealthHandler:      handlers.Health,
		AuthHandler:        handlers.Auth,
		AuthMiddleware:     middleware.Auth,
		ProductHandler:     handlers.Product,
		EpicHandler:        handlers.Epic,
		StoryHandler:       handlers.Story,
		RequirementHandler: handlers.Requirement,
		BacklogHandler:     handlers.Backlog,
	})
}
