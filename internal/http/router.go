package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/productforge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/productforge-backend/internal/http/middleware"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	Tracing     bool
	CORSOrigins []string

	AuthHandler    *httpH.AuthHandler
	AuthMiddleware *httpMW.AuthMiddleware

	ProductHandler     *httpH.ProductHandler
	EpicHandler        *httpH.EpicHandler
	StoryHandler       *httpH.StoryHandler
	RequirementHandler *httpH.RequirementHandler
	BacklogHandler     *httpH.BacklogHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins...))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Products and personas
		if h := cfg.ProductHandler; h != nil {
			protected.GET("/products", h.List)
			protected.POST("/products", h.Create)
			protected.GET("/products/:id", h.Get)
			protected.PATCH("/products/:id", h.Update)
			protected.DELETE("/products/:id", h.Delete)
			protected.GET("/products/:id/personas", h.ListPersonas)
			protected.POST("/products/:id/personas", h.CreatePersona)
			protected.DELETE("/personas/:id", h.DeletePersona)
		}

		// Epics
		if h := cfg.EpicHandler; h != nil {
			protected.GET("/epics", h.ListMine)
			protected.GET("/products/:id/epics", h.ListByProduct)
			protected.POST("/products/:id/epics", h.Create)
			protected.POST("/products/:id/epics/generate", h.Generate)
			protected.GET("/epics/:id", h.Get)
			protected.PATCH("/epics/:id", h.Update)
			protected.DELETE("/epics/:id", h.Delete)
			protected.GET("/epics/:id/stats", h.Stats)
		}

		// User stories
		if h := cfg.StoryHandler; h != nil {
			protected.GET("/stories", h.ListMine)
			protected.GET("/epics/:id/stories", h.ListByEpic)
			protected.POST("/epics/:id/stories", h.CreateForEpic)
			protected.POST("/epics/:id/stories/generate", h.GenerateForEpic)
			protected.GET("/products/:id/stories", h.ListByProduct)
			protected.POST("/products/:id/stories", h.CreateForProduct)
			protected.POST("/products/:id/stories/generate", h.GenerateForProduct)
			protected.GET("/stories/:id", h.Get)
			protected.PATCH("/stories/:id", h.Update)
			protected.DELETE("/stories/:id", h.Delete)
			protected.GET("/stories/:id/requirements-count", h.RequirementCount)
			protected.POST("/stories/:id/suggest-priority", h.SuggestPriority)
		}

		// Requirements
		if h := cfg.RequirementHandler; h != nil {
			protected.GET("/requirements", h.ListMine)
			protected.GET("/stories/:id/requirements", h.ListByStory)
			protected.POST("/stories/:id/requirements", h.Create)
			protected.POST("/stories/:id/requirements/generate", h.Generate)
			protected.GET("/requirements/:id", h.Get)
			protected.PATCH("/requirements/:id", h.Update)
			protected.DELETE("/requirements/:id", h.Delete)
		}

		// Backlog and history
		if h := cfg.BacklogHandler; h != nil {
			protected.GET("/backlogs", h.ListMine)
			protected.GET("/products/:id/backlog", h.View)
			protected.POST("/products/:id/backlog/refresh", h.Refresh)
			protected.GET("/revisions/:kind/:id", h.Revisions)
		}
	}

	return r
}
