package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos"
	"github.com/yungbote/productforge-backend/internal/generation/prompts"
	"github.com/yungbote/productforge-backend/internal/observability"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
	"github.com/yungbote/productforge-backend/internal/services"
)

type Services struct {
	Auth         services.AuthService
	Products     services.ProductService
	Personas     services.PersonaService
	Revisions    services.RevisionService
	Backlog      services.BacklogService
	Epics        services.EpicService
	Stories      services.UserStoryService
	Requirements services.RequirementService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r repos.Repos, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	set, err := prompts.Load()
	if err != nil {
		return Services{}, err
	}
	revisions := services.NewRevisionService(db, log, r)
	backlog := services.NewBacklogService(db, log, r, revisions, clients.Cache, clients.Archive, metrics)
	return Services{
		Auth:         services.NewAuthService(db, log, r.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Products:     services.NewProductService(db, log, r),
		Personas:     services.NewPersonaService(db, log, r),
		Revisions:    revisions,
		Backlog:      backlog,
		Epics:        services.NewEpicService(db, log, r, revisions, backlog, clients.Gateway, set, metrics),
		Stories:      services.NewUserStoryService(db, log, r, revisions, backlog, clients.Gateway, set, metrics),
		Requirements: services.NewRequirementService(db, log, r, revisions, backlog, clients.Gateway, set, metrics),
	}, nil
}
