package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/productforge-backend/internal/data/repos/planning"
	"github.com/yungbote/productforge-backend/internal/data/repos/user"
	"github.com/yungbote/productforge-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type ProductRepo = planning.ProductRepo
type PersonaRepo = planning.PersonaRepo
type EpicRepo = planning.EpicRepo
type UserStoryRepo = planning.UserStoryRepo
type RequirementRepo = planning.RequirementRepo
type BacklogRepo = planning.BacklogRepo
type RevisionRepo = planning.RevisionRepo

// Repos is the full set handed to the service layer.
type Repos struct {
	User        UserRepo
	Product     ProductRepo
	Persona     PersonaRepo
	Epic        EpicRepo
	UserStory   UserStoryRepo
	Requirement RequirementRepo
	Backlog     BacklogRepo
	Revision    RevisionRepo
}

func New(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		User:        user.NewUserRepo(db, log),
		Product:     planning.NewProductRepo(db, log),
		Persona:     planning.NewPersonaRepo(db, log),
		Epic:        planning.NewEpicRepo(db, log),
		UserStory:   planning.NewUserStoryRepo(db, log),
		Requirement: planning.NewRequirementRepo(db, log),
		Backlog:     planning.NewBacklogRepo(db, log),
		Revision:    planning.NewRevisionRepo(db, log),
	}
}
