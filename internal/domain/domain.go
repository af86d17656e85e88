package domain

import (
	"github.com/yungbote/productforge-backend/internal/domain/planning"
	"github.com/yungbote/productforge-backend/internal/domain/user"
)

type (
	User = user.User

	Product     = planning.Product
	Persona     = planning.Persona
	Epic        = planning.Epic
	UserStory   = planning.UserStory
	Requirement = planning.Requirement
	Backlog     = planning.Backlog
	Revision    = planning.Revision

	BacklogEntry      = planning.BacklogEntry
	Priority          = planning.Priority
	EpicStatus        = planning.EpicStatus
	StoryStatus       = planning.StoryStatus
	RequirementStatus = planning.RequirementStatus
	ArtifactKind      = planning.ArtifactKind
)

const (
	PriorityLow      = planning.PriorityLow
	PriorityMedium   = planning.PriorityMedium
	PriorityHigh     = planning.PriorityHigh
	PriorityCritical = planning.PriorityCritical

	EpicDraft    = planning.EpicDraft
	EpicInReview = planning.EpicInReview
	EpicApproved = planning.EpicApproved

	StoryDraft    = planning.StoryDraft
	StoryInReview = planning.StoryInReview
	StoryApproved = planning.StoryApproved
	StoryRejected = planning.StoryRejected

	RequirementDraft       = planning.RequirementDraft
	RequirementApproved    = planning.RequirementApproved
	RequirementImplemented = planning.RequirementImplemented
	RequirementDone        = planning.RequirementDone

	KindEpic        = planning.KindEpic
	KindUserStory   = planning.KindUserStory
	KindRequirement = planning.KindRequirement
	KindBacklog     = planning.KindBacklog

	EntryUserStory   = planning.EntryUserStory
	EntryRequirement = planning.EntryRequirement
)

// AllModels lists every table AutoMigrateAll creates.
func AllModels() []any {
	return []any{
		&User{},
		&Product{},
		&Persona{},
		&Epic{},
		&UserStory{},
		&Requirement{},
		&Backlog{},
		&Revision{},
	}
}
