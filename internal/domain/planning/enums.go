package planning

// Priority is shared by UserStory and Requirement.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

// Rank orders priorities for the backlog. Missing or unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

func (p Priority) Valid() bool { return p.Rank() > 0 }

type EpicStatus string

const (
	EpicDraft    EpicStatus = "draft"
	EpicInReview EpicStatus = "in_review"
	EpicApproved EpicStatus = "approved"
)

func (s EpicStatus) Valid() bool {
	switch s {
	case EpicDraft, EpicInReview, EpicApproved:
		return true
	}
	return false
}

type StoryStatus string

const (
	StoryDraft    StoryStatus = "draft"
	StoryInReview StoryStatus = "in_review"
	StoryApproved StoryStatus = "approved"
	StoryRejected StoryStatus = "rejected"
)

func (s StoryStatus) Valid() bool {
	switch s {
	case StoryDraft, StoryInReview, StoryApproved, StoryRejected:
		return true
	}
	return false
}

type RequirementStatus string

const (
	RequirementDraft       RequirementStatus = "draft"
	RequirementApproved    RequirementStatus = "approved"
	RequirementImplemented RequirementStatus = "implemented"
	RequirementDone        RequirementStatus = "done"
)

func (s RequirementStatus) Valid() bool {
	switch s {
	case RequirementDraft, RequirementApproved, RequirementImplemented, RequirementDone:
		return true
	}
	return false
}

// ArtifactKind discriminates the polymorphic Revision reference.
type ArtifactKind string

const (
	KindEpic        ArtifactKind = "epic"
	KindUserStory   ArtifactKind = "user_story"
	KindRequirement ArtifactKind = "requirement"
	KindBacklog     ArtifactKind = "backlog"
)

func (k ArtifactKind) Valid() bool {
	switch k {
	case KindEpic, KindUserStory, KindRequirement, KindBacklog:
		return true
	}
	return false
}
