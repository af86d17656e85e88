package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Backlog is the derived, per-product ordered snapshot. Content is replaced wholesale on refresh.
type Backlog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID   uuid.UUID      `gorm:"type:uuid;column:product_id;not null;uniqueIndex" json:"product_id"`
	Name        string         `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description string         `gorm:"column:description;type:text" json:"description"`
	Content     datatypes.JSON `gorm:"column:content;type:text;not null" json:"content"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;index" json:"updated_at"`
}

func (Backlog) TableName() string { return "backlog" }

func (b *Backlog) BeforeCreate(*gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// BacklogEntry is one flat record of Backlog.Content. Story entries fill the
// narrative fields, requirement entries fill Description and UserStoryID.
type BacklogEntry struct {
	Type        string     `json:"type"`
	ID          uuid.UUID  `json:"id"`
	Text        string     `json:"text,omitempty"`
	Actor       string     `json:"actor,omitempty"`
	Action      string     `json:"action,omitempty"`
	Benefit     string     `json:"benefit,omitempty"`
	Description string     `json:"description,omitempty"`
	Priority    Priority   `json:"priority"`
	Status      string     `json:"status"`
	EpicID      *uuid.UUID `json:"epic_id,omitempty"`
	ProductID   *uuid.UUID `json:"product_id,omitempty"`
	UserStoryID *uuid.UUID `json:"user_story_id,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

const (
	EntryUserStory   = "user_story"
	EntryRequirement = "requirement"
)

// Revision is an immutable snapshot of an artifact. ArtifactID has no foreign key;
// ArtifactKind says which table it points into.
type Revision struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ArtifactKind      ArtifactKind   `gorm:"column:artifact_kind;type:varchar(20);not null;index:idx_revision_artifact,priority:1" json:"artifact_kind"`
	ArtifactID        uuid.UUID      `gorm:"type:uuid;column:artifact_id;not null;index:idx_revision_artifact,priority:2" json:"artifact_id"`
	Content           datatypes.JSON `gorm:"column:content;type:text;not null" json:"content"`
	ChangeDescription string         `gorm:"column:change_description;type:text" json:"change_description"`
	UserID            *uuid.UUID     `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (Revision) TableName() string { return "revision" }

func (r *Revision) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
