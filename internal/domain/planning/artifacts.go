package planning

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Epic struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID      uuid.UUID  `gorm:"type:uuid;column:product_id;not null;index" json:"product_id"`
	Title          string     `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Description    string     `gorm:"column:description;type:text" json:"description"`
	Status         EpicStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	GeneratedByLLM bool       `gorm:"column:generated_by_llm;not null" json:"generated_by_llm"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Epic) TableName() string { return "epic" }

func (e *Epic) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// UserStory carries ProductID even when EpicID is set; the two must agree.
type UserStory struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID      uuid.UUID   `gorm:"type:uuid;column:product_id;not null;index" json:"product_id"`
	EpicID         *uuid.UUID  `gorm:"type:uuid;column:epic_id;index" json:"epic_id,omitempty"`
	Actor          string      `gorm:"column:actor;type:varchar(100);not null" json:"actor"`
	Action         string      `gorm:"column:action;type:text;not null" json:"action"`
	Benefit        string      `gorm:"column:benefit;type:text;not null" json:"benefit"`
	Priority       Priority    `gorm:"column:priority;type:varchar(20);index" json:"priority"`
	Status         StoryStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	GeneratedByLLM bool        `gorm:"column:generated_by_llm;not null" json:"generated_by_llm"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (UserStory) TableName() string { return "user_story" }

func (s *UserStory) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Sentence renders the story in its canonical narrative form.
func (s *UserStory) Sentence() string {
	return fmt.Sprintf("As a %s, I want %s, so that %s.", s.Actor, s.Action, s.Benefit)
}

type Requirement struct {
	ID             uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserStoryID    uuid.UUID         `gorm:"type:uuid;column:user_story_id;not null;index" json:"user_story_id"`
	Description    string            `gorm:"column:description;type:text;not null" json:"description"`
	Priority       Priority          `gorm:"column:priority;type:varchar(20);index" json:"priority"`
	Status         RequirementStatus `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	GeneratedByLLM bool              `gorm:"column:generated_by_llm;not null" json:"generated_by_llm"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Requirement) TableName() string { return "requirement" }

func (r *Requirement) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
