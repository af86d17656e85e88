package planning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product is the root of the artifact tree. Deleting it removes every descendant.
type Product struct {
	ID                uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name              string    `gorm:"column:name;type:varchar(255);not null" json:"name"`
	Description       string    `gorm:"column:description;type:text" json:"description"`
	ValueProposition  string    `gorm:"column:value_proposition;type:text" json:"value_proposition"`
	ChannelsPlatforms string    `gorm:"column:channels_platforms;type:text" json:"channels_platforms"`
	OwnerID           uuid.UUID `gorm:"type:uuid;column:owner_id;not null;index" json:"owner_id"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Product) TableName() string { return "product" }

func (p *Product) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Persona is read-only input to generation prompts.
type Persona struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProductID    uuid.UUID `gorm:"type:uuid;column:product_id;not null;index" json:"product_id"`
	Name         string    `gorm:"column:name;type:varchar(100);not null" json:"name"`
	Description  string    `gorm:"column:description;type:text" json:"description"`
	Demographics string    `gorm:"column:demographics;type:text" json:"demographics"`
	Goals        string    `gorm:"column:goals;type:text" json:"goals"`
	PainPoints   string    `gorm:"column:pain_points;type:text" json:"pain_points"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (Persona) TableName() string { return "persona" }

func (p *Persona) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
