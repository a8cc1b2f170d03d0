package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Aspiration is an org-scoped growth value a teammate reviews against.
// Aspirations are looked up, never created, by the check-in engine.
type Aspiration struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	Name           string        `gorm:"column:name;not null" json:"name"`
	Description    string        `gorm:"column:description;type:text" json:"description,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Aspiration) TableName() string { return "aspirations" }
