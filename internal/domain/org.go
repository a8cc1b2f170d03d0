package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Organization) TableName() string { return "organizations" }

type Person struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	FullName  string         `gorm:"column:full_name;not null" json:"full_name"`
	Email     string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Person) TableName() string { return "people" }

// Teammate is a person's membership in one organization. It is the owner
// side of every check-in record.
type Teammate struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	PersonID       uuid.UUID     `gorm:"type:uuid;not null;index" json:"person_id"`
	Person         *Person       `gorm:"constraint:OnDelete:CASCADE;foreignKey:PersonID;references:ID" json:"person,omitempty"`
	CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Teammate) TableName() string { return "teammates" }
