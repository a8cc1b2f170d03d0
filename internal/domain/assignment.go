package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Assignment struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	Title          string        `gorm:"column:title;not null" json:"title"`
	CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignments" }

// AssignmentTenure is a teammate's time-bounded hold on an assignment.
// AnticipatedEnergyPercentage drives the display ordering of assignment
// check-ins; it may be nil when never estimated.
type AssignmentTenure struct {
	ID                          uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeammateID                  uuid.UUID   `gorm:"type:uuid;not null;index" json:"teammate_id"`
	Teammate                    *Teammate   `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeammateID;references:ID" json:"teammate,omitempty"`
	AssignmentID                uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment                  *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	AnticipatedEnergyPercentage *int        `gorm:"column:anticipated_energy_percentage" json:"anticipated_energy_percentage,omitempty"`
	StartedOn                   time.Time   `gorm:"type:date;not null" json:"started_on"`
	EndedOn                     *time.Time  `gorm:"type:date;index" json:"ended_on,omitempty"`
	CreatedAt                   time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                   time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (AssignmentTenure) TableName() string { return "assignment_tenures" }

func (t *AssignmentTenure) Active() bool { return t != nil && t.EndedOn == nil }
