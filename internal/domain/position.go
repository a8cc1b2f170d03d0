package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Position struct {
	ID             uuid.UUID     `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	OrganizationID uuid.UUID     `gorm:"type:uuid;not null;index" json:"organization_id"`
	Organization   *Organization `gorm:"constraint:OnDelete:CASCADE;foreignKey:OrganizationID;references:ID" json:"organization,omitempty"`
	Title          string        `gorm:"column:title;not null" json:"title"`
	CreatedAt      time.Time     `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt      time.Time     `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Position) TableName() string { return "positions" }

// EmploymentTenure is a teammate's time-bounded occupancy of a position.
// A nil EndedOn means the tenure is active; the active tenure is the
// subject of position check-ins.
type EmploymentTenure struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeammateID uuid.UUID  `gorm:"type:uuid;not null;index" json:"teammate_id"`
	Teammate   *Teammate  `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeammateID;references:ID" json:"teammate,omitempty"`
	PositionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"position_id"`
	Position   *Position  `gorm:"constraint:OnDelete:CASCADE;foreignKey:PositionID;references:ID" json:"position,omitempty"`
	StartedOn  time.Time  `gorm:"type:date;not null" json:"started_on"`
	EndedOn    *time.Time `gorm:"type:date;index" json:"ended_on,omitempty"`
	CreatedAt  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (EmploymentTenure) TableName() string { return "employment_tenures" }

func (t *EmploymentTenure) Active() bool { return t != nil && t.EndedOn == nil }

const (
	PositionAssignmentRequired  = "required"
	PositionAssignmentSuggested = "suggested"
)

// PositionAssignment links an assignment to a position as required or
// suggested work. A teammate holding the position may open a check-in on
// the assignment before ever holding an assignment tenure for it.
type PositionAssignment struct {
	ID           uuid.UUID   `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	PositionID   uuid.UUID   `gorm:"type:uuid;not null;index" json:"position_id"`
	Position     *Position   `gorm:"constraint:OnDelete:CASCADE;foreignKey:PositionID;references:ID" json:"position,omitempty"`
	AssignmentID uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	Relation     string      `gorm:"column:relation;not null;default:'suggested'" json:"relation"`
	CreatedAt    time.Time   `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"not null;default:now()" json:"updated_at"`
}

func (PositionAssignment) TableName() string { return "position_assignments" }
