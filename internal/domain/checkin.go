package domain

import (
	"time"

	"github.com/google/uuid"
)

type CheckInKind string

const (
	CheckInKindPosition   CheckInKind = "position"
	CheckInKindAssignment CheckInKind = "assignment"
	CheckInKindAspiration CheckInKind = "aspiration"
)

// Agreement ratings used by assignment and aspiration check-ins. Position
// check-ins rate on a signed integer scale instead (see PositionRatingMin/Max).
const (
	RatingExceeding = "exceeding"
	RatingMeeting   = "meeting"
	RatingMissing   = "missing"
)

const (
	PositionRatingMin = -3
	PositionRatingMax = 3
)

func ValidAgreementRating(s string) bool {
	switch s {
	case RatingExceeding, RatingMeeting, RatingMissing:
		return true
	}
	return false
}

func ValidPositionRating(n int) bool {
	return n >= PositionRatingMin && n <= PositionRatingMax
}

// CheckInCore holds the fields every check-in variant shares: the teammate
// link, per-party notes, the two independently-settable completion
// timestamps, and the finalization columns. The finalization triple
// (OfficialCheckInCompletedAt, FinalizedByID, MaapSnapshotID) is set
// together, exactly once; a nil OfficialCheckInCompletedAt means the
// check-in is open.
type CheckInCore struct {
	ID                         uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeammateID                 uuid.UUID  `gorm:"type:uuid;not null;index" json:"teammate_id"`
	CheckInStartedOn           time.Time  `gorm:"type:date;not null" json:"check_in_started_on"`
	EmployeePrivateNotes       string     `gorm:"column:employee_private_notes;type:text" json:"employee_private_notes,omitempty"`
	ManagerPrivateNotes        string     `gorm:"column:manager_private_notes;type:text" json:"manager_private_notes,omitempty"`
	SharedNotes                string     `gorm:"column:shared_notes;type:text" json:"shared_notes,omitempty"`
	EmployeeCompletedAt        *time.Time `gorm:"column:employee_completed_at" json:"employee_completed_at,omitempty"`
	ManagerCompletedAt         *time.Time `gorm:"column:manager_completed_at" json:"manager_completed_at,omitempty"`
	ManagerCompletedByID       *uuid.UUID `gorm:"column:manager_completed_by_id;type:uuid" json:"manager_completed_by_id,omitempty"`
	OfficialCheckInCompletedAt *time.Time `gorm:"column:official_check_in_completed_at;index" json:"official_check_in_completed_at,omitempty"`
	FinalizedByID              *uuid.UUID `gorm:"column:finalized_by_id;type:uuid" json:"finalized_by_id,omitempty"`
	MaapSnapshotID             *uuid.UUID `gorm:"column:maap_snapshot_id;type:uuid;index" json:"maap_snapshot_id,omitempty"`
	CreatedAt                  time.Time  `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt                  time.Time  `gorm:"not null;default:now()" json:"updated_at"`
}

func (c *CheckInCore) Open() bool { return c.OfficialCheckInCompletedAt == nil }

func (c *CheckInCore) EmployeeComplete() bool { return c.EmployeeCompletedAt != nil }

func (c *CheckInCore) ManagerComplete() bool { return c.ManagerCompletedAt != nil }

func (c *CheckInCore) BothComplete() bool {
	return c.EmployeeCompletedAt != nil && c.ManagerCompletedAt != nil
}

// ReadyForFinalization: open AND both completion timestamps set.
func (c *CheckInCore) ReadyForFinalization() bool { return c.Open() && c.BothComplete() }

// CheckInRecord is the behavior the three variants share. Kind-specific
// logic (field validation, subject discovery, ordering) lives in strategy
// functions keyed off Kind, not in the models.
type CheckInRecord interface {
	Kind() CheckInKind
	Core() *CheckInCore
	SubjectID() uuid.UUID
}

type PositionCheckIn struct {
	CheckInCore `gorm:"embedded"`

	EmploymentTenureID uuid.UUID         `gorm:"type:uuid;not null;index" json:"employment_tenure_id"`
	EmploymentTenure   *EmploymentTenure `gorm:"constraint:OnDelete:CASCADE;foreignKey:EmploymentTenureID;references:ID" json:"employment_tenure,omitempty"`

	EmployeeRating *int `gorm:"column:employee_rating" json:"employee_rating,omitempty"`
	ManagerRating  *int `gorm:"column:manager_rating" json:"manager_rating,omitempty"`
	OfficialRating *int `gorm:"column:official_rating" json:"official_rating,omitempty"`
}

func (PositionCheckIn) TableName() string { return "position_check_ins" }

func (c *PositionCheckIn) Kind() CheckInKind    { return CheckInKindPosition }
func (c *PositionCheckIn) Core() *CheckInCore   { return &c.CheckInCore }
func (c *PositionCheckIn) SubjectID() uuid.UUID { return c.EmploymentTenureID }

type AssignmentCheckIn struct {
	CheckInCore `gorm:"embedded"`

	AssignmentID uuid.UUID   `gorm:"type:uuid;not null;index" json:"assignment_id"`
	Assignment   *Assignment `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`

	// Nil when the assignment is required/suggested by the position but the
	// teammate holds no tenure yet; the check-in is still valid.
	AssignmentTenureID *uuid.UUID        `gorm:"type:uuid;index" json:"assignment_tenure_id,omitempty"`
	AssignmentTenure   *AssignmentTenure `gorm:"constraint:OnDelete:SET NULL;foreignKey:AssignmentTenureID;references:ID" json:"assignment_tenure,omitempty"`

	EmployeeRating *string `gorm:"column:employee_rating" json:"employee_rating,omitempty"`
	ManagerRating  *string `gorm:"column:manager_rating" json:"manager_rating,omitempty"`
	OfficialRating *string `gorm:"column:official_rating" json:"official_rating,omitempty"`

	ActualEnergyPercentage    *int    `gorm:"column:actual_energy_percentage" json:"actual_energy_percentage,omitempty"`
	EmployeePersonalAlignment *string `gorm:"column:employee_personal_alignment" json:"employee_personal_alignment,omitempty"`
}

func (AssignmentCheckIn) TableName() string { return "assignment_check_ins" }

func (c *AssignmentCheckIn) Kind() CheckInKind    { return CheckInKindAssignment }
func (c *AssignmentCheckIn) Core() *CheckInCore   { return &c.CheckInCore }
func (c *AssignmentCheckIn) SubjectID() uuid.UUID { return c.AssignmentID }

type AspirationCheckIn struct {
	CheckInCore `gorm:"embedded"`

	AspirationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"aspiration_id"`
	Aspiration   *Aspiration `gorm:"constraint:OnDelete:CASCADE;foreignKey:AspirationID;references:ID" json:"aspiration,omitempty"`

	EmployeeRating *string `gorm:"column:employee_rating" json:"employee_rating,omitempty"`
	ManagerRating  *string `gorm:"column:manager_rating" json:"manager_rating,omitempty"`
	OfficialRating *string `gorm:"column:official_rating" json:"official_rating,omitempty"`
}

func (AspirationCheckIn) TableName() string { return "aspiration_check_ins" }

func (c *AspirationCheckIn) Kind() CheckInKind    { return CheckInKindAspiration }
func (c *AspirationCheckIn) Core() *CheckInCore   { return &c.CheckInCore }
func (c *AspirationCheckIn) SubjectID() uuid.UUID { return c.AspirationID }

// CompletionEvent is the payload handed to the notification bus when a
// check-in transitions to both-complete. The engine does not format or
// deliver the notification itself.
type CompletionEvent struct {
	CheckInID       uuid.UUID   `json:"check_in_id"`
	CheckInKind     CheckInKind `json:"check_in_kind"`
	CompletionState string      `json:"completion_state"`
	OrganizationID  uuid.UUID   `json:"organization_id"`
}
