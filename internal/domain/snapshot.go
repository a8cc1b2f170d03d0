package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MaapSnapshot is the append-only audit record created once per
// finalization batch. CapturedValues duplicates the field values committed
// at finalization; each finalized check-in points back via MaapSnapshotID.
// Rows are never updated after creation except for the one-shot employee
// acknowledgement columns.
type MaapSnapshot struct {
	ID            uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TeammateID    uuid.UUID `gorm:"type:uuid;not null;index" json:"teammate_id"`
	Teammate      *Teammate `gorm:"constraint:OnDelete:CASCADE;foreignKey:TeammateID;references:ID" json:"teammate,omitempty"`
	FinalizedByID uuid.UUID `gorm:"type:uuid;not null" json:"finalized_by_id"`
	FinalizedBy   *Person   `gorm:"foreignKey:FinalizedByID;references:ID" json:"finalized_by,omitempty"`

	Reason         string         `gorm:"column:reason;type:text" json:"reason,omitempty"`
	CapturedValues datatypes.JSON `gorm:"column:captured_values;type:jsonb;not null" json:"captured_values"`
	RequestInfo    datatypes.JSON `gorm:"column:request_info;type:jsonb" json:"request_info,omitempty"`

	EmployeeAcknowledgedAt     *time.Time     `gorm:"column:employee_acknowledged_at" json:"employee_acknowledged_at,omitempty"`
	AcknowledgementRequestInfo datatypes.JSON `gorm:"column:acknowledgement_request_info;type:jsonb" json:"acknowledgement_request_info,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (MaapSnapshot) TableName() string { return "maap_snapshots" }

// RequestInfo is the request metadata stamped onto snapshots and
// acknowledgements.
type RequestInfo struct {
	IP        string    `json:"ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	At        time.Time `json:"at"`
}
