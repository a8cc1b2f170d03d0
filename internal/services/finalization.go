package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/apierr"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// FinalizeDecision is one per-check-in entry of a finalization batch.
// Finalize=false updates the official fields but leaves the check-in open.
// Blank values leave the stored field untouched.
type FinalizeDecision struct {
	Finalize               bool   `json:"finalize"`
	OfficialRating         string `json:"official_rating,omitempty"`
	SharedNotes            string `json:"shared_notes,omitempty"`
	ActualEnergyPercentage string `json:"actual_energy_percentage,omitempty"`
}

// FinalizeBatch maps check-in ids to decisions, keyed by kind.
type FinalizeBatch struct {
	Position   map[uuid.UUID]FinalizeDecision `json:"position"`
	Assignment map[uuid.UUID]FinalizeDecision `json:"assignment"`
	Aspiration map[uuid.UUID]FinalizeDecision `json:"aspiration"`
}

func (b FinalizeBatch) empty() bool {
	return len(b.Position) == 0 && len(b.Assignment) == 0 && len(b.Aspiration) == 0
}

// FinalizationService is the only mutation path allowed to set
// official_check_in_completed_at. A batch closes as one unit: the snapshot
// insert and every check-in update share one transaction, and any
// precondition failure aborts the whole batch.
type FinalizationService interface {
	Finalize(ctx context.Context, teammateID uuid.UUID, batch FinalizeBatch, finalizedByID uuid.UUID, reason string, req domain.RequestInfo) (*domain.MaapSnapshot, error)
	AcknowledgeSnapshot(ctx context.Context, snapshotID, personID uuid.UUID, req domain.RequestInfo) error
}

type finalizationService struct {
	db  *gorm.DB
	log *logger.Logger

	teammates          repos.TeammateRepo
	snapshots          repos.MaapSnapshotRepo
	positionCheckIns   *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func NewFinalizationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	teammates repos.TeammateRepo,
	snapshots repos.MaapSnapshotRepo,
	positionCheckIns *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn],
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn],
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn],
) FinalizationService {
	return &finalizationService{
		db:                 db,
		log:                baseLog.With("service", "FinalizationService"),
		teammates:          teammates,
		snapshots:          snapshots,
		positionCheckIns:   positionCheckIns,
		assignmentCheckIns: assignmentCheckIns,
		aspirationCheckIns: aspirationCheckIns,
	}
}

func (s *finalizationService) Finalize(ctx context.Context, teammateID uuid.UUID, batch FinalizeBatch, finalizedByID uuid.UUID, reason string, req domain.RequestInfo) (*domain.MaapSnapshot, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("finalization service not configured")
	}
	if teammateID == uuid.Nil || finalizedByID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	if batch.empty() {
		return nil, apierr.New(http.StatusBadRequest, "empty_finalization_batch",
			fmt.Errorf("%w: empty finalization batch", apperrors.ErrInvalidArgument))
	}

	now := time.Now().UTC()
	var snapshot *domain.MaapSnapshot

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		positions, err := lockBatch(dbc, s.positionCheckIns, teammateID, batch.Position)
		if err != nil {
			return err
		}
		assignments, err := lockBatch(dbc, s.assignmentCheckIns, teammateID, batch.Assignment)
		if err != nil {
			return err
		}
		aspirations, err := lockBatch(dbc, s.aspirationCheckIns, teammateID, batch.Aspiration)
		if err != nil {
			return err
		}

		captured := map[string][]map[string]any{}

		for _, rec := range positions {
			d := batch.Position[rec.ID]
			if verr := applyPositionDecision(rec, d); verr != nil {
				return verr
			}
			captured["position_check_ins"] = append(captured["position_check_ins"], capturePosition(rec, d))
		}
		for _, rec := range assignments {
			d := batch.Assignment[rec.ID]
			if verr := applyAssignmentDecision(rec, d); verr != nil {
				return verr
			}
			captured["assignment_check_ins"] = append(captured["assignment_check_ins"], captureAssignment(rec, d))
		}
		for _, rec := range aspirations {
			d := batch.Aspiration[rec.ID]
			if verr := applyAspirationDecision(rec, d); verr != nil {
				return verr
			}
			captured["aspiration_check_ins"] = append(captured["aspiration_check_ins"], captureAspiration(rec, d))
		}

		capturedJSON, err := json.Marshal(captured)
		if err != nil {
			return err
		}
		reqJSON, err := json.Marshal(req)
		if err != nil {
			return err
		}

		snapshot = &domain.MaapSnapshot{
			ID:             uuid.New(),
			TeammateID:     teammateID,
			FinalizedByID:  finalizedByID,
			Reason:         reason,
			CapturedValues: datatypes.JSON(capturedJSON),
			RequestInfo:    datatypes.JSON(reqJSON),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := s.snapshots.Create(dbc, snapshot); err != nil {
			return err
		}

		for _, rec := range positions {
			closeIfDecided(&rec.CheckInCore, batch.Position[rec.ID], snapshot.ID, finalizedByID, now)
			if err := s.positionCheckIns.Save(dbc, rec); err != nil {
				return err
			}
		}
		for _, rec := range assignments {
			closeIfDecided(&rec.CheckInCore, batch.Assignment[rec.ID], snapshot.ID, finalizedByID, now)
			if err := s.assignmentCheckIns.Save(dbc, rec); err != nil {
				return err
			}
		}
		for _, rec := range aspirations {
			closeIfDecided(&rec.CheckInCore, batch.Aspiration[rec.ID], snapshot.ID, finalizedByID, now)
			if err := s.aspirationCheckIns.Save(dbc, rec); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("finalization batch committed",
		"teammate_id", teammateID.String(),
		"snapshot_id", snapshot.ID.String(),
		"position_count", len(batch.Position),
		"assignment_count", len(batch.Assignment),
		"aspiration_count", len(batch.Aspiration),
	)
	return snapshot, nil
}

// lockBatch loads and row-locks every targeted check-in and verifies the
// batch preconditions before any write happens. Rows lock in id order so
// two concurrent batches over the same records cannot deadlock.
func lockBatch[T any, PT interface {
	*T
	domain.CheckInRecord
}](dbc dbctx.Context, repo *repos.CheckInRepo[T, PT], teammateID uuid.UUID, decisions map[uuid.UUID]FinalizeDecision) ([]PT, error) {
	ids := make([]uuid.UUID, 0, len(decisions))
	for id := range decisions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	out := make([]PT, 0, len(decisions))
	for _, id := range ids {
		d := decisions[id]
		rec, err := repo.LockByID(dbc, id)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, fmt.Errorf("%w: check-in %s", apperrors.ErrNotFound, id)
		}
		core := rec.Core()
		if core.TeammateID != teammateID {
			return nil, fmt.Errorf("%w: check-in %s", apperrors.ErrWrongTeammate, id)
		}
		if !core.Open() {
			return nil, fmt.Errorf("%w: check-in %s", apperrors.ErrCheckInFinalized, id)
		}
		if d.Finalize && !core.ReadyForFinalization() {
			return nil, fmt.Errorf("%w: check-in %s", apperrors.ErrNotReadyForFinalization, id)
		}
		out = append(out, rec)
	}
	return out, nil
}

func applyPositionDecision(rec *domain.PositionCheckIn, d FinalizeDecision) error {
	verr := &ValidationError{}
	if d.OfficialRating != "" {
		if n, ok := parsePositionRating("official_rating", d.OfficialRating, verr); ok {
			rec.OfficialRating = n
		}
	}
	if d.SharedNotes != "" {
		rec.SharedNotes = d.SharedNotes
	}
	if v := verr.orNil(); v != nil {
		return v
	}
	return nil
}

func applyAssignmentDecision(rec *domain.AssignmentCheckIn, d FinalizeDecision) error {
	verr := &ValidationError{}
	if d.OfficialRating != "" {
		if v, ok := parseAgreementRating("official_rating", d.OfficialRating, verr); ok {
			rec.OfficialRating = v
		}
	}
	if d.ActualEnergyPercentage != "" {
		n, err := strconv.Atoi(d.ActualEnergyPercentage)
		if err != nil || n < 0 || n > 100 {
			verr.add("actual_energy_percentage", "must be an integer between 0 and 100")
		} else {
			rec.ActualEnergyPercentage = &n
		}
	}
	if d.SharedNotes != "" {
		rec.SharedNotes = d.SharedNotes
	}
	if v := verr.orNil(); v != nil {
		return v
	}
	return nil
}

func applyAspirationDecision(rec *domain.AspirationCheckIn, d FinalizeDecision) error {
	verr := &ValidationError{}
	if d.OfficialRating != "" {
		if v, ok := parseAgreementRating("official_rating", d.OfficialRating, verr); ok {
			rec.OfficialRating = v
		}
	}
	if d.SharedNotes != "" {
		rec.SharedNotes = d.SharedNotes
	}
	if v := verr.orNil(); v != nil {
		return v
	}
	return nil
}

// closeIfDecided sets the finalization triple together, exactly once.
func closeIfDecided(core *domain.CheckInCore, d FinalizeDecision, snapshotID, finalizedByID uuid.UUID, now time.Time) {
	if !d.Finalize {
		return
	}
	ts := now
	core.OfficialCheckInCompletedAt = &ts
	by := finalizedByID
	core.FinalizedByID = &by
	sid := snapshotID
	core.MaapSnapshotID = &sid
}

func captureCore(core *domain.CheckInCore, finalized bool) map[string]any {
	return map[string]any{
		"id":                    core.ID,
		"check_in_started_on":   core.CheckInStartedOn.Format("2006-01-02"),
		"shared_notes":          core.SharedNotes,
		"employee_completed_at": core.EmployeeCompletedAt,
		"manager_completed_at":  core.ManagerCompletedAt,
		"finalized":             finalized,
	}
}

func capturePosition(rec *domain.PositionCheckIn, d FinalizeDecision) map[string]any {
	m := captureCore(&rec.CheckInCore, d.Finalize)
	m["employment_tenure_id"] = rec.EmploymentTenureID
	m["employee_rating"] = rec.EmployeeRating
	m["manager_rating"] = rec.ManagerRating
	m["official_rating"] = rec.OfficialRating
	return m
}

func captureAssignment(rec *domain.AssignmentCheckIn, d FinalizeDecision) map[string]any {
	m := captureCore(&rec.CheckInCore, d.Finalize)
	m["assignment_id"] = rec.AssignmentID
	m["assignment_tenure_id"] = rec.AssignmentTenureID
	m["employee_rating"] = rec.EmployeeRating
	m["manager_rating"] = rec.ManagerRating
	m["official_rating"] = rec.OfficialRating
	m["actual_energy_percentage"] = rec.ActualEnergyPercentage
	m["employee_personal_alignment"] = rec.EmployeePersonalAlignment
	return m
}

func captureAspiration(rec *domain.AspirationCheckIn, d FinalizeDecision) map[string]any {
	m := captureCore(&rec.CheckInCore, d.Finalize)
	m["aspiration_id"] = rec.AspirationID
	m["employee_rating"] = rec.EmployeeRating
	m["manager_rating"] = rec.ManagerRating
	m["official_rating"] = rec.OfficialRating
	return m
}

// AcknowledgeSnapshot records the employee's one-shot acknowledgement of a
// finalized snapshot with its own request metadata.
func (s *finalizationService) AcknowledgeSnapshot(ctx context.Context, snapshotID, personID uuid.UUID, req domain.RequestInfo) error {
	if snapshotID == uuid.Nil || personID == uuid.Nil {
		return apperrors.ErrInvalidArgument
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		dbc := dbctx.Context{Ctx: ctx, Tx: tx}

		snap, err := s.snapshots.LockByID(dbc, snapshotID)
		if err != nil {
			return err
		}
		if snap == nil {
			return apperrors.ErrNotFound
		}
		if snap.EmployeeAcknowledgedAt != nil {
			return apperrors.ErrAlreadyAcknowledged
		}

		teammate, err := s.teammates.GetByID(dbc, snap.TeammateID)
		if err != nil {
			return err
		}
		if teammate == nil || teammate.PersonID != personID {
			return apperrors.ErrUnauthorized
		}

		reqJSON, err := json.Marshal(req)
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		return s.snapshots.UpdateFields(dbc, snap.ID, map[string]interface{}{
			"employee_acknowledged_at":     now,
			"acknowledgement_request_info": datatypes.JSON(reqJSON),
		})
	})
}
