package services

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// StatusComplete marks the viewer's side done; any other status is a draft
// save, and a draft save on a previously-completed side uncompletes it.
const StatusComplete = "complete"

// FieldUpdates carries the raw submitted values. Blank values are skipped,
// never persisted, so a partial draft cannot null out earlier saves.
type FieldUpdates map[string]string

// ValidationError is a field-level rejection surfaced before persistence.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "validation failed"
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	e.Fields[field] = msg
}

func (e *ValidationError) orNil() *ValidationError {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func (u FieldUpdates) value(key string) (string, bool) {
	raw, ok := u[key]
	if !ok {
		return "", false
	}
	v := strings.TrimSpace(raw)
	if v == "" {
		return "", false
	}
	return v, true
}

// applyCheckInFields validates and applies the viewer's side of the
// submitted values. Kind-specific rating rules live here, not on the
// models. Nothing is written when a validation error is returned.
func applyCheckInFields(rec domain.CheckInRecord, role ViewerRole, updates FieldUpdates) *ValidationError {
	switch r := rec.(type) {
	case *domain.PositionCheckIn:
		return applyPositionFields(r, role, updates)
	case *domain.AssignmentCheckIn:
		return applyAssignmentFields(r, role, updates)
	case *domain.AspirationCheckIn:
		return applyAspirationFields(r, role, updates)
	}
	return nil
}

func parsePositionRating(field, raw string, verr *ValidationError) (*int, bool) {
	n, err := strconv.Atoi(raw)
	if err != nil || !domain.ValidPositionRating(n) {
		verr.add(field, fmt.Sprintf("must be an integer between %d and %d", domain.PositionRatingMin, domain.PositionRatingMax))
		return nil, false
	}
	return &n, true
}

func parseAgreementRating(field, raw string, verr *ValidationError) (*string, bool) {
	v := strings.ToLower(raw)
	if !domain.ValidAgreementRating(v) {
		verr.add(field, "must be one of exceeding, meeting, missing")
		return nil, false
	}
	return &v, true
}

func applyPositionFields(rec *domain.PositionCheckIn, role ViewerRole, updates FieldUpdates) *ValidationError {
	verr := &ValidationError{}
	switch role {
	case ViewerEmployee:
		if raw, ok := updates.value("employee_rating"); ok {
			if n, ok := parsePositionRating("employee_rating", raw, verr); ok {
				rec.EmployeeRating = n
			}
		}
		if v, ok := updates.value("employee_private_notes"); ok {
			rec.EmployeePrivateNotes = v
		}
	case ViewerManager:
		if raw, ok := updates.value("manager_rating"); ok {
			if n, ok := parsePositionRating("manager_rating", raw, verr); ok {
				rec.ManagerRating = n
			}
		}
		if v, ok := updates.value("manager_private_notes"); ok {
			rec.ManagerPrivateNotes = v
		}
	}
	return verr.orNil()
}

func applyAssignmentFields(rec *domain.AssignmentCheckIn, role ViewerRole, updates FieldUpdates) *ValidationError {
	verr := &ValidationError{}
	switch role {
	case ViewerEmployee:
		if raw, ok := updates.value("employee_rating"); ok {
			if v, ok := parseAgreementRating("employee_rating", raw, verr); ok {
				rec.EmployeeRating = v
			}
		}
		if v, ok := updates.value("employee_private_notes"); ok {
			rec.EmployeePrivateNotes = v
		}
		if raw, ok := updates.value("actual_energy_percentage"); ok {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 || n > 100 {
				verr.add("actual_energy_percentage", "must be an integer between 0 and 100")
			} else {
				rec.ActualEnergyPercentage = &n
			}
		}
		if v, ok := updates.value("employee_personal_alignment"); ok {
			rec.EmployeePersonalAlignment = &v
		}
	case ViewerManager:
		if raw, ok := updates.value("manager_rating"); ok {
			if v, ok := parseAgreementRating("manager_rating", raw, verr); ok {
				rec.ManagerRating = v
			}
		}
		if v, ok := updates.value("manager_private_notes"); ok {
			rec.ManagerPrivateNotes = v
		}
	}
	return verr.orNil()
}

func applyAspirationFields(rec *domain.AspirationCheckIn, role ViewerRole, updates FieldUpdates) *ValidationError {
	verr := &ValidationError{}
	switch role {
	case ViewerEmployee:
		if raw, ok := updates.value("employee_rating"); ok {
			if v, ok := parseAgreementRating("employee_rating", raw, verr); ok {
				rec.EmployeeRating = v
			}
		}
		if v, ok := updates.value("employee_private_notes"); ok {
			rec.EmployeePrivateNotes = v
		}
	case ViewerManager:
		if raw, ok := updates.value("manager_rating"); ok {
			if v, ok := parseAgreementRating("manager_rating", raw, verr); ok {
				rec.ManagerRating = v
			}
		}
		if v, ok := updates.value("manager_private_notes"); ok {
			rec.ManagerPrivateNotes = v
		}
	}
	return verr.orNil()
}

type TransitionResult struct {
	State CompletionState
	// CompletionDetected is edge-triggered: true only when this call moved
	// the record from "not both complete" to "both complete".
	CompletionDetected bool
}

// applyCompletionTransition toggles the viewer's completion timestamp.
// Completing an already-complete side refreshes the timestamp; a draft
// save clears only the viewer's own side. An out-of-range role is a no-op.
func applyCompletionTransition(core *domain.CheckInCore, role ViewerRole, requestedStatus string, completedByID uuid.UUID, now time.Time) TransitionResult {
	wasBoth := core.BothComplete()

	complete := strings.EqualFold(strings.TrimSpace(requestedStatus), StatusComplete)
	switch role {
	case ViewerEmployee:
		if complete {
			ts := now
			core.EmployeeCompletedAt = &ts
		} else if core.EmployeeCompletedAt != nil {
			core.EmployeeCompletedAt = nil
		}
	case ViewerManager:
		if complete {
			ts := now
			core.ManagerCompletedAt = &ts
			if completedByID != uuid.Nil {
				by := completedByID
				core.ManagerCompletedByID = &by
			}
		} else if core.ManagerCompletedAt != nil {
			core.ManagerCompletedAt = nil
			core.ManagerCompletedByID = nil
		}
	}

	state := CompletionStateOf(core.EmployeeComplete(), core.ManagerComplete())
	return TransitionResult{
		State:              state,
		CompletionDetected: !wasBoth && state == StateBothComplete,
	}
}

type CompletionResult struct {
	State              CompletionState
	CompletionDetected bool
}

// CompletionService mutates one party's completion status and detects the
// both-sides-complete transition. It does not dispatch notifications; the
// caller does, after the write is committed.
type CompletionService interface {
	Apply(ctx context.Context, rec domain.CheckInRecord, role ViewerRole, requestedStatus string, updates FieldUpdates, completedByID uuid.UUID) (*CompletionResult, error)
}

type completionService struct {
	db                 *gorm.DB
	log                *logger.Logger
	positionCheckIns   *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func NewCompletionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	positionCheckIns *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn],
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn],
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn],
) CompletionService {
	return &completionService{
		db:                 db,
		log:                baseLog.With("service", "CompletionService"),
		positionCheckIns:   positionCheckIns,
		assignmentCheckIns: assignmentCheckIns,
		aspirationCheckIns: aspirationCheckIns,
	}
}

func (s *completionService) Apply(ctx context.Context, rec domain.CheckInRecord, role ViewerRole, requestedStatus string, updates FieldUpdates, completedByID uuid.UUID) (*CompletionResult, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("completion service not configured")
	}
	if rec == nil {
		return nil, apperrors.ErrNotFound
	}
	if !rec.Core().Open() {
		return nil, apperrors.ErrCheckInFinalized
	}

	if verr := applyCheckInFields(rec, role, updates); verr != nil {
		return nil, verr
	}

	tr := applyCompletionTransition(rec.Core(), role, requestedStatus, completedByID, time.Now().UTC())

	if err := s.save(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Debug("check-in saved",
		"check_in_id", rec.Core().ID.String(),
		"check_in_kind", string(rec.Kind()),
		"viewer_role", role.String(),
		"completion_state", tr.State.String(),
		"completion_detected", tr.CompletionDetected,
	)

	return &CompletionResult{State: tr.State, CompletionDetected: tr.CompletionDetected}, nil
}

func (s *completionService) save(ctx context.Context, rec domain.CheckInRecord) error {
	dbc := dbctx.Context{Ctx: ctx}
	switch r := rec.(type) {
	case *domain.PositionCheckIn:
		return s.positionCheckIns.Save(dbc, r)
	case *domain.AssignmentCheckIn:
		return s.assignmentCheckIns.Save(dbc, r)
	case *domain.AspirationCheckIn:
		return s.aspirationCheckIns.Save(dbc, r)
	}
	return fmt.Errorf("unknown check-in kind: %T", rec)
}
