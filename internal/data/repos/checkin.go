package repos

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// checkInPtr ties a pointer type to the shared record behavior so one repo
// implementation serves all three check-in tables while GORM still sees
// the concrete structs.
type checkInPtr[T any] interface {
	*T
	domain.CheckInRecord
}

type CheckInRepo[T any, PT checkInPtr[T]] struct {
	db            *gorm.DB
	log           *logger.Logger
	subjectColumn string
}

func NewPositionCheckInRepo(db *gorm.DB, baseLog *logger.Logger) *CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn] {
	return &CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]{
		db:            db,
		log:           baseLog.With("repo", "PositionCheckInRepo"),
		subjectColumn: "employment_tenure_id",
	}
}

func NewAssignmentCheckInRepo(db *gorm.DB, baseLog *logger.Logger) *CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn] {
	return &CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]{
		db:            db,
		log:           baseLog.With("repo", "AssignmentCheckInRepo"),
		subjectColumn: "assignment_id",
	}
}

func NewAspirationCheckInRepo(db *gorm.DB, baseLog *logger.Logger) *CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn] {
	return &CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]{
		db:            db,
		log:           baseLog.With("repo", "AspirationCheckInRepo"),
		subjectColumn: "aspiration_id",
	}
}

func (r *CheckInRepo[T, PT]) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

// FindOpen returns the single open check-in for the (teammate, subject)
// pair, or nil when none exists. Callers must not hold onto stale copies;
// re-resolve before mutating.
func (r *CheckInRepo[T, PT]) FindOpen(dbc dbctx.Context, teammateID, subjectID uuid.UUID) (PT, error) {
	if teammateID == uuid.Nil || subjectID == uuid.Nil {
		return nil, nil
	}
	var row T
	pt := PT(&row)
	err := r.handle(dbc).
		Where("teammate_id = ? AND official_check_in_completed_at IS NULL", teammateID).
		Where(r.subjectColumn+" = ?", subjectID).
		Limit(1).
		Find(pt).Error
	if err != nil {
		return nil, err
	}
	if pt.Core().ID == uuid.Nil {
		return nil, nil
	}
	return pt, nil
}

func (r *CheckInRepo[T, PT]) GetByID(dbc dbctx.Context, id uuid.UUID) (PT, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row T
	pt := PT(&row)
	err := r.handle(dbc).
		Where("id = ?", id).
		Limit(1).
		Find(pt).Error
	if err != nil {
		return nil, err
	}
	if pt.Core().ID == uuid.Nil {
		return nil, nil
	}
	return pt, nil
}

// LockByID takes a row lock so finalization decisions serialize against
// concurrent completion toggles.
func (r *CheckInRepo[T, PT]) LockByID(dbc dbctx.Context, id uuid.UUID) (PT, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row T
	pt := PT(&row)
	err := r.handle(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(pt).Error
	if err != nil {
		return nil, err
	}
	if pt.Core().ID == uuid.Nil {
		return nil, nil
	}
	return pt, nil
}

func (r *CheckInRepo[T, PT]) Create(dbc dbctx.Context, rec PT) error {
	if rec == nil {
		return nil
	}
	return r.handle(dbc).Create(rec).Error
}

func (r *CheckInRepo[T, PT]) Save(dbc dbctx.Context, rec PT) error {
	if rec == nil || rec.Core().ID == uuid.Nil {
		return nil
	}
	rec.Core().UpdatedAt = time.Now().UTC()
	return r.handle(dbc).Save(rec).Error
}

func (r *CheckInRepo[T, PT]) ListOpenByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]PT, error) {
	var results []PT
	if teammateID == uuid.Nil {
		return results, nil
	}
	if err := r.handle(dbc).
		Where("teammate_id = ? AND official_check_in_completed_at IS NULL", teammateID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// ListReadyByTeammate returns the ready_for_finalization set: open with
// both completion timestamps present.
func (r *CheckInRepo[T, PT]) ListReadyByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]PT, error) {
	var results []PT
	if teammateID == uuid.Nil {
		return results, nil
	}
	if err := r.handle(dbc).
		Where("teammate_id = ? AND official_check_in_completed_at IS NULL", teammateID).
		Where("employee_completed_at IS NOT NULL AND manager_completed_at IS NOT NULL").
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// IsUniqueViolation reports whether err is a Postgres unique_violation
// (23505), raised when two resolvers race to create the same open check-in.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
