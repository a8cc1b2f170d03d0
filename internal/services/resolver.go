package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// ResolverService finds-or-creates the single open check-in for a
// (teammate, subject) pair. Uniqueness is guaranteed by the partial unique
// indexes on the check-in tables: when two requests race to create the
// same open row, the loser gets a unique violation and re-reads the
// winner's row instead of surfacing an error.
type ResolverService interface {
	ResolveOpenPosition(ctx context.Context, teammateID uuid.UUID) (*domain.PositionCheckIn, error)
	ResolveOpenAssignment(ctx context.Context, teammateID, assignmentID uuid.UUID) (*domain.AssignmentCheckIn, error)
	ResolveOpenAspiration(ctx context.Context, teammateID, aspirationID uuid.UUID) (*domain.AspirationCheckIn, error)
}

type resolverService struct {
	log *logger.Logger

	employmentTenures  repos.EmploymentTenureRepo
	assignmentTenures  repos.AssignmentTenureRepo
	positionCheckIns   *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func NewResolverService(
	baseLog *logger.Logger,
	employmentTenures repos.EmploymentTenureRepo,
	assignmentTenures repos.AssignmentTenureRepo,
	positionCheckIns *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn],
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn],
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn],
) ResolverService {
	return &resolverService{
		log:                baseLog.With("service", "ResolverService"),
		employmentTenures:  employmentTenures,
		assignmentTenures:  assignmentTenures,
		positionCheckIns:   positionCheckIns,
		assignmentCheckIns: assignmentCheckIns,
		aspirationCheckIns: aspirationCheckIns,
	}
}

func today() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *resolverService) ResolveOpenPosition(ctx context.Context, teammateID uuid.UUID) (*domain.PositionCheckIn, error) {
	if teammateID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	dbc := dbctx.Context{Ctx: ctx}

	tenure, err := s.employmentTenures.GetActiveByTeammate(dbc, teammateID)
	if err != nil {
		return nil, err
	}
	if tenure == nil {
		return nil, apperrors.ErrNoActiveTenure
	}

	existing, err := s.positionCheckIns.FindOpen(dbc, teammateID, tenure.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rec := &domain.PositionCheckIn{
		CheckInCore: domain.CheckInCore{
			ID:               uuid.New(),
			TeammateID:       teammateID,
			CheckInStartedOn: today(),
		},
		EmploymentTenureID: tenure.ID,
	}
	if err := s.positionCheckIns.Create(dbc, rec); err != nil {
		if repos.IsUniqueViolation(err) {
			return s.positionCheckIns.FindOpen(dbc, teammateID, tenure.ID)
		}
		return nil, err
	}
	return rec, nil
}

func (s *resolverService) ResolveOpenAssignment(ctx context.Context, teammateID, assignmentID uuid.UUID) (*domain.AssignmentCheckIn, error) {
	if teammateID == uuid.Nil || assignmentID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.assignmentCheckIns.FindOpen(dbc, teammateID, assignmentID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	// An active tenure is optional: an assignment required or suggested by
	// the position is reviewable before the teammate holds a tenure on it.
	tenure, err := s.assignmentTenures.GetActiveByTeammateAndAssignment(dbc, teammateID, assignmentID)
	if err != nil {
		return nil, err
	}

	rec := &domain.AssignmentCheckIn{
		CheckInCore: domain.CheckInCore{
			ID:               uuid.New(),
			TeammateID:       teammateID,
			CheckInStartedOn: today(),
		},
		AssignmentID: assignmentID,
	}
	if tenure != nil {
		tid := tenure.ID
		rec.AssignmentTenureID = &tid
	}
	if err := s.assignmentCheckIns.Create(dbc, rec); err != nil {
		if repos.IsUniqueViolation(err) {
			return s.assignmentCheckIns.FindOpen(dbc, teammateID, assignmentID)
		}
		return nil, err
	}
	return rec, nil
}

func (s *resolverService) ResolveOpenAspiration(ctx context.Context, teammateID, aspirationID uuid.UUID) (*domain.AspirationCheckIn, error) {
	if teammateID == uuid.Nil || aspirationID == uuid.Nil {
		return nil, apperrors.ErrInvalidArgument
	}
	dbc := dbctx.Context{Ctx: ctx}

	existing, err := s.aspirationCheckIns.FindOpen(dbc, teammateID, aspirationID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rec := &domain.AspirationCheckIn{
		CheckInCore: domain.CheckInCore{
			ID:               uuid.New(),
			TeammateID:       teammateID,
			CheckInStartedOn: today(),
		},
		AspirationID: aspirationID,
	}
	if err := s.aspirationCheckIns.Create(dbc, rec); err != nil {
		if repos.IsUniqueViolation(err) {
			return s.aspirationCheckIns.FindOpen(dbc, teammateID, aspirationID)
		}
		return nil, err
	}
	return rec, nil
}
