package services

import (
	"context"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

// DeriveViewerRole maps a viewer onto one of the two check-in sides: the
// teammate's own person is the employee, every other viewer acts on the
// manager side.
func DeriveViewerRole(teammate *domain.Teammate, viewerPersonID uuid.UUID) ViewerRole {
	if teammate != nil && teammate.PersonID == viewerPersonID {
		return ViewerEmployee
	}
	return ViewerManager
}

// CheckInSet is everything the check-in page needs for one teammate:
// the open records per kind plus the discoverable subjects.
type CheckInSet struct {
	Teammate    *domain.Teammate            `json:"teammate"`
	Position    *domain.PositionCheckIn     `json:"position,omitempty"`
	Assignments []*domain.AssignmentCheckIn `json:"assignments"`
	Aspirations []*domain.AspirationCheckIn `json:"aspirations"`
	Subjects    []AssignmentSubject         `json:"subjects"`
}

// FinalizationOverview is the manager-facing read model: which open
// check-ins are ready to close, which are still waiting, and the
// snapshots already taken.
type FinalizationOverview struct {
	Teammate            *domain.Teammate            `json:"teammate"`
	ReadyPositions      []*domain.PositionCheckIn   `json:"ready_positions"`
	ReadyAssignments    []*domain.AssignmentCheckIn `json:"ready_assignments"`
	ReadyAspirations    []*domain.AspirationCheckIn `json:"ready_aspirations"`
	OpenPositionCount   int                         `json:"open_position_count"`
	OpenAssignmentCount int                         `json:"open_assignment_count"`
	OpenAspirationCount int                         `json:"open_aspiration_count"`
	Snapshots           []*domain.MaapSnapshot      `json:"snapshots"`
}

type SaveResult struct {
	State              CompletionState
	CompletionDetected bool
}

// CheckInService is the request-facing orchestration layer: it resolves
// the open record, applies the viewer's side through the completion
// machinery, and dispatches the completion event only after the write
// has committed.
type CheckInService interface {
	SavePositionCheckIn(ctx context.Context, viewerPersonID, teammateID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.PositionCheckIn, *SaveResult, error)
	SaveAssignmentCheckIn(ctx context.Context, viewerPersonID, teammateID, assignmentID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.AssignmentCheckIn, *SaveResult, error)
	SaveAspirationCheckIn(ctx context.Context, viewerPersonID, teammateID, aspirationID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.AspirationCheckIn, *SaveResult, error)
	LoadCheckInSet(ctx context.Context, teammateID uuid.UUID) (*CheckInSet, error)
	FinalizationOverview(ctx context.Context, teammateID uuid.UUID) (*FinalizationOverview, error)
}

type checkInService struct {
	log *logger.Logger

	teammates  repos.TeammateRepo
	snapshots  repos.MaapSnapshotRepo
	resolver   ResolverService
	completion CompletionService
	discovery  DiscoveryService
	notifier   CompletionNotifier

	positionCheckIns   *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func NewCheckInService(
	baseLog *logger.Logger,
	teammates repos.TeammateRepo,
	snapshots repos.MaapSnapshotRepo,
	resolver ResolverService,
	completion CompletionService,
	discovery DiscoveryService,
	notifier CompletionNotifier,
	positionCheckIns *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn],
	assignmentCheckIns *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn],
	aspirationCheckIns *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn],
) CheckInService {
	return &checkInService{
		log:                baseLog.With("service", "CheckInService"),
		teammates:          teammates,
		snapshots:          snapshots,
		resolver:           resolver,
		completion:         completion,
		discovery:          discovery,
		notifier:           notifier,
		positionCheckIns:   positionCheckIns,
		assignmentCheckIns: assignmentCheckIns,
		aspirationCheckIns: aspirationCheckIns,
	}
}

func (s *checkInService) loadTeammate(ctx context.Context, teammateID uuid.UUID) (*domain.Teammate, error) {
	teammate, err := s.teammates.GetByID(dbctx.Context{Ctx: ctx}, teammateID)
	if err != nil {
		return nil, err
	}
	if teammate == nil {
		return nil, apperrors.ErrNotFound
	}
	return teammate, nil
}

// notifyAfterCommit fires only on the edge: the call that moved the
// record into both-complete. Repeated saves of an already-complete side
// stay silent.
func (s *checkInService) notifyAfterCommit(teammate *domain.Teammate, rec domain.CheckInRecord, res *CompletionResult) {
	if res == nil || !res.CompletionDetected || s.notifier == nil {
		return
	}
	s.notifier.NotifyCompletion(domain.CompletionEvent{
		CheckInID:       rec.Core().ID,
		CheckInKind:     rec.Kind(),
		CompletionState: res.State.String(),
		OrganizationID:  teammate.OrganizationID,
	})
}

func (s *checkInService) SavePositionCheckIn(ctx context.Context, viewerPersonID, teammateID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.PositionCheckIn, *SaveResult, error) {
	teammate, err := s.loadTeammate(ctx, teammateID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.resolver.ResolveOpenPosition(ctx, teammateID)
	if err != nil {
		return nil, nil, err
	}
	role := DeriveViewerRole(teammate, viewerPersonID)
	res, err := s.completion.Apply(ctx, rec, role, requestedStatus, updates, viewerPersonID)
	if err != nil {
		return nil, nil, err
	}
	s.notifyAfterCommit(teammate, rec, res)
	return rec, &SaveResult{State: res.State, CompletionDetected: res.CompletionDetected}, nil
}

func (s *checkInService) SaveAssignmentCheckIn(ctx context.Context, viewerPersonID, teammateID, assignmentID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.AssignmentCheckIn, *SaveResult, error) {
	teammate, err := s.loadTeammate(ctx, teammateID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.resolver.ResolveOpenAssignment(ctx, teammateID, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	role := DeriveViewerRole(teammate, viewerPersonID)
	res, err := s.completion.Apply(ctx, rec, role, requestedStatus, updates, viewerPersonID)
	if err != nil {
		return nil, nil, err
	}
	s.notifyAfterCommit(teammate, rec, res)
	return rec, &SaveResult{State: res.State, CompletionDetected: res.CompletionDetected}, nil
}

func (s *checkInService) SaveAspirationCheckIn(ctx context.Context, viewerPersonID, teammateID, aspirationID uuid.UUID, requestedStatus string, updates FieldUpdates) (*domain.AspirationCheckIn, *SaveResult, error) {
	teammate, err := s.loadTeammate(ctx, teammateID)
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.resolver.ResolveOpenAspiration(ctx, teammateID, aspirationID)
	if err != nil {
		return nil, nil, err
	}
	role := DeriveViewerRole(teammate, viewerPersonID)
	res, err := s.completion.Apply(ctx, rec, role, requestedStatus, updates, viewerPersonID)
	if err != nil {
		return nil, nil, err
	}
	s.notifyAfterCommit(teammate, rec, res)
	return rec, &SaveResult{State: res.State, CompletionDetected: res.CompletionDetected}, nil
}

// LoadCheckInSet fans the four independent reads out on an errgroup; any
// failure cancels the rest.
func (s *checkInService) LoadCheckInSet(ctx context.Context, teammateID uuid.UUID) (*CheckInSet, error) {
	teammate, err := s.loadTeammate(ctx, teammateID)
	if err != nil {
		return nil, err
	}

	set := &CheckInSet{Teammate: teammate}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := s.positionCheckIns.ListOpenByTeammate(dbctx.Context{Ctx: gctx}, teammateID)
		if err != nil {
			return err
		}
		if len(rows) > 0 {
			set.Position = rows[0]
		}
		return nil
	})
	g.Go(func() error {
		rows, err := s.assignmentCheckIns.ListOpenByTeammate(dbctx.Context{Ctx: gctx}, teammateID)
		if err != nil {
			return err
		}
		set.Assignments = rows
		return nil
	})
	g.Go(func() error {
		rows, err := s.aspirationCheckIns.ListOpenByTeammate(dbctx.Context{Ctx: gctx}, teammateID)
		if err != nil {
			return err
		}
		set.Aspirations = rows
		return nil
	})
	g.Go(func() error {
		subs, err := s.discovery.DiscoverAssignmentSubjects(gctx, teammateID)
		if err != nil {
			return err
		}
		set.Subjects = subs
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return set, nil
}

func (s *checkInService) FinalizationOverview(ctx context.Context, teammateID uuid.UUID) (*FinalizationOverview, error) {
	teammate, err := s.loadTeammate(ctx, teammateID)
	if err != nil {
		return nil, err
	}

	ov := &FinalizationOverview{Teammate: teammate}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dbc := dbctx.Context{Ctx: gctx}
		open, err := s.positionCheckIns.ListOpenByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.OpenPositionCount = len(open)
		ready, err := s.positionCheckIns.ListReadyByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.ReadyPositions = ready
		return nil
	})
	g.Go(func() error {
		dbc := dbctx.Context{Ctx: gctx}
		open, err := s.assignmentCheckIns.ListOpenByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.OpenAssignmentCount = len(open)
		ready, err := s.assignmentCheckIns.ListReadyByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.ReadyAssignments = ready
		return nil
	})
	g.Go(func() error {
		dbc := dbctx.Context{Ctx: gctx}
		open, err := s.aspirationCheckIns.ListOpenByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.OpenAspirationCount = len(open)
		ready, err := s.aspirationCheckIns.ListReadyByTeammate(dbc, teammateID)
		if err != nil {
			return err
		}
		ov.ReadyAspirations = ready
		return nil
	})
	g.Go(func() error {
		snaps, err := s.snapshots.ListByTeammate(dbctx.Context{Ctx: gctx}, teammateID)
		if err != nil {
			return err
		}
		ov.Snapshots = snaps
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ov, nil
}
