package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/data/repos/testutil"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []domain.CompletionEvent
}

func (n *recordingNotifier) NotifyCompletion(evt domain.CompletionEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, evt)
}

func (n *recordingNotifier) all() []domain.CompletionEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]domain.CompletionEvent(nil), n.events...)
}

func newTestCheckInService(t *testing.T, tx *gorm.DB, notifier CompletionNotifier) CheckInService {
	t.Helper()
	log := testutil.Logger(t)
	teammates := repos.NewTeammateRepo(tx, log)
	snapshots := repos.NewMaapSnapshotRepo(tx, log)
	positions := repos.NewPositionCheckInRepo(tx, log)
	assignments := repos.NewAssignmentCheckInRepo(tx, log)
	aspirations := repos.NewAspirationCheckInRepo(tx, log)
	discovery := NewDiscoveryService(
		log,
		repos.NewEmploymentTenureRepo(tx, log),
		repos.NewAssignmentTenureRepo(tx, log),
		repos.NewPositionAssignmentRepo(tx, log),
		repos.NewAssignmentRepo(tx, log),
		repos.NewAspirationRepo(tx, log),
		assignments,
	)
	return NewCheckInService(
		log,
		teammates, snapshots,
		newTestResolver(t, tx),
		NewCompletionService(tx, log, positions, assignments, aspirations),
		discovery,
		notifier,
		positions, assignments, aspirations,
	)
}

func TestSaveAssignmentCheckInNotifiesOnEdgeOnly(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	assignment := testutil.SeedAssignment(t, ctx, tx, teammate.OrganizationID, "ship it")
	testutil.SeedAssignmentTenure(t, ctx, tx, teammate.ID, assignment.ID, intPtr(50))

	notifier := &recordingNotifier{}
	svc := newTestCheckInService(t, tx, notifier)

	// Employee completes their side.
	rec, res, err := svc.SaveAssignmentCheckIn(ctx, teammate.PersonID, teammate.ID, assignment.ID, "complete", FieldUpdates{"employee_rating": "meeting"})
	if err != nil {
		t.Fatalf("employee save: %v", err)
	}
	if res.CompletionDetected {
		t.Fatal("completion detected with manager side open")
	}
	if res.State != StateEmployeeCompleteManagerOpen {
		t.Fatalf("state = %v", res.State)
	}

	// Manager completes; this is the edge.
	managerPersonID := uuid.New()
	_, res, err = svc.SaveAssignmentCheckIn(ctx, managerPersonID, teammate.ID, assignment.ID, "complete", FieldUpdates{"manager_rating": "exceeding"})
	if err != nil {
		t.Fatalf("manager save: %v", err)
	}
	if !res.CompletionDetected {
		t.Fatal("both-complete edge not detected")
	}

	events := notifier.all()
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].CheckInID != rec.ID || events[0].CheckInKind != domain.CheckInKindAssignment {
		t.Fatalf("event = %+v", events[0])
	}
	if events[0].OrganizationID != teammate.OrganizationID {
		t.Fatal("event missing organization scope")
	}

	// A redundant manager re-save stays silent.
	if _, res, err = svc.SaveAssignmentCheckIn(ctx, managerPersonID, teammate.ID, assignment.ID, "complete", nil); err != nil {
		t.Fatalf("manager re-save: %v", err)
	}
	if res.CompletionDetected {
		t.Fatal("re-save re-fired completion")
	}
	if got := notifier.all(); len(got) != 1 {
		t.Fatalf("got %d events after re-save, want 1", len(got))
	}
}

func TestSaveCheckInUnknownTeammate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	svc := newTestCheckInService(t, tx, &recordingNotifier{})
	_, _, err := svc.SavePositionCheckIn(ctx, uuid.New(), uuid.New(), "complete", nil)
	if !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestLoadCheckInSet(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	assignment := testutil.SeedAssignment(t, ctx, tx, teammate.OrganizationID, "ship it")
	testutil.SeedAssignmentTenure(t, ctx, tx, teammate.ID, assignment.ID, intPtr(40))

	svc := newTestCheckInService(t, tx, &recordingNotifier{})

	if _, _, err := svc.SavePositionCheckIn(ctx, teammate.PersonID, teammate.ID, "draft", FieldUpdates{"employee_rating": "1"}); err != nil {
		t.Fatalf("save position: %v", err)
	}
	if _, _, err := svc.SaveAssignmentCheckIn(ctx, teammate.PersonID, teammate.ID, assignment.ID, "draft", nil); err != nil {
		t.Fatalf("save assignment: %v", err)
	}

	set, err := svc.LoadCheckInSet(ctx, teammate.ID)
	if err != nil {
		t.Fatalf("load set: %v", err)
	}
	if set.Teammate == nil || set.Teammate.ID != teammate.ID {
		t.Fatal("teammate missing from set")
	}
	if set.Position == nil {
		t.Fatal("open position check-in missing from set")
	}
	if len(set.Assignments) != 1 {
		t.Fatalf("got %d assignment check-ins, want 1", len(set.Assignments))
	}
	if len(set.Subjects) != 1 || set.Subjects[0].AssignmentID != assignment.ID {
		t.Fatalf("subjects = %+v", set.Subjects)
	}
}

func TestFinalizationOverviewCounts(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	svc := newTestCheckInService(t, tx, &recordingNotifier{})

	// Ready: both sides complete.
	managerPersonID := uuid.New()
	if _, _, err := svc.SavePositionCheckIn(ctx, teammate.PersonID, teammate.ID, "complete", nil); err != nil {
		t.Fatalf("employee save: %v", err)
	}
	if _, _, err := svc.SavePositionCheckIn(ctx, managerPersonID, teammate.ID, "complete", nil); err != nil {
		t.Fatalf("manager save: %v", err)
	}

	// Waiting: aspiration with only the employee side done.
	aspiration := testutil.SeedAspiration(t, ctx, tx, teammate.OrganizationID, "craft")
	if _, _, err := svc.SaveAspirationCheckIn(ctx, teammate.PersonID, teammate.ID, aspiration.ID, "complete", FieldUpdates{"employee_rating": "meeting"}); err != nil {
		t.Fatalf("save aspiration: %v", err)
	}

	ov, err := svc.FinalizationOverview(ctx, teammate.ID)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if len(ov.ReadyPositions) != 1 {
		t.Fatalf("ready positions = %d, want 1", len(ov.ReadyPositions))
	}
	if len(ov.ReadyAspirations) != 0 {
		t.Fatalf("ready aspirations = %d, want 0", len(ov.ReadyAspirations))
	}
	if ov.OpenPositionCount != 1 || ov.OpenAspirationCount != 1 {
		t.Fatalf("open counts = %d/%d, want 1/1", ov.OpenPositionCount, ov.OpenAspirationCount)
	}
	if len(ov.Snapshots) != 0 {
		t.Fatalf("snapshots = %d, want 0", len(ov.Snapshots))
	}
}
