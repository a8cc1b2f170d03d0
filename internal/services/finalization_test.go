package services

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/data/repos/testutil"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
	"github.com/ar3/our-gruuv-sub014/internal/platform/apierr"
)

type finalizationFixture struct {
	tx           *gorm.DB
	teammate     *domain.Teammate
	manager      *domain.Person
	resolver     ResolverService
	completion   CompletionService
	finalization FinalizationService
	snapshots    repos.MaapSnapshotRepo
	positions    *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	assignments  *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	aspirations  *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func newFinalizationFixture(t *testing.T) (*finalizationFixture, context.Context) {
	t.Helper()
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()
	log := testutil.Logger(t)

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	manager := testutil.SeedPerson(t, ctx, tx, uuid.NewString()+"@example.com")
	testutil.SeedTeammate(t, ctx, tx, teammate.OrganizationID, manager.ID)

	teammates := repos.NewTeammateRepo(tx, log)
	snapshots := repos.NewMaapSnapshotRepo(tx, log)
	positions := repos.NewPositionCheckInRepo(tx, log)
	assignments := repos.NewAssignmentCheckInRepo(tx, log)
	aspirations := repos.NewAspirationCheckInRepo(tx, log)

	return &finalizationFixture{
		tx:           tx,
		teammate:     teammate,
		manager:      manager,
		resolver:     newTestResolver(t, tx),
		completion:   NewCompletionService(tx, log, positions, assignments, aspirations),
		finalization: NewFinalizationService(tx, log, teammates, snapshots, positions, assignments, aspirations),
		snapshots:    snapshots,
		positions:    positions,
		assignments:  assignments,
		aspirations:  aspirations,
	}, ctx
}

// readyPosition opens a position check-in and completes both sides.
func (f *finalizationFixture) readyPosition(t *testing.T, ctx context.Context) *domain.PositionCheckIn {
	t.Helper()
	rec, err := f.resolver.ResolveOpenPosition(ctx, f.teammate.ID)
	if err != nil {
		t.Fatalf("resolve position: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerEmployee, "complete", FieldUpdates{"employee_rating": "2"}, uuid.Nil); err != nil {
		t.Fatalf("employee complete: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerManager, "complete", FieldUpdates{"manager_rating": "1"}, f.manager.ID); err != nil {
		t.Fatalf("manager complete: %v", err)
	}
	return rec
}

// readyAssignment seeds an assignment with an active tenure, opens its
// check-in, and completes both sides.
func (f *finalizationFixture) readyAssignment(t *testing.T, ctx context.Context, title string) *domain.AssignmentCheckIn {
	t.Helper()
	assignment := testutil.SeedAssignment(t, ctx, f.tx, f.teammate.OrganizationID, title)
	testutil.SeedAssignmentTenure(t, ctx, f.tx, f.teammate.ID, assignment.ID, intPtr(60))
	rec, err := f.resolver.ResolveOpenAssignment(ctx, f.teammate.ID, assignment.ID)
	if err != nil {
		t.Fatalf("resolve assignment: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerEmployee, "complete", FieldUpdates{"employee_rating": "meeting"}, uuid.Nil); err != nil {
		t.Fatalf("employee complete: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerManager, "complete", FieldUpdates{"manager_rating": "meeting"}, f.manager.ID); err != nil {
		t.Fatalf("manager complete: %v", err)
	}
	return rec
}

func (f *finalizationFixture) readyAspiration(t *testing.T, ctx context.Context) *domain.AspirationCheckIn {
	t.Helper()
	aspiration := testutil.SeedAspiration(t, ctx, f.tx, f.teammate.OrganizationID, "growth-"+uuid.NewString())
	rec, err := f.resolver.ResolveOpenAspiration(ctx, f.teammate.ID, aspiration.ID)
	if err != nil {
		t.Fatalf("resolve aspiration: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerEmployee, "complete", FieldUpdates{"employee_rating": "meeting"}, uuid.Nil); err != nil {
		t.Fatalf("employee complete: %v", err)
	}
	if _, err := f.completion.Apply(ctx, rec, ViewerManager, "complete", FieldUpdates{"manager_rating": "exceeding"}, f.manager.ID); err != nil {
		t.Fatalf("manager complete: %v", err)
	}
	return rec
}

func TestFinalizeBatchHappyPath(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	position := f.readyPosition(t, ctx)
	aspiration := f.readyAspiration(t, ctx)

	batch := FinalizeBatch{
		Position: map[uuid.UUID]FinalizeDecision{
			position.ID: {Finalize: true, OfficialRating: "2", SharedNotes: "agreed on growth"},
		},
		Aspiration: map[uuid.UUID]FinalizeDecision{
			aspiration.ID: {Finalize: true, OfficialRating: "meeting"},
		},
	}
	req := domain.RequestInfo{IP: "10.0.0.1", UserAgent: "test", At: time.Now().UTC()}

	snap, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "quarterly review", req)
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if snap == nil || snap.ID == uuid.Nil {
		t.Fatal("no snapshot returned")
	}
	if len(snap.CapturedValues) == 0 {
		t.Fatal("captured values empty")
	}
	if snap.FinalizedByID != f.manager.ID {
		t.Fatalf("snapshot finalized_by = %s, want %s", snap.FinalizedByID, f.manager.ID)
	}

	dbc := dbctx.Context{Ctx: ctx}
	closedPos, err := f.positions.GetByID(dbc, position.ID)
	if err != nil {
		t.Fatalf("reload position: %v", err)
	}
	if closedPos.Open() {
		t.Fatal("position check-in still open after finalization")
	}
	if closedPos.MaapSnapshotID == nil || *closedPos.MaapSnapshotID != snap.ID {
		t.Fatal("position check-in not linked to snapshot")
	}
	if closedPos.FinalizedByID == nil || *closedPos.FinalizedByID != f.manager.ID {
		t.Fatal("position check-in missing finalizer")
	}
	if closedPos.OfficialRating == nil || *closedPos.OfficialRating != 2 {
		t.Fatal("official rating not persisted")
	}
	if closedPos.SharedNotes != "agreed on growth" {
		t.Fatal("shared notes not persisted")
	}

	closedAsp, err := f.aspirations.GetByID(dbc, aspiration.ID)
	if err != nil {
		t.Fatalf("reload aspiration: %v", err)
	}
	if closedAsp.Open() {
		t.Fatal("aspiration check-in still open after finalization")
	}
	if closedAsp.MaapSnapshotID == nil || *closedAsp.MaapSnapshotID != snap.ID {
		t.Fatal("aspiration check-in not linked to the same snapshot")
	}

	// Closing the record frees the slot: resolving again opens a fresh one.
	fresh, err := f.resolver.ResolveOpenAspiration(ctx, f.teammate.ID, aspiration.AspirationID)
	if err != nil {
		t.Fatalf("re-resolve after close: %v", err)
	}
	if fresh.ID == aspiration.ID {
		t.Fatal("resolver returned the finalized check-in")
	}
}

func TestFinalizeMixedBatchClosesAllKinds(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	position := f.readyPosition(t, ctx)
	first := f.readyAssignment(t, ctx, "ship the migration")
	second := f.readyAssignment(t, ctx, "run support rotation")
	aspiration := f.readyAspiration(t, ctx)

	batch := FinalizeBatch{
		Position: map[uuid.UUID]FinalizeDecision{
			position.ID: {Finalize: true, OfficialRating: "1"},
		},
		Assignment: map[uuid.UUID]FinalizeDecision{
			first.ID:  {Finalize: true, OfficialRating: "meeting", ActualEnergyPercentage: "35"},
			second.ID: {Finalize: true, OfficialRating: "exceeding"},
		},
		Aspiration: map[uuid.UUID]FinalizeDecision{
			aspiration.ID: {Finalize: true, OfficialRating: "meeting"},
		},
	}

	snap, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "quarterly review", domain.RequestInfo{At: time.Now().UTC()})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	dbc := dbctx.Context{Ctx: ctx}
	snaps, err := f.snapshots.ListByTeammate(dbc, f.teammate.ID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 1 {
		t.Fatalf("got %d snapshots, want exactly 1", len(snaps))
	}

	closedPos, err := f.positions.GetByID(dbc, position.ID)
	if err != nil {
		t.Fatalf("reload position: %v", err)
	}
	if closedPos.Open() || closedPos.MaapSnapshotID == nil || *closedPos.MaapSnapshotID != snap.ID {
		t.Fatal("position check-in not closed onto the batch snapshot")
	}

	for _, id := range []uuid.UUID{first.ID, second.ID} {
		closed, err := f.assignments.GetByID(dbc, id)
		if err != nil {
			t.Fatalf("reload assignment %s: %v", id, err)
		}
		if closed.Open() || closed.MaapSnapshotID == nil || *closed.MaapSnapshotID != snap.ID {
			t.Fatalf("assignment check-in %s not closed onto the batch snapshot", id)
		}
	}

	withEnergy, err := f.assignments.GetByID(dbc, first.ID)
	if err != nil {
		t.Fatalf("reload assignment: %v", err)
	}
	if withEnergy.OfficialRating == nil || *withEnergy.OfficialRating != "meeting" {
		t.Fatal("assignment official rating not persisted")
	}
	if withEnergy.ActualEnergyPercentage == nil || *withEnergy.ActualEnergyPercentage != 35 {
		t.Fatal("actual energy percentage not persisted")
	}

	closedAsp, err := f.aspirations.GetByID(dbc, aspiration.ID)
	if err != nil {
		t.Fatalf("reload aspiration: %v", err)
	}
	if closedAsp.Open() || closedAsp.MaapSnapshotID == nil || *closedAsp.MaapSnapshotID != snap.ID {
		t.Fatal("aspiration check-in not closed onto the batch snapshot")
	}
}

func TestFinalizeRejectsMalformedEnergy(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	rec := f.readyAssignment(t, ctx, "ship it")
	batch := FinalizeBatch{
		Assignment: map[uuid.UUID]FinalizeDecision{
			rec.ID: {Finalize: true, OfficialRating: "meeting", ActualEnergyPercentage: "35abc"},
		},
	}

	_, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
	if _, ok := verr.Fields["actual_energy_percentage"]; !ok {
		t.Fatalf("fields = %v, want actual_energy_percentage", verr.Fields)
	}

	dbc := dbctx.Context{Ctx: ctx}
	reloaded, err := f.assignments.GetByID(dbc, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Open() {
		t.Fatal("rejected batch closed the check-in")
	}
	snaps, err := f.snapshots.ListByTeammate(dbc, f.teammate.ID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("%d snapshots created by rejected batch", len(snaps))
	}
}

func TestFinalizeEmptyBatchRejected(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	_, err := f.finalization.Finalize(ctx, f.teammate.ID, FinalizeBatch{}, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	var ae *apierr.Error
	if !errors.As(err, &ae) {
		t.Fatalf("err = %v, want apierr.Error", err)
	}
	if ae.Status != http.StatusBadRequest || ae.Code != "empty_finalization_batch" {
		t.Fatalf("status/code = %d/%s", ae.Status, ae.Code)
	}
	if !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatal("empty batch error lost its invalid-argument cause")
	}
}

func TestFinalizeNotReadyAbortsWholeBatch(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	ready := f.readyPosition(t, ctx)

	// Aspiration completed only on the employee side.
	aspiration := testutil.SeedAspiration(t, ctx, f.tx, f.teammate.OrganizationID, "growth")
	halfDone, err := f.resolver.ResolveOpenAspiration(ctx, f.teammate.ID, aspiration.ID)
	if err != nil {
		t.Fatalf("resolve aspiration: %v", err)
	}
	if _, err := f.completion.Apply(ctx, halfDone, ViewerEmployee, "complete", nil, uuid.Nil); err != nil {
		t.Fatalf("employee complete: %v", err)
	}

	batch := FinalizeBatch{
		Position:   map[uuid.UUID]FinalizeDecision{ready.ID: {Finalize: true}},
		Aspiration: map[uuid.UUID]FinalizeDecision{halfDone.ID: {Finalize: true}},
	}
	_, err = f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	if !errors.Is(err, apperrors.ErrNotReadyForFinalization) {
		t.Fatalf("err = %v, want ErrNotReadyForFinalization", err)
	}

	// The ready record must be untouched: all-or-nothing.
	dbc := dbctx.Context{Ctx: ctx}
	reloaded, err := f.positions.GetByID(dbc, ready.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Open() {
		t.Fatal("ready check-in was closed despite batch failure")
	}
	snaps, err := f.snapshots.ListByTeammate(dbc, f.teammate.ID)
	if err != nil {
		t.Fatalf("list snapshots: %v", err)
	}
	if len(snaps) != 0 {
		t.Fatalf("%d snapshots created by failed batch", len(snaps))
	}
}

func TestFinalizePartialSaveKeepsCheckInOpen(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	rec := f.readyPosition(t, ctx)
	batch := FinalizeBatch{
		Position: map[uuid.UUID]FinalizeDecision{
			rec.ID: {Finalize: false, OfficialRating: "-1", SharedNotes: "draft wording"},
		},
	}

	snap, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "wip", domain.RequestInfo{At: time.Now().UTC()})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	reloaded, err := f.positions.GetByID(dbctx.Context{Ctx: ctx}, rec.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Open() {
		t.Fatal("partial save closed the check-in")
	}
	if reloaded.MaapSnapshotID != nil {
		t.Fatal("partial save linked the check-in to a snapshot")
	}
	if reloaded.OfficialRating == nil || *reloaded.OfficialRating != -1 {
		t.Fatal("official rating not saved")
	}
	if reloaded.SharedNotes != "draft wording" {
		t.Fatal("shared notes not saved")
	}
	if snap == nil {
		t.Fatal("no snapshot returned for partial batch")
	}
}

func TestFinalizeWrongTeammateRejected(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	rec := f.readyPosition(t, ctx)
	other, _ := testutil.SeedCheckInActors(t, ctx, f.tx)

	batch := FinalizeBatch{Position: map[uuid.UUID]FinalizeDecision{rec.ID: {Finalize: true}}}
	_, err := f.finalization.Finalize(ctx, other.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	if !errors.Is(err, apperrors.ErrWrongTeammate) {
		t.Fatalf("err = %v, want ErrWrongTeammate", err)
	}
}

func TestFinalizeAlreadyFinalizedRejected(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	rec := f.readyPosition(t, ctx)
	batch := FinalizeBatch{Position: map[uuid.UUID]FinalizeDecision{rec.ID: {Finalize: true}}}
	if _, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()}); err != nil {
		t.Fatalf("first finalize: %v", err)
	}

	_, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	if !errors.Is(err, apperrors.ErrCheckInFinalized) {
		t.Fatalf("err = %v, want ErrCheckInFinalized", err)
	}
}

func TestAcknowledgeSnapshotOnce(t *testing.T) {
	f, ctx := newFinalizationFixture(t)

	rec := f.readyPosition(t, ctx)
	batch := FinalizeBatch{Position: map[uuid.UUID]FinalizeDecision{rec.ID: {Finalize: true}}}
	snap, err := f.finalization.Finalize(ctx, f.teammate.ID, batch, f.manager.ID, "", domain.RequestInfo{At: time.Now().UTC()})
	if err != nil {
		t.Fatalf("finalize: %v", err)
	}

	req := domain.RequestInfo{IP: "10.0.0.2", At: time.Now().UTC()}

	// Only the teammate's own person may acknowledge.
	if err := f.finalization.AcknowledgeSnapshot(ctx, snap.ID, f.manager.ID, req); !errors.Is(err, apperrors.ErrUnauthorized) {
		t.Fatalf("manager acknowledge err = %v, want ErrUnauthorized", err)
	}

	if err := f.finalization.AcknowledgeSnapshot(ctx, snap.ID, f.teammate.PersonID, req); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	reloaded, err := f.snapshots.GetByID(dbctx.Context{Ctx: ctx}, snap.ID)
	if err != nil {
		t.Fatalf("reload snapshot: %v", err)
	}
	if reloaded.EmployeeAcknowledgedAt == nil {
		t.Fatal("acknowledged_at not set")
	}
	if len(reloaded.AcknowledgementRequestInfo) == 0 {
		t.Fatal("acknowledgement request info not recorded")
	}

	if err := f.finalization.AcknowledgeSnapshot(ctx, snap.ID, f.teammate.PersonID, req); !errors.Is(err, apperrors.ErrAlreadyAcknowledged) {
		t.Fatalf("second acknowledge err = %v, want ErrAlreadyAcknowledged", err)
	}
}
