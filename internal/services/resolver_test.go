package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/data/repos/testutil"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	apperrors "github.com/ar3/our-gruuv-sub014/internal/pkg/errors"
)

func newTestResolver(tb testing.TB, tx *gorm.DB) ResolverService {
	tb.Helper()
	log := testutil.Logger(tb)
	return NewResolverService(
		log,
		repos.NewEmploymentTenureRepo(tx, log),
		repos.NewAssignmentTenureRepo(tx, log),
		repos.NewPositionCheckInRepo(tx, log),
		repos.NewAssignmentCheckInRepo(tx, log),
		repos.NewAspirationCheckInRepo(tx, log),
	)
}

func TestResolveOpenPositionFindOrCreate(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, tenure := testutil.SeedCheckInActors(t, ctx, tx)
	resolver := newTestResolver(t, tx)

	first, err := resolver.ResolveOpenPosition(ctx, teammate.ID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	if first.EmploymentTenureID != tenure.ID {
		t.Fatalf("check-in bound to tenure %s, want %s", first.EmploymentTenureID, tenure.ID)
	}
	if !first.Open() {
		t.Fatal("new check-in not open")
	}

	second, err := resolver.ResolveOpenPosition(ctx, teammate.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("second resolve created a new row: %s vs %s", second.ID, first.ID)
	}
}

func TestResolveOpenPositionNoActiveTenure(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	org := testutil.SeedOrganization(t, ctx, tx, "org")
	person := testutil.SeedPerson(t, ctx, tx, uuid.NewString()+"@example.com")
	teammate := testutil.SeedTeammate(t, ctx, tx, org.ID, person.ID)

	resolver := newTestResolver(t, tx)
	if _, err := resolver.ResolveOpenPosition(ctx, teammate.ID); !errors.Is(err, apperrors.ErrNoActiveTenure) {
		t.Fatalf("err = %v, want ErrNoActiveTenure", err)
	}
}

func TestResolveOpenAssignmentWithAndWithoutTenure(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	org := teammate.OrganizationID
	withTenure := testutil.SeedAssignment(t, ctx, tx, org, "held")
	tenure := testutil.SeedAssignmentTenure(t, ctx, tx, teammate.ID, withTenure.ID, intPtr(60))
	without := testutil.SeedAssignment(t, ctx, tx, org, "suggested only")

	resolver := newTestResolver(t, tx)

	held, err := resolver.ResolveOpenAssignment(ctx, teammate.ID, withTenure.ID)
	if err != nil {
		t.Fatalf("resolve held assignment: %v", err)
	}
	if held.AssignmentTenureID == nil || *held.AssignmentTenureID != tenure.ID {
		t.Fatal("active tenure not linked to the check-in")
	}

	loose, err := resolver.ResolveOpenAssignment(ctx, teammate.ID, without.ID)
	if err != nil {
		t.Fatalf("resolve tenure-less assignment: %v", err)
	}
	if loose.AssignmentTenureID != nil {
		t.Fatal("tenure-less check-in got a tenure link")
	}
	if loose.AssignmentID != without.ID {
		t.Fatalf("check-in bound to %s, want %s", loose.AssignmentID, without.ID)
	}
}

func TestResolveOpenAspirationReuse(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	aspiration := testutil.SeedAspiration(t, ctx, tx, teammate.OrganizationID, "craft")

	resolver := newTestResolver(t, tx)

	first, err := resolver.ResolveOpenAspiration(ctx, teammate.ID, aspiration.ID)
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := resolver.ResolveOpenAspiration(ctx, teammate.ID, aspiration.ID)
	if err != nil {
		t.Fatalf("second resolve: %v", err)
	}
	if first.ID != second.ID {
		t.Fatal("repeated resolution created a duplicate open check-in")
	}
}

func TestOpenCheckInUniquenessEnforced(t *testing.T) {
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	ctx := context.Background()

	teammate, _ := testutil.SeedCheckInActors(t, ctx, tx)
	aspiration := testutil.SeedAspiration(t, ctx, tx, teammate.OrganizationID, "craft")

	resolver := newTestResolver(t, tx)
	existing, err := resolver.ResolveOpenAspiration(ctx, teammate.ID, aspiration.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	// Inserting a second open row for the same pair must hit the partial
	// unique index. Savepoint so the poisoned statement doesn't take the
	// whole test transaction down.
	log := testutil.Logger(t)
	repo := repos.NewAspirationCheckInRepo(tx, log)
	tx.SavePoint("dup")
	dup := &domain.AspirationCheckIn{
		CheckInCore: domain.CheckInCore{ID: uuid.New(), TeammateID: teammate.ID, CheckInStartedOn: existing.CheckInStartedOn},
		AspirationID: aspiration.ID,
	}
	createErr := repo.Create(dbctx.Context{Ctx: ctx}, dup)
	tx.RollbackTo("dup")

	if createErr == nil {
		t.Fatal("duplicate open check-in accepted")
	}
	if !repos.IsUniqueViolation(createErr) {
		t.Fatalf("err = %v, want unique violation", createErr)
	}
}
