package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
)

func SeedOrganization(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *domain.Organization {
	tb.Helper()
	o := &domain.Organization{
		ID:   uuid.New(),
		Name: name,
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed organization: %v", err)
	}
	return o
}

func SeedPerson(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *domain.Person {
	tb.Helper()
	p := &domain.Person{
		ID:       uuid.New(),
		FullName: "Test Person",
		Email:    email,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed person: %v", err)
	}
	return p
}

func SeedTeammate(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID, personID uuid.UUID) *domain.Teammate {
	tb.Helper()
	t := &domain.Teammate{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PersonID:       personID,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed teammate: %v", err)
	}
	return t
}

func SeedPosition(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, title string) *domain.Position {
	tb.Helper()
	p := &domain.Position{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          title,
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed position: %v", err)
	}
	return p
}

func SeedEmploymentTenure(tb testing.TB, ctx context.Context, tx *gorm.DB, teammateID, positionID uuid.UUID) *domain.EmploymentTenure {
	tb.Helper()
	et := &domain.EmploymentTenure{
		ID:         uuid.New(),
		TeammateID: teammateID,
		PositionID: positionID,
		StartedOn:  time.Now().UTC().AddDate(0, -6, 0),
	}
	if err := tx.WithContext(ctx).Create(et).Error; err != nil {
		tb.Fatalf("seed employment tenure: %v", err)
	}
	return et
}

func SeedAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, title string) *domain.Assignment {
	tb.Helper()
	a := &domain.Assignment{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Title:          title,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed assignment: %v", err)
	}
	return a
}

func SeedAssignmentTenure(tb testing.TB, ctx context.Context, tx *gorm.DB, teammateID, assignmentID uuid.UUID, energy *int) *domain.AssignmentTenure {
	tb.Helper()
	at := &domain.AssignmentTenure{
		ID:                          uuid.New(),
		TeammateID:                  teammateID,
		AssignmentID:                assignmentID,
		AnticipatedEnergyPercentage: energy,
		StartedOn:                   time.Now().UTC().AddDate(0, -3, 0),
	}
	if err := tx.WithContext(ctx).Create(at).Error; err != nil {
		tb.Fatalf("seed assignment tenure: %v", err)
	}
	return at
}

func SeedPositionAssignment(tb testing.TB, ctx context.Context, tx *gorm.DB, positionID, assignmentID uuid.UUID, relation string) *domain.PositionAssignment {
	tb.Helper()
	pa := &domain.PositionAssignment{
		ID:           uuid.New(),
		PositionID:   positionID,
		AssignmentID: assignmentID,
		Relation:     relation,
	}
	if err := tx.WithContext(ctx).Create(pa).Error; err != nil {
		tb.Fatalf("seed position assignment: %v", err)
	}
	return pa
}

func SeedAspiration(tb testing.TB, ctx context.Context, tx *gorm.DB, orgID uuid.UUID, name string) *domain.Aspiration {
	tb.Helper()
	a := &domain.Aspiration{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           name,
	}
	if err := tx.WithContext(ctx).Create(a).Error; err != nil {
		tb.Fatalf("seed aspiration: %v", err)
	}
	return a
}

// SeedCheckInActors seeds the full employee-side graph in one call:
// org, person, teammate, position, active employment tenure.
func SeedCheckInActors(tb testing.TB, ctx context.Context, tx *gorm.DB) (*domain.Teammate, *domain.EmploymentTenure) {
	tb.Helper()
	org := SeedOrganization(tb, ctx, tx, "org")
	person := SeedPerson(tb, ctx, tx, uuid.NewString()+"@example.com")
	teammate := SeedTeammate(tb, ctx, tx, org.ID, person.ID)
	position := SeedPosition(tb, ctx, tx, org.ID, "Engineer")
	tenure := SeedEmploymentTenure(tb, ctx, tx, teammate.ID, position.ID)
	return teammate, tenure
}
