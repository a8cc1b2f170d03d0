package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// =========================
		// Org structure
		// =========================
		&domain.Organization{},
		&domain.Person{},
		&domain.Teammate{},

		// =========================
		// Review subjects
		// =========================
		&domain.Position{},
		&domain.EmploymentTenure{},
		&domain.Assignment{},
		&domain.AssignmentTenure{},
		&domain.PositionAssignment{},
		&domain.Aspiration{},

		// =========================
		// Check-ins + audit
		// =========================
		&domain.PositionCheckIn{},
		&domain.AssignmentCheckIn{},
		&domain.AspirationCheckIn{},
		&domain.MaapSnapshot{},
	)
}

// EnsureCheckInIndexes creates the partial unique indexes that guarantee at
// most one open check-in per (teammate, subject). Find-then-create alone is
// race-prone; the resolver relies on these indexes and re-reads on 23505.
func EnsureCheckInIndexes(db *gorm.DB) error {
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return fmt.Errorf("enable uuid-ossp: %w", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_position_check_ins_open
		ON position_check_ins (teammate_id, employment_tenure_id)
		WHERE official_check_in_completed_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_position_check_ins_open: %w", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_assignment_check_ins_open
		ON assignment_check_ins (teammate_id, assignment_id)
		WHERE official_check_in_completed_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_assignment_check_ins_open: %w", err)
	}

	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_aspiration_check_ins_open
		ON aspiration_check_ins (teammate_id, aspiration_id)
		WHERE official_check_in_completed_at IS NULL;
	`).Error; err != nil {
		return fmt.Errorf("create idx_aspiration_check_ins_open: %w", err)
	}

	// Finalized check-ins are queried by snapshot for the audit view.
	if err := db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_maap_snapshots_teammate_created
		ON maap_snapshots (teammate_id, created_at DESC);
	`).Error; err != nil {
		return fmt.Errorf("create idx_maap_snapshots_teammate_created: %w", err)
	}

	return nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	if err := AutoMigrateAll(s.db); err != nil {
		s.log.Error("Auto migration failed", "error", err)
		return err
	}
	if err := EnsureCheckInIndexes(s.db); err != nil {
		s.log.Error("Check-in index migration failed", "error", err)
		return err
	}
	return nil
}
