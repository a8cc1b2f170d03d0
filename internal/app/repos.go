package app

import (
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/data/repos"
	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type Repos struct {
	Teammate           repos.TeammateRepo
	EmploymentTenure   repos.EmploymentTenureRepo
	AssignmentTenure   repos.AssignmentTenureRepo
	Assignment         repos.AssignmentRepo
	PositionAssignment repos.PositionAssignmentRepo
	Aspiration         repos.AspirationRepo
	MaapSnapshot       repos.MaapSnapshotRepo
	PositionCheckIn    *repos.CheckInRepo[domain.PositionCheckIn, *domain.PositionCheckIn]
	AssignmentCheckIn  *repos.CheckInRepo[domain.AssignmentCheckIn, *domain.AssignmentCheckIn]
	AspirationCheckIn  *repos.CheckInRepo[domain.AspirationCheckIn, *domain.AspirationCheckIn]
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Teammate:           repos.NewTeammateRepo(db, log),
		EmploymentTenure:   repos.NewEmploymentTenureRepo(db, log),
		AssignmentTenure:   repos.NewAssignmentTenureRepo(db, log),
		Assignment:         repos.NewAssignmentRepo(db, log),
		PositionAssignment: repos.NewPositionAssignmentRepo(db, log),
		Aspiration:         repos.NewAspirationRepo(db, log),
		MaapSnapshot:       repos.NewMaapSnapshotRepo(db, log),
		PositionCheckIn:    repos.NewPositionCheckInRepo(db, log),
		AssignmentCheckIn:  repos.NewAssignmentCheckInRepo(db, log),
		AspirationCheckIn:  repos.NewAspirationCheckInRepo(db, log),
	}
}
