package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type EmploymentTenureRepo interface {
	GetActiveByTeammate(dbc dbctx.Context, teammateID uuid.UUID) (*domain.EmploymentTenure, error)
}

type employmentTenureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewEmploymentTenureRepo(db *gorm.DB, baseLog *logger.Logger) EmploymentTenureRepo {
	return &employmentTenureRepo{db: db, log: baseLog.With("repo", "EmploymentTenureRepo")}
}

func (r *employmentTenureRepo) GetActiveByTeammate(dbc dbctx.Context, teammateID uuid.UUID) (*domain.EmploymentTenure, error) {
	if teammateID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row domain.EmploymentTenure
	if err := t.WithContext(dbc.Ctx).
		Preload("Position").
		Where("teammate_id = ? AND ended_on IS NULL", teammateID).
		Order("started_on DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

type AssignmentTenureRepo interface {
	ListActiveByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]*domain.AssignmentTenure, error)
	GetActiveByTeammateAndAssignment(dbc dbctx.Context, teammateID, assignmentID uuid.UUID) (*domain.AssignmentTenure, error)
}

type assignmentTenureRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentTenureRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentTenureRepo {
	return &assignmentTenureRepo{db: db, log: baseLog.With("repo", "AssignmentTenureRepo")}
}

func (r *assignmentTenureRepo) ListActiveByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]*domain.AssignmentTenure, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*domain.AssignmentTenure
	if teammateID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Assignment").
		Where("teammate_id = ? AND ended_on IS NULL", teammateID).
		Order("started_on ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *assignmentTenureRepo) GetActiveByTeammateAndAssignment(dbc dbctx.Context, teammateID, assignmentID uuid.UUID) (*domain.AssignmentTenure, error) {
	if teammateID == uuid.Nil || assignmentID == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row domain.AssignmentTenure
	if err := t.WithContext(dbc.Ctx).
		Where("teammate_id = ? AND assignment_id = ? AND ended_on IS NULL", teammateID, assignmentID).
		Order("started_on DESC").
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}
