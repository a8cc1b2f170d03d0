package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type AssignmentRepo interface {
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Assignment, error)
}

type assignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return &assignmentRepo{db: db, log: baseLog.With("repo", "AssignmentRepo")}
}

func (r *assignmentRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*domain.Assignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*domain.Assignment
	if len(ids) == 0 {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type PositionAssignmentRepo interface {
	ListByPosition(dbc dbctx.Context, positionID uuid.UUID) ([]*domain.PositionAssignment, error)
}

type positionAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPositionAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) PositionAssignmentRepo {
	return &positionAssignmentRepo{db: db, log: baseLog.With("repo", "PositionAssignmentRepo")}
}

func (r *positionAssignmentRepo) ListByPosition(dbc dbctx.Context, positionID uuid.UUID) ([]*domain.PositionAssignment, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*domain.PositionAssignment
	if positionID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Preload("Assignment").
		Where("position_id = ?", positionID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type AspirationRepo interface {
	ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*domain.Aspiration, error)
}

type aspirationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAspirationRepo(db *gorm.DB, baseLog *logger.Logger) AspirationRepo {
	return &aspirationRepo{db: db, log: baseLog.With("repo", "AspirationRepo")}
}

func (r *aspirationRepo) ListByOrganization(dbc dbctx.Context, organizationID uuid.UUID) ([]*domain.Aspiration, error) {
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var results []*domain.Aspiration
	if organizationID == uuid.Nil {
		return results, nil
	}
	if err := t.WithContext(dbc.Ctx).
		Where("organization_id = ?", organizationID).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
