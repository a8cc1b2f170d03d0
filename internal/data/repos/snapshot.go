package repos

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type MaapSnapshotRepo interface {
	Create(dbc dbctx.Context, snap *domain.MaapSnapshot) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.MaapSnapshot, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.MaapSnapshot, error)
	ListByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]*domain.MaapSnapshot, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type maapSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMaapSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) MaapSnapshotRepo {
	return &maapSnapshotRepo{db: db, log: baseLog.With("repo", "MaapSnapshotRepo")}
}

func (r *maapSnapshotRepo) handle(dbc dbctx.Context) *gorm.DB {
	if dbc.Tx != nil {
		return dbc.Tx.WithContext(dbc.Ctx)
	}
	return r.db.WithContext(dbc.Ctx)
}

func (r *maapSnapshotRepo) Create(dbc dbctx.Context, snap *domain.MaapSnapshot) error {
	if snap == nil {
		return nil
	}
	return r.handle(dbc).Create(snap).Error
}

func (r *maapSnapshotRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.MaapSnapshot, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.MaapSnapshot
	if err := r.handle(dbc).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error; err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *maapSnapshotRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*domain.MaapSnapshot, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row domain.MaapSnapshot
	err := r.handle(dbc).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		Limit(1).
		Find(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, nil
	}
	return &row, nil
}

func (r *maapSnapshotRepo) ListByTeammate(dbc dbctx.Context, teammateID uuid.UUID) ([]*domain.MaapSnapshot, error) {
	var results []*domain.MaapSnapshot
	if teammateID == uuid.Nil {
		return results, nil
	}
	if err := r.handle(dbc).
		Where("teammate_id = ?", teammateID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *maapSnapshotRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now().UTC()
	}
	return r.handle(dbc).
		Model(&domain.MaapSnapshot{}).
		Where("id = ?", id).
		Updates(updates).Error
}
