package repos

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/ar3/our-gruuv-sub014/internal/domain"
	"github.com/ar3/our-gruuv-sub014/internal/pkg/dbctx"
	"github.com/ar3/our-gruuv-sub014/internal/platform/logger"
)

type TeammateRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Teammate, error)
}

type teammateRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTeammateRepo(db *gorm.DB, baseLog *logger.Logger) TeammateRepo {
	return &teammateRepo{db: db, log: baseLog.With("repo", "TeammateRepo")}
}

func (r *teammateRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*domain.Teammate, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	t := dbc.Tx
	if t == nil {
		t = r.db
	}
	var row domain.Teammate
	if err := t.WithContext(dbc.Ctx).
		Preload("Person").
		Preload("Organization").
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
