package history

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type HistoryRepo interface {
	Create(dbc dbctx.Context, records []*domain.HistoryRecord) ([]*domain.HistoryRecord, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.HistoryRecord, error)
	DeleteByUserIDAndIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

func (r *historyRepo) Create(dbc dbctx.Context, records []*domain.HistoryRecord) ([]*domain.HistoryRecord, error) {
	if len(records) == 0 {
		return []*domain.HistoryRecord{}, nil
	}
	if err := dbc.Conn(r.db).Create(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// ListByUserID returns the user's records newest first.
func (r *historyRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.HistoryRecord, error) {
	var results []*domain.HistoryRecord
	if userID == uuid.Nil {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *historyRepo) DeleteByUserIDAndIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if userID == uuid.Nil || len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&domain.HistoryRecord{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
