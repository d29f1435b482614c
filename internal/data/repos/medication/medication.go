package medication

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type MedicationRepo interface {
	Create(dbc dbctx.Context, meds []*domain.Medication) ([]*domain.Medication, error)
	ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Medication, error)
	DeleteByUserIDAndIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)
}

type medicationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	repoLog := baseLog.With("repo", "MedicationRepo")
	return &medicationRepo{db: db, log: repoLog}
}

func (r *medicationRepo) Create(dbc dbctx.Context, meds []*domain.Medication) ([]*domain.Medication, error) {
	if len(meds) == 0 {
		return []*domain.Medication{}, nil
	}
	if err := dbc.Conn(r.db).Create(&meds).Error; err != nil {
		return nil, err
	}
	return meds, nil
}

// ListByUserID returns the user's medications oldest first.
func (r *medicationRepo) ListByUserID(dbc dbctx.Context, userID uuid.UUID) ([]*domain.Medication, error) {
	var results []*domain.Medication
	if userID == uuid.Nil {
		return results, nil
	}
	if err := dbc.Conn(r.db).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// DeleteByUserIDAndIDs deletes only rows owned by userID and reports how many went.
func (r *medicationRepo) DeleteByUserIDAndIDs(dbc dbctx.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if userID == uuid.Nil || len(ids) == 0 {
		return 0, nil
	}
	res := dbc.Conn(r.db).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&domain.Medication{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
