package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/data/repos/auth"
	"github.com/yungbote/supplesafe-backend/internal/data/repos/history"
	"github.com/yungbote/supplesafe-backend/internal/data/repos/medication"
	"github.com/yungbote/supplesafe-backend/internal/data/repos/user"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo
type MedicationRepo = medication.MedicationRepo
type HistoryRepo = history.HistoryRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
func NewMedicationRepo(db *gorm.DB, baseLog *logger.Logger) MedicationRepo {
	return medication.NewMedicationRepo(db, baseLog)
}
func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	return history.NewHistoryRepo(db, baseLog)
}
