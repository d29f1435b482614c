package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type Repos struct {
	User       repos.UserRepo
	UserToken  repos.UserTokenRepo
	Medication repos.MedicationRepo
	History    repos.HistoryRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:       repos.NewUserRepo(db, log),
		UserToken:  repos.NewUserTokenRepo(db, log),
		Medication: repos.NewMedicationRepo(db, log),
		History:    repos.NewHistoryRepo(db, log),
	}
}
