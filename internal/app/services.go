package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/modules/analysis"
	"github.com/yungbote/supplesafe-backend/internal/modules/extraction"
	"github.com/yungbote/supplesafe-backend/internal/modules/interactions"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
	"github.com/yungbote/supplesafe-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Workspaces *services.WorkspaceStore
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	extractor := extraction.NewAdapter(log, clients.OpenaiClient)
	evaluator := interactions.NewEvaluator(interactions.ShufflerFor(cfg.InteractionSelection))
	log.Info("interaction selection", "mode", cfg.InteractionSelection)

	var (
		archive analysis.LabelArchive
		remover services.LabelRemover
	)
	if clients.LabelArchive != nil {
		archive = clients.LabelArchive
		remover = clients.LabelArchive
	}

	workspaces := services.NewWorkspaceStore(services.WorkspaceDeps{
		Log:         log,
		Medications: repos.Medication,
		History:     repos.History,
		Sessions:    clients.SessionBus,
		Archive:     remover,
		NewAnalysis: func(history analysis.HistoryRecorder) *analysis.Controller {
			return analysis.NewController(analysis.Deps{
				Log:           log,
				Extractor:     extractor,
				Evaluator:     evaluator,
				History:       history,
				Archive:       archive,
				MaxImageBytes: cfg.MaxLabelImageBytes,
			})
		},
	})

	auth := services.NewAuthService(
		db,
		log,
		repos.User,
		repos.UserToken,
		repos.Medication,
		clients.SessionBus,
		cfg.JWTSecretKey,
		cfg.AccessTokenTTL,
	)

	return Services{Auth: auth, Workspaces: workspaces}
}
