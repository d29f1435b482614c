package app

import (
	"database/sql"

	apphttp "github.com/yungbote/supplesafe-backend/internal/http"
	httpH "github.com/yungbote/supplesafe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Medication *httpH.MedicationHandler
	History    *httpH.HistoryHandler
	Analysis   *httpH.AnalysisHandler
}

func wireHandlers(log *logger.Logger, cfg Config, sqlDB *sql.DB, services Services) Handlers {
	log.Info("Wiring handlers...")
	var pinger httpH.Pinger
	if sqlDB != nil {
		pinger = sqlDB
	}
	return Handlers{
		Health:     httpH.NewHealthHandler(pinger),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Medication: httpH.NewMedicationHandler(services.Workspaces),
		History:    httpH.NewHistoryHandler(services.Workspaces),
		Analysis:   httpH.NewAnalysisHandler(services.Workspaces, int64(cfg.MaxLabelImageBytes)),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func routerConfig(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware) apphttp.RouterConfig {
	serviceName := ""
	if cfg.OtelEnabled {
		serviceName = "supplesafe-api"
	}
	return apphttp.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		AuthMiddleware:    middleware.Auth,
		MedicationHandler: handlers.Medication,
		HistoryHandler:    handlers.History,
		AnalysisHandler:   handlers.Analysis,
	}
}
