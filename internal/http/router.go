package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/supplesafe-backend/internal/http/handlers"
	httpMW "github.com/yungbote/supplesafe-backend/internal/http/middleware"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string

	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	MedicationHandler *httpH.MedicationHandler
	HistoryHandler    *httpH.HistoryHandler
	AnalysisHandler   *httpH.AnalysisHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.AttachClientID())
	if cfg.AuthMiddleware != nil {
		r.Use(cfg.AuthMiddleware.OptionalAuth())
	}
	r.Use(httpMW.RequestLogger(cfg.Log))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/register", cfg.AuthHandler.Register)
			api.POST("/login", cfg.AuthHandler.Login)
			api.GET("/session", cfg.AuthHandler.Session)
		}

		// Anonymous clients get the demo list and can run analyses without history.
		if cfg.MedicationHandler != nil {
			api.GET("/medications", cfg.MedicationHandler.List)
		}
		if cfg.AnalysisHandler != nil {
			api.GET("/analysis", cfg.AnalysisHandler.Get)
			api.POST("/analysis/image", cfg.AnalysisHandler.StageImage)
			api.POST("/analysis/check", cfg.AnalysisHandler.Check)
			api.POST("/analysis/reset", cfg.AnalysisHandler.Reset)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/logout", cfg.AuthHandler.Logout)
		}

		// Medications
		if cfg.MedicationHandler != nil {
			protected.POST("/medications", cfg.MedicationHandler.Add)
			protected.POST("/medications/seed", cfg.MedicationHandler.Seed)
			protected.DELETE("/medications/:id", cfg.MedicationHandler.Remove)
		}

		// History
		if cfg.HistoryHandler != nil {
			protected.GET("/history", cfg.HistoryHandler.List)
			protected.DELETE("/history/:id", cfg.HistoryHandler.Remove)
		}
	}

	return r
}
