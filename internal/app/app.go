package app

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/data/db"
	apphttp "github.com/yungbote/supplesafe-backend/internal/http"
	"github.com/yungbote/supplesafe-backend/internal/observability"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

const maintenanceInterval = 10 * time.Minute

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Server   *apphttp.Server
	Cfg      Config
	Repos    Repos
	Clients  Clients
	Services Services

	store        *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context) (*App, error) {
	LoadDotEnv()

	log, err := logger.New(LoadConfig(nil).LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg := LoadConfig(log)

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: "supplesafe-api",
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSampleRatio,
	})

	store, err := db.Open(cfg.DB, log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init record store: %w", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		_ = store.Close()
		log.Sync()
		return nil, fmt.Errorf("record store automigrate: %w", err)
	}
	theDB := store.DB()

	clientset, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = store.Close()
		log.Sync()
		return nil, err
	}

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clientset)

	sqlDB, err := theDB.DB()
	if err != nil {
		log.Warn("sql handle unavailable; healthcheck will not ping", "error", err)
		sqlDB = nil
	}
	handlerset := wireHandlers(log, cfg, sqlDB, serviceset)
	middleware := wireMiddleware(log, serviceset)
	server := apphttp.NewServer(":"+cfg.Port, routerConfig(log, cfg, handlerset, middleware))

	return &App{
		Log:          log,
		DB:           theDB,
		Server:       server,
		Cfg:          cfg,
		Repos:        reposet,
		Clients:      clientset,
		Services:     serviceset,
		store:        store,
		otelShutdown: otelShutdown,
	}, nil
}

// Start launches background maintenance. Calling it twice is a no-op.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go a.maintain(ctx, maintenanceInterval)
}

// maintain purges expired tokens and drops idle client workspaces.
func (a *App) maintain(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		if n, err := a.Services.Auth.PurgeExpiredTokens(ctx); err != nil {
			a.Log.Warn("expired token purge failed", "error", err)
		} else if n > 0 {
			a.Log.Info("purged expired tokens", "count", n)
		}
		if n := a.Services.Workspaces.Sweep(a.Cfg.WorkspaceIdleTimeout); n > 0 {
			a.Log.Info("released idle workspaces", "count", n)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "port", a.Cfg.Port)
	return a.Server.Run()
}

// Shutdown drains HTTP traffic, then releases workspaces and clients.
func (a *App) Shutdown(ctx context.Context) error {
	if a == nil {
		return nil
	}
	var err error
	if a.Server != nil {
		err = a.Server.Shutdown(ctx)
	}
	a.Close()
	if a.otelShutdown != nil {
		if oerr := a.otelShutdown(ctx); oerr != nil {
			a.Log.Warn("otel shutdown failed", "error", oerr)
		}
	}
	return err
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Workspaces != nil {
		a.Services.Workspaces.Shutdown()
	}
	a.Clients.Close()
	a.Clients = Clients{}
	if a.store != nil {
		_ = a.store.Close()
		a.store = nil
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
