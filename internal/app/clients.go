package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/yungbote/supplesafe-backend/internal/clients/gcp"
	"github.com/yungbote/supplesafe-backend/internal/clients/openai"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
	"github.com/yungbote/supplesafe-backend/internal/realtime/bus"
)

type Clients struct {
	SessionBus bus.Bus
	// Nil when no extraction key is configured; analyses then report not-ready.
	OpenaiClient openai.Client
	// Nil unless LABEL_GCS_BUCKET_NAME is set.
	LabelArchive gcp.LabelArchive
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Redis
	if cfg.RedisAddr != "" {
		b, err := bus.NewRedisBus(ctx, log, cfg.RedisAddr, cfg.RedisSessionChannel)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis session bus: %w", err)
		}
		out.SessionBus = b
	} else {
		out.SessionBus = bus.NewMemoryBus()
	}

	// Openai
	ai, err := openai.NewClient(log, openai.Config{
		APIKey:  cfg.ExtractionAPIKey,
		BaseURL: cfg.ExtractionBaseURL,
		Model:   cfg.ExtractionModel,
		Timeout: cfg.ExtractionTimeout,
	})
	switch {
	case errors.Is(err, openai.ErrMissingAPIKey):
		log.Warn("extraction api key not set; label analysis disabled")
	case err != nil:
		_ = out.SessionBus.Close()
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	default:
		out.OpenaiClient = ai
	}

	// Gcs
	if cfg.LabelBucketName != "" {
		archive, err := gcp.NewLabelArchive(ctx, log, cfg.LabelBucketName)
		if err != nil {
			_ = out.SessionBus.Close()
			return Clients{}, fmt.Errorf("init label archive: %w", err)
		}
		out.LabelArchive = archive
	}

	return out, nil
}

func (c Clients) Close() {
	if c.SessionBus != nil {
		_ = c.SessionBus.Close()
	}
}
