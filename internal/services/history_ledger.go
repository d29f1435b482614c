package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

// LabelRemover deletes archived label photos.
type LabelRemover interface {
	Delete(ctx context.Context, key string) error
}

// HistoryLedger is the append-only list of past analyses for one client.
type HistoryLedger struct {
	log     *logger.Logger
	repo    repos.HistoryRepo
	archive LabelRemover

	mu    sync.RWMutex
	items []domain.HistoryRecord
}

func NewHistoryLedger(log *logger.Logger, repo repos.HistoryRepo) *HistoryLedger {
	return &HistoryLedger{
		log:  log.With("service", "HistoryLedger"),
		repo: repo,
	}
}

// List returns records newest first. A failed read yields an empty list.
func (h *HistoryLedger) List(ctx context.Context, sess *domain.Session) ([]domain.HistoryRecord, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	rows, err := h.repo.ListByUserID(dbctx.From(ctx), sess.UserID)
	items := make([]domain.HistoryRecord, 0, len(rows))
	if err != nil {
		h.log.Warn("history load failed; returning empty list", "error", err, "user_id", sess.UserID)
	} else {
		for _, rec := range rows {
			if rec != nil {
				items = append(items, *rec)
			}
		}
	}

	h.mu.Lock()
	h.items = items
	h.mu.Unlock()
	return h.view(), nil
}

// Record appends one record; the controller calls it after a successful analysis.
func (h *HistoryLedger) Record(ctx context.Context, sess *domain.Session, rec *domain.HistoryRecord) (*domain.HistoryRecord, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: history record is nil", svcerr.ErrValidation)
	}
	rec.UserID = sess.UserID
	created, err := h.repo.Create(dbctx.From(ctx), []*domain.HistoryRecord{rec})
	if err != nil {
		return nil, fmt.Errorf("%w: insert history: %v", svcerr.ErrPersistence, err)
	}
	if len(created) == 0 || created[0] == nil {
		return nil, fmt.Errorf("%w: insert history returned no row", svcerr.ErrPersistence)
	}
	saved := created[0]

	h.mu.Lock()
	h.items = append([]domain.HistoryRecord{*saved}, h.items...)
	h.mu.Unlock()
	h.log.Info("history recorded", "user_id", sess.UserID, "history_id", saved.ID)
	return saved, nil
}

func (h *HistoryLedger) Remove(ctx context.Context, sess *domain.Session, id uuid.UUID) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	imageKey := h.imageKey(id)
	n, err := h.repo.DeleteByUserIDAndIDs(dbctx.From(ctx), sess.UserID, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("%w: remove history: %v", svcerr.ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: history record %s", svcerr.ErrNotFound, id)
	}

	h.mu.Lock()
	kept := h.items[:0:0]
	for _, rec := range h.items {
		if rec.ID != id {
			kept = append(kept, rec)
		}
	}
	h.items = kept
	h.mu.Unlock()

	if imageKey != "" && h.archive != nil {
		if err := h.archive.Delete(ctx, imageKey); err != nil {
			h.log.Warn("archived label delete failed", "error", err, "history_id", id)
		}
	}
	return nil
}

func (h *HistoryLedger) imageKey(id uuid.UUID) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, rec := range h.items {
		if rec.ID == id {
			return rec.LabelImageKey
		}
	}
	return ""
}

// Cached returns the locally held view without touching the store.
func (h *HistoryLedger) Cached() []domain.HistoryRecord {
	return h.view()
}

func (h *HistoryLedger) view() []domain.HistoryRecord {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]domain.HistoryRecord, len(h.items))
	copy(out, h.items)
	return out
}

// Clear drops the local view, used when the session ends.
func (h *HistoryLedger) Clear() {
	h.mu.Lock()
	h.items = nil
	h.mu.Unlock()
}
