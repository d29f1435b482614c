package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
	"github.com/yungbote/supplesafe-backend/internal/pkg/logger"
)

// MedicationRegistry holds one client's medication list. Reads degrade to an empty list;
// writes make one store round trip and then update the local copy.
type MedicationRegistry struct {
	log  *logger.Logger
	repo repos.MedicationRepo

	mu     sync.RWMutex
	items  []domain.Medication
	loaded bool
}

func NewMedicationRegistry(log *logger.Logger, repo repos.MedicationRepo) *MedicationRegistry {
	return &MedicationRegistry{
		log:  log.With("service", "MedicationRegistry"),
		repo: repo,
	}
}

// Load replaces the local list: the demo list when sess is absent, the stored rows otherwise.
func (r *MedicationRegistry) Load(ctx context.Context, sess *domain.Session) []domain.Medication {
	var items []domain.Medication
	if !sess.Authenticated() {
		items = domain.DemoMedications()
	} else {
		rows, err := r.repo.ListByUserID(dbctx.From(ctx), sess.UserID)
		if err != nil {
			r.log.Warn("medication load failed; continuing with empty list", "error", err, "user_id", sess.UserID)
			items = []domain.Medication{}
		} else {
			items = make([]domain.Medication, 0, len(rows))
			for _, m := range rows {
				if m != nil {
					items = append(items, *m)
				}
			}
		}
	}

	r.mu.Lock()
	r.items = items
	r.loaded = true
	r.mu.Unlock()
	return r.List()
}

func (r *MedicationRegistry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

// List returns a copy of the local list.
func (r *MedicationRegistry) List() []domain.Medication {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Medication, len(r.items))
	copy(out, r.items)
	return out
}

func (r *MedicationRegistry) Add(ctx context.Context, sess *domain.Session, in MedicationInput) (domain.Medication, error) {
	if err := requireSession(sess); err != nil {
		return domain.Medication{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	in.Dose = strings.TrimSpace(in.Dose)
	if err := validateInput(in); err != nil {
		return domain.Medication{}, err
	}

	created, err := r.repo.Create(dbctx.From(ctx), []*domain.Medication{{
		UserID: sess.UserID,
		Name:   in.Name,
		Dose:   in.Dose,
	}})
	if err != nil {
		return domain.Medication{}, fmt.Errorf("%w: add medication: %v", svcerr.ErrPersistence, err)
	}
	if len(created) == 0 || created[0] == nil {
		return domain.Medication{}, fmt.Errorf("%w: add medication returned no row", svcerr.ErrPersistence)
	}
	m := *created[0]

	r.mu.Lock()
	r.items = append(r.items, m)
	r.mu.Unlock()
	r.log.Info("medication added", "user_id", sess.UserID, "medication_id", m.ID)
	return m, nil
}

func (r *MedicationRegistry) Remove(ctx context.Context, sess *domain.Session, id uuid.UUID) error {
	if err := requireSession(sess); err != nil {
		return err
	}
	n, err := r.repo.DeleteByUserIDAndIDs(dbctx.From(ctx), sess.UserID, []uuid.UUID{id})
	if err != nil {
		return fmt.Errorf("%w: remove medication: %v", svcerr.ErrPersistence, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: medication %s", svcerr.ErrNotFound, id)
	}

	r.mu.Lock()
	kept := r.items[:0:0]
	for _, m := range r.items {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.items = kept
	r.mu.Unlock()
	r.log.Info("medication removed", "user_id", sess.UserID, "medication_id", id)
	return nil
}

// SeedDefaults inserts the demo list for the user. Calling it twice inserts duplicates.
func (r *MedicationRegistry) SeedDefaults(ctx context.Context, sess *domain.Session) ([]domain.Medication, error) {
	if err := requireSession(sess); err != nil {
		return nil, err
	}
	demo := domain.DemoMedications()
	rows := make([]*domain.Medication, 0, len(demo))
	for _, m := range demo {
		rows = append(rows, &domain.Medication{UserID: sess.UserID, Name: m.Name, Dose: m.Dose})
	}
	created, err := r.repo.Create(dbctx.From(ctx), rows)
	if err != nil {
		return nil, fmt.Errorf("%w: seed medications: %v", svcerr.ErrPersistence, err)
	}
	out := make([]domain.Medication, 0, len(created))
	for _, m := range created {
		out = append(out, *m)
	}

	r.mu.Lock()
	r.items = append(r.items, out...)
	r.mu.Unlock()
	r.log.Info("medications seeded", "user_id", sess.UserID, "count", len(out))
	return out, nil
}
