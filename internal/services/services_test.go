package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos"
	"github.com/yungbote/supplesafe-backend/internal/data/repos/testutil"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
	svcerr "github.com/yungbote/supplesafe-backend/internal/pkg/errors"
)

type failingMedicationRepo struct{}

func (failingMedicationRepo) Create(dbctx.Context, []*domain.Medication) ([]*domain.Medication, error) {
	return nil, errors.New("store down")
}
func (failingMedicationRepo) ListByUserID(dbctx.Context, uuid.UUID) ([]*domain.Medication, error) {
	return nil, errors.New("store down")
}
func (failingMedicationRepo) DeleteByUserIDAndIDs(dbctx.Context, uuid.UUID, []uuid.UUID) (int64, error) {
	return 0, errors.New("store down")
}

type failingHistoryRepo struct{}

func (failingHistoryRepo) Create(dbctx.Context, []*domain.HistoryRecord) ([]*domain.HistoryRecord, error) {
	return nil, errors.New("store down")
}
func (failingHistoryRepo) ListByUserID(dbctx.Context, uuid.UUID) ([]*domain.HistoryRecord, error) {
	return nil, errors.New("store down")
}
func (failingHistoryRepo) DeleteByUserIDAndIDs(dbctx.Context, uuid.UUID, []uuid.UUID) (int64, error) {
	return 0, errors.New("store down")
}

func testSession() *domain.Session {
	return &domain.Session{UserID: uuid.New(), Username: "ana", TokenID: uuid.New()}
}

func TestRegistryAnonymousUsesDemoList(t *testing.T) {
	r := NewMedicationRegistry(testutil.Logger(t), failingMedicationRepo{})
	got := r.Load(context.Background(), nil)
	if len(got) != len(domain.DemoMedications()) {
		t.Fatalf("expected demo list, got %+v", got)
	}
	if got[0].Name != "Warfarin" {
		t.Fatalf("unexpected first demo medication %q", got[0].Name)
	}
}

func TestRegistryReadFailureDegradesToEmpty(t *testing.T) {
	r := NewMedicationRegistry(testutil.Logger(t), failingMedicationRepo{})
	got := r.Load(context.Background(), testSession())
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil list, got %+v", got)
	}
	if !r.Loaded() {
		t.Fatalf("registry should be marked loaded")
	}
}

func TestRegistryWritesRequireSession(t *testing.T) {
	db := testutil.DB(t)
	r := NewMedicationRegistry(testutil.Logger(t), repos.NewMedicationRepo(db, testutil.Logger(t)))
	ctx := context.Background()
	if _, err := r.Add(ctx, nil, MedicationInput{Name: "Aspirin"}); !errors.Is(err, svcerr.ErrUnauthorized) {
		t.Fatalf("Add: expected ErrUnauthorized, got %v", err)
	}
	if err := r.Remove(ctx, nil, uuid.New()); !errors.Is(err, svcerr.ErrUnauthorized) {
		t.Fatalf("Remove: expected ErrUnauthorized, got %v", err)
	}
	if _, err := r.SeedDefaults(ctx, nil); !errors.Is(err, svcerr.ErrUnauthorized) {
		t.Fatalf("SeedDefaults: expected ErrUnauthorized, got %v", err)
	}
}

func TestRegistryAddRemoveSeed(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	r := NewMedicationRegistry(log, repos.NewMedicationRepo(db, log))
	ctx := context.Background()
	sess := testSession()

	if got := r.Load(ctx, sess); len(got) != 0 {
		t.Fatalf("expected empty list for a new user, got %+v", got)
	}
	if _, err := r.Add(ctx, sess, MedicationInput{Name: "   "}); !errors.Is(err, svcerr.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank name, got %v", err)
	}
	added, err := r.Add(ctx, sess, MedicationInput{Name: " Aspirin ", Dose: "81mg"})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if added.Name != "Aspirin" || added.ID == uuid.Nil {
		t.Fatalf("unexpected added medication %+v", added)
	}
	if list := r.List(); len(list) != 1 || list[0].ID != added.ID {
		t.Fatalf("expected optimistic local add, got %+v", list)
	}

	if _, err := r.SeedDefaults(ctx, sess); err != nil {
		t.Fatalf("SeedDefaults: %v", err)
	}
	if _, err := r.SeedDefaults(ctx, sess); err != nil {
		t.Fatalf("SeedDefaults twice: %v", err)
	}
	want := 1 + 2*len(domain.DemoMedications())
	if got := len(r.List()); got != want {
		t.Fatalf("expected %d local medications (duplicates accepted), got %d", want, got)
	}
	if got := len(r.Load(ctx, sess)); got != want {
		t.Fatalf("expected %d stored medications, got %d", want, got)
	}

	if err := r.Remove(ctx, sess, added.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, m := range r.List() {
		if m.ID == added.ID {
			t.Fatalf("removed medication still in local list")
		}
	}
	if err := r.Remove(ctx, sess, added.ID); !errors.Is(err, svcerr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second remove, got %v", err)
	}
}

func TestRegistryWriteFailureLeavesStateUntouched(t *testing.T) {
	r := NewMedicationRegistry(testutil.Logger(t), failingMedicationRepo{})
	r.Load(context.Background(), nil)
	before := len(r.List())
	if _, err := r.Add(context.Background(), testSession(), MedicationInput{Name: "Aspirin"}); !errors.Is(err, svcerr.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if len(r.List()) != before {
		t.Fatalf("failed write must not change the local list")
	}
}

func TestHistoryLedger(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := NewHistoryLedger(log, repos.NewHistoryRepo(db, log))
	ctx := context.Background()
	sess := testSession()

	if _, err := h.List(ctx, nil); !errors.Is(err, svcerr.ErrUnauthorized) {
		t.Fatalf("List: expected ErrUnauthorized, got %v", err)
	}
	if err := h.Remove(ctx, nil, uuid.New()); !errors.Is(err, svcerr.ErrUnauthorized) {
		t.Fatalf("Remove: expected ErrUnauthorized, got %v", err)
	}

	first, err := h.Record(ctx, sess, &domain.HistoryRecord{SupplementName: "Zinc", AnalysisResult: "Detected 1 ingredients. Checked against: Warfarin"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	second, err := h.Record(ctx, sess, &domain.HistoryRecord{SupplementName: "Iron", AnalysisResult: "Detected 2 ingredients. Checked against: "})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if cached := h.Cached(); len(cached) != 2 || cached[0].ID != second.ID {
		t.Fatalf("expected newest first in local view, got %+v", cached)
	}

	list, err := h.List(ctx, sess)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 records, got %d", len(list))
	}

	if err := h.Remove(ctx, sess, first.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cached := h.Cached(); len(cached) != 1 || cached[0].ID != second.ID {
		t.Fatalf("expected removed record gone from view, got %+v", cached)
	}

	other := testSession()
	if err := h.Remove(ctx, other, second.ID); !errors.Is(err, svcerr.ErrNotFound) {
		t.Fatalf("another user must not delete the record, got %v", err)
	}
}

func TestHistoryLedgerReadFailureDegrades(t *testing.T) {
	h := NewHistoryLedger(testutil.Logger(t), failingHistoryRepo{})
	list, err := h.List(context.Background(), testSession())
	if err != nil {
		t.Fatalf("read failure should not surface, got %v", err)
	}
	if list == nil || len(list) != 0 {
		t.Fatalf("expected empty list, got %+v", list)
	}
	if _, err := h.Record(context.Background(), testSession(), &domain.HistoryRecord{}); !errors.Is(err, svcerr.ErrPersistence) {
		t.Fatalf("write failure should surface ErrPersistence, got %v", err)
	}
}

// emptyHistoryRepo accepts inserts but hands back no rows.
type emptyHistoryRepo struct{ failingHistoryRepo }

func (emptyHistoryRepo) Create(dbctx.Context, []*domain.HistoryRecord) ([]*domain.HistoryRecord, error) {
	return nil, nil
}

func TestHistoryLedgerRecordWithoutRow(t *testing.T) {
	h := NewHistoryLedger(testutil.Logger(t), emptyHistoryRepo{})
	saved, err := h.Record(context.Background(), testSession(), &domain.HistoryRecord{SupplementName: "Zinc"})
	if !errors.Is(err, svcerr.ErrPersistence) || saved != nil {
		t.Fatalf("expected ErrPersistence for an empty insert result, got %v %+v", err, saved)
	}
	if len(h.Cached()) != 0 {
		t.Fatalf("local view must stay untouched, got %+v", h.Cached())
	}
}

type recordingRemover struct {
	keys []string
}

func (r *recordingRemover) Delete(_ context.Context, key string) error {
	r.keys = append(r.keys, key)
	return nil
}

func TestHistoryLedgerRemovesArchivedLabel(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	h := NewHistoryLedger(log, repos.NewHistoryRepo(db, log))
	remover := &recordingRemover{}
	h.archive = remover
	ctx := context.Background()
	sess := testSession()

	withImage, err := h.Record(ctx, sess, &domain.HistoryRecord{SupplementName: "Zinc", AnalysisResult: "Detected 1 ingredients. Checked against: ", LabelImageKey: "labels/x/1.png"})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	plain, err := h.Record(ctx, sess, &domain.HistoryRecord{SupplementName: "Iron", AnalysisResult: "Detected 1 ingredients. Checked against: "})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := h.Remove(ctx, sess, plain.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(remover.keys) != 0 {
		t.Fatalf("no archive delete expected, got %v", remover.keys)
	}
	if err := h.Remove(ctx, sess, withImage.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(remover.keys) != 1 || remover.keys[0] != "labels/x/1.png" {
		t.Fatalf("expected archived label deleted, got %v", remover.keys)
	}
}
