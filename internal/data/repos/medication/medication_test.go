package medication

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos/testutil"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
)

func TestMedicationRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewMedicationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	owner := uuid.New()
	other := uuid.New()
	base := time.Now().Add(-time.Hour).UTC()

	created, err := repo.Create(dbc, []*domain.Medication{
		{UserID: owner, Name: "Warfarin", Dose: "5mg • Daily", CreatedAt: base},
		{UserID: owner, Name: "Lisinopril", CreatedAt: base.Add(time.Minute)},
		{UserID: other, Name: "Metformin", CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if len(created) != 3 {
		t.Fatalf("Create: expected 3 rows, got %d", len(created))
	}
	for _, m := range created {
		if m.ID == uuid.Nil {
			t.Fatalf("Create: expected id to be assigned")
		}
	}

	got, err := repo.ListByUserID(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(got) != 2 || got[0].Name != "Warfarin" || got[1].Name != "Lisinopril" {
		t.Fatalf("ListByUserID: unexpected result: %+v", got)
	}

	n, err := repo.DeleteByUserIDAndIDs(dbc, other, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("DeleteByUserIDAndIDs (foreign owner): %v", err)
	}
	if n != 0 {
		t.Fatalf("DeleteByUserIDAndIDs must not delete another user's rows, deleted %d", n)
	}

	n, err = repo.DeleteByUserIDAndIDs(dbc, owner, []uuid.UUID{created[0].ID})
	if err != nil {
		t.Fatalf("DeleteByUserIDAndIDs: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteByUserIDAndIDs: expected 1 row, got %d", n)
	}

	got, err = repo.ListByUserID(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUserID after delete: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Lisinopril" {
		t.Fatalf("ListByUserID after delete: unexpected result: %+v", got)
	}
}

func TestMedicationRepoAllowsDuplicates(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMedicationRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	owner := uuid.New()
	for i := 0; i < 2; i++ {
		if _, err := repo.Create(dbc, []*domain.Medication{{UserID: owner, Name: "Warfarin"}}); err != nil {
			t.Fatalf("Create #%d: %v", i, err)
		}
	}
	got, err := repo.ListByUserID(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected duplicate names to be stored, got %d rows", len(got))
	}
}

func TestMedicationRepoScopesDeletesToOwner(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	repo := NewMedicationRepo(db, testutil.Logger(t))
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	owner := testutil.SeedUser(t, ctx, tx, "owner")
	other := testutil.SeedUser(t, ctx, tx, "other")
	meds := testutil.SeedMedications(t, ctx, tx, owner.ID, "Warfarin", "Metformin")

	n, err := repo.DeleteByUserIDAndIDs(dbc, other.ID, []uuid.UUID{meds[0].ID})
	if err != nil {
		t.Fatalf("DeleteByUserIDAndIDs (other): %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no rows deleted for another user, got %d", n)
	}
	got, err := repo.ListByUserID(dbc, owner.ID)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected both medications to remain, got %d", len(got))
	}
}
