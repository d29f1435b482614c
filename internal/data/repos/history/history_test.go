package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/supplesafe-backend/internal/data/repos/testutil"
	"github.com/yungbote/supplesafe-backend/internal/domain"
	"github.com/yungbote/supplesafe-backend/internal/pkg/dbctx"
)

func TestHistoryRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	repo := NewHistoryRepo(db, testutil.Logger(t))
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}

	owner := uuid.New()
	base := time.Now().Add(-time.Hour).UTC()

	created, err := repo.Create(dbc, []*domain.HistoryRecord{
		{
			UserID:             owner,
			SupplementName:     "Vitamin K",
			AnalysisResult:     "Detected 1 ingredients. Checked against: Warfarin",
			Ingredients:        []string{"Vitamin K"},
			CheckedMedications: []string{"Warfarin"},
			CreatedAt:          base,
		},
		{
			UserID:         owner,
			SupplementName: "Zinc",
			AnalysisResult: "Detected 2 ingredients. Checked against: Warfarin",
			Ingredients:    []string{"Zinc", "Vitamin C"},
			CreatedAt:      base.Add(time.Minute),
		},
		{UserID: uuid.New(), SupplementName: "Iron", AnalysisResult: "x", CreatedAt: base},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.ListByUserID(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUserID: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByUserID: expected 2 records, got %d", len(got))
	}
	if got[0].SupplementName != "Zinc" || got[1].SupplementName != "Vitamin K" {
		t.Fatalf("ListByUserID: expected newest first, got %q then %q", got[0].SupplementName, got[1].SupplementName)
	}
	if len(got[1].Ingredients) != 1 || got[1].Ingredients[0] != "Vitamin K" {
		t.Fatalf("ingredients column did not round trip: %+v", got[1].Ingredients)
	}

	n, err := repo.DeleteByUserIDAndIDs(dbc, owner, []uuid.UUID{created[1].ID})
	if err != nil {
		t.Fatalf("DeleteByUserIDAndIDs: %v", err)
	}
	if n != 1 {
		t.Fatalf("DeleteByUserIDAndIDs: expected 1, got %d", n)
	}
	got, err = repo.ListByUserID(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUserID after delete: %v", err)
	}
	if len(got) != 1 || got[0].ID != created[0].ID {
		t.Fatalf("ListByUserID after delete: unexpected %+v", got)
	}
}
