package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/supplesafe-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, username string) *domain.User {
	tb.Helper()
	u := &domain.User{
		ID:       uuid.New(),
		Username: username,
		Email:    username + "@supplesafe.local",
		Password: "pw",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedMedications(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, names ...string) []domain.Medication {
	tb.Helper()
	out := make([]domain.Medication, 0, len(names))
	for _, name := range names {
		m := domain.Medication{UserID: userID, Name: name}
		if err := tx.WithContext(ctx).Create(&m).Error; err != nil {
			tb.Fatalf("seed medication: %v", err)
		}
		out = append(out, m)
	}
	return out
}
