package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Medication is one drug on a user's list. Rows are never updated in place; an edit is a
// delete followed by a create.
type Medication struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	Name      string    `gorm:"not null;column:name" json:"name"`
	Dose      string    `gorm:"column:dose" json:"dose,omitempty"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (Medication) TableName() string { return "medications" }

func (m *Medication) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func MedicationNames(meds []Medication) []string {
	out := make([]string, 0, len(meds))
	for _, m := range meds {
		out = append(out, m.Name)
	}
	return out
}
