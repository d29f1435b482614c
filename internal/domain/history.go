package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryRecord is the frozen summary of one completed analysis. It is never updated.
type HistoryRecord struct {
	ID                 uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID                   `gorm:"type:uuid;index;not null;column:user_id" json:"user_id"`
	SupplementName     string                      `gorm:"not null;column:supplement_name" json:"supplement_name"`
	AnalysisResult     string                      `gorm:"type:text;not null;column:analysis_result" json:"analysis_result"`
	Ingredients        datatypes.JSONSlice[string] `gorm:"column:ingredients" json:"ingredients"`
	CheckedMedications datatypes.JSONSlice[string] `gorm:"column:checked_medications" json:"checked_medications"`
	LabelImageKey      string                      `gorm:"column:label_image_key" json:"label_image_key,omitempty"`
	CreatedAt          time.Time                   `gorm:"not null;autoCreateTime;index" json:"created_at"`
}

func (HistoryRecord) TableName() string { return "history" }

func (h *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}

// HistorySummary renders the text stored with a history record, e.g.
// "Detected 1 ingredients. Checked against: Warfarin".
func HistorySummary(ingredientCount int, meds []Medication) string {
	return fmt.Sprintf("Detected %d ingredients. Checked against: %s", ingredientCount, strings.Join(MedicationNames(meds), ", "))
}
