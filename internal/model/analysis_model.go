package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Analysis is the rendered report of one successful pipeline run. Rows are
// written once and only removed when a professor asks for a retry.
type Analysis struct {
	ID                    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SubmissionID          uuid.UUID `gorm:"type:uuid;index;not null" json:"submission_id"`
	ReportContent         string    `gorm:"type:text" json:"report_content"`
	ScoreGlobal           int       `json:"score_global"`
	DocumentValid         bool      `json:"document_valid"`
	Degraded              bool      `json:"degraded"`
	ProcessingTimeSeconds int       `json:"processing_time_seconds"`
	GeneratedAt           time.Time `json:"generated_at"`
}

func (a *Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.GeneratedAt.IsZero() {
		a.GeneratedAt = time.Now()
	}
	return nil
}
