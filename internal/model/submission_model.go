package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Submission struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentName    string    `gorm:"type:varchar(255);not null" json:"student_name"`
	StudentEmail   string    `gorm:"type:varchar(255)" json:"student_email"`
	ProjectTitle   string    `gorm:"type:varchar(255);not null" json:"project_title"`
	ProfessorID    uuid.UUID `gorm:"type:uuid;index" json:"professor_id"`
	FileURL        string    `gorm:"type:text" json:"file_url"`
	FileName       string    `gorm:"type:varchar(255)" json:"file_name"`
	FileSize       int64     `json:"file_size"`
	Status         string    `gorm:"type:varchar(50);index" json:"status"` // pending, processing, completed, failed
	Score          *int      `json:"score"`
	SubmissionDate time.Time `json:"submission_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (s *Submission) TableName() string {
	return "submissions"
}

func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.SubmissionDate.IsZero() {
		s.SubmissionDate = time.Now()
	}
	return nil
}

// IsTerminal reports whether the pipeline has finished with the submission.
func (s *Submission) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusFailed
}
