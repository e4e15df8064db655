package dto

import (
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/google/uuid"
)

type SubmissionDTO struct {
	ID             uuid.UUID `json:"id"`
	StudentName    string    `json:"student_name"`
	StudentEmail   string    `json:"student_email"`
	ProjectTitle   string    `json:"project_title"`
	ProfessorID    uuid.UUID `json:"professor_id"`
	FileName       string    `json:"file_name"`
	FileSize       int64     `json:"file_size"`
	Status         string    `json:"status"` // pending, processing, completed, failed
	Score          *int      `json:"score"`
	SubmissionDate time.Time `json:"submission_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SubmissionStatusDTO is the public status view; it leaves out the student's contact.
type SubmissionStatusDTO struct {
	ID             uuid.UUID `json:"id"`
	ProjectTitle   string    `json:"project_title"`
	Status         string    `json:"status"`
	Score          *int      `json:"score"`
	SubmissionDate time.Time `json:"submission_date"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ReportDTO struct {
	SubmissionID          uuid.UUID `json:"submission_id"`
	ReportHTML            string    `json:"report_html"`
	Score                 int       `json:"score"`
	DocumentValid         bool      `json:"document_valid"`
	Degraded              bool      `json:"degraded"`
	ProcessingTimeSeconds int       `json:"processing_time_seconds"`
	GeneratedAt           time.Time `json:"generated_at"`
}

func NewSubmissionDTO(s *model.Submission) SubmissionDTO {
	return SubmissionDTO{
		ID:             s.ID,
		StudentName:    s.StudentName,
		StudentEmail:   s.StudentEmail,
		ProjectTitle:   s.ProjectTitle,
		ProfessorID:    s.ProfessorID,
		FileName:       s.FileName,
		FileSize:       s.FileSize,
		Status:         s.Status,
		Score:          s.Score,
		SubmissionDate: s.SubmissionDate,
		UpdatedAt:      s.UpdatedAt,
	}
}

func NewSubmissionStatusDTO(s *model.Submission) SubmissionStatusDTO {
	return SubmissionStatusDTO{
		ID:             s.ID,
		ProjectTitle:   s.ProjectTitle,
		Status:         s.Status,
		Score:          s.Score,
		SubmissionDate: s.SubmissionDate,
		UpdatedAt:      s.UpdatedAt,
	}
}

func NewReportDTO(a *model.Analysis) ReportDTO {
	return ReportDTO{
		SubmissionID:          a.SubmissionID,
		ReportHTML:            a.ReportContent,
		Score:                 a.ScoreGlobal,
		DocumentValid:         a.DocumentValid,
		Degraded:              a.Degraded,
		ProcessingTimeSeconds: a.ProcessingTimeSeconds,
		GeneratedAt:           a.GeneratedAt,
	}
}
