package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrSubmissionBusy     = errors.New("submission is being processed")
)

type SubmissionRepository struct {
	db *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{db}
}

func (r *SubmissionRepository) Create(ctx context.Context, submission *model.Submission) error {
	if submission.Status == "" {
		submission.Status = model.StatusPending
	}
	return r.db.WithContext(ctx).Create(submission).Error
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error) {
	var submission model.Submission
	err := r.db.WithContext(ctx).First(&submission, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrSubmissionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *SubmissionRepository) FindPending(ctx context.Context) ([]model.Submission, error) {
	var submissions []model.Submission
	err := r.db.WithContext(ctx).
		Where("status = ?", model.StatusPending).
		Order("submission_date").
		Find(&submissions).Error
	return submissions, err
}

// ListByProfessor returns one page of the professor's submissions, newest first,
// along with the total count.
func (r *SubmissionRepository) ListByProfessor(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]model.Submission, int64, error) {
	var (
		submissions []model.Submission
		total       int64
	)
	owned := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&model.Submission{}).Where("professor_id = ?", professorID)
	}
	if err := owned().Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := owned().
		Order("submission_date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&submissions).Error
	return submissions, total, err
}

// MarkProcessing moves a pending submission to processing. It returns false
// when the submission was not pending, which means another run owns it or it
// already finished.
func (r *SubmissionRepository) MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ? AND status = ?", id, model.StatusPending).
		Updates(map[string]any{
			"status":     model.StatusProcessing,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *SubmissionRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":     model.StatusFailed,
			"updated_at": time.Now(),
		}).Error
}

// Complete stores the analysis and closes the submission in one transaction.
func (r *SubmissionRepository) Complete(ctx context.Context, analysis *model.Analysis) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(analysis).Error; err != nil {
			return fmt.Errorf("insert analysis: %w", err)
		}
		err := tx.Model(&model.Submission{}).
			Where("id = ?", analysis.SubmissionID).
			Updates(map[string]any{
				"status":     model.StatusCompleted,
				"score":      analysis.ScoreGlobal,
				"updated_at": time.Now(),
			}).Error
		if err != nil {
			return fmt.Errorf("update submission: %w", err)
		}
		return nil
	})
}

// ResetForRetry drops previous analyses and puts the submission back to
// pending. A submission that is currently processing is left untouched: the
// row is locked for the read and the status write only applies when the row
// is still not processing.
func (r *SubmissionRepository) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var submission model.Submission
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, "id = ?", id).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSubmissionNotFound
			}
			return err
		}
		if submission.Status == model.StatusProcessing {
			return ErrSubmissionBusy
		}

		if err := tx.Where("submission_id = ?", id).Delete(&model.Analysis{}).Error; err != nil {
			return fmt.Errorf("delete analyses: %w", err)
		}
		result := tx.Model(&model.Submission{}).
			Where("id = ? AND status <> ?", id, model.StatusProcessing).
			Updates(map[string]any{
				"status":     model.StatusPending,
				"score":      nil,
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrSubmissionBusy
		}
		return nil
	})
}

// ReleaseProcessing puts every submission left in processing back to
// pending. It is meant for startup, when no run of this instance can be in
// flight, and returns how many rows were released.
func (r *SubmissionRepository) ReleaseProcessing(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Submission{}).
		Where("status = ?", model.StatusProcessing).
		Updates(map[string]any{
			"status":     model.StatusPending,
			"updated_at": time.Now(),
		})
	return result.RowsAffected, result.Error
}
