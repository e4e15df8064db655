package repository

import (
	"context"
	"errors"

	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrAnalysisNotFound = errors.New("analysis not found")

type AnalysisRepository struct {
	db *gorm.DB
}

func NewAnalysisRepository(db *gorm.DB) *AnalysisRepository {
	return &AnalysisRepository{db}
}

// FindLatestBySubmission returns the most recent analysis of a submission.
func (r *AnalysisRepository) FindLatestBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.Analysis, error) {
	var analysis model.Analysis
	err := r.db.WithContext(ctx).
		Where("submission_id = ?", submissionID).
		Order("generated_at DESC").
		First(&analysis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}
