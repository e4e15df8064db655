package usecase

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/fadilmartias/plan-analyzer/internal/evaluator"
	"github.com/fadilmartias/plan-analyzer/internal/extractor"
	"github.com/fadilmartias/plan-analyzer/internal/metrics"
	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/fadilmartias/plan-analyzer/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultMaxUploadBytes = 15 << 20
	defaultEnqueueTimeout = 5 * time.Second
)

var (
	ErrSubmissionBusy = repository.ErrSubmissionBusy
	ErrFileTooLarge   = errors.New("fichier trop volumineux")
	ErrEmptyFile      = errors.New("fichier vide")
)

type SubmissionStore interface {
	Create(ctx context.Context, submission *model.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Submission, error)
	FindPending(ctx context.Context) ([]model.Submission, error)
	ListByProfessor(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]model.Submission, int64, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) (bool, error)
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, analysis *model.Analysis) error
	ResetForRetry(ctx context.Context, id uuid.UUID) error
	ReleaseProcessing(ctx context.Context) (int64, error)
}

type AnalysisStore interface {
	FindLatestBySubmission(ctx context.Context, submissionID uuid.UUID) (*model.Analysis, error)
}

type TextExtractor interface {
	Extract(ctx context.Context, reference string, kind extractor.Kind) (string, error)
}

type PlanEvaluator interface {
	Evaluate(ctx context.Context, text, studentName, projectTitle string) evaluator.Evaluation
}

type ReportFormatter interface {
	Format(ev evaluator.Evaluation, studentName, projectTitle string, processingSeconds int) (string, error)
}

type DocumentStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, reference string) error
}

type JobQueue interface {
	Enqueue(ctx context.Context, submissionID uuid.UUID) error
}

type ReportCache interface {
	Get(ctx context.Context, submissionID uuid.UUID) (*model.Analysis, bool, error)
	Set(ctx context.Context, analysis *model.Analysis) error
	Invalidate(ctx context.Context, submissionID uuid.UUID) error
}

// SubmitInput is one intake request: student metadata plus the raw document.
type SubmitInput struct {
	StudentName  string
	StudentEmail string
	ProjectTitle string
	ProfessorID  uuid.UUID
	FileName     string
	Content      []byte
}

type SubmissionUsecase struct {
	submissions SubmissionStore
	analyses    AnalysisStore
	extractor   TextExtractor
	evaluator   PlanEvaluator
	formatter   ReportFormatter
	store       DocumentStore
	queue       JobQueue
	cache       ReportCache
	logger      *zap.Logger

	maxUploadBytes int64
	enqueueTimeout time.Duration
	now            func() time.Time
}

type Option func(*SubmissionUsecase)

// WithReportCache enables report caching. Without it every lookup hits the database.
func WithReportCache(cache ReportCache) Option {
	return func(uc *SubmissionUsecase) { uc.cache = cache }
}

func WithMaxUploadBytes(n int64) Option {
	return func(uc *SubmissionUsecase) {
		if n > 0 {
			uc.maxUploadBytes = n
		}
	}
}

// WithEnqueueTimeout bounds how long intake waits for room in a full queue.
func WithEnqueueTimeout(d time.Duration) Option {
	return func(uc *SubmissionUsecase) {
		if d > 0 {
			uc.enqueueTimeout = d
		}
	}
}

func NewSubmissionUsecase(
	submissions SubmissionStore,
	analyses AnalysisStore,
	extractor TextExtractor,
	evaluator PlanEvaluator,
	formatter ReportFormatter,
	store DocumentStore,
	queue JobQueue,
	logger *zap.Logger,
	opts ...Option,
) *SubmissionUsecase {
	uc := &SubmissionUsecase{
		submissions:    submissions,
		analyses:       analyses,
		extractor:      extractor,
		evaluator:      evaluator,
		formatter:      formatter,
		store:          store,
		queue:          queue,
		logger:         logger,
		maxUploadBytes: defaultMaxUploadBytes,
		enqueueTimeout: defaultEnqueueTimeout,
		now:            time.Now,
	}
	for _, o := range opts {
		o(uc)
	}
	return uc
}

func contentTypeFor(kind extractor.Kind) string {
	if kind == extractor.KindPaginated {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}

// Submit validates and stores a new document, records the submission as
// pending and schedules it. Format and size are checked before anything is
// written.
func (uc *SubmissionUsecase) Submit(ctx context.Context, in SubmitInput) (*model.Submission, error) {
	kind, err := extractor.KindFromName(in.FileName)
	if err != nil {
		return nil, err
	}
	if len(in.Content) == 0 {
		return nil, ErrEmptyFile
	}
	if int64(len(in.Content)) > uc.maxUploadBytes {
		return nil, fmt.Errorf("%w: %d octets (max %d)", ErrFileTooLarge, len(in.Content), uc.maxUploadBytes)
	}

	id := uuid.New()
	key := "submissions/" + id.String() + strings.ToLower(path.Ext(in.FileName))
	ref, err := uc.store.Upload(ctx, key, in.Content, contentTypeFor(kind))
	if err != nil {
		return nil, fmt.Errorf("upload document: %w", err)
	}

	submission := &model.Submission{
		ID:           id,
		StudentName:  in.StudentName,
		StudentEmail: in.StudentEmail,
		ProjectTitle: in.ProjectTitle,
		ProfessorID:  in.ProfessorID,
		FileURL:      ref,
		FileName:     in.FileName,
		FileSize:     int64(len(in.Content)),
		Status:       model.StatusPending,
	}
	if err := uc.submissions.Create(ctx, submission); err != nil {
		if delErr := uc.store.Delete(ctx, ref); delErr != nil {
			uc.logger.Warn("failed to remove orphaned document", zap.String("reference", ref), zap.Error(delErr))
		}
		return nil, fmt.Errorf("create submission: %w", err)
	}
	metrics.SubmissionsReceived.WithLabelValues(kind.String()).Inc()

	// A submission that cannot be queued stays pending and is picked up by ResumePending.
	enqueueCtx, cancel := context.WithTimeout(ctx, uc.enqueueTimeout)
	defer cancel()
	if err := uc.queue.Enqueue(enqueueCtx, submission.ID); err != nil {
		uc.logger.Warn("submission stored but not queued", zap.Stringer("submission_id", submission.ID), zap.Error(err))
	}

	uc.logger.Info("submission received",
		zap.Stringer("submission_id", submission.ID),
		zap.String("file_name", in.FileName),
		zap.Int64("file_size", submission.FileSize),
	)
	return submission, nil
}

// Process runs the pipeline for one submission: extract, evaluate, format and
// persist. A submission that is not pending is skipped.
func (uc *SubmissionUsecase) Process(ctx context.Context, submissionID uuid.UUID) error {
	log := uc.logger.With(zap.Stringer("submission_id", submissionID))

	submission, err := uc.submissions.FindByID(ctx, submissionID)
	if errors.Is(err, repository.ErrSubmissionNotFound) {
		log.Warn("submission not found, nothing to process")
		return nil
	}
	if err != nil {
		return fmt.Errorf("load submission: %w", err)
	}

	claimed, err := uc.submissions.MarkProcessing(ctx, submissionID)
	if err != nil {
		return fmt.Errorf("claim submission: %w", err)
	}
	if !claimed {
		log.Info("submission not pending, skipping", zap.String("status", submission.Status))
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeSkipped).Inc()
		return nil
	}

	start := uc.now()
	analysis, outcome, err := uc.run(ctx, submission)
	elapsed := uc.now().Sub(start)
	if err != nil {
		metrics.PipelineRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		metrics.PipelineDuration.WithLabelValues(metrics.OutcomeFailed).Observe(elapsed.Seconds())
		// the run context may be what failed; the status write gets its own
		markCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
		defer cancel()
		if markErr := uc.submissions.MarkFailed(markCtx, submissionID); markErr != nil {
			log.Error("failed to mark submission failed", zap.Error(markErr))
		}
		return err
	}

	uc.invalidate(ctx, submissionID)
	metrics.PipelineRuns.WithLabelValues(outcome).Inc()
	metrics.PipelineDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	metrics.EvaluationScore.Observe(float64(analysis.ScoreGlobal))

	log.Info("analysis completed",
		zap.String("outcome", outcome),
		zap.Int("score", analysis.ScoreGlobal),
		zap.Int("processing_seconds", analysis.ProcessingTimeSeconds),
	)
	return nil
}

func (uc *SubmissionUsecase) run(ctx context.Context, submission *model.Submission) (*model.Analysis, string, error) {
	start := uc.now()

	kind, err := extractor.KindFromName(submission.FileName)
	if err != nil {
		kind, err = extractor.KindFromName(submission.FileURL)
		if err != nil {
			return nil, "", err
		}
	}

	text, err := uc.extractor.Extract(ctx, submission.FileURL, kind)
	if err != nil {
		return nil, "", err
	}

	ev := uc.evaluator.Evaluate(ctx, text, submission.StudentName, submission.ProjectTitle)
	seconds := int(uc.now().Sub(start).Seconds())

	html, err := uc.formatter.Format(ev, submission.StudentName, submission.ProjectTitle, seconds)
	if err != nil {
		return nil, "", fmt.Errorf("format report: %w", err)
	}

	analysis := &model.Analysis{
		SubmissionID:          submission.ID,
		ReportContent:         html,
		ScoreGlobal:           ev.ScoreGlobal,
		DocumentValid:         ev.DocumentValid,
		Degraded:              ev.Fallback,
		ProcessingTimeSeconds: seconds,
		GeneratedAt:           uc.now(),
	}
	if err := uc.submissions.Complete(ctx, analysis); err != nil {
		return nil, "", fmt.Errorf("persist analysis: %w", err)
	}

	outcome := metrics.OutcomeCompleted
	switch {
	case ev.Fallback:
		outcome = metrics.OutcomeDegraded
	case !ev.DocumentValid:
		outcome = metrics.OutcomeRejected
	}
	return analysis, outcome, nil
}

// Retry discards previous results and schedules a new run. Only the owning
// professor may retry, and never while a run is in progress.
func (uc *SubmissionUsecase) Retry(ctx context.Context, submissionID, professorID uuid.UUID) error {
	if _, err := uc.owned(ctx, submissionID, professorID); err != nil {
		return err
	}
	if err := uc.submissions.ResetForRetry(ctx, submissionID); err != nil {
		return err
	}
	uc.invalidate(ctx, submissionID)

	if err := uc.queue.Enqueue(ctx, submissionID); err != nil {
		return fmt.Errorf("enqueue retry: %w", err)
	}
	uc.logger.Info("submission queued for retry", zap.Stringer("submission_id", submissionID))
	return nil
}

func (uc *SubmissionUsecase) GetSubmission(ctx context.Context, submissionID uuid.UUID) (*model.Submission, error) {
	return uc.submissions.FindByID(ctx, submissionID)
}

func (uc *SubmissionUsecase) ListSubmissions(ctx context.Context, professorID uuid.UUID, page, pageSize int) ([]model.Submission, int64, error) {
	return uc.submissions.ListByProfessor(ctx, professorID, page, pageSize)
}

// GetReport returns the latest analysis of a submission owned by professorID.
// Submissions owned by someone else are reported as not found.
func (uc *SubmissionUsecase) GetReport(ctx context.Context, submissionID, professorID uuid.UUID) (*model.Analysis, error) {
	if _, err := uc.owned(ctx, submissionID, professorID); err != nil {
		return nil, err
	}

	if uc.cache != nil {
		cached, found, err := uc.cache.Get(ctx, submissionID)
		switch {
		case err != nil:
			uc.logger.Warn("report cache read failed", zap.Stringer("submission_id", submissionID), zap.Error(err))
			metrics.ReportCacheLookups.WithLabelValues("error").Inc()
		case found:
			metrics.ReportCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ReportCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	analysis, err := uc.analyses.FindLatestBySubmission(ctx, submissionID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Set(ctx, analysis); err != nil {
			uc.logger.Warn("report cache write failed", zap.Stringer("submission_id", submissionID), zap.Error(err))
		}
	}
	return analysis, nil
}

// ResumePending recovers work left by a previous run of the service: runs cut
// off mid-way are put back to pending, then every pending submission is
// queued. It must only be called at startup, before this instance has queued
// anything itself.
func (uc *SubmissionUsecase) ResumePending(ctx context.Context) (int, error) {
	released, err := uc.submissions.ReleaseProcessing(ctx)
	if err != nil {
		return 0, fmt.Errorf("release abandoned runs: %w", err)
	}
	if released > 0 {
		uc.logger.Warn("released submissions abandoned mid-run", zap.Int64("count", released))
	}

	pending, err := uc.submissions.FindPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("load pending submissions: %w", err)
	}

	queued := 0
	for _, s := range pending {
		if err := uc.queue.Enqueue(ctx, s.ID); err != nil {
			return queued, fmt.Errorf("enqueue %s: %w", s.ID, err)
		}
		queued++
	}
	if queued > 0 {
		uc.logger.Info("resumed pending submissions", zap.Int("count", queued))
	}
	return queued, nil
}

func (uc *SubmissionUsecase) owned(ctx context.Context, submissionID, professorID uuid.UUID) (*model.Submission, error) {
	submission, err := uc.submissions.FindByID(ctx, submissionID)
	if err != nil {
		return nil, err
	}
	if submission.ProfessorID != professorID {
		return nil, repository.ErrSubmissionNotFound
	}
	return submission, nil
}

func (uc *SubmissionUsecase) invalidate(ctx context.Context, submissionID uuid.UUID) {
	if uc.cache == nil {
		return
	}
	if err := uc.cache.Invalidate(ctx, submissionID); err != nil {
		uc.logger.Warn("report cache invalidation failed", zap.Stringer("submission_id", submissionID), zap.Error(err))
	}
}
