package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/fadilmartias/plan-analyzer/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestSubmissionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(`INSERT INTO "submissions"`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &model.Submission{
		StudentName:  "Awa Diop",
		ProjectTitle: "Boulangerie solidaire",
		FileName:     "plan.pdf",
	}
	require.NoError(t, repo.Create(context.Background(), submission))

	assert.Equal(t, model.StatusPending, submission.Status)
	assert.NotEqual(t, uuid.Nil, submission.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_FindByID(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)
		id := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "student_name", "project_title", "status"}).
			AddRow(id.String(), "Awa Diop", "Boulangerie solidaire", model.StatusPending)
		mock.ExpectQuery(`SELECT \* FROM "submissions" WHERE id = \$1`).WillReturnRows(rows)

		submission, err := repo.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, id, submission.ID)
		assert.Equal(t, "Awa Diop", submission.StudentName)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "submissions"`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindByID(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})

	t.Run("database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "submissions"`).
			WillReturnError(errors.New("connection refused"))

		_, err := repo.FindByID(context.Background(), uuid.New())
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrSubmissionNotFound)
	})
}

func TestSubmissionRepository_MarkProcessing(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		want     bool
	}{
		{name: "pending submission is claimed", affected: 1, want: true},
		{name: "submission already claimed", affected: 0, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewSubmissionRepository(db)

			mock.ExpectExec(`UPDATE "submissions" SET .* WHERE id = \$\d+ AND status = \$\d+`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			claimed, err := repo.MarkProcessing(context.Background(), uuid.New())
			require.NoError(t, err)
			assert.Equal(t, tt.want, claimed)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSubmissionRepository_Complete(t *testing.T) {
	t.Run("commits analysis and status together", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "analyses"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE "submissions" SET`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.Complete(context.Background(), &model.Analysis{
			SubmissionID:  uuid.New(),
			ReportContent: "<html></html>",
			ScoreGlobal:   54,
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the status update fails", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectBegin()
		mock.ExpectExec(`INSERT INTO "analyses"`).WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectExec(`UPDATE "submissions" SET`).WillReturnError(errors.New("deadlock detected"))
		mock.ExpectRollback()

		err := repo.Complete(context.Background(), &model.Analysis{SubmissionID: uuid.New()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "update submission")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestSubmissionRepository_ResetForRetry(t *testing.T) {
	t.Run("failed submission is reset", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "submissions" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), model.StatusFailed))
		mock.ExpectExec(`DELETE FROM "analyses" WHERE submission_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`UPDATE "submissions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		require.NoError(t, repo.ResetForRetry(context.Background(), id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("claimed between read and write is busy", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "submissions" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), model.StatusPending))
		mock.ExpectExec(`DELETE FROM "analyses" WHERE submission_id = \$1`).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`UPDATE "submissions" SET .* WHERE id = \$\d+ AND status <> \$\d+`).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := repo.ResetForRetry(context.Background(), id)
		assert.ErrorIs(t, err, ErrSubmissionBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("processing submission is busy", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "submissions" WHERE id = \$1 .* FOR UPDATE`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).AddRow(id.String(), model.StatusProcessing))
		mock.ExpectRollback()

		err := repo.ResetForRetry(context.Background(), id)
		assert.ErrorIs(t, err, ErrSubmissionBusy)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown submission", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewSubmissionRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "submissions"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		err := repo.ResetForRetry(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrSubmissionNotFound)
	})
}

func TestSubmissionRepository_ReleaseProcessing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)

	mock.ExpectExec(`UPDATE "submissions" SET .* WHERE status = \$\d+`).
		WithArgs(model.StatusPending, sqlmock.AnyArg(), model.StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 2))

	released, err := repo.ReleaseProcessing(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), released)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubmissionRepository_ListByProfessor(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db)
	professorID := uuid.New()

	mock.ExpectQuery(`SELECT count\(\*\) FROM "submissions" WHERE professor_id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
	mock.ExpectQuery(`SELECT \* FROM "submissions" WHERE professor_id = \$1 ORDER BY submission_date DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status"}).
			AddRow(uuid.NewString(), model.StatusCompleted).
			AddRow(uuid.NewString(), model.StatusPending))

	submissions, total, err := repo.ListByProfessor(context.Background(), professorID, 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, submissions, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAnalysisRepository_FindLatestBySubmission(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAnalysisRepository(db)
		submissionID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "analyses" WHERE submission_id = \$1 ORDER BY generated_at DESC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "submission_id", "report_content", "score_global"}).
				AddRow(uuid.NewString(), submissionID.String(), "<html>report</html>", 61))

		analysis, err := repo.FindLatestBySubmission(context.Background(), submissionID)
		require.NoError(t, err)
		assert.Equal(t, 61, analysis.ScoreGlobal)
		assert.Equal(t, submissionID, analysis.SubmissionID)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewAnalysisRepository(db)

		mock.ExpectQuery(`SELECT \* FROM "analyses"`).WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := repo.FindLatestBySubmission(context.Background(), uuid.New())
		assert.ErrorIs(t, err, ErrAnalysisNotFound)
	})
}
