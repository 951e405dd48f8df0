// internal/workers/application/create-application-record/handler_test.go
package createapplicationrecord

import (
	"context"
	"database/sql"
	"testing"

	"marketplace-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func newTestHandler(db *sql.DB) *Handler {
	return NewHandler(LoadConfig(), db, logger.NewNoOpLogger())
}

func testInput() *Input {
	return &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		EmployerID:  "emp-1",
		FitScore:    67.5,
		ScoreBreakdown: map[string]float64{
			"skill": 17.5, "experience": 20, "compensation": 15,
			"education": 10, "age": 0, "gender": 5, "total": 67.5,
		},
	}
}

func TestExecute_CreatesApplication(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnResult(sqlmock.NewResult(1, 1))

	h := newTestHandler(db)

	output, err := h.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "submitted", output.ApplicationStatus)
	assert.Equal(t, "cand-1", output.CandidateID)
	assert.Equal(t, "job-1", output.JobID)
	assert.Equal(t, 67.5, output.FitScore)
	assert.NotEmpty(t, output.CreatedAt)

	_, err = uuid.Parse(output.ApplicationID)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_DuplicateApplicationRejected(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	h := newTestHandler(db)

	_, err := h.Execute(context.Background(), testInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateApplication)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_InsertFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnError(sql.ErrConnDone)

	h := newTestHandler(db)

	_, err := h.Execute(context.Background(), testInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
}

func TestExecute_DuplicateCheckFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnError(sql.ErrConnDone)

	h := newTestHandler(db)

	_, err := h.Execute(context.Background(), testInput())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDatabaseInsertFailed)
}

func TestExecute_AuditFailureDoesNotFailJob(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("cand-1", "job-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectExec("INSERT INTO applications").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO audit_log").
		WillReturnError(sql.ErrConnDone)

	h := newTestHandler(db)

	output, err := h.Execute(context.Background(), testInput())

	require.NoError(t, err)
	assert.Equal(t, "submitted", output.ApplicationStatus)
}
