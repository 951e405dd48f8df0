// internal/workers/application/calculate-fit-score/handler_test.go
package calculatefitscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/matching"
	"marketplace-workers/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	redisclient "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

func createTestConfig() *Config {
	return &Config{
		CacheTTL: time.Minute,
		Timeout:  5 * time.Second,
	}
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redisclient.Client) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redisclient.NewClient(&redisclient.Options{Addr: mr.Addr()})
	return mr, client
}

func newTestHandler(t *testing.T, db *sql.DB, rdb *redisclient.Client) *Handler {
	scorer := matching.NewScorerAt(func() time.Time { return fixedNow })
	return NewHandler(createTestConfig(), db, rdb, scorer, logger.NewNoOpLogger())
}

func testJob() *models.JobPosting {
	return &models.JobPosting{
		ID: "job-1",
		JobDraft: models.JobDraft{
			Skills:                   []string{"go", "sql", "redis", "docker"},
			MinimumExperienceInYears: 3,
			MaximumExperienceInYears: 5,
			MinimumSalaryLPA:         4,
			MaximumSalaryLPA:         10,
			MinimumEducation:         "Graduate",
			Gender:                   "any",
		},
	}
}

func testCandidate() *models.CandidateProfile {
	return &models.CandidateProfile{
		ID:        "cand-1",
		KeySkills: []string{"Go", "SQL"},
		EmploymentHistory: []models.EmploymentPeriod{
			{Duration: models.Duration{From: "2020-01-01", To: "2025-04-01"}},
		},
		EducationAfter12th: []models.HigherEducation{{EducationLevel: "Graduate"}},
		CareerPreference:   models.CareerPreference{MinimumSalaryLPA: 4, MaximumSalaryLPA: 8},
		Gender:             "female",
	}
}

func TestExecute_InlineCandidate(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	h := newTestHandler(t, db, rdb)

	output, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Job:         testJob(),
		Candidate:   testCandidate(),
	})

	require.NoError(t, err)
	// 2 of 4 skills, 5.25y experience over both bounds, salary prefs inside
	// the ceiling, exact education, gender "any"; no DOB so age scores zero.
	assert.Equal(t, 17.5, output.ScoreBreakdown["skill"])
	assert.Equal(t, 20.0, output.ScoreBreakdown["experience"])
	assert.Equal(t, 15.0, output.ScoreBreakdown["compensation"])
	assert.Equal(t, 10.0, output.ScoreBreakdown["education"])
	assert.Equal(t, 0.0, output.ScoreBreakdown["age"])
	assert.Equal(t, 5.0, output.ScoreBreakdown["gender"])
	assert.Equal(t, 67.5, output.FitScore)
	assert.NotEmpty(t, output.CalculatedAt)
}

func TestExecute_CandidateFetchedFromDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	raw, _ := json.Marshal(testCandidate())
	mock.ExpectQuery("SELECT profile FROM candidates").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"profile"}).AddRow(raw))

	h := newTestHandler(t, db, rdb)

	output, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Job:         testJob(),
	})

	require.NoError(t, err)
	assert.Equal(t, 67.5, output.FitScore)
	assert.NoError(t, mock.ExpectationsWereMet())

	// Profile is cached for subsequent score requests.
	cached, err := rdb.Get(context.Background(), "candidate:profile:cand-1").Result()
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), cached)
}

func TestExecute_CandidateCacheHitSkipsDatabase(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	mr, rdb := setupRedis(t)

	raw, _ := json.Marshal(testCandidate())
	mr.Set("candidate:profile:cand-1", string(raw))

	h := newTestHandler(t, db, rdb)

	output, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Job:         testJob(),
	})

	require.NoError(t, err)
	assert.Equal(t, 67.5, output.FitScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_CandidateNotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	mock.ExpectQuery("SELECT profile FROM candidates").
		WithArgs("cand-missing").
		WillReturnError(sql.ErrNoRows)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-missing",
		JobID:       "job-1",
		Job:         testJob(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestExecute_MissingJobFails(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Candidate:   testCandidate(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingJob)
}

func TestExecute_EmptyCandidateID(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	h := newTestHandler(t, db, rdb)

	_, err := h.Execute(context.Background(), &Input{
		JobID: "job-1",
		Job:   testJob(),
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCandidateNotFound)
}

func TestExecute_BreakdownSumsToTotal(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	_, rdb := setupRedis(t)

	h := newTestHandler(t, db, rdb)

	output, err := h.Execute(context.Background(), &Input{
		CandidateID: "cand-1",
		JobID:       "job-1",
		Job:         testJob(),
		Candidate:   testCandidate(),
	})

	require.NoError(t, err)
	sum := 0.0
	for key, v := range output.ScoreBreakdown {
		if key != "total" {
			sum += v
		}
	}
	assert.Equal(t, output.FitScore, sum)
	assert.Equal(t, output.FitScore, output.ScoreBreakdown["total"])
	assert.GreaterOrEqual(t, output.FitScore, 0.0)
	assert.LessOrEqual(t, output.FitScore, matching.MaxTotalScore)
}
