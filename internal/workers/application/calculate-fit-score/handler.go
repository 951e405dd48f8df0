// internal/workers/application/calculate-fit-score/handler.go
package calculatefitscore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/matching"
	"marketplace-workers/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
)

const (
	TaskType = "calculate-fit-score"
)

var (
	ErrCandidateNotFound = errors.New("CANDIDATE_NOT_FOUND")
	ErrMissingJob        = errors.New("FIT_SCORE_FAILED")
)

type Handler struct {
	config *Config
	db     *sql.DB
	redis  *redis.Client
	scorer *matching.Scorer
	logger logger.Logger
}

func NewHandler(config *Config, db *sql.DB, redis *redis.Client, scorer *matching.Scorer, log logger.Logger) *Handler {
	if scorer == nil {
		scorer = matching.NewScorer()
	}
	return &Handler{
		config: config,
		db:     db,
		redis:  redis,
		scorer: scorer,
		logger: log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey": job.Key,
	})

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		h.failJob(client, job, "PARSE_ERROR", fmt.Sprintf("parse input: %v", err))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "FIT_SCORE_FAILED"
		if errors.Is(err, ErrCandidateNotFound) {
			code = "CANDIDATE_NOT_FOUND"
		}
		h.failJob(client, job, code, err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input.Job == nil {
		return nil, fmt.Errorf("%w: job posting missing from variables", ErrMissingJob)
	}

	candidate := input.Candidate
	if candidate == nil {
		fetched, err := h.getCandidateProfile(ctx, input.CandidateID)
		if err != nil {
			return nil, err
		}
		candidate = fetched
	}

	total, breakdown := h.scorer.Score(input.Job, candidate)

	h.logger.Info("fit score calculated", map[string]interface{}{
		"candidateId": input.CandidateID,
		"jobId":       input.JobID,
		"fitScore":    total,
	})
	metrics.FitScores.Observe(total)

	return &Output{
		CandidateID:    input.CandidateID,
		JobID:          input.JobID,
		FitScore:       total,
		ScoreBreakdown: breakdown.Map(),
		CalculatedAt:   time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// getCandidateProfile loads the JSONB profile snapshot, cache-aside.
func (h *Handler) getCandidateProfile(ctx context.Context, candidateID string) (*models.CandidateProfile, error) {
	if candidateID == "" {
		return nil, fmt.Errorf("%w: empty candidate id", ErrCandidateNotFound)
	}

	cacheKey := "candidate:profile:" + candidateID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.CandidateProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	var raw []byte
	err := h.db.QueryRowContext(ctx, `
		SELECT profile FROM candidates WHERE id = $1`, candidateID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", ErrCandidateNotFound, candidateID)
	}
	if err != nil {
		return nil, fmt.Errorf("load candidate %s: %w", candidateID, err)
	}

	var profile models.CandidateProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, fmt.Errorf("decode candidate %s: %w", candidateID, err)
	}
	if profile.ID == "" {
		profile.ID = candidateID
	}

	h.redis.Set(ctx, cacheKey, raw, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	metrics.RecordCompleted(TaskType)
}

func (h *Handler) failJob(client worker.JobClient, job entities.Job, errorCode, errorMessage string) {
	h.logger.Error("job failed", map[string]interface{}{
		"jobKey":       job.Key,
		"errorCode":    errorCode,
		"errorMessage": errorMessage,
	})
	metrics.RecordFailed(TaskType, errorCode)

	_, err := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(errorCode).
		ErrorMessage(errorMessage).
		Send(context.Background())
	if err != nil {
		h.logger.Error("failed to throw error", map[string]interface{}{
			"error": err,
		})
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
