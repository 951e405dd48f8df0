// internal/workers/job/evaluate-job-posting/handler.go
package evaluatejobposting

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	apperrors "marketplace-workers/internal/common/errors"
	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/models"
	"marketplace-workers/internal/moderation"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/redis/go-redis/v9"
	"github.com/xeipuuv/gojsonschema"
)

const (
	TaskType = "evaluate-job-posting"
)

type Handler struct {
	config    *Config
	db        *sql.DB
	redis     *redis.Client
	evaluator *moderation.Evaluator
	logger    logger.Logger
	errs      *apperrors.ErrorHandler
}

func NewHandler(config *Config, rules moderation.RuleSet, db *sql.DB, redis *redis.Client, log logger.Logger) *Handler {
	scoped := log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:    config,
		db:        db,
		redis:     redis,
		evaluator: moderation.NewEvaluator(rules),
		logger:    scoped,
		errs:      apperrors.NewErrorHandler(scoped),
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
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
		h.errs.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	evaluatedAt := time.Now().UTC().Format(time.RFC3339)

	draft, ok := h.decodeDraft(input.JobDraft)
	if !ok {
		// Deterministic verdict rather than a thrown error: a garbage
		// payload is a moderation outcome, not a workflow incident.
		return h.verdictOutput(input.JobID, moderation.Verdict{
			Status: moderation.StatusRejected,
			Reason: moderation.ReasonMalformedDraft,
		}, evaluatedAt), nil
	}

	employer := input.Employer
	if employer == nil && input.EmployerID != "" {
		fetched, err := h.getEmployerProfile(ctx, input.EmployerID)
		if err != nil {
			return nil, apperrors.NewEmployerLookupFailedError(input.EmployerID, err)
		}
		employer = fetched
	}

	verdict := h.evaluator.Evaluate(draft, employer)

	h.logger.Info("job posting evaluated", map[string]interface{}{
		"jobId":      input.JobID,
		"employerId": input.EmployerID,
		"status":     verdict.Status,
		"reason":     verdict.Reason,
	})
	metrics.JobVerdicts.WithLabelValues(string(verdict.Status), verdict.Reason).Inc()

	return h.verdictOutput(input.JobID, verdict, evaluatedAt), nil
}

// decodeDraft schema-checks the raw payload and maps it onto the typed
// draft. A nil payload or a type violation reports malformed.
func (h *Handler) decodeDraft(raw map[string]interface{}) (*models.JobDraft, bool) {
	if raw == nil {
		return nil, false
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(draftSchema),
		gojsonschema.NewGoLoader(raw),
	)
	if err != nil || !result.Valid() {
		return nil, false
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, false
	}
	var draft models.JobDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, false
	}
	return &draft, true
}

// getEmployerProfile loads the compliance profile, cache-aside. An employer
// without a row is treated as fully unverified rather than an error.
func (h *Handler) getEmployerProfile(ctx context.Context, employerID string) (*models.EmployerComplianceProfile, error) {
	cacheKey := "employer:compliance:" + employerID
	if val, err := h.redis.Get(ctx, cacheKey).Result(); err == nil {
		var profile models.EmployerComplianceProfile
		if err := json.Unmarshal([]byte(val), &profile); err == nil {
			return &profile, nil
		}
	}

	row := h.db.QueryRowContext(ctx, `
		SELECT trust_score, is_pan_verified, is_gst_verified
		FROM employers WHERE id = $1`, employerID)

	var profile models.EmployerComplianceProfile
	err := row.Scan(&profile.TrustScore, &profile.IsPANVerified, &profile.IsGSTVerified)
	if err == sql.ErrNoRows {
		h.logger.Warn("employer compliance profile not found", map[string]interface{}{
			"employerId": employerID,
		})
		return &models.EmployerComplianceProfile{}, nil
	}
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(profile)
	h.redis.Set(ctx, cacheKey, data, h.config.CacheTTL)

	return &profile, nil
}

func (h *Handler) verdictOutput(jobID string, v moderation.Verdict, evaluatedAt string) *Output {
	return &Output{
		JobID:       jobID,
		Status:      string(v.Status),
		Reason:      v.Reason,
		EvaluatedAt: evaluatedAt,
	}
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
