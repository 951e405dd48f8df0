// internal/workers/job/index-job-posting/handler.go
package indexjobposting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"
	"marketplace-workers/internal/models"
	"marketplace-workers/internal/taxonomy"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/elastic/go-elasticsearch/v8"
)

const (
	TaskType = "index-job-posting"
)

// DocumentIndexer is the slice of Elasticsearch this worker needs.
type DocumentIndexer interface {
	Index(ctx context.Context, index, docID string, body []byte) error
}

type esIndexer struct {
	client *elasticsearch.Client
}

func NewESIndexer(client *elasticsearch.Client) DocumentIndexer {
	return &esIndexer{client: client}
}

func (e *esIndexer) Index(ctx context.Context, index, docID string, body []byte) error {
	res, err := e.client.Index(
		index,
		bytes.NewReader(body),
		e.client.Index.WithDocumentID(docID),
		e.client.Index.WithContext(ctx),
		e.client.Index.WithRefresh("false"),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index %s doc %s: %s: %s", index, docID, res.Status(), msg)
	}
	return nil
}

type Handler struct {
	config  *Config
	indexer DocumentIndexer
	logger  logger.Logger
}

func NewHandler(config *Config, indexer DocumentIndexer, log logger.Logger) *Handler {
	return &Handler{
		config:  config,
		indexer: indexer,
		logger:  log.WithFields(map[string]interface{}{"taskType": TaskType}),
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
		h.failJob(client, job, "INDEXING_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	// Only live postings belong in the search index. Pending and rejected
	// ones pass through unindexed so the workflow can continue.
	if input.Status != "approved" {
		h.logger.Info("skipping non-approved posting", map[string]interface{}{
			"jobId":  input.JobID,
			"status": input.Status,
		})
		return &Output{JobID: input.JobID, Indexed: false}, nil
	}

	draft, err := decodeDraft(input.JobDraft)
	if err != nil {
		return nil, fmt.Errorf("decode draft for %s: %w", input.JobID, err)
	}

	doc := documentFromDraft(
		input.JobID,
		input.EmployerID,
		draft,
		taxonomy.Rank(draft.MinimumEducation),
		time.Now().UTC().Format(time.RFC3339),
	)

	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}

	if err := h.indexer.Index(ctx, h.config.IndexName, input.JobID, body); err != nil {
		return nil, err
	}

	h.logger.Info("job posting indexed", map[string]interface{}{
		"jobId": input.JobID,
		"index": h.config.IndexName,
	})

	return &Output{JobID: input.JobID, Indexed: true, Index: h.config.IndexName}, nil
}

func decodeDraft(raw map[string]interface{}) (*models.JobDraft, error) {
	if raw == nil {
		return nil, fmt.Errorf("missing job draft")
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var draft models.JobDraft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
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
