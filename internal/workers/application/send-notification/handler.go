// internal/workers/application/send-notification/handler.go
package sendnotification

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"marketplace-workers/internal/common/aws"
	"marketplace-workers/internal/common/logger"
	"marketplace-workers/internal/common/metrics"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const (
	TaskType = "send-notification"
)

var (
	ErrNotificationSendFailed = errors.New("NOTIFICATION_SEND_FAILED")
)

// Narrow delivery interfaces so tests can substitute fakes for the
// SES/SNS-backed clients.
type EmailSender interface {
	SendSimpleEmail(ctx context.Context, from, to, subject, body string) error
}

type SMSSender interface {
	SendSMS(ctx context.Context, phoneNumber, message string) error
}

type Handler struct {
	config      *Config
	db          *sql.DB
	logger      logger.Logger
	email       EmailSender
	sms         SMSSender
	templateMap map[string]map[string]string
}

func NewHandler(config *Config, db *sql.DB, log logger.Logger) (*Handler, error) {
	h := &Handler{
		config:      config,
		db:          db,
		logger:      log.WithFields(map[string]interface{}{"taskType": TaskType}),
		templateMap: notificationTemplates(),
	}

	// AWS clients are only built for enabled channels, so a deployment with
	// both channels off needs no AWS credentials at all.
	if config.EmailEnabled {
		sesClient, err := aws.NewSESClient(context.Background(), config.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("create SES client: %w", err)
		}
		h.email = sesClient
	}
	if config.SMSEnabled {
		snsClient, err := aws.NewSNSClient(context.Background(), config.AWSRegion)
		if err != nil {
			return nil, fmt.Errorf("create SNS client: %w", err)
		}
		h.sms = snsClient
	}

	return h, nil
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
		h.failJob(client, job, "NOTIFICATION_SEND_FAILED", err.Error())
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	notificationID := uuid.New().String()
	sentAt := time.Now().UTC().Format(time.RFC3339)

	email, phone, err := h.getRecipientContact(ctx, input.RecipientID, input.RecipientType)
	if err != nil {
		// A recipient we cannot resolve is not a workflow incident; report
		// skipped so the process continues.
		h.logger.Warn("recipient not found", map[string]interface{}{
			"recipientId": input.RecipientID,
			"type":        input.RecipientType,
		})
		return &Output{NotificationID: notificationID, Status: StatusSkipped, SentAt: sentAt}, nil
	}

	template, exists := h.templateMap[input.NotificationType]
	if !exists {
		return nil, fmt.Errorf("%w: template not found for type %s",
			ErrNotificationSendFailed, input.NotificationType)
	}

	data := map[string]interface{}{
		"recipientId":      input.RecipientID,
		"notificationType": input.NotificationType,
		"jobId":            input.JobID,
		"applicationId":    input.ApplicationID,
		"priority":         input.Priority,
	}
	for k, v := range input.Metadata {
		data[k] = v
	}

	subject := renderTemplate(template["subject"], data)
	body := renderTemplate(template["body"], data)

	emailSent := false
	smsSent := false

	if h.config.EmailEnabled && email != "" {
		if err := h.email.SendSimpleEmail(ctx, h.config.FromEmail, email, subject, body); err != nil {
			h.logger.Error("email send failed", map[string]interface{}{
				"error": err,
				"email": email,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		emailSent = true
	}

	// SMS is reserved for high-priority notifications.
	if h.config.SMSEnabled && phone != "" && input.Priority == "high" {
		if err := h.sms.SendSMS(ctx, phone, body); err != nil {
			h.logger.Error("SMS send failed", map[string]interface{}{
				"error": err,
				"phone": phone,
			})
			return &Output{NotificationID: notificationID, Status: StatusFailed, SentAt: sentAt}, nil
		}
		smsSent = true
	}

	status := StatusSkipped
	if emailSent || smsSent {
		status = StatusSent
	}

	h.logger.Info("notification processed", map[string]interface{}{
		"notificationId": notificationID,
		"recipientId":    input.RecipientID,
		"type":           input.NotificationType,
		"status":         status,
	})

	return &Output{NotificationID: notificationID, Status: status, SentAt: sentAt}, nil
}

func (h *Handler) getRecipientContact(ctx context.Context, recipientID, recipientType string) (string, string, error) {
	var query string
	switch recipientType {
	case RecipientTypeCandidate:
		query = `SELECT email, phone FROM candidates WHERE id = $1`
	case RecipientTypeEmployer:
		query = `SELECT email, phone FROM employers WHERE id = $1`
	default:
		return "", "", fmt.Errorf("invalid recipient type: %s", recipientType)
	}

	var email, phone string
	err := h.db.QueryRowContext(ctx, query, recipientID).Scan(&email, &phone)
	return email, phone, err
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

// renderTemplate substitutes {{key}} placeholders and strips any that had no
// value, so a sparse metadata map never leaks braces into the message.
func renderTemplate(tmpl string, data map[string]interface{}) string {
	result := tmpl

	for k, v := range data {
		placeholder := "{{" + k + "}}"
		value := ""
		switch t := v.(type) {
		case string:
			value = t
		case nil:
		default:
			value = fmt.Sprintf("%v", t)
		}
		result = strings.ReplaceAll(result, placeholder, value)
	}

	for {
		start := strings.Index(result, "{{")
		if start == -1 {
			break
		}
		end := strings.Index(result[start:], "}}")
		if end == -1 {
			break
		}
		end += start + 2
		result = result[:start] + result[end:]
	}

	return result
}

func notificationTemplates() map[string]map[string]string {
	return map[string]map[string]string{
		TypeJobApproved: {
			"subject": "Your job posting is live",
			"body":    "Your posting {{jobId}} was approved and is now visible to candidates.",
		},
		TypeJobPending: {
			"subject": "Your job posting is under review",
			"body":    "Your posting {{jobId}} needs manual review. Reason: {{reason}}.",
		},
		TypeJobRejected: {
			"subject": "Your job posting was rejected",
			"body":    "Your posting {{jobId}} was rejected. Reason: {{reason}}.",
		},
		TypeApplicationReceived: {
			"subject": "New application received",
			"body":    "You have a new application {{applicationId}} for posting {{jobId}}.",
		},
	}
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
