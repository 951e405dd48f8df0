// internal/workers/application/send-notification/models.go
package sendnotification

type Input struct {
	RecipientID      string                 `json:"recipientId"`
	RecipientType    string                 `json:"recipientType"` // "candidate" or "employer"
	NotificationType string                 `json:"notificationType"`
	JobID            string                 `json:"jobId,omitempty"`
	ApplicationID    string                 `json:"applicationId,omitempty"`
	Priority         string                 `json:"priority,omitempty"`
	Metadata         map[string]interface{} `json:"metadata,omitempty"`
}

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"` // "sent", "failed", "skipped"
	SentAt         string `json:"sentAt"` // ISO 8601
}

// Notification types
const (
	TypeJobApproved         = "job_approved"
	TypeJobPending          = "job_pending"
	TypeJobRejected         = "job_rejected"
	TypeApplicationReceived = "application_received"
)

// Statuses
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Recipient types
const (
	RecipientTypeCandidate = "candidate"
	RecipientTypeEmployer  = "employer"
)
