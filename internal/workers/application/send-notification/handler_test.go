// internal/workers/application/send-notification/handler_test.go
package sendnotification

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"marketplace-workers/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockEmail struct {
	calls    int
	lastFrom string
	lastTo   string
	lastBody string
	err      error
}

func (m *mockEmail) SendSimpleEmail(_ context.Context, from, to, _, body string) error {
	m.calls++
	m.lastFrom = from
	m.lastTo = to
	m.lastBody = body
	return m.err
}

type mockSMS struct {
	calls     int
	lastPhone string
	lastMsg   string
	err       error
}

func (m *mockSMS) SendSMS(_ context.Context, phoneNumber, message string) error {
	m.calls++
	m.lastPhone = phoneNumber
	m.lastMsg = message
	return m.err
}

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	return db, mock
}

func newTestHandler(db *sql.DB, email EmailSender, sms SMSSender) *Handler {
	return &Handler{
		config: &Config{
			EmailEnabled: true,
			SMSEnabled:   true,
			FromEmail:    "noreply@example.com",
			Timeout:      5 * time.Second,
		},
		db:          db,
		logger:      logger.NewNoOpLogger(),
		email:       email,
		sms:         sms,
		templateMap: notificationTemplates(),
	}
}

func expectContact(mock sqlmock.Sqlmock, table, id, email, phone string) {
	mock.ExpectQuery("SELECT email, phone FROM " + table).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"email", "phone"}).AddRow(email, phone))
}

func TestExecute_SendsJobApprovedEmail(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{}
	smsMock := &mockSMS{}

	expectContact(mock, "employers", "emp-1", "hr@acme.example", "")

	h := newTestHandler(db, emailMock, smsMock)

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "emp-1",
		RecipientType:    RecipientTypeEmployer,
		NotificationType: TypeJobApproved,
		JobID:            "job-1",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, 1, emailMock.calls)
	assert.Zero(t, smsMock.calls)
	assert.Equal(t, "hr@acme.example", emailMock.lastTo)
	assert.Contains(t, emailMock.lastBody, "job-1")
	assert.Equal(t, "noreply@example.com", emailMock.lastFrom)
}

func TestExecute_HighPrioritySendsSMS(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{}
	smsMock := &mockSMS{}

	expectContact(mock, "candidates", "cand-1", "jo@example.com", "+919999999999")

	h := newTestHandler(db, emailMock, smsMock)

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "cand-1",
		RecipientType:    RecipientTypeCandidate,
		NotificationType: TypeApplicationReceived,
		ApplicationID:    "app-1",
		JobID:            "job-1",
		Priority:         "high",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Equal(t, 1, emailMock.calls)
	assert.Equal(t, 1, smsMock.calls)
	assert.Equal(t, "+919999999999", smsMock.lastPhone)
	assert.Contains(t, smsMock.lastMsg, "app-1")
}

func TestExecute_NormalPrioritySkipsSMS(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{}
	smsMock := &mockSMS{}

	expectContact(mock, "candidates", "cand-1", "jo@example.com", "+919999999999")

	h := newTestHandler(db, emailMock, smsMock)

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "cand-1",
		RecipientType:    RecipientTypeCandidate,
		NotificationType: TypeApplicationReceived,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSent, output.Status)
	assert.Zero(t, smsMock.calls)
}

func TestExecute_UnknownRecipientSkips(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{}
	smsMock := &mockSMS{}

	mock.ExpectQuery("SELECT email, phone FROM candidates").
		WithArgs("cand-missing").
		WillReturnError(sql.ErrNoRows)

	h := newTestHandler(db, emailMock, smsMock)

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "cand-missing",
		RecipientType:    RecipientTypeCandidate,
		NotificationType: TypeJobApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
	assert.Zero(t, emailMock.calls)
}

func TestExecute_InvalidRecipientTypeSkips(t *testing.T) {
	db, _ := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{}

	h := newTestHandler(db, emailMock, &mockSMS{})

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "x-1",
		RecipientType:    "partner",
		NotificationType: TypeJobApproved,
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
	assert.Zero(t, emailMock.calls)
}

func TestExecute_UnknownTemplateFails(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	expectContact(mock, "employers", "emp-1", "hr@acme.example", "")

	h := newTestHandler(db, &mockEmail{}, &mockSMS{})

	_, err := h.Execute(context.Background(), &Input{
		RecipientID:      "emp-1",
		RecipientType:    RecipientTypeEmployer,
		NotificationType: "weekly_digest",
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotificationSendFailed)
}

func TestExecute_EmailFailureReportsFailed(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()
	emailMock := &mockEmail{err: errors.New("throttled")}

	expectContact(mock, "employers", "emp-1", "hr@acme.example", "")

	h := newTestHandler(db, emailMock, &mockSMS{})

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "emp-1",
		RecipientType:    RecipientTypeEmployer,
		NotificationType: TypeJobRejected,
		JobID:            "job-1",
		Metadata:         map[string]interface{}{"reason": "Contains banned keywords"},
	})

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, output.Status)
}

func TestNewHandler_DisabledChannelsNeedNoAWS(t *testing.T) {
	db, mock := setupMockDB(t)
	defer db.Close()

	// With both channels off, NewHandler must not reach for AWS credentials
	// and execute must still produce a skipped outcome.
	h, err := NewHandler(&Config{
		EmailEnabled: false,
		SMSEnabled:   false,
		Timeout:      5 * time.Second,
	}, db, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.Nil(t, h.email)
	assert.Nil(t, h.sms)

	expectContact(mock, "employers", "emp-1", "hr@acme.example", "+919999999999")

	output, err := h.Execute(context.Background(), &Input{
		RecipientID:      "emp-1",
		RecipientType:    RecipientTypeEmployer,
		NotificationType: TypeJobApproved,
		JobID:            "job-1",
		Priority:         "high",
	})

	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, output.Status)
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name     string
		tmpl     string
		data     map[string]interface{}
		expected string
	}{
		{
			name:     "substitutes known placeholders",
			tmpl:     "Posting {{jobId}} was {{status}}",
			data:     map[string]interface{}{"jobId": "job-1", "status": "approved"},
			expected: "Posting job-1 was approved",
		},
		{
			name:     "strips unknown placeholders",
			tmpl:     "Reason: {{reason}}",
			data:     map[string]interface{}{},
			expected: "Reason: ",
		},
		{
			name:     "formats non-string values",
			tmpl:     "Score: {{fitScore}}",
			data:     map[string]interface{}{"fitScore": 67.5},
			expected: "Score: 67.5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, renderTemplate(tt.tmpl, tt.data))
		})
	}
}
