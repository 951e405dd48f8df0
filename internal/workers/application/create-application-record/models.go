// internal/workers/application/create-application-record/models.go
package createapplicationrecord

type Input struct {
	CandidateID    string             `json:"candidateId"`
	JobID          string             `json:"jobId"`
	EmployerID     string             `json:"employerId"`
	FitScore       float64            `json:"fitScore"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown"`
}

type Output struct {
	ApplicationID     string  `json:"applicationId"`
	CandidateID       string  `json:"candidateId"`
	JobID             string  `json:"jobId"`
	FitScore          float64 `json:"fitScore"`
	ApplicationStatus string  `json:"applicationStatus"`
	CreatedAt         string  `json:"createdAt"` // ISO 8601
}
