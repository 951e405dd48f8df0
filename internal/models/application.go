// internal/models/application.go
package models

// Application is one candidate applying to one job. FitScore and
// ScoreBreakdown are write-once snapshots taken at application time; they are
// not recomputed when the job or the candidate profile changes afterwards.
type Application struct {
	ID             string             `json:"id"`
	CandidateID    string             `json:"candidateId"`
	JobID          string             `json:"jobId"`
	FitScore       float64            `json:"fitScore"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown"`
	Status         string             `json:"status"` // "submitted", "shortlisted", "rejected"
	CreatedAt      string             `json:"createdAt"`
	UpdatedAt      string             `json:"updatedAt"`
}
