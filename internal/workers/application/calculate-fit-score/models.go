// internal/workers/application/calculate-fit-score/models.go
package calculatefitscore

import "marketplace-workers/internal/models"

type Input struct {
	CandidateID string             `json:"candidateId"`
	JobID       string             `json:"jobId"`
	Job         *models.JobPosting `json:"job"`
	// Candidate may be supplied inline by the workflow; when nil it is
	// loaded from the candidates table (cache-aside).
	Candidate *models.CandidateProfile `json:"candidate,omitempty"`
}

type Output struct {
	CandidateID    string             `json:"candidateId"`
	JobID          string             `json:"jobId"`
	FitScore       float64            `json:"fitScore"`
	ScoreBreakdown map[string]float64 `json:"scoreBreakdown"`
	CalculatedAt   string             `json:"calculatedAt"`
}
