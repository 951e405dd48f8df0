// internal/workers/job/evaluate-job-posting/models.go
package evaluatejobposting

import "marketplace-workers/internal/models"

type Input struct {
	JobID      string                 `json:"jobId"`
	EmployerID string                 `json:"employerId"`
	JobDraft   map[string]interface{} `json:"jobDraft"`
	// Employer may be supplied inline by the workflow; when nil it is
	// loaded from the employers table (cache-aside).
	Employer *models.EmployerComplianceProfile `json:"employer,omitempty"`
}

type Output struct {
	JobID       string `json:"jobId"`
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	EvaluatedAt string `json:"evaluatedAt"`
}

// draftSchema type-checks the submitted draft. Presence of title and
// description is deliberately not required here: the moderation cascade has
// its own verdicts for short or missing text, and those reasons are the ones
// employers should see. The schema exists to catch type garbage (string
// salaries, object titles) before the engine runs.
var draftSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":                    map[string]interface{}{"type": "string"},
		"jobDescription":           map[string]interface{}{"type": "string"},
		"jobCategory":              map[string]interface{}{"type": "string"},
		"minimumSalaryLPA":         map[string]interface{}{"type": "number"},
		"maximumSalaryLPA":         map[string]interface{}{"type": "number"},
		"fromAge":                  map[string]interface{}{"type": "string"},
		"toAge":                    map[string]interface{}{"type": "string"},
		"gender":                   map[string]interface{}{"type": "string"},
		"skills":                   map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}},
		"minimumExperienceInYears": map[string]interface{}{"type": "number"},
		"maximumExperienceInYears": map[string]interface{}{"type": "number"},
		"minimumEducation":         map[string]interface{}{"type": "string"},
	},
}
