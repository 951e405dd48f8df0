// internal/models/job.go
package models

// JobDraft is the employer-submitted posting as it arrives for moderation,
// before any verdict has been attached.
type JobDraft struct {
	Title                    string   `json:"title"`
	JobDescription           string   `json:"jobDescription"`
	JobCategory              string   `json:"jobCategory"`
	MinimumSalaryLPA         float64  `json:"minimumSalaryLPA"`
	MaximumSalaryLPA         float64  `json:"maximumSalaryLPA"`
	FromAge                  string   `json:"fromAge"`
	ToAge                    string   `json:"toAge"`
	Gender                   string   `json:"gender"` // "any", "male", "female", "other"
	Skills                   []string `json:"skills"`
	MinimumExperienceInYears float64  `json:"minimumExperienceInYears"`
	MaximumExperienceInYears float64  `json:"maximumExperienceInYears"`
	MinimumEducation         string   `json:"minimumEducation"`
}

// JobPosting is a persisted job record, draft fields plus moderation outcome.
type JobPosting struct {
	ID         string `json:"id"`
	EmployerID string `json:"employerId"`
	JobDraft
	Status      string `json:"status"` // "approved", "pending", "rejected"
	Reason      string `json:"reason"`
	EvaluatedAt string `json:"evaluatedAt"`
	CreatedAt   string `json:"createdAt"`
}
