// internal/workers/job/index-job-posting/models.go
package indexjobposting

import "marketplace-workers/internal/models"

type Input struct {
	JobID      string                 `json:"jobId"`
	EmployerID string                 `json:"employerId"`
	Status     string                 `json:"status"`
	JobDraft   map[string]interface{} `json:"jobDraft"`
}

type Output struct {
	JobID   string `json:"jobId"`
	Indexed bool   `json:"indexed"`
	Index   string `json:"index,omitempty"`
}

// jobDocument is the search-side projection of an approved posting. It
// carries a numeric education rank so range filters work without the search
// tier knowing the level hierarchy.
type jobDocument struct {
	JobID         string   `json:"jobId"`
	EmployerID    string   `json:"employerId"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Category      string   `json:"category"`
	MinSalaryLPA  float64  `json:"minSalaryLpa"`
	MaxSalaryLPA  float64  `json:"maxSalaryLpa"`
	Skills        []string `json:"skills"`
	MinExperience float64  `json:"minExperienceYears"`
	MaxExperience float64  `json:"maxExperienceYears"`
	Education     string   `json:"minimumEducation"`
	EducationRank float64  `json:"educationRank"`
	Gender        string   `json:"gender"`
	IndexedAt     string   `json:"indexedAt"`
}

func documentFromDraft(jobID, employerID string, draft *models.JobDraft, rank float64, indexedAt string) *jobDocument {
	return &jobDocument{
		JobID:         jobID,
		EmployerID:    employerID,
		Title:         draft.Title,
		Description:   draft.JobDescription,
		Category:      draft.JobCategory,
		MinSalaryLPA:  draft.MinimumSalaryLPA,
		MaxSalaryLPA:  draft.MaximumSalaryLPA,
		Skills:        draft.Skills,
		MinExperience: draft.MinimumExperienceInYears,
		MaxExperience: draft.MaximumExperienceInYears,
		Education:     draft.MinimumEducation,
		EducationRank: rank,
		Gender:        draft.Gender,
		IndexedAt:     indexedAt,
	}
}
