// internal/models/candidate.go
package models

// CandidateProfile carries the subset of a candidate record consumed by the
// fit scorer. Dates are RFC3339 or YYYY-MM-DD strings as stored.
type CandidateProfile struct {
	ID                 string             `json:"id"`
	KeySkills          []string           `json:"keySkills"`
	EmploymentHistory  []EmploymentPeriod `json:"employmentHistory"`
	EducationTill12th  []SchoolEducation  `json:"educationTill12th"`
	EducationAfter12th []HigherEducation  `json:"educationAfter12th"`
	CareerPreference   CareerPreference   `json:"careerPreference"`
	DateOfBirth        string             `json:"dateOfBirth"`
	Gender             string             `json:"gender"`
}

type EmploymentPeriod struct {
	Duration     Duration `json:"duration"`
	IsCurrentJob bool     `json:"isCurrentJob"`
}

type Duration struct {
	From string `json:"from"`
	To   string `json:"to"`
}

type SchoolEducation struct {
	Education string `json:"education"`
}

type HigherEducation struct {
	EducationLevel string `json:"educationLevel"`
}

type CareerPreference struct {
	MinimumSalaryLPA float64 `json:"minimumSalaryLPA"`
	MaximumSalaryLPA float64 `json:"maximumSalaryLPA"`
}
