// internal/matching/scorer.go

// Package matching computes how well a candidate fits a job posting. The
// scorer sums six independently-capped sub-scores (35+20+15+10+5+5) onto a
// 90-point scale. The scale is deliberately not normalized to 100; consumers
// see the per-component breakdown alongside the total.
package matching

import (
	"strconv"
	"strings"
	"time"

	"marketplace-workers/internal/models"
	"marketplace-workers/internal/taxonomy"
)

// Sub-score caps.
const (
	MaxSkillScore        = 35.0
	MaxExperienceScore   = 20.0
	MaxCompensationScore = 15.0
	MaxEducationScore    = 10.0
	MaxAgeScore          = 5.0
	MaxGenderScore       = 5.0

	// MaxTotalScore is the theoretical ceiling of the summed sub-scores.
	MaxTotalScore = MaxSkillScore + MaxExperienceScore + MaxCompensationScore +
		MaxEducationScore + MaxAgeScore + MaxGenderScore

	// nearMissWindow is the fixed band under an experience or salary bound
	// that still earns half credit.
	nearMissWindow = 0.5
)

// Breakdown exposes each sub-score for observability; Total is their sum.
type Breakdown struct {
	Skill        float64 `json:"skill"`
	Experience   float64 `json:"experience"`
	Compensation float64 `json:"compensation"`
	Education    float64 `json:"education"`
	Age          float64 `json:"age"`
	Gender       float64 `json:"gender"`
	Total        float64 `json:"total"`
}

// Map flattens the breakdown for JSONB persistence.
func (b Breakdown) Map() map[string]float64 {
	return map[string]float64{
		"skill":        b.Skill,
		"experience":   b.Experience,
		"compensation": b.Compensation,
		"education":    b.Education,
		"age":          b.Age,
		"gender":       b.Gender,
		"total":        b.Total,
	}
}

type Scorer struct {
	now func() time.Time
}

func NewScorer() *Scorer {
	return &Scorer{now: time.Now}
}

// NewScorerAt pins "now" for deterministic experience and age math in tests.
func NewScorerAt(now func() time.Time) *Scorer {
	return &Scorer{now: now}
}

// Score is pure and idempotent for a fixed clock: identical inputs always
// yield the identical breakdown, with Total in [0, 90]. Malformed fields
// (unparsable dates, non-numeric age bounds) contribute zero to their
// sub-score and never fail the call.
func (s *Scorer) Score(job *models.JobPosting, candidate *models.CandidateProfile) (float64, Breakdown) {
	if job == nil || candidate == nil {
		return 0, Breakdown{}
	}

	b := Breakdown{
		Skill:        s.skillScore(job.Skills, candidate.KeySkills),
		Experience:   s.experienceScore(job, candidate.EmploymentHistory),
		Compensation: s.compensationScore(job, candidate.CareerPreference),
		Education:    s.educationScore(job.MinimumEducation, candidate),
		Age:          s.ageScore(job, candidate.DateOfBirth),
		Gender:       s.genderScore(job.Gender, candidate.Gender),
	}
	b.Total = b.Skill + b.Experience + b.Compensation + b.Education + b.Age + b.Gender
	return b.Total, b
}

// skillScore awards a proportional share of the cap for lower-cased exact
// matches between candidate key skills and job skills.
func (s *Scorer) skillScore(jobSkills, keySkills []string) float64 {
	if len(jobSkills) == 0 {
		return 0
	}

	have := make(map[string]bool, len(keySkills))
	for _, skill := range keySkills {
		have[strings.ToLower(strings.TrimSpace(skill))] = true
	}

	matched := 0
	for _, skill := range jobSkills {
		if have[strings.ToLower(strings.TrimSpace(skill))] {
			matched++
		}
	}

	return float64(matched) / float64(len(jobSkills)) * MaxSkillScore
}

// experienceScore grants full credit when total experience meets or exceeds
// both bounds, half credit when the candidate is under a bound by at most
// half a year, and nothing otherwise.
func (s *Scorer) experienceScore(job *models.JobPosting, history []models.EmploymentPeriod) float64 {
	total := TotalExperienceYears(history, s.now())

	if total >= job.MinimumExperienceInYears && total >= job.MaximumExperienceInYears {
		return MaxExperienceScore
	}

	minDiff := job.MinimumExperienceInYears - total
	maxDiff := job.MaximumExperienceInYears - total
	if (minDiff > 0 && minDiff <= nearMissWindow) || (maxDiff > 0 && maxDiff <= nearMissWindow) {
		return MaxExperienceScore / 2
	}

	return 0
}

// compensationScore checks the candidate's expected range against the job's
// ceiling; expectations up to half an LPA over the ceiling earn half credit.
func (s *Scorer) compensationScore(job *models.JobPosting, pref models.CareerPreference) float64 {
	if pref.MinimumSalaryLPA <= job.MaximumSalaryLPA && pref.MaximumSalaryLPA <= job.MaximumSalaryLPA {
		return MaxCompensationScore
	}

	overage := pref.MaximumSalaryLPA - job.MaximumSalaryLPA
	if overage > 0 && overage <= nearMissWindow {
		return MaxCompensationScore / 2
	}

	return 0
}

// educationScore compares the candidate's best education rank (across both
// school and higher-education records) against the job's required level.
// One hierarchy step below the requirement still earns half credit.
func (s *Scorer) educationScore(required string, candidate *models.CandidateProfile) float64 {
	best := ""
	bestRank := 0.0
	for _, rec := range candidate.EducationTill12th {
		if r := taxonomy.Rank(rec.Education); r > bestRank {
			bestRank, best = r, rec.Education
		}
	}
	for _, rec := range candidate.EducationAfter12th {
		if r := taxonomy.Rank(rec.EducationLevel); r > bestRank {
			bestRank, best = r, rec.EducationLevel
		}
	}

	if bestRank >= taxonomy.Rank(required) {
		return MaxEducationScore
	}
	if taxonomy.StepsBelow(required, best) == 1 {
		return MaxEducationScore / 2
	}
	return 0
}

// ageScore awards the cap when the candidate's age falls inside the job's
// inclusive [fromAge, toAge] band. Missing or unparsable fields score zero.
func (s *Scorer) ageScore(job *models.JobPosting, dateOfBirth string) float64 {
	if dateOfBirth == "" {
		return 0
	}
	dob, ok := parseDate(dateOfBirth)
	if !ok {
		return 0
	}

	fromAge, err1 := strconv.Atoi(strings.TrimSpace(job.FromAge))
	toAge, err2 := strconv.Atoi(strings.TrimSpace(job.ToAge))
	if err1 != nil || err2 != nil {
		return 0
	}

	age := wholeYearsSince(dob, s.now())
	if age >= fromAge && age <= toAge {
		return MaxAgeScore
	}
	return 0
}

// genderScore awards the cap when the job accepts any gender or the
// preference matches the candidate's, case-insensitively. Either side empty
// scores zero.
func (s *Scorer) genderScore(jobGender, candidateGender string) float64 {
	if jobGender == "" || candidateGender == "" {
		return 0
	}
	if strings.EqualFold(jobGender, "any") || strings.EqualFold(jobGender, candidateGender) {
		return MaxGenderScore
	}
	return 0
}

// wholeYearsSince returns completed years between dob and now, decrementing
// when this year's birthday has not occurred yet.
func wholeYearsSince(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}
