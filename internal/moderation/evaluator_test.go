// internal/moderation/evaluator_test.go
package moderation

import (
	"testing"

	"marketplace-workers/internal/models"

	"github.com/stretchr/testify/assert"
)

const cleanDescription = "We are hiring a backend engineer to build and operate payment " +
	"services. You will design APIs, write Go, own deployments and work closely " +
	"with the product team on roadmap items."

func cleanDraft() *models.JobDraft {
	return &models.JobDraft{
		Title:            "Software Engineer",
		JobDescription:   cleanDescription,
		JobCategory:      "Engineering",
		MinimumSalaryLPA: 5,
		MaximumSalaryLPA: 10,
	}
}

func verifiedEmployer(trustScore float64) *models.EmployerComplianceProfile {
	return &models.EmployerComplianceProfile{
		TrustScore:    trustScore,
		IsPANVerified: true,
		IsGSTVerified: true,
	}
}

func newTestEvaluator() *Evaluator {
	return NewEvaluator(DefaultRuleSet())
}

func TestEvaluate_AutoApproval(t *testing.T) {
	e := newTestEvaluator()

	verdict := e.Evaluate(cleanDraft(), verifiedEmployer(8))

	assert.Equal(t, StatusApproved, verdict.Status)
	assert.Equal(t, ReasonAutoApproved, verdict.Reason)
}

func TestEvaluate_RejectionRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *models.JobDraft)
		employer *models.EmployerComplianceProfile
		reason   string
	}{
		{
			name:     "banned keyword in description",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Earn Quick Money today." },
			employer: verifiedEmployer(8),
			reason:   ReasonBannedKeyword,
		},
		{
			name:     "blacklisted shortener without scheme",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Details at bit.ly/jobs123" },
			employer: verifiedEmployer(8),
			reason:   ReasonBlacklistedDomain,
		},
		{
			name:     "messaging app link",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Join t.me/hiringgroup" },
			employer: verifiedEmployer(8),
			reason:   ReasonBlacklistedDomain,
		},
		{
			name:     "misleading claim in title",
			mutate:   func(d *models.JobDraft) { d.Title = "100% Guaranteed Job for Freshers" },
			employer: verifiedEmployer(8),
			reason:   ReasonMisleadingClaims,
		},
		{
			name:     "title under five runes",
			mutate:   func(d *models.JobDraft) { d.Title = "Dev" },
			employer: verifiedEmployer(8),
			reason:   ReasonTitleTooShort,
		},
		{
			name:     "empty title",
			mutate:   func(d *models.JobDraft) { d.Title = "" },
			employer: verifiedEmployer(8),
			reason:   ReasonTitleTooShort,
		},
		{
			name:     "description under a hundred runes",
			mutate:   func(d *models.JobDraft) { d.JobDescription = "Backend role." },
			employer: verifiedEmployer(8),
			reason:   ReasonDescriptionTooShort,
		},
		{
			name:   "missing PAN verification",
			mutate: func(d *models.JobDraft) {},
			employer: &models.EmployerComplianceProfile{
				TrustScore: 8, IsPANVerified: false, IsGSTVerified: true,
			},
			reason: ReasonEmployerUnverified,
		},
		{
			name:   "missing GST verification",
			mutate: func(d *models.JobDraft) {},
			employer: &models.EmployerComplianceProfile{
				TrustScore: 8, IsPANVerified: true, IsGSTVerified: false,
			},
			reason: ReasonEmployerUnverified,
		},
		{
			name: "minimum salary above maximum",
			mutate: func(d *models.JobDraft) {
				d.MinimumSalaryLPA = 12
				d.MaximumSalaryLPA = 10
			},
			employer: verifiedEmployer(8),
			reason:   ReasonInvalidSalaryRange,
		},
		{
			name:     "negative salary is malformed",
			mutate:   func(d *models.JobDraft) { d.MinimumSalaryLPA = -1 },
			employer: verifiedEmployer(8),
			reason:   ReasonMalformedDraft,
		},
	}

	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := cleanDraft()
			tt.mutate(draft)

			verdict := e.Evaluate(draft, tt.employer)

			assert.Equal(t, StatusRejected, verdict.Status)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestEvaluate_PendingRules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *models.JobDraft)
		employer *models.EmployerComplianceProfile
		reason   string
	}{
		{
			name:     "trust score in review band",
			mutate:   func(d *models.JobDraft) {},
			employer: verifiedEmployer(6.9),
			reason:   ReasonTrustScoreReview,
		},
		{
			name:     "trust score at review floor",
			mutate:   func(d *models.JobDraft) {},
			employer: verifiedEmployer(3.5),
			reason:   ReasonTrustScoreReview,
		},
		{
			name:     "suspicious phrase",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Urgent hiring, direct joining." },
			employer: verifiedEmployer(8),
			reason:   ReasonSuspiciousPhrases,
		},
		{
			name:     "high risk category case-insensitive",
			mutate:   func(d *models.JobDraft) { d.JobCategory = "Work From Home" },
			employer: verifiedEmployer(8),
			reason:   ReasonHighRiskCategory,
		},
		{
			name:     "emoji in title",
			mutate:   func(d *models.JobDraft) { d.Title = "Software Engineer \U0001F680" },
			employer: verifiedEmployer(8),
			reason:   ReasonEmojiInTitle,
		},
		{
			name:     "external link in description",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Apply at https://careers.example.com" },
			employer: verifiedEmployer(8),
			reason:   ReasonUnverifiedLink,
		},
		{
			name:     "uppercase scheme still detected",
			mutate:   func(d *models.JobDraft) { d.JobDescription = cleanDescription + " Apply at HTTPS://CAREERS.EXAMPLE.COM" },
			employer: verifiedEmployer(8),
			reason:   ReasonUnverifiedLink,
		},
	}

	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := cleanDraft()
			tt.mutate(draft)

			verdict := e.Evaluate(draft, tt.employer)

			assert.Equal(t, StatusPending, verdict.Status)
			assert.Equal(t, tt.reason, verdict.Reason)
		})
	}
}

func TestEvaluate_ManualReviewFallback(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(d *models.JobDraft)
		employer *models.EmployerComplianceProfile
	}{
		{
			name:     "trust below review band",
			mutate:   func(d *models.JobDraft) {},
			employer: verifiedEmployer(3.4),
		},
		{
			name: "equal salary bounds block auto-approval",
			mutate: func(d *models.JobDraft) {
				d.MinimumSalaryLPA = 5
				d.MaximumSalaryLPA = 5
			},
			employer: verifiedEmployer(8),
		},
		{
			name:     "punctuation run in title blocks auto-approval",
			mutate:   func(d *models.JobDraft) { d.Title = "Software Engineer!!!" },
			employer: verifiedEmployer(8),
		},
		{
			name:     "pushy phrase in title blocks auto-approval",
			mutate:   func(d *models.JobDraft) { d.Title = "Software Engineer Apply Now" },
			employer: verifiedEmployer(8),
		},
	}

	e := newTestEvaluator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := cleanDraft()
			tt.mutate(draft)

			verdict := e.Evaluate(draft, tt.employer)

			assert.Equal(t, StatusPending, verdict.Status)
			assert.Equal(t, ReasonManualReview, verdict.Reason)
		})
	}
}

func TestEvaluate_PriorityOrdering(t *testing.T) {
	e := newTestEvaluator()

	// Banned keyword, short title and an unverified employer at once: the
	// highest-priority rejection wins.
	draft := cleanDraft()
	draft.Title = "MLM"
	draft.JobDescription = "Earn quick money now."

	verdict := e.Evaluate(draft, &models.EmployerComplianceProfile{})

	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, ReasonBannedKeyword, verdict.Reason)
}

func TestEvaluate_RejectionBeatsPendingSignals(t *testing.T) {
	e := newTestEvaluator()

	// Trust in the review band plus an unverified employer: rejection rules
	// run before the trust band.
	draft := cleanDraft()
	verdict := e.Evaluate(draft, &models.EmployerComplianceProfile{TrustScore: 5})

	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, ReasonEmployerUnverified, verdict.Reason)
}

func TestEvaluate_MisleadingClaimsAreCaseSensitive(t *testing.T) {
	e := newTestEvaluator()

	draft := cleanDraft()
	draft.Title = "100% guaranteed job for freshers"

	verdict := e.Evaluate(draft, verifiedEmployer(8))

	// Lower-cased variant does not match the exact-case bank; nothing else
	// flags the draft.
	assert.NotEqual(t, ReasonMisleadingClaims, verdict.Reason)
}

func TestEvaluate_NilInputs(t *testing.T) {
	e := newTestEvaluator()

	verdict := e.Evaluate(nil, verifiedEmployer(8))
	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, ReasonMalformedDraft, verdict.Reason)

	verdict = e.Evaluate(cleanDraft(), nil)
	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, ReasonEmployerUnverified, verdict.Reason)
}

func TestEvaluate_Deterministic(t *testing.T) {
	e := newTestEvaluator()
	draft := cleanDraft()
	employer := verifiedEmployer(8)

	first := e.Evaluate(draft, employer)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Evaluate(draft, employer))
	}
}

func TestEvaluate_CustomRuleSet(t *testing.T) {
	rules := DefaultRuleSet()
	rules.BannedKeywords = append(rules.BannedKeywords, "night shift")
	e := NewEvaluator(rules)

	draft := cleanDraft()
	draft.JobDescription = cleanDescription + " Night shift only."

	verdict := e.Evaluate(draft, verifiedEmployer(8))

	assert.Equal(t, StatusRejected, verdict.Status)
	assert.Equal(t, ReasonBannedKeyword, verdict.Reason)
}
