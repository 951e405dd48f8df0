// internal/moderation/evaluator.go

// Package moderation decides whether a submitted job posting may go live
// automatically. The evaluator is a pure, deterministic ordered decision
// list: rules are declared as data and checked top to bottom, and only the
// first matching rule's reason is ever reported.
package moderation

import (
	"math"
	"strings"
	"unicode/utf8"

	"marketplace-workers/internal/models"
)

type Status string

const (
	StatusApproved Status = "approved"
	StatusPending  Status = "pending"
	StatusRejected Status = "rejected"
)

// Verdict is attached to the job record at creation time and never
// recomputed on edits; callers must re-invoke the evaluator for a fresh one.
type Verdict struct {
	Status Status `json:"status"`
	Reason string `json:"reason"`
}

// Canned verdict reasons. Exactly one of these is reported per evaluation.
const (
	ReasonMalformedDraft      = "Malformed job draft"
	ReasonBannedKeyword       = "Contains banned keywords"
	ReasonBlacklistedDomain   = "Contains blacklisted domain or link"
	ReasonMisleadingClaims    = "Misleading claims in title"
	ReasonTitleTooShort       = "Title too short"
	ReasonDescriptionTooShort = "Job description missing or too short"
	ReasonEmployerUnverified  = "Employer identity not verified"
	ReasonInvalidSalaryRange  = "Invalid salary range"
	ReasonTrustScoreReview    = "Employer trust score requires manual review"
	ReasonSuspiciousPhrases   = "Contains suspicious phrases"
	ReasonHighRiskCategory    = "High-risk job category"
	ReasonEmojiInTitle        = "Title contains emoji"
	ReasonUnverifiedLink      = "Contains unverified external link"
	ReasonAutoApproved        = "Meets all auto-approval criteria"
	ReasonManualReview        = "Needs manual review"
)

// evalContext carries the precomputed views of one evaluation so every rule
// scans the same lowered text.
type evalContext struct {
	draft       *models.JobDraft
	employer    *models.EmployerComplianceProfile
	loweredText string
}

type rule struct {
	name    string
	status  Status
	reason  string
	matches func(rs *RuleSet, ec *evalContext) bool
}

type Evaluator struct {
	rules   RuleSet
	cascade []rule
}

func NewEvaluator(rules RuleSet) *Evaluator {
	return &Evaluator{
		rules:   rules,
		cascade: buildCascade(),
	}
}

// buildCascade declares the priority order as data. Multiple rules can match
// one draft; position in this slice is the only tie-breaker.
func buildCascade() []rule {
	return []rule{
		{
			name:   "malformed-draft",
			status: StatusRejected,
			reason: ReasonMalformedDraft,
			matches: func(_ *RuleSet, ec *evalContext) bool {
				return ec.draft == nil ||
					math.IsNaN(ec.draft.MinimumSalaryLPA) || math.IsNaN(ec.draft.MaximumSalaryLPA) ||
					ec.draft.MinimumSalaryLPA < 0 || ec.draft.MaximumSalaryLPA < 0
			},
		},
		{
			name:   "banned-keyword",
			status: StatusRejected,
			reason: ReasonBannedKeyword,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				_, found := containsAnyFold(ec.loweredText, rs.BannedKeywords)
				return found
			},
		},
		{
			name:   "blacklisted-domain",
			status: StatusRejected,
			reason: ReasonBlacklistedDomain,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				_, found := containsAnyFold(ec.loweredText, rs.BlacklistedDomains)
				return found
			},
		},
		{
			name:   "misleading-claims",
			status: StatusRejected,
			reason: ReasonMisleadingClaims,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				_, found := containsAnyExact(ec.draft.Title, rs.MisleadingClaims)
				return found
			},
		},
		{
			name:   "title-too-short",
			status: StatusRejected,
			reason: ReasonTitleTooShort,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				return utf8.RuneCountInString(ec.draft.Title) < rs.MinTitleLength
			},
		},
		{
			name:   "description-too-short",
			status: StatusRejected,
			reason: ReasonDescriptionTooShort,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				return utf8.RuneCountInString(ec.draft.JobDescription) < rs.MinDescriptionLength
			},
		},
		{
			name:   "employer-unverified",
			status: StatusRejected,
			reason: ReasonEmployerUnverified,
			matches: func(_ *RuleSet, ec *evalContext) bool {
				return !ec.employer.IsPANVerified || !ec.employer.IsGSTVerified
			},
		},
		{
			name:   "invalid-salary-range",
			status: StatusRejected,
			reason: ReasonInvalidSalaryRange,
			matches: func(_ *RuleSet, ec *evalContext) bool {
				return ec.draft.MinimumSalaryLPA > ec.draft.MaximumSalaryLPA
			},
		},
		{
			name:   "trust-score-band",
			status: StatusPending,
			reason: ReasonTrustScoreReview,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				return ec.employer.TrustScore >= rs.ReviewTrustScore &&
					ec.employer.TrustScore < rs.AutoApproveTrustScore
			},
		},
		{
			name:   "suspicious-phrase",
			status: StatusPending,
			reason: ReasonSuspiciousPhrases,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				_, found := containsAnyFold(ec.loweredText, rs.SuspiciousPhrases)
				return found
			},
		},
		{
			name:   "high-risk-category",
			status: StatusPending,
			reason: ReasonHighRiskCategory,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				return inSetFold(ec.draft.JobCategory, rs.HighRiskCategories)
			},
		},
		{
			name:   "emoji-in-title",
			status: StatusPending,
			reason: ReasonEmojiInTitle,
			matches: func(_ *RuleSet, ec *evalContext) bool {
				return containsEmoji(ec.draft.Title)
			},
		},
		{
			name:   "unverified-link",
			status: StatusPending,
			reason: ReasonUnverifiedLink,
			matches: func(_ *RuleSet, ec *evalContext) bool {
				return containsURL(ec.loweredText)
			},
		},
		{
			name:   "auto-approve",
			status: StatusApproved,
			reason: ReasonAutoApproved,
			matches: func(rs *RuleSet, ec *evalContext) bool {
				return qualifiesForAutoApproval(rs, ec)
			},
		},
	}
}

// Evaluate runs the cascade and returns the first matching rule's verdict.
// Pure and idempotent: identical inputs always yield the identical verdict.
func (e *Evaluator) Evaluate(draft *models.JobDraft, employer *models.EmployerComplianceProfile) Verdict {
	if draft == nil {
		return Verdict{Status: StatusRejected, Reason: ReasonMalformedDraft}
	}
	if employer == nil {
		// An absent compliance profile is indistinguishable from an
		// unverified employer.
		employer = &models.EmployerComplianceProfile{}
	}

	ec := &evalContext{
		draft:       draft,
		employer:    employer,
		loweredText: strings.ToLower(draft.Title + " " + draft.JobDescription),
	}

	for _, r := range e.cascade {
		if r.matches(&e.rules, ec) {
			return Verdict{Status: r.status, Reason: r.reason}
		}
	}

	return Verdict{Status: StatusPending, Reason: ReasonManualReview}
}

// qualifiesForAutoApproval requires every approval predicate at once. The
// rejection rules above already rule most of these out by the time the
// cascade gets here, but each predicate is restated so the rule stands alone.
func qualifiesForAutoApproval(rs *RuleSet, ec *evalContext) bool {
	if ec.employer.TrustScore < rs.AutoApproveTrustScore {
		return false
	}
	if utf8.RuneCountInString(ec.draft.Title) < rs.MinTitleLength {
		return false
	}
	if _, found := containsAnyFold(ec.loweredText, rs.BannedKeywords); found {
		return false
	}
	if ec.draft.MinimumSalaryLPA >= ec.draft.MaximumSalaryLPA {
		return false
	}
	if utf8.RuneCountInString(ec.draft.JobDescription) < rs.MinDescriptionLength {
		return false
	}
	if !ec.employer.IsPANVerified || !ec.employer.IsGSTVerified {
		return false
	}
	return !hasSuspiciousTitlePattern(rs, ec.draft.Title)
}

// hasSuspiciousTitlePattern flags pushy phrasing, punctuation runs and emoji
// in the title. Any of these blocks auto-approval without rejecting the post.
func hasSuspiciousTitlePattern(rs *RuleSet, title string) bool {
	lowered := strings.ToLower(title)
	if _, found := containsAnyFold(lowered, rs.PushyTitlePhrases); found {
		return true
	}
	if containsPunctuationRun(title) {
		return true
	}
	return containsEmoji(title)
}
