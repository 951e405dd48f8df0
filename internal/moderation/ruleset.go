// internal/moderation/ruleset.go
package moderation

// RuleSet is the immutable knowledge base the evaluator runs against. It is
// injected at construction time so tests and config can override individual
// banks without redeploying code.
type RuleSet struct {
	// BannedKeywords reject outright. Scanned case-insensitively over
	// title + description.
	BannedKeywords []string
	// BlacklistedDomains reject outright: URL shorteners, messaging-app
	// links, known scam hosts. Scanned case-insensitively.
	BlacklistedDomains []string
	// MisleadingClaims reject when found in the title. Matched as exact,
	// case-sensitive substrings.
	MisleadingClaims []string
	// SuspiciousPhrases send the post to manual review. Weaker signal than
	// banned keywords; scanned case-insensitively.
	SuspiciousPhrases []string
	// HighRiskCategories force manual review regardless of other signals.
	HighRiskCategories []string
	// PushyTitlePhrases block auto-approval when present in the title.
	PushyTitlePhrases []string

	// MinTitleLength and MinDescriptionLength are measured in runes.
	MinTitleLength       int
	MinDescriptionLength int
	// ReviewTrustScore is the floor of the manual-review trust band;
	// AutoApproveTrustScore is the floor for automatic approval.
	ReviewTrustScore      float64
	AutoApproveTrustScore float64
}

// DefaultRuleSet returns the production banks and thresholds.
func DefaultRuleSet() RuleSet {
	return RuleSet{
		BannedKeywords: []string{
			"quick money",
			"easy money",
			"registration fee",
			"joining fee",
			"refundable deposit",
			"security deposit required",
			"pay to apply",
			"mlm",
			"network marketing",
			"pyramid scheme",
			"chain marketing",
			"investment required",
			"money laundering",
			"escort",
			"adult content",
			"betting",
			"matka",
		},
		BlacklistedDomains: []string{
			"bit.ly",
			"tinyurl.com",
			"cutt.ly",
			"rb.gy",
			"t.me",
			"telegram.me",
			"wa.me",
			"chat.whatsapp.com",
			"rich4ever.biz",
			"earnfast.club",
		},
		MisleadingClaims: []string{
			"100% Guaranteed Job",
			"Guaranteed Placement",
			"No Interview Required",
			"Instant Job",
			"Get Rich",
			"Earn Lakhs From Home",
		},
		SuspiciousPhrases: []string{
			"urgent hiring",
			"no interview",
			"direct joining",
			"earn daily",
			"daily payout",
			"instant payment",
			"work from mobile",
			"limited seats",
			"unlimited income",
		},
		HighRiskCategories: []string{
			"work from home",
			"data entry",
			"forex trading",
			"cryptocurrency",
			"network marketing",
			"online survey",
		},
		PushyTitlePhrases: []string{
			"urgent",
			"apply now",
			"hurry",
			"limited slots",
			"immediate joining",
		},
		MinTitleLength:        5,
		MinDescriptionLength:  100,
		ReviewTrustScore:      3.5,
		AutoApproveTrustScore: 7.0,
	}
}
