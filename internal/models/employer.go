// internal/models/employer.go
package models

// EmployerComplianceProfile is owned by the employer aggregate; the trust
// score is computed elsewhere and consumed read-only during moderation.
type EmployerComplianceProfile struct {
	TrustScore    float64 `json:"trustScore"` // 0-10
	IsPANVerified bool    `json:"isPANVerified"`
	IsGSTVerified bool    `json:"isGSTVerified"`
}
