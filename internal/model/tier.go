package model

// Tier selects the plan limits applied to a verification request.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// TierLimits bounds per-request work for a plan tier.
type TierLimits struct {
	MaxClaims           int     // claims processed per request
	MaxCategories       int     // evidence source categories queried per claim
	MaxResultsPerSource int     // evidence items kept per category
	ConfidenceThreshold float64 // final verdict threshold (0-100)
	EnhancedSearch      bool    // premium search path for retrieval
}

// Limits returns the work bounds for the tier. Unknown tiers get free limits.
func (t Tier) Limits() TierLimits {
	if t == TierPremium {
		return TierLimits{
			MaxClaims:           10,
			MaxCategories:       4,
			MaxResultsPerSource: 8,
			ConfidenceThreshold: 70,
			EnhancedSearch:      true,
		}
	}
	return TierLimits{
		MaxClaims:           3,
		MaxCategories:       2,
		MaxResultsPerSource: 3,
		ConfidenceThreshold: 60,
	}
}
