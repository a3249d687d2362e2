// Package verdict converts a claim and its evidence set into a classified,
// confidence-scored, explainable verdict.
package verdict

// Options configures the verdict decision procedure.
type Options struct {
	// RequireConsensus demands a 70% credibility-weighted ratio on one side
	// before a true/false verdict; otherwise the plurality side wins at a
	// lower confidence ceiling.
	RequireConsensus bool

	// CredibilityWeighting weights consensus ratios by publisher credibility.
	// When disabled every evidence item counts 1.0.
	CredibilityWeighting bool

	// ConfidenceThreshold forces verdicts below this confidence to
	// unverified. 0 defers to the threshold of the tier passed to Generate.
	ConfidenceThreshold float64

	// UncertaintyOverlay runs uncertainty quantification after the cascade.
	UncertaintyOverlay bool
}

// DefaultConfidenceThreshold backstops a cascade run with no tier context.
// It matches the premium tier.
const DefaultConfidenceThreshold = 70

func (o Options) threshold() float64 {
	if o.ConfidenceThreshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return o.ConfidenceThreshold
}
