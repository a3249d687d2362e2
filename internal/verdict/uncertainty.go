package verdict

import (
	"fmt"
	"time"

	"github.com/verity-group/claimcheck/internal/model"
)

// Severity weights for uncertainty factors.
const (
	severityHigh   = 0.3
	severityMedium = 0.2
	severityLow    = 0.1
)

// forceUnverifiedUncertainty is the aggregate uncertainty above which no
// verdict is reported regardless of the cascade's conclusion.
const forceUnverifiedUncertainty = 0.6

// detectUncertainty scans the evidence set for conditions that undermine
// confidence in any verdict. Each factor's Score is the observed proportion
// that triggered it.
func detectUncertainty(claim model.Claim, evidence []model.Evidence, now time.Time) []model.ConfidenceFactor {
	var factors []model.ConfidenceFactor

	if len(evidence) < 3 {
		factors = append(factors, model.ConfidenceFactor{
			Name:        "sparse_evidence",
			Score:       1,
			Weight:      severityHigh,
			Description: "Fewer than three independent evidence items.",
		})
	}

	if len(evidence) > 0 {
		lowConf := 0
		stale := 0
		dated := 0
		mismatched := 0
		var supporting, refuting int
		for _, e := range evidence {
			if e.Confidence < 50 {
				lowConf++
			}
			if e.PublishedAt != nil {
				dated++
				if !e.IsRecent(now) {
					stale++
				}
			}
			if !model.LanguageMatches(e.Language, claim.Language) {
				mismatched++
			}
			switch e.Stance {
			case model.StanceSupports:
				supporting++
			case model.StanceRefutes:
				refuting++
			}
		}

		n := float64(len(evidence))
		if float64(lowConf)/n > 0.3 {
			factors = append(factors, model.ConfidenceFactor{
				Name:        "low_confidence_evidence",
				Score:       float64(lowConf) / n,
				Weight:      severityMedium,
				Description: "Over 30% of evidence items carry low individual confidence.",
			})
		}
		if dated > 0 && float64(stale)/float64(dated) > 0.5 {
			factors = append(factors, model.ConfidenceFactor{
				Name:        "stale_evidence",
				Score:       float64(stale) / float64(dated),
				Weight:      severityLow,
				Description: "Over half of the dated evidence is older than one year.",
			})
		}
		if float64(mismatched)/n > 0.4 {
			factors = append(factors, model.ConfidenceFactor{
				Name:        "language_mismatch",
				Score:       float64(mismatched) / n,
				Weight:      severityLow,
				Description: "Over 40% of evidence is not in the target language.",
			})
		}
		if supporting > 0 && refuting > 0 && abs(supporting-refuting) <= 1 {
			factors = append(factors, model.ConfidenceFactor{
				Name:        "contested_evidence",
				Score:       1,
				Weight:      severityMedium,
				Description: "Supporting and refuting source counts are nearly equal.",
			})
		}
	}

	return factors
}

// applyUncertainty dampens confidence by the aggregate uncertainty and
// withholds the verdict entirely when uncertainty is overwhelming.
func applyUncertainty(s state, claim model.Claim, evidence []model.Evidence, now time.Time) state {
	factors := detectUncertainty(claim, evidence, now)
	if len(factors) == 0 {
		return s
	}

	uncertainty := 0.0
	for _, f := range factors {
		uncertainty += f.Weight
		s.limitations = append(s.limitations, f.Description)
	}
	uncertainty = clamp(uncertainty, 0, 1)

	s.confidence = clamp(s.confidence*(1-uncertainty*0.5), 0, 100)
	s.methodology = append(s.methodology, "uncertainty_overlay")

	if uncertainty > forceUnverifiedUncertainty && s.label != model.VerdictUnverified {
		s.rationale = append(s.rationale,
			fmt.Sprintf("Aggregate uncertainty %.2f is too high to report a %q verdict.", uncertainty, s.label))
		s.label = model.VerdictUnverified
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
