package verdict

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verity-group/claimcheck/internal/model"
)

// Generator turns a claim plus its retrieved evidence into a final verdict.
// It always has the deterministic rule cascade available; when a reasoning
// engine is configured it is tried first, with the cascade as fallback.
type Generator struct {
	opts      Options
	reasoning *ReasoningEngine
	now       func() time.Time
}

func NewGenerator(opts Options, reasoning *ReasoningEngine) *Generator {
	return &Generator{opts: opts, reasoning: reasoning, now: time.Now}
}

// Generate produces the verdict for a claim at a plan tier. The tier sets
// the confidence threshold unless the options carry an explicit override.
// The same claim, evidence, and tier always produce the same verdict on the
// rules path.
func (g *Generator) Generate(ctx context.Context, claim model.Claim, evidence []model.Evidence, tier model.Tier) model.Verdict {
	now := g.now()

	opts := g.opts
	if opts.ConfidenceThreshold <= 0 {
		opts.ConfidenceThreshold = tier.Limits().ConfidenceThreshold
	}

	method := model.VerdictMethodRules
	var s state
	if g.reasoning != nil {
		rs, err := g.reasoning.Analyze(ctx, claim, evidence, now)
		if err != nil {
			zap.L().Warn("reasoning path failed, falling back to rules",
				zap.String("claim_id", claim.ID),
				zap.Error(err))
			s = runCascade(claim, evidence, now, opts)
		} else {
			s = rs
			method = model.VerdictMethodReasoning
		}
	} else {
		s = runCascade(claim, evidence, now, opts)
	}

	if opts.UncertaintyOverlay {
		s = applyUncertainty(s, claim, evidence, now)
	}

	if len(s.rationale) == 0 {
		s.rationale = []string{fmt.Sprintf("Verdict %q from %d evidence items.", s.label, len(evidence))}
	}

	return model.Verdict{
		Label:         s.label,
		Confidence:    clamp(s.confidence, 0, 100),
		Rationale:     s.rationale,
		Summary:       model.Summarize(evidence, now),
		FreshnessDate: freshnessDate(evidence, now),
		KeyEvidence:   model.RankKeyEvidence(evidence),
		Methodology:   s.methodology,
		Limitations:   s.limitations,
		GeneratedBy:   method,
		GeneratedAt:   now,
	}
}

// freshnessDate is the most recent publication date among the evidence, or
// the generation time when nothing is dated.
func freshnessDate(evidence []model.Evidence, now time.Time) time.Time {
	var latest time.Time
	for _, e := range evidence {
		if e.PublishedAt != nil && e.PublishedAt.After(latest) {
			latest = *e.PublishedAt
		}
	}
	if latest.IsZero() {
		return now
	}
	return latest
}
