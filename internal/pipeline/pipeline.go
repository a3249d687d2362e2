package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verity-group/claimcheck/internal/cache"
	"github.com/verity-group/claimcheck/internal/extractor"
	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/retrieval"
	"github.com/verity-group/claimcheck/internal/store"
	"github.com/verity-group/claimcheck/internal/verdict"
)

// Pipeline orchestrates claim extraction, evidence retrieval, verdict
// generation, and persistence for one input text.
type Pipeline struct {
	store     store.Store
	extractor extractor.Extractor
	retriever retrieval.Retriever
	generator *verdict.Generator
	cache     *cache.VerdictCache
}

// New creates a Pipeline with all dependencies.
func New(
	st store.Store,
	ext extractor.Extractor,
	ret retrieval.Retriever,
	gen *verdict.Generator,
	vc *cache.VerdictCache,
) *Pipeline {
	return &Pipeline{
		store:     st,
		extractor: ext,
		retriever: ret,
		generator: gen,
		cache:     vc,
	}
}

// StoreLookup adapts a store into the persistent layer of the verdict cache.
// A hit carries the latest verdict for the signature together with the
// evidence recorded for the matching claim; evidence retrieval failures
// degrade to a verdict-only result rather than forcing recomputation.
func StoreLookup(st store.Store) cache.Lookup {
	return func(ctx context.Context, signature string) (*model.ClaimResult, error) {
		v, err := st.GetVerdictBySignature(ctx, signature)
		if err != nil || v == nil {
			return nil, err
		}
		out := &model.ClaimResult{Verdict: *v}

		claim, err := st.GetClaimBySignature(ctx, signature)
		if err != nil || claim == nil {
			if err != nil {
				zap.L().Warn("pipeline: cached claim lookup failed",
					zap.String("signature", signature), zap.Error(err))
			}
			return out, nil
		}
		out.ClaimID = claim.ID
		out.ClaimText = claim.RawText

		evidence, err := st.GetEvidence(ctx, claim.ID)
		if err != nil {
			zap.L().Warn("pipeline: cached evidence lookup failed",
				zap.String("claim_id", claim.ID), zap.Error(err))
			return out, nil
		}
		out.Evidence = evidence
		return out, nil
	}
}

// Verify runs the full pipeline over one text. Every extracted claim yields
// exactly one result; a claim whose retrieval or verdict fails gets an
// unverified result carrying the failure, never an aborted batch. Only
// context cancellation returns an error.
func (p *Pipeline) Verify(ctx context.Context, text, language string, tier model.Tier) (*model.BatchResult, error) {
	start := time.Now()
	language = model.NormalizeLanguage(language)
	limits := tier.Limits()
	log := zap.L().With(zap.String("tier", string(tier)), zap.String("language", language))

	extracted := p.extractor.Extract(text, language)
	candidates := extracted.Claims
	if len(candidates) > limits.MaxClaims {
		candidates = candidates[:limits.MaxClaims]
	}
	log.Info("pipeline: claims extracted",
		zap.Int("count", len(candidates)),
		zap.String("method", extracted.Method))

	claims := make([]model.Claim, len(candidates))
	for i, cand := range candidates {
		claims[i] = model.Claim{
			ID:                   uuid.New().String(),
			RawText:              cand.Text,
			CanonicalText:        model.Canonicalize(cand.Text),
			Language:             language,
			Signature:            model.ComputeSignature(cand.Text),
			ExtractionConfidence: cand.Confidence,
			Type:                 cand.Type,
			CreatedAt:            time.Now().UTC(),
		}
	}

	results := make([]model.ClaimResult, len(claims))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limits.MaxClaims)
	for i, claim := range claims {
		i, claim := i, claim
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = p.verifyClaim(gctx, claim, tier)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &model.BatchResult{
		Results:          results,
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		ClaimsProcessed:  len(results),
		Language:         language,
	}, nil
}

// verifyClaim resolves one claim through the cache, computing the verdict
// when no cached result exists.
func (p *Pipeline) verifyClaim(ctx context.Context, claim model.Claim, tier model.Tier) model.ClaimResult {
	start := time.Now()

	result, cached, err := p.cache.Do(ctx, claim.Signature, func(ctx context.Context) (*model.ClaimResult, error) {
		return p.compute(ctx, claim, tier)
	})
	if err != nil {
		if ctx.Err() != nil {
			return degradedResult(claim, start, ctx.Err())
		}
		zap.L().Error("pipeline: claim verification failed",
			zap.String("claim_id", claim.ID),
			zap.String("signature", claim.Signature),
			zap.Error(err))
		return degradedResult(claim, start, err)
	}

	out := *result
	out.ClaimID = claim.ID
	out.ClaimText = claim.RawText
	out.Cached = cached
	out.ProcessingTimeMS = time.Since(start).Milliseconds()
	return out
}

// compute performs the uncached work for one claim: retrieval, verdict
// generation, and persistence. Persistence failures are logged, not fatal;
// the verdict is still returned to the caller.
func (p *Pipeline) compute(ctx context.Context, claim model.Claim, tier model.Tier) (*model.ClaimResult, error) {
	if err := p.store.SaveClaim(ctx, claim); err != nil {
		zap.L().Warn("pipeline: save claim failed",
			zap.String("claim_id", claim.ID), zap.Error(err))
	}

	ret, err := p.retriever.Retrieve(ctx, claim.CanonicalText, claim.Language, tier)
	if err != nil {
		return nil, err
	}

	// Copy before attribution: the retriever may hand back shared data.
	evidence := make([]model.Evidence, len(ret.Evidence))
	copy(evidence, ret.Evidence)
	for i := range evidence {
		evidence[i].ClaimID = claim.ID
	}

	v := p.generator.Generate(ctx, claim, evidence, tier)

	if err := p.store.SaveEvidence(ctx, evidence); err != nil {
		zap.L().Warn("pipeline: save evidence failed",
			zap.String("claim_id", claim.ID), zap.Error(err))
	}
	if err := p.store.SaveVerdict(ctx, claim.ID, claim.Signature, v); err != nil {
		zap.L().Warn("pipeline: save verdict failed",
			zap.String("claim_id", claim.ID), zap.Error(err))
	}

	return &model.ClaimResult{
		ClaimID:   claim.ID,
		ClaimText: claim.RawText,
		Verdict:   v,
		Evidence:  evidence,
	}, nil
}

// degradedResult is the placeholder returned for a claim whose verification
// failed. The batch shape is preserved; the failure is visible in the
// verdict's limitations.
func degradedResult(claim model.Claim, start time.Time, err error) model.ClaimResult {
	now := time.Now().UTC()
	return model.ClaimResult{
		ClaimID:   claim.ID,
		ClaimText: claim.RawText,
		Verdict: model.Verdict{
			Label:      model.VerdictUnverified,
			Confidence: 0,
			Rationale: []string{
				"Verification could not be completed for this claim.",
			},
			Limitations:   []string{fmt.Sprintf("processing error: %v", err)},
			Methodology:   []string{"error_fallback"},
			FreshnessDate: now,
			GeneratedBy:   model.VerdictMethodRules,
			GeneratedAt:   now,
		},
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}
}
