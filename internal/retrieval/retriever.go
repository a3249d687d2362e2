package retrieval

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/resilience"
)

// MultiSourceRetriever fans a claim out to independent source categories and
// joins the results. A slow or failing category contributes no evidence;
// retrieval itself only fails on context cancellation.
type MultiSourceRetriever struct {
	sources         []Source
	categoryTimeout time.Duration
	retry           resilience.RetryConfig
}

// NewMultiSourceRetriever creates a retriever over the given sources.
// Sources are consulted in the order given; the tier's category cap takes a
// prefix of that order, so fact-check and news sources should come first.
func NewMultiSourceRetriever(sources []Source, categoryTimeout time.Duration, retry resilience.RetryConfig) *MultiSourceRetriever {
	if categoryTimeout <= 0 {
		categoryTimeout = 4 * time.Second
	}
	return &MultiSourceRetriever{
		sources:         sources,
		categoryTimeout: categoryTimeout,
		retry:           retry,
	}
}

// Retrieve queries up to the tier's category count concurrently, each under
// its own deadline, and joins the evidence.
func (r *MultiSourceRetriever) Retrieve(ctx context.Context, claimText, language string, tier model.Tier) (*Result, error) {
	start := time.Now()
	limits := tier.Limits()

	active := r.sources
	if len(active) > limits.MaxCategories {
		active = active[:limits.MaxCategories]
	}

	queries := BuildQueries(claimText, limits.EnhancedSearch)

	var mu sync.Mutex
	var evidence []model.Evidence
	var failed []string
	issued := make([]bool, len(queries))

	g, gCtx := errgroup.WithContext(ctx)
	for _, src := range active {
		src := src
		g.Go(func() error {
			srcCtx, cancel := context.WithTimeout(gCtx, r.categoryTimeout)
			defer cancel()

			// Each query variant fills whatever the per-source cap still
			// allows; a source satisfied by the first query never issues
			// the rest.
			var items []model.Evidence
			var searchErr error
			for qi, query := range queries {
				remaining := limits.MaxResultsPerSource - len(items)
				if remaining <= 0 {
					break
				}
				mu.Lock()
				issued[qi] = true
				mu.Unlock()

				batch, err := resilience.DoVal(srcCtx, r.retry, src.Category(), func(ctx context.Context) ([]model.Evidence, error) {
					return src.Search(ctx, query, language, remaining)
				})
				if err != nil {
					searchErr = err
					break
				}
				items = append(items, batch...)
			}

			if searchErr != nil && len(items) == 0 {
				// Category failures degrade to zero evidence (never abort the join).
				zap.L().Warn("retrieval: source category failed",
					zap.String("category", src.Category()),
					zap.Error(searchErr),
				)
				mu.Lock()
				failed = append(failed, src.Category())
				mu.Unlock()
				return nil
			}
			if searchErr != nil {
				zap.L().Warn("retrieval: query variant failed",
					zap.String("category", src.Category()),
					zap.Error(searchErr),
				)
			}

			mu.Lock()
			evidence = append(evidence, items...)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	// The enclosing request was cancelled; the evidence set may be incomplete
	// and must not reach the verdict generator.
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	evidence = dedupeByURL(evidence)

	executed := make([]string, 0, len(queries))
	for i, q := range queries {
		if issued[i] {
			executed = append(executed, q)
		}
	}

	result := &Result{
		Evidence:       evidence,
		ProcessingTime: time.Since(start),
		SearchQueries:  executed,
		Summary: Summary{
			TotalSources:   len(evidence),
			ByType:         countByType(evidence),
			EnhancedSearch: limits.EnhancedSearch,
			FailedSources:  failed,
		},
	}

	zap.L().Info("retrieval: complete",
		zap.Int("evidence", len(evidence)),
		zap.Int("categories", len(active)),
		zap.Strings("failed", failed),
		zap.Duration("duration", result.ProcessingTime),
	)
	return result, nil
}

// BuildQueries derives the search queries for a claim. The enhanced path
// adds fact-check phrasing variants used by the premium tier.
func BuildQueries(claimText string, enhanced bool) []string {
	queries := []string{claimText}
	if enhanced {
		queries = append(queries,
			fmt.Sprintf("%s fact check", claimText),
			fmt.Sprintf("is it true that %s", claimText),
		)
	}
	return queries
}

func dedupeByURL(evidence []model.Evidence) []model.Evidence {
	seen := make(map[string]struct{}, len(evidence))
	out := evidence[:0]
	for _, e := range evidence {
		if e.SourceURL != "" {
			if _, dup := seen[e.SourceURL]; dup {
				continue
			}
			seen[e.SourceURL] = struct{}{}
		}
		out = append(out, e)
	}
	return out
}

func countByType(evidence []model.Evidence) map[model.EvidenceType]int {
	counts := make(map[model.EvidenceType]int)
	for _, e := range evidence {
		counts[e.Type]++
	}
	return counts
}
