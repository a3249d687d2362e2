// Package retrieval gathers evidence about a claim from independent source
// categories.
package retrieval

import (
	"context"
	"time"

	"github.com/verity-group/claimcheck/internal/model"
)

// Source category names. The free tier queries the first two; premium
// queries all four.
const (
	CategoryFactCheck = "fact_check"
	CategoryNews      = "news"
	CategoryGovStat   = "gov_stat"
	CategoryAcademic  = "academic"
)

// Source is one independent evidence-source category. Implementations must
// be safe for concurrent use and must honor context deadlines; a failing
// source contributes zero evidence rather than aborting retrieval.
type Source interface {
	Category() string
	Search(ctx context.Context, query, language string, limit int) ([]model.Evidence, error)
}

// Summary describes one retrieval run for downstream confidence factoring.
type Summary struct {
	TotalSources   int                        `json:"total_sources"`
	ByType         map[model.EvidenceType]int `json:"by_type"`
	EnhancedSearch bool                       `json:"enhanced_search"`
	FailedSources  []string                   `json:"failed_sources,omitempty"`
}

// Result is the outcome of one evidence retrieval. SearchQueries lists only
// the queries actually issued to at least one source.
type Result struct {
	Evidence       []model.Evidence `json:"evidence"`
	ProcessingTime time.Duration    `json:"processing_time"`
	SearchQueries  []string         `json:"search_queries"`
	Summary        Summary          `json:"summary"`
}

// Retriever gathers evidence for a claim at a plan tier.
type Retriever interface {
	Retrieve(ctx context.Context, claimText, language string, tier model.Tier) (*Result, error)
}
