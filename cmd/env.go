package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/verity-group/claimcheck/internal/cache"
	"github.com/verity-group/claimcheck/internal/extractor"
	"github.com/verity-group/claimcheck/internal/pipeline"
	"github.com/verity-group/claimcheck/internal/registry"
	"github.com/verity-group/claimcheck/internal/resilience"
	"github.com/verity-group/claimcheck/internal/retrieval"
	"github.com/verity-group/claimcheck/internal/store"
	"github.com/verity-group/claimcheck/internal/verdict"
	anthropicpkg "github.com/verity-group/claimcheck/pkg/anthropic"
	"github.com/verity-group/claimcheck/pkg/factcheck"
	"github.com/verity-group/claimcheck/pkg/govstat"
	"github.com/verity-group/claimcheck/pkg/newsapi"
	"github.com/verity-group/claimcheck/pkg/scholar"
)

// pipelineEnv holds the initialized store, clients, and pipeline needed by
// the check/batch/serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured database backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	case "sqlite", "":
		return store.NewSQLite(cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, evidence sources, verdict generator, and
// cache. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	reg := registry.DefaultPublisherRegistry()
	if cfg.Retrieval.PublisherRegistry != "" {
		reg, err = registry.LoadPublisherRegistry(cfg.Retrieval.PublisherRegistry)
		if err != nil {
			_ = st.Close()
			return nil, eris.Wrap(err, "load publisher registry")
		}
	}

	limit := rate.Limit(cfg.Retrieval.RateLimitPerSec)
	if limit <= 0 {
		limit = rate.Limit(5)
	}
	newLimiter := func() *rate.Limiter { return rate.NewLimiter(limit, 1) }

	// Category order determines which sources free-tier requests reach.
	var sources []retrieval.Source
	if cfg.FactCheck.Key != "" {
		client := factcheck.NewClient(cfg.FactCheck.Key, factcheck.WithBaseURL(cfg.FactCheck.BaseURL))
		sources = append(sources, retrieval.NewFactCheckSource(client, reg, newLimiter()))
	}
	if cfg.News.Key != "" {
		client := newsapi.NewClient(cfg.News.Key, newsapi.WithBaseURL(cfg.News.BaseURL))
		sources = append(sources, retrieval.NewNewsSource(client, reg, newLimiter()))
	}
	if cfg.GovStat.Key != "" {
		client := govstat.NewClient(cfg.GovStat.Key, govstat.WithBaseURL(cfg.GovStat.BaseURL))
		sources = append(sources, retrieval.NewGovStatSource(client, reg, newLimiter()))
	}
	if cfg.Scholar.Key != "" {
		client := scholar.NewClient(cfg.Scholar.Key, scholar.WithBaseURL(cfg.Scholar.BaseURL))
		sources = append(sources, retrieval.NewScholarSource(client, reg, newLimiter()))
	}
	if len(sources) == 0 {
		_ = st.Close()
		return nil, eris.New("no evidence sources configured, set at least one API key")
	}

	retry := resilience.DefaultRetryConfig()
	if cfg.Retrieval.MaxRetries > 0 {
		retry.MaxAttempts = cfg.Retrieval.MaxRetries
	}
	categoryTimeout := time.Duration(cfg.Retrieval.CategoryTimeoutSecs) * time.Second
	retriever := retrieval.NewMultiSourceRetriever(sources, categoryTimeout, retry)

	opts := verdict.Options{
		RequireConsensus:     cfg.Verdict.RequireConsensus,
		CredibilityWeighting: cfg.Verdict.CredibilityWeighting,
		ConfidenceThreshold:  cfg.Verdict.ConfidenceThreshold,
		UncertaintyOverlay:   cfg.Verdict.UncertaintyOverlay,
	}

	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	}

	var reasoning *verdict.ReasoningEngine
	if cfg.Verdict.ReasoningEnabled && aiClient != nil {
		reasoning = verdict.NewReasoningEngine(aiClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)
		zap.L().Info("reasoning verdict path enabled", zap.String("model", cfg.Anthropic.Model))
	}
	gen := verdict.NewGenerator(opts, reasoning)

	ttl := time.Duration(cfg.Cache.TTLHours) * time.Hour
	vc := cache.New(ttl, pipeline.StoreLookup(st))

	rules := extractor.NewRuleExtractor(cfg.Extractor.MaxClaims)
	var ext extractor.Extractor = rules
	if cfg.Extractor.Method == "llm" {
		if aiClient == nil {
			_ = st.Close()
			return nil, eris.New("extractor.method=llm requires an Anthropic key")
		}
		ext = extractor.NewLLMExtractor(aiClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens, rules)
	}

	p := pipeline.New(st, ext, retriever, gen, vc)
	return &pipelineEnv{Store: st, Pipeline: p}, nil
}
