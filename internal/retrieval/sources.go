package retrieval

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/registry"
	"github.com/verity-group/claimcheck/pkg/factcheck"
	"github.com/verity-group/claimcheck/pkg/govstat"
	"github.com/verity-group/claimcheck/pkg/newsapi"
	"github.com/verity-group/claimcheck/pkg/scholar"
)

// FactCheckSource queries a claim-review directory for professional fact
// checks.
type FactCheckSource struct {
	client   factcheck.Client
	registry *registry.PublisherRegistry
	limiter  *rate.Limiter
}

// NewFactCheckSource creates the fact-check directory source.
func NewFactCheckSource(client factcheck.Client, reg *registry.PublisherRegistry, limiter *rate.Limiter) *FactCheckSource {
	return &FactCheckSource{client: client, registry: reg, limiter: limiter}
}

func (s *FactCheckSource) Category() string { return CategoryFactCheck }

func (s *FactCheckSource) Search(ctx context.Context, query, language string, limit int) ([]model.Evidence, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "factcheck source: rate limit wait")
	}

	resp, err := s.client.SearchClaims(ctx, query, language, limit)
	if err != nil {
		return nil, eris.Wrap(err, "factcheck source: search")
	}

	var evidence []model.Evidence
	for _, claim := range resp.Claims {
		for _, review := range claim.ClaimReview {
			e := model.Evidence{
				ID:              uuid.New().String(),
				SourceName:      review.Publisher.Name,
				SourceURL:       review.URL,
				Publisher:       s.registry.Resolve(review.Publisher.Name),
				Title:           review.Title,
				Snippet:         claim.Text,
				Stance:          StanceFromRating(review.TextualRating),
				Confidence:      85, // professional reviews carry high item confidence
				Type:            model.EvidenceTypeClaimReview,
				Language:        model.NormalizeLanguage(review.LanguageCode),
				FactCheckRating: review.TextualRating,
			}
			e.RelevanceScore = RelevanceScore(query, claim.Text+" "+review.Title)
			if t, ok := parseDate(review.ReviewDate); ok {
				e.PublishedAt = &t
			}
			e.CredibilityIndicators = CredibilityIndicators(e)
			evidence = append(evidence, e)
			if len(evidence) >= limit {
				return evidence, nil
			}
		}
	}
	return evidence, nil
}

// NewsSource queries news coverage of a claim.
type NewsSource struct {
	client   newsapi.Client
	registry *registry.PublisherRegistry
	limiter  *rate.Limiter
}

// NewNewsSource creates the news source.
func NewNewsSource(client newsapi.Client, reg *registry.PublisherRegistry, limiter *rate.Limiter) *NewsSource {
	return &NewsSource{client: client, registry: reg, limiter: limiter}
}

func (s *NewsSource) Category() string { return CategoryNews }

func (s *NewsSource) Search(ctx context.Context, query, language string, limit int) ([]model.Evidence, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "news source: rate limit wait")
	}

	resp, err := s.client.SearchEverything(ctx, newsapi.SearchRequest{
		Query:    query,
		Language: model.NormalizeLanguage(language),
		SortBy:   "relevancy",
		PageSize: limit,
	})
	if err != nil {
		return nil, eris.Wrap(err, "news source: search")
	}

	var evidence []model.Evidence
	for _, article := range resp.Articles {
		e := model.Evidence{
			ID:          uuid.New().String(),
			SourceName:  article.Source.Name,
			SourceURL:   article.URL,
			Publisher:   s.registry.Resolve(article.Source.Name),
			Title:       article.Title,
			Snippet:     article.Description,
			Stance:      InferStance(article.Title, article.Description),
			Confidence:  65,
			Type:        model.EvidenceTypeNews,
			Language:    model.NormalizeLanguage(language),
			PublishedAt: article.PublishedAt,
		}
		e.RelevanceScore = RelevanceScore(query, article.Title+" "+article.Description)
		e.CredibilityIndicators = CredibilityIndicators(e)
		evidence = append(evidence, e)
		if len(evidence) >= limit {
			break
		}
	}
	return evidence, nil
}

// GovStatSource queries government statistical publications.
type GovStatSource struct {
	client   govstat.Client
	registry *registry.PublisherRegistry
	limiter  *rate.Limiter
}

// NewGovStatSource creates the government statistics source.
func NewGovStatSource(client govstat.Client, reg *registry.PublisherRegistry, limiter *rate.Limiter) *GovStatSource {
	return &GovStatSource{client: client, registry: reg, limiter: limiter}
}

func (s *GovStatSource) Category() string { return CategoryGovStat }

func (s *GovStatSource) Search(ctx context.Context, query, language string, limit int) ([]model.Evidence, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "govstat source: rate limit wait")
	}

	resp, err := s.client.Search(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "govstat source: search")
	}

	var evidence []model.Evidence
	for _, pub := range resp.Publications {
		e := model.Evidence{
			ID:          uuid.New().String(),
			SourceName:  pub.Agency,
			SourceURL:   pub.URL,
			Publisher:   s.registry.Resolve(pub.Agency),
			Title:       pub.Title,
			Snippet:     pub.Abstract,
			Stance:      InferStance(pub.Title, pub.Abstract),
			Confidence:  75,
			Type:        model.EvidenceTypeKB,
			Language:    model.NormalizeLanguage(language),
			PublishedAt: pub.PublishedAt,
		}
		e.RelevanceScore = RelevanceScore(query, pub.Title+" "+pub.Abstract)
		e.CredibilityIndicators = CredibilityIndicators(e)
		evidence = append(evidence, e)
		if len(evidence) >= limit {
			break
		}
	}
	return evidence, nil
}

// ScholarSource queries academic literature.
type ScholarSource struct {
	client   scholar.Client
	registry *registry.PublisherRegistry
	limiter  *rate.Limiter
}

// NewScholarSource creates the academic source.
func NewScholarSource(client scholar.Client, reg *registry.PublisherRegistry, limiter *rate.Limiter) *ScholarSource {
	return &ScholarSource{client: client, registry: reg, limiter: limiter}
}

func (s *ScholarSource) Category() string { return CategoryAcademic }

func (s *ScholarSource) Search(ctx context.Context, query, language string, limit int) ([]model.Evidence, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "scholar source: rate limit wait")
	}

	resp, err := s.client.SearchPapers(ctx, query, limit)
	if err != nil {
		return nil, eris.Wrap(err, "scholar source: search")
	}

	var evidence []model.Evidence
	for _, paper := range resp.Data {
		e := model.Evidence{
			ID:         uuid.New().String(),
			SourceName: paper.Venue,
			SourceURL:  paper.URL,
			Publisher:  s.registry.Resolve(paper.Venue),
			Title:      paper.Title,
			Snippet:    paper.Abstract,
			Stance:     InferStance(paper.Title, paper.Abstract),
			Confidence: 70,
			Type:       model.EvidenceTypeKB,
			Language:   model.NormalizeLanguage(language),
		}
		if paper.Year > 0 {
			t := time.Date(paper.Year, time.July, 1, 0, 0, 0, 0, time.UTC)
			e.PublishedAt = &t
		}
		e.RelevanceScore = RelevanceScore(query, paper.Title+" "+paper.Abstract)
		e.CredibilityIndicators = CredibilityIndicators(e)
		evidence = append(evidence, e)
		if len(evidence) >= limit {
			break
		}
	}
	return evidence, nil
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
