package model

import "time"

// Stance is an evidence item's position relative to a claim.
type Stance string

const (
	StanceSupports Stance = "supports"
	StanceRefutes  Stance = "refutes"
	StanceNeutral  Stance = "neutral"
)

// EvidenceType identifies the category of source an evidence item came from.
type EvidenceType string

const (
	EvidenceTypeClaimReview EvidenceType = "claimreview"
	EvidenceTypeNews        EvidenceType = "news"
	EvidenceTypeKB          EvidenceType = "kb"
)

// Publisher is the organization behind an evidence source, with a
// credibility weight in [0,1].
type Publisher struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Weight float64 `json:"weight"`
	Type   string  `json:"type,omitempty"`
	Region string  `json:"region,omitempty"`
}

// Evidence is one external data point bearing on a claim. Immutable once
// retrieved; owned by the claim whose retrieval produced it.
type Evidence struct {
	ID                    string       `json:"id"`
	ClaimID               string       `json:"claim_id"`
	SourceName            string       `json:"source_name"`
	SourceURL             string       `json:"source_url"`
	Publisher             Publisher    `json:"publisher"`
	Title                 string       `json:"title"`
	Snippet               string       `json:"snippet"`
	Stance                Stance       `json:"stance"`
	Confidence            float64      `json:"confidence"`      // 0-100
	RelevanceScore        float64      `json:"relevance_score"` // 0-1
	Type                  EvidenceType `json:"evidence_type"`
	Language              string       `json:"language"`
	PublishedAt           *time.Time   `json:"published_at,omitempty"`
	CredibilityIndicators []string     `json:"credibility_indicators,omitempty"`
	FactCheckRating       string       `json:"fact_check_rating,omitempty"`
}

// HighCredibilityWeight is the publisher weight at or above which a source
// counts as high-credibility in verdict analysis.
const HighCredibilityWeight = 0.85

// IsHighCredibility reports whether the evidence comes from a
// high-credibility publisher.
func (e Evidence) IsHighCredibility() bool {
	return e.Publisher.Weight >= HighCredibilityWeight
}

// IsRecent reports whether the evidence was published within the last year.
// Undated evidence is not recent.
func (e Evidence) IsRecent(now time.Time) bool {
	if e.PublishedAt == nil {
		return false
	}
	return now.Sub(*e.PublishedAt) <= 365*24*time.Hour
}
