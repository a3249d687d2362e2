package model

import (
	"sort"
	"time"
)

// VerdictLabel is the final classified outcome for a claim.
type VerdictLabel string

const (
	VerdictTrue         VerdictLabel = "true"
	VerdictFalse        VerdictLabel = "false"
	VerdictMisleading   VerdictLabel = "misleading"
	VerdictSatire       VerdictLabel = "satire"
	VerdictOutOfContext VerdictLabel = "out_of_context"
	VerdictUnverified   VerdictLabel = "unverified"
)

// AllVerdictLabels returns every valid verdict label.
func AllVerdictLabels() []VerdictLabel {
	return []VerdictLabel{
		VerdictTrue, VerdictFalse, VerdictMisleading,
		VerdictSatire, VerdictOutOfContext, VerdictUnverified,
	}
}

// VerdictMethod identifies which decision path produced a verdict.
type VerdictMethod string

const (
	VerdictMethodRules     VerdictMethod = "rules"
	VerdictMethodReasoning VerdictMethod = "reasoning"
)

// EvidenceSummary tallies an evidence set by stance. Total is always
// Supporting+Refuting+Neutral.
type EvidenceSummary struct {
	Supporting             int `json:"supporting"`
	Refuting               int `json:"refuting"`
	Neutral                int `json:"neutral"`
	Total                  int `json:"total"`
	HighCredibilitySources int `json:"high_credibility_sources"`
	RecentSources          int `json:"recent_sources"`
}

// Summarize tallies evidence by stance, credibility, and recency.
func Summarize(evidence []Evidence, now time.Time) EvidenceSummary {
	var s EvidenceSummary
	for _, e := range evidence {
		switch e.Stance {
		case StanceSupports:
			s.Supporting++
		case StanceRefutes:
			s.Refuting++
		default:
			s.Neutral++
		}
		if e.IsHighCredibility() {
			s.HighCredibilitySources++
		}
		if e.IsRecent(now) {
			s.RecentSources++
		}
	}
	s.Total = s.Supporting + s.Refuting + s.Neutral
	return s
}

// ConfidenceFactor is one named contribution to a verdict's confidence,
// produced by uncertainty detection for explainability.
type ConfidenceFactor struct {
	Name        string  `json:"factor_name"`
	Score       float64 `json:"score"`  // 0-1
	Weight      float64 `json:"weight"` // relative weight in aggregation
	Description string  `json:"description"`
}

// Verdict is the classified, confidence-scored, explainable outcome for a
// claim. Produced once per claim signature; immutable.
type Verdict struct {
	Label         VerdictLabel    `json:"verdict"`
	Confidence    float64         `json:"confidence"` // 0-100
	Rationale     []string        `json:"rationale"`
	Summary       EvidenceSummary `json:"evidence_summary"`
	FreshnessDate time.Time       `json:"freshness_date"`
	KeyEvidence   []Evidence      `json:"key_evidence,omitempty"`
	Methodology   []string        `json:"methodology,omitempty"`
	Limitations   []string        `json:"limitations,omitempty"`
	GeneratedBy   VerdictMethod   `json:"generated_by"`
	GeneratedAt   time.Time       `json:"generated_at"`
}

// maxKeyEvidence caps the ranked key-evidence list attached to a verdict.
const maxKeyEvidence = 5

// CompositeScore ranks evidence for key-evidence selection:
// item confidence 40%, publisher credibility 40%, relevance 20%.
func CompositeScore(e Evidence) float64 {
	return e.Confidence*0.4 + e.Publisher.Weight*100*0.4 + e.RelevanceScore*100*0.2
}

// RankKeyEvidence returns the top evidence items by composite score,
// descending, capped at five. The input slice is not modified.
func RankKeyEvidence(evidence []Evidence) []Evidence {
	ranked := make([]Evidence, len(evidence))
	copy(ranked, evidence)
	sort.SliceStable(ranked, func(i, j int) bool {
		return CompositeScore(ranked[i]) > CompositeScore(ranked[j])
	})
	if len(ranked) > maxKeyEvidence {
		ranked = ranked[:maxKeyEvidence]
	}
	return ranked
}
