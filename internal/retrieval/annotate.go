package retrieval

import (
	"strings"

	"github.com/verity-group/claimcheck/internal/model"
)

// Textual-rating buckets used to map professional fact-check ratings onto a
// stance relative to the reviewed claim. A rating of "false" means the claim
// is false, so the review refutes it.
var (
	refutingRatings = []string{
		"false", "pants on fire", "incorrect", "debunked", "fake",
		"fabricated", "wrong", "misattributed", "miscaptioned",
	}
	supportingRatings = []string{
		"true", "correct", "accurate", "verified", "confirmed",
	}
	mixedRatings = []string{
		"half", "partly", "partially", "mixture", "mixed", "mostly",
		"missing context", "misleading",
	}
)

// StanceFromRating maps a fact-check textual rating to a stance. Mixed and
// unrecognized ratings are neutral. "mostly true"/"mostly false" land in the
// mixed bucket before the plain true/false buckets can claim them.
func StanceFromRating(rating string) model.Stance {
	lower := strings.ToLower(rating)
	for _, m := range mixedRatings {
		if strings.Contains(lower, m) {
			return model.StanceNeutral
		}
	}
	for _, r := range refutingRatings {
		if strings.Contains(lower, r) {
			return model.StanceRefutes
		}
	}
	for _, s := range supportingRatings {
		if strings.Contains(lower, s) {
			return model.StanceSupports
		}
	}
	return model.StanceNeutral
}

var (
	refutingMarkers = []string{
		"no evidence", "denies", "denied", "debunk", "false claim",
		"not true", "refute", "disputes", "disproven", "contradicts",
		"baseless", "unfounded",
	}
	supportingMarkers = []string{
		"confirms", "confirmed", "verifies", "verified", "according to",
		"consistent with", "corroborat", "supports", "backed by",
		"shows that", "found that",
	}
)

// InferStance assigns a stance to free-text evidence (news articles,
// knowledge-base entries) from contradiction and confirmation markers in the
// title and snippet.
func InferStance(title, snippet string) model.Stance {
	text := strings.ToLower(title + " " + snippet)
	for _, m := range refutingMarkers {
		if strings.Contains(text, m) {
			return model.StanceRefutes
		}
	}
	for _, m := range supportingMarkers {
		if strings.Contains(text, m) {
			return model.StanceSupports
		}
	}
	return model.StanceNeutral
}

// RelevanceScore measures lexical overlap between a claim and an evidence
// text as the fraction of distinctive claim terms present in the evidence,
// in [0,1].
func RelevanceScore(claimText, evidenceText string) float64 {
	claimTerms := distinctiveTerms(claimText)
	if len(claimTerms) == 0 {
		return 0
	}
	evidenceLower := strings.ToLower(evidenceText)

	matched := 0
	for term := range claimTerms {
		if strings.Contains(evidenceLower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(claimTerms))
}

var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "in": {},
	"on": {}, "to": {}, "for": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"that": {}, "this": {}, "with": {}, "has": {}, "have": {}, "had": {},
	"by": {}, "at": {}, "it": {}, "its": {}, "from": {}, "as": {}, "be": {},
}

func distinctiveTerms(text string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, f := range strings.Fields(strings.ToLower(text)) {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) < 3 {
			continue
		}
		if _, stop := stopwords[f]; stop {
			continue
		}
		terms[f] = struct{}{}
	}
	return terms
}

// CredibilityIndicators collects markers of source quality present on an
// evidence item. The verdict generator uses indicator density as a quality
// factor.
func CredibilityIndicators(e model.Evidence) []string {
	var indicators []string
	if e.FactCheckRating != "" {
		indicators = append(indicators, "professional_fact_check")
	}
	if e.Publisher.Weight >= model.HighCredibilityWeight {
		indicators = append(indicators, "high_credibility_publisher")
	}
	if e.PublishedAt != nil {
		indicators = append(indicators, "dated_publication")
	}
	if e.RelevanceScore >= 0.7 {
		indicators = append(indicators, "high_relevance")
	}
	switch e.Publisher.Type {
	case "government":
		indicators = append(indicators, "official_statistics")
	case "academic":
		indicators = append(indicators, "peer_reviewed_venue")
	}
	return indicators
}
