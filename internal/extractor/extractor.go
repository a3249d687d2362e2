// Package extractor turns raw text into ranked candidate claims.
package extractor

import (
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/verity-group/claimcheck/internal/model"
)

// Candidate is one extracted claim before it is assigned an identity.
type Candidate struct {
	Text       string          `json:"text"`
	Confidence float64         `json:"confidence"`
	Type       model.ClaimType `json:"type"`
}

// Result is the outcome of one extraction call.
type Result struct {
	Claims         []Candidate   `json:"claims"`
	ProcessingTime time.Duration `json:"processing_time"`
	Method         string        `json:"method"`
}

const (
	baseConfidence = 0.6
	minConfidence  = 0.3
	maxConfidence  = 0.95
	minSentenceLen = 15
	maxClaims      = 5
)

var (
	percentPattern = regexp.MustCompile(`\d+(\.\d+)?\s*(%|percent)`)
	numberPattern  = regexp.MustCompile(`\b\d[\d,.]*\b`)

	factualIndicators = []string{
		"according to", "reported", "announced", "confirmed", "stated",
		"revealed", "study shows", "research shows", "data shows",
		"statistics show", "found that", "said that", "declared",
	}
	opinionIndicators = []string{
		"i think", "i believe", "in my opinion", "should", "ought to",
		"seems", "appears", "arguably", "probably the best", "the worst",
	}
	predictionIndicators = []string{
		"will ", "going to", "expected to", "predicted", "forecast",
		"by 2030", "in the future", "is likely to", "projected to",
	}
)

// Extractor turns one text into candidate claims.
type Extractor interface {
	Extract(text, language string) Result
}

// RuleExtractor scores sentences against indicator families. It is pure and
// deterministic: the same text always yields the same candidates.
type RuleExtractor struct {
	maxClaims int
}

// NewRuleExtractor creates a rule-based extractor. maxClaims <= 0 uses the
// default cap of five.
func NewRuleExtractor(maxClaims int) *RuleExtractor {
	if maxClaims <= 0 {
		maxClaims = 5
	}
	return &RuleExtractor{maxClaims: maxClaims}
}

// Extract returns up to maxClaims candidate claims in source order. Given
// non-empty input it always returns at least one claim: if no sentence
// qualifies, the first sentence is returned at confidence 0.5, and if even
// that fails the truncated raw text is returned at confidence 0.4.
func (x *RuleExtractor) Extract(text, language string) Result {
	start := time.Now()

	claims := x.extract(text)
	method := "rules"

	if len(claims) == 0 {
		if first := firstSentence(text); first != "" {
			claims = []Candidate{{Text: first, Confidence: 0.5, Type: model.ClaimTypeFactual}}
			method = "fallback_first_sentence"
		} else if trimmed := strings.TrimSpace(text); trimmed != "" {
			claims = []Candidate{{Text: truncate(trimmed, 200), Confidence: 0.4, Type: model.ClaimTypeFactual}}
			method = "fallback_raw_text"
		}
	}

	if len(claims) > 0 && method != "rules" {
		zap.L().Debug("extractor: fell back",
			zap.String("method", method),
			zap.String("language", language),
		)
	}

	return Result{
		Claims:         claims,
		ProcessingTime: time.Since(start),
		Method:         method,
	}
}

func (x *RuleExtractor) extract(text string) []Candidate {
	var claims []Candidate
	for _, sentence := range splitSentences(text) {
		sentence = strings.TrimSpace(sentence)
		if len(sentence) <= minSentenceLen {
			continue
		}

		c, ok := scoreSentence(sentence)
		if !ok {
			continue
		}
		claims = append(claims, c)
		if len(claims) >= x.maxClaims {
			break
		}
	}
	return claims
}

// scoreSentence adjusts the base confidence by each matched indicator family
// and classifies the claim type. Type priority is factual > opinion >
// prediction; opinion and prediction indicators override the factual default
// when no factual indicator matched.
func scoreSentence(sentence string) (Candidate, bool) {
	lower := strings.ToLower(sentence)

	factual := matchesAny(lower, factualIndicators) || percentPattern.MatchString(lower)
	opinion := matchesAny(lower, opinionIndicators)
	prediction := matchesAny(lower, predictionIndicators)

	conf := baseConfidence
	claimType := model.ClaimTypeFactual

	if factual {
		conf += 0.2
	}
	if percentPattern.MatchString(lower) || numberPattern.MatchString(lower) {
		conf += 0.05
	}
	if opinion {
		conf -= 0.1
		if !factual {
			claimType = model.ClaimTypeOpinion
		}
	}
	if prediction {
		conf -= 0.05
		if !factual && !opinion {
			claimType = model.ClaimTypePrediction
		}
	}

	if conf > maxConfidence {
		conf = maxConfidence
	}
	if conf < minConfidence {
		conf = minConfidence
	}

	return Candidate{Text: sentence, Confidence: conf, Type: claimType}, true
}

func matchesAny(lower string, indicators []string) bool {
	for _, ind := range indicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}

// splitSentences breaks text on . ! ? boundaries followed by whitespace and
// an upper-case letter, or a newline.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)

		if r != '.' && r != '!' && r != '?' {
			continue
		}
		switch {
		case i+1 >= len(runes):
			sentences = append(sentences, current.String())
			current.Reset()
		case runes[i+1] == '\n':
			sentences = append(sentences, current.String())
			current.Reset()
		case i+2 < len(runes) && unicode.IsSpace(runes[i+1]) && unicode.IsUpper(runes[i+2]):
			sentences = append(sentences, current.String())
			current.Reset()
			i++ // skip the space
		}
	}

	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

// firstSentence returns the first complete sentence, where complete means
// terminated by . ! or ?. Unterminated text is handled by the raw fallback.
func firstSentence(text string) string {
	for _, s := range splitSentences(text) {
		trimmed := strings.TrimSpace(s)
		if trimmed == "" {
			continue
		}
		if strings.HasSuffix(trimmed, ".") || strings.HasSuffix(trimmed, "!") || strings.HasSuffix(trimmed, "?") {
			return trimmed
		}
	}
	return ""
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
