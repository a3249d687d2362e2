package verdict

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/verity-group/claimcheck/internal/model"
)

// state is the mutable outcome threaded through the rule cascade. Each stage
// returns the next state; terminal stages stop the cascade.
type state struct {
	label       model.VerdictLabel
	confidence  float64
	rationale   []string
	methodology []string
	limitations []string
	terminal    bool
}

// evidenceContext bundles the immutable inputs every stage sees.
type evidenceContext struct {
	claim    model.Claim
	evidence []model.Evidence
	now      time.Time
	opts     Options
}

type stage struct {
	name  string
	apply func(state, evidenceContext) state
}

// cascade is the ordered rule sequence of the deterministic decision
// procedure. Later stages may override earlier tentative verdicts; the order
// is load-bearing and mirrors the documented methodology.
var cascade = []stage{
	{"insufficient_evidence", insufficientEvidenceGate},
	{"satire_detection", satireDetection},
	{"high_credibility_analysis", highCredibilityAnalysis},
	{"weighted_consensus", weightedConsensus},
	{"out_of_context_detection", outOfContextDetection},
	{"quality_multiplier", qualityMultiplier},
	{"temporal_relevance", temporalRelevancePenalty},
	{"language_consistency", languageConsistencyPenalty},
	{"confidence_threshold", confidenceThresholdFilter},
}

// runCascade applies the rule stages in order, stopping at the first
// terminal stage. The result depends only on the inputs.
func runCascade(claim model.Claim, evidence []model.Evidence, now time.Time, opts Options) state {
	ec := evidenceContext{claim: claim, evidence: evidence, now: now, opts: opts}
	s := state{label: model.VerdictUnverified, confidence: 50}

	for _, st := range cascade {
		s = st.apply(s, ec)
		s.confidence = clamp(s.confidence, 0, 100)
		s.methodology = append(s.methodology, st.name)
		if s.terminal {
			break
		}
	}
	return s
}

// Stage 1: fewer than two evidence items cannot ground any verdict.
func insufficientEvidenceGate(s state, ec evidenceContext) state {
	if len(ec.evidence) >= 2 {
		return s
	}
	s.label = model.VerdictUnverified
	s.confidence = 30
	s.rationale = append(s.rationale,
		fmt.Sprintf("Insufficient evidence: %d source(s) found, at least 2 required for a verdict.", len(ec.evidence)))
	s.limitations = append(s.limitations, "Very limited source coverage for this claim.")
	s.terminal = true
	return s
}

var satireMarkers = []string{"satire", "satirical", "parody", "spoof", "humor site"}

// Stage 2: satire markers anywhere in the evidence settle the verdict.
func satireDetection(s state, ec evidenceContext) state {
	for _, e := range ec.evidence {
		text := strings.ToLower(e.Title + " " + e.Snippet + " " + e.Publisher.Name)
		rating := strings.ToLower(e.FactCheckRating)
		for _, marker := range satireMarkers {
			if strings.Contains(text, marker) || strings.Contains(rating, marker) {
				s.label = model.VerdictSatire
				s.confidence = 85
				s.rationale = append(s.rationale,
					fmt.Sprintf("Satirical origin indicated by %s (%q).", e.SourceName, e.Title))
				s.terminal = true
				return s
			}
		}
	}
	return s
}

// Stage 3: two or more high-credibility sources get the first say.
func highCredibilityAnalysis(s state, ec evidenceContext) state {
	var supporting, refuting, neutral int
	for _, e := range ec.evidence {
		if !e.IsHighCredibility() {
			continue
		}
		switch e.Stance {
		case model.StanceSupports:
			supporting++
		case model.StanceRefutes:
			refuting++
		default:
			neutral++
		}
	}

	total := supporting + refuting + neutral
	if total < 2 {
		return s
	}

	switch {
	case supporting > refuting+neutral:
		s.label = model.VerdictTrue
		s.confidence = minf(95, 75+5*float64(supporting))
		s.rationale = append(s.rationale,
			fmt.Sprintf("%d of %d high-credibility sources support the claim.", supporting, total))
	case refuting > supporting+neutral:
		s.label = model.VerdictFalse
		s.confidence = minf(95, 75+5*float64(refuting))
		s.rationale = append(s.rationale,
			fmt.Sprintf("%d of %d high-credibility sources refute the claim.", refuting, total))
	case supporting > 0 && refuting > 0 && neutral > 0:
		s.label = model.VerdictMisleading
		s.confidence = 70
		s.rationale = append(s.rationale,
			"High-credibility sources are split between supporting, refuting, and neutral positions.")
	}
	return s
}

// Stage 4: credibility-weighted consensus over the full evidence set. Runs
// only when the high-credibility analysis left the claim unverified and
// there are at least three items. The mixed-evidence override is applied
// last and wins over any plurality verdict set moments before: contested
// claims must never be reported as confidently true or false.
func weightedConsensus(s state, ec evidenceContext) state {
	if s.label != model.VerdictUnverified || len(ec.evidence) < 3 {
		return s
	}

	var supportW, refuteW, neutralW float64
	for _, e := range ec.evidence {
		w := 1.0
		if ec.opts.CredibilityWeighting {
			w = e.Publisher.Weight
		}
		switch e.Stance {
		case model.StanceSupports:
			supportW += w
		case model.StanceRefutes:
			refuteW += w
		default:
			neutralW += w
		}
	}

	totalW := supportW + refuteW + neutralW
	if totalW == 0 {
		return s
	}
	supportRatio := supportW / totalW
	refuteRatio := refuteW / totalW

	if ec.opts.RequireConsensus {
		switch {
		case supportRatio >= 0.7:
			s.label = model.VerdictTrue
			s.confidence = minf(95, 60+40*supportRatio)
			s.rationale = append(s.rationale,
				fmt.Sprintf("Weighted consensus: %.0f%% of source credibility supports the claim.", supportRatio*100))
		case refuteRatio >= 0.7:
			s.label = model.VerdictFalse
			s.confidence = minf(95, 60+40*refuteRatio)
			s.rationale = append(s.rationale,
				fmt.Sprintf("Weighted consensus: %.0f%% of source credibility refutes the claim.", refuteRatio*100))
		}
		return s
	}

	// Plurality mode: the heavier side wins at a lower ceiling.
	switch {
	case supportRatio > refuteRatio:
		s.label = model.VerdictTrue
		s.confidence = minf(90, 60+40*supportRatio)
		s.rationale = append(s.rationale,
			fmt.Sprintf("Plurality of weighted sources (%.0f%%) supports the claim.", supportRatio*100))
	case refuteRatio > supportRatio:
		s.label = model.VerdictFalse
		s.confidence = minf(90, 60+40*refuteRatio)
		s.rationale = append(s.rationale,
			fmt.Sprintf("Plurality of weighted sources (%.0f%%) refutes the claim.", refuteRatio*100))
	}

	// Mixed-evidence override, applied last deliberately.
	tied := supportW > 0 && supportW == refuteW
	if tied || (supportRatio >= 0.3 && refuteRatio >= 0.3) {
		s.label = model.VerdictMisleading
		s.confidence = 65
		s.rationale = append(s.rationale,
			fmt.Sprintf("Substantial evidence on both sides (%.0f%% supporting, %.0f%% refuting): the claim is misleading as stated.",
				supportRatio*100, refuteRatio*100))
	}
	return s
}

var (
	contextMarkers = []string{
		"context", "partial", "cherry-pick", "cherry pick", "selectively",
		"taken out of", "incomplete picture",
	}
	yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)
)

// Stage 5: context caveats or stale year references reclassify everything
// except a firm false verdict.
func outOfContextDetection(s state, ec evidenceContext) state {
	if s.label == model.VerdictFalse {
		return s
	}

	hit := ""
	for _, e := range ec.evidence {
		text := strings.ToLower(e.Title + " " + e.Snippet)
		for _, marker := range contextMarkers {
			if strings.Contains(text, marker) {
				hit = fmt.Sprintf("Evidence from %s raises context caveats.", e.SourceName)
				break
			}
		}
		if hit != "" {
			break
		}
	}

	if hit == "" {
		for _, match := range yearPattern.FindAllString(ec.claim.RawText, -1) {
			year, err := strconv.Atoi(match)
			if err != nil {
				continue
			}
			if ec.now.Year()-year > 5 {
				hit = fmt.Sprintf("The claim references %d, more than five years in the past.", year)
				break
			}
		}
	}

	if hit != "" {
		s.label = model.VerdictOutOfContext
		s.confidence = maxf(s.confidence, 70)
		s.rationale = append(s.rationale, hit)
	}
	return s
}

// Stage 6: evidence quality scales confidence by a bounded multiplier.
func qualityMultiplier(s state, ec evidenceContext) state {
	multiplier := 1.0

	var hasClaimReview, hasKB bool
	var indicatorTotal int
	var confidenceTotal float64
	for _, e := range ec.evidence {
		switch e.Type {
		case model.EvidenceTypeClaimReview:
			hasClaimReview = true
		case model.EvidenceTypeKB:
			hasKB = true
		}
		indicatorTotal += len(e.CredibilityIndicators)
		confidenceTotal += e.Confidence
	}

	n := float64(len(ec.evidence))
	if hasClaimReview {
		multiplier += 0.10
	}
	if hasKB {
		multiplier += 0.05
	}
	if n > 0 && float64(indicatorTotal)/n > 2 {
		multiplier += 0.05
	}
	if n > 0 {
		avg := confidenceTotal / n
		if avg > 80 {
			multiplier += 0.10
		} else if avg < 60 {
			multiplier -= 0.10
		}
	}

	multiplier = clamp(multiplier, 0.5, 1.3)
	s.confidence *= multiplier
	return s
}

// Stage 7: mostly-stale evidence costs confidence.
func temporalRelevancePenalty(s state, ec evidenceContext) state {
	var dated, stale int
	for _, e := range ec.evidence {
		if e.PublishedAt == nil {
			continue
		}
		dated++
		if !e.IsRecent(ec.now) {
			stale++
		}
	}

	if dated > 0 && float64(stale)/float64(dated) > 0.5 {
		s.confidence = maxf(s.confidence-15, 30)
		s.limitations = append(s.limitations,
			"Most dated evidence is over a year old; recent developments may not be reflected.")
	}
	return s
}

// Stage 8: evidence in the wrong language costs confidence.
func languageConsistencyPenalty(s state, ec evidenceContext) state {
	if len(ec.evidence) == 0 {
		return s
	}
	matching := 0
	for _, e := range ec.evidence {
		if model.LanguageMatches(e.Language, ec.claim.Language) {
			matching++
		}
	}
	if float64(matching)/float64(len(ec.evidence)) < 0.7 {
		s.confidence = maxf(s.confidence-10, 40)
		s.limitations = append(s.limitations,
			fmt.Sprintf("Only %d of %d evidence items are in the target language.", matching, len(ec.evidence)))
	}
	return s
}

// Stage 9: verdicts below the configured threshold are not reported.
func confidenceThresholdFilter(s state, ec evidenceContext) state {
	threshold := ec.opts.threshold()
	if s.label == model.VerdictUnverified || s.confidence >= threshold {
		s.terminal = true
		return s
	}

	s.rationale = append([]string{
		fmt.Sprintf("Confidence %.0f is below the %.0f threshold; the tentative %q verdict is reported as unverified.",
			s.confidence, threshold, s.label),
	}, s.rationale...)
	s.label = model.VerdictUnverified
	s.terminal = true
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
