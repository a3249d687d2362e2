package verdict

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/pkg/anthropic"
)

const reasoningSystemPrompt = `You are a fact-checking analyst. Given a claim and a set of evidence items, produce a verdict.

Respond with ONLY a JSON object in this exact shape:
{
  "verdict": "true|false|misleading|satire|out_of_context|unverified",
  "confidence": 0-100,
  "rationale": ["short statements explaining the verdict"],
  "methodology": ["analysis steps taken"],
  "limitations": ["caveats about the evidence"]
}

Ground every rationale statement in the supplied evidence. If the evidence is insufficient or contradictory, say so and lean toward "unverified".`

type reasoningResponse struct {
	Verdict     string   `json:"verdict"`
	Confidence  float64  `json:"confidence"`
	Rationale   []string `json:"rationale"`
	Methodology []string `json:"methodology"`
	Limitations []string `json:"limitations"`
}

// ReasoningEngine produces verdicts with a language model, falling back to
// the rule cascade when the model is unavailable or returns garbage.
type ReasoningEngine struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

func NewReasoningEngine(client anthropic.Client, modelName string, maxTokens int64) *ReasoningEngine {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &ReasoningEngine{client: client, model: modelName, maxTokens: maxTokens}
}

// Analyze asks the model for a verdict on the claim. It returns an error for
// any transport, parse, or validation failure; callers fall back to the
// cascade in that case.
func (r *ReasoningEngine) Analyze(ctx context.Context, claim model.Claim, evidence []model.Evidence, now time.Time) (state, error) {
	if r.client == nil {
		return state{}, eris.New("verdict: reasoning client not configured")
	}

	prompt := buildReasoningPrompt(claim, evidence, now)
	resp, err := r.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     r.model,
		MaxTokens: r.maxTokens,
		System:    reasoningSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return state{}, eris.Wrap(err, "verdict: reasoning request")
	}

	text := anthropic.ExtractText(resp)
	if text == "" {
		return state{}, eris.New("verdict: empty reasoning response")
	}

	var parsed reasoningResponse
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(text)), &parsed); err != nil {
		return state{}, eris.Wrap(err, "verdict: parse reasoning response")
	}

	label, ok := parseVerdictLabel(parsed.Verdict)
	if !ok {
		return state{}, eris.Errorf("verdict: unknown label %q in reasoning response", parsed.Verdict)
	}
	if len(parsed.Rationale) == 0 {
		return state{}, eris.New("verdict: reasoning response missing rationale")
	}

	resp.Usage.LogCost(r.model, "verdict_reasoning")
	zap.L().Debug("reasoning verdict",
		zap.String("claim_id", claim.ID),
		zap.String("verdict", string(label)),
		zap.Float64("confidence", parsed.Confidence))

	return state{
		label:       label,
		confidence:  clamp(parsed.Confidence, 0, 100),
		rationale:   parsed.Rationale,
		methodology: append([]string{"model_reasoning"}, parsed.Methodology...),
		limitations: parsed.Limitations,
	}, nil
}

func parseVerdictLabel(s string) (model.VerdictLabel, bool) {
	candidate := model.VerdictLabel(strings.ToLower(strings.TrimSpace(s)))
	for _, label := range model.AllVerdictLabels() {
		if candidate == label {
			return label, true
		}
	}
	return "", false
}

func buildReasoningPrompt(claim model.Claim, evidence []model.Evidence, now time.Time) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Claim: %s\n", claim.RawText)
	if claim.Language != "" {
		fmt.Fprintf(&b, "Language: %s\n", claim.Language)
	}
	fmt.Fprintf(&b, "Date of analysis: %s\n\nEvidence (%d items):\n", now.Format("2006-01-02"), len(evidence))
	for i, e := range evidence {
		fmt.Fprintf(&b, "%d. [%s] %s (publisher: %s, weight %.2f, stance: %s)\n",
			i+1, e.Type, e.Title, e.Publisher.Name, e.Publisher.Weight, e.Stance)
		if e.FactCheckRating != "" {
			fmt.Fprintf(&b, "   rating: %s\n", e.FactCheckRating)
		}
		if e.Snippet != "" {
			fmt.Fprintf(&b, "   %s\n", truncate(e.Snippet, 300))
		}
		if e.PublishedAt != nil {
			fmt.Fprintf(&b, "   published: %s\n", e.PublishedAt.Format("2006-01-02"))
		}
	}
	return b.String()
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}
