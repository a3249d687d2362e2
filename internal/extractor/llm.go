package extractor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/pkg/anthropic"
)

const extractionSystemPrompt = `You extract verifiable claims from text.

Respond with ONLY a JSON object in this exact shape:
{
  "claims": [
    {"text": "the claim as a single sentence", "confidence": 0.0-1.0, "type": "factual|opinion|prediction"}
  ]
}

Extract at most 5 claims in the order they appear. A claim must be checkable against external sources. Pure opinions and predictions are still claims, typed accordingly.`

type llmClaim struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Type       string  `json:"type"`
}

type llmExtractionResponse struct {
	Claims []llmClaim `json:"claims"`
}

// LLMExtractor asks a language model for claims and falls back to the rule
// extractor whenever the model is unavailable or returns garbage. The result
// shape is identical on both paths.
type LLMExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	rules     *RuleExtractor
	timeout   time.Duration
}

// NewLLMExtractor creates a model-assisted extractor backed by rules.
func NewLLMExtractor(client anthropic.Client, modelName string, maxTokens int64, rules *RuleExtractor) *LLMExtractor {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &LLMExtractor{
		client:    client,
		model:     modelName,
		maxTokens: maxTokens,
		rules:     rules,
		timeout:   20 * time.Second,
	}
}

func (x *LLMExtractor) Extract(text, language string) Result {
	start := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), x.timeout)
	defer cancel()

	claims, err := x.extract(ctx, text, language)
	if err != nil || len(claims) == 0 {
		if err != nil {
			zap.L().Warn("extractor: model extraction failed, using rules", zap.Error(err))
		}
		return x.rules.Extract(text, language)
	}

	if n := x.rules.maxClaims; len(claims) > n {
		claims = claims[:n]
	}

	return Result{
		Claims:         claims,
		ProcessingTime: time.Since(start),
		Method:         "llm",
	}
}

func (x *LLMExtractor) extract(ctx context.Context, text, language string) ([]Candidate, error) {
	prompt := fmt.Sprintf("Language: %s\n\nText:\n%s", language, text)
	resp, err := x.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     x.model,
		MaxTokens: x.maxTokens,
		System:    extractionSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, err
	}

	raw := anthropic.ExtractText(resp)
	var parsed llmExtractionResponse
	if err := json.Unmarshal([]byte(anthropic.CleanJSON(raw)), &parsed); err != nil {
		return nil, err
	}

	var claims []Candidate
	for _, c := range parsed.Claims {
		if strings.TrimSpace(c.Text) == "" {
			continue
		}
		claimType, ok := parseClaimType(c.Type)
		if !ok {
			claimType = model.ClaimTypeFactual
		}
		conf := c.Confidence
		if conf < minConfidence {
			conf = minConfidence
		}
		if conf > maxConfidence {
			conf = maxConfidence
		}
		claims = append(claims, Candidate{Text: strings.TrimSpace(c.Text), Confidence: conf, Type: claimType})
	}

	if len(claims) > 0 {
		resp.Usage.LogCost(x.model, "claim_extraction")
	}
	return claims, nil
}

func parseClaimType(s string) (model.ClaimType, bool) {
	switch model.ClaimType(strings.ToLower(strings.TrimSpace(s))) {
	case model.ClaimTypeFactual:
		return model.ClaimTypeFactual, true
	case model.ClaimTypeOpinion:
		return model.ClaimTypeOpinion, true
	case model.ClaimTypePrediction:
		return model.ClaimTypePrediction, true
	}
	return "", false
}
