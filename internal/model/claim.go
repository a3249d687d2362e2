package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/OneOfOne/xxhash"
)

// ClaimType classifies the kind of assertion a claim makes.
type ClaimType string

const (
	ClaimTypeFactual    ClaimType = "factual"
	ClaimTypeOpinion    ClaimType = "opinion"
	ClaimTypePrediction ClaimType = "prediction"
)

// Claim is a single checkable assertion extracted from source text.
// Claims are immutable after creation; the signature is the identity
// used for deduplication and caching.
type Claim struct {
	ID                   string    `json:"id"`
	RawText              string    `json:"raw_text"`
	CanonicalText        string    `json:"canonical_text"`
	Language             string    `json:"language"`
	Signature            string    `json:"claim_signature"`
	ExtractionConfidence float64   `json:"extraction_confidence"`
	Type                 ClaimType `json:"claim_type"`
	CreatedAt            time.Time `json:"created_at"`
}

// Canonicalize lower-cases and whitespace-normalizes claim text. Two claims
// with the same canonical form are the same claim.
func Canonicalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// ComputeSignature returns the content hash of the canonical form of text.
func ComputeSignature(text string) string {
	return fmt.Sprintf("%016x", xxhash.ChecksumString64(Canonicalize(text)))
}
