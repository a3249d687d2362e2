package model

// ClaimResult is the caller-facing outcome for a single claim.
type ClaimResult struct {
	ClaimID          string     `json:"claim_id"`
	ClaimText        string     `json:"claim_text"`
	Verdict          Verdict    `json:"verdict"`
	Evidence         []Evidence `json:"evidence"`
	ProcessingTimeMS int64      `json:"processing_time_ms"`
	Cached           bool       `json:"cached"`
}

// BatchResult wraps the results for every claim extracted from one input text.
// A batch of N claims always yields N results; per-claim failures are
// represented as degraded unverified results, never as missing entries.
type BatchResult struct {
	Results          []ClaimResult `json:"results"`
	ProcessingTimeMS int64         `json:"processing_time_ms"`
	ClaimsProcessed  int           `json:"claims_processed"`
	Language         string        `json:"language"`
}
