package store

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/verity-group/claimcheck/internal/model"
)

// errClaimNotFound distinguishes an absent claim row from a query failure.
var errClaimNotFound = eris.New("claim not found")

// ClaimFilter specifies criteria for listing stored claims.
type ClaimFilter struct {
	Language string          `json:"language,omitempty"`
	Type     model.ClaimType `json:"claim_type,omitempty"`
	Limit    int             `json:"limit,omitempty"`
	Offset   int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the verification pipeline.
type Store interface {
	// Claims. GetClaimBySignature returns the most recent claim recorded
	// for the signature, or (nil, nil) when none exists.
	SaveClaim(ctx context.Context, claim model.Claim) error
	GetClaim(ctx context.Context, claimID string) (*model.Claim, error)
	GetClaimBySignature(ctx context.Context, signature string) (*model.Claim, error)
	ListClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error)

	// Evidence
	SaveEvidence(ctx context.Context, evidence []model.Evidence) error
	GetEvidence(ctx context.Context, claimID string) ([]model.Evidence, error)

	// Verdicts. GetVerdictBySignature returns (nil, nil) when no verdict
	// has been recorded for the signature.
	SaveVerdict(ctx context.Context, claimID, signature string, verdict model.Verdict) error
	GetVerdictBySignature(ctx context.Context, signature string) (*model.Verdict, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
