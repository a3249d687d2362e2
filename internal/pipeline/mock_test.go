package pipeline

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/verity-group/claimcheck/internal/model"
	"github.com/verity-group/claimcheck/internal/retrieval"
	"github.com/verity-group/claimcheck/internal/store"
)

// --- Store mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) SaveClaim(ctx context.Context, claim model.Claim) error {
	return m.Called(ctx, claim).Error(0)
}

func (m *mockStore) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Claim), args.Error(1)
}

func (m *mockStore) GetClaimBySignature(ctx context.Context, signature string) (*model.Claim, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Claim), args.Error(1)
}

func (m *mockStore) ListClaims(ctx context.Context, filter store.ClaimFilter) ([]model.Claim, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Claim), args.Error(1)
}

func (m *mockStore) SaveEvidence(ctx context.Context, evidence []model.Evidence) error {
	return m.Called(ctx, evidence).Error(0)
}

func (m *mockStore) GetEvidence(ctx context.Context, claimID string) ([]model.Evidence, error) {
	args := m.Called(ctx, claimID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Evidence), args.Error(1)
}

func (m *mockStore) SaveVerdict(ctx context.Context, claimID, signature string, verdict model.Verdict) error {
	return m.Called(ctx, claimID, signature, verdict).Error(0)
}

func (m *mockStore) GetVerdictBySignature(ctx context.Context, signature string) (*model.Verdict, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Verdict), args.Error(1)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *mockStore) Close() error {
	return m.Called().Error(0)
}

// --- Retriever mock ---

type mockRetriever struct {
	mock.Mock
}

func (m *mockRetriever) Retrieve(ctx context.Context, claimText, language string, tier model.Tier) (*retrieval.Result, error) {
	args := m.Called(ctx, claimText, language, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*retrieval.Result), args.Error(1)
}
