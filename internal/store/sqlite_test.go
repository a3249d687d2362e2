package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity-group/claimcheck/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func testClaim(id, text string) model.Claim {
	return model.Claim{
		ID:                   id,
		RawText:              text,
		CanonicalText:        model.Canonicalize(text),
		Language:             "en",
		Signature:            model.ComputeSignature(text),
		ExtractionConfidence: 0.8,
		Type:                 model.ClaimTypeFactual,
		CreatedAt:            time.Now().UTC().Truncate(time.Second),
	}
}

func TestSQLiteClaims(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	t.Run("save and get roundtrip", func(t *testing.T) {
		claim := testClaim("c1", "The river flooded in April.")
		require.NoError(t, s.SaveClaim(ctx, claim))

		got, err := s.GetClaim(ctx, "c1")
		require.NoError(t, err)
		assert.Equal(t, claim.RawText, got.RawText)
		assert.Equal(t, claim.Signature, got.Signature)
		assert.Equal(t, model.ClaimTypeFactual, got.Type)
	})

	t.Run("get missing claim errors", func(t *testing.T) {
		_, err := s.GetClaim(ctx, "nope")
		assert.Error(t, err)
	})

	t.Run("lookup by signature", func(t *testing.T) {
		claim := testClaim("c3", "The tunnel closed for repairs.")
		require.NoError(t, s.SaveClaim(ctx, claim))

		got, err := s.GetClaimBySignature(ctx, claim.Signature)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c3", got.ID)
	})

	t.Run("missing signature returns nil nil", func(t *testing.T) {
		got, err := s.GetClaimBySignature(ctx, "no-such-signature")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("signature lookup prefers the newest claim", func(t *testing.T) {
		older := testClaim("c4", "The depot reopened on Monday.")
		older.CreatedAt = time.Now().UTC().Add(-time.Hour).Truncate(time.Second)
		require.NoError(t, s.SaveClaim(ctx, older))

		newer := testClaim("c5", "The depot reopened on Monday.")
		require.NoError(t, s.SaveClaim(ctx, newer))

		got, err := s.GetClaimBySignature(ctx, newer.Signature)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c5", got.ID)
	})

	t.Run("list with filters", func(t *testing.T) {
		es := testClaim("c2", "El río se desbordó.")
		es.Language = "es"
		require.NoError(t, s.SaveClaim(ctx, es))

		all, err := s.ListClaims(ctx, ClaimFilter{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(all), 2)

		spanish, err := s.ListClaims(ctx, ClaimFilter{Language: "es"})
		require.NoError(t, err)
		require.Len(t, spanish, 1)
		assert.Equal(t, "c2", spanish[0].ID)

		limited, err := s.ListClaims(ctx, ClaimFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, limited, 1)
	})
}

func TestSQLiteEvidence(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	claim := testClaim("c1", "Exports rose in the second quarter.")
	require.NoError(t, s.SaveClaim(ctx, claim))

	published := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	evidence := []model.Evidence{
		{
			ID:          "e1",
			ClaimID:     "c1",
			SourceName:  "Example Wire",
			SourceURL:   "https://wire.example/a",
			Publisher:   model.Publisher{ID: "wire", Name: "Example Wire", Weight: 0.8},
			Title:       "Exports up",
			Stance:      model.StanceSupports,
			Confidence:  70,
			Type:        model.EvidenceTypeNews,
			Language:    "en",
			PublishedAt: &published,
		},
		{
			ID:         "e2",
			ClaimID:    "c1",
			SourceName: "Checker",
			Stance:     model.StanceNeutral,
			Type:       model.EvidenceTypeClaimReview,
		},
	}
	require.NoError(t, s.SaveEvidence(ctx, evidence))

	got, err := s.GetEvidence(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Example Wire", got[0].SourceName)
	assert.Equal(t, model.StanceSupports, got[0].Stance)
	require.NotNil(t, got[0].PublishedAt)
	assert.True(t, published.Equal(*got[0].PublishedAt))
}

func TestSQLiteVerdicts(t *testing.T) {
	t.Parallel()
	s := newTestStore(t)
	ctx := context.Background()

	claim := testClaim("c1", "The bridge opened in 2024.")
	require.NoError(t, s.SaveClaim(ctx, claim))

	t.Run("missing signature returns nil nil", func(t *testing.T) {
		v, err := s.GetVerdictBySignature(ctx, "no-such-signature")
		require.NoError(t, err)
		assert.Nil(t, v)
	})

	t.Run("save and lookup by signature", func(t *testing.T) {
		v := model.Verdict{
			Label:       model.VerdictTrue,
			Confidence:  85,
			Rationale:   []string{"Two high-credibility sources support the claim."},
			GeneratedBy: model.VerdictMethodRules,
			GeneratedAt: time.Now().UTC(),
		}
		require.NoError(t, s.SaveVerdict(ctx, claim.ID, claim.Signature, v))

		got, err := s.GetVerdictBySignature(ctx, claim.Signature)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.VerdictTrue, got.Label)
		assert.InDelta(t, 85, got.Confidence, 0.001)
	})

	t.Run("latest verdict wins", func(t *testing.T) {
		newer := model.Verdict{
			Label:       model.VerdictMisleading,
			Confidence:  65,
			GeneratedBy: model.VerdictMethodRules,
			GeneratedAt: time.Now().UTC().Add(time.Hour),
		}
		require.NoError(t, s.SaveVerdict(ctx, claim.ID, claim.Signature, newer))

		got, err := s.GetVerdictBySignature(ctx, claim.Signature)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.VerdictMisleading, got.Label)
	})
}
