package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verity-group/claimcheck/internal/model"
)

func newMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresFromPool(mock), mock
}

func TestPostgresSaveClaim(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	claim := testClaim("c1", "The harbor reopened last week.")
	mock.ExpectExec(preparedStatements["insert_claim"]).
		WithArgs(claim.ID, claim.Signature, claim.RawText, claim.CanonicalText,
			claim.Language, string(claim.Type), claim.ExtractionConfidence, claim.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.SaveClaim(context.Background(), claim))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetClaim(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "signature", "raw_text", "canonical_text", "language", "claim_type", "extraction_confidence", "created_at"}).
		AddRow("c1", "abc123", "Raw text.", "raw text.", "en", "factual", 0.8, now)
	mock.ExpectQuery(preparedStatements["get_claim"]).WithArgs("c1").WillReturnRows(rows)

	got, err := s.GetClaim(context.Background(), "c1")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimTypeFactual, got.Type)
	assert.Equal(t, "abc123", got.Signature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetClaimMissing(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectQuery(preparedStatements["get_claim"]).WithArgs("nope").WillReturnError(pgx.ErrNoRows)

	_, err := s.GetClaim(context.Background(), "nope")
	assert.Error(t, err)
}

func TestPostgresGetClaimBySignature(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		now := time.Now().UTC()
		rows := pgxmock.NewRows([]string{"id", "signature", "raw_text", "canonical_text", "language", "claim_type", "extraction_confidence", "created_at"}).
			AddRow("c1", "sig-1", "Raw text.", "raw text.", "en", "factual", 0.8, now)
		mock.ExpectQuery(preparedStatements["get_claim_by_signature"]).WithArgs("sig-1").WillReturnRows(rows)

		got, err := s.GetClaimBySignature(context.Background(), "sig-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "c1", got.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing returns nil nil", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		mock.ExpectQuery(preparedStatements["get_claim_by_signature"]).WithArgs("sig-2").WillReturnError(pgx.ErrNoRows)

		got, err := s.GetClaimBySignature(context.Background(), "sig-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestPostgresSaveEvidence(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	mock.ExpectCopyFrom(pgx.Identifier{"evidence"}, []string{"id", "claim_id", "data", "retrieved_at"}).
		WillReturnResult(2)

	evidence := []model.Evidence{
		{ID: "e1", ClaimID: "c1", SourceName: "a"},
		{ID: "e2", ClaimID: "c1", SourceName: "b"},
	}
	require.NoError(t, s.SaveEvidence(context.Background(), evidence))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresSaveEvidenceEmpty(t *testing.T) {
	t.Parallel()
	s, mock := newMockStore(t)

	require.NoError(t, s.SaveEvidence(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetVerdictBySignature(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		v := model.Verdict{Label: model.VerdictFalse, Confidence: 90, GeneratedBy: model.VerdictMethodRules}
		data, err := json.Marshal(v)
		require.NoError(t, err)

		rows := pgxmock.NewRows([]string{"verdict"}).AddRow(data)
		mock.ExpectQuery(preparedStatements["get_verdict_by_signature"]).WithArgs("sig-1").WillReturnRows(rows)

		got, err := s.GetVerdictBySignature(context.Background(), "sig-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, model.VerdictFalse, got.Label)
	})

	t.Run("missing returns nil nil", func(t *testing.T) {
		t.Parallel()
		s, mock := newMockStore(t)

		mock.ExpectQuery(preparedStatements["get_verdict_by_signature"]).WithArgs("sig-2").WillReturnError(pgx.ErrNoRows)

		got, err := s.GetVerdictBySignature(context.Background(), "sig-2")
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}
