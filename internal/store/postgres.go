package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/verity-group/claimcheck/internal/db"
	"github.com/verity-group/claimcheck/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// preparedStatements lists queries to prepare on each new connection for
// faster execution of the hot-path store operations.
var preparedStatements = map[string]string{
	"insert_claim":             `INSERT INTO claims (id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
	"get_claim":                `SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at FROM claims WHERE id = $1`,
	"get_claim_by_signature":   `SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at FROM claims WHERE signature = $1 ORDER BY created_at DESC LIMIT 1`,
	"get_evidence":             `SELECT data FROM evidence WHERE claim_id = $1 ORDER BY retrieved_at`,
	"insert_verdict":           `INSERT INTO verdicts (id, claim_id, signature, verdict, generated_at) VALUES ($1, $2, $3, $4, $5)`,
	"get_verdict_by_signature": `SELECT verdict FROM verdicts WHERE signature = $1 ORDER BY generated_at DESC LIMIT 1`,
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range preparedStatements {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// NewPostgresFromPool wraps an existing pool. Used by tests with pgxmock.
func NewPostgresFromPool(pool db.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, closeFn: func() {}}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS claims (
	id                    TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	signature             TEXT NOT NULL,
	raw_text              TEXT NOT NULL,
	canonical_text        TEXT NOT NULL,
	language              TEXT NOT NULL DEFAULT 'en',
	claim_type            TEXT NOT NULL,
	extraction_confidence DOUBLE PRECISION NOT NULL,
	created_at            TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS evidence (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	claim_id     TEXT NOT NULL REFERENCES claims(id),
	data         JSONB NOT NULL,
	retrieved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS verdicts (
	id           TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	claim_id     TEXT NOT NULL REFERENCES claims(id),
	signature    TEXT NOT NULL,
	verdict      JSONB NOT NULL,
	generated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_claims_signature ON claims(signature);
CREATE INDEX IF NOT EXISTS idx_claims_language ON claims(language);
CREATE INDEX IF NOT EXISTS idx_evidence_claim_id ON evidence(claim_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_signature ON verdicts(signature);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.closeFn()
	return nil
}

func (s *PostgresStore) SaveClaim(ctx context.Context, claim model.Claim) error {
	createdAt := claim.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, preparedStatements["insert_claim"],
		claim.ID, claim.Signature, claim.RawText, claim.CanonicalText,
		claim.Language, string(claim.Type), claim.ExtractionConfidence, createdAt,
	)
	return eris.Wrap(err, "postgres: insert claim")
}

func (s *PostgresStore) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	row := s.pool.QueryRow(ctx, preparedStatements["get_claim"], claimID)

	var c model.Claim
	var claimType string
	err := row.Scan(&c.ID, &c.Signature, &c.RawText, &c.CanonicalText,
		&c.Language, &claimType, &c.ExtractionConfidence, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errClaimNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan claim")
	}
	c.Type = model.ClaimType(claimType)
	return &c, nil
}

func (s *PostgresStore) GetClaimBySignature(ctx context.Context, signature string) (*model.Claim, error) {
	row := s.pool.QueryRow(ctx, preparedStatements["get_claim_by_signature"], signature)

	var c model.Claim
	var claimType string
	err := row.Scan(&c.ID, &c.Signature, &c.RawText, &c.CanonicalText,
		&c.Language, &claimType, &c.ExtractionConfidence, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan claim")
	}
	c.Type = model.ClaimType(claimType)
	return &c, nil
}

func (s *PostgresStore) ListClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error) {
	query := `SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at FROM claims WHERE 1=1`
	var args []any

	if filter.Language != "" {
		args = append(args, filter.Language)
		query += fmt.Sprintf(` AND language = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND claim_type = $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list claims")
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		var c model.Claim
		var claimType string
		if err := rows.Scan(&c.ID, &c.Signature, &c.RawText, &c.CanonicalText,
			&c.Language, &claimType, &c.ExtractionConfidence, &c.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan claim")
		}
		c.Type = model.ClaimType(claimType)
		claims = append(claims, c)
	}
	return claims, eris.Wrap(rows.Err(), "postgres: list claims rows")
}

// SaveEvidence bulk-inserts evidence via the COPY protocol.
func (s *PostgresStore) SaveEvidence(ctx context.Context, evidence []model.Evidence) error {
	if len(evidence) == 0 {
		return nil
	}
	now := time.Now().UTC()
	rows := make([][]any, 0, len(evidence))
	for _, e := range evidence {
		data, err := json.Marshal(e)
		if err != nil {
			return eris.Wrap(err, "postgres: marshal evidence")
		}
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		rows = append(rows, []any{id, e.ClaimID, data, now})
	}
	_, err := db.CopyFrom(ctx, s.pool, "evidence", []string{"id", "claim_id", "data", "retrieved_at"}, rows)
	return eris.Wrap(err, "postgres: insert evidence")
}

func (s *PostgresStore) GetEvidence(ctx context.Context, claimID string) ([]model.Evidence, error) {
	rows, err := s.pool.Query(ctx, preparedStatements["get_evidence"], claimID)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get evidence")
	}
	defer rows.Close()

	var evidence []model.Evidence
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evidence")
		}
		var e model.Evidence
		if err := json.Unmarshal(data, &e); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal evidence")
		}
		evidence = append(evidence, e)
	}
	return evidence, eris.Wrap(rows.Err(), "postgres: evidence rows")
}

func (s *PostgresStore) SaveVerdict(ctx context.Context, claimID, signature string, verdict model.Verdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal verdict")
	}
	_, err = s.pool.Exec(ctx, preparedStatements["insert_verdict"],
		uuid.New().String(), claimID, signature, data, verdict.GeneratedAt.UTC(),
	)
	return eris.Wrap(err, "postgres: insert verdict")
}

func (s *PostgresStore) GetVerdictBySignature(ctx context.Context, signature string) (*model.Verdict, error) {
	row := s.pool.QueryRow(ctx, preparedStatements["get_verdict_by_signature"], signature)

	var data []byte
	err := row.Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get verdict by signature")
	}
	var v model.Verdict
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal verdict")
	}
	return &v, nil
}
