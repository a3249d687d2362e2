package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/verity-group/claimcheck/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS claims (
	id                    TEXT PRIMARY KEY,
	signature             TEXT NOT NULL,
	raw_text              TEXT NOT NULL,
	canonical_text        TEXT NOT NULL,
	language              TEXT NOT NULL DEFAULT 'en',
	claim_type            TEXT NOT NULL,
	extraction_confidence REAL NOT NULL,
	created_at            DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS evidence (
	id           TEXT PRIMARY KEY,
	claim_id     TEXT NOT NULL REFERENCES claims(id),
	data         TEXT NOT NULL,
	retrieved_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS verdicts (
	id           TEXT PRIMARY KEY,
	claim_id     TEXT NOT NULL REFERENCES claims(id),
	signature    TEXT NOT NULL,
	verdict      TEXT NOT NULL,
	generated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_claims_signature ON claims(signature);
CREATE INDEX IF NOT EXISTS idx_claims_language ON claims(language);
CREATE INDEX IF NOT EXISTS idx_evidence_claim_id ON evidence(claim_id);
CREATE INDEX IF NOT EXISTS idx_verdicts_signature ON verdicts(signature);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveClaim(ctx context.Context, claim model.Claim) error {
	createdAt := claim.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO claims (id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		claim.ID, claim.Signature, claim.RawText, claim.CanonicalText,
		claim.Language, string(claim.Type), claim.ExtractionConfidence, createdAt,
	)
	return eris.Wrap(err, "sqlite: insert claim")
}

func (s *SQLiteStore) GetClaim(ctx context.Context, claimID string) (*model.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at
		 FROM claims WHERE id = ?`,
		claimID,
	)
	return scanClaim(row)
}

func (s *SQLiteStore) GetClaimBySignature(ctx context.Context, signature string) (*model.Claim, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at
		 FROM claims WHERE signature = ? ORDER BY created_at DESC LIMIT 1`,
		signature,
	)
	c, err := scanClaim(row)
	if err != nil && eris.Is(err, errClaimNotFound) {
		return nil, nil
	}
	return c, err
}

func (s *SQLiteStore) ListClaims(ctx context.Context, filter ClaimFilter) ([]model.Claim, error) {
	query := `SELECT id, signature, raw_text, canonical_text, language, claim_type, extraction_confidence, created_at FROM claims WHERE 1=1`
	var args []any

	if filter.Language != "" {
		query += ` AND language = ?`
		args = append(args, filter.Language)
	}
	if filter.Type != "" {
		query += ` AND claim_type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list claims")
	}
	defer rows.Close()

	var claims []model.Claim
	for rows.Next() {
		c, err := scanClaim(rows)
		if err != nil {
			return nil, err
		}
		claims = append(claims, *c)
	}
	return claims, eris.Wrap(rows.Err(), "sqlite: list claims rows")
}

func (s *SQLiteStore) SaveEvidence(ctx context.Context, evidence []model.Evidence) error {
	if len(evidence) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for _, e := range evidence {
		data, err := json.Marshal(e)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal evidence")
		}
		id := e.ID
		if id == "" {
			id = uuid.New().String()
		}
		if _, err := s.db.ExecContext(ctx,
			`INSERT INTO evidence (id, claim_id, data, retrieved_at) VALUES (?, ?, ?, ?)`,
			id, e.ClaimID, string(data), now,
		); err != nil {
			return eris.Wrap(err, "sqlite: insert evidence")
		}
	}
	return nil
}

func (s *SQLiteStore) GetEvidence(ctx context.Context, claimID string) ([]model.Evidence, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT data FROM evidence WHERE claim_id = ? ORDER BY retrieved_at`,
		claimID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get evidence")
	}
	defer rows.Close()

	var evidence []model.Evidence
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evidence")
		}
		var e model.Evidence
		if err := json.Unmarshal([]byte(data), &e); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal evidence")
		}
		evidence = append(evidence, e)
	}
	return evidence, eris.Wrap(rows.Err(), "sqlite: evidence rows")
}

func (s *SQLiteStore) SaveVerdict(ctx context.Context, claimID, signature string, verdict model.Verdict) error {
	data, err := json.Marshal(verdict)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal verdict")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO verdicts (id, claim_id, signature, verdict, generated_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), claimID, signature, string(data), verdict.GeneratedAt.UTC(),
	)
	return eris.Wrap(err, "sqlite: insert verdict")
}

func (s *SQLiteStore) GetVerdictBySignature(ctx context.Context, signature string) (*model.Verdict, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT verdict FROM verdicts WHERE signature = ? ORDER BY generated_at DESC LIMIT 1`,
		signature,
	)

	var data string
	err := row.Scan(&data)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get verdict by signature")
	}
	var v model.Verdict
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal verdict")
	}
	return &v, nil
}

// helpers

type scannable interface {
	Scan(dest ...any) error
}

func scanClaim(row scannable) (*model.Claim, error) {
	var c model.Claim
	var claimType string

	err := row.Scan(&c.ID, &c.Signature, &c.RawText, &c.CanonicalText,
		&c.Language, &claimType, &c.ExtractionConfidence, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errClaimNotFound
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan claim")
	}
	c.Type = model.ClaimType(claimType)
	return &c, nil
}
