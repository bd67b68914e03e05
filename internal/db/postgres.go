package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// schemaStatements create the document table; ids are text so imported records keep their encoding.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS candidates (
		id TEXT PRIMARY KEY,
		doc JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS candidates_form_token_idx ON candidates ((doc->>'formToken'))`,
	`CREATE INDEX IF NOT EXISTS candidates_eval_token_idx ON candidates ((doc->>'evalToken'))`,
	`CREATE INDEX IF NOT EXISTS candidates_created_at_idx ON candidates (created_at DESC)`,
}

// PostgresStore stores each candidate as a JSONB document
type PostgresStore struct {
	pool *pgxpool.Pool
}

// ConnectPostgres establishes a connection pool and creates the table if needed
func ConnectPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{pool: pool}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// EnsureSchema creates the candidates table and its indexes
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Insert stores c under a new UUID
func (s *PostgresStore) Insert(ctx context.Context, c *types.Candidate) (string, error) {
	id := uuid.New().String()
	doc := *c
	doc.ID = id

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal candidate: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO candidates (id, doc, created_at) VALUES ($1, $2, $3)`,
		id, payload, c.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("failed to insert candidate: %w", err)
	}
	return id, nil
}

// FindByID looks up the canonical UUID form of id
func (s *PostgresStore) FindByID(ctx context.Context, id string) (*types.Candidate, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	return s.queryOne(ctx, `SELECT id, doc FROM candidates WHERE id = $1`, parsed.String())
}

// FindByRawID tries the canonical form first, then id verbatim
func (s *PostgresStore) FindByRawID(ctx context.Context, id string) (*types.Candidate, error) {
	c, err := s.FindByID(ctx, id)
	if err != nil || c != nil {
		return c, err
	}
	return s.queryOne(ctx, `SELECT id, doc FROM candidates WHERE id = $1`, id)
}

// FindOne returns the first candidate whose document field equals value
func (s *PostgresStore) FindOne(ctx context.Context, field string, value any) (*types.Candidate, error) {
	return s.queryOne(ctx,
		`SELECT id, doc FROM candidates WHERE doc->>($1::text) = $2 ORDER BY created_at LIMIT 1`,
		field, fmt.Sprint(value),
	)
}

// List retrieves candidates newest first with optional filters
func (s *PostgresStore) List(ctx context.Context, opts ListOptions) ([]types.Candidate, error) {
	query := `SELECT id, doc FROM candidates WHERE 1=1`
	args := []any{}
	argNum := 1

	if opts.ApplicationStatus != "" {
		query += fmt.Sprintf(" AND doc->>'applicationStatus' = $%d", argNum)
		args = append(args, string(opts.ApplicationStatus))
		argNum++
	}
	if opts.HiringStatus != "" {
		query += fmt.Sprintf(" AND doc->>'hiringStatus' = $%d", argNum)
		args = append(args, string(opts.HiringStatus))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, listLimit(opts))

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	var candidates []types.Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	return candidates, nil
}

// Update merges set into the document when every condition holds
func (s *PostgresStore) Update(ctx context.Context, id string, set, cond Fields) (bool, error) {
	payload, err := json.Marshal(set)
	if err != nil {
		return false, fmt.Errorf("failed to marshal update: %w", err)
	}

	query, args := buildUpdate(id, payload, cond)
	result, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update candidate: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

func buildUpdate(id string, payload []byte, cond Fields) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`UPDATE candidates SET doc = doc || $2::jsonb WHERE id = $1`)
	args := []any{id, payload}
	argNum := 3

	for _, field := range sortedKeys(cond) {
		if cond[field] == nil {
			fmt.Fprintf(&sb, " AND coalesce(doc->>($%d::text), '') = ''", argNum)
			args = append(args, field)
			argNum++
			continue
		}
		fmt.Fprintf(&sb, " AND doc->>($%d::text) = $%d", argNum, argNum+1)
		args = append(args, field, fmt.Sprint(cond[field]))
		argNum += 2
	}
	return sb.String(), args
}

// Delete removes the candidate stored under id
func (s *PostgresStore) Delete(ctx context.Context, id string) (bool, error) {
	result, err := s.pool.Exec(ctx, `DELETE FROM candidates WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete candidate: %w", err)
	}
	return result.RowsAffected() > 0, nil
}

// Ping checks the connection
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool
func (s *PostgresStore) Close(ctx context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

func (s *PostgresStore) queryOne(ctx context.Context, query string, args ...any) (*types.Candidate, error) {
	c, err := scanCandidate(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

func scanCandidate(row pgx.Row) (*types.Candidate, error) {
	var id string
	var doc []byte
	if err := row.Scan(&id, &doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan candidate: %w", err)
	}

	var c types.Candidate
	if err := json.Unmarshal(doc, &c); err != nil {
		return nil, fmt.Errorf("failed to decode candidate %s: %w", id, err)
	}
	c.ID = id
	return &c, nil
}
