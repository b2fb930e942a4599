package storage

import (
	"context"
	"errors"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresStore struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

// NewPostgres returns a KV backed by the client_state table. The schema comes
// from internal/migrate.
func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) KV {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresStore{pool: pool, logger: logger}
}

func (s *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	const q = `SELECT state_value FROM client_state WHERE state_key = $1`
	var v string
	err := s.pool.QueryRow(ctx, q, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.Printf("state store: get key=%s error=%v", key, err)
		return "", false, err
	}
	return v, true, nil
}

func (s *postgresStore) Set(ctx context.Context, key, value string) error {
	const q = `
INSERT INTO client_state (state_key, state_value)
VALUES ($1, $2)
ON CONFLICT (state_key) DO UPDATE
SET state_value = EXCLUDED.state_value,
    updated_at = now()
`
	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		s.logger.Printf("state store: set key=%s error=%v", key, err)
		return err
	}
	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM client_state WHERE state_key = $1`, key)
	return err
}

func (s *postgresStore) Close() error {
	s.pool.Close()
	return nil
}
