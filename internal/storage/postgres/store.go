package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/olekhv/contactbook/internal/storage"
)

// Compile-time checks that Store satisfies the storage contracts.
var (
	_ storage.UserStore     = (*Store)(nil)
	_ storage.ContactStore  = (*Store)(nil)
	_ storage.TempCodeStore = (*Store)(nil)
	_ storage.Pinger        = (*Store)(nil)
)

// Store provides Postgres-backed persistence for users, contacts, and
// temporary codes.
type Store struct {
	pool    *pgxpool.Pool
	codeTTL time.Duration
}

// New connects a pool, runs migrations, and seeds the role table.
func New(ctx context.Context, databaseURL string, codeTTL time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool, codeTTL: codeTTL}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Ping issues a trivial query for the liveness probe.
func (s *Store) Ping(ctx context.Context) error {
	var one int
	if err := s.pool.QueryRow(ctx, `SELECT 1`).Scan(&one); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS roles (
			id BIGSERIAL PRIMARY KEY,
			name TEXT UNIQUE NOT NULL
		);`,
		`INSERT INTO roles (name) VALUES ('guest'), ('user'), ('admin') ON CONFLICT (name) DO NOTHING;`,
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			email TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			avatar TEXT NOT NULL DEFAULT '',
			role_id BIGINT NOT NULL REFERENCES roles(id),
			refresh_token TEXT,
			confirmed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE TABLE IF NOT EXISTS contacts (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			email TEXT NOT NULL,
			phone TEXT NOT NULL,
			birthday DATE,
			description TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS contacts_owner_email_phone_idx ON contacts (user_id, email, phone);`,
		`CREATE TABLE IF NOT EXISTS temporary_codes (
			id BIGSERIAL PRIMARY KEY,
			code TEXT NOT NULL,
			description TEXT NOT NULL,
			user_email TEXT NOT NULL REFERENCES users(email) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at TIMESTAMPTZ NOT NULL,
			used_at TIMESTAMPTZ
		);`,
		`CREATE INDEX IF NOT EXISTS temporary_codes_email_code_idx ON temporary_codes (user_email, code);`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}
