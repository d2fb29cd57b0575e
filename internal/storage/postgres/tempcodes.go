package postgres

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

// CreateTempCode stores a fresh 6-digit code expiring after the configured
// offset and returns it.
func (s *Store) CreateTempCode(ctx context.Context, email, description string) (models.TemporaryCode, error) {
	code, err := generateCode()
	if err != nil {
		return models.TemporaryCode{}, fmt.Errorf("generate temp code: %w", err)
	}

	var created models.TemporaryCode
	err = s.pool.QueryRow(ctx, `
	INSERT INTO temporary_codes (code, description, user_email, expires_at)
	VALUES ($1, $2, $3, $4)
	RETURNING id, code, description, user_email, created_at, expires_at, used_at;
	`, code, description, email, time.Now().Add(s.codeTTL)).Scan(
		&created.ID, &created.Code, &created.Description, &created.UserEmail,
		&created.CreatedAt, &created.ExpiresAt, &created.UsedAt,
	)
	if err != nil {
		return models.TemporaryCode{}, err
	}
	return created, nil
}

// ConsumeTempCode validates the most recent matching code and marks it used.
func (s *Store) ConsumeTempCode(ctx context.Context, email, code string) error {
	var (
		id        int64
		expiresAt time.Time
		usedAt    *time.Time
	)
	err := s.pool.QueryRow(ctx, `
	SELECT id, expires_at, used_at
	FROM temporary_codes
	WHERE user_email = $1 AND code = $2
	ORDER BY created_at DESC
	LIMIT 1;
	`, email, code).Scan(&id, &expiresAt, &usedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storage.ErrCodeInvalid
		}
		return err
	}
	if usedAt != nil {
		return storage.ErrCodeUsed
	}
	if !time.Now().Before(expiresAt) {
		return storage.ErrCodeExpired
	}

	_, err = s.pool.Exec(ctx, `UPDATE temporary_codes SET used_at = NOW() WHERE id = $1`, id)
	return err
}

// generateCode draws a uniformly random zero-padded 6-digit code.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
