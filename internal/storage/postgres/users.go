package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

const userColumns = `u.id, u.username, u.email, u.password_hash, u.avatar, r.name AS role,
	u.refresh_token, u.confirmed, u.created_at, u.updated_at`

// CreateUser inserts a new user row with the role resolved by name.
func (s *Store) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	const query = `
	WITH inserted AS (
		INSERT INTO users (username, email, password_hash, avatar, role_id)
		VALUES ($1, $2, $3, $4, (SELECT id FROM roles WHERE name = $5))
		RETURNING id, username, email, password_hash, avatar, role_id, refresh_token, confirmed, created_at, updated_at
	)
	SELECT i.id, i.username, i.email, i.password_hash, i.avatar, r.name AS role,
		i.refresh_token, i.confirmed, i.created_at, i.updated_at
	FROM inserted i
	JOIN roles r ON r.id = i.role_id;
	`
	row := s.pool.QueryRow(ctx, query, user.Username, user.Email, user.PasswordHash, user.Avatar, user.Role)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.User{}, storage.ErrAlreadyExists
		}
		return models.User{}, err
	}
	return created, nil
}

// UserByEmail fetches a user with its role name joined in.
func (s *Store) UserByEmail(ctx context.Context, email string) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
	SELECT `+userColumns+`
	FROM users u
	JOIN roles r ON r.id = u.role_id
	WHERE u.email = $1;
	`, email)
	return scanUser(row)
}

// UserByID fetches a user by primary key.
func (s *Store) UserByID(ctx context.Context, id int64) (models.User, error) {
	row := s.pool.QueryRow(ctx, `
	SELECT `+userColumns+`
	FROM users u
	JOIN roles r ON r.id = u.role_id
	WHERE u.id = $1;
	`, id)
	return scanUser(row)
}

// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
func (s *Store) UpdateRefreshToken(ctx context.Context, userID int64, token *string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET refresh_token = $2, updated_at = NOW() WHERE id = $1`,
		userID, token,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// ConfirmEmail flips the confirmed flag.
func (s *Store) ConfirmEmail(ctx context.Context, email string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET confirmed = TRUE, updated_at = NOW() WHERE email = $1`,
		email,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdatePassword stores a new password hash.
func (s *Store) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE email = $1`,
		email, passwordHash,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// UpdateAvatar stores the uploaded avatar URL and returns the fresh record.
func (s *Store) UpdateAvatar(ctx context.Context, userID int64, url string) (models.User, error) {
	if _, err := s.pool.Exec(ctx,
		`UPDATE users SET avatar = $2, updated_at = NOW() WHERE id = $1`,
		userID, url,
	); err != nil {
		return models.User{}, err
	}
	return s.UserByID(ctx, userID)
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.Avatar,
		&user.Role, &user.RefreshToken, &user.Confirmed, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, storage.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
