package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

const contactColumns = `id, user_id, first_name, last_name, email, phone, birthday, description, created_at, updated_at`

// CreateContact inserts a contact for its owner. A duplicate email+phone
// pair within the same owner's contacts maps to ErrAlreadyExists.
func (s *Store) CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error) {
	var created models.Contact
	err := pgxscan.Get(ctx, s.pool, &created, `
	INSERT INTO contacts (user_id, first_name, last_name, email, phone, birthday, description)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING `+contactColumns+`;
	`, contact.UserID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Birthday, contact.Description)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Contact{}, storage.ErrAlreadyExists
		}
		return models.Contact{}, err
	}
	return created, nil
}

// ContactByID fetches one contact owned by userID.
func (s *Store) ContactByID(ctx context.Context, userID, contactID int64) (models.Contact, error) {
	var contact models.Contact
	err := pgxscan.Get(ctx, s.pool, &contact, `
	SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND user_id = $2;
	`, contactID, userID)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.Contact{}, storage.ErrNotFound
		}
		return models.Contact{}, err
	}
	return contact, nil
}

// ListContacts returns the owner's contacts with filters applied.
func (s *Store) ListContacts(ctx context.Context, userID int64, f storage.ContactFilter) ([]models.Contact, error) {
	f.UserID = userID
	return s.listContacts(ctx, f)
}

// ListAllContacts lists across owners; f.UserID optionally narrows to one.
func (s *Store) ListAllContacts(ctx context.Context, f storage.ContactFilter) ([]models.Contact, error) {
	return s.listContacts(ctx, f)
}

func (s *Store) listContacts(ctx context.Context, f storage.ContactFilter) ([]models.Contact, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.UserID != 0 {
		conds = append(conds, "user_id = "+arg(f.UserID))
	}
	if f.Email != "" {
		conds = append(conds, "email ILIKE "+arg("%"+f.Email+"%"))
	}
	if f.Fullname != "" {
		conds = append(conds, "(first_name || ' ' || last_name) ILIKE "+arg("%"+f.Fullname+"%"))
	}

	orderBy := "id"
	if f.DaysToBirthday > 0 {
		start, end, wraps := storage.DayOfYearWindow(time.Now(), f.DaysToBirthday)
		if wraps {
			conds = append(conds, fmt.Sprintf(
				"(date_part('doy', birthday) >= %s OR date_part('doy', birthday) <= %s)",
				arg(start), arg(end)))
		} else {
			conds = append(conds, fmt.Sprintf(
				"date_part('doy', birthday) BETWEEN %s AND %s",
				arg(start), arg(end)))
		}
		orderBy = "birthday"
	}

	query := "SELECT " + contactColumns + " FROM contacts"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY " + orderBy
	query += " LIMIT " + arg(normalizeLimit(f.Limit))
	query += " OFFSET " + arg(max(f.Offset, 0))

	contacts := []models.Contact{}
	if err := pgxscan.Select(ctx, s.pool, &contacts, query, args...); err != nil {
		return nil, err
	}
	return contacts, nil
}

// UpdateContact rewrites the mutable fields of an owned contact.
func (s *Store) UpdateContact(ctx context.Context, userID int64, contact models.Contact) (models.Contact, error) {
	var updated models.Contact
	err := pgxscan.Get(ctx, s.pool, &updated, `
	UPDATE contacts
	SET first_name = $3, last_name = $4, email = $5, phone = $6, birthday = $7, description = $8, updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING `+contactColumns+`;
	`, contact.ID, userID, contact.FirstName, contact.LastName, contact.Email, contact.Phone, contact.Birthday, contact.Description)
	if err != nil {
		if pgxscan.NotFound(err) {
			return models.Contact{}, storage.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.Contact{}, storage.ErrAlreadyExists
		}
		return models.Contact{}, err
	}
	return updated, nil
}

// DeleteContact removes an owned contact.
func (s *Store) DeleteContact(ctx context.Context, userID, contactID int64) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND user_id = $2`,
		contactID, userID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return 10
	case limit > 100:
		return 100
	}
	return limit
}
