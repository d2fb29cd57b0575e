package storage

import (
	"context"
	"errors"

	"github.com/olekhv/contactbook/internal/models"
)

// ErrNotFound indicates a record does not exist or is not visible to the
// caller.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// Temp-code validation failures. All surface to the caller as a 400, but
// stores distinguish them so tests and logs can tell why a reset failed.
var (
	ErrCodeInvalid = errors.New("code is invalid")
	ErrCodeExpired = errors.New("code has expired")
	ErrCodeUsed    = errors.New("code already used")
)

// ContactFilter composes the optional listing filters. Zero values disable
// the corresponding filter.
type ContactFilter struct {
	Limit          int
	Offset         int
	DaysToBirthday int
	Email          string
	Fullname       string
	UserID         int64
}

// UserStore captures persistence operations over user records.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	// UpdateRefreshToken overwrites the stored refresh token; nil clears it.
	UpdateRefreshToken(ctx context.Context, userID int64, token *string) error
	ConfirmEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error
	UpdateAvatar(ctx context.Context, userID int64, url string) (models.User, error)
}

// ContactStore captures persistence operations over contacts. Every
// owner-scoped operation takes the requesting user's id.
type ContactStore interface {
	CreateContact(ctx context.Context, contact models.Contact) (models.Contact, error)
	ContactByID(ctx context.Context, userID, contactID int64) (models.Contact, error)
	ListContacts(ctx context.Context, userID int64, f ContactFilter) ([]models.Contact, error)
	// ListAllContacts ignores ownership; f.UserID optionally narrows to one
	// owner. Admin use only.
	ListAllContacts(ctx context.Context, f ContactFilter) ([]models.Contact, error)
	UpdateContact(ctx context.Context, userID int64, contact models.Contact) (models.Contact, error)
	DeleteContact(ctx context.Context, userID, contactID int64) error
}

// TempCodeStore creates and consumes single-use password-reset codes.
type TempCodeStore interface {
	CreateTempCode(ctx context.Context, email, description string) (models.TemporaryCode, error)
	// ConsumeTempCode marks the code used on success. Fails with
	// ErrCodeInvalid, ErrCodeExpired, or ErrCodeUsed.
	ConsumeTempCode(ctx context.Context, email, code string) error
}

// Pinger is the liveness probe contract used by the health endpoint.
type Pinger interface {
	Ping(ctx context.Context) error
}
