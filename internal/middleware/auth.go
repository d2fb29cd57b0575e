package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/olekhv/contactbook/internal/auth"
	"github.com/olekhv/contactbook/internal/http/respond"
	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

type contextKey struct{}

var userKey contextKey

// UserFrom returns the authenticated user stashed by RequireUser.
func UserFrom(ctx context.Context) (models.User, bool) {
	user, ok := ctx.Value(userKey).(models.User)
	return user, ok
}

// Authenticator resolves the caller from a bearer access token.
type Authenticator struct {
	tokens *auth.TokenManager
	users  storage.UserStore
}

func NewAuthenticator(tokens *auth.TokenManager, users storage.UserStore) *Authenticator {
	return &Authenticator{tokens: tokens, users: users}
}

// RequireUser rejects requests without a valid access token and loads the
// caller fresh from the user store on every request.
func (a *Authenticator) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := BearerToken(r)
		if token == "" {
			respond.Detail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		email, err := a.tokens.ParseAccess(token)
		if err != nil {
			respond.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		user, err := a.users.UserByEmail(r.Context(), email)
		if err != nil {
			respond.Detail(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// RequireRoles allows the request through only when the caller's role name
// is in the allow-set. Must run after RequireUser.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				respond.Detail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
			if !slices.Contains(roles, user.Role) {
				respond.Detail(w, http.StatusForbidden, "Not enough permissions")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BearerToken extracts the credentials from an Authorization header.
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return header[len(scheme):]
	}
	return ""
}
