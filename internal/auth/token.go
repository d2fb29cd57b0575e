package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token scopes discriminate token purpose so one kind cannot stand in for
// another.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeReset   = "reset_password"
)

// ErrInvalidToken covers every decode failure: bad signature, expiry,
// wrong scope, or missing subject. Callers surface it as Unauthorized.
var ErrInvalidToken = errors.New("could not validate credentials")

// Claims is the minimal claim set carried by every token this service
// issues: subject, issued-at, expiry, and a scope discriminator.
type Claims struct {
	Scope string `json:"scope,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies the signed JWTs used across the API.
// All tokens share one symmetric secret and one signing algorithm.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	verifyTTL  time.Duration
	resetTTL   time.Duration
}

// NewTokenManager creates a manager with the provided secret and lifetimes.
func NewTokenManager(secret string, accessTTL, refreshTTL, verifyTTL, resetTTL time.Duration) *TokenManager {
	return &TokenManager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		verifyTTL:  verifyTTL,
		resetTTL:   resetTTL,
	}
}

func (t *TokenManager) issue(subject, scope string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// AccessToken issues a short-lived token authorizing API calls.
func (t *TokenManager) AccessToken(email string) (string, error) {
	return t.issue(email, ScopeAccess, t.accessTTL)
}

// RefreshToken issues the long-lived token exchanged for new pairs.
func (t *TokenManager) RefreshToken(email string) (string, error) {
	return t.issue(email, ScopeRefresh, t.refreshTTL)
}

// VerificationToken issues the token embedded in confirmation emails.
// It carries no scope; decoding it performs no scope check either.
func (t *TokenManager) VerificationToken(email string) (string, error) {
	return t.issue(email, "", t.verifyTTL)
}

// ResetToken issues the token embedded in password-reset emails.
func (t *TokenManager) ResetToken(email string) (string, error) {
	return t.issue(email, ScopeReset, t.resetTTL)
}

func (t *TokenManager) parse(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return t.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ParseAccess verifies an access token and returns its subject. Tokens with
// any other scope or an empty subject are rejected.
func (t *TokenManager) ParseAccess(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeAccess || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// DecodeRefresh verifies a refresh token and returns its subject.
func (t *TokenManager) DecodeRefresh(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeRefresh {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// EmailFromToken returns the subject of any valid token without checking
// its scope. Used for email-verification links.
func (t *TokenManager) EmailFromToken(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// ResetSubject verifies a reset-password token and returns the email it
// was issued for.
func (t *TokenManager) ResetSubject(token string) (string, error) {
	claims, err := t.parse(token)
	if err != nil {
		return "", err
	}
	if claims.Scope != ScopeReset || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
