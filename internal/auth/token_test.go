package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager() *TokenManager {
	return NewTokenManager("test-secret", time.Hour, 24*time.Hour, 24*time.Hour, 15*time.Minute)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := newTestManager()

	token, err := tm.AccessToken("user@example.com")
	require.NoError(t, err)

	subject, err := tm.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)
}

func TestParseAccessRejectsOtherScopes(t *testing.T) {
	tm := newTestManager()

	refresh, err := tm.RefreshToken("user@example.com")
	require.NoError(t, err)
	_, err = tm.ParseAccess(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	reset, err := tm.ResetToken("user@example.com")
	require.NoError(t, err)
	_, err = tm.ParseAccess(reset)
	assert.ErrorIs(t, err, ErrInvalidToken)

	verification, err := tm.VerificationToken("user@example.com")
	require.NoError(t, err)
	_, err = tm.ParseAccess(verification)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestDecodeRefreshRejectsAccessScope(t *testing.T) {
	tm := newTestManager()

	access, err := tm.AccessToken("user@example.com")
	require.NoError(t, err)

	_, err = tm.DecodeRefresh(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := tm.RefreshToken("user@example.com")
	require.NoError(t, err)
	subject, err := tm.DecodeRefresh(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", subject)
}

func TestEmailFromTokenIgnoresScope(t *testing.T) {
	tm := newTestManager()

	for _, issue := range []func(string) (string, error){
		tm.AccessToken, tm.RefreshToken, tm.VerificationToken, tm.ResetToken,
	} {
		token, err := issue("user@example.com")
		require.NoError(t, err)

		email, err := tm.EmailFromToken(token)
		require.NoError(t, err)
		assert.Equal(t, "user@example.com", email)
	}
}

func TestResetSubjectRequiresResetScope(t *testing.T) {
	tm := newTestManager()

	access, err := tm.AccessToken("user@example.com")
	require.NoError(t, err)
	_, err = tm.ResetSubject(access)
	assert.ErrorIs(t, err, ErrInvalidToken)

	reset, err := tm.ResetToken("user@example.com")
	require.NoError(t, err)
	email, err := tm.ResetSubject(reset)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", email)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("test-secret", -time.Minute, -time.Minute, -time.Minute, -time.Minute)

	token, err := tm.AccessToken("user@example.com")
	require.NoError(t, err)

	_, err = tm.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTamperedTokenRejected(t *testing.T) {
	tm := newTestManager()
	other := NewTokenManager("other-secret", time.Hour, time.Hour, time.Hour, time.Hour)

	token, err := other.AccessToken("user@example.com")
	require.NoError(t, err)

	_, err = tm.ParseAccess(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
