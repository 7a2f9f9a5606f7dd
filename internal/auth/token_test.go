package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func newTestManager() *TokenManager {
	return NewTokenManager(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour, Issuer: "pos-test"})
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	m := newTestManager()
	user := &models.User{ID: "u1", Username: "sam", Role: models.RoleStaff}

	token, issued, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.TokenID)

	session, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", session.UserID)
	assert.Equal(t, "sam", session.Username)
	assert.Equal(t, models.RoleStaff, session.Role)
	assert.Equal(t, issued.TokenID, session.TokenID)
}

func TestTokenManager_TokenIDsAreUnique(t *testing.T) {
	m := newTestManager()
	user := &models.User{ID: "u1", Username: "sam", Role: models.RoleStaff}

	_, a, err := m.Issue(user)
	require.NoError(t, err)
	_, b, err := m.Issue(user)
	require.NoError(t, err)
	assert.NotEqual(t, a.TokenID, b.TokenID)
}

func TestTokenManager_Expired(t *testing.T) {
	m := newTestManager()
	issuedAt := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issuedAt }

	token, _, err := m.Issue(&models.User{ID: "u1", Username: "sam", Role: models.RoleAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_WrongSecret(t *testing.T) {
	token, _, err := newTestManager().Issue(&models.User{ID: "u1", Username: "sam", Role: models.RoleAdmin})
	require.NoError(t, err)

	other := NewTokenManager(config.AuthConfig{JWTSecret: "other", TokenTTL: time.Hour, Issuer: "pos-test"})
	_, err = other.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenManager_Garbage(t *testing.T) {
	_, err := newTestManager().Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
