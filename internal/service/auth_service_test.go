package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

func TestAuthService_Login(t *testing.T) {
	env := newTestEnv(t)
	env.newUser(t, "sam", models.RoleStaff)
	ctx := context.Background()

	tests := []struct {
		name       string
		req        models.LoginRequest
		wantStatus int
		wantMsg    string
	}{
		{name: "missing password", req: models.LoginRequest{Username: "sam"}, wantStatus: http.StatusBadRequest, wantMsg: "Please provide a username and password"},
		{name: "missing username", req: models.LoginRequest{Password: "secret"}, wantStatus: http.StatusBadRequest, wantMsg: "Please provide a username and password"},
		{name: "unknown user", req: models.LoginRequest{Username: "kim", Password: "secret"}, wantStatus: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
		{name: "wrong password", req: models.LoginRequest{Username: "sam", Password: "nope"}, wantStatus: http.StatusUnauthorized, wantMsg: "Invalid credentials"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.auth.Login(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.wantStatus, apperrors.StatusCode(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}

	resp, err := env.auth.Login(ctx, models.LoginRequest{Username: " sam ", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "sam", resp.User.Username)
	assert.Equal(t, models.ViewMenu, resp.HomeView)

	session, err := env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, session.UserID)
	assert.Equal(t, models.RoleStaff, session.Role)
}

func TestAuthService_AuthenticateRejectsGarbage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.auth.Authenticate(context.Background(), "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_LogoutRevokesTokenAndDiscardsTicket(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	owner := env.newUser(t, "sam", models.RoleStaff)
	dal := env.newItem(t, owner, "Dal", models.MenuItemVariant{Name: "Full", Price: 100})

	resp, err := env.auth.Login(ctx, models.LoginRequest{Username: "sam", Password: "secret"})
	require.NoError(t, err)
	session, err := env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)

	_, err = env.checkout.AddLine(ctx, session, AddLineRequest{ItemID: dal.ID, VariantName: "Full"})
	require.NoError(t, err)

	require.NoError(t, env.auth.Logout(ctx, session))

	_, err = env.auth.Authenticate(ctx, resp.Token)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, apperrors.StatusCode(err))
	assert.Contains(t, err.Error(), "revoked")

	ticket, err := env.tickets.Get(ctx, session.UserID)
	require.NoError(t, err)
	assert.Nil(t, ticket)

	// A fresh login gets a new token with an empty ticket.
	resp, err = env.auth.Login(ctx, models.LoginRequest{Username: "sam", Password: "secret"})
	require.NoError(t, err)
	session, err = env.auth.Authenticate(ctx, resp.Token)
	require.NoError(t, err)
	view, err := env.checkout.Get(ctx, session)
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
}

func TestAuthService_SeedAdminIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	require.NoError(t, env.auth.SeedAdmin(ctx, "admin", "admin123"))
	require.NoError(t, env.auth.SeedAdmin(ctx, "admin", "admin123"))

	count, err := env.store.Users().CountByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	resp, err := env.auth.Login(ctx, models.LoginRequest{Username: "admin", Password: "admin123"})
	require.NoError(t, err)
	assert.Equal(t, models.ViewAdmin, resp.HomeView)
}
