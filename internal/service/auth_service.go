package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/auth"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

var errInvalidCredentials = apperrors.Unauthorized("Invalid credentials")

// AuthService logs operators in and out and resolves their sessions.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *auth.TokenManager
	revoked  repository.TokenStore
	checkout *CheckoutService
	profiles *ProfileService
	logger   *logging.LoggerV2
}

func NewAuthService(
	userRepo repository.UserRepository,
	tokens *auth.TokenManager,
	revoked repository.TokenStore,
	checkout *CheckoutService,
	profiles *ProfileService,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		revoked:  revoked,
		checkout: checkout,
		profiles: profiles,
		logger:   logging.NewLoggerV2("auth-service"),
	}
}

// Login checks credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if strings.TrimSpace(req.Username) == "" || req.Password == "" {
		return nil, apperrors.NewValidationError("username", "Please provide a username and password")
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if errors.Is(err, apperrors.ErrNotFound) {
		return nil, errInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if err := user.CheckPassword(req.Password); err != nil {
		s.logger.Warn("Failed login", logging.Fields{"username": user.Username})
		return nil, errInvalidCredentials
	}

	token, _, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User logged in", logging.Fields{
		"user_id": user.ID,
		"role":    user.Role.String(),
	})
	return &models.LoginResponse{Token: token, User: *user, HomeView: user.Role.HomeView()}, nil
}

// Authenticate resolves a bearer token into a session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	session, err := s.tokens.Parse(token)
	if err != nil {
		return nil, apperrors.Unauthorized("Invalid token")
	}

	revoked, err := s.revoked.IsRevoked(ctx, session.TokenID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, apperrors.Unauthorized("Token has been revoked")
	}
	return session, nil
}

// Logout revokes the session token and tears down the session's ticket and
// cached profile.
func (s *AuthService) Logout(ctx context.Context, session *models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if err := s.revoked.Revoke(ctx, session.TokenID, ttl); err != nil {
		return err
	}

	if err := s.checkout.Discard(ctx, session.UserID); err != nil {
		s.logger.Warn("Failed to discard ticket on logout", logging.Fields{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}
	if err := s.profiles.Evict(ctx, session.UserID); err != nil {
		s.logger.Warn("Failed to evict cached profile on logout", logging.Fields{
			"user_id": session.UserID,
			"error":   err.Error(),
		})
	}

	s.logger.Info("User logged out", logging.Fields{"user_id": session.UserID})
	return nil
}

// SeedAdmin creates the initial admin account when no admin exists.
func (s *AuthService) SeedAdmin(ctx context.Context, username, password string) error {
	count, err := s.userRepo.CountByRole(ctx, models.RoleAdmin)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	admin := &models.User{Username: username, Role: models.RoleAdmin}
	if err := admin.HashPassword(password); err != nil {
		return err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		return err
	}

	s.logger.Info("Admin user created", logging.Fields{"username": username})
	return nil
}
