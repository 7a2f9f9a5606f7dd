package service

import (
	"context"
	"errors"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// ProfileService manages restaurant profiles.
type ProfileService struct {
	repo   repository.ProfileRepository
	cache  repository.ProfileCache
	config *config.Config
	logger *logging.LoggerV2
}

func NewProfileService(repo repository.ProfileRepository, cache repository.ProfileCache, cfg *config.Config) *ProfileService {
	return &ProfileService{
		repo:   repo,
		cache:  cache,
		config: cfg,
		logger: logging.NewLoggerV2("profile-service"),
	}
}

// Get returns the user's profile, creating it with defaults on first access.
func (s *ProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if s.config.Features.EnableProfileCaching {
		if p, err := s.cache.Get(ctx, userID); err == nil && p != nil {
			return p, nil
		} else if err != nil {
			s.logger.Warn("Profile cache read failed", logging.Fields{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}

	p, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		p = models.NewDefaultProfile(userID)
		if err := s.repo.Upsert(ctx, p); err != nil {
			return nil, err
		}
		s.logger.Info("Profile created with defaults", logging.Fields{"user_id": userID})
	} else if err != nil {
		return nil, err
	}

	s.cacheProfile(ctx, p)
	return p, nil
}

// Update applies a partial update, creating the profile if needed.
func (s *ProfileService) Update(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}

	p, err := s.repo.GetByUserID(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		p = models.NewDefaultProfile(userID)
	} else if err != nil {
		return nil, err
	}

	update.Apply(p)
	if err := s.repo.Upsert(ctx, p); err != nil {
		s.logger.Error("Failed to update profile", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.cacheProfile(ctx, p)
	s.logger.Info("Profile updated", logging.Fields{"user_id": userID, "tax_rate": p.TaxRate})
	return p, nil
}

// ForPricing returns the profile used to price a ticket, or nil when it
// cannot be loaded, in which case the default tax rate applies.
func (s *ProfileService) ForPricing(ctx context.Context, userID string) *models.Profile {
	p, err := s.Get(ctx, userID)
	if err != nil {
		s.logger.Warn("Pricing without profile", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil
	}
	return p
}

// Evict drops the cached profile of a user.
func (s *ProfileService) Evict(ctx context.Context, userID string) error {
	return s.cache.Delete(ctx, userID)
}

func (s *ProfileService) cacheProfile(ctx context.Context, p *models.Profile) {
	if !s.config.Features.EnableProfileCaching {
		return
	}
	if err := s.cache.Set(ctx, p); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to cache profile", logging.Fields{
			"user_id": p.UserID,
			"error":   err.Error(),
		})
	}
}
