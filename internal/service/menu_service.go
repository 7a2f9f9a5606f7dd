package service

import (
	"context"
	"strings"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

// MenuService manages each user's menu items. Saved orders keep their own
// snapshots, so edits and deletions never reach them.
type MenuService struct {
	menuRepo  repository.MenuRepository
	userRepo  repository.UserRepository
	publisher EventPublisher
	config    *config.Config
	logger    *logging.LoggerV2
}

func NewMenuService(menuRepo repository.MenuRepository, userRepo repository.UserRepository, publisher EventPublisher, cfg *config.Config) *MenuService {
	return &MenuService{
		menuRepo:  menuRepo,
		userRepo:  userRepo,
		publisher: publisher,
		config:    cfg,
		logger:    logging.NewLoggerV2("menu-service"),
	}
}

// List returns a page of the session user's menu.
func (s *MenuService) List(ctx context.Context, session *models.Session, params models.ListParams) (models.Page[*models.MenuItem], error) {
	filter := models.MenuFilter{ListParams: params, UserID: session.UserID}
	items, total, err := s.menuRepo.List(ctx, filter)
	if err != nil {
		return models.Page[*models.MenuItem]{}, err
	}
	return models.NewPage(items, params, total), nil
}

// Create adds an item to the session user's menu.
func (s *MenuService) Create(ctx context.Context, session *models.Session, input models.MenuItemInput) (*models.MenuItem, error) {
	return s.create(ctx, session.UserID, input)
}

// CreateFor adds an item to another user's menu.
func (s *MenuService) CreateFor(ctx context.Context, input models.MenuItemInput) (*models.MenuItem, error) {
	if input.UserID == "" {
		return nil, apperrors.NewValidationError("userId", "User is required")
	}
	if _, err := s.userRepo.GetByID(ctx, input.UserID); err != nil {
		return nil, err
	}
	return s.create(ctx, input.UserID, input)
}

func (s *MenuService) create(ctx context.Context, userID string, input models.MenuItemInput) (*models.MenuItem, error) {
	item := &models.MenuItem{
		UserID:   userID,
		Name:     strings.TrimSpace(input.Name),
		Variants: input.Variants,
		ImageURL: strings.TrimSpace(input.ImageURL),
	}
	for i := range item.Variants {
		item.Variants[i].Name = strings.TrimSpace(item.Variants[i].Name)
	}
	if err := item.Validate(); err != nil {
		return nil, err
	}

	if err := s.menuRepo.Create(ctx, item); err != nil {
		s.logger.Error("Failed to create menu item", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, err
	}

	s.logger.Info("Menu item created", logging.Fields{
		"item_id":  item.ID,
		"user_id":  userID,
		"variants": len(item.Variants),
	})
	return item, nil
}

// Update changes the name and/or variants of one of the session user's items.
func (s *MenuService) Update(ctx context.Context, session *models.Session, id string, update models.MenuItemUpdate) (*models.MenuItem, error) {
	item, err := s.menuRepo.GetByID(ctx, session.UserID, id)
	if err != nil {
		return nil, err
	}
	if err := update.Apply(item); err != nil {
		return nil, err
	}
	if err := s.menuRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes one of the session user's items.
func (s *MenuService) Delete(ctx context.Context, session *models.Session, id string) error {
	if err := s.menuRepo.Delete(ctx, session.UserID, id); err != nil {
		return err
	}
	s.publishDeleted(ctx, session.UserID, []string{id})
	return nil
}

// DeleteMany removes the given items the session user owns; others are ignored.
func (s *MenuService) DeleteMany(ctx context.Context, session *models.Session, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, apperrors.NewValidationError("ids", "Item IDs are required")
	}

	n, err := s.menuRepo.DeleteMany(ctx, session.UserID, ids)
	if err != nil {
		return 0, err
	}

	s.logger.Info("Menu items deleted", logging.Fields{
		"user_id":   session.UserID,
		"requested": len(ids),
		"deleted":   n,
	})
	if n > 0 {
		s.publishDeleted(ctx, session.UserID, ids)
	}
	return n, nil
}

// ListAll returns every user's menu items, newest first.
func (s *MenuService) ListAll(ctx context.Context) ([]*models.MenuItem, error) {
	return s.menuRepo.ListAll(ctx)
}

func (s *MenuService) publishDeleted(ctx context.Context, userID string, ids []string) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.publisher.PublishMenuItemsDeleted(ctx, userID, ids); err != nil {
		// Log but don't fail
		s.logger.Error("Failed to publish menu deleted event", logging.Fields{
			"user_id": userID,
			"error":   err.Error(),
		})
	}
}
