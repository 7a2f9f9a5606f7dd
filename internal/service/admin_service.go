package service

import (
	"context"
	"fmt"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

const (
	recentOrdersLimit = 5
	adminLogsLimit    = 200
)

// AdminService backs the admin dashboard.
type AdminService struct {
	userRepo  repository.UserRepository
	orderRepo repository.OrderRepository
	menuRepo  repository.MenuRepository
	orders    *OrderService
	menu      *MenuService
	logs      *LogService
	logger    *logging.LoggerV2
}

func NewAdminService(
	userRepo repository.UserRepository,
	orderRepo repository.OrderRepository,
	menuRepo repository.MenuRepository,
	orders *OrderService,
	menu *MenuService,
	logs *LogService,
) *AdminService {
	return &AdminService{
		userRepo:  userRepo,
		orderRepo: orderRepo,
		menuRepo:  menuRepo,
		orders:    orders,
		menu:      menu,
		logs:      logs,
		logger:    logging.NewLoggerV2("admin-service"),
	}
}

// Stats summarizes users, orders, revenue and menu size.
func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	orderCount, revenue, err := s.orderRepo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	menuCount, err := s.menuRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.orderRepo.ListAll(ctx, "", recentOrdersLimit)
	if err != nil {
		return nil, err
	}

	return &models.AdminStats{
		UserCount:    users,
		OrderCount:   orderCount,
		MenuCount:    menuCount,
		TotalRevenue: revenue,
		RecentOrders: recent,
	}, nil
}

func (s *AdminService) ListUsers(ctx context.Context) ([]*models.User, error) {
	return s.userRepo.List(ctx)
}

// CreateUser creates a staff account.
func (s *AdminService) CreateUser(ctx context.Context, username, password string) (*models.User, error) {
	if err := ValidateCredentials(username, password); err != nil {
		return nil, err
	}

	user := &models.User{Username: username, Role: models.RoleStaff}
	if err := user.HashPassword(password); err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("Staff user created", logging.Fields{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// ResetPassword sets a new password for a staff account. Admin accounts
// cannot be reset here.
func (s *AdminService) ResetPassword(ctx context.Context, userID, password string) (string, error) {
	if password == "" {
		return "", apperrors.NewValidationError("password", "New password is required")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Role == models.RoleAdmin {
		return "", apperrors.Forbidden("Cannot reset password for an admin account")
	}
	if err := ValidateCredentials(user.Username, password); err != nil {
		return "", err
	}

	if err := user.HashPassword(password); err != nil {
		return "", err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, user.PasswordHash); err != nil {
		return "", err
	}

	s.logger.Info("Password reset", logging.Fields{"user_id": user.ID})
	return fmt.Sprintf("Password for %s has been reset.", user.Username), nil
}

// Orders returns all orders, or one user's when userID is set.
func (s *AdminService) Orders(ctx context.Context, userID string) ([]models.OrderView, error) {
	return s.orders.ListAll(ctx, userID)
}

func (s *AdminService) Menu(ctx context.Context) ([]*models.MenuItem, error) {
	return s.menu.ListAll(ctx)
}

// CreateMenuItem adds an item to the menu of input.UserID.
func (s *AdminService) CreateMenuItem(ctx context.Context, input models.MenuItemInput) (*models.MenuItem, error) {
	return s.menu.CreateFor(ctx, input)
}

// Logs returns the newest log entries, optionally for one user.
func (s *AdminService) Logs(ctx context.Context, userID string) ([]*models.LogEntry, error) {
	return s.logs.List(ctx, models.LogFilter{UserID: userID, Limit: adminLogsLimit})
}
