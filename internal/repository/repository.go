package repository

import (
	"context"
	"time"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

var (
	_ UserRepository    = (*PostgresUserRepository)(nil)
	_ MenuRepository    = (*PostgresMenuRepository)(nil)
	_ OrderRepository   = (*PostgresOrderRepository)(nil)
	_ ProfileRepository = (*PostgresProfileRepository)(nil)
	_ LogRepository     = (*PostgresLogRepository)(nil)

	_ UserRepository    = (*MemoryUserRepository)(nil)
	_ MenuRepository    = (*MemoryMenuRepository)(nil)
	_ OrderRepository   = (*MemoryOrderRepository)(nil)
	_ ProfileRepository = (*MemoryProfileRepository)(nil)
	_ LogRepository     = (*MemoryLogRepository)(nil)

	_ TicketStore  = (*RedisTicketStore)(nil)
	_ TicketStore  = (*MemoryTicketStore)(nil)
	_ ProfileCache = (*RedisProfileCache)(nil)
	_ ProfileCache = (*MemoryProfileCache)(nil)
	_ TokenStore   = (*RedisTokenStore)(nil)
	_ TokenStore   = (*MemoryTokenStore)(nil)
)

// UserRepository stores operator accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CountByRole(ctx context.Context, role models.Role) (int, error)
	Count(ctx context.Context) (int, error)
}

// MenuRepository stores menu items. Every owner-scoped call takes the owner's
// user id; an item owned by someone else is reported as not found.
type MenuRepository interface {
	Create(ctx context.Context, item *models.MenuItem) error
	GetByID(ctx context.Context, userID, id string) (*models.MenuItem, error)
	Update(ctx context.Context, item *models.MenuItem) error
	Delete(ctx context.Context, userID, id string) error
	DeleteMany(ctx context.Context, userID string, ids []string) (int, error)
	List(ctx context.Context, filter models.MenuFilter) ([]*models.MenuItem, int, error)
	ListAll(ctx context.Context) ([]*models.MenuItem, error)
	Count(ctx context.Context) (int, error)
}

// OrderRepository stores placed orders. Orders are append-only.
type OrderRepository interface {
	// Create assigns the id and date and stores the order.
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, userID, id string) (*models.Order, error)
	List(ctx context.Context, filter models.OrderFilter) ([]*models.Order, int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	// ListAll returns every order newest first, optionally for one user.
	ListAll(ctx context.Context, userID string, limit int) ([]*models.Order, error)
	Stats(ctx context.Context) (count int, revenue float64, err error)
}

// ProfileRepository stores one restaurant profile per user.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	Upsert(ctx context.Context, profile *models.Profile) error
}

// LogRepository stores client and server log entries.
type LogRepository interface {
	Create(ctx context.Context, entry *models.LogEntry) error
	List(ctx context.Context, filter models.LogFilter) ([]*models.LogEntry, error)
}

// TicketStore keeps the in-progress order of each session and the submit
// lock that guards against duplicate saves.
type TicketStore interface {
	// Get returns the user's ticket, or nil if there is none.
	Get(ctx context.Context, userID string) (*models.Ticket, error)
	Save(ctx context.Context, ticket *models.Ticket) error
	Delete(ctx context.Context, userID string) error
	// AcquireSubmitLock returns false if a save is already outstanding.
	// The returned token identifies this holder to ReleaseSubmitLock.
	AcquireSubmitLock(ctx context.Context, userID string, ttl time.Duration) (token string, ok bool, err error)
	// ReleaseSubmitLock drops the lock only while token still holds it.
	ReleaseSubmitLock(ctx context.Context, userID, token string) error
}

// ProfileCache caches profiles for pricing lookups.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Set(ctx context.Context, profile *models.Profile) error
	Delete(ctx context.Context, userID string) error
}

// TokenStore records revoked token ids until they would have expired.
type TokenStore interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
