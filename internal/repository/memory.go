package repository

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
)

// MemoryStore is an in-process implementation of every repository, used by
// STORAGE_DRIVER=memory and by tests. Values are copied in and out so
// callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[string]*models.User
	menu     map[string]*models.MenuItem
	orders   map[string]*models.Order
	profiles map[string]*models.Profile
	logs     []*models.LogEntry
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[string]*models.User),
		menu:     make(map[string]*models.MenuItem),
		orders:   make(map[string]*models.Order),
		profiles: make(map[string]*models.Profile),
	}
}

func (s *MemoryStore) Users() *MemoryUserRepository { return &MemoryUserRepository{s} }
func (s *MemoryStore) Menu() *MemoryMenuRepository { return &MemoryMenuRepository{s} }
func (s *MemoryStore) Orders() *MemoryOrderRepository { return &MemoryOrderRepository{s} }
func (s *MemoryStore) Profiles() *MemoryProfileRepository { return &MemoryProfileRepository{s} }
func (s *MemoryStore) Logs() *MemoryLogRepository { return &MemoryLogRepository{s} }

func (s *MemoryStore) username(userID string) string {
	if u, ok := s.users[userID]; ok {
		return u.Username
	}
	return ""
}

// MemoryUserRepository implements UserRepository in memory.
type MemoryUserRepository struct{ s *MemoryStore }

func (r *MemoryUserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Username == user.Username {
			return apperrors.NewValidationError("username", "User already exists")
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	u := *user
	r.s.users[u.ID] = &u
	return nil
}

func (r *MemoryUserRepository) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *MemoryUserRepository) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (r *MemoryUserRepository) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := *u
		users = append(users, &cp)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *MemoryUserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (r *MemoryUserRepository) CountByRole(_ context.Context, role models.Role) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, u := range r.s.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

func (r *MemoryUserRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.users), nil
}

// MemoryMenuRepository implements MenuRepository in memory.
type MemoryMenuRepository struct{ s *MemoryStore }

func copyMenuItem(item *models.MenuItem) *models.MenuItem {
	cp := *item
	cp.Variants = append([]models.MenuItemVariant(nil), item.Variants...)
	return &cp
}

func (r *MemoryMenuRepository) Create(_ context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	item.ID = uuid.NewString()
	item.CreatedAt = now
	item.UpdatedAt = now
	r.s.menu[item.ID] = copyMenuItem(item)
	return nil
}

func (r *MemoryMenuRepository) GetByID(_ context.Context, userID, id string) (*models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	item, ok := r.s.menu[id]
	if !ok || item.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	cp := copyMenuItem(item)
	cp.OwnerName = r.s.username(item.UserID)
	return cp, nil
}

func (r *MemoryMenuRepository) Update(_ context.Context, item *models.MenuItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	existing, ok := r.s.menu[item.ID]
	if !ok || existing.UserID != item.UserID {
		return apperrors.ErrNotFound
	}
	item.UpdatedAt = time.Now().UTC()
	item.CreatedAt = existing.CreatedAt
	r.s.menu[item.ID] = copyMenuItem(item)
	return nil
}

func (r *MemoryMenuRepository) Delete(_ context.Context, userID, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	item, ok := r.s.menu[id]
	if !ok || item.UserID != userID {
		return apperrors.ErrNotFound
	}
	delete(r.s.menu, id)
	return nil
}

func (r *MemoryMenuRepository) DeleteMany(_ context.Context, userID string, ids []string) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	n := 0
	for _, id := range ids {
		if item, ok := r.s.menu[id]; ok && item.UserID == userID {
			delete(r.s.menu, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryMenuRepository) List(_ context.Context, filter models.MenuFilter) ([]*models.MenuItem, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	items := make([]*models.MenuItem, 0)
	for _, item := range r.s.menu {
		if item.UserID != filter.UserID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(item.Name), search) {
			continue
		}
		cp := copyMenuItem(item)
		cp.OwnerName = r.s.username(item.UserID)
		items = append(items, cp)
	}

	less := func(a, b *models.MenuItem) bool { return a.CreatedAt.Before(b.CreatedAt) }
	switch filter.SortBy {
	case "name":
		less = func(a, b *models.MenuItem) bool { return a.Name < b.Name }
	case "price":
		less = func(a, b *models.MenuItem) bool { return a.BasePrice() < b.BasePrice() }
	}
	sortStable(items, less, filter.SortOrder)

	return paginate(items, filter.ListParams), len(items), nil
}

func (r *MemoryMenuRepository) ListAll(_ context.Context) ([]*models.MenuItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	items := make([]*models.MenuItem, 0, len(r.s.menu))
	for _, item := range r.s.menu {
		cp := copyMenuItem(item)
		cp.OwnerName = r.s.username(item.UserID)
		items = append(items, cp)
	}
	sortStable(items, func(a, b *models.MenuItem) bool { return a.CreatedAt.Before(b.CreatedAt) }, models.SortDesc)
	return items, nil
}

func (r *MemoryMenuRepository) Count(_ context.Context) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return len(r.s.menu), nil
}

// MemoryOrderRepository implements OrderRepository in memory.
type MemoryOrderRepository struct{ s *MemoryStore }

func copyOrder(o *models.Order) *models.Order {
	cp := *o
	cp.Items = make([]models.OrderLine, len(o.Items))
	for i, line := range o.Items {
		cp.Items[i] = line
		if line.SelectedVariant != nil {
			v := *line.SelectedVariant
			cp.Items[i].SelectedVariant = &v
		}
	}
	return &cp
}

func (r *MemoryOrderRepository) Create(_ context.Context, order *models.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	order.ID = uuid.NewString()
	order.Date = time.Now().UTC()
	order.Currency = order.Currency.OrBase()
	r.s.orders[order.ID] = copyOrder(order)
	return nil
}

func (r *MemoryOrderRepository) GetByID(_ context.Context, userID, id string) (*models.Order, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	o, ok := r.s.orders[id]
	if !ok || o.UserID != userID {
		return nil, apperrors.ErrNotFound
	}
	cp := copyOrder(o)
	cp.OwnerName = r.s.username(o.UserID)
	return cp, nil
}

func (r *MemoryOrderRepository) List(_ context.Context, filter models.OrderFilter) ([]*models.Order, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	orders := make([]*models.Order, 0)
	for _, o := range r.s.orders {
		if filter.UserID != "" && o.UserID != filter.UserID {
			continue
		}
		if filter.PaymentMethod != "" && o.PaymentMethod != filter.PaymentMethod {
			continue
		}
		if filter.From != nil && o.Date.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !o.Date.Before(*filter.To) {
			continue
		}
		if search != "" && !matchesOrderSearch(o, search, filter.SearchAmount) {
			continue
		}
		cp := copyOrder(o)
		cp.OwnerName = r.s.username(o.UserID)
		orders = append(orders, cp)
	}

	less := func(a, b *models.Order) bool { return a.Date.Before(b.Date) }
	switch filter.SortBy {
	case "total":
		less = func(a, b *models.Order) bool { return a.Total < b.Total }
	case "customer.name":
		less = func(a, b *models.Order) bool { return a.Customer.Name < b.Customer.Name }
	}
	sortStable(orders, less, filter.SortOrder)

	return paginate(orders, filter.ListParams), len(orders), nil
}

func matchesOrderSearch(o *models.Order, search string, amount *float64) bool {
	if strings.Contains(strings.ToLower(o.Customer.Name), search) || strings.Contains(strings.ToLower(o.ID), search) {
		return true
	}
	return amount != nil && math.Round(o.Total*100)/100 == *amount
}

func (r *MemoryOrderRepository) CountByUser(_ context.Context, userID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	n := 0
	for _, o := range r.s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryOrderRepository) ListAll(ctx context.Context, userID string, limit int) ([]*models.Order, error) {
	orders, _, err := r.List(ctx, models.OrderFilter{
		ListParams: models.ListParams{Limit: limit, Page: 1, SortBy: "date", SortOrder: models.SortDesc},
		UserID:     userID,
	})
	return orders, err
}

func (r *MemoryOrderRepository) Stats(_ context.Context) (int, float64, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var revenue float64
	for _, o := range r.s.orders {
		revenue += o.Total
	}
	return len(r.s.orders), revenue, nil
}

// MemoryProfileRepository implements ProfileRepository in memory.
type MemoryProfileRepository struct{ s *MemoryStore }

func (r *MemoryProfileRepository) GetByUserID(_ context.Context, userID string) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.profiles[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *MemoryProfileRepository) Upsert(_ context.Context, p *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := time.Now().UTC()
	if existing, ok := r.s.profiles[p.UserID]; ok {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	cp := *p
	r.s.profiles[p.UserID] = &cp
	return nil
}

// MemoryLogRepository implements LogRepository in memory.
type MemoryLogRepository struct{ s *MemoryStore }

func (r *MemoryLogRepository) Create(_ context.Context, entry *models.LogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	cp := *entry
	r.s.logs = append(r.s.logs, &cp)
	return nil
}

func (r *MemoryLogRepository) List(_ context.Context, filter models.LogFilter) ([]*models.LogEntry, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	entries := make([]*models.LogEntry, 0)
	for i := len(r.s.logs) - 1; i >= 0; i-- {
		e := r.s.logs[i]
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		cp := *e
		cp.Username = r.s.username(e.UserID)
		entries = append(entries, &cp)
		if filter.Limit > 0 && len(entries) == filter.Limit {
			break
		}
	}
	return entries, nil
}

func sortStable[T any](items []T, less func(a, b T) bool, order models.SortOrder) {
	sort.SliceStable(items, func(i, j int) bool {
		if order == models.SortAsc {
			return less(items[i], items[j])
		}
		return less(items[j], items[i])
	})
}

func paginate[T any](items []T, params models.ListParams) []T {
	if params.Limit <= 0 {
		return items
	}
	start := params.Offset()
	if start < 0 || start >= len(items) {
		return []T{}
	}
	end := len(items)
	if params.Limit < end-start {
		end = start + params.Limit
	}
	return items[start:end]
}
