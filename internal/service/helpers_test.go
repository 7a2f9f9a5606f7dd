package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/auth"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
)

type fakePublisher struct {
	mu      sync.Mutex
	orders  []*models.Order
	deleted [][]string
}

func (p *fakePublisher) PublishOrderCreated(_ context.Context, order *models.Order) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orders = append(p.orders, order)
	return nil
}

func (p *fakePublisher) PublishMenuItemsDeleted(_ context.Context, _ string, ids []string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleted = append(p.deleted, ids)
	return nil
}

// flakyOrderRepo fails Create while fail is set. afterCreate, if set, runs
// once the order is stored and its error is returned to the caller.
type flakyOrderRepo struct {
	repository.OrderRepository
	mu          sync.Mutex
	fail        bool
	afterCreate func(ctx context.Context) error
}

func (r *flakyOrderRepo) setFail(fail bool) {
	r.mu.Lock()
	r.fail = fail
	r.mu.Unlock()
}

func (r *flakyOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.mu.Lock()
	fail, after := r.fail, r.afterCreate
	r.mu.Unlock()
	if fail {
		return errors.New("connection reset by peer")
	}
	if err := r.OrderRepository.Create(ctx, order); err != nil {
		return err
	}
	if after != nil {
		return after(ctx)
	}
	return nil
}

type testEnv struct {
	cfg       *config.Config
	store     *repository.MemoryStore
	orderRepo *flakyOrderRepo
	tickets   *repository.MemoryTicketStore
	revoked   *repository.MemoryTokenStore
	publisher *fakePublisher
	sms       *clients.MockNotificationClient
	tokens    *auth.TokenManager

	pricing  *PricingEngine
	profiles *ProfileService
	orders   *OrderService
	menu     *MenuService
	checkout *CheckoutService
	logs     *LogService
	auth     *AuthService
	admin    *AdminService
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{JWTSecret: "test", TokenTTL: time.Hour, Issuer: "pos-test"},
		NotificationService: config.ServiceConfig{
			Timeout: time.Second,
		},
		Features: config.FeatureFlags{
			EnableProfileCaching:   true,
			RequireCustomerDetails: true,
		},
		Billing: config.BillingConfig{SubmitLockTTL: 30 * time.Second},
	}
}

func newTestEnv(t *testing.T, mutate ...func(*config.Config)) *testEnv {
	t.Helper()

	cfg := testConfig()
	for _, fn := range mutate {
		fn(cfg)
	}

	env := &testEnv{
		cfg:       cfg,
		store:     repository.NewMemoryStore(),
		tickets:   repository.NewMemoryTicketStore(),
		revoked:   repository.NewMemoryTokenStore(),
		publisher: &fakePublisher{},
		sms:       clients.NewMockNotificationClient(),
		tokens:    auth.NewTokenManager(cfg.Auth),
	}
	env.orderRepo = &flakyOrderRepo{OrderRepository: env.store.Orders()}

	currencies, err := NewCurrencyTable(models.DefaultCurrencies)
	require.NoError(t, err)

	env.pricing = NewPricingEngine(logging.NewNopLogger())
	env.profiles = NewProfileService(env.store.Profiles(), repository.NewMemoryProfileCache(), cfg)
	env.orders = NewOrderService(env.orderRepo, env.profiles, env.pricing, currencies, env.sms, env.publisher, nil, cfg)
	env.menu = NewMenuService(env.store.Menu(), env.store.Users(), env.publisher, cfg)
	env.checkout = NewCheckoutService(env.tickets, env.store.Menu(), env.orders, env.profiles, env.pricing, currencies, nil, cfg)
	env.logs = NewLogService(env.store.Logs(), nil, cfg)
	env.auth = NewAuthService(env.store.Users(), env.tokens, env.revoked, env.checkout, env.profiles)
	env.admin = NewAdminService(env.store.Users(), env.orderRepo, env.store.Menu(), env.orders, env.menu, env.logs)
	return env
}

func (e *testEnv) newUser(t *testing.T, username string, role models.Role) *models.Session {
	t.Helper()
	u := &models.User{Username: username, Role: role}
	require.NoError(t, u.HashPassword("secret"))
	require.NoError(t, e.store.Users().Create(context.Background(), u))
	return &models.Session{UserID: u.ID, Username: u.Username, Role: u.Role, TokenID: "tok-" + u.ID, ExpiresAt: time.Now().Add(time.Hour)}
}

func (e *testEnv) newItem(t *testing.T, session *models.Session, name string, variants ...models.MenuItemVariant) *models.MenuItem {
	t.Helper()
	item, err := e.menu.Create(context.Background(), session, models.MenuItemInput{
		Name:     name,
		ImageURL: "https://img.example/" + name,
		Variants: variants,
	})
	require.NoError(t, err)
	return item
}

func (e *testEnv) setTaxRate(t *testing.T, session *models.Session, rate float64) {
	t.Helper()
	_, err := e.profiles.Update(context.Background(), session.UserID, models.ProfileUpdate{TaxRate: &rate})
	require.NoError(t, err)
}
