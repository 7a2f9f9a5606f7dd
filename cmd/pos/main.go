package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/auth"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/clients"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/events"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/repository"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/server"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/service"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/telemetry"

	_ "github.com/lib/pq"
)

const defaultShutdownTimeout = 30 * time.Second

// stores is the persistence selected by STORAGE_DRIVER.
type stores struct {
	users    repository.UserRepository
	menu     repository.MenuRepository
	orders   repository.OrderRepository
	profiles repository.ProfileRepository
	logs     repository.LogRepository
	tickets  repository.TicketStore
	cache    repository.ProfileCache
	revoked  repository.TokenStore
	ready    map[string]func(context.Context) error
	close    func()
}

func main() {
	cfg := config.Load()
	logging.Configure(cfg.Logging.Level, cfg.Logging.Format)

	logger := logging.NewLoggerV2("pos-service")
	logging.Infof("Starting pos-service on port %d", cfg.Server.Port)

	shutdownTracing, err := telemetry.Init(cfg.Tracing)
	if err != nil {
		logger.Fatal("Failed to initialise tracing", logging.Fields{"error": err.Error()})
	}

	ctx := context.Background()
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", logging.Fields{
			"driver": cfg.Storage.Driver,
			"error":  err.Error(),
		})
	}
	defer st.close()

	currencies, err := service.LoadCurrencyTable(cfg.Billing.CurrenciesFile)
	if err != nil {
		logger.Fatal("Failed to load currency table", logging.Fields{"error": err.Error()})
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	var publisher service.EventPublisher = events.NewMockEventPublisher()
	if cfg.Features.EnableOrderEvents {
		kafkaPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	var shipper service.LogShipper
	if cfg.Features.EnableLogStreaming {
		logShipper := events.NewKafkaLogShipper(cfg.Kafka, logger)
		defer logShipper.Close()
		shipper = logShipper
	}

	notificationClient := clients.NewHTTPNotificationClient(cfg.NotificationService, logger)

	pricing := service.NewPricingEngine(logging.NewLoggerV2("pricing"))
	profileService := service.NewProfileService(st.profiles, st.cache, cfg)
	orderService := service.NewOrderService(st.orders, profileService, pricing, currencies, notificationClient, publisher, m, cfg)
	menuService := service.NewMenuService(st.menu, st.users, publisher, cfg)
	checkoutService := service.NewCheckoutService(st.tickets, st.menu, orderService, profileService, pricing, currencies, m, cfg)
	logService := service.NewLogService(st.logs, shipper, cfg)
	authService := service.NewAuthService(st.users, auth.NewTokenManager(cfg.Auth), st.revoked, checkoutService, profileService)
	adminService := service.NewAdminService(st.users, st.orders, st.menu, orderService, menuService, logService)

	if err := authService.SeedAdmin(ctx, cfg.Auth.AdminUsername, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("Failed to seed admin user", logging.Fields{"error": err.Error()})
	}

	h := handlers.NewHandlers(handlers.Services{
		Auth:       authService,
		Menu:       menuService,
		Orders:     orderService,
		Checkout:   checkoutService,
		Profiles:   profileService,
		Logs:       logService,
		Admin:      adminService,
		Currencies: currencies,
	}, prometheus.DefaultGatherer, cfg)
	for name, check := range st.ready {
		h.AddReadinessCheck(name, check)
	}

	srv := server.NewServer(cfg, h, authService, m)

	go func() {
		logger.Info("Server starting", logging.Fields{
			"port":                 cfg.Server.Port,
			"storage_driver":       cfg.Storage.Driver,
			"enable_order_events":  cfg.Features.EnableOrderEvents,
			"enable_log_streaming": cfg.Features.EnableLogStreaming,
		})
		if err := srv.Start(); err != nil {
			logger.Fatal("Server failed to start", logging.Fields{"error": err.Error()})
		}
	}()

	var logConsumer *events.LogConsumer
	if cfg.Features.EnableLogStreaming {
		logConsumer = events.NewLogConsumer(cfg.Kafka, logService, logger)
		go func() {
			if err := logConsumer.Start(context.Background()); err != nil {
				logger.Error("Log consumer failed", logging.Fields{"error": err.Error()})
			}
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = defaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if logConsumer != nil {
		logConsumer.Stop()
	}

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", logging.Fields{"error": err.Error()})
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("Tracer shutdown failed", logging.Fields{"error": err.Error()})
	}

	logger.Info("Server exited")
	_ = logger.Sync()
}

func openStores(ctx context.Context, cfg *config.Config, logger *logging.LoggerV2) (*stores, error) {
	if cfg.Storage.Driver == "memory" {
		logger.Warn("Using in-memory storage; data is lost on restart")
		mem := repository.NewMemoryStore()
		return &stores{
			users:    mem.Users(),
			menu:     mem.Menu(),
			orders:   mem.Orders(),
			profiles: mem.Profiles(),
			logs:     mem.Logs(),
			tickets:  repository.NewMemoryTicketStore(),
			cache:    repository.NewMemoryProfileCache(),
			revoked:  repository.NewMemoryTokenStore(),
			close:    func() {},
		}, nil
	}

	db, err := repository.OpenPostgres(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := repository.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}

	rdb := repository.NewRedisClient(cfg.Redis)
	return &stores{
		users:    repository.NewPostgresUserRepository(db, logger),
		menu:     repository.NewPostgresMenuRepository(db, logger),
		orders:   repository.NewPostgresOrderRepository(db, logger),
		profiles: repository.NewPostgresProfileRepository(db, logger),
		logs:     repository.NewPostgresLogRepository(db),
		tickets:  repository.NewRedisTicketStore(rdb, cfg.Redis.TTL),
		cache:    repository.NewRedisProfileCache(rdb, cfg.Redis.TTL),
		revoked:  repository.NewRedisTokenStore(rdb),
		ready: map[string]func(context.Context) error{
			"database": db.PingContext,
			"redis":    redisPing(rdb),
		},
		close: func() {
			closeQuietly(logger, "redis", rdb.Close)
			closeQuietly(logger, "database", db.Close)
		},
	}, nil
}

func redisPing(rdb *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	}
}

func closeQuietly(logger *logging.LoggerV2, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("Close failed", logging.Fields{"resource": name, "error": err.Error()})
	}
}
