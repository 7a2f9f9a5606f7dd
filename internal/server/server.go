package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tm-acme-shop/acme-shop-pos-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/handlers"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-pos-service/internal/middleware"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	auth       middleware.Authenticator
	httpServer *http.Server
	logger     *logging.LoggerV2
}

func NewServer(cfg *config.Config, h *handlers.Handlers, authenticator middleware.Authenticator, m *metrics.Metrics) *Server {
	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	logger := logging.NewLoggerV2("http")
	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Metrics(m),
		cors.New(corsConfig(cfg.Server)),
	)

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		auth:     authenticator,
		logger:   logger,
	}
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	return s
}

func corsConfig(cfg config.ServerConfig) cors.Config {
	c := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		c.AllowOriginFunc = func(string) bool { return true }
	} else {
		c.AllowOrigins = cfg.AllowedOrigins
	}
	return c
}

func (s *Server) setupRoutes() {
	h := s.handlers

	s.router.GET("/health", h.Health)
	s.router.GET("/ready", h.Ready)
	s.router.GET("/live", h.Live)
	s.router.GET("/version", h.Version)
	s.router.GET("/metrics", h.Metrics)
	if s.config.Server.Debug {
		s.router.GET("/debug", h.Debug)
	}

	api := s.router.Group("/api")
	api.POST("/auth/login", h.Login)

	protected := api.Group("", middleware.Auth(s.auth))
	{
		protected.POST("/auth/logout", h.Logout)

		menu := protected.Group("/menu", middleware.RequireMenuManager())
		menu.GET("", h.ListMenu)
		menu.POST("", h.CreateMenuItem)
		menu.POST("/delete-many", h.DeleteMenuItems)
		menu.PUT("/:id", h.UpdateMenuItem)
		menu.DELETE("/:id", h.DeleteMenuItem)

		orders := protected.Group("/orders")
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/count", h.CountOrders)
		orders.GET("/export", h.ExportOrders)
		orders.GET("/:id", h.GetOrder)

		checkout := protected.Group("/checkout")
		checkout.GET("", h.GetTicket)
		checkout.DELETE("", h.ClearTicket)
		checkout.POST("/lines", h.AddLine)
		checkout.PUT("/lines", h.SetQuantity)
		checkout.PUT("/customer", h.SetCustomer)
		checkout.PUT("/tax", h.SetTax)
		checkout.PUT("/currency", h.SetCurrency)
		checkout.POST("/proceed", h.Proceed)
		checkout.POST("/cancel", h.CancelPayment)
		checkout.POST("/pay", h.Pay)

		protected.GET("/profile", h.GetProfile)
		protected.PUT("/profile", h.UpdateProfile)
		protected.GET("/currencies", h.ListCurrencies)
		protected.POST("/logs", h.CreateLog)
	}

	admin := api.Group("/admin", middleware.Auth(s.auth), middleware.RequireAdmin())
	{
		admin.GET("/stats", h.AdminStats)
		admin.GET("/users", h.AdminListUsers)
		admin.POST("/users", h.AdminCreateUser)
		admin.PUT("/users/:id/reset-password", h.AdminResetPassword)
		admin.GET("/orders", h.AdminOrders)
		admin.GET("/menu", h.AdminMenu)
		admin.POST("/menu", h.AdminCreateMenuItem)
		admin.GET("/logs", h.AdminLogs)
	}
}

// Handler is the router wrapped with tracing.
func (s *Server) Handler() http.Handler {
	return otelhttp.NewHandler(s.router, "pos-service")
}

// Start serves until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("Starting server", logging.Fields{"addr": s.httpServer.Addr})
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
