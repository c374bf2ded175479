package api

import (
	"fmt"
	"net/http"

	"helperhive/internal/cache"
	"helperhive/internal/config"
	"helperhive/internal/database"
	"helperhive/internal/external"
	"helperhive/internal/handlers"
	"helperhive/internal/logger"
	"helperhive/internal/messaging"
	"helperhive/internal/middleware"
	"helperhive/internal/models"
	"helperhive/internal/repository"
	"helperhive/internal/search"
	"helperhive/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the HTTP API: database, cache, search, messaging and the
// service layer behind a gin router.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	cache    *cache.Client
	search   *search.ElasticsearchClient
	services *service.Services
	repos    *repository.Repositories
}

func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	cacheClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	searchClient, err := search.NewElasticsearchClient(cfg.Search)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	gatewayClient := external.NewGatewayClient(cfg.Gateway)

	repos := repository.New(db)
	services := service.NewServices(cfg, repos, natsClient, cacheClient, searchClient, gatewayClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		cache:    cacheClient,
		search:   searchClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)
	authn := middleware.Authenticate(s.config.Auth.JWTSecret, s.repos.Users)

	api := s.router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Register)
			auth.POST("/login", h.Login)
			auth.POST("/verify-phone", h.VerifyPhone)
			auth.POST("/resend-otp", h.ResendOTP)
		}

		services := api.Group("/services")
		{
			services.GET("", h.ListServices)
			services.GET("/categories", h.ListCategories)
			services.GET("/:id", h.GetService)
			services.POST("/nearby", h.NearbyProviders)
		}

		users := api.Group("/users", authn)
		{
			users.GET("/me", h.GetProfile)
			users.PATCH("/me", h.UpdateProfile)
			users.PUT("/me/location", h.UpdateLocation)

			provider := users.Group("", middleware.RequireRole(models.RoleProvider))
			{
				provider.PATCH("/me/provider", h.UpdateProviderProfile)
				provider.PUT("/me/availability", h.UpdateAvailability)
			}
		}

		bookings := api.Group("/bookings", authn)
		{
			bookings.POST("", middleware.RequireRole(models.RoleCustomer), h.CreateBooking)
			bookings.GET("", h.ListBookings)
			bookings.GET("/:id", h.GetBooking)
			bookings.POST("/:id/cancel", h.CancelBooking)
			bookings.POST("/:id/messages", h.AddBookingMessage)
			bookings.GET("/:id/messages", h.ListBookingMessages)
			bookings.POST("/:id/emergency", h.TriggerEmergency)

			providerOnly := middleware.RequireRole(models.RoleProvider)
			bookings.POST("/:id/respond", providerOnly, h.RespondBooking)
			bookings.PUT("/:id/status", providerOnly, h.UpdateBookingStatus)
			bookings.PUT("/:id/location", providerOnly, h.UpdateBookingLocation)
		}

		payments := api.Group("/payments", authn)
		{
			customerOnly := middleware.RequireRole(models.RoleCustomer)
			payments.POST("/intent", customerOnly, h.CreatePaymentIntent)
			payments.POST("/confirm", customerOnly, h.ConfirmPayment)
			payments.POST("/refund", customerOnly, h.RequestRefund)
			payments.GET("/history", h.GetPaymentHistory)
			payments.GET("/earnings", middleware.RequireRole(models.RoleProvider), h.GetEarnings)
		}

		admin := api.Group("/admin", authn, middleware.RequireRole(models.RoleAdmin))
		{
			admin.GET("/dashboard", h.Dashboard)
			admin.GET("/users", h.AdminListUsers)
			admin.PUT("/users/:id/status", h.AdminUpdateUserStatus)
			admin.PUT("/providers/:id/verification", h.AdminUpdateVerification)
			admin.GET("/disputes", h.AdminListDisputes)
			admin.POST("/bookings/:id/dispute", h.AdminOpenDispute)
			admin.POST("/bookings/:id/resolve", h.AdminResolveDispute)
			admin.POST("/services", h.AdminCreateService)
			admin.PUT("/services/:id/active", h.AdminSetServiceActive)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	checks := gin.H{"cache": "ok", "search": "ok"}
	healthy := true

	dbCheck := s.db.Health(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		healthy = false
	}
	if err := s.cache.Ping(ctx); err != nil {
		checks["cache"] = err.Error()
		healthy = false
	}
	if err := s.search.HealthCheck(ctx); err != nil {
		checks["search"] = err.Error()
		healthy = false
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status":  overall,
		"service": "helperhive-api",
		"checks":  checks,
	})
}

func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.cache != nil {
		if err := s.cache.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
