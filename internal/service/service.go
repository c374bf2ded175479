package service

import (
	"helperhive/internal/cache"
	"helperhive/internal/config"
	"helperhive/internal/external"
	"helperhive/internal/messaging"
	"helperhive/internal/repository"
	"helperhive/internal/search"
)

type Services struct {
	Auth     *AuthService
	Users    *UserService
	Catalog  *CatalogService
	Bookings *BookingService
	Payments *PaymentService
	Admin    *AdminService
}

func NewServices(
	cfg *config.Config,
	repos *repository.Repositories,
	natsClient *messaging.NATSClient,
	cacheClient *cache.Client,
	searchClient *search.ElasticsearchClient,
	gatewayClient *external.GatewayClient,
) *Services {
	users := NewUserService(repos, cacheClient, searchClient, natsClient)
	bookings := NewBookingService(cfg, repos, natsClient, gatewayClient)

	return &Services{
		Auth:     NewAuthService(cfg, repos, cacheClient, natsClient),
		Users:    users,
		Catalog:  NewCatalogService(repos, searchClient, cfg.Booking.Currency),
		Bookings: bookings,
		Payments: NewPaymentService(cfg, repos, natsClient, gatewayClient),
		Admin:    NewAdminService(repos, natsClient, gatewayClient, users),
	}
}
