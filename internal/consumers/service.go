package consumers

import (
	"context"
	"log/slog"

	"helperhive/internal/config"
	"helperhive/internal/database"
	"helperhive/internal/external"
	"helperhive/internal/messaging"
	"helperhive/internal/models"
	"helperhive/internal/repository"
)

// ConsumerService runs the background side of the platform: notification
// delivery and event bookkeeping, fed by durable queue subscriptions.
type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	repos    *repository.Repositories
	handlers *Handlers
}

func NewConsumerService(cfg *config.Config) (*ConsumerService, error) {
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, err
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		return nil, err
	}

	repos := repository.New(db)
	notifyClient := external.NewNotifyClient(cfg.Notify)
	handlers := NewHandlers(repos, notifyClient, natsClient)

	return &ConsumerService{
		db:       db,
		nats:     natsClient,
		repos:    repos,
		handlers: handlers,
	}, nil
}

// Repos exposes the repositories for background jobs sharing this service's
// connection pool.
func (cs *ConsumerService) Repos() *repository.Repositories {
	return cs.repos
}

func (cs *ConsumerService) NATS() *messaging.NATSClient {
	return cs.nats
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	_, err := cs.nats.SubscribeQueue(models.EventNotificationSend, "workers", cs.handlers.HandleNotificationSend)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingCreated, "workers", cs.handlers.HandleBookingCreated)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingResponse, "workers", cs.handlers.HandleBookingResponse)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventBookingEmergency, "workers", cs.handlers.HandleEmergency)
	if err != nil {
		return err
	}

	_, err = cs.nats.SubscribeQueue(models.EventPaymentConfirmed, "workers", cs.handlers.HandlePaymentConfirmed)
	if err != nil {
		return err
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
