package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helperhive/cmd/consumers/jobs"
	"helperhive/internal/config"
	"helperhive/internal/consumers"
	"helperhive/internal/logger"
)

func main() {
	log.Println("Starting consumers service...")

	cfg := config.Load()
	cfg.NATS.ClientID = "helperhive-consumers"

	logger.Init(cfg.LogLevel, cfg.LogFormat)

	consumerService, err := consumers.NewConsumerService(cfg)
	if err != nil {
		log.Fatalf("Failed to create consumer service: %v", err)
	}

	if err := consumerService.Start(); err != nil {
		log.Fatalf("Failed to start consumers: %v", err)
	}

	jobCtx, cancelJobs := context.WithCancel(context.Background())
	payoutJob := jobs.NewPayoutJob(consumerService.Repos(), consumerService.NATS(), cfg.Payouts.Interval)
	payoutJob.Start(jobCtx)

	log.Println("Consumers service started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down consumers service...")

	payoutJob.Stop()
	cancelJobs()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Consumers service stopped")
}
