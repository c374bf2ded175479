package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"helperhive/internal/config"
	"helperhive/internal/database"
	"helperhive/internal/logger"
	"helperhive/internal/models"
	"helperhive/internal/repository"
	"helperhive/internal/search"
	"helperhive/internal/service"
)

var pageSize = flag.Int("page-size", 200, "Providers fetched per database page")

func main() {
	flag.Parse()

	logger.Init("info", "text")
	slog.Info("Starting provider reindex...")
	start := time.Now()

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	searchClient, err := search.NewElasticsearchClient(cfg.Search)
	if err != nil {
		slog.Error("Failed to connect to Elasticsearch", "error", err)
		os.Exit(1)
	}

	repos := repository.New(db)
	users := service.NewUserService(repos, nil, searchClient, nil)

	ctx := context.Background()
	indexed, removed, failed := 0, 0, 0

	for page := 1; ; page++ {
		providers, _, err := repos.Users.List(ctx, models.RoleProvider, page, *pageSize)
		if err != nil {
			slog.Error("Failed to list providers", "error", err, "page", page)
			os.Exit(1)
		}
		if len(providers) == 0 {
			break
		}

		for _, provider := range providers {
			doc, err := users.BuildProviderDocument(ctx, provider.ID)
			if err != nil {
				slog.Error("Failed to build provider document", "error", err, "provider_id", provider.ID)
				failed++
				continue
			}
			if doc == nil {
				if err := searchClient.DeleteProvider(ctx, provider.ID); err != nil {
					slog.Error("Failed to remove provider from index", "error", err, "provider_id", provider.ID)
					failed++
					continue
				}
				removed++
				continue
			}
			if err := searchClient.IndexProvider(ctx, doc); err != nil {
				slog.Error("Failed to index provider", "error", err, "provider_id", provider.ID)
				failed++
				continue
			}
			indexed++
		}

		slog.Info("Processed page", "page", page, "providers", len(providers))
	}

	slog.Info("Provider reindex completed",
		"indexed", indexed,
		"removed", removed,
		"failed", failed,
		"duration", time.Since(start).Round(time.Millisecond))

	if failed > 0 {
		os.Exit(1)
	}
}
