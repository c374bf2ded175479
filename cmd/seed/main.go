package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"helperhive/internal/config"
	"helperhive/internal/database"
	"helperhive/internal/logger"
	"helperhive/internal/models"
	"helperhive/internal/repository"
)

var dryRun = flag.Bool("dry-run", false, "Show what would be seeded without making changes")

type seedService struct {
	models.Service
	AddOns []seedAddOn
}

type seedAddOn struct {
	Name        string
	Description string
	Price       int64
}

// Catalog baseline. Prices are in cents.
var catalog = []seedService{
	{
		Service: models.Service{
			Name: "Standard Home Cleaning", Description: "General cleaning of living areas, kitchen and bathrooms",
			Category: "cleaning", Subcategory: "standard", Icon: "broom",
			BasePrice: 35000, PricingType: "hourly", Currency: "ZAR", DurationMin: 120, DurationMax: 240,
		},
		AddOns: []seedAddOn{
			{Name: "Inside fridge", Description: "Empty and wipe down the fridge interior", Price: 5000},
			{Name: "Inside oven", Description: "Degrease and clean the oven", Price: 7500},
			{Name: "Interior windows", Description: "Clean reachable interior windows", Price: 6000},
		},
	},
	{
		Service: models.Service{
			Name: "Deep Cleaning", Description: "Intensive top-to-bottom clean including skirtings and fittings",
			Category: "cleaning", Subcategory: "deep", Icon: "sparkles",
			BasePrice: 65000, PricingType: "fixed", Currency: "ZAR", DurationMin: 240, DurationMax: 480,
		},
		AddOns: []seedAddOn{
			{Name: "Carpet shampoo", Description: "Shampoo one room of carpets", Price: 15000},
		},
	},
	{
		Service: models.Service{
			Name: "Plumbing Call-out", Description: "Diagnosis and repair of leaks, blockages and fittings",
			Category: "plumbing", Subcategory: "repair", Icon: "wrench",
			BasePrice: 55000, PricingType: "hourly", Currency: "ZAR", DurationMin: 60, DurationMax: 180,
		},
	},
	{
		Service: models.Service{
			Name: "Geyser Installation", Description: "Supply-side installation of a replacement geyser",
			Category: "plumbing", Subcategory: "installation", Icon: "water-heater",
			BasePrice: 180000, PricingType: "fixed", Currency: "ZAR", DurationMin: 180, DurationMax: 360,
		},
	},
	{
		Service: models.Service{
			Name: "Electrical Fault Finding", Description: "Tracing and repair of tripping circuits and dead plugs",
			Category: "electrical", Subcategory: "repair", Icon: "bolt",
			BasePrice: 60000, PricingType: "hourly", Currency: "ZAR", DurationMin: 60, DurationMax: 240,
		},
	},
	{
		Service: models.Service{
			Name: "Garden Maintenance", Description: "Mowing, edging, weeding and general tidy-up",
			Category: "gardening", Subcategory: "maintenance", Icon: "leaf",
			BasePrice: 30000, PricingType: "hourly", Currency: "ZAR", DurationMin: 120, DurationMax: 300,
		},
		AddOns: []seedAddOn{
			{Name: "Green waste removal", Description: "Haul away cuttings and clippings", Price: 10000},
		},
	},
	{
		Service: models.Service{
			Name: "Handyman Visit", Description: "Small repairs, mounting and assembly around the home",
			Category: "handyman", Subcategory: "general", Icon: "hammer",
			BasePrice: 45000, PricingType: "hourly", Currency: "ZAR", DurationMin: 60, DurationMax: 240,
		},
	},
}

func main() {
	flag.Parse()

	logger.Init("info", "text")
	slog.Info("Starting catalog seeder...")

	cfg := config.Load()
	db, err := database.Connect(cfg.Database)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	serviceRepo := repository.NewServiceRepository(db)

	existing, err := serviceRepo.List(ctx, "", false)
	if err != nil {
		slog.Error("Failed to inspect catalog", "error", err)
		os.Exit(1)
	}
	if len(existing) > 0 {
		slog.Info("Catalog already seeded, nothing to do", "services", len(existing))
		return
	}

	if *dryRun {
		slog.Info("Dry run, would seed catalog", "services", len(catalog))
		return
	}

	for i := range catalog {
		entry := &catalog[i]
		if err := serviceRepo.Create(ctx, &entry.Service); err != nil {
			slog.Error("Failed to seed service", "error", err, "name", entry.Name)
			os.Exit(1)
		}
		for _, addOn := range entry.AddOns {
			if _, err := serviceRepo.AddAddOn(ctx, entry.ID, addOn.Name, addOn.Description, addOn.Price); err != nil {
				slog.Error("Failed to seed add-on", "error", err, "service", entry.Name, "add_on", addOn.Name)
				os.Exit(1)
			}
		}
		slog.Info("Seeded service", "id", entry.ID, "name", entry.Name, "add_ons", len(entry.AddOns))
	}

	slog.Info("Catalog seeding completed", "services", len(catalog))
}
