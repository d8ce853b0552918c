package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/Wikid82/autosource/backend/internal/config"
	"github.com/Wikid82/autosource/backend/internal/database"
	"github.com/Wikid82/autosource/backend/internal/models"
	"github.com/Wikid82/autosource/backend/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}
	fmt.Println("✓ Database migrated successfully")

	ctx := context.Background()
	limits := cfg.Limits()
	audit := services.NewAuditService(db, limits)
	listings := services.NewListingService(db, audit, limits)
	leads := services.NewLeadService(db, audit, limits)
	auth := services.NewAuthService(db, cfg, audit)

	email := envOr("AUTOSRC_SEED_ADMIN_EMAIL", "admin@autosource.local")
	password := envOr("AUTOSRC_SEED_ADMIN_PASSWORD", "changeme123")
	admin, err := auth.EnsureAdmin(email, password, "Administrator")
	if err != nil {
		log.Fatal("Failed to create admin:", err)
	}
	fmt.Printf("✓ Admin account: %s\n", admin.Email)

	var existing int64
	db.Model(&models.Listing{}).Count(&existing)
	if existing > 0 {
		fmt.Printf("  Catalog already has %d listings, skipping stock seed\n", existing)
		return
	}

	drafts := []services.ListingInput{
		{Brand: "BMW", Model: "320d Touring", Year: 2019, Price: 24900, Mileage: 68000, Fuel: "DIESEL", Gearbox: "AUTOMATIC", Body: "ESTATE", Country: "DE",
			Images: []string{"https://cdn.autosource.local/bmw-320d/1.jpg", "https://cdn.autosource.local/bmw-320d/2.jpg"}},
		{Brand: "Audi", Model: "A4 Avant", Year: 2020, Price: 27500, Mileage: 52000, Fuel: "PETROL", Gearbox: "AUTOMATIC", Body: "ESTATE", Country: "DE"},
		{Brand: "Volkswagen", Model: "Golf", Year: 2018, Price: 14900, Mileage: 91000, Fuel: "PETROL", Gearbox: "MANUAL", Body: "HATCHBACK", Country: "NL"},
		{Brand: "Tesla", Model: "Model 3", Year: 2021, Price: 31900, Mileage: 40000, Fuel: "ELECTRIC", Gearbox: "AUTOMATIC", Body: "SEDAN", Country: "BE"},
		{Brand: "Skoda", Model: "Octavia", Year: 2017, Price: 11500, Mileage: 120000, Fuel: "DIESEL", Gearbox: "MANUAL", Body: "ESTATE", Country: "CZ"},
		{Brand: "Toyota", Model: "RAV4 Hybrid", Year: 2022, Price: 36900, Mileage: 21000, Fuel: "HYBRID", Gearbox: "AUTOMATIC", Body: "SUV", Country: "FR"},
	}
	created, err := listings.Import(ctx, drafts, admin.Email)
	if err != nil {
		log.Fatal("Failed to import listings:", err)
	}

	ids := make([]string, 0, len(created)-1)
	for _, l := range created[:len(created)-1] {
		ids = append(ids, l.ID)
	}
	if _, err := listings.BulkUpdateStatus(ctx, ids, models.ListingStatusPublished, admin.Email); err != nil {
		log.Fatal("Failed to publish listings:", err)
	}
	fmt.Printf("✓ Seeded %d listings (%d published)\n", len(created), len(ids))

	inputs := []services.LeadInput{
		{Contact: "anna@example.com", Source: "vehicle_detail", ListingID: created[0].ID},
		{VehicleInterest: "Porsche 911 (991)", Budget: "80000", Contact: "+49 170 5550101", Source: "sourcing"},
		{VehicleInterest: "Family SUV", Budget: "35000", Contact: "marc@example.com", Source: "contact"},
	}
	for i, in := range inputs {
		lead, err := leads.Create(ctx, in)
		if err != nil {
			log.Fatal("Failed to create lead:", err)
		}
		if i == 1 {
			if _, err := leads.Transition(ctx, lead.ID, string(models.LeadStatusQualified), admin.Email); err != nil {
				log.Fatal("Failed to qualify lead:", err)
			}
		}
	}
	fmt.Printf("✓ Seeded %d leads\n", len(inputs))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
