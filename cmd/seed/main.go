package main

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"parkwise/internal/drivers"
	"parkwise/internal/shared/config"
	"parkwise/internal/shared/database"
	"parkwise/internal/spots"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Parkwise Database Seeder...")

	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	// Clean database
	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	// Seed data
	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(cfg); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"spots",
		"drivers",
	}

	for _, table := range tables {
		fmt.Printf("  Truncating table: %s\n", table)
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate table %s: %w", table, err)
		}
	}

	return nil
}

// SeedAll seeds the driver directory and the facility spot grid
func (s *Seeder) SeedAll(cfg *config.Config) error {
	ctx := context.Background()

	if err := s.SeedDrivers(); err != nil {
		return fmt.Errorf("failed to seed drivers: %w", err)
	}

	if err := s.SeedSpots(cfg); err != nil {
		return fmt.Errorf("failed to seed spots: %w", err)
	}

	// Clear Redis cache to ensure fresh state
	if err := s.db.Redis.FlushDB(ctx).Err(); err != nil {
		log.Printf("Warning: Failed to clear Redis cache: %v", err)
	}

	return nil
}

// Fleet plates registered with the facility. One of them belongs to a VIP
// whose arrivals the simulator exercises heavily.
var fleetPlates = []string{
	"532-12-901", "88-451-23", "601-58-302", "45-920-11", "770-19-405",
	"12-654-89", "332-90-501", "99-123-66", "505-44-112", "67-890-33",
	"202-33-404", "71-234-56", "909-12-888", "15-678-90", "440-55-606",
	"89-012-34", "111-22-333", "23-456-78", "665-77-808", "90-123-45",
	"321-65-498", "54-321-09", "876-54-321", "76-543-21", "102-93-847",
	"19-283-74", "657-48-392", "10-293-84", "847-56-102", "39-485-76",
	"506-17-283",
}

var firstNames = []string{
	"Avery", "Blake", "Casey", "Devon", "Elliot", "Frankie", "Gray",
	"Harper", "Indigo", "Jordan", "Kai", "Lennon", "Morgan", "Noa",
	"Oakley", "Parker", "Quinn", "Riley", "Sage", "Taylor", "Uma",
	"Val", "Wren", "Xen", "Yael", "Zion", "Ari", "Bex", "Cove", "Dru",
	"Ember",
}

// SeedDrivers registers the fleet plates in the driver directory
func (s *Seeder) SeedDrivers() error {
	fmt.Println("  🚗 Seeding drivers...")

	for i, plate := range fleetPlates {
		name := firstNames[i%len(firstNames)]
		driver := drivers.Driver{
			LicensePlate: plate,
			Name:         name,
			Email:        fmt.Sprintf("%s.%s@parkwise.io", strings.ToLower(name), strings.ReplaceAll(plate, "-", "")),
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}

		if err := s.db.PostgreSQL.Create(&driver).Error; err != nil {
			return fmt.Errorf("failed to create driver %s: %w", plate, err)
		}

		fmt.Printf("    ✅ Registered driver: %s (%s)\n", driver.Name, driver.LicensePlate)
	}

	return nil
}

// SeedSpots writes the configured facility grid into the durable mirror so a
// fresh server restores a fully known lot
func (s *Seeder) SeedSpots(cfg *config.Config) error {
	fmt.Println("  🅿️ Seeding spots...")

	count := 0
	for f := 1; f <= cfg.Parking.Floors; f++ {
		for r := 0; r < cfg.Parking.Rows; r++ {
			for c := 0; c < cfg.Parking.Cols; c++ {
				spot := spots.Spot{
					ID: fmt.Sprintf("F%d-R%d-C%d", f, r, c),
					Location: spots.Location{
						Floor: -f,
						Row:   r,
						Col:   c,
					},
					Status:        spots.StatusFree,
					LocationKnown: true,
					UpdatedAt:     time.Now(),
				}

				if err := s.db.PostgreSQL.Create(&spot).Error; err != nil {
					return fmt.Errorf("failed to create spot %s: %w", spot.ID, err)
				}
				count++
			}
		}
	}

	fmt.Printf("    ✅ Created %d spots across %d floors\n", count, cfg.Parking.Floors)
	return nil
}
