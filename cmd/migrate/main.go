package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"bazaar-chat/config"
	"bazaar-chat/internal/domain/listing"
	"bazaar-chat/internal/domain/message"
	"bazaar-chat/internal/domain/user"
	"bazaar-chat/pkg/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const usage = `
Bazaar Chat - Database CLI Tool

Usage:
  migrate [command]

Commands:
  up          Run GORM migrations
  status      Show database connection status
  seed-dev    Seed with development/test data

Examples:
  go run cmd/migrate/main.go up
  go run cmd/migrate/main.go seed-dev
`

func main() {
	flag.Usage = func() {
		fmt.Print(usage)
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg := config.LoadConfig()
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch flag.Arg(0) {
	case "up":
		runMigrationsUp(db)
	case "status":
		showStatus(db)
	case "seed-dev":
		runSeedDevelopment(db)
	default:
		fmt.Printf("Unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

func runMigrationsUp(db *gorm.DB) {
	log.Println("Running migrations...")
	if err := db.AutoMigrate(&user.User{}, &listing.Listing{}, &message.Message{}); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migrations completed successfully")
}

func showStatus(db *gorm.DB) {
	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Database connection: OK")

	for _, table := range []string{"users", "listings", "messages"} {
		if !db.Migrator().HasTable(table) {
			log.Printf("Table %-12s does not exist", table)
			continue
		}
		var count int64
		db.Table(table).Count(&count)
		log.Printf("Table %-12s exists (%d rows)", table, count)
	}
}

func runSeedDevelopment(db *gorm.DB) {
	log.Println("Seeding development data...")

	alice := user.User{ID: uuid.New(), DisplayName: "Alice"}
	bob := user.User{ID: uuid.New(), DisplayName: "Bob"}
	if err := db.Create(&alice).Error; err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	if err := db.Create(&bob).Error; err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	lst := listing.Listing{
		ID:         uuid.New(),
		SellerID:   alice.ID,
		Title:      "Vintage bicycle",
		PriceCents: 12500,
		ImageURLs:  `["https://cdn.example.com/bike.jpg"]`,
		CreatedAt:  time.Now().UTC(),
	}
	if err := db.Create(&lst).Error; err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Seeded users %s, %s and listing %s", alice.ID, bob.ID, lst.ID)
}
