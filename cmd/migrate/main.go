package main

import (
	"log"
	"os"

	"fisiqia-be/internal/model"
	"fisiqia-be/pkg/database"

	"github.com/joho/godotenv"
)

func main() {
	// 1. Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	driver := os.Getenv("STORAGE_DRIVER")
	if driver != database.DriverPostgres && driver != database.DriverSQLite {
		log.Fatalf("Error: STORAGE_DRIVER must be %q or %q to migrate, got %q", database.DriverPostgres, database.DriverSQLite, driver)
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	// 2. Connect
	db, err := database.NewGormDB(database.GormConfig{Driver: driver, DSN: dsn})
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	log.Printf("Starting GORM Migration (%s)...", driver)

	// 3. Pre-Migration: extensions (postgres only)
	if driver == database.DriverPostgres {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			log.Printf("Warn: Failed to create pgcrypto extension: %v. Continuing...", err)
		}
	}

	// 4. AutoMigrate
	log.Println("Running AutoMigrate for exchanges...")
	if err := database.Migrate(db, &model.Exchange{}); err != nil {
		log.Fatal("Error: Migration failed:", err)
	}

	log.Println("✅ Migration completed successfully")
}
