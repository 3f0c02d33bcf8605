package main

import (
	"database/sql"
	"log"
	"missing-maps-service/internal/adapters/repositories"
	"missing-maps-service/internal/config"
	"missing-maps-service/internal/platform/db"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"
)

// dbtool creates the schema and loads the seed file without starting the server.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	driver := strings.ToLower(config.Get("DB_DRIVER", "postgres"))
	dsn := os.Getenv("DATABASE_URL")
	if driver == "sqlite" {
		dsn = config.Get("DB_PATH", "data/app.db")
	}
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	dialect, err := repositories.ParseDialect(driver)
	if err != nil {
		log.Fatal(err)
	}

	database, err := db.OpenDriver(driver, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer database.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/missing_maps.json")
	initAndSeed(database, dialect, seedPath)
}

func initAndSeed(database *sql.DB, dialect repositories.Dialect, seedPath string) {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(database); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(database, dialect, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
