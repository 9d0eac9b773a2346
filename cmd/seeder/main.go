package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/mauv0809/court-call/internal/club"
	"github.com/mauv0809/court-call/internal/database"
)

// Simplified config loading for the script
func loadConfig() (dbName, migrationsDir string) {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	dbName = os.Getenv("DB_NAME")
	if dbName == "" {
		dbName = "court-call.db"
	}
	migrationsDir = os.Getenv("MIGRATIONS_DIR")
	if migrationsDir == "" {
		migrationsDir = "./migrations"
	}
	return dbName, migrationsDir
}

func main() {
	log.Info("Starting database seeder...")
	dbName, migrationsDir := loadConfig()

	db, teardown, err := database.InitDB(dbName, os.Getenv("TURSO_PRIMARY_URL"), os.Getenv("TURSO_AUTH_TOKEN"), migrationsDir)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	store := club.New(db)

	// A small roster spanning the rating bands, enough for two courts.
	roster := []club.PlayerInfo{
		{ID: "player-01", Name: "Seeder Player A", Rating: 1350, GamesPlayed: 42},
		{ID: "player-02", Name: "Seeder Player B", Rating: 1220, GamesPlayed: 31},
		{ID: "player-03", Name: "Seeder Player C", Rating: 1180, GamesPlayed: 25},
		{ID: "player-04", Name: "Seeder Player D", Rating: 1100, GamesPlayed: 18},
		{ID: "player-05", Name: "Seeder Player E", Rating: 1050, GamesPlayed: 12},
		{ID: "player-06", Name: "Seeder Player F", Rating: 980, GamesPlayed: 9},
		{ID: "player-07", Name: "Seeder Player G", Rating: 920, GamesPlayed: 4},
		{ID: "player-08", Name: "Seeder Player H", Rating: 1000, GamesPlayed: 0, CalibrationEventsRemaining: 5},
	}

	if err := store.UpsertPlayers(roster); err != nil {
		log.Fatalf("Failed to seed players: %s", err)
	}

	for _, p := range roster {
		fmt.Printf("seeded %s (%s) rating=%d\n", p.ID, p.Name, p.Rating)
	}
	log.Info("Seeding complete.", "players", len(roster))
}
