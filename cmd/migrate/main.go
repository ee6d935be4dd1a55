package main

import (
	"flag"
	"log"

	"github.com/pantrybase/recipe-api/config"
	"github.com/pantrybase/recipe-api/internal/database"
)

func main() {
	dir := flag.String("dir", "migrations", "Directory containing migration files")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, *dir); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations applied")
}
