package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/shopspring/decimal"

	"github.com/pantrybase/recipe-api/config"
	"github.com/pantrybase/recipe-api/internal/database"
	"github.com/pantrybase/recipe-api/internal/models"
	"github.com/pantrybase/recipe-api/internal/service"
)

// Seeds a development database with an admin account, a demo account and a
// handful of recipes. Safe to run repeatedly.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme123"
	}
	if _, err := authService.CreateSuperuser("Admin", "admin@example.com", adminPassword); err != nil {
		if !errors.Is(err, service.ErrUserExists) {
			log.Fatalf("Failed to create admin user: %v", err)
		}
		log.Println("Admin user already exists")
	}

	demo, err := authService.CreateUser("Demo User", "demo@example.com", "demopass123")
	if err != nil {
		if !errors.Is(err, service.ErrUserExists) {
			log.Fatalf("Failed to create demo user: %v", err)
		}
		log.Println("Demo user already exists, skipping sample recipes")
		return
	}

	recipeService := service.NewRecipeService(db, nil)
	samples := []struct {
		title       string
		timeMinutes int
		price       string
		description string
		tags        []string
		ingredients []string
	}{
		{
			title:       "Thai prawn curry",
			timeMinutes: 25,
			price:       "9.50",
			description: "Red curry with king prawns and jasmine rice.",
			tags:        []string{"Dinner", "Spicy"},
			ingredients: []string{"Prawns", "Coconut milk", "Red curry paste"},
		},
		{
			title:       "Avocado toast",
			timeMinutes: 10,
			price:       "4.00",
			description: "Sourdough, smashed avocado, chili flakes.",
			tags:        []string{"Breakfast"},
			ingredients: []string{"Bread", "Avocado"},
		},
		{
			title:       "Chocolate brownies",
			timeMinutes: 45,
			price:       "6.25",
			description: "Fudgy, with dark chocolate chunks.",
			tags:        []string{"Dessert"},
			ingredients: []string{"Chocolate", "Butter", "Eggs", "Flour"},
		},
	}

	ctx := context.Background()
	for _, s := range samples {
		recipe := &models.Recipe{
			Title:       s.title,
			TimeMinutes: s.timeMinutes,
			Price:       decimal.RequireFromString(s.price),
			Description: s.description,
		}
		tags := make([]service.NamedRef, 0, len(s.tags))
		for _, name := range s.tags {
			tags = append(tags, service.NamedRef{Name: name})
		}
		ingredients := make([]service.NamedRef, 0, len(s.ingredients))
		for _, name := range s.ingredients {
			ingredients = append(ingredients, service.NamedRef{Name: name})
		}
		if _, err := recipeService.Create(ctx, demo.ID, recipe, tags, ingredients); err != nil {
			log.Fatalf("Failed to seed recipe %q: %v", s.title, err)
		}
		log.Printf("Seeded recipe %q", s.title)
	}
}
