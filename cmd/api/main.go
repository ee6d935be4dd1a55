package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pantrybase/recipe-api/config"
	"github.com/pantrybase/recipe-api/internal/api"
	"github.com/pantrybase/recipe-api/internal/database"
	"github.com/pantrybase/recipe-api/internal/middleware"
	"github.com/pantrybase/recipe-api/internal/router"
	"github.com/pantrybase/recipe-api/internal/server"
	"github.com/pantrybase/recipe-api/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	waitCtx, cancelWait := context.WithTimeout(context.Background(), time.Minute)
	if err := database.WaitForDatabase(waitCtx, cfg); err != nil {
		log.Fatalf("Database never became available: %v", err)
	}
	cancelWait()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db, "migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	var images service.ImageStore
	switch cfg.StorageBackend {
	case "s3":
		s3cfg, err := config.NewS3Config(context.Background())
		if err != nil {
			log.Fatalf("Failed to configure S3 storage: %v", err)
		}
		images = service.NewS3ImageStore(s3cfg)
	default:
		images = service.NewLocalImageStore(cfg.MediaDir, cfg.MediaBaseURL)
	}

	var rateLimiter *middleware.RateLimiter
	if cfg.RedisURL != "" || cfg.RedisHost != "" {
		redisClient, err := database.NewRedisClient(cfg)
		if err != nil {
			log.Printf("Redis unavailable, image upload rate limiting disabled: %v", err)
		} else {
			rateLimiter = middleware.NewRateLimiter(redisClient, middleware.RateLimitConfig{
				Window:    time.Minute,
				Limit:     30,
				KeyPrefix: "ratelimit:upload",
			})
		}
	}

	authService := service.NewAuthService(db, cfg.JWTSecret)
	recipeService := service.NewRecipeService(db, images)
	tagService := service.NewTagService(db)
	ingredientService := service.NewIngredientService(db)

	r := router.Setup(
		db,
		api.NewAuthHandler(authService),
		api.NewRecipeHandler(recipeService, rateLimiter),
		api.NewTagHandler(tagService),
		api.NewIngredientHandler(ingredientService),
		authService,
	)

	if cfg.StorageBackend == "local" {
		r.Static(cfg.MediaBaseURL, cfg.MediaDir)
	}

	srv := server.New(r, ":"+cfg.ServerPort)

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Starting server on :%s...", cfg.ServerPort)
		errChan <- srv.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
