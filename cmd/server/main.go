package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/roomofy/backend/internal/api"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/database"
	"github.com/roomofy/backend/internal/game"
	"github.com/roomofy/backend/internal/migrations"
	"github.com/roomofy/backend/internal/redis"
	"github.com/roomofy/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Run migrations on start if requested
	if os.Getenv("MIGRATE_ON_START") == "true" {
		log.Println("↗ Running DB migrations on startup...")
		if err := migrations.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
	}

	// Initialize Redis (optional: the game core runs without it)
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("Redis unavailable, running without snapshots: %v", err)
		rdb = nil
	} else {
		defer rdb.Close()
	}

	// Ensure the upload dir exists for room photos
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("Failed to create upload dir: %v", err)
	}

	// Wire the game core: ledger, manager, websocket hub
	ledger := game.NewLedger(cfg.StartingBalance)
	mgr := game.NewGameManager(ledger, db, rdb, cfg)

	hub := ws.NewHub()
	mgr.SetNotifier(hub)
	go hub.Run(mgr)
	ws.StartGameEventSubscriber(context.Background(), rdb, hub, mgr.InstanceID())

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Initialize API handlers
	api.SetupRoutes(router, db, mgr, hub, cfg)

	// Start server
	port := cfg.Port
	if port == "" {
		port = "5000"
	}

	log.Printf("Starting Roomofy server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
