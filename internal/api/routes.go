package api

import (
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/roomofy/backend/internal/api/handlers"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/game"
	"github.com/roomofy/backend/internal/middleware"
	"github.com/roomofy/backend/internal/ws"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *sqlx.DB, mgr *game.GameManager, hub *ws.Hub, cfg *config.Config) {
	router.Use(middleware.CORSMiddleware(cfg))

	// Uploaded room photos are served statically
	router.Static("/uploads", cfg.UploadDir)

	// Auth
	auth := router.Group("/api/auth")
	{
		auth.POST("/signup", handlers.Signup(db))
		auth.POST("/login", handlers.Login(db, cfg))
	}

	// Room listings: reads are public, mutations require a session token
	router.GET("/rooms", handlers.ListRooms(db))
	rooms := router.Group("/rooms", middleware.RequireAuth(cfg))
	{
		rooms.POST("", handlers.CreateRoom(db, cfg))
		rooms.PUT("/:id", handlers.UpdateRoom(db, cfg))
		rooms.DELETE("/:id", handlers.DeleteRoom(db))
	}

	// API v1 group
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", handlers.HealthCheck)

		v1.GET("/wallet", middleware.RequireAuth(cfg), handlers.GetWallet(mgr))

		// Game WebSocket endpoint (token travels as a query parameter)
		v1.GET("/game/ws", middleware.WebSocketCORSCheck(cfg), ws.HandleWebSocket(hub, mgr, cfg))
	}
}
