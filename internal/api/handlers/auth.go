package handlers

import (
	"database/sql"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/jmoiron/sqlx"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/middleware"
	"github.com/roomofy/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type credentialsRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
}

// Signup registers a new user with a hashed password.
func Signup(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mobile and password required"})
			return
		}
		mobile := strings.TrimSpace(req.Mobile)
		if mobile == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mobile and password required"})
			return
		}

		var exists bool
		if err := db.Get(&exists, `SELECT EXISTS (SELECT 1 FROM users WHERE mobile=$1)`, mobile); err != nil {
			log.Printf("[AUTH] Signup lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
			return
		}
		if exists {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mobile already registered"})
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[AUTH] Password hash failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
			return
		}

		if _, err := db.Exec(`INSERT INTO users (mobile, password_hash, created_at) VALUES ($1, $2, NOW())`, mobile, string(hash)); err != nil {
			log.Printf("[AUTH] Signup insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during signup"})
			return
		}

		log.Printf("[AUTH] User %s registered", mobile)
		c.JSON(http.StatusCreated, gin.H{"message": "user registered successfully"})
	}
}

// Login verifies credentials and issues a signed session token.
func Login(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req credentialsRequest
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mobile and password required"})
			return
		}
		mobile := strings.TrimSpace(req.Mobile)
		if mobile == "" || req.Password == "" {
			c.JSON(http.StatusBadRequest, gin.H{"message": "mobile and password required"})
			return
		}

		var user models.User
		err := db.Get(&user, `SELECT id, mobile, password_hash, is_admin, created_at FROM users WHERE mobile=$1`, mobile)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid mobile or password"})
			return
		}
		if err != nil {
			log.Printf("[AUTH] Login lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login"})
			return
		}

		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid mobile or password"})
			return
		}

		claims := middleware.Claims{
			UserID:  user.ID,
			Mobile:  user.Mobile,
			IsAdmin: user.IsAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(cfg.TokenExpiryHours) * time.Hour)),
				IssuedAt:  jwt.NewNumericDate(time.Now()),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.JWTSecret))
		if err != nil {
			log.Printf("[AUTH] Token signing failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "server error during login"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"token": token,
			"user":  gin.H{"mobile": user.Mobile, "is_admin": user.IsAdmin},
		})
	}
}
