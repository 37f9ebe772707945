package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/roomofy/backend/internal/game"
	"github.com/roomofy/backend/internal/middleware"
)

// GetWallet returns the authenticated user's balance and statement,
// most recent transaction first.
func GetWallet(mgr *game.GameManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := middleware.ClaimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}

		balance, txs := mgr.Wallet(strconv.Itoa(claims.UserID))
		c.JSON(http.StatusOK, gin.H{
			"balance":      balance,
			"transactions": txs,
		})
	}
}
