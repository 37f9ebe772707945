package handlers

import (
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/models"
)

// ListRooms returns all room listings.
func ListRooms(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		rooms := []models.Room{}
		err := db.Select(&rooms, `SELECT id, title, price, ac, location, description, photo_url, created_at, updated_at FROM rooms ORDER BY created_at DESC`)
		if err != nil {
			log.Printf("[ROOMS] List failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch rooms"})
			return
		}
		c.JSON(http.StatusOK, rooms)
	}
}

// CreateRoom adds a new listing. Expects a multipart form with a required
// photo file, saved under the upload dir and served statically.
func CreateRoom(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		title := c.PostForm("title")
		location := c.PostForm("location")
		description := c.PostForm("description")
		ac := c.PostForm("ac")

		if title == "" || location == "" || (ac != "AC" && ac != "Non-AC") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title, location and AC/Non-AC are required"})
			return
		}

		price, err := strconv.ParseFloat(c.PostForm("price"), 64)
		if err != nil || price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a valid positive number"})
			return
		}

		file, err := c.FormFile("photo")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "room photo is required"})
			return
		}
		photoURL, err := savePhoto(c, cfg, file.Filename)
		if err != nil {
			log.Printf("[ROOMS] Photo save failed: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "file upload error"})
			return
		}

		var room models.Room
		err = db.Get(&room, `
			INSERT INTO rooms (title, price, ac, location, description, photo_url, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
			RETURNING id, title, price, ac, location, description, photo_url, created_at, updated_at`,
			title, price, ac, location, description, photoURL)
		if err != nil {
			log.Printf("[ROOMS] Insert failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add room"})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"message": "room successfully posted", "room": room})
	}
}

// UpdateRoom modifies an existing listing; the photo is optional on update.
func UpdateRoom(db *sqlx.DB, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}

		title := c.PostForm("title")
		location := c.PostForm("location")
		description := c.PostForm("description")
		ac := c.PostForm("ac")
		price, err := strconv.ParseFloat(c.PostForm("price"), 64)
		if err != nil || price <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "price must be a valid positive number"})
			return
		}

		photoURL := ""
		if file, err := c.FormFile("photo"); err == nil {
			photoURL, err = savePhoto(c, cfg, file.Filename)
			if err != nil {
				log.Printf("[ROOMS] Photo save failed: %v", err)
				c.JSON(http.StatusBadRequest, gin.H{"error": "file upload error"})
				return
			}
		}

		var room models.Room
		err = db.Get(&room, `
			UPDATE rooms
			SET title=$1, price=$2, ac=$3, location=$4, description=$5,
			    photo_url=CASE WHEN $6 <> '' THEN $6 ELSE photo_url END,
			    updated_at=NOW()
			WHERE id=$7
			RETURNING id, title, price, ac, location, description, photo_url, created_at, updated_at`,
			title, price, ac, location, description, photoURL, id)
		if err == sql.ErrNoRows {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}
		if err != nil {
			log.Printf("[ROOMS] Update failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update room"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "room updated successfully", "room": room})
	}
}

// DeleteRoom removes a listing.
func DeleteRoom(db *sqlx.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid room id"})
			return
		}

		res, err := db.Exec(`DELETE FROM rooms WHERE id=$1`, id)
		if err != nil {
			log.Printf("[ROOMS] Delete failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
			return
		}
		if n, _ := res.RowsAffected(); n == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "room deleted successfully"})
	}
}

// savePhoto stores an uploaded photo with a timestamp-prefixed name and
// returns the public URL it will be served from.
func savePhoto(c *gin.Context, cfg *config.Config, original string) (string, error) {
	filename := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(original))
	dst := filepath.Join(cfg.UploadDir, filename)

	file, err := c.FormFile("photo")
	if err != nil {
		return "", err
	}
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/uploads/%s", cfg.BaseURL, filename), nil
}
