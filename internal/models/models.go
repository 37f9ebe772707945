package models

import (
	"database/sql"
	"time"
)

// User represents a registered account holder
type User struct {
	ID           int       `db:"id" json:"id"`
	Mobile       string    `db:"mobile" json:"mobile"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// Room represents a lodging listing
type Room struct {
	ID          int       `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Price       float64   `db:"price" json:"price"`
	AC          string    `db:"ac" json:"ac"`
	Location    string    `db:"location" json:"location"`
	Description string    `db:"description" json:"description,omitempty"`
	PhotoURL    string    `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// MatchRecord is the persisted outcome of a finished match
type MatchRecord struct {
	ID          int            `db:"id" json:"id"`
	MatchID     string         `db:"match_id" json:"match_id"`
	PoolTitle   string         `db:"pool_title" json:"pool_title"`
	Player1     string         `db:"player1" json:"player1"`
	Player2     string         `db:"player2" json:"player2"`
	Winner      sql.NullString `db:"winner" json:"winner,omitempty"`
	EntryFee    int64          `db:"entry_fee" json:"entry_fee"`
	PlatformFee int64          `db:"platform_fee" json:"platform_fee"`
	WinnerShare int64          `db:"winner_share" json:"winner_share"`
	Outcome     string         `db:"outcome" json:"outcome"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}
