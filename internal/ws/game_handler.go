package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/game"
	"github.com/roomofy/backend/internal/middleware"
)

// Message data types
type CreatePoolData struct {
	Title      string `json:"title"`
	EntryFee   int64  `json:"entry_fee"`
	MaxPlayers int    `json:"max_players"`
}

type JoinPoolData struct {
	PoolID string `json:"pool_id"`
}

type LeavePoolData struct {
	PoolID string `json:"pool_id"`
}

type MoveData struct {
	MatchID string `json:"match_id"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
}

type GetStateData struct {
	MatchID string `json:"match_id"`
}

// HandleWebSocket upgrades an authenticated connection and registers the
// session. The session token travels as a query parameter because browsers
// cannot set headers on WebSocket upgrades.
func HandleWebSocket(hub *Hub, mgr *game.GameManager, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}

		claims, err := middleware.ParseToken(tokenString, cfg.JWTSecret)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.Printf("[WS] Upgrade error: %v", err)
			return
		}

		client := &Client{
			conn:      conn,
			handleID:  uuid.NewString(),
			accountID: strconv.Itoa(claims.UserID),
			send:      make(chan []byte, 256),
		}

		hub.register <- client

		go client.writePump()
		go client.readPump(hub, mgr)
	}
}

// Run drives the hub loop: connection registration, reconnect replacement
// and disconnect cleanup through the session directory.
func (h *Hub) Run(mgr *game.GameManager) {
	for {
		select {
		case client := <-h.register:
			var replacedHandle string
			h.mu.Lock()
			if oldClient, exists := h.clients[client.accountID]; exists {
				log.Printf("[WS] Account %s reconnecting - closing old connection", client.accountID)
				if err := oldClient.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by new connection"), time.Now().Add(5*time.Second)); err != nil {
					log.Printf("Error writing close control to old client %s: %v", oldClient.accountID, err)
				}
				oldClient.conn.Close()
				select {
				case <-oldClient.send:
				default:
					close(oldClient.send)
				}
				delete(h.clients, client.accountID)
				replacedHandle = oldClient.handleID
			}
			h.clients[client.accountID] = client
			h.mu.Unlock()

			// Manager calls happen outside h.mu: the manager notifies
			// through SendToPlayer, which takes the same lock.
			if replacedHandle != "" {
				mgr.ReleaseHandle(replacedHandle)
			}

			balance, created := mgr.Register(client.handleID, client.accountID)
			log.Printf("[WS] Account %s connected (handle=%s, new=%v)", client.accountID, client.handleID, created)

			data, _ := json.Marshal(map[string]interface{}{
				"type":       "registered",
				"account_id": client.accountID,
				"balance":    balance,
			})
			client.send <- data

		case client := <-h.unregister:
			h.mu.Lock()
			current := false
			if cur, ok := h.clients[client.accountID]; ok && cur == client {
				current = true
				delete(h.clients, client.accountID)
				select {
				case <-client.send:
				default:
					close(client.send)
				}
			}
			h.mu.Unlock()

			// A replaced connection unregisters too; only the current one
			// tears down the session, otherwise a reconnect would forfeit
			// the player's live match.
			if current {
				log.Printf("[WS] Account %s disconnected (handle=%s)", client.accountID, client.handleID)
				mgr.Disconnect(client.handleID)
			}
		}
	}
}

// readPump reads and dispatches client messages.
func (c *Client) readPump(hub *Hub, mgr *game.GameManager) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(65536)
	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error (unexpected) for account %s: %v", c.accountID, err)
			} else {
				log.Printf("WebSocket read error for account %s: %v", c.accountID, err)
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		c.handleMessage(mgr, msg)
	}
}

// handleMessage processes one incoming message. Internal faults are caught
// here so a single bad message cannot take the process down.
func (c *Client) handleMessage(mgr *game.GameManager, msg WSMessage) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[WS] Panic handling %q from account %s: %v", msg.Type, c.accountID, r)
			c.sendError("internal_error", "internal error")
		}
	}()

	switch msg.Type {
	case "get_wallet":
		balance, txs := mgr.Wallet(c.accountID)
		c.sendJSON(map[string]interface{}{
			"type":         "wallet",
			"balance":      balance,
			"transactions": txs,
		})

	case "create_pool":
		var data CreatePoolData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_request", "invalid pool data")
			return
		}
		pool, err := mgr.CreatePool(data.Title, data.EntryFee, data.MaxPlayers)
		if err != nil {
			c.sendError(game.ErrorCode(err), err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "pool_created", "pool": pool})

	case "list_pools":
		c.sendJSON(map[string]interface{}{"type": "pools", "pools": mgr.ListOpenPools()})

	case "join_pool":
		var data JoinPoolData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_request", "invalid join data")
			return
		}
		pool, err := mgr.JoinPool(data.PoolID, c.accountID)
		if err != nil {
			c.sendError(game.ErrorCode(err), err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "pool_update", "pool": pool})

	case "leave_pool":
		var data LeavePoolData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_request", "invalid leave data")
			return
		}
		if err := mgr.LeavePool(data.PoolID, c.accountID); err != nil {
			c.sendError(game.ErrorCode(err), err.Error())
			return
		}
		c.sendJSON(map[string]interface{}{"type": "pool_left", "pool_id": data.PoolID})

	case "move":
		var data MoveData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_request", "invalid move data")
			return
		}
		matchID := data.MatchID
		if matchID == "" {
			matchID, _ = mgr.MatchFor(c.accountID)
		}
		if err := mgr.ApplyMove(matchID, c.accountID, data.Row, data.Col); err != nil {
			c.sendError(game.ErrorCode(err), err.Error())
		}

	case "get_state":
		var data GetStateData
		if err := json.Unmarshal(msg.Data, &data); err != nil {
			c.sendError("invalid_request", "invalid state request")
			return
		}
		matchID := data.MatchID
		if matchID == "" {
			matchID, _ = mgr.MatchFor(c.accountID)
		}
		state, err := mgr.MatchState(matchID, c.accountID)
		if err != nil {
			c.sendError(game.ErrorCode(err), err.Error())
			return
		}
		state["type"] = "game_state"
		c.sendJSON(state)

	default:
		c.sendError("invalid_request", "unknown message type")
	}
}

func (c *Client) sendJSON(message interface{}) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("Error marshaling message: %v", err)
		return
	}
	select {
	case c.send <- data:
	default:
		log.Printf("[WS] Dropped message for account %s (buffer full)", c.accountID)
	}
}
