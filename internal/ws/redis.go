package ws

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

// StartGameEventSubscriber subscribes to the game_events channel and relays
// terminal match events to connected clients. The game manager publishes on
// this channel when a match settles, so an instance that did not host the
// match can still inform its own connections. Events carrying our own
// origin id are skipped; those were already delivered locally.
func StartGameEventSubscriber(ctx context.Context, rdb *redis.Client, hub *Hub, instanceID string) {
	if rdb == nil {
		log.Println("[WS] Redis client not set; game event subscriber not started")
		return
	}

	pubsub := rdb.Subscribe(ctx, "game_events")
	ch := pubsub.Channel()
	go func() {
		log.Println("[WS] game_events subscriber started")
		for msg := range ch {
			var payload map[string]interface{}
			if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
				log.Printf("[WS] invalid game event payload: %v", err)
				continue
			}

			if origin, _ := payload["origin"].(string); origin == instanceID {
				continue
			}
			typeStr, _ := payload["type"].(string)
			if typeStr != "game_over" {
				continue
			}

			participants, _ := payload["participants"].([]interface{})
			for _, p := range participants {
				accountID, ok := p.(string)
				if !ok || accountID == "" {
					continue
				}
				hub.mu.RLock()
				_, connected := hub.clients[accountID]
				hub.mu.RUnlock()
				if connected {
					hub.SendToPlayer(accountID, payload)
				}
			}
		}
	}()
}
