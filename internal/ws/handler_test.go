package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/roomofy/backend/internal/config"
	"github.com/roomofy/backend/internal/game"
)

func testConfig() *config.Config {
	return &config.Config{
		StartingBalance:    1000,
		BoardSize:          8,
		WinLength:          3,
		PlatformFeePercent: 20,
		MinEntryFee:        1,
	}
}

// dialTestConn returns a live client-side connection backed by a throwaway
// server that accepts the upgrade and discards frames.
func dialTestConn(t *testing.T) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		go func() {
			defer conn.Close()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestReconnectDuringPoolFillDoesNotWedgeHub(t *testing.T) {
	mgr := game.NewGameManager(game.NewLedger(1000), nil, nil, testConfig())
	hub := NewHub()
	mgr.SetNotifier(hub)
	go hub.Run(mgr)

	newClient := func(handle, account string) *Client {
		return &Client{
			conn:      dialTestConn(t),
			handleID:  handle,
			accountID: account,
			send:      make(chan []byte, 256),
		}
	}
	hub.register <- newClient("h-alice-1", "alice")
	hub.register <- newClient("h-bob-1", "bob")

	pool, err := mgr.CreatePool("Duel", 100, 2)
	if err != nil {
		t.Fatalf("CreatePool failed: %v", err)
	}
	if _, err := mgr.JoinPool(pool.ID, "alice"); err != nil {
		t.Fatalf("first join failed: %v", err)
	}

	// Race alice's reconnect against bob's fill: the hub replaces her
	// connection while the manager is notifying both sides of the match.
	alice2 := newClient("h-alice-2", "alice")
	go func() {
		hub.register <- alice2
	}()
	done := make(chan error, 1)
	go func() {
		_, err := mgr.JoinPool(pool.ID, "bob")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second join failed: %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("JoinPool never returned while the hub was replacing a connection")
	}

	// Replacement settled: the old handle is released, the new one resolves.
	deadline := time.Now().Add(time.Second)
	for {
		_, oldLive := mgr.Lookup("h-alice-1")
		_, newLive := mgr.Lookup("h-alice-2")
		if !oldLive && newLive {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("session directory not settled: old=%v new=%v", oldLive, newLive)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if _, ok := mgr.MatchFor("alice"); !ok {
		t.Error("match was not created for alice")
	}
}
