package game

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/roomofy/backend/internal/config"
)

// Notifier delivers server events to a connected participant. The websocket
// hub implements it; tests substitute a recorder.
type Notifier interface {
	SendToPlayer(accountID string, message interface{})
}

// GameManager owns all live matchmaking and match state: the ledger, open
// pool entries, running matches and the session directory. Everything is
// injected at construction; nothing here reaches for package globals.
type GameManager struct {
	ledger        *Ledger
	pools         map[string]*PoolEntry
	matches       map[string]*Match
	playerToMatch map[string]string // account id -> match id
	sessions      map[string]string // connection handle -> account id
	notifier      Notifier
	db            *sqlx.DB      // persistent match records, optional
	rdb           *redis.Client // snapshots + event relay, optional
	config        *config.Config
	instanceID    string // identifies this process on the game_events channel
	mu            sync.RWMutex
}

// NewGameManager wires a manager around its dependencies. db and rdb may be
// nil; the core stays fully functional in memory.
func NewGameManager(ledger *Ledger, db *sqlx.DB, rdb *redis.Client, cfg *config.Config) *GameManager {
	return &GameManager{
		ledger:        ledger,
		pools:         make(map[string]*PoolEntry),
		matches:       make(map[string]*Match),
		playerToMatch: make(map[string]string),
		sessions:      make(map[string]string),
		db:            db,
		rdb:           rdb,
		config:        cfg,
		instanceID:    uuid.NewString(),
	}
}

// InstanceID identifies this process on the shared event channel, so a
// subscriber can skip events it already delivered locally.
func (gm *GameManager) InstanceID() string {
	return gm.instanceID
}

// SetNotifier attaches the event sink. Called once during bootstrap, before
// any connection is accepted.
func (gm *GameManager) SetNotifier(n Notifier) {
	gm.notifier = n
}

// Ledger exposes the wallet for the REST statement endpoint.
func (gm *GameManager) Ledger() *Ledger {
	return gm.ledger
}

func (gm *GameManager) sendToPlayer(accountID string, message interface{}) {
	if gm.notifier != nil {
		gm.notifier.SendToPlayer(accountID, message)
	}
}

// === Session directory ===

// Register binds a connection handle to an account and ensures the account
// exists in the ledger. Idempotent per account.
func (gm *GameManager) Register(handleID, accountID string) (balance int64, created bool) {
	gm.mu.Lock()
	gm.sessions[handleID] = accountID
	gm.mu.Unlock()

	balance, created = gm.ledger.EnsureAccount(accountID)
	log.Printf("[SESSION] Handle %s registered as account %s (balance=%d)", handleID, accountID, balance)
	return balance, created
}

// Lookup resolves a connection handle to its registered account.
func (gm *GameManager) Lookup(handleID string) (string, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	accountID, ok := gm.sessions[handleID]
	return accountID, ok
}

// ReleaseHandle drops a handle mapping without touching pools or matches.
// Used when a connection is replaced by a reconnect and the account stays
// live on the new handle.
func (gm *GameManager) ReleaseHandle(handleID string) {
	gm.mu.Lock()
	delete(gm.sessions, handleID)
	gm.mu.Unlock()
}

// Disconnect tears down a session: the handle mapping is dropped, the
// account is removed from any still-open pool, and a live match is forfeited
// to the opponent with full settlement.
func (gm *GameManager) Disconnect(handleID string) {
	gm.mu.Lock()
	accountID, ok := gm.sessions[handleID]
	if !ok {
		gm.mu.Unlock()
		return
	}
	delete(gm.sessions, handleID)

	for _, pool := range gm.pools {
		if pool.Status == PoolOpen && pool.hasParticipant(accountID) {
			pool.removeParticipant(accountID)
			log.Printf("[SESSION] Account %s removed from open pool %s on disconnect", accountID, pool.ID)
		}
	}
	matchID := gm.playerToMatch[accountID]
	match := gm.matches[matchID]
	gm.mu.Unlock()

	log.Printf("[SESSION] Handle %s (account %s) disconnected", handleID, accountID)

	if match == nil {
		return
	}
	winnerID := match.Forfeit(accountID)
	if winnerID == "" {
		return
	}
	log.Printf("[MATCH] Account %s forfeited match %s, %s wins", accountID, match.ID, winnerID)
	gm.settleWin(match, winnerID, true)
}

// === Wallet ===

// Wallet returns the balance and statement for an account, most recent
// transaction first.
func (gm *GameManager) Wallet(accountID string) (int64, []Transaction) {
	return gm.ledger.Statement(accountID)
}

// === Matchmaking pools ===

// CreatePool opens a new pool entry with an empty roster.
func (gm *GameManager) CreatePool(title string, entryFee int64, maxPlayers int) (*PoolSummary, error) {
	if entryFee <= 0 || entryFee < gm.config.MinEntryFee {
		return nil, ErrInvalidEntryFee
	}
	if maxPlayers <= 0 {
		maxPlayers = 2
	}
	pool := &PoolEntry{
		ID:         uuid.NewString(),
		Title:      title,
		EntryFee:   entryFee,
		MaxPlayers: maxPlayers,
		Status:     PoolOpen,
		CreatedAt:  time.Now(),
	}

	gm.mu.Lock()
	gm.pools[pool.ID] = pool
	gm.mu.Unlock()

	log.Printf("[POOL] Pool %s created: %q fee=%d max=%d", pool.ID, title, entryFee, maxPlayers)
	s := pool.summary()
	return &s, nil
}

// ListOpenPools returns summaries of every open pool entry.
func (gm *GameManager) ListOpenPools() []PoolSummary {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	out := make([]PoolSummary, 0, len(gm.pools))
	for _, pool := range gm.pools {
		if pool.Status == PoolOpen {
			out = append(out, pool.summary())
		}
	}
	return out
}

// JoinPool adds a participant to a pool. When the roster reaches capacity
// the pool transitions to full and match creation runs synchronously inside
// the same critical section: both entry fees are debited, and if any debit
// fails every fee already taken is refunded, the failing participant is
// removed, and the pool reverts to open.
func (gm *GameManager) JoinPool(poolID, accountID string) (*PoolSummary, error) {
	gm.mu.Lock()

	pool, ok := gm.pools[poolID]
	if !ok {
		gm.mu.Unlock()
		return nil, ErrPoolNotFound
	}
	if pool.Status != PoolOpen || len(pool.Participants) >= pool.MaxPlayers {
		gm.mu.Unlock()
		return nil, ErrPoolFull
	}
	if pool.hasParticipant(accountID) {
		gm.mu.Unlock()
		return nil, ErrAlreadyInPool
	}
	if _, inMatch := gm.playerToMatch[accountID]; inMatch {
		gm.mu.Unlock()
		return nil, ErrAlreadyInPool
	}

	pool.Participants = append(pool.Participants, accountID)
	log.Printf("[POOL] Account %s joined pool %s (%d/%d)", accountID, poolID, len(pool.Participants), pool.MaxPlayers)

	var match *Match
	var events []outboundEvent
	var startErr error
	if len(pool.Participants) == pool.MaxPlayers {
		pool.Status = PoolFull
		match, events, startErr = gm.startMatchLocked(pool)
	}
	s := pool.summary()
	gm.mu.Unlock()

	// Notifier and redis calls run outside gm.mu. The hub takes its own lock
	// inside SendToPlayer, and it may in turn be holding that lock while
	// waiting on this manager.
	for _, ev := range events {
		gm.sendToPlayer(ev.accountID, ev.payload)
	}
	if match != nil {
		gm.saveMatchSnapshot(match)
	}
	return &s, startErr
}

// LeavePool removes a participant from a still-open pool. No fee was taken
// yet, so there is no ledger effect.
func (gm *GameManager) LeavePool(poolID, accountID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	pool, ok := gm.pools[poolID]
	if !ok {
		return ErrPoolNotFound
	}
	if pool.Status != PoolOpen {
		return ErrPoolNotOpen
	}
	if !pool.hasParticipant(accountID) {
		return ErrNotInPool
	}
	pool.removeParticipant(accountID)
	log.Printf("[POOL] Account %s left pool %s", accountID, poolID)
	return nil
}

// outboundEvent is a notification deferred until gm.mu is released.
type outboundEvent struct {
	accountID string
	payload   map[string]interface{}
}

// startMatchLocked debits every participant's entry fee and creates the
// match. Runs with gm.mu held so the debit-then-create sequence is atomic
// with respect to every other pool and wallet operation. Notifications are
// returned, not sent; the caller emits them after unlocking.
func (gm *GameManager) startMatchLocked(pool *PoolEntry) (*Match, []outboundEvent, error) {
	debited := make([]string, 0, len(pool.Participants))
	for _, accountID := range pool.Participants {
		if _, err := gm.ledger.Debit(accountID, pool.EntryFee, "Entry fee: "+pool.Title); err != nil {
			// Roll back: refund everyone already charged, drop the account
			// that could not pay, reopen the pool.
			for _, refundID := range debited {
				gm.ledger.Credit(refundID, pool.EntryFee, "Entry fee refund: "+pool.Title)
			}
			pool.removeParticipant(accountID)
			log.Printf("[POOL] Match start aborted for pool %s: account %s cannot pay fee %d", pool.ID, accountID, pool.EntryFee)

			var events []outboundEvent
			for _, pid := range append(pool.Participants, accountID) {
				events = append(events, outboundEvent{pid, map[string]interface{}{
					"type":    "error",
					"code":    ErrorCode(err),
					"message": "match could not start: a participant has insufficient funds",
				}})
			}
			return nil, events, err
		}
		debited = append(debited, accountID)
	}

	match := NewMatch(
		uuid.NewString(), pool.ID, pool.Title,
		pool.Participants[0], pool.Participants[1],
		pool.EntryFee, gm.config.BoardSize, gm.config.WinLength,
	)
	gm.matches[match.ID] = match
	for _, p := range match.Players {
		gm.playerToMatch[p.AccountID] = match.ID
	}
	delete(gm.pools, pool.ID)

	log.Printf("[MATCH] Match %s created from pool %s: %s(X) vs %s(O) bet=%d",
		match.ID, pool.ID, match.Players[0].AccountID, match.Players[1].AccountID, pool.EntryFee)

	var events []outboundEvent
	for i, p := range match.Players {
		opponent := match.Players[1-i]
		events = append(events, outboundEvent{p.AccountID, map[string]interface{}{
			"type":     "match_found",
			"match_id": match.ID,
			"side":     p.Mark,
			"opponent": opponent.AccountID,
			"bet":      pool.EntryFee,
			"turn":     match.Turn,
		}})
	}
	return match, events, nil
}

// === Match play ===

// MatchFor returns the live match id for an account, if any.
func (gm *GameManager) MatchFor(accountID string) (string, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	id, ok := gm.playerToMatch[accountID]
	return id, ok
}

// MatchState returns the current board and turn for a participant.
func (gm *GameManager) MatchState(matchID, accountID string) (map[string]interface{}, error) {
	gm.mu.RLock()
	match, ok := gm.matches[matchID]
	gm.mu.RUnlock()
	if !ok {
		return nil, ErrMatchNotFound
	}
	if !match.HasParticipant(accountID) {
		return nil, ErrNotInMatch
	}
	board, turn, status := match.Snapshot()
	return map[string]interface{}{
		"match_id": matchID,
		"board":    board,
		"turn":     turn,
		"status":   status,
	}, nil
}

// ApplyMove validates and applies a move, pushes the board update to both
// participants, and on a terminal state runs settlement and tears the match
// down. Moves arriving after the match finished are rejected, not ignored.
func (gm *GameManager) ApplyMove(matchID, accountID string, row, col int) error {
	gm.mu.RLock()
	match, ok := gm.matches[matchID]
	gm.mu.RUnlock()
	if !ok {
		return ErrMatchNotFound
	}

	result, err := match.ApplyMove(accountID, row, col)
	if err != nil {
		return err
	}

	update := map[string]interface{}{
		"type":     "board_update",
		"match_id": matchID,
		"board":    result.Board,
		"turn":     result.NextTurn,
		"last_move": map[string]interface{}{
			"row": result.Row, "col": result.Col, "mark": result.Mark,
		},
	}
	for _, p := range match.Players {
		gm.sendToPlayer(p.AccountID, update)
	}

	switch {
	case result.Won:
		gm.settleWin(match, result.WinnerID, false)
	case result.Draw:
		gm.settleDraw(match)
	default:
		gm.saveMatchSnapshot(match)
	}
	return nil
}

// === Settlement ===

// settleWin applies the one-time win settlement. The match marks itself
// finished under its own lock before this runs, and each terminal transition
// is reported to exactly one caller, so crediting happens exactly once.
func (gm *GameManager) settleWin(match *Match, winnerID string, forfeit bool) {
	split := SplitPot(match.EntryFee*int64(len(match.Players)), gm.config.PlatformFeePercent)

	gm.ledger.Credit(winnerID, split.WinnerShare, "Winnings: match "+match.ID)
	gm.ledger.Credit(PlatformAccountID, split.PlatformFee, "Platform fee: match "+match.ID)

	log.Printf("[SETTLE] Match %s: winner=%s share=%d fee=%d forfeit=%v",
		match.ID, winnerID, split.WinnerShare, split.PlatformFee, forfeit)

	payload := map[string]interface{}{
		"type":         "game_over",
		"match_id":     match.ID,
		"winner_id":    winnerID,
		"winner_share": split.WinnerShare,
		"platform_fee": split.PlatformFee,
		"forfeit":      forfeit,
	}
	for _, p := range match.Players {
		gm.sendToPlayer(p.AccountID, payload)
	}

	gm.recordMatch(match, winnerID, split, "win")
	gm.teardownMatch(match, payload)
}

// settleDraw refunds both entry fees in full; no fee is taken on a draw.
func (gm *GameManager) settleDraw(match *Match) {
	for _, p := range match.Players {
		gm.ledger.Credit(p.AccountID, match.EntryFee, "Draw refund: match "+match.ID)
	}
	log.Printf("[SETTLE] Match %s: draw, both entry fees (%d) refunded", match.ID, match.EntryFee)

	payload := map[string]interface{}{
		"type":     "game_over",
		"match_id": match.ID,
		"draw":     true,
		"refund":   match.EntryFee,
	}
	for _, p := range match.Players {
		gm.sendToPlayer(p.AccountID, payload)
	}

	gm.recordMatch(match, "", Settlement{Pot: match.EntryFee * int64(len(match.Players))}, "draw")
	gm.teardownMatch(match, payload)
}

// teardownMatch releases the finished session: participants detach, the
// match is dropped from memory and its snapshot is removed. Finished matches
// are not kept live; history lives in match_records.
func (gm *GameManager) teardownMatch(match *Match, event map[string]interface{}) {
	gm.mu.Lock()
	delete(gm.matches, match.ID)
	for _, p := range match.Players {
		if gm.playerToMatch[p.AccountID] == match.ID {
			delete(gm.playerToMatch, p.AccountID)
		}
	}
	gm.mu.Unlock()

	gm.deleteMatchSnapshot(match.ID)

	event["origin"] = gm.instanceID
	event["participants"] = []string{match.Players[0].AccountID, match.Players[1].AccountID}
	gm.publishGameEvent(event)
	log.Printf("[MATCH] Match %s released", match.ID)
}

// recordMatch persists the outcome for history. Best-effort: a storage
// failure is logged, never surfaced to the players.
func (gm *GameManager) recordMatch(match *Match, winnerID string, split Settlement, outcome string) {
	if gm.db == nil {
		return
	}
	var winner interface{}
	if winnerID != "" {
		winner = winnerID
	}
	_, err := gm.db.Exec(`
		INSERT INTO match_records (match_id, pool_title, player1, player2, winner, entry_fee, platform_fee, winner_share, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())`,
		match.ID, match.PoolTitle,
		match.Players[0].AccountID, match.Players[1].AccountID,
		winner, match.EntryFee, split.PlatformFee, split.WinnerShare, outcome,
	)
	if err != nil {
		log.Printf("[DB] Failed to record match %s: %v", match.ID, err)
	}
}

// === Redis snapshots & events ===

func (gm *GameManager) saveMatchSnapshot(match *Match) {
	if gm.rdb == nil {
		return
	}
	board, turn, status := match.Snapshot()
	data, err := json.Marshal(map[string]interface{}{
		"id":     match.ID,
		"board":  board,
		"turn":   turn,
		"status": status,
		"bet":    match.EntryFee,
	})
	if err != nil {
		return
	}
	ttl := time.Duration(gm.config.MatchSnapshotTTLMinutes) * time.Minute
	if err := gm.rdb.Set(context.Background(), "match:"+match.ID, data, ttl).Err(); err != nil {
		log.Printf("[REDIS] Failed to save snapshot for match %s: %v", match.ID, err)
	}
}

func (gm *GameManager) deleteMatchSnapshot(matchID string) {
	if gm.rdb == nil {
		return
	}
	if err := gm.rdb.Del(context.Background(), "match:"+matchID).Err(); err != nil {
		log.Printf("[REDIS] Failed to delete snapshot for match %s: %v", matchID, err)
	}
}

func (gm *GameManager) publishGameEvent(event map[string]interface{}) {
	if gm.rdb == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := gm.rdb.Publish(context.Background(), "game_events", data).Err(); err != nil {
		log.Printf("[REDIS] Failed to publish game event: %v", err)
	}
}
