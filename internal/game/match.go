package game

import (
	"sync"
	"time"
)

// Mark is the symbol a participant plays with on the board. The first mover
// always plays X and holds the opening turn.
type Mark string

const (
	MarkNone Mark = ""
	MarkX    Mark = "X"
	MarkO    Mark = "O"
)

// MatchStatus is the lifecycle state of a match session.
type MatchStatus string

const (
	MatchPlaying  MatchStatus = "playing"
	MatchFinished MatchStatus = "finished"
)

// Participant binds an account to its mark for one match.
type Participant struct {
	AccountID string `json:"account_id"`
	Mark      Mark   `json:"mark"`
}

// Match is one live paired game: board, turn state and the bet both sides
// paid to get in. It is created when a pool fills, owned exclusively by the
// manager, and discarded once it reaches a terminal state.
type Match struct {
	ID        string         `json:"id"`
	PoolID    string         `json:"pool_id,omitempty"`
	PoolTitle string         `json:"pool_title,omitempty"`
	Players   [2]Participant `json:"players"`
	Board     [][]Mark       `json:"board"`
	Turn      Mark           `json:"turn"`
	Status    MatchStatus    `json:"status"`
	EntryFee  int64          `json:"entry_fee"`
	WinLength int            `json:"win_length"`
	CreatedAt time.Time      `json:"created_at"`

	mu sync.Mutex
}

// MoveResult is what a validated move produced.
type MoveResult struct {
	Row      int      `json:"row"`
	Col      int      `json:"col"`
	Mark     Mark     `json:"mark"`
	Board    [][]Mark `json:"board"`
	NextTurn Mark     `json:"turn"`
	Won      bool     `json:"won"`
	Draw     bool     `json:"draw"`
	WinnerID string   `json:"winner_id,omitempty"`
}

// NewMatch creates a playing match with an empty size×size board. The first
// participant plays X and moves first.
func NewMatch(id, poolID, poolTitle string, p1, p2 string, entryFee int64, size, winLength int) *Match {
	board := make([][]Mark, size)
	for i := range board {
		board[i] = make([]Mark, size)
	}
	return &Match{
		ID:        id,
		PoolID:    poolID,
		PoolTitle: poolTitle,
		Players: [2]Participant{
			{AccountID: p1, Mark: MarkX},
			{AccountID: p2, Mark: MarkO},
		},
		Board:     board,
		Turn:      MarkX,
		Status:    MatchPlaying,
		EntryFee:  entryFee,
		WinLength: winLength,
		CreatedAt: time.Now(),
	}
}

// ApplyMove validates and applies one move. Validation order is fixed:
// finished match, then membership, turn, bounds, occupancy. The first
// failure wins and the board is left untouched.
func (m *Match) ApplyMove(accountID string, row, col int) (*MoveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status == MatchFinished {
		return nil, ErrMatchFinished
	}
	player := m.participantLocked(accountID)
	if player == nil {
		return nil, ErrNotInMatch
	}
	if player.Mark != m.Turn {
		return nil, ErrNotYourTurn
	}
	size := len(m.Board)
	if row < 0 || row >= size || col < 0 || col >= size {
		return nil, ErrOutOfBounds
	}
	if m.Board[row][col] != MarkNone {
		return nil, ErrCellTaken
	}

	m.Board[row][col] = player.Mark

	result := &MoveResult{
		Row:  row,
		Col:  col,
		Mark: player.Mark,
	}

	switch {
	case m.winsAtLocked(row, col, player.Mark):
		m.Status = MatchFinished
		result.Won = true
		result.WinnerID = player.AccountID
	case m.boardFullLocked():
		m.Status = MatchFinished
		result.Draw = true
	default:
		m.switchTurnLocked()
	}

	result.Board = m.boardCopyLocked()
	result.NextTurn = m.Turn
	return result, nil
}

// Forfeit ends the match in favor of the participant who did not leave.
// Returns the winner's account id, or "" if the match was already finished
// or the given account is not a participant.
func (m *Match) Forfeit(leavingAccountID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Status == MatchFinished {
		return ""
	}
	leaver := m.participantLocked(leavingAccountID)
	if leaver == nil {
		return ""
	}
	m.Status = MatchFinished
	return m.opponentLocked(leavingAccountID).AccountID
}

// Opponent returns the other participant's account id, or "".
func (m *Match) Opponent(accountID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.participantLocked(accountID) == nil {
		return ""
	}
	return m.opponentLocked(accountID).AccountID
}

// HasParticipant reports whether accountID is bound to this match.
func (m *Match) HasParticipant(accountID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.participantLocked(accountID) != nil
}

// Snapshot returns the board and turn for state requests.
func (m *Match) Snapshot() ([][]Mark, Mark, MatchStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.boardCopyLocked(), m.Turn, m.Status
}

// === Internal helpers (lock held) ===

func (m *Match) participantLocked(accountID string) *Participant {
	for i := range m.Players {
		if m.Players[i].AccountID == accountID {
			return &m.Players[i]
		}
	}
	return nil
}

func (m *Match) opponentLocked(accountID string) *Participant {
	if m.Players[0].AccountID == accountID {
		return &m.Players[1]
	}
	return &m.Players[0]
}

func (m *Match) switchTurnLocked() {
	if m.Turn == MarkX {
		m.Turn = MarkO
	} else {
		m.Turn = MarkX
	}
}

func (m *Match) boardCopyLocked() [][]Mark {
	board := make([][]Mark, len(m.Board))
	for i, row := range m.Board {
		board[i] = make([]Mark, len(row))
		copy(board[i], row)
	}
	return board
}

func (m *Match) boardFullLocked() bool {
	for _, row := range m.Board {
		for _, cell := range row {
			if cell == MarkNone {
				return false
			}
		}
	}
	return true
}

// winsAtLocked scans the four line directions through the just-played cell,
// counting consecutive same-mark cells forward and backward from it. Only
// lines through the last move can newly reach the win length, so this local
// scan is complete without ever walking the whole board.
func (m *Match) winsAtLocked(row, col int, mark Mark) bool {
	size := len(m.Board)
	dirs := [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

	for _, d := range dirs {
		count := 1
		for _, sign := range [2]int{1, -1} {
			r, c := row+sign*d[0], col+sign*d[1]
			for r >= 0 && r < size && c >= 0 && c < size && m.Board[r][c] == mark {
				count++
				r += sign * d[0]
				c += sign * d[1]
			}
		}
		if count >= m.WinLength {
			return true
		}
	}
	return false
}
