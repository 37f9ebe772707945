package game

import (
	"errors"
	"testing"
)

func newTestMatch(size, winLength int) *Match {
	return NewMatch("m1", "p1", "Test Pool", "alice", "bob", 100, size, winLength)
}

// playMoves applies alternating moves and fails the test on any error.
func playMoves(t *testing.T, m *Match, moves [][3]interface{}) *MoveResult {
	t.Helper()
	var last *MoveResult
	for _, mv := range moves {
		res, err := m.ApplyMove(mv[0].(string), mv[1].(int), mv[2].(int))
		if err != nil {
			t.Fatalf("move %v failed: %v", mv, err)
		}
		last = res
	}
	return last
}

func TestFirstMoverPlaysXAndOpens(t *testing.T) {
	m := newTestMatch(8, 3)

	if m.Players[0].Mark != MarkX || m.Players[1].Mark != MarkO {
		t.Errorf("marks = %v/%v, want X/O", m.Players[0].Mark, m.Players[1].Mark)
	}
	if m.Turn != MarkX {
		t.Errorf("opening turn = %v, want X", m.Turn)
	}

	res, err := m.ApplyMove("alice", 3, 3)
	if err != nil {
		t.Fatalf("opening move failed: %v", err)
	}
	if res.NextTurn != MarkO {
		t.Errorf("turn after X's move = %v, want O", res.NextTurn)
	}
}

func TestMoveValidationOrder(t *testing.T) {
	m := newTestMatch(8, 3)

	// Not a participant: even with garbage coordinates, membership is
	// checked first.
	if _, err := m.ApplyMove("mallory", -1, 99); !errors.Is(err, ErrNotInMatch) {
		t.Errorf("stranger move: got %v, want ErrNotInMatch", err)
	}

	// Participant out of turn, in-bounds empty cell.
	if _, err := m.ApplyMove("bob", 0, 0); !errors.Is(err, ErrNotYourTurn) {
		t.Errorf("out-of-turn move: got %v, want ErrNotYourTurn", err)
	}

	// Turn is right but coordinates are out of bounds.
	if _, err := m.ApplyMove("alice", 8, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("out-of-bounds move: got %v, want ErrOutOfBounds", err)
	}
	if _, err := m.ApplyMove("alice", 0, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("negative col: got %v, want ErrOutOfBounds", err)
	}

	// Occupied cell.
	playMoves(t, m, [][3]interface{}{{"alice", 0, 0}})
	if _, err := m.ApplyMove("bob", 0, 0); !errors.Is(err, ErrCellTaken) {
		t.Errorf("occupied cell: got %v, want ErrCellTaken", err)
	}

	// A failed move leaves the board unchanged.
	board, turn, _ := m.Snapshot()
	if board[0][0] != MarkX || turn != MarkO {
		t.Errorf("failed moves mutated state: cell=%v turn=%v", board[0][0], turn)
	}
}

func TestHorizontalWin(t *testing.T) {
	m := newTestMatch(8, 3)

	// X takes (0,0),(0,1),(0,2) along the top row.
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 1, 0},
		{"alice", 0, 1}, {"bob", 1, 1},
		{"alice", 0, 2},
	})

	if !res.Won || res.WinnerID != "alice" {
		t.Errorf("expected alice to win, got %+v", res)
	}
	if _, _, status := m.Snapshot(); status != MatchFinished {
		t.Errorf("match status = %v, want finished", status)
	}
}

func TestVerticalWin(t *testing.T) {
	m := newTestMatch(8, 3)

	res := playMoves(t, m, [][3]interface{}{
		{"alice", 2, 4}, {"bob", 0, 0},
		{"alice", 3, 4}, {"bob", 0, 1},
		{"alice", 4, 4},
	})
	if !res.Won || res.WinnerID != "alice" {
		t.Errorf("expected vertical win for alice, got %+v", res)
	}
}

func TestDiagonalWins(t *testing.T) {
	// Main diagonal.
	m := newTestMatch(8, 3)
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 2, 2}, {"bob", 0, 1},
		{"alice", 3, 3}, {"bob", 0, 2},
		{"alice", 4, 4},
	})
	if !res.Won {
		t.Errorf("expected main-diagonal win, got %+v", res)
	}

	// Anti-diagonal.
	m = newTestMatch(8, 3)
	res = playMoves(t, m, [][3]interface{}{
		{"alice", 2, 5}, {"bob", 0, 1},
		{"alice", 3, 4}, {"bob", 0, 2},
		{"alice", 4, 3},
	})
	if !res.Won {
		t.Errorf("expected anti-diagonal win, got %+v", res)
	}
}

func TestWinDetectedInMiddleOfLine(t *testing.T) {
	// The winning mark lands between two existing marks, so the scan has
	// to count both directions from the played cell.
	m := newTestMatch(8, 3)
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 5, 2}, {"bob", 0, 0},
		{"alice", 5, 4}, {"bob", 0, 1},
		{"alice", 5, 3},
	})
	if !res.Won {
		t.Errorf("expected win from middle placement, got %+v", res)
	}
}

func TestNoWinOnBrokenLine(t *testing.T) {
	m := newTestMatch(8, 3)

	// X at (0,0),(0,2),(0,4): three marks on one row, never adjacent.
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 1, 0},
		{"alice", 0, 2}, {"bob", 1, 1},
		{"alice", 0, 4},
	})
	if res.Won || res.Draw {
		t.Errorf("broken line should not win: %+v", res)
	}
	if res.NextTurn != MarkO {
		t.Errorf("turn should pass to O, got %v", res.NextTurn)
	}
}

func TestOpponentMarksDoNotCount(t *testing.T) {
	m := newTestMatch(8, 3)

	// Alternating marks on one row never form a same-mark line.
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 0, 1},
		{"alice", 0, 2}, {"bob", 0, 3},
		{"alice", 0, 4},
	})
	if res.Won {
		t.Errorf("mixed-mark line must not win: %+v", res)
	}
}

func TestDrawOnFullBoard(t *testing.T) {
	// A 2x2 board with win length 3 can never produce a win, so filling
	// it ends in a draw.
	m := newTestMatch(2, 3)

	res := playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 0, 1},
		{"alice", 1, 0}, {"bob", 1, 1},
	})
	if !res.Draw || res.Won {
		t.Errorf("expected draw on full board, got %+v", res)
	}
}

func TestMoveAfterFinishRejected(t *testing.T) {
	m := newTestMatch(2, 3)
	playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 0, 1},
		{"alice", 1, 0}, {"bob", 1, 1},
	})

	if _, err := m.ApplyMove("alice", 0, 0); !errors.Is(err, ErrMatchFinished) {
		t.Errorf("late move: got %v, want ErrMatchFinished", err)
	}
}

func TestForfeitAwardsOpponent(t *testing.T) {
	m := newTestMatch(8, 3)

	winner := m.Forfeit("alice")
	if winner != "bob" {
		t.Errorf("forfeit winner = %q, want bob", winner)
	}

	// A second terminal transition must not be reported again.
	if again := m.Forfeit("bob"); again != "" {
		t.Errorf("second forfeit reported winner %q, want none", again)
	}
	if _, err := m.ApplyMove("bob", 0, 0); !errors.Is(err, ErrMatchFinished) {
		t.Errorf("move after forfeit: got %v", err)
	}
}

func TestLongerWinLength(t *testing.T) {
	m := newTestMatch(8, 5)

	// Four in a row is not enough at win length 5.
	res := playMoves(t, m, [][3]interface{}{
		{"alice", 0, 0}, {"bob", 1, 0},
		{"alice", 0, 1}, {"bob", 1, 1},
		{"alice", 0, 2}, {"bob", 1, 2},
		{"alice", 0, 3}, {"bob", 1, 3},
	})
	if res.Won {
		t.Errorf("four in a row won at win length 5: %+v", res)
	}

	res = playMoves(t, m, [][3]interface{}{
		{"alice", 0, 4},
	})
	if !res.Won || res.WinnerID != "alice" {
		t.Errorf("five in a row should win: %+v", res)
	}
}
