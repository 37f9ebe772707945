package game

import (
	"errors"
	"testing"
)

// recomputeBalance sums the signed transaction log, the invariant every
// account must satisfy at all times.
func recomputeBalance(txs []Transaction) int64 {
	var sum int64
	for _, tx := range txs {
		if tx.Direction == TxCredit {
			sum += tx.Amount
		} else {
			sum -= tx.Amount
		}
	}
	return sum
}

func TestEnsureAccountStartingBalance(t *testing.T) {
	l := NewLedger(1000)

	balance, created := l.EnsureAccount("alice")
	if !created {
		t.Error("first EnsureAccount should report created")
	}
	if balance != 1000 {
		t.Errorf("starting balance = %d, want 1000", balance)
	}

	_, txs := l.Statement("alice")
	if len(txs) != 1 || txs[0].Reason != "Init" || txs[0].Direction != TxCredit {
		t.Errorf("expected a single Init credit, got %+v", txs)
	}
}

func TestEnsureAccountIdempotent(t *testing.T) {
	l := NewLedger(1000)

	l.EnsureAccount("alice")
	l.Credit("alice", 50, "test")
	balance, created := l.EnsureAccount("alice")

	if created {
		t.Error("second EnsureAccount should not report created")
	}
	if balance != 1050 {
		t.Errorf("balance = %d, want 1050", balance)
	}
	_, txs := l.Statement("alice")
	initCount := 0
	for _, tx := range txs {
		if tx.Reason == "Init" {
			initCount++
		}
	}
	if initCount != 1 {
		t.Errorf("Init credit appears %d times, want exactly 1", initCount)
	}
}

func TestCreditIncreasesBalance(t *testing.T) {
	l := NewLedger(100)

	balance, err := l.Credit("bob", 40, "winnings")
	if err != nil {
		t.Fatalf("Credit failed: %v", err)
	}
	if balance != 140 {
		t.Errorf("balance = %d, want 140", balance)
	}
}

func TestDebitRefusedOnInsufficientFunds(t *testing.T) {
	l := NewLedger(100)
	l.EnsureAccount("bob")

	balance, err := l.Debit("bob", 500, "entry fee")
	if !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}
	if balance != 100 {
		t.Errorf("balance after refused debit = %d, want 100 (unchanged)", balance)
	}

	// The log must be untouched too: just the Init credit.
	_, txs := l.Statement("bob")
	if len(txs) != 1 {
		t.Errorf("refused debit appended a transaction: %+v", txs)
	}
}

func TestDebitNeverGoesNegative(t *testing.T) {
	l := NewLedger(100)
	l.EnsureAccount("bob")

	if _, err := l.Debit("bob", 100, "fee"); err != nil {
		t.Fatalf("exact-balance debit should succeed: %v", err)
	}
	if _, err := l.Debit("bob", 1, "fee"); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("debit on empty account should fail, got %v", err)
	}
	if b := l.Balance("bob"); b != 0 {
		t.Errorf("balance = %d, want 0", b)
	}
}

func TestNonPositiveAmountsRejected(t *testing.T) {
	l := NewLedger(100)

	if _, err := l.Credit("bob", 0, "x"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero credit: got %v", err)
	}
	if _, err := l.Debit("bob", -5, "x"); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("negative debit: got %v", err)
	}
}

func TestBalanceMatchesTransactionLog(t *testing.T) {
	l := NewLedger(500)

	l.EnsureAccount("carol")
	l.Credit("carol", 120, "winnings")
	l.Debit("carol", 75, "entry fee")
	l.Credit("carol", 10, "refund")
	l.Debit("carol", 300, "entry fee")

	balance, txs := l.Statement("carol")
	if got := recomputeBalance(txs); got != balance {
		t.Errorf("balance %d != recomputed %d", balance, got)
	}
	if balance != 255 {
		t.Errorf("balance = %d, want 255", balance)
	}
}

func TestStatementMostRecentFirst(t *testing.T) {
	l := NewLedger(100)

	l.EnsureAccount("dave")
	l.Credit("dave", 10, "first")
	l.Credit("dave", 20, "second")

	_, txs := l.Statement("dave")
	if len(txs) != 3 {
		t.Fatalf("got %d transactions, want 3", len(txs))
	}
	if txs[0].Reason != "second" || txs[1].Reason != "first" || txs[2].Reason != "Init" {
		t.Errorf("statement not most-recent-first: %v, %v, %v", txs[0].Reason, txs[1].Reason, txs[2].Reason)
	}
}

func TestPlatformAccountGetsNoStartingGrant(t *testing.T) {
	l := NewLedger(1000)

	balance, created := l.EnsureAccount(PlatformAccountID)
	if !created {
		t.Error("first EnsureAccount should report created")
	}
	if balance != 0 {
		t.Errorf("house balance = %d, want 0", balance)
	}

	// Lazy creation through a fee credit must not grant it either.
	l2 := NewLedger(1000)
	l2.Credit(PlatformAccountID, 40, "Platform fee: match m1")
	if b := l2.Balance(PlatformAccountID); b != 40 {
		t.Errorf("house balance after fee = %d, want 40", b)
	}
	_, txs := l2.Statement(PlatformAccountID)
	if len(txs) != 1 || txs[0].Reason != "Platform fee: match m1" {
		t.Errorf("house log should hold only the fee credit, got %+v", txs)
	}
}

func TestZeroStartingBalanceHasNoInitCredit(t *testing.T) {
	l := NewLedger(0)

	balance, _ := l.EnsureAccount("platform")
	if balance != 0 {
		t.Errorf("balance = %d, want 0", balance)
	}
	_, txs := l.Statement("platform")
	if len(txs) != 0 {
		t.Errorf("zero-balance account should start with empty log, got %+v", txs)
	}
}
