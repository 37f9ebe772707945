package game

import (
	"log"
	"sync"
	"time"
)

// PlatformAccountID is the house account credited with the platform fee on
// every settled match.
const PlatformAccountID = "platform"

// TxDirection tags a transaction as money in or money out.
type TxDirection string

const (
	TxCredit TxDirection = "credit"
	TxDebit  TxDirection = "debit"
)

// Transaction is one immutable row in an account's log.
type Transaction struct {
	Direction TxDirection `json:"direction"`
	Amount    int64       `json:"amount"`
	Reason    string      `json:"reason"`
	CreatedAt time.Time   `json:"created_at"`
}

// Account tracks one identity's balance and transaction history.
// Balance is always the signed sum of the transaction log.
type Account struct {
	ID           string        `json:"id"`
	Balance      int64         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// Ledger is the single serialization point for money movement. Accounts are
// created lazily, never deleted, and mutated only through Credit and Debit.
type Ledger struct {
	accounts        map[string]*Account
	startingBalance int64
	mu              sync.Mutex
}

// NewLedger creates an empty ledger. New accounts start with startingBalance.
func NewLedger(startingBalance int64) *Ledger {
	return &Ledger{
		accounts:        make(map[string]*Account),
		startingBalance: startingBalance,
	}
}

// EnsureAccount returns the account for id, creating it with the starting
// balance and a single "Init" credit on first reference. Idempotent: a second
// call never duplicates the initial credit.
func (l *Ledger) EnsureAccount(id string) (balance int64, created bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if acc, ok := l.accounts[id]; ok {
		return acc.Balance, false
	}
	return l.ensureLocked(id).Balance, true
}

func (l *Ledger) ensureLocked(id string) *Account {
	if acc, ok := l.accounts[id]; ok {
		return acc
	}
	now := time.Now()
	acc := &Account{
		ID:        id,
		CreatedAt: now,
	}
	// The house account holds collected fees only; the starting grant is for
	// player accounts.
	if id != PlatformAccountID && l.startingBalance > 0 {
		acc.Balance = l.startingBalance
		acc.Transactions = append(acc.Transactions, Transaction{
			Direction: TxCredit,
			Amount:    l.startingBalance,
			Reason:    "Init",
			CreatedAt: now,
		})
	}
	l.accounts[id] = acc
	log.Printf("[LEDGER] Account %s created with starting balance %d", id, acc.Balance)
	return acc
}

// Credit increases the balance by amount and appends a credit transaction.
func (l *Ledger) Credit(id string, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.ensureLocked(id)
	acc.Balance += amount
	acc.Transactions = append(acc.Transactions, Transaction{
		Direction: TxCredit,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	log.Printf("[LEDGER] Credit %d to %s (%s), balance=%d", amount, id, reason, acc.Balance)
	return acc.Balance, nil
}

// Debit decreases the balance by amount and appends a debit transaction.
// A debit exceeding the balance is refused outright: no mutation, no clamping.
// This is the only place insufficient funds is enforced.
func (l *Ledger) Debit(id string, amount int64, reason string) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.ensureLocked(id)
	if acc.Balance < amount {
		return acc.Balance, ErrInsufficientFunds
	}
	acc.Balance -= amount
	acc.Transactions = append(acc.Transactions, Transaction{
		Direction: TxDebit,
		Amount:    amount,
		Reason:    reason,
		CreatedAt: time.Now(),
	})
	log.Printf("[LEDGER] Debit %d from %s (%s), balance=%d", amount, id, reason, acc.Balance)
	return acc.Balance, nil
}

// Statement returns the balance and the transaction log, most recent first.
func (l *Ledger) Statement(id string) (int64, []Transaction) {
	l.mu.Lock()
	defer l.mu.Unlock()

	acc := l.ensureLocked(id)
	txs := make([]Transaction, len(acc.Transactions))
	for i, tx := range acc.Transactions {
		txs[len(acc.Transactions)-1-i] = tx
	}
	return acc.Balance, txs
}

// Balance returns the current balance for id without touching the log.
func (l *Ledger) Balance(id string) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ensureLocked(id).Balance
}
