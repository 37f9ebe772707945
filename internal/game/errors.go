package game

import "errors"

// Validation and lifecycle errors reported to clients. All of these are
// recoverable; the caller gets them synchronously and the process keeps going.
var (
	ErrPoolNotFound      = errors.New("pool not found")
	ErrPoolFull          = errors.New("pool is already full")
	ErrPoolNotOpen       = errors.New("pool is not open")
	ErrAlreadyInPool     = errors.New("already joined this pool")
	ErrNotInPool         = errors.New("not a participant of this pool")
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchFinished     = errors.New("match already finished")
	ErrNotInMatch        = errors.New("not a participant of this match")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrOutOfBounds       = errors.New("cell out of bounds")
	ErrCellTaken         = errors.New("cell already taken")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidEntryFee   = errors.New("invalid entry fee")
	ErrInvalidAmount     = errors.New("amount must be positive")
)

// ErrorCode maps an error to the short code sent over the wire.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrPoolNotFound), errors.Is(err, ErrMatchNotFound):
		return "not_found"
	case errors.Is(err, ErrPoolFull):
		return "already_full"
	case errors.Is(err, ErrPoolNotOpen):
		return "pool_not_open"
	case errors.Is(err, ErrAlreadyInPool):
		return "already_in_pool"
	case errors.Is(err, ErrNotInPool):
		return "not_in_pool"
	case errors.Is(err, ErrMatchFinished):
		return "match_finished"
	case errors.Is(err, ErrNotInMatch):
		return "not_in_match"
	case errors.Is(err, ErrNotYourTurn):
		return "not_your_turn"
	case errors.Is(err, ErrOutOfBounds):
		return "out_of_bounds"
	case errors.Is(err, ErrCellTaken):
		return "cell_taken"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidEntryFee), errors.Is(err, ErrInvalidAmount):
		return "invalid_request"
	default:
		return "internal_error"
	}
}
