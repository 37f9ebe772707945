package game

import "time"

// PoolStatus is the lifecycle state of a pool entry.
type PoolStatus string

const (
	PoolOpen PoolStatus = "open"
	PoolFull PoolStatus = "full"
)

// PoolEntry is a fee-gated waiting room for a fixed number of participants.
// It is owned by the manager until it fills, at which point it is consumed
// by match creation.
type PoolEntry struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	EntryFee     int64      `json:"entry_fee"`
	MaxPlayers   int        `json:"max_players"`
	Participants []string   `json:"participants"`
	Status       PoolStatus `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}

// PoolSummary is the read-only listing shape for open pools.
type PoolSummary struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	EntryFee     int64      `json:"entry_fee"`
	MaxPlayers   int        `json:"max_players"`
	CurrentCount int        `json:"current_count"`
	Status       PoolStatus `json:"status"`
}

func (p *PoolEntry) summary() PoolSummary {
	return PoolSummary{
		ID:           p.ID,
		Title:        p.Title,
		EntryFee:     p.EntryFee,
		MaxPlayers:   p.MaxPlayers,
		CurrentCount: len(p.Participants),
		Status:       p.Status,
	}
}

func (p *PoolEntry) hasParticipant(accountID string) bool {
	for _, id := range p.Participants {
		if id == accountID {
			return true
		}
	}
	return false
}

// removeParticipant drops accountID from the roster and reverts the pool to
// open. Removal only shrinks the roster; the entry itself stays listed.
func (p *PoolEntry) removeParticipant(accountID string) {
	kept := p.Participants[:0]
	for _, id := range p.Participants {
		if id != accountID {
			kept = append(kept, id)
		}
	}
	p.Participants = kept
	p.Status = PoolOpen
}
