package domain

import (
	"errors"
	"time"

	"github.com/streampot/streampot/pkg/amountpkg"
)

var (
	// ErrPoolNotFound indicates that the pool is not found.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolClosed indicates that the pool no longer accepts entries.
	ErrPoolClosed = errors.New("pool closed")
	// ErrPoolNotOpen indicates that the pool left the open state.
	ErrPoolNotOpen = errors.New("pool not open")
	// ErrNotPoolCreator indicates that the requester did not create the pool.
	ErrNotPoolCreator = errors.New("not pool creator")
	// ErrDrawTimeNotFuture indicates a draw time that is not strictly in the future.
	ErrDrawTimeNotFuture = errors.New("draw time not in the future")
	// ErrPoolDurationOutOfRange indicates a draw time outside the configured bounds.
	ErrPoolDurationOutOfRange = errors.New("pool duration out of range")
	// ErrAmountBelowMinimum indicates an entry below the pool minimum.
	ErrAmountBelowMinimum = errors.New("amount below pool minimum")
)

// PoolStatus is the lifecycle state of a pool.
type PoolStatus string

// Pool lifecycle states. Transitions only move forward:
// open -> drawing -> completed, or open -> {drawing ->} cancelled.
const (
	PoolOpen      PoolStatus = "open"
	PoolDrawing   PoolStatus = "drawing"
	PoolCompleted PoolStatus = "completed"
	PoolCancelled PoolStatus = "cancelled"
)

// Entry holds one entrant's contribution to a pool.
//
// Entries are immutable once appended.
type Entry struct {
	AccountID   string           `json:"accountId"`
	DisplayName string           `json:"displayName"`
	Amount      amountpkg.Amount `json:"amount"`
	Tickets     int64            `json:"tickets"`
	EnteredAt   time.Time        `json:"enteredAt"`
}

// Winner records the outcome of a completed draw.
type Winner struct {
	AccountID     string           `json:"accountId"`
	Amount        amountpkg.Amount `json:"amount"`
	WinningTicket int64            `json:"winningTicket"`
	TotalTickets  int64            `json:"totalTickets"`
}

// Pool is one jackpot instance from creation to resolution.
type Pool struct {
	ID             string           `json:"poolId"`
	Status         PoolStatus       `json:"status"`
	Currency       string           `json:"currency"`
	MinEntryAmount amountpkg.Amount `json:"minEntryAmount"`
	TotalPot       amountpkg.Amount `json:"totalPot"`
	Entries        []Entry          `json:"entries"`
	Winner         *Winner          `json:"winner"`
	DrawTime       time.Time        `json:"drawTime"`
	CreatedBy      string           `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	EndedAt        *time.Time       `json:"endedAt"`
	MessageRef     string           `json:"messageRef,omitempty"` // opaque display reference
}

// TotalTickets returns the sum of all entries' tickets.
func (p Pool) TotalTickets() int64 {
	var total int64
	for _, e := range p.Entries {
		total += e.Tickets
	}

	return total
}

// EntrantTickets returns the ticket total the entrant holds across its entries.
func (p Pool) EntrantTickets(accountID string) int64 {
	var total int64

	for _, e := range p.Entries {
		if e.AccountID == accountID {
			total += e.Tickets
		}
	}

	return total
}

// Active reports whether the pool belongs to the working set.
func (p Pool) Active() bool {
	return p.Status == PoolOpen || p.Status == PoolDrawing
}

// Clone returns a deep copy of the pool.
func (p Pool) Clone() Pool {
	c := p

	c.Entries = make([]Entry, len(p.Entries))
	copy(c.Entries, p.Entries)

	if p.Winner != nil {
		w := *p.Winner
		c.Winner = &w
	}

	if p.EndedAt != nil {
		t := *p.EndedAt
		c.EndedAt = &t
	}

	return c
}
