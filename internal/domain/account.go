// Package domain provides definitions of all entities.
package domain

import (
	"errors"
	"time"

	"github.com/streampot/streampot/pkg/amountpkg"
)

var (
	// ErrAccountNotFound indicates that the account is not found.
	ErrAccountNotFound = errors.New("account not found")
	// ErrAccountLocked indicates that the account is under an administrative hold.
	ErrAccountLocked = errors.New("account locked")
	// ErrInsufficientBalance indicates that the account does not have sufficient balance.
	ErrInsufficientBalance = errors.New("insufficient balance")
	// ErrInvalidAmount indicates invalid amount.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrUnsupportedCurrency indicates an unrecognized currency code.
	ErrUnsupportedCurrency = errors.New("unsupported currency")
)

// Account holds per-currency balances for one user.
//
// A currency absent from Balances is treated as zero.
type Account struct {
	ID            string                      `json:"accountId"`
	Balances      map[string]amountpkg.Amount `json:"balances"`
	Locked        bool                        `json:"locked"`
	LockExpiresAt *time.Time                  `json:"lockExpiresAt"`
	CreatedAt     time.Time                   `json:"createdAt"`
}

// NewAccount returns an account with all-zero balances.
func NewAccount(id string) Account {
	return Account{
		ID:        id,
		Balances:  make(map[string]amountpkg.Amount),
		CreatedAt: time.Now().UTC(),
	}
}

// Balance returns the balance for the given currency, zero if absent.
func (a Account) Balance(currency string) amountpkg.Amount {
	return a.Balances[currency]
}

// LockActive reports whether the account lock is set and not yet expired.
func (a Account) LockActive(now time.Time) bool {
	return a.Locked && a.LockExpiresAt != nil && now.Before(*a.LockExpiresAt)
}

// Clone returns a deep copy of the account.
func (a Account) Clone() Account {
	c := a

	c.Balances = make(map[string]amountpkg.Amount, len(a.Balances))
	for cur, amt := range a.Balances {
		c.Balances[cur] = amt
	}

	if a.LockExpiresAt != nil {
		t := *a.LockExpiresAt
		c.LockExpiresAt = &t
	}

	return c
}
