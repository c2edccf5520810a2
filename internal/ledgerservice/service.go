// Package ledgerservice manages business logic layer of account balances.
package ledgerservice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/errorspkg"
	"github.com/streampot/streampot/pkg/metricspkg"
)

// Repo provides data access layer interface needed by ledger service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package ledgerservice
type Repo interface {
	LoadAccounts(ctx context.Context) ([]domain.Account, error)
	SaveAccount(ctx context.Context, account domain.Account) error
}

// Service owns the account working set and serializes all balance mutation.
//
// Mutations to one account never interleave: each account has a key mutex
// held across the in-memory transition and the write-through save.
type Service struct {
	repo Repo

	mu       sync.Mutex
	accounts map[string]domain.Account
	keys     map[string]*sync.Mutex
}

// New returns a ledger service with an empty working set.
func New(repo Repo) *Service {
	return &Service{
		repo:     repo,
		accounts: make(map[string]domain.Account),
		keys:     make(map[string]*sync.Mutex),
	}
}

// Recover rebuilds the working set from persisted state. Called once at startup.
func (s *Service) Recover(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	accounts, err := s.repo.LoadAccounts(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range accounts {
		s.accounts[a.ID] = a
	}

	l.Info().Int("accounts", len(accounts)).Msg("ledger state recovered")

	return nil
}

// keyLock returns the mutex serializing mutations for the given account id.
func (s *Service) keyLock(id string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.keys[id]
	if !ok {
		m = &sync.Mutex{}
		s.keys[id] = m
	}

	return m
}

// snapshot returns a deep copy of the account, creating it lazily.
func (s *Service) snapshot(id string) domain.Account {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.accounts[id]
	if !ok {
		return domain.NewAccount(id)
	}

	return a.Clone()
}

// commit installs the account into the working set.
func (s *Service) commit(a domain.Account) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.accounts[a.ID] = a
}

// Balance returns the balance for the given account and currency.
//
// Unknown accounts and currencies read as zero.
func (s *Service) Balance(ctx context.Context, accountID, currency string) amountpkg.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts[accountID].Balance(currency)
}

// IsLocked reports whether the account is under an unexpired administrative hold.
func (s *Service) IsLocked(accountID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.accounts[accountID].LockActive(time.Now())
}

// Debit atomically decreases the account balance and returns the new balance.
//
// The decrease is durably saved before the call returns; a failed save rolls
// the mutation back.
func (s *Service) Debit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error) {
	if !amount.IsPositive() {
		return amountpkg.Zero(), domain.ErrInvalidAmount
	}

	key := s.keyLock(accountID)
	key.Lock()
	defer key.Unlock()

	a := s.snapshot(accountID)

	if a.LockActive(time.Now()) {
		metricspkg.LedgerOp("debit", "locked")
		return amountpkg.Zero(), domain.ErrAccountLocked
	}

	newBalance, err := a.Balance(currency).Sub(amount)
	if err != nil {
		metricspkg.LedgerOp("debit", "insufficient")
		return amountpkg.Zero(), domain.ErrInsufficientBalance
	}

	a.Balances[currency] = newBalance

	if err := s.save(ctx, a); err != nil {
		metricspkg.LedgerOp("debit", "error")
		return amountpkg.Zero(), err
	}

	s.commit(a)
	metricspkg.LedgerOp("debit", "ok")

	return newBalance, nil
}

// Credit atomically increases the account balance and returns the new balance.
//
// Credits are never refused for business reasons; the account is created
// lazily if needed.
func (s *Service) Credit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error) {
	if !amount.IsPositive() {
		return amountpkg.Zero(), domain.ErrInvalidAmount
	}

	key := s.keyLock(accountID)
	key.Lock()
	defer key.Unlock()

	a := s.snapshot(accountID)

	newBalance := a.Balance(currency).Add(amount)
	a.Balances[currency] = newBalance

	if err := s.save(ctx, a); err != nil {
		metricspkg.LedgerOp("credit", "error")
		return amountpkg.Zero(), err
	}

	s.commit(a)
	metricspkg.LedgerOp("credit", "ok")

	return newBalance, nil
}

// Lock places an administrative hold on the account until now + duration.
func (s *Service) Lock(ctx context.Context, accountID string, duration time.Duration) error {
	key := s.keyLock(accountID)
	key.Lock()
	defer key.Unlock()

	a := s.snapshot(accountID)

	expiry := time.Now().Add(duration).UTC()
	a.Locked = true
	a.LockExpiresAt = &expiry

	if err := s.save(ctx, a); err != nil {
		metricspkg.LedgerOp("lock", "error")
		return err
	}

	s.commit(a)
	metricspkg.LedgerOp("lock", "ok")

	return nil
}

// Transfer moves amount between two accounts with all-or-nothing semantics.
func (s *Service) Transfer(ctx context.Context, fromID, toID, currency string, amount amountpkg.Amount) error {
	l := zerolog.Ctx(ctx)

	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}

	if fromID == toID {
		return domain.ErrInvalidAmount
	}

	// Both key mutexes taken in sorted order so concurrent opposite
	// transfers cannot deadlock.
	ids := []string{fromID, toID}
	sort.Strings(ids)

	for _, id := range ids {
		k := s.keyLock(id)
		k.Lock()
		defer k.Unlock()
	}

	from := s.snapshot(fromID)
	to := s.snapshot(toID)

	if from.LockActive(time.Now()) {
		return domain.ErrAccountLocked
	}

	fromBalance, err := from.Balance(currency).Sub(amount)
	if err != nil {
		return domain.ErrInsufficientBalance
	}

	from.Balances[currency] = fromBalance
	to.Balances[currency] = to.Balance(currency).Add(amount)

	if err := s.save(ctx, from); err != nil {
		return err
	}

	if err := s.save(ctx, to); err != nil {
		// The debit is already durable; restore the source record so the
		// store never holds a half-applied transfer.
		restored := s.snapshot(fromID)
		if restoreErr := s.save(ctx, restored); restoreErr != nil {
			// Store kept the debited source. Commit it so memory and
			// store agree; the credit side is retried by the caller.
			l.Error().Err(restoreErr).Str("account", fromID).Msg("transfer rollback failed")
			s.commit(from)
		}

		return err
	}

	s.commit(from)
	s.commit(to)
	metricspkg.LedgerOp("transfer", "ok")

	return nil
}

func (s *Service) save(ctx context.Context, a domain.Account) error {
	l := zerolog.Ctx(ctx)

	if err := s.repo.SaveAccount(ctx, a); err != nil {
		l.Error().Err(err).Str("account", a.ID).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
