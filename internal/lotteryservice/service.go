// Package lotteryservice manages business logic layer of jackpot pools.
package lotteryservice

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/currencypkg"
	"github.com/streampot/streampot/pkg/errorspkg"
	"github.com/streampot/streampot/pkg/metricspkg"
	"github.com/streampot/streampot/pkg/randompkg"
)

// Repo provides data access layer interface needed by lottery service layer.
//
//go:generate mockgen -source service.go -destination service_mock.go -package lotteryservice
type Repo interface {
	LoadActivePools(ctx context.Context) ([]domain.Pool, error)
	SavePool(ctx context.Context, pool domain.Pool) error
	DeletePool(ctx context.Context, poolID string) error
}

// Ledger provides the fund movement interface needed by lottery service layer.
type Ledger interface {
	Debit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error)
	Credit(ctx context.Context, accountID, currency string, amount amountpkg.Amount) (amountpkg.Amount, error)
}

// Scheduler provides the draw timer interface needed by lottery service layer.
type Scheduler interface {
	Arm(poolID string, at time.Time)
	Disarm(poolID string)
	RearmAll(pools []domain.Pool)
}

// Config holds the lottery tuning knobs.
type Config struct {
	// TicketUnit is the amount buying one ticket; tickets = max(1, floor(amount/unit)).
	TicketUnit amountpkg.Amount
	// MinPoolDuration and MaxPoolDuration bound drawTime - now at creation.
	// A zero bound is not enforced.
	MinPoolDuration time.Duration
	MaxPoolDuration time.Duration
	// DrawRetryBackoff is the delay before retrying a draw that failed on persistence.
	DrawRetryBackoff time.Duration
}

// TicketPicker returns a uniformly random winning ticket in [1, totalTickets].
type TicketPicker func(totalTickets int64) int64

// Service owns the pool working set and serializes all pool mutation.
//
// A timer firing and a manual operation on the same pool contend on the
// same per-pool key mutex, so a cancel can never race a draw.
type Service struct {
	repo      Repo
	ledger    Ledger
	scheduler Scheduler
	config    Config
	logger    zerolog.Logger
	pick      TicketPicker

	mu      sync.Mutex
	pools   map[string]domain.Pool
	keys    map[string]*sync.Mutex
	payouts map[string]*domain.Winner // credited but not yet durably completed
}

// New returns a lottery service with an empty working set.
func New(repo Repo, ledger Ledger, scheduler Scheduler, config Config, logger zerolog.Logger) *Service {
	return &Service{
		repo:      repo,
		ledger:    ledger,
		scheduler: scheduler,
		config:    config,
		logger:    logger,
		pick: func(totalTickets int64) int64 {
			return randompkg.Int64Between(1, totalTickets)
		},
		pools:   make(map[string]domain.Pool),
		keys:    make(map[string]*sync.Mutex),
		payouts: make(map[string]*domain.Winner),
	}
}

// Recover rebuilds the working set from persisted state and rearms every
// active pool's timer. Called once at startup; overdue pools draw immediately.
func (s *Service) Recover(ctx context.Context) error {
	l := zerolog.Ctx(ctx)

	pools, err := s.repo.LoadActivePools(ctx)
	if err != nil {
		l.Error().Err(err).Send()
		return errorspkg.ErrInternal
	}

	s.mu.Lock()
	for _, p := range pools {
		s.pools[p.ID] = p
		if p.Status == domain.PoolOpen {
			metricspkg.PoolOpened()
		}
	}
	s.mu.Unlock()

	s.scheduler.RearmAll(pools)

	l.Info().Int("pools", len(pools)).Msg("lottery state recovered")

	return nil
}

func (s *Service) keyLock(poolID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.keys[poolID]
	if !ok {
		m = &sync.Mutex{}
		s.keys[poolID] = m
	}

	return m
}

func (s *Service) snapshot(poolID string) (domain.Pool, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pools[poolID]
	if !ok {
		return domain.Pool{}, false
	}

	return p.Clone(), true
}

func (s *Service) commit(p domain.Pool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pools[p.ID] = p
}

// CreatePool validates and persists a new open pool and arms its draw timer.
func (s *Service) CreatePool(ctx context.Context, currency string, minEntry amountpkg.Amount, drawTime time.Time, creator string) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	if !currencypkg.IsSupportedCurrency(currency) {
		return domain.Pool{}, domain.ErrUnsupportedCurrency
	}

	if !minEntry.IsPositive() {
		return domain.Pool{}, domain.ErrInvalidAmount
	}

	now := time.Now()
	if !drawTime.After(now) {
		return domain.Pool{}, domain.ErrDrawTimeNotFuture
	}

	duration := drawTime.Sub(now)
	if s.config.MinPoolDuration > 0 && duration < s.config.MinPoolDuration {
		return domain.Pool{}, domain.ErrPoolDurationOutOfRange
	}

	if s.config.MaxPoolDuration > 0 && duration > s.config.MaxPoolDuration {
		return domain.Pool{}, domain.ErrPoolDurationOutOfRange
	}

	pool := domain.Pool{
		ID:             uuid.NewString(),
		Status:         domain.PoolOpen,
		Currency:       currency,
		MinEntryAmount: minEntry,
		TotalPot:       amountpkg.Zero(),
		Entries:        []domain.Entry{},
		DrawTime:       drawTime.UTC(),
		CreatedBy:      creator,
		CreatedAt:      now.UTC(),
	}

	if err := s.save(ctx, pool); err != nil {
		return domain.Pool{}, err
	}

	s.commit(pool)
	s.scheduler.Arm(pool.ID, pool.DrawTime)
	metricspkg.PoolOpened()

	l.Info().Str("pool", pool.ID).Str("currency", currency).Time("draw_time", pool.DrawTime).Msg("pool created")

	return pool, nil
}

// Enter debits the entrant and appends a ticket-weighted entry to the pool.
func (s *Service) Enter(ctx context.Context, poolID, entrant, displayName string, amount amountpkg.Amount) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	key := s.keyLock(poolID)
	key.Lock()
	defer key.Unlock()

	pool, ok := s.snapshot(poolID)
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}

	if pool.Status != domain.PoolOpen {
		return domain.Pool{}, domain.ErrPoolClosed
	}

	if amount.Cmp(pool.MinEntryAmount) < 0 {
		return domain.Pool{}, domain.ErrAmountBelowMinimum
	}

	if _, err := s.ledger.Debit(ctx, entrant, pool.Currency, amount); err != nil {
		return domain.Pool{}, err
	}

	tickets := amount.DivFloorInt64(s.config.TicketUnit)
	if tickets < 1 {
		tickets = 1
	}

	pool.Entries = append(pool.Entries, domain.Entry{
		AccountID:   entrant,
		DisplayName: displayName,
		Amount:      amount,
		Tickets:     tickets,
		EnteredAt:   time.Now().UTC(),
	})
	pool.TotalPot = pool.TotalPot.Add(amount)

	if err := s.save(ctx, pool); err != nil {
		// The debit is already durable; hand the funds back.
		if _, creditErr := s.ledger.Credit(ctx, entrant, pool.Currency, amount); creditErr != nil {
			l.Error().Err(creditErr).Str("pool", poolID).Str("account", entrant).Msg("entry compensation failed")
		}

		return domain.Pool{}, err
	}

	s.commit(pool)
	metricspkg.EntryAccepted()

	l.Info().Str("pool", poolID).Str("account", entrant).Int64("tickets", tickets).Msg("pool entered")

	return pool, nil
}

// CancelPool refunds every entry and resolves the pool as cancelled.
//
// Only the creator may cancel, and only while the pool is open.
func (s *Service) CancelPool(ctx context.Context, poolID, requester string) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	key := s.keyLock(poolID)
	key.Lock()
	defer key.Unlock()

	pool, ok := s.snapshot(poolID)
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}

	if pool.CreatedBy != requester {
		return domain.Pool{}, domain.ErrNotPoolCreator
	}

	if pool.Status != domain.PoolOpen {
		return domain.Pool{}, domain.ErrPoolNotOpen
	}

	// Persist the terminal status before refunding so a retried cancel
	// can never refund twice.
	ended := time.Now().UTC()
	pool.Status = domain.PoolCancelled
	pool.EndedAt = &ended

	if err := s.save(ctx, pool); err != nil {
		return domain.Pool{}, err
	}

	s.commit(pool)
	s.scheduler.Disarm(poolID)
	metricspkg.PoolClosed()
	metricspkg.DrawResolved("cancelled")

	var refundErr error

	for _, e := range pool.Entries {
		if _, err := s.ledger.Credit(ctx, e.AccountID, pool.Currency, e.Amount); err != nil {
			l.Error().Err(err).Str("pool", poolID).Str("account", e.AccountID).Msg("refund failed")
			refundErr = err
		}
	}

	if refundErr != nil {
		return pool, refundErr
	}

	l.Info().Str("pool", poolID).Int("refunds", len(pool.Entries)).Msg("pool cancelled")

	return pool, nil
}

// Pool returns the pool with the given id.
func (s *Service) Pool(ctx context.Context, poolID string) (domain.Pool, error) {
	pool, ok := s.snapshot(poolID)
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}

	return pool, nil
}

// ListOpenPools returns all open pools ordered by draw time.
func (s *Service) ListOpenPools(ctx context.Context) []domain.Pool {
	s.mu.Lock()

	pools := make([]domain.Pool, 0)

	for _, p := range s.pools {
		if p.Status == domain.PoolOpen {
			pools = append(pools, p.Clone())
		}
	}
	s.mu.Unlock()

	sort.Slice(pools, func(i, j int) bool {
		return pools[i].DrawTime.Before(pools[j].DrawTime)
	})

	return pools
}

// EntrantTickets returns the entrant's ticket total in the pool.
func (s *Service) EntrantTickets(ctx context.Context, poolID, entrant string) (int64, error) {
	pool, ok := s.snapshot(poolID)
	if !ok {
		return 0, domain.ErrPoolNotFound
	}

	return pool.EntrantTickets(entrant), nil
}

// EntrantWinChance returns tickets/totalTickets for the entrant, 0 if the
// pool has no entries or the entrant holds none.
func (s *Service) EntrantWinChance(ctx context.Context, poolID, entrant string) (float64, error) {
	pool, ok := s.snapshot(poolID)
	if !ok {
		return 0, domain.ErrPoolNotFound
	}

	total := pool.TotalTickets()
	if total == 0 {
		return 0, nil
	}

	return float64(pool.EntrantTickets(entrant)) / float64(total), nil
}

// PurgeResolved drops terminal pools that ended before the given instant
// from the working set and the store.
func (s *Service) PurgeResolved(ctx context.Context, before time.Time) (int, error) {
	l := zerolog.Ctx(ctx)

	s.mu.Lock()

	var terminal []string

	for id, p := range s.pools {
		if !p.Active() && p.EndedAt != nil && p.EndedAt.Before(before) {
			terminal = append(terminal, id)
		}
	}
	s.mu.Unlock()

	purged := 0

	for _, id := range terminal {
		if err := s.repo.DeletePool(ctx, id); err != nil {
			l.Error().Err(err).Str("pool", id).Send()
			return purged, errorspkg.ErrInternal
		}

		s.mu.Lock()
		delete(s.pools, id)
		delete(s.keys, id)
		s.mu.Unlock()

		purged++
	}

	return purged, nil
}

func (s *Service) save(ctx context.Context, p domain.Pool) error {
	l := zerolog.Ctx(ctx)

	if err := s.repo.SavePool(ctx, p); err != nil {
		l.Error().Err(err).Str("pool", p.ID).Send()
		return errorspkg.ErrInternal
	}

	return nil
}
