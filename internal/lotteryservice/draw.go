package lotteryservice

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/errorspkg"
	"github.com/streampot/streampot/pkg/metricspkg"
)

// Draw resolves the pool: picks a uniformly random ticket, pays the full
// pot to its holder and completes the pool.
//
// The open -> drawing checkpoint is persisted before anything irreversible
// happens, so a crashed or failed draw resumes in drawing rather than open.
// Draw on an already resolved pool is a no-op returning the recorded state.
// Timer firings and manual invocations for overdue pools share this path.
func (s *Service) Draw(ctx context.Context, poolID string) (domain.Pool, error) {
	l := zerolog.Ctx(ctx)

	key := s.keyLock(poolID)
	key.Lock()
	defer key.Unlock()

	pool, ok := s.snapshot(poolID)
	if !ok {
		return domain.Pool{}, domain.ErrPoolNotFound
	}

	switch pool.Status {
	case domain.PoolCompleted, domain.PoolCancelled:
		return pool, nil
	case domain.PoolOpen:
		pool.Status = domain.PoolDrawing

		if err := s.save(ctx, pool); err != nil {
			return domain.Pool{}, err
		}

		s.commit(pool)
		metricspkg.PoolClosed()
	case domain.PoolDrawing:
		// Resuming a previously failed or interrupted draw.
	}

	ended := time.Now().UTC()

	if len(pool.Entries) == 0 {
		pool.Status = domain.PoolCancelled
		pool.EndedAt = &ended

		if err := s.save(ctx, pool); err != nil {
			return domain.Pool{}, err
		}

		s.commit(pool)
		s.scheduler.Disarm(poolID)
		metricspkg.DrawResolved("empty")

		l.Info().Str("pool", poolID).Msg("pool drawn with no entries, cancelled")

		return pool, nil
	}

	winner, err := s.payout(ctx, &pool)
	if err != nil {
		return domain.Pool{}, err
	}

	pool.Status = domain.PoolCompleted
	pool.Winner = winner
	pool.EndedAt = &ended

	if err := s.save(ctx, pool); err != nil {
		// The payout is durable but the completion is not. Remember it so
		// a retry completes the same winner instead of paying twice.
		s.rememberPayout(poolID, winner)
		return domain.Pool{}, err
	}

	s.forgetPayout(poolID)
	s.commit(pool)
	s.scheduler.Disarm(poolID)
	metricspkg.DrawResolved("completed")

	l.Info().
		Str("pool", poolID).
		Str("winner", winner.AccountID).
		Str("amount", winner.Amount.String()).
		Int64("winning_ticket", winner.WinningTicket).
		Int64("total_tickets", winner.TotalTickets).
		Msg("pool completed")

	return pool, nil
}

// payout selects the winner and credits the pot, or returns the payout
// already made by a previous attempt on this pool.
func (s *Service) payout(ctx context.Context, pool *domain.Pool) (*domain.Winner, error) {
	if w := s.recallPayout(pool.ID); w != nil {
		return w, nil
	}

	totalTickets := pool.TotalTickets()
	winningTicket := s.pick(totalTickets)

	// Cumulative walk in insertion order: the entry whose running ticket
	// total first reaches the winning ticket holds it.
	var (
		running int64
		won     domain.Entry
	)

	for _, e := range pool.Entries {
		running += e.Tickets
		if running >= winningTicket {
			won = e
			break
		}
	}

	if _, err := s.ledger.Credit(ctx, won.AccountID, pool.Currency, pool.TotalPot); err != nil {
		return nil, err
	}

	return &domain.Winner{
		AccountID:     won.AccountID,
		Amount:        pool.TotalPot,
		WinningTicket: winningTicket,
		TotalTickets:  totalTickets,
	}, nil
}

func (s *Service) rememberPayout(poolID string, w *domain.Winner) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.payouts[poolID] = w
}

func (s *Service) recallPayout(poolID string) *domain.Winner {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.payouts[poolID]
}

func (s *Service) forgetPayout(poolID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.payouts, poolID)
}

// HandleDrawDue is the scheduler callback. A draw failing on persistence is
// rearmed after the configured backoff rather than abandoned.
func (s *Service) HandleDrawDue(poolID string) {
	ctx := s.logger.WithContext(context.Background())

	if _, err := s.Draw(ctx, poolID); err != nil {
		if errors.Is(err, errorspkg.ErrInternal) {
			s.logger.Warn().Str("pool", poolID).Dur("backoff", s.config.DrawRetryBackoff).Msg("draw failed, rescheduling")
			metricspkg.DrawResolved("retried")
			s.scheduler.Arm(poolID, time.Now().Add(s.config.DrawRetryBackoff))

			return
		}

		s.logger.Error().Err(err).Str("pool", poolID).Msg("draw failed")
	}
}
