package lotteryservice

import (
	"context"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/currencypkg"
	"github.com/streampot/streampot/pkg/errorspkg"
)

// enteredPool seeds a pool with entrant A holding 5 tickets (500) and
// entrant B holding 1 ticket (100), total pot 600.
func enteredPool(t *testing.T, s *Service) domain.Pool {
	t.Helper()

	pool := openPool(t, currencypkg.Coin, "100")
	pool.Entries = []domain.Entry{
		{AccountID: "a", DisplayName: "A", Amount: mustAmount(t, "500"), Tickets: 5, EnteredAt: time.Now().UTC()},
		{AccountID: "b", DisplayName: "B", Amount: mustAmount(t, "100"), Tickets: 1, EnteredAt: time.Now().UTC()},
	}
	pool.TotalPot = mustAmount(t, "600")
	seedPool(s, pool)

	return pool
}

func TestDrawSelectsWeightedWinner(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	// Winning ticket 5 lands inside A's run of 5 tickets.
	s.pick = func(totalTickets int64) int64 {
		require.Equal(t, int64(6), totalTickets)
		return 5
	}

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(2).Return(nil) // drawing checkpoint + completed
	ledger.EXPECT().Credit(gomock.Any(), "a", currencypkg.Coin, mustAmount(t, "600")).Times(1).Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	got, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)

	require.Equal(t, domain.PoolCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
	require.NotNil(t, got.Winner)
	require.Equal(t, "a", got.Winner.AccountID)
	require.Equal(t, "600", got.Winner.Amount.String())
	require.Equal(t, int64(5), got.Winner.WinningTicket)
	require.Equal(t, int64(6), got.Winner.TotalTickets)
}

func TestDrawBoundaryTicketSelectsNextEntrant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	// Ticket 6 is the first (and only) ticket of B.
	s.pick = func(int64) int64 { return 6 }

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	ledger.EXPECT().Credit(gomock.Any(), "b", currencypkg.Coin, mustAmount(t, "600")).Times(1).Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	got, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, "b", got.Winner.AccountID)
}

func TestDrawEmptyPoolCancels(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, _, scheduler := newTestService(t, ctrl)

	pool := openPool(t, currencypkg.Coin, "100")
	seedPool(s, pool)

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	got, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PoolCancelled, got.Status)
	require.Nil(t, got.Winner)
}

func TestDrawMissingPool(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, _, _, _ := newTestService(t, ctrl)

	_, err := s.Draw(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrPoolNotFound)
}

func TestDrawIdempotentAfterCompletion(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	s.pick = func(int64) int64 { return 1 }

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	ledger.EXPECT().Credit(gomock.Any(), "a", currencypkg.Coin, gomock.Any()).Times(1).Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	first, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)

	// Second draw must not touch the repo, the ledger or the scheduler.
	second, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, first.Winner, second.Winner)
	require.Equal(t, domain.PoolCompleted, second.Status)
}

func TestDrawCheckpointFailureLeavesPoolOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, _, _ := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(1).Return(errorspkg.ErrInternal)

	_, err := s.Draw(context.Background(), pool.ID)
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	got, err := s.Pool(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PoolOpen, got.Status)
}

func TestDrawRetryDoesNotPayTwice(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	s.pick = func(int64) int64 { return 3 }

	gomock.InOrder(
		repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Return(nil),                    // drawing checkpoint
		repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Return(errorspkg.ErrInternal), // completion fails
		repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Return(nil),                   // retry completion
	)
	ledger.EXPECT().Credit(gomock.Any(), "a", currencypkg.Coin, mustAmount(t, "600")).Times(1).Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	_, err := s.Draw(context.Background(), pool.ID)
	require.ErrorIs(t, err, errorspkg.ErrInternal)

	// The pool resumed in drawing; the retry completes the same payout
	// without crediting again.
	got, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PoolCompleted, got.Status)
	require.Equal(t, "a", got.Winner.AccountID)
	require.Equal(t, int64(3), got.Winner.WinningTicket)
}

func TestHandleDrawDueReschedulesOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, _, scheduler := newTestService(t, ctrl)
	pool := enteredPool(t, s)

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).Times(1).Return(errorspkg.ErrInternal)
	scheduler.EXPECT().Arm(pool.ID, gomock.Any()).Times(1)

	s.HandleDrawDue(pool.ID)
}

func TestDrawFairness(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping statistical test in short mode")
	}

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).AnyTimes().Return(nil)
	ledger.EXPECT().Credit(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes().Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(gomock.Any()).AnyTimes()

	tickets := map[string]int64{"a": 1, "b": 2, "c": 3}

	const draws = 6000

	wins := map[string]int{}

	for i := 0; i < draws; i++ {
		pool := openPool(t, currencypkg.Coin, "100")
		pool.Status = domain.PoolDrawing
		pool.Entries = []domain.Entry{
			{AccountID: "a", Amount: mustAmount(t, "100"), Tickets: tickets["a"]},
			{AccountID: "b", Amount: mustAmount(t, "200"), Tickets: tickets["b"]},
			{AccountID: "c", Amount: mustAmount(t, "300"), Tickets: tickets["c"]},
		}
		pool.TotalPot = mustAmount(t, "600")
		seedPool(s, pool)

		got, err := s.Draw(context.Background(), pool.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Winner)

		wins[got.Winner.AccountID]++
	}

	// Chi-squared against tickets/totalTickets, df=2; 13.82 is the
	// critical value at p=0.001.
	var chi2 float64

	for id, tk := range tickets {
		expected := float64(draws) * float64(tk) / 6.0
		diff := float64(wins[id]) - expected
		chi2 += diff * diff / expected
	}

	require.Less(t, chi2, 13.82, "win rates diverge from ticket weights: %v", wins)
}

func TestExampleScenario(t *testing.T) {
	// Pool minimum 100, ticket unit 100; A enters 500 (5 tickets), B
	// enters 100 (1 ticket); injected winning ticket 5 selects A, who is
	// paid the full 600 pot.
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	s, repo, ledger, scheduler := newTestService(t, ctrl)

	pool := openPool(t, currencypkg.Coin, "100")
	seedPool(s, pool)

	repo.EXPECT().SavePool(gomock.Any(), gomock.Any()).AnyTimes().Return(nil)
	ledger.EXPECT().Debit(gomock.Any(), "a", currencypkg.Coin, mustAmount(t, "500")).Times(1).Return(amountpkg.Zero(), nil)
	ledger.EXPECT().Debit(gomock.Any(), "b", currencypkg.Coin, mustAmount(t, "100")).Times(1).Return(mustAmount(t, "900"), nil)
	ledger.EXPECT().Credit(gomock.Any(), "a", currencypkg.Coin, mustAmount(t, "600")).Times(1).Return(amountpkg.Zero(), nil)
	scheduler.EXPECT().Disarm(pool.ID).Times(1)

	_, err := s.Enter(context.Background(), pool.ID, "a", "A", mustAmount(t, "500"))
	require.NoError(t, err)

	entered, err := s.Enter(context.Background(), pool.ID, "b", "B", mustAmount(t, "100"))
	require.NoError(t, err)
	require.Equal(t, int64(5), entered.Entries[0].Tickets)
	require.Equal(t, int64(1), entered.Entries[1].Tickets)
	require.Equal(t, "600", entered.TotalPot.String())

	s.pick = func(totalTickets int64) int64 {
		require.Equal(t, int64(6), totalTickets)
		return 5
	}

	got, err := s.Draw(context.Background(), pool.ID)
	require.NoError(t, err)
	require.Equal(t, domain.PoolCompleted, got.Status)
	require.Equal(t, "a", got.Winner.AccountID)
	require.Equal(t, "600", got.Winner.Amount.String())
}
