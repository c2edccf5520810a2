package staterepo

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"

	"github.com/streampot/streampot/internal/domain"
	"github.com/streampot/streampot/pkg/amountpkg"
	"github.com/streampot/streampot/pkg/currencypkg"
	"github.com/streampot/streampot/pkg/randompkg"
)

var amountComparer = cmp.Comparer(func(a, b amountpkg.Amount) bool {
	return a.Cmp(b) == 0
})

func mustAmount(t *testing.T, s string) amountpkg.Amount {
	t.Helper()

	a, err := amountpkg.Parse(s)
	require.NoError(t, err)

	return a
}

func testPool(t *testing.T, status domain.PoolStatus) domain.Pool {
	t.Helper()

	return domain.Pool{
		ID:             randompkg.String(12),
		Status:         status,
		Currency:       currencypkg.Coin,
		MinEntryAmount: mustAmount(t, "100"),
		TotalPot:       mustAmount(t, "600"),
		Entries: []domain.Entry{
			{AccountID: "a", DisplayName: "A", Amount: mustAmount(t, "500"), Tickets: 5, EnteredAt: time.Now().UTC()},
			{AccountID: "b", DisplayName: "B", Amount: mustAmount(t, "100"), Tickets: 1, EnteredAt: time.Now().UTC()},
		},
		DrawTime:  time.Now().Add(time.Hour).UTC(),
		CreatedBy: "creator",
		CreatedAt: time.Now().UTC(),
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	repo, err := NewRepoFile(path)
	require.NoError(t, err)

	account := domain.NewAccount(randompkg.AccountID())
	account.Balances[currencypkg.Coin] = mustAmount(t, "1000")
	account.Balances[currencypkg.Gem] = mustAmount(t, "5")

	pool := testPool(t, domain.PoolOpen)

	require.NoError(t, repo.SaveAccount(ctx, account))
	require.NoError(t, repo.SavePool(ctx, pool))

	// A fresh open must reconstruct exactly the last saved state.
	reopened, err := NewRepoFile(path)
	require.NoError(t, err)

	accounts, err := reopened.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	approxTime := cmpopts.EquateApproxTime(time.Second)
	if diff := cmp.Diff(account, accounts[0], amountComparer, approxTime); diff != "" {
		t.Errorf("account mismatch (-want +got):\n%s", diff)
	}

	pools, err := reopened.LoadActivePools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 1)

	if diff := cmp.Diff(pool, pools[0], amountComparer, approxTime); diff != "" {
		t.Errorf("pool mismatch (-want +got):\n%s", diff)
	}
}

func TestFileMissingStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	repo, err := NewRepoFile(path)
	require.NoError(t, err)

	accounts, err := repo.LoadAccounts(context.Background())
	require.NoError(t, err)
	require.Empty(t, accounts)

	pools, err := repo.LoadActivePools(context.Background())
	require.NoError(t, err)
	require.Empty(t, pools)
}

func TestFileTerminalPoolsNotActive(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	repo, err := NewRepoFile(path)
	require.NoError(t, err)

	open := testPool(t, domain.PoolOpen)
	drawing := testPool(t, domain.PoolDrawing)
	completed := testPool(t, domain.PoolCompleted)
	cancelled := testPool(t, domain.PoolCancelled)

	for _, p := range []domain.Pool{open, drawing, completed, cancelled} {
		require.NoError(t, repo.SavePool(ctx, p))
	}

	pools, err := repo.LoadActivePools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)

	for _, p := range pools {
		require.True(t, p.Active())
	}

	require.NoError(t, repo.DeletePool(ctx, completed.ID))
	require.NoError(t, repo.DeletePool(ctx, "never-existed"))
}

func TestFileConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	repo, err := NewRepoFile(path)
	require.NoError(t, err)

	const writers = 20

	var wg sync.WaitGroup

	for i := 0; i < writers; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			account := domain.NewAccount(randompkg.AccountID())
			account.Balances[currencypkg.Coin] = mustAmount(t, "100")
			require.NoError(t, repo.SaveAccount(ctx, account))
		}()
	}

	wg.Wait()

	// The file must parse and hold every write.
	reopened, err := NewRepoFile(path)
	require.NoError(t, err)

	accounts, err := reopened.LoadAccounts(ctx)
	require.NoError(t, err)
	require.Len(t, accounts, writers)
}
