package payout_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payout-engine/engine"
	"github.com/warp/payout-engine/payout"
)

// =============================================================================
// COMMIT - PERSISTENCE
// =============================================================================

func TestCommit_PersistsReleaseAndWinners(t *testing.T) {
	// GIVEN: Three payers with 10000 collected
	// WHEN: Committing budget 250 with fixed 100-prizes
	// THEN: Two winners persisted, release totals reflect realized values,
	//       claimed transactions marked released

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
		payment{"tx-3", "256700000003", 2000},
	)
	ctx := context.Background()

	result, err := svc.Commit(ctx, planRequest(250, 100, 100), "op-7")
	require.NoError(t, err)

	require.Len(t, result.Winners, 2)
	assert.Equal(t, 2, result.PlannedWinners)
	assert.Equal(t, "op-7", result.Release.CreatedBy)
	assert.Equal(t, 2, result.Release.TotalWinners)
	assert.True(t, result.Release.TotalReleased.Equal(decimal.NewFromInt(200)))

	// The stored release carries the same finalized totals
	stored, err := store.GetRelease(ctx, result.Release.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stored.TotalWinners)
	assert.True(t, stored.TotalReleased.Equal(decimal.NewFromInt(200)))

	// Top two payers' transactions are consumed
	for _, id := range []engine.TransactionID{"tx-1", "tx-2"} {
		tx, err := store.GetTransaction(ctx, id)
		require.NoError(t, err)
		assert.True(t, tx.Released, "%s should be released", id)
	}
	tx, err := store.GetTransaction(ctx, "tx-3")
	require.NoError(t, err)
	assert.False(t, tx.Released, "payer below the budget stop keeps its transaction")

	// Winner rows reference the release and the claimed transactions
	winners, total, err := store.ListWinners(ctx, engine.WinnerFilter{ReleaseID: result.Release.ID}, 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, w := range winners {
		assert.True(t, w.Amount.Equal(decimal.NewFromInt(100)))
		assert.NotEmpty(t, w.TransactionID)
	}
}

func TestCommit_DefaultsActorToSystem(t *testing.T) {
	svc, store := newTestService(t)
	seedPaid(t, store, payment{"tx-1", "256700000001", 5000})

	result, err := svc.Commit(context.Background(), planRequest(100, 100, 100), "")
	require.NoError(t, err)
	assert.Equal(t, payout.SystemActor, result.Release.CreatedBy)
}

// =============================================================================
// COMMIT - RETRY AND CONTENTION
// =============================================================================

func TestCommit_RetryFindsOnlyUnreleasedPayers(t *testing.T) {
	// GIVEN: A committed release consuming the top two payers
	// WHEN: Committing again with the same request
	// THEN: The retry allocates only to the remaining payer; a third
	//       attempt finds nobody

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
		payment{"tx-3", "256700000003", 2000},
	)
	ctx := context.Background()

	first, err := svc.Commit(ctx, planRequest(250, 100, 100), "op-7")
	require.NoError(t, err)
	require.Len(t, first.Winners, 2)

	second, err := svc.Commit(ctx, planRequest(250, 100, 100), "op-7")
	require.NoError(t, err)
	require.Len(t, second.Winners, 1)
	assert.Equal(t, engine.MSISDN("256700000003"), second.Winners[0].MSISDN)

	_, err = svc.Commit(ctx, planRequest(250, 100, 100), "op-7")
	assert.ErrorIs(t, err, engine.ErrNoEligiblePayers)
}

func TestCommit_ConcurrentCommitsNeverDoublePay(t *testing.T) {
	// GIVEN: Five payers with one PAID transaction each
	// WHEN: Four commits race
	// THEN: Across all successful releases every claimed transaction id is
	//       unique and the winner count never exceeds the transaction count

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 4000},
		payment{"tx-3", "256700000003", 3000},
		payment{"tx-4", "256700000004", 2000},
		payment{"tx-5", "256700000005", 1000},
	)
	ctx := context.Background()

	var mu sync.Mutex
	var all []engine.Winner
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := svc.Commit(ctx, planRequest(1000, 10, 10), "race")
			if err != nil {
				// Losing every claim surfaces as a rejection; that is fine
				assert.ErrorIs(t, err, engine.ErrNoEligiblePayers)
				return
			}
			mu.Lock()
			all = append(all, result.Winners...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	seen := make(map[engine.TransactionID]bool)
	for _, w := range all {
		assert.False(t, seen[w.TransactionID], "transaction %s paid twice", w.TransactionID)
		seen[w.TransactionID] = true
	}
	assert.LessOrEqual(t, len(all), 5)

	// The database agrees: one winner row per claimed transaction
	_, total, err := store.ListWinners(ctx, engine.WinnerFilter{}, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, len(all), total)
}

func TestCommit_SkipsWinnerClaimedBetweenPlanAndClaim(t *testing.T) {
	// GIVEN: A plan computed over two payers, one of whose transactions is
	//        claimed by another release before the commit loop reaches it
	// WHEN: Committing through a store that injects the interleaving
	// THEN: The contended winner is skipped, the batch still succeeds, and
	//       the release totals count only persisted winners

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)
	ctx := context.Background()

	interceptor := &claimInterceptor{Store: store}
	interceptor.beforeClaim = func(w engine.Winner) {
		// Simulate a racing commit stealing the second payer's transaction
		if w.MSISDN != "256700000002" {
			return
		}
		interceptor.beforeClaim = nil
		rival := payout.NewService(store, "UTC", nil)
		rival.Clock = svc.Clock
		rival.Rand = engine.NewSeededRand(7)
		_, err := rival.Commit(ctx, payout.PlanRequest{
			Budget: decimal.NewFromInt(50),
			MinWin: decimal.NewFromInt(50),
			MaxWin: decimal.NewFromInt(50),
			Overrides: map[engine.MSISDN]decimal.Decimal{
				"256700000002": decimal.NewFromInt(50),
			},
		}, "rival")
		require.NoError(t, err)
	}
	svc.Store = interceptor

	result, err := svc.Commit(ctx, planRequest(200, 100, 100), "op-7")
	require.NoError(t, err)

	assert.Equal(t, 2, result.PlannedWinners)
	require.Len(t, result.Winners, 1)
	assert.Equal(t, engine.MSISDN("256700000001"), result.Winners[0].MSISDN)
	assert.True(t, result.Release.TotalReleased.Equal(decimal.NewFromInt(100)))
	assert.Equal(t, 1, result.Release.TotalWinners)
}

// claimInterceptor wraps a store to observe claim calls.
type claimInterceptor struct {
	engine.Store
	beforeClaim func(engine.Winner)
}

func (c *claimInterceptor) ClaimWinner(ctx context.Context, w engine.Winner, start, end time.Time) (*engine.Winner, error) {
	if c.beforeClaim != nil {
		c.beforeClaim(w)
	}
	return c.Store.ClaimWinner(ctx, w, start, end)
}
