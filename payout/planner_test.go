package payout_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payout-engine/engine"
	"github.com/warp/payout-engine/payout"
	"github.com/warp/payout-engine/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// Tests run against UTC so the day window is trivially the calendar day of
// the fixed clock. Timezone conversion has its own tests in engine.
var testNow = time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*payout.Service, *sqlite.Store) {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	svc := payout.NewService(store, "UTC", nil)
	svc.Clock = func() time.Time { return testNow }
	svc.Rand = engine.NewSeededRand(42)
	return svc, store
}

// seedPaid inserts one PAID stake transaction per entry, spaced a minute
// apart inside the test day.
type payment struct {
	ID     string
	MSISDN string
	Amount int64
}

func seedPaid(t *testing.T, store *sqlite.Store, payments ...payment) {
	t.Helper()
	ctx := context.Background()
	for i, p := range payments {
		err := store.CreateTransaction(ctx, engine.Transaction{
			ID:        engine.TransactionID(p.ID),
			MSISDN:    engine.MSISDN(p.MSISDN),
			Amount:    decimal.NewFromInt(p.Amount),
			Status:    engine.StatusPaid,
			CreatedAt: testNow.Add(time.Duration(i-60) * time.Minute),
		})
		require.NoError(t, err)
	}
}

func planRequest(budget, minWin, maxWin int64) payout.PlanRequest {
	return payout.PlanRequest{
		Budget: decimal.NewFromInt(budget),
		MinWin: decimal.NewFromInt(minWin),
		MaxWin: decimal.NewFromInt(maxWin),
	}
}

// =============================================================================
// PREVIEW - HAPPY PATH
// =============================================================================

func TestPreview_AllocatesWithinBudgetAndRange(t *testing.T) {
	// GIVEN: 10000 collected today across three payers
	// WHEN: Previewing budget 2000 with range [50, 200]
	// THEN: All three payers win, ranked by total paid, every amount within
	//       range, total within budget, percentage 20.00

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
		payment{"tx-3", "256700000003", 2000},
	)

	plan, err := svc.Preview(context.Background(), planRequest(2000, 50, 200))
	require.NoError(t, err)

	require.Len(t, plan.Winners, 3)
	assert.Equal(t, engine.MSISDN("256700000001"), plan.Winners[0].MSISDN)
	assert.Equal(t, engine.MSISDN("256700000002"), plan.Winners[1].MSISDN)
	assert.Equal(t, engine.MSISDN("256700000003"), plan.Winners[2].MSISDN)

	total := decimal.Zero
	for _, w := range plan.Winners {
		assert.True(t, w.Amount.GreaterThanOrEqual(decimal.NewFromInt(50)),
			"amount %s below min", w.Amount)
		assert.True(t, w.Amount.LessThanOrEqual(decimal.NewFromInt(200)),
			"amount %s above max", w.Amount)
		total = total.Add(w.Amount)
	}
	assert.True(t, total.LessThanOrEqual(decimal.NewFromInt(2000)))
	assert.True(t, plan.TotalPlanned.Equal(total))
	assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(2000).Sub(total)))
	assert.True(t, plan.Percentage.Equal(decimal.NewFromInt(20)), "got %s", plan.Percentage)
	assert.True(t, plan.CollectedToday.Equal(decimal.NewFromInt(10000)))
}

func TestPreview_DeterministicWithSeededRand(t *testing.T) {
	// GIVEN: Identical data and an identical random seed
	// WHEN: Previewing twice
	// THEN: Both plans allocate identical amounts

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)

	plan1, err := svc.Preview(context.Background(), planRequest(2000, 50, 200))
	require.NoError(t, err)

	svc.Rand = engine.NewSeededRand(42)
	plan2, err := svc.Preview(context.Background(), planRequest(2000, 50, 200))
	require.NoError(t, err)

	require.Len(t, plan2.Winners, len(plan1.Winners))
	for i := range plan1.Winners {
		assert.True(t, plan1.Winners[i].Amount.Equal(plan2.Winners[i].Amount))
	}
}

func TestPreview_HardStopBelowMinWin(t *testing.T) {
	// GIVEN: Three payers but a budget of 100 with fixed 40-prizes
	// WHEN: Previewing
	// THEN: Two winners of 40 each; the third payer gets nothing because
	//       the remaining 20 cannot cover a minimum win

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
		payment{"tx-3", "256700000003", 2000},
	)

	plan, err := svc.Preview(context.Background(), planRequest(100, 40, 40))
	require.NoError(t, err)

	require.Len(t, plan.Winners, 2)
	assert.True(t, plan.Winners[0].Amount.Equal(decimal.NewFromInt(40)))
	assert.True(t, plan.Winners[1].Amount.Equal(decimal.NewFromInt(40)))
	assert.True(t, plan.Remaining.Equal(decimal.NewFromInt(20)))
}

func TestPreview_DoesNotPersistAnything(t *testing.T) {
	// GIVEN: Seeded collections
	// WHEN: Previewing repeatedly
	// THEN: Row counts in every table are unchanged

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)
	ctx := context.Background()

	before, err := store.RowCounts(ctx)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := svc.Preview(ctx, planRequest(2000, 50, 200))
		require.NoError(t, err)
	}

	after, err := store.RowCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

// =============================================================================
// PREVIEW - REJECTIONS
// =============================================================================

func TestPreview_RejectionOrder(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: Previewing with several invalid inputs at once
	// THEN: The first failing precondition wins: budget, then range, then
	//       collections

	svc, _ := newTestService(t)
	ctx := context.Background()

	// Budget invalid AND range invalid: budget reported
	_, err := svc.Preview(ctx, planRequest(0, 200, 50))
	assert.ErrorIs(t, err, engine.ErrInvalidBudget)

	// Range invalid AND no collections: range reported
	_, err = svc.Preview(ctx, planRequest(1000, 200, 50))
	assert.ErrorIs(t, err, engine.ErrInvalidPrizeRange)

	_, err = svc.Preview(ctx, planRequest(1000, 0, 50))
	assert.ErrorIs(t, err, engine.ErrInvalidPrizeRange)

	// Valid inputs, empty store: no collections
	_, err = svc.Preview(ctx, planRequest(1000, 50, 200))
	assert.ErrorIs(t, err, engine.ErrNoCollections)
}

func TestPreview_BudgetExceedsCollections(t *testing.T) {
	// GIVEN: 10000 collected today
	// WHEN: Previewing a 15000 budget
	// THEN: Rejected; a release can never exceed what was collected

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 6000},
		payment{"tx-2", "256700000002", 4000},
	)

	_, err := svc.Preview(context.Background(), planRequest(15000, 50, 200))
	assert.ErrorIs(t, err, engine.ErrBudgetExceedsCollections)
}

func TestPreview_NoEligiblePayers(t *testing.T) {
	// GIVEN: Collections exist but every transaction is already released
	// WHEN: Previewing
	// THEN: ErrNoEligiblePayers

	svc, store := newTestService(t)
	seedPaid(t, store, payment{"tx-1", "256700000001", 5000})
	ctx := context.Background()

	// Consume the only transaction through a committed release
	_, err := svc.Commit(ctx, planRequest(100, 100, 100), "test")
	require.NoError(t, err)

	_, err = svc.Preview(ctx, planRequest(100, 50, 100))
	assert.ErrorIs(t, err, engine.ErrNoEligiblePayers)
}

// =============================================================================
// OVERRIDES
// =============================================================================

func TestPreview_OverrideAppliedExactly(t *testing.T) {
	// GIVEN: An override of 150 for the top payer
	// WHEN: Previewing
	// THEN: That payer receives exactly 150

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)

	req := planRequest(2000, 50, 200)
	req.Overrides = map[engine.MSISDN]decimal.Decimal{
		"256700000001": decimal.NewFromInt(150),
	}

	plan, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Winners, 2)
	assert.True(t, plan.Winners[0].Amount.Equal(decimal.NewFromInt(150)))
}

func TestPreview_OverrideOutOfRangeRejectsWholePlan(t *testing.T) {
	// GIVEN: An override of 500 with max win 200
	// WHEN: Previewing
	// THEN: The whole plan is rejected, not silently clamped

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)

	req := planRequest(2000, 50, 200)
	req.Overrides = map[engine.MSISDN]decimal.Decimal{
		"256700000001": decimal.NewFromInt(500),
	}

	_, err := svc.Preview(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrOverrideOutOfRange)

	var overrideErr *engine.OverrideError
	require.ErrorAs(t, err, &overrideErr)
	assert.Equal(t, engine.MSISDN("256700000001"), overrideErr.MSISDN)
}

func TestPreview_OverrideForUnrankedPayerIgnored(t *testing.T) {
	// GIVEN: An override for a payer with no collections today
	// WHEN: Previewing
	// THEN: The override is ignored; only ranked payers are planned

	svc, store := newTestService(t)
	seedPaid(t, store, payment{"tx-1", "256700000001", 5000})

	req := planRequest(2000, 50, 200)
	req.Overrides = map[engine.MSISDN]decimal.Decimal{
		"256799999999": decimal.NewFromInt(100),
	}

	plan, err := svc.Preview(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, plan.Winners, 1)
	assert.Equal(t, engine.MSISDN("256700000001"), plan.Winners[0].MSISDN)
}

// =============================================================================
// PRIZE DRAW EDGES
// =============================================================================

func TestPreview_DegenerateDrawWindowPaysMinimum(t *testing.T) {
	// GIVEN: min == max, so the draw window has a single point
	// WHEN: Previewing
	// THEN: Every winner gets exactly the minimum

	svc, store := newTestService(t)
	seedPaid(t, store,
		payment{"tx-1", "256700000001", 5000},
		payment{"tx-2", "256700000002", 3000},
	)

	plan, err := svc.Preview(context.Background(), planRequest(1000, 75, 75))
	require.NoError(t, err)
	require.Len(t, plan.Winners, 2)
	for _, w := range plan.Winners {
		assert.True(t, w.Amount.Equal(decimal.NewFromInt(75)))
	}
}

func TestPreview_DrawCappedByRemainingBudget(t *testing.T) {
	// GIVEN: Budget 120 with range [50, 200]
	// WHEN: Previewing with one payer
	// THEN: The single prize never exceeds the remaining budget

	svc, store := newTestService(t)
	seedPaid(t, store, payment{"tx-1", "256700000001", 5000})

	plan, err := svc.Preview(context.Background(), planRequest(120, 50, 200))
	require.NoError(t, err)
	require.Len(t, plan.Winners, 1)
	assert.True(t, plan.Winners[0].Amount.LessThanOrEqual(decimal.NewFromInt(120)))
	assert.True(t, plan.Winners[0].Amount.GreaterThanOrEqual(decimal.NewFromInt(50)))
}
