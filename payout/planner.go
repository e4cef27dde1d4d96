/*
Package payout implements the payout release engine: the preview/commit
allocation workflow and the collections reporting built on top of it.

PURPOSE:
  Given a pool of collected-but-unreleased stake payments, allocate a
  bounded prize budget across winners without ever releasing more than was
  collected, without double-paying a transaction, and with a two-phase
  preview/commit workflow so operators inspect an allocation before it
  becomes irreversible.

THE PLANNER (this file):
  Preview ranks today's eligible payers by total paid and walks the list,
  drawing a prize per payer until the remaining budget drops below the
  minimum win. Preview is read-only and repeatable; only the randomized
  draws differ between runs.

ORDERING POLICY:
  Highest total paid first, hard stop once remaining < minWin. Payers
  ranked below the stop receive nothing even if budget remains below
  maxWin. This is the deliberate policy, not round-robin fairness.

SEE ALSO:
  - ledger.go: the commit side (re-preview, claim, persist)
  - reports.go: collections aggregation for the console
*/
package payout

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/engine"
)

// Service is the payout release engine. Zero-value fields are filled with
// production defaults by NewService; tests set Rand and Clock directly.
type Service struct {
	Store engine.Store
	Zone  string // IANA zone name of the operating region
	Rand  engine.Rand
	Clock engine.Clock
	Log   *zap.Logger
}

// NewService creates a payout service with a crypto-seeded random source
// and the system clock.
func NewService(store engine.Store, zone string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store: store,
		Zone:  zone,
		Rand:  engine.NewRand(),
		Clock: time.Now,
		Log:   log,
	}
}

// =============================================================================
// PLAN TYPES
// =============================================================================

// PlanRequest carries the operator's allocation parameters.
type PlanRequest struct {
	Budget    decimal.Decimal
	MinWin    decimal.Decimal
	MaxWin    decimal.Decimal
	Overrides map[engine.MSISDN]decimal.Decimal // optional fixed amounts per payer
}

// PlannedWinner is one allocation line of a preview, with the payer's
// audit totals.
type PlannedWinner struct {
	MSISDN       engine.MSISDN
	Amount       decimal.Decimal
	TotalPaid    decimal.Decimal
	PaymentCount int
}

// Plan is the result of a preview: the winner list plus the realized
// totals and the day window it was computed against.
type Plan struct {
	Winners        []PlannedWinner
	TotalPlanned   decimal.Decimal
	Remaining      decimal.Decimal
	Percentage     decimal.Decimal // budget / collected-today * 100
	CollectedToday decimal.Decimal
	WindowStart    time.Time
	WindowEnd      time.Time
}

// =============================================================================
// PREVIEW
// =============================================================================

// Preview computes an allocation plan without persisting anything.
// Preconditions are checked in order, each with a distinct rejection:
// positive budget, ordered positive prize range, collections today,
// budget within collections, at least one eligible payer.
func (s *Service) Preview(ctx context.Context, req PlanRequest) (*Plan, error) {
	if !req.Budget.IsPositive() {
		return nil, engine.ErrInvalidBudget
	}
	if !req.MinWin.IsPositive() || req.MinWin.GreaterThan(req.MaxWin) {
		return nil, engine.ErrInvalidPrizeRange
	}

	start, end, err := engine.TodayBounds(s.Clock(), s.Zone)
	if err != nil {
		return nil, err
	}

	collected, err := s.Store.SumCollected(ctx, engine.StatusPaid, start, end)
	if err != nil {
		return nil, err
	}
	if !collected.Amount.IsPositive() {
		return nil, engine.ErrNoCollections
	}
	if req.Budget.GreaterThan(collected.Amount) {
		return nil, engine.ErrBudgetExceedsCollections
	}

	payers, err := s.Store.RankPayers(ctx, start, end, true)
	if err != nil {
		return nil, err
	}
	if len(payers) == 0 {
		return nil, engine.ErrNoEligiblePayers
	}

	remaining := req.Budget
	var winners []PlannedWinner
	for _, p := range payers {
		// Hard stop: once the remaining budget cannot cover a minimum
		// win, lower-ranked payers get nothing.
		if remaining.LessThan(req.MinWin) {
			break
		}

		amount, err := s.prizeFor(p.MSISDN, req, remaining)
		if err != nil {
			return nil, err
		}

		remaining = remaining.Sub(amount)
		winners = append(winners, PlannedWinner{
			MSISDN:       p.MSISDN,
			Amount:       amount,
			TotalPaid:    p.TotalAmount,
			PaymentCount: p.PaymentCount,
		})
	}

	return &Plan{
		Winners:        winners,
		TotalPlanned:   req.Budget.Sub(remaining),
		Remaining:      remaining,
		Percentage:     req.Budget.Div(collected.Amount).Mul(decimal.NewFromInt(100)).Round(2),
		CollectedToday: collected.Amount,
		WindowStart:    start,
		WindowEnd:      end,
	}, nil
}

// prizeFor picks a payer's prize: the override amount when one exists
// (validated all-or-nothing), otherwise a uniform integer draw in
// [minWin, min(maxWin, remaining)].
func (s *Service) prizeFor(msisdn engine.MSISDN, req PlanRequest, remaining decimal.Decimal) (decimal.Decimal, error) {
	if amount, ok := req.Overrides[msisdn]; ok {
		if amount.LessThan(req.MinWin) || amount.GreaterThan(req.MaxWin) || amount.GreaterThan(remaining) {
			return decimal.Zero, &engine.OverrideError{
				MSISDN:    msisdn,
				Amount:    amount,
				MinWin:    req.MinWin,
				MaxWin:    req.MaxWin,
				Remaining: remaining,
			}
		}
		return amount, nil
	}

	lo := req.MinWin.Ceil().IntPart()
	hi := decimal.Min(req.MaxWin, remaining).Floor().IntPart()
	if hi <= lo {
		// Degenerate window (e.g. fractional bounds a whole draw cannot
		// fit between): pay the minimum.
		return req.MinWin, nil
	}
	draw := lo + int64(s.Rand.IntN(int(hi-lo)+1))
	return decimal.NewFromInt(draw), nil
}
