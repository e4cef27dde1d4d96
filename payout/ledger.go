/*
ledger.go - The commit side of the release workflow

PURPOSE:
  Turns a plan into persisted state: one PayoutRelease row plus one Winner
  row per claimed transaction, with each source transaction marked released
  exactly once.

WHY RE-PREVIEW:
  Commit never trusts a client-supplied plan. Collections may have changed
  between the operator's preview and the commit click, so the plan is
  recomputed from live data and validated against the same preconditions
  before anything is written.

CONCURRENCY:
  No lock is held across the allocation. Correctness rests on the store's
  atomic conditional claim: two commits racing over the same payer's
  transaction cannot both succeed, and the loser skips that winner instead
  of failing the batch. Partial success is preferred to losing the whole
  release over one contended transaction.

RETRY SAFETY:
  A retried commit re-ranks eligible payers with already-released
  transactions excluded, so it simply finds fewer (or zero) transactions
  to claim and produces a smaller or empty additional release.

SEE ALSO:
  - planner.go: the preview this builds on
  - store/sqlite/sqlite.go: ClaimWinner implementation
*/
package payout

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/engine"
)

// SystemActor tags releases committed without an explicit operator id.
const SystemActor = "system"

// CommitResult is a committed release with the winners actually persisted.
// PlannedWinners may exceed len(Winners) when concurrent commits claimed
// some transactions first; callers must not assume the counts match.
type CommitResult struct {
	Release        engine.PayoutRelease
	Winners        []engine.Winner
	PlannedWinners int
}

// Commit re-runs the preview against live data and persists the resulting
// allocation. Returns the release with its realized totals finalized.
func (s *Service) Commit(ctx context.Context, req PlanRequest, actorID string) (*CommitResult, error) {
	plan, err := s.Preview(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(plan.Winners) == 0 {
		return nil, engine.ErrNoWinnersFit
	}

	if actorID == "" {
		actorID = SystemActor
	}

	release := engine.PayoutRelease{
		ID:            engine.ReleaseID(engine.NewID("rel")),
		MinWin:        req.MinWin,
		MaxWin:        req.MaxWin,
		ReleaseBudget: req.Budget,
		Percentage:    plan.Percentage,
		CreatedBy:     actorID,
		CreatedAt:     s.Clock().UTC(),
	}
	if err := s.Store.CreateRelease(ctx, release); err != nil {
		return nil, err
	}

	var winners []engine.Winner
	totalReleased := decimal.Zero
	for _, pw := range plan.Winners {
		w := engine.Winner{
			ID:        engine.WinnerID(engine.NewID("win")),
			ReleaseID: release.ID,
			MSISDN:    pw.MSISDN,
			Amount:    pw.Amount,
			CreatedAt: s.Clock().UTC(),
		}

		claimed, err := s.Store.ClaimWinner(ctx, w, plan.WindowStart, plan.WindowEnd)
		if err != nil {
			return nil, err
		}
		if claimed == nil {
			// Concurrency miss: a racing commit consumed this payer's
			// transaction. Skip the winner, keep the batch.
			s.Log.Warn("skipping planned winner, transaction already claimed",
				zap.String("msisdn", string(pw.MSISDN)),
				zap.String("release_id", string(release.ID)))
			continue
		}

		winners = append(winners, *claimed)
		totalReleased = totalReleased.Add(claimed.Amount)
	}

	if err := s.Store.FinalizeRelease(ctx, release.ID, len(winners), totalReleased); err != nil {
		return nil, err
	}
	release.TotalWinners = len(winners)
	release.TotalReleased = totalReleased

	s.Log.Info("payout release committed",
		zap.String("release_id", string(release.ID)),
		zap.String("created_by", actorID),
		zap.Int("planned", len(plan.Winners)),
		zap.Int("persisted", len(winners)),
		zap.String("total_released", totalReleased.StringFixed(2)))

	return &CommitResult{
		Release:        release,
		Winners:        winners,
		PlannedWinners: len(plan.Winners),
	}, nil
}
