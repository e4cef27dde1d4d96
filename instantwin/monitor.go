/*
Package instantwin implements the instant-win budget monitor and its
settings service.

PURPOSE:
  The instant-win flow pays small prizes automatically as stakes arrive.
  Its spend is capped by a rolling daily prize pool: a configured
  percentage of today's collections. The monitor computes how much of the
  pool has been consumed and classifies the result into a graduated alert
  so operators see trouble before the pool runs dry.

READ-ONLY:
  The monitor never writes to the ledger. It observes committed winner
  rows (whoever created them - manual release or automated instant-win)
  and today's collections, both scoped to the operating timezone's civil
  day.

CLASSIFICATION PRECEDENCE:
  exhausted (remaining <= 0) beats everything, including a usage
  percentage below the warn threshold; then critical by threshold; then
  warn; then normal.

SEE ALSO:
  - settings.go: the tunable singleton behind Enabled/MaxPercentage
  - payout/planner.go: the manual release flow sharing the same primitives
*/
package instantwin

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/engine"
)

// Service computes instant-win budget status and manages settings.
type Service struct {
	Store    engine.Store
	Zone     string
	Clock    engine.Clock
	Defaults engine.InstantWinSettings // settings bootstrap values from config
	Warn     float64                   // usage % warn threshold
	Critical float64                   // usage % critical threshold
	Log      *zap.Logger
}

// NewService creates a monitor service with the system clock.
func NewService(store engine.Store, zone string, defaults engine.InstantWinSettings, warn, critical float64, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		Store:    store,
		Zone:     zone,
		Clock:    time.Now,
		Defaults: defaults,
		Warn:     warn,
		Critical: critical,
		Log:      log,
	}
}

// =============================================================================
// STATUS
// =============================================================================

// TodayStats is the monitor's view of today's prize pool.
type TodayStats struct {
	Collected    decimal.Decimal
	PaidCount    int
	Ceiling      decimal.Decimal // collected * maxPercentage / 100
	PrizesPaid   decimal.Decimal // winner amounts created today, all flows
	Remaining    decimal.Decimal // max(ceiling - prizesPaid, 0)
	UsagePercent float64         // prizesPaid / ceiling * 100, one decimal
}

type AnomalyLevel string

const (
	AnomalyNormal   AnomalyLevel = "normal"
	AnomalyWarn     AnomalyLevel = "warn"
	AnomalyCritical AnomalyLevel = "critical"
)

// Anomaly is the monitor's graduated alert. Exhausted marks the distinct
// "pool fully consumed" condition within the critical level.
type Anomaly struct {
	Level     AnomalyLevel
	Exhausted bool
	Message   string
}

// Status is the full monitor result.
type Status struct {
	Enabled  bool
	Settings engine.InstantWinSettings
	Today    TodayStats
	Anomaly  Anomaly
}

// GetStatus reads settings fresh, aggregates today's collections and
// payouts, and classifies pool usage.
func (s *Service) GetStatus(ctx context.Context) (*Status, error) {
	settings, err := s.Settings(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := engine.TodayBounds(s.Clock(), s.Zone)
	if err != nil {
		return nil, err
	}

	collected, err := s.Store.SumCollected(ctx, engine.StatusPaid, start, end)
	if err != nil {
		return nil, err
	}
	paid, err := s.Store.SumWinnerAmounts(ctx, start, end)
	if err != nil {
		return nil, err
	}

	ceiling := collected.Amount.Mul(settings.MaxPercentage).Div(decimal.NewFromInt(100)).Round(2)
	remaining := ceiling.Sub(paid)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}

	usage := 0.0
	if ceiling.IsPositive() {
		ratio, _ := paid.Div(ceiling).Mul(decimal.NewFromInt(100)).Float64()
		usage = math.Round(ratio*10) / 10
	}

	stats := TodayStats{
		Collected:    collected.Amount,
		PaidCount:    collected.Count,
		Ceiling:      ceiling,
		PrizesPaid:   paid,
		Remaining:    remaining,
		UsagePercent: usage,
	}

	return &Status{
		Enabled:  settings.Enabled,
		Settings: *settings,
		Today:    stats,
		Anomaly:  Classify(usage, ceiling.Sub(paid), s.Warn, s.Critical),
	}, nil
}

// Classify turns pool usage into an anomaly. Pure function; precedence is
// strict: exhausted, then critical by threshold, then warn, then normal.
func Classify(usagePercent float64, remaining decimal.Decimal, warnThreshold, criticalThreshold float64) Anomaly {
	switch {
	case !remaining.IsPositive():
		return Anomaly{
			Level:     AnomalyCritical,
			Exhausted: true,
			Message:   "instant-win prize pool exhausted: no budget remains for today",
		}
	case usagePercent >= criticalThreshold:
		return Anomaly{
			Level:   AnomalyCritical,
			Message: "instant-win prize pool critically close to today's cap",
		}
	case usagePercent >= warnThreshold:
		return Anomaly{
			Level:   AnomalyWarn,
			Message: "instant-win prize pool approaching today's cap",
		}
	default:
		return Anomaly{Level: AnomalyNormal, Message: "instant-win prize pool within budget"}
	}
}
