/*
reports.go - Collections aggregation for the operator console

Read-only views over the transactions table: calendar-bucketed collection
totals (day/week/month) and the ranked payer list. Bucket boundaries come
from the civil calendar of the operating timezone, never from UTC.
*/
package payout

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/payout-engine/engine"
)

// Calendar bucket granularities for collection reports.
const (
	BucketDay   = "day"
	BucketWeek  = "week"
	BucketMonth = "month"
)

// maxBuckets bounds a single report so an open-ended date range cannot
// turn into thousands of aggregate queries.
const maxBuckets = 400

// BucketSummary is one calendar bucket of collection totals.
type BucketSummary struct {
	Label  string // "2025-03-10", "2025-W11" or "2025-03"
	Start  time.Time
	End    time.Time
	Amount decimal.Decimal
	Count  int
}

// Collections sums PAID transactions per calendar bucket between the two
// civil dates inclusive. Empty bucket defaults to day granularity.
func (s *Service) Collections(ctx context.Context, from, to engine.CivilDate, bucket string) ([]BucketSummary, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: %s is after %s", engine.ErrInvalidRange, from, to)
	}
	if bucket == "" {
		bucket = BucketDay
	}

	ranges, err := s.bucketRanges(from, to, bucket)
	if err != nil {
		return nil, err
	}

	summaries := make([]BucketSummary, 0, len(ranges))
	for _, b := range ranges {
		sum, err := s.Store.SumCollected(ctx, engine.StatusPaid, b.Start, b.End)
		if err != nil {
			return nil, err
		}
		b.Amount = sum.Amount
		b.Count = sum.Count
		summaries = append(summaries, b)
	}
	return summaries, nil
}

// EligiblePayers returns today's ranked unreleased payers, the same view
// the planner allocates from.
func (s *Service) EligiblePayers(ctx context.Context) ([]engine.PayerTotal, error) {
	start, end, err := engine.TodayBounds(s.Clock(), s.Zone)
	if err != nil {
		return nil, err
	}
	return s.Store.RankPayers(ctx, start, end, true)
}

func (s *Service) bucketRanges(from, to engine.CivilDate, bucket string) ([]BucketSummary, error) {
	var out []BucketSummary

	switch bucket {
	case BucketDay:
		for d := from; !to.Before(d); d = d.AddDays(1) {
			start, end, err := engine.DayBounds(d, s.Zone)
			if err != nil {
				return nil, err
			}
			out = append(out, BucketSummary{Label: d.String(), Start: start, End: end})
			if len(out) > maxBuckets {
				return nil, fmt.Errorf("%w: more than %d buckets", engine.ErrInvalidRange, maxBuckets)
			}
		}

	case BucketWeek:
		// Align to the Monday of the first week, then step by whole weeks.
		t := time.Date(from.Year, from.Month, from.Day, 0, 0, 0, 0, time.UTC)
		back := (int(t.Weekday()) + 6) % 7
		for d := from.AddDays(-back); !to.Before(d); d = d.AddDays(7) {
			start, end, err := engine.WeekBounds(d, s.Zone)
			if err != nil {
				return nil, err
			}
			year, week := time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).ISOWeek()
			out = append(out, BucketSummary{Label: fmt.Sprintf("%04d-W%02d", year, week), Start: start, End: end})
			if len(out) > maxBuckets {
				return nil, fmt.Errorf("%w: more than %d buckets", engine.ErrInvalidRange, maxBuckets)
			}
		}

	case BucketMonth:
		for d := (engine.CivilDate{Year: from.Year, Month: from.Month, Day: 1}); !to.Before(d); {
			start, end, err := engine.MonthBounds(d, s.Zone)
			if err != nil {
				return nil, err
			}
			out = append(out, BucketSummary{Label: fmt.Sprintf("%04d-%02d", d.Year, d.Month), Start: start, End: end})
			if len(out) > maxBuckets {
				return nil, fmt.Errorf("%w: more than %d buckets", engine.ErrInvalidRange, maxBuckets)
			}
			next := time.Date(d.Year, d.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
			d = engine.CivilDate{Year: next.Year(), Month: next.Month(), Day: 1}
		}

	default:
		return nil, fmt.Errorf("%w: bucket %q (use day, week or month)", engine.ErrInvalidRange, bucket)
	}

	return out, nil
}
