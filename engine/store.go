/*
store.go - Persistence interfaces for the payout engine

PURPOSE:
  Defines the interface between the domain services and the database. The
  services never see SQL; they see transactions, releases, winners and
  settings plus the aggregate queries the planner and monitor need.

KEY INTERFACES:
  TransactionStore: stake transactions + collections aggregates
  ReleaseStore:     payout releases and the atomic winner claim
  WinnerStore:      winner listing and daily payout totals
  SettingsStore:    the instant-win settings singleton

CONCURRENCY CONTRACT:
  ClaimWinner is the single mutual-exclusion point of the whole engine. It
  must atomically select the payer's most recent eligible transaction, flip
  its released flag with a conditional update, and record the winner row.
  When a racing commit already consumed the transaction it returns
  (nil, nil) - a concurrency miss, not an error.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production implementation

SEE ALSO:
  - payout/ledger.go: commit flow built on ClaimWinner
  - instantwin/monitor.go: built on the aggregate queries
*/
package engine

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// TRANSACTION STORE - Stake payments and collections aggregates
// =============================================================================

type TransactionStore interface {
	// CreateTransaction persists a new stake transaction. Returns
	// ErrDuplicateTransaction if the id already exists.
	CreateTransaction(ctx context.Context, tx Transaction) error

	// GetTransaction returns a transaction, or ErrTransactionNotFound.
	GetTransaction(ctx context.Context, id TransactionID) (*Transaction, error)

	// SettleTransaction moves a PENDING transaction to PAID or FAILED.
	// Applied at most once: returns ErrTransactionFinalized if the
	// transaction already left PENDING, ErrTransactionNotFound if missing.
	SettleTransaction(ctx context.Context, id TransactionID, status TransactionStatus) error

	// SumCollected sums and counts transactions with the given status whose
	// creation instant falls in [start, end).
	SumCollected(ctx context.Context, status TransactionStatus, start, end time.Time) (CollectionsSummary, error)

	// RankPayers groups PAID transactions in [start, end) by payer, ordered
	// by total amount descending, ties broken by msisdn ascending. With
	// excludeReleased, already-released transactions do not contribute.
	RankPayers(ctx context.Context, start, end time.Time, excludeReleased bool) ([]PayerTotal, error)
}

// =============================================================================
// RELEASE STORE - Allocation events and the atomic claim
// =============================================================================

type ReleaseStore interface {
	// CreateRelease persists a new payout release with zero totals.
	CreateRelease(ctx context.Context, r PayoutRelease) error

	// FinalizeRelease sets the realized totals once winners are persisted.
	FinalizeRelease(ctx context.Context, id ReleaseID, totalWinners int, totalReleased decimal.Decimal) error

	// GetRelease returns a release, or ErrReleaseNotFound.
	GetRelease(ctx context.Context, id ReleaseID) (*PayoutRelease, error)

	// ListReleases returns a page of releases newest-first plus the total
	// release count.
	ListReleases(ctx context.Context, page, limit int) ([]PayoutRelease, int, error)

	// ClaimWinner claims the payer's most recent eligible transaction in
	// [start, end) and records the winner row atomically. The claim is a
	// conditional update on (status=PAID, released=false); zero rows
	// affected means a racing commit won, and (nil, nil) is returned. On
	// success the returned winner carries the claimed transaction id.
	ClaimWinner(ctx context.Context, w Winner, start, end time.Time) (*Winner, error)
}

// =============================================================================
// WINNER STORE - Payout lines
// =============================================================================

// WinnerFilter narrows winner listings. Zero values mean "any".
type WinnerFilter struct {
	MSISDN    MSISDN
	ReleaseID ReleaseID
}

type WinnerStore interface {
	// ListWinners returns a page of winners newest-first plus the total
	// count matching the filter.
	ListWinners(ctx context.Context, filter WinnerFilter, page, limit int) ([]Winner, int, error)

	// SumWinnerAmounts totals winner amounts created in [start, end),
	// regardless of which release flow produced them.
	SumWinnerAmounts(ctx context.Context, start, end time.Time) (decimal.Decimal, error)
}

// =============================================================================
// SETTINGS STORE - Instant-win singleton
// =============================================================================

type SettingsStore interface {
	// GetSettings returns the settings row, or nil if it was never created.
	GetSettings(ctx context.Context) (*InstantWinSettings, error)

	// InitSettings inserts the settings row if absent. Creating it twice is
	// a no-op, so a find-or-create race cannot fail.
	InitSettings(ctx context.Context, s InstantWinSettings) error

	// SaveSettings overwrites the settings row.
	SaveSettings(ctx context.Context, s InstantWinSettings) error
}

// Store is the full persistence surface the engine runs against.
type Store interface {
	TransactionStore
	ReleaseStore
	WinnerStore
	SettingsStore
}
