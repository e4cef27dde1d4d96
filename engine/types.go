/*
Package engine provides the core primitives of the payout release engine.

PURPOSE:
  This package contains the domain types and algorithms shared by the
  allocation planner, the release ledger, and the instant-win budget
  monitor: monetary amounts, the transaction/release/winner data model,
  day-boundary computation for the operating timezone, and the storage
  interfaces the services run against.

KEY CONCEPTS IN THIS FILE (types.go):
  - Money: decimal monetary amounts (single currency, two decimals)
  - Transaction: a single stake payment attempt
  - PayoutRelease: one committed allocation event
  - Winner: one payout line, linking a transaction to a release
  - InstantWinSettings: the live-tunable singleton configuration row

DESIGN PRINCIPLES:
  1. Precision: decimal.Decimal for all money, never float arithmetic
  2. At-most-once: a Transaction transitions to released=true exactly once
  3. Type Safety: strong typing for IDs prevents mixing identifiers
  4. Auditability: releases record who created them and realized totals

SEE ALSO:
  - dayrange.go: civil day-boundary calculation
  - errors.go: rejection reasons and classification helpers
  - store.go: persistence interfaces
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type TransactionID string
type ReleaseID string
type WinnerID string

// MSISDN is a payer's mobile money phone number.
type MSISDN string

// SettingsID is the fixed id of the singleton instant-win settings row.
const SettingsID = "instant-win"

// =============================================================================
// MONEY - Decimal helpers (single currency, two-decimal precision)
// =============================================================================

// MoneyFromCents converts a cent count back into a decimal amount.
func MoneyFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Cents converts a monetary amount to an integer cent count, rounding to
// two decimals first. Storage aggregates sum cents so totals stay exact.
func Cents(d decimal.Decimal) int64 {
	return d.Round(2).Shift(2).IntPart()
}

// =============================================================================
// TRANSACTION - A single stake payment attempt
// =============================================================================

type TransactionStatus string

const (
	StatusPending TransactionStatus = "PENDING" // push payment initiated, not confirmed
	StatusPaid    TransactionStatus = "PAID"    // gateway confirmed collection
	StatusFailed  TransactionStatus = "FAILED"  // gateway rejected or timed out
)

// Transaction records one payment attempt. Owned by the payment subsystem;
// the release ledger only ever flips Released, and only when Status is PAID.
type Transaction struct {
	ID        TransactionID
	MSISDN    MSISDN
	Amount    decimal.Decimal
	Status    TransactionStatus
	Released  bool
	CreatedAt time.Time
}

// =============================================================================
// PAYOUT RELEASE - One committed allocation event
// =============================================================================

// PayoutRelease is one allocation event. The declared bounds and budget are
// immutable after creation; TotalReleased/TotalWinners are finalized to the
// realized values in the same commit that creates the winner rows.
type PayoutRelease struct {
	ID            ReleaseID
	MinWin        decimal.Decimal
	MaxWin        decimal.Decimal
	ReleaseBudget decimal.Decimal
	TotalReleased decimal.Decimal
	TotalWinners  int
	Percentage    decimal.Decimal // budget / collected-today * 100
	CreatedBy     string          // operator id, or a system tag for automated flows
	CreatedAt     time.Time
}

// =============================================================================
// WINNER - One payout line
// =============================================================================

// Winner links exactly one released Transaction to exactly one PayoutRelease.
// A transaction is referenced by at most one winner; the claim step in the
// release ledger enforces this, with a unique index as a second guard.
type Winner struct {
	ID            WinnerID
	TransactionID TransactionID
	ReleaseID     ReleaseID
	MSISDN        MSISDN
	Amount        decimal.Decimal
	CreatedAt     time.Time
}

// =============================================================================
// INSTANT-WIN SETTINGS - Singleton configuration row
// =============================================================================

// InstantWinSettings is the live-tunable instant-win configuration. There is
// exactly one row (id = SettingsID), lazily created from configured defaults
// on first read. Services read it fresh on every operation.
type InstantWinSettings struct {
	ID              string
	Enabled         bool
	MaxPercentage   decimal.Decimal // prize-pool cap as % of daily collections, clamped to [0,90]
	BaseProbability float64         // clamped to [0,1]
	MinAmount       decimal.Decimal // clamped to >= 1
	MaxAmount       decimal.Decimal // clamped to >= MinAmount
	WinMessage      string
	NotifyEnabled   bool
	UpdatedAt       time.Time
}

// Clamp forces all tunables into their safe ranges. Applied before every
// persist so a bad operator input can never corrupt the budget arithmetic.
func (s InstantWinSettings) Clamp() InstantWinSettings {
	if s.BaseProbability < 0 {
		s.BaseProbability = 0
	}
	if s.BaseProbability > 1 {
		s.BaseProbability = 1
	}
	if s.MaxPercentage.IsNegative() {
		s.MaxPercentage = decimal.Zero
	}
	if s.MaxPercentage.GreaterThan(decimal.NewFromInt(90)) {
		s.MaxPercentage = decimal.NewFromInt(90)
	}
	one := decimal.NewFromInt(1)
	if s.MinAmount.LessThan(one) {
		s.MinAmount = one
	}
	if s.MaxAmount.LessThan(s.MinAmount) {
		s.MaxAmount = s.MinAmount
	}
	return s
}

// =============================================================================
// AGGREGATES - Read models produced by the collections aggregator
// =============================================================================

// CollectionsSummary is the sum and count of transactions in a range.
type CollectionsSummary struct {
	Amount decimal.Decimal
	Count  int
}

// PayerTotal is one row of the ranked payer list: everything the planner
// needs to allocate, plus the audit totals surfaced in previews.
type PayerTotal struct {
	MSISDN       MSISDN
	TotalAmount  decimal.Decimal
	PaymentCount int
}
