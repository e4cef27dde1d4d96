/*
errors.go - Centralized error types for the payout engine

PURPOSE:
  All rejection reasons and failure modes in one place. The API layer maps
  these onto HTTP statuses; services return them unwrapped so callers can
  use errors.Is.

ERROR CATEGORIES:
  1. Validation rejections - bad plan inputs, surfaced with a specific
     reason string, never retried automatically
  2. Not-found / conflict - lookup and payment-callback failures
  3. Configuration - timezone data missing (fatal, never degraded)

Concurrency misses (a planned winner's transaction claimed by a racing
commit) are NOT errors: the ledger recovers locally by skipping the winner.

SEE ALSO:
  - payout/planner.go: returns the validation rejections in order
  - api/handlers.go: maps categories to HTTP statuses
*/
package engine

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidBudget is returned when the release budget is not positive.
	ErrInvalidBudget = errors.New("release budget must be greater than zero")

	// ErrInvalidPrizeRange is returned when the min/max prize bounds are not
	// ordered positive values.
	ErrInvalidPrizeRange = errors.New("prize range invalid: require 0 < min win <= max win")

	// ErrNoCollections is returned when nothing has been collected today.
	ErrNoCollections = errors.New("no collections recorded today")

	// ErrBudgetExceedsCollections is returned when the budget is larger than
	// today's collected total. Releasing more than was collected is never
	// allowed, whatever the operator asked for.
	ErrBudgetExceedsCollections = errors.New("release budget exceeds today's collections")

	// ErrNoEligiblePayers is returned when no unreleased paid payer exists
	// within today's boundary.
	ErrNoEligiblePayers = errors.New("no eligible payers found today")

	// ErrNoWinnersFit is returned at commit time when the fresh preview
	// produced an empty winner list.
	ErrNoWinnersFit = errors.New("no winners fit the current budget")

	// ErrInvalidRange is returned when a report's date range or bucket
	// granularity cannot be aggregated.
	ErrInvalidRange = errors.New("invalid report range")

	// ErrTimezoneUnavailable is returned when the operating timezone cannot
	// be loaded. Fatal: a silent UTC fallback would shift every budget
	// boundary by the zone offset.
	ErrTimezoneUnavailable = errors.New("timezone data unavailable")

	// ErrTransactionNotFound is returned on lookups of unknown transactions.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrReleaseNotFound is returned on lookups of unknown releases.
	ErrReleaseNotFound = errors.New("release not found")

	// ErrDuplicateTransaction is returned when a stake is initiated with an
	// id that already exists. Expected on gateway retries.
	ErrDuplicateTransaction = errors.New("transaction id already exists")

	// ErrTransactionFinalized is returned when a payment callback targets a
	// transaction that already left PENDING. Callbacks are applied at most
	// once.
	ErrTransactionFinalized = errors.New("transaction already finalized")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// OverrideError rejects a whole plan because one per-payer override amount
// is out of range or over budget. Overrides are all-or-nothing.
type OverrideError struct {
	MSISDN    MSISDN
	Amount    decimal.Decimal
	MinWin    decimal.Decimal
	MaxWin    decimal.Decimal
	Remaining decimal.Decimal
}

func (e *OverrideError) Error() string {
	return fmt.Sprintf("override for %s of %s outside allowed range [%s, %s] (remaining budget %s)",
		e.MSISDN, e.Amount, e.MinWin, e.MaxWin, e.Remaining)
}

func (e *OverrideError) Unwrap() error {
	return ErrOverrideOutOfRange
}

// ErrOverrideOutOfRange is the sentinel wrapped by OverrideError.
var ErrOverrideOutOfRange = errors.New("override amount out of range")

// TimezoneError wraps ErrTimezoneUnavailable with the zone that failed.
type TimezoneError struct {
	Zone string
	Err  error
}

func (e *TimezoneError) Error() string {
	return fmt.Sprintf("timezone %q unavailable: %v", e.Zone, e.Err)
}

func (e *TimezoneError) Unwrap() error {
	return ErrTimezoneUnavailable
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRejection returns true for validation rejections: the caller should fix
// the inputs rather than retry.
func IsRejection(err error) bool {
	return errors.Is(err, ErrInvalidBudget) ||
		errors.Is(err, ErrInvalidPrizeRange) ||
		errors.Is(err, ErrNoCollections) ||
		errors.Is(err, ErrBudgetExceedsCollections) ||
		errors.Is(err, ErrNoEligiblePayers) ||
		errors.Is(err, ErrNoWinnersFit) ||
		errors.Is(err, ErrInvalidRange) ||
		errors.Is(err, ErrOverrideOutOfRange)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrReleaseNotFound)
}

// IsConflict returns true for duplicate/already-finalized conditions that
// map to HTTP 409.
func IsConflict(err error) bool {
	return errors.Is(err, ErrDuplicateTransaction) ||
		errors.Is(err, ErrTransactionFinalized)
}
