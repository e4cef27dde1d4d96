/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements engine.Store (transactions, releases, winners, settings) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  transactions:         one row per stake payment attempt
  payout_releases:      one row per committed allocation event
  winners:              one row per payout line
  instant_win_settings: singleton configuration row

MONEY REPRESENTATION:
  Amounts are stored as integer cents so SUM() aggregates stay exact.
  Conversion to/from decimal.Decimal happens at this boundary only.

THE CLAIM:
  ClaimWinner is the engine's single concurrency-control point. Inside one
  database transaction it selects the payer's newest eligible stake, flips
  released with a conditional UPDATE scoped to (status='PAID' AND
  released=0), and inserts the winner row. A racing commit observes zero
  rows affected and the claim reports a miss instead of an error. A unique
  index on winners.transaction_id backs the invariant.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  multiple readers don't block, single writer at a time.

USAGE:
  store, err := sqlite.New("./data/payouts.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - engine/store.go: interface definitions
  - payout/ledger.go: commit flow using ClaimWinner
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payout-engine/engine"
)

// Store implements engine.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Stake transactions (one row per payment attempt)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		msisdn TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		released INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	-- Ranked-payer aggregation and eligibility lookup (hot path)
	CREATE INDEX IF NOT EXISTS idx_transactions_status_created
		ON transactions(status, created_at);
	CREATE INDEX IF NOT EXISTS idx_transactions_msisdn_created
		ON transactions(msisdn, created_at DESC);

	-- Payout releases (one row per allocation event)
	CREATE TABLE IF NOT EXISTS payout_releases (
		id TEXT PRIMARY KEY,
		min_win_cents INTEGER NOT NULL,
		max_win_cents INTEGER NOT NULL,
		budget_cents INTEGER NOT NULL,
		released_cents INTEGER NOT NULL DEFAULT 0,
		total_winners INTEGER NOT NULL DEFAULT 0,
		percentage TEXT NOT NULL DEFAULT '0',
		created_by TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_releases_created
		ON payout_releases(created_at DESC);

	-- Winners (one payout line per claimed transaction)
	CREATE TABLE IF NOT EXISTS winners (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		release_id TEXT NOT NULL,
		msisdn TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (transaction_id) REFERENCES transactions(id),
		FOREIGN KEY (release_id) REFERENCES payout_releases(id)
	);

	-- CRITICAL: a transaction may back at most one winner. The claim's
	-- conditional update enforces this; the index is the second guard.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_winners_unique_transaction
		ON winners(transaction_id);

	CREATE INDEX IF NOT EXISTS idx_winners_release
		ON winners(release_id);
	CREATE INDEX IF NOT EXISTS idx_winners_msisdn
		ON winners(msisdn);
	CREATE INDEX IF NOT EXISTS idx_winners_created
		ON winners(created_at);

	-- Instant-win settings (singleton, id fixed)
	CREATE TABLE IF NOT EXISTS instant_win_settings (
		id TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL,
		max_percentage TEXT NOT NULL,
		base_probability REAL NOT NULL,
		min_amount_cents INTEGER NOT NULL,
		max_amount_cents INTEGER NOT NULL,
		win_message TEXT NOT NULL DEFAULT '',
		notify_enabled INTEGER NOT NULL DEFAULT 0,
		updated_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION STORE (engine.TransactionStore interface)
// =============================================================================

// CreateTransaction persists a new stake transaction.
func (s *Store) CreateTransaction(ctx context.Context, tx engine.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO transactions (id, msisdn, amount_cents, status, released, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(tx.ID),
		string(tx.MSISDN),
		engine.Cents(tx.Amount),
		string(tx.Status),
		boolToInt(tx.Released),
		tx.CreatedAt.UTC().Format(time.RFC3339),
	)

	if err != nil {
		if isUniqueConstraintError(err) {
			return engine.ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	return nil
}

// GetTransaction returns a transaction by id.
func (s *Store) GetTransaction(ctx context.Context, id engine.TransactionID) (*engine.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, msisdn, amount_cents, status, released, created_at
		FROM transactions WHERE id = ?
	`

	tx, err := scanTransaction(s.db.QueryRowContext(ctx, query, string(id)))
	if err == sql.ErrNoRows {
		return nil, engine.ErrTransactionNotFound
	}
	if err != nil {
		return nil, err
	}
	return tx, nil
}

// SettleTransaction moves a PENDING transaction to its final status.
// The update is conditional on status='PENDING' so a duplicate gateway
// callback cannot overwrite an already-settled transaction.
func (s *Store) SettleTransaction(ctx context.Context, id engine.TransactionID, status engine.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE transactions SET status = ? WHERE id = ? AND status = 'PENDING'`,
		string(status), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to settle transaction: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transactions WHERE id = ?`, string(id),
		).Scan(&exists)
		if err != nil {
			return err
		}
		if exists == 0 {
			return engine.ErrTransactionNotFound
		}
		return engine.ErrTransactionFinalized
	}
	return nil
}

// SumCollected sums and counts transactions by status in [start, end).
func (s *Store) SumCollected(ctx context.Context, status engine.TransactionStatus, start, end time.Time) (engine.CollectionsSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT COALESCE(SUM(amount_cents), 0), COUNT(*)
		FROM transactions
		WHERE status = ? AND created_at >= ? AND created_at < ?
	`

	var cents int64
	var count int
	err := s.db.QueryRowContext(ctx, query,
		string(status), utc(start), utc(end),
	).Scan(&cents, &count)
	if err != nil {
		return engine.CollectionsSummary{}, fmt.Errorf("failed to sum collections: %w", err)
	}

	return engine.CollectionsSummary{Amount: engine.MoneyFromCents(cents), Count: count}, nil
}

// RankPayers groups PAID transactions in [start, end) by payer, highest
// total first, ties broken by msisdn for determinism.
func (s *Store) RankPayers(ctx context.Context, start, end time.Time, excludeReleased bool) ([]engine.PayerTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT msisdn, SUM(amount_cents) AS total, COUNT(*)
		FROM transactions
		WHERE status = 'PAID' AND created_at >= ? AND created_at < ?
	`
	if excludeReleased {
		query += ` AND released = 0`
	}
	query += `
		GROUP BY msisdn
		ORDER BY total DESC, msisdn ASC
	`

	rows, err := s.db.QueryContext(ctx, query, utc(start), utc(end))
	if err != nil {
		return nil, fmt.Errorf("failed to rank payers: %w", err)
	}
	defer rows.Close()

	var payers []engine.PayerTotal
	for rows.Next() {
		var msisdn string
		var cents int64
		var count int
		if err := rows.Scan(&msisdn, &cents, &count); err != nil {
			return nil, err
		}
		payers = append(payers, engine.PayerTotal{
			MSISDN:       engine.MSISDN(msisdn),
			TotalAmount:  engine.MoneyFromCents(cents),
			PaymentCount: count,
		})
	}
	return payers, rows.Err()
}

// =============================================================================
// RELEASE STORE (engine.ReleaseStore interface)
// =============================================================================

// CreateRelease persists a new payout release.
func (s *Store) CreateRelease(ctx context.Context, r engine.PayoutRelease) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO payout_releases
		(id, min_win_cents, max_win_cents, budget_cents, released_cents,
		 total_winners, percentage, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		string(r.ID),
		engine.Cents(r.MinWin),
		engine.Cents(r.MaxWin),
		engine.Cents(r.ReleaseBudget),
		engine.Cents(r.TotalReleased),
		r.TotalWinners,
		r.Percentage.String(),
		r.CreatedBy,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to create release: %w", err)
	}
	return nil
}

// FinalizeRelease sets the realized totals after winners are persisted.
func (s *Store) FinalizeRelease(ctx context.Context, id engine.ReleaseID, totalWinners int, totalReleased decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE payout_releases SET total_winners = ?, released_cents = ? WHERE id = ?`,
		totalWinners, engine.Cents(totalReleased), string(id),
	)
	if err != nil {
		return fmt.Errorf("failed to finalize release: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return engine.ErrReleaseNotFound
	}
	return nil
}

// GetRelease returns a release by id.
func (s *Store) GetRelease(ctx context.Context, id engine.ReleaseID) (*engine.PayoutRelease, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, min_win_cents, max_win_cents, budget_cents, released_cents,
		       total_winners, percentage, created_by, created_at
		FROM payout_releases WHERE id = ?
	`

	r, err := scanRelease(s.db.QueryRowContext(ctx, query, string(id)))
	if err == sql.ErrNoRows {
		return nil, engine.ErrReleaseNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ListReleases returns a page of releases newest-first.
func (s *Store) ListReleases(ctx context.Context, page, limit int) ([]engine.PayoutRelease, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, limit = normalizePage(page, limit)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payout_releases`).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, min_win_cents, max_win_cents, budget_cents, released_cents,
		       total_winners, percentage, created_by, created_at
		FROM payout_releases
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var releases []engine.PayoutRelease
	for rows.Next() {
		r, err := scanRelease(rows)
		if err != nil {
			return nil, 0, err
		}
		releases = append(releases, *r)
	}
	return releases, total, rows.Err()
}

// ClaimWinner claims the payer's most recent eligible transaction in
// [start, end) and records the winner row in the same database transaction.
// Returns (nil, nil) when no eligible transaction remains or a racing
// commit already claimed it.
func (s *Store) ClaimWinner(ctx context.Context, w engine.Winner, start, end time.Time) (*engine.Winner, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim: %w", err)
	}
	defer sqlTx.Rollback()

	// Most recent eligible stake for this payer within today's boundary.
	var txID string
	err = sqlTx.QueryRowContext(ctx, `
		SELECT id FROM transactions
		WHERE msisdn = ? AND status = 'PAID' AND released = 0
		  AND created_at >= ? AND created_at < ?
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, string(w.MSISDN), utc(start), utc(end)).Scan(&txID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to locate eligible transaction: %w", err)
	}

	// The conditional claim. A concurrent commit racing over the same
	// transaction sees zero rows affected and treats the payer as consumed.
	res, err := sqlTx.ExecContext(ctx, `
		UPDATE transactions SET released = 1
		WHERE id = ? AND status = 'PAID' AND released = 0
	`, txID)
	if err != nil {
		return nil, fmt.Errorf("failed to claim transaction: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, nil
	}

	_, err = sqlTx.ExecContext(ctx, `
		INSERT INTO winners (id, transaction_id, release_id, msisdn, amount_cents, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		string(w.ID),
		txID,
		string(w.ReleaseID),
		string(w.MSISDN),
		engine.Cents(w.Amount),
		w.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			// Lost the race to a commit that claimed the same transaction
			// through a different path.
			return nil, nil
		}
		return nil, fmt.Errorf("failed to record winner: %w", err)
	}

	if err := sqlTx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}

	w.TransactionID = engine.TransactionID(txID)
	return &w, nil
}

// =============================================================================
// WINNER STORE (engine.WinnerStore interface)
// =============================================================================

// ListWinners returns a page of winners newest-first matching the filter.
func (s *Store) ListWinners(ctx context.Context, filter engine.WinnerFilter, page, limit int) ([]engine.Winner, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	page, limit = normalizePage(page, limit)

	where := []string{"1=1"}
	var args []any
	if filter.MSISDN != "" {
		where = append(where, "msisdn = ?")
		args = append(args, string(filter.MSISDN))
	}
	if filter.ReleaseID != "" {
		where = append(where, "release_id = ?")
		args = append(args, string(filter.ReleaseID))
	}
	cond := strings.Join(where, " AND ")

	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM winners WHERE `+cond, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, transaction_id, release_id, msisdn, amount_cents, created_at
		FROM winners
		WHERE ` + cond + `
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`
	args = append(args, limit, (page-1)*limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var winners []engine.Winner
	for rows.Next() {
		var w engine.Winner
		var id, txID, relID, msisdn, createdAt string
		var cents int64
		if err := rows.Scan(&id, &txID, &relID, &msisdn, &cents, &createdAt); err != nil {
			return nil, 0, err
		}
		w.ID = engine.WinnerID(id)
		w.TransactionID = engine.TransactionID(txID)
		w.ReleaseID = engine.ReleaseID(relID)
		w.MSISDN = engine.MSISDN(msisdn)
		w.Amount = engine.MoneyFromCents(cents)
		w.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		winners = append(winners, w)
	}
	return winners, total, rows.Err()
}

// SumWinnerAmounts totals winner amounts created in [start, end).
func (s *Store) SumWinnerAmounts(ctx context.Context, start, end time.Time) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var cents int64
	err := s.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_cents), 0) FROM winners
		WHERE created_at >= ? AND created_at < ?
	`, utc(start), utc(end)).Scan(&cents)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum winner amounts: %w", err)
	}
	return engine.MoneyFromCents(cents), nil
}

// =============================================================================
// SETTINGS STORE (engine.SettingsStore interface)
// =============================================================================

// GetSettings returns the settings row, or nil if never created.
func (s *Store) GetSettings(ctx context.Context) (*engine.InstantWinSettings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, enabled, max_percentage, base_probability,
		       min_amount_cents, max_amount_cents, win_message, notify_enabled, updated_at
		FROM instant_win_settings WHERE id = ?
	`

	var st engine.InstantWinSettings
	var enabled, notify int
	var maxPct, updatedAt string
	var minCents, maxCents int64

	err := s.db.QueryRowContext(ctx, query, engine.SettingsID).Scan(
		&st.ID, &enabled, &maxPct, &st.BaseProbability,
		&minCents, &maxCents, &st.WinMessage, &notify, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	st.Enabled = enabled != 0
	st.NotifyEnabled = notify != 0
	st.MaxPercentage, _ = decimal.NewFromString(maxPct)
	st.MinAmount = engine.MoneyFromCents(minCents)
	st.MaxAmount = engine.MoneyFromCents(maxCents)
	st.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &st, nil
}

// InitSettings inserts the settings row if absent. INSERT OR IGNORE makes
// the find-or-create race harmless: the second creator reads back the first.
func (s *Store) InitSettings(ctx context.Context, st engine.InstantWinSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT OR IGNORE INTO instant_win_settings
		(id, enabled, max_percentage, base_probability, min_amount_cents,
		 max_amount_cents, win_message, notify_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		engine.SettingsID,
		boolToInt(st.Enabled),
		st.MaxPercentage.String(),
		st.BaseProbability,
		engine.Cents(st.MinAmount),
		engine.Cents(st.MaxAmount),
		st.WinMessage,
		boolToInt(st.NotifyEnabled),
		st.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// SaveSettings overwrites the settings row.
func (s *Store) SaveSettings(ctx context.Context, st engine.InstantWinSettings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO instant_win_settings
		(id, enabled, max_percentage, base_probability, min_amount_cents,
		 max_amount_cents, win_message, notify_enabled, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			enabled = excluded.enabled,
			max_percentage = excluded.max_percentage,
			base_probability = excluded.base_probability,
			min_amount_cents = excluded.min_amount_cents,
			max_amount_cents = excluded.max_amount_cents,
			win_message = excluded.win_message,
			notify_enabled = excluded.notify_enabled,
			updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		engine.SettingsID,
		boolToInt(st.Enabled),
		st.MaxPercentage.String(),
		st.BaseProbability,
		engine.Cents(st.MinAmount),
		engine.Cents(st.MaxAmount),
		st.WinMessage,
		boolToInt(st.NotifyEnabled),
		st.UpdatedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// RowCounts returns per-table row counts. Used by tests to assert that
// previews never persist anything.
func (s *Store) RowCounts(ctx context.Context) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, table := range []string{"transactions", "payout_releases", "winners", "instant_win_settings"} {
		var n int
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
			return nil, err
		}
		counts[table] = n
	}
	return counts, nil
}

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"winners", "payout_releases", "transactions", "instant_win_settings"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*engine.Transaction, error) {
	var tx engine.Transaction
	var id, msisdn, status, createdAt string
	var cents int64
	var released int

	if err := row.Scan(&id, &msisdn, &cents, &status, &released, &createdAt); err != nil {
		return nil, err
	}

	tx.ID = engine.TransactionID(id)
	tx.MSISDN = engine.MSISDN(msisdn)
	tx.Amount = engine.MoneyFromCents(cents)
	tx.Status = engine.TransactionStatus(status)
	tx.Released = released != 0
	tx.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &tx, nil
}

func scanRelease(row rowScanner) (*engine.PayoutRelease, error) {
	var r engine.PayoutRelease
	var id, percentage, createdBy, createdAt string
	var minCents, maxCents, budgetCents, releasedCents int64

	err := row.Scan(&id, &minCents, &maxCents, &budgetCents, &releasedCents,
		&r.TotalWinners, &percentage, &createdBy, &createdAt)
	if err != nil {
		return nil, err
	}

	r.ID = engine.ReleaseID(id)
	r.MinWin = engine.MoneyFromCents(minCents)
	r.MaxWin = engine.MoneyFromCents(maxCents)
	r.ReleaseBudget = engine.MoneyFromCents(budgetCents)
	r.TotalReleased = engine.MoneyFromCents(releasedCents)
	r.Percentage, _ = decimal.NewFromString(percentage)
	r.CreatedBy = createdBy
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &r, nil
}

func utc(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
