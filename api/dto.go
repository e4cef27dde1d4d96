/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

MONEY:
  Amounts cross the wire as strings with two decimals ("1500.00"), never
  as floats. Request amounts are parsed with decimal.NewFromString so a
  malformed amount is a 400, not a silently truncated float.

SEE ALSO:
  - handlers.go: Uses these types
  - payout/planner.go: The domain types these wrap
*/
package api

import (
	"strconv"
	"time"

	"github.com/warp/payout-engine/engine"
	"github.com/warp/payout-engine/instantwin"
	"github.com/warp/payout-engine/payout"
)

// =============================================================================
// RELEASE TYPES
// =============================================================================

// ReleaseRequest is the body of both preview and commit calls.
type ReleaseRequest struct {
	Budget    string            `json:"budget"`
	MinWin    string            `json:"min_win"`
	MaxWin    string            `json:"max_win"`
	Overrides map[string]string `json:"overrides,omitempty"`
	CreatedBy string            `json:"created_by,omitempty"`
}

// PlannedWinnerDTO is one allocation line of a preview.
type PlannedWinnerDTO struct {
	MSISDN       string `json:"msisdn"`
	Amount       string `json:"amount"`
	TotalPaid    string `json:"total_paid"`
	PaymentCount int    `json:"payment_count"`
}

// PlanDTO is the preview response.
type PlanDTO struct {
	Winners        []PlannedWinnerDTO `json:"winners"`
	TotalPlanned   string             `json:"total_planned"`
	Remaining      string             `json:"remaining"`
	Percentage     string             `json:"percentage"`
	CollectedToday string             `json:"collected_today"`
	WindowStart    string             `json:"window_start"`
	WindowEnd      string             `json:"window_end"`
}

// ReleaseDTO represents a committed release in API responses.
type ReleaseDTO struct {
	ID            string `json:"id"`
	MinWin        string `json:"min_win"`
	MaxWin        string `json:"max_win"`
	ReleaseBudget string `json:"release_budget"`
	TotalReleased string `json:"total_released"`
	TotalWinners  int    `json:"total_winners"`
	Percentage    string `json:"percentage"`
	CreatedBy     string `json:"created_by"`
	CreatedAt     string `json:"created_at"`
}

// CommitResponse is the commit response: the release plus the winners
// actually persisted. Skipped counts how many planned winners were lost
// to concurrent commits.
type CommitResponse struct {
	Release ReleaseDTO  `json:"release"`
	Winners []WinnerDTO `json:"winners"`
	Planned int         `json:"planned"`
	Skipped int         `json:"skipped"`
}

// WinnerDTO represents a winner in API responses.
type WinnerDTO struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	ReleaseID     string `json:"release_id"`
	MSISDN        string `json:"msisdn"`
	Amount        string `json:"amount"`
	CreatedAt     string `json:"created_at"`
}

// PageResponse wraps a paginated list with its total row count.
type PageResponse struct {
	Items any `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// =============================================================================
// COLLECTIONS TYPES
// =============================================================================

// BucketDTO is one calendar bucket of collection totals.
type BucketDTO struct {
	Label  string `json:"label"`
	Start  string `json:"start"`
	End    string `json:"end"`
	Amount string `json:"amount"`
	Count  int    `json:"count"`
}

// PayerDTO is one ranked eligible payer.
type PayerDTO struct {
	MSISDN       string `json:"msisdn"`
	TotalAmount  string `json:"total_amount"`
	PaymentCount int    `json:"payment_count"`
}

// =============================================================================
// INSTANT-WIN TYPES
// =============================================================================

// SettingsDTO represents the instant-win settings in API responses.
type SettingsDTO struct {
	Enabled         bool   `json:"enabled"`
	MaxPercentage   string `json:"max_percentage"`
	BaseProbability string `json:"base_probability"`
	MinAmount       string `json:"min_amount"`
	MaxAmount       string `json:"max_amount"`
	WinMessage      string `json:"win_message"`
	NotifyEnabled   bool   `json:"notify_enabled"`
	UpdatedAt       string `json:"updated_at"`
}

// UpdateSettingsRequest is the partial settings update body. Absent
// fields keep their current value.
type UpdateSettingsRequest struct {
	Enabled         *bool   `json:"enabled,omitempty"`
	MaxPercentage   *string `json:"max_percentage,omitempty"`
	BaseProbability *string `json:"base_probability,omitempty"`
	MinAmount       *string `json:"min_amount,omitempty"`
	MaxAmount       *string `json:"max_amount,omitempty"`
	WinMessage      *string `json:"win_message,omitempty"`
	NotifyEnabled   *bool   `json:"notify_enabled,omitempty"`
}

// ToggleRequest flips the instant-win master switch.
type ToggleRequest struct {
	Enabled bool `json:"enabled"`
}

// StatusDTO is the budget monitor response.
type StatusDTO struct {
	Enabled  bool        `json:"enabled"`
	Settings SettingsDTO `json:"settings"`
	Today    TodayDTO    `json:"today"`
	Anomaly  AnomalyDTO  `json:"anomaly"`
}

// TodayDTO carries today's prize-pool numbers.
type TodayDTO struct {
	Collected    string  `json:"collected"`
	PaidCount    int     `json:"paid_count"`
	Ceiling      string  `json:"ceiling"`
	PrizesPaid   string  `json:"prizes_paid"`
	Remaining    string  `json:"remaining"`
	UsagePercent float64 `json:"usage_percent"`
}

// AnomalyDTO is the graduated budget alert.
type AnomalyDTO struct {
	Level     string `json:"level"`
	Exhausted bool   `json:"exhausted"`
	Message   string `json:"message"`
}

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// CreateTransactionRequest registers an incoming stake payment.
type CreateTransactionRequest struct {
	ID     string `json:"id"`
	MSISDN string `json:"msisdn"`
	Amount string `json:"amount"`
}

// PaymentCallbackRequest is the settlement notification from the payment
// aggregator.
type PaymentCallbackRequest struct {
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
}

// TransactionDTO represents a stake payment in API responses.
type TransactionDTO struct {
	ID        string `json:"id"`
	MSISDN    string `json:"msisdn"`
	Amount    string `json:"amount"`
	Status    string `json:"status"`
	Released  bool   `json:"released"`
	CreatedAt string `json:"created_at"`
}

// ErrorResponse is the standard error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERTERS
// =============================================================================

func toPlanDTO(p *payout.Plan) PlanDTO {
	winners := make([]PlannedWinnerDTO, len(p.Winners))
	for i, w := range p.Winners {
		winners[i] = PlannedWinnerDTO{
			MSISDN:       string(w.MSISDN),
			Amount:       w.Amount.StringFixed(2),
			TotalPaid:    w.TotalPaid.StringFixed(2),
			PaymentCount: w.PaymentCount,
		}
	}
	return PlanDTO{
		Winners:        winners,
		TotalPlanned:   p.TotalPlanned.StringFixed(2),
		Remaining:      p.Remaining.StringFixed(2),
		Percentage:     p.Percentage.StringFixed(2),
		CollectedToday: p.CollectedToday.StringFixed(2),
		WindowStart:    p.WindowStart.Format(time.RFC3339),
		WindowEnd:      p.WindowEnd.Format(time.RFC3339),
	}
}

func toReleaseDTO(rel engine.PayoutRelease) ReleaseDTO {
	return ReleaseDTO{
		ID:            string(rel.ID),
		MinWin:        rel.MinWin.StringFixed(2),
		MaxWin:        rel.MaxWin.StringFixed(2),
		ReleaseBudget: rel.ReleaseBudget.StringFixed(2),
		TotalReleased: rel.TotalReleased.StringFixed(2),
		TotalWinners:  rel.TotalWinners,
		Percentage:    rel.Percentage.StringFixed(2),
		CreatedBy:     rel.CreatedBy,
		CreatedAt:     rel.CreatedAt.Format(time.RFC3339),
	}
}

func toWinnerDTO(w engine.Winner) WinnerDTO {
	return WinnerDTO{
		ID:            string(w.ID),
		TransactionID: string(w.TransactionID),
		ReleaseID:     string(w.ReleaseID),
		MSISDN:        string(w.MSISDN),
		Amount:        w.Amount.StringFixed(2),
		CreatedAt:     w.CreatedAt.Format(time.RFC3339),
	}
}

func toTransactionDTO(tx engine.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:        string(tx.ID),
		MSISDN:    string(tx.MSISDN),
		Amount:    tx.Amount.StringFixed(2),
		Status:    string(tx.Status),
		Released:  tx.Released,
		CreatedAt: tx.CreatedAt.Format(time.RFC3339),
	}
}

func toSettingsDTO(s engine.InstantWinSettings) SettingsDTO {
	return SettingsDTO{
		Enabled:         s.Enabled,
		MaxPercentage:   s.MaxPercentage.StringFixed(2),
		BaseProbability: strconv.FormatFloat(s.BaseProbability, 'f', -1, 64),
		MinAmount:       s.MinAmount.StringFixed(2),
		MaxAmount:       s.MaxAmount.StringFixed(2),
		WinMessage:      s.WinMessage,
		NotifyEnabled:   s.NotifyEnabled,
		UpdatedAt:       s.UpdatedAt.Format(time.RFC3339),
	}
}

func toStatusDTO(st *instantwin.Status) StatusDTO {
	return StatusDTO{
		Enabled:  st.Enabled,
		Settings: toSettingsDTO(st.Settings),
		Today: TodayDTO{
			Collected:    st.Today.Collected.StringFixed(2),
			PaidCount:    st.Today.PaidCount,
			Ceiling:      st.Today.Ceiling.StringFixed(2),
			PrizesPaid:   st.Today.PrizesPaid.StringFixed(2),
			Remaining:    st.Today.Remaining.StringFixed(2),
			UsagePercent: st.Today.UsagePercent,
		},
		Anomaly: AnomalyDTO{
			Level:     string(st.Anomaly.Level),
			Exhausted: st.Anomaly.Exhausted,
			Message:   st.Anomaly.Message,
		},
	}
}
