/*
handlers.go - HTTP API handlers for the payout operator console

PURPOSE:
  Exposes the payout release engine and the instant-win monitor via REST
  API. Handles HTTP request/response, JSON serialization, and delegates to
  domain logic.

ENDPOINTS:
  Releases:
    POST   /api/releases/preview       Compute an allocation plan (dry run)
    POST   /api/releases               Commit a release
    GET    /api/releases               List releases (paged)

  Winners:
    GET    /api/winners                List winners (paged, filterable)

  Collections:
    GET    /api/collections/daily      Bucketed collection totals
    GET    /api/payers/eligible        Today's ranked unreleased payers

  Instant win:
    GET    /api/instant-win/status     Budget monitor snapshot
    POST   /api/instant-win/toggle     Flip the master switch
    PUT    /api/instant-win/settings   Partial settings update

  Transactions:
    POST   /api/transactions           Register a PENDING stake payment
    POST   /api/payments/callback      Settle a transaction (PAID/FAILED)

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, rejected plans, invalid input
  - 404: Resource not found
  - 409: Conflict (duplicate transaction, already finalized)
  - 500: Internal errors
  The mapping lives in writeDomainError and keys off the engine's
  sentinel-error helpers, so handlers never inspect error strings.

SECURITY NOTE:
  Currently NO authentication or authorization. The console is expected
  to sit behind the operator VPN.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/warp/payout-engine/engine"
	"github.com/warp/payout-engine/instantwin"
	"github.com/warp/payout-engine/payout"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Payout     *payout.Service
	InstantWin *instantwin.Service
	Store      engine.Store
	Log        *zap.Logger
}

// NewHandler creates a new handler over the two domain services.
func NewHandler(p *payout.Service, iw *instantwin.Service, store engine.Store, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Payout: p, InstantWin: iw, Store: store, Log: log}
}

// =============================================================================
// RELEASE HANDLERS
// =============================================================================

// PreviewRelease computes an allocation plan without persisting anything.
// POST /api/releases/preview
func (h *Handler) PreviewRelease(w http.ResponseWriter, r *http.Request) {
	req, err := h.decodePlanRequest(w, r)
	if err != nil {
		return
	}

	plan, err := h.Payout.Preview(r.Context(), *req)
	if err != nil {
		h.writeDomainError(w, "Preview rejected", err)
		return
	}
	writeJSON(w, http.StatusOK, toPlanDTO(plan))
}

// CommitRelease re-plans against live data and persists the release.
// POST /api/releases
func (h *Handler) CommitRelease(w http.ResponseWriter, r *http.Request) {
	var body ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	req, err := toPlanRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return
	}

	result, err := h.Payout.Commit(r.Context(), *req, body.CreatedBy)
	if err != nil {
		h.writeDomainError(w, "Commit rejected", err)
		return
	}

	winners := make([]WinnerDTO, len(result.Winners))
	for i, win := range result.Winners {
		winners[i] = toWinnerDTO(win)
	}
	writeJSON(w, http.StatusCreated, CommitResponse{
		Release: toReleaseDTO(result.Release),
		Winners: winners,
		Planned: result.PlannedWinners,
		Skipped: result.PlannedWinners - len(result.Winners),
	})
}

// ListReleases returns committed releases, newest first.
// GET /api/releases?page&limit
func (h *Handler) ListReleases(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	releases, total, err := h.Store.ListReleases(r.Context(), page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list releases", err)
		return
	}

	dtos := make([]ReleaseDTO, len(releases))
	for i, rel := range releases {
		dtos[i] = toReleaseDTO(rel)
	}
	writeJSON(w, http.StatusOK, PageResponse{Items: dtos, Page: page, Limit: limit, Total: total})
}

// ListWinners returns winners, newest first, optionally filtered by
// msisdn and/or release id.
// GET /api/winners?msisdn&release_id&page&limit
func (h *Handler) ListWinners(w http.ResponseWriter, r *http.Request) {
	page, limit := pageParams(r)
	filter := engine.WinnerFilter{
		MSISDN:    engine.MSISDN(r.URL.Query().Get("msisdn")),
		ReleaseID: engine.ReleaseID(r.URL.Query().Get("release_id")),
	}

	winners, total, err := h.Store.ListWinners(r.Context(), filter, page, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list winners", err)
		return
	}

	dtos := make([]WinnerDTO, len(winners))
	for i, win := range winners {
		dtos[i] = toWinnerDTO(win)
	}
	writeJSON(w, http.StatusOK, PageResponse{Items: dtos, Page: page, Limit: limit, Total: total})
}

// =============================================================================
// COLLECTIONS HANDLERS
// =============================================================================

// Collections returns bucketed collection totals over a civil date range.
// GET /api/collections/daily?from&to&bucket
func (h *Handler) Collections(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, err := engine.ParseCivilDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'from' date", err)
		return
	}
	to, err := engine.ParseCivilDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid 'to' date", err)
		return
	}

	buckets, err := h.Payout.Collections(r.Context(), from, to, q.Get("bucket"))
	if err != nil {
		h.writeDomainError(w, "Failed to aggregate collections", err)
		return
	}

	dtos := make([]BucketDTO, len(buckets))
	for i, b := range buckets {
		dtos[i] = BucketDTO{
			Label:  b.Label,
			Start:  b.Start.Format(time.RFC3339),
			End:    b.End.Format(time.RFC3339),
			Amount: b.Amount.StringFixed(2),
			Count:  b.Count,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// EligiblePayers returns today's ranked unreleased payers, the pool the
// planner allocates from.
// GET /api/payers/eligible
func (h *Handler) EligiblePayers(w http.ResponseWriter, r *http.Request) {
	payers, err := h.Payout.EligiblePayers(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to rank payers", err)
		return
	}

	dtos := make([]PayerDTO, len(payers))
	for i, p := range payers {
		dtos[i] = PayerDTO{
			MSISDN:       string(p.MSISDN),
			TotalAmount:  p.TotalAmount.StringFixed(2),
			PaymentCount: p.PaymentCount,
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// INSTANT-WIN HANDLERS
// =============================================================================

// InstantWinStatus returns the budget monitor snapshot.
// GET /api/instant-win/status
func (h *Handler) InstantWinStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.InstantWin.GetStatus(r.Context())
	if err != nil {
		h.writeDomainError(w, "Failed to compute status", err)
		return
	}
	writeJSON(w, http.StatusOK, toStatusDTO(status))
}

// ToggleInstantWin flips the master switch.
// POST /api/instant-win/toggle
func (h *Handler) ToggleInstantWin(w http.ResponseWriter, r *http.Request) {
	var body ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	settings, err := h.InstantWin.Toggle(r.Context(), body.Enabled)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to toggle", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*settings))
}

// UpdateInstantWinSettings applies a partial settings update.
// PUT /api/instant-win/settings
func (h *Handler) UpdateInstantWinSettings(w http.ResponseWriter, r *http.Request) {
	var body UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	patch := instantwin.SettingsPatch{
		Enabled:       body.Enabled,
		WinMessage:    body.WinMessage,
		NotifyEnabled: body.NotifyEnabled,
	}
	var parseErr error
	patch.MaxPercentage = parseOptionalDecimal(body.MaxPercentage, &parseErr)
	patch.MinAmount = parseOptionalDecimal(body.MinAmount, &parseErr)
	patch.MaxAmount = parseOptionalDecimal(body.MaxAmount, &parseErr)
	if body.BaseProbability != nil {
		p, err := strconv.ParseFloat(*body.BaseProbability, 64)
		if err != nil && parseErr == nil {
			parseErr = err
		}
		patch.BaseProbability = &p
	}
	if parseErr != nil {
		writeError(w, http.StatusBadRequest, "Invalid decimal value", parseErr)
		return
	}

	settings, err := h.InstantWin.UpdateSettings(r.Context(), patch)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update settings", err)
		return
	}
	writeJSON(w, http.StatusOK, toSettingsDTO(*settings))
}

// =============================================================================
// TRANSACTION HANDLERS
// =============================================================================

// CreateTransaction registers an incoming stake payment as PENDING.
// POST /api/transactions
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var body CreateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}
	if body.ID == "" || body.MSISDN == "" {
		writeError(w, http.StatusBadRequest, "id and msisdn are required", nil)
		return
	}
	amount, err := decimal.NewFromString(body.Amount)
	if err != nil || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, "amount must be a positive decimal", err)
		return
	}

	tx := engine.Transaction{
		ID:        engine.TransactionID(body.ID),
		MSISDN:    engine.MSISDN(body.MSISDN),
		Amount:    amount,
		Status:    engine.StatusPending,
		CreatedAt: h.Payout.Clock().UTC(),
	}
	if err := h.Store.CreateTransaction(r.Context(), tx); err != nil {
		h.writeDomainError(w, "Failed to create transaction", err)
		return
	}
	writeJSON(w, http.StatusCreated, toTransactionDTO(tx))
}

// PaymentCallback settles a transaction from the aggregator notification.
// POST /api/payments/callback
func (h *Handler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	var body PaymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return
	}

	status := engine.TransactionStatus(strings.ToUpper(body.Status))
	if status != engine.StatusPaid && status != engine.StatusFailed {
		writeError(w, http.StatusBadRequest, "status must be PAID or FAILED", nil)
		return
	}

	if err := h.Store.SettleTransaction(r.Context(), engine.TransactionID(body.TransactionID), status); err != nil {
		h.writeDomainError(w, "Failed to settle transaction", err)
		return
	}

	tx, err := h.Store.GetTransaction(r.Context(), engine.TransactionID(body.TransactionID))
	if err != nil {
		h.writeDomainError(w, "Failed to load transaction", err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionDTO(*tx))
}

// =============================================================================
// HELPERS
// =============================================================================

// decodePlanRequest parses and validates the shared preview/commit body.
// Writes the error response itself and returns nil on failure.
func (h *Handler) decodePlanRequest(w http.ResponseWriter, r *http.Request) (*payout.PlanRequest, error) {
	var body ReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", err)
		return nil, err
	}
	req, err := toPlanRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount", err)
		return nil, err
	}
	return req, nil
}

func toPlanRequest(body ReleaseRequest) (*payout.PlanRequest, error) {
	budget, err := decimal.NewFromString(body.Budget)
	if err != nil {
		return nil, err
	}
	minWin, err := decimal.NewFromString(body.MinWin)
	if err != nil {
		return nil, err
	}
	maxWin, err := decimal.NewFromString(body.MaxWin)
	if err != nil {
		return nil, err
	}

	req := payout.PlanRequest{Budget: budget, MinWin: minWin, MaxWin: maxWin}
	if len(body.Overrides) > 0 {
		req.Overrides = make(map[engine.MSISDN]decimal.Decimal, len(body.Overrides))
		for msisdn, raw := range body.Overrides {
			amount, err := decimal.NewFromString(raw)
			if err != nil {
				return nil, err
			}
			req.Overrides[engine.MSISDN(msisdn)] = amount
		}
	}
	return &req, nil
}

// parseOptionalDecimal parses s when present, recording the first error.
func parseOptionalDecimal(s *string, errOut *error) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		if *errOut == nil {
			*errOut = err
		}
		return nil
	}
	return &d
}

func pageParams(r *http.Request) (page, limit int) {
	q := r.URL.Query()
	page, _ = strconv.Atoi(q.Get("page"))
	limit, _ = strconv.Atoi(q.Get("limit"))
	return page, limit
}

// writeDomainError maps engine sentinel errors onto HTTP statuses.
func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	switch {
	case engine.IsRejection(err):
		writeError(w, http.StatusBadRequest, message, err)
	case engine.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case engine.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.Log.Error("internal error", zap.String("context", message), zap.Error(err))
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
