/*
handlers.go - HTTP API handlers for the contractor billing engine

PURPOSE:
  Exposes the billing engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the billing Ledger.

ENDPOINTS:
  Profile:
    GET    /api/profile                  Issuer profile
    PUT    /api/profile                  Replace issuer profile

  Clients:
    GET    /api/clients                  List clients
    POST   /api/clients                  Create client
    PUT    /api/clients/{id}             Replace client
    DELETE /api/clients/{id}             Delete client and its work entries

  Work entries:
    GET    /api/entries                  List entries
    POST   /api/entries                  Create entry
    PUT    /api/entries/{id}             Replace entry
    DELETE /api/entries/{id}             Delete entry
    POST   /api/entries/{id}/move        Re-date entry
    GET    /api/entries/draft            Pre-filled entry for a client

  Billing:
    GET    /api/periods                  Resolve a billing period
    GET    /api/invoices/preview         Invoice for client and month
    GET    /api/alerts                   Closing-day alerts
    GET    /api/alerts/runs              Scheduler history
    GET    /api/dashboard                Home screen summary

  Schedule:
    GET    /api/schedule/month|week|day  Calendar projections

  Documents:
    GET    /api/snapshot                 Export the user's document
    PUT    /api/snapshot                 Import (replace) the user's document
    DELETE /api/snapshot                 Remove the user's document

  Snapshot responses carry the document's save count in X-Document-Version
  (0 when nothing is stored).

USER IDENTITY:
  Every /api request names its user in the X-User-ID header. Requests
  without it are rejected with 400. Authentication is out of scope.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid dates, bad query parameters
  - 404: Client or entry not found
  - 409: Duplicate id
  - 422: Invoice preview with no billable entries
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/generic"
	"github.com/warp/billing-engine/logger"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store   *sqlite.Store
	Ledger  *billing.Ledger
	Factory *factory.DocumentFactory

	// Today is the reference day when a request does not pass one.
	Today func() generic.Date

	log zerolog.Logger

	// Scenario last loaded per user
	mu              sync.Mutex
	currentScenario map[generic.UserID]string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store *sqlite.Store) *Handler {
	return &Handler{
		Store:           store,
		Ledger:          billing.NewLedger(billing.NewDocumentSnapshots(store)),
		Factory:         factory.NewDocumentFactory(),
		Today:           generic.Today,
		log:             logger.WithComponent("api"),
		currentScenario: make(map[generic.UserID]string),
	}
}

// =============================================================================
// PROFILE HANDLERS
// =============================================================================

// GetProfile returns the issuer profile.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	s, err := h.Ledger.Snapshot(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load profile", err)
		return
	}
	writeJSON(w, http.StatusOK, s.UserProfile)
}

// PutProfile replaces the issuer profile.
func (h *Handler) PutProfile(w http.ResponseWriter, r *http.Request) {
	var p billing.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Ledger.SetUserProfile(r.Context(), userFrom(r), p); err != nil {
		h.writeDomainError(w, "Failed to save profile", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns all clients in stored order.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	s, err := h.Ledger.Snapshot(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to list clients", err)
		return
	}
	writeJSON(w, http.StatusOK, toClientDTOs(s.Clients))
}

// CreateClient adds a client. An id is assigned when none is given.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req factory.ClientJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	c, err := h.Factory.ClientFromJSON(req)
	if err != nil {
		h.writeDomainError(w, "Invalid client", err)
		return
	}
	created, err := h.Ledger.AddClient(r.Context(), userFrom(r), c)
	if err != nil {
		h.writeDomainError(w, "Failed to create client", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.ToClientJSON(created))
}

// UpdateClient replaces the client named in the path.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	var req factory.ClientJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	c, err := h.Factory.ClientFromJSON(req)
	if err != nil {
		h.writeDomainError(w, "Invalid client", err)
		return
	}
	if err := h.Ledger.UpdateClient(r.Context(), userFrom(r), c); err != nil {
		h.writeDomainError(w, "Failed to update client", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToClientJSON(c))
}

// DeleteClient removes the client and its work entries.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Ledger.DeleteClient(r.Context(), userFrom(r), id); err != nil {
		h.writeDomainError(w, "Failed to delete client", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// =============================================================================
// WORK ENTRY HANDLERS
// =============================================================================

// ListEntries returns all work entries in stored order.
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	s, err := h.Ledger.Snapshot(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to list entries", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryDTOs(s.WorkEntries))
}

// CreateEntry adds a work entry for an existing client.
func (h *Handler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req factory.WorkEntryJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	e, err := h.Factory.WorkEntryFromJSON(req)
	if err != nil {
		h.writeDomainError(w, "Invalid work entry", err)
		return
	}
	created, err := h.Ledger.AddWorkEntry(r.Context(), userFrom(r), e)
	if err != nil {
		h.writeDomainError(w, "Failed to create work entry", err)
		return
	}
	writeJSON(w, http.StatusCreated, factory.ToWorkEntryJSON(created))
}

// UpdateEntry replaces the entry named in the path.
func (h *Handler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	var req factory.WorkEntryJSON
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	req.ID = chi.URLParam(r, "id")
	e, err := h.Factory.WorkEntryFromJSON(req)
	if err != nil {
		h.writeDomainError(w, "Invalid work entry", err)
		return
	}
	if err := h.Ledger.UpdateWorkEntry(r.Context(), userFrom(r), e); err != nil {
		h.writeDomainError(w, "Failed to update work entry", err)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToWorkEntryJSON(e))
}

// DeleteEntry removes one work entry.
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.Ledger.DeleteWorkEntry(r.Context(), userFrom(r), id); err != nil {
		h.writeDomainError(w, "Failed to delete work entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "id": id})
}

// MoveEntry re-dates an entry. Moving onto its current date reports
// moved=false and changes nothing.
func (h *Handler) MoveEntry(w http.ResponseWriter, r *http.Request) {
	var req MoveEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Factory.Struct(req); err != nil {
		h.writeDomainError(w, "Invalid move", err)
		return
	}
	date, err := generic.ParseDate(req.Date)
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}
	entry, moved, err := h.Ledger.MoveWorkEntry(r.Context(), userFrom(r), chi.URLParam(r, "id"), date)
	if err != nil {
		h.writeDomainError(w, "Failed to move work entry", err)
		return
	}
	writeJSON(w, http.StatusOK, MoveEntryDTO{Entry: factory.ToWorkEntryJSON(entry), Moved: moved})
}

// DraftEntry returns a pre-filled, unsaved entry for a client.
func (h *Handler) DraftEntry(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date")
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}
	s, err := h.Ledger.Snapshot(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load snapshot", err)
		return
	}
	c, ok := s.Client(r.URL.Query().Get("client_id"))
	if !ok {
		h.writeDomainError(w, "Client not found", generic.ErrClientNotFound)
		return
	}
	writeJSON(w, http.StatusOK, factory.ToWorkEntryJSON(billing.DraftEntry(c, date)))
}

// =============================================================================
// BILLING HANDLERS
// =============================================================================

// GetPeriod resolves the billing period for a closing day and month.
func (h *Handler) GetPeriod(w http.ResponseWriter, r *http.Request) {
	closingDay, err := intParam(r, "closing_day")
	if err != nil {
		h.writeDomainError(w, "Invalid closing_day", err)
		return
	}
	year, month, err := yearMonthParams(r)
	if err != nil {
		h.writeDomainError(w, "Invalid year/month", err)
		return
	}
	cd := billing.ClosingDay(closingDay)
	p, err := billing.ResolvePeriod(cd, year, month)
	if err != nil {
		h.writeDomainError(w, "Invalid period", err)
		return
	}
	writeJSON(w, http.StatusOK, PeriodDTO{
		ClosingDay:  closingDay,
		Year:        year,
		Month:       int(month),
		Start:       p.Start.Key(),
		End:         p.End.Key(),
		ClosingDate: billing.ClosingDate(cd, year, month).Key(),
	})
}

// PreviewInvoice builds the invoice for a client and billing month. A month
// with nothing to bill is refused with 422.
func (h *Handler) PreviewInvoice(w http.ResponseWriter, r *http.Request) {
	year, month, err := yearMonthParams(r)
	if err != nil {
		h.writeDomainError(w, "Invalid year/month", err)
		return
	}
	issueDate, err := h.dateParam(r, "issue_date")
	if err != nil {
		h.writeDomainError(w, "Invalid issue_date", err)
		return
	}
	inv, err := h.Ledger.Invoice(r.Context(), userFrom(r), r.URL.Query().Get("client_id"), year, month, issueDate)
	if err != nil {
		h.writeDomainError(w, "Failed to build invoice", err)
		return
	}
	if len(inv.Entries) == 0 {
		h.writeDomainError(w, "Nothing to invoice", billing.ErrNoBillableEntries)
		return
	}
	writeJSON(w, http.StatusOK, toInvoiceDTO(inv))
}

// ListAlerts returns clients whose closing date is within five days.
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	today, err := h.dateParam(r, "today")
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}
	alerts, err := h.Ledger.Alerts(r.Context(), userFrom(r), today)
	if err != nil {
		h.writeDomainError(w, "Failed to compute alerts", err)
		return
	}
	writeJSON(w, http.StatusOK, toAlertDTOs(alerts))
}

// ListAlertRuns returns recent scheduler runs across users.
func (h *Handler) ListAlertRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid limit", err)
			return
		}
		limit = n
	}
	runs, err := h.Store.ListAlertRuns(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list alert runs", err)
		return
	}
	dtos := make([]AlertRunDTO, 0, len(runs))
	for _, run := range runs {
		dtos = append(dtos, toAlertRunDTO(run))
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetDashboard returns the summary for a reference day.
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	today, err := h.dateParam(r, "today")
	if err != nil {
		h.writeDomainError(w, "Invalid today", err)
		return
	}
	d, err := h.Ledger.Dashboard(r.Context(), userFrom(r), today)
	if err != nil {
		h.writeDomainError(w, "Failed to build dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, DashboardDTO{
		ClientCount:       d.ClientCount,
		RevenueThisMonth:  d.RevenueThisMonth,
		UpcomingWorkCount: d.UpcomingWorkCount,
		Alerts:            toAlertDTOs(d.Alerts),
	})
}

// =============================================================================
// SCHEDULE HANDLERS
// =============================================================================

// GetSchedule serves the month, week and day projections.
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	date, err := h.dateParam(r, "date")
	if err != nil {
		h.writeDomainError(w, "Invalid date", err)
		return
	}
	ix, err := h.Ledger.Schedule(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load schedule", err)
		return
	}

	switch view := chi.URLParam(r, "view"); view {
	case "month":
		mv, err := ix.Month(date.Year(), date.Month())
		if err != nil {
			h.writeDomainError(w, "Invalid month", err)
			return
		}
		writeJSON(w, http.StatusOK, mv)
	case "week":
		writeJSON(w, http.StatusOK, ix.Week(date))
	case "day":
		writeJSON(w, http.StatusOK, map[string]any{
			"date":    date,
			"entries": toEntryDTOs(ix.Day(date)),
		})
	default:
		writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown schedule view %q", view), nil)
	}
}

// =============================================================================
// SNAPSHOT HANDLERS
// =============================================================================

// ExportSnapshot returns the user's whole document.
func (h *Handler) ExportSnapshot(w http.ResponseWriter, r *http.Request) {
	s, err := h.Ledger.Snapshot(r.Context(), userFrom(r))
	if err != nil {
		h.writeDomainError(w, "Failed to load snapshot", err)
		return
	}
	if !h.setVersionHeader(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, factory.ToSnapshotJSON(s))
}

// ImportSnapshot replaces the user's whole document after validation.
func (h *Handler) ImportSnapshot(w http.ResponseWriter, r *http.Request) {
	var sj factory.SnapshotJSON
	if err := json.NewDecoder(r.Body).Decode(&sj); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	s, err := h.Factory.SnapshotFromJSON(sj)
	if err != nil {
		h.writeDomainError(w, "Invalid snapshot", err)
		return
	}
	if err := h.Ledger.ReplaceSnapshot(r.Context(), userFrom(r), s); err != nil {
		h.writeDomainError(w, "Failed to import snapshot", err)
		return
	}
	if !h.setVersionHeader(w, r) {
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"clients":      len(s.Clients),
		"work_entries": len(s.WorkEntries),
	})
}

// ResetSnapshot deletes the user's stored document. The next read starts
// from an empty snapshot.
func (h *Handler) ResetSnapshot(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r)
	if err := h.Store.DeleteUser(r.Context(), user); err != nil {
		h.writeDomainError(w, "Failed to reset snapshot", err)
		return
	}

	h.mu.Lock()
	delete(h.currentScenario, user)
	h.mu.Unlock()

	userLog := logger.WithUserID(h.log, string(user))
	userLog.Info().Msg("snapshot reset")
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

// setVersionHeader reports false after writing an error response.
func (h *Handler) setVersionHeader(w http.ResponseWriter, r *http.Request) bool {
	v, err := h.Store.Version(r.Context(), userFrom(r))
	if errors.Is(err, generic.ErrSnapshotNotFound) {
		v, err = 0, nil
	}
	if err != nil {
		h.writeDomainError(w, "Failed to read document version", err)
		return false
	}
	w.Header().Set(DocumentVersionHeader, strconv.Itoa(v))
	return true
}

// dateParam reads a YYYY-MM-DD query parameter, defaulting to today.
func (h *Handler) dateParam(r *http.Request, name string) (generic.Date, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return h.Today(), nil
	}
	return generic.ParseDate(v)
}

func intParam(r *http.Request, name string) (int, error) {
	v := r.URL.Query().Get(name)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, generic.NewValidationError(name, v, "expected an integer")
	}
	return n, nil
}

func yearMonthParams(r *http.Request) (int, time.Month, error) {
	year, err := intParam(r, "year")
	if err != nil {
		return 0, 0, err
	}
	month, err := intParam(r, "month")
	if err != nil {
		return 0, 0, err
	}
	return year, time.Month(month), nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, billing.ErrNoBillableEntries):
		return http.StatusUnprocessableEntity
	case errors.Is(err, generic.ErrDuplicateID):
		return http.StatusConflict
	case generic.IsNotFound(err):
		return http.StatusNotFound
	case generic.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, message string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Msg(message)
	}
	writeError(w, status, message, err)
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
