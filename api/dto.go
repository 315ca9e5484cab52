/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Record bodies reuse
  the factory JSON schema so that the HTTP surface and imported documents
  accept exactly the same shapes.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

TYPES:
  Records:    factory.ClientJSON, factory.WorkEntryJSON (request and response)
  Billing:    PeriodDTO, InvoiceDTO, AlertDTO, DashboardDTO
  Schedule:   MoveEntryRequest, MoveEntryDTO
  Scenarios:  ScenarioDTO, LoadScenarioRequest
  Scheduler:  AlertRunDTO

VALIDATION:
  Request structs carry validator/v10 tags and are checked through
  factory.DocumentFactory.Struct so failures come back as ValidationError.

SEE ALSO:
  - handlers.go: Uses these types
  - factory/document.go: ClientJSON, WorkEntryJSON, SnapshotJSON
*/
package api

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/billing"
	"github.com/warp/billing-engine/factory"
	"github.com/warp/billing-engine/store/sqlite"
)

// =============================================================================
// REQUEST TYPES
// =============================================================================

// MoveEntryRequest re-dates a work entry (calendar drag and drop).
type MoveEntryRequest struct {
	Date string `json:"date" validate:"required"`
}

// LoadScenarioRequest selects a demo scenario.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// PeriodDTO is a resolved billing period.
type PeriodDTO struct {
	ClosingDay  int    `json:"closing_day"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Start       string `json:"start"`
	End         string `json:"end"`
	ClosingDate string `json:"closing_date"`
}

// InvoiceDTO is the invoice preview.
type InvoiceDTO struct {
	InvoiceNumber string                  `json:"invoice_number"`
	Client        factory.ClientJSON      `json:"client"`
	PeriodStart   string                  `json:"period_start"`
	PeriodEnd     string                  `json:"period_end"`
	IssueDate     string                  `json:"issue_date"`
	DueDate       string                  `json:"due_date"`
	Entries       []factory.WorkEntryJSON `json:"entries"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	Tax           decimal.Decimal         `json:"tax"`
	GrandTotal    decimal.Decimal         `json:"grand_total"`
	Issuer        billing.UserProfile     `json:"issuer"`
}

// AlertDTO is one closing-day alert.
type AlertDTO struct {
	ClientID      string `json:"client_id"`
	ClientName    string `json:"client_name"`
	ClosingDate   string `json:"closing_date"`
	DaysRemaining int    `json:"days_remaining"`
}

// DashboardDTO is the home screen summary.
type DashboardDTO struct {
	ClientCount       int             `json:"client_count"`
	RevenueThisMonth  decimal.Decimal `json:"revenue_this_month"`
	UpcomingWorkCount int             `json:"upcoming_work_count"`
	Alerts            []AlertDTO      `json:"alerts"`
}

// MoveEntryDTO reports the result of a move.
type MoveEntryDTO struct {
	Entry factory.WorkEntryJSON `json:"entry"`
	Moved bool                  `json:"moved"`
}

// ScenarioDTO describes a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AlertRunDTO is one scheduler run.
type AlertRunDTO struct {
	ID         string   `json:"id"`
	UserID     string   `json:"user_id"`
	RunDate    string   `json:"run_date"`
	AlertCount int      `json:"alert_count"`
	ClientIDs  []string `json:"client_ids"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toInvoiceDTO(inv *billing.Invoice) InvoiceDTO {
	return InvoiceDTO{
		InvoiceNumber: inv.InvoiceNumber,
		Client:        factory.ToClientJSON(inv.Client),
		PeriodStart:   inv.Period.Start.Key(),
		PeriodEnd:     inv.Period.End.Key(),
		IssueDate:     inv.IssueDate.Key(),
		DueDate:       inv.DueDate.Key(),
		Entries:       toEntryDTOs(inv.Entries),
		Subtotal:      inv.Subtotal,
		Tax:           inv.Tax,
		GrandTotal:    inv.GrandTotal,
		Issuer:        inv.Issuer,
	}
}

func toAlertDTOs(alerts []billing.Alert) []AlertDTO {
	return lo.Map(alerts, func(a billing.Alert, _ int) AlertDTO {
		return AlertDTO{
			ClientID:      a.Client.ID,
			ClientName:    a.Client.Name,
			ClosingDate:   a.ClosingDate.Key(),
			DaysRemaining: a.DaysRemaining,
		}
	})
}

func toClientDTOs(clients []billing.Client) []factory.ClientJSON {
	return lo.Map(clients, func(c billing.Client, _ int) factory.ClientJSON { return factory.ToClientJSON(c) })
}

func toEntryDTOs(entries []billing.WorkEntry) []factory.WorkEntryJSON {
	return lo.Map(entries, func(e billing.WorkEntry, _ int) factory.WorkEntryJSON { return factory.ToWorkEntryJSON(e) })
}

func toAlertRunDTO(r sqlite.AlertRun) AlertRunDTO {
	ids := r.ClientIDs
	if ids == nil {
		ids = []string{}
	}
	return AlertRunDTO{
		ID:         r.ID,
		UserID:     string(r.UserID),
		RunDate:    r.RunDate.Key(),
		AlertCount: r.AlertCount,
		ClientIDs:  ids,
	}
}
