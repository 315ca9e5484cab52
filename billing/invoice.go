package billing

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/generic"
)

// ErrNoBillableEntries lets callers that refuse empty invoices say why.
// BuildInvoice itself never returns it.
var ErrNoBillableEntries = errors.New("no billable entries in period")

// Invoice is derived on demand and never stored.
type Invoice struct {
	Client        Client          `json:"client"`
	Entries       []WorkEntry     `json:"entries"`
	InvoiceNumber string          `json:"invoice_number"`
	Period        generic.Period  `json:"period"`
	IssueDate     generic.Date    `json:"issue_date"`
	DueDate       generic.Date    `json:"due_date"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Tax           decimal.Decimal `json:"tax"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	Issuer        UserProfile     `json:"issuer"`
}

// InvoiceRequest selects what to bill.
type InvoiceRequest struct {
	Client    Client
	Entries   []WorkEntry
	Year      int
	Month     time.Month
	IssueDate generic.Date
	Issuer    UserProfile
}

// BuildInvoice resolves the period, aggregates the entries and derives the
// due date. An empty period produces a zero invoice, not an error.
func BuildInvoice(req InvoiceRequest) (*Invoice, error) {
	period, err := ResolvePeriod(req.Client.ClosingDay, req.Year, req.Month)
	if err != nil {
		return nil, err
	}
	due, err := ComputeDueDate(req.Client.PaymentTerms, req.Year, req.Month)
	if err != nil {
		return nil, err
	}

	agg := Aggregate(req.Client, req.Entries, period)
	return &Invoice{
		Client:        req.Client,
		Entries:       agg.Entries,
		InvoiceNumber: InvoiceNumber(req.Year, req.Month, req.Client.ID),
		Period:        period,
		IssueDate:     req.IssueDate,
		DueDate:       due,
		Subtotal:      agg.Subtotal,
		Tax:           agg.Tax,
		GrandTotal:    agg.GrandTotal,
		Issuer:        req.Issuer,
	}, nil
}

// InvoiceFor builds an invoice for a client of the snapshot. An unknown
// client id is ErrClientNotFound.
func InvoiceFor(s Snapshot, clientID string, year int, month time.Month, issueDate generic.Date) (*Invoice, error) {
	client, ok := s.Client(clientID)
	if !ok {
		return nil, generic.ErrClientNotFound
	}
	return BuildInvoice(InvoiceRequest{
		Client:    client,
		Entries:   s.WorkEntries,
		Year:      year,
		Month:     month,
		IssueDate: issueDate,
		Issuer:    s.UserProfile,
	})
}
