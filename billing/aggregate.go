package billing

import (
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/warp/billing-engine/generic"
)

// =============================================================================
// INVOICE AGGREGATOR
// =============================================================================

// Aggregation is the money side of an invoice.
type Aggregation struct {
	Entries    []WorkEntry     `json:"entries"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Tax        decimal.Decimal `json:"tax"`
	GrandTotal decimal.Decimal `json:"grand_total"`
}

// IsEmpty reports whether no entries matched.
func (a Aggregation) IsEmpty() bool { return len(a.Entries) == 0 }

// Aggregate keeps the client's entries dated inside period (inclusive) in
// their original order and totals them. A client with no matching entries,
// including an id that no entry references, yields a zero aggregation.
func Aggregate(client Client, entries []WorkEntry, period generic.Period) Aggregation {
	matched := lo.Filter(entries, func(e WorkEntry, _ int) bool {
		return e.ClientID == client.ID && period.Contains(e.Date)
	})

	subtotal := decimal.Zero
	for _, e := range matched {
		subtotal = subtotal.Add(e.LineTotal())
	}
	tax := generic.FloorRate(subtotal, generic.ConsumptionTaxRate)

	return Aggregation{
		Entries:    matched,
		Subtotal:   subtotal,
		Tax:        tax,
		GrandTotal: subtotal.Add(tax),
	}
}

// InvoiceNumber is YYYYMM-<first four characters of the client id>.
// Stable for the same inputs; not globally unique.
func InvoiceNumber(year int, month time.Month, clientID string) string {
	prefix := []rune(clientID)
	if len(prefix) > 4 {
		prefix = prefix[:4]
	}
	return fmt.Sprintf("%04d%02d-%s", year, int(month), string(prefix))
}
