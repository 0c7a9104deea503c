// Package invoice aggregates booking revenue into per-vendor, per-period
// settlement invoices. Financial fields are frozen at creation; only the
// payment-clearance pair may change afterwards, through the ledger.
package invoice

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/settlement"
)

// Invoice is the persisted settlement record for one vendor and period.
type Invoice struct {
	ID        int64
	VendorID  int64
	PeriodKey string
	StartDate time.Time
	EndDate   time.Time
	Currency  string

	// Frozen at creation. A later commission-rate change never alters them.
	TotalSales     decimal.Decimal
	OnlineReceived decimal.Decimal
	HotelReceived  decimal.Decimal
	Commission     decimal.Decimal
	VendorNet      decimal.Decimal
	AmountToBePaid decimal.Decimal
	ToBePaidBy     settlement.Party

	// Exactly one of these is meaningful, selected by ToBePaidBy. The other
	// stays nil for the invoice's whole life and reconciliation ignores it.
	PaidByPlatformAt *time.Time
	PaidByVendorAt   *time.Time

	Version   int64
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClearedAt returns the owing party's clearance timestamp, nil while unpaid.
func (i *Invoice) ClearedAt() *time.Time {
	if i.ToBePaidBy == settlement.PartyVendor {
		return i.PaidByVendorAt
	}
	return i.PaidByPlatformAt
}

// Cleared reports whether the owing party has settled this invoice.
func (i *Invoice) Cleared() bool {
	return i.ClearedAt() != nil
}

// Breakdown rebuilds the display breakdown from the frozen totals.
func (i *Invoice) Breakdown() settlement.Breakdown {
	return settlement.Recompute(i.OnlineReceived, i.HotelReceived, i.Commission)
}

// CreateInvoiceInput carries the frozen values for a new invoice.
type CreateInvoiceInput struct {
	VendorID       int64
	PeriodKey      string
	StartDate      time.Time
	EndDate        time.Time
	Currency       string
	TotalSales     decimal.Decimal
	OnlineReceived decimal.Decimal
	HotelReceived  decimal.Decimal
	Commission     decimal.Decimal
	VendorNet      decimal.Decimal
	AmountToBePaid decimal.Decimal
	ToBePaidBy     settlement.Party
}

// ListInvoicesRequest filters vendor invoice listings.
type ListInvoicesRequest struct {
	VendorID int64
	Limit    int
	Offset   int
}
