// Package statement renders a frozen invoice into a human-readable financial
// statement. It is strictly read-only over invoice data: the view model is
// rebuilt from the frozen totals and nothing is ever recomputed from live
// configuration or written back.
package statement

import (
	"time"

	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/settlement"
)

// Statement is the display model for one invoice.
type Statement struct {
	InvoiceID int64
	VendorID  int64
	PeriodKey string
	StartDate time.Time
	EndDate   time.Time
	Currency  string

	OnlineReceived string
	HotelReceived  string
	TotalSales     string
	Commission     string
	VendorNet      string

	// OwedBy names the party that must pay AmountDue. Rendering must follow
	// it faithfully: a vendor-owes invoice never reads as a platform payout.
	OwedBy       settlement.Party
	AmountDue    string
	FullySettled bool
	Cleared      bool
	ClearedAt    *time.Time
}

// Build derives the statement from a frozen invoice.
func Build(inv *invoice.Invoice) Statement {
	return Statement{
		InvoiceID:      inv.ID,
		VendorID:       inv.VendorID,
		PeriodKey:      inv.PeriodKey,
		StartDate:      inv.StartDate,
		EndDate:        inv.EndDate,
		Currency:       inv.Currency,
		OnlineReceived: settlement.FormatAmount(inv.OnlineReceived, inv.Currency),
		HotelReceived:  settlement.FormatAmount(inv.HotelReceived, inv.Currency),
		TotalSales:     settlement.FormatAmount(inv.TotalSales, inv.Currency),
		Commission:     settlement.FormatAmount(inv.Commission, inv.Currency),
		VendorNet:      settlement.FormatAmount(inv.VendorNet, inv.Currency),
		OwedBy:         inv.ToBePaidBy,
		AmountDue:      settlement.FormatAmount(inv.AmountToBePaid, inv.Currency),
		FullySettled:   inv.AmountToBePaid.IsZero(),
		Cleared:        inv.Cleared(),
		ClearedAt:      inv.ClearedAt(),
	}
}

// Headline is the one-line summary of who owes whom.
func (s Statement) Headline() string {
	if s.FullySettled {
		return "Fully settled. No transfer due for this period."
	}
	if s.OwedBy == settlement.PartyVendor {
		return "Vendor owes the platform " + s.AmountDue + " for this period."
	}
	return "Platform owes the vendor " + s.AmountDue + " for this period."
}
