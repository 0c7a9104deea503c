// Package settlement computes the two-party breakdown between the platform and
// a vendor for one invoicing period. The computation is pure; persistence and
// transport live elsewhere.
package settlement

import (
	"github.com/shopspring/decimal"
)

// Channel identifies how a booking's revenue was collected.
type Channel string

const (
	// ChannelOnline is revenue the platform collected itself at checkout.
	ChannelOnline Channel = "online"
	// ChannelPayAtProperty is revenue the guest paid directly to the vendor.
	ChannelPayAtProperty Channel = "pay_at_property"
)

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c == ChannelOnline || c == ChannelPayAtProperty
}

// Party identifies who owes the settlement amount for a period.
type Party string

const (
	PartyPlatform Party = "platform"
	PartyVendor   Party = "vendor"
)

// Valid reports whether p is a known party.
func (p Party) Valid() bool {
	return p == PartyPlatform || p == PartyVendor
}

// Breakdown is the derived settlement for one vendor and period. It is never
// persisted on its own; it is recomputed on demand from an invoice's frozen
// channel totals.
type Breakdown struct {
	TotalEarnings  decimal.Decimal
	CommissionRate decimal.Decimal
	Commission     decimal.Decimal
	// PlatformSettlement is signed: positive means the platform owes the
	// vendor, negative means the vendor owes the platform.
	PlatformSettlement   decimal.Decimal
	VendorDirectReceipts decimal.Decimal
	VendorTotalReceived  decimal.Decimal
}

// OwedBy returns which party must pay the settlement amount.
func (b Breakdown) OwedBy() Party {
	if b.PlatformSettlement.IsNegative() {
		return PartyVendor
	}
	return PartyPlatform
}

// AmountDue is the absolute settlement amount, regardless of direction.
func (b Breakdown) AmountDue() decimal.Decimal {
	return b.PlatformSettlement.Abs()
}
