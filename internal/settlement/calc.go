package settlement

import (
	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/shared"
)

// DefaultCommissionRate matches the platform-wide contract rate.
var DefaultCommissionRate = decimal.NewFromFloat(0.03)

// Compute derives the settlement breakdown from the two channel totals.
//
// Commission is charged on total earnings but recovered only from the online
// channel: cash paid at the property never passes through the platform, so the
// platform can deduct only from money it already holds. Half-to-even rounding
// to minorUnits is applied exactly once, to the channel totals and to the
// commission; every derived value is exact arithmetic over those rounded
// terms. Recompute over the frozen values therefore reproduces this breakdown
// identically, including at half-cent ties.
func Compute(onlineTotal, hotelTotal, rate decimal.Decimal, minorUnits int32) (Breakdown, error) {
	if onlineTotal.IsNegative() || hotelTotal.IsNegative() {
		return Breakdown{}, shared.ErrInvalidAmount
	}
	if !rate.IsPositive() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Breakdown{}, shared.ErrInvalidConfiguration
	}

	onlineTotal = onlineTotal.RoundBank(minorUnits)
	hotelTotal = hotelTotal.RoundBank(minorUnits)
	totalEarnings := onlineTotal.Add(hotelTotal)
	commission := totalEarnings.Mul(rate).RoundBank(minorUnits)
	platformSettlement := onlineTotal.Sub(commission)

	vendorTotal := hotelTotal
	if platformSettlement.IsPositive() {
		vendorTotal = vendorTotal.Add(platformSettlement)
	}

	return Breakdown{
		TotalEarnings:        totalEarnings,
		CommissionRate:       rate,
		Commission:           commission,
		PlatformSettlement:   platformSettlement,
		VendorDirectReceipts: hotelTotal,
		VendorTotalReceived:  vendorTotal,
	}, nil
}

// Recompute rebuilds a display breakdown from an invoice's frozen values
// without consulting the current commission rate, so historical statements
// stay reproducible after rate changes. The frozen commission is trusted
// as-is; nothing is re-derived from configuration.
func Recompute(onlineTotal, hotelTotal, commission decimal.Decimal) Breakdown {
	platformSettlement := onlineTotal.Sub(commission)
	vendorTotal := hotelTotal
	if platformSettlement.IsPositive() {
		vendorTotal = vendorTotal.Add(platformSettlement)
	}
	return Breakdown{
		TotalEarnings:        onlineTotal.Add(hotelTotal),
		Commission:           commission,
		PlatformSettlement:   platformSettlement,
		VendorDirectReceipts: hotelTotal,
		VendorTotalReceived:  vendorTotal,
	}
}
