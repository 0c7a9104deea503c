package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aeronaa/settlement/internal/shared"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestComputePlatformOwesVendor(t *testing.T) {
	b, err := Compute(dec("1000"), dec("200"), dec("0.03"), 2)
	require.NoError(t, err)

	require.True(t, dec("1200").Equal(b.TotalEarnings))
	require.True(t, dec("36").Equal(b.Commission))
	require.True(t, dec("964").Equal(b.PlatformSettlement))
	require.True(t, dec("200").Equal(b.VendorDirectReceipts))
	require.True(t, dec("1164").Equal(b.VendorTotalReceived))
	require.Equal(t, PartyPlatform, b.OwedBy())
	require.True(t, dec("964").Equal(b.AmountDue()))
}

func TestComputeFractionalCommission(t *testing.T) {
	b, err := Compute(dec("50"), dec("500"), dec("0.03"), 2)
	require.NoError(t, err)

	require.True(t, dec("550").Equal(b.TotalEarnings))
	require.True(t, dec("16.5").Equal(b.Commission))
	require.True(t, dec("33.5").Equal(b.PlatformSettlement))
	require.Equal(t, PartyPlatform, b.OwedBy())
	require.True(t, dec("533.5").Equal(b.VendorTotalReceived))
}

func TestComputeVendorOwesPlatform(t *testing.T) {
	// Commission on a large pay-at-property share exceeds what the platform
	// collected online, so the direction flips.
	b, err := Compute(dec("10"), dec("1323.33"), dec("0.03"), 2)
	require.NoError(t, err)

	require.True(t, dec("40").Equal(b.Commission), "commission %s", b.Commission)
	require.True(t, dec("-30").Equal(b.PlatformSettlement))
	require.Equal(t, PartyVendor, b.OwedBy())
	require.True(t, dec("30").Equal(b.AmountDue()))
	// The vendor keeps only its direct receipts; the negative settlement is
	// never subtracted from them.
	require.True(t, b.VendorTotalReceived.Equal(b.VendorDirectReceipts))
}

func TestComputeZeroTotals(t *testing.T) {
	b, err := Compute(decimal.Zero, decimal.Zero, dec("0.03"), 2)
	require.NoError(t, err)
	require.True(t, b.Commission.IsZero())
	require.True(t, b.PlatformSettlement.IsZero())
	require.Equal(t, PartyPlatform, b.OwedBy())
}

func TestComputeRejectsNegativeInput(t *testing.T) {
	_, err := Compute(dec("-1"), dec("0"), dec("0.03"), 2)
	require.ErrorIs(t, err, shared.ErrInvalidAmount)

	_, err = Compute(dec("0"), dec("-0.01"), dec("0.03"), 2)
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
}

func TestComputeRejectsBadRate(t *testing.T) {
	for _, rate := range []string{"0", "-0.03", "1.01", "5"} {
		_, err := Compute(dec("100"), dec("100"), dec(rate), 2)
		require.ErrorIs(t, err, shared.ErrInvalidConfiguration, "rate %s", rate)
	}

	// The full 100% rate is a valid, if punishing, configuration.
	_, err := Compute(dec("100"), dec("100"), dec("1"), 2)
	require.NoError(t, err)
}

func TestComputeRoundsHalfToEvenOnce(t *testing.T) {
	// 141.50 * 0.03 = 4.245 rounds down to the even 4.24;
	// 208.50 * 0.03 = 6.255 rounds up to 6.26.
	b, err := Compute(dec("141.50"), decimal.Zero, dec("0.03"), 2)
	require.NoError(t, err)
	require.True(t, dec("4.24").Equal(b.Commission), "commission %s", b.Commission)

	b, err = Compute(dec("208.50"), decimal.Zero, dec("0.03"), 2)
	require.NoError(t, err)
	require.True(t, dec("6.26").Equal(b.Commission), "commission %s", b.Commission)
}

func TestComputeZeroMinorUnitCurrency(t *testing.T) {
	b, err := Compute(dec("1000.4"), dec("200.4"), dec("0.03"), 0)
	require.NoError(t, err)
	require.True(t, b.Commission.Equal(b.Commission.Truncate(0)))
	require.True(t, b.VendorTotalReceived.Equal(b.VendorTotalReceived.Truncate(0)))
}

func TestComputeProperties(t *testing.T) {
	// Deterministic sweep over a grid of totals; checks the invariants that
	// hold for every non-negative input.
	rate := dec("0.03")
	for online := int64(0); online <= 5000; online += 137 {
		for hotel := int64(0); hotel <= 5000; hotel += 251 {
			o := decimal.New(online, -2)
			h := decimal.New(hotel, -2)
			b, err := Compute(o, h, rate, 2)
			require.NoError(t, err)

			// The vendor never receives less than its direct receipts.
			require.True(t, b.VendorTotalReceived.GreaterThanOrEqual(b.VendorDirectReceipts),
				"online=%s hotel=%s", o, h)

			// Commission never exceeds total earnings while rate <= 1.
			require.True(t, b.Commission.LessThanOrEqual(b.TotalEarnings))

			// Direction: vendor owes iff online receipts fall below commission.
			wantVendor := o.LessThan(b.Commission)
			require.Equal(t, wantVendor, b.OwedBy() == PartyVendor,
				"online=%s commission=%s", o, b.Commission)
		}
	}
}

func TestRecomputeMatchesCompute(t *testing.T) {
	b, err := Compute(dec("1000"), dec("200"), dec("0.03"), 2)
	require.NoError(t, err)

	r := Recompute(dec("1000"), dec("200"), b.Commission)
	require.True(t, b.PlatformSettlement.Equal(r.PlatformSettlement))
	require.True(t, b.VendorTotalReceived.Equal(r.VendorTotalReceived))
	require.Equal(t, b.OwedBy(), r.OwedBy())
}

func TestRecomputeMatchesComputeAtRoundingTies(t *testing.T) {
	// Half-cent commission ties are where a diverging rounding order would
	// shift the settlement by one minor unit, or flip the direction at the
	// zero boundary. Frozen and recomputed values must agree exactly.
	cases := []struct {
		online, hotel string
	}{
		{"10.01", "131.49"}, // 141.50 * 0.03 = 4.245, ties to 4.24
		{"0.01", "0.49"},    // 0.50 * 0.03 = 0.015, ties to 0.02, settlement -0.01
		{"77.49", "131.01"}, // 208.50 * 0.03 = 6.255, ties to 6.26
		{"4.24", "137.26"},  // settlement lands exactly on zero
	}
	for _, tc := range cases {
		b, err := Compute(dec(tc.online), dec(tc.hotel), dec("0.03"), 2)
		require.NoError(t, err)

		r := Recompute(dec(tc.online), dec(tc.hotel), b.Commission)
		require.True(t, b.PlatformSettlement.Equal(r.PlatformSettlement),
			"online=%s hotel=%s frozen=%s recomputed=%s",
			tc.online, tc.hotel, b.PlatformSettlement, r.PlatformSettlement)
		require.True(t, b.VendorTotalReceived.Equal(r.VendorTotalReceived),
			"online=%s hotel=%s", tc.online, tc.hotel)
		require.Equal(t, b.OwedBy(), r.OwedBy(),
			"online=%s hotel=%s commission=%s", tc.online, tc.hotel, b.Commission)
		require.True(t, b.AmountDue().Equal(r.AmountDue()))
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	a, err := Compute(dec("123.45"), dec("678.90"), dec("0.03"), 2)
	require.NoError(t, err)
	b, err := Compute(dec("123.45"), dec("678.90"), dec("0.03"), 2)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
