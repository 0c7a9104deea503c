package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/aeronaa/settlement/internal/shared"
)

// MinorUnits returns the number of fraction digits for an ISO 4217 code,
// e.g. 2 for USD and 0 for JPY.
func MinorUnits(code string) (int32, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 0, fmt.Errorf("%w: unknown currency %q", shared.ErrCurrencyMismatch, code)
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale), nil
}

var displayPrinter = message.NewPrinter(language.English)

// FormatAmount renders an amount for statements, grouped and fixed to the
// currency's minor unit, e.g. "USD 1,164.00". The decimal is rounded before
// the lossy float conversion, so display never shows sub-minor-unit noise.
func FormatAmount(amount decimal.Decimal, code string) string {
	scale, err := MinorUnits(code)
	if err != nil {
		return amount.String()
	}
	rounded, _ := amount.RoundBank(scale).Float64()
	return displayPrinter.Sprintf("%s %v", code, number.Decimal(rounded,
		number.MinFractionDigits(int(scale)),
		number.MaxFractionDigits(int(scale)),
	))
}
