// Package booking stores the raw per-booking revenue records produced by the
// checkout flow. Records are immutable once written; the settlement core only
// ever reads them.
package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/settlement"
)

// RevenueRecord is one booking's recognised revenue.
type RevenueRecord struct {
	ID           uuid.UUID
	VendorID     int64
	Channel      settlement.Channel
	Amount       decimal.Decimal
	Currency     string
	RecognizedAt time.Time
	CreatedAt    time.Time
}

// RevenueRecordInput for ingesting a record.
type RevenueRecordInput struct {
	VendorID     int64
	Channel      settlement.Channel
	Amount       decimal.Decimal
	Currency     string
	RecognizedAt time.Time
}
