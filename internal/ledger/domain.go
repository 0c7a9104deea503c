// Package ledger tracks payment-clearance state per invoice. The owing
// party's flag is a two-way toggle: an invoice can be re-opened to correct a
// mistaken mark, indefinitely. Every toggle also lands in an append-only
// event table; reconciliation logic never reads the events back.
package ledger

import (
	"time"

	"github.com/aeronaa/settlement/internal/settlement"
)

// Action enumerates ledger toggles.
type Action string

const (
	// ActionCleared marks the owing party's obligation as settled.
	ActionCleared Action = "cleared"
	// ActionReopened reverts a clearance.
	ActionReopened Action = "reopened"
)

// PaymentEvent is one audit row for a toggle.
type PaymentEvent struct {
	ID         int64
	InvoiceID  int64
	Action     Action
	Party      settlement.Party
	OccurredAt time.Time
	RecordedAt time.Time
}
