package ledger

import (
	"context"
	"time"

	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/settlement"
)

// Reconciler wraps the ledger's mutations in the optimistic-apply protocol a
// UI caller needs: flip the local copy immediately, persist, then replace the
// local state with the ledger's authoritative answer, or put the snapshot
// back when the persist fails. The local copy and the durable state are never
// left permanently diverged.
type Reconciler struct {
	svc *Service
}

// NewReconciler builds Reconciler instance.
func NewReconciler(svc *Service) *Reconciler {
	return &Reconciler{svc: svc}
}

// Clear optimistically marks local as cleared and persists the change.
func (r *Reconciler) Clear(ctx context.Context, local *invoice.Invoice, clearedAt time.Time) (*invoice.Invoice, error) {
	snapshot := *local
	applyCleared(local, clearedAt)

	authoritative, err := r.svc.MarkCleared(ctx, local.ID, local.ToBePaidBy, clearedAt)
	if err != nil {
		*local = snapshot
		return nil, err
	}
	*local = *authoritative
	return authoritative, nil
}

// Reopen optimistically reverts local's clearance and persists the change.
func (r *Reconciler) Reopen(ctx context.Context, local *invoice.Invoice) (*invoice.Invoice, error) {
	snapshot := *local
	applyUncleared(local)

	authoritative, err := r.svc.MarkUncleared(ctx, local.ID, local.ToBePaidBy)
	if err != nil {
		*local = snapshot
		return nil, err
	}
	*local = *authoritative
	return authoritative, nil
}

func applyCleared(inv *invoice.Invoice, at time.Time) {
	if inv.ToBePaidBy == settlement.PartyVendor {
		inv.PaidByVendorAt = &at
		return
	}
	inv.PaidByPlatformAt = &at
}

func applyUncleared(inv *invoice.Invoice) {
	inv.PaidByPlatformAt = nil
	inv.PaidByVendorAt = nil
}
