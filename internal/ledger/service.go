package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// RepositoryPort defines data access methods for the payment-status ledger.
// SetCleared and SetUncleared apply a versioned write: they update the flag
// and append the audit event in one transaction, and fail with
// ErrConcurrentModification when expectedVersion is stale.
type RepositoryPort interface {
	GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error)
	SetCleared(ctx context.Context, id int64, party settlement.Party, clearedAt time.Time, expectedVersion int64) (*invoice.Invoice, error)
	SetUncleared(ctx context.Context, id int64, party settlement.Party, expectedVersion int64) (*invoice.Invoice, error)
	ListEvents(ctx context.Context, invoiceID int64) ([]PaymentEvent, error)
}

// Service handles payment-clearance mutations.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// MarkCleared records that the owing party settled the invoice. Calling it
// again on an already-cleared invoice is a no-op returning the stored state;
// the original clearance timestamp is kept.
func (s *Service) MarkCleared(ctx context.Context, invoiceID int64, clearedBy settlement.Party, clearedAt time.Time) (*invoice.Invoice, error) {
	if !clearedBy.Valid() {
		return nil, fmt.Errorf("unknown party %q", clearedBy)
	}
	if clearedAt.IsZero() {
		clearedAt = time.Now().UTC()
	}

	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := guardDirection(inv, clearedBy); err != nil {
		return nil, err
	}
	if inv.Cleared() {
		return inv, nil
	}

	updated, err := s.repo.SetCleared(ctx, invoiceID, clearedBy, clearedAt, inv.Version)
	if errors.Is(err, shared.ErrConcurrentModification) {
		// A concurrent writer got there first. If it set the same target
		// state, both calls succeed and exactly one clearance date stands;
		// a genuine clear/reopen race rejects the stale writer.
		current, readErr := s.repo.GetInvoice(ctx, invoiceID)
		if readErr != nil {
			return nil, readErr
		}
		if current.Cleared() {
			return current, nil
		}
		return nil, err
	}
	return updated, err
}

// MarkUncleared reverts a clearance, re-opening the invoice. A no-op when the
// invoice is already unpaid.
func (s *Service) MarkUncleared(ctx context.Context, invoiceID int64, clearedBy settlement.Party) (*invoice.Invoice, error) {
	if !clearedBy.Valid() {
		return nil, fmt.Errorf("unknown party %q", clearedBy)
	}

	inv, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	if err := guardDirection(inv, clearedBy); err != nil {
		return nil, err
	}
	if !inv.Cleared() {
		return inv, nil
	}

	updated, err := s.repo.SetUncleared(ctx, invoiceID, clearedBy, inv.Version)
	if errors.Is(err, shared.ErrConcurrentModification) {
		current, readErr := s.repo.GetInvoice(ctx, invoiceID)
		if readErr != nil {
			return nil, readErr
		}
		if !current.Cleared() {
			return current, nil
		}
		return nil, err
	}
	return updated, err
}

// Events returns the append-only toggle history for an invoice.
func (s *Service) Events(ctx context.Context, invoiceID int64) ([]PaymentEvent, error) {
	return s.repo.ListEvents(ctx, invoiceID)
}

// guardDirection upholds the invariant that only the owing party's flag is
// ever meaningful: toggling the other side is a caller error, not a write.
func guardDirection(inv *invoice.Invoice, party settlement.Party) error {
	if party != inv.ToBePaidBy {
		return fmt.Errorf("%w: invoice %d is owed by %s, not %s",
			shared.ErrWrongDirection, inv.ID, inv.ToBePaidBy, party)
	}
	return nil
}
