package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/platform/db"
	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// Repository provides PostgreSQL backed persistence for the ledger.
type Repository struct {
	pool     *pgxpool.Pool
	invoices *invoice.Repository
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, invoices: invoice.NewRepository(pool)}
}

// GetInvoice reads the invoice with its current version.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error) {
	return r.invoices.GetInvoice(ctx, id)
}

// SetCleared sets the party's paid-at column under a version check and appends
// the audit event, in one transaction.
func (r *Repository) SetCleared(ctx context.Context, id int64, party settlement.Party, clearedAt time.Time, expectedVersion int64) (*invoice.Invoice, error) {
	return r.toggle(ctx, id, party, &clearedAt, expectedVersion, ActionCleared)
}

// SetUncleared clears the party's paid-at column under a version check and
// appends the audit event, in one transaction.
func (r *Repository) SetUncleared(ctx context.Context, id int64, party settlement.Party, expectedVersion int64) (*invoice.Invoice, error) {
	return r.toggle(ctx, id, party, nil, expectedVersion, ActionReopened)
}

func (r *Repository) toggle(ctx context.Context, id int64, party settlement.Party, clearedAt *time.Time, expectedVersion int64, action Action) (*invoice.Invoice, error) {
	column, err := paidColumn(party)
	if err != nil {
		return nil, err
	}

	err = db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		query := fmt.Sprintf(`
			UPDATE invoices
			SET %s = $2, version = version + 1, updated_at = NOW()
			WHERE id = $1 AND version = $3`, column)

		tag, err := tx.Exec(ctx, query, id, clearedAt, expectedVersion)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, id).Scan(&exists); err != nil {
				return err
			}
			if !exists {
				return shared.ErrNotFound
			}
			return fmt.Errorf("%w: invoice %d version %d is stale", shared.ErrConcurrentModification, id, expectedVersion)
		}

		occurredAt := time.Now().UTC()
		if clearedAt != nil {
			occurredAt = *clearedAt
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO invoice_payment_events (invoice_id, action, party, occurred_at, recorded_at)
			VALUES ($1, $2, $3, $4, NOW())`,
			id, string(action), string(party), occurredAt)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.invoices.GetInvoice(ctx, id)
}

// ListEvents returns the toggle history, oldest first.
func (r *Repository) ListEvents(ctx context.Context, invoiceID int64) ([]PaymentEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, invoice_id, action, party, occurred_at, recorded_at
		FROM invoice_payment_events
		WHERE invoice_id = $1
		ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []PaymentEvent
	for rows.Next() {
		var ev PaymentEvent
		var action, party string
		if err := rows.Scan(&ev.ID, &ev.InvoiceID, &action, &party, &ev.OccurredAt, &ev.RecordedAt); err != nil {
			return nil, err
		}
		ev.Action = Action(action)
		ev.Party = settlement.Party(party)
		events = append(events, ev)
	}
	return events, rows.Err()
}

func paidColumn(party settlement.Party) (string, error) {
	// Column name comes from a closed enum, never from caller input.
	switch party {
	case settlement.PartyPlatform:
		return "paid_by_platform_at", nil
	case settlement.PartyVendor:
		return "paid_by_vendor_at", nil
	default:
		return "", fmt.Errorf("unknown party %q", party)
	}
}
