package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// Repository provides PostgreSQL backed persistence for invoices.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const uniqueViolation = "23505"

const invoiceColumns = `
	id, vendor_id, period_key, start_date, end_date, currency,
	total_sales, online_received, hotel_received, commission,
	vendor_net, amount_to_be_paid, to_be_paid_by,
	paid_by_platform_at, paid_by_vendor_at,
	version, is_active, created_at, updated_at`

// CreateInvoice inserts a new invoice. The vendor/period unique constraint is
// the durable half of the duplicate guard; the build lock only narrows the
// race window.
func (r *Repository) CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error) {
	query := `
		INSERT INTO invoices (
			vendor_id, period_key, start_date, end_date, currency,
			total_sales, online_received, hotel_received, commission,
			vendor_net, amount_to_be_paid, to_be_paid_by,
			version, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, TRUE, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	inv := Invoice{
		VendorID:       input.VendorID,
		PeriodKey:      input.PeriodKey,
		StartDate:      input.StartDate,
		EndDate:        input.EndDate,
		Currency:       input.Currency,
		TotalSales:     input.TotalSales,
		OnlineReceived: input.OnlineReceived,
		HotelReceived:  input.HotelReceived,
		Commission:     input.Commission,
		VendorNet:      input.VendorNet,
		AmountToBePaid: input.AmountToBePaid,
		ToBePaidBy:     input.ToBePaidBy,
		Version:        1,
		IsActive:       true,
	}
	err := r.pool.QueryRow(ctx, query,
		input.VendorID,
		input.PeriodKey,
		input.StartDate,
		input.EndDate,
		input.Currency,
		input.TotalSales,
		input.OnlineReceived,
		input.HotelReceived,
		input.Commission,
		input.VendorNet,
		input.AmountToBePaid,
		string(input.ToBePaidBy),
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, fmt.Errorf("%w: vendor %d period %s", shared.ErrDuplicateInvoice, input.VendorID, input.PeriodKey)
		}
		return nil, err
	}
	return &inv, nil
}

// GetInvoice retrieves an invoice by ID.
func (r *Repository) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

// GetVendorInvoice retrieves the invoice for one vendor and period.
func (r *Repository) GetVendorInvoice(ctx context.Context, vendorID int64, periodKey string) (*Invoice, error) {
	query := `SELECT` + invoiceColumns + ` FROM invoices WHERE vendor_id = $1 AND period_key = $2`
	return r.scanOne(r.pool.QueryRow(ctx, query, vendorID, periodKey))
}

// ListVendorInvoices returns a page of a vendor's invoices plus the total count.
func (r *Repository) ListVendorInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE vendor_id = $1`, req.VendorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT` + invoiceColumns + `
		FROM invoices
		WHERE vendor_id = $1
		ORDER BY period_key DESC
		LIMIT $2 OFFSET $3`

	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, query, req.VendorID, limit, req.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var invoices []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, 0, err
		}
		invoices = append(invoices, *inv)
	}
	return invoices, total, rows.Err()
}

func (r *Repository) scanOne(row pgx.Row) (*Invoice, error) {
	inv, err := scanInvoice(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func scanInvoice(row pgx.Row) (*Invoice, error) {
	var inv Invoice
	var toBePaidBy string
	var paidByPlatform, paidByVendor pgtype.Timestamptz

	err := row.Scan(
		&inv.ID, &inv.VendorID, &inv.PeriodKey, &inv.StartDate, &inv.EndDate, &inv.Currency,
		&inv.TotalSales, &inv.OnlineReceived, &inv.HotelReceived, &inv.Commission,
		&inv.VendorNet, &inv.AmountToBePaid, &toBePaidBy,
		&paidByPlatform, &paidByVendor,
		&inv.Version, &inv.IsActive, &inv.CreatedAt, &inv.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	inv.ToBePaidBy = settlement.Party(toBePaidBy)
	if paidByPlatform.Valid {
		t := paidByPlatform.Time
		inv.PaidByPlatformAt = &t
	}
	if paidByVendor.Valid {
		t := paidByVendor.Time
		inv.PaidByVendorAt = &t
	}
	return &inv, nil
}
