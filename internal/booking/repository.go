package booking

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// Repository provides PostgreSQL backed persistence for booking revenue.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRevenueRecord inserts one immutable revenue record.
func (r *Repository) CreateRevenueRecord(ctx context.Context, input RevenueRecordInput) (*RevenueRecord, error) {
	query := `
		INSERT INTO booking_revenue (
			id, vendor_id, channel, amount, currency, recognized_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING created_at`

	rec := RevenueRecord{
		ID:           uuid.New(),
		VendorID:     input.VendorID,
		Channel:      input.Channel,
		Amount:       input.Amount,
		Currency:     input.Currency,
		RecognizedAt: input.RecognizedAt.UTC(),
	}
	err := r.pool.QueryRow(ctx, query,
		rec.ID,
		rec.VendorID,
		string(rec.Channel),
		rec.Amount,
		rec.Currency,
		rec.RecognizedAt,
	).Scan(&rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListVendorRevenue returns a vendor's records with recognized_at inside the
// half-open period window.
func (r *Repository) ListVendorRevenue(ctx context.Context, vendorID int64, period shared.Period) ([]RevenueRecord, error) {
	query := `
		SELECT id, vendor_id, channel, amount, currency, recognized_at, created_at
		FROM booking_revenue
		WHERE vendor_id = $1 AND recognized_at >= $2 AND recognized_at < $3
		ORDER BY recognized_at`

	rows, err := r.pool.Query(ctx, query, vendorID, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RevenueRecord
	for rows.Next() {
		var rec RevenueRecord
		var channel string
		var amount decimal.Decimal
		if err := rows.Scan(&rec.ID, &rec.VendorID, &channel, &amount, &rec.Currency, &rec.RecognizedAt, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Channel = settlement.Channel(channel)
		rec.Amount = amount
		records = append(records, rec)
	}
	return records, rows.Err()
}

// ListVendorsWithActivity returns distinct vendor IDs with revenue in the period.
func (r *Repository) ListVendorsWithActivity(ctx context.Context, period shared.Period) ([]int64, error) {
	query := `
		SELECT DISTINCT vendor_id
		FROM booking_revenue
		WHERE recognized_at >= $1 AND recognized_at < $2
		ORDER BY vendor_id`

	rows, err := r.pool.Query(ctx, query, period.Start, period.End)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		vendors = append(vendors, id)
	}
	return vendors, rows.Err()
}
