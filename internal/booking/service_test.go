package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

type memoryBookingRepo struct {
	records []RevenueRecord
}

func (r *memoryBookingRepo) CreateRevenueRecord(ctx context.Context, input RevenueRecordInput) (*RevenueRecord, error) {
	rec := RevenueRecord{
		ID:           uuid.New(),
		VendorID:     input.VendorID,
		Channel:      input.Channel,
		Amount:       input.Amount,
		Currency:     input.Currency,
		RecognizedAt: input.RecognizedAt,
		CreatedAt:    time.Now(),
	}
	r.records = append(r.records, rec)
	return &rec, nil
}

func (r *memoryBookingRepo) ListVendorRevenue(ctx context.Context, vendorID int64, period shared.Period) ([]RevenueRecord, error) {
	var out []RevenueRecord
	for _, rec := range r.records {
		if rec.VendorID == vendorID && period.Contains(rec.RecognizedAt) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *memoryBookingRepo) ListVendorsWithActivity(ctx context.Context, period shared.Period) ([]int64, error) {
	seen := map[int64]bool{}
	var out []int64
	for _, rec := range r.records {
		if period.Contains(rec.RecognizedAt) && !seen[rec.VendorID] {
			seen[rec.VendorID] = true
			out = append(out, rec.VendorID)
		}
	}
	return out, nil
}

func TestRecordRevenue(t *testing.T) {
	ctx := context.Background()
	repo := &memoryBookingRepo{}
	svc := NewService(repo)

	rec, err := svc.RecordRevenue(ctx, RevenueRecordInput{
		VendorID:     7,
		Channel:      settlement.ChannelOnline,
		Amount:       decimal.NewFromInt(250),
		Currency:     "USD",
		RecognizedAt: time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, int64(7), rec.VendorID)
	require.Len(t, repo.records, 1)
}

func TestRecordRevenueRejectsNegativeAmount(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryBookingRepo{})

	_, err := svc.RecordRevenue(ctx, RevenueRecordInput{
		VendorID: 7,
		Channel:  settlement.ChannelOnline,
		Amount:   decimal.NewFromInt(-1),
		Currency: "USD",
	})
	require.ErrorIs(t, err, shared.ErrInvalidAmount)
}

func TestRecordRevenueRejectsUnknownChannel(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryBookingRepo{})

	_, err := svc.RecordRevenue(ctx, RevenueRecordInput{
		VendorID: 7,
		Channel:  settlement.Channel("wire"),
		Amount:   decimal.NewFromInt(10),
		Currency: "USD",
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown channel")
}

func TestRecordRevenueRejectsUnknownCurrency(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&memoryBookingRepo{})

	_, err := svc.RecordRevenue(ctx, RevenueRecordInput{
		VendorID: 7,
		Channel:  settlement.ChannelOnline,
		Amount:   decimal.NewFromInt(10),
		Currency: "DOLLARS",
	})
	require.ErrorIs(t, err, shared.ErrCurrencyMismatch)
}

func TestVendorsWithActivity(t *testing.T) {
	ctx := context.Background()
	repo := &memoryBookingRepo{}
	svc := NewService(repo)

	july := time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC)
	august := time.Date(2026, 8, 5, 0, 0, 0, 0, time.UTC)
	for _, in := range []RevenueRecordInput{
		{VendorID: 1, Channel: settlement.ChannelOnline, Amount: decimal.NewFromInt(10), Currency: "USD", RecognizedAt: july},
		{VendorID: 2, Channel: settlement.ChannelPayAtProperty, Amount: decimal.NewFromInt(20), Currency: "USD", RecognizedAt: july},
		{VendorID: 3, Channel: settlement.ChannelOnline, Amount: decimal.NewFromInt(30), Currency: "USD", RecognizedAt: august},
	} {
		_, err := svc.RecordRevenue(ctx, in)
		require.NoError(t, err)
	}

	period, err := shared.PeriodFromKey("2026-07")
	require.NoError(t, err)
	vendors, err := svc.VendorsWithActivity(ctx, period)
	require.NoError(t, err)
	require.ElementsMatch(t, []int64{1, 2}, vendors)
}
