package invoice

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/booking"
	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// RepositoryPort defines data access methods for invoices.
type RepositoryPort interface {
	CreateInvoice(ctx context.Context, input CreateInvoiceInput) (*Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*Invoice, error)
	GetVendorInvoice(ctx context.Context, vendorID int64, periodKey string) (*Invoice, error)
	ListVendorInvoices(ctx context.Context, req ListInvoicesRequest) ([]Invoice, int, error)
}

// RevenueSource supplies the raw booking records an invoice is built from.
type RevenueSource interface {
	ListVendorRevenue(ctx context.Context, vendorID int64, period shared.Period) ([]booking.RevenueRecord, error)
}

// BuildLocker serializes invoice builds per vendor and period.
type BuildLocker interface {
	Acquire(ctx context.Context, vendorID int64, periodKey string) (release func(), err error)
}

// Service handles invoice aggregation.
type Service struct {
	repo            RepositoryPort
	revenue         RevenueSource
	locks           BuildLocker
	commissionRate  decimal.Decimal
	defaultCurrency string
}

// NewService builds Service instance. The commission rate is threaded in
// explicitly so historical invoices stay reproducible under rate changes.
func NewService(repo RepositoryPort, revenue RevenueSource, locks BuildLocker, commissionRate decimal.Decimal, defaultCurrency string) *Service {
	return &Service{
		repo:            repo,
		revenue:         revenue,
		locks:           locks,
		commissionRate:  commissionRate,
		defaultCurrency: defaultCurrency,
	}
}

// BuildInvoice aggregates the given records into the vendor's invoice for the
// period. Records outside the vendor or the half-open window are skipped.
// The settlement calculator runs exactly once; its outputs are frozen onto
// the invoice.
func (s *Service) BuildInvoice(ctx context.Context, vendorID int64, period shared.Period, records []booking.RevenueRecord) (*Invoice, error) {
	if vendorID == 0 {
		return nil, errors.New("vendor ID required")
	}

	release, err := s.locks.Acquire(ctx, vendorID, period.Key)
	if err != nil {
		return nil, err
	}
	defer release()

	if existing, err := s.repo.GetVendorInvoice(ctx, vendorID, period.Key); err == nil && existing != nil {
		return nil, fmt.Errorf("%w: vendor %d period %s", shared.ErrDuplicateInvoice, vendorID, period.Key)
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	onlineTotal := decimal.Zero
	hotelTotal := decimal.Zero
	currency := ""
	for _, rec := range records {
		if rec.VendorID != vendorID || !period.Contains(rec.RecognizedAt) {
			continue
		}
		if rec.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: booking %s", shared.ErrInvalidAmount, rec.ID)
		}
		if currency == "" {
			currency = rec.Currency
		} else if rec.Currency != currency {
			return nil, fmt.Errorf("%w: %s and %s in one invoice", shared.ErrCurrencyMismatch, currency, rec.Currency)
		}
		switch rec.Channel {
		case settlement.ChannelOnline:
			onlineTotal = onlineTotal.Add(rec.Amount)
		case settlement.ChannelPayAtProperty:
			hotelTotal = hotelTotal.Add(rec.Amount)
		default:
			return nil, fmt.Errorf("unknown channel %q on booking %s", rec.Channel, rec.ID)
		}
	}
	if currency == "" {
		currency = s.defaultCurrency
	}

	minorUnits, err := settlement.MinorUnits(currency)
	if err != nil {
		return nil, err
	}
	breakdown, err := settlement.Compute(onlineTotal, hotelTotal, s.commissionRate, minorUnits)
	if err != nil {
		return nil, err
	}

	return s.repo.CreateInvoice(ctx, CreateInvoiceInput{
		VendorID:       vendorID,
		PeriodKey:      period.Key,
		StartDate:      period.Start,
		EndDate:        period.End,
		Currency:       currency,
		TotalSales:     breakdown.TotalEarnings,
		OnlineReceived: onlineTotal.RoundBank(minorUnits),
		HotelReceived:  hotelTotal.RoundBank(minorUnits),
		Commission:     breakdown.Commission,
		VendorNet:      breakdown.VendorTotalReceived,
		AmountToBePaid: breakdown.AmountDue(),
		ToBePaidBy:     breakdown.OwedBy(),
	})
}

// BuildForPeriod loads the vendor's recognised revenue and builds the invoice.
func (s *Service) BuildForPeriod(ctx context.Context, vendorID int64, period shared.Period) (*Invoice, error) {
	records, err := s.revenue.ListVendorRevenue(ctx, vendorID, period)
	if err != nil {
		return nil, err
	}
	return s.BuildInvoice(ctx, vendorID, period, records)
}

// GetInvoice returns one invoice by ID.
func (s *Service) GetInvoice(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.GetInvoice(ctx, id)
}

// GetVendorInvoice returns a vendor's invoice for one period.
func (s *Service) GetVendorInvoice(ctx context.Context, vendorID int64, periodKey string) (*Invoice, error) {
	if _, err := shared.PeriodFromKey(periodKey); err != nil {
		return nil, err
	}
	return s.repo.GetVendorInvoice(ctx, vendorID, periodKey)
}

// ListVendorInvoices returns a page of a vendor's invoices.
func (s *Service) ListVendorInvoices(ctx context.Context, vendorID int64, page shared.Pagination) ([]Invoice, shared.Pagination, error) {
	invoices, total, err := s.repo.ListVendorInvoices(ctx, ListInvoicesRequest{
		VendorID: vendorID,
		Limit:    page.PerPage,
		Offset:   page.Offset(),
	})
	if err != nil {
		return nil, page, err
	}
	return invoices, shared.NewPagination(page.Page, page.PerPage, total), nil
}
