package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	jobmetrics "github.com/aeronaa/settlement/internal/jobs"
	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/shared"
)

// VendorLister reports vendors that recorded revenue within a period.
type VendorLister interface {
	VendorsWithActivity(ctx context.Context, period shared.Period) ([]int64, error)
}

// InvoiceBuilder freezes an invoice for one vendor and period.
type InvoiceBuilder interface {
	BuildForPeriod(ctx context.Context, vendorID int64, period shared.Period) (*invoice.Invoice, error)
}

// PeriodCloseJob builds all vendor invoices for a closed billing period.
type PeriodCloseJob struct {
	vendors  VendorLister
	invoices InvoiceBuilder
	logger   *slog.Logger
	metrics  *jobmetrics.Metrics
	// Parallelism bounds the per-vendor fan-out. Zero means the default.
	Parallelism int
	now         func() time.Time
}

// NewPeriodCloseJob wires the period-close job.
func NewPeriodCloseJob(vendors VendorLister, invoices InvoiceBuilder, logger *slog.Logger, metrics *jobmetrics.Metrics) *PeriodCloseJob {
	return &PeriodCloseJob{
		vendors:  vendors,
		invoices: invoices,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Handle processes a TaskPeriodClose task.
func (j *PeriodCloseJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload PeriodClosePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	return j.Run(ctx, payload.PeriodKey)
}

// Run closes the given period, or the previous calendar month when the key
// is empty. Vendors whose invoice already exists are skipped so re-running
// a partially failed close is safe.
func (j *PeriodCloseJob) Run(ctx context.Context, periodKey string) error {
	tracker := j.metrics.Track("period_close")

	period, err := j.resolvePeriod(periodKey)
	if err != nil {
		return tracker.End(err)
	}

	vendorIDs, err := j.vendors.VendorsWithActivity(ctx, period)
	if err != nil {
		return tracker.End(err)
	}

	parallelism := j.Parallelism
	if parallelism <= 0 {
		parallelism = 4
	}

	var built, skipped int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)
	results := make(chan bool, len(vendorIDs))
	for _, vendorID := range vendorIDs {
		vendorID := vendorID
		group.Go(func() error {
			_, err := j.invoices.BuildForPeriod(groupCtx, vendorID, period)
			switch {
			case err == nil:
				results <- true
				return nil
			case errors.Is(err, shared.ErrDuplicateInvoice):
				results <- false
				return nil
			default:
				j.logger.Error("period close: build invoice",
					slog.Int64("vendor_id", vendorID),
					slog.String("period", period.Key),
					slog.Any("error", err))
				return err
			}
		})
	}
	err = group.Wait()
	close(results)
	for ok := range results {
		if ok {
			built++
		} else {
			skipped++
		}
	}

	j.metrics.AddInvoicesBuilt(period.Key, int(built))
	j.logger.Info("period close finished",
		slog.String("period", period.Key),
		slog.Int("vendors", len(vendorIDs)),
		slog.Int64("built", built),
		slog.Int64("skipped", skipped))
	return tracker.End(err)
}

func (j *PeriodCloseJob) resolvePeriod(key string) (shared.Period, error) {
	if key == "" {
		return shared.PreviousPeriod(j.now()), nil
	}
	return shared.PeriodFromKey(key)
}
