package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// RepositoryPort defines data access methods for booking revenue.
type RepositoryPort interface {
	CreateRevenueRecord(ctx context.Context, input RevenueRecordInput) (*RevenueRecord, error)
	ListVendorRevenue(ctx context.Context, vendorID int64, period shared.Period) ([]RevenueRecord, error)
	ListVendorsWithActivity(ctx context.Context, period shared.Period) ([]int64, error)
}

// Service handles booking revenue ingestion.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// RecordRevenue validates and stores one revenue record.
func (s *Service) RecordRevenue(ctx context.Context, input RevenueRecordInput) (*RevenueRecord, error) {
	if input.VendorID == 0 {
		return nil, errors.New("vendor ID required")
	}
	if !input.Channel.Valid() {
		return nil, fmt.Errorf("unknown channel %q", input.Channel)
	}
	if input.Amount.IsNegative() {
		return nil, shared.ErrInvalidAmount
	}
	if _, err := settlement.MinorUnits(input.Currency); err != nil {
		return nil, err
	}
	if input.RecognizedAt.IsZero() {
		input.RecognizedAt = time.Now().UTC()
	}
	return s.repo.CreateRevenueRecord(ctx, input)
}

// ListVendorRevenue returns a vendor's records inside the period window.
func (s *Service) ListVendorRevenue(ctx context.Context, vendorID int64, period shared.Period) ([]RevenueRecord, error) {
	return s.repo.ListVendorRevenue(ctx, vendorID, period)
}

// VendorsWithActivity lists vendors that recognised revenue inside the period.
func (s *Service) VendorsWithActivity(ctx context.Context, period shared.Period) ([]int64, error) {
	return s.repo.ListVendorsWithActivity(ctx, period)
}
