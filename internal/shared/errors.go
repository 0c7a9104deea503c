package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidAmount indicates a negative or non-finite monetary input.
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidConfiguration indicates a commission rate outside (0,1].
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrCurrencyMismatch occurs when one invoice would mix currencies.
	ErrCurrencyMismatch = errors.New("currency mismatch")
	// ErrDuplicateInvoice occurs when a vendor/period invoice already exists.
	ErrDuplicateInvoice = errors.New("duplicate invoice")
	// ErrWrongDirection occurs when a clearance targets the non-owing party.
	ErrWrongDirection = errors.New("wrong settlement direction")
	// ErrConcurrentModification indicates a stale write lost a version check.
	ErrConcurrentModification = errors.New("concurrent modification")
)
