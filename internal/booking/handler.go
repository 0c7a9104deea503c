package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/aeronaa/settlement/internal/platform/httpx"
	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// Handler manages booking revenue endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers booking routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/bookings", h.recordRevenue)
}

type revenueRecordRequest struct {
	VendorID     int64     `json:"vendor_id" validate:"required,gt=0"`
	Channel      string    `json:"channel" validate:"required,oneof=online pay_at_property"`
	Amount       string    `json:"amount" validate:"required"`
	Currency     string    `json:"currency" validate:"required,len=3,uppercase"`
	RecognizedAt time.Time `json:"recognized_at" validate:"required"`
}

type revenueRecordResponse struct {
	ID           string    `json:"id"`
	VendorID     int64     `json:"vendor_id"`
	Channel      string    `json:"channel"`
	Amount       string    `json:"amount"`
	Currency     string    `json:"currency"`
	RecognizedAt time.Time `json:"recognized_at"`
}

func (h *Handler) recordRevenue(w http.ResponseWriter, r *http.Request) {
	var req revenueRecordRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount is not a decimal")
		return
	}

	rec, err := h.service.RecordRevenue(r.Context(), RevenueRecordInput{
		VendorID:     req.VendorID,
		Channel:      settlement.Channel(req.Channel),
		Amount:       amount,
		Currency:     req.Currency,
		RecognizedAt: req.RecognizedAt,
	})
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrInvalidAmount), errors.Is(err, shared.ErrCurrencyMismatch):
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		default:
			h.logger.Error("record revenue", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}

	httpx.JSON(w, http.StatusCreated, revenueRecordResponse{
		ID:           rec.ID.String(),
		VendorID:     rec.VendorID,
		Channel:      string(rec.Channel),
		Amount:       rec.Amount.String(),
		Currency:     rec.Currency,
		RecognizedAt: rec.RecognizedAt,
	})
}
