package invoice

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aeronaa/settlement/internal/platform/httpx"
	"github.com/aeronaa/settlement/internal/shared"
)

// Handler manages invoice endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers invoice routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/vendors/{vendorID}/invoices", h.listInvoices)
	r.Get("/vendors/{vendorID}/invoices/{period}", h.getInvoice)
	r.Post("/vendors/{vendorID}/invoices/{period}", h.buildInvoice)
}

type invoiceResponse struct {
	ID             int64      `json:"id"`
	VendorID       int64      `json:"vendor_id"`
	PeriodKey      string     `json:"period"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	Currency       string     `json:"currency"`
	TotalSales     string     `json:"total_sales"`
	OnlineReceived string     `json:"online_received"`
	HotelReceived  string     `json:"hotel_received"`
	Commission     string     `json:"commission"`
	VendorNet      string     `json:"vendor_net"`
	AmountToBePaid string     `json:"amount_to_be_paid"`
	ToBePaidBy     string     `json:"to_be_paid_by"`
	Cleared        bool       `json:"cleared"`
	ClearedAt      *time.Time `json:"cleared_at,omitempty"`
	Version        int64      `json:"version"`
}

func toInvoiceResponse(inv *Invoice) invoiceResponse {
	return invoiceResponse{
		ID:             inv.ID,
		VendorID:       inv.VendorID,
		PeriodKey:      inv.PeriodKey,
		StartDate:      inv.StartDate,
		EndDate:        inv.EndDate,
		Currency:       inv.Currency,
		TotalSales:     inv.TotalSales.String(),
		OnlineReceived: inv.OnlineReceived.String(),
		HotelReceived:  inv.HotelReceived.String(),
		Commission:     inv.Commission.String(),
		VendorNet:      inv.VendorNet.String(),
		AmountToBePaid: inv.AmountToBePaid.String(),
		ToBePaidBy:     string(inv.ToBePaidBy),
		Cleared:        inv.Cleared(),
		ClearedAt:      inv.ClearedAt(),
		Version:        inv.Version,
	}
}

func (h *Handler) listInvoices(w http.ResponseWriter, r *http.Request) {
	vendorID, err := strconv.ParseInt(chi.URLParam(r, "vendorID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid vendor ID")
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	invoices, pagination, err := h.service.ListVendorInvoices(r.Context(), vendorID, shared.NewPagination(page, perPage, 0))
	if err != nil {
		h.logger.Error("list invoices", slog.Any("error", err), slog.Int64("vendor_id", vendorID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}

	items := make([]invoiceResponse, 0, len(invoices))
	for i := range invoices {
		items = append(items, toInvoiceResponse(&invoices[i]))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"invoices":    items,
		"page":        pagination.Page,
		"per_page":    pagination.PerPage,
		"total":       pagination.Total,
		"total_pages": pagination.TotalPages,
	})
}

func (h *Handler) getInvoice(w http.ResponseWriter, r *http.Request) {
	vendorID, err := strconv.ParseInt(chi.URLParam(r, "vendorID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid vendor ID")
		return
	}

	inv, err := h.service.GetVendorInvoice(r.Context(), vendorID, chi.URLParam(r, "period"))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no invoice for this vendor and period")
			return
		}
		h.logger.Error("get invoice", slog.Any("error", err), slog.Int64("vendor_id", vendorID))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, toInvoiceResponse(inv))
}

func (h *Handler) buildInvoice(w http.ResponseWriter, r *http.Request) {
	vendorID, err := strconv.ParseInt(chi.URLParam(r, "vendorID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid vendor ID")
		return
	}
	period, err := shared.PeriodFromKey(chi.URLParam(r, "period"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	inv, err := h.service.BuildForPeriod(r.Context(), vendorID, period)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrDuplicateInvoice):
			httpx.Problem(w, http.StatusConflict, "Duplicate Invoice", err.Error())
		case errors.Is(err, shared.ErrConcurrentModification):
			httpx.Problem(w, http.StatusConflict, "Build In Progress", err.Error())
		case errors.Is(err, shared.ErrCurrencyMismatch):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Currency Mismatch", err.Error())
		case errors.Is(err, shared.ErrInvalidAmount), errors.Is(err, shared.ErrInvalidConfiguration):
			httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
		default:
			h.logger.Error("build invoice", slog.Any("error", err), slog.Int64("vendor_id", vendorID))
			httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toInvoiceResponse(inv))
}
