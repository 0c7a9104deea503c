package statement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aeronaa/settlement/internal/invoice"
	"github.com/aeronaa/settlement/internal/platform/httpx"
	"github.com/aeronaa/settlement/internal/shared"
)

// InvoiceSource loads the frozen invoice a statement is built from.
type InvoiceSource interface {
	GetInvoice(ctx context.Context, id int64) (*invoice.Invoice, error)
}

// PDFConverter turns rendered HTML into a PDF document.
type PDFConverter interface {
	ConvertHTML(ctx context.Context, html []byte) ([]byte, error)
}

// Handler serves statement exports.
type Handler struct {
	logger   *slog.Logger
	invoices InvoiceSource
	pdf      PDFConverter
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, invoices InvoiceSource, pdf PDFConverter) *Handler {
	return &Handler{logger: logger, invoices: invoices, pdf: pdf}
}

// MountRoutes registers statement routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/invoices/{id}/statement", h.renderHTML)
	r.Get("/invoices/{id}/statement.pdf", h.renderPDF)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (Statement, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice ID")
		return Statement{}, false
	}
	inv, err := h.invoices.GetInvoice(r.Context(), id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
			return Statement{}, false
		}
		h.logger.Error("load invoice for statement", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return Statement{}, false
	}
	return Build(inv), true
}

func (h *Handler) renderHTML(w http.ResponseWriter, r *http.Request) {
	stmt, ok := h.load(w, r)
	if !ok {
		return
	}
	doc, err := RenderHTML(stmt)
	if err != nil {
		h.logger.Error("render statement", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(doc)
}

func (h *Handler) renderPDF(w http.ResponseWriter, r *http.Request) {
	stmt, ok := h.load(w, r)
	if !ok {
		return
	}
	doc, err := RenderHTML(stmt)
	if err != nil {
		h.logger.Error("render statement", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	pdf, err := h.pdf.ConvertHTML(r.Context(), doc)
	if err != nil {
		h.logger.Error("export statement pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "statement export is temporarily unavailable")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="statement-%d-%s.pdf"`, stmt.VendorID, stmt.PeriodKey))
	_, _ = w.Write(pdf)
}
