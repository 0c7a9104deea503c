package ledger

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aeronaa/settlement/internal/platform/httpx"
	"github.com/aeronaa/settlement/internal/settlement"
	"github.com/aeronaa/settlement/internal/shared"
)

// Handler manages payment-clearance endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers ledger routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/invoices/{id}/clear", h.markCleared)
	r.Post("/invoices/{id}/reopen", h.markUncleared)
	r.Get("/invoices/{id}/events", h.listEvents)
}

type toggleRequest struct {
	ClearedBy string     `json:"cleared_by"`
	ClearedAt *time.Time `json:"cleared_at,omitempty"`
}

func (h *Handler) markCleared(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice ID")
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	party := settlement.Party(req.ClearedBy)
	if !party.Valid() {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed",
			fmt.Sprintf("cleared_by must be %q or %q", settlement.PartyPlatform, settlement.PartyVendor))
		return
	}
	clearedAt := time.Now().UTC()
	if req.ClearedAt != nil {
		clearedAt = *req.ClearedAt
	}

	inv, err := h.service.MarkCleared(r.Context(), id, party, clearedAt)
	if err != nil {
		h.respondToggleError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":         inv.ID,
		"cleared":    inv.Cleared(),
		"cleared_at": inv.ClearedAt(),
		"version":    inv.Version,
	})
}

func (h *Handler) markUncleared(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice ID")
		return
	}
	var req toggleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Malformed Body", err.Error())
		return
	}
	party := settlement.Party(req.ClearedBy)
	if !party.Valid() {
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed",
			fmt.Sprintf("cleared_by must be %q or %q", settlement.PartyPlatform, settlement.PartyVendor))
		return
	}

	inv, err := h.service.MarkUncleared(r.Context(), id, party)
	if err != nil {
		h.respondToggleError(w, err, id)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"id":         inv.ID,
		"cleared":    inv.Cleared(),
		"cleared_at": inv.ClearedAt(),
		"version":    inv.Version,
	})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid invoice ID")
		return
	}
	events, err := h.service.Events(r.Context(), id)
	if err != nil {
		h.logger.Error("list payment events", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"events": events})
}

func (h *Handler) respondToggleError(w http.ResponseWriter, err error, id int64) {
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", "invoice not found")
	case errors.Is(err, shared.ErrWrongDirection):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Wrong Direction", err.Error())
	case errors.Is(err, shared.ErrConcurrentModification):
		httpx.Problem(w, http.StatusConflict, "Concurrent Modification", err.Error())
	default:
		h.logger.Error("toggle payment status", slog.Any("error", err), slog.Int64("invoice_id", id))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
