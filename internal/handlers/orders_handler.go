package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/services/orders"
)

// OrdersHandler exposes the batch order cleanup.
type OrdersHandler struct {
	cleaner *orders.Cleaner
	logger  arbor.ILogger
}

func NewOrdersHandler(cleaner *orders.Cleaner, logger arbor.ILogger) *OrdersHandler {
	return &OrdersHandler{
		cleaner: cleaner,
		logger:  logger,
	}
}

type cleanupRequest struct {
	Status string `json:"status"`
}

// CleanupHandler deletes orders matching the status filter in a throttled
// batch. Runs synchronously; the response carries the per-run counts.
// POST /api/orders/cleanup
func (h *OrdersHandler) CleanupHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req cleanupRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Status == "" {
		req.Status = "cancelled"
	}

	result, err := h.cleaner.Cleanup(r.Context(), req.Status)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, result)
}
