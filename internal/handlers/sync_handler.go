package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
)

// defaultSyncLogLimit bounds an unfiltered sync log listing.
const defaultSyncLogLimit = 100

// SyncHandler exposes the product mappings and the publish audit log.
type SyncHandler struct {
	mappings interfaces.MappingStorage
	synclog  interfaces.SyncLogStorage
	logger   arbor.ILogger
}

func NewSyncHandler(mappings interfaces.MappingStorage, synclog interfaces.SyncLogStorage, logger arbor.ILogger) *SyncHandler {
	return &SyncHandler{
		mappings: mappings,
		synclog:  synclog,
		logger:   logger,
	}
}

// ListMappingsHandler lists all product-to-listing mappings.
// GET /api/mappings
func (h *SyncHandler) ListMappingsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	mappings, err := h.mappings.ListMappings(r.Context())
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"mappings": mappings,
		"count":    len(mappings),
	})
}

// GetMappingHandler returns the mapping for one product.
// GET /api/mappings/{productId}
func (h *SyncHandler) GetMappingHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	mapping, err := h.mappings.GetMappingByProduct(r.Context(), r.PathValue("productId"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, mapping)
}

// ListSyncLogHandler lists publish audit entries, newest first.
// GET /api/synclog?limit=
func (h *SyncHandler) ListSyncLogHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := defaultSyncLogLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	entries, err := h.synclog.ListEntries(r.Context(), limit)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}
