package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/drafts"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
)

// DraftHandler exposes the draft review workflow.
type DraftHandler struct {
	service  *drafts.Service
	storage  interfaces.DraftStorage
	validate *validator.Validate
	logger   arbor.ILogger
}

func NewDraftHandler(service *drafts.Service, storage interfaces.DraftStorage, logger arbor.ILogger) *DraftHandler {
	return &DraftHandler{
		service:  service,
		storage:  storage,
		validate: validator.New(),
		logger:   logger,
	}
}

type approveRequest struct {
	Photos      bool                     `json:"photos"`
	Description bool                     `json:"description"`
	Publish     bool                     `json:"publish"`
	Overrides   *models.ListingOverrides `json:"overrides,omitempty"`
}

type approveAllRequest struct {
	Confirm bool `json:"confirm"`
}

type listDraftsQuery struct {
	Status string `validate:"omitempty,oneof=pending approved rejected partial listed"`
}

// ListDraftsHandler lists drafts, optionally filtered by status.
// GET /api/drafts?status=
func (h *DraftHandler) ListDraftsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	query := listDraftsQuery{Status: r.URL.Query().Get("status")}
	if err := h.validate.Struct(&query); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid status filter")
		return
	}

	list, err := h.storage.ListDrafts(r.Context(), models.DraftStatus(query.Status))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"drafts": list,
		"count":  len(list),
	})
}

// GetDraftHandler returns one draft.
// GET /api/drafts/{draftId}
func (h *DraftHandler) GetDraftHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	draft, err := h.storage.GetDraft(r.Context(), r.PathValue("draftId"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, draft)
}

// ApproveDraftHandler applies a review decision, optionally publishing.
// POST /api/drafts/{draftId}/approve
func (h *DraftHandler) ApproveDraftHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req approveRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}
	if req.Overrides != nil {
		if err := h.validate.Struct(req.Overrides); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid listing overrides")
			return
		}
	}

	draft, err := h.service.Approve(r.Context(), r.PathValue("draftId"), drafts.ApproveOptions{
		Photos:      req.Photos,
		Description: req.Description,
		Publish:     req.Publish,
		Overrides:   req.Overrides,
	})
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, draft)
}

// RejectDraftHandler rejects a pending draft.
// POST /api/drafts/{draftId}/reject
func (h *DraftHandler) RejectDraftHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	draft, err := h.service.Reject(r.Context(), r.PathValue("draftId"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, draft)
}

// ApproveAllHandler approves and publishes every pending draft. Requires
// {"confirm": true}; partial failures are reported in the result counts.
// POST /api/drafts/approve-all
func (h *DraftHandler) ApproveAllHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req approveAllRequest
	if r.ContentLength > 0 {
		if err := DecodeJSON(r, &req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result, err := h.service.ApproveAll(r.Context(), req.Confirm)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	status := http.StatusOK
	if result.Failed > 0 {
		status = http.StatusMultiStatus
	}
	WriteJSON(w, status, result)
}
