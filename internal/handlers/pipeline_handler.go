package handlers

import (
	"net/http"
	"strconv"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/interfaces"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/pipeline"
)

// PipelineHandler exposes job creation, inspection, and cancellation.
type PipelineHandler struct {
	orchestrator *pipeline.Orchestrator
	store        *pipeline.Store
	logger       arbor.ILogger
}

func NewPipelineHandler(orchestrator *pipeline.Orchestrator, store *pipeline.Store, logger arbor.ILogger) *PipelineHandler {
	return &PipelineHandler{
		orchestrator: orchestrator,
		store:        store,
		logger:       logger,
	}
}

// AutoListHandler starts the listing pipeline for a product.
// POST /api/auto-list/{productId}
func (h *PipelineHandler) AutoListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	productID := r.PathValue("productId")
	if productID == "" {
		WriteError(w, http.StatusBadRequest, "product id is required")
		return
	}

	jobID, err := h.orchestrator.Run(r.Context(), productID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusAccepted, map[string]string{
		"job_id":     jobID,
		"product_id": productID,
		"status":     string(models.JobStatusPending),
		"message":    "listing pipeline started",
	})
}

// ListJobsHandler lists pipeline jobs, newest first.
// GET /api/pipeline/jobs?product_id=&status=&limit=
func (h *PipelineHandler) ListJobsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := &interfaces.JobListOptions{
		ProductID: r.URL.Query().Get("product_id"),
		Status:    models.JobStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			WriteError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = limit
	}

	jobs, err := h.store.List(r.Context(), opts)
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  jobs,
		"count": len(jobs),
	})
}

// GetJobHandler returns one pipeline job with its step states.
// GET /api/pipeline/jobs/{jobId}
func (h *PipelineHandler) GetJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	job, err := h.store.Get(r.Context(), r.PathValue("jobId"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, job)
}

// CancelJobHandler requests cooperative cancellation of a running job.
// POST /api/pipeline/jobs/{jobId}/cancel
func (h *PipelineHandler) CancelJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	jobID := r.PathValue("jobId")
	if err := h.orchestrator.Cancel(r.Context(), jobID); err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "cancelling",
		"job_id": jobID,
	})
}
