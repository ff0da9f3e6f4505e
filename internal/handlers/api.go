package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/common"
	"github.com/ternarybob/relist/internal/interfaces"
)

type APIHandler struct {
	images interfaces.ImageService
	logger arbor.ILogger
}

func NewAPIHandler(images interfaces.ImageService, logger arbor.ILogger) *APIHandler {
	return &APIHandler{
		images: images,
		logger: logger,
	}
}

// VersionHandler returns version information
func (h *APIHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version":    common.GetVersion(),
		"build":      common.GetBuild(),
		"git_commit": common.GetGitCommit(),
	})
}

// HealthHandler returns health check status including the downstream image
// service.
func (h *APIHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	imageStatus := "ok"
	if err := h.images.Health(r.Context()); err != nil {
		imageStatus = err.Error()
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"status":        "ok",
		"image_service": imageStatus,
	})
}

// NotFoundHandler handles 404 errors with JSON response
func (h *APIHandler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusNotFound, map[string]interface{}{
		"error":   "Not Found",
		"path":    r.URL.Path,
		"message": "The requested endpoint does not exist",
	})
}
