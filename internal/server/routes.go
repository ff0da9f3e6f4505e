package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// WebSocket route (firehose of pipeline events for the UI)
	mux.HandleFunc("/ws", s.app.WSHandler.HandleWebSocket)

	// Processed photos are served locally so the marketplace can fetch them
	mux.Handle("/photos/", http.StripPrefix("/photos/",
		http.FileServer(http.Dir(s.app.Config.Images.OutputDir))))

	// API routes - Listing pipeline
	mux.HandleFunc("POST /api/auto-list/{productId}", s.app.PipelineHandler.AutoListHandler)
	mux.HandleFunc("GET /api/pipeline/jobs", s.app.PipelineHandler.ListJobsHandler)
	mux.HandleFunc("GET /api/pipeline/jobs/{jobId}", s.app.PipelineHandler.GetJobHandler)
	mux.HandleFunc("GET /api/pipeline/jobs/{jobId}/stream", s.app.StreamHandler.StreamJobHandler)
	mux.HandleFunc("POST /api/pipeline/jobs/{jobId}/cancel", s.app.PipelineHandler.CancelJobHandler)

	// API routes - Draft review
	mux.HandleFunc("GET /api/drafts", s.app.DraftHandler.ListDraftsHandler)
	mux.HandleFunc("POST /api/drafts/approve-all", s.app.DraftHandler.ApproveAllHandler)
	mux.HandleFunc("GET /api/drafts/{draftId}", s.app.DraftHandler.GetDraftHandler)
	mux.HandleFunc("POST /api/drafts/{draftId}/approve", s.app.DraftHandler.ApproveDraftHandler)
	mux.HandleFunc("POST /api/drafts/{draftId}/reject", s.app.DraftHandler.RejectDraftHandler)

	// API routes - Mappings and publish audit log
	mux.HandleFunc("GET /api/mappings", s.app.SyncHandler.ListMappingsHandler)
	mux.HandleFunc("GET /api/mappings/{productId}", s.app.SyncHandler.GetMappingHandler)
	mux.HandleFunc("GET /api/synclog", s.app.SyncHandler.ListSyncLogHandler)

	// API routes - Order maintenance
	mux.HandleFunc("POST /api/orders/cleanup", s.app.OrdersHandler.CleanupHandler)

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)
	mux.Handle("/metrics", s.app.Metrics.Handler())

	// Catch-all for unknown API paths
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}
