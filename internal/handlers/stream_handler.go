package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/models"
	"github.com/ternarybob/relist/internal/pipeline"
)

// pingInterval keeps idle SSE connections alive through proxies.
const pingInterval = 15 * time.Second

// StreamHandler serves per-job progress as Server-Sent Events. The first
// event is always a snapshot of the job's current state; incremental step
// frames follow, and a terminal complete frame ends the stream.
type StreamHandler struct {
	broadcaster *pipeline.Broadcaster
	logger      arbor.ILogger
}

func NewStreamHandler(broadcaster *pipeline.Broadcaster, logger arbor.ILogger) *StreamHandler {
	return &StreamHandler{
		broadcaster: broadcaster,
		logger:      logger,
	}
}

// StreamJobHandler streams progress frames for one job.
// GET /api/pipeline/jobs/{jobId}/stream
func (h *StreamHandler) StreamJobHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	jobID := r.PathValue("jobId")
	sub, err := h.broadcaster.Subscribe(r.Context(), jobID)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	defer h.broadcaster.Unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	for {
		select {
		case <-r.Context().Done():
			return

		case <-sub.Done:
			// Dropped for falling behind; the client reconnects and gets a
			// fresh snapshot.
			return

		case <-ping.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()

		case frame := <-sub.Frames:
			if err := writeFrame(w, frame); err != nil {
				h.logger.Debug().Err(err).Str("job_id", jobID).Msg("Stream client write failed")
				return
			}
			flusher.Flush()

			if frame.IsTerminal() {
				return
			}
		}
	}
}

func writeFrame(w http.ResponseWriter, frame models.StreamFrame) error {
	data, err := json.Marshal(frame)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", data)
	return err
}
