// -----------------------------------------------------------------------
// Stream frames - tagged union of progress event kinds sent to observers
// -----------------------------------------------------------------------

package models

// FrameType discriminates the stream frame union. Consumers are expected to
// handle every kind exhaustively.
type FrameType string

const (
	FrameSnapshot FrameType = "snapshot"
	FrameStep     FrameType = "step"
	FrameComplete FrameType = "complete"
)

// StreamFrame is one progress event delivered to stream subscribers.
// Field names are camelCase because this is the external wire shape; the
// domain model keeps canonical snake_case names.
type StreamFrame struct {
	Type         FrameType      `json:"type"`
	JobID        string         `json:"jobId"`
	Step         string         `json:"step,omitempty"`
	Status       string         `json:"status,omitempty"`
	Detail       string         `json:"detail,omitempty"`
	Progress     *StepProgress  `json:"progress,omitempty"`
	JobStatus    string         `json:"jobStatus,omitempty"`
	ShopifyTitle string         `json:"shopifyTitle,omitempty"`
	Steps        []PipelineStep `json:"steps,omitempty"`
}

// SnapshotFrame builds the snapshot frame for a job: the complete current
// step list plus overall status, delivered first on every subscription.
func SnapshotFrame(job *PipelineJob) StreamFrame {
	return StreamFrame{
		Type:         FrameSnapshot,
		JobID:        job.ID,
		JobStatus:    string(job.Status),
		ShopifyTitle: job.ProductTitle,
		Steps:        job.Steps,
	}
}

// StepFrame builds an incremental frame for one step transition.
func StepFrame(job *PipelineJob, step *PipelineStep) StreamFrame {
	frame := StreamFrame{
		Type:         FrameStep,
		JobID:        job.ID,
		Step:         string(step.Name),
		Status:       string(step.Status),
		ShopifyTitle: job.ProductTitle,
	}
	if step.Progress != nil {
		p := *step.Progress
		frame.Progress = &p
	}
	switch step.Status {
	case StepStatusDone:
		frame.Detail = step.Result
	case StepStatusError:
		frame.Detail = step.Error
	}
	return frame
}

// CompleteFrame builds the terminal frame carrying the final job status.
func CompleteFrame(job *PipelineJob) StreamFrame {
	return StreamFrame{
		Type:         FrameComplete,
		JobID:        job.ID,
		JobStatus:    string(job.Status),
		Detail:       job.Error,
		ShopifyTitle: job.ProductTitle,
	}
}

// IsTerminal reports whether this frame ends the stream for its job.
func (f StreamFrame) IsTerminal() bool {
	switch JobStatus(f.JobStatus) {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}
