// -----------------------------------------------------------------------
// Pipeline Job - one automation run for one product, composed of ordered steps
// -----------------------------------------------------------------------

package models

import (
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the overall status of a pipeline job
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// StepStatus represents the status of a single pipeline step
type StepStatus string

const (
	StepStatusPending StepStatus = "pending"
	StepStatusRunning StepStatus = "running"
	StepStatusDone    StepStatus = "done"
	StepStatusError   StepStatus = "error"
)

// StepName identifies a pipeline stage
type StepName string

const (
	StepImport              StepName = "import"
	StepGenerateDescription StepName = "generate-description"
	StepProcessImages       StepName = "process-images"
	StepCreateListing       StepName = "create-listing"
)

// PipelineSteps is the fixed step order for every job. Steps are never
// reordered or skipped; a failed step stops the job.
var PipelineSteps = []StepName{
	StepImport,
	StepGenerateDescription,
	StepProcessImages,
	StepCreateListing,
}

// StepProgress is an incremental progress counter for a running step
// (used by process-images, which fans out per photo).
type StepProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// PipelineStep is one stage of a pipeline job.
type PipelineStep struct {
	Name     StepName      `json:"name"`
	Status   StepStatus    `json:"status"`
	Progress *StepProgress `json:"progress,omitempty"`
	Result   string        `json:"result,omitempty"`
	Error    string        `json:"error,omitempty"`
}

// PipelineJob represents one automation run for one product.
// Owned by the job store; mutated only through the store so concurrent
// readers never observe a step mid-update.
type PipelineJob struct {
	ID           string         `json:"id" badgerhold:"key"`
	ProductID    string         `json:"product_id"`
	ProductTitle string         `json:"product_title,omitempty"`
	Steps        []PipelineStep `json:"steps"`
	Status       JobStatus      `json:"status"`
	Error        string         `json:"error,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
}

// NewPipelineJob creates a pending job with the full step sequence.
func NewPipelineJob(productID string) *PipelineJob {
	steps := make([]PipelineStep, len(PipelineSteps))
	for i, name := range PipelineSteps {
		steps[i] = PipelineStep{Name: name, Status: StepStatusPending}
	}
	return &PipelineJob{
		ID:        uuid.New().String(),
		ProductID: productID,
		Steps:     steps,
		Status:    JobStatusPending,
		CreatedAt: time.Now(),
	}
}

// Step returns a pointer to the named step, or nil if the job has no such step.
func (j *PipelineJob) Step(name StepName) *PipelineStep {
	for i := range j.Steps {
		if j.Steps[i].Name == name {
			return &j.Steps[i]
		}
	}
	return nil
}

// IsTerminal returns true once the job has reached a final status.
func (j *PipelineJob) IsTerminal() bool {
	return j.Status == JobStatusCompleted ||
		j.Status == JobStatusFailed ||
		j.Status == JobStatusCancelled
}

// MarkStarted transitions the job to running.
func (j *PipelineJob) MarkStarted() {
	j.Status = JobStatusRunning
	now := time.Now()
	j.StartedAt = &now
}

// MarkCompleted transitions the job to completed.
func (j *PipelineJob) MarkCompleted() {
	j.Status = JobStatusCompleted
	now := time.Now()
	j.CompletedAt = &now
}

// MarkFailed transitions the job to failed with an error message.
func (j *PipelineJob) MarkFailed(errMsg string) {
	j.Status = JobStatusFailed
	j.Error = errMsg
	now := time.Now()
	j.CompletedAt = &now
}

// MarkCancelled transitions the job to cancelled.
func (j *PipelineJob) MarkCancelled() {
	j.Status = JobStatusCancelled
	now := time.Now()
	j.CompletedAt = &now
}

// Clone creates a deep copy of the job so readers never share step slices
// with the store's copy.
func (j *PipelineJob) Clone() *PipelineJob {
	clone := *j
	clone.Steps = make([]PipelineStep, len(j.Steps))
	copy(clone.Steps, j.Steps)
	for i := range clone.Steps {
		if p := j.Steps[i].Progress; p != nil {
			progressCopy := *p
			clone.Steps[i].Progress = &progressCopy
		}
	}
	if j.StartedAt != nil {
		t := *j.StartedAt
		clone.StartedAt = &t
	}
	if j.CompletedAt != nil {
		t := *j.CompletedAt
		clone.CompletedAt = &t
	}
	return &clone
}
