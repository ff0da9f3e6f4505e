// -----------------------------------------------------------------------
// Progress Broadcaster - snapshot-then-stream fan-out of job events
// -----------------------------------------------------------------------

package pipeline

import (
	"context"
	"sync"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/relist/internal/models"
)

const defaultStreamBufferSize = 64

// Subscriber is one live observer of a job's progress. Frames arrive on
// Frames; Done is closed when the subscriber is dropped for falling behind.
type Subscriber struct {
	Frames chan models.StreamFrame
	Done   chan struct{}

	jobID string
	once  sync.Once
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.Done)
	})
}

// Broadcaster fans job events out to any number of subscribers per job.
// Publishing never blocks: a subscriber whose buffer is full is dropped.
type Broadcaster struct {
	store      *Store
	logger     arbor.ILogger
	bufferSize int

	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

// NewBroadcaster creates a broadcaster over the given job store.
func NewBroadcaster(store *Store, bufferSize int, logger arbor.ILogger) *Broadcaster {
	if bufferSize <= 0 {
		bufferSize = defaultStreamBufferSize
	}
	return &Broadcaster{
		store:      store,
		logger:     logger,
		bufferSize: bufferSize,
		subs:       make(map[string]map[*Subscriber]struct{}),
	}
}

// Subscribe registers an observer for a job. The first frame delivered is
// always a snapshot of the full current job state, so a late subscriber
// sees the latest status even if the terminal event already fired.
func (b *Broadcaster) Subscribe(ctx context.Context, jobID string) (*Subscriber, error) {
	sub := &Subscriber{
		Frames: make(chan models.StreamFrame, b.bufferSize),
		Done:   make(chan struct{}),
		jobID:  jobID,
	}

	// Snapshot and registration happen under the same lock Publish takes,
	// so no published frame can land in the buffer ahead of the snapshot.
	// The channel is fresh and buffered; queueing the snapshot cannot block.
	b.mu.Lock()
	job, err := b.store.Get(ctx, jobID)
	if err != nil {
		b.mu.Unlock()
		return nil, err
	}
	sub.Frames <- models.SnapshotFrame(job)
	if b.subs[jobID] == nil {
		b.subs[jobID] = make(map[*Subscriber]struct{})
	}
	b.subs[jobID][sub] = struct{}{}
	b.mu.Unlock()

	b.logger.Debug().
		Str("job_id", jobID).
		Msg("Stream subscriber attached")

	return sub, nil
}

// Unsubscribe detaches an observer.
func (b *Broadcaster) Unsubscribe(sub *Subscriber) {
	b.mu.Lock()
	if set, ok := b.subs[sub.jobID]; ok {
		delete(set, sub)
		if len(set) == 0 {
			delete(b.subs, sub.jobID)
		}
	}
	b.mu.Unlock()
	sub.close()
}

// Publish delivers a frame to every subscriber of the frame's job. A full
// subscriber buffer means the observer has fallen too far behind; it is
// disconnected rather than blocking the orchestrator.
func (b *Broadcaster) Publish(frame models.StreamFrame) {
	b.mu.RLock()
	set := b.subs[frame.JobID]
	slow := []*Subscriber{}
	for sub := range set {
		select {
		case sub.Frames <- frame:
		default:
			slow = append(slow, sub)
		}
	}
	b.mu.RUnlock()

	for _, sub := range slow {
		b.logger.Warn().
			Str("job_id", frame.JobID).
			Msg("Dropping slow stream subscriber")
		b.Unsubscribe(sub)
	}
}

// SubscriberCount returns the number of live observers for a job.
func (b *Broadcaster) SubscriberCount(jobID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[jobID])
}
