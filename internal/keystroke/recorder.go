package keystroke

import (
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/jonboulle/clockwork"
)

const DefaultBatchSize = 20

// FlushFunc receives a full batch. The recorder drops its copy right after the call.
type FlushFunc func(batch []models.KeystrokeEvent)

// Recorder buffers the edits of one editing session. It is owned by a single goroutine.
type Recorder struct {
	clock     clockwork.Clock
	batchSize int
	flush     FlushFunc

	recording bool
	startedAt time.Time
	buffer    []models.KeystrokeEvent
}

type RecorderOption func(*Recorder)

func WithClock(clock clockwork.Clock) RecorderOption {
	return func(r *Recorder) { r.clock = clock }
}

// WithBatchSize sets the flush threshold. Values below 1 keep the default.
func WithBatchSize(n int) RecorderOption {
	return func(r *Recorder) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithFlush(fn FlushFunc) RecorderOption {
	return func(r *Recorder) { r.flush = fn }
}

func NewRecorder(opts ...RecorderOption) *Recorder {
	r := &Recorder{
		clock:     clockwork.NewRealClock(),
		batchSize: DefaultBatchSize,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetFlush registers or replaces the batch callback.
func (r *Recorder) SetFlush(fn FlushFunc) {
	r.flush = fn
}

func (r *Recorder) IsRecording() bool {
	return r.recording
}

// StartRecording drops anything buffered and restarts the relative clock.
func (r *Recorder) StartRecording() {
	r.buffer = nil
	r.startedAt = r.clock.Now()
	r.recording = true
}

// StopRecording ends the session and hands back whatever was not flushed yet.
func (r *Recorder) StopRecording() []models.KeystrokeEvent {
	r.recording = false
	rest := r.buffer
	r.buffer = nil
	return rest
}

func (r *Recorder) InsertText(position int, text string) {
	r.record(models.KeystrokeEvent{Kind: models.KeystrokeInsert, Position: position, Value: text})
}

func (r *Recorder) DeleteText(position, length int) {
	r.record(models.KeystrokeEvent{Kind: models.KeystrokeDelete, Position: position, Length: length})
}

func (r *Recorder) ReplaceText(position, length int, text string) {
	r.record(models.KeystrokeEvent{Kind: models.KeystrokeReplace, Position: position, Length: length, Value: text})
}

// GetAllKeystrokes returns a copy of the unflushed buffer.
func (r *Recorder) GetAllKeystrokes() []models.KeystrokeEvent {
	out := make([]models.KeystrokeEvent, len(r.buffer))
	copy(out, r.buffer)
	return out
}

func (r *Recorder) record(ev models.KeystrokeEvent) {
	if !r.recording {
		return
	}
	ev.RelativeTimestampMs = r.clock.Since(r.startedAt).Milliseconds()
	r.buffer = append(r.buffer, ev)

	if len(r.buffer) >= r.batchSize && r.flush != nil {
		batch := r.buffer
		r.buffer = nil
		r.flush(batch)
	}
}
