package keystroke

import (
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_IgnoresEditsWhenStopped(t *testing.T) {
	r := NewRecorder(WithClock(clockwork.NewFakeClock()))

	r.InsertText(0, "a")
	r.DeleteText(0, 1)
	r.ReplaceText(0, 1, "b")

	assert.False(t, r.IsRecording())
	assert.Empty(t, r.GetAllKeystrokes())
}

func TestRecorder_TimestampsRelativeToStart(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRecorder(WithClock(clock))

	clock.Advance(time.Hour)
	r.StartRecording()
	r.InsertText(0, "h")
	clock.Advance(150 * time.Millisecond)
	r.InsertText(1, "i")
	clock.Advance(50 * time.Millisecond)
	r.ReplaceText(0, 2, "yo")
	clock.Advance(time.Second)
	r.DeleteText(1, 1)

	events := r.StopRecording()
	require.Len(t, events, 4)
	assert.Equal(t, []int64{0, 150, 200, 1200}, []int64{
		events[0].RelativeTimestampMs, events[1].RelativeTimestampMs,
		events[2].RelativeTimestampMs, events[3].RelativeTimestampMs,
	})
	assert.Equal(t, models.KeystrokeReplace, events[2].Kind)
	assert.Equal(t, 2, events[2].Length)
	assert.Equal(t, "y", Reconstruct(events, ""))
	assert.False(t, r.IsRecording())
	assert.Empty(t, r.StopRecording())
}

func TestRecorder_StartResetsBuffer(t *testing.T) {
	clock := clockwork.NewFakeClock()
	r := NewRecorder(WithClock(clock))

	r.StartRecording()
	r.InsertText(0, "old")
	clock.Advance(time.Second)

	r.StartRecording()
	r.InsertText(0, "new")

	events := r.GetAllKeystrokes()
	require.Len(t, events, 1)
	assert.Equal(t, "new", events[0].Value)
	assert.Equal(t, int64(0), events[0].RelativeTimestampMs)
}

func TestRecorder_BatchFlush(t *testing.T) {
	var batches [][]models.KeystrokeEvent
	r := NewRecorder(
		WithClock(clockwork.NewFakeClock()),
		WithBatchSize(3),
		WithFlush(func(batch []models.KeystrokeEvent) { batches = append(batches, batch) }),
	)

	r.StartRecording()
	for i := 0; i < 7; i++ {
		r.InsertText(i, "x")
	}

	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 3)
	assert.Len(t, batches[1], 3)
	assert.Equal(t, 3, batches[1][0].Position)

	assert.Len(t, r.GetAllKeystrokes(), 1)
	rest := r.StopRecording()
	require.Len(t, rest, 1)
	assert.Equal(t, 6, rest[0].Position)
}

func TestRecorder_NoFlushWithoutCallback(t *testing.T) {
	r := NewRecorder(WithClock(clockwork.NewFakeClock()), WithBatchSize(2))
	r.StartRecording()
	for i := 0; i < 5; i++ {
		r.InsertText(i, "x")
	}
	assert.Len(t, r.GetAllKeystrokes(), 5)
}

func TestRecorder_DefaultBatchSize(t *testing.T) {
	flushed := 0
	r := NewRecorder(WithClock(clockwork.NewFakeClock()), WithBatchSize(0),
		WithFlush(func(batch []models.KeystrokeEvent) { flushed += len(batch) }))
	r.StartRecording()
	for i := 0; i < DefaultBatchSize-1; i++ {
		r.InsertText(i, "x")
	}
	assert.Zero(t, flushed)
	r.InsertText(0, "x")
	assert.Equal(t, DefaultBatchSize, flushed)
	assert.Empty(t, r.GetAllKeystrokes())
}

func TestRecorder_SnapshotIsACopy(t *testing.T) {
	r := NewRecorder(WithClock(clockwork.NewFakeClock()))
	r.StartRecording()
	r.InsertText(0, "a")

	snap := r.GetAllKeystrokes()
	snap[0].Value = "mutated"

	assert.Equal(t, "a", r.GetAllKeystrokes()[0].Value)
}
