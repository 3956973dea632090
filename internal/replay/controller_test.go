package replay

import (
	"sync"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualScheduler queues callbacks and only runs them when the test says so.
type manualScheduler struct {
	timers []*manualTimer
}

type manualTimer struct {
	delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *manualTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (s *manualScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &manualTimer{delay: d, fn: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *manualScheduler) active() []*manualTimer {
	var out []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

// fireNext runs the single pending timer and returns its delay.
func (s *manualScheduler) fireNext(t *testing.T) time.Duration {
	t.Helper()
	pending := s.active()
	require.Len(t, pending, 1, "expected exactly one pending step")
	pending[0].fired = true
	pending[0].fn()
	return pending[0].delay
}

func (s *manualScheduler) drain(t *testing.T) []time.Duration {
	t.Helper()
	var delays []time.Duration
	for len(s.active()) > 0 {
		delays = append(delays, s.fireNext(t))
	}
	return delays
}

func sampleEvents() []models.KeystrokeEvent {
	return []models.KeystrokeEvent{
		{Kind: models.KeystrokeInsert, Position: 0, Value: "hel", RelativeTimestampMs: 0},
		{Kind: models.KeystrokeInsert, Position: 3, Value: "lo", RelativeTimestampMs: 200},
		{Kind: models.KeystrokeReplace, Position: 0, Length: 1, Value: "H", RelativeTimestampMs: 600},
		{Kind: models.KeystrokeInsert, Position: 5, Value: "!", RelativeTimestampMs: 1000},
	}
}

func TestController_PlayToCompletion(t *testing.T) {
	sched := &manualScheduler{}
	completed := 0
	var progress []float64
	c := New(sampleEvents(),
		WithScheduler(sched),
		WithSpeed(2),
		OnComplete(func() { completed++ }),
		OnUpdate(func(s State) { progress = append(progress, s.Progress) }),
	)

	c.Play()
	assert.True(t, c.IsPlaying())
	assert.Equal(t, "", c.DisplayedText())

	delays := sched.drain(t)

	assert.Equal(t, []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 200 * time.Millisecond}, delays)
	assert.Equal(t, "Hello!", c.DisplayedText())
	assert.Equal(t, float64(100), c.Progress())
	assert.False(t, c.IsPlaying())
	assert.Equal(t, 1, completed)
	assert.Equal(t, []float64{0, 0, 20, 60, 100}, progress)
	assert.Equal(t, 3, c.State().CurrentIndex)
}

func TestController_EmptyLogCompletesImmediately(t *testing.T) {
	sched := &manualScheduler{}
	completed := 0
	c := New(nil, WithScheduler(sched), WithSeed("seed"), OnComplete(func() { completed++ }))

	c.Play()

	assert.Equal(t, 1, completed)
	assert.Empty(t, sched.timers)
	assert.False(t, c.IsPlaying())
	assert.Equal(t, "seed", c.DisplayedText())
}

func TestController_PauseRightAfterPlay(t *testing.T) {
	sched := &manualScheduler{}
	c := New(sampleEvents(), WithScheduler(sched), WithSeed("seed"))

	c.Play()
	c.Pause()
	c.Pause()

	assert.Equal(t, "seed", c.DisplayedText())
	assert.False(t, c.IsPlaying())
	assert.Empty(t, sched.active())

	// a callback that slipped past Stop must not mutate state
	sched.timers[0].fn()
	assert.Equal(t, "seed", c.DisplayedText())
}

func TestController_PauseKeepsPosition(t *testing.T) {
	sched := &manualScheduler{}
	c := New(sampleEvents(), WithScheduler(sched))

	c.Play()
	sched.fireNext(t)
	sched.fireNext(t)
	c.Pause()

	assert.Equal(t, "hello", c.DisplayedText())
	assert.Equal(t, float64(20), c.Progress())
	assert.Empty(t, sched.active())
}

func TestController_Reset(t *testing.T) {
	sched := &manualScheduler{}
	c := New(sampleEvents(), WithScheduler(sched), WithSeed("x"))

	c.Play()
	sched.fireNext(t)
	c.Reset()

	state := c.State()
	assert.Equal(t, "x", state.DisplayedText)
	assert.Zero(t, state.Progress)
	assert.Equal(t, -1, state.CurrentIndex)
	assert.False(t, state.IsPlaying)
	assert.Empty(t, sched.active())
}

func TestController_Seek(t *testing.T) {
	events := sampleEvents()
	tests := []struct {
		name    string
		percent float64
		text    string
		index   int
	}{
		{"zero is the seed", 0, "> ", -1},
		{"negative clamps to zero", -20, "> ", -1},
		{"just after second event", 25, "> hello", 1},
		{"exactly on an event", 60, "> Hello", 2},
		{"full", 100, "> Hello!", 3},
		{"past the end clamps", 150, "> Hello!", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// seed is prepended text, so positions land after it
			shifted := make([]models.KeystrokeEvent, len(events))
			for i, ev := range events {
				ev.Position += 2
				shifted[i] = ev
			}
			c := New(shifted, WithScheduler(&manualScheduler{}), WithSeed("> "))
			c.Seek(tt.percent)

			state := c.State()
			assert.Equal(t, tt.text, state.DisplayedText)
			assert.Equal(t, tt.index, state.CurrentIndex)
			assert.False(t, state.IsPlaying)
		})
	}
}

func TestController_SeekBoundaries(t *testing.T) {
	events := sampleEvents()
	c := New(events, WithScheduler(&manualScheduler{}), WithSeed("seed"))

	c.Seek(0)
	assert.Equal(t, "seed", c.DisplayedText(), "an event at t=0 must not leak into seek(0)")

	c.Seek(100)
	assert.Equal(t, keystroke.Reconstruct(keystroke.SortEvents(events), "seed"), c.DisplayedText())
}

func TestController_SeekCancelsPlayback(t *testing.T) {
	sched := &manualScheduler{}
	completed := 0
	c := New(sampleEvents(), WithScheduler(sched), OnComplete(func() { completed++ }))

	c.Play()
	sched.fireNext(t)
	c.Seek(100)

	assert.Empty(t, sched.active())
	assert.Equal(t, "Hello!", c.DisplayedText())
	assert.False(t, c.IsPlaying())
	assert.Zero(t, completed)
}

func TestController_PlayAgainRestarts(t *testing.T) {
	sched := &manualScheduler{}
	completed := 0
	c := New(sampleEvents(), WithScheduler(sched), OnComplete(func() { completed++ }))

	c.Play()
	sched.fireNext(t)
	sched.fireNext(t)
	c.Play()

	assert.Equal(t, "", c.DisplayedText())
	assert.Len(t, sched.active(), 1)
	sched.drain(t)
	assert.Equal(t, "Hello!", c.DisplayedText())
	assert.Equal(t, 1, completed)
}

func TestController_SortsUnorderedInput(t *testing.T) {
	events := sampleEvents()
	events[0], events[3] = events[3], events[0]
	sched := &manualScheduler{}
	c := New(events, WithScheduler(sched))

	c.Play()
	sched.drain(t)

	assert.Equal(t, "Hello!", c.DisplayedText())
}

func TestController_SingleEventAtZero(t *testing.T) {
	sched := &manualScheduler{}
	c := New([]models.KeystrokeEvent{{Kind: models.KeystrokeInsert, Value: "a"}}, WithScheduler(sched))

	c.Play()
	sched.drain(t)

	assert.Equal(t, float64(100), c.Progress())
	assert.Equal(t, "a", c.DisplayedText())
}

func TestController_RealScheduler(t *testing.T) {
	done := make(chan struct{})
	c := New(sampleEvents(), WithSpeed(100), OnComplete(func() { close(done) }))

	c.Play()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not complete")
	}
	assert.Equal(t, "Hello!", c.DisplayedText())
}

// frameLog records what a viewer would receive and can hold one delivery open.
type frameLog struct {
	mu      sync.Mutex
	entries []string
	states  []State

	holdIndex int
	held      bool
	entered   chan struct{}
	release   chan struct{}
}

func newFrameLog(holdIndex int) *frameLog {
	return &frameLog{holdIndex: holdIndex, entered: make(chan struct{}), release: make(chan struct{})}
}

func (l *frameLog) update(s State) {
	l.mu.Lock()
	l.entries = append(l.entries, "state")
	l.states = append(l.states, s)
	hold := !l.held && s.CurrentIndex == l.holdIndex
	if hold {
		l.held = true
	}
	l.mu.Unlock()
	if hold {
		close(l.entered)
		<-l.release
	}
}

func (l *frameLog) complete() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, "complete")
}

func (l *frameLog) snapshot() ([]string, []State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.entries...), append([]State(nil), l.states...)
}

// runHeld fires the pending step on its own goroutine, waits until its frame is being delivered,
// runs action concurrently, then lets the delivery finish.
func runHeld(t *testing.T, sched *manualScheduler, frames *frameLog, action func()) {
	t.Helper()
	pending := sched.active()
	require.Len(t, pending, 1)
	pending[0].fired = true

	stepDone := make(chan struct{})
	go func() {
		pending[0].fn()
		close(stepDone)
	}()
	select {
	case <-frames.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("step frame was never delivered")
	}

	actionDone := make(chan struct{})
	go func() {
		action()
		close(actionDone)
	}()
	// let the action cancel the step while its frame is still in flight
	time.Sleep(20 * time.Millisecond)
	close(frames.release)

	for _, ch := range []chan struct{}{stepDone, actionDone} {
		select {
		case <-ch:
		case <-time.After(2 * time.Second):
			t.Fatal("controller deadlocked")
		}
	}
}

func TestController_PauseFrameIsDeliveredLast(t *testing.T) {
	sched := &manualScheduler{}
	frames := newFrameLog(0)
	c := New(sampleEvents(), WithScheduler(sched), OnUpdate(frames.update), OnComplete(frames.complete))

	c.Play()
	runHeld(t, sched, frames, c.Pause)

	_, states := frames.snapshot()
	require.NotEmpty(t, states)
	last := states[len(states)-1]
	assert.False(t, last.IsPlaying, "a step frame arrived after the pause frame")
	assert.Equal(t, c.State(), last)
	assert.Empty(t, sched.active())
}

func TestController_CompleteNeverFollowsReset(t *testing.T) {
	sched := &manualScheduler{}
	frames := newFrameLog(3)
	c := New(sampleEvents(), WithScheduler(sched), OnUpdate(frames.update), OnComplete(frames.complete))

	c.Play()
	sched.fireNext(t)
	sched.fireNext(t)
	sched.fireNext(t)
	runHeld(t, sched, frames, c.Reset)

	entries, states := frames.snapshot()
	assert.Equal(t, "state", entries[len(entries)-1])
	last := states[len(states)-1]
	assert.Equal(t, -1, last.CurrentIndex)
	assert.Empty(t, last.DisplayedText)
}

func TestController_FakeClockDrivesPlayback(t *testing.T) {
	clock := clockwork.NewFakeClock()
	updates := make(chan State, 16)
	done := make(chan struct{})
	c := New(sampleEvents(), WithClock(clock),
		OnUpdate(func(s State) { updates <- s }),
		OnComplete(func() { close(done) }))

	next := func() State {
		t.Helper()
		select {
		case s := <-updates:
			return s
		case <-time.After(2 * time.Second):
			t.Fatal("no frame")
			return State{}
		}
	}

	c.Play()
	assert.Equal(t, -1, next().CurrentIndex)
	assert.Equal(t, "hel", next().DisplayedText)

	clock.Advance(199 * time.Millisecond)
	assert.Equal(t, "hel", c.DisplayedText())
	clock.Advance(time.Millisecond)
	assert.Equal(t, "hello", next().DisplayedText)

	clock.Advance(400 * time.Millisecond)
	assert.Equal(t, "Hello", next().DisplayedText)
	clock.Advance(400 * time.Millisecond)
	final := next()
	assert.Equal(t, "Hello!", final.DisplayedText)
	assert.Equal(t, float64(100), final.Progress)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay did not complete")
	}
}
