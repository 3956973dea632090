// Package replay plays a keystroke log back over time.
package replay

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/jonboulle/clockwork"
)

// State is everything a viewer needs to render the replay.
type State struct {
	DisplayedText string  `json:"displayed_text"`
	Progress      float64 `json:"progress"`
	IsPlaying     bool    `json:"is_playing"`
	CurrentIndex  int     `json:"current_index"`
}

// Controller drives one replay view. Steps run on scheduler callbacks, so every entry point
// takes the lock and bumps the generation before touching the pending step. Callbacks run
// one at a time and must not call back into the controller.
type Controller struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	events    []models.KeystrokeEvent
	seed      string
	speed     float64
	scheduler Scheduler

	onComplete func()
	onUpdate   func(State)

	text     string
	progress float64
	index    int
	playing  bool
	pending  Timer
	gen      atomic.Uint64
}

type Option func(*Controller)

func WithSeed(seed string) Option {
	return func(c *Controller) { c.seed = seed }
}

// WithSpeed sets the playback multiplier. Non-positive values mean real time.
func WithSpeed(speed float64) Option {
	return func(c *Controller) {
		if speed > 0 {
			c.speed = speed
		}
	}
}

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithClock schedules steps on clock.
func WithClock(clock clockwork.Clock) Option {
	return WithScheduler(ClockScheduler(clock))
}

// OnComplete is called once each time playback reaches the end.
func OnComplete(fn func()) Option {
	return func(c *Controller) { c.onComplete = fn }
}

// OnUpdate is called after every state change with a snapshot.
func OnUpdate(fn func(State)) Option {
	return func(c *Controller) { c.onUpdate = fn }
}

// New sorts events once; the step loop relies on that order.
func New(events []models.KeystrokeEvent, opts ...Option) *Controller {
	c := &Controller{
		events:    keystroke.SortEvents(events),
		speed:     1,
		scheduler: RealScheduler(),
		index:     -1,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.text = c.seed
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) DisplayedText() string { return c.State().DisplayedText }
func (c *Controller) Progress() float64     { return c.State().Progress }
func (c *Controller) IsPlaying() bool       { return c.State().IsPlaying }

// Play restarts from the seed and schedules the first event immediately.
func (c *Controller) Play() {
	c.mu.Lock()
	c.cancelLocked()
	c.resetLocked()

	if len(c.events) == 0 {
		c.progress = 100
		c.unlockAndPublish(c.gen.Load(), true)
		return
	}

	c.playing = true
	c.scheduleLocked(0, 0)
	c.unlockAndPublish(c.gen.Load(), false)
}

// Pause keeps the displayed text and progress. Calling it twice is harmless.
func (c *Controller) Pause() {
	c.mu.Lock()
	wasPlaying := c.playing
	c.cancelLocked()
	if !wasPlaying {
		c.mu.Unlock()
		return
	}
	c.unlockAndPublish(c.gen.Load(), false)
}

func (c *Controller) Reset() {
	c.mu.Lock()
	c.cancelLocked()
	c.resetLocked()
	c.unlockAndPublish(c.gen.Load(), false)
}

// Seek pauses and jumps to percent of the log's duration, clamped to [0, 100].
func (c *Controller) Seek(percent float64) {
	percent = clamp(percent)

	c.mu.Lock()
	c.cancelLocked()

	target := -1
	if percent > 0 && len(c.events) > 0 {
		targetMs := percent / 100 * float64(c.lastTimestamp())
		for i, ev := range c.events {
			if float64(ev.RelativeTimestampMs) > targetMs {
				break
			}
			target = i
		}
	}

	c.index = target
	c.text = keystroke.ReconstructPrefix(c.events, c.seed, target)
	c.progress = percent
	c.unlockAndPublish(c.gen.Load(), false)
}

func (c *Controller) step(gen uint64, i int) {
	c.mu.Lock()
	if gen != c.gen.Load() || !c.playing {
		c.mu.Unlock()
		return
	}
	c.pending = nil

	ev := c.events[i]
	c.text = keystroke.Apply(c.text, ev)
	c.index = i
	c.progress = c.progressAt(ev.RelativeTimestampMs)

	last := i == len(c.events)-1
	if last {
		c.playing = false
	} else {
		delay := float64(c.events[i+1].RelativeTimestampMs-ev.RelativeTimestampMs) / c.speed
		c.scheduleLocked(i+1, time.Duration(delay*float64(time.Millisecond)))
	}
	c.unlockAndPublish(gen, last)
}

func (c *Controller) scheduleLocked(i int, d time.Duration) {
	gen := c.gen.Load()
	c.pending = c.scheduler.AfterFunc(d, func() { c.step(gen, i) })
}

// cancelLocked stops the pending step and invalidates any callback already in flight.
func (c *Controller) cancelLocked() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
	c.gen.Add(1)
	c.playing = false
}

func (c *Controller) resetLocked() {
	c.text = c.seed
	c.progress = 0
	c.index = -1
}

func (c *Controller) lastTimestamp() int64 {
	return c.events[len(c.events)-1].RelativeTimestampMs
}

func (c *Controller) progressAt(ts int64) float64 {
	last := c.lastTimestamp()
	if last <= 0 {
		return 100
	}
	return clamp(float64(ts) / float64(last) * 100)
}

func (c *Controller) snapshot() State {
	return State{
		DisplayedText: c.text,
		Progress:      c.progress,
		IsPlaying:     c.playing,
		CurrentIndex:  c.index,
	}
}

// unlockAndPublish snapshots the state, hands over from mu to notifyMu and delivers the
// snapshot. Frames therefore leave in the order the state changed, and a frame whose
// generation was cancelled before delivery is dropped. Must be called with mu held.
func (c *Controller) unlockAndPublish(gen uint64, completed bool) {
	state := c.snapshot()
	c.notifyMu.Lock()
	c.mu.Unlock()
	defer c.notifyMu.Unlock()

	if gen != c.gen.Load() {
		return
	}
	if c.onUpdate != nil {
		c.onUpdate(state)
	}
	if completed && c.onComplete != nil {
		c.onComplete()
	}
}

func clamp(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
