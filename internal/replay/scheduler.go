package replay

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer is a pending step that can be cancelled.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type clockScheduler struct {
	clock clockwork.Clock
}

func (s clockScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return s.clock.AfterFunc(d, f)
}

// ClockScheduler schedules steps on clock, so a fake clock drives playback in tests.
func ClockScheduler(clock clockwork.Clock) Scheduler {
	return clockScheduler{clock: clock}
}

func RealScheduler() Scheduler {
	return ClockScheduler(clockwork.NewRealClock())
}
