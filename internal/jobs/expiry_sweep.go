package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
)

const defaultSweepBatch = 100

// ExpirySweepJob announces interviews whose deadline passed without completion.
// Each interview is announced once; the stamp is only written after a successful publish.
type ExpirySweepJob struct {
	repo     repositories.Repository
	notifier services.NotificationEventService
	clock    clockwork.Clock
	logger   *slog.Logger
	schedule string
	batch    int
	timeout  time.Duration
	cron     *cron.Cron
}

func NewExpirySweepJob(
	repo repositories.Repository,
	notifier services.NotificationEventService,
	clock clockwork.Clock,
	logger *slog.Logger,
	schedule string,
) *ExpirySweepJob {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ExpirySweepJob{
		repo:     repo,
		notifier: notifier,
		clock:    clock,
		logger:   logger.With("job", "expiry_sweep"),
		schedule: schedule,
		batch:    defaultSweepBatch,
		timeout:  30 * time.Second,
		cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
	}
}

// Start registers the sweep on its cron schedule. An empty schedule disables it.
func (j *ExpirySweepJob) Start() error {
	if j.schedule == "" {
		j.logger.Info("Expiry sweep disabled, skipping scheduler")
		return nil
	}

	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.Error("Expiry sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule expiry sweep: %w", err)
	}

	j.cron.Start()
	j.logger.Info("Expiry sweep started", "schedule", j.schedule)
	return nil
}

// Stop halts the scheduler and waits for a running sweep to return.
func (j *ExpirySweepJob) Stop() {
	if j.cron == nil {
		return
	}
	<-j.cron.Stop().Done()
	j.logger.Info("Expiry sweep stopped")
}

// Sweep runs one pass and returns how many interviews were announced.
// A publish failure leaves the interview unstamped so the next pass retries it.
func (j *ExpirySweepJob) Sweep(ctx context.Context) (int, error) {
	now := j.clock.Now().UTC()

	expired, err := j.repo.Interview().ListExpiredUnannounced(ctx, nil, now, j.batch)
	if err != nil {
		return 0, fmt.Errorf("failed to list expired interviews: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	announced := 0
	for _, interview := range expired {
		if err := j.notifier.NotifyInterviewExpired(ctx, interview); err != nil {
			j.logger.Warn("Failed to announce expired interview", "interview_id", interview.ID, "error", err)
			continue
		}
		if err := j.repo.Interview().MarkExpiryNotified(ctx, nil, interview.ID, now); err != nil {
			return announced, fmt.Errorf("failed to mark interview %d as announced: %w", interview.ID, err)
		}
		metrics.ExpiryAnnouncements.Inc()
		announced++
	}

	j.logger.Info("Expiry sweep finished", "found", len(expired), "announced", announced)
	return announced, nil
}
