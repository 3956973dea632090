package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/interview-service/internal/services"
	"github.com/SAP-F-2025/interview-service/internal/testutil"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sweepNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type sweepEnv struct {
	job       *ExpirySweepJob
	repo      *postgres.Repository
	fixture   *testutil.Fixture
	publisher *events.MockEventPublisher
	clock     clockwork.FakeClock
}

func newSweepEnv(t *testing.T) *sweepEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := testutil.NewTestDB(t)
	fixture := testutil.Seed(t, db)
	repo := postgres.NewRepository(db, nil)
	publisher := events.NewMockEventPublisher(logger)
	clock := clockwork.NewFakeClockAt(sweepNow)

	notifier := services.NewNotificationEventService(publisher, clock, logger)
	return &sweepEnv{
		job:       NewExpirySweepJob(repo, notifier, clock, logger, "@every 1m"),
		repo:      repo,
		fixture:   fixture,
		publisher: publisher,
		clock:     clock,
	}
}

func (e *sweepEnv) interview(t *testing.T, deadline time.Time) *models.Interview {
	t.Helper()
	iv := &models.Interview{
		TemplateID:    e.fixture.Template.ID,
		CandidateID:   e.fixture.Candidate.ID,
		InterviewerID: e.fixture.Interviewer.ID,
		CreatedBy:     e.fixture.Interviewer.ID,
		Deadline:      deadline,
	}
	require.NoError(t, e.repo.Interview().Create(context.Background(), nil, iv))
	return iv
}

func TestSweep_AnnouncesOnce(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	late := env.interview(t, sweepNow.Add(-time.Minute))
	env.interview(t, sweepNow.Add(time.Hour))

	n, err := env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expired := env.publisher.OfType(events.EventInterviewExpired)
	require.Len(t, expired, 1)
	data, ok := expired[0].Data.(events.InterviewExpiredEvent)
	require.True(t, ok)
	assert.Equal(t, late.ID, data.InterviewID)

	n, err = env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Len(t, env.publisher.OfType(events.EventInterviewExpired), 1)
}

func TestSweep_FollowsClock(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	env.interview(t, sweepNow.Add(30*time.Minute))

	n, err := env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.clock.Advance(time.Hour)

	n, err = env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSweep_SkipsCompleted(t *testing.T) {
	env := newSweepEnv(t)

	iv := env.interview(t, sweepNow.Add(-time.Hour))
	done := sweepNow.Add(-2 * time.Hour)
	iv.CompletedAt = &done
	require.NoError(t, env.repo.Interview().Update(context.Background(), nil, iv))

	n, err := env.job.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, env.publisher.GetPublishedEvents())
}

func TestSweep_RetriesAfterPublishFailure(t *testing.T) {
	env := newSweepEnv(t)
	ctx := context.Background()

	env.interview(t, sweepNow.Add(-time.Minute))

	env.publisher.Err = errors.New("broker down")
	n, err := env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	env.publisher.Err = nil
	n, err = env.job.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Len(t, env.publisher.OfType(events.EventInterviewExpired), 1)
}

func TestStart_RejectsBadSchedule(t *testing.T) {
	env := newSweepEnv(t)
	env.job.schedule = "not a schedule"
	assert.Error(t, env.job.Start())
}

func TestStart_EmptyScheduleDisables(t *testing.T) {
	env := newSweepEnv(t)
	env.job.schedule = ""
	require.NoError(t, env.job.Start())
	env.job.Stop()
}
