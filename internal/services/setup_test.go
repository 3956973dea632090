package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/interview-service/internal/testutil"
	"github.com/SAP-F-2025/interview-service/internal/validator"
	"github.com/alicebob/miniredis/v2"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	svc       *Services
	repo      *postgres.Repository
	fixture   *testutil.Fixture
	publisher *events.MockEventPublisher
	clock     clockwork.FakeClock
	redis     *miniredis.Miniredis

	admin       *auth.Identity
	interviewer *auth.Identity
	candidate   *auth.Identity
	other       *auth.Identity
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	db := testutil.NewTestDB(t)
	fixture := testutil.Seed(t, db)
	repo := postgres.NewRepository(db, nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	publisher := events.NewMockEventPublisher(logger)
	clock := clockwork.NewFakeClockAt(testNow)

	svc := NewServices(Dependencies{
		Repo:      repo,
		Cache:     cache.NewRedisCache(client, logger),
		CacheTTL:  time.Minute,
		Publisher: publisher,
		Clock:     clock,
		Logger:    logger,
		Validator: validator.New(),
	})

	return &testEnv{
		svc:         svc,
		repo:        repo,
		fixture:     fixture,
		publisher:   publisher,
		clock:       clock,
		redis:       mr,
		admin:       &auth.Identity{UserID: fixture.Admin.ID, Role: models.RoleAdmin},
		interviewer: &auth.Identity{UserID: fixture.Interviewer.ID, Role: models.RoleInterviewer},
		candidate:   &auth.Identity{UserID: fixture.Candidate.ID, Role: models.RoleCandidate},
		other:       &auth.Identity{UserID: fixture.Other.ID, Role: models.RoleCandidate},
	}
}

// createInterview creates a pending interview for the fixture candidate, due in two days.
func (e *testEnv) createInterview(t *testing.T) *InterviewResponse {
	t.Helper()
	resp, err := e.svc.Interview.Create(context.Background(), e.interviewer, &CreateInterviewRequest{
		TemplateID:  e.fixture.Template.ID,
		CandidateID: e.fixture.Candidate.ID,
		Deadline:    testNow.Add(48 * time.Hour).Format(time.RFC3339),
	})
	require.NoError(t, err)
	return resp
}

// saveAnswer stores text for the fixture question as the fixture candidate.
func (e *testEnv) saveAnswer(t *testing.T, interviewID uint, text string) *models.Answer {
	t.Helper()
	answer, err := e.svc.Answer.SaveAnswer(context.Background(), e.candidate, interviewID, e.fixture.Question.ID, &SaveAnswerRequest{Text: text})
	require.NoError(t, err)
	return answer
}

func fieldNames(t *testing.T, err error) []string {
	t.Helper()
	var ve ValidationErrors
	require.ErrorAs(t, err, &ve)
	names := make([]string, len(ve))
	for i, e := range ve {
		names[i] = e.Field
	}
	return names
}
