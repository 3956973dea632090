package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/auth"
	"github.com/SAP-F-2025/interview-service/internal/cache"
	"github.com/SAP-F-2025/interview-service/internal/keystroke"
	"github.com/SAP-F-2025/interview-service/internal/metrics"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/replay"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"github.com/jonboulle/clockwork"
)

type replayService struct {
	repo   repositories.Repository
	log    *keystrokeLog
	clock  clockwork.Clock
	logger *slog.Logger
}

func NewReplayService(repo repositories.Repository, cacheService cache.CacheService, cacheTTL time.Duration, clock clockwork.Clock, logger *slog.Logger) ReplayService {
	return &replayService{
		repo:   repo,
		log:    newKeystrokeLog(repo, cacheService, cacheTTL, logger),
		clock:  clock,
		logger: logger,
	}
}

// TextAt reconstructs the answer as it looked at a point of the recording.
// Answers always start from an empty editor, so the seed is "".
func (s *replayService) TextAt(ctx context.Context, caller *auth.Identity, answerID uint, query ReplayQuery) (*ReplayFrame, error) {
	if err := authorize(auth.Authenticated(), caller, answerID, "replay", "read"); err != nil {
		return nil, err
	}
	if err := validateReplayQuery(query); err != nil {
		return nil, err
	}
	answer, _, err := loadAnswerScope(ctx, s.repo, caller, answerID, auth.StaffOrOwner, "replay")
	if err != nil {
		return nil, err
	}

	events, err := s.log.load(ctx, answerID)
	if err != nil {
		return nil, err
	}
	anomalies := keystroke.Inspect(events, "")
	if len(anomalies) > 0 {
		metrics.ReplayAnomalies.Add(float64(len(anomalies)))
		s.logger.Debug("Replay anomalies", "answer_id", answerID, "count", len(anomalies))
	}

	sorted := keystroke.SortEvents(events)
	frame := &ReplayFrame{
		AnswerID:      answerID,
		EventCount:    len(sorted),
		MatchesAnswer: keystroke.Reconstruct(sorted, "") == answer.Text,
		Anomalies:     anomalies,
	}

	switch {
	case query.AtMs != nil:
		frame.Index = indexAt(sorted, *query.AtMs)
		frame.Text = keystroke.ReconstructPrefix(sorted, "", frame.Index)
		frame.Progress = progressAt(sorted, *query.AtMs)
	case query.Percent != nil:
		c := replay.New(sorted)
		c.Seek(*query.Percent)
		state := c.State()
		frame.Index, frame.Text, frame.Progress = state.CurrentIndex, state.DisplayedText, state.Progress
	default:
		frame.Index = len(sorted) - 1
		frame.Text = keystroke.Reconstruct(sorted, "")
		frame.Progress = 100
	}
	return frame, nil
}

func (s *replayService) Controller(ctx context.Context, caller *auth.Identity, answerID uint, opts ...replay.Option) (*replay.Controller, error) {
	if err := authorize(auth.Authenticated(), caller, answerID, "replay", "stream"); err != nil {
		return nil, err
	}
	if _, _, err := loadAnswerScope(ctx, s.repo, caller, answerID, auth.StaffOrOwner, "replay"); err != nil {
		return nil, err
	}

	events, err := s.log.load(ctx, answerID)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare replay: %w", err)
	}
	s.logger.Info("Starting replay", "answer_id", answerID, "events", len(events))
	// caller options come last so a test can still swap the scheduler
	return replay.New(events, append([]replay.Option{replay.WithClock(s.clock)}, opts...)...), nil
}

func validateReplayQuery(q ReplayQuery) error {
	var fieldErrs ValidationErrors
	if q.AtMs != nil && *q.AtMs < 0 {
		fieldErrs = append(fieldErrs, *NewValidationError("at_ms", "must be at least 0", *q.AtMs))
	}
	if q.Percent != nil && (*q.Percent < 0 || *q.Percent > 100) {
		fieldErrs = append(fieldErrs, *NewValidationError("percent", "must be between 0 and 100", *q.Percent))
	}
	if len(fieldErrs) > 0 {
		return fieldErrs
	}
	return nil
}

// indexAt is the last event at or before atMs, or -1.
func indexAt(sorted []models.KeystrokeEvent, atMs int64) int {
	index := -1
	for i, ev := range sorted {
		if ev.RelativeTimestampMs > atMs {
			break
		}
		index = i
	}
	return index
}

func progressAt(sorted []models.KeystrokeEvent, atMs int64) float64 {
	if len(sorted) == 0 {
		return 100
	}
	last := sorted[len(sorted)-1].RelativeTimestampMs
	if last <= 0 || atMs >= last {
		return 100
	}
	return float64(atMs) / float64(last) * 100
}
