package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/jonboulle/clockwork"
)

// NotificationEventService turns interview state changes into events on the interview topic.
type NotificationEventService interface {
	NotifyInterviewCreated(ctx context.Context, interview *models.Interview, actorID string) error
	NotifyInterviewUpdated(ctx context.Context, interview *models.Interview, actorID string) error
	NotifyInterviewDeleted(ctx context.Context, interview *models.Interview, actorID string) error
	NotifyInterviewCompleted(ctx context.Context, interview *models.Interview, answerCount int) error
	NotifyInterviewEvaluated(ctx context.Context, interview *models.Interview, evaluatorID string) error
	NotifyInterviewExpired(ctx context.Context, interview *models.Interview) error
	NotifyKeystrokesRecorded(ctx context.Context, answer *models.Answer, candidateID string, batchSeq, count int) error
}

type notificationEventService struct {
	eventPublisher events.EventPublisher
	clock          clockwork.Clock
	logger         *slog.Logger
}

func NewNotificationEventService(eventPublisher events.EventPublisher, clock clockwork.Clock, logger *slog.Logger) NotificationEventService {
	return &notificationEventService{
		eventPublisher: eventPublisher,
		clock:          clock,
		logger:         logger,
	}
}

// ===== INTERVIEW EVENTS =====

func (s *notificationEventService) NotifyInterviewCreated(ctx context.Context, interview *models.Interview, actorID string) error {
	return s.publish(ctx, events.EventInterviewCreated, lifecycleEvent(interview, actorID))
}

func (s *notificationEventService) NotifyInterviewUpdated(ctx context.Context, interview *models.Interview, actorID string) error {
	return s.publish(ctx, events.EventInterviewUpdated, lifecycleEvent(interview, actorID))
}

func (s *notificationEventService) NotifyInterviewDeleted(ctx context.Context, interview *models.Interview, actorID string) error {
	return s.publish(ctx, events.EventInterviewDeleted, lifecycleEvent(interview, actorID))
}

func (s *notificationEventService) NotifyInterviewCompleted(ctx context.Context, interview *models.Interview, answerCount int) error {
	data := events.InterviewCompletedEvent{
		InterviewID:   interview.ID,
		CandidateID:   interview.CandidateID,
		InterviewerID: interview.InterviewerID,
		AnswerCount:   answerCount,
	}
	if interview.CompletedAt != nil {
		data.CompletedAt = *interview.CompletedAt
	}
	return s.publish(ctx, events.EventInterviewCompleted, data)
}

func (s *notificationEventService) NotifyInterviewEvaluated(ctx context.Context, interview *models.Interview, evaluatorID string) error {
	data := events.InterviewEvaluatedEvent{
		InterviewID: interview.ID,
		CandidateID: interview.CandidateID,
		EvaluatorID: evaluatorID,
	}
	if interview.EvaluationValue != nil {
		data.Value = string(*interview.EvaluationValue)
	}
	if interview.EvaluatedAt != nil {
		data.EvaluatedAt = *interview.EvaluatedAt
	}
	return s.publish(ctx, events.EventInterviewEvaluated, data)
}

func (s *notificationEventService) NotifyInterviewExpired(ctx context.Context, interview *models.Interview) error {
	return s.publish(ctx, events.EventInterviewExpired, events.InterviewExpiredEvent{
		InterviewID:   interview.ID,
		CandidateID:   interview.CandidateID,
		InterviewerID: interview.InterviewerID,
		Deadline:      interview.Deadline,
	})
}

// ===== ANSWER EVENTS =====

func (s *notificationEventService) NotifyKeystrokesRecorded(ctx context.Context, answer *models.Answer, candidateID string, batchSeq, count int) error {
	return s.publish(ctx, events.EventKeystrokesRecorded, events.KeystrokesRecordedEvent{
		AnswerID:    answer.ID,
		InterviewID: answer.InterviewID,
		BatchSeq:    batchSeq,
		EventCount:  count,
		CandidateID: candidateID,
	})
}

// ===== HELPERS =====

func (s *notificationEventService) publish(ctx context.Context, eventType events.EventType, data interface{}) error {
	s.logger.Info("Publishing event", "event_type", eventType)

	event := events.NewEvent(eventType, s.clock.Now(), data)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		return fmt.Errorf("failed to publish %s: %w", eventType, err)
	}
	return nil
}

func lifecycleEvent(interview *models.Interview, actorID string) events.InterviewLifecycleEvent {
	return events.InterviewLifecycleEvent{
		InterviewID:   interview.ID,
		TemplateID:    interview.TemplateID,
		CandidateID:   interview.CandidateID,
		InterviewerID: interview.InterviewerID,
		Deadline:      interview.Deadline,
		ActorID:       actorID,
	}
}
