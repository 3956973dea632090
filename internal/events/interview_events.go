package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventInterviewCreated   EventType = "interview.created"
	EventInterviewUpdated   EventType = "interview.updated"
	EventInterviewDeleted   EventType = "interview.deleted"
	EventInterviewCompleted EventType = "interview.completed"
	EventInterviewEvaluated EventType = "interview.evaluated"
	EventInterviewExpired   EventType = "interview.expired"

	EventKeystrokesRecorded EventType = "answer.keystrokes_recorded"
)

const (
	eventSource  = "interview-service"
	eventVersion = "1.0"
)

// Event is the envelope every message on the interview topic uses.
type Event struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

func NewEvent(eventType EventType, at time.Time, data interface{}) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: at.UTC(),
		Source:    eventSource,
		Version:   eventVersion,
		Data:      data,
	}
}

type InterviewLifecycleEvent struct {
	InterviewID   uint      `json:"interview_id"`
	TemplateID    uint      `json:"template_id"`
	CandidateID   string    `json:"candidate_id"`
	InterviewerID string    `json:"interviewer_id"`
	Deadline      time.Time `json:"deadline"`
	ActorID       string    `json:"actor_id,omitempty"`
}

type InterviewCompletedEvent struct {
	InterviewID   uint      `json:"interview_id"`
	CandidateID   string    `json:"candidate_id"`
	InterviewerID string    `json:"interviewer_id"`
	CompletedAt   time.Time `json:"completed_at"`
	AnswerCount   int       `json:"answer_count"`
}

type InterviewEvaluatedEvent struct {
	InterviewID uint      `json:"interview_id"`
	CandidateID string    `json:"candidate_id"`
	EvaluatorID string    `json:"evaluator_id"`
	Value       string    `json:"value"`
	EvaluatedAt time.Time `json:"evaluated_at"`
}

type InterviewExpiredEvent struct {
	InterviewID   uint      `json:"interview_id"`
	CandidateID   string    `json:"candidate_id"`
	InterviewerID string    `json:"interviewer_id"`
	Deadline      time.Time `json:"deadline"`
}

type KeystrokesRecordedEvent struct {
	AnswerID    uint   `json:"answer_id"`
	InterviewID uint   `json:"interview_id"`
	BatchSeq    int    `json:"batch_seq"`
	EventCount  int    `json:"event_count"`
	CandidateID string `json:"candidate_id"`
}
