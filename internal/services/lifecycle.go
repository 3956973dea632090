package services

import (
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
)

// Operation names a status-guarded mutation of an interview.
type Operation string

const (
	OpUpdate   Operation = "update"
	OpDelete   Operation = "delete"
	OpEvaluate Operation = "evaluate"
	OpComplete Operation = "complete"
	OpAnswer   Operation = "answer"
	OpRecord   Operation = "record keystrokes for"
)

var allowedStatuses = map[Operation][]models.InterviewStatus{
	OpUpdate:   {models.InterviewPending},
	OpDelete:   {models.InterviewPending},
	OpEvaluate: {models.InterviewCompleted},
	OpComplete: {models.InterviewPending, models.InterviewInProgress},
	OpAnswer:   {models.InterviewPending, models.InterviewInProgress},
	OpRecord:   {models.InterviewPending, models.InterviewInProgress},
}

// CheckTransition returns a *StateError unless op is legal for the interview at now.
func CheckTransition(interview *models.Interview, op Operation, now time.Time) error {
	status := interview.StatusAt(now)
	for _, s := range allowedStatuses[op] {
		if s == status {
			return nil
		}
	}
	return &StateError{Operation: op, Status: status}
}
