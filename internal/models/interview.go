package models

import (
	"time"

	"gorm.io/datatypes"
)

type InterviewStatus string

const (
	InterviewPending    InterviewStatus = "PENDING"
	InterviewInProgress InterviewStatus = "IN_PROGRESS"
	InterviewCompleted  InterviewStatus = "COMPLETED"
	InterviewExpired    InterviewStatus = "EXPIRED"
)

type EvaluationValue string

const (
	EvaluationBad       EvaluationValue = "bad"
	EvaluationGood      EvaluationValue = "good"
	EvaluationExcellent EvaluationValue = "excellent"
)

func (v EvaluationValue) Valid() bool {
	switch v {
	case EvaluationBad, EvaluationGood, EvaluationExcellent:
		return true
	}
	return false
}

// Interview has no status column. Status is always derived through StatusAt.
type Interview struct {
	ID uint `json:"id" gorm:"primaryKey"`

	TemplateID    uint   `json:"template_id" gorm:"not null;index"`
	CandidateID   string `json:"candidate_id" gorm:"not null;size:255;index"`
	InterviewerID string `json:"interviewer_id" gorm:"not null;size:255;index"`
	CreatedBy     string `json:"created_by" gorm:"not null;size:255"`

	Deadline    time.Time  `json:"deadline" gorm:"not null;index"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`

	EvaluationValue *EvaluationValue `json:"evaluation_value" gorm:"size:20"`
	EvaluationNotes string           `json:"evaluation_notes" gorm:"type:text"`
	EvaluatedAt     *time.Time       `json:"evaluated_at"`

	// Set once the expiry sweep has announced this interview.
	ExpiryNotifiedAt *time.Time `json:"-"`

	Metadata datatypes.JSON `json:"metadata,omitempty" gorm:"type:jsonb"`

	Template    *InterviewTemplate `json:"template,omitempty" gorm:"foreignKey:TemplateID"`
	Candidate   *User              `json:"candidate,omitempty" gorm:"foreignKey:CandidateID"`
	Interviewer *User              `json:"interviewer,omitempty" gorm:"foreignKey:InterviewerID"`
	Answers     []Answer           `json:"answers,omitempty" gorm:"foreignKey:InterviewID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Interview) TableName() string {
	return "interviews"
}

// StatusAt derives the lifecycle status. Completion wins over the deadline.
func (i *Interview) StatusAt(now time.Time) InterviewStatus {
	switch {
	case i.CompletedAt != nil:
		return InterviewCompleted
	case now.After(i.Deadline):
		return InterviewExpired
	case i.StartedAt != nil:
		return InterviewInProgress
	default:
		return InterviewPending
	}
}
