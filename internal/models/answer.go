package models

import "time"

const DefaultAnswerLanguage = "plaintext"

// Answer is the candidate's response to one question of one interview.
type Answer struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	InterviewID uint   `json:"interview_id" gorm:"not null;uniqueIndex:idx_answer_interview_question"`
	QuestionID  uint   `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_interview_question"`
	Text        string `json:"text" gorm:"type:text"`
	Language    string `json:"language" gorm:"not null;size:50;default:plaintext"`
	HasReplay   bool   `json:"has_replay" gorm:"not null;default:false"`

	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Answer) TableName() string {
	return "answers"
}
