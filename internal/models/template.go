package models

import (
	"time"

	"gorm.io/gorm"
)

type Tag struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"uniqueIndex;not null;size:50" validate:"required,max=50"`
	CreatedAt time.Time `json:"created_at"`
}

func (Tag) TableName() string {
	return "tags"
}

type Question struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text"`
	CreatedBy   string `json:"created_by" gorm:"not null;size:255;index"`

	Tags []Tag `json:"tags,omitempty" gorm:"many2many:question_tags;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Question) TableName() string {
	return "questions"
}

// InterviewTemplate is the reusable question set an interview is created from.
type InterviewTemplate struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text"`
	CreatedBy   string `json:"created_by" gorm:"not null;size:255;index"`

	Questions []Question `json:"questions,omitempty" gorm:"many2many:template_questions;"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (InterviewTemplate) TableName() string {
	return "interview_templates"
}
