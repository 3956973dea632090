package postgres

import (
	"context"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type AnswerPostgreSQL struct{ base }

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{base{db: db}}
}

func (a *AnswerPostgreSQL) Create(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	if answer.Language == "" {
		answer.Language = models.DefaultAnswerLanguage
	}
	return a.getDB(ctx, tx).Omit("Question").Create(answer).Error
}

func (a *AnswerPostgreSQL) Update(ctx context.Context, tx *gorm.DB, answer *models.Answer) error {
	return a.getDB(ctx, tx).Omit("Question").Save(answer).Error
}

func (a *AnswerPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.getDB(ctx, tx).First(&answer, id).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) GetByInterviewAndQuestion(ctx context.Context, tx *gorm.DB, interviewID, questionID uint) (*models.Answer, error) {
	var answer models.Answer
	if err := a.getDB(ctx, tx).
		Where("interview_id = ? AND question_id = ?", interviewID, questionID).
		First(&answer).Error; err != nil {
		return nil, err
	}
	return &answer, nil
}

func (a *AnswerPostgreSQL) ListByInterview(ctx context.Context, tx *gorm.DB, interviewID uint) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := a.getDB(ctx, tx).
		Where("interview_id = ?", interviewID).
		Preload("Question").
		Order("question_id ASC").
		Find(&answers).Error
	return answers, err
}

func (a *AnswerPostgreSQL) IDsByInterview(ctx context.Context, tx *gorm.DB, interviewID uint) ([]uint, error) {
	var ids []uint
	err := a.getDB(ctx, tx).Model(&models.Answer{}).
		Where("interview_id = ?", interviewID).
		Pluck("id", &ids).Error
	return ids, err
}

func (a *AnswerPostgreSQL) MarkHasReplay(ctx context.Context, tx *gorm.DB, id uint) error {
	return a.getDB(ctx, tx).Model(&models.Answer{}).
		Where("id = ?", id).
		Update("has_replay", true).Error
}
