package postgres

import (
	"context"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TemplatePostgreSQL struct{ base }

func NewTemplatePostgreSQL(db *gorm.DB) repositories.TemplateRepository {
	return &TemplatePostgreSQL{base{db: db}}
}

func (t *TemplatePostgreSQL) Create(ctx context.Context, tx *gorm.DB, template *models.InterviewTemplate) error {
	return t.getDB(ctx, tx).Create(template).Error
}

func (t *TemplatePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewTemplate, error) {
	var template models.InterviewTemplate
	if err := t.getDB(ctx, tx).First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) GetByIDWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.InterviewTemplate, error) {
	var template models.InterviewTemplate
	if err := t.getDB(ctx, tx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id ASC") }).
		Preload("Questions.Tags").
		First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (t *TemplatePostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.TemplateFilters) ([]*models.InterviewTemplate, int64, error) {
	query := t.getDB(ctx, tx).Model(&models.InterviewTemplate{})
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		query = query.Where("name LIKE ?", "%"+filters.Search+"%")
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var templates []*models.InterviewTemplate
	if err := paginate(query.Order("id DESC"), filters.Limit, filters.Offset).Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}

func (t *TemplatePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := t.getDB(ctx, tx)
	if err := db.Exec("DELETE FROM template_questions WHERE interview_template_id = ?", id).Error; err != nil {
		return err
	}
	return db.Delete(&models.InterviewTemplate{}, id).Error
}

func (t *TemplatePostgreSQL) AddQuestion(ctx context.Context, tx *gorm.DB, templateID, questionID uint) error {
	return t.getDB(ctx, tx).Table("template_questions").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(map[string]interface{}{
			"interview_template_id": templateID,
			"question_id":           questionID,
		}).Error
}

func (t *TemplatePostgreSQL) CountQuestions(ctx context.Context, tx *gorm.DB, templateID uint) (int64, error) {
	var count int64
	err := t.getDB(ctx, tx).Table("template_questions").
		Where("interview_template_id = ?", templateID).
		Count(&count).Error
	return count, err
}

func (t *TemplatePostgreSQL) HasQuestion(ctx context.Context, tx *gorm.DB, templateID, questionID uint) (bool, error) {
	var count int64
	err := t.getDB(ctx, tx).Table("template_questions").
		Where("interview_template_id = ? AND question_id = ?", templateID, questionID).
		Count(&count).Error
	return count > 0, err
}

func (t *TemplatePostgreSQL) IsInUse(ctx context.Context, tx *gorm.DB, templateID uint) (bool, error) {
	var count int64
	err := t.getDB(ctx, tx).Model(&models.Interview{}).Where("template_id = ?", templateID).Count(&count).Error
	return count > 0, err
}
