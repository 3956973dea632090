package postgres

import (
	"context"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagPostgreSQL struct{ base }

func NewTagPostgreSQL(db *gorm.DB) repositories.TagRepository {
	return &TagPostgreSQL{base{db: db}}
}

func (t *TagPostgreSQL) Ensure(ctx context.Context, tx *gorm.DB, names []string) ([]models.Tag, error) {
	seen := make(map[string]bool, len(names))
	var wanted []models.Tag
	var keys []string
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		wanted = append(wanted, models.Tag{Name: n})
		keys = append(keys, n)
	}
	if len(wanted) == 0 {
		return nil, nil
	}

	db := t.getDB(ctx, tx)
	if err := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
		Create(&wanted).Error; err != nil {
		return nil, err
	}

	var tags []models.Tag
	if err := db.Where("name IN ?", keys).Order("name").Find(&tags).Error; err != nil {
		return nil, err
	}
	return tags, nil
}

func (t *TagPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Tag, error) {
	var tags []*models.Tag
	err := t.getDB(ctx, tx).Order("name").Find(&tags).Error
	return tags, err
}

type QuestionPostgreSQL struct{ base }

func NewQuestionPostgreSQL(db *gorm.DB) repositories.QuestionRepository {
	return &QuestionPostgreSQL{base{db: db}}
}

func (q *QuestionPostgreSQL) Create(ctx context.Context, tx *gorm.DB, question *models.Question) error {
	return q.getDB(ctx, tx).Create(question).Error
}

func (q *QuestionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	var question models.Question
	if err := q.getDB(ctx, tx).Preload("Tags").First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

func (q *QuestionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	query := q.getDB(ctx, tx).Model(&models.Question{})
	if filters.CreatedBy != nil {
		query = query.Where("questions.created_by = ?", *filters.CreatedBy)
	}
	if filters.Tag != "" {
		query = query.Where("questions.id IN (?)",
			q.getDB(ctx, tx).Table("question_tags").
				Select("question_tags.question_id").
				Joins("JOIN tags ON tags.id = question_tags.tag_id").
				Where("tags.name = ?", strings.ToLower(filters.Tag)))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var questions []*models.Question
	if err := paginate(query.Order("questions.id ASC"), filters.Limit, filters.Offset).
		Preload("Tags").Find(&questions).Error; err != nil {
		return nil, 0, err
	}
	return questions, total, nil
}
