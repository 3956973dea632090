package postgres

import (
	"context"

	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type Repository struct {
	db        *gorm.DB
	user      repositories.UserRepository
	tag       repositories.TagRepository
	question  repositories.QuestionRepository
	template  repositories.TemplateRepository
	interview repositories.InterviewRepository
	answer    repositories.AnswerRepository
	keystroke repositories.KeystrokeRepository
}

// NewRepository wires the gorm repositories. A nil keystroke store selects the
// relational one.
func NewRepository(db *gorm.DB, keystrokes repositories.KeystrokeRepository) *Repository {
	if keystrokes == nil {
		keystrokes = NewKeystrokePostgreSQL(db)
	}
	return &Repository{
		db:        db,
		user:      NewUserPostgreSQL(db),
		tag:       NewTagPostgreSQL(db),
		question:  NewQuestionPostgreSQL(db),
		template:  NewTemplatePostgreSQL(db),
		interview: NewInterviewPostgreSQL(db),
		answer:    NewAnswerPostgreSQL(db),
		keystroke: keystrokes,
	}
}

func (r *Repository) User() repositories.UserRepository           { return r.user }
func (r *Repository) Tag() repositories.TagRepository             { return r.tag }
func (r *Repository) Question() repositories.QuestionRepository   { return r.question }
func (r *Repository) Template() repositories.TemplateRepository   { return r.template }
func (r *Repository) Interview() repositories.InterviewRepository { return r.interview }
func (r *Repository) Answer() repositories.AnswerRepository       { return r.answer }
func (r *Repository) Keystroke() repositories.KeystrokeRepository { return r.keystroke }

func (r *Repository) WithTransaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// ===== SHARED HELPERS =====

// base is embedded by every gorm repository.
type base struct {
	db *gorm.DB
}

func (b base) getDB(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return b.db.WithContext(ctx)
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func paginate(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}

// orderBy only accepts whitelisted columns.
func orderBy(query *gorm.DB, sortBy, sortOrder string, allowed map[string]bool, fallback string) *gorm.DB {
	column := fallback
	if allowed[sortBy] {
		column = sortBy
	}
	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}
	return query.Order(column + " " + direction + ", id " + direction)
}
