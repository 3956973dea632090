package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
)

type InterviewPostgreSQL struct{ base }

func NewInterviewPostgreSQL(db *gorm.DB) repositories.InterviewRepository {
	return &InterviewPostgreSQL{base{db: db}}
}

func (i *InterviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, interview *models.Interview) error {
	return i.getDB(ctx, tx).Omit("Template", "Candidate", "Interviewer", "Answers").Create(interview).Error
}

func (i *InterviewPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Interview, error) {
	var interview models.Interview
	if err := i.getDB(ctx, tx).First(&interview, id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (i *InterviewPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Interview, error) {
	var interview models.Interview
	if err := i.getDB(ctx, tx).
		Preload("Template").
		Preload("Template.Questions", func(db *gorm.DB) *gorm.DB { return db.Order("questions.id ASC") }).
		Preload("Candidate").
		Preload("Interviewer").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("answers.question_id ASC") }).
		First(&interview, id).Error; err != nil {
		return nil, err
	}
	return &interview, nil
}

func (i *InterviewPostgreSQL) Update(ctx context.Context, tx *gorm.DB, interview *models.Interview) error {
	return i.getDB(ctx, tx).Omit("Template", "Candidate", "Interviewer", "Answers").Save(interview).Error
}

func (i *InterviewPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := i.getDB(ctx, tx)
	if err := db.Where("interview_id = ?", id).Delete(&models.Answer{}).Error; err != nil {
		return fmt.Errorf("failed to delete answers: %w", err)
	}
	result := db.Delete(&models.Interview{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (i *InterviewPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.InterviewFilters) ([]*models.Interview, int64, error) {
	query := i.applyFilters(i.getDB(ctx, tx).Model(&models.Interview{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = orderBy(query, filters.SortBy, filters.SortOrder,
		map[string]bool{"created_at": true, "deadline": true}, "created_at")

	var interviews []*models.Interview
	if err := paginate(query, filters.Limit, filters.Offset).
		Preload("Template").Preload("Candidate").Preload("Interviewer").
		Find(&interviews).Error; err != nil {
		return nil, 0, err
	}
	return interviews, total, nil
}

// applyFilters mirrors Interview.StatusAt in SQL.
func (i *InterviewPostgreSQL) applyFilters(query *gorm.DB, filters repositories.InterviewFilters) *gorm.DB {
	if filters.CandidateID != nil {
		query = query.Where("candidate_id = ?", *filters.CandidateID)
	}
	if filters.InterviewerID != nil {
		query = query.Where("interviewer_id = ?", *filters.InterviewerID)
	}
	if filters.TemplateID != nil {
		query = query.Where("template_id = ?", *filters.TemplateID)
	}
	if filters.Status != nil {
		at := filters.At
		if at.IsZero() {
			at = time.Now().UTC()
		}
		switch *filters.Status {
		case models.InterviewCompleted:
			query = query.Where("completed_at IS NOT NULL")
		case models.InterviewExpired:
			query = query.Where("completed_at IS NULL AND deadline < ?", at)
		case models.InterviewInProgress:
			query = query.Where("completed_at IS NULL AND deadline >= ? AND started_at IS NOT NULL", at)
		case models.InterviewPending:
			query = query.Where("completed_at IS NULL AND deadline >= ? AND started_at IS NULL", at)
		}
	}
	return query
}

func (i *InterviewPostgreSQL) MarkStarted(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	return i.getDB(ctx, tx).Model(&models.Interview{}).
		Where("id = ? AND started_at IS NULL", id).
		Update("started_at", at).Error
}

func (i *InterviewPostgreSQL) ListExpiredUnannounced(ctx context.Context, tx *gorm.DB, now time.Time, limit int) ([]*models.Interview, error) {
	var interviews []*models.Interview
	err := i.getDB(ctx, tx).
		Where("completed_at IS NULL AND expiry_notified_at IS NULL AND deadline < ?", now).
		Order("deadline ASC").
		Limit(limit).
		Find(&interviews).Error
	return interviews, err
}

func (i *InterviewPostgreSQL) MarkExpiryNotified(ctx context.Context, tx *gorm.DB, id uint, at time.Time) error {
	return i.getDB(ctx, tx).Model(&models.Interview{}).
		Where("id = ? AND expiry_notified_at IS NULL", id).
		Update("expiry_notified_at", at).Error
}
