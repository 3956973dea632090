package postgres

import (
	"context"
	"database/sql"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type KeystrokePostgreSQL struct{ base }

func NewKeystrokePostgreSQL(db *gorm.DB) repositories.KeystrokeRepository {
	return &KeystrokePostgreSQL{base{db: db}}
}

func (k *KeystrokePostgreSQL) AppendBatch(ctx context.Context, answerID uint, events []models.KeystrokeEvent) (int, error) {
	var seq int
	err := k.getDB(ctx, nil).Transaction(func(tx *gorm.DB) error {
		// Appends for one answer serialize on its row, so MAX(batch_seq) cannot be read twice.
		var answer models.Answer
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&answer, answerID).Error; err != nil {
			return err
		}

		var last sql.NullInt64
		if err := tx.Model(&models.KeystrokeRecord{}).
			Where("answer_id = ?", answerID).
			Select("MAX(batch_seq)").
			Row().Scan(&last); err != nil {
			return err
		}
		if last.Valid {
			seq = int(last.Int64) + 1
		}
		if len(events) == 0 {
			return nil
		}

		records := make([]models.KeystrokeRecord, len(events))
		for i, ev := range events {
			records[i] = models.KeystrokeRecord{
				AnswerID:       answerID,
				BatchSeq:       seq,
				Ordinal:        i,
				KeystrokeEvent: ev,
			}
		}
		return tx.CreateInBatches(records, 500).Error
	})
	return seq, err
}

func (k *KeystrokePostgreSQL) Load(ctx context.Context, answerID uint) ([]models.KeystrokeEvent, error) {
	var records []models.KeystrokeRecord
	if err := k.getDB(ctx, nil).
		Where("answer_id = ?", answerID).
		Order("batch_seq ASC, ordinal ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}

	events := make([]models.KeystrokeEvent, len(records))
	for i, r := range records {
		events[i] = r.KeystrokeEvent
	}
	return events, nil
}

func (k *KeystrokePostgreSQL) Count(ctx context.Context, answerID uint) (int64, error) {
	var count int64
	err := k.getDB(ctx, nil).Model(&models.KeystrokeRecord{}).Where("answer_id = ?", answerID).Count(&count).Error
	return count, err
}

func (k *KeystrokePostgreSQL) DeleteByAnswers(ctx context.Context, answerIDs []uint) error {
	if len(answerIDs) == 0 {
		return nil
	}
	return k.getDB(ctx, nil).Where("answer_id IN ?", answerIDs).Delete(&models.KeystrokeRecord{}).Error
}
