// Package mongo stores keystroke logs in MongoDB, one document per event.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/SAP-F-2025/interview-service/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const keystrokeCollection = "keystroke_events"

type keystrokeDoc struct {
	AnswerID            uint      `bson:"answer_id"`
	BatchSeq            int       `bson:"batch_seq"`
	Ordinal             int       `bson:"ordinal"`
	Kind                string    `bson:"kind"`
	Position            int       `bson:"position"`
	Value               string    `bson:"value,omitempty"`
	Length              int       `bson:"length,omitempty"`
	RelativeTimestampMs int64     `bson:"relative_timestamp_ms"`
	CreatedAt           time.Time `bson:"created_at"`
}

type KeystrokeMongo struct {
	col *mongo.Collection
}

func NewKeystrokeMongo(db *mongo.Database) repositories.KeystrokeRepository {
	return &KeystrokeMongo{col: db.Collection(keystrokeCollection)}
}

// EnsureIndexes creates the ordering index Load relies on.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(keystrokeCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "answer_id", Value: 1}, {Key: "batch_seq", Value: 1}, {Key: "ordinal", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}

func (k *KeystrokeMongo) AppendBatch(ctx context.Context, answerID uint, events []models.KeystrokeEvent) (int, error) {
	seq, err := k.nextBatchSeq(ctx, answerID)
	if err != nil {
		return 0, err
	}
	if len(events) == 0 {
		return seq, nil
	}

	now := time.Now().UTC()
	docs := make([]interface{}, len(events))
	for i, ev := range events {
		docs[i] = keystrokeDoc{
			AnswerID:            answerID,
			BatchSeq:            seq,
			Ordinal:             i,
			Kind:                string(ev.Kind),
			Position:            ev.Position,
			Value:               ev.Value,
			Length:              ev.Length,
			RelativeTimestampMs: ev.RelativeTimestampMs,
			CreatedAt:           now,
		}
	}
	if _, err := k.col.InsertMany(ctx, docs); err != nil {
		return 0, fmt.Errorf("failed to insert keystroke batch: %w", err)
	}
	return seq, nil
}

func (k *KeystrokeMongo) nextBatchSeq(ctx context.Context, answerID uint) (int, error) {
	var last keystrokeDoc
	err := k.col.FindOne(ctx, bson.M{"answer_id": answerID},
		options.FindOne().SetSort(bson.D{{Key: "batch_seq", Value: -1}}).SetProjection(bson.M{"batch_seq": 1}),
	).Decode(&last)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return last.BatchSeq + 1, nil
}

func (k *KeystrokeMongo) Load(ctx context.Context, answerID uint) ([]models.KeystrokeEvent, error) {
	cur, err := k.col.Find(ctx, bson.M{"answer_id": answerID},
		options.Find().SetSort(bson.D{{Key: "batch_seq", Value: 1}, {Key: "ordinal", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var docs []keystrokeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, err
	}

	events := make([]models.KeystrokeEvent, len(docs))
	for i, d := range docs {
		events[i] = models.KeystrokeEvent{
			Kind:                models.KeystrokeKind(d.Kind),
			Position:            d.Position,
			Value:               d.Value,
			Length:              d.Length,
			RelativeTimestampMs: d.RelativeTimestampMs,
		}
	}
	return events, nil
}

func (k *KeystrokeMongo) Count(ctx context.Context, answerID uint) (int64, error) {
	return k.col.CountDocuments(ctx, bson.M{"answer_id": answerID})
}

func (k *KeystrokeMongo) DeleteByAnswers(ctx context.Context, answerIDs []uint) error {
	if len(answerIDs) == 0 {
		return nil
	}
	_, err := k.col.DeleteMany(ctx, bson.M{"answer_id": bson.M{"$in": answerIDs}})
	return err
}
