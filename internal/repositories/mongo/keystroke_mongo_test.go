package mongo

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Runs only against a real server: MONGO_TEST_URI=mongodb://localhost:27017 go test ./...
func setupTestMongo(t *testing.T) *mongo.Database {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)

	db := client.Database("interview_service_test_" + time.Now().Format("150405.000000"))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	require.NoError(t, EnsureIndexes(ctx, db))
	return db
}

func TestKeystrokeMongo_AppendAndLoad(t *testing.T) {
	repo := NewKeystrokeMongo(setupTestMongo(t))
	ctx := context.Background()

	seq, err := repo.AppendBatch(ctx, 1, []models.KeystrokeEvent{
		{Kind: models.KeystrokeInsert, Value: "a", RelativeTimestampMs: 10},
		{Kind: models.KeystrokeInsert, Position: 1, Value: "b", RelativeTimestampMs: 10},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, seq)

	seq, err = repo.AppendBatch(ctx, 1, []models.KeystrokeEvent{{Kind: models.KeystrokeDelete, Length: 1, RelativeTimestampMs: 5}})
	require.NoError(t, err)
	assert.Equal(t, 1, seq)

	events, err := repo.Load(ctx, 1)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "a", events[0].Value)
	assert.Equal(t, "b", events[1].Value)
	assert.Equal(t, models.KeystrokeDelete, events[2].Kind)

	count, err := repo.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, repo.DeleteByAnswers(ctx, []uint{1}))
	events, err = repo.Load(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, events)
}
