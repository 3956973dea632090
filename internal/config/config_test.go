package config

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/SAP-F-2025/interview-service/internal/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("KEYSTROKE_BATCH_SIZE", "")
	t.Setenv("CACHE_TTL", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 20, cfg.Keystroke.BatchSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, "jwt", cfg.Auth.Provider)
	assert.Equal(t, "@every 1m", cfg.ExpirySweepSpec)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("KEYSTROKE_BATCH_SIZE", "50")
	t.Setenv("KEYSTROKE_STORE", "mongo")
	t.Setenv("CACHE_TTL", "30s")
	t.Setenv("EVENTS_ENABLED", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 50, cfg.Keystroke.BatchSize)
	assert.Equal(t, "mongo", cfg.Keystroke.Store)
	assert.Equal(t, 30*time.Second, cfg.CacheTTL)
	assert.False(t, cfg.Events.Enabled)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Events.GetKafkaBrokers())
}

func TestLoadConfig_BadNumbersFallBack(t *testing.T) {
	t.Setenv("KEYSTROKE_BATCH_SIZE", "lots")
	t.Setenv("CACHE_TTL", "forever")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 20, cfg.Keystroke.BatchSize)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
}

func TestCreateEventPublisher(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		name string
		cfg  EventConfig
		want interface{}
	}{
		{"disabled", EventConfig{Enabled: false, Publisher: "kafka"}, &events.MockEventPublisher{}},
		{"mock", EventConfig{Enabled: true, Publisher: "mock"}, &events.MockEventPublisher{}},
		{"memory", EventConfig{Enabled: true, Publisher: "memory", InterviewTopic: "t"}, &events.ChannelEventPublisher{}},
		{"unknown", EventConfig{Enabled: true, Publisher: "carrier-pigeon"}, &events.MockEventPublisher{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pub, err := tt.cfg.CreateEventPublisher(logger)
			require.NoError(t, err)
			defer pub.Close()
			assert.IsType(t, tt.want, pub)
		})
	}
}
