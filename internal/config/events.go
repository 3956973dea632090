package config

import (
	"log/slog"
	"strings"

	"github.com/SAP-F-2025/interview-service/internal/events"
)

type EventConfig struct {
	Enabled        bool
	Publisher      string // kafka, memory or mock
	KafkaBrokers   string
	InterviewTopic string
}

func (c *EventConfig) GetKafkaBrokers() []string {
	brokers := strings.Split(c.KafkaBrokers, ",")
	for i := range brokers {
		brokers[i] = strings.TrimSpace(brokers[i])
	}
	return brokers
}

// CreateEventPublisher builds the configured publisher. Unknown kinds fall back to the mock.
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using mock publisher")
		return events.NewMockEventPublisher(logger), nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher", "brokers", c.KafkaBrokers, "topic", c.InterviewTopic)
		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.InterviewTopic,
			Logger:       logger,
		})
	case "memory":
		logger.Info("Using in-process event publisher", "topic", c.InterviewTopic)
		return events.NewChannelEventPublisher(c.InterviewTopic, logger), nil
	case "mock":
		return events.NewMockEventPublisher(logger), nil
	default:
		logger.Warn("Unknown event publisher type, falling back to mock", "publisher", c.Publisher)
		return events.NewMockEventPublisher(logger), nil
	}
}
