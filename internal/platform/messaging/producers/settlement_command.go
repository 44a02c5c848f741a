package producers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/transactionprocessing/transaction-processor/internal/config"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

type SettlementCommandProducer struct {
	logger *slog.Logger
	writer KafkaWriter // Interface for testability
	topic  string
}

// Creates a new settlement command producer and ensures the topic exists
func NewSettlementCommandProducer(ctx context.Context, logger *slog.Logger, cfg *config.KafkaConfig) (*SettlementCommandProducer, error) {
	if cfg.SettlementCommandTopic == "" {
		return nil, fmt.Errorf("kafka settlement command topic is not configured")
	}

	conn, err := kafka.Dial("tcp", cfg.Brokers)
	if err != nil {
		return nil, fmt.Errorf("failed to dial kafka for settlement command producer: %w", err)
	}
	defer conn.Close()

	err = createKafkaTopicIfNotExists(conn, cfg.SettlementCommandTopic, cfg.NumPartitions, cfg.ReplicationFactor, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to ensure settlement command topic %s exists: %w", cfg.SettlementCommandTopic, err)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers),
		Topic:        cfg.SettlementCommandTopic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true, // Using async for high throughput
		WriteTimeout: cfg.MaxWait,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to write messages asynchronously", "topic", cfg.SettlementCommandTopic, "error", err, "count", len(messages))
			} else {
				logger.Debug("Successfully wrote messages asynchronously", "topic", cfg.SettlementCommandTopic, "count", len(messages))
			}
		},
	}

	return &SettlementCommandProducer{
		logger: logger,
		writer: writer,
		topic:  cfg.SettlementCommandTopic,
	}, nil
}

func (p *SettlementCommandProducer) Publish(ctx context.Context, key string, value interface{}) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal message value for settlement command producer: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: jsonValue,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish settlement command",
			"topic", p.topic,
			"key", key,
			"error", err,
		)
		return fmt.Errorf("failed to publish message to %s via settlement command producer: %w", p.topic, err)
	}

	p.logger.Debug("Published settlement command",
		"topic", p.topic,
		"key", key,
	)
	return nil
}

// PublishCommand wraps the payload in a command envelope and publishes it,
// keyed so all commands for a merchant land on one partition in order
func (p *SettlementCommandProducer) PublishCommand(ctx context.Context, key string, commandType shared.CommandType, correlationID string, payload interface{}) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", commandType, err)
	}

	return p.Publish(ctx, key, shared.CommandEnvelope{
		Type:          commandType,
		CorrelationID: correlationID,
		Payload:       payloadJSON,
	})
}

func (p *SettlementCommandProducer) Close() error {
	p.logger.Info("Closing settlement command Kafka producer", "topic", p.topic)
	if err := p.writer.Close(); err != nil {
		return fmt.Errorf("failed to close settlement command kafka writer for topic %s: %w", p.topic, err)
	}
	return nil
}
