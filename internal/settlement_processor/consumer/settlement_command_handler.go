package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/platform/messaging/producers"
	"github.com/transactionprocessing/transaction-processor/internal/settlement_processor/service"
)

// SettlementCommandHandler handles incoming settlement command envelopes from Kafka
type SettlementCommandHandler struct {
	settlementService service.SettlementDomainService
	producer          producers.DeadLetterPublisher
	logger            *slog.Logger
}

// NewSettlementCommandHandler creates a new handler
func NewSettlementCommandHandler(
	logger *slog.Logger,
	settlementService service.SettlementDomainService,
	producer producers.DeadLetterPublisher,
) *SettlementCommandHandler {
	return &SettlementCommandHandler{
		settlementService: settlementService,
		producer:          producer,
		logger:            logger,
	}
}

// HandleMessage processes Kafka messages. Unparseable envelopes and commands
// that cannot succeed on retry go to the DLQ; transient failures return an
// error so the message is retried.
func (h *SettlementCommandHandler) HandleMessage(ctx context.Context, key []byte, value []byte) error {
	var envelope shared.CommandEnvelope
	if err := json.Unmarshal(value, &envelope); err != nil {
		return h.deadLetter(ctx, key, value, fmt.Sprintf("Failed to unmarshal command envelope: %s", err.Error()), err)
	}

	logger := h.logger
	if envelope.CorrelationID != "" {
		logger = h.logger.With("correlation_id", envelope.CorrelationID)
	}

	logger.Info("Received settlement command", "type", string(envelope.Type), "message_key", string(key))

	var result shared.Result
	switch envelope.Type {
	case shared.CommandTypeProcessSettlement:
		var command shared.ProcessSettlementCommand
		if err := json.Unmarshal(envelope.Payload, &command); err != nil {
			return h.deadLetter(ctx, key, value, fmt.Sprintf("Failed to unmarshal %s payload: %s", envelope.Type, err.Error()), err)
		}
		result = h.settlementService.ProcessSettlement(ctx, command).Result

	case shared.CommandTypeAddMerchantFeePendingSettlement:
		var command shared.AddMerchantFeePendingSettlementCommand
		if err := json.Unmarshal(envelope.Payload, &command); err != nil {
			return h.deadLetter(ctx, key, value, fmt.Sprintf("Failed to unmarshal %s payload: %s", envelope.Type, err.Error()), err)
		}
		result = h.settlementService.AddMerchantFeePendingSettlement(ctx, command)

	case shared.CommandTypeAddSettledFeeToSettlement:
		var command shared.AddSettledFeeToSettlementCommand
		if err := json.Unmarshal(envelope.Payload, &command); err != nil {
			return h.deadLetter(ctx, key, value, fmt.Sprintf("Failed to unmarshal %s payload: %s", envelope.Type, err.Error()), err)
		}
		result = h.settlementService.AddSettledFeeToSettlement(ctx, command)

	default:
		reason := fmt.Sprintf("Unknown settlement command type [%s]", envelope.Type)
		return h.deadLetter(ctx, key, value, reason, fmt.Errorf("unknown command type %q", envelope.Type))
	}

	if result.IsNotFound() {
		// A missing merchant or fee will not appear on retry
		return h.deadLetter(ctx, key, value, result.Message, fmt.Errorf("command target not found: %s", result.Message))
	}
	if result.IsFailed() {
		logger.Error("Failed to process settlement command",
			"type", string(envelope.Type),
			"error", result.Message,
		)
		return fmt.Errorf("processing %s command failed: %s", envelope.Type, result.Message)
	}

	logger.Info("Successfully processed settlement command", "type", string(envelope.Type))
	return nil // Success, commit offset
}

// deadLetter routes an unprocessable message to the DLQ. When no DLQ is
// configured the original error is returned so Kafka retries the message.
func (h *SettlementCommandHandler) deadLetter(ctx context.Context, key []byte, value []byte, reason string, cause error) error {
	h.logger.Error("Settlement command cannot be processed",
		"reason", reason,
		"message_key", string(key),
	)

	if h.producer != nil {
		if dlqErr := h.producer.PublishToDLQ(ctx, string(key), value, reason); dlqErr != nil {
			h.logger.Error("Failed to publish message to DLQ",
				"dlq_error", dlqErr,
				"original_error", cause,
				"message_key", string(key),
			)
		} else {
			h.logger.Info("Published unprocessable message to DLQ", "message_key", string(key), "reason", reason)
			// Message handled, commit offset
			return nil
		}
	}
	return fmt.Errorf("%s: %w", reason, cause)
}
