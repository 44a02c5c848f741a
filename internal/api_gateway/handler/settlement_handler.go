package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transactionprocessing/transaction-processor/internal/api_gateway/middleware"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/platform/messaging/producers"
)

// SettlementHandler accepts settlement commands over HTTP and hands them to
// the settlement processor through Kafka. Commands for the same merchant share
// a partition key so they are consumed in submission order.
type SettlementHandler struct {
	commandPublisher producers.CommandPublisher
	logger           *slog.Logger
}

// NewSettlementHandler creates a new settlement command handler
func NewSettlementHandler(logger *slog.Logger, commandPublisher producers.CommandPublisher) *SettlementHandler {
	return &SettlementHandler{
		commandPublisher: commandPublisher,
		logger:           logger,
	}
}

// ProcessSettlement queues the settlement batch for a merchant and date
func (h *SettlementHandler) ProcessSettlement(c *gin.Context) {
	var req ProcessSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	command := shared.ProcessSettlementCommand{
		SettlementDate: req.SettlementDate,
		MerchantID:     uuid.MustParse(req.MerchantID),
		EstateID:       uuid.MustParse(req.EstateID),
	}

	h.publish(c, shared.CommandTypeProcessSettlement, command.MerchantID, command)
}

// AddMerchantFee queues a calculated merchant fee due for future settlement
func (h *SettlementHandler) AddMerchantFee(c *gin.Context) {
	var req AddMerchantFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	command := shared.AddMerchantFeePendingSettlementCommand{
		TransactionID:      uuid.MustParse(req.TransactionID),
		CalculatedFeeValue: req.CalculatedFeeValue,
		FeeCalculatedAt:    req.FeeCalculatedAt,
		FeeCalculationType: req.FeeCalculationType,
		FeeID:              uuid.MustParse(req.FeeID),
		FeeValue:           req.FeeValue,
		SettlementDueDate:  req.SettlementDueDate,
		MerchantID:         uuid.MustParse(req.MerchantID),
		EstateID:           uuid.MustParse(req.EstateID),
	}

	h.publish(c, shared.CommandTypeAddMerchantFeePendingSettlement, command.MerchantID, command)
}

// AddSettledFee queues the immediate settlement of a single fee
func (h *SettlementHandler) AddSettledFee(c *gin.Context) {
	var req AddSettledFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	command := shared.AddSettledFeeToSettlementCommand{
		SettledDate:   req.SettledDate,
		MerchantID:    uuid.MustParse(req.MerchantID),
		EstateID:      uuid.MustParse(req.EstateID),
		FeeID:         uuid.MustParse(req.FeeID),
		TransactionID: uuid.MustParse(req.TransactionID),
	}

	h.publish(c, shared.CommandTypeAddSettledFeeToSettlement, command.MerchantID, command)
}

func (h *SettlementHandler) publish(c *gin.Context, commandType shared.CommandType, merchantID uuid.UUID, command interface{}) {
	correlationID := middleware.GetCorrelationID(c)

	err := h.commandPublisher.PublishCommand(c.Request.Context(), merchantID.String(), commandType, correlationID, command)
	if err != nil {
		h.logger.Error("Failed to publish settlement command",
			"command_type", string(commandType),
			"merchant_id", merchantID.String(),
			"error", err)
		RespondInternalError(c)
		return
	}

	h.logger.Info("Settlement command published",
		"command_type", string(commandType),
		"merchant_id", merchantID.String(),
		"correlation_id", correlationID)

	RespondAccepted(c, CommandAcceptedResponse{Status: "PENDING"})
}
