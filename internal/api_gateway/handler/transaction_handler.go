package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/service"
)

// TransactionHandler handles HTTP requests for transaction workflows
type TransactionHandler struct {
	processingService service.ProcessingService
	logger            *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, processingService service.ProcessingService) *TransactionHandler {
	return &TransactionHandler{
		processingService: processingService,
		logger:            logger,
	}
}

// ProcessLogon runs the logon transaction workflow synchronously
func (h *TransactionHandler) ProcessLogon(c *gin.Context) {
	var req ProcessLogonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := service.ProcessLogonTransactionInput{
		TransactionID:        uuid.New(),
		EstateID:             uuid.MustParse(req.EstateID),
		MerchantID:           uuid.MustParse(req.MerchantID),
		DeviceIdentifier:     req.DeviceIdentifier,
		TransactionDateTime:  req.TransactionDateTime,
		TransactionNumber:    req.TransactionNumber,
		TransactionReference: req.TransactionReference,
	}

	result := h.processingService.ProcessLogonTransaction(c.Request.Context(), input)
	h.respondWithWorkflowResult(c, result)
}

// ProcessSale runs the sale transaction workflow synchronously, including the
// operator authorisation leg
func (h *TransactionHandler) ProcessSale(c *gin.Context) {
	var req ProcessSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	source := transaction.Source(req.Source)
	if req.Source == "" {
		source = transaction.SourceOnlineSale
	}
	if !source.IsValid() {
		h.logger.Error("Invalid transaction source", "source", req.Source)
		RespondBadRequest(c, "Invalid transaction source")
		return
	}

	input := service.ProcessSaleTransactionInput{
		TransactionID:         uuid.New(),
		EstateID:              uuid.MustParse(req.EstateID),
		MerchantID:            uuid.MustParse(req.MerchantID),
		DeviceIdentifier:      req.DeviceIdentifier,
		TransactionDateTime:   req.TransactionDateTime,
		TransactionNumber:     req.TransactionNumber,
		TransactionReference:  req.TransactionReference,
		Amount:                req.Amount,
		OperatorID:            uuid.MustParse(req.OperatorID),
		OperatorIdentifier:    req.OperatorIdentifier,
		ContractID:            uuid.MustParse(req.ContractID),
		ProductID:             uuid.MustParse(req.ProductID),
		Source:                source,
		CustomerEmailAddress:  req.CustomerEmailAddress,
		AdditionalRequestData: req.AdditionalRequestData,
	}

	result := h.processingService.ProcessSaleTransaction(c.Request.Context(), input)
	h.respondWithWorkflowResult(c, result)
}

// ProcessReconciliation runs the reconciliation transaction workflow synchronously
func (h *TransactionHandler) ProcessReconciliation(c *gin.Context) {
	var req ProcessReconciliationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	input := service.ProcessReconciliationTransactionInput{
		TransactionID:        uuid.New(),
		EstateID:             uuid.MustParse(req.EstateID),
		MerchantID:           uuid.MustParse(req.MerchantID),
		DeviceIdentifier:     req.DeviceIdentifier,
		TransactionDateTime:  req.TransactionDateTime,
		TransactionNumber:    req.TransactionNumber,
		TransactionReference: req.TransactionReference,
		Amount:               req.Amount,
	}

	result := h.processingService.ProcessReconciliationTransaction(c.Request.Context(), input)
	h.respondWithWorkflowResult(c, result)
}

// GetByID retrieves a transaction by its ID, returns 404 if it was never processed
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.transactionIDParam(c)
	if !ok {
		return
	}

	result := h.processingService.GetTransaction(c.Request.Context(), id)
	if !result.IsSuccess() {
		h.respondWithCommandResult(c, result.Result)
		return
	}

	RespondOK(c, mapTransactionToResponse(result.Value))
}

// RequestReceipt requests an email receipt for a processed transaction
func (h *TransactionHandler) RequestReceipt(c *gin.Context) {
	id, ok := h.transactionIDParam(c)
	if !ok {
		return
	}

	var req RequestReceiptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result := h.processingService.RequestTransactionReceipt(c.Request.Context(), id, req.CustomerEmailAddress)
	if result.IsSuccess() {
		RespondAccepted(c, CommandAcceptedResponse{Status: "ACCEPTED"})
		return
	}
	h.respondWithCommandResult(c, result)
}

// ResendReceipt re-issues a previously requested email receipt
func (h *TransactionHandler) ResendReceipt(c *gin.Context) {
	id, ok := h.transactionIDParam(c)
	if !ok {
		return
	}

	result := h.processingService.ResendTransactionReceipt(c.Request.Context(), id)
	if result.IsSuccess() {
		RespondAccepted(c, CommandAcceptedResponse{Status: "ACCEPTED"})
		return
	}
	h.respondWithCommandResult(c, result)
}

// RecordCostPrice records the unit and total cost of a processed transaction
func (h *TransactionHandler) RecordCostPrice(c *gin.Context) {
	id, ok := h.transactionIDParam(c)
	if !ok {
		return
	}

	var req RecordCostPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result := h.processingService.RecordTransactionCostPrice(c.Request.Context(), id, req.UnitCost, req.TotalCost)
	if result.IsSuccess() {
		RespondOK(c, CommandAcceptedResponse{Status: "RECORDED"})
		return
	}
	h.respondWithCommandResult(c, result)
}

func (h *TransactionHandler) transactionIDParam(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return uuid.Nil, false
	}
	return id, true
}

// respondWithWorkflowResult maps a workflow outcome onto HTTP. A declined
// transaction is still a successful workflow run; only infrastructure
// failures surface as 500s.
func (h *TransactionHandler) respondWithWorkflowResult(c *gin.Context, result shared.ResultValue[service.ProcessTransactionResponse]) {
	if !result.IsSuccess() {
		h.respondWithCommandResult(c, result.Result)
		return
	}

	RespondCreated(c, ProcessTransactionResponse{
		TransactionID:     result.Value.TransactionID.String(),
		ResponseCode:      result.Value.ResponseCode.WireCode(),
		ResponseMessage:   result.Value.ResponseMessage,
		IsAuthorised:      result.Value.IsAuthorised,
		AuthorisationCode: result.Value.AuthorisationCode,
	})
}

func (h *TransactionHandler) respondWithCommandResult(c *gin.Context, result shared.Result) {
	switch {
	case result.IsNotFound():
		RespondNotFound(c, result.Message)
	default:
		h.logger.Error("Transaction operation failed", "message", result.Message)
		RespondInternalError(c)
	}
}

// mapTransactionToResponse maps a transaction aggregate to a response DTO
func mapTransactionToResponse(txn *transaction.Transaction) TransactionResponse {
	response := TransactionResponse{
		TransactionID:         txn.ID.String(),
		Type:                  string(txn.Type),
		EstateID:              txn.EstateID.String(),
		MerchantID:            txn.MerchantID.String(),
		DeviceIdentifier:      txn.DeviceIdentifier,
		TransactionDateTime:   txn.TransactionDateTime.Format(time.RFC3339),
		TransactionNumber:     txn.TransactionNumber,
		TransactionReference:  txn.TransactionReference,
		Amount:                txn.Amount,
		IsAuthorised:          txn.HasBeenAuthorised(),
		IsDeclined:            txn.HasBeenDeclined(),
		IsCompleted:           txn.IsCompleted,
		ResponseCode:          txn.ResponseCode,
		ResponseMessage:       txn.ResponseMessage,
		AuthorisationCode:     txn.AuthorisationCode,
		CustomerEmailAddress:  txn.CustomerEmailAddress,
		AdditionalRequestData: txn.AdditionalRequestData,
	}

	for _, fee := range txn.GetFees() {
		feeResponse := FeeResponse{
			FeeID:           fee.FeeID.String(),
			FeeType:         feeTypeName(fee.FeeType),
			CalculatedValue: fee.CalculatedValue,
			Status:          string(fee.Status),
		}
		if fee.SettlementDueDate != nil {
			feeResponse.SettlementDueDate = fee.SettlementDueDate.Format(time.RFC3339)
		}
		if fee.SettledAt != nil {
			feeResponse.SettledAt = fee.SettledAt.Format(time.RFC3339)
		}
		response.Fees = append(response.Fees, feeResponse)
	}

	return response
}

func feeTypeName(feeType transaction.FeeType) string {
	switch feeType {
	case transaction.FeeTypeServiceProvider:
		return "ServiceProvider"
	default:
		return "Merchant"
	}
}
