package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
	"github.com/transactionprocessing/transaction-processor/internal/domain/transaction"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/service"
)

type MockProcessingService struct {
	mock.Mock
}

func (m *MockProcessingService) ProcessLogonTransaction(ctx context.Context, input service.ProcessLogonTransactionInput) shared.ResultValue[service.ProcessTransactionResponse] {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.ResultValue[service.ProcessTransactionResponse])
}

func (m *MockProcessingService) ProcessSaleTransaction(ctx context.Context, input service.ProcessSaleTransactionInput) shared.ResultValue[service.ProcessTransactionResponse] {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.ResultValue[service.ProcessTransactionResponse])
}

func (m *MockProcessingService) ProcessReconciliationTransaction(ctx context.Context, input service.ProcessReconciliationTransactionInput) shared.ResultValue[service.ProcessTransactionResponse] {
	args := m.Called(ctx, input)
	return args.Get(0).(shared.ResultValue[service.ProcessTransactionResponse])
}

func (m *MockProcessingService) RequestTransactionReceipt(ctx context.Context, transactionID uuid.UUID, customerEmailAddress string) shared.Result {
	args := m.Called(ctx, transactionID, customerEmailAddress)
	return args.Get(0).(shared.Result)
}

func (m *MockProcessingService) ResendTransactionReceipt(ctx context.Context, transactionID uuid.UUID) shared.Result {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(shared.Result)
}

func (m *MockProcessingService) RecordTransactionCostPrice(ctx context.Context, transactionID uuid.UUID, unitCost decimal.Decimal, totalCost decimal.Decimal) shared.Result {
	args := m.Called(ctx, transactionID, unitCost, totalCost)
	return args.Get(0).(shared.Result)
}

func (m *MockProcessingService) GetTransaction(ctx context.Context, transactionID uuid.UUID) shared.ResultValue[*transaction.Transaction] {
	args := m.Called(ctx, transactionID)
	return args.Get(0).(shared.ResultValue[*transaction.Transaction])
}

func newTransactionRouter(handler *TransactionHandler) *gin.Engine {
	router := gin.New()
	router.POST("/transactions/logons", handler.ProcessLogon)
	router.POST("/transactions/sales", handler.ProcessSale)
	router.POST("/transactions/reconciliations", handler.ProcessReconciliation)
	router.GET("/transactions/:id", handler.GetByID)
	router.POST("/transactions/:id/receipts", handler.RequestReceipt)
	router.POST("/transactions/:id/receipts/resend", handler.ResendReceipt)
	router.POST("/transactions/:id/cost-price", handler.RecordCostPrice)
	return router
}

func performJSONRequest(t *testing.T, router *gin.Engine, method string, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func dataField(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, "'data' field should be a map")
	return data
}

func saleRequestBody() ProcessSaleRequest {
	return ProcessSaleRequest{
		EstateID:             uuid.New().String(),
		MerchantID:           uuid.New().String(),
		DeviceIdentifier:     "device1",
		TransactionDateTime:  time.Now().UTC(),
		TransactionNumber:    "0001",
		TransactionReference: "REF0001",
		Amount:               decimal.RequireFromString("150.00"),
		OperatorID:           uuid.New().String(),
		OperatorIdentifier:   "Safaricom",
		ContractID:           uuid.New().String(),
		ProductID:            uuid.New().String(),
		CustomerEmailAddress: "customer@example.com",
	}
}

func TestTransactionHandler_ProcessLogon(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		estateID := uuid.New()
		merchantID := uuid.New()
		mockService.On("ProcessLogonTransaction", mock.Anything, mock.MatchedBy(func(input service.ProcessLogonTransactionInput) bool {
			return input.EstateID == estateID && input.MerchantID == merchantID && input.DeviceIdentifier == "device1"
		})).Return(shared.SuccessValue(service.ProcessTransactionResponse{
			TransactionID:   transactionID,
			ResponseCode:    shared.ResponseCodeSuccess,
			ResponseMessage: "SUCCESS",
			IsAuthorised:    true,
		}))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/logons", ProcessLogonRequest{
			EstateID:             estateID.String(),
			MerchantID:           merchantID.String(),
			DeviceIdentifier:     "device1",
			TransactionDateTime:  time.Now().UTC(),
			TransactionNumber:    "0001",
			TransactionReference: "REF0001",
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := dataField(t, rr)
		assert.Equal(t, transactionID.String(), data["transaction_id"])
		assert.Equal(t, "0000", data["response_code"])
		assert.Equal(t, true, data["is_authorised"])
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidRequestBody", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/logons", ProcessLogonRequest{
			EstateID: "not-a-uuid",
		})

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ProcessLogonTransaction")
	})

	t.Run("WorkflowFailure", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		mockService.On("ProcessLogonTransaction", mock.Anything, mock.Anything).
			Return(shared.FailedValue[service.ProcessTransactionResponse]("save failed"))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/logons", ProcessLogonRequest{
			EstateID:             uuid.New().String(),
			MerchantID:           uuid.New().String(),
			DeviceIdentifier:     "device1",
			TransactionDateTime:  time.Now().UTC(),
			TransactionNumber:    "0001",
			TransactionReference: "REF0001",
		})

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestTransactionHandler_ProcessSale(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("AuthorisedSale", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		reqBody := saleRequestBody()
		transactionID := uuid.New()
		mockService.On("ProcessSaleTransaction", mock.Anything, mock.MatchedBy(func(input service.ProcessSaleTransactionInput) bool {
			return input.OperatorIdentifier == "Safaricom" &&
				input.Amount.Equal(reqBody.Amount) &&
				input.Source == transaction.SourceOnlineSale &&
				input.CustomerEmailAddress == "customer@example.com"
		})).Return(shared.SuccessValue(service.ProcessTransactionResponse{
			TransactionID:     transactionID,
			ResponseCode:      shared.ResponseCodeSuccess,
			ResponseMessage:   "SUCCESS",
			IsAuthorised:      true,
			AuthorisationCode: "OP123",
		}))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/sales", reqBody)

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := dataField(t, rr)
		assert.Equal(t, "OP123", data["authorisation_code"])
		mockService.AssertExpectations(t)
	})

	t.Run("DeclinedSaleStillCreated", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		mockService.On("ProcessSaleTransaction", mock.Anything, mock.Anything).
			Return(shared.SuccessValue(service.ProcessTransactionResponse{
				TransactionID:   uuid.New(),
				ResponseCode:    shared.ResponseCodeInvalidDeviceIdentifier,
				ResponseMessage: "device not registered",
				IsAuthorised:    false,
			}))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/sales", saleRequestBody())

		assert.Equal(t, http.StatusCreated, rr.Code)
		data := dataField(t, rr)
		assert.Equal(t, false, data["is_authorised"])
		mockService.AssertExpectations(t)
	})

	t.Run("InvalidSource", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		reqBody := saleRequestBody()
		reqBody.Source = "CarrierPigeon"

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/sales", reqBody)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ProcessSaleTransaction")
	})
}

func TestTransactionHandler_ProcessReconciliation(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		amount := decimal.RequireFromString("1000.00")
		mockService.On("ProcessReconciliationTransaction", mock.Anything, mock.MatchedBy(func(input service.ProcessReconciliationTransactionInput) bool {
			return input.Amount != nil && input.Amount.Equal(amount)
		})).Return(shared.SuccessValue(service.ProcessTransactionResponse{
			TransactionID:   uuid.New(),
			ResponseCode:    shared.ResponseCodeSuccess,
			ResponseMessage: "SUCCESS",
			IsAuthorised:    true,
		}))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/reconciliations", ProcessReconciliationRequest{
			EstateID:             uuid.New().String(),
			MerchantID:           uuid.New().String(),
			DeviceIdentifier:     "device1",
			TransactionDateTime:  time.Now().UTC(),
			TransactionNumber:    "0001",
			TransactionReference: "REF0001",
			Amount:               &amount,
		})

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})
}

func TestTransactionHandler_GetByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Found", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		txn := transaction.New(transactionID)
		amount := decimal.RequireFromString("150.00")
		require.NoError(t, txn.Start(time.Now().UTC(), "0001", transaction.TypeSale, "REF0001", uuid.New(), uuid.New(), "device1", &amount))
		require.NoError(t, txn.AuthoriseLocally("ABC12345", "0000", "SUCCESS"))
		require.NoError(t, txn.Complete())

		mockService.On("GetTransaction", mock.Anything, transactionID).
			Return(shared.SuccessValue(txn))

		rr := performJSONRequest(t, router, http.MethodGet, "/transactions/"+transactionID.String(), nil)

		assert.Equal(t, http.StatusOK, rr.Code)
		data := dataField(t, rr)
		assert.Equal(t, transactionID.String(), data["transaction_id"])
		assert.Equal(t, "Sale", data["type"])
		assert.Equal(t, true, data["is_authorised"])
		assert.Equal(t, true, data["is_completed"])
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		mockService.On("GetTransaction", mock.Anything, transactionID).
			Return(shared.NotFoundValue[*transaction.Transaction]("transaction not found"))

		rr := performJSONRequest(t, router, http.MethodGet, "/transactions/"+transactionID.String(), nil)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		rr := performJSONRequest(t, router, http.MethodGet, "/transactions/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetTransaction")
	})
}

func TestTransactionHandler_Receipts(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("RequestReceipt", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		mockService.On("RequestTransactionReceipt", mock.Anything, transactionID, "customer@example.com").
			Return(shared.Success())

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/"+transactionID.String()+"/receipts",
			RequestReceiptRequest{CustomerEmailAddress: "customer@example.com"})

		assert.Equal(t, http.StatusAccepted, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("RequestReceiptUnknownTransaction", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		mockService.On("RequestTransactionReceipt", mock.Anything, transactionID, "customer@example.com").
			Return(shared.NotFound("transaction not found"))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/"+transactionID.String()+"/receipts",
			RequestReceiptRequest{CustomerEmailAddress: "customer@example.com"})

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("ResendReceipt", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		mockService.On("ResendTransactionReceipt", mock.Anything, transactionID).
			Return(shared.Success())

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/"+transactionID.String()+"/receipts/resend", nil)

		assert.Equal(t, http.StatusAccepted, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("ResendBeforeRequestFails", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		mockService.On("ResendTransactionReceipt", mock.Anything, transactionID).
			Return(shared.Failed("receipt has not been requested"))

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/"+transactionID.String()+"/receipts/resend", nil)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestTransactionHandler_RecordCostPrice(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	gin.SetMode(gin.TestMode)

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockProcessingService)
		handler := NewTransactionHandler(logger, mockService)
		router := newTransactionRouter(handler)

		transactionID := uuid.New()
		unitCost := decimal.RequireFromString("0.95")
		totalCost := decimal.RequireFromString("95.00")
		mockService.On("RecordTransactionCostPrice", mock.Anything, transactionID,
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(unitCost) }),
			mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(totalCost) })).
			Return(shared.Success())

		rr := performJSONRequest(t, router, http.MethodPost, "/transactions/"+transactionID.String()+"/cost-price",
			RecordCostPriceRequest{UnitCost: unitCost, TotalCost: totalCost})

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})
}
