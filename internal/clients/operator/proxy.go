// Package operator provides the HTTP proxy that forwards sale authorisation
// requests to the external operator gateway.
package operator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/transactionprocessing/transaction-processor/internal/config"
	"github.com/transactionprocessing/transaction-processor/internal/transaction_processor/service"
)

// saleRequest is the wire shape sent to the operator gateway
type saleRequest struct {
	TransactionID         uuid.UUID         `json:"transaction_id"`
	EstateID              uuid.UUID         `json:"estate_id"`
	MerchantID            uuid.UUID         `json:"merchant_id"`
	DeviceIdentifier      string            `json:"device_identifier"`
	TransactionNumber     string            `json:"transaction_number"`
	Amount                decimal.Decimal   `json:"amount"`
	AdditionalRequestData map[string]string `json:"additional_request_data,omitempty"`
}

// saleResponse is the wire shape returned by the operator gateway
type saleResponse struct {
	IsSuccessful           bool              `json:"is_successful"`
	AuthorisationCode      string            `json:"authorisation_code"`
	ResponseCode           string            `json:"response_code"`
	ResponseMessage        string            `json:"response_message"`
	OperatorTransactionID  string            `json:"operator_transaction_id"`
	AdditionalResponseData map[string]string `json:"additional_response_data,omitempty"`
}

// Proxy is the HTTP implementation of service.OperatorProxy
type Proxy struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewProxy creates an operator gateway proxy from configuration
func NewProxy(logger *slog.Logger, cfg *config.OperatorClientConfig) *Proxy {
	return &Proxy{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// ProcessSale forwards a sale to the operator named by the request and returns
// its decision. A decline is a successful call; only transport or protocol
// failures surface as errors.
func (p *Proxy) ProcessSale(ctx context.Context, request service.OperatorSaleRequest) (*service.OperatorResponse, error) {
	url := fmt.Sprintf("%s/api/operators/%s/sales", p.baseURL, request.OperatorIdentifier)

	body, err := json.Marshal(saleRequest{
		TransactionID:         request.TransactionID,
		EstateID:              request.EstateID,
		MerchantID:            request.MerchantID,
		DeviceIdentifier:      request.DeviceIdentifier,
		TransactionNumber:     request.TransactionNumber,
		Amount:                request.Amount,
		AdditionalRequestData: request.AdditionalRequestData,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal operator sale request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build operator sale request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		p.logger.Error("Operator sale request failed",
			"operator", request.OperatorIdentifier,
			"transaction_id", request.TransactionID.String(),
			"error", err)
		return nil, fmt.Errorf("operator sale request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		p.logger.Error("Operator sale request rejected",
			"operator", request.OperatorIdentifier,
			"transaction_id", request.TransactionID.String(),
			"status", resp.StatusCode)
		return nil, fmt.Errorf("operator sale request returned status %d", resp.StatusCode)
	}

	var decision saleResponse
	if err := json.NewDecoder(resp.Body).Decode(&decision); err != nil {
		return nil, fmt.Errorf("failed to decode operator sale response: %w", err)
	}

	return &service.OperatorResponse{
		IsSuccessful:           decision.IsSuccessful,
		AuthorisationCode:      decision.AuthorisationCode,
		ResponseCode:           decision.ResponseCode,
		ResponseMessage:        decision.ResponseMessage,
		OperatorTransactionID:  decision.OperatorTransactionID,
		AdditionalResponseData: decision.AdditionalResponseData,
	}, nil
}
