// Package estate provides the HTTP client for the external estate management
// service. The service owns estates, merchants and contracts; this client only
// reads the snapshots the validation chain needs.
package estate

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/transactionprocessing/transaction-processor/internal/config"
	"github.com/transactionprocessing/transaction-processor/internal/domain/estate"
	"github.com/transactionprocessing/transaction-processor/internal/domain/shared"
)

// Client is the HTTP implementation of estate.Client
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates an estate management service client from configuration
func NewClient(logger *slog.Logger, cfg *config.EstateClientConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     logger,
	}
}

// GetEstate reads the estate snapshot for the given estate id
func (c *Client) GetEstate(ctx context.Context, estateID uuid.UUID) (*estate.EstateSnapshot, error) {
	url := fmt.Sprintf("%s/api/estates/%s", c.baseURL, estateID)

	var snapshot estate.EstateSnapshot
	if err := c.get(ctx, url, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetMerchant reads the merchant snapshot for the given estate and merchant ids
func (c *Client) GetMerchant(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID) (*estate.MerchantSnapshot, error) {
	url := fmt.Sprintf("%s/api/estates/%s/merchants/%s", c.baseURL, estateID, merchantID)

	var snapshot estate.MerchantSnapshot
	if err := c.get(ctx, url, &snapshot); err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// GetMerchantContracts reads the contracts assigned to a merchant
func (c *Client) GetMerchantContracts(ctx context.Context, estateID uuid.UUID, merchantID uuid.UUID) ([]estate.ContractSnapshot, error) {
	url := fmt.Sprintf("%s/api/estates/%s/merchants/%s/contracts", c.baseURL, estateID, merchantID)

	var contracts []estate.ContractSnapshot
	if err := c.get(ctx, url, &contracts); err != nil {
		return nil, err
	}
	return contracts, nil
}

func (c *Client) get(ctx context.Context, url string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to build estate request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Estate management request failed", "url", url, "error", err)
		return fmt.Errorf("estate management request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return shared.NewNotFound("estate management resource [%s] was not found", url)
	case resp.StatusCode != http.StatusOK:
		c.logger.Error("Estate management request rejected", "url", url, "status", resp.StatusCode)
		return fmt.Errorf("estate management request returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode estate management response: %w", err)
	}
	return nil
}
