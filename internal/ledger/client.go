// Package ledger provides the client that anchors settlement records on the
// chain-facing ledger service. Anchoring is fire-and-forget from the
// engine's point of view; the ledger owns inclusion and finality.
package ledger

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/rs/zerolog/log"

	"github.com/animica-labs/poies/internal/config"
)

// AnchorReceipt is the ledger's acknowledgement of an anchored record.
type AnchorReceipt struct {
	TxHash   string `json:"txHash"`
	Epoch    uint64 `json:"epoch"`
	Anchored bool   `json:"anchored"`
}

type anchorResponse struct {
	StatusCode int           `json:"statusCode"`
	Success    bool          `json:"success"`
	Data       AnchorReceipt `json:"data"`
	Error      any           `json:"error"`
}

type LedgerInterface interface {
	AnchorSettlement(record any) (AnchorReceipt, error)
}

type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
}

func NewClient(cfg *config.LedgerEnvConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ledger env configuration cannot be nil")
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 5
	client.HTTPClient.Timeout = cfg.LedgerTimeout
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 20 * time.Second
	client.Logger = nil

	log.Info().
		Str("base_url", cfg.LedgerURL).
		Int("retry_max", client.RetryMax).
		Str("timeout", client.HTTPClient.Timeout.String()).
		Msg("ledger client initialized")

	return &Client{
		httpClient: client,
		baseURL:    cfg.LedgerURL,
	}, nil
}

func (c *Client) doRequest(method, endpoint string, body any) ([]byte, error) {
	url := c.baseURL + endpoint

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := sonic.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewBuffer(jsonBody)
	}

	req, err := retryablehttp.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("request returned status %d: %s", resp.StatusCode, respBody)
	}

	return respBody, nil
}

// AnchorSettlement posts a settlement record for on-chain anchoring.
func (c *Client) AnchorSettlement(record any) (AnchorReceipt, error) {
	respBody, err := c.doRequest(http.MethodPost, "/ledger/settlements", record)
	if err != nil {
		return AnchorReceipt{}, fmt.Errorf("anchor settlement: %w", err)
	}

	var result anchorResponse
	if err := sonic.Unmarshal(respBody, &result); err != nil {
		return AnchorReceipt{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if result.Error != nil {
		return AnchorReceipt{}, fmt.Errorf("response error: %v", result.Error)
	}

	log.Debug().
		Str("tx_hash", result.Data.TxHash).
		Uint64("epoch", result.Data.Epoch).
		Msg("settlement anchored")

	return result.Data, nil
}
