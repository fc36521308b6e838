// Package client talks to a zold node over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"zold-node/internal/adapter/http/dto"
	"zold-node/internal/core/domain"

	"github.com/rs/zerolog"
)

// ErrNotFound is returned when the node does not store the wallet.
var ErrNotFound = errors.New("wallet not found on node")

// maxWalletBytes bounds how much of a pulled wallet is read.
const maxWalletBytes = 16 << 20

// APIError is an error envelope returned by the node.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("node returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("node returned status %d [%s]: %s", e.StatusCode, e.Code, e.Message)
}

// Client is the HTTP client for a zold node.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new node client. A nil httpClient gets a 30s timeout.
func NewClient(baseURL string, httpClient *http.Client, log zerolog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		log:        log,
	}
}

// Pull fetches the node's copy of a wallet.
func (c *Client) Pull(ctx context.Context, id domain.Id) (*domain.Wallet, error) {
	resp, err := c.do(ctx, http.MethodGet, "/wallets/"+id.String(), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxWalletBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet %s: %w", id, err)
	}
	w, err := domain.ParseWallet(data)
	if err != nil {
		return nil, fmt.Errorf("node sent an unreadable wallet %s: %w", id, err)
	}
	if w.ID() != id {
		return nil, fmt.Errorf("%w: asked for %s, node sent %s", domain.ErrIdentityMismatch, id, w.ID())
	}

	c.log.Debug().Str("wallet", id.String()).Int("transactions", w.Len()).Msg("wallet pulled")
	return w, nil
}

// Push sends a wallet to the node and returns the merge summary.
func (c *Client) Push(ctx context.Context, w *domain.Wallet) (*dto.PushResponse, error) {
	body, err := w.Serialize()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize wallet: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPut, "/wallets/"+w.ID().String(), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseErrorResponse(resp)
	}

	var env dto.Envelope[dto.PushResponse]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("failed to decode push response: %w", err)
	}

	c.log.Debug().
		Str("wallet", w.ID().String()).
		Int("accepted", env.Data.Accepted).
		Int("rejected", env.Data.Rejected).
		Msg("wallet pushed")
	return &env.Data, nil
}

// Balance asks the node for the balance of a wallet it stores.
func (c *Client) Balance(ctx context.Context, id domain.Id) (domain.Amount, error) {
	resp, err := c.do(ctx, http.MethodGet, "/wallets/"+id.String()+"/balance", nil)
	if err != nil {
		return domain.Zero, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Zero, c.parseErrorResponse(resp)
	}

	var env dto.Envelope[dto.BalanceResponse]
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return domain.Zero, fmt.Errorf("failed to decode balance response: %w", err)
	}
	return domain.NewAmount(env.Data.Balance), nil
}

// Version returns the version string the node reports.
func (c *Client) Version(ctx context.Context) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/version", nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", c.parseErrorResponse(resp)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return "", fmt.Errorf("failed to read version: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

// parseErrorResponse turns a non-2xx response into ErrNotFound or an
// *APIError.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp dto.ErrorBody
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.ErrorCode == "" {
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
	apiErr := &APIError{StatusCode: resp.StatusCode, Code: errResp.ErrorCode, Message: errResp.Message}
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Message)
	}
	return apiErr
}
