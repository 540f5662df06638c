// Package localline is the HTTP client for the Local Line backoffice API.
// Exports are asynchronous on the platform: a request returns an export ID,
// the export is polled until complete, and the finished file is downloaded
// from the URL the status endpoint hands back.
package localline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Client talks to the backoffice API. It caches the bearer token for the
// lifetime of the client; Authenticate refreshes it.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

// NewClient creates a client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		logger: logger.Named("localline"),
	}, nil
}

// Authenticate obtains a fresh access token from the token endpoint.
func (c *Client) Authenticate(ctx context.Context) error {
	payload, err := json.Marshal(map[string]string{
		"username": c.config.Username,
		"password": c.config.Password,
	})
	if err != nil {
		return fmt.Errorf("localline: failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/token", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("localline: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxDownloadSize))
	if err != nil {
		return fmt.Errorf("localline: failed to read token response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: HTTP %d", ErrAuthFailed, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if token.Access == "" {
		return ErrAuthFailed
	}

	c.mu.Lock()
	c.token = token.Access
	c.mu.Unlock()

	c.logger.Debug("authenticated with backoffice API")
	return nil
}

// ensureToken authenticates once if no token has been obtained yet.
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token := c.token
	c.mu.RUnlock()
	if token != "" {
		return token, nil
	}

	if err := c.Authenticate(ctx); err != nil {
		return "", err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token, nil
}

// RequestOrdersExport asks the platform to build an orders list export and
// returns the export ID to poll.
func (c *Client) RequestOrdersExport(ctx context.Context, params OrdersExportParams) (int64, error) {
	query := url.Values{}
	query.Set("file_type", "orders_list_view")
	query.Set("send_to_email", "false")
	query.Set("direct", "true")
	query.Set("fulfillment_date_start", params.Start)
	query.Set("fulfillment_date_end", params.End)
	if params.PaidOnly {
		query.Set("payment__status", "PAID")
	}
	if len(params.PriceLists) > 0 {
		query.Set("price_lists", joinIDs(params.PriceLists))
	}
	if len(params.CustomerTags) > 0 {
		query.Set("customer_tags", joinIDs(params.CustomerTags))
	}

	return c.requestExport(ctx, "/orders/export/?"+query.Encode())
}

// requestExport submits an export request and decodes the export ID.
func (c *Client) requestExport(ctx context.Context, path string) (int64, error) {
	body, err := c.get(ctx, c.config.BaseURL+path, true)
	if err != nil {
		return 0, err
	}

	var export exportResponse
	if err := json.Unmarshal(body, &export); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if export.ID == 0 {
		return 0, fmt.Errorf("%w: missing export id", ErrInvalidResponse)
	}

	c.logger.Info("export requested", zap.Int64("export_id", export.ID))
	return export.ID, nil
}

// PollExport checks the export status until it completes and returns the
// download URL for the finished file. Polling stops on context cancellation,
// a FAILED status, or when the poll limit is exhausted.
func (c *Client) PollExport(ctx context.Context, exportID int64) (string, error) {
	statusURL := fmt.Sprintf("%s/export/%d/", c.config.BaseURL, exportID)

	for attempt := 0; attempt < c.config.PollLimit; attempt++ {
		body, err := c.get(ctx, statusURL, true)
		if err != nil {
			return "", err
		}

		var status exportStatusResponse
		if err := json.Unmarshal(body, &status); err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}

		c.logger.Debug("export status",
			zap.Int64("export_id", exportID),
			zap.String("status", status.Status),
		)

		switch status.Status {
		case ExportStatusComplete:
			if status.FilePath == "" {
				return "", fmt.Errorf("%w: complete export has no file path", ErrInvalidResponse)
			}
			return status.FilePath, nil
		case ExportStatusFailed:
			return "", ErrExportFailed
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(c.config.PollInterval):
		}
	}

	return "", ErrExportTimeout
}

// DownloadFile fetches a finished export from its file URL. Export file URLs
// are pre-signed; no auth header is sent.
func (c *Client) DownloadFile(ctx context.Context, fileURL string) ([]byte, error) {
	return c.get(ctx, fileURL, false)
}

// DownloadProductsByTags fetches the products export filtered to the given
// internal tag IDs. This export is synchronous and returns the spreadsheet
// directly.
func (c *Client) DownloadProductsByTags(ctx context.Context, tagIDs []string) ([]byte, error) {
	query := url.Values{}
	query.Set("internal_tags", joinIDs(tagIDs))
	query.Set("direct", "true")

	return c.get(ctx, c.config.BaseURL+"/products/export/?"+query.Encode(), true)
}

// DownloadCustomers fetches the customers export with store credit
// balances. Like the tag-filtered products export, this one is
// synchronous and returns the CSV directly.
func (c *Client) DownloadCustomers(ctx context.Context) ([]byte, error) {
	query := url.Values{}
	query.Set("direct", "true")

	return c.get(ctx, c.config.BaseURL+"/customers/export/?"+query.Encode(), true)
}

// FulfillmentStrategies lists the dropsite and delivery strategies
// configured on the platform, pickup instructions included.
func (c *Client) FulfillmentStrategies(ctx context.Context) ([]FulfillmentStrategy, error) {
	body, err := c.get(ctx, c.config.BaseURL+"/fulfillment-strategies/", true)
	if err != nil {
		return nil, err
	}

	var response fulfillmentStrategiesResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	c.logger.Debug("fulfillment strategies fetched", zap.Int("count", len(response.Results)))
	return response.Results, nil
}

// FetchOrders runs the full export cycle for an orders list: request, poll,
// download. The returned bytes are the CSV body.
func (c *Client) FetchOrders(ctx context.Context, params OrdersExportParams) ([]byte, error) {
	exportID, err := c.RequestOrdersExport(ctx, params)
	if err != nil {
		return nil, err
	}

	fileURL, err := c.PollExport(ctx, exportID)
	if err != nil {
		return nil, err
	}

	data, err := c.DownloadFile(ctx, fileURL)
	if err != nil {
		return nil, err
	}

	c.logger.Info("orders export downloaded",
		zap.Int64("export_id", exportID),
		zap.Int("bytes", len(data)),
		zap.String("start", params.Start),
		zap.String("end", params.End),
	)
	return data, nil
}

// get performs a GET request, optionally with the bearer token, and returns
// the body capped at the configured download size.
func (c *Client) get(ctx context.Context, rawURL string, authenticated bool) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("localline: failed to create request: %w", err)
	}

	if authenticated {
		token, err := c.ensureToken(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.config.MaxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("localline: failed to read response: %w", err)
	}
	if int64(len(body)) > c.config.MaxDownloadSize {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode >= 400 {
		snippet := strings.TrimSpace(string(body))
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return nil, fmt.Errorf("%w: HTTP %d: %s", ErrRequestFailed, resp.StatusCode, snippet)
	}

	return body, nil
}
