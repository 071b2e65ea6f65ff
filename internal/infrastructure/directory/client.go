package directory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apppartner "github.com/retailpos/backend/internal/application/partner"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/infrastructure/config"
)

// maxResponseSize is the maximum allowed response size from the directory API (10MB)
const maxResponseSize = 10 * 1024 * 1024

// ErrDirectoryUnavailable indicates the directory service could not be reached
var ErrDirectoryUnavailable = errors.New("directory: service unavailable")

// ErrDirectoryRequestFailed indicates the directory rejected the request
var ErrDirectoryRequestFailed = errors.New("directory: request failed")

// ErrDirectoryInvalidResponse indicates the directory returned an unparseable body
var ErrDirectoryInvalidResponse = errors.New("directory: invalid response")

// Client talks to the external customer directory over its JSON REST API.
// It implements the application layer's DirectoryClient port.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a directory client from configuration
func NewClient(cfg config.DirectoryConfig) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("directory: base URL is required")
	}
	if cfg.APIKey == "" {
		return nil, errors.New("directory: API key is required")
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// customerPayload is the wire format for pushing a customer upstream
type customerPayload struct {
	LocalID  string `json:"local_id"`
	Name     string `json:"name"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Document string `json:"document,omitempty"`
}

// pushResponse is the directory's reply to a customer upsert
type pushResponse struct {
	ExternalID string `json:"external_id"`
}

// customerRecord is a single directory record in a pull response
type customerRecord struct {
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Document   string    `json:"document"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// pullResponse is the directory's reply to a changed-since query
type pullResponse struct {
	Customers []customerRecord `json:"customers"`
}

// PushCustomer uploads a local customer and returns the directory ID
// assigned to it. Pushing the same customer twice is an upsert on the
// directory side.
func (c *Client) PushCustomer(ctx context.Context, customer *partner.Customer) (string, error) {
	payload := customerPayload{
		LocalID:  customer.ID.String(),
		Name:     customer.Name,
		Email:    customer.Email,
		Phone:    customer.Phone,
		Document: customer.Document,
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/customers", payload)
	if err != nil {
		return "", err
	}

	var resp pushResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: %v", ErrDirectoryInvalidResponse, err)
	}
	if resp.ExternalID == "" {
		return "", fmt.Errorf("%w: missing external_id", ErrDirectoryInvalidResponse)
	}
	return resp.ExternalID, nil
}

// PullCustomers fetches directory records changed since the given time
func (c *Client) PullCustomers(ctx context.Context, since time.Time) ([]apppartner.DirectoryCustomer, error) {
	path := "/v1/customers?updated_since=" + url.QueryEscape(since.UTC().Format(time.RFC3339))

	body, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp pullResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryInvalidResponse, err)
	}

	customers := make([]apppartner.DirectoryCustomer, 0, len(resp.Customers))
	for _, record := range resp.Customers {
		customers = append(customers, apppartner.DirectoryCustomer{
			ExternalID: record.ExternalID,
			Name:       record.Name,
			Email:      record.Email,
			Phone:      record.Phone,
			Document:   record.Document,
			UpdatedAt:  record.UpdatedAt,
		})
	}
	return customers, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("directory: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("directory: failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDirectoryUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("directory: failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrDirectoryRequestFailed, resp.StatusCode)
	}

	return body, nil
}
