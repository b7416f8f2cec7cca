package jsonbin

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

	"morfi-plan/internal/config"
)

// ErrNotFound is returned when the API answers 404 for a bin or collection.
var ErrNotFound = errors.New("jsonbin: not found")

// ErrNotConfigured is returned by every call when no master key is set.
var ErrNotConfigured = errors.New("jsonbin: no master key configured")

// APIError is a non-2xx answer other than 404.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jsonbin api error: status=%d body=%s", e.Status, e.Body)
}

// BinSummary is one entry of a collection listing.
type BinSummary struct {
	ID   string
	Name string
}

// Client is an interface for the JSONBin v3 document API.
type Client interface {
	Configured() bool
	GetBin(ctx context.Context, id string) (json.RawMessage, error)
	UpdateBin(ctx context.Context, id string, v any) error
	CreateBin(ctx context.Context, collectionID, name string, v any) (string, error)
	ListCollection(ctx context.Context, collectionID string) ([]BinSummary, error)
}

// jsonBinClient is the concrete implementation of the JSONBin client.
type jsonBinClient struct {
	httpClient *http.Client
	baseURL    string
	masterKey  string
}

// NewClient creates a new JSONBin API client.
func NewClient(cfg *config.Config) Client {
	return &jsonBinClient{
		httpClient: &http.Client{Timeout: 15 * time.Second},
		baseURL:    strings.TrimSuffix(cfg.JSONBinAPIURL, "/"),
		masterKey:  cfg.JSONBinAPIKey,
	}
}

func (c *jsonBinClient) Configured() bool {
	return c.masterKey != ""
}

// GetBin fetches the latest version of a bin and returns its record.
func (c *jsonBinClient) GetBin(ctx context.Context, id string) (json.RawMessage, error) {
	var resp struct {
		Record json.RawMessage `json:"record"`
	}
	if err := c.do(ctx, http.MethodGet, "/b/"+id+"/latest", nil, nil, &resp); err != nil {
		return nil, err
	}
	if len(resp.Record) == 0 {
		return nil, fmt.Errorf("jsonbin: bin %s returned no record", id)
	}
	return resp.Record, nil
}

// UpdateBin replaces the whole content of a bin.
func (c *jsonBinClient) UpdateBin(ctx context.Context, id string, v any) error {
	return c.do(ctx, http.MethodPut, "/b/"+id, nil, v, nil)
}

// CreateBin creates a private bin named name inside a collection and
// returns its identifier.
func (c *jsonBinClient) CreateBin(ctx context.Context, collectionID, name string, v any) (string, error) {
	headers := map[string]string{
		"X-Bin-Name":    name,
		"X-Bin-Private": "true",
	}
	if collectionID != "" {
		headers["X-Collection-Id"] = collectionID
	}

	var resp struct {
		Metadata struct {
			ID string `json:"id"`
		} `json:"metadata"`
	}
	if err := c.do(ctx, http.MethodPost, "/b", headers, v, &resp); err != nil {
		return "", err
	}
	if resp.Metadata.ID == "" {
		return "", fmt.Errorf("jsonbin: create returned no bin id")
	}
	return resp.Metadata.ID, nil
}

// ListCollection lists the bins of a collection.
func (c *jsonBinClient) ListCollection(ctx context.Context, collectionID string) ([]BinSummary, error) {
	var resp []struct {
		Record      string `json:"record"`
		SnippetMeta struct {
			Name string `json:"name"`
		} `json:"snippetMeta"`
	}
	if err := c.do(ctx, http.MethodGet, "/c/"+collectionID+"/bins", nil, nil, &resp); err != nil {
		return nil, err
	}

	bins := make([]BinSummary, 0, len(resp))
	for _, b := range resp {
		bins = append(bins, BinSummary{ID: b.Record, Name: b.SnippetMeta.Name})
	}
	return bins, nil
}

func (c *jsonBinClient) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Master-Key", c.masterKey)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{Status: resp.StatusCode, Body: string(bodyBytes)}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
