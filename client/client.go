// Package client reads stock records from the stocks API.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"stock-dashboard/models"
)

// ErrFetch is matched by every *FetchError.
var ErrFetch = errors.New("fetch stocks")

// FetchError reports a failed read. Status is the HTTP status of the
// response, or 0 when no response arrived.
type FetchError struct {
	Path   string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		if e.Err != nil {
			return fmt.Sprintf("fetch %s: status %d: %v", e.Path, e.Status, e.Err)
		}
		return fmt.Sprintf("fetch %s: status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("fetch %s: %v", e.Path, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetch }

// Fetcher is what the dashboard needs from the stocks API.
type Fetcher interface {
	Ticker(ctx context.Context, ticker string) ([]models.StockRecord, error)
	Latest(ctx context.Context) ([]models.StockRecord, error)
}

// Client issues one GET per call against BaseURL. No retries, no caching.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// New builds a client for baseURL. A nil httpClient gets a 10s timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

// Ticker returns every record the API holds for ticker.
func (c *Client) Ticker(ctx context.Context, ticker string) ([]models.StockRecord, error) {
	return c.get(ctx, "/stocks/"+url.PathEscape(ticker))
}

// Latest returns the latest record per known ticker.
func (c *Client) Latest(ctx context.Context) ([]models.StockRecord, error) {
	return c.get(ctx, "/latest")
}

func (c *Client) get(ctx context.Context, path string) ([]models.StockRecord, error) {
	u := c.baseURL.String() + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{Path: path, Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{Path: path, Status: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	var records []models.StockRecord
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, &FetchError{Path: path, Status: resp.StatusCode, Err: fmt.Errorf("decode body: %w", err)}
	}
	// the API encodes an empty result set as null
	if records == nil {
		records = []models.StockRecord{}
	}
	return records, nil
}
