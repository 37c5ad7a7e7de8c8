// Package client talks to a running callscope server.
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/ziadkadry99/callscope/internal/analyzer"
	"github.com/ziadkadry99/callscope/internal/blacklist"
	"github.com/ziadkadry99/callscope/internal/ingest"
)

// DefaultBaseURL is where `callscope serve` listens by default.
const DefaultBaseURL = "http://localhost:8080"

// StatusError is a non-2xx response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// Client issues one request at a time against the API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// New returns a client for baseURL, or DefaultBaseURL when empty.
func New(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP:    &http.Client{Timeout: 10 * time.Minute},
	}
}

// Analyze asks the server to analyse path and returns the analysis with the
// id of the saved snapshot. A body without nodes or links fails with
// ingest.ErrInvalidStructure.
func (c *Client) Analyze(ctx context.Context, path string) (*analyzer.Result, string, error) {
	endpoint := c.BaseURL + "/api/analyze?path=" + url.QueryEscape(path)
	resp, err := c.do(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("reading analysis: %w", err)
	}
	if _, err := ingest.ParseGraph(data); err != nil {
		return nil, "", err
	}
	var res analyzer.Result
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, "", fmt.Errorf("decoding analysis: %w", err)
	}
	return &res, resp.Header.Get(analyzer.SnapshotHeader), nil
}

// UploadBlacklist replaces the server's blacklist with names.
func (c *Client) UploadBlacklist(ctx context.Context, names []string) error {
	body, err := json.Marshal(blacklist.Upload{MethodNames: names})
	if err != nil {
		return fmt.Errorf("encoding blacklist: %w", err)
	}
	resp, err := c.do(ctx, http.MethodPost, c.BaseURL+"/api/blacklist", body)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Blacklist fetches the server's current blacklist.
func (c *Client) Blacklist(ctx context.Context) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, c.BaseURL+"/api/blacklist", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var names []string
	if err := json.NewDecoder(resp.Body).Decode(&names); err != nil {
		return nil, fmt.Errorf("decoding blacklist: %w", err)
	}
	return names, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body []byte) (*http.Response, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	return resp, nil
}
