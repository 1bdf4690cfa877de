package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsVerdict/internal/domain"
)

// Client talks to a running newsverdict API.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a reusable HTTP client for baseURL.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		endpoint: strings.TrimRight(baseURL, "/"),
		http:     httpClient,
	}
}

// Classify submits text and returns the server's report.
func (c *Client) Classify(ctx context.Context, text string) (domain.Report, error) {
	payload := map[string]any{"text": text}

	var report domain.Report
	if err := c.do(ctx, http.MethodPost, "/api/v1/classify", payload, &report); err != nil {
		return domain.Report{}, err
	}
	return report, nil
}

// Model describes the artifacts the server has loaded.
func (c *Client) Model(ctx context.Context) (domain.ModelInfo, error) {
	var info domain.ModelInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/model", nil, &info); err != nil {
		return domain.ModelInfo{}, err
	}
	return info, nil
}

// Verdicts fetches up to limit recent verdicts.
func (c *Client) Verdicts(ctx context.Context, limit int) ([]domain.Verdict, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))

	var resp struct {
		Verdicts []domain.Verdict `json:"verdicts"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/v1/verdicts?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Verdicts, nil
}

type apiError struct {
	Error string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, payload any, v any) error {
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr apiError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		switch {
		case resp.StatusCode == http.StatusBadRequest && apiErr.Error == domain.ErrEmptyInput.Error():
			return domain.ErrEmptyInput
		case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/api/v1/verdicts"):
			return domain.ErrHistoryDisabled
		case apiErr.Error != "":
			return fmt.Errorf("unexpected status %s: %s", resp.Status, apiErr.Error)
		default:
			return fmt.Errorf("unexpected status %s", resp.Status)
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
