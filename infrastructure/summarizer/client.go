package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"talky/errors"
	"time"
)

const maxResponseBytes = 1 << 20

type summarizeRequest struct {
	Messages []string `json:"messages"`
}

type summarizeResponse struct {
	Summary *string `json:"summary"`
}

// Client calls the external summarization service over HTTP.
type Client struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for baseURL. Deadlines come from the caller's context.
func NewClient(log *slog.Logger, baseURL string, timeout time.Duration) *Client {
	return &Client{
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Summarize posts {"messages": [...]} to /summarize and returns the summary field.
func (c *Client) Summarize(ctx context.Context, messages []string) (string, error) {
	if messages == nil {
		messages = []string{}
	}
	body, err := json.Marshal(summarizeRequest{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	endpoint := c.baseURL + "/summarize"
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", fmt.Errorf("perform request: %w", err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(response.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d: %s", errors.ErrSummarizerStatus, response.StatusCode, strings.TrimSpace(string(payload)))
	}

	var decoded summarizeResponse
	if err := json.Unmarshal(payload, &decoded); err != nil {
		return "", fmt.Errorf("%w: %v", errors.ErrMalformedSummary, err)
	}
	if decoded.Summary == nil {
		return "", fmt.Errorf("%w: missing summary field", errors.ErrMalformedSummary)
	}

	c.log.Debug("Summary received", "messages", len(messages), "length", len(*decoded.Summary))
	return *decoded.Summary, nil
}
