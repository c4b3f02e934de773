package translation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lexiqai/interpreter-gateway/internal/resilience"
)

// ensure this satisfies the interface
var _ Translator = (*HTTPClient)(nil)

type translateResponse struct {
	TranslatedText string `json:"translated_text"`
	Error          string `json:"error"`
}

// HTTPClient calls an external POST /translate endpoint
type HTTPClient struct {
	url            string
	httpClient     *http.Client
	circuitBreaker *resilience.CircuitBreaker
}

// NewHTTPClient creates a translator for the service at baseURL.
// breaker may be nil to call the upstream unguarded.
func NewHTTPClient(baseURL string, breaker *resilience.CircuitBreaker) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("invalid translator url %q", baseURL)
	}
	return &HTTPClient{
		url:            strings.TrimRight(baseURL, "/") + "/translate",
		httpClient:     &http.Client{},
		circuitBreaker: breaker,
	}, nil
}

// Translate sends req to the translation endpoint. An empty translation is
// returned as "" with no error. Only service outages count against the
// circuit breaker; a rejected request fails on its own.
func (c *HTTPClient) Translate(ctx context.Context, req Request) (string, error) {
	if c.circuitBreaker == nil {
		return c.do(ctx, req)
	}

	var translated string
	var callErr error
	err := c.circuitBreaker.Call(func() error {
		translated, callErr = c.do(ctx, req)
		if isOutage(callErr) {
			return callErr
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", &Error{Detail: "translation service temporarily unavailable"}
	}
	return translated, callErr
}

func isOutage(err error) bool {
	var tErr *Error
	if errors.As(err, &tErr) {
		return tErr.outage
	}
	return false
}

func (c *HTTPClient) do(ctx context.Context, req Request) (string, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return "", &Error{Detail: err.Error()}
		}
		return "", &Error{Detail: err.Error(), Network: resilience.IsNetworkError(err), outage: true}
	}
	defer resp.Body.Close()

	serverError := resp.StatusCode >= http.StatusInternalServerError

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &Error{Detail: err.Error(), Network: true, outage: true}
	}

	var decoded translateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", &Error{Detail: fmt.Sprintf("translator returned status %d", resp.StatusCode), outage: serverError}
		}
		return "", &Error{Detail: "malformed translator response"}
	}

	if resp.StatusCode != http.StatusOK {
		detail := decoded.Error
		if detail == "" {
			detail = fmt.Sprintf("translator returned status %d", resp.StatusCode)
		}
		return "", &Error{Detail: detail, outage: serverError}
	}

	if strings.TrimSpace(decoded.TranslatedText) == "" {
		return "", nil
	}
	return decoded.TranslatedText, nil
}

// Check reports whether calls are currently allowed through to the upstream.
// It does not call the translator to avoid spending upstream quota.
func (c *HTTPClient) Check(ctx context.Context) (bool, error) {
	if c.circuitBreaker != nil && c.circuitBreaker.GetState() == resilience.StateOpen {
		return false, fmt.Errorf("circuit breaker %s is open", c.circuitBreaker.Name())
	}
	return true, nil
}
