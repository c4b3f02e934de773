package tts

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

	"github.com/lexiqai/interpreter-gateway/internal/resilience"
)

// ensure this satisfies the interface
var _ Synthesizer = (*HTTPClient)(nil)

type speakRequest struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

type speakResponse struct {
	AudioURL string `json:"audio_url"`
	Filename string `json:"filename"`
	Error    string `json:"error"`
}

// HTTPClient implements Synthesizer against an external POST /speak endpoint
type HTTPClient struct {
	base           *url.URL
	apiURL         string
	httpClient     *http.Client
	circuitBreaker *resilience.CircuitBreaker
}

// NewHTTPClient creates a synthesizer client for the service at baseURL
func NewHTTPClient(baseURL string, breaker *resilience.CircuitBreaker) (*HTTPClient, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/") + "/")
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid synthesizer url %q", baseURL)
	}
	return &HTTPClient{
		base:           base,
		apiURL:         base.String() + "speak",
		httpClient:     &http.Client{},
		circuitBreaker: breaker,
	}, nil
}

// Synthesize requests audio for text and returns an absolute audio URL.
// Only service outages count against the circuit breaker.
func (c *HTTPClient) Synthesize(ctx context.Context, text, lang string) (string, error) {
	if c.circuitBreaker == nil {
		return c.do(ctx, text, lang)
	}

	var audioURL string
	var callErr error
	err := c.circuitBreaker.Call(func() error {
		audioURL, callErr = c.do(ctx, text, lang)
		var sErr *SynthesisError
		if errors.As(callErr, &sErr) && sErr.outage {
			return callErr
		}
		return nil
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return "", &SynthesisError{Detail: "speech service temporarily unavailable"}
	}
	return audioURL, callErr
}

func (c *HTTPClient) do(ctx context.Context, text, lang string) (string, error) {
	jsonData, err := json.Marshal(speakRequest{Text: text, Lang: lang})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", &SynthesisError{Detail: err.Error()}
		}
		return "", &SynthesisError{Detail: err.Error(), Network: resilience.IsNetworkError(err), outage: true}
	}
	defer resp.Body.Close()

	serverError := resp.StatusCode >= http.StatusInternalServerError

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &SynthesisError{Detail: err.Error(), Network: true, outage: true}
	}

	var decoded speakResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &SynthesisError{Detail: fmt.Sprintf("synthesizer returned status %d", resp.StatusCode), outage: serverError}
	}

	if resp.StatusCode != http.StatusOK {
		detail := decoded.Error
		if detail == "" {
			detail = fmt.Sprintf("synthesizer returned status %d", resp.StatusCode)
		}
		return "", &SynthesisError{Detail: detail, outage: serverError}
	}

	if decoded.AudioURL == "" {
		return "", &SynthesisError{Detail: "synthesizer returned no audio url"}
	}

	return c.resolve(decoded.AudioURL)
}

// resolve makes relative audio paths such as /audio/<file>.mp3 absolute
func (c *HTTPClient) resolve(audioURL string) (string, error) {
	ref, err := url.Parse(audioURL)
	if err != nil {
		return "", &SynthesisError{Detail: fmt.Sprintf("invalid audio url %q", audioURL)}
	}
	return c.base.ResolveReference(ref).String(), nil
}

// Check reports whether calls are currently allowed through to the upstream
func (c *HTTPClient) Check(ctx context.Context) (bool, error) {
	if c.circuitBreaker != nil && c.circuitBreaker.GetState() == resilience.StateOpen {
		return false, fmt.Errorf("circuit breaker %s is open", c.circuitBreaker.Name())
	}
	return true, nil
}
