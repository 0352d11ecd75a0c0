// Package gemini implements the Google Gemini generateContent API client.
// It is the conversational delegate for the bot: the application layer
// assembles the persona and transcript, this package carries them over
// the wire and returns the model's reply text.
package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/internal/domain/shared"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/circuitbreaker"
	"github.com/ayaka-hub/ayaka-learning-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultBaseURL is the Gemini REST API endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com"

	// DefaultModel is the model used when none is configured.
	DefaultModel = "gemini-1.5-flash"
)

// ClientConfig contains configuration for the Gemini API client.
type ClientConfig struct {
	// BaseURL is the Gemini API base URL
	BaseURL string

	// APIKey authenticates every request
	APIKey string

	// Model is the model name, e.g. "gemini-1.5-flash"
	Model string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// Temperature controls response randomness
	Temperature float64

	// MaxOutputTokens caps the reply length
	MaxOutputTokens int

	// RetryConfig for retry behavior
	RetryConfig retry.Config

	// BreakerConfig for fault tolerance
	BreakerConfig circuitbreaker.Config

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:         DefaultBaseURL,
		APIKey:          apiKey,
		Model:           DefaultModel,
		Timeout:         30 * time.Second,
		Temperature:     0.7,
		MaxOutputTokens: 1000,
		RetryConfig:     retry.DefaultConfig(),
		BreakerConfig:   circuitbreaker.DefaultConfig("gemini-api"),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrEmptyResponse - the API returned no candidates.
	ErrEmptyResponse = errors.New("gemini returned no candidates")

	// ErrBlocked - the prompt was blocked by the safety filter.
	ErrBlocked = errors.New("prompt blocked by safety filter")
)

// APIError is a non-2xx response from the Gemini API.
type APIError struct {
	StatusCode int    `json:"code"`
	Status     string `json:"status"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini api error: status %d (%s): %s", e.StatusCode, e.Status, e.Message)
}

// RateLimitError indicates the API asked us to slow down.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("gemini rate limited: %s (retry after %s)", e.Message, e.RetryAfter)
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Conversation roles understood by the API.
const (
	RoleUser  = "user"
	RoleModel = "model"
)

// Turn is one entry of the conversation transcript.
type Turn struct {
	Role string
	Text string
}

// Client is the Gemini API client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *circuitbreaker.CircuitBreaker
	retrier    *retry.Retrier
}

// NewClient creates a new Gemini API client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Model == "" {
		config.Model = DefaultModel
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger,
		breaker: circuitbreaker.New("gemini-api",
			circuitbreaker.WithFailureThreshold(config.BreakerConfig.FailureThreshold),
			circuitbreaker.WithSuccessThreshold(config.BreakerConfig.SuccessThreshold),
			circuitbreaker.WithTimeout(config.BreakerConfig.Timeout),
		),
	}
	c.retrier = retry.New(
		retry.WithMaxAttempts(config.RetryConfig.MaxAttempts),
		retry.WithInitialDelay(config.RetryConfig.InitialDelay),
		retry.WithMaxDelay(config.RetryConfig.MaxDelay),
		retry.WithMultiplier(config.RetryConfig.Multiplier),
		retry.WithRetryIf(c.isRetryable),
	)
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// WIRE TYPES
// ══════════════════════════════════════════════════════════════════════════════

type wirePart struct {
	Text string `json:"text"`
}

type wireContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []wirePart `json:"parts"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateRequest struct {
	SystemInstruction *wireContent     `json:"system_instruction,omitempty"`
	Contents          []wireContent    `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type generateResponse struct {
	Candidates []struct {
		Content      wireContent `json:"content"`
		FinishReason string      `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type apiErrorEnvelope struct {
	Error APIError `json:"error"`
}

// ══════════════════════════════════════════════════════════════════════════════
// GENERATION
// ══════════════════════════════════════════════════════════════════════════════

// Generate sends the transcript to the model and returns its reply text.
// systemInstruction sets the persona for the whole exchange; turns are
// ordered oldest first and must end with the user's message.
func (c *Client) Generate(ctx context.Context, systemInstruction string, turns []Turn) (string, error) {
	if len(turns) == 0 {
		return "", fmt.Errorf("gemini generate: empty transcript: %w", shared.ErrValidation)
	}

	reqBody := generateRequest{
		Contents: make([]wireContent, 0, len(turns)),
		GenerationConfig: generationConfig{
			Temperature:     c.config.Temperature,
			MaxOutputTokens: c.config.MaxOutputTokens,
		},
	}
	if systemInstruction != "" {
		reqBody.SystemInstruction = &wireContent{
			Parts: []wirePart{{Text: systemInstruction}},
		}
	}
	for _, t := range turns {
		role := t.Role
		if role == "" {
			role = RoleUser
		}
		reqBody.Contents = append(reqBody.Contents, wireContent{
			Role:  role,
			Parts: []wirePart{{Text: t.Text}},
		})
	}

	var response generateResponse
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.breaker.Execute(ctx, func(ctx context.Context) error {
			return c.doSingleRequest(ctx, reqBody, &response)
		})
	})
	if err != nil {
		return "", fmt.Errorf("gemini generate: %v: %w", err, shared.ErrExternalService)
	}

	return extractText(&response)
}

// extractText pulls the reply text out of the first candidate.
func extractText(resp *generateResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", ErrEmptyResponse
	}

	var sb strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP REQUEST HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// doSingleRequest performs a single generateContent call.
func (c *Client) doSingleRequest(ctx context.Context, body generateRequest, result *generateResponse) error {
	fullURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.config.BaseURL, url.PathEscape(c.config.Model), url.QueryEscape(c.config.APIKey))

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	c.logger.Debug("gemini api request",
		"model", c.config.Model,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 60 * time.Second
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if seconds, err := strconv.Atoi(ra); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}
		return &RateLimitError{
			RetryAfter: retryAfter,
			Message:    "rate limit exceeded",
		}
	}

	if resp.StatusCode >= 400 {
		var envelope apiErrorEnvelope
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error.Message != "" {
			envelope.Error.StatusCode = resp.StatusCode
			return &envelope.Error
		}
		return &APIError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// isRetryable checks if an error is worth another attempt.
func (c *Client) isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) || errors.Is(err, circuitbreaker.ErrTooManyRequests) {
		return false
	}

	var rateLimitErr *RateLimitError
	if errors.As(err, &rateLimitErr) {
		return true
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode >= 500
	}

	// Network-level failures
	errStr := err.Error()
	for _, sub := range []string{"timeout", "connection refused", "temporary", "reset", "EOF"} {
		if strings.Contains(errStr, sub) {
			return true
		}
	}
	return false
}

// State reports the circuit breaker state for health reporting.
func (c *Client) State() circuitbreaker.State {
	return c.breaker.State()
}
