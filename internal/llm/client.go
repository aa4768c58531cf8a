// Package llm is a minimal client for OpenAI-compatible chat completion
// endpoints such as OpenRouter. It implements cleanscore.Completer.
package llm

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/anatolykoptev/go-cleanscore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// DefaultModel is the judge model used when none is configured.
	DefaultModel = "openai/gpt-4o-mini"

	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// ErrEmptyResponse is returned when the endpoint answers without any choice.
var ErrEmptyResponse = errors.New("no choices in response")

// APIError is a non-2xx answer or an error object from the endpoint.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("llm api error (status %d): %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Message)
}

// Config holds the client settings.
type Config struct {
	BaseURL     string        // default: DefaultBaseURL
	Model       string        // default: DefaultModel
	Temperature float64       // sent as-is; 0 keeps the judge deterministic
	MaxTokens   int           // 0 = endpoint default
	Headers     map[string]string
	HTTPClient  *http.Client  // should carry auth; default: http.Client with Timeout
	Timeout     time.Duration // used only when HTTPClient is nil
}

// Client speaks the /chat/completions API.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	headers     map[string]string
	httpClient  *http.Client
}

var _ cleanscore.Completer = (*Client)(nil)

// New constructs a Client, filling zero-value settings with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		headers:     cfg.Headers,
		httpClient:  cfg.HTTPClient,
	}
}

// Model returns the configured model id.
func (c *Client) Model() string { return c.model }

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"` // string or []contentPart
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends messages in one request (no retry) and returns the trimmed
// content of the first choice.
func (c *Client) Complete(ctx context.Context, messages []cleanscore.Message) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    convertMessages(messages),
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Stream:      false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range c.headers {
		httpReq.Header.Set(k, v)
	}

	slog.Debug("llm: request", "url", endpoint, "model", c.model, "messages", len(messages))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var oaiResp chatResponse
	decodeErr := json.Unmarshal(respBody, &oaiResp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(respBody))}
		if decodeErr == nil && oaiResp.Error != nil {
			apiErr.Type, apiErr.Message = oaiResp.Error.Type, oaiResp.Error.Message
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("decode response: %w", decodeErr)
	}
	if oaiResp.Error != nil && oaiResp.Error.Message != "" {
		return "", &APIError{StatusCode: resp.StatusCode, Type: oaiResp.Error.Type, Message: oaiResp.Error.Message}
	}
	if len(oaiResp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	slog.Debug("llm: response",
		"model", c.model,
		"finish_reason", oaiResp.Choices[0].FinishReason,
		"prompt_tokens", oaiResp.Usage.PromptTokens,
		"completion_tokens", oaiResp.Usage.CompletionTokens)

	return strings.TrimSpace(oaiResp.Choices[0].Message.Content), nil
}

// convertMessages maps messages to the wire format. Messages with images use
// the multi-part content form; plain text stays a string.
func convertMessages(messages []cleanscore.Message) []chatMessage {
	return lo.Map(messages, func(m cleanscore.Message, _ int) chatMessage {
		if len(m.Images) == 0 {
			return chatMessage{Role: m.Role, Content: m.Content}
		}
		parts := make([]contentPart, 0, len(m.Images)+1)
		if m.Content != "" {
			parts = append(parts, contentPart{Type: "text", Text: m.Content})
		}
		for _, img := range m.Images {
			if img.URL == "" {
				continue
			}
			parts = append(parts, contentPart{Type: "image_url", ImageURL: &imageURL{URL: img.URL}})
		}
		return chatMessage{Role: m.Role, Content: parts}
	})
}
