// Package hfinference calls the Hugging Face Inference API for zero-shot
// image classification and text sentiment classification.
package hfinference

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"

	"github.com/anatolykoptev/go-cleanscore"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	// DefaultBaseURL is the serverless inference root; the model id is appended.
	DefaultBaseURL = "https://router.huggingface.co/hf-inference/models"

	// DefaultImageModel is a CLIP model that supports zero-shot image classification.
	DefaultImageModel = "openai/clip-vit-base-patch32"

	// DefaultTextModel is a binary POSITIVE/NEGATIVE sentiment model.
	DefaultTextModel = "distilbert/distilbert-base-uncased-finetuned-sst-2-english"

	defaultTimeout   = 30 * time.Second
	maxResponseBytes = 1 << 20
)

// StatusError is a non-2xx answer from the inference API.
type StatusError struct {
	StatusCode int
	Model      string
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("hf inference %s: status %d: %s", e.Model, e.StatusCode, e.Message)
}

// Config holds the client settings.
type Config struct {
	BaseURL    string       // default: DefaultBaseURL
	ImageModel string       // default: DefaultImageModel
	TextModel  string       // default: DefaultTextModel
	HTTPClient *http.Client // should carry auth; default: http.Client with Timeout
	Timeout    time.Duration
}

// Client implements cleanscore.ImageClassifier and cleanscore.SentimentClassifier.
type Client struct {
	baseURL    string
	imageModel string
	textModel  string
	httpClient *http.Client
}

var (
	_ cleanscore.ImageClassifier     = (*Client)(nil)
	_ cleanscore.SentimentClassifier = (*Client)(nil)
)

// New constructs a Client, filling zero-value settings with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultImageModel
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultTextModel
	}
	if cfg.HTTPClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		cfg.HTTPClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		imageModel: cfg.ImageModel,
		textModel:  cfg.TextModel,
		httpClient: cfg.HTTPClient,
	}
}

type labelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

type zeroShotRequest struct {
	Inputs     string `json:"inputs"`
	Parameters struct {
		CandidateLabels []string `json:"candidate_labels"`
	} `json:"parameters"`
}

// ClassifyImage runs zero-shot classification of img against labels.
func (c *Client) ClassifyImage(ctx context.Context, img cleanscore.ImageInput, labels []string) ([]cleanscore.Prediction, error) {
	if len(img.Data) == 0 {
		return nil, errors.New("empty image")
	}
	var req zeroShotRequest
	req.Inputs = cleanscore.EncodeBase64(img.Data)
	req.Parameters.CandidateLabels = labels

	body, err := c.post(ctx, c.imageModel, req)
	if err != nil {
		return nil, err
	}

	var out []labelScore
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("decode zero-shot response: %w", err)
	}
	return toPredictions(out), nil
}

type textRequest struct {
	Inputs string `json:"inputs"`
}

// ClassifySentiment runs text classification of text. Both the flat and the
// nested (one list per input) response shapes are accepted.
func (c *Client) ClassifySentiment(ctx context.Context, text string) ([]cleanscore.Prediction, error) {
	body, err := c.post(ctx, c.textModel, textRequest{Inputs: text})
	if err != nil {
		return nil, err
	}

	var nested [][]labelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 {
			return nil, errors.New("empty text classification response")
		}
		return toPredictions(nested[0]), nil
	}

	var flat []labelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("decode text classification response: %w", err)
	}
	return toPredictions(flat), nil
}

func (c *Client) post(ctx context.Context, model string, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/" + modelPath(model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	slog.Debug("hfinference: request", "model", model)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(respBody))
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			msg = apiErr.Error
		}
		return nil, &StatusError{StatusCode: resp.StatusCode, Model: model, Message: msg}
	}
	return respBody, nil
}

// modelPath escapes each segment of an "org/name" model id.
func modelPath(model string) string {
	segs := strings.Split(model, "/")
	return strings.Join(lo.Map(segs, func(s string, _ int) string { return url.PathEscape(s) }), "/")
}

func toPredictions(in []labelScore) []cleanscore.Prediction {
	return lo.Map(in, func(ls labelScore, _ int) cleanscore.Prediction {
		return cleanscore.Prediction{Label: ls.Label, Score: ls.Score}
	})
}
