// Package cleanscore turns a facility-issue report (a photo and a free-text
// description) into a single 0-100 cleanliness/urgency score.
//
// Each signal is scored independently into a unit score in [0,1] and the
// available scores are fused with fixed weights. A failing signal degrades to
// "absent"; only a report with no usable signal at all is an error.
package cleanscore

import (
	"context"
	"net/http"
	"time"
)

const (
	// DefaultFetchTimeout bounds the single GET issued for a remote image.
	DefaultFetchTimeout = 10 * time.Second

	// DefaultMaxImageBytes caps how much of an image file or response body is read.
	DefaultMaxImageBytes = 20 << 20

	// DefaultMaxImagePixels caps width*height accepted before a full decode.
	DefaultMaxImagePixels = 40_000_000

	// DefaultPreviewSide is the longest side, in pixels, of the JPEG preview
	// handed to remote image classifiers.
	DefaultPreviewSide = 512
)

// ImageInput represents an image for a remote classifier.
type ImageInput struct {
	URL      string // data: URI
	MIMEType string // e.g. "image/jpeg"
	Data     []byte // raw encoded bytes behind URL
}

// Prediction is one ranked label returned by a classifier.
type Prediction struct {
	Label string
	Score float64
}

// ImageClassifier abstracts zero-shot image classification over a fixed label set.
type ImageClassifier interface {
	ClassifyImage(ctx context.Context, img ImageInput, labels []string) ([]Prediction, error)
}

// SentimentClassifier abstracts binary sentiment classification of free text.
type SentimentClassifier interface {
	ClassifySentiment(ctx context.Context, text string) ([]Prediction, error)
}

// Message is one chat turn sent to a Completer.
type Message struct {
	Role    string
	Content string
	Images  []ImageInput
}

// Completer abstracts a chat-style text completion endpoint.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// TextScorer turns a description into a unit score.
type TextScorer interface {
	ScoreText(ctx context.Context, text string) (float64, error)
}

// Config holds all dependencies injected by the consumer.
type Config struct {
	ImageClassifier ImageClassifier // nil = image signal is never scored
	TextScorer      TextScorer      // nil = text signal is never scored
	HTTPClient      *http.Client    // optional: client for remote images (nil = http.DefaultClient)
	UserAgent       string          // default: "Mozilla/5.0 (compatible; go-cleanscore/1.0)"

	// Weights used when both signals are present. Zero value = DefaultWeights.
	Weights Weights

	FetchTimeout   time.Duration // default: DefaultFetchTimeout
	MaxImageBytes  int64         // default: DefaultMaxImageBytes
	MaxImagePixels int           // default: DefaultMaxImagePixels
	PreviewSide    int           // default: DefaultPreviewSide

	// Optional callbacks for metrics/logging.
	OnPanic func(tag string, r any)
	OnScore func(ScoreEvent) // optional: audit log for every scored report
}

// ScoreEvent describes one completed scoring run.
type ScoreEvent struct {
	ImageRef         ImageRef
	ImageScore       *float64
	TextScore        *float64
	ImageFingerprint string
	Score            float64
	Err              error
	Advisories       []string
	Duration         time.Duration
}

// defaults fills zero-value fields with sensible defaults.
func (c *Config) defaults() {
	if c.UserAgent == "" {
		c.UserAgent = "Mozilla/5.0 (compatible; go-cleanscore/1.0)"
	}
	if c.HTTPClient == nil {
		c.HTTPClient = http.DefaultClient
	}
	if c.Weights == (Weights{}) {
		c.Weights = DefaultWeights
	}
	if c.FetchTimeout <= 0 {
		c.FetchTimeout = DefaultFetchTimeout
	}
	if c.MaxImageBytes <= 0 {
		c.MaxImageBytes = DefaultMaxImageBytes
	}
	if c.MaxImagePixels <= 0 {
		c.MaxImagePixels = DefaultMaxImagePixels
	}
	if c.PreviewSide <= 0 {
		c.PreviewSide = DefaultPreviewSide
	}
}
