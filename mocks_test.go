package cleanscore

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// mockImageClassifier is a test double for the ImageClassifier interface.
type mockImageClassifier struct {
	mu     sync.Mutex
	preds  []Prediction
	err    error
	panic  bool
	calls  int
	labels []string
	input  ImageInput
}

func (m *mockImageClassifier) ClassifyImage(_ context.Context, img ImageInput, labels []string) ([]Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.labels = labels
	m.input = img
	if m.panic {
		panic("classifier exploded")
	}
	return m.preds, m.err
}

func (m *mockImageClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockTextScorer is a test double for the TextScorer interface.
type mockTextScorer struct {
	mu    sync.Mutex
	score float64
	err   error
	panic bool
	calls int
	text  string
}

func (m *mockTextScorer) ScoreText(_ context.Context, text string) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.text = text
	if m.panic {
		panic("scorer exploded")
	}
	return m.score, m.err
}

func (m *mockTextScorer) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSentiment is a test double for the SentimentClassifier interface.
type mockSentiment struct {
	preds []Prediction
	err   error
	calls int
}

func (m *mockSentiment) ClassifySentiment(_ context.Context, _ string) ([]Prediction, error) {
	m.calls++
	return m.preds, m.err
}

// mockCompleter is a test double for the Completer interface.
type mockCompleter struct {
	response string
	err      error
	calls    int
	messages []Message
}

func (m *mockCompleter) Complete(_ context.Context, messages []Message) (string, error) {
	m.calls++
	m.messages = messages
	return m.response, m.err
}

func solidImage(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func makeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, solidImage(w, h, color.RGBA{R: 120, G: 90, B: 60, A: 255}), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}
	return buf.Bytes()
}

func makePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func ptr(v float64) *float64 { return &v }
