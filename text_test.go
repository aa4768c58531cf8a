package cleanscore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSentimentScorer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		preds   []Prediction
		err     error
		want    float64
		wantErr bool
	}{
		{
			name:  "negative is dirty",
			preds: []Prediction{{Label: "NEGATIVE", Score: 0.9}, {Label: "POSITIVE", Score: 0.1}},
			want:  0.9,
		},
		{
			name:  "positive is clean",
			preds: []Prediction{{Label: "POSITIVE", Score: 0.9}, {Label: "NEGATIVE", Score: 0.1}},
			want:  0.1,
		},
		{
			name:  "unordered lowercase",
			preds: []Prediction{{Label: "positive", Score: 0.2}, {Label: "negative", Score: 0.8}},
			want:  0.8,
		},
		{name: "no predictions", wantErr: true},
		{name: "unknown label", preds: []Prediction{{Label: "LABEL_1", Score: 0.9}}, wantErr: true},
		{name: "classifier error", err: errors.New("model loading"), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ms := &mockSentiment{preds: tc.preds, err: tc.err}
			got, err := (&SentimentScorer{Classifier: ms}).ScoreText(context.Background(), "Floor is filthy")
			if (err != nil) != tc.wantErr {
				t.Fatalf("ScoreText() error = %v, wantErr %v", err, tc.wantErr)
			}
			if tc.wantErr {
				return
			}
			if !approx(got, tc.want) {
				t.Errorf("ScoreText() = %v, want %v", got, tc.want)
			}
			if ms.calls != 1 {
				t.Errorf("classifier called %d times, want 1", ms.calls)
			}
		})
	}
}

func TestJudgeScorer(t *testing.T) {
	t.Parallel()

	mc := &mockCompleter{response: `{"score": 0.85}`}
	got, err := (&JudgeScorer{Completer: mc}).ScoreText(context.Background(), "Overflowing bin")
	if err != nil {
		t.Fatalf("ScoreText: %v", err)
	}
	if got != 0.85 {
		t.Errorf("ScoreText = %v, want 0.85", got)
	}
	if mc.calls != 1 {
		t.Fatalf("completer called %d times, want 1", mc.calls)
	}
	if len(mc.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(mc.messages))
	}
	if mc.messages[0].Role != "system" || mc.messages[0].Content != JudgeSystemPrompt {
		t.Errorf("system message = %+v", mc.messages[0])
	}
	if mc.messages[1].Role != "user" || !strings.Contains(mc.messages[1].Content, `Description: "Overflowing bin"`) {
		t.Errorf("user message = %q", mc.messages[1].Content)
	}
}

func TestJudgeScorerErrors(t *testing.T) {
	t.Parallel()

	_, err := (&JudgeScorer{Completer: &mockCompleter{response: "I refuse."}}).ScoreText(context.Background(), "x")
	if !errors.Is(err, ErrNoNumericScore) {
		t.Errorf("no number: error = %v, want ErrNoNumericScore", err)
	}
	if err != nil && !strings.Contains(err.Error(), "invalid response") {
		t.Errorf("no number: error = %q, want it to mention the invalid response", err)
	}

	if _, err := (&JudgeScorer{Completer: &mockCompleter{err: errors.New("503")}}).ScoreText(context.Background(), "x"); err == nil {
		t.Error("completer error: expected error")
	}

	if _, err := (&JudgeScorer{}).ScoreText(context.Background(), "x"); err == nil {
		t.Error("nil completer: expected error")
	}
}
