package cleanscore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/samber/lo"
)

// Sentiment is the winning label of a binary sentiment classification.
type Sentiment int

const (
	SentimentPositive Sentiment = iota
	SentimentNegative
)

// ParseSentiment maps a classifier label (POSITIVE/NEGATIVE, any case) to a Sentiment.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "POSITIVE":
		return SentimentPositive, true
	case "NEGATIVE":
		return SentimentNegative, true
	default:
		return SentimentPositive, false
	}
}

// SentimentUnitScore treats negative sentiment as dirtiness: c for NEGATIVE,
// 1-c for POSITIVE.
func SentimentUnitScore(s Sentiment, confidence float64) float64 {
	c := clampUnit(confidence)
	if s == SentimentNegative {
		return c
	}
	return 1 - c
}

// SentimentScorer scores text with a binary sentiment classifier.
// It is a coarse proxy for urgency, not a calibrated model.
type SentimentScorer struct {
	Classifier SentimentClassifier
}

// ScoreText implements TextScorer.
func (s *SentimentScorer) ScoreText(ctx context.Context, text string) (float64, error) {
	if s.Classifier == nil {
		return 0, errors.New("sentiment scorer has no classifier")
	}
	preds, err := s.Classifier.ClassifySentiment(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("sentiment classification: %w", err)
	}
	if len(preds) == 0 {
		return 0, errors.New("sentiment classifier returned no predictions")
	}
	top := lo.MaxBy(preds, func(a, b Prediction) bool { return a.Score > b.Score })
	sentiment, ok := ParseSentiment(top.Label)
	if !ok {
		return 0, fmt.Errorf("unexpected sentiment label %q", top.Label)
	}
	slog.Debug("cleanscore: sentiment classified", "label", top.Label, "confidence", top.Score)
	return SentimentUnitScore(sentiment, top.Score), nil
}

// JudgeSystemPrompt is the system turn sent to the remote judge.
const JudgeSystemPrompt = "You are an accurate cleanliness assessment assistant."

// JudgePrompt is the user turn template; %s is replaced by the raw description.
const JudgePrompt = `You are a cleanliness evaluator. Based on the following facility issue description,
give a cleanliness or urgency score between 0.0 (very clean or minor issue)
and 1.0 (extremely dirty or urgent). Consider both hygiene and urgency level.
Respond ONLY with a JSON object like: {"score": <number>}

Description: "%s"`

// JudgeScorer asks a remote chat model for a direct 0.0-1.0 score.
type JudgeScorer struct {
	Completer Completer
}

// ScoreText implements TextScorer.
func (j *JudgeScorer) ScoreText(ctx context.Context, text string) (float64, error) {
	if j.Completer == nil {
		return 0, errors.New("judge scorer has no completer")
	}
	resp, err := j.Completer.Complete(ctx, []Message{
		{Role: "system", Content: JudgeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf(JudgePrompt, text)},
	})
	if err != nil {
		return 0, fmt.Errorf("judge completion: %w", err)
	}

	slog.Debug("cleanscore: judge result", "response", resp)
	score, err := ExtractScore(resp)
	if err != nil {
		return 0, fmt.Errorf("invalid response %q: %w", strings.TrimSpace(resp), err)
	}
	return score, nil
}
