package cleanscore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/samber/lo"
)

// ImageLabels is the fixed candidate label set for zero-shot image classification.
var ImageLabels = []string{"clean", "dirty"}

// Label is the winning label of a binary clean/dirty classification.
type Label int

const (
	LabelClean Label = iota
	LabelDirty
)

func (l Label) String() string {
	if l == LabelDirty {
		return "dirty"
	}
	return "clean"
}

// ParseLabel maps a classifier label to a Label. Matching is case-insensitive.
func ParseLabel(s string) (Label, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clean":
		return LabelClean, true
	case "dirty":
		return LabelDirty, true
	default:
		return LabelClean, false
	}
}

// Classification pairs the winning label with its confidence.
type Classification struct {
	Label      Label
	Confidence float64
}

// UnitScore returns the dirtiness of the classification: c for dirty, 1-c for clean.
func (c Classification) UnitScore() float64 {
	conf := clampUnit(c.Confidence)
	if c.Label == LabelDirty {
		return conf
	}
	return 1 - conf
}

// TopClassification picks the highest-confidence prediction, whatever order
// the classifier returned them in.
func TopClassification(preds []Prediction) (Classification, error) {
	if len(preds) == 0 {
		return Classification{}, errors.New("classifier returned no predictions")
	}
	top := lo.MaxBy(preds, func(a, b Prediction) bool { return a.Score > b.Score })
	label, ok := ParseLabel(top.Label)
	if !ok {
		return Classification{}, fmt.Errorf("unexpected image label %q", top.Label)
	}
	return Classification{Label: label, Confidence: top.Score}, nil
}

// ScoreImage classifies img as clean or dirty and returns its unit score.
// Every failure is returned as a *ScoringError.
func (cfg *Config) ScoreImage(ctx context.Context, img *DecodedImage) (float64, error) {
	cfg.defaults()

	if cfg.ImageClassifier == nil {
		return 0, &ScoringError{Signal: SignalImage, Err: errors.New("no image classifier configured")}
	}

	input, err := img.Preview(cfg.PreviewSide)
	if err != nil {
		return 0, &ScoringError{Signal: SignalImage, Err: err}
	}

	preds, err := cfg.ImageClassifier.ClassifyImage(ctx, input, ImageLabels)
	if err != nil {
		return 0, &ScoringError{Signal: SignalImage, Err: err}
	}

	cls, err := TopClassification(preds)
	if err != nil {
		return 0, &ScoringError{Signal: SignalImage, Err: err}
	}

	slog.Debug("cleanscore: image classified",
		"source", img.Source, "label", cls.Label.String(), "confidence", cls.Confidence)
	return cls.UnitScore(), nil
}

// VisionPrompt is the instruction for LLM-based clean/dirty image classification.
const VisionPrompt = `You are a facility inspector reviewing a photo attached to a cleaning request.

Classify the pictured area. Answer ONLY with a JSON object:
{"label": "clean" | "dirty", "confidence": <number between 0.0 and 1.0>}

- dirty: litter, stains, spills, overflowing bins, dust, mould, clutter or damage needing cleaning.
- clean: the area looks tidy and needs no cleaning.

Answer:`

// VisionClassifier classifies images with a multimodal chat model.
// It implements ImageClassifier.
type VisionClassifier struct {
	Completer Completer
}

// ClassifyImage asks the model for a label and confidence over labels.
func (v *VisionClassifier) ClassifyImage(ctx context.Context, img ImageInput, labels []string) ([]Prediction, error) {
	if v.Completer == nil {
		return nil, errors.New("vision classifier has no completer")
	}
	resp, err := v.Completer.Complete(ctx, []Message{
		{Role: "user", Content: VisionPrompt, Images: []ImageInput{img}},
	})
	if err != nil {
		return nil, fmt.Errorf("vision completion: %w", err)
	}

	slog.Debug("cleanscore: vision result", "response", resp)
	pred, err := ParseVisionResponse(resp)
	if err != nil {
		return nil, err
	}
	if !lo.Contains(labels, pred.Label) {
		return nil, fmt.Errorf("vision label %q not in candidate set", pred.Label)
	}
	return []Prediction{pred}, nil
}

type visionAnswer struct {
	Label      string   `json:"label"`
	Confidence *float64 `json:"confidence"`
}

// ParseVisionResponse decodes a {"label","confidence"} answer, repairing
// malformed JSON first. A bare "clean"/"dirty" word is accepted with full
// confidence.
func ParseVisionResponse(resp string) (Prediction, error) {
	body := strings.TrimSpace(resp)
	if label, ok := ParseLabel(strings.Trim(body, `."'`)); ok {
		return Prediction{Label: label.String(), Score: 1}, nil
	}

	var ans visionAnswer
	if err := json.Unmarshal([]byte(body), &ans); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(body)
		if repairErr != nil {
			return Prediction{}, fmt.Errorf("unparseable vision response %q: %w", body, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &ans); err != nil {
			return Prediction{}, fmt.Errorf("unparseable vision response %q: %w", body, err)
		}
	}

	label, ok := ParseLabel(ans.Label)
	if !ok {
		return Prediction{}, fmt.Errorf("unexpected vision label %q", ans.Label)
	}
	if ans.Confidence == nil {
		return Prediction{}, fmt.Errorf("vision response %q has no confidence", body)
	}
	return Prediction{Label: label.String(), Score: clampUnit(*ans.Confidence)}, nil
}
