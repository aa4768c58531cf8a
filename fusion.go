package cleanscore

import (
	"fmt"
	"math"
	"strconv"

	"github.com/samber/lo"
)

const weightSumTolerance = 1e-9

// Weights are the fixed fusion weights applied when both signals are present.
type Weights struct {
	Image float64 `yaml:"image"`
	Text  float64 `yaml:"text"`
}

// DefaultWeights is the canonical policy: the description carries more weight
// than the photo.
var DefaultWeights = Weights{Image: 0.3, Text: 0.7}

// LegacySentimentWeights favoured the photo over the sentiment-classified description.
//
// Deprecated: kept for reproducing scores of the retired sentiment deployment;
// use DefaultWeights.
var LegacySentimentWeights = Weights{Image: 0.6, Text: 0.4}

// Validate checks that both weights are in [0,1] and sum to 1.
func (w Weights) Validate() error {
	if w.Image < 0 || w.Image > 1 || w.Text < 0 || w.Text > 1 {
		return fmt.Errorf("weights must be in [0,1], got image=%v text=%v", w.Image, w.Text)
	}
	if math.Abs(w.Image+w.Text-1) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1, got %v", w.Image+w.Text)
	}
	return nil
}

// Fuse combines the available unit scores into the final 0-100 score.
// A nil score means the signal is absent. Both absent yields ErrNoSignal.
func (w Weights) Fuse(image, text *float64) (float64, error) {
	var unit float64
	switch {
	case image != nil && text != nil:
		unit = w.Image*clampUnit(*image) + w.Text*clampUnit(*text)
	case image != nil:
		unit = clampUnit(*image)
	case text != nil:
		unit = clampUnit(*text)
	default:
		return 0, ErrNoSignal
	}
	return Round2(unit * 100), nil
}

// Round2 rounds x to two decimals, half to even on the exact binary value of
// x. 49.995 is stored as 49.99499999... and therefore becomes 49.99.
func Round2(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return lo.Clamp(v, 0, 1)
}
