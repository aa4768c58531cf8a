package cleanscore

import (
	"errors"
	"math"
	"testing"
)

func TestFuse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		weights Weights
		image   *float64
		text    *float64
		want    float64
		wantErr error
	}{
		{name: "both signals", weights: DefaultWeights, image: ptr(0.5), text: ptr(0.5), want: 50},
		{name: "weighted mix", weights: DefaultWeights, image: ptr(0.9), text: ptr(0.2), want: 41},
		{name: "image dirty text clean", weights: DefaultWeights, image: ptr(1), text: ptr(0), want: 30},
		{name: "image only", weights: DefaultWeights, image: ptr(0.8), want: 80},
		{name: "text only", weights: DefaultWeights, text: ptr(0.25), want: 25},
		{name: "single signal ignores weights", weights: Weights{Image: 0.1, Text: 0.9}, image: ptr(0.8), want: 80},
		{name: "legacy weights", weights: LegacySentimentWeights, image: ptr(0.9), text: ptr(0.2), want: 62},
		{name: "out of range clamped", weights: DefaultWeights, image: ptr(1.7), text: ptr(-0.3), want: 30},
		{name: "NaN treated as zero", weights: DefaultWeights, text: ptr(math.NaN()), want: 0},
		{name: "no signal", weights: DefaultWeights, wantErr: ErrNoSignal},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := tc.weights.Fuse(tc.image, tc.text)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("Fuse() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fuse() unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("Fuse() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFuseRange(t *testing.T) {
	t.Parallel()

	for _, i := range []float64{0, 0.1, 0.33, 0.5, 0.77, 1} {
		for _, x := range []float64{0, 0.2, 0.49, 0.5, 0.91, 1} {
			got, err := DefaultWeights.Fuse(ptr(i), ptr(x))
			if err != nil {
				t.Fatalf("Fuse(%v, %v): %v", i, x, err)
			}
			if got < 0 || got > 100 {
				t.Errorf("Fuse(%v, %v) = %v, out of [0,100]", i, x, got)
			}
		}
	}
}

func TestRound2(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   float64
		want float64
	}{
		{in: 49.995, want: 49.99}, // binary value is just below the half
		{in: 0.125, want: 0.12},   // exact half, to even
		{in: 0.375, want: 0.38},   // exact half, to even
		{in: 2.675, want: 2.67},
		{in: 12.3456, want: 12.35},
		{in: 80.00000000000001, want: 80},
		{in: 100, want: 100},
		{in: 0, want: 0},
	}

	for _, tc := range tests {
		if got := Round2(tc.in); got != tc.want {
			t.Errorf("Round2(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestWeightsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		w       Weights
		wantErr bool
	}{
		{name: "default", w: DefaultWeights},
		{name: "legacy", w: LegacySentimentWeights},
		{name: "all image", w: Weights{Image: 1, Text: 0}},
		{name: "sum below one", w: Weights{Image: 0.3, Text: 0.6}, wantErr: true},
		{name: "negative", w: Weights{Image: -0.5, Text: 1.5}, wantErr: true},
		{name: "zero", w: Weights{}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			err := tc.w.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
