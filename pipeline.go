package cleanscore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// signalResult is the outcome of one signal: a unit score or nothing, plus
// advisories explaining why nothing.
type signalResult struct {
	score       *float64
	advisories  []string
	fingerprint string
}

// Invoke parses the positional inputs and scores the report. Argument errors
// fail fast before any scorer runs.
func (cfg *Config) Invoke(ctx context.Context, args []string) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			if cfg.OnPanic != nil {
				cfg.OnPanic("invoke", r)
			}
			res = Failure(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	in, err := ParseArgs(args)
	if err != nil {
		return Failure(err)
	}
	return cfg.Score(ctx, in)
}

// Score runs both signals concurrently and fuses whatever they produce.
//
// A failing signal never cancels or affects the other; its error is kept as
// an advisory. Only the absence of every usable signal fails the report.
func (cfg *Config) Score(ctx context.Context, in ScoreInput) Result {
	cfg.defaults()
	start := time.Now()

	var image, text signalResult
	var g errgroup.Group
	g.Go(func() error {
		image = cfg.imageSignal(ctx, in.Image)
		return nil
	})
	g.Go(func() error {
		text = cfg.textSignal(ctx, in)
		return nil
	})
	_ = g.Wait()

	advisories := append(append([]string(nil), image.advisories...), text.advisories...)

	var res Result
	final, err := cfg.Weights.Fuse(image.score, text.score)
	if err != nil {
		res = Failure(err)
	} else {
		res = Success(final)
	}
	res.Advisories = advisories

	slog.Debug("cleanscore: report scored",
		"image_ref", in.Image.String(), "image_score", scoreAttr(image.score), "text_score", scoreAttr(text.score),
		"score", res.Score, "advisories", len(advisories))

	if cfg.OnScore != nil {
		cfg.OnScore(ScoreEvent{
			ImageRef:         in.Image,
			ImageScore:       image.score,
			TextScore:        text.score,
			ImageFingerprint: image.fingerprint,
			Score:            res.Score,
			Err:              res.Err,
			Advisories:       advisories,
			Duration:         time.Since(start),
		})
	}
	return res
}

// imageSignal acquires and scores the image. Recovers from panics so a
// misbehaving classifier only loses this signal.
func (cfg *Config) imageSignal(ctx context.Context, ref ImageRef) (out signalResult) {
	defer func() {
		if r := recover(); r != nil {
			if cfg.OnPanic != nil {
				cfg.OnPanic("imageSignal", r)
			}
			out = degraded(&ScoringError{Signal: SignalImage, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if ref.Kind == RefAbsent {
		return signalResult{}
	}
	if cfg.ImageClassifier == nil {
		slog.Debug("cleanscore: no image classifier, skipping image", "ref", ref.String())
		return signalResult{}
	}

	img, err := cfg.Acquire(ctx, ref)
	if err != nil {
		return degraded(err)
	}
	if img == nil {
		return signalResult{}
	}

	score, err := cfg.ScoreImage(ctx, img)
	if err != nil {
		out = degraded(err)
		out.fingerprint = img.Fingerprint
		return out
	}
	return signalResult{score: &score, fingerprint: img.Fingerprint}
}

// textSignal scores a non-blank description.
func (cfg *Config) textSignal(ctx context.Context, in ScoreInput) (out signalResult) {
	defer func() {
		if r := recover(); r != nil {
			if cfg.OnPanic != nil {
				cfg.OnPanic("textSignal", r)
			}
			out = degraded(&ScoringError{Signal: SignalText, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if !in.HasDescription() {
		return signalResult{}
	}
	if cfg.TextScorer == nil {
		slog.Debug("cleanscore: no text scorer, skipping description")
		return signalResult{}
	}

	score, err := cfg.TextScorer.ScoreText(ctx, in.Description)
	if err != nil {
		return degraded(&ScoringError{Signal: SignalText, Err: err})
	}
	score = clampUnit(score)
	return signalResult{score: &score}
}

func degraded(err error) signalResult {
	slog.Warn("cleanscore: signal unavailable", "error", err.Error())
	return signalResult{advisories: []string{err.Error()}}
}

func scoreAttr(p *float64) any {
	if p == nil {
		return "absent"
	}
	return *p
}
