package cli

import (
	"fmt"
	"log/slog"

	"github.com/anatolykoptev/go-cleanscore"
	"github.com/anatolykoptev/go-cleanscore/internal/config"
	"github.com/anatolykoptev/go-cleanscore/internal/hfinference"
	"github.com/anatolykoptev/go-cleanscore/internal/httpx"
	"github.com/anatolykoptev/go-cleanscore/internal/llm"
	"github.com/anatolykoptev/go-cleanscore/internal/logging"
)

const logFieldMaxLen = 4096

// Build wires the backends selected by cfg into a scoring pipeline.
// Strategy selection happens here, once per process.
func Build(cfg config.Config) (*cleanscore.Config, error) {
	sc := &cleanscore.Config{
		HTTPClient:    httpx.NewClient(cfg.FetchTimeout, "", httpx.WithLogFieldMaxLen(logFieldMaxLen)),
		Weights:       cfg.FusionWeights(),
		FetchTimeout:  cfg.FetchTimeout,
		MaxImageBytes: cfg.MaxImageBytes,
		OnPanic: func(tag string, r any) {
			slog.Error("cleanscore: panic recovered", "tag", tag, "panic", r)
		},
		OnScore: func(ev cleanscore.ScoreEvent) {
			slog.Info("report scored",
				slog.String(logging.FieldImageRef, ev.ImageRef.String()),
				slog.String(logging.FieldFingerprint, ev.ImageFingerprint),
				slog.Float64(logging.FieldScore, ev.Score),
				slog.Int64(logging.FieldDurationMs, ev.Duration.Milliseconds()))
		},
	}

	hf := hfinference.New(hfinference.Config{
		BaseURL:    cfg.HuggingFace.BaseURL,
		ImageModel: cfg.HuggingFace.ImageModel,
		TextModel:  cfg.HuggingFace.TextModel,
		HTTPClient: httpx.NewClient(cfg.RequestTimeout, cfg.HuggingFace.Token, httpx.WithLogFieldMaxLen(logFieldMaxLen)),
	})

	switch cfg.ImageBackend {
	case config.BackendCLIP:
		sc.ImageClassifier = hf
	case config.BackendVision:
		sc.ImageClassifier = &cleanscore.VisionClassifier{Completer: newOpenRouter(cfg, cfg.OpenRouter.VisionModel)}
	default:
		return nil, fmt.Errorf("unknown image backend %q", cfg.ImageBackend)
	}

	switch cfg.TextStrategy {
	case config.StrategyJudge:
		sc.TextScorer = &cleanscore.JudgeScorer{Completer: newOpenRouter(cfg, cfg.OpenRouter.Model)}
	case config.StrategySentiment:
		sc.TextScorer = &cleanscore.SentimentScorer{Classifier: hf}
	default:
		return nil, fmt.Errorf("unknown text strategy %q", cfg.TextStrategy)
	}

	return sc, nil
}

func newOpenRouter(cfg config.Config, model string) *llm.Client {
	headers := map[string]string{"X-Title": "cleanscore"}
	if cfg.OpenRouter.Referer != "" {
		headers["HTTP-Referer"] = cfg.OpenRouter.Referer
	}
	return llm.New(llm.Config{
		BaseURL:    cfg.OpenRouter.BaseURL,
		Model:      model,
		Headers:    headers,
		HTTPClient: httpx.NewClient(cfg.RequestTimeout, cfg.OpenRouter.APIKey, httpx.WithLogFieldMaxLen(logFieldMaxLen)),
	})
}
