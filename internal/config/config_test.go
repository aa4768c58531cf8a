package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anatolykoptev/go-cleanscore"
	"github.com/anatolykoptev/go-cleanscore/internal/config"
	"github.com/anatolykoptev/go-cleanscore/internal/hfinference"
	"github.com/anatolykoptev/go-cleanscore/internal/llm"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, config.StrategyJudge, cfg.TextStrategy)
	assert.Equal(t, config.BackendCLIP, cfg.ImageBackend)
	assert.Equal(t, cleanscore.DefaultWeights, cfg.FusionWeights())
	assert.Equal(t, llm.DefaultBaseURL, cfg.OpenRouter.BaseURL)
	assert.Equal(t, hfinference.DefaultImageModel, cfg.HuggingFace.ImageModel)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
}

func TestLoadEnvironment(t *testing.T) {
	cfg, err := config.Load(config.Options{Environment: map[string]string{
		"CLEANSCORE_TEXT_STRATEGY": "sentiment",
		"CLEANSCORE_IMAGE_BACKEND": "vision",
		"CLEANSCORE_IMAGE_WEIGHT":  "0.6",
		"CLEANSCORE_TEXT_WEIGHT":   "0.4",
		"CLEANSCORE_TIMEOUT":       "5s",
		"OPENROUTER_API_KEY":       "sk-or-test",
		"OPENROUTER_VISION_MODEL":  "google/gemini-flash-1.5",
		"HF_TOKEN":                 "hf_test",
	}})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.StrategySentiment, cfg.TextStrategy)
	assert.Equal(t, config.BackendVision, cfg.ImageBackend)
	assert.Equal(t, cleanscore.LegacySentimentWeights, cfg.FusionWeights()) //nolint:staticcheck // legacy policy is still configurable
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "sk-or-test", cfg.OpenRouter.APIKey)
	assert.Equal(t, "google/gemini-flash-1.5", cfg.OpenRouter.VisionModel)
	assert.Equal(t, llm.DefaultModel, cfg.OpenRouter.Model, "unset variables keep defaults")
	assert.Equal(t, "hf_test", cfg.HuggingFace.Token)
}

func TestLoadFileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleanscore.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
text_strategy: sentiment
weights:
  image: 0.5
  text: 0.5
openrouter:
  model: from/file
  referer: https://facilities.example
timeout: 45s
log_level: debug
`), 0o600))

	cfg, err := config.Load(config.Options{
		File:        path,
		Environment: map[string]string{"OPENROUTER_MODEL": "from/env"},
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, config.StrategySentiment, cfg.TextStrategy)
	assert.Equal(t, cleanscore.Weights{Image: 0.5, Text: 0.5}, cfg.FusionWeights())
	assert.Equal(t, "from/env", cfg.OpenRouter.Model)
	assert.Equal(t, "https://facilities.example", cfg.OpenRouter.Referer)
	assert.Equal(t, 45*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.BackendCLIP, cfg.ImageBackend, "keys absent from the file keep defaults")
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("weights: [unterminated"), 0o600))

	testCases := []struct {
		name string
		opts config.Options
	}{
		{name: "missing file", opts: config.Options{File: filepath.Join(dir, "nope.yaml"), Environment: map[string]string{}}},
		{name: "malformed yaml", opts: config.Options{File: bad, Environment: map[string]string{}}},
		{name: "bad duration", opts: config.Options{Environment: map[string]string{"CLEANSCORE_TIMEOUT": "soon"}}},
		{name: "bad float", opts: config.Options{Environment: map[string]string{"CLEANSCORE_IMAGE_WEIGHT": "heavy"}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := config.Load(tc.opts)
			require.Error(t, err)
		})
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{name: "unknown strategy", mutate: func(c *config.Config) { c.TextStrategy = "magic" }},
		{name: "unknown backend", mutate: func(c *config.Config) { c.ImageBackend = "ocr" }},
		{name: "weights do not sum to one", mutate: func(c *config.Config) { c.Weights = config.Weights{Image: 0.5, Text: 0.6} }},
		{name: "weight out of range", mutate: func(c *config.Config) { c.Weights = config.Weights{Image: -1, Text: 2} }},
		{name: "zero timeout", mutate: func(c *config.Config) { c.Timeout = 0 }},
		{name: "bad base url", mutate: func(c *config.Config) { c.OpenRouter.BaseURL = "not a url" }},
		{name: "bad log level", mutate: func(c *config.Config) { c.LogLevel = "loud" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			require.Error(t, cfg.Validate())
		})
	}
}

func TestRequireCredentials(t *testing.T) {
	testCases := []struct {
		name     string
		strategy string
		backend  string
		key      string
		wantErr  bool
	}{
		{name: "judge without key", strategy: config.StrategyJudge, backend: config.BackendCLIP, wantErr: true},
		{name: "judge with key", strategy: config.StrategyJudge, backend: config.BackendCLIP, key: "k"},
		{name: "vision without key", strategy: config.StrategySentiment, backend: config.BackendVision, wantErr: true},
		{name: "local only", strategy: config.StrategySentiment, backend: config.BackendCLIP},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.TextStrategy, cfg.ImageBackend, cfg.OpenRouter.APIKey = tc.strategy, tc.backend, tc.key

			err := cfg.RequireCredentials()
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			var credErr *cleanscore.CredentialError
			require.ErrorAs(t, err, &credErr)
			assert.Equal(t, config.OpenRouterService, credErr.Service)
			assert.True(t, cleanscore.IsFatal(err))
			assert.Equal(t, "Missing OpenRouter API key", err.Error())
		})
	}
}
