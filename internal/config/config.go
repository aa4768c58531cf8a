// Package config loads the scorer configuration from defaults, an optional
// YAML file, a .env file and the process environment, in that order.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/anatolykoptev/go-cleanscore"
	"github.com/anatolykoptev/go-cleanscore/internal/hfinference"
	"github.com/anatolykoptev/go-cleanscore/internal/llm"
)

// Text scoring strategies.
const (
	StrategyJudge     = "judge"
	StrategySentiment = "sentiment"
)

// Image classification backends.
const (
	BackendCLIP   = "clip"
	BackendVision = "vision"
)

// OpenRouterService names the judge credential in error payloads.
const OpenRouterService = "OpenRouter"

// Config is the full runtime configuration. Load fills it from defaults, an
// optional YAML file and the environment; struct tags drive all three.
type Config struct {
	TextStrategy string  `yaml:"text_strategy" env:"CLEANSCORE_TEXT_STRATEGY" validate:"oneof=judge sentiment"`
	ImageBackend string  `yaml:"image_backend" env:"CLEANSCORE_IMAGE_BACKEND" validate:"oneof=clip vision"`
	Weights      Weights `yaml:"weights"`

	OpenRouter  OpenRouter  `yaml:"openrouter"`
	HuggingFace HuggingFace `yaml:"huggingface"`

	FetchTimeout   time.Duration `yaml:"fetch_timeout" env:"CLEANSCORE_FETCH_TIMEOUT" validate:"gt=0"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"CLEANSCORE_REQUEST_TIMEOUT" validate:"gt=0"`
	Timeout        time.Duration `yaml:"timeout" env:"CLEANSCORE_TIMEOUT" validate:"gt=0"`
	MaxImageBytes  int64         `yaml:"max_image_bytes" env:"CLEANSCORE_MAX_IMAGE_BYTES" validate:"gt=0"`

	LogLevel string `yaml:"log_level" env:"CLEANSCORE_LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
}

// Weights are the fusion weights; Validate requires them to sum to 1.
type Weights struct {
	Image float64 `yaml:"image" env:"CLEANSCORE_IMAGE_WEIGHT" validate:"gte=0,lte=1"`
	Text  float64 `yaml:"text" env:"CLEANSCORE_TEXT_WEIGHT" validate:"gte=0,lte=1"`
}

// OpenRouter configures the judge and vision chat backends.
type OpenRouter struct {
	APIKey      string `yaml:"api_key" env:"OPENROUTER_API_KEY"`
	BaseURL     string `yaml:"base_url" env:"OPENROUTER_BASE_URL" validate:"url"`
	Model       string `yaml:"model" env:"OPENROUTER_MODEL" validate:"required"`
	VisionModel string `yaml:"vision_model" env:"OPENROUTER_VISION_MODEL" validate:"required"`
	Referer     string `yaml:"referer" env:"OPENROUTER_REFERER"`
}

// HuggingFace configures the zero-shot image and sentiment backends.
type HuggingFace struct {
	Token      string `yaml:"token" env:"HF_TOKEN"`
	BaseURL    string `yaml:"base_url" env:"HF_BASE_URL" validate:"url"`
	ImageModel string `yaml:"image_model" env:"HF_IMAGE_MODEL" validate:"required"`
	TextModel  string `yaml:"text_model" env:"HF_TEXT_MODEL" validate:"required"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		TextStrategy: StrategyJudge,
		ImageBackend: BackendCLIP,
		Weights: Weights{
			Image: cleanscore.DefaultWeights.Image,
			Text:  cleanscore.DefaultWeights.Text,
		},
		OpenRouter: OpenRouter{
			BaseURL:     llm.DefaultBaseURL,
			Model:       llm.DefaultModel,
			VisionModel: llm.DefaultModel,
		},
		HuggingFace: HuggingFace{
			BaseURL:    hfinference.DefaultBaseURL,
			ImageModel: hfinference.DefaultImageModel,
			TextModel:  hfinference.DefaultTextModel,
		},
		FetchTimeout:   cleanscore.DefaultFetchTimeout,
		RequestTimeout: 30 * time.Second,
		Timeout:        60 * time.Second,
		MaxImageBytes:  cleanscore.DefaultMaxImageBytes,
	}
}

// Options controls where Load reads from.
type Options struct {
	File        string            // optional YAML file; "" = none
	EnvFiles    []string          // .env files; nil = ".env" if present
	Environment map[string]string // nil = process environment
}

// Load builds the configuration: defaults, then the YAML file, then .env
// files, then the environment. It does not validate.
func Load(opts Options) (Config, error) {
	cfg := Default()

	if opts.File != "" {
		b, err := os.ReadFile(opts.File)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", opts.File, err)
		}
	}

	if opts.Environment == nil {
		// A missing .env is normal; godotenv never overrides variables already set.
		_ = godotenv.Load(opts.EnvFiles...)
	}

	envOpts := env.Options{}
	if opts.Environment != nil {
		envOpts.Environment = opts.Environment
	}
	if err := env.ParseWithOptions(&cfg, envOpts); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return cfg, nil
}

//nolint:gochecknoglobals // skip
var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and that the fusion weights sum to 1.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := c.FusionWeights().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// FusionWeights returns the configured weights as cleanscore.Weights.
func (c Config) FusionWeights() cleanscore.Weights {
	return cleanscore.Weights{Image: c.Weights.Image, Text: c.Weights.Text}
}

// NeedsOpenRouter reports whether any selected component calls OpenRouter.
func (c Config) NeedsOpenRouter() bool {
	return c.TextStrategy == StrategyJudge || c.ImageBackend == BackendVision
}

// RequireCredentials fails with a *cleanscore.CredentialError when a selected
// component needs a key that is not set.
func (c Config) RequireCredentials() error {
	if c.NeedsOpenRouter() && c.OpenRouter.APIKey == "" {
		return &cleanscore.CredentialError{Service: OpenRouterService}
	}
	return nil
}

