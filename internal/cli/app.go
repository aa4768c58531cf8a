// Package cli implements the cleanscore command: two positional inputs in,
// one JSON line out, exit code 0 or 1.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	urfave "github.com/urfave/cli/v3"

	"github.com/anatolykoptev/go-cleanscore"
	"github.com/anatolykoptev/go-cleanscore/internal/config"
	"github.com/anatolykoptev/go-cleanscore/internal/logging"
)

var (
	version = "v0.0.1-default"
	commit  = ""
)

const (
	flagConfig       = "config"
	flagDebug        = "debug"
	flagLogLevel     = "log-level"
	flagTextStrategy = "text-strategy"
	flagImageBackend = "image-backend"
	flagTimeout      = "timeout"
)

// newFlags returns fresh flag values; urfave flags keep parse state, so
// they are never shared between runs.
func newFlags() []urfave.Flag {
	return []urfave.Flag{
		&urfave.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to a YAML config file (optional)",
			Sources: urfave.EnvVars("CLEANSCORE_CONFIG"),
		},
		&urfave.BoolFlag{
			Name:  flagDebug,
			Usage: "Prints verbose logs to stderr (optional, default: false)",
		},
		&urfave.StringFlag{
			Name:  flagLogLevel,
			Usage: "Log level [debug, info, warn, error]",
		},
		&urfave.StringFlag{
			Name:  flagTextStrategy,
			Usage: "Text scorer [judge, sentiment]",
		},
		&urfave.StringFlag{
			Name:  flagImageBackend,
			Usage: "Image classifier [clip, vision]",
		},
		&urfave.DurationFlag{
			Name:  flagTimeout,
			Usage: "Upper bound for the whole run",
		},
	}
}

// splitArgs separates leading flags from the positional inputs. Parsing
// stops at the first argument that is not a flag, or after "--": from there
// every argument is kept verbatim, including empty and dash-leading ones.
func splitArgs(args []string, flags []urfave.Flag) (flagArgs, positional []string) {
	if len(args) == 0 {
		return nil, nil
	}

	takesValue := make(map[string]bool)
	for _, f := range flags {
		if _, ok := f.(*urfave.BoolFlag); ok {
			continue
		}
		for _, name := range f.Names() {
			takesValue[name] = true
		}
	}

	flagArgs = []string{args[0]}
	for i := 1; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return flagArgs, args[i+1:]
		}
		if len(arg) < 2 || arg[0] != '-' {
			return flagArgs, args[i:]
		}

		flagArgs = append(flagArgs, arg)
		name := strings.TrimLeft(arg, "-")
		if !strings.Contains(name, "=") && takesValue[name] && i+1 < len(args) {
			i++
			flagArgs = append(flagArgs, args[i])
		}
	}
	return flagArgs, nil
}

// ScorerFactory builds the scoring pipeline from a validated configuration.
type ScorerFactory func(cfg config.Config) (*cleanscore.Config, error)

// App runs one scoring invocation.
type App struct {
	Stdout      io.Writer
	Stderr      io.Writer
	Environment map[string]string // nil = process environment and .env
	NewScorer   ScorerFactory     // nil = Build
}

// Run executes the command with os-level streams and returns the exit code.
func Run(ctx context.Context, args []string) int {
	app := &App{Stdout: os.Stdout, Stderr: os.Stderr}
	return app.Run(ctx, args)
}

// Run executes the command for args (args[0] is the program name) and returns
// the exit code. Unless help or version output was requested, exactly one JSON
// line is written to Stdout, whatever happens.
func (a *App) Run(ctx context.Context, args []string) (code int) {
	var (
		res     cleanscore.Result
		handled bool
	)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("unexpected failure", "panic", r)
			code = cleanscore.Failure(fmt.Errorf("unexpected failure: %v", r)).Report(a.Stdout)
		}
	}()

	flags := newFlags()
	flagArgs, positional := splitArgs(args, flags)
	cmd := a.newCommand(flags, func(ctx context.Context, cmd *urfave.Command) error {
		handled = true
		res = a.score(ctx, cmd, positional)
		return nil
	})

	if err := cmd.Run(ctx, flagArgs); err != nil {
		return cleanscore.Failure(err).Report(a.Stdout)
	}
	if !handled {
		return cleanscore.ExitSuccess
	}
	if res.Err != nil && !cleanscore.IsFatal(res.Err) {
		slog.Error("scoring failed", logging.Error(res.Err))
	}
	return res.Report(a.Stdout)
}

func (a *App) newCommand(flags []urfave.Flag, action urfave.ActionFunc) *urfave.Command {
	return &urfave.Command{
		Name:            "cleanscore",
		Version:         fmt.Sprintf("%s (commit: %s)", version, commit),
		Usage:           "Score a facility-issue report from a photo and a description",
		ArgsUsage:       "<image-path|image-url|none> <description>",
		HideHelpCommand: true,
		Writer:          a.Stderr,
		ErrWriter:       a.Stderr,
		Flags:           flags,
		Action:          action,
	}
}

// score runs the pre-flight checks in order (arguments, configuration,
// credentials) and only then builds and runs the scorers.
func (a *App) score(ctx context.Context, cmd *urfave.Command, positional []string) cleanscore.Result {
	in, err := cleanscore.ParseArgs(positional)
	if err != nil {
		return cleanscore.Failure(err)
	}

	cfg, err := config.Load(config.Options{
		File:        cmd.String(flagConfig),
		Environment: a.Environment,
	})
	if err != nil {
		return cleanscore.Failure(err)
	}
	applyFlags(cmd, &cfg)

	logger := logging.SetupWriter(a.Stderr, cfg.LogLevel, cmd.Bool(flagDebug))
	logger.Debug("starting",
		slog.String(logging.FieldAppName, cmd.Name),
		slog.String(logging.FieldAppVersion, version),
		slog.String(logging.FieldImageRef, in.Image.String()),
		slog.String("text_strategy", cfg.TextStrategy),
		slog.String("image_backend", cfg.ImageBackend))

	if err := cfg.Validate(); err != nil {
		return cleanscore.Failure(err)
	}
	if err := cfg.RequireCredentials(); err != nil {
		return cleanscore.Failure(err)
	}

	factory := a.NewScorer
	if factory == nil {
		factory = Build
	}
	scorer, err := factory(cfg)
	if err != nil {
		return cleanscore.Failure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	res := scorer.Invoke(ctx, positional)
	for _, adv := range res.Advisories {
		logger.Warn("signal degraded", slog.String(logging.FieldError, adv))
	}
	return res
}

func applyFlags(cmd *urfave.Command, cfg *config.Config) {
	if cmd.IsSet(flagTextStrategy) {
		cfg.TextStrategy = cmd.String(flagTextStrategy)
	}
	if cmd.IsSet(flagImageBackend) {
		cfg.ImageBackend = cmd.String(flagImageBackend)
	}
	if cmd.IsSet(flagTimeout) {
		cfg.Timeout = cmd.Duration(flagTimeout)
	}
	if cmd.IsSet(flagLogLevel) {
		cfg.LogLevel = cmd.String(flagLogLevel)
	}
}
