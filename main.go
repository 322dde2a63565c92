package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/3leaps/jxfetch/internal/config"
	"github.com/3leaps/jxfetch/internal/host/listing"
	"github.com/3leaps/jxfetch/internal/model"
)

var version = "dev"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// usageError marks bad flags or arguments.
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

// app carries per-invocation state; run builds a fresh one every call.
type app struct {
	stdout, stderr io.Writer
	log            *logrus.Logger

	configFile string
	logLevel   string
}

func run(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, log: newLogger(stderr)}

	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		var ue usageError
		if errors.As(err, &ue) {
			return exitUsage
		}
		return exitError
	}
	return exitOK
}

func newLogger(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// settings loads configuration with the flags of cmd that were set on the
// command line applied on top. flagKeys maps flag names to config keys.
func (a *app) settings(cmd *cobra.Command, flagKeys map[string]string) (model.Settings, error) {
	overrides := map[string]any{}
	if cmd.Flags().Changed("log-level") {
		overrides[config.KeyLogLevel] = a.logLevel
	}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		val := f.Value.String()
		if f.Annotations[pathAnnotation] != nil {
			abs, err := filepath.Abs(val)
			if err != nil {
				return model.Settings{}, fmt.Errorf("resolve --%s: %w", name, err)
			}
			val = abs
		}
		overrides[key] = val
	}

	opts := []config.Option{config.WithOverrides(overrides)}
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	cfg, err := config.Load(opts...)
	if err != nil {
		return model.Settings{}, err
	}
	s, err := cfg.Settings()
	if err != nil {
		return model.Settings{}, err
	}

	level, err := logrus.ParseLevel(s.LogLevel)
	if err != nil {
		return model.Settings{}, err
	}
	a.log.SetLevel(level)
	if cfg.File() != "" {
		a.log.WithField("file", cfg.File()).Debug("Loaded project config")
	}
	return s, nil
}

func (a *app) listingClient(s model.Settings) *listing.Client {
	ua := s.UserAgent
	if ua == "" {
		ua = listing.UserAgent(version)
	}
	return listing.NewClient(listing.Options{
		ConnectTimeout: s.ConnectTimeout,
		ReadTimeout:    s.ReadTimeout,
		UserAgent:      ua,
	})
}
