// Command postflow generates platform-optimized social media content
// through a three-stage LLM pipeline, either as a one-shot CLI run or
// behind an HTTP server with live progress over WebSocket.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/randalmurphal/postflow/pkg/postflow"
	"github.com/randalmurphal/postflow/pkg/postflow/agent"
	"github.com/randalmurphal/postflow/pkg/postflow/api"
	"github.com/randalmurphal/postflow/pkg/postflow/artifact"
	"github.com/randalmurphal/postflow/pkg/postflow/config"
	"github.com/randalmurphal/postflow/pkg/postflow/history"
)

// Options is the root command. Struct tags are interpreted by
// github.com/jessevdk/go-flags.
type Options struct {
	Config string `short:"f" long:"config" description:"config YAML/JSON path"`

	Run   *RunCmd   `command:"run" description:"Generate content for one topic and print the result"`
	Serve *ServeCmd `command:"serve" description:"Start the HTTP server"`
}

// RunCmd executes a single pipeline run from the command line.
type RunCmd struct {
	opts *Options

	Topic    string `short:"t" long:"topic" required:"true" description:"topic to research and write about"`
	Platform string `short:"p" long:"platform" default:"general" description:"target platform (twitter, linkedin, blog, general)"`
	Tone     string `long:"tone" default:"informative" description:"content tone (professional, casual, informative, engaging)"`
}

// ServeCmd starts the HTTP API.
type ServeCmd struct {
	opts *Options

	Listen string `short:"l" long:"listen" description:"listen address (overrides config)"`
}

func main() {
	opts := &Options{}
	opts.Run = &RunCmd{opts: opts}
	opts.Serve = &ServeCmd{opts: opts}

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.Parse(); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Println(err)
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective configuration for a command.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.FromEnv(), nil
	}
	return config.FromFile(path)
}

// newLogger builds the process logger from config.
func newLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// buildPipeline wires the OpenAI capabilities, the artifact store and
// the pipeline itself from config.
func buildPipeline(cfg config.Config, logger *slog.Logger) (*postflow.Pipeline, *artifact.Store, error) {
	var clientOpts []agent.OpenAIOption
	if cfg.OpenAI.BaseURL != "" {
		clientOpts = append(clientOpts, agent.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	if cfg.OpenAI.Model != "" {
		clientOpts = append(clientOpts, agent.WithTextModel(cfg.OpenAI.Model))
	}
	if cfg.OpenAI.ImageModel != "" {
		clientOpts = append(clientOpts, agent.WithImageModel(cfg.OpenAI.ImageModel))
	}
	client, err := agent.NewOpenAI(cfg.OpenAI.APIKey, clientOpts...)
	if err != nil {
		return nil, nil, err
	}

	store, err := artifact.NewStore(cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("artifact store: %w", err)
	}

	pipeline, err := postflow.New(
		agent.NewResearch(client),
		agent.NewContent(client),
		agent.NewImage(client, client, store),
		postflow.WithLogger(logger),
		postflow.WithMetrics(cfg.Metrics),
		postflow.WithTracing(cfg.Tracing),
	)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, store, nil
}

// Execute implements flags.Commander for one-shot generation.
func (c *RunCmd) Execute(_ []string) error {
	cfg, err := loadConfig(c.opts.Config)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	pipeline, _, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	platform := postflow.Platform(c.Platform)
	tone := postflow.Tone(c.Tone)
	if !platform.Valid() {
		return fmt.Errorf("unsupported platform: %q", c.Platform)
	}
	if !tone.Valid() {
		return fmt.Errorf("unsupported tone: %q", c.Tone)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, runErr := pipeline.Run(ctx, c.Topic, platform, tone,
		postflow.WithRunNotifier(progressPrinter{}),
	)
	if st != nil {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			return err
		}
	}
	return runErr
}

// progressPrinter echoes stage transitions to stderr during CLI runs.
type progressPrinter struct{}

func (progressPrinter) Notify(_ context.Context, stage postflow.Stage, status postflow.Status, elapsed time.Duration) {
	fmt.Fprintf(os.Stderr, "[%6.2fs] %s: %s\n", elapsed.Seconds(), stage, status)
}

// Execute implements flags.Commander for the HTTP server.
func (c *ServeCmd) Execute(_ []string) error {
	cfg, err := loadConfig(c.opts.Config)
	if err != nil {
		return err
	}
	if c.Listen != "" {
		cfg.Listen = c.Listen
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg.Log)

	pipeline, store, err := buildPipeline(cfg, logger)
	if err != nil {
		return err
	}

	var runs history.Store
	if cfg.HistoryDB != "" {
		sqlStore, err := history.NewSQLiteStore(cfg.HistoryDB)
		if err != nil {
			return fmt.Errorf("history store: %w", err)
		}
		runs = sqlStore
	} else {
		runs = history.NewMemoryStore()
	}
	defer runs.Close()

	server, err := api.NewServer(pipeline,
		api.WithHistory(runs),
		api.WithImagesDir(store.ImagesDir()),
		api.WithServerLogger(logger),
	)
	if err != nil {
		return err
	}
	defer server.Close()

	httpServer := &http.Server{
		Addr:              cfg.Listen,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 3 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.Listen))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
