package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	appconfig "github.com/doeshing/nlsh/internal/application/config"
	"github.com/doeshing/nlsh/internal/application/doctor"
	"github.com/doeshing/nlsh/internal/application/fallback"
	"github.com/doeshing/nlsh/internal/application/pipeline"
	"github.com/doeshing/nlsh/internal/application/prompt"
	"github.com/doeshing/nlsh/internal/domain"
	"github.com/doeshing/nlsh/internal/infrastructure/ai"
	"github.com/doeshing/nlsh/internal/infrastructure/config"
	contextcollector "github.com/doeshing/nlsh/internal/infrastructure/context"
	"github.com/doeshing/nlsh/internal/infrastructure/executor"
	"github.com/doeshing/nlsh/internal/infrastructure/history"
	"github.com/doeshing/nlsh/internal/infrastructure/security"
	"github.com/doeshing/nlsh/internal/pkg/logger"
	"github.com/doeshing/nlsh/internal/pkg/tracer"
	"github.com/doeshing/nlsh/internal/ports"
)

// Options are the process-level switches gathered by cmd/nlsh and the root command.
type Options struct {
	ConfigPath string
	Debug      bool
	Stdin      io.Reader
	Stdout     io.Writer
	Stderr     io.Writer
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config           domain.Config
	ConfigLoader     *config.FileLoader
	Shell            domain.ShellContext
	Classifier       *security.Classifier
	Backends         *ai.Factory
	Policy           *fallback.OrderedPolicy
	Executor         *executor.LocalExecutor
	ContextCollector ports.ContextCollector
	HistoryStore     ports.HistoryRepository
	DoctorService    *doctor.Service
	Logger           *logger.Logger

	closers []func() error
}

// UI holds the interactive adapters the CLI layer owns.
type UI struct {
	Prompter        ports.ConfirmationPrompter
	Observer        ports.TurnObserver
	Clipboard       ports.Clipboard
	CopyToClipboard bool
}

// BuildContainer constructs the dependency graph. A configuration that loads
// but fails validation is still returned so `config` and `doctor` can
// report on it; NewPipeline refuses to run with it.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}

	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	c := &Container{Config: cfg, ConfigLoader: cfgLoader}

	log, closeLog, err := logger.New(cfg.Logging, opts.Debug)
	if err != nil {
		return nil, err
	}
	c.Logger = log
	c.closers = append(c.closers, closeLog)

	shutdown, err := tracer.Setup(ctx, cfg.Tracing)
	if err != nil {
		log.Warn("tracing disabled", map[string]interface{}{"error": err.Error()})
	} else {
		c.closers = append(c.closers, func() error { return shutdown(context.Background()) })
	}

	classifier, err := security.Load(cfg.Safety.RulesFile)
	if err != nil {
		log.Warn("user safety rules ignored", map[string]interface{}{
			"path":  cfg.Safety.RulesFile,
			"error": err.Error(),
		})
		if classifier, err = security.Load(""); err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Classifier = classifier

	detector := contextcollector.NewShellDetector()
	c.Shell = detector.Detect(ctx, cfg)
	c.ContextCollector = contextcollector.NewBasicCollector()

	backendOpts := ai.OptionsFromConfig(cfg)
	c.Backends = ai.NewFactory(backendOpts, ai.NewHTTPClient(backendOpts), log)
	c.Policy = fallback.NewOrderedPolicy(cfg.PreferenceOrder())
	c.Executor = executor.NewLocalExecutor(c.Shell).WithStreams(opts.Stdin, opts.Stdout, opts.Stderr)

	if cfg.History.Enabled {
		store, err := history.Open(ctx, cfg.History, log)
		if err != nil {
			log.Warn("history disabled", map[string]interface{}{"error": err.Error()})
		} else {
			c.HistoryStore = store
			c.closers = append(c.closers, store.Close)
		}
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider: cfgLoader,
		Classifier:     classifier,
		ShellDetector:  detector,
		Backends:       c.Backends,
		History:        c.HistoryStore,
		HasCredentials: ai.HasCredentials,
	}

	log.Debug("container ready", map[string]interface{}{
		"config":  cfgLoader.Path(),
		"shell":   string(c.Shell.Family),
		"binary":  c.Shell.Binary,
		"order":   cfg.PreferenceOrder(),
		"history": c.HistoryStore != nil,
	})
	return c, nil
}

// NewPipeline builds the turn controller around the CLI's adapters.
func (c *Container) NewPipeline(ui UI) (*pipeline.Controller, error) {
	if err := appconfig.Validate(c.Config); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrConfigLoad, c.ConfigLoader.Path(), err)
	}

	settings := pipeline.SettingsFromConfig(c.Config)
	settings.CopyToClipboard = ui.CopyToClipboard

	return pipeline.New(pipeline.Dependencies{
		Config:     c.Config,
		Shell:      c.Shell,
		Backends:   c.Backends,
		Policy:     c.Policy,
		Gate:       fallback.GateFromConfig(c.Config),
		Prompts:    prompt.NewBuilder(prompt.OptionsFromConfig(c.Config)),
		Classifier: c.Classifier,
		Executor:   c.Executor,
		Prompter:   ui.Prompter,
		Collector:  c.ContextCollector,
		Observer:   ui.Observer,
		History:    c.HistoryStore,
		Clipboard:  ui.Clipboard,
		Logger:     c.Logger,
	}, settings)
}

// Close releases the history store, flushes traces and closes the log file.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
