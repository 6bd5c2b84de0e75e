package app

import (
	"context"
	"errors"
	"time"

	"github.com/doeshing/cmdgen/internal/application/doctor"
	"github.com/doeshing/cmdgen/internal/application/execution"
	"github.com/doeshing/cmdgen/internal/application/generation"
	"github.com/doeshing/cmdgen/internal/application/prompt"
	"github.com/doeshing/cmdgen/internal/domain"
	"github.com/doeshing/cmdgen/internal/infrastructure/ai"
	"github.com/doeshing/cmdgen/internal/infrastructure/config"
	contextcollector "github.com/doeshing/cmdgen/internal/infrastructure/context"
	"github.com/doeshing/cmdgen/internal/infrastructure/executor"
	"github.com/doeshing/cmdgen/internal/infrastructure/history"
	"github.com/doeshing/cmdgen/internal/infrastructure/security"
	"github.com/doeshing/cmdgen/internal/pkg/logger"
	"github.com/doeshing/cmdgen/internal/ports"
)

// Overrides replace configuration values for a single run. Zero values keep
// the configured setting.
type Overrides struct {
	Backend     string
	Model       string
	Temperature *float64
	MaxRetries  int
	Timeout     time.Duration
	HistoryFile string
}

// Options controls how the container is assembled.
type Options struct {
	ConfigPath string
	LogLevel   string
	LogFile    string
	Overrides  Overrides
	Prompter   ports.ConfirmationPrompter
	// BackendFactory replaces the SDK-backed factory, mainly for tests.
	BackendFactory ports.BackendFactory
}

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigLoader   *config.FileLoader
	ConfigProvider ports.ConfigProvider
	Logger         *logger.Logger
	Validator      *security.Validator
	HistoryStore   ports.HistoryStore
	Pipeline       *generation.Pipeline
	Gate           *execution.Gate
	DoctorService  *doctor.Service

	// BackendErr is set when the configured backend could not be built.
	// Commands that never generate can still run.
	BackendErr error
	Backend    *ai.RetryClient

	closers []func() error
}

// BuildContainer constructs the dependency graph.
func BuildContainer(ctx context.Context, opts Options) (*Container, error) {
	cfgLoader := config.NewFileLoader(opts.ConfigPath)
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}
	cfg = applyOverrides(cfg, opts.Overrides)

	log, err := logger.New(logger.Options{Level: opts.LogLevel, File: opts.LogFile})
	if err != nil {
		return nil, err
	}
	c := &Container{
		Config:         cfg,
		ConfigLoader:   cfgLoader,
		ConfigProvider: overriddenConfig{loader: cfgLoader, overrides: opts.Overrides},
		Logger:         log,
		closers:        []func() error{log.Close},
	}

	policy, err := security.LoadPolicy(cfg.Security.PolicyFile)
	if err != nil {
		log.Warn("policy file unusable, using built-in policy", map[string]interface{}{
			"path":  cfg.Security.PolicyFile,
			"error": err.Error(),
		})
		if policy, err = security.DefaultPolicy(); err != nil {
			c.Close()
			return nil, err
		}
	}
	c.Validator = security.NewValidator(policy)
	c.HistoryStore = c.buildHistory(ctx, cfg)

	factory := opts.BackendFactory
	if factory == nil {
		factory = ai.NewFactory()
	}
	backend, err := factory.ForConfig(cfg)
	if err != nil {
		c.BackendErr = err
		log.Debug("backend unavailable", map[string]interface{}{"error": err.Error()})
	} else {
		c.Backend = ai.NewRetryClient(backend, ai.RetryPolicy{
			MaxRetries: cfg.GetMaxRetries(),
			Delay:      cfg.GetRetryDelay(),
			Timeout:    cfg.GetBackendTimeout(),
		}, log)
	}

	collector := contextcollector.NewOSCollector(cfg.GetExecutionShell())
	c.Pipeline = &generation.Pipeline{
		Composer:    prompt.MustDefault(),
		Validator:   c.Validator,
		History:     c.HistoryStore,
		Context:     collector,
		Logger:      log,
		Temperature: cfg.Backend.Temperature,
		MaxTokens:   cfg.GetMaxTokens(),
	}
	if c.Backend != nil {
		c.Pipeline.Backend = c.Backend
	}

	c.Gate = &execution.Gate{
		Validator:           c.Validator,
		Runner:              executor.NewLocalExecutor(cfg.GetExecutionShell(), cfg.GetExecutionTimeout()),
		Prompter:            opts.Prompter,
		History:             c.HistoryStore,
		Logger:              log,
		RequireConfirmation: cfg.ShouldConfirmBeforeExecution(),
	}

	c.DoctorService = &doctor.Service{
		ConfigProvider:   c.ConfigProvider,
		BackendFactory:   factory,
		Validator:        c.Validator,
		History:          c.HistoryStore,
		ContextCollector: collector,
	}
	return c, nil
}

// Generator returns the pipeline, or the reason no backend is available.
func (c *Container) Generator() (*generation.Pipeline, error) {
	if c.BackendErr != nil {
		return nil, c.BackendErr
	}
	return c.Pipeline, nil
}

// Close releases resources held by adapters.
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

// buildHistory falls back to the JSONL store when SQLite cannot be opened.
func (c *Container) buildHistory(ctx context.Context, cfg domain.Config) ports.HistoryStore {
	if cfg.GetHistoryBackend() == domain.HistoryBackendSQLite {
		store, err := history.NewSQLiteStore(ctx, cfg.History.Path)
		if err == nil {
			c.closers = append(c.closers, store.Close)
			return store
		}
		c.Logger.Warn("sqlite history unavailable, falling back to jsonl", map[string]interface{}{
			"error": err.Error(),
		})
		return history.NewFileStore("", cfg.History.Lock, c.Logger)
	}
	return history.NewFileStore(cfg.History.Path, cfg.History.Lock, c.Logger)
}

func applyOverrides(cfg domain.Config, o Overrides) domain.Config {
	if o.Backend != "" {
		if o.Backend != cfg.Backend.Name {
			// the configured model and endpoint belong to the other backend
			cfg.Backend.Model = ""
			cfg.Backend.Endpoint = ""
			cfg.Backend.AuthEnvVar = ""
		}
		cfg.Backend.Name = o.Backend
	}
	if o.Model != "" {
		cfg.Backend.Model = o.Model
	}
	if o.Temperature != nil {
		cfg.Backend.Temperature = *o.Temperature
	}
	if o.MaxRetries > 0 {
		cfg.Generation.MaxRetries = o.MaxRetries
	}
	if o.Timeout > 0 {
		cfg.Generation.TimeoutSeconds = int(o.Timeout / time.Second)
		if cfg.Generation.TimeoutSeconds < 1 {
			cfg.Generation.TimeoutSeconds = 1
		}
	}
	if o.HistoryFile != "" {
		cfg.History.Path = o.HistoryFile
	}
	return cfg
}

// overriddenConfig lets doctor see the same settings the run uses.
type overriddenConfig struct {
	loader    *config.FileLoader
	overrides Overrides
}

func (o overriddenConfig) Load(ctx context.Context) (domain.Config, error) {
	cfg, err := o.loader.Load(ctx)
	if err != nil {
		return cfg, err
	}
	return applyOverrides(cfg, o.overrides), nil
}
