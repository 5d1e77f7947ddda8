package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/reportflow"
	"github.com/aretw0/reportflow/internal/logging"
	"github.com/aretw0/reportflow/pkg/adapters/file"
	"github.com/aretw0/reportflow/pkg/adapters/loam"
	"github.com/aretw0/reportflow/pkg/adapters/process"
	redisadapter "github.com/aretw0/reportflow/pkg/adapters/redis"
	"github.com/aretw0/reportflow/pkg/catalog"
	"github.com/aretw0/reportflow/pkg/domain"
	"github.com/aretw0/reportflow/pkg/i18n"
	"github.com/aretw0/reportflow/pkg/observability"
	"github.com/aretw0/reportflow/pkg/persistence/middleware"
	"github.com/aretw0/reportflow/pkg/ports"
	"github.com/aretw0/reportflow/pkg/session"
	"github.com/aretw0/reportflow/pkg/submission"
	"github.com/spf13/cobra"
)

// config is the resolved set of persistent flags.
type config struct {
	LogLevel    string
	CatalogFile string
	CatalogDir  string
	Messages    string
	RedisAddr   string
	SessionsDir string
	BackendURL  string
	SubmitExec  string

	// EncryptionKey is a base64 AES-256 key sealing stored sessions.
	EncryptionKey string
}

func loadConfig(cmd *cobra.Command) (*config, error) {
	flags := cmd.Flags()
	cfg := &config{}
	for name, dst := range map[string]*string{
		"log-level":      &cfg.LogLevel,
		"catalog":        &cfg.CatalogFile,
		"catalog-dir":    &cfg.CatalogDir,
		"messages":       &cfg.Messages,
		"redis-addr":     &cfg.RedisAddr,
		"sessions-dir":   &cfg.SessionsDir,
		"backend-url":    &cfg.BackendURL,
		"submit-exec":    &cfg.SubmitExec,
		"encryption-key": &cfg.EncryptionKey,
	} {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, err
		}
		*dst = v
	}
	if cfg.CatalogFile != "" && cfg.CatalogDir != "" {
		return nil, fmt.Errorf("--catalog and --catalog-dir are mutually exclusive")
	}
	if cfg.RedisAddr != "" && cfg.SessionsDir != "" {
		return nil, fmt.Errorf("--redis-addr and --sessions-dir are mutually exclusive")
	}
	if cfg.BackendURL != "" && cfg.SubmitExec != "" {
		return nil, fmt.Errorf("--backend-url and --submit-exec are mutually exclusive")
	}
	return cfg, nil
}

func (c *config) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.New(level), nil
}

func (c *config) catalog(ctx context.Context) (*domain.Catalog, error) {
	switch {
	case c.CatalogFile != "":
		return catalog.LoadFile(c.CatalogFile)
	case c.CatalogDir != "":
		loader, err := loam.Open(c.CatalogDir)
		if err != nil {
			return nil, err
		}
		return loader.LoadCatalog(ctx)
	default:
		return catalog.Default(), nil
	}
}

func (c *config) bundle() (*i18n.Bundle, error) {
	b := i18n.Default()
	if c.Messages == "" {
		return b, nil
	}
	f, err := os.Open(c.Messages)
	if err != nil {
		return nil, fmt.Errorf("failed to open messages: %w", err)
	}
	defer f.Close()
	if err := b.Merge(f); err != nil {
		return nil, fmt.Errorf("failed to load messages %s: %w", c.Messages, err)
	}
	return b, nil
}

// store returns the configured session store, or nil for the in-memory
// default, plus a lock shared across processes when Redis is used.
func (c *config) store() (ports.StateStore, ports.DistributedLocker, func(), error) {
	var store ports.StateStore
	var locker ports.DistributedLocker
	cleanup := func() {}

	switch {
	case c.RedisAddr != "":
		s := redisadapter.New(c.RedisAddr, "", 0)
		store, locker, cleanup = s, redisadapter.NewLocker(s.Client(), ""), func() { _ = s.Close() }
	case c.SessionsDir != "":
		store = file.New(c.SessionsDir)
	default:
		return nil, nil, cleanup, nil
	}

	if c.EncryptionKey != "" {
		key, err := middleware.ParseKey(c.EncryptionKey)
		if err != nil {
			cleanup()
			return nil, nil, nil, fmt.Errorf("invalid encryption key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			cleanup()
			return nil, nil, nil, err
		}
		store = middleware.Chain(store, mw)
	}
	return store, locker, cleanup, nil
}

// backend returns where reports are delivered, or nil to log them.
func (c *config) backend() (ports.Submitter, error) {
	switch {
	case c.BackendURL != "":
		return submission.NewHTTPSubmitter(c.BackendURL), nil
	case c.SubmitExec != "":
		pc, err := process.LoadConfig(c.SubmitExec)
		if err != nil {
			return nil, err
		}
		return process.NewSubmitter(pc), nil
	default:
		return nil, nil
	}
}

// app holds what every serving command needs.
type app struct {
	cfg        *config
	logger     *slog.Logger
	bundle     *i18n.Bundle
	engine     *reportflow.Engine
	dispatcher *submission.Dispatcher
	cleanup    func()
}

// Close waits for in-flight deliveries and releases the store.
func (a *app) Close() {
	if a.dispatcher != nil {
		a.dispatcher.Wait()
	}
	a.cleanup()
}

// newApp builds the engine from the persistent flags. hooks run after the
// logging hooks.
func newApp(cmd *cobra.Command, hooks domain.LifecycleHooks, extra ...reportflow.Option) (*app, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}
	cat, err := cfg.catalog(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	bundle, err := cfg.bundle()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger, bundle: bundle}
	opts := []reportflow.Option{
		reportflow.WithCatalog(cat),
		reportflow.WithLogger(logger),
		reportflow.WithLifecycleHooks(observability.LogHooks(logger).Merge(hooks)),
	}

	store, locker, cleanup, err := cfg.store()
	if err != nil {
		return nil, err
	}
	a.cleanup = cleanup
	if store != nil {
		mopts := []session.Option{session.WithLogger(logger)}
		if locker != nil {
			mopts = append(mopts, session.WithLocker(locker))
		}
		opts = append(opts, reportflow.WithSessionManager(session.NewManager(store, mopts...)))
	}

	backend, err := cfg.backend()
	if err != nil {
		cleanup()
		return nil, err
	}
	if backend != nil {
		a.dispatcher = submission.NewDispatcher(backend, submission.WithLogger(logger))
		opts = append(opts, reportflow.WithSubmitter(a.dispatcher))
	}

	engine, err := reportflow.New(append(opts, extra...)...)
	if err != nil {
		cleanup()
		return nil, err
	}
	a.engine = engine
	return a, nil
}
