package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/abhisek/kioku/internal/app"
	"github.com/abhisek/kioku/internal/catalog"
	"github.com/abhisek/kioku/internal/config"
	"github.com/abhisek/kioku/internal/critique"
	"github.com/abhisek/kioku/internal/engine"
	"github.com/abhisek/kioku/internal/llm"
	"github.com/abhisek/kioku/internal/store"
)

// env bundles what a command runs against.
type env struct {
	cfg   config.Config
	store *store.Store
	eng   *engine.Engine
}

func (e *env) Close() error {
	var errs []error
	if e.eng != nil {
		errs = append(errs, e.eng.Close())
	}
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	return errors.Join(errs...)
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	return config.Load(path)
}

// openStore opens the database without loading learner state.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func loadCatalog(cmd *cobra.Command, cfg config.Config) (*catalog.Catalog, error) {
	path, _ := cmd.Flags().GetString("catalog")
	if path == "" {
		path = cfg.Catalog
	}
	if path == "" {
		return catalog.Default(), nil
	}
	c, err := catalog.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}

// openEnv opens the store and rehydrates the engine. The LLM provider is
// optional: without one, critiques fall back to offline feedback.
func openEnv(cmd *cobra.Command) (*env, error) {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cmd, cfg)
	if err != nil {
		return nil, err
	}

	dbPath, err := resolveDBPath(cmd, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	e := &env{cfg: cfg, store: st}

	events := st.EventRepo()
	logger := slog.Default()

	llmCfg := cfg.LLMSettings()
	provider, err := llm.NewProvider(ctx, llmCfg, events, logger)
	if err != nil {
		logger.Warn("LLM provider not configured; critiques use offline feedback", "err", err)
		provider = nil
	}
	critCfg := critique.DefaultConfig()
	if llmCfg.Timeout > 0 {
		critCfg.Timeout = llmCfg.Timeout
	}

	e.eng, err = engine.Load(ctx, engine.Options{
		KV:          st.KV(),
		Events:      events,
		Backups:     st.BackupRepo(),
		Catalog:     cat,
		Provider:    provider,
		Critique:    critCfg,
		BackupsKept: cfg.Study.BackupsKept,
		Logger:      logger,
	})
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	return e, nil
}

// withEnv runs fn against a freshly opened env and closes it afterwards.
func withEnv(cmd *cobra.Command, fn func(*env) error) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	runErr := fn(e)
	if err := e.Close(); err != nil && runErr == nil {
		return fmt.Errorf("close: %w", err)
	}
	return runErr
}

// runApp launches the TUI. A non-nil req starts or resumes that session
// first, so the TUI opens straight into it.
func runApp(cmd *cobra.Command, req *engine.StudyRequest) error {
	return withEnv(cmd, func(e *env) error {
		opts := app.Options{
			Shuffle: e.cfg.Study.Shuffle,
			Reflect: e.cfg.Study.Reflect,
		}
		if f := cmd.Flags().Lookup("reflect"); f != nil && f.Changed {
			opts.Reflect, _ = cmd.Flags().GetBool("reflect")
		}
		if req != nil {
			if f := cmd.Flags().Lookup("shuffle"); f == nil || !f.Changed {
				req.Shuffle = opts.Shuffle
			}
			if _, err := e.eng.Begin(cmd.Context(), *req); err != nil {
				return studyError(req.Mode, err)
			}
		}
		return app.Run(e.eng, opts)
	})
}
