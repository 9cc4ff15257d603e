package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"jobboard-engine/internal/config"
	"jobboard-engine/internal/events"
	"jobboard-engine/internal/poll"
	"jobboard-engine/internal/runlock"
	"jobboard-engine/internal/secrets"
	"jobboard-engine/internal/store"
)

// loadConfig bootstraps and loads <data-dir>/config.yml, applies env
// overrides and validates. Warnings are logged; errors fail.
func loadConfig() (config.Config, string, error) {
	dataDir := strings.TrimSpace(dataDirFlag)
	if dataDir == "" {
		dataDir = os.Getenv("JOBBOARD_DATA_DIR")
	}
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return config.Config{}, "", err
	}

	path, err := config.EnsureUserConfig(dataDir)
	if err != nil {
		return config.Config{}, "", fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, path, fmt.Errorf("config load (%s): %w", path, err)
	}
	config.ApplyEnv(&cfg, os.Getenv)
	if cfg.App.DataDir == "" || dataDirFlag != "" {
		cfg.App.DataDir = dataDir
	}

	cfg, vr := config.NormalizeAndValidate(cfg)
	for _, w := range vr.Warnings {
		log.Printf("[config] level=warn msg=%q", w)
	}
	if !vr.OK() {
		return cfg, path, fmt.Errorf("invalid config %s: %w", path, vr)
	}
	return cfg, path, nil
}

func openStore(ctx context.Context, cfg config.Config) (store.JobStore, error) {
	st, err := store.Open(ctx, cfg.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return st, nil
}

func buildPoller(cfg config.Config, st store.JobStore, hub *events.Hub) (*poll.Poller, error) {
	runner, err := poll.BuildRunner(cfg, secrets.Load(), st, hub)
	if err != nil {
		return nil, err
	}
	lock, err := runlock.New(cfg.LockOptions())
	if err != nil {
		return nil, fmt.Errorf("run lock: %w", err)
	}
	for _, f := range runner.Fetchers {
		log.Printf("[engine] source=%s enabled", f.Name())
	}
	return poll.NewPoller(runner, lock, hub), nil
}
