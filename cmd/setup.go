package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"milestones/internal/config"
	"milestones/internal/dependency"
	"milestones/internal/milestone"
	"milestones/pkg/logging"

	"github.com/spf13/cobra"
)

// environment bundles what a subcommand needs to talk to the configured store.
type environment struct {
	config  config.Config
	store   milestone.Store
	service *milestone.Service
}

func (e *environment) Close() {
	if err := e.store.Close(); err != nil {
		logging.Warn("CLI", "Error closing store: %v", err)
	}
}

// setup loads configuration, initializes logging and opens the store.
func setup(ctx context.Context, cmd *cobra.Command) (*environment, error) {
	// Until the configuration is known only warnings reach the user.
	logging.Init(logging.LevelWarn, logging.FormatText, cmd.ErrOrStderr())

	path := configPath
	if path == "" {
		var err error
		path, err = config.GetDefaultConfigPath()
		if err != nil {
			return nil, err
		}
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, errors.New(cfgErr.DetailedError())
		}
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Init(level, logging.Format(cfg.Log.Format), cmd.ErrOrStderr())

	store, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	svc, err := milestone.NewService(store, milestone.Options{
		MaxDependencies: cfg.Limits.MaxDependencies,
		MaxMilestones:   cfg.Limits.MaxMilestones,
		CacheProjects:   cfg.Cache.Projects,
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &environment{config: cfg, store: store, service: svc}, nil
}

func openStore(ctx context.Context, cfg config.StoreConfig) (milestone.Store, error) {
	switch cfg.Driver {
	case config.StoreDriverMemory:
		logging.Debug("CLI", "Using in-memory store")
		return milestone.NewMemoryStore(), nil
	case config.StoreDriverFile:
		logging.Debug("CLI", "Using file store at %s", cfg.Path)
		return milestone.NewFileStore(cfg.Path)
	case config.StoreDriverPostgres:
		logging.Debug("CLI", "Using postgres store")
		return milestone.NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

// requireProject fails when --project was not given.
func requireProject(cmd *cobra.Command) error {
	if !cmd.Flags().Changed("project") {
		return fmt.Errorf("--project is required")
	}
	return nil
}

// parseID parses a milestone id argument.
func parseID(arg string) (dependency.MilestoneID, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid milestone id %q", arg)
	}
	return dependency.MilestoneID(id), nil
}

// parseIDList parses a comma separated list of milestone ids. An empty string
// is an empty list, so "--deps ''" clears a milestone's dependencies.
func parseIDList(s string) ([]dependency.MilestoneID, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
	ids := make([]dependency.MilestoneID, 0, len(fields))
	for _, f := range fields {
		id, err := parseID(f)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// signalContext returns a context cancelled on Ctrl-C or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
