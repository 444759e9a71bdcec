package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/minbump/pkg/buildinfo"
	"github.com/matzehuels/minbump/pkg/cache"
	"github.com/matzehuels/minbump/pkg/integrations/npm"
	"github.com/matzehuels/minbump/pkg/resolve"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "minbump"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config Config

	configFile string
	logFormat  string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: DefaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetLogFormat switches the logger between text, json and logfmt output.
func (c *CLI) SetLogFormat(name string) error {
	f, err := parseLogFormat(name)
	if err != nil {
		return err
	}
	c.Logger.SetFormatter(f)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "minbump finds the smallest upgrade that lifts a transitive npm dependency",
		Long: `minbump answers one question for npm projects: to get a transitive
dependency up to a required version, what is the lowest version of each
direct dependency that pulls it in at or above that version?

It walks npm registry metadata, searches each dependent's release history,
and reports either a version or "no favourable outcome".`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.SetLogFormat(c.logFormat); err != nil {
				return err
			}
			c.registerTraceHooks()
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default ~/.config/minbump/config.toml)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatText, "log output: text, json or logfmt")
	completeFixed(root, "log-format", logFormatText, logFormatJSON, logFormatLogfmt)

	root.AddCommand(c.updateCommand())
	root.AddCommand(c.closureCommand())
	root.AddCommand(c.versionsCommand())
	root.AddCommand(c.dependentsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, unknown, err := LoadConfig(c.configFile)
	if err != nil {
		return err
	}
	for _, key := range unknown {
		c.Logger.Warn("unknown config key", "key", key)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Session Factory
// =============================================================================

// registryOpts holds the flags shared by commands that talk to the registry.
type registryOpts struct {
	noCache     bool
	refresh     bool
	concurrency int
	longLived   bool // session outlives one command; retry failed fetches
}

func (o *registryOpts) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the registry response cache")
	cmd.Flags().BoolVar(&o.refresh, "refresh", false, "bypass cached registry responses")
	cmd.Flags().IntVar(&o.concurrency, "concurrency", 0, "max concurrent resolutions (0 = config or unbounded)")
}

// newSession builds a resolver session over the configured npm registry.
// The returned close function releases the cache backend.
func (c *CLI) newSession(ctx context.Context, opts registryOpts, progress resolve.Progress) (*resolve.Session, func(), error) {
	store, err := c.openCache(ctx, opts.noCache)
	if err != nil {
		return nil, nil, err
	}

	client := c.newNPMClient(store)
	client.Refresh = opts.refresh

	concurrency := c.Config.MaxConcurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}

	session := resolve.NewSession(client, resolve.Options{
		MaxConcurrency: concurrency,
		Progress:       progress,
		Logger:         func(msg string, args ...any) { c.Logger.Debugf(msg, args...) },
		KeepErrors:     !opts.longLived,
	})
	closeFn := func() {
		if err := store.Close(); err != nil {
			c.Logger.Warn("close cache", "err", err)
		}
	}
	return session, closeFn, nil
}

func (c *CLI) newNPMClient(store cache.Cache) *npm.Client {
	client := npm.NewClient(store, c.Config.CacheTTL.Duration).WithBaseURL(c.Config.Registry)
	if c.Config.Retries > 0 {
		client.WithRetry(c.Config.Retries, c.Config.RetryDelay.Duration)
	}
	c.Logger.Debug("registry client", "url", client.BaseURL(), "retries", c.Config.Retries)
	return client
}

// openCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching rather than failing the command.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache || c.Config.CacheBackend == cache.BackendNone {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil && (c.Config.CacheBackend == "" || c.Config.CacheBackend == cache.BackendFile) {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	store, err := cache.Open(ctx, c.Config.cacheConfig(dir))
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", c.Config.CacheBackend, err)
	}
	return store, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/minbump/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
