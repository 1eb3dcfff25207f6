package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/trellisplot/trellis/pkg/buildinfo"
	"github.com/trellisplot/trellis/pkg/cache"
	"github.com/trellisplot/trellis/pkg/config"
)

// Execute runs the trellis CLI and returns an error if any command fails.
//
// The root command wires up all subcommands (facet, clustermap, serve,
// cache), configures logging based on the --verbose flag, and loads the
// config file named by --config. The logger and config are attached to the
// command context and accessible via loggerFromContext and
// configFromContext.
func Execute() error {
	var (
		verbose    bool
		configPath string
	)

	root := &cobra.Command{
		Use:          "trellis",
		Short:        "Trellis builds faceted plot grids and clustered heatmaps",
		Long:         `Trellis is a statistical graphics tool: it partitions tidy datasets into grids of panels and renders hierarchically clustered heatmaps with dendrogram margins.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default trellis.toml if present)")

	root.AddCommand(newFacetCmd())
	root.AddCommand(newClustermapCmd())
	root.AddCommand(newServeCmd())
	root.AddCommand(newCacheCmd())

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return root.ExecuteContext(ctx)
}

// configKey is the context key for the loaded configuration.
const configKey ctxKey = 1

func withConfig(ctx context.Context, cfg config.Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// configFromContext retrieves the loaded config from ctx, falling back to
// the built-in defaults.
func configFromContext(ctx context.Context) config.Config {
	if cfg, ok := ctx.Value(configKey).(config.Config); ok {
		return cfg
	}
	return config.Default()
}

// openCache builds the cache backend selected by the config. The caller
// owns the returned cache and must Close it.
func openCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	switch cfg.Cache.Backend {
	case "", "file":
		dir := cfg.Cache.Dir
		if dir == "" {
			var err error
			dir, err = defaultCacheDir()
			if err != nil {
				return nil, err
			}
		}
		return cache.NewFileCache(dir)
	case "redis":
		return cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		})
	case "none":
		return cache.NewNullCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache backend: %s (must be 'file', 'redis', or 'none')", cfg.Cache.Backend)
	}
}
