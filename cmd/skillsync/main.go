// Command skillsync assembles named skills from GitHub repositories
// and local paths, composes them by precedence level, and installs
// them into one or more target directories.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/skillsync/pkg/assembler"
	"github.com/jingkaihe/skillsync/pkg/cache"
	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/fetcher"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/presenter"
)

func init() {
	viper.SetEnvPrefix("SKILLSYNC")
	viper.AutomaticEnv()
}

var rootCmd = &cobra.Command{
	Use:   "skillsync",
	Short: "Assemble and install composable agent skills",
	Long: `skillsync fetches skill directories from GitHub repositories and local
paths, composes them according to a default/user precedence scheme, and
installs the results into your configured target directories.`,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if level, _ := cmd.Flags().GetString("log-level"); level != "" {
			if err := logger.SetLogLevel(level); err != nil {
				return err
			}
		}
		if format, _ := cmd.Flags().GetString("log-format"); format != "" {
			logger.SetLogFormat(format)
		}
		return nil
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Help()
	},
}

func main() {
	rootCmd.PersistentFlags().String("config", "", "Path to an explicit skills.yaml (overrides discovery)")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text or json)")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress non-error output")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// newPresenter builds the presenter honoring the --quiet flag.
func newPresenter(cmd *cobra.Command) *presenter.Presenter {
	p := presenter.New()
	if quiet, _ := cmd.Flags().GetBool("quiet"); quiet {
		p.SetQuiet(true)
	}
	return p
}

// loadConfig reads configuration honoring the --config flag.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	explicit, _ := cmd.Flags().GetString("config")
	return config.Load(explicit)
}

// buildAssembler wires the production pipeline: a GitHub fetcher with
// the token from the environment, behind the TTL disk cache.
func buildAssembler(ctx context.Context, cfg *config.Config) (*assembler.Assembler, *cache.Cache, error) {
	cacheDir, err := config.ExpandPath(cfg.Settings.CacheDir)
	if err != nil {
		return nil, nil, err
	}

	gh := fetcher.NewGitHub(ctx, os.Getenv("GITHUB_TOKEN"))
	store, err := cache.New(cacheDir, cfg.Settings.CacheTTL, gh)
	if err != nil {
		return nil, nil, err
	}

	return assembler.New(store, cfg.Sources, cfg.Settings.DefaultBranch), store, nil
}
