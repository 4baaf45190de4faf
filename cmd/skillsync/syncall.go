package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/assembler"
	"github.com/jingkaihe/skillsync/pkg/config"
)

var syncAllCmd = &cobra.Command{
	Use:   "sync-all",
	Short: "Sync every tracked configuration",
	Long: `Assemble and install the skills of every tracked configuration file.
Useful for multi-project setups: register each project's skills.yaml
with 'skillsync config add' and refresh them all in one run.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		paths := loadTracked(cmd).List()
		if len(paths) == 0 {
			p.Warning("No tracked configs found")
			p.Info("Use 'skillsync config add <path>' to track one")
			return nil
		}

		forceRefresh, _ := cmd.Flags().GetBool("force-refresh")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		p.Info(fmt.Sprintf("Syncing %d tracked config(s)", len(paths)))

		failedConfigs := 0
		for _, cfgPath := range paths {
			if _, err := os.Stat(cfgPath); err != nil {
				p.Warning("Config not found, skipping: " + cfgPath)
				continue
			}

			p.Section(cfgPath)
			cfg, err := config.Load(cfgPath)
			if err != nil {
				p.Error(err, "Failed to load configuration")
				failedConfigs++
				continue
			}
			if len(cfg.Skills) == 0 {
				p.Info("No skills configured, nothing to do")
				continue
			}

			asm, _, err := buildAssembler(cmd.Context(), cfg)
			if err != nil {
				p.Error(err, "Failed to initialize")
				failedConfigs++
				continue
			}

			results := asm.Sync(cmd.Context(), cfg.Skills, cfg.Settings.TargetDirs, assembler.SyncOptions{
				ForceRefresh: forceRefresh,
				DryRun:       dryRun,
			})
			if reportSyncResults(p, cfg, results, dryRun) > 0 {
				failedConfigs++
			}
		}

		if failedConfigs > 0 {
			p.Error(errors.Errorf("%d config(s) failed", failedConfigs), "Sync incomplete")
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	syncAllCmd.Flags().Bool("force-refresh", false, "Bypass the cache and fetch all remote sources fresh")
	syncAllCmd.Flags().Bool("dry-run", false, "Report what would change without writing anything")
	rootCmd.AddCommand(syncAllCmd)
}
