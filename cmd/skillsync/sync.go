package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/assembler"
	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/presenter"
)

var syncCmd = &cobra.Command{
	Use:   "sync [skill...]",
	Short: "Assemble and install configured skills",
	Long: `Assemble every skill from the configuration (or only the named ones)
and install the results into all target directories.

Examples:
  skillsync sync
  skillsync sync my-skill other-skill
  skillsync sync --force-refresh
  skillsync sync --dry-run`,
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPresenter(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			p.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		specs, err := selectSkills(cfg, args)
		if err != nil {
			p.Error(err, "Unknown skill")
			os.Exit(1)
		}
		if len(specs) == 0 {
			p.Info("No skills configured, nothing to do")
			return nil
		}

		asm, _, err := buildAssembler(cmd.Context(), cfg)
		if err != nil {
			p.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		forceRefresh, _ := cmd.Flags().GetBool("force-refresh")
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		results := asm.Sync(cmd.Context(), specs, cfg.Settings.TargetDirs, assembler.SyncOptions{
			ForceRefresh: forceRefresh,
			DryRun:       dryRun,
		})

		failed := reportSyncResults(p, cfg, results, dryRun)

		if failed > 0 {
			p.Error(errors.Errorf("%d of %d skill(s) failed", failed, len(results)), "Sync incomplete")
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	syncCmd.Flags().Bool("force-refresh", false, "Bypass the cache and fetch all remote sources fresh")
	syncCmd.Flags().Bool("dry-run", false, "Report what would change without writing anything")
	rootCmd.AddCommand(syncCmd)
}

// selectSkills returns all configured specs, or only the named subset
// when args are given.
func selectSkills(cfg *config.Config, names []string) ([]config.SkillSpec, error) {
	if len(names) == 0 {
		return cfg.Skills, nil
	}

	byName := make(map[string]config.SkillSpec, len(cfg.Skills))
	for _, spec := range cfg.Skills {
		byName[spec.Name] = spec
	}

	specs := make([]config.SkillSpec, 0, len(names))
	for _, name := range names {
		spec, ok := byName[name]
		if !ok {
			return nil, errors.Errorf("skill %q is not defined in the configuration", name)
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

// reportSyncResults prints the per-skill outcomes of a sync batch and
// returns the number of failed skills.
func reportSyncResults(p *presenter.Presenter, cfg *config.Config, results []assembler.SkillResult, dryRun bool) int {
	failed := 0
	for _, result := range results {
		if result.Err != nil {
			failed++
			p.Error(result.Err, fmt.Sprintf("Skill %q", result.Name))
			continue
		}
		if dryRun {
			reportDiff(p, result)
			continue
		}
		p.Success(fmt.Sprintf("Installed skill %q to %d target(s)", result.Name, len(cfg.Settings.TargetDirs)))
	}
	return failed
}

func reportDiff(p *presenter.Presenter, result assembler.SkillResult) {
	p.Section(fmt.Sprintf("Skill %q (dry run)", result.Name))
	for _, diff := range result.Diffs {
		if !diff.Changed() {
			p.Info(fmt.Sprintf("  %s: up to date", diff.Target))
			continue
		}
		p.Info(fmt.Sprintf("  %s:", diff.Target))
		for _, entry := range diff.Entries {
			if entry.Status == assembler.StatusUnchanged {
				continue
			}
			p.Info(fmt.Sprintf("    %-9s %s", entry.Status, entry.Path))
			if entry.Diff != "" {
				p.Info(entry.Diff)
			}
		}
	}
}
