package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillsync/pkg/config"
)

var validateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Validate a skills.yaml configuration",
	Long: `Validate configuration. With a file argument, only that file is checked
for yaml well-formedness and schema validity; otherwise the fully merged
configuration (project, user, environment) is validated.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPresenter(cmd)

		var cfg *config.Config
		if len(args) == 1 {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				p.Error(err, "Failed to read file")
				os.Exit(1)
			}
			var doc map[string]interface{}
			if err := yaml.Unmarshal(raw, &doc); err != nil {
				p.Error(err, "Invalid yaml")
				os.Exit(1)
			}
			cfg, err = config.Load(args[0])
			if err != nil {
				p.Error(err, "Configuration is invalid")
				os.Exit(1)
			}
		} else {
			var err error
			cfg, err = loadConfig(cmd)
			if err != nil {
				p.Error(err, "Configuration is invalid")
				os.Exit(1)
			}
		}

		p.Success(fmt.Sprintf("Configuration is valid: %d source(s), %d skill(s), %d target(s)",
			len(cfg.Sources), len(cfg.Skills), len(cfg.Settings.TargetDirs)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
