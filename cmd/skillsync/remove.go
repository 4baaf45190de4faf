package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/assembler"
)

var removeCmd = &cobra.Command{
	Use:   "remove <skill-name>",
	Short: "Remove an installed skill",
	Long: `Remove a skill's directory from every target directory and delete its
registry entries. Fails if the skill is not installed anywhere.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPresenter(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			p.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		name := args[0]
		if err := assembler.Uninstall(cmd.Context(), name, cfg.Settings.TargetDirs); err != nil {
			p.Error(err, fmt.Sprintf("Failed to remove skill %q", name))
			os.Exit(1)
		}

		p.Success(fmt.Sprintf("Removed skill %q", name))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd)
}
