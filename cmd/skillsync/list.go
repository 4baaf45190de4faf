package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/registry"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed skills",
	Long:  `List the skills recorded in each target directory's registry.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			p.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		total := 0
		for _, target := range cfg.Settings.TargetDirs {
			targetDir, err := config.ExpandPath(target)
			if err != nil {
				p.Error(err, fmt.Sprintf("Target %s", target))
				continue
			}

			entries := registry.NewStore(targetDir).List()
			if len(entries) == 0 {
				continue
			}
			total += len(entries)

			p.Section(target)
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tDESCRIPTION\tCOMPOSED FROM\tINSTALLED")
			for _, entry := range entries {
				description := entry.Description
				if len(description) > 60 {
					description = description[:57] + "..."
				}
				composedFrom := strings.Join(entry.ComposedFrom, ", ")
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
					entry.Name, description, composedFrom,
					entry.InstalledAt.Format("2006-01-02 15:04"))
			}
			tw.Flush()
		}

		if total == 0 {
			p.Info("No skills installed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
