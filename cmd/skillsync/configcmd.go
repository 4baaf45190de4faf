package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage tracked configuration files",
	Long: `Track configuration files across projects. Tracked configs are synced
together by 'skillsync sync-all'.`,
}

// loadTracked opens the user-level tracked-configs list, exiting on
// the (unlikely) failure to locate the home directory.
func loadTracked(cmd *cobra.Command) *config.TrackedConfigs {
	p := newPresenter(cmd)
	path, err := config.DefaultTrackedConfigsPath()
	if err != nil {
		p.Error(err, "Failed to locate tracked configs")
		os.Exit(1)
	}
	return config.LoadTrackedConfigs(path)
}

var configAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Track a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPresenter(cmd)

		if _, err := os.Stat(args[0]); err != nil {
			p.Error(err, "Config file not found")
			os.Exit(1)
		}

		tracked := loadTracked(cmd)
		added, err := tracked.Add(args[0])
		if err != nil {
			p.Error(err, "Failed to track config")
			os.Exit(1)
		}
		if !added {
			p.Warning("Config already tracked: " + args[0])
			return nil
		}
		if err := tracked.Save(); err != nil {
			p.Error(err, "Failed to save tracked configs")
			os.Exit(1)
		}

		p.Success("Added config to tracked list: " + args[0])
		p.Info(fmt.Sprintf("Total tracked configs: %d", len(tracked.List())))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked configuration files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		paths := loadTracked(cmd).List()
		if len(paths) == 0 {
			p.Info("No tracked configs")
			p.Info("Use 'skillsync config add <path>' to track one")
			return nil
		}

		p.Section(fmt.Sprintf("Tracked configs (%d)", len(paths)))
		for _, path := range paths {
			if _, err := os.Stat(path); err != nil {
				p.Warning(path + " (not found)")
				continue
			}
			p.Info(path)
		}
		return nil
	},
}

var configRemoveCmd = &cobra.Command{
	Use:   "remove <path>",
	Short: "Untrack a configuration file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPresenter(cmd)

		tracked := loadTracked(cmd)
		removed, err := tracked.Remove(args[0])
		if err != nil {
			p.Error(err, "Failed to untrack config")
			os.Exit(1)
		}
		if !removed {
			p.Warning("Config not tracked: " + args[0])
			return nil
		}
		if err := tracked.Save(); err != nil {
			p.Error(err, "Failed to save tracked configs")
			os.Exit(1)
		}

		p.Success("Removed config from tracked list: " + args[0])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configAddCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configRemoveCmd)
	rootCmd.AddCommand(configCmd)
}
