package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the remote content cache",
}

var cacheInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "List cache entries and their freshness",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			p.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		_, store, err := buildAssembler(cmd.Context(), cfg)
		if err != nil {
			p.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		entries, err := store.Entries()
		if err != nil {
			p.Error(err, "Failed to read cache")
			os.Exit(1)
		}
		if len(entries) == 0 {
			p.Info("Cache is empty")
			return nil
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SOURCE\tFETCHED\tSTATUS\tKEY")
		for _, entry := range entries {
			status := "fresh"
			if entry.Stale {
				status = "stale"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				entry.Source, entry.FetchedAt.Local().Format("2006-01-02 15:04"),
				status, entry.Key)
		}
		tw.Flush()
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all cached content",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		cfg, err := loadConfig(cmd)
		if err != nil {
			p.Error(err, "Failed to load configuration")
			os.Exit(1)
		}

		_, store, err := buildAssembler(cmd.Context(), cfg)
		if err != nil {
			p.Error(err, "Failed to initialize")
			os.Exit(1)
		}

		if err := store.Clear(); err != nil {
			p.Error(err, "Failed to clear cache")
			os.Exit(1)
		}

		p.Success("Cache cleared")
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheInfoCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}
