package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := version.Get()
		if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
			raw, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				newPresenter(cmd).Error(err, "Failed to encode version")
				os.Exit(1)
			}
			fmt.Println(string(raw))
			return nil
		}
		fmt.Println(info.String())
		return nil
	},
}

func init() {
	versionCmd.Flags().Bool("json", false, "Print version information as json")
	rootCmd.AddCommand(versionCmd)
}
