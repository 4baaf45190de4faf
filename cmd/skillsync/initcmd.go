package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jingkaihe/skillsync/pkg/config"
)

const starterConfig = `version: "1.0"

settings:
  target_dirs:
    - .claude/skills
  cache_dir: ~/.cache/skillsync
  default_branch: main
  cache_ttl: 24h

sources:
  # example:
  #   type: github
  #   repo: myorg/skills
  #   path: skills

skills:
  # Simple skill from a named source:
  # - name: code-review
  #   source: example
  #
  # Composed skill with user overrides:
  # - name: deploy
  #   description: Deployment runbook with local overrides
  #   compose:
  #     - source: example
  #       skill: deploy
  #       level: default
  #     - path: ./skills/deploy-overrides
  #       level: user
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a starter skills.yaml",
	RunE: func(cmd *cobra.Command, _ []string) error {
		p := newPresenter(cmd)

		if _, err := os.Stat(config.ConfigFileName); err == nil {
			p.Error(errors.Errorf("%s already exists", config.ConfigFileName), "Refusing to overwrite")
			os.Exit(1)
		}

		if err := os.WriteFile(config.ConfigFileName, []byte(starterConfig), 0o644); err != nil {
			p.Error(err, "Failed to write config")
			os.Exit(1)
		}

		p.Success("Created " + config.ConfigFileName)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
