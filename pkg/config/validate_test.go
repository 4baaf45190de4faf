package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Version: "1.0",
		Settings: Settings{
			TargetDirs:    []string{".claude/skills"},
			CacheDir:      "~/.cache/skillsync",
			DefaultBranch: "main",
			CacheTTL:      24 * time.Hour,
		},
		Sources: map[string]Source{
			"acme": {Type: "github", Repo: "acme/skills", Path: "skills"},
		},
		Skills: []SkillSpec{
			{Name: "deploy", Source: "acme"},
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateVersion(t *testing.T) {
	cfg := validConfig()
	cfg.Version = "2.0"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported config version")

	cfg.Version = "1.3"
	assert.NoError(t, cfg.Validate())
}

func TestValidateSettings(t *testing.T) {
	t.Run("empty target dirs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Settings.TargetDirs = nil
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "target_dirs")
	})

	t.Run("negative ttl", func(t *testing.T) {
		cfg := validConfig()
		cfg.Settings.CacheTTL = -time.Hour
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache_ttl")
	})
}

func TestValidateSources(t *testing.T) {
	t.Run("bad type", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources["bad"] = Source{Type: "gitlab", Repo: "a/b"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported type")
	})

	t.Run("malformed repo", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sources["bad"] = Source{Type: "github", Repo: "just-a-name"}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "owner/repo")
	})
}

func TestValidateSkills(t *testing.T) {
	t.Run("duplicate names", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = append(cfg.Skills, SkillSpec{Name: "deploy", Path: "./x"})
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate skill name")
	})

	t.Run("empty name", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{Path: "./x"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty name")
	})

	t.Run("no reference", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{Name: "x"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of")
	})

	t.Run("both simple and composed", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{
			Name:    "x",
			Source:  "acme",
			Compose: []ComposeItemSpec{{Path: "./y", Level: "user"}},
		}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot have both")
	})

	t.Run("compose item with two refs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{
			Name:    "x",
			Compose: []ComposeItemSpec{{Source: "acme", Skill: "x", Path: "./y"}},
		}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "exactly one of source, path, or url")
	})

	t.Run("compose source without skill", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{
			Name:    "x",
			Compose: []ComposeItemSpec{{Source: "acme"}},
		}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "skill name is required")
	})

	t.Run("bad level", func(t *testing.T) {
		cfg := validConfig()
		cfg.Skills = []SkillSpec{{
			Name:    "x",
			Compose: []ComposeItemSpec{{Path: "./y", Level: "team"}},
		}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown precedence level")
	})

	t.Run("collects multiple errors", func(t *testing.T) {
		cfg := validConfig()
		cfg.Version = "2.0"
		cfg.Settings.TargetDirs = nil
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported config version")
		assert.Contains(t, err.Error(), "target_dirs")
	})
}
