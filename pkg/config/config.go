// Package config defines the skillsync configuration schema and loads
// it from yaml files and environment variables via viper. Precedence,
// lowest to highest: built-in defaults, project ./skills.yaml, user
// ~/.config/skillsync/skills.yaml, SKILLSYNC_* environment variables,
// then an explicit --config file.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// ConfigFileName is the yaml file searched for in the project and
// user config directories.
const ConfigFileName = "skills.yaml"

// Settings holds global knobs shared by every skill.
type Settings struct {
	TargetDirs    []string      `mapstructure:"target_dirs" yaml:"target_dirs"`
	CacheDir      string        `mapstructure:"cache_dir" yaml:"cache_dir"`
	DefaultBranch string        `mapstructure:"default_branch" yaml:"default_branch"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl" yaml:"cache_ttl"`
}

// Source is a named GitHub location that skills can reference.
type Source struct {
	Type   string `mapstructure:"type" yaml:"type"`
	Repo   string `mapstructure:"repo" yaml:"repo"`
	Path   string `mapstructure:"path" yaml:"path"`
	Branch string `mapstructure:"branch" yaml:"branch"`
}

// ComposeItemSpec is one ingredient of a composed skill as written in
// configuration. Exactly one of Source (+Skill), Path, or URL must be
// set; the resolver enforces this with typed errors.
type ComposeItemSpec struct {
	Source string `mapstructure:"source" yaml:"source"`
	Skill  string `mapstructure:"skill" yaml:"skill"`
	Path   string `mapstructure:"path" yaml:"path"`
	URL    string `mapstructure:"url" yaml:"url"`
	Level  string `mapstructure:"level" yaml:"level"`
}

// SkillSpec describes one skill to install: either a simple skill
// with a single implicit source (Source/Path/URL) or a composed skill
// with a non-empty Compose list, never both.
type SkillSpec struct {
	Name        string            `mapstructure:"name" yaml:"name"`
	Description string            `mapstructure:"description" yaml:"description"`
	Source      string            `mapstructure:"source" yaml:"source"`
	Path        string            `mapstructure:"path" yaml:"path"`
	URL         string            `mapstructure:"url" yaml:"url"`
	Compose     []ComposeItemSpec `mapstructure:"compose" yaml:"compose"`
}

// IsComposed reports whether the spec declares a compose list.
func (s SkillSpec) IsComposed() bool {
	return len(s.Compose) > 0
}

// Config is the root configuration document.
type Config struct {
	Version  string            `mapstructure:"version" yaml:"version"`
	Settings Settings          `mapstructure:"settings" yaml:"settings"`
	Sources  map[string]Source `mapstructure:"sources" yaml:"sources"`
	Skills   []SkillSpec       `mapstructure:"skills" yaml:"skills"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("version", "1.0")
	v.SetDefault("settings.target_dirs", []string{".claude/skills"})
	v.SetDefault("settings.cache_dir", "~/.cache/skillsync")
	v.SetDefault("settings.default_branch", "main")
	v.SetDefault("settings.cache_ttl", 24*time.Hour)
}

// Load reads, merges, and validates configuration. explicitPath, when
// non-empty, is read instead of the discovered config files but still
// layered over defaults and under environment overrides.
func Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	setDefaults(v)

	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "loading config %s", explicitPath)
		}
	} else {
		if err := mergeIfExists(v, ConfigFileName); err != nil {
			return nil, err
		}
		home, err := os.UserHomeDir()
		if err == nil {
			userConfig := filepath.Join(home, ".config", "skillsync", ConfigFileName)
			if err := mergeIfExists(v, userConfig); err != nil {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("SKILLSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "parsing configuration")
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func mergeIfExists(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.MergeInConfig(); err != nil {
		return errors.Wrapf(err, "loading config %s", path)
	}
	return nil
}

// applyEnvOverrides handles the environment variables that viper's
// AutomaticEnv cannot map onto nested keys of an unmarshalled struct.
func applyEnvOverrides(cfg *Config) {
	if cacheDir := os.Getenv("SKILLSYNC_CACHE_DIR"); cacheDir != "" {
		cfg.Settings.CacheDir = cacheDir
	}
	if branch := os.Getenv("SKILLSYNC_DEFAULT_BRANCH"); branch != "" {
		cfg.Settings.DefaultBranch = branch
	}
	if dirs := os.Getenv("SKILLSYNC_TARGET_DIRS"); dirs != "" {
		var targets []string
		for _, d := range strings.Split(dirs, ",") {
			if d = strings.TrimSpace(d); d != "" {
				targets = append(targets, d)
			}
		}
		if len(targets) > 0 {
			cfg.Settings.TargetDirs = targets
		}
	}
}

// ExpandPath expands a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "expanding ~")
		}
		path = filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, "resolving path %s", path)
	}
	return abs, nil
}
