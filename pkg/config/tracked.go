package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// TrackedConfigsFileName is the yaml file recording every registered
// configuration, synced together by sync-all.
const TrackedConfigsFileName = "tracked-configs.yaml"

// DefaultTrackedConfigsPath returns the user-level location of the
// tracked-configs file.
func DefaultTrackedConfigsPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", errors.Wrap(err, "locating home directory")
	}
	return filepath.Join(home, ".config", "skillsync", TrackedConfigsFileName), nil
}

// trackedDoc is the serialized form of the tracked-configs file.
type trackedDoc struct {
	Configs []string `yaml:"configs"`
}

// TrackedConfigs is the registry of configuration files for
// multi-project setups. Paths are stored absolute so the list is
// independent of the working directory.
type TrackedConfigs struct {
	path    string
	configs []string
}

// LoadTrackedConfigs reads the tracked list at path. A missing or
// corrupt file loads as empty.
func LoadTrackedConfigs(path string) *TrackedConfigs {
	t := &TrackedConfigs{path: path}

	raw, err := os.ReadFile(path)
	if err != nil {
		return t
	}
	var doc trackedDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return t
	}
	t.configs = doc.Configs
	return t
}

// Save persists the tracked list, creating its directory if needed.
func (t *TrackedConfigs) Save() error {
	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", t.path)
	}
	raw, err := yaml.Marshal(trackedDoc{Configs: t.configs})
	if err != nil {
		return errors.Wrap(err, "encoding tracked configs")
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", t.path)
	}
	return nil
}

// Add registers a config file, returning false when it is already
// tracked. The path is stored in absolute form.
func (t *TrackedConfigs) Add(configPath string) (bool, error) {
	abs, err := ExpandPath(configPath)
	if err != nil {
		return false, err
	}
	for _, existing := range t.configs {
		if existing == abs {
			return false, nil
		}
	}
	t.configs = append(t.configs, abs)
	return true, nil
}

// Remove untracks a config file, returning false when it was not
// tracked.
func (t *TrackedConfigs) Remove(configPath string) (bool, error) {
	abs, err := ExpandPath(configPath)
	if err != nil {
		return false, err
	}
	for i, existing := range t.configs {
		if existing == abs {
			t.configs = append(t.configs[:i], t.configs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// List returns the tracked config paths in registration order.
func (t *TrackedConfigs) List() []string {
	out := make([]string, len(t.configs))
	copy(out, t.configs)
	return out
}
