package config

import (
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// Validate checks the structural invariants of the configuration:
// supported version, well-formed sources, unique skill names, and the
// simple-XOR-composed rule for every skill. Reference-shape errors
// (ambiguous or unknown sources) are typed by the resolver; Validate
// reports everything it finds in one pass.
func (c *Config) Validate() error {
	var result *multierror.Error

	if !strings.HasPrefix(c.Version, "1.") {
		result = multierror.Append(result, errors.Errorf("unsupported config version %q: only 1.x is supported", c.Version))
	}

	if len(c.Settings.TargetDirs) == 0 {
		result = multierror.Append(result, errors.New("settings.target_dirs must not be empty"))
	}
	if c.Settings.CacheTTL < 0 {
		result = multierror.Append(result, errors.New("settings.cache_ttl must not be negative"))
	}

	for name, source := range c.Sources {
		if source.Type != "" && source.Type != "github" {
			result = multierror.Append(result, errors.Errorf("source %q: unsupported type %q", name, source.Type))
		}
		if strings.Count(source.Repo, "/") != 1 {
			result = multierror.Append(result, errors.Errorf("source %q: repo %q must be in 'owner/repo' format", name, source.Repo))
		}
	}

	seen := make(map[string]bool)
	for _, spec := range c.Skills {
		if spec.Name == "" {
			result = multierror.Append(result, errors.New("skill with empty name"))
			continue
		}
		if seen[spec.Name] {
			result = multierror.Append(result, errors.Errorf("duplicate skill name %q", spec.Name))
		}
		seen[spec.Name] = true

		if err := validateSpec(spec); err != nil {
			result = multierror.Append(result, err)
		}
	}

	return result.ErrorOrNil()
}

func validateSpec(spec SkillSpec) error {
	simpleRefs := countRefs(spec.Source, spec.Path, spec.URL)

	if spec.IsComposed() {
		if simpleRefs > 0 {
			return errors.Errorf("skill %q: cannot have both a compose list and a direct source/path/url", spec.Name)
		}
		var result *multierror.Error
		for i, item := range spec.Compose {
			if n := countRefs(item.Source, item.Path, item.URL); n != 1 {
				result = multierror.Append(result, errors.Errorf("skill %q compose[%d]: exactly one of source, path, or url must be set (got %d)", spec.Name, i, n))
			}
			if item.Source != "" && item.Skill == "" {
				result = multierror.Append(result, errors.Errorf("skill %q compose[%d]: skill name is required when using a named source", spec.Name, i))
			}
			if _, err := skilltypes.ParseLevel(item.Level); err != nil {
				result = multierror.Append(result, errors.Wrapf(err, "skill %q compose[%d]", spec.Name, i))
			}
		}
		return result.ErrorOrNil()
	}

	if simpleRefs != 1 {
		return errors.Errorf("skill %q: exactly one of source, path, url, or a compose list must be set", spec.Name)
	}
	return nil
}

func countRefs(refs ...string) int {
	n := 0
	for _, r := range refs {
		if r != "" {
			n++
		}
	}
	return n
}
