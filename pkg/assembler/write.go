package assembler

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/registry"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// WriteError reports a failed install into one target directory.
// Failures are per-target: one bad target never rolls back or blocks
// the others.
type WriteError struct {
	Target string
	Skill  string
	Err    error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing skill %q to %s: %v", e.Skill, e.Target, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// Write installs the composed skill into every target directory and
// records it in each target's registry. Each target is written
// atomically: the new tree is staged beside the destination and
// swapped in with renames, so an aborted sync never leaves a
// half-written skill visible. Errors are collected per target and
// returned together.
func (a *Assembler) Write(ctx context.Context, skill *skilltypes.ComposedSkill, targetDirs []string) error {
	var result *multierror.Error
	for _, target := range targetDirs {
		if err := a.writeTarget(ctx, skill, target); err != nil {
			result = multierror.Append(result, &WriteError{Target: target, Skill: skill.Name, Err: err})
		}
	}
	return result.ErrorOrNil()
}

func (a *Assembler) writeTarget(ctx context.Context, skill *skilltypes.ComposedSkill, target string) error {
	log := logger.G(ctx).WithField("skill", skill.Name).WithField("target", target)

	targetDir, err := config.ExpandPath(target)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating target directory %s", targetDir)
	}

	skillDir := filepath.Join(targetDir, skill.Name)
	// Staging lives inside the target directory so the final rename
	// stays on one volume; rename atomicity within a volume is a
	// portability assumption of this scheme.
	staging := filepath.Join(targetDir, ".staging-"+skill.Name+"-"+uuid.NewString())

	if err := skill.Files.WriteTo(staging); err != nil {
		os.RemoveAll(staging)
		return err
	}

	var backup string
	if _, err := os.Stat(skillDir); err == nil {
		backup = skillDir + ".previous-" + uuid.NewString()
		if err := os.Rename(skillDir, backup); err != nil {
			os.RemoveAll(staging)
			return errors.Wrap(err, "moving previous skill aside")
		}
	}

	if err := os.Rename(staging, skillDir); err != nil {
		if backup != "" {
			if restoreErr := os.Rename(backup, skillDir); restoreErr != nil {
				log.WithError(restoreErr).Error("failed to restore previous skill after aborted write")
			}
		}
		os.RemoveAll(staging)
		return errors.Wrap(err, "activating new skill directory")
	}
	if backup != "" {
		os.RemoveAll(backup)
	}

	store := registry.NewStore(targetDir)
	store.Add(registry.Entry{
		Name:              skill.Name,
		Description:       skill.Description,
		ComposedFrom:      skill.ComposedFrom,
		SourceFingerprint: registry.Fingerprint(skill.Files),
	})
	if err := store.Save(); err != nil {
		return err
	}

	log.Info("installed skill")
	return nil
}

// Uninstall removes a skill's directory from every target and deletes
// its registry entries. When the skill is absent from all targets the
// call fails with registry.NotFoundError instead of succeeding
// silently.
func Uninstall(ctx context.Context, name string, targetDirs []string) error {
	var result *multierror.Error
	found := false

	for _, target := range targetDirs {
		targetDir, err := config.ExpandPath(target)
		if err != nil {
			result = multierror.Append(result, err)
			continue
		}

		store := registry.NewStore(targetDir)
		if !store.Has(name) {
			continue
		}
		found = true

		if err := os.RemoveAll(store.SkillDir(name)); err != nil {
			result = multierror.Append(result, &WriteError{Target: target, Skill: name, Err: err})
			continue
		}
		if err := store.Remove(name); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		if err := store.Save(); err != nil {
			result = multierror.Append(result, err)
			continue
		}
		logger.G(ctx).WithField("skill", name).WithField("target", target).Info("removed skill")
	}

	if !found {
		return &registry.NotFoundError{Name: name}
	}
	return result.ErrorOrNil()
}
