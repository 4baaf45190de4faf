package assembler

import (
	"context"
	"sync"

	"github.com/jingkaihe/skillsync/pkg/config"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// SyncOptions controls one sync batch.
type SyncOptions struct {
	ForceRefresh bool
	DryRun       bool
}

// SkillResult is the per-skill outcome of a sync batch. A failed
// skill reports its error here; it never aborts its siblings.
type SkillResult struct {
	Name  string
	Skill *skilltypes.ComposedSkill
	Diffs []TargetDiff
	Err   error
}

// Sync assembles every spec and installs (or, in dry-run mode, diffs)
// the results against the target directories. Skills run
// concurrently; the cache's per-key deduplication is the only shared
// mutual-exclusion point between them. The result slice preserves
// spec order.
func (a *Assembler) Sync(ctx context.Context, specs []config.SkillSpec, targetDirs []string, opts SyncOptions) []SkillResult {
	results := make([]SkillResult, len(specs))

	var wg sync.WaitGroup
	for i, spec := range specs {
		i, spec := i, spec
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.syncOne(ctx, spec, targetDirs, opts)
		}()
	}
	wg.Wait()

	return results
}

func (a *Assembler) syncOne(ctx context.Context, spec config.SkillSpec, targetDirs []string, opts SyncOptions) SkillResult {
	result := SkillResult{Name: spec.Name}

	skill, err := a.Assemble(ctx, spec, opts.ForceRefresh)
	if err != nil {
		result.Err = err
		return result
	}
	result.Skill = skill

	if opts.DryRun {
		result.Diffs, result.Err = a.Diff(skill, targetDirs)
		return result
	}

	result.Err = a.Write(ctx, skill, targetDirs)
	return result
}
