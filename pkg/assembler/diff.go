package assembler

import (
	"bytes"
	"path/filepath"
	"sort"

	"github.com/aymanbagabas/go-udiff"

	"github.com/jingkaihe/skillsync/pkg/config"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// PathStatus classifies one path in a dry-run diff.
type PathStatus string

// Diff statuses.
const (
	StatusAdded     PathStatus = "added"
	StatusChanged   PathStatus = "changed"
	StatusUnchanged PathStatus = "unchanged"
	StatusRemoved   PathStatus = "removed"
)

// DiffEntry describes what would happen to one path on sync.
type DiffEntry struct {
	Path   string
	Status PathStatus
	// Diff holds a unified diff for changed text files; empty for
	// binary or non-changed paths.
	Diff string
}

// TargetDiff is the dry-run result for one target directory.
type TargetDiff struct {
	Target  string
	Entries []DiffEntry
}

// Changed reports whether applying the sync would modify the target.
func (d TargetDiff) Changed() bool {
	for _, e := range d.Entries {
		if e.Status != StatusUnchanged {
			return true
		}
	}
	return false
}

// Diff computes, per target, the changes a Write would perform,
// without touching the target or the registry. This backs dry-run
// mode: every pipeline step up to the final write runs for real.
func (a *Assembler) Diff(skill *skilltypes.ComposedSkill, targetDirs []string) ([]TargetDiff, error) {
	diffs := make([]TargetDiff, 0, len(targetDirs))
	for _, target := range targetDirs {
		diff, err := diffTarget(skill, target)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, diff)
	}
	return diffs, nil
}

func diffTarget(skill *skilltypes.ComposedSkill, target string) (TargetDiff, error) {
	targetDir, err := config.ExpandPath(target)
	if err != nil {
		return TargetDiff{}, err
	}
	skillDir := filepath.Join(targetDir, skill.Name)

	existing, err := skilltypes.ReadTree(skillDir)
	if err != nil {
		// Missing skill directory means everything is an addition.
		existing = make(skilltypes.ContentTree)
	}

	paths := map[string]bool{}
	for p := range skill.Files {
		paths[p] = true
	}
	for p := range existing {
		paths[p] = true
	}
	sortedPaths := make([]string, 0, len(paths))
	for p := range paths {
		sortedPaths = append(sortedPaths, p)
	}
	sort.Strings(sortedPaths)

	diff := TargetDiff{Target: target}
	for _, p := range sortedPaths {
		newContent, inNew := skill.Files[p]
		oldContent, inOld := existing[p]

		switch {
		case inNew && !inOld:
			diff.Entries = append(diff.Entries, DiffEntry{Path: p, Status: StatusAdded})
		case !inNew && inOld:
			diff.Entries = append(diff.Entries, DiffEntry{Path: p, Status: StatusRemoved})
		case bytes.Equal(oldContent, newContent):
			diff.Entries = append(diff.Entries, DiffEntry{Path: p, Status: StatusUnchanged})
		default:
			entry := DiffEntry{Path: p, Status: StatusChanged}
			if isText(oldContent) && isText(newContent) {
				entry.Diff = udiff.Unified(p, p, string(oldContent), string(newContent))
			}
			diff.Entries = append(diff.Entries, entry)
		}
	}
	return diff, nil
}

// isText is a cheap binary check: NUL bytes mean binary content.
func isText(content []byte) bool {
	return !bytes.Contains(content, []byte{0})
}
