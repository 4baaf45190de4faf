package assembler

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/registry"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

func testSkill() *skilltypes.ComposedSkill {
	manifest := make(skilltypes.Manifest)
	manifest.Record("SKILL.md", skilltypes.LevelDefault, "acme/deploy")
	return &skilltypes.ComposedSkill{
		Name:        "deploy",
		Description: "Deployment runbook",
		Files: skilltypes.ContentTree{
			"SKILL.md":       []byte("# Deploy\n"),
			"scripts/run.sh": []byte("echo deploy\n"),
		},
		Manifest:     manifest,
		ComposedFrom: []string{"acme/deploy"},
	}
}

func TestWriteInstallsSkill(t *testing.T) {
	target := t.TempDir()
	asm := New(&fakeSource{}, nil, "main")

	require.NoError(t, asm.Write(context.Background(), testSkill(), []string{target}))

	content, err := os.ReadFile(filepath.Join(target, "deploy", "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, []byte("# Deploy\n"), content)

	_, err = os.Stat(filepath.Join(target, "deploy", "scripts", "run.sh"))
	require.NoError(t, err)

	store := registry.NewStore(target)
	entry, ok := store.Get("deploy")
	require.True(t, ok)
	assert.Equal(t, "Deployment runbook", entry.Description)
	assert.Equal(t, []string{"acme/deploy"}, entry.ComposedFrom)
	assert.NotEmpty(t, entry.SourceFingerprint)
	assert.False(t, entry.InstalledAt.IsZero())
}

func TestWriteReplacesPreviousInstall(t *testing.T) {
	target := t.TempDir()
	asm := New(&fakeSource{}, nil, "main")
	ctx := context.Background()

	require.NoError(t, asm.Write(ctx, testSkill(), []string{target}))

	updated := testSkill()
	updated.Files = skilltypes.ContentTree{"SKILL.md": []byte("# Deploy v2\n")}
	require.NoError(t, asm.Write(ctx, updated, []string{target}))

	content, err := os.ReadFile(filepath.Join(target, "deploy", "SKILL.md"))
	require.NoError(t, err)
	assert.Equal(t, []byte("# Deploy v2\n"), content)

	// Stale files from the previous install are gone.
	_, err = os.Stat(filepath.Join(target, "deploy", "scripts", "run.sh"))
	assert.True(t, os.IsNotExist(err))

	// No staging or backup leftovers.
	dirents, err := os.ReadDir(target)
	require.NoError(t, err)
	for _, d := range dirents {
		assert.False(t, strings.HasPrefix(d.Name(), ".staging-"), "leftover staging dir %s", d.Name())
		assert.NotContains(t, d.Name(), ".previous-")
	}
}

func TestWriteMultipleTargetsIndependent(t *testing.T) {
	good := t.TempDir()
	// A regular file where a directory is needed makes the target fail.
	bad := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(bad, []byte("in the way"), 0o644))

	asm := New(&fakeSource{}, nil, "main")
	err := asm.Write(context.Background(), testSkill(), []string{bad, good})
	require.Error(t, err)

	var writeErr *WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, bad, writeErr.Target)

	// The good target installed despite the bad one.
	_, statErr := os.Stat(filepath.Join(good, "deploy", "SKILL.md"))
	assert.NoError(t, statErr)
}

func TestUninstall(t *testing.T) {
	target := t.TempDir()
	asm := New(&fakeSource{}, nil, "main")
	ctx := context.Background()

	require.NoError(t, asm.Write(ctx, testSkill(), []string{target}))
	require.NoError(t, Uninstall(ctx, "deploy", []string{target}))

	_, err := os.Stat(filepath.Join(target, "deploy"))
	assert.True(t, os.IsNotExist(err))
	assert.False(t, registry.NewStore(target).Has("deploy"))
}

func TestUninstallUnknownSkill(t *testing.T) {
	err := Uninstall(context.Background(), "ghost", []string{t.TempDir()})
	var notFound *registry.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "ghost", notFound.Name)
}

func TestUninstallOnlyWhereInstalled(t *testing.T) {
	installed := t.TempDir()
	empty := t.TempDir()
	asm := New(&fakeSource{}, nil, "main")
	ctx := context.Background()

	require.NoError(t, asm.Write(ctx, testSkill(), []string{installed}))
	require.NoError(t, Uninstall(ctx, "deploy", []string{installed, empty}))
}

func TestDiff(t *testing.T) {
	target := t.TempDir()
	asm := New(&fakeSource{}, nil, "main")
	ctx := context.Background()

	t.Run("fresh install is all additions", func(t *testing.T) {
		diffs, err := asm.Diff(testSkill(), []string{target})
		require.NoError(t, err)
		require.Len(t, diffs, 1)
		assert.True(t, diffs[0].Changed())
		for _, entry := range diffs[0].Entries {
			assert.Equal(t, StatusAdded, entry.Status)
		}
	})

	require.NoError(t, asm.Write(ctx, testSkill(), []string{target}))

	t.Run("identical content is unchanged", func(t *testing.T) {
		diffs, err := asm.Diff(testSkill(), []string{target})
		require.NoError(t, err)
		assert.False(t, diffs[0].Changed())
	})

	t.Run("modified and removed paths", func(t *testing.T) {
		updated := testSkill()
		updated.Files = skilltypes.ContentTree{
			"SKILL.md": []byte("# Deploy v2\n"),
			"new.txt":  []byte("brand new\n"),
		}

		diffs, err := asm.Diff(updated, []string{target})
		require.NoError(t, err)
		require.Len(t, diffs, 1)

		byPath := map[string]DiffEntry{}
		for _, entry := range diffs[0].Entries {
			byPath[entry.Path] = entry
		}

		assert.Equal(t, StatusChanged, byPath["SKILL.md"].Status)
		assert.Contains(t, byPath["SKILL.md"].Diff, "-# Deploy")
		assert.Contains(t, byPath["SKILL.md"].Diff, "+# Deploy v2")
		assert.Equal(t, StatusAdded, byPath["new.txt"].Status)
		assert.Equal(t, StatusRemoved, byPath["scripts/run.sh"].Status)
	})

	t.Run("binary changes carry no text diff", func(t *testing.T) {
		updated := testSkill()
		updated.Files = skilltypes.ContentTree{
			"SKILL.md":       testSkill().Files["SKILL.md"],
			"scripts/run.sh": {0x00, 0x01, 0x02},
		}

		diffs, err := asm.Diff(updated, []string{target})
		require.NoError(t, err)
		byPath := map[string]DiffEntry{}
		for _, entry := range diffs[0].Entries {
			byPath[entry.Path] = entry
		}
		assert.Equal(t, StatusChanged, byPath["scripts/run.sh"].Status)
		assert.Empty(t, byPath["scripts/run.sh"].Diff)
	})
}

func TestSync(t *testing.T) {
	source, localDir := composedFixtures(t)
	asm := New(source, testSources(), "main")
	target := t.TempDir()

	specs := []config.SkillSpec{
		composedSpec(localDir),
		{Name: "broken", Source: "missing-source"},
		{Name: "simple", Source: "acme", Path: ""},
	}
	// "simple" resolves to acme/skills/skills/simple@main; give it a
	// fixture.
	source.trees["acme/skills/skills/simple@main"] = skilltypes.ContentTree{
		"SKILL.md": []byte("# Simple\n"),
	}

	results := asm.Sync(context.Background(), specs, []string{target}, SyncOptions{})
	require.Len(t, results, 3)

	// Result order follows spec order regardless of completion order.
	assert.Equal(t, "deploy", results[0].Name)
	assert.Equal(t, "broken", results[1].Name)
	assert.Equal(t, "simple", results[2].Name)

	assert.NoError(t, results[0].Err)
	assert.Error(t, results[1].Err)
	assert.NoError(t, results[2].Err)

	// A failed sibling does not block installs.
	_, err := os.Stat(filepath.Join(target, "deploy", "a.md"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(target, "simple", "SKILL.md"))
	assert.NoError(t, err)
}

func TestSyncDryRunWritesNothing(t *testing.T) {
	source, localDir := composedFixtures(t)
	asm := New(source, testSources(), "main")
	target := t.TempDir()

	results := asm.Sync(context.Background(), []config.SkillSpec{composedSpec(localDir)}, []string{target}, SyncOptions{DryRun: true})
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.Len(t, results[0].Diffs, 1)
	assert.True(t, results[0].Diffs[0].Changed())

	// Target untouched: no skill directory, no registry.
	_, err := os.Stat(filepath.Join(target, "deploy"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(target, registry.ManifestFileName))
	assert.True(t, os.IsNotExist(err))
}
