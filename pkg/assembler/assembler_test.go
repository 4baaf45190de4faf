package assembler

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jingkaihe/skillsync/pkg/config"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// fakeSource serves fixed trees keyed by coordinate string.
type fakeSource struct {
	trees map[string]skilltypes.ContentTree
	errs  map[string]error
}

func (f *fakeSource) Get(_ context.Context, coord skilltypes.SourceCoordinate, _ bool) (skilltypes.ContentTree, error) {
	key := coord.String()
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	tree, ok := f.trees[key]
	if !ok {
		return nil, errors.Errorf("no fixture for %s", key)
	}
	return tree, nil
}

func testSources() map[string]config.Source {
	return map[string]config.Source{
		"acme": {Type: "github", Repo: "acme/skills", Path: "skills"},
	}
}

func TestAssembleSimpleSkill(t *testing.T) {
	source := &fakeSource{trees: map[string]skilltypes.ContentTree{
		"acme/skills/skills/deploy@main": {
			"SKILL.md":   []byte("---\nname: deploy\ndescription: From frontmatter\n---\n\n# Deploy\n"),
			"schema.sql": []byte("create table t;\n"),
		},
	}}
	asm := New(source, testSources(), "main")

	skill, err := asm.Assemble(context.Background(), config.SkillSpec{Name: "deploy", Source: "acme"}, false)
	require.NoError(t, err)

	assert.Equal(t, "deploy", skill.Name)
	// Description falls back to SKILL.md frontmatter.
	assert.Equal(t, "From frontmatter", skill.Description)
	// Simple skills are copied verbatim with no markers.
	assert.NotContains(t, string(skill.Files["SKILL.md"]), "PRECEDENCE")
	assert.Equal(t, []byte("create table t;\n"), skill.Files["schema.sql"])
	assert.Equal(t, []string{"acme/deploy"}, skill.ComposedFrom)
	assert.Equal(t, "default", skill.Manifest["schema.sql"].LevelName)
}

func TestAssembleSimpleSkillExplicitDescriptionWins(t *testing.T) {
	source := &fakeSource{trees: map[string]skilltypes.ContentTree{
		"acme/skills/skills/deploy@main": {
			"SKILL.md": []byte("---\ndescription: From frontmatter\n---\nbody\n"),
		},
	}}
	asm := New(source, testSources(), "main")

	skill, err := asm.Assemble(context.Background(), config.SkillSpec{
		Name: "deploy", Source: "acme", Description: "Configured",
	}, false)
	require.NoError(t, err)
	assert.Equal(t, "Configured", skill.Description)
}

func composedSpec(localDir string) config.SkillSpec {
	return config.SkillSpec{
		Name:        "deploy",
		Description: "Deployment runbook",
		Compose: []config.ComposeItemSpec{
			{Source: "acme", Skill: "deploy", Level: "default"},
			{Path: localDir, Level: "user"},
		},
	}
}

func composedFixtures(t *testing.T) (*fakeSource, string) {
	t.Helper()

	localDir := t.TempDir()
	localTree := skilltypes.ContentTree{
		"a.md":  []byte("# User notes\n\nAlways deploy to staging first.\n"),
		"s.sql": []byte("-- user version\n"),
	}
	require.NoError(t, localTree.WriteTo(localDir))

	source := &fakeSource{trees: map[string]skilltypes.ContentTree{
		"acme/skills/skills/deploy@main": {
			"a.md":     []byte("# Base notes\n\nStandard deployment steps.\n"),
			"s.sql":    []byte("-- default version\n"),
			"only.txt": []byte("default only\n"),
		},
		localDir: localTree,
	}}
	return source, localDir
}

func TestAssembleComposedSkill(t *testing.T) {
	source, localDir := composedFixtures(t)
	asm := New(source, testSources(), "main")

	skill, err := asm.Assemble(context.Background(), composedSpec(localDir), false)
	require.NoError(t, err)

	// Markdown composes per path: one a.md with both sections in
	// precedence order, default first.
	composed := string(skill.Files["a.md"])
	assert.Contains(t, composed, "<!-- PRECEDENCE: default -->")
	assert.Contains(t, composed, "<!-- PRECEDENCE: user (overrides default) -->")
	assert.Less(t,
		strings.Index(composed, "Standard deployment steps."),
		strings.Index(composed, "Always deploy to staging first."))

	// Non-markdown conflicts resolve to the highest level.
	assert.Equal(t, []byte("-- user version\n"), skill.Files["s.sql"])
	// Paths present only at one level survive.
	assert.Equal(t, []byte("default only\n"), skill.Files["only.txt"])

	// Manifest attributes each path to its winning source.
	assert.Equal(t, "user", skill.Manifest["s.sql"].LevelName)
	assert.Equal(t, "user", skill.Manifest["a.md"].LevelName)
	assert.Equal(t, "default", skill.Manifest["only.txt"].LevelName)
	assert.Equal(t, "acme/deploy", skill.Manifest["only.txt"].Label)

	// ComposedFrom preserves configured order.
	require.Len(t, skill.ComposedFrom, 2)
	assert.Equal(t, "acme/deploy", skill.ComposedFrom[0])
}

func TestAssembleDeterministic(t *testing.T) {
	source, localDir := composedFixtures(t)
	asm := New(source, testSources(), "main")

	first, err := asm.Assemble(context.Background(), composedSpec(localDir), false)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := asm.Assemble(context.Background(), composedSpec(localDir), false)
		require.NoError(t, err)
		assert.Equal(t, first.Files, again.Files)
		assert.Equal(t, first.Manifest, again.Manifest)
	}
}

func TestAssembleComposedBlankMarkdown(t *testing.T) {
	localDir := t.TempDir()
	localTree := skilltypes.ContentTree{"NOTES.md": []byte("\n")}
	require.NoError(t, localTree.WriteTo(localDir))

	source := &fakeSource{trees: map[string]skilltypes.ContentTree{
		"acme/skills/skills/deploy@main": {"NOTES.md": []byte("   \n")},
		localDir:                         localTree,
	}}
	asm := New(source, testSources(), "main")

	// Blank markdown at every level is valid content, not a failure.
	skill, err := asm.Assemble(context.Background(), composedSpec(localDir), false)
	require.NoError(t, err)

	composed := string(skill.Files["NOTES.md"])
	assert.Contains(t, composed, "<!-- PRECEDENCE: default -->")
	assert.Contains(t, composed, "<!-- PRECEDENCE: user (overrides default) -->")
}

func TestAssembleFetchFailure(t *testing.T) {
	source := &fakeSource{
		trees: map[string]skilltypes.ContentTree{},
		errs: map[string]error{
			"acme/skills/skills/deploy@main": errors.New("network down"),
		},
	}
	asm := New(source, testSources(), "main")

	_, err := asm.Assemble(context.Background(), config.SkillSpec{Name: "deploy", Source: "acme"}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestAssembleUnknownSource(t *testing.T) {
	asm := New(&fakeSource{}, testSources(), "main")
	_, err := asm.Assemble(context.Background(), config.SkillSpec{Name: "x", Source: "nope"}, false)
	assert.Error(t, err)
}
