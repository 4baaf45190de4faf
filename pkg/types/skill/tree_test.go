package skill

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain file", input: "SKILL.md", want: "SKILL.md"},
		{name: "nested file", input: "scripts/run.sh", want: "scripts/run.sh"},
		{name: "redundant segments", input: "./a/b/../c.md", want: "a/c.md"},
		{name: "empty", input: "", wantErr: true},
		{name: "dot", input: ".", wantErr: true},
		{name: "parent escape", input: "../secrets", wantErr: true},
		{name: "nested escape", input: "a/../../secrets", wantErr: true},
		{name: "absolute", input: "/etc/passwd", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePath(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContentTreeInsertAndPaths(t *testing.T) {
	tree := make(ContentTree)
	require.NoError(t, tree.Insert("b.md", []byte("b")))
	require.NoError(t, tree.Insert("a/c.txt", []byte("c")))
	require.NoError(t, tree.Insert("./a/../a.md", []byte("a")))

	assert.Equal(t, []string{"a.md", "a/c.txt", "b.md"}, tree.Paths())
	assert.Equal(t, []byte("a"), tree["a.md"])

	err := tree.Insert("../escape.md", []byte("x"))
	assert.Error(t, err)
}

func TestIsMarkdownPath(t *testing.T) {
	assert.True(t, IsMarkdownPath("SKILL.md"))
	assert.True(t, IsMarkdownPath("docs/usage.MD"))
	assert.False(t, IsMarkdownPath("schema.sql"))
	assert.False(t, IsMarkdownPath("README"))
	assert.False(t, IsMarkdownPath("notes.md.bak"))
}

func TestPartition(t *testing.T) {
	tree := ContentTree{
		"SKILL.md":   []byte("doc"),
		"schema.sql": []byte("sql"),
		"a/b.md":     []byte("nested"),
	}

	markdown, other := tree.Partition()
	assert.Equal(t, []string{"SKILL.md", "a/b.md"}, markdown.Paths())
	assert.Equal(t, []string{"schema.sql"}, other.Paths())
}

func TestReadTreeWriteToRoundTrip(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("# skill\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "scripts", "run.sh"), []byte("echo hi\n"), 0o644))

	tree, err := ReadTree(src)
	require.NoError(t, err)
	assert.Equal(t, []string{"SKILL.md", "scripts/run.sh"}, tree.Paths())

	dst := t.TempDir()
	require.NoError(t, tree.WriteTo(dst))

	got, err := os.ReadFile(filepath.Join(dst, "scripts", "run.sh"))
	require.NoError(t, err)
	assert.Equal(t, []byte("echo hi\n"), got)
}

func TestReadTreeSkipsGitOnly(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(src, ".git"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".git", "HEAD"), []byte("ref"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, ".envrc"), []byte("export FOO=1"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(src, "SKILL.md"), []byte("content"), 0o644))

	// Dotfiles are skill content and survive a read; only .git is
	// bookkeeping.
	tree, err := ReadTree(src)
	require.NoError(t, err)
	assert.Equal(t, []string{".envrc", "SKILL.md"}, tree.Paths())
	assert.Equal(t, []byte("export FOO=1"), tree[".envrc"])
}

func TestReadTreeErrors(t *testing.T) {
	_, err := ReadTree(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = ReadTree(file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
