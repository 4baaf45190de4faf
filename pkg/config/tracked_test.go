package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackedConfigsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), TrackedConfigsFileName)
	first := filepath.Join(t.TempDir(), "skills.yaml")
	second := filepath.Join(t.TempDir(), "skills.yaml")

	tracked := LoadTrackedConfigs(path)
	assert.Empty(t, tracked.List())

	added, err := tracked.Add(first)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = tracked.Add(second)
	require.NoError(t, err)
	assert.True(t, added)
	require.NoError(t, tracked.Save())

	reloaded := LoadTrackedConfigs(path)
	assert.Equal(t, []string{first, second}, reloaded.List())
}

func TestTrackedConfigsAddDeduplicates(t *testing.T) {
	tracked := LoadTrackedConfigs(filepath.Join(t.TempDir(), TrackedConfigsFileName))
	cfg := filepath.Join(t.TempDir(), "skills.yaml")

	added, err := tracked.Add(cfg)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = tracked.Add(cfg)
	require.NoError(t, err)
	assert.False(t, added)
	assert.Len(t, tracked.List(), 1)
}

func TestTrackedConfigsRemove(t *testing.T) {
	tracked := LoadTrackedConfigs(filepath.Join(t.TempDir(), TrackedConfigsFileName))
	cfg := filepath.Join(t.TempDir(), "skills.yaml")

	_, err := tracked.Add(cfg)
	require.NoError(t, err)

	removed, err := tracked.Remove(cfg)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, tracked.List())

	removed, err = tracked.Remove(cfg)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestTrackedConfigsCorruptFileLoadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), TrackedConfigsFileName)
	require.NoError(t, os.WriteFile(path, []byte(":\tnot yaml"), 0o644))

	tracked := LoadTrackedConfigs(path)
	assert.Empty(t, tracked.List())
}
