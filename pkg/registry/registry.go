// Package registry tracks installed skills per target directory. The
// record set is a JSON manifest colocated with the installed skills,
// so removing a target directory removes its registry with it.
package registry

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pkg/errors"

	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// ManifestFileName is the per-target registry file.
const ManifestFileName = ".skillsync-manifest.json"

// ManifestVersion is the current manifest schema version.
const ManifestVersion = "1.0"

// Entry is the registry record for one installed skill.
type Entry struct {
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	ComposedFrom      []string  `json:"composed_from,omitempty"`
	InstalledAt       time.Time `json:"installed_at"`
	SourceFingerprint string    `json:"source_fingerprint,omitempty"`
}

// NotFoundError indicates an operation on a skill the registry does
// not know about.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("skill %q is not installed", e.Name)
}

type manifest struct {
	Version string           `json:"version"`
	Skills  map[string]Entry `json:"skills"`
}

// Store is the registry for one target directory. Mutations happen
// only from the assembler after a successful write, never concurrently
// for the same target.
type Store struct {
	targetDir string
	data      manifest
}

// NewStore creates a store for targetDir and loads any existing
// manifest. A missing or corrupt manifest loads as empty.
func NewStore(targetDir string) *Store {
	s := &Store{
		targetDir: targetDir,
		data:      manifest{Version: ManifestVersion, Skills: map[string]Entry{}},
	}
	s.load()
	return s
}

func (s *Store) manifestPath() string {
	return filepath.Join(s.targetDir, ManifestFileName)
}

func (s *Store) load() {
	raw, err := os.ReadFile(s.manifestPath())
	if err != nil {
		return
	}
	var data manifest
	if err := json.Unmarshal(raw, &data); err != nil {
		return
	}
	if data.Version == "" {
		data.Version = ManifestVersion
	}
	if data.Skills == nil {
		data.Skills = map[string]Entry{}
	}
	s.data = data
}

// Save persists the manifest, creating the target directory if
// needed.
func (s *Store) Save() error {
	if err := os.MkdirAll(s.targetDir, 0o755); err != nil {
		return errors.Wrapf(err, "creating target directory %s", s.targetDir)
	}
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding registry manifest")
	}
	raw = append(raw, '\n')
	if err := os.WriteFile(s.manifestPath(), raw, 0o644); err != nil {
		return errors.Wrapf(err, "writing registry manifest %s", s.manifestPath())
	}
	return nil
}

// Add creates or replaces the entry for a skill.
func (s *Store) Add(entry Entry) {
	if entry.InstalledAt.IsZero() {
		entry.InstalledAt = time.Now().UTC()
	}
	s.data.Skills[entry.Name] = entry
}

// Remove deletes a skill's entry, failing with NotFoundError when the
// skill is unknown.
func (s *Store) Remove(name string) error {
	if _, ok := s.data.Skills[name]; !ok {
		return &NotFoundError{Name: name}
	}
	delete(s.data.Skills, name)
	return nil
}

// Get returns a skill's entry.
func (s *Store) Get(name string) (Entry, bool) {
	entry, ok := s.data.Skills[name]
	return entry, ok
}

// Has reports whether a skill is registered.
func (s *Store) Has(name string) bool {
	_, ok := s.data.Skills[name]
	return ok
}

// List returns all entries sorted by skill name.
func (s *Store) List() []Entry {
	entries := make([]Entry, 0, len(s.data.Skills))
	for _, e := range s.data.Skills {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// SkillDir returns the install directory for a skill under this
// store's target.
func (s *Store) SkillDir(name string) string {
	return filepath.Join(s.targetDir, name)
}

// Fingerprint digests a composed skill's full content so a later sync
// can detect that nothing changed. It hashes paths and contents in
// sorted path order, so it is independent of map iteration order.
func Fingerprint(tree skilltypes.ContentTree) string {
	h := sha256.New()
	for _, path := range tree.Paths() {
		h.Write([]byte(path))
		h.Write([]byte{0})
		h.Write(tree[path])
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
