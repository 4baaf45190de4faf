package skill

import "sort"

// ComposeItem is one resolved ingredient of a composed skill.
type ComposeItem struct {
	Coordinate SourceCoordinate
	Level      PrecedenceLevel
	Label      string
}

// ManifestEntry records which source supplied the winning content for
// one output path.
type ManifestEntry struct {
	Path  string          `json:"path"`
	Level PrecedenceLevel `json:"-"`
	// LevelName is the serialized spelling of Level.
	LevelName string `json:"level"`
	Label     string `json:"label"`
}

// Manifest maps output paths to their origin. It is rebuilt wholesale
// on every assembly.
type Manifest map[string]ManifestEntry

// Record stores the origin of one output path.
func (m Manifest) Record(path string, level PrecedenceLevel, label string) {
	m[path] = ManifestEntry{
		Path:      path,
		Level:     level,
		LevelName: level.String(),
		Label:     label,
	}
}

// Entries returns the manifest sorted by output path.
func (m Manifest) Entries() []ManifestEntry {
	entries := make([]ManifestEntry, 0, len(m))
	for _, e := range m {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries
}

// ComposedSkill is the finished artifact for one skill: the full file
// tree plus the per-path origin manifest. It is built fresh on every
// assembly and replaced wholesale, never mutated in place.
type ComposedSkill struct {
	Name         string
	Description  string
	Files        ContentTree
	Manifest     Manifest
	ComposedFrom []string
}
