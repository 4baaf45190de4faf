package compose

import (
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// TreeEntry is one source's non-markdown file set, tagged with its
// precedence level and diagnostic label.
type TreeEntry struct {
	Level skilltypes.PrecedenceLevel
	Label string
	Tree  skilltypes.ContentTree
}

// ComposeFiles merges the entries' trees into one. For every relative
// path the file from the highest-precedence entry wins; lower levels
// contribute a path only when no higher level supplies it. Ties
// within a level resolve to the earliest entry, matching the markdown
// composer's earlier-entries-first rule. Markdown paths are excluded;
// they belong to ComposeMarkdown. The returned manifest records the
// winning level and label per path.
func ComposeFiles(entries []TreeEntry) (skilltypes.ContentTree, skilltypes.Manifest) {
	merged := make(skilltypes.ContentTree)
	manifest := make(skilltypes.Manifest)

	for _, entry := range entries {
		for path, content := range entry.Tree {
			if skilltypes.IsMarkdownPath(path) {
				continue
			}
			current, taken := manifest[path]
			if taken && current.Level >= entry.Level {
				continue
			}
			merged[path] = content
			manifest.Record(path, entry.Level, entry.Label)
		}
	}
	return merged, manifest
}
