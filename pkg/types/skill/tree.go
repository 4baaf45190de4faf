package skill

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ContentTree maps normalized, slash-separated relative paths to file
// contents. A tree is the result of one fetch or local read and is
// treated as immutable once handed to composers; ordering is always
// imposed by consumers via sorted paths, never by map iteration.
type ContentTree map[string][]byte

// NormalizePath cleans a tree-relative path and rejects anything that
// would escape the tree root.
func NormalizePath(p string) (string, error) {
	cleaned := path.Clean(filepath.ToSlash(p))
	if cleaned == "." || cleaned == "" {
		return "", errors.Errorf("empty tree path %q", p)
	}
	if path.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.Errorf("tree path %q escapes the tree root", p)
	}
	return cleaned, nil
}

// Insert adds a file under a normalized relative path.
func (t ContentTree) Insert(p string, content []byte) error {
	normalized, err := NormalizePath(p)
	if err != nil {
		return err
	}
	t[normalized] = content
	return nil
}

// Paths returns every path in the tree in sorted order.
func (t ContentTree) Paths() []string {
	paths := make([]string, 0, len(t))
	for p := range t {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsMarkdownPath reports whether a tree path is routed to the
// markdown composer.
func IsMarkdownPath(p string) bool {
	return strings.EqualFold(path.Ext(p), ".md")
}

// Partition splits the tree into its markdown and non-markdown
// subsets.
func (t ContentTree) Partition() (markdown, other ContentTree) {
	markdown = make(ContentTree)
	other = make(ContentTree)
	for p, content := range t {
		if IsMarkdownPath(p) {
			markdown[p] = content
		} else {
			other[p] = content
		}
	}
	return markdown, other
}

// ReadTree loads a directory from disk into a ContentTree. Only .git
// directories are skipped; everything else, dotfiles included, is part
// of the skill's content.
func ReadTree(dir string) (ContentTree, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "reading skill directory %s", dir)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("skill path %s is not a directory", dir)
	}

	tree := make(ContentTree)
	err = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		content, err := os.ReadFile(p)
		if err != nil {
			return errors.Wrapf(err, "reading %s", p)
		}
		return tree.Insert(rel, content)
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// WriteTo materializes the tree under dir, creating intermediate
// directories as needed.
func (t ContentTree) WriteTo(dir string) error {
	for _, p := range t.Paths() {
		dest := filepath.Join(dir, filepath.FromSlash(p))
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return errors.Wrapf(err, "creating directory for %s", p)
		}
		if err := os.WriteFile(dest, t[p], 0o644); err != nil {
			return errors.Wrapf(err, "writing %s", p)
		}
	}
	return nil
}
