// Package assembler orchestrates the skill pipeline: resolve every
// source reference, fetch content trees through the cache, compose
// markdown and non-markdown parts by precedence, and write the
// finished skill atomically into each target directory, recording the
// result in the per-target registry.
package assembler

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/jingkaihe/skillsync/pkg/compose"
	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/resolver"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// ContentSource serves content trees for resolved coordinates. The
// production implementation is the cache backed by the GitHub
// fetcher; tests substitute an in-memory source.
type ContentSource interface {
	Get(ctx context.Context, coord skilltypes.SourceCoordinate, forceRefresh bool) (skilltypes.ContentTree, error)
}

// Assembler builds composed skills from configuration specs.
type Assembler struct {
	source     ContentSource
	resolveCtx resolver.Context
}

// New creates an assembler resolving against the given named-source
// table.
func New(source ContentSource, sources map[string]config.Source, defaultBranch string) *Assembler {
	return &Assembler{
		source: source,
		resolveCtx: resolver.Context{
			Sources:       sources,
			DefaultBranch: defaultBranch,
		},
	}
}

// fetchedItem pairs a resolved compose item with its content tree.
type fetchedItem struct {
	item skilltypes.ComposeItem
	tree skilltypes.ContentTree
}

// Assemble resolves and fetches every source of the spec and composes
// the result. It performs no writes; the returned skill is handed to
// Write or Diff.
func (a *Assembler) Assemble(ctx context.Context, spec config.SkillSpec, forceRefresh bool) (*skilltypes.ComposedSkill, error) {
	log := logger.G(ctx).WithField("skill", spec.Name)

	items, err := resolver.ResolveSpec(spec, a.resolveCtx)
	if err != nil {
		return nil, err
	}

	fetched := make([]fetchedItem, len(items))
	grp, grpCtx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		grp.Go(func() error {
			tree, err := a.source.Get(grpCtx, item.Coordinate, forceRefresh)
			if err != nil {
				return err
			}
			fetched[i] = fetchedItem{item: item, tree: tree}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	if !spec.IsComposed() {
		log.Debug("assembling simple skill")
		return assembleSimple(spec, fetched[0]), nil
	}

	log.WithField("sources", len(fetched)).Debug("assembling composed skill")
	return assembleComposed(spec, fetched)
}

// assembleSimple copies the single source tree verbatim, markdown and
// non-markdown alike, with no boundary markers.
func assembleSimple(spec config.SkillSpec, src fetchedItem) *skilltypes.ComposedSkill {
	files := make(skilltypes.ContentTree, len(src.tree))
	manifest := make(skilltypes.Manifest)
	for path, content := range src.tree {
		files[path] = content
		manifest.Record(path, src.item.Level, src.item.Label)
	}

	description := spec.Description
	if description == "" {
		if raw, ok := files[compose.SkillFileName]; ok {
			if meta, err := compose.ExtractMetadata(raw); err == nil && meta != nil {
				description = meta.Description
			}
		}
	}

	return &skilltypes.ComposedSkill{
		Name:         spec.Name,
		Description:  description,
		Files:        files,
		Manifest:     manifest,
		ComposedFrom: []string{src.item.Label},
	}
}

// assembleComposed partitions every source tree into markdown and
// other files, sorts sources ascending by precedence (stable, so
// same-level sources keep their configured order), then composes each
// part.
func assembleComposed(spec config.SkillSpec, fetched []fetchedItem) (*skilltypes.ComposedSkill, error) {
	sorted := make([]fetchedItem, len(fetched))
	copy(sorted, fetched)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].item.Level < sorted[j].item.Level
	})

	files := make(skilltypes.ContentTree)
	manifest := make(skilltypes.Manifest)

	// Markdown composes per relative path: each markdown file keeps
	// its name, with one precedence-marked section per contributing
	// source.
	mdPaths := map[string]bool{}
	for _, src := range sorted {
		markdown, _ := src.tree.Partition()
		for path := range markdown {
			mdPaths[path] = true
		}
	}
	sortedPaths := make([]string, 0, len(mdPaths))
	for path := range mdPaths {
		sortedPaths = append(sortedPaths, path)
	}
	sort.Strings(sortedPaths)

	for _, path := range sortedPaths {
		var entries []compose.MarkdownEntry
		var origin skilltypes.ComposeItem
		for _, src := range sorted {
			content, ok := src.tree[path]
			if !ok {
				continue
			}
			entries = append(entries, compose.MarkdownEntry{
				Level:   src.item.Level,
				Label:   src.item.Label,
				Content: string(content),
			})
			// Highest contributing level owns the path; sorted order
			// makes that the last contributor.
			origin = src.item
		}
		composed, err := compose.ComposeMarkdown(entries, true)
		if err != nil {
			return nil, err
		}
		files[path] = []byte(composed)
		manifest.Record(path, origin.Level, origin.Label)
	}

	treeEntries := make([]compose.TreeEntry, 0, len(sorted))
	for _, src := range sorted {
		_, other := src.tree.Partition()
		treeEntries = append(treeEntries, compose.TreeEntry{
			Level: src.item.Level,
			Label: src.item.Label,
			Tree:  other,
		})
	}
	mergedFiles, fileManifest := compose.ComposeFiles(treeEntries)
	for path, content := range mergedFiles {
		files[path] = content
	}
	for path, entry := range fileManifest {
		manifest[path] = entry
	}

	composedFrom := make([]string, 0, len(fetched))
	for _, src := range fetched {
		composedFrom = append(composedFrom, src.item.Label)
	}

	return &skilltypes.ComposedSkill{
		Name:         spec.Name,
		Description:  spec.Description,
		Files:        files,
		Manifest:     manifest,
		ComposedFrom: composedFrom,
	}, nil
}
