// Package resolver translates skill and compose-item references from
// configuration into concrete source coordinates. Resolution is a
// pure function of its inputs: identical references always produce
// identical coordinates.
package resolver

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/jingkaihe/skillsync/pkg/config"
	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// Context carries the configuration tables resolution depends on.
type Context struct {
	Sources       map[string]config.Source
	DefaultBranch string
}

// ParseGitHubURL parses a github.com browsing URL into a coordinate.
// Accepted shapes:
//
//	https://github.com/owner/repo
//	https://github.com/owner/repo/tree/ref/path/to/skill
//	https://github.com/owner/repo/blob/ref/path/to/skill
//	github.com/owner/repo/tree/ref (scheme optional)
//
// When the URL carries no ref, defaultBranch is used.
func ParseGitHubURL(raw, defaultBranch string) (skilltypes.SourceCoordinate, error) {
	normalized := raw
	if !strings.HasPrefix(normalized, "http://") && !strings.HasPrefix(normalized, "https://") {
		normalized = "https://" + normalized
	}

	parsed, err := url.Parse(normalized)
	if err != nil {
		return skilltypes.SourceCoordinate{}, &InvalidReferenceError{Ref: raw, Reason: err.Error()}
	}
	if parsed.Host != "github.com" && parsed.Host != "www.github.com" {
		return skilltypes.SourceCoordinate{}, &InvalidReferenceError{Ref: raw, Reason: "not a github.com URL"}
	}

	parts := splitPath(parsed.Path)
	if len(parts) < 2 {
		return skilltypes.SourceCoordinate{}, &InvalidReferenceError{Ref: raw, Reason: "expected at least owner/repo"}
	}

	owner, repo := parts[0], parts[1]
	ref := defaultBranch
	subpath := ""

	if len(parts) >= 4 && (parts[2] == "tree" || parts[2] == "blob") {
		ref = parts[3]
		if len(parts) > 4 {
			subpath = strings.Join(parts[4:], "/")
		}
	} else if len(parts) > 2 {
		return skilltypes.SourceCoordinate{}, &InvalidReferenceError{Ref: raw, Reason: "unrecognized URL shape (expected /owner/repo[/tree/ref/path])"}
	}

	return skilltypes.GitHubCoordinate(owner, repo, ref, subpath), nil
}

func splitPath(p string) []string {
	var parts []string
	for _, part := range strings.Split(strings.Trim(p, "/"), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}

// ResolveSource resolves a named source from the configured table.
func ResolveSource(name string, ctx Context) (skilltypes.SourceCoordinate, error) {
	source, ok := ctx.Sources[name]
	if !ok {
		return skilltypes.SourceCoordinate{}, &UnknownSourceError{Name: name}
	}

	owner, repo, found := strings.Cut(source.Repo, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return skilltypes.SourceCoordinate{}, &InvalidReferenceError{Ref: source.Repo, Reason: "repo must be in 'owner/repo' format"}
	}

	ref := source.Branch
	if ref == "" {
		ref = ctx.DefaultBranch
	}

	return skilltypes.GitHubCoordinate(owner, repo, ref, source.Path), nil
}

// ResolveItem resolves one compose item to a coordinate, precedence
// level, and diagnostic label. context names the skill and item for
// error reporting.
func ResolveItem(item config.ComposeItemSpec, context string, ctx Context) (skilltypes.ComposeItem, error) {
	refs := 0
	for _, r := range []string{item.Source, item.Path, item.URL} {
		if r != "" {
			refs++
		}
	}
	if refs != 1 {
		return skilltypes.ComposeItem{}, &AmbiguousReferenceError{Context: context, Count: refs}
	}

	level, err := skilltypes.ParseLevel(item.Level)
	if err != nil {
		return skilltypes.ComposeItem{}, &InvalidReferenceError{Ref: item.Level, Reason: err.Error()}
	}

	switch {
	case item.Source != "":
		if item.Skill == "" {
			return skilltypes.ComposeItem{}, &InvalidReferenceError{Ref: item.Source, Reason: "skill name is required when using a named source"}
		}
		coord, err := ResolveSource(item.Source, ctx)
		if err != nil {
			return skilltypes.ComposeItem{}, err
		}
		if coord.Subpath != "" {
			coord.Subpath = coord.Subpath + "/" + item.Skill
		} else {
			coord.Subpath = item.Skill
		}
		return skilltypes.ComposeItem{
			Coordinate: coord,
			Level:      level,
			Label:      item.Source + "/" + item.Skill,
		}, nil

	case item.URL != "":
		coord, err := ParseGitHubURL(item.URL, ctx.DefaultBranch)
		if err != nil {
			return skilltypes.ComposeItem{}, err
		}
		label := coord.Owner + "/" + coord.Repo
		if coord.Subpath != "" {
			label = label + "/" + coord.Subpath
		}
		return skilltypes.ComposeItem{Coordinate: coord, Level: level, Label: label}, nil

	default:
		expanded, err := config.ExpandPath(item.Path)
		if err != nil {
			return skilltypes.ComposeItem{}, &InvalidReferenceError{Ref: item.Path, Reason: err.Error()}
		}
		return skilltypes.ComposeItem{
			Coordinate: skilltypes.LocalCoordinate(expanded),
			Level:      level,
			Label:      path.Base(expanded),
		}, nil
	}
}

// ResolveSpec resolves a full skill spec into its ordered compose
// items. Simple skills produce a single default-level item; composed
// skills resolve every entry of the compose list, preserving input
// order.
func ResolveSpec(spec config.SkillSpec, ctx Context) ([]skilltypes.ComposeItem, error) {
	if spec.IsComposed() {
		items := make([]skilltypes.ComposeItem, 0, len(spec.Compose))
		for i, entry := range spec.Compose {
			item, err := ResolveItem(entry, fmt.Sprintf("%s compose item %d", spec.Name, i), ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		return items, nil
	}

	item, err := ResolveItem(config.ComposeItemSpec{
		Source: spec.Source,
		Skill:  spec.Name,
		Path:   spec.Path,
		URL:    spec.URL,
	}, "skill "+spec.Name, ctx)
	if err != nil {
		return nil, err
	}
	return []skilltypes.ComposeItem{item}, nil
}
