package skill

import "fmt"

// CoordinateType discriminates the variants of SourceCoordinate.
type CoordinateType string

// Coordinate variants.
const (
	CoordinateLocal  CoordinateType = "local"
	CoordinateGitHub CoordinateType = "github"
)

// SourceCoordinate is a resolved, fetchable location for skill
// content. It is a closed tagged union: exactly the fields of the
// active variant are populated, and a coordinate is never mutated
// after resolution.
type SourceCoordinate struct {
	Type CoordinateType

	// Local variant
	LocalPath string

	// GitHub variant
	Owner   string
	Repo    string
	Ref     string
	Subpath string
}

// LocalCoordinate builds the local-path variant.
func LocalCoordinate(path string) SourceCoordinate {
	return SourceCoordinate{Type: CoordinateLocal, LocalPath: path}
}

// GitHubCoordinate builds the remote variant.
func GitHubCoordinate(owner, repo, ref, subpath string) SourceCoordinate {
	return SourceCoordinate{
		Type:    CoordinateGitHub,
		Owner:   owner,
		Repo:    repo,
		Ref:     ref,
		Subpath: subpath,
	}
}

// IsLocal reports whether the coordinate points at the local
// filesystem. Local coordinates bypass the cache entirely.
func (c SourceCoordinate) IsLocal() bool {
	return c.Type == CoordinateLocal
}

// String renders the coordinate for diagnostics.
func (c SourceCoordinate) String() string {
	if c.IsLocal() {
		return c.LocalPath
	}
	return fmt.Sprintf("%s/%s/%s@%s", c.Owner, c.Repo, c.Subpath, c.Ref)
}

// BrowseURL returns the github.com tree URL for a remote coordinate,
// used for registry provenance records. Empty for local coordinates.
func (c SourceCoordinate) BrowseURL() string {
	if c.IsLocal() {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s/tree/%s/%s", c.Owner, c.Repo, c.Ref, c.Subpath)
}
