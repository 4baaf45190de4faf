package resolver

import "fmt"

// UnknownSourceError indicates a reference to a named source that is
// absent from the configured source table. Configuration error, never
// retried.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("source %q not found in configuration", e.Name)
}

// InvalidReferenceError indicates a malformed source reference, e.g.
// a URL that cannot be parsed into owner/repo/ref/path.
type InvalidReferenceError struct {
	Ref    string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Ref, e.Reason)
}

// AmbiguousReferenceError indicates a reference that supplies zero or
// more than one of {named source, local path, direct URL}.
type AmbiguousReferenceError struct {
	Context string
	Count   int
}

func (e *AmbiguousReferenceError) Error() string {
	if e.Count == 0 {
		return fmt.Sprintf("%s: no source reference given (one of source, path, or url is required)", e.Context)
	}
	return fmt.Sprintf("%s: ambiguous reference (%d of source/path/url set, exactly one allowed)", e.Context, e.Count)
}
