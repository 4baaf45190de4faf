package fetcher

import (
	"fmt"

	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// FetchError is the typed failure for remote content retrieval. It
// carries the coordinate and, when the failure came from the API, the
// HTTP status. Transient errors (network failures, rate limiting,
// 5xx) are retried by the fetcher before surfacing; terminal errors
// (missing ref or path, auth failures) surface immediately.
type FetchError struct {
	Coordinate skilltypes.SourceCoordinate
	StatusCode int
	Transient  bool
	Message    string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetching %s: %s", e.Coordinate, e.Message)
	if e.StatusCode != 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.StatusCode)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *FetchError) Unwrap() error {
	return e.Err
}

func isTransient(err error) bool {
	if fe, ok := err.(*FetchError); ok {
		return fe.Transient
	}
	return false
}
