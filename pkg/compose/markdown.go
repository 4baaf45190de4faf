// Package compose merges ordered content from multiple precedence
// levels into one skill artifact: markdown documents are concatenated
// with precedence boundary markers, other files merge with a
// highest-level-wins policy. Both composers are pure functions of
// their inputs; for fixed inputs the output is byte-identical
// regardless of fetch timing or concurrency.
package compose

import (
	"fmt"
	"strings"

	skilltypes "github.com/jingkaihe/skillsync/pkg/types/skill"
)

// Boundary markers emitted before each section of a composed markdown
// document. The machine-parseable first line identifies the level;
// the following lines instruct the consumer. The user marker states
// explicitly that it overrides default content on conflict.
const (
	defaultMarker = "<!-- PRECEDENCE: default -->\n" +
		"<!-- The following content is from the default-level skill -->"
	userMarker = "<!-- PRECEDENCE: user (overrides default) -->\n" +
		"<!-- The following content is from the user-level skill and takes priority -->\n" +
		"<!-- When conflicts exist, follow the user-level instructions below -->"
)

// CompositionError reports a violated composition invariant. These
// indicate a caller bug, not bad user input.
type CompositionError struct {
	Message string
}

func (e *CompositionError) Error() string {
	return "composition invariant violated: " + e.Message
}

// MarkdownEntry is one document section to compose, tagged with its
// precedence level.
type MarkdownEntry struct {
	Level   skilltypes.PrecedenceLevel
	Label   string
	Content string
}

func marker(level skilltypes.PrecedenceLevel) string {
	switch level {
	case skilltypes.LevelUser:
		return userMarker
	default:
		return defaultMarker
	}
}

// ComposeMarkdown concatenates the entries into one document. Entries
// must be pre-sorted ascending by precedence level (stable within a
// level); each is preceded by its boundary marker. With withMarkers
// false, only a single entry is legal and its content is emitted
// verbatim, which keeps the composed format a strict superset of the
// plain one.
func ComposeMarkdown(entries []MarkdownEntry, withMarkers bool) (string, error) {
	if len(entries) == 0 {
		return "", &CompositionError{Message: "no markdown entries to compose"}
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].Level < entries[i-1].Level {
			return "", &CompositionError{Message: fmt.Sprintf(
				"entries not sorted by precedence: %s after %s",
				entries[i].Level, entries[i-1].Level)}
		}
	}

	if !withMarkers {
		if len(entries) != 1 {
			return "", &CompositionError{Message: "markerless output requires exactly one entry"}
		}
		return strings.TrimSpace(entries[0].Content) + "\n", nil
	}

	var sections []string
	for _, entry := range entries {
		content := strings.TrimSpace(entry.Content)
		if content == "" {
			continue
		}
		sections = append(sections, marker(entry.Level)+"\n\n"+content)
	}
	if len(sections) == 0 {
		// Whitespace-only documents are valid input; emit the boundary
		// markers alone so the output stays deterministic.
		for _, entry := range entries {
			sections = append(sections, marker(entry.Level))
		}
	}
	return strings.Join(sections, "\n\n") + "\n", nil
}
