// Package skill defines the core data model for skill assembly:
// precedence levels, source coordinates, content trees, and the
// composed artifacts produced by the assembler.
package skill

import (
	"github.com/pkg/errors"
)

// PrecedenceLevel orders the sources of a composed skill. Higher
// levels win conflicts and their markdown is emitted after lower
// levels. The ordering is an open-ended integer rank so that further
// tiers can be added without touching comparison sites.
type PrecedenceLevel int

// Known precedence levels, lowest first. The gap between ranks leaves
// room for intermediate tiers (e.g. a team level between default and
// user).
const (
	LevelDefault PrecedenceLevel = 0
	LevelUser    PrecedenceLevel = 100
)

// String returns the configuration spelling of the level.
func (l PrecedenceLevel) String() string {
	switch l {
	case LevelDefault:
		return "default"
	case LevelUser:
		return "user"
	default:
		return "unknown"
	}
}

// ParseLevel converts a configuration string to a PrecedenceLevel.
// The empty string maps to LevelDefault.
func ParseLevel(s string) (PrecedenceLevel, error) {
	switch s {
	case "", "default":
		return LevelDefault, nil
	case "user":
		return LevelUser, nil
	default:
		return 0, errors.Errorf("unknown precedence level %q (expected 'default' or 'user')", s)
	}
}
