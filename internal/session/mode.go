package session

import (
	"errors"
	"fmt"
)

// Mode is a study mode. Each mode has at most one saved session.
type Mode string

const (
	ModeAll      Mode = "all"
	ModeRandom   Mode = "random"
	ModeAdaptive Mode = "adaptive"
	ModeWeakness Mode = "weakness"
	ModeCategory Mode = "category"
	ModeSearch   Mode = "search"
	ModeReview   Mode = "review"
)

// Modes lists every study mode.
var Modes = []Mode{ModeAll, ModeRandom, ModeAdaptive, ModeWeakness, ModeCategory, ModeSearch, ModeReview}

// Sentinel errors returned by the Manager.
var (
	ErrUnknownMode     = errors.New("unknown study mode")
	ErrSessionInFlight = errors.New("a saved session exists for this mode")
	ErrNoActiveSession = errors.New("no active session")
	ErrNoItems         = errors.New("no items to study")
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	m := Mode(s)
	if !m.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	for _, known := range Modes {
		if m == known {
			return true
		}
	}
	return false
}

// Supplied reports whether the mode studies an externally supplied item list.
func (m Mode) Supplied() bool {
	return m == ModeCategory || m == ModeSearch
}
