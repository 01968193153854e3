// Package epaper contains drivers for e-paper panels.
package epaper

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

var debug bool

func init() {
	debug = os.Getenv("EPAPER_DEBUG") != ""
}

// Errors
var (
	ErrState     = errors.New("epaper: operation not valid in the current panel state")
	ErrMode      = errors.New("epaper: mode not supported")
	ErrVariant   = errors.New("epaper: unknown panel variant")
	ErrPlane     = errors.New("epaper: unknown RAM plane")
	ErrPlaneSize = errors.New("epaper: plane data does not match the RAM window")
	ErrWindow    = errors.New("epaper: partial window outside of the panel")
)

// State of a panel session.
type State uint8

// Panel states.
const (
	Uninitialized State = iota
	Reset
	Configured
	Refreshing
	Sleeping
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Reset:
		return "reset"
	case Configured:
		return "configured"
	case Refreshing:
		return "refreshing"
	case Sleeping:
		return "sleeping"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Mode selects how the controller is configured and refreshed.
type Mode uint8

// Refresh modes.
const (
	Full    Mode = iota // Full refresh
	Partial             // Partial refresh of RAM windows
	Gray4               // 4 level grayscale refresh
)

func (m Mode) String() string {
	switch m {
	case Full:
		return "full"
	case Partial:
		return "partial"
	case Gray4:
		return "gray4"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// ParseMode parses a mode name, an empty string selects a full refresh.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "full":
		return Full, nil
	case "partial", "part":
		return Partial, nil
	case "gray4", "gray", "grey":
		return Gray4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrMode, s)
	}
}

// Plane selects one of the controller RAM planes.
type Plane uint8

// RAM planes.
const (
	PlaneBW  Plane = iota // black/white RAM
	PlaneRed              // red RAM, second plane of the 4-gray encoding
)

func (p Plane) String() string {
	switch p {
	case PlaneBW:
		return "BW"
	case PlaneRed:
		return "RED"
	default:
		return fmt.Sprintf("Plane(%d)", uint8(p))
	}
}
