package engine

import (
	"fmt"
	"strings"
)

// ShadowMode selects how shadows are produced for a frame.
type ShadowMode int

const (
	// ShadowsNone renders lit geometry without a shadow pass.
	ShadowsNone ShadowMode = iota
	// ShadowsRaytraced traces a shadow mask every frame.
	ShadowsRaytraced
)

func (m ShadowMode) String() string {
	switch m {
	case ShadowsNone:
		return "none"
	case ShadowsRaytraced:
		return "raytraced"
	default:
		return fmt.Sprintf("ShadowMode(%d)", int(m))
	}
}

// Next cycles to the following mode.
func (m ShadowMode) Next() ShadowMode {
	if m == ShadowsRaytraced {
		return ShadowsNone
	}
	return ShadowsRaytraced
}

// ParseShadowMode accepts the names returned by String, case-insensitively.
func ParseShadowMode(s string) (ShadowMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "none", "off":
		return ShadowsNone, nil
	case "raytraced", "rt", "on":
		return ShadowsRaytraced, nil
	}
	return ShadowsNone, fmt.Errorf("unknown shadow mode %q (want none or raytraced)", s)
}
