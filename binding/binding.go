// Package binding translates suggested interaction-profile bindings into
// input runtime bindings.
//
// A Builder folds analog threshold and dpad parameter records into the
// plain suggestions they refine, a Store keeps the last suggestion per
// interaction profile, and a Snapshot records what was suggested in a
// CBOR file for offline inspection.
package binding

import (
	"fmt"
	"math"
	"strings"

	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
)

var dpadSuffixes = map[string]input.Direction{
	"dpad_up":     input.DirectionUp,
	"dpad_down":   input.DirectionDown,
	"dpad_left":   input.DirectionLeft,
	"dpad_right":  input.DirectionRight,
	"dpad_center": input.DirectionCenter,
}

// SplitDPad reports whether path addresses a dpad wedge, e.g.
// /user/hand/left/input/thumbstick/dpad_up, and returns the two-axis
// identifier path it emulates.
func SplitDPad(path string) (identifier string, dir input.Direction, ok bool) {
	i := strings.LastIndexByte(path, '/')
	if i <= 0 {
		return "", 0, false
	}
	dir, ok = dpadSuffixes[path[i+1:]]
	if !ok {
		return "", 0, false
	}
	return path[:i], dir, true
}

// ValidateAnalog checks analog threshold parameters.
func ValidateAnalog(on, off float32) error {
	if !unit(on) || !unit(off) {
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("thresholds must be within [0,1], got on=%g off=%g", on, off), nil)
	}
	if off > on {
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("off threshold %g above on threshold %g", off, on), nil)
	}
	return nil
}

// ValidateDPad checks dpad emulation parameters.
func ValidateDPad(p input.DPadParams) error {
	switch {
	case !unit(p.ForceThreshold) || !unit(p.ForceThresholdReleased):
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("force thresholds must be within [0,1], got %g/%g", p.ForceThreshold, p.ForceThresholdReleased), nil)
	case p.ForceThresholdReleased > p.ForceThreshold:
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("released threshold %g above force threshold %g", p.ForceThresholdReleased, p.ForceThreshold), nil)
	case p.CenterRegion < 0 || p.CenterRegion >= 1:
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("center region %g outside [0,1)", p.CenterRegion), nil)
	case p.WedgeAngle <= 0 || float64(p.WedgeAngle) > math.Pi:
		return errors.Validation(errors.PhaseBinding,
			fmt.Sprintf("wedge angle %g outside (0,pi]", p.WedgeAngle), nil)
	}
	return nil
}

func unit(f float32) bool { return f >= 0 && f <= 1 }
