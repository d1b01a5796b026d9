package binding

import (
	stderrors "errors"

	"github.com/wippyai/xr-input-layer/errors"
	"github.com/wippyai/xr-input-layer/input"
)

// Threshold is an analog threshold record refining the suggestion of
// Action on Path.
type Threshold struct {
	OnHaptic  *input.Haptic
	OffHaptic *input.Haptic
	Path      string
	Action    uint64
	On        float32
	Off       float32
}

// DPad is a dpad parameter record for the two-axis source Identifier,
// scoped to the actions of one action set.
type DPad struct {
	Identifier string
	Params     input.DPadParams
	ActionSet  uint64
}

// Suggestion is one resolved suggested binding.
type Suggestion struct {
	// Target is the input action the binding drives.
	Target input.Action
	Path   string
	// Action and ActionSet are the handles the application used, matched
	// against Threshold and DPad records.
	Action    uint64
	ActionSet uint64
}

type thresholdKey struct {
	path   string
	action uint64
}

type dpadKey struct {
	identifier string
	set        uint64
}

// Builder accumulates the bindings of one interaction profile.
// Records must be added before the suggestions they refine.
type Builder struct {
	rt         input.Runtime
	thresholds map[thresholdKey]Threshold
	dpads      map[dpadKey]input.DPadParams
	bindings   []input.Binding
	entries    []Entry
	defaults   input.DPadParams
}

// NewBuilder creates a builder resolving paths in rt. defaults apply to
// dpad paths suggested without a matching DPad record.
func NewBuilder(rt input.Runtime, defaults input.DPadParams) *Builder {
	return &Builder{
		rt:         rt,
		thresholds: make(map[thresholdKey]Threshold),
		dpads:      make(map[dpadKey]input.DPadParams),
		defaults:   defaults,
	}
}

// AddThreshold registers an analog threshold record.
func (b *Builder) AddThreshold(t Threshold) error {
	if err := ValidateAnalog(t.On, t.Off); err != nil {
		return err
	}
	b.thresholds[thresholdKey{path: t.Path, action: t.Action}] = t
	return nil
}

// AddDPad registers a dpad parameter record.
func (b *Builder) AddDPad(d DPad) error {
	if err := ValidateDPad(d.Params); err != nil {
		return err
	}
	b.dpads[dpadKey{identifier: d.Identifier, set: d.ActionSet}] = d.Params
	return nil
}

// Add translates one suggestion into an input binding.
func (b *Builder) Add(s Suggestion) error {
	entry := Entry{
		ActionSet: s.Target.ActionSet().Name(),
		Action:    s.Target.Name(),
		Path:      s.Path,
	}

	if identifier, dir, ok := SplitDPad(s.Path); ok {
		src, err := b.resolve(identifier)
		if err != nil {
			return err
		}
		params, ok := b.dpads[dpadKey{identifier: identifier, set: s.ActionSet}]
		if !ok {
			params = b.defaults
		}
		b.bindings = append(b.bindings, &input.DPadBinding{
			Action:    s.Target,
			Path:      src,
			Params:    params,
			Direction: dir,
		})
		entry.Kind = KindDPad
		entry.Direction = dir.String()
		entry.On = params.ForceThreshold
		entry.Off = params.ForceThresholdReleased
		entry.Sticky = params.Sticky
		b.entries = append(b.entries, entry)
		return nil
	}

	src, err := b.resolve(s.Path)
	if err != nil {
		return err
	}
	if t, ok := b.thresholds[thresholdKey{path: s.Path, action: s.Action}]; ok {
		b.bindings = append(b.bindings, &input.AnalogThresholdBinding{
			Action:    s.Target,
			Path:      src,
			On:        t.On,
			Off:       t.Off,
			OnHaptic:  t.OnHaptic,
			OffHaptic: t.OffHaptic,
		})
		entry.Kind = KindThreshold
		entry.On = t.On
		entry.Off = t.Off
		b.entries = append(b.entries, entry)
		return nil
	}

	b.bindings = append(b.bindings, &input.SimpleBinding{Action: s.Target, Path: src})
	entry.Kind = KindSimple
	b.entries = append(b.entries, entry)
	return nil
}

func (b *Builder) resolve(path string) (input.Path, error) {
	p, err := b.rt.Path(path)
	switch {
	case err == nil:
		return p, nil
	case stderrors.Is(err, input.ErrPathInvalid):
		return 0, errors.PathInvalid(errors.PhaseBinding, path, err.Error())
	default:
		return 0, errors.PathUnsupported(errors.PhaseBinding, path, err)
	}
}

// Bindings returns the translated bindings.
func (b *Builder) Bindings() []input.Binding { return b.bindings }

// Entries returns one printable entry per translated binding.
func (b *Builder) Entries() []Entry { return b.entries }
