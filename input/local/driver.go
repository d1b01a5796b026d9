package local

import (
	"fmt"
	"sync"

	"github.com/wippyai/xr-input-layer/input"
)

// HapticEvent is a haptic pulse requested by a threshold or dpad binding.
type HapticEvent struct {
	Haptic  input.Haptic
	Action  string
	Session uint64
}

// Driver implements input.Driver. Raw device values are pushed by path and
// read by every bound session on sync.
// Thread-safe.
type Driver struct {
	rt       *Runtime
	sessions map[uint64]*Session
	raw      map[input.Path]input.Value
	haptics  []HapticEvent
	mu       sync.RWMutex
}

var _ input.Driver = (*Driver)(nil)

// NewDriver creates a driver reading paths from rt's path space.
func NewDriver(rt *Runtime) *Driver {
	return &Driver{
		rt:       rt,
		sessions: make(map[uint64]*Session),
		raw:      make(map[input.Path]input.Value),
	}
}

// AddSession implements input.Driver.
func (d *Driver) AddSession(handle uint64, session input.Session) error {
	s, ok := session.(*Session)
	if !ok {
		return fmt.Errorf("input: session %T does not belong to this runtime", session)
	}
	d.mu.Lock()
	d.sessions[handle] = s
	d.mu.Unlock()
	s.bind(d, handle)
	return nil
}

// RemoveSession implements input.Driver. The session stops reading device
// input.
func (d *Driver) RemoveSession(handle uint64) {
	d.mu.Lock()
	s, ok := d.sessions[handle]
	delete(d.sessions, handle)
	d.mu.Unlock()
	if ok {
		s.bind(nil, 0)
	}
}

// Sessions returns the handles of bound sessions.
func (d *Driver) Sessions() []uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]uint64, 0, len(d.sessions))
	for h := range d.sessions {
		out = append(out, h)
	}
	return out
}

// Push sets the raw value of a device path.
func (d *Driver) Push(path string, v input.Value) error {
	p, err := d.rt.Path(path)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.raw[p] = v
	d.mu.Unlock()
	return nil
}

// Release removes the raw value of a device path, making it inactive.
func (d *Driver) Release(path string) {
	p, ok := d.rt.lookup(path)
	if !ok {
		return
	}
	d.mu.Lock()
	delete(d.raw, p)
	d.mu.Unlock()
}

// Haptics drains the haptic events emitted since the last call.
func (d *Driver) Haptics() []HapticEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := d.haptics
	d.haptics = nil
	return out
}

func (d *Driver) value(p input.Path) (input.Value, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	v, ok := d.raw[p]
	return v, ok
}

func (d *Driver) emit(ev HapticEvent) {
	d.mu.Lock()
	d.haptics = append(d.haptics, ev)
	d.mu.Unlock()
}
