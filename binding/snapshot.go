package binding

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fxamacker/cbor/v2"
)

var (
	snapshotEncMode cbor.EncMode
	snapshotDecMode cbor.DecMode
)

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	snapshotEncMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR encoder mode: %v", err))
	}

	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthAllowed,
	}
	snapshotDecMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create snapshot CBOR decoder mode: %v", err))
	}
}

// Snapshot records the bindings an application suggested, as seen at
// session attach.
type Snapshot struct {
	Created     time.Time `cbor:"1,keyasint" yaml:"created"`
	InstanceID  string    `cbor:"2,keyasint" yaml:"instance_id"`
	Application string    `cbor:"3,keyasint" yaml:"application"`
	Runtime     string    `cbor:"4,keyasint" yaml:"runtime"`
	Profiles    []Profile `cbor:"5,keyasint" yaml:"profiles"`
}

// Encode writes snap to w.
func Encode(w io.Writer, snap *Snapshot) error {
	return snapshotEncMode.NewEncoder(w).Encode(snap)
}

// Decode reads a snapshot from r.
func Decode(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := snapshotDecMode.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("decode binding snapshot: %w", err)
	}
	return &snap, nil
}

// WriteSnapshot atomically replaces the file at path with snap.
func WriteSnapshot(path string, snap *Snapshot) error {
	var buf bytes.Buffer
	if err := Encode(&buf, snap); err != nil {
		return fmt.Errorf("encode binding snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".bindings-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadSnapshot reads the snapshot file at path.
func ReadSnapshot(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
