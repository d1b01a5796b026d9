package resource

import "fmt"

// Index addresses an arena slot. Generation distinguishes successive
// occupants of the same slot and is never zero for an issued index.
type Index struct {
	Slot       uint32
	Generation uint32
}

// Bits encodes the index as an opaque handle value: generation in the
// high 32 bits, slot in the low 32 bits. Issued indices never encode to 0.
func (i Index) Bits() uint64 {
	return uint64(i.Generation)<<32 | uint64(i.Slot)
}

// IndexFromBits decodes a handle value produced by Bits.
// It fails for values that no arena could have issued.
func IndexFromBits(bits uint64) (Index, bool) {
	gen := uint32(bits >> 32)
	if gen == 0 {
		return Index{}, false
	}
	return Index{Slot: uint32(bits), Generation: gen}, true
}

func (i Index) String() string {
	return fmt.Sprintf("%d@%d", i.Slot, i.Generation)
}
