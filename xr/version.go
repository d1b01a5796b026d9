package xr

import "fmt"

// Version is a packed major.minor.patch version: 16 bits major,
// 16 bits minor, 32 bits patch.
type Version uint64

// CurrentAPIVersion is the API version this layer is built against.
var CurrentAPIVersion = MakeVersion(1, 0, 34)

// MakeVersion packs a version.
func MakeVersion(major, minor uint16, patch uint32) Version {
	return Version(uint64(major)<<48 | uint64(minor)<<32 | uint64(patch))
}

func (v Version) Major() uint16 { return uint16(v >> 48) }
func (v Version) Minor() uint16 { return uint16(v >> 32) }
func (v Version) Patch() uint32 { return uint32(v) }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch())
}
