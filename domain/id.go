package domain

import "fmt"

// ID is a match ID of a fixed 16 bytes: opaque, equality-comparable,
// and round-trippable is all any game needs from it, so this module fixes
// it to a 16-byte value rather than adding an extra generic type parameter
// to every proof/store type for a field no example domain needs to vary in
// shape, only in value.
type ID [16]byte

// Bytes returns the ID as a byte slice.
func (id ID) Bytes() []byte { return id[:] }

// BytesToID copies b (which must be exactly 16 bytes) into an ID.
func BytesToID(b []byte) (ID, error) {
	var id ID
	if len(b) != len(id) {
		return ID{}, fmt.Errorf("domain: ID must be %d bytes, got %d", len(id), len(b))
	}
	copy(id[:], b)
	return id, nil
}

// String returns a hex representation of the ID.
func (id ID) String() string {
	return fmt.Sprintf("%x", id[:])
}
