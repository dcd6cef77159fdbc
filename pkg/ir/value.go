package ir

import "strconv"

// SSAValue is a unique identifier for one SSA definition, tagged with the
// register file it lives in. Two SSA values are equal iff their identifiers
// match — the File tag travels with the value for convenience but is never
// consulted by equality.
type SSAValue struct {
	ID   uint32
	File RegFile
}

// Zero is the sentinel "no value" SSA reference, used for absent predicate
// guards and absent destinations.
var Zero = SSAValue{}

// IsZero reports whether v is the sentinel "no value".
func (v SSAValue) IsZero() bool { return v == Zero }

// String renders v as "%<id>", the surface syntax pkg/fixture.Parse reads
// destination and source references in.
func (v SSAValue) String() string {
	if v.IsZero() {
		return "%-"
	}
	return "%" + strconv.FormatUint(uint64(v.ID), 10)
}

// ValueAlloc hands out fresh, increasing SSA identifiers for one function.
// It is a convenience for tests (the fixture loader keeps its own counter);
// the scheduler core itself never allocates SSA values.
type ValueAlloc struct{ next uint32 }

// New returns a fresh SSA value in file f.
func (a *ValueAlloc) New(f RegFile) SSAValue {
	a.next++
	return SSAValue{ID: a.next, File: f}
}
