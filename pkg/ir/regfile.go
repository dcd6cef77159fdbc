package ir

// RegFile identifies one of the physical register files (or the Mem
// pseudo-file used by the spill-cost ladder) an SSA value can live in.
type RegFile uint8

const (
	GPR RegFile = iota
	UGPR
	Pred
	UPred
	Bar
	Carry
	Mem
	numRegFiles
)

func (f RegFile) String() string {
	switch f {
	case GPR:
		return "GPR"
	case UGPR:
		return "UGPR"
	case Pred:
		return "Pred"
	case UPred:
		return "UPred"
	case Bar:
		return "Bar"
	case Carry:
		return "Carry"
	case Mem:
		return "Mem"
	default:
		return "RegFile(?)"
	}
}

// AllRegFiles enumerates every register file, in a stable order.
func AllRegFiles() []RegFile {
	return []RegFile{GPR, UGPR, Pred, UPred, Bar, Carry, Mem}
}

// number is the set of element types PerRegFile supports arithmetic over.
type number interface {
	~int8 | ~int32 | ~uint32 | ~float64
}

// PerRegFile is a total map from RegFile to T: every lookup is defined
// (zero value for files that were never set), and the whole thing supports
// element-wise arithmetic.
type PerRegFile[T number] struct {
	v [numRegFiles]T
}

// Get returns the value stored for file f (zero if never set).
func (p PerRegFile[T]) Get(f RegFile) T { return p.v[f] }

// Set returns a copy of p with file f updated to val.
func (p PerRegFile[T]) Set(f RegFile, val T) PerRegFile[T] {
	p.v[f] = val
	return p
}

// Add adds val to file f in place.
func (p *PerRegFile[T]) Add(f RegFile, val T) { p.v[f] += val }

// Plus returns the element-wise sum of p and other.
func (p PerRegFile[T]) Plus(other PerRegFile[T]) PerRegFile[T] {
	var out PerRegFile[T]
	for i := range p.v {
		out.v[i] = p.v[i] + other.v[i]
	}
	return out
}

// Minus returns the element-wise difference p - other.
func (p PerRegFile[T]) Minus(other PerRegFile[T]) PerRegFile[T] {
	var out PerRegFile[T]
	for i := range p.v {
		out.v[i] = p.v[i] - other.v[i]
	}
	return out
}

// Max returns the element-wise maximum of p and other.
func (p PerRegFile[T]) Max(other PerRegFile[T]) PerRegFile[T] {
	var out PerRegFile[T]
	for i := range p.v {
		if p.v[i] > other.v[i] {
			out.v[i] = p.v[i]
		} else {
			out.v[i] = other.v[i]
		}
	}
	return out
}

// ForEach calls fn once per register file in stable order.
func (p PerRegFile[T]) ForEach(fn func(f RegFile, val T)) {
	for _, f := range AllRegFiles() {
		fn(f, p.v[f])
	}
}

// NewPerRegFile builds a PerRegFile from an explicit set of entries.
func NewPerRegFile[T number](entries map[RegFile]T) PerRegFile[T] {
	var out PerRegFile[T]
	for f, val := range entries {
		out.v[f] = val
	}
	return out
}
