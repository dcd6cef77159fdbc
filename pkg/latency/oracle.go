package latency

import "github.com/minz/sm75sched/pkg/ir"

// Oracle is the SM75 latency oracle: five pure functions keyed on the
// producer op, consumer op, their operand indices, the destination
// register file, and whether the producer is predicated. It holds no
// mutable state; every method is a deterministic function of its
// arguments.
type Oracle struct{}

// NewOracle returns the SM75 latency oracle. It takes no configuration:
// the tables are compile-time constants.
func NewOracle() Oracle { return Oracle{} }

// Raw returns the minimum cycle separation required between w (the
// producer, writing via its dst_idx-th destination) and r (the consumer,
// reading via its src_idx-th source) on register file dstFile.
func (Oracle) Raw(w, r Operand, dstFile ir.RegFile) uint32 {
	switch dstFile {
	case ir.GPR, ir.Pred:
		return RawByClass(classifyWriter(w), ClassifyReg(r, RoleReader))
	case ir.UGPR, ir.UPred:
		return RawByClassU(classifyWriterU(w), ClassifyUReg(r, RoleReader))
	case ir.Carry:
		return 6
	default:
		return 0
	}
}

// RawByClass is the RAW matrix lookup in terms of latency classes.
// Oracle.Raw classifies an Operand pair down to (writer, reader) and
// calls this.
func RawByClass(w, r RegLatencySM75) uint32 {
	if v, ok := rawTable[classPair{w, r}]; ok {
		return v
	}
	return defaultRaw(w, r)
}

// RawByClassU is RawByClass's UGPR/UPred-side counterpart.
func RawByClassU(w, r URegLatencySM75) uint32 {
	if v, ok := rawTableU[uClassPair{w, r}]; ok {
		return v
	}
	return defaultRawU(w, r)
}

// War returns the minimum cycle separation required between r (a read)
// and a subsequent w (a write) to the same register on dstFile.
func (Oracle) War(r, w Operand, dstFile ir.RegFile) uint32 {
	switch dstFile {
	case ir.GPR, ir.Pred:
		return WarByClass(ClassifyReg(r, RoleReader), classifyWriter(w))
	case ir.UGPR, ir.UPred:
		return 2
	case ir.Carry:
		return 6
	default:
		return 0
	}
}

// WarByClass is the WAR matrix lookup in terms of latency classes.
func WarByClass(r, w RegLatencySM75) uint32 {
	if v, ok := warTable[classPair{w, r}]; ok {
		return v
	}
	return defaultWar(r, w)
}

// Waw returns the minimum cycle separation required between two writes
// (w1, then w2) to the same register on dstFile. w1Predicated reflects
// writer #1's actual guard; it is never hardcoded.
func (Oracle) Waw(w1, w2 Operand, dstFile ir.RegFile, w1Predicated bool) uint32 {
	switch dstFile {
	case ir.GPR, ir.Pred:
		return WawByClass(classifyWriter(w1), classifyWriter(w2), w1Predicated)
	case ir.UGPR, ir.UPred:
		if w1Predicated {
			return 3
		}
		return 2
	case ir.Carry:
		return 6
	default:
		return 0
	}
}

// WawByClass is the WAW matrix lookup in terms of latency classes.
func WawByClass(w1, w2 RegLatencySM75, w1Predicated bool) uint32 {
	if v, ok := wawTable[classPair{w1, w2}]; ok {
		if w1Predicated {
			return v[1]
		}
		return v[0]
	}
	return defaultWaw(w1, w2, w1Predicated)
}

// Paw returns the minimum cycle separation required between a predicate
// write w and its consumption as a guard on dstFile.
func (Oracle) Paw(w Operand, dstFile ir.RegFile) uint32 {
	switch dstFile {
	case ir.GPR, ir.Pred:
		return PawByClass(classifyWriter(w))
	case ir.UGPR, ir.UPred:
		return PawByClassU(classifyWriterU(w))
	case ir.Carry:
		return 6
	default:
		return 0
	}
}

// PawByClass is the PAW matrix lookup in terms of the writer's latency
// class; the reader side is always the synthetic guard-consumption class.
func PawByClass(w RegLatencySM75) uint32 {
	if v, ok := pawTable[w]; ok {
		return v
	}
	return defaultPaw(w)
}

// PawByClassU is PawByClass's UPred-side counterpart.
func PawByClassU(w URegLatencySM75) uint32 {
	if v, ok := pawTableU[w]; ok {
		return v
	}
	return defaultPawU(w)
}

// NeedsScoreboards reports whether op has variable latency and must be
// tracked with a software scoreboard rather than a fixed delay slot.
func (Oracle) NeedsScoreboards(op ir.Op) bool { return op.NeedsScoreboardsHint() }

// classifyWriter classifies a producer Operand, enforcing the
// IMADWideAB-is-reader-only guard before returning.
func classifyWriter(w Operand) RegLatencySM75 {
	c := ClassifyReg(w, RoleWriter)
	requireNotIllegalWriterClass(c, w.Op)
	return c
}

func classifyWriterU(w Operand) URegLatencySM75 {
	return ClassifyUReg(w, RoleWriter)
}

// EstimateVariableLatency estimates the delay a decoupled (variable
// latency) producer needs before its dependents may be scheduled, when the
// producer lacks a fixed latency on this SM. The dependency-graph builder
// widens a data edge to at least this value. It is deliberately a rough,
// op-family estimate; the real wait is resolved by a later
// scoreboard-barrier assignment pass.
func EstimateVariableLatency(op ir.Op) uint32 {
	switch op {
	case ir.OpLd, ir.OpLdg:
		return 200
	case ir.OpTex:
		return 300
	case ir.OpAtom, ir.OpSt, ir.OpStg:
		return 200
	case ir.OpDAdd, ir.OpDMul:
		return 20
	case ir.OpHAdd2, ir.OpHMul2:
		return 12
	case ir.OpHmma884, ir.OpHmma1684, ir.OpHmma16816, ir.OpHmma16832, ir.OpImma:
		return 32
	default:
		return 24
	}
}
