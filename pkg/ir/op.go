package ir

// Op is the opcode kind the scheduler classifies on. It names Turing-class
// SM75 machine opcodes rather than a generic IR vocabulary, since both the
// latency oracle and the side-effect classifier key off real instruction
// identities.
type Op uint16

const (
	OpNop Op = iota

	// Coupled ALU family: fixed-latency, single-cycle-class integer/FP ops.
	OpIAdd3
	OpLop3
	OpISetP
	OpFAdd
	OpFMul
	OpFSetP
	OpFFma
	OpShf
	OpLea // coupled 64-bit address dispatch (CoupledDisp64)

	// IMAD family: operand-index-sensitive latency classes.
	OpIMad
	OpIMadWide
	OpIMad64

	// Redirected family: coupled on some SMs, decoupled on others.
	OpDAdd  // RedirectedFP64
	OpDMul  // RedirectedFP64
	OpHAdd2 // RedirectedFP16
	OpHMul2 // RedirectedFP16
	OpHmma884
	OpHmma1684
	OpHmma16816
	OpHmma16832
	OpImma

	// Decoupled / variable-latency, scoreboard-tracked ops.
	OpLd
	OpSt
	OpLdg
	OpStg
	OpTex
	OpAtom

	// Miscellaneous classification-sensitive ops.
	OpBMov // classifies differently reader vs. writer
	OpCS2R // classifies by destination width
	OpR2UR // classifies differently reader vs. writer (GPR side); one class on the UGPR side
	OpMov
	OpPrmt

	// Uniform-datapath ops (consumed via URegLatencySM75 only).
	OpUMov
	OpULdc
	OpVoteU

	// Control flow / barrier side effects.
	OpBra
	OpExit
	OpBar    // block barrier (side effect Barrier)
	OpMemBar // memory fence (side effect Barrier)
	OpDepBar // scoreboard dependency barrier (side effect Barrier)
)

// SideEffectType classifies an op for the dependency-graph builder and the
// schedule-unit partitioner: None ops participate only in data/predicate
// dependencies, Memory ops are also chained to each other in program order,
// and Barrier ops pin their own singleton, unreorderable schedule unit.
type SideEffectType uint8

const (
	SideEffectNone SideEffectType = iota
	SideEffectMemory
	SideEffectBarrier
)

// SideEffectType returns op's side-effect class. The scheduler only ever
// calls this through the Instruction it is handed; it never special-cases
// an Op directly, keeping the classification itself swappable.
func (op Op) SideEffectType() SideEffectType {
	switch op {
	case OpLd, OpSt, OpLdg, OpStg, OpTex, OpAtom:
		return SideEffectMemory
	case OpBar, OpMemBar, OpDepBar:
		return SideEffectBarrier
	default:
		return SideEffectNone
	}
}

// NeedsScoreboardsHint reports whether op is a member of the "decoupled or
// redirected" family. The oracle's NeedsScoreboards returns it unchanged,
// and the UGPR-side classifier uses it to pick the decoupled vector classes.
func (op Op) NeedsScoreboardsHint() bool {
	switch op {
	case OpLd, OpSt, OpLdg, OpStg, OpTex, OpAtom,
		OpDAdd, OpDMul, OpHAdd2, OpHMul2,
		OpHmma884, OpHmma1684, OpHmma16816, OpHmma16832, OpImma:
		return true
	default:
		return false
	}
}

var opNames = [...]string{
	OpNop: "nop", OpIAdd3: "iadd3", OpLop3: "lop3", OpISetP: "isetp",
	OpFAdd: "fadd", OpFMul: "fmul", OpFSetP: "fsetp", OpFFma: "ffma",
	OpShf: "shf", OpLea: "lea", OpIMad: "imad", OpIMadWide: "imadwide",
	OpIMad64: "imad64", OpDAdd: "dadd", OpDMul: "dmul", OpHAdd2: "hadd2",
	OpHMul2: "hmul2", OpHmma884: "hmma884", OpHmma1684: "hmma1684",
	OpHmma16816: "hmma16816", OpHmma16832: "hmma16832", OpImma: "imma",
	OpLd: "ld", OpSt: "st", OpLdg: "ldg", OpStg: "stg", OpTex: "tex",
	OpAtom: "atom", OpBMov: "bmov", OpCS2R: "cs2r", OpR2UR: "r2ur",
	OpMov: "mov", OpPrmt: "prmt", OpUMov: "umov", OpULdc: "uldc",
	OpVoteU: "voteu", OpBra: "bra", OpExit: "exit", OpBar: "bar",
	OpMemBar: "membar", OpDepBar: "depbar",
}

// String renders op using the same lowercase mnemonics cmd/mirsched's
// fixture format accepts.
func (op Op) String() string {
	if int(op) < len(opNames) && opNames[op] != "" {
		return opNames[op]
	}
	return "op?"
}
