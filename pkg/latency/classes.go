// Package latency implements the SM75 latency oracle: a pure-function
// table mapping (producer, consumer, operand roles, register file) to the
// minimum cycle separation required to avoid a hazard.
package latency

import "github.com/minz/sm75sched/pkg/ir"

// Role distinguishes which side of a producer/consumer pair an operand
// classification is being requested for. The role genuinely changes the
// class for a handful of ops (IMad64, BMov, CS2R, R2UR), so the classifier
// never collapses the two roles into one lookup.
type Role uint8

const (
	RoleWriter Role = iota
	RoleReader
)

// RegLatencySM75 is the latency-class universe for GPR/Pred writers and
// readers.
type RegLatencySM75 uint8

const (
	CoupledAlu RegLatencySM75 = iota
	CoupledFMA
	CoupledDisp64
	CoupledShift
	IMADLo
	IMADWideAB
	IMADWideLower
	IMADWideUpper
	RedirectedFP64
	RedirectedFP16
	RedirectedHMMA_884
	RedirectedHMMA_1684
	RedirectedHMMA_16816
	RedirectedHMMA_16832
	IMMA
	Decoupled
	DecoupledOther
	BMovClass
	GuardPredicate
	numRegLatencyClasses
)

func (c RegLatencySM75) String() string {
	names := [...]string{
		"CoupledAlu", "CoupledFMA", "CoupledDisp64", "CoupledShift", "IMADLo",
		"IMADWideAB", "IMADWideLower", "IMADWideUpper",
		"RedirectedFP64", "RedirectedFP16",
		"RedirectedHMMA_884", "RedirectedHMMA_1684", "RedirectedHMMA_16816", "RedirectedHMMA_16832",
		"IMMA", "Decoupled", "DecoupledOther", "BMov", "GuardPredicate",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "RegLatencySM75(?)"
}

// URegLatencySM75 is the latency-class universe for UGPR/UPred writers
// and readers.
type URegLatencySM75 uint8

const (
	Udp URegLatencySM75 = iota
	VectorCoupled
	VectorCoupledBindless
	VectorDecoupled
	VectorDecoupledBindless
	Uldc
	UmovClass
	VoteU
	R2URClass
	GuardPredicateU
	numURegLatencyClasses
)

func (c URegLatencySM75) String() string {
	names := [...]string{
		"Udp", "VectorCoupled", "VectorCoupledBindless",
		"VectorDecoupled", "VectorDecoupledBindless",
		"Uldc", "Umov", "VoteU", "R2UR", "GuardPredicate",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return "URegLatencySM75(?)"
}

// Operand describes one occurrence of an op acting as a producer or
// consumer operand, carrying exactly the context the classifier needs:
// which operand slot, and (for the UGPR/uniform-datapath side) whether the
// op itself runs on the uniform datapath and whether a const-buffer source
// is bindless. The destination register file routes between the two class
// universes, so it is supplied separately at the call site, not stored
// here.
type Operand struct {
	Op          ir.Op
	OperandIdx  int  // dst index for a producer, src index for a consumer
	IsUniform   bool // the op itself executes on the uniform datapath
	Bindless    bool // true iff a UGPR-consuming cbuf source is bindless
	DestVector  bool // true iff the op's destination is a vector (CS2R width)
	HasFixedLat bool // ShaderModel.HasFixedLatency(op) for this occurrence
}
