package latency

// classPair keys the RAW/WAR/WAW matrices on (writer class, reader class).
// A flat map keyed on the pair is simpler to keep in sync with the
// spot-check tests than nested conditionals.
type classPair struct {
	writer RegLatencySM75
	reader RegLatencySM75
}

// rawTable is the hand-curated RAW matrix for the SM75 register datapath,
// grouped by writer class. Anything not listed falls back to defaultRaw.
var rawTable = map[classPair]uint32{
	// CoupledAlu writer: the baseline fixed-latency ALU result forwards to
	// the scalar coupled consumers in 4 cycles (5 for the IMADWideAB pair
	// operand); redirected and tensor consumers read through the register
	// file and wait longer.
	{CoupledAlu, CoupledAlu}:           4,
	{CoupledAlu, CoupledFMA}:           4,
	{CoupledAlu, CoupledShift}:         4,
	{CoupledAlu, IMADLo}:               4,
	{CoupledAlu, IMADWideAB}:           5,
	{CoupledAlu, RedirectedFP64}:       6,
	{CoupledAlu, RedirectedFP16}:       6,
	{CoupledAlu, RedirectedHMMA_884}:   6,
	{CoupledAlu, RedirectedHMMA_1684}:  6,
	{CoupledAlu, RedirectedHMMA_16816}: 6,
	{CoupledAlu, RedirectedHMMA_16832}: 6,
	{CoupledAlu, IMMA}:                 6,
	{CoupledAlu, Decoupled}:            5,
	{CoupledAlu, DecoupledOther}:       5,
	{CoupledAlu, GuardPredicate}:       12,

	// CoupledFMA writer: same forwarding network as the ALU pipe.
	{CoupledFMA, CoupledAlu}:           4,
	{CoupledFMA, CoupledFMA}:           4,
	{CoupledFMA, CoupledShift}:         4,
	{CoupledFMA, IMADLo}:               4,
	{CoupledFMA, IMADWideAB}:           5,
	{CoupledFMA, RedirectedFP64}:       6,
	{CoupledFMA, RedirectedFP16}:       6,
	{CoupledFMA, RedirectedHMMA_884}:   6,
	{CoupledFMA, RedirectedHMMA_1684}:  6,
	{CoupledFMA, RedirectedHMMA_16816}: 6,
	{CoupledFMA, RedirectedHMMA_16832}: 6,
	{CoupledFMA, IMMA}:                 6,
	{CoupledFMA, Decoupled}:            5,
	{CoupledFMA, DecoupledOther}:       5,
	{CoupledFMA, GuardPredicate}:       13,

	// CoupledDisp64 writer: the 64-bit address dispatch pipe produces a
	// register pair, two cycles behind the scalar ALU.
	{CoupledDisp64, CoupledAlu}:     6,
	{CoupledDisp64, CoupledFMA}:     6,
	{CoupledDisp64, CoupledShift}:   6,
	{CoupledDisp64, IMADLo}:         6,
	{CoupledDisp64, IMADWideAB}:     7,
	{CoupledDisp64, Decoupled}:      7,
	{CoupledDisp64, DecoupledOther}: 7,
	{CoupledDisp64, GuardPredicate}: 13,

	// CoupledShift writer.
	{CoupledShift, CoupledAlu}:     4,
	{CoupledShift, CoupledFMA}:     4,
	{CoupledShift, CoupledShift}:   4,
	{CoupledShift, IMADLo}:         4,
	{CoupledShift, IMADWideAB}:     5,
	{CoupledShift, Decoupled}:      5,
	{CoupledShift, DecoupledOther}: 5,
	{CoupledShift, GuardPredicate}: 12,

	// IMADLo writer: the low 32-bit multiply-add result.
	{IMADLo, CoupledAlu}:     4,
	{IMADLo, CoupledFMA}:     4,
	{IMADLo, CoupledShift}:   4,
	{IMADLo, IMADLo}:         4,
	{IMADLo, IMADWideAB}:     5,
	{IMADLo, Decoupled}:      5,
	{IMADLo, DecoupledOther}: 5,
	{IMADLo, GuardPredicate}: 12,

	// IMADWideLower/Upper writers: the wide multiply's two result halves.
	// The lower half retires one cycle ahead of the upper; a whole-pair
	// consumer (IMADWideAB) keys off either half identically.
	{IMADWideLower, CoupledAlu}:     4,
	{IMADWideLower, CoupledFMA}:     4,
	{IMADWideLower, CoupledShift}:   4,
	{IMADWideLower, IMADLo}:         4,
	{IMADWideLower, IMADWideAB}:     4,
	{IMADWideLower, Decoupled}:      5,
	{IMADWideLower, DecoupledOther}: 5,
	{IMADWideLower, GuardPredicate}: 12,
	{IMADWideUpper, CoupledAlu}:     5,
	{IMADWideUpper, CoupledFMA}:     5,
	{IMADWideUpper, CoupledShift}:   5,
	{IMADWideUpper, IMADLo}:         5,
	{IMADWideUpper, IMADWideAB}:     4,
	{IMADWideUpper, Decoupled}:      6,
	{IMADWideUpper, DecoupledOther}: 6,
	{IMADWideUpper, GuardPredicate}: 13,

	// RedirectedFP64 writer: on SM75 the FP64 pipe is decoupled, so these
	// entries cover only the fixed register-visibility floor; the DAG
	// builder widens the edge via EstimateVariableLatency on top.
	{RedirectedFP64, CoupledAlu}:     10,
	{RedirectedFP64, CoupledFMA}:     10,
	{RedirectedFP64, CoupledShift}:   10,
	{RedirectedFP64, IMADLo}:         10,
	{RedirectedFP64, RedirectedFP64}: 10,
	{RedirectedFP64, Decoupled}:      11,
	{RedirectedFP64, DecoupledOther}: 11,
	{RedirectedFP64, GuardPredicate}: 15,

	// RedirectedFP16 writer.
	{RedirectedFP16, CoupledAlu}:     8,
	{RedirectedFP16, CoupledFMA}:     8,
	{RedirectedFP16, CoupledShift}:   8,
	{RedirectedFP16, IMADLo}:         8,
	{RedirectedFP16, RedirectedFP16}: 8,
	{RedirectedFP16, Decoupled}:      9,
	{RedirectedFP16, DecoupledOther}: 9,
	{RedirectedFP16, GuardPredicate}: 14,

	// Tensor-core writers: accumulator visibility scales with the MMA
	// shape (the deeper the K dimension, the later the result lands).
	// Back-to-back MMA chains forward accumulators internally and are
	// cheaper than a crossing to the scalar pipes.
	{RedirectedHMMA_884, CoupledAlu}:             14,
	{RedirectedHMMA_884, CoupledFMA}:             14,
	{RedirectedHMMA_884, RedirectedHMMA_884}:     10,
	{RedirectedHMMA_884, RedirectedHMMA_1684}:    12,
	{RedirectedHMMA_884, RedirectedHMMA_16816}:   12,
	{RedirectedHMMA_884, RedirectedHMMA_16832}:   12,
	{RedirectedHMMA_884, IMMA}:                   18,
	{RedirectedHMMA_884, Decoupled}:              15,
	{RedirectedHMMA_884, GuardPredicate}:         18,
	{RedirectedHMMA_1684, CoupledAlu}:            16,
	{RedirectedHMMA_1684, CoupledFMA}:            16,
	{RedirectedHMMA_1684, RedirectedHMMA_884}:    12,
	{RedirectedHMMA_1684, RedirectedHMMA_1684}:   12,
	{RedirectedHMMA_1684, RedirectedHMMA_16816}:  14,
	{RedirectedHMMA_1684, RedirectedHMMA_16832}:  14,
	{RedirectedHMMA_1684, IMMA}:                  20,
	{RedirectedHMMA_1684, Decoupled}:             17,
	{RedirectedHMMA_1684, GuardPredicate}:        20,
	{RedirectedHMMA_16816, CoupledAlu}:           18,
	{RedirectedHMMA_16816, CoupledFMA}:           18,
	{RedirectedHMMA_16816, RedirectedHMMA_884}:   14,
	{RedirectedHMMA_16816, RedirectedHMMA_1684}:  14,
	{RedirectedHMMA_16816, RedirectedHMMA_16816}: 14,
	{RedirectedHMMA_16816, RedirectedHMMA_16832}: 16,
	{RedirectedHMMA_16816, IMMA}:                 22,
	{RedirectedHMMA_16816, Decoupled}:            19,
	{RedirectedHMMA_16816, GuardPredicate}:       22,
	{RedirectedHMMA_16832, CoupledAlu}:           20,
	{RedirectedHMMA_16832, CoupledFMA}:           20,
	{RedirectedHMMA_16832, RedirectedHMMA_884}:   16,
	{RedirectedHMMA_16832, RedirectedHMMA_1684}:  16,
	{RedirectedHMMA_16832, RedirectedHMMA_16816}: 16,
	{RedirectedHMMA_16832, RedirectedHMMA_16832}: 16,
	{RedirectedHMMA_16832, IMMA}:                 24,
	{RedirectedHMMA_16832, Decoupled}:            21,
	{RedirectedHMMA_16832, GuardPredicate}:       24,

	// IMMA writer.
	{IMMA, CoupledAlu}:           18,
	{IMMA, CoupledFMA}:           18,
	{IMMA, RedirectedHMMA_884}:   14,
	{IMMA, RedirectedHMMA_1684}:  14,
	{IMMA, RedirectedHMMA_16816}: 14,
	{IMMA, RedirectedHMMA_16832}: 16,
	{IMMA, IMMA}:                 22,
	{IMMA, Decoupled}:            19,
	{IMMA, GuardPredicate}:       22,

	// Decoupled writers: the fixed part of a scoreboard-tracked producer's
	// delay is just register-file write visibility; the true wait is the
	// scoreboard's, widened separately by the DAG builder.
	{Decoupled, CoupledAlu}:          2,
	{Decoupled, CoupledFMA}:          2,
	{Decoupled, CoupledShift}:        2,
	{Decoupled, IMADLo}:              2,
	{Decoupled, Decoupled}:           2,
	{Decoupled, DecoupledOther}:      2,
	{Decoupled, GuardPredicate}:      12,
	{DecoupledOther, CoupledAlu}:     2,
	{DecoupledOther, CoupledFMA}:     2,
	{DecoupledOther, CoupledShift}:   2,
	{DecoupledOther, IMADLo}:         2,
	{DecoupledOther, Decoupled}:      2,
	{DecoupledOther, DecoupledOther}: 2,
	{DecoupledOther, GuardPredicate}: 12,

	// BMov writer: the convergence-barrier move drains through the branch
	// unit before its GPR alias is readable.
	{BMovClass, CoupledAlu}:     6,
	{BMovClass, CoupledFMA}:     6,
	{BMovClass, CoupledShift}:   6,
	{BMovClass, IMADLo}:         6,
	{BMovClass, Decoupled}:      7,
	{BMovClass, DecoupledOther}: 7,
	{BMovClass, GuardPredicate}: 13,
}

// defaultRaw picks a fallback by the coarse family each class belongs to
// when no explicit entry exists: coupled-to-coupled is cheap, anything
// touching a decoupled/tensor-core class costs more since the producer's
// true delay is scoreboard-tracked rather than fixed (the DAG builder
// widens it further via EstimateVariableLatency when the op truly lacks a
// fixed latency on this SM).
func defaultRaw(w, r RegLatencySM75) uint32 {
	if isCoupled(w) && isCoupled(r) {
		return 4
	}
	if isTensorCore(w) || isTensorCore(r) {
		return 18
	}
	if r == GuardPredicate {
		return 12
	}
	return 6
}

func isCoupled(c RegLatencySM75) bool {
	switch c {
	case CoupledAlu, CoupledFMA, CoupledDisp64, CoupledShift, IMADLo,
		IMADWideLower, IMADWideUpper, IMADWideAB:
		return true
	default:
		return false
	}
}

func isTensorCore(c RegLatencySM75) bool {
	switch c {
	case RedirectedHMMA_884, RedirectedHMMA_1684, RedirectedHMMA_16816, RedirectedHMMA_16832, IMMA:
		return true
	default:
		return false
	}
}

// warTable mirrors rawTable's shape for write-after-read hazards. These
// values are not consumed by the DAG builder, which reasons about WAR/WAW
// through liveness instead, but the oracle still must answer them purely
// and deterministically for a later scoreboard/delay-assigner pass.
// A coupled reader latches its operands in the first issue cycle, so a
// following writer needs only the issue gap; redirected/tensor readers hold
// their source registers across the whole operation.
// The key's writer is the later (overwriting) instruction; the reader is
// the earlier one whose operand window the write must not clip.
var warTable = map[classPair]uint32{
	{CoupledAlu, CoupledAlu}:           1,
	{CoupledAlu, CoupledFMA}:           1,
	{CoupledAlu, CoupledShift}:         1,
	{CoupledAlu, IMADLo}:               1,
	{CoupledFMA, CoupledAlu}:           1,
	{CoupledFMA, CoupledFMA}:           1,
	{CoupledDisp64, CoupledAlu}:        1,
	{CoupledDisp64, CoupledFMA}:        1,
	{CoupledAlu, IMADWideAB}:           2,
	{CoupledFMA, IMADWideAB}:           2,
	{CoupledAlu, RedirectedFP64}:       4,
	{CoupledFMA, RedirectedFP64}:       4,
	{CoupledAlu, RedirectedFP16}:       3,
	{CoupledFMA, RedirectedFP16}:       3,
	{CoupledAlu, RedirectedHMMA_884}:   6,
	{CoupledAlu, RedirectedHMMA_1684}:  7,
	{CoupledAlu, RedirectedHMMA_16816}: 8,
	{CoupledAlu, RedirectedHMMA_16832}: 9,
	{CoupledAlu, IMMA}:                 8,
	{CoupledAlu, Decoupled}:            2,
	{CoupledAlu, DecoupledOther}:       2,
	{CoupledFMA, Decoupled}:            2,
	{CoupledFMA, DecoupledOther}:       2,
}

func defaultWar(r, w RegLatencySM75) uint32 {
	if isTensorCore(r) {
		return 8
	}
	if isCoupled(r) && isCoupled(w) {
		return 1
	}
	return 2
}

// wawTable holds the predicated and unpredicated variants together; the
// boolean threaded in from writer #1's guard selects the column. A
// predicated first writer may or may not retire its write, so the second
// writer waits one extra cycle for the guard to resolve.
var wawTable = map[classPair][2]uint32{ // [0]=unpredicated, [1]=predicated
	{CoupledAlu, CoupledAlu}:         {1, 2},
	{CoupledAlu, CoupledFMA}:         {1, 2},
	{CoupledFMA, CoupledAlu}:         {1, 2},
	{CoupledFMA, CoupledFMA}:         {1, 2},
	{CoupledShift, CoupledAlu}:       {1, 2},
	{IMADLo, CoupledAlu}:             {1, 2},
	{IMADLo, IMADLo}:                 {1, 2},
	{CoupledDisp64, CoupledAlu}:      {2, 3},
	{IMADWideLower, IMADWideLower}:   {1, 2},
	{IMADWideUpper, IMADWideUpper}:   {1, 2},
	{RedirectedFP64, CoupledAlu}:     {4, 5},
	{RedirectedFP64, RedirectedFP64}: {2, 3},
	{RedirectedFP16, CoupledAlu}:     {3, 4},
	{RedirectedFP16, RedirectedFP16}: {2, 3},
	{Decoupled, CoupledAlu}:          {2, 3},
	{Decoupled, Decoupled}:           {2, 3},
	{DecoupledOther, CoupledAlu}:     {2, 3},
	{BMovClass, CoupledAlu}:          {3, 4},
}

func defaultWaw(w1, w2 RegLatencySM75, predicated bool) uint32 {
	var base uint32 = 2
	if isTensorCore(w1) {
		base = 6
	}
	if predicated {
		return base + 1
	}
	return base
}

// pawTable holds the predicate-guard-after-write matrix: every entry's
// reader class is always GuardPredicate/GuardPredicateU, since PAW is only
// ever queried for "this write feeds a predicate guard". The guard must be
// resolved at issue, well before operand read, which is why these values
// sit far above the corresponding RAW entries.
var pawTable = map[RegLatencySM75]uint32{
	CoupledAlu:           12,
	CoupledFMA:           13,
	CoupledDisp64:        13,
	CoupledShift:         12,
	IMADLo:               12,
	IMADWideLower:        12,
	IMADWideUpper:        13,
	RedirectedFP64:       15,
	RedirectedFP16:       14,
	RedirectedHMMA_884:   18,
	RedirectedHMMA_1684:  20,
	RedirectedHMMA_16816: 22,
	RedirectedHMMA_16832: 24,
	IMMA:                 22,
	Decoupled:            12,
	DecoupledOther:       12,
	BMovClass:            13,
}

func defaultPaw(w RegLatencySM75) uint32 {
	if isCoupled(w) {
		return 12
	}
	return 16
}

// uClassPair is the UGPR/UPred-side equivalent of classPair.
type uClassPair struct {
	writer URegLatencySM75
	reader URegLatencySM75
}

// rawTableU covers the uniform datapath. The Udp pipe behaves like a
// narrow coupled ALU; ULDC's constant-bank fetch and the vector-datapath
// crossings (a vector op producing or consuming a uniform register) pay a
// transport penalty, larger still when the cbuf access is bindless.
var rawTableU = map[uClassPair]uint32{
	{Udp, Udp}:             4,
	{Udp, VectorCoupled}:   5,
	{Udp, VectorDecoupled}: 5,
	{Udp, Uldc}:            4,
	{Udp, VoteU}:           4,
	{Udp, R2URClass}:       5,
	{Udp, GuardPredicateU}: 10,

	{Udp, UmovClass}:             4,
	{UmovClass, Udp}:             4,
	{UmovClass, UmovClass}:       4,
	{UmovClass, VectorCoupled}:   5,
	{UmovClass, VectorDecoupled}: 5,
	{UmovClass, GuardPredicateU}: 10,

	{Uldc, Udp}:                   10,
	{Uldc, UmovClass}:             10,
	{Uldc, VectorCoupled}:         10,
	{Uldc, VectorCoupledBindless}: 12,
	{Uldc, VectorDecoupled}:       11,
	{Uldc, GuardPredicateU}:       14,

	{VoteU, Udp}:             5,
	{VoteU, VectorCoupled}:   6,
	{VoteU, GuardPredicateU}: 11,

	{R2URClass, Udp}:             8,
	{R2URClass, UmovClass}:       8,
	{R2URClass, VectorCoupled}:   9,
	{R2URClass, VectorDecoupled}: 9,
	{R2URClass, GuardPredicateU}: 12,

	{VectorCoupled, Udp}:                     4,
	{VectorCoupled, VectorCoupled}:           4,
	{VectorCoupled, VectorCoupledBindless}:   6,
	{VectorCoupled, VectorDecoupled}:         5,
	{VectorCoupledBindless, Udp}:             6,
	{VectorCoupledBindless, VectorCoupled}:   6,
	{VectorCoupled, GuardPredicateU}:         10,
	{VectorCoupledBindless, GuardPredicateU}: 12,
}

func defaultRawU(w, r URegLatencySM75) uint32 {
	switch {
	case w == Udp && r == Udp:
		return 4
	case isVectorDecoupledU(w) || isVectorDecoupledU(r):
		return 14
	case r == GuardPredicateU:
		return 10
	default:
		return 6
	}
}

func isVectorDecoupledU(c URegLatencySM75) bool {
	return c == VectorDecoupled || c == VectorDecoupledBindless
}

var pawTableU = map[URegLatencySM75]uint32{
	Udp:                   10,
	UmovClass:             10,
	Uldc:                  14,
	VoteU:                 11,
	R2URClass:             12,
	VectorCoupled:         10,
	VectorCoupledBindless: 12,
}

func defaultPawU(w URegLatencySM75) uint32 {
	if w == Udp {
		return 10
	}
	return 14
}
