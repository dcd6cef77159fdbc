// Package liveness defines the liveness-provider contract the scheduler
// consumes, plus a straightforward reference implementation used by tests
// and cmd/mirsched. The scheduler itself never computes liveness from
// scratch; it is handed live-in/live-out sets and a way to replay liveness
// forward as it commits a schedule.
package liveness

import "github.com/minz/sm75sched/pkg/ir"

// BlockLive answers membership questions about one basic block's live-in
// set.
type BlockLive interface {
	IsLiveIn(v ir.SSAValue) bool
}

// Provider is the Liveness collaborator contract. BlockIdx is threaded
// explicitly through InsertInstrTopDown (rather than recovered from a
// BlockLive value) since this stand-in, unlike a real compiler's liveness
// pass, has no reason to hide which block a position belongs to.
type Provider interface {
	// BlockLive returns the live-in view for block idx.
	BlockLive(idx int) BlockLive
	// InsertInstrTopDown threads instr into a top-down live-set replay for
	// block blockIdx at instruction position ip, and returns the live-set
	// counts per file immediately after instr.
	InsertInstrTopDown(blockIdx, ip int, instr ir.Instruction) ir.PerRegFile[uint32]
	// CalcMaxLive returns the peak per-file live-register count across the
	// whole function.
	CalcMaxLive(fn *ir.Function) ir.PerRegFile[uint32]
	// LiveOut returns block idx's declared live-out set, used to seed the
	// last schedule unit of that block.
	LiveOut(idx int) *ir.LiveSet
	// ResetReplay discards any running top-down replay state for block idx
	// so InsertInstrTopDown can restart cleanly when the driver retries a
	// unit at a different register budget.
	ResetReplay(idx int)
}

// blockLiveSet is the reference BlockLive implementation: a plain set of
// SSA values live on entry to the block.
type blockLiveSet map[ir.SSAValue]bool

func (b blockLiveSet) IsLiveIn(v ir.SSAValue) bool { return b[v] }

// Analysis is a reference Provider computed by standard dataflow over a
// Function. It exists so the scheduler can be exercised and tested without
// a real shader compiler's liveness pass attached.
//
// Interblock propagation is intentionally out of scope: a block's live-out
// is whatever the caller seeds it with via Analyze, defaulting to empty.
type Analysis struct {
	liveIn  []blockLiveSet       // per block index
	liveOut []blockLiveSet       // per block index
	instrs  [][]ir.Instruction   // per block index, in analysis order
	replay  map[int]*replayState // running top-down replay per block
}

// replayState is one block's in-flight top-down replay: the live multiset
// plus each value's remaining-reference count. Seeding a value with its
// full use refcount (plus a live-out bump) makes the forward replay exact:
// it dies at its last in-block use unless the bump keeps it alive.
type replayState struct {
	live *ir.LiveSet
	rc   map[ir.SSAValue]int
}

// Analyze computes live-in sets for every block in fn by a backward sweep
// seeded from each block's (caller-supplied) live-out set.
func Analyze(fn *ir.Function, blockLiveOut map[int]*ir.LiveSet) *Analysis {
	nblocks := 0
	for _, b := range fn.Blocks {
		if b.Index >= nblocks {
			nblocks = b.Index + 1
		}
	}
	a := &Analysis{
		liveIn:  make([]blockLiveSet, nblocks),
		liveOut: make([]blockLiveSet, nblocks),
		instrs:  make([][]ir.Instruction, nblocks),
		replay:  make(map[int]*replayState),
	}
	for _, b := range fn.Blocks {
		a.instrs[b.Index] = b.Instructions

		outSet := make(blockLiveSet)
		if seeded, ok := blockLiveOut[b.Index]; ok {
			seeded.Each(func(v ir.SSAValue) { outSet[v] = true })
		}
		a.liveOut[b.Index] = outSet

		live := make(blockLiveSet, len(outSet))
		for v := range outSet {
			live[v] = true
		}
		for i := len(b.Instructions) - 1; i >= 0; i-- {
			inst := b.Instructions[i]
			for _, d := range inst.DestValues() {
				delete(live, d)
			}
			for _, s := range inst.SourceValues() {
				live[s] = true
			}
			if inst.HasPredicate() {
				live[inst.Pred] = true
			}
		}
		a.liveIn[b.Index] = live
	}
	return a
}

func (a *Analysis) BlockLive(idx int) BlockLive { return a.liveIn[idx] }

// LiveOut returns the declared live-out set for block idx as a fresh
// *ir.LiveSet (used to seed a ScheduleUnit's LiveOut).
func (a *Analysis) LiveOut(idx int) *ir.LiveSet {
	out := ir.NewLiveSet()
	for v := range a.liveOut[idx] {
		out.Insert(v)
	}
	return out
}

// useRefcounts counts every source/predicate occurrence of each SSA value
// in instrs, plus one for values in liveOut.
func useRefcounts(instrs []ir.Instruction, liveOut blockLiveSet) map[ir.SSAValue]int {
	rc := make(map[ir.SSAValue]int)
	for _, in := range instrs {
		for _, s := range in.SourceValues() {
			rc[s]++
		}
		if in.HasPredicate() {
			rc[in.Pred]++
		}
	}
	for v := range liveOut {
		rc[v]++
	}
	return rc
}

// newReplay seeds a block replay: each live-in value enters with its full
// use refcount so per-occurrence removal retires it exactly at its last use.
func newReplay(instrs []ir.Instruction, liveIn, liveOut blockLiveSet) *replayState {
	rc := useRefcounts(instrs, liveOut)
	live := ir.NewLiveSet()
	for v := range liveIn {
		for i := 0; i < rc[v]; i++ {
			live.Insert(v)
		}
	}
	return &replayState{live: live, rc: rc}
}

// step advances the replay by one instruction: defs enter with their
// remaining use refcount (a dead def contributes nothing after its own
// instruction), each source/predicate occurrence retires one reference.
func (r *replayState) step(instr ir.Instruction) {
	for _, d := range instr.DestValues() {
		for i := 0; i < r.rc[d]; i++ {
			r.live.Insert(d)
		}
	}
	for _, s := range instr.SourceValues() {
		r.live.Remove(s)
	}
	if instr.HasPredicate() {
		r.live.Remove(instr.Pred)
	}
}

// InsertInstrTopDown replays instr against the running top-down live-set
// for block blockIdx and returns the resulting per-file counts. The first
// call for a block seeds the replay from that block's live-in set.
func (a *Analysis) InsertInstrTopDown(blockIdx, ip int, instr ir.Instruction) ir.PerRegFile[uint32] {
	_ = ip
	r, ok := a.replay[blockIdx]
	if !ok {
		r = newReplay(a.instrs[blockIdx], a.liveIn[blockIdx], a.liveOut[blockIdx])
		a.replay[blockIdx] = r
	}
	r.step(instr)
	return r.live.CountAll()
}

// ResetReplay discards the running top-down replay state for blockIdx so a
// fresh InsertInstrTopDown pass can start from that block's live-in set
// again (used when the driver retries a block at a new ScheduleType).
func (a *Analysis) ResetReplay(blockIdx int) { delete(a.replay, blockIdx) }

// CalcMaxLive returns the peak per-file live count across every block of
// fn, replaying each block top-down from its live-in set. It reads the
// blocks from fn rather than the analysis snapshot so it reflects a
// schedule committed after Analyze ran.
func (a *Analysis) CalcMaxLive(fn *ir.Function) ir.PerRegFile[uint32] {
	var max ir.PerRegFile[uint32]
	for _, b := range fn.Blocks {
		r := newReplay(b.Instructions, a.liveIn[b.Index], a.liveOut[b.Index])
		max = max.Max(r.live.CountAll())
		for _, inst := range b.Instructions {
			r.step(inst)
			max = max.Max(r.live.CountAll())
		}
	}
	return max
}
