package prepass

import "github.com/minz/sm75sched/pkg/ir"

// InstructionCount answers, for one instruction's position in a unit, how
// scheduling it next (bottom-up) would change live-set counts per register
// file: net is the lasting change, peak1/peak2 are two transient
// high-water marks reached during the same step.
type InstructionCount struct {
	Net   ir.PerRegFile[int8]
	Peak1 ir.PerRegFile[int8]
	Peak2 ir.PerRegFile[int8]
}

// NetLive precomputes one InstructionCount per instruction in a region
// and supports the scheduler's Remove mutation as a value moves from the
// future region into the present live-set.
type NetLive struct {
	counts []InstructionCount
	useOf  map[ir.SSAValue][]int // instruction indices using s, excluding s already in live-out
}

// BuildNetLive runs the two-sweep count construction over instrs given
// the region's live-out set.
func BuildNetLive(instrs []ir.Instruction, liveOut *ir.LiveSet) *NetLive {
	nl := &NetLive{
		counts: make([]InstructionCount, len(instrs)),
		useOf:  make(map[ir.SSAValue][]int),
	}

	// First sweep: each instruction's use set is the sources (and predicate)
	// it newly brings live, excluding anything already live past the region.
	// It is a set: an instruction referencing the same SSA value from two
	// operand slots brings it live once.
	for i, in := range instrs {
		refs := in.SourceValues()
		if in.HasPredicate() {
			refs = append(refs, in.Pred)
		}
		seen := make(map[ir.SSAValue]bool, len(refs))
		for _, s := range refs {
			if liveOut.Contains(s) || seen[s] {
				continue
			}
			seen[s] = true
			nl.counts[i].Net.Add(s.File, 1)
			nl.counts[i].Peak2.Add(s.File, 1)
			nl.useOf[s] = append(nl.useOf[s], i)
		}
	}

	// Second sweep: a destination that is actually consumed (downstream or
	// live-out) is killed by this instruction; one that is never consumed
	// is merely a transient bump around the instruction itself. The kill
	// touches only net — peak2's single adjustment for a scalar def is the
	// overlap credit below, and vector defs keep all lanes live across the
	// operation.
	for i, in := range instrs {
		for _, s := range in.DestValues() {
			if len(nl.useOf[s]) > 0 || liveOut.Contains(s) {
				nl.counts[i].Net.Add(s.File, -1)
			} else {
				nl.counts[i].Peak1.Add(s.File, 1)
				nl.counts[i].Peak2.Add(s.File, 1)
			}
		}
		if in.Dst.IsScalar() {
			for _, s := range in.DestValues() {
				nl.counts[i].Peak2.Add(s.File, -1)
			}
		}
	}

	return nl
}

// At returns the precomputed InstructionCount for instruction index i.
func (nl *NetLive) At(i int) InstructionCount { return nl.counts[i] }

// Remove implements remove(s): when s becomes live (moves from the future
// region into the present live-set), every instruction recorded as using s
// has its net/peak2 decremented by 1 in s's file, and the mapping is
// forgotten. Reports whether s had been tracked.
func (nl *NetLive) Remove(s ir.SSAValue) bool {
	users, ok := nl.useOf[s]
	if !ok {
		return false
	}
	for _, i := range users {
		nl.counts[i].Net.Add(s.File, -1)
		nl.counts[i].Peak2.Add(s.File, -1)
	}
	delete(nl.useOf, s)
	return true
}
