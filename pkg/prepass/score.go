package prepass

import "github.com/minz/sm75sched/pkg/ir"

// spillStep is one rung of the spill ladder: register pressure that
// overflows maxRegs[src] is folded into dest's count at the given cycle
// cost per register.
type spillStep struct {
	src, dest ir.RegFile
	weight    int32
}

// spillFiles is fixed, in cascade order: Bar and Pred overflow straight into
// GPR, UPred overflows into UGPR first (which can itself then overflow into
// GPR), and GPR finally overflows into the Mem pseudo-file.
var spillFiles = []spillStep{
	{ir.Bar, ir.GPR, 12},
	{ir.Pred, ir.GPR, 18},
	{ir.UPred, ir.UGPR, 18},
	{ir.UGPR, ir.GPR, 21},
	{ir.GPR, ir.Mem, 64},
}

// CalcUsedGPRs cascades overflow down the spill ladder and returns the
// resulting effective GPR footprint.
func CalcUsedGPRs(p, maxRegs ir.PerRegFile[int32]) int32 {
	working := p
	for _, step := range spillFiles {
		if over := working.Get(step.src) - maxRegs.Get(step.src); over > 0 {
			working.Add(step.dest, over)
		}
	}
	return working.Get(ir.GPR)
}

// CalcScorePart walks the same ladder computing badness (spill pain, for
// files over budget) and goodness (remaining slack, for files under
// budget) separately, so badness always dominates goodness in the score's
// lexicographic comparison.
func CalcScorePart(p, maxRegs ir.PerRegFile[int32]) (badness, goodness int32) {
	working := p
	for _, step := range spillFiles {
		budget := maxRegs.Get(step.src)
		used := working.Get(step.src)
		if used > budget {
			excess := used - budget
			badness += excess * step.weight
			working.Add(step.dest, excess)
		} else {
			goodness += (budget - used) * step.weight
		}
	}
	return badness, goodness
}

// Thresholds holds the two budgets a ScheduleType derives:
// HeuristicThreshold switches the ready-list scheduler into its
// high-pressure regime, QuitThreshold is the hard cap that aborts the
// unit.
type Thresholds struct {
	HeuristicThreshold int32
	QuitThreshold      int32
}

// Score is a candidate's totally-ordered key: Usable compares first, then
// cycle cost (smaller badness+delay is better, hence the sign flip into
// ReverseCost), then Goodness as the final tie-breaker.
type Score struct {
	Usable      bool
	ReverseCost int32 // -(badness + delayCycles); larger is better
	Goodness    int32
}

// Less reports whether a ranks strictly worse than b.
func (a Score) Less(b Score) bool {
	if a.Usable != b.Usable {
		return b.Usable
	}
	if a.ReverseCost != b.ReverseCost {
		return a.ReverseCost < b.ReverseCost
	}
	return a.Goodness < b.Goodness
}

// CalcScore scores one candidate: live is the baseline live
// count before scheduling it, count is its precomputed InstructionCount,
// delayCycles is 0 for a ready candidate or the wait until a future-ready
// one's ready cycle, and th is the unit's current thresholds.
//
// The transient peaks gate usability only; badness and goodness rank
// candidates by the lasting (net) pressure change.
func CalcScore(live ir.PerRegFile[int32], count InstructionCount, maxRegs ir.PerRegFile[int32], delayCycles int32, th Thresholds) Score {
	peak1 := addDeltaInt32(live, count.Peak1)
	peak2 := addDeltaInt32(live, count.Peak2)

	used1 := CalcUsedGPRs(peak1, maxRegs)
	used2 := CalcUsedGPRs(peak2, maxRegs)
	usable := maxInt32(used1, used2) <= th.QuitThreshold

	badness, goodness := CalcScorePart(addDeltaInt32(live, count.Net), maxRegs)

	return Score{
		Usable:      usable,
		ReverseCost: -(badness + delayCycles),
		Goodness:    goodness,
	}
}
