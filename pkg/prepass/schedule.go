package prepass

import (
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/machine"
)

// ScheduleResult is one unit's successful bottom-up pass: a permutation
// of the input instructions plus the per-file live counts left at the top
// of the unit (its live-in). Neither scheduleOneUnit nor the driver
// compares these counts with the liveness provider; the only live-count
// check is the per-step net-live assertion.
type ScheduleResult struct {
	Order  []ir.Instruction
	LiveIn ir.PerRegFile[uint32]
}

// candidate is one contender the ready-list scheduler compares in the
// high-pressure regime: it may come from ready (delay 0) or future-ready
// (delay = readyCycle - currentCycle).
type candidate struct {
	idx        int
	fromFuture bool
	futurePos  int
	score      Score
}

// scheduleOneUnit runs the ready-list scheduler once, at the given
// maxRegs/thresholds, over a region's instructions. ok is false when the
// unit cannot fit within th.QuitThreshold — the caller must discard this
// attempt and retain the original order.
func scheduleOneUnit(instrs []ir.Instruction, liveOut *ir.LiveSet, sm machine.ShaderModel, oracle latency.Oracle, maxRegs ir.PerRegFile[int32], th Thresholds) (ScheduleResult, bool) {
	n := len(instrs)
	if n == 0 {
		return ScheduleResult{LiveIn: liveOut.CountAll()}, true
	}

	d := buildDAG(instrs, sm, oracle)
	nl := BuildNetLive(instrs, liveOut)
	live := liveOut.Clone()

	ready := newReadyList(d.criticalPath)
	future := &futureReadyList{}
	for i := range d.nodes {
		if d.nodes[i].numUses == 0 {
			ready.insert(i)
		}
	}

	emitted := make([]int, 0, n)
	var currentCycle uint32

	for len(emitted) < n {
		future.drainTo(currentCycle, ready)
		if ready.empty() {
			if future.empty() {
				break
			}
			currentCycle = future.minReadyCycle()
			continue
		}

		liveNow := countsToInt32(live.CountAll())
		currentUsed := CalcUsedGPRs(liveNow, maxRegs)

		var cand int
		var fromFuture bool
		var futurePos int

		if currentUsed <= th.HeuristicThreshold {
			// Low-pressure regime: pop the best by native (ILP-favoring)
			// ordering.
			cand = ready.popBest()
		} else {
			// High-pressure regime: score every ready and future-ready
			// candidate and take the best, fast-forwarding time if a
			// future-ready candidate wins.
			best := pickByScore(ready, future, liveNow, nl, maxRegs, th, currentCycle)
			cand = best.idx
			fromFuture = best.fromFuture
			futurePos = best.futurePos
			if fromFuture {
				currentCycle = future.entries[futurePos].readyCycle
			}
		}

		// Enforce quit regardless of regime.
		count := nl.At(cand)
		peak1 := addDeltaInt32(liveNow, count.Peak1)
		peak2 := addDeltaInt32(liveNow, count.Peak2)
		used1 := CalcUsedGPRs(peak1, maxRegs)
		used2 := CalcUsedGPRs(peak2, maxRegs)
		if maxInt32(used1, used2) > th.QuitThreshold {
			return ScheduleResult{}, false
		}

		if fromFuture {
			future.removeAt(futurePos)
		} else {
			ready.removeValue(cand)
		}

		// Emit: update the reversed graph's outgoing edges.
		for _, e := range d.nodes[cand].reversed {
			dep := &d.nodes[e.to]
			if nc := currentCycle + e.latency; nc > dep.readyCycle {
				dep.readyCycle = nc
			}
			dep.numUses--
			if dep.numUses <= 0 {
				future.insert(e.to, dep.readyCycle)
			}
		}

		// Update liveness: defs die, sources (and a predicate guard)
		// become live.
		in := instrs[cand]
		for _, dst := range in.DestValues() {
			live.RemoveAll(dst)
		}
		for _, src := range in.SourceValues() {
			live.Insert(src)
			nl.Remove(src)
		}
		if in.HasPredicate() {
			live.Insert(in.Pred)
			nl.Remove(in.Pred)
		}

		predictedNet := addDeltaInt32(liveNow, count.Net).Get(ir.GPR)
		afterNet := countsToInt32(live.CountAll()).Get(ir.GPR)
		if afterNet != predictedNet {
			panic("prepass: net-live reconciliation mismatch scheduling unit")
		}

		emitted = append(emitted, cand)
		currentCycle++
	}

	if len(emitted) != n {
		panic("prepass: schedule loop terminated with unscheduled instructions")
	}

	order := make([]ir.Instruction, n)
	for i, srcIdx := range emitted {
		order[n-1-i] = instrs[srcIdx]
	}
	return ScheduleResult{Order: order, LiveIn: live.CountAll()}, true
}

// pickByScore evaluates every ready (delay 0) and future-ready (delay =
// readyCycle - currentCycle) candidate under CalcScore and returns the
// highest-ranked one, breaking ties by the native ready-list ordering.
func pickByScore(ready *readyList, future *futureReadyList, liveNow ir.PerRegFile[int32], nl *NetLive, maxRegs ir.PerRegFile[int32], th Thresholds, currentCycle uint32) candidate {
	var best candidate
	haveBest := false

	consider := func(c candidate) {
		if !haveBest {
			best, haveBest = c, true
			return
		}
		if best.score.Less(c.score) {
			best = c
			return
		}
		if c.score.Less(best.score) {
			return
		}
		if ready.less(best.idx, c.idx) {
			best = c
		}
	}

	for _, idx := range ready.idx {
		sc := CalcScore(liveNow, nl.At(idx), maxRegs, 0, th)
		consider(candidate{idx: idx, score: sc})
	}
	for pos, e := range future.entries {
		delay := int32(e.readyCycle - currentCycle)
		sc := CalcScore(liveNow, nl.At(e.idx), maxRegs, delay, th)
		consider(candidate{idx: e.idx, fromFuture: true, futurePos: pos, score: sc})
	}
	return best
}
