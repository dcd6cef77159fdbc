package prepass

import (
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/liveness"
	"github.com/minz/sm75sched/pkg/machine"
)

// OptInstrSchedPrepass runs the prepass scheduler over one function. It
// partitions every block into schedule units, tries successive register
// budgets per unit, and splices the accepted orders back into the function
// in place.
func OptInstrSchedPrepass(fn *ir.Function, sm machine.ShaderModel, maxRegs ir.PerRegFile[int32], live liveness.Provider, oracle latency.Oracle) {
	allUnits := make([][]*ScheduleUnit, len(fn.Blocks))
	var minTarget, maxTarget int32

	// First (top-down) pass: partition, compute each unit's peak GPR count
	// by liveness replay, and derive the min/max GPR targets that seed
	// GetScheduleTypes.
	for bi, b := range fn.Blocks {
		units := PartitionBlock(b)
		unitLiveOuts(units, live.LiveOut(b.Index))
		allUnits[bi] = units

		live.ResetReplay(b.Index)
		var peak int32
		ip := 0
		for _, u := range units {
			var unitPeak int32
			for _, in := range u.Instrs {
				counts := live.InsertInstrTopDown(b.Index, ip, in)
				if g := int32(counts.Get(ir.GPR)); g > unitPeak {
					unitPeak = g
				}
				ip++
			}
			u.PeakGPRCount = unitPeak
			if unitPeak > peak {
				peak = unitPeak
			}
			if !u.CanReorder && unitPeak > minTarget {
				// Non-reorderable segments impose a hard lower bound: no
				// smaller budget could ever have scheduled them.
				minTarget = unitPeak
			}
		}
		if peak > maxTarget {
			maxTarget = peak
		}
	}

	reserved := int32(SWReservedGPRs)
	var globalHighWater ScheduleType
	haveGlobal := false

	// Outer loop per unit: try types from most occupancy-friendly to
	// least, accept the first that succeeds.
	for _, units := range allUnits {
		for _, u := range units {
			if !u.CanReorder {
				continue
			}
			types := GetScheduleTypes(maxRegs, minTarget, maxTarget, reserved, u.PeakGPRCount)
			for _, t := range types {
				th := t.Thresholds(maxRegs, u.PeakGPRCount)
				res, ok := scheduleOneUnit(u.Instrs, u.LiveOut, sm, oracle, maxRegs, th)
				if ok {
					u.NewOrder = res.Order
					u.LastTried = t
					// The high-water mark is the least occupancy-friendly
					// budget any unit ended up needing; the final pass
					// relaxes every other unit up to it.
					if !haveGlobal || scheduleTypeFriendlier(globalHighWater, t) {
						globalHighWater = t
						haveGlobal = true
					}
					break
				}
			}
		}
	}

	// Final pass: re-schedule every reorderable unit at the global
	// high-water mark, so units that succeeded at a tighter budget get to
	// benefit from any relaxation induced by harder units elsewhere in the
	// function.
	if haveGlobal {
		for _, units := range allUnits {
			for _, u := range units {
				if !u.CanReorder || u.NewOrder == nil {
					continue
				}
				th := globalHighWater.Thresholds(maxRegs, u.PeakGPRCount)
				if res, ok := scheduleOneUnit(u.Instrs, u.LiveOut, sm, oracle, maxRegs, th); ok {
					u.NewOrder = res.Order
					u.LastTried = globalHighWater
				}
			}
		}
	}

	// Splice results back into each block; units stay in their original
	// positional order.
	for bi, b := range fn.Blocks {
		var out []ir.Instruction
		for _, u := range allUnits[bi] {
			if u.NewOrder != nil {
				out = append(out, u.NewOrder...)
			} else {
				out = append(out, u.Instrs...)
			}
		}
		b.Instructions = out
	}
}

// scheduleTypeFriendlier reports whether a admits more occupancy than b: a
// smaller RegLimit target is friendlier, any RegLimit beats Spill.
func scheduleTypeFriendlier(a, b ScheduleType) bool {
	if a.Kind != b.Kind {
		return a.Kind == RegLimitKind
	}
	if a.Kind == SpillKind {
		return false
	}
	return a.GPRTarget < b.GPRTarget
}

// OptInstrSchedPrepassShader drives every function of a shader: it
// derives the per-file register budgets from the ShaderModel, applies the
// compute-stage local-size GPR cap, subtracts the software reservation,
// and runs the per-function pass.
func OptInstrSchedPrepassShader(sh *ir.Shader, sm machine.ShaderModel, liveFor func(*ir.Function) liveness.Provider, oracle latency.Oracle) {
	var maxRegs ir.PerRegFile[int32]
	for _, f := range ir.AllRegFiles() {
		maxRegs = maxRegs.Set(f, int32(sm.NumRegs(f)))
	}

	if sh.Stage == ir.StageCompute && sh.Compute != nil {
		limit := int32(machine.GPRLimitFromLocalSize(sh.Compute.LocalSizeX, sh.Compute.LocalSizeY, sh.Compute.LocalSizeZ))
		limit -= int32(sm.HWReservedGPRs())
		if limit < maxRegs.Get(ir.GPR) {
			maxRegs = maxRegs.Set(ir.GPR, limit)
		}
	}
	maxRegs = maxRegs.Set(ir.GPR, maxRegs.Get(ir.GPR)-SWReservedGPRs)

	for _, fn := range sh.Functions {
		OptInstrSchedPrepass(fn, sm, maxRegs, liveFor(fn), oracle)
	}
}
