package prepass

import "github.com/minz/sm75sched/pkg/ir"

// ScheduleUnit is a maximal run of instructions within one block sharing
// a reorderability flag. A Barrier-classified instruction always sits
// alone in its own unreorderable unit; everything else between barriers
// forms one reorderable unit.
type ScheduleUnit struct {
	BlockIndex int
	CanReorder bool

	LiveOut *ir.LiveSet // the live set immediately after this unit

	Instrs []ir.Instruction

	NewOrder  []ir.Instruction // nil until some ScheduleType succeeds
	LastTried ScheduleType

	PeakGPRCount int32 // peak GPR count seen during the initial top-down pass
}

// PartitionBlock splits a block's instructions into schedule units on
// Barrier side effects.
func PartitionBlock(b *ir.BasicBlock) []*ScheduleUnit {
	var units []*ScheduleUnit
	var run []ir.Instruction

	flush := func() {
		if len(run) == 0 {
			return
		}
		units = append(units, &ScheduleUnit{BlockIndex: b.Index, CanReorder: true, Instrs: run})
		run = nil
	}

	for _, in := range b.Instructions {
		if in.SideEffectType() == ir.SideEffectBarrier {
			flush()
			units = append(units, &ScheduleUnit{
				BlockIndex: b.Index,
				CanReorder: false,
				Instrs:     []ir.Instruction{in},
			})
			continue
		}
		run = append(run, in)
	}
	flush()
	return units
}

// unitLiveOuts computes each unit's live-out set by replaying the block
// backward from its declared live-out: unit i's live-out is unit i+1's
// live-in, with the last unit's live-out equal to the block's own.
func unitLiveOuts(units []*ScheduleUnit, blockLiveOut *ir.LiveSet) {
	live := blockLiveOut.Clone()
	for i := len(units) - 1; i >= 0; i-- {
		units[i].LiveOut = live.Clone()
		for j := len(units[i].Instrs) - 1; j >= 0; j-- {
			in := units[i].Instrs[j]
			for _, d := range in.DestValues() {
				live.RemoveAll(d)
			}
			for _, s := range in.SourceValues() {
				live.Insert(s)
			}
			if in.HasPredicate() {
				live.Insert(in.Pred)
			}
		}
	}
}
