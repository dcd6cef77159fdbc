package prepass

import (
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/machine"
)

// ScheduleKind distinguishes the two flavours of ScheduleType: a concrete
// GPR budget to try, or the spill fallback.
type ScheduleKind uint8

const (
	RegLimitKind ScheduleKind = iota
	SpillKind
)

// ScheduleType is one attempt the schedule-mode driver can try for a
// unit.
type ScheduleType struct {
	Kind      ScheduleKind
	GPRTarget int32 // meaningful only for RegLimitKind
}

func (t ScheduleType) String() string {
	if t.Kind == SpillKind {
		return "Spill"
	}
	return "RegLimit"
}

// Thresholds derives a ScheduleType's heuristic/quit budgets: RegLimit(g)
// uses a fixed hysteresis gap below g; Spill reserves
// extra headroom below the model's own GPR ceiling and quits at whatever
// peak the unit's original (pre-reschedule) order actually reached.
func (t ScheduleType) Thresholds(maxRegs ir.PerRegFile[int32], unitPeakGPR int32) Thresholds {
	if t.Kind == SpillKind {
		return Thresholds{
			HeuristicThreshold: maxRegs.Get(ir.GPR) - SWReservedGPRsSpill - TargetFree,
			QuitThreshold:      unitPeakGPR,
		}
	}
	return Thresholds{
		HeuristicThreshold: t.GPRTarget - TargetFree,
		QuitThreshold:      t.GPRTarget,
	}
}

// GetScheduleTypes produces the ordered list of ScheduleType attempts:
// each occupancy cliff from minTarget up through maxTarget,
// capped at maxRegs.GPR - reserved, followed by Spill only when the unit's
// original order already exceeded maxRegs.GPR.
func GetScheduleTypes(maxRegs ir.PerRegFile[int32], minTarget, maxTarget, reserved, unitPeakGPR int32) []ScheduleType {
	var types []ScheduleType

	capGPR := maxRegs.Get(ir.GPR) - reserved
	if capGPR < 0 {
		capGPR = 0
	}

	x := minTarget
	if x < 0 {
		x = 0
	}
	for x <= maxTarget {
		cliff := int32(machine.NextOccupancyCliff(uint32(x)))
		target := cliff
		if target > capGPR {
			// The cliff is above what the model leaves us; the capped
			// budget is the last (and largest) RegLimit worth trying.
			target = capGPR
		}
		if n := len(types); n == 0 || types[n-1].GPRTarget < target {
			types = append(types, ScheduleType{Kind: RegLimitKind, GPRTarget: target})
		}
		if cliff >= capGPR || cliff <= x {
			break
		}
		x = cliff + 1
	}

	if unitPeakGPR > maxRegs.Get(ir.GPR) {
		types = append(types, ScheduleType{Kind: SpillKind})
	}

	return types
}
