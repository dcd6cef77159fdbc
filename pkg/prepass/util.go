package prepass

import "github.com/minz/sm75sched/pkg/ir"

// countsToInt32 widens a live-count snapshot (naturally unsigned and
// small) into the signed, wider PerRegFile the pressure math operates on.
func countsToInt32(c ir.PerRegFile[uint32]) ir.PerRegFile[int32] {
	var out ir.PerRegFile[int32]
	c.ForEach(func(f ir.RegFile, v uint32) {
		out = out.Set(f, int32(v))
	})
	return out
}

// addDeltaInt32 adds a per-instruction int8 delta (net/peak1/peak2) onto a
// baseline int32 live count.
func addDeltaInt32(base ir.PerRegFile[int32], delta ir.PerRegFile[int8]) ir.PerRegFile[int32] {
	var out ir.PerRegFile[int32]
	delta.ForEach(func(f ir.RegFile, v int8) {
		out = out.Set(f, base.Get(f)+int32(v))
	})
	return out
}

func maxInt32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}
