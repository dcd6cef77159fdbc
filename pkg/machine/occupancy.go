package machine

// Occupancy-related constants for SM75. WarpGranule is the register
// allocation granularity (registers are handed out to a warp in multiples
// of WarpGranule per thread); MaxWarpsPerSM and WarpSize bound how many
// resident warps TotalRegs can ever support regardless of register count.
const (
	TotalRegs     = 65536 // register-file capacity per SM
	WarpSize      = 32
	MaxWarpsPerSM = 32
	WarpGranule   = 8 // registers per thread are allocated in steps of 8
)

// Occupancy returns the number of warps resident per SM when each thread
// uses regsPerThread registers. Register allocation happens in WarpGranule
// steps, so occupancy is a monotone non-increasing step function of
// regsPerThread — the step changes only when crossing a granule boundary.
func Occupancy(regsPerThread uint32) uint32 {
	granules := roundUpGranule(regsPerThread)
	if granules == 0 {
		return MaxWarpsPerSM
	}
	regsPerWarp := granules * WarpSize
	warps := TotalRegs / regsPerWarp
	if warps > MaxWarpsPerSM {
		warps = MaxWarpsPerSM
	}
	return warps
}

func roundUpGranule(x uint32) uint32 {
	if x == 0 {
		return 0
	}
	return ((x + WarpGranule - 1) / WarpGranule) * WarpGranule
}

// MaxRegsPerThread is the hardware's own per-thread GPR cap (matches
// SM75.NumRegs(GPR)). P8 quantifies its invariant over x in [0, 255]; it
// is documentation only — NextOccupancyCliff's search range below is wider
// so that cliff(255) itself still lands on a genuine plateau boundary.
const MaxRegsPerThread = 255

// cliffSearchLimit bounds NextOccupancyCliff's forward scan. Occupancy
// reaches (and then stays at) zero only once regsPerThread far exceeds any
// value P8 exercises, so a limit well beyond MaxRegsPerThread still finds
// the true plateau boundary for every x in the documented domain without
// risking an unbounded walk into the permanently-zero tail.
const cliffSearchLimit = 4096

// NextOccupancyCliff computes the largest register budget >= x whose
// occupancy is identical to occupancy(x) — the last register count on the
// current plateau before occupancy would drop. Occupancy
// is monotone non-increasing in x, so the plateau is contiguous: walk
// forward one register at a time until the occupancy actually changes.
// Multiple granule steps can share one plateau once occupancy saturates at
// MaxWarpsPerSM, so a single granule-rounding isn't enough — hence the scan.
func NextOccupancyCliff(x uint32) uint32 {
	occ := Occupancy(x)
	y := x
	for y < cliffSearchLimit && Occupancy(y+1) == occ {
		y++
	}
	return y
}

// GPRLimitFromLocalSize derives the GPR budget a compute shader's local
// (workgroup) size imposes so that one full workgroup's warps fit
// concurrently resident. It is deliberately conservative: it
// assumes every warp in the workgroup must be resident simultaneously.
func GPRLimitFromLocalSize(x, y, z uint32) uint32 {
	threads := x * y * z
	if threads == 0 {
		return TotalRegs / WarpSize
	}
	warpsNeeded := (threads + WarpSize - 1) / WarpSize
	if warpsNeeded == 0 {
		warpsNeeded = 1
	}
	limit := TotalRegs / (warpsNeeded * WarpSize)
	if limit > 255 {
		limit = 255
	}
	return limit
}
