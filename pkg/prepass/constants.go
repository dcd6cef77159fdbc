// Package prepass implements the pre-register-allocation instruction
// scheduler: dependency-graph construction, net-live tracking, spill-cost
// scoring, the bottom-up ready-list loop, and the schedule-mode driver.
// The latency oracle it consults lives in pkg/latency.
package prepass

// Contract constants, never mutated at runtime.
const (
	// SWReservedGPRs is subtracted from every register budget before
	// scheduling.
	SWReservedGPRs = 2
	// SWReservedGPRsSpill is the extra headroom reserved in spill mode.
	SWReservedGPRsSpill = 2
	// TargetFree is the hysteresis gap between the heuristic and quit
	// thresholds.
	TargetFree = 4
	// TotalRegs is the register-file capacity per SM, input to occupancy
	// math. Mirrors machine.TotalRegs; kept as a separate named constant
	// since it is part of the driver's contract, independent of any one
	// ShaderModel.
	TotalRegs = 65536
)
