// Package machine defines the ShaderModel contract the scheduler consumes
// and provides the SM75 concrete model the latency oracle and
// schedule-mode driver are tuned for. The scheduler only ever calls
// through the interface, never a concrete model.
package machine

import "github.com/minz/sm75sched/pkg/ir"

// ShaderModel answers the per-SM questions the scheduler needs: the SM
// version, register-file sizes, hardware reservations, and which ops have
// fixed latency.
type ShaderModel interface {
	// SM returns the numeric SM version, e.g. 75 for Turing.
	SM() int
	// NumRegs returns the number of physical registers available in file f.
	NumRegs(f ir.RegFile) uint32
	// HWReservedGPRs returns the GPRs the hardware itself reserves
	// (e.g. for the zero register or a hardware scratch slot) before any
	// software budget is applied.
	HWReservedGPRs() uint32
	// HasFixedLatency reports whether op has a fixed (non-scoreboarded)
	// latency on this SM. Some ops are redirected: coupled (fixed) on one
	// SM generation, decoupled (scoreboarded) on another.
	HasFixedLatency(op ir.Op) bool
}

// SM75 is the Turing-class machine model the latency oracle and
// schedule-mode driver are tuned for.
type SM75 struct{}

var _ ShaderModel = SM75{}

func (SM75) SM() int { return 75 }

func (SM75) NumRegs(f ir.RegFile) uint32 {
	switch f {
	case ir.GPR:
		return 255
	case ir.UGPR:
		return 63
	case ir.Pred:
		return 7
	case ir.UPred:
		return 7
	case ir.Bar:
		return 16
	case ir.Carry:
		return 1
	default:
		return 0
	}
}

// HWReservedGPRs: SM75 reserves one GPR pair for the hardware zero/RZ
// register bank bookkeeping the compiler never allocates into.
func (SM75) HWReservedGPRs() uint32 { return 2 }

// HasFixedLatency implements the redirected-instruction split. On SM75,
// double-precision, half-precision, and tensor-core ops are decoupled
// (scoreboarded); everything else that isn't already unconditionally
// decoupled is fixed-latency.
func (SM75) HasFixedLatency(op ir.Op) bool {
	switch op {
	case ir.OpDAdd, ir.OpDMul, ir.OpHAdd2, ir.OpHMul2,
		ir.OpHmma884, ir.OpHmma1684, ir.OpHmma16816, ir.OpHmma16832, ir.OpImma,
		ir.OpLd, ir.OpSt, ir.OpLdg, ir.OpStg, ir.OpTex, ir.OpAtom:
		return false
	default:
		return true
	}
}
