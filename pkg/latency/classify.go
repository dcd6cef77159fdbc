package latency

import "github.com/minz/sm75sched/pkg/ir"

// illegalClass panics on a class combination the oracle treats as a
// programming error: it is only ever called with valid roles, so an
// illegal pairing is a bug in the caller, not a recoverable condition.
func illegalClass(op ir.Op, role Role, reason string) {
	panic(classError{op: op, role: role, reason: reason})
}

type classError struct {
	op     ir.Op
	role   Role
	reason string
}

func (e classError) Error() string {
	roleName := "writer"
	if e.role == RoleReader {
		roleName = "reader"
	}
	return "latency: illegal class combination for op " + opName(e.op) + " as " + roleName + ": " + e.reason
}

func opName(op ir.Op) string {
	// A handful of names for diagnostics; the oracle never branches on
	// these strings, only on the Op value itself.
	switch op {
	case ir.OpIMadWide:
		return "IMadWide"
	case ir.OpIMad64:
		return "IMad64"
	case ir.OpIMad:
		return "IMad"
	default:
		return "op"
	}
}

// ClassifyReg maps one operand occurrence to its RegLatencySM75 class.
// It is the classifier used when the destination file is GPR or Pred.
func ClassifyReg(o Operand, role Role) RegLatencySM75 {
	switch o.Op {
	case ir.OpIAdd3, ir.OpLop3, ir.OpISetP, ir.OpFAdd, ir.OpFMul, ir.OpFSetP,
		ir.OpMov, ir.OpPrmt:
		return CoupledAlu

	case ir.OpFFma:
		return CoupledFMA

	case ir.OpShf:
		return CoupledShift

	case ir.OpLea:
		return CoupledDisp64

	case ir.OpIMad:
		return IMADLo

	case ir.OpIMadWide:
		if role == RoleWriter {
			if o.OperandIdx == 0 {
				return IMADWideLower
			}
			return IMADWideUpper
		}
		// As a reader, the wide mad consumes its A/B multiplicand operands.
		return IMADWideAB

	case ir.OpIMad64:
		// IMad64 writers and readers classify differently.
		if role == RoleWriter {
			if o.OperandIdx == 0 {
				return IMADWideLower
			}
			return IMADWideUpper
		}
		return IMADWideAB

	case ir.OpDAdd, ir.OpDMul:
		return RedirectedFP64

	case ir.OpHAdd2, ir.OpHMul2:
		return RedirectedFP16

	case ir.OpHmma884:
		return RedirectedHMMA_884
	case ir.OpHmma1684:
		return RedirectedHMMA_1684
	case ir.OpHmma16816:
		return RedirectedHMMA_16816
	case ir.OpHmma16832:
		return RedirectedHMMA_16832

	case ir.OpImma:
		return IMMA

	case ir.OpBMov:
		// BMov classifies differently reader vs. writer.
		if role == RoleWriter {
			return BMovClass
		}
		return DecoupledOther

	case ir.OpCS2R:
		// CS2R classifies by destination width.
		if o.DestVector {
			return DecoupledOther
		}
		return CoupledAlu

	case ir.OpR2UR:
		// On the GPR side R2UR is a plain decoupled mov from the uniform
		// datapath; its uniform-side class lives in URegLatencySM75.
		if role == RoleWriter {
			return Decoupled
		}
		return DecoupledOther

	case ir.OpLd, ir.OpLdg, ir.OpTex, ir.OpAtom:
		return Decoupled

	default:
		// Unknown opcodes take the conservative default rather than
		// panicking; the known-illegal combinations are guarded
		// separately (see requireNotIllegalWriterClass).
		return Decoupled
	}
}

// GuardPredicateClass is the synthetic reader class used only in a PAW
// (predicate-guard-after-write) query: the "consumer" is not a real
// instruction, just the act of reading the predicate as a guard.
func GuardPredicateClass() RegLatencySM75 { return GuardPredicate }

// GuardPredicateClassU is GuardPredicateClass's UPred-side counterpart.
func GuardPredicateClassU() URegLatencySM75 { return GuardPredicateU }

// ClassifyUReg maps one operand occurrence to its URegLatencySM75 class.
// It is the classifier used when the destination file is UGPR or UPred.
func ClassifyUReg(o Operand, role Role) URegLatencySM75 {
	switch o.Op {
	case ir.OpUMov:
		return UmovClass
	case ir.OpULdc:
		return Uldc
	case ir.OpVoteU:
		return VoteU
	case ir.OpR2UR:
		return R2URClass
	default:
		if !o.IsUniform {
			// A regular-datapath op whose result happens to be read by a
			// uniform consumer (or vice versa) still needs a uniform-side
			// class; treat it via the vector (non-uniform-datapath) family.
			if o.Op.NeedsScoreboardsHint() {
				if o.Bindless {
					return VectorDecoupledBindless
				}
				return VectorDecoupled
			}
			if o.Bindless {
				return VectorCoupledBindless
			}
			return VectorCoupled
		}
		// The op itself runs on the uniform datapath.
		if o.Op.NeedsScoreboardsHint() {
			if o.Bindless {
				return VectorDecoupledBindless
			}
			return VectorDecoupled
		}
		return Udp
	}
}

// requireNotIllegalWriterClass rejects a producer classification that can
// only arise from a caller hand-building an Operand: IMADWideAB is
// reader-only, and a writer claiming it is a bug.
func requireNotIllegalWriterClass(class RegLatencySM75, op ir.Op) {
	if class == IMADWideAB {
		illegalClass(op, RoleWriter, "IMADWideAB is reader-only")
	}
}
