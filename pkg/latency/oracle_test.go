package latency

import (
	"testing"

	"github.com/minz/sm75sched/pkg/ir"
)

// Spot-checks the RAW matrix entries the scheduler's behavior is anchored
// on, by class pair.
func TestRawByClass(t *testing.T) {
	tests := []struct {
		name     string
		writer   RegLatencySM75
		reader   RegLatencySM75
		expected uint32
	}{
		{"coupled alu chain", CoupledAlu, CoupledAlu, 4},
		{"alu feeds fma", CoupledAlu, CoupledFMA, 4},
		{"disp64 feeds alu", CoupledDisp64, CoupledAlu, 6},
		{"disp64 feeds fma", CoupledDisp64, CoupledFMA, 6},
		{"imad lo chain", IMADLo, IMADLo, 4},
		{"wide lower feeds pair consumer", IMADWideLower, IMADWideAB, 4},
		{"wide upper feeds pair consumer", IMADWideUpper, IMADWideAB, 4},
		{"fp64 chain", RedirectedFP64, RedirectedFP64, 10},
		{"fp16 chain", RedirectedFP16, RedirectedFP16, 8},
		{"hmma884 feeds imma", RedirectedHMMA_884, IMMA, 18},
		{"hmma1684 feeds imma", RedirectedHMMA_1684, IMMA, 20},
		{"hmma16816 feeds imma", RedirectedHMMA_16816, IMMA, 22},
		{"hmma16832 feeds imma", RedirectedHMMA_16832, IMMA, 24},
		{"imma chain", IMMA, IMMA, 22},
		{"bmov feeds alu", BMovClass, CoupledAlu, 6},
		{"alu feeds guard", CoupledAlu, GuardPredicate, 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RawByClass(tt.writer, tt.reader); got != tt.expected {
				t.Errorf("RawByClass(%v, %v) = %d, want %d", tt.writer, tt.reader, got, tt.expected)
			}
		})
	}
}

// Every method must be a deterministic pure function of its inputs: two
// identical queries across the entire class cross-product return identical
// answers.
func TestOracleDeterminism(t *testing.T) {
	for w := RegLatencySM75(0); w < numRegLatencyClasses; w++ {
		for r := RegLatencySM75(0); r < numRegLatencyClasses; r++ {
			if a, b := RawByClass(w, r), RawByClass(w, r); a != b {
				t.Fatalf("RawByClass(%v, %v) not deterministic: %d then %d", w, r, a, b)
			}
			if a, b := WarByClass(r, w), WarByClass(r, w); a != b {
				t.Fatalf("WarByClass(%v, %v) not deterministic: %d then %d", r, w, a, b)
			}
			for _, pred := range []bool{false, true} {
				if a, b := WawByClass(w, r, pred), WawByClass(w, r, pred); a != b {
					t.Fatalf("WawByClass(%v, %v, %v) not deterministic: %d then %d", w, r, pred, a, b)
				}
			}
		}
		if a, b := PawByClass(w), PawByClass(w); a != b {
			t.Fatalf("PawByClass(%v) not deterministic: %d then %d", w, a, b)
		}
	}
	for w := URegLatencySM75(0); w < numURegLatencyClasses; w++ {
		for r := URegLatencySM75(0); r < numURegLatencyClasses; r++ {
			if a, b := RawByClassU(w, r), RawByClassU(w, r); a != b {
				t.Fatalf("RawByClassU(%v, %v) not deterministic: %d then %d", w, r, a, b)
			}
		}
		if a, b := PawByClassU(w), PawByClassU(w); a != b {
			t.Fatalf("PawByClassU(%v) not deterministic: %d then %d", w, a, b)
		}
	}
}

func TestOracleRawDispatch(t *testing.T) {
	oracle := NewOracle()
	iadd := Operand{Op: ir.OpIAdd3}

	if got := oracle.Raw(iadd, iadd, ir.GPR); got != 4 {
		t.Errorf("Raw(iadd3, iadd3, GPR) = %d, want 4", got)
	}
	if got := oracle.Raw(iadd, iadd, ir.Carry); got != 6 {
		t.Errorf("Raw on Carry = %d, want the flat constant 6", got)
	}
	if got := oracle.Raw(iadd, iadd, ir.Mem); got != 0 {
		t.Errorf("Raw on Mem (no destination) = %d, want 0", got)
	}

	lea := Operand{Op: ir.OpLea}
	if got := oracle.Raw(lea, iadd, ir.GPR); got != 6 {
		t.Errorf("Raw(lea, iadd3, GPR) = %d, want 6", got)
	}

	umov := Operand{Op: ir.OpUMov, IsUniform: true}
	if got := oracle.Raw(umov, umov, ir.UGPR); got != 4 {
		t.Errorf("Raw(umov, umov, UGPR) = %d, want 4", got)
	}
	uldc := Operand{Op: ir.OpULdc, IsUniform: true}
	if got := oracle.Raw(uldc, umov, ir.UGPR); got != 10 {
		t.Errorf("Raw(uldc, umov, UGPR) = %d, want 10", got)
	}
}

// The PAW entry point: a Pred-writing ISetP classifies as CoupledAlu and
// the guard consumption costs 12 cycles.
func TestPawISetP(t *testing.T) {
	oracle := NewOracle()
	isetp := Operand{Op: ir.OpISetP}
	if c := ClassifyReg(isetp, RoleWriter); c != CoupledAlu {
		t.Fatalf("ISetP writer class = %v, want CoupledAlu", c)
	}
	if got := oracle.Paw(isetp, ir.Pred); got != 12 {
		t.Errorf("Paw(isetp, Pred) = %d, want 12", got)
	}
}

// The predicated bit of writer #1 must be threaded through, not hardcoded.
func TestWawPredicatedBit(t *testing.T) {
	if got := WawByClass(CoupledAlu, CoupledAlu, false); got != 1 {
		t.Errorf("unpredicated WAW = %d, want 1", got)
	}
	if got := WawByClass(CoupledAlu, CoupledAlu, true); got != 2 {
		t.Errorf("predicated WAW = %d, want 2", got)
	}

	oracle := NewOracle()
	w := Operand{Op: ir.OpIAdd3}
	unpred := oracle.Waw(w, w, ir.GPR, false)
	pred := oracle.Waw(w, w, ir.GPR, true)
	if pred <= unpred {
		t.Errorf("predicated WAW (%d) must exceed unpredicated (%d)", pred, unpred)
	}
}

// Role genuinely changes the class for IMad64, BMov, CS2R, and R2UR —
// the classifier must not unify reader and writer.
func TestRoleSensitiveClassification(t *testing.T) {
	tests := []struct {
		name     string
		operand  Operand
		role     Role
		expected RegLatencySM75
	}{
		{"imad64 writer lower half", Operand{Op: ir.OpIMad64, OperandIdx: 0}, RoleWriter, IMADWideLower},
		{"imad64 writer upper half", Operand{Op: ir.OpIMad64, OperandIdx: 1}, RoleWriter, IMADWideUpper},
		{"imad64 reader", Operand{Op: ir.OpIMad64}, RoleReader, IMADWideAB},
		{"imadwide writer lower half", Operand{Op: ir.OpIMadWide, OperandIdx: 0}, RoleWriter, IMADWideLower},
		{"imadwide reader", Operand{Op: ir.OpIMadWide}, RoleReader, IMADWideAB},
		{"bmov writer", Operand{Op: ir.OpBMov}, RoleWriter, BMovClass},
		{"bmov reader", Operand{Op: ir.OpBMov}, RoleReader, DecoupledOther},
		{"cs2r scalar dest", Operand{Op: ir.OpCS2R}, RoleWriter, CoupledAlu},
		{"cs2r vector dest", Operand{Op: ir.OpCS2R, DestVector: true}, RoleWriter, DecoupledOther},
		{"r2ur writer gpr side", Operand{Op: ir.OpR2UR}, RoleWriter, Decoupled},
		{"r2ur reader gpr side", Operand{Op: ir.OpR2UR}, RoleReader, DecoupledOther},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyReg(tt.operand, tt.role); got != tt.expected {
				t.Errorf("ClassifyReg = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestClassifyUReg(t *testing.T) {
	tests := []struct {
		name     string
		operand  Operand
		expected URegLatencySM75
	}{
		{"umov", Operand{Op: ir.OpUMov, IsUniform: true}, UmovClass},
		{"uldc", Operand{Op: ir.OpULdc, IsUniform: true}, Uldc},
		{"voteu", Operand{Op: ir.OpVoteU, IsUniform: true}, VoteU},
		{"r2ur", Operand{Op: ir.OpR2UR}, R2URClass},
		{"uniform alu", Operand{Op: ir.OpIAdd3, IsUniform: true}, Udp},
		{"vector coupled crossing", Operand{Op: ir.OpIAdd3}, VectorCoupled},
		{"vector coupled bindless", Operand{Op: ir.OpIAdd3, Bindless: true}, VectorCoupledBindless},
		{"vector decoupled crossing", Operand{Op: ir.OpLdg}, VectorDecoupled},
		{"vector decoupled bindless", Operand{Op: ir.OpLdg, Bindless: true}, VectorDecoupledBindless},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyUReg(tt.operand, RoleReader); got != tt.expected {
				t.Errorf("ClassifyUReg = %v, want %v", got, tt.expected)
			}
		})
	}
}

// The IMADWideAB-as-writer combination stays a panic until a real test case
// forces a decision.
func TestIllegalWriterClassPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("IMADWideAB as writer must panic")
		}
	}()
	requireNotIllegalWriterClass(IMADWideAB, ir.OpIMadWide)
}

func TestNeedsScoreboards(t *testing.T) {
	oracle := NewOracle()
	tests := []struct {
		op       ir.Op
		expected bool
	}{
		{ir.OpIAdd3, false},
		{ir.OpFFma, false},
		{ir.OpLd, true},
		{ir.OpLdg, true},
		{ir.OpTex, true},
		{ir.OpDAdd, true},
		{ir.OpHmma16816, true},
		{ir.OpImma, true},
		{ir.OpMov, false},
	}
	for _, tt := range tests {
		if got := oracle.NeedsScoreboards(tt.op); got != tt.expected {
			t.Errorf("NeedsScoreboards(%v) = %v, want %v", tt.op, got, tt.expected)
		}
	}
}

func TestEstimateVariableLatency(t *testing.T) {
	if ld, alu := EstimateVariableLatency(ir.OpLdg), EstimateVariableLatency(ir.OpIAdd3); ld <= alu {
		t.Errorf("global load estimate (%d) must dwarf the default (%d)", ld, alu)
	}
	if tex := EstimateVariableLatency(ir.OpTex); tex < EstimateVariableLatency(ir.OpLdg) {
		t.Errorf("texture fetch estimate must be at least the global load estimate")
	}
}
