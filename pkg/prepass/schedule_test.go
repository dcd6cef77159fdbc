package prepass

import (
	"testing"

	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/machine"
)

// Two chained adds must emit in original order: the RAW edge
// (CoupledAlu -> CoupledAlu, 4 cycles on GPR) pins them.
func TestScheduleChainedAdds(t *testing.T) {
	var alloc ir.ValueAlloc
	r0 := alloc.New(ir.GPR)
	r1 := alloc.New(ir.GPR)
	r2 := alloc.New(ir.GPR)

	instrs := []ir.Instruction{
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(r0)}, Dst: ir.ScalarDest(r1), Index: 0},
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(r1)}, Dst: ir.ScalarDest(r2), Index: 1},
	}
	liveOut := ir.NewLiveSet()
	liveOut.Insert(r2)

	res, ok := scheduleOneUnit(instrs, liveOut, machine.SM75{}, latency.NewOracle(),
		fullMaxRegs(253), Thresholds{HeuristicThreshold: 60, QuitThreshold: 64})
	if !ok {
		t.Fatalf("schedule failed")
	}
	if len(res.Order) != 2 {
		t.Fatalf("got %d instructions, want 2", len(res.Order))
	}
	if res.Order[0].Index != 0 || res.Order[1].Index != 1 {
		t.Errorf("order = [%d %d], want [0 1]", res.Order[0].Index, res.Order[1].Index)
	}
	if got := res.LiveIn.Get(ir.GPR); got != 1 {
		t.Errorf("live-in GPR count = %d, want 1 (r0)", got)
	}
}

// Three independent FFMAs below the heuristic threshold: the native ILP
// ordering applies and every instruction is emitted exactly once.
func TestScheduleIndependentFFmas(t *testing.T) {
	var alloc ir.ValueAlloc
	var instrs []ir.Instruction
	liveOut := ir.NewLiveSet()
	for i := 0; i < 3; i++ {
		src := alloc.New(ir.GPR)
		dst := alloc.New(ir.GPR)
		liveOut.Insert(dst)
		instrs = append(instrs, ir.Instruction{
			Op: ir.OpFFma, Srcs: []ir.Source{ir.Reg(src)}, Dst: ir.ScalarDest(dst), Index: i,
		})
	}

	res, ok := scheduleOneUnit(instrs, liveOut, machine.SM75{}, latency.NewOracle(),
		fullMaxRegs(16), Thresholds{HeuristicThreshold: 10, QuitThreshold: 14})
	if !ok {
		t.Fatalf("schedule failed")
	}
	seen := make(map[int]int)
	for _, in := range res.Order {
		seen[in.Index]++
	}
	for i := 0; i < 3; i++ {
		if seen[i] != 1 {
			t.Errorf("instruction %d emitted %d times, want exactly once", i, seen[i])
		}
	}
}

// Memory ops keep their mutual order; a non-memory consumer may float but
// must stay after its producer.
func TestScheduleMemoryOrdering(t *testing.T) {
	var alloc ir.ValueAlloc
	addr := alloc.New(ir.GPR)
	a := alloc.New(ir.GPR)
	b := alloc.New(ir.GPR)
	c := alloc.New(ir.GPR)

	instrs := []ir.Instruction{
		{Op: ir.OpLd, Srcs: []ir.Source{ir.Reg(addr)}, Dst: ir.ScalarDest(a), Index: 0},
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(a)}, Dst: ir.ScalarDest(b), Index: 1},
		{Op: ir.OpSt, Srcs: []ir.Source{ir.Reg(addr), ir.Reg(b)}, Index: 2},
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(a)}, Dst: ir.ScalarDest(c), Index: 3},
	}
	liveOut := ir.NewLiveSet()
	liveOut.Insert(c)

	res, ok := scheduleOneUnit(instrs, liveOut, machine.SM75{}, latency.NewOracle(),
		fullMaxRegs(253), Thresholds{HeuristicThreshold: 60, QuitThreshold: 64})
	if !ok {
		t.Fatalf("schedule failed")
	}

	pos := make(map[int]int)
	for p, in := range res.Order {
		pos[in.Index] = p
	}
	if pos[0] > pos[2] {
		t.Errorf("ld (index 0) must stay before st (index 2)")
	}
	if pos[0] > pos[1] || pos[1] > pos[2] {
		t.Errorf("producer chain ld -> iadd3 -> st violated: %v", pos)
	}
	if pos[0] > pos[3] {
		t.Errorf("consumer of ld's result moved above the ld")
	}
}

// A unit that cannot fit the quit threshold reports failure and the caller
// keeps the original order.
func TestScheduleQuitOnBudget(t *testing.T) {
	var alloc ir.ValueAlloc
	n := 12
	srcs := make([]ir.SSAValue, n)
	for i := range srcs {
		srcs[i] = alloc.New(ir.GPR)
	}
	d := alloc.New(ir.GPR)

	var all []ir.Source
	for _, s := range srcs {
		all = append(all, ir.Reg(s))
	}
	instrs := []ir.Instruction{
		{Op: ir.OpIAdd3, Srcs: all, Dst: ir.ScalarDest(d), Index: 0},
	}
	liveOut := ir.NewLiveSet()
	liveOut.Insert(d)

	_, ok := scheduleOneUnit(instrs, liveOut, machine.SM75{}, latency.NewOracle(),
		fullMaxRegs(253), Thresholds{HeuristicThreshold: 4, QuitThreshold: 8})
	if ok {
		t.Fatalf("scheduling 12 simultaneously-live sources within quit threshold 8 must fail")
	}
}

// A predicate guard is a dependency like any other: the guard's producer
// must precede the guarded instruction.
func TestSchedulePredicateDependency(t *testing.T) {
	var alloc ir.ValueAlloc
	x := alloc.New(ir.GPR)
	p := alloc.New(ir.Pred)
	y := alloc.New(ir.GPR)
	z := alloc.New(ir.GPR)

	instrs := []ir.Instruction{
		{Op: ir.OpMov, Srcs: []ir.Source{ir.Reg(x)}, Dst: ir.ScalarDest(y), Index: 0},
		{Op: ir.OpISetP, Srcs: []ir.Source{ir.Reg(x)}, Dst: ir.ScalarDest(p), Index: 1},
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(y)}, Dst: ir.ScalarDest(z), Pred: p, Index: 2},
	}
	liveOut := ir.NewLiveSet()
	liveOut.Insert(z)

	res, ok := scheduleOneUnit(instrs, liveOut, machine.SM75{}, latency.NewOracle(),
		fullMaxRegs(253), Thresholds{HeuristicThreshold: 60, QuitThreshold: 64})
	if !ok {
		t.Fatalf("schedule failed")
	}
	pos := make(map[int]int)
	for i, in := range res.Order {
		pos[in.Index] = i
	}
	if pos[1] > pos[2] {
		t.Errorf("predicate producer (isetp) must precede its guarded consumer")
	}
	if pos[0] > pos[2] {
		t.Errorf("data producer (mov) must precede its consumer")
	}
}

func TestPartitionBlock(t *testing.T) {
	var alloc ir.ValueAlloc
	a := alloc.New(ir.GPR)
	b := alloc.New(ir.GPR)

	block := &ir.BasicBlock{Index: 0, Instructions: []ir.Instruction{
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(a)}, Dst: ir.ScalarDest(b), Index: 0},
		{Op: ir.OpBar, Index: 1},
		{Op: ir.OpIAdd3, Srcs: []ir.Source{ir.Reg(b)}, Dst: ir.ScalarDest(alloc.New(ir.GPR)), Index: 2},
	}}

	units := PartitionBlock(block)
	if len(units) != 3 {
		t.Fatalf("got %d units, want 3", len(units))
	}
	if !units[0].CanReorder || units[1].CanReorder || !units[2].CanReorder {
		t.Errorf("reorderability = [%v %v %v], want [true false true]",
			units[0].CanReorder, units[1].CanReorder, units[2].CanReorder)
	}
	if len(units[1].Instrs) != 1 || units[1].Instrs[0].Op != ir.OpBar {
		t.Errorf("the barrier must sit alone in its unit")
	}
}
