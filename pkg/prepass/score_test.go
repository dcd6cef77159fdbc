package prepass

import (
	"testing"

	"github.com/minz/sm75sched/pkg/ir"
)

func TestCalcUsedGPRs(t *testing.T) {
	maxRegs := ir.NewPerRegFile(map[ir.RegFile]int32{
		ir.GPR: 255, ir.UGPR: 63, ir.Pred: 7, ir.UPred: 7, ir.Bar: 16, ir.Carry: 1,
	})
	tests := []struct {
		name     string
		pressure map[ir.RegFile]int32
		expected int32
	}{
		{"gprs only", map[ir.RegFile]int32{ir.GPR: 10}, 10},
		{"pred under budget", map[ir.RegFile]int32{ir.GPR: 10, ir.Pred: 7}, 10},
		{"pred overflow into gpr", map[ir.RegFile]int32{ir.GPR: 10, ir.Pred: 9}, 12},
		{"bar overflow into gpr", map[ir.RegFile]int32{ir.GPR: 4, ir.Bar: 18}, 6},
		{"upred cascades through ugpr", map[ir.RegFile]int32{ir.UPred: 9, ir.UGPR: 63}, 2},
		{"gpr overflow stays visible", map[ir.RegFile]int32{ir.GPR: 300}, 300},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ir.NewPerRegFile(tt.pressure)
			if got := CalcUsedGPRs(p, maxRegs); got != tt.expected {
				t.Errorf("CalcUsedGPRs = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestCalcScorePart(t *testing.T) {
	maxRegs := ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 20})

	badness, goodness := CalcScorePart(ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 10}), maxRegs)
	if badness != 0 {
		t.Errorf("under-budget badness = %d, want 0", badness)
	}
	if goodness != 10*64 {
		t.Errorf("goodness = %d, want %d (10 free GPRs at the Mem weight)", goodness, 10*64)
	}

	badness, goodness = CalcScorePart(ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 25}), maxRegs)
	if badness != 5*64 {
		t.Errorf("over-budget badness = %d, want %d", badness, 5*64)
	}
	if goodness != 0 {
		t.Errorf("over-budget goodness = %d, want 0", goodness)
	}

	// Predicate overflow costs its own ladder weight before it lands in GPR.
	badness, _ = CalcScorePart(ir.NewPerRegFile(map[ir.RegFile]int32{ir.Pred: 2}),
		ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 20}))
	if badness != 2*18 {
		t.Errorf("pred overflow badness = %d, want %d", badness, 2*18)
	}
}

func TestScoreOrdering(t *testing.T) {
	usable := Score{Usable: true, ReverseCost: -100, Goodness: 0}
	unusable := Score{Usable: false, ReverseCost: 0, Goodness: 1000}
	if !unusable.Less(usable) {
		t.Errorf("an unusable candidate must rank below any usable one")
	}

	cheap := Score{Usable: true, ReverseCost: -10, Goodness: 0}
	costly := Score{Usable: true, ReverseCost: -50, Goodness: 1000}
	if !costly.Less(cheap) {
		t.Errorf("cost must dominate goodness")
	}

	a := Score{Usable: true, ReverseCost: -10, Goodness: 5}
	b := Score{Usable: true, ReverseCost: -10, Goodness: 9}
	if !a.Less(b) {
		t.Errorf("goodness must break cost ties")
	}
}

// Increasing delay_cycles never improves a candidate's rank.
func TestScoreDelayMonotone(t *testing.T) {
	maxRegs := ir.NewPerRegFile(map[ir.RegFile]int32{
		ir.GPR: 64, ir.UGPR: 63, ir.Pred: 7, ir.UPred: 7, ir.Bar: 16, ir.Carry: 1,
	})
	live := ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 30})
	th := Thresholds{HeuristicThreshold: 60, QuitThreshold: 64}

	var count InstructionCount
	count.Net.Add(ir.GPR, 2)
	count.Peak2.Add(ir.GPR, 2)

	prev := CalcScore(live, count, maxRegs, 0, th)
	for delay := int32(1); delay <= 64; delay *= 2 {
		cur := CalcScore(live, count, maxRegs, delay, th)
		if prev.Less(cur) {
			t.Fatalf("delay %d ranked above a smaller delay", delay)
		}
		prev = cur
	}
}

func TestCalcScoreQuitThreshold(t *testing.T) {
	maxRegs := ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 255})
	th := Thresholds{HeuristicThreshold: 28, QuitThreshold: 32}

	var count InstructionCount
	count.Peak2.Add(ir.GPR, 5)

	within := CalcScore(ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 20}), count, maxRegs, 0, th)
	if !within.Usable {
		t.Errorf("peak 25 within quit threshold 32 must be usable")
	}
	over := CalcScore(ir.NewPerRegFile(map[ir.RegFile]int32{ir.GPR: 30}), count, maxRegs, 0, th)
	if over.Usable {
		t.Errorf("peak 35 over quit threshold 32 must not be usable")
	}
}
