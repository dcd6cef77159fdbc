package prepass

import (
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/machine"
)

// edge is one dependency-graph edge: latency is the minimum cycle
// separation required between the two ends.
type edge struct {
	to      int
	latency uint32
}

// node is one instruction's position in the dependency graph, indexed by
// its position within the schedule unit. forward edges (producer ->
// consumer) exist only to size numUses and compute criticalPath up front;
// the bottom-up scheduling loop walks reversed edges, whose predecessors
// are what must be scheduled before a given instruction in the output
// order.
type node struct {
	instr      ir.Instruction
	forward    []edge
	reversed   []edge
	numUses    int // unscheduled successors remaining, bottom-up view
	readyCycle uint32
}

// dag is one unit's dependency graph, built already reversed for bottom-up
// scheduling, plus the per-node critical-path length used by the ready
// scheduler's native (ILP-favoring) ordering.
type dag struct {
	nodes        []node
	criticalPath []uint32
}

// buildDAG builds the DAG over instrs: RAW/PAW data edges plus the
// memory-ordering chain. Forward edges only ever point from a lower index
// to a higher one (both SSA defs and the memory chain are built left to
// right), so the reversed storage and the critical-path sweep below need no
// cycle handling.
func buildDAG(instrs []ir.Instruction, sm machine.ShaderModel, oracle latency.Oracle) *dag {
	d := &dag{nodes: make([]node, len(instrs))}
	for i, in := range instrs {
		d.nodes[i].instr = in
	}

	addEdge := func(producer, consumer int, lat uint32) {
		d.nodes[producer].forward = append(d.nodes[producer].forward, edge{to: consumer, latency: lat})
		d.nodes[consumer].reversed = append(d.nodes[consumer].reversed, edge{to: producer, latency: lat})
		d.nodes[producer].numUses++
	}

	defOf := make(map[ir.SSAValue]int)
	for j, in := range instrs {
		for srcIdx, s := range in.Srcs {
			for _, ref := range s.Refs {
				if i, ok := defOf[ref]; ok {
					producer := d.nodes[i].instr
					lat := dataLatency(producer, in, destIndexOf(producer, ref), srcIdx, ref.File, sm, oracle, false)
					addEdge(i, j, lat)
				}
			}
		}
		if in.HasPredicate() {
			if i, ok := defOf[in.Pred]; ok {
				producer := d.nodes[i].instr
				lat := dataLatency(producer, in, destIndexOf(producer, in.Pred), 0, in.Pred.File, sm, oracle, true)
				addEdge(i, j, lat)
			}
		}
		for _, dst := range in.DestValues() {
			defOf[dst] = j
		}
	}

	lastMem := -1
	for i, in := range instrs {
		if in.SideEffectType() == ir.SideEffectMemory {
			if lastMem >= 0 {
				addEdge(lastMem, i, 0)
			}
			lastMem = i
		}
	}

	d.criticalPath = computeCriticalPath(d.nodes)
	return d
}

// destIndexOf finds v's position among instr's destination values, used to
// pick the right operand index for the oracle's writer role.
func destIndexOf(instr ir.Instruction, v ir.SSAValue) int {
	for idx, d := range instr.DestValues() {
		if d == v {
			return idx
		}
	}
	return 0
}

// dataLatency computes one RAW or PAW edge latency between a producer and
// a consumer (or the consumption of a predicate guard), widening it to the
// variable-latency estimate when the producer is not fixed-latency on this
// SM.
func dataLatency(producer, consumer ir.Instruction, destIdx, srcIdx int, file ir.RegFile, sm machine.ShaderModel, oracle latency.Oracle, isPredicate bool) uint32 {
	w := latency.Operand{
		Op:          producer.Op,
		OperandIdx:  destIdx,
		IsUniform:   producer.IsUniform,
		DestVector:  producer.Dst.Kind == ir.DestVector,
		HasFixedLat: sm.HasFixedLatency(producer.Op),
	}

	var lat uint32
	if isPredicate {
		lat = oracle.Paw(w, file)
	} else {
		r := latency.Operand{
			Op:          consumer.Op,
			OperandIdx:  srcIdx,
			IsUniform:   consumer.IsUniform,
			HasFixedLat: sm.HasFixedLatency(consumer.Op),
		}
		lat = oracle.Raw(w, r, file)
	}

	if !producer.IsVirtual && !sm.HasFixedLatency(producer.Op) {
		if est := latency.EstimateVariableLatency(producer.Op); est > lat {
			lat = est
		}
	}
	return lat
}

// computeCriticalPath returns, per node, the longest latency-weighted path
// to a sink of the forward graph. Forward edges only increase index, so a
// single backward pass suffices — every successor is already resolved.
func computeCriticalPath(nodes []node) []uint32 {
	cp := make([]uint32, len(nodes))
	for i := len(nodes) - 1; i >= 0; i-- {
		var best uint32
		for _, e := range nodes[i].forward {
			if v := e.latency + cp[e.to]; v > best {
				best = v
			}
		}
		cp[i] = best
	}
	return cp
}
