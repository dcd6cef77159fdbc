package prepass

import (
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/machine"
)

// EdgeInfo is one dependency-graph edge, exported for cmd/mirsched's
// dump. The scheduler itself never prints anything; this is purely a
// read-only view for the CLI.
type EdgeInfo struct {
	Producer, Consumer int
	Latency            uint32
}

// DAGEdges builds the dependency graph for instrs and returns its forward
// (producer -> consumer) edges for display.
func DAGEdges(instrs []ir.Instruction, sm machine.ShaderModel, oracle latency.Oracle) []EdgeInfo {
	d := buildDAG(instrs, sm, oracle)
	var out []EdgeInfo
	for i := range d.nodes {
		for _, e := range d.nodes[i].forward {
			out = append(out, EdgeInfo{Producer: i, Consumer: e.to, Latency: e.latency})
		}
	}
	return out
}
