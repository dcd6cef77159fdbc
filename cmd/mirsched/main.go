package main

import (
	"fmt"
	"os"

	"github.com/minz/sm75sched/pkg/fixture"
	"github.com/minz/sm75sched/pkg/ir"
	"github.com/minz/sm75sched/pkg/latency"
	"github.com/minz/sm75sched/pkg/liveness"
	"github.com/minz/sm75sched/pkg/machine"
	"github.com/minz/sm75sched/pkg/prepass"
	"github.com/spf13/cobra"
)

var (
	maxGPRs  int32
	showLive bool
)

var rootCmd = &cobra.Command{
	Use:   "mirsched",
	Short: "SM75 prepass instruction scheduler driver",
	Long: `mirsched - developer driver for the SM75 pre-RA instruction scheduler

Loads a textual MIR fixture, runs the prepass scheduler against the SM75
machine model, and prints the result.

FIXTURE FORMAT:
  .block 0                     start a basic block
  .liveout 0: %a %b            declare the block's live-out values
  %d:gpr = iadd3 %a %b         an instruction (":file" on first definition)
  st %d @%p                    no destination, predicate guard with @

EXAMPLES:
  mirsched run kernel.mir          # schedule and print before/after
  mirsched dump kernel.mir         # print the dependency graph edges`,
}

var runCmd = &cobra.Command{
	Use:   "run [fixture file]",
	Short: "Schedule a fixture and print the before/after instruction order",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runSchedule(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump [fixture file]",
	Short: "Print the dependency graph the scheduler would build",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := dumpDAG(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	runCmd.Flags().Int32Var(&maxGPRs, "max-gprs", 0, "override the GPR budget (default: the SM75 model's register file minus the software reservation)")
	runCmd.Flags().BoolVar(&showLive, "live", false, "print per-file peak live counts before and after")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func load(path string) (*fixture.Result, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return fixture.Parse(string(src))
}

// maxRegsFor derives the per-file budgets the way the shader-level driver
// does: the machine model's register files, minus the software reservation
// on GPRs, with an optional explicit override from --max-gprs.
func maxRegsFor(sm machine.ShaderModel) ir.PerRegFile[int32] {
	var maxRegs ir.PerRegFile[int32]
	for _, f := range ir.AllRegFiles() {
		maxRegs = maxRegs.Set(f, int32(sm.NumRegs(f)))
	}
	maxRegs = maxRegs.Set(ir.GPR, maxRegs.Get(ir.GPR)-prepass.SWReservedGPRs)
	if maxGPRs > 0 {
		maxRegs = maxRegs.Set(ir.GPR, maxGPRs)
	}
	return maxRegs
}

func runSchedule(path string) error {
	res, err := load(path)
	if err != nil {
		return err
	}
	sm := machine.SM75{}
	oracle := latency.NewOracle()
	live := liveness.Analyze(res.Function, res.LiveOut)

	fmt.Println("before:")
	printFunction(res.Function)
	if showLive {
		printMaxLive(live, res.Function)
	}

	prepass.OptInstrSchedPrepass(res.Function, sm, maxRegsFor(sm), live, oracle)

	fmt.Println("after:")
	printFunction(res.Function)
	if showLive {
		after := liveness.Analyze(res.Function, res.LiveOut)
		printMaxLive(after, res.Function)
	}
	return nil
}

func dumpDAG(path string) error {
	res, err := load(path)
	if err != nil {
		return err
	}
	sm := machine.SM75{}
	oracle := latency.NewOracle()
	for _, b := range res.Function.Blocks {
		fmt.Printf(".block %d\n", b.Index)
		for i, in := range b.Instructions {
			fmt.Printf("  [%d] %s\n", i, in)
		}
		for _, e := range prepass.DAGEdges(b.Instructions, sm, oracle) {
			fmt.Printf("  %d -> %d (latency %d)\n", e.Producer, e.Consumer, e.Latency)
		}
	}
	return nil
}

func printFunction(fn *ir.Function) {
	for _, b := range fn.Blocks {
		fmt.Printf(".block %d\n", b.Index)
		for _, in := range b.Instructions {
			fmt.Printf("  %s\n", in)
		}
	}
}

func printMaxLive(live liveness.Provider, fn *ir.Function) {
	peak := live.CalcMaxLive(fn)
	fmt.Print("peak live:")
	peak.ForEach(func(f ir.RegFile, v uint32) {
		if v > 0 {
			fmt.Printf(" %s=%d", f, v)
		}
	})
	fmt.Println()
}
