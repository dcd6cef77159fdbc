// Package fixture parses the small hand-rolled textual MIR format
// cmd/mirsched loads its test functions from: a bufio.Scanner,
// line-oriented parser with no grammar engine. It is tooling around the
// scheduler, not part of it — the scheduler only ever sees the finished
// in-memory IR.
package fixture

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/minz/sm75sched/pkg/ir"
)

var opNames = map[string]ir.Op{
	"nop":       ir.OpNop,
	"iadd3":     ir.OpIAdd3,
	"lop3":      ir.OpLop3,
	"isetp":     ir.OpISetP,
	"fadd":      ir.OpFAdd,
	"fmul":      ir.OpFMul,
	"fsetp":     ir.OpFSetP,
	"ffma":      ir.OpFFma,
	"shf":       ir.OpShf,
	"lea":       ir.OpLea,
	"imad":      ir.OpIMad,
	"imadwide":  ir.OpIMadWide,
	"imad64":    ir.OpIMad64,
	"dadd":      ir.OpDAdd,
	"dmul":      ir.OpDMul,
	"hadd2":     ir.OpHAdd2,
	"hmul2":     ir.OpHMul2,
	"hmma884":   ir.OpHmma884,
	"hmma1684":  ir.OpHmma1684,
	"hmma16816": ir.OpHmma16816,
	"hmma16832": ir.OpHmma16832,
	"imma":      ir.OpImma,
	"ld":        ir.OpLd,
	"st":        ir.OpSt,
	"ldg":       ir.OpLdg,
	"stg":       ir.OpStg,
	"tex":       ir.OpTex,
	"atom":      ir.OpAtom,
	"bmov":      ir.OpBMov,
	"cs2r":      ir.OpCS2R,
	"r2ur":      ir.OpR2UR,
	"mov":       ir.OpMov,
	"prmt":      ir.OpPrmt,
	"umov":      ir.OpUMov,
	"uldc":      ir.OpULdc,
	"voteu":     ir.OpVoteU,
	"bra":       ir.OpBra,
	"exit":      ir.OpExit,
	"bar":       ir.OpBar,
	"membar":    ir.OpMemBar,
	"depbar":    ir.OpDepBar,
}

var fileNames = map[string]ir.RegFile{
	"gpr":   ir.GPR,
	"ugpr":  ir.UGPR,
	"pred":  ir.Pred,
	"upred": ir.UPred,
	"bar":   ir.Bar,
	"carry": ir.Carry,
	"mem":   ir.Mem,
}

// Result is one parsed fixture: the function plus each block's declared
// live-out set, keyed by block index (the net-live tracker needs a
// live-out seed per block).
type Result struct {
	Function *ir.Function
	LiveOut  map[int]*ir.LiveSet
}

type parser struct {
	fn      *ir.Function
	block   *ir.BasicBlock
	values  map[string]ir.SSAValue
	liveOut map[int]*ir.LiveSet
	next    uint32
	line    int
}

// Parse reads one function from src. Grammar, line by line:
//
//	.block N                 start block N (blocks must appear in order)
//	.liveout N: %a %b ...    declare block N's live-out SSA values
//	%d:FILE = OP %s1 %s2 @%p  an instruction; ":FILE" required on a
//	                          destination whose name is new, optional
//	                          afterward; a new source name is defined on
//	                          the spot (GPR, or Pred for a guard, unless
//	                          it carries ":FILE");
//	                          "@%p" is an optional predicate guard
//	OP %s1 %s2 @%p            an instruction with no destination
//
// Blank lines and lines starting with "//" or ";" are ignored.
func Parse(src string) (*Result, error) {
	p := &parser{
		fn:      &ir.Function{Name: "fixture"},
		values:  make(map[string]ir.SSAValue),
		liveOut: make(map[int]*ir.LiveSet),
	}
	scanner := bufio.NewScanner(strings.NewReader(src))
	for scanner.Scan() {
		p.line++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, ".") {
			if err := p.directive(line); err != nil {
				return nil, fmt.Errorf("line %d: %w", p.line, err)
			}
			continue
		}
		if p.block == nil {
			return nil, fmt.Errorf("line %d: instruction before any .block", p.line)
		}
		in, err := p.instruction(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
		p.block.Instructions = append(p.block.Instructions, in)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return &Result{Function: p.fn, LiveOut: p.liveOut}, nil
}

func (p *parser) directive(line string) error {
	fields := strings.Fields(line)
	switch fields[0] {
	case ".block":
		if len(fields) != 2 {
			return fmt.Errorf(".block requires an index")
		}
		idx, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("bad block index: %w", err)
		}
		p.block = &ir.BasicBlock{Index: idx}
		p.fn.Blocks = append(p.fn.Blocks, p.block)
		return nil
	case ".liveout":
		return p.liveoutDirective(line)
	default:
		return fmt.Errorf("unknown directive %q", fields[0])
	}
}

func (p *parser) liveoutDirective(line string) error {
	rest := strings.TrimPrefix(line, ".liveout")
	parts := strings.SplitN(rest, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf(".liveout requires \"N: %%values\"")
	}
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return fmt.Errorf("bad block index: %w", err)
	}
	set := ir.NewLiveSet()
	for _, tok := range strings.Fields(parts[1]) {
		v, ok, err := p.lookup(tok)
		if err != nil {
			return err
		}
		if ok {
			set.Insert(v)
		}
	}
	p.liveOut[idx] = set
	return nil
}

// instruction parses one instruction line. A destination clause, if
// present, comes before "=" and may itself be a comma-separated list (a
// vector destination).
func (p *parser) instruction(line string) (ir.Instruction, error) {
	var destPart, rhs string
	if eq := strings.Index(line, "="); eq >= 0 {
		destPart, rhs = line[:eq], line[eq+1:]
	} else {
		rhs = line
	}

	fields := strings.Fields(rhs)
	if len(fields) == 0 {
		return ir.Instruction{}, fmt.Errorf("empty instruction")
	}
	opName := strings.ToLower(fields[0])
	op, ok := opNames[opName]
	if !ok {
		return ir.Instruction{}, fmt.Errorf("unknown op %q", fields[0])
	}

	in := ir.Instruction{Op: op}

	var predTok string
	var srcToks []string
	for _, f := range fields[1:] {
		if strings.HasPrefix(f, "@") {
			predTok = strings.TrimPrefix(f, "@")
			continue
		}
		srcToks = append(srcToks, f)
	}
	for _, tok := range srcToks {
		v, _, err := p.lookupOrDefine(tok, ir.GPR)
		if err != nil {
			return ir.Instruction{}, err
		}
		in.Srcs = append(in.Srcs, ir.Reg(v))
	}
	if predTok != "" {
		v, _, err := p.lookupOrDefine(predTok, ir.Pred)
		if err != nil {
			return ir.Instruction{}, err
		}
		in.Pred = v
	}

	destPart = strings.TrimSpace(destPart)
	if destPart != "" {
		names := strings.Split(destPart, ",")
		var vals []ir.SSAValue
		for _, n := range names {
			v, err := p.define(strings.TrimSpace(n))
			if err != nil {
				return ir.Instruction{}, err
			}
			vals = append(vals, v)
		}
		if len(vals) == 1 {
			in.Dst = ir.ScalarDest(vals[0])
		} else {
			in.Dst = ir.VectorDest(vals...)
		}
	}

	return in, nil
}

// define declares a destination value. "%name:file" declares a fresh value
// in file; a bare "%name" redeclares (re-defines, as SSA permits distinct
// definitions of the same surface name across instructions) a value whose
// file was already established by an earlier declaration.
func (p *parser) define(tok string) (ir.SSAValue, error) {
	tok = strings.TrimPrefix(tok, "%")
	name, fileName, hasFile := strings.Cut(tok, ":")
	var file ir.RegFile
	if hasFile {
		f, ok := fileNames[strings.ToLower(fileName)]
		if !ok {
			return ir.SSAValue{}, fmt.Errorf("unknown register file %q", fileName)
		}
		file = f
	} else if prev, ok := p.values[name]; ok {
		file = prev.File
	} else {
		return ir.SSAValue{}, fmt.Errorf("%%%s needs a :file on first definition", name)
	}
	p.next++
	v := ir.SSAValue{ID: p.next, File: file}
	p.values[name] = v
	return v, nil
}

// lookup resolves a previously defined value by its surface name; ok is
// false for the empty token.
func (p *parser) lookup(tok string) (ir.SSAValue, bool, error) {
	tok = strings.TrimPrefix(strings.TrimSpace(tok), "%")
	if tok == "" {
		return ir.SSAValue{}, false, nil
	}
	v, ok := p.values[tok]
	if !ok {
		return ir.SSAValue{}, false, fmt.Errorf("undefined value %%%s", tok)
	}
	return v, true, nil
}

// lookupOrDefine resolves tok, defining it fresh the first time it is seen
// as a source — useful for fixtures that reference a function's live-in
// values without an explicit prior definition. An optional ":file" suffix
// picks the new value's register file; defaultFile applies otherwise.
func (p *parser) lookupOrDefine(tok string, defaultFile ir.RegFile) (ir.SSAValue, bool, error) {
	name, fileName, hasFile := strings.Cut(strings.TrimPrefix(tok, "%"), ":")
	if v, ok := p.values[name]; ok {
		return v, true, nil
	}
	file := defaultFile
	if hasFile {
		f, ok := fileNames[strings.ToLower(fileName)]
		if !ok {
			return ir.SSAValue{}, false, fmt.Errorf("unknown register file %q", fileName)
		}
		file = f
	}
	p.next++
	v := ir.SSAValue{ID: p.next, File: file}
	p.values[name] = v
	return v, false, nil
}
