// Package codegen is the semantic analyzer and code generator: it walks
// a validated ast.Program, allocates storage, checks use/definition
// rules, expands call sites, and emits a flat instruction stream with
// relative branches resolved to absolute targets at print time.
//
// The instruction shapes, register roles, and the synthetic macros'
// line counts are ground truth from original_source/src/emitter/mod.rs
// and original_source/src/emitter/instruct/mod.rs — spec.md's prose
// under-specifies the exact offsets, so this package follows the
// reference emitter bit-for-bit there.
package codegen

import "fmt"

// Reg is one of the eight named registers plus k, the constant-pointer
// register used only by SavePC/JumpReg (spec.md §3).
type Reg int

const (
	A Reg = iota
	B
	C
	D
	E
	F
	G
	H
	K
)

func (r Reg) String() string {
	return [...]string{"a", "b", "c", "d", "e", "f", "g", "h", "k"}[r]
}

// Op identifies an abstract instruction kind.
type Op int

const (
	OpRead Op = iota
	OpWrite
	OpLoad
	OpStore
	OpAdd
	OpSub
	OpGet
	OpPut
	OpRst
	OpInc
	OpDec
	OpShl
	OpShr
	OpSavePC // expands to PUT k; INC k
	OpJumpReg
	OpJump
	OpJpos
	OpJzero
	OpHalt
	OpMul // synthetic macro, expands to 20 lines
	OpDiv // synthetic macro, expands to 25 lines
	OpMod // synthetic macro, expands to 26 lines
)

// Instr is one abstract instruction in the pre-linearization stream.
// Reg is meaningful for register-taking ops; Offset is meaningful only
// for the three relative jumps (Jump, Jpos, Jzero), measured in
// expanded-line units from the jump's own (not-yet-known) position.
type Instr struct {
	Op     Op
	Reg    Reg
	Offset int64
}

// Len is the macro length contract of spec.md §3: mul expands to 20
// emitted lines, div to 25, mod to 26; every other instruction expands
// to exactly 1 line. This is authoritative for all offset computation
// done before linearization.
func (i Instr) Len() int64 {
	switch i.Op {
	case OpMul:
		return 20
	case OpDiv:
		return 25
	case OpMod:
		return 26
	case OpSavePC:
		return 2
	default:
		return 1
	}
}

// Len sums Instr.Len() over a whole instruction sequence — the
// expanded-line length used throughout condition/offset computation.
func Len(instrs []Instr) int64 {
	var n int64
	for _, i := range instrs {
		n += i.Len()
	}
	return n
}

func read() Instr          { return Instr{Op: OpRead} }
func write() Instr         { return Instr{Op: OpWrite} }
func load(r Reg) Instr     { return Instr{Op: OpLoad, Reg: r} }
func store(r Reg) Instr    { return Instr{Op: OpStore, Reg: r} }
func add(r Reg) Instr      { return Instr{Op: OpAdd, Reg: r} }
func sub(r Reg) Instr      { return Instr{Op: OpSub, Reg: r} }
func get(r Reg) Instr      { return Instr{Op: OpGet, Reg: r} }
func put(r Reg) Instr      { return Instr{Op: OpPut, Reg: r} }
func rst(r Reg) Instr      { return Instr{Op: OpRst, Reg: r} }
func inc(r Reg) Instr      { return Instr{Op: OpInc, Reg: r} }
func dec(r Reg) Instr      { return Instr{Op: OpDec, Reg: r} }
func shl(r Reg) Instr      { return Instr{Op: OpShl, Reg: r} }
func shr(r Reg) Instr      { return Instr{Op: OpShr, Reg: r} }
func jump(off int64) Instr  { return Instr{Op: OpJump, Offset: off} }
func jpos(off int64) Instr  { return Instr{Op: OpJpos, Offset: off} }
func jzero(off int64) Instr { return Instr{Op: OpJzero, Offset: off} }
func halt() Instr           { return Instr{Op: OpHalt} }
func mul() Instr            { return Instr{Op: OpMul} }
func div() Instr            { return Instr{Op: OpDiv} }
func mod() Instr            { return Instr{Op: OpMod} }

func (op Op) String() string {
	names := [...]string{
		"READ", "WRITE", "LOAD", "STORE", "ADD", "SUB", "GET", "PUT",
		"RST", "INC", "DEC", "SHL", "SHR", "SAVEPC", "JUMPREG",
		"JUMP", "JPOS", "JZERO", "HALT", "MUL", "DIV", "MOD",
	}
	if int(op) < len(names) {
		return names[op]
	}
	return fmt.Sprintf("Op(%d)", int(op))
}
