package codegen

import (
	"fmt"
	"strings"
)

// flatten expands every synthetic instruction — the three macros and
// the two constant-pointer pseudo-ops — into its literal primitive
// form, in place, preserving order. What's left afterward contains
// only primitives and the three relative branches.
func flatten(instrs []Instr) []Instr {
	var out []Instr
	for _, in := range instrs {
		switch in.Op {
		case OpSavePC:
			out = append(out, put(K), inc(K))
		case OpJumpReg:
			out = append(out, get(in.Reg))
		case OpMul:
			out = append(out, macroMul()...)
		case OpDiv:
			out = append(out, macroDiv()...)
		case OpMod:
			out = append(out, macroMod()...)
		default:
			out = append(out, in)
		}
	}
	return out
}

// Linearize implements spec.md §4.7/§4.9: flatten every macro into
// primitives, then walk the result once, converting each relative
// branch offset into an absolute target by adding it to the branch's
// own position in the final output — the position is only known once
// everything ahead of it has been flattened, which is exactly why this
// is a separate pass from emission rather than something command.go
// could do inline.
func Linearize(instrs []Instr) string {
	flat := flatten(instrs)
	var lines []string
	for _, in := range flat {
		pos := int64(len(lines))
		switch in.Op {
		case OpJump:
			lines = append(lines, fmt.Sprintf("JUMP %d\n", pos+in.Offset))
		case OpJpos:
			lines = append(lines, fmt.Sprintf("JPOS %d\n", pos+in.Offset))
		case OpJzero:
			lines = append(lines, fmt.Sprintf("JZERO %d\n", pos+in.Offset))
		case OpHalt:
			lines = append(lines, "HALT\n")
		case OpRead:
			lines = append(lines, "READ\n")
		case OpWrite:
			lines = append(lines, "WRITE\n")
		case OpLoad:
			lines = append(lines, fmt.Sprintf("LOAD %s\n", in.Reg))
		case OpStore:
			lines = append(lines, fmt.Sprintf("STORE %s\n", in.Reg))
		case OpAdd:
			lines = append(lines, fmt.Sprintf("ADD %s\n", in.Reg))
		case OpSub:
			lines = append(lines, fmt.Sprintf("SUB %s\n", in.Reg))
		case OpGet:
			lines = append(lines, fmt.Sprintf("GET %s\n", in.Reg))
		case OpPut:
			lines = append(lines, fmt.Sprintf("PUT %s\n", in.Reg))
		case OpRst:
			lines = append(lines, fmt.Sprintf("RST %s\n", in.Reg))
		case OpInc:
			lines = append(lines, fmt.Sprintf("INC %s\n", in.Reg))
		case OpDec:
			lines = append(lines, fmt.Sprintf("DEC %s\n", in.Reg))
		case OpShl:
			lines = append(lines, fmt.Sprintf("SHL %s\n", in.Reg))
		case OpShr:
			lines = append(lines, fmt.Sprintf("SHR %s\n", in.Reg))
		}
	}
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l)
	}
	return sb.String()
}

// macroMul is the 20-line shift-and-add expansion of PUT/ADD/SUB...
// below: b*c is accumulated into f by walking c's bits, doubling b and
// halving c each round, and stops early (JZERO) the moment c reaches
// zero. Ground truth: original_source/src/emitter/mod.rs's Instruction::Mul
// arm of emit().
func macroMul() []Instr {
	return []Instr{
		put(E), add(E), sub(E), rst(F),
		get(C), jzero(14),
		shr(E), shl(E),
		get(C), sub(E), jzero(4),
		get(F), add(B), put(F),
		shl(B), shr(C),
		get(C), put(E), jpos(-14),
		get(F),
	}
}

// macroDiv is the 25-line restoring-division expansion producing
// floor(b/c) in d, with the c==0 short-circuit (result 0) handled by
// the leading JZERO. Ground truth: Instruction::Div's emit() arm.
func macroDiv() []Instr {
	return []Instr{
		rst(D), add(E), sub(E), jzero(21),
		get(C), sub(B), jpos(18),
		get(C), put(E), rst(F), inc(F),
		get(E), sub(B), jpos(10),
		get(B), sub(E), put(B),
		get(D), add(F), put(D),
		shl(E), shl(F),
		jpos(-11), jpos(-19),
		get(D),
	}
}

// macroMod is the 26-line twin of macroDiv computing b mod c instead
// of the quotient: identical shift-and-subtract structure, but the
// loop back-edges are unconditional (JUMP, not JPOS) since the
// remainder accumulates in b itself rather than in a counter that
// could legitimately reach zero early. Ground truth: Instruction::Mod's
// emit() arm.
func macroMod() []Instr {
	return []Instr{
		rst(D), add(E), sub(E), jzero(21),
		get(C), sub(B), jpos(19),
		get(C), put(E), rst(F), inc(F),
		get(E), sub(B), jpos(10),
		get(B), sub(E), put(B),
		get(D), add(F), put(D),
		shl(E), shl(F),
		jump(-11), jump(-19),
		rst(B), get(B),
	}
}
