package codegen

import (
	"math/big"
	"strconv"
	"strings"
	"testing"

	"github.com/kdyakonov/impc/internal/ast"
	"github.com/kdyakonov/impc/internal/parser"
)

func mustParse(t *testing.T, src string) (*ast.Program, error) {
	t.Helper()
	return parser.Parse(src)
}

// machine is a minimal, deliberately literal interpreter for the
// linearized assembly text this package emits. It exists purely to
// give the compiler's own tests a ground truth to check output
// against — spec.md treats VM execution as out of scope for the
// compiler itself, so this lives only in _test.go.
type machine struct {
	regs  map[string]*big.Int
	mem   map[uint64]*big.Int
	input []uint64
	ip    int
	out   []uint64
}

func newMachine(input ...uint64) *machine {
	m := &machine{
		regs:  make(map[string]*big.Int),
		mem:   make(map[uint64]*big.Int),
		input: input,
	}
	for _, r := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "k"} {
		m.regs[r] = big.NewInt(0)
	}
	return m
}

func (m *machine) cell(addr uint64) *big.Int {
	c, ok := m.mem[addr]
	if !ok {
		c = big.NewInt(0)
		m.mem[addr] = c
	}
	return c
}

// run executes lines (the exact text codegen.Linearize produces) until
// HALT or a step budget is exhausted, and returns the WRITE outputs.
func (m *machine) run(t *testing.T, text string, stepBudget int) []uint64 {
	t.Helper()
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for steps := 0; ; steps++ {
		if steps > stepBudget {
			t.Fatalf("exceeded step budget %d, likely an infinite loop; ip=%d", stepBudget, m.ip)
		}
		if m.ip < 0 || m.ip >= len(lines) {
			t.Fatalf("ip %d ran off the end of a %d-line program without HALT", m.ip, len(lines))
		}
		fields := strings.Fields(lines[m.ip])
		op := fields[0]
		switch op {
		case "HALT":
			return m.out
		case "READ":
			if len(m.input) == 0 {
				t.Fatalf("READ with no input remaining")
			}
			a := new(big.Int).SetUint64(m.input[0])
			m.input = m.input[1:]
			m.regs["a"] = a
			m.ip++
		case "WRITE":
			v := new(big.Int).Set(m.regs["a"])
			m.out = append(m.out, v.Uint64())
			m.ip++
		case "LOAD":
			addr := m.regs[fields[1]].Uint64()
			m.regs["a"] = new(big.Int).Set(m.cell(addr))
			m.ip++
		case "STORE":
			addr := m.regs[fields[1]].Uint64()
			m.mem[addr] = new(big.Int).Set(m.regs["a"])
			m.ip++
		case "ADD":
			m.regs["a"] = new(big.Int).Add(m.regs["a"], m.regs[fields[1]])
			m.ip++
		case "SUB":
			d := new(big.Int).Sub(m.regs["a"], m.regs[fields[1]])
			if d.Sign() < 0 {
				d = big.NewInt(0)
			}
			m.regs["a"] = d
			m.ip++
		case "GET":
			m.regs["a"] = new(big.Int).Set(m.regs[fields[1]])
			m.ip++
		case "PUT":
			m.regs[fields[1]] = new(big.Int).Set(m.regs["a"])
			m.ip++
		case "RST":
			m.regs[fields[1]] = big.NewInt(0)
			m.ip++
		case "INC":
			m.regs[fields[1]] = new(big.Int).Add(m.regs[fields[1]], big.NewInt(1))
			m.ip++
		case "DEC":
			r := m.regs[fields[1]]
			if r.Sign() > 0 {
				m.regs[fields[1]] = new(big.Int).Sub(r, big.NewInt(1))
			}
			m.ip++
		case "SHL":
			m.regs[fields[1]] = new(big.Int).Lsh(m.regs[fields[1]], 1)
			m.ip++
		case "SHR":
			m.regs[fields[1]] = new(big.Int).Rsh(m.regs[fields[1]], 1)
			m.ip++
		case "JUMP":
			m.ip = mustAtoi(t, fields[1])
		case "JPOS":
			if m.regs["a"].Sign() > 0 {
				m.ip = mustAtoi(t, fields[1])
			} else {
				m.ip++
			}
		case "JZERO":
			if m.regs["a"].Sign() == 0 {
				m.ip = mustAtoi(t, fields[1])
			} else {
				m.ip++
			}
		default:
			t.Fatalf("unrecognized instruction %q at line %d", lines[m.ip], m.ip)
		}
	}
}

func mustAtoi(t *testing.T, s string) int {
	t.Helper()
	n, err := strconv.Atoi(s)
	if err != nil {
		t.Fatalf("malformed jump target %q: %v", s, err)
	}
	return n
}

func compileAndRun(t *testing.T, src string, input ...uint64) []uint64 {
	t.Helper()
	prog, err := mustParse(t, src)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	text, _, err := Compile(prog)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	return newMachine(input...).run(t, text, 2_000_000)
}

func assertOut(t *testing.T, got []uint64, want ...uint64) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v outputs, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("output %d: got %d, want %d (full: %v)", i, got[i], want[i], got)
		}
	}
}
