package codegen

import "github.com/kdyakonov/impc/internal/ast"

// emitCommands emits a command list in order, concatenating each
// command's instructions (spec.md §4.5).
func (e *Emitter) emitCommands(cmds []ast.Command) ([]Instr, error) {
	var out []Instr
	for _, cmd := range cmds {
		instrs, err := e.emitCommand(cmd)
		if err != nil {
			return nil, err
		}
		out = append(out, instrs...)
	}
	return out, nil
}

func (e *Emitter) emitCommand(cmd ast.Command) ([]Instr, error) {
	switch c := cmd.(type) {
	case ast.AssignCmd:
		return e.emitAssign(c)
	case ast.IfCmd:
		return e.emitIf(c)
	case ast.WhileCmd:
		return e.emitWhile(c)
	case ast.RepeatCmd:
		return e.emitRepeat(c)
	case ast.CallCmd:
		return e.emitCall(c)
	case ast.ReadCmd:
		return e.emitRead(c)
	case ast.WriteCmd:
		return e.emitWrite(c)
	default:
		return nil, nil
	}
}

// emitAssign implements spec.md §4.5 "Assignment x := e": record x
// initialized, emit address-of-x, PUT G, emit e, STORE G.
func (e *Emitter) emitAssign(c ast.AssignCmd) ([]Instr, error) {
	e.initialized[c.Target.Base.Name] = true

	addr, err := e.resolveAddress(c.Target)
	if err != nil {
		return nil, err
	}
	instrs := append(addr, put(G))

	expr, err := e.emitExpression(c.Expr)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, expr...)
	instrs = append(instrs, store(G))
	return instrs, nil
}

func (e *Emitter) emitRead(c ast.ReadCmd) ([]Instr, error) {
	e.initialized[c.Target.Base.Name] = true

	addr, err := e.resolveAddress(c.Target)
	if err != nil {
		return nil, err
	}
	instrs := append(addr, put(G), read(), store(G))
	return instrs, nil
}

func (e *Emitter) emitWrite(c ast.WriteCmd) ([]Instr, error) {
	e.checkIfInitialized(c.V)
	instrs, err := e.extractValue(c.V)
	if err != nil {
		return nil, err
	}
	return append(instrs, write()), nil
}

// emitIf implements spec.md §4.5's two-armed conditional and §4.4's
// six comparisons. then/else are emitted first so their expanded
// lengths are known before the guard's jump offsets are computed —
// the "relative-then-absolute" two-stage resolution spec.md §9 calls
// out. Offsets below are ported bit-for-bit from the reference emitter
// (original_source/src/emitter/mod.rs) since spec.md's prose
// under-specifies them exactly.
func (e *Emitter) emitIf(c ast.IfCmd) ([]Instr, error) {
	thenInstrs, err := e.emitCommands(c.Then)
	if err != nil {
		return nil, err
	}
	thenLen := Len(thenInstrs)

	elseInstrs, err := e.emitCommands(c.Else)
	if err != nil {
		return nil, err
	}
	elseLen := Len(elseInstrs)

	cond := c.Cond
	left, err := e.extractValue(cond.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.extractValue(cond.Right)
	if err != nil {
		return nil, err
	}

	var out []Instr
	switch cond.Op {
	case ast.OpEq:
		out = append(out, left...)
		out = append(out, put(B))
		out = append(out, right...)
		out = append(out, put(C), sub(B), jpos(thenLen+5), get(B), sub(C), jpos(thenLen+2))
		out = append(out, thenInstrs...)
		out = append(out, jump(elseLen+1))
		out = append(out, elseInstrs...)

	case ast.OpNeq:
		out = append(out, left...)
		out = append(out, put(B))
		out = append(out, right...)
		out = append(out, put(C), sub(B), jpos(elseLen+5), get(B), sub(C), jpos(elseLen+2))
		out = append(out, elseInstrs...)
		out = append(out, jump(thenLen+1))
		out = append(out, thenInstrs...)

	case ast.OpGt:
		out = append(out, right...)
		out = append(out, put(B))
		out = append(out, left...)
		out = append(out, sub(B), jpos(elseLen+2))
		out = append(out, elseInstrs...)
		out = append(out, jump(thenLen+1))
		out = append(out, thenInstrs...)

	case ast.OpLt:
		out = append(out, left...)
		out = append(out, put(B))
		out = append(out, right...)
		out = append(out, sub(B), jpos(elseLen+2))
		out = append(out, elseInstrs...)
		out = append(out, jump(thenLen+1))
		out = append(out, thenInstrs...)

	case ast.OpGeq:
		out = append(out, left...)
		out = append(out, put(B))
		out = append(out, right...)
		out = append(out, sub(B), jpos(thenLen+2))
		out = append(out, thenInstrs...)
		out = append(out, jump(elseLen+1))
		out = append(out, elseInstrs...)

	case ast.OpLeq:
		out = append(out, right...)
		out = append(out, put(B))
		out = append(out, left...)
		out = append(out, sub(B), jpos(thenLen+2))
		out = append(out, thenInstrs...)
		out = append(out, jump(elseLen+1))
		out = append(out, elseInstrs...)
	}
	return out, nil
}

// emitWhile implements the pre-test loop of spec.md §4.5: the guard
// falls through into the body when it holds, skips the body (plus the
// trailing back-edge) when it does not, and the body is followed by an
// unconditional backward jump landing on the guard's first instruction.
func (e *Emitter) emitWhile(c ast.WhileCmd) ([]Instr, error) {
	body, err := e.emitCommands(c.Body)
	if err != nil {
		return nil, err
	}
	bodyLen := Len(body)

	cond := c.Cond
	left, err := e.extractValue(cond.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.extractValue(cond.Right)
	if err != nil {
		return nil, err
	}

	var guard []Instr
	switch cond.Op {
	case ast.OpEq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, put(C), sub(B), jpos(bodyLen+5), get(B), sub(C), jpos(bodyLen+2))

	case ast.OpNeq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, put(C), sub(B), jpos(5), get(B), sub(C), jpos(2), jump(bodyLen+2))

	case ast.OpGt:
		guard = append(guard, right...)
		guard = append(guard, put(B))
		guard = append(guard, left...)
		guard = append(guard, sub(B), jpos(2), jump(bodyLen+2))

	case ast.OpLt:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, sub(B), jpos(2), jump(bodyLen+2))

	case ast.OpGeq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, sub(B), jpos(bodyLen+2))

	case ast.OpLeq:
		guard = append(guard, right...)
		guard = append(guard, put(B))
		guard = append(guard, left...)
		guard = append(guard, sub(B), jpos(bodyLen+2))
	}
	guardLen := Len(guard)

	out := append([]Instr{}, guard...)
	out = append(out, body...)
	out = append(out, jump(-(bodyLen + guardLen)))
	return out, nil
}

// emitRepeat implements the post-test loop of spec.md §4.5: the body
// runs first; the guard's "true" arm (repeat) jumps backward to the
// body's start, otherwise control falls through. For inequality forms
// this is realized as negated forward jumps skipping over a single
// backward jump, matching the reference emitter.
func (e *Emitter) emitRepeat(c ast.RepeatCmd) ([]Instr, error) {
	body, err := e.emitCommands(c.Body)
	if err != nil {
		return nil, err
	}
	bodyLen := Len(body)

	cond := c.Cond
	left, err := e.extractValue(cond.Left)
	if err != nil {
		return nil, err
	}
	right, err := e.extractValue(cond.Right)
	if err != nil {
		return nil, err
	}

	var guard []Instr
	switch cond.Op {
	case ast.OpEq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, put(C), sub(B))
		condLen := Len(guard)
		guard = append(guard, jpos(-(condLen+bodyLen)))
		guard = append(guard, get(B), sub(C))
		guard = append(guard, jpos(-(condLen+bodyLen+3)))

	case ast.OpNeq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, put(C), sub(B))
		condLen := Len(guard)
		guard = append(guard, jpos(5), get(B), sub(C), jpos(2))
		guard = append(guard, jump(-(condLen+bodyLen+4)))

	case ast.OpGt:
		guard = append(guard, right...)
		guard = append(guard, put(B))
		guard = append(guard, left...)
		guard = append(guard, sub(B), jpos(2))
		condLen := Len(guard)
		guard = append(guard, jump(-(condLen+bodyLen)))

	case ast.OpLt:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, sub(B), jpos(2))
		condLen := Len(guard)
		guard = append(guard, jump(-(condLen+bodyLen)))

	case ast.OpGeq:
		guard = append(guard, left...)
		guard = append(guard, put(B))
		guard = append(guard, right...)
		guard = append(guard, sub(B))
		condLen := Len(guard)
		guard = append(guard, jpos(-(condLen+bodyLen)))

	case ast.OpLeq:
		guard = append(guard, right...)
		guard = append(guard, put(B))
		guard = append(guard, left...)
		guard = append(guard, sub(B))
		condLen := Len(guard)
		guard = append(guard, jpos(-(condLen+bodyLen)))
	}

	out := append([]Instr{}, body...)
	out = append(out, guard...)
	return out, nil
}
