package codegen

import (
	"github.com/kdyakonov/impc/internal/ast"
	"github.com/kdyakonov/impc/internal/diag"
)

// emitCall implements spec.md §4.6: a call is expanded in place, not
// realized with a call/return mechanism. The callee's pre-qualified
// body is spliced directly at the call site after its formals are
// aliased onto the caller's actuals — no cells are copied.
func (e *Emitter) emitCall(c ast.CallCmd) ([]Instr, error) {
	proc, ok := e.procedures[c.Proc.Name]
	if !ok {
		return nil, diag.New(diag.UndeclaredProcedure, c.Proc.Name, c.Proc.Offset)
	}

	if e.isExpanding(c.Proc.Name) {
		return nil, diag.New(diag.RecursiveProcedureCall, c.Proc.Name, c.Proc.Offset)
	}

	if len(c.Args) != len(proc.Formals) {
		return nil, diag.New(diag.WrongNumberOfArguments, c.Proc.Name, c.Proc.Offset)
	}

	for i, formal := range proc.Formals {
		actual := c.Args[i]
		actualSt, ok := e.symbols[actual.Name]
		if !ok {
			return nil, diag.New(diag.UndeclaredVariable, actual.Name, actual.Offset)
		}
		wantKind := ScalarStorage
		if formal.Kind == ast.ArgArray {
			wantKind = ArrayStorage
		}
		if actualSt.Kind != wantKind {
			return nil, diag.New(diag.WrongArgumentType, actual.Name, actual.Offset)
		}

		formalKey := qualify(formal.Name.Name, proc.Name.Name)
		e.symbols[formalKey] = actualSt
		// spec.md §4.6 step 4: binding a formal unconditionally marks
		// both names initialized, regardless of the actual's prior state.
		e.initialized[actual.Name] = true
		e.initialized[formalKey] = true
	}

	e.callStack = append(e.callStack, c.Proc.Name)
	body, err := e.emitCommands(proc.Body)
	e.callStack = e.callStack[:len(e.callStack)-1]
	if err != nil {
		return nil, err
	}

	return body, nil
}

// isExpanding reports whether proc is already on the call stack, i.e.
// its body is mid-expansion higher up — the recursion check: the flat
// namespace gives every procedure a single, non-reentrant storage
// region, so a second concurrent expansion would alias the same cells
// as the outer one and silently corrupt it. The stack holds bare
// procedure names and is compared by whole-name equality, so it is
// immune to accidental collisions with an unrelated "@Name" substring
// elsewhere in the program.
func (e *Emitter) isExpanding(name string) bool {
	for _, n := range e.callStack {
		if n == name {
			return true
		}
	}
	return false
}
