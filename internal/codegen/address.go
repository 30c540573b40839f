package codegen

import (
	"github.com/kdyakonov/impc/internal/ast"
	"github.com/kdyakonov/impc/internal/diag"
)

// resolveAddress implements spec.md §4.2: given an identifier
// occurrence, emit a sequence that leaves its effective memory address
// in the accumulator. It distinguishes the three reference shapes —
// scalar, fixed-index array element, variable-index array element —
// and fails with the matching diag.Kind on misuse.
func (e *Emitter) resolveAddress(iv ast.IdentValue) ([]Instr, error) {
	switch iv.IndexKind {
	case ast.IndexNone:
		return e.resolveScalar(iv.Base)
	case ast.IndexNumber:
		return e.resolveFixedIndex(iv.Base, iv.IndexNum)
	default:
		return e.resolveVariableIndex(iv.Base, iv.IndexVar)
	}
}

func (e *Emitter) resolveScalar(id ast.Ident) ([]Instr, error) {
	st, ok := e.symbols[id.Name]
	if !ok {
		return nil, diag.New(diag.UndeclaredVariable, id.Name, id.Offset)
	}
	if st.Kind != ScalarStorage {
		return nil, diag.New(diag.IncorrectUseOfVariable, id.Name, id.Offset)
	}
	return loadConst(st.Addr), nil
}

func (e *Emitter) resolveFixedIndex(id ast.Ident, idx uint64) ([]Instr, error) {
	st, ok := e.symbols[id.Name]
	if !ok {
		return nil, diag.New(diag.UndeclaredVariable, id.Name, id.Offset)
	}
	if st.Kind != ArrayStorage {
		return nil, diag.New(diag.IncorrectUseOfVariable, id.Name, id.Offset)
	}
	if idx >= st.Size {
		return nil, diag.New(diag.IndexOutOfBounds, id.Name, id.Offset)
	}
	return loadConst(st.Addr + idx), nil
}

func (e *Emitter) resolveVariableIndex(id, idxID ast.Ident) ([]Instr, error) {
	e.warnIfUninitialized(idxID)

	idxSt, ok := e.symbols[idxID.Name]
	if !ok {
		return nil, diag.New(diag.UndeclaredVariable, idxID.Name, idxID.Offset)
	}
	if idxSt.Kind != ScalarStorage {
		return nil, diag.New(diag.ArrayUsedAsIndex, id.Name, id.Offset)
	}

	st, ok := e.symbols[id.Name]
	if !ok {
		return nil, diag.New(diag.UndeclaredVariable, id.Name, id.Offset)
	}
	if st.Kind != ArrayStorage {
		return nil, diag.New(diag.IncorrectUseOfVariable, id.Name, id.Offset)
	}

	instrs := loadConst(idxSt.Addr)
	instrs = append(instrs, load(A), put(H))
	instrs = append(instrs, loadConst(st.Addr)...)
	instrs = append(instrs, add(H))
	return instrs, nil
}

// extractValue implements "emit value" from spec.md §4.3: a numeric
// literal goes straight through the value loader; an identifier
// resolves its address then loads through it.
func (e *Emitter) extractValue(v ast.Value) ([]Instr, error) {
	switch val := v.(type) {
	case ast.NumberValue:
		return loadConst(val.N), nil
	case ast.IdentValue:
		instrs, err := e.resolveAddress(val)
		if err != nil {
			return nil, err
		}
		return append(instrs, load(A)), nil
	default:
		return nil, nil
	}
}

// valueIdent extracts the base identifier of a Value for
// initialization-warning purposes, or ok=false for a literal.
func valueIdent(v ast.Value) (ast.Ident, bool) {
	if iv, ok := v.(ast.IdentValue); ok {
		return iv.Base, true
	}
	return ast.Ident{}, false
}
