package codegen

import "github.com/kdyakonov/impc/internal/ast"

// emitExpression implements spec.md §4.3's five arithmetic forms.
// Sum and difference are realized directly with ADD/SUB; product,
// quotient, and remainder go through the corresponding synthetic
// macro, which expects its operands in B and C.
//
// Operand evaluation order for subtraction is specifically
// right-then-left (spec.md §9 Open Question (b)) — preserved exactly
// as the reference emitter does it, since a future complex-operand
// extension could make evaluation order observable.
func (e *Emitter) emitExpression(expr ast.Expression) ([]Instr, error) {
	switch ex := expr.(type) {
	case ast.ValueExpr:
		e.checkIfInitialized(ex.V)
		return e.extractValue(ex.V)

	case ast.AddExpr:
		e.checkIfInitialized(ex.Left)
		left, err := e.extractValue(ex.Left)
		if err != nil {
			return nil, err
		}
		instrs := append(left, put(B))
		e.checkIfInitialized(ex.Right)
		right, err := e.extractValue(ex.Right)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, right...)
		instrs = append(instrs, add(B))
		return instrs, nil

	case ast.SubExpr:
		e.checkIfInitialized(ex.Right)
		right, err := e.extractValue(ex.Right)
		if err != nil {
			return nil, err
		}
		instrs := append(right, put(B))
		e.checkIfInitialized(ex.Left)
		left, err := e.extractValue(ex.Left)
		if err != nil {
			return nil, err
		}
		instrs = append(instrs, left...)
		instrs = append(instrs, sub(B))
		return instrs, nil

	case ast.MulExpr:
		return e.emitBinaryMacro(ex.Left, ex.Right, mul())
	case ast.DivExpr:
		return e.emitBinaryMacro(ex.Left, ex.Right, div())
	case ast.ModExpr:
		return e.emitBinaryMacro(ex.Left, ex.Right, mod())

	default:
		return nil, nil
	}
}

// emitBinaryMacro loads left into B, right into C, and appends the
// given synthetic macro instruction — the shared shape of product,
// quotient, and remainder (spec.md §4.3).
func (e *Emitter) emitBinaryMacro(left, right ast.Value, macro Instr) ([]Instr, error) {
	e.checkIfInitialized(left)
	leftInstrs, err := e.extractValue(left)
	if err != nil {
		return nil, err
	}
	instrs := append(leftInstrs, put(B))
	e.checkIfInitialized(right)
	rightInstrs, err := e.extractValue(right)
	if err != nil {
		return nil, err
	}
	instrs = append(instrs, rightInstrs...)
	instrs = append(instrs, put(C))
	instrs = append(instrs, macro)
	return instrs, nil
}
