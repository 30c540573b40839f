package parser

import (
	"testing"

	"github.com/kdyakonov/impc/internal/ast"
)

func assert(t *testing.T, cond bool, format string, args ...any) {
	t.Helper()
	if !cond {
		t.Fatalf(format, args...)
	}
}

func TestMinimalProgram(t *testing.T) {
	prog, err := Parse("BEGIN WRITE 1; END")
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.MainBody) == 1, "expected 1 command, got %d", len(prog.MainBody))
	_, ok := prog.MainBody[0].(ast.WriteCmd)
	assert(t, ok, "expected WriteCmd, got %T", prog.MainBody[0])
}

func TestDeclarationsAndArrays(t *testing.T) {
	prog, err := Parse("IS x, arr[10] BEGIN x := 1; arr[0] := x; END")
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.MainDecls) == 2, "expected 2 declarations, got %d", len(prog.MainDecls))
	assert(t, prog.MainDecls[1].Kind == ast.DeclArray && prog.MainDecls[1].Size == 10,
		"expected arr[10], got %+v", prog.MainDecls[1])
}

func TestIfThenElse(t *testing.T) {
	prog, err := Parse("IS x BEGIN IF x = 0 THEN x := 1; ELSE x := 2; ENDIF END")
	assert(t, err == nil, "unexpected error: %v", err)
	ifCmd, ok := prog.MainBody[0].(ast.IfCmd)
	assert(t, ok, "expected IfCmd, got %T", prog.MainBody[0])
	assert(t, len(ifCmd.Then) == 1 && len(ifCmd.Else) == 1, "expected one command per arm")
	assert(t, ifCmd.Cond.Op == ast.OpEq, "expected OpEq, got %v", ifCmd.Cond.Op)
}

func TestIfWithoutElse(t *testing.T) {
	prog, err := Parse("IS x BEGIN IF x > 0 THEN x := 1; ENDIF END")
	assert(t, err == nil, "unexpected error: %v", err)
	ifCmd, ok := prog.MainBody[0].(ast.IfCmd)
	assert(t, ok, "expected IfCmd, got %T", prog.MainBody[0])
	assert(t, ifCmd.Else == nil, "expected no else-arm, got %v", ifCmd.Else)
}

func TestWhileAndRepeat(t *testing.T) {
	prog, err := Parse("IS x BEGIN WHILE x < 10 DO x := x + 1; ENDWHILE REPEAT x := x - 1; UNTIL x = 0; END")
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.MainBody) == 2, "expected 2 commands, got %d", len(prog.MainBody))
	_, ok := prog.MainBody[0].(ast.WhileCmd)
	assert(t, ok, "expected WhileCmd, got %T", prog.MainBody[0])
	_, ok = prog.MainBody[1].(ast.RepeatCmd)
	assert(t, ok, "expected RepeatCmd, got %T", prog.MainBody[1])
}

func TestProcedureWithArgsAndCall(t *testing.T) {
	src := `
		PROCEDURE inc(x, T arr) IS local IN
			local := x;
			arr[0] := local;
		END;
		BEGIN
			CALL inc(a, b);
		END
	`
	prog, err := Parse(src)
	assert(t, err == nil, "unexpected error: %v", err)
	assert(t, len(prog.Procedures) == 1, "expected 1 procedure, got %d", len(prog.Procedures))
	proc := prog.Procedures[0]
	assert(t, len(proc.Formals) == 2, "expected 2 formals, got %d", len(proc.Formals))
	assert(t, proc.Formals[0].Kind == ast.ArgScalar, "expected first formal scalar")
	assert(t, proc.Formals[1].Kind == ast.ArgArray, "expected second formal array")
	call, ok := prog.MainBody[0].(ast.CallCmd)
	assert(t, ok, "expected CallCmd, got %T", prog.MainBody[0])
	assert(t, call.Proc.Name == "inc" && len(call.Args) == 2, "unexpected call shape: %+v", call)
}

func TestArithmeticExpression(t *testing.T) {
	prog, err := Parse("IS x BEGIN x := 2 * 3; END")
	assert(t, err == nil, "unexpected error: %v", err)
	assign, ok := prog.MainBody[0].(ast.AssignCmd)
	assert(t, ok, "expected AssignCmd, got %T", prog.MainBody[0])
	_, ok = assign.Expr.(ast.MulExpr)
	assert(t, ok, "expected MulExpr, got %T", assign.Expr)
}

func TestVariableIndex(t *testing.T) {
	prog, err := Parse("IS arr[5], i BEGIN arr[i] := 1; END")
	assert(t, err == nil, "unexpected error: %v", err)
	assign := prog.MainBody[0].(ast.AssignCmd)
	assert(t, assign.Target.IndexKind == ast.IndexIdent, "expected variable index")
	assert(t, assign.Target.IndexVar.Name == "i", "expected index var i, got %s", assign.Target.IndexVar.Name)
}

func TestUnexpectedTokenIsAnError(t *testing.T) {
	_, err := Parse("BEGIN IF END")
	assert(t, err != nil, "expected a parse error")
}
