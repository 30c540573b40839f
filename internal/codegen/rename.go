package codegen

import "github.com/kdyakonov/impc/internal/ast"

// qualifyProcedure rewrites every identifier in proc's body (and only
// the body — locals are qualified separately when New allocates them,
// formals when a call site binds them) by appending "@proc.Name",
// exactly once, at procedure-table construction time.
//
// This is the flat-namespace trick spec.md §9 calls out: instead of a
// scope stack, every reference inside procedure P is rewritten so its
// qualified name is globally unique. Recursion is not detected from
// these names; emitCall rejects it with a stack of the procedures
// being expanded. Grounded on original_source/src/emitter/instruct/mod.rs's
// ProcedureBuilder::rename_commands.
func qualifyProcedure(proc ast.Procedure) ast.Procedure {
	suffix := proc.Name.Name
	out := proc
	out.Body = renameCommands(proc.Body, suffix)
	return out
}

func renameCommands(cmds []ast.Command, suffix string) []ast.Command {
	if cmds == nil {
		return nil
	}
	out := make([]ast.Command, len(cmds))
	for i, c := range cmds {
		out[i] = renameCommand(c, suffix)
	}
	return out
}

func renameCommand(cmd ast.Command, suffix string) ast.Command {
	switch c := cmd.(type) {
	case ast.AssignCmd:
		return ast.AssignCmd{Target: renameIdentValue(c.Target, suffix), Expr: renameExpr(c.Expr, suffix)}
	case ast.IfCmd:
		return ast.IfCmd{
			Cond: renameCondition(c.Cond, suffix),
			Then: renameCommands(c.Then, suffix),
			Else: renameCommands(c.Else, suffix),
		}
	case ast.WhileCmd:
		return ast.WhileCmd{Cond: renameCondition(c.Cond, suffix), Body: renameCommands(c.Body, suffix)}
	case ast.RepeatCmd:
		return ast.RepeatCmd{Body: renameCommands(c.Body, suffix), Cond: renameCondition(c.Cond, suffix)}
	case ast.CallCmd:
		args := make([]ast.Ident, len(c.Args))
		for i, a := range c.Args {
			args[i] = renameIdent(a, suffix)
		}
		// The callee name itself is never qualified: procedure names
		// live in their own flat table, not the variable namespace.
		return ast.CallCmd{Proc: c.Proc, Args: args}
	case ast.ReadCmd:
		return ast.ReadCmd{Target: renameIdentValue(c.Target, suffix)}
	case ast.WriteCmd:
		return ast.WriteCmd{V: renameValue(c.V, suffix)}
	default:
		return cmd
	}
}

func renameCondition(cond ast.Condition, suffix string) ast.Condition {
	return ast.Condition{Op: cond.Op, Left: renameValue(cond.Left, suffix), Right: renameValue(cond.Right, suffix)}
}

func renameExpr(expr ast.Expression, suffix string) ast.Expression {
	switch e := expr.(type) {
	case ast.ValueExpr:
		return ast.ValueExpr{V: renameValue(e.V, suffix)}
	case ast.AddExpr:
		return ast.AddExpr{Left: renameValue(e.Left, suffix), Right: renameValue(e.Right, suffix)}
	case ast.SubExpr:
		return ast.SubExpr{Left: renameValue(e.Left, suffix), Right: renameValue(e.Right, suffix)}
	case ast.MulExpr:
		return ast.MulExpr{Left: renameValue(e.Left, suffix), Right: renameValue(e.Right, suffix)}
	case ast.DivExpr:
		return ast.DivExpr{Left: renameValue(e.Left, suffix), Right: renameValue(e.Right, suffix)}
	case ast.ModExpr:
		return ast.ModExpr{Left: renameValue(e.Left, suffix), Right: renameValue(e.Right, suffix)}
	default:
		return expr
	}
}

func renameValue(v ast.Value, suffix string) ast.Value {
	switch val := v.(type) {
	case ast.NumberValue:
		return val
	case ast.IdentValue:
		return renameIdentValue(val, suffix)
	default:
		return v
	}
}

func renameIdentValue(iv ast.IdentValue, suffix string) ast.IdentValue {
	out := iv
	out.Base = renameIdent(iv.Base, suffix)
	if iv.IndexKind == ast.IndexIdent {
		out.IndexVar = renameIdent(iv.IndexVar, suffix)
	}
	return out
}

func renameIdent(id ast.Ident, suffix string) ast.Ident {
	return ast.Ident{Name: qualify(id.Name, suffix), Offset: id.Offset}
}
