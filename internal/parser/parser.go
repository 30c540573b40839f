// Package parser is a recursive-descent parser turning a token.Token
// stream into an ast.Program.
//
// The parser only enforces grammar-level well-formedness (unexpected
// token, missing terminator). Every semantic rule spec.md §7 lists
// (undeclared names, arity, duplicate declarations, recursion, ...) is
// the emitter's responsibility, not this package's.
package parser

import (
	"fmt"

	"github.com/kdyakonov/impc/internal/ast"
	"github.com/kdyakonov/impc/internal/lexer"
	"github.com/kdyakonov/impc/internal/token"
)

// Error is a grammar-level parse failure.
type Error struct {
	Message string
	Offset  int
	Line    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("ERROR: %s line: %d", e.Message, e.Line)
}

// Parser holds the lexer and one token of lookahead.
type Parser struct {
	lex *lexer.Lexer
	tok token.Token
}

// Parse scans and parses src in one shot.
func Parse(src string) (*ast.Program, error) {
	p := &Parser{lex: lexer.FromString(src)}
	if err := p.advance(); err != nil {
		return nil, err
	}
	return p.parseProgram()
}

func (p *Parser) advance() error {
	t, err := p.lex.Next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

func (p *Parser) at(k token.Kind) bool {
	return p.tok.Kind == k
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if p.tok.Kind != k {
		return token.Token{}, &Error{
			Message: fmt.Sprintf("expected %s, got %s", k, p.tok),
			Offset:  p.tok.Offset, Line: p.tok.Line,
		}
	}
	t := p.tok
	if err := p.advance(); err != nil {
		return token.Token{}, err
	}
	return t, nil
}

func (p *Parser) unexpected() error {
	return &Error{
		Message: fmt.Sprintf("unexpected token %s", p.tok),
		Offset:  p.tok.Offset, Line: p.tok.Line,
	}
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for p.at(token.KwProcedure) {
		proc, err := p.parseProcedure()
		if err != nil {
			return nil, err
		}
		prog.Procedures = append(prog.Procedures, *proc)
	}
	if p.at(token.KwIs) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		decls, err := p.parseDeclarations()
		if err != nil {
			return nil, err
		}
		prog.MainDecls = decls
	}
	if _, err := p.expect(token.KwBegin); err != nil {
		return nil, err
	}
	body, err := p.parseCommands(token.KwEnd)
	if err != nil {
		return nil, err
	}
	prog.MainBody = body
	if _, err := p.expect(token.KwEnd); err != nil {
		return nil, err
	}
	return prog, nil
}

func (p *Parser) parseProcedure() (*ast.Procedure, error) {
	if _, err := p.expect(token.KwProcedure); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	proc := &ast.Procedure{Name: ast.Ident{Name: nameTok.Text, Offset: nameTok.Offset}}

	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	if !p.at(token.RParen) {
		formals, err := p.parseArgsDecl()
		if err != nil {
			return nil, err
		}
		proc.Formals = formals
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}

	if p.at(token.KwIs) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		decls, err := p.parseDeclarations()
		if err != nil {
			return nil, err
		}
		proc.Locals = decls
	}

	if _, err := p.expect(token.KwIn); err != nil {
		return nil, err
	}
	body, err := p.parseCommands(token.KwEnd)
	if err != nil {
		return nil, err
	}
	proc.Body = body
	if _, err := p.expect(token.KwEnd); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return proc, nil
}

func (p *Parser) parseArgsDecl() ([]ast.FormalParam, error) {
	var formals []ast.FormalParam
	for {
		kind := ast.ArgScalar
		if p.at(token.KwTable) {
			kind = ast.ArgArray
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		formals = append(formals, ast.FormalParam{
			Name: ast.Ident{Name: nameTok.Text, Offset: nameTok.Offset}, Kind: kind,
		})
		if !p.at(token.Comma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return formals, nil
}

func (p *Parser) parseDeclarations() ([]ast.Declaration, error) {
	var decls []ast.Declaration
	for {
		nameTok, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		d := ast.Declaration{Name: ast.Ident{Name: nameTok.Text, Offset: nameTok.Offset}, Kind: ast.DeclScalar}
		if p.at(token.LBracket) {
			if err := p.advance(); err != nil {
				return nil, err
			}
			numTok, err := p.expect(token.Number)
			if err != nil {
				return nil, err
			}
			size, err := parseUint(numTok)
			if err != nil {
				return nil, err
			}
			d.Kind = ast.DeclArray
			d.Size = size
			if _, err := p.expect(token.RBracket); err != nil {
				return nil, err
			}
		}
		decls = append(decls, d)
		if !p.at(token.Comma) {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return decls, nil
}

// parseCommands parses zero or more commands until one of the given
// terminator keywords is the lookahead (it is not consumed).
func (p *Parser) parseCommands(terms ...token.Kind) ([]ast.Command, error) {
	var cmds []ast.Command
	for !p.atAny(terms...) {
		cmd, err := p.parseCommand()
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, cmd)
	}
	return cmds, nil
}

func (p *Parser) atAny(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.tok.Kind == k {
			return true
		}
	}
	return false
}

func (p *Parser) parseCommand() (ast.Command, error) {
	switch p.tok.Kind {
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		return p.parseWhile()
	case token.KwRepeat:
		return p.parseRepeat()
	case token.KwCall:
		return p.parseCall()
	case token.KwRead:
		return p.parseRead()
	case token.KwWrite:
		return p.parseWrite()
	case token.Ident:
		return p.parseAssign()
	default:
		return nil, p.unexpected()
	}
}

func (p *Parser) parseIf() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwThen); err != nil {
		return nil, err
	}
	thenCmds, err := p.parseCommands(token.KwElse, token.KwEndif)
	if err != nil {
		return nil, err
	}
	var elseCmds []ast.Command
	if p.at(token.KwElse) {
		if err := p.advance(); err != nil {
			return nil, err
		}
		elseCmds, err = p.parseCommands(token.KwEndif)
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.KwEndif); err != nil {
		return nil, err
	}
	return ast.IfCmd{Cond: cond, Then: thenCmds, Else: elseCmds}, nil
}

func (p *Parser) parseWhile() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwDo); err != nil {
		return nil, err
	}
	body, err := p.parseCommands(token.KwEndwhile)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwEndwhile); err != nil {
		return nil, err
	}
	return ast.WhileCmd{Cond: cond, Body: body}, nil
}

func (p *Parser) parseRepeat() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	body, err := p.parseCommands(token.KwUntil)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.KwUntil); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return ast.RepeatCmd{Body: body, Cond: cond}, nil
}

func (p *Parser) parseCall() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return nil, err
	}
	var args []ast.Ident
	if !p.at(token.RParen) {
		for {
			argTok, err := p.expect(token.Ident)
			if err != nil {
				return nil, err
			}
			args = append(args, ast.Ident{Name: argTok.Text, Offset: argTok.Offset})
			if !p.at(token.Comma) {
				break
			}
			if err := p.advance(); err != nil {
				return nil, err
			}
		}
	}
	if _, err := p.expect(token.RParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return ast.CallCmd{Proc: ast.Ident{Name: nameTok.Text, Offset: nameTok.Offset}, Args: args}, nil
}

func (p *Parser) parseRead() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	id, err := p.parseIdentValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return ast.ReadCmd{Target: id}, nil
}

func (p *Parser) parseWrite() (ast.Command, error) {
	if err := p.advance(); err != nil {
		return nil, err
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return ast.WriteCmd{V: v}, nil
}

func (p *Parser) parseAssign() (ast.Command, error) {
	target, err := p.parseIdentValue()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Assign); err != nil {
		return nil, err
	}
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return ast.AssignCmd{Target: target, Expr: expr}, nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	left, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	switch p.tok.Kind {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent:
		op := p.tok.Kind
		if err := p.advance(); err != nil {
			return nil, err
		}
		right, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		switch op {
		case token.Plus:
			return ast.AddExpr{Left: left, Right: right}, nil
		case token.Minus:
			return ast.SubExpr{Left: left, Right: right}, nil
		case token.Star:
			return ast.MulExpr{Left: left, Right: right}, nil
		case token.Slash:
			return ast.DivExpr{Left: left, Right: right}, nil
		default:
			return ast.ModExpr{Left: left, Right: right}, nil
		}
	default:
		return ast.ValueExpr{V: left}, nil
	}
}

func (p *Parser) parseCondition() (ast.Condition, error) {
	left, err := p.parseValue()
	if err != nil {
		return ast.Condition{}, err
	}
	var op ast.CompareOp
	switch p.tok.Kind {
	case token.Eq:
		op = ast.OpEq
	case token.Neq:
		op = ast.OpNeq
	case token.Gt:
		op = ast.OpGt
	case token.Lt:
		op = ast.OpLt
	case token.Geq:
		op = ast.OpGeq
	case token.Leq:
		op = ast.OpLeq
	default:
		return ast.Condition{}, p.unexpected()
	}
	if err := p.advance(); err != nil {
		return ast.Condition{}, err
	}
	right, err := p.parseValue()
	if err != nil {
		return ast.Condition{}, err
	}
	return ast.Condition{Op: op, Left: left, Right: right}, nil
}

func (p *Parser) parseValue() (ast.Value, error) {
	if p.at(token.Number) {
		numTok := p.tok
		if err := p.advance(); err != nil {
			return nil, err
		}
		n, err := parseUint(numTok)
		if err != nil {
			return nil, err
		}
		return ast.NumberValue{N: n}, nil
	}
	iv, err := p.parseIdentValue()
	if err != nil {
		return nil, err
	}
	return iv, nil
}

func (p *Parser) parseIdentValue() (ast.IdentValue, error) {
	nameTok, err := p.expect(token.Ident)
	if err != nil {
		return ast.IdentValue{}, err
	}
	iv := ast.IdentValue{Base: ast.Ident{Name: nameTok.Text, Offset: nameTok.Offset}}
	if p.at(token.LBracket) {
		if err := p.advance(); err != nil {
			return ast.IdentValue{}, err
		}
		if p.at(token.Number) {
			numTok := p.tok
			if err := p.advance(); err != nil {
				return ast.IdentValue{}, err
			}
			n, err := parseUint(numTok)
			if err != nil {
				return ast.IdentValue{}, err
			}
			iv.IndexKind = ast.IndexNumber
			iv.IndexNum = n
		} else {
			idxTok, err := p.expect(token.Ident)
			if err != nil {
				return ast.IdentValue{}, err
			}
			iv.IndexKind = ast.IndexIdent
			iv.IndexVar = ast.Ident{Name: idxTok.Text, Offset: idxTok.Offset}
		}
		if _, err := p.expect(token.RBracket); err != nil {
			return ast.IdentValue{}, err
		}
	}
	return iv, nil
}

func parseUint(t token.Token) (uint64, error) {
	var n uint64
	for _, c := range t.Text {
		if c < '0' || c > '9' {
			return 0, &Error{Message: fmt.Sprintf("malformed number %q", t.Text), Offset: t.Offset, Line: t.Line}
		}
		n = n*10 + uint64(c-'0')
	}
	return n, nil
}
