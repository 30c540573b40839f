package codegen

import (
	"io"

	"github.com/kdyakonov/impc/internal/ast"
	"github.com/kdyakonov/impc/internal/diag"
	"github.com/sirupsen/logrus"
)

// Emitter walks a validated ast.Program and produces a flat Instr
// stream. It owns the symbol table, the initialization set, the
// procedure table, and the monotonically increasing memory allocator —
// all mutated only by this single pass (spec.md §5: strictly sequential,
// no concurrent readers).
type Emitter struct {
	instrs      []Instr
	procedures  map[string]ast.Procedure // pre-qualified bodies, keyed by procedure name
	symbols     map[string]Storage
	initialized map[string]bool
	memPtr      uint64
	callStack   []string // procedure names currently being expanded (spec.md §4.6 recursion check)

	// Log receives use-before-initialization warnings (spec.md §6).
	// Defaults to a discarding logger so library callers that don't
	// care about warnings don't need to wire one up.
	Log *logrus.Logger
}

// New builds an Emitter for prog: installs the procedure table
// (rejecting duplicate procedure names), pre-qualifies every
// procedure's body, and allocates storage for the main program's own
// declarations as the first contiguous prefix of memory.
func New(prog *ast.Program) (*Emitter, error) {
	e := &Emitter{
		procedures:  make(map[string]ast.Procedure),
		symbols:     make(map[string]Storage),
		initialized: make(map[string]bool),
		Log:         discardLogger(),
	}

	for _, proc := range prog.Procedures {
		if _, exists := e.procedures[proc.Name.Name]; exists {
			return nil, diag.New(diag.DuplicateProcedureDeclaration, proc.Name.Name, proc.Name.Offset)
		}
		if err := checkNoDuplicateNames(proc); err != nil {
			return nil, err
		}
		e.procedures[proc.Name.Name] = qualifyProcedure(proc)
	}

	for _, decl := range prog.MainDecls {
		e.allocate(decl, "")
	}

	// Locals get one fixed address per procedure, shared across every
	// call site — spec.md §4.6 forbids recursion, so at most one
	// invocation of a given procedure is ever live, and the formals
	// themselves never own storage: they are pure aliases bound fresh
	// at each call site (see emitCall).
	for _, proc := range prog.Procedures {
		for _, decl := range proc.Locals {
			e.allocate(decl, proc.Name.Name)
		}
	}

	return e, nil
}

// checkNoDuplicateNames rejects a procedure signature that declares the
// same name twice, whether as two formals, two locals, or a formal and
// a local sharing a name.
func checkNoDuplicateNames(proc ast.Procedure) error {
	seen := make(map[string]ast.Ident)
	check := func(id ast.Ident) error {
		if prev, ok := seen[id.Name]; ok {
			return diag.New(diag.DuplicateVariableDeclaration, id.Name, prev.Offset)
		}
		seen[id.Name] = id
		return nil
	}
	for _, f := range proc.Formals {
		if err := check(f.Name); err != nil {
			return err
		}
	}
	for _, d := range proc.Locals {
		if err := check(d.Name); err != nil {
			return err
		}
	}
	return nil
}

func discardLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	l.SetFormatter(WarningFormatter{})
	return l
}

// WarningFormatter renders a log entry as spec.md §6's verbatim
// "Warning: <message>" line — no level, timestamp, or field clutter.
// logrus.TextFormatter cannot produce this shape (it always prefixes
// level=... and quotes the message), so callers that want the output
// contract honored (the CLI included) must install this formatter.
type WarningFormatter struct{}

func (WarningFormatter) Format(e *logrus.Entry) ([]byte, error) {
	return []byte("Warning: " + e.Message + "\n"), nil
}

// allocate installs a Storage descriptor for decl under its qualified
// name (proc == "" for the main program) and advances the allocator.
// Memory is never reclaimed: argument bindings installed elsewhere
// install aliases and do not call allocate.
func (e *Emitter) allocate(decl ast.Declaration, proc string) {
	key := qualify(decl.Name.Name, proc)
	switch decl.Kind {
	case ast.DeclScalar:
		e.symbols[key] = Storage{Kind: ScalarStorage, Addr: e.memPtr}
		e.memPtr++
	case ast.DeclArray:
		e.symbols[key] = Storage{Kind: ArrayStorage, Addr: e.memPtr, Size: decl.Size}
		e.memPtr += decl.Size
	}
}

func (e *Emitter) warnIfUninitialized(id ast.Ident) {
	if !e.initialized[id.Name] {
		e.Log.Warnf("Variable %s used before initialisation", unqualifiedName(id.Name))
	}
}

func (e *Emitter) checkIfInitialized(v ast.Value) {
	if id, ok := valueIdent(v); ok {
		e.warnIfUninitialized(id)
	}
}

func unqualifiedName(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '@' {
			return name[:i]
		}
	}
	return name
}

// Compile builds an Emitter for prog with New, runs the whole pipeline
// (spec.md §2 steps 5-7) on it, and returns the print-ready instruction
// text.
func Compile(prog *ast.Program) (string, []Instr, error) {
	e, err := New(prog)
	if err != nil {
		return "", nil, err
	}
	if err := e.ConstructMain(prog); err != nil {
		return "", nil, err
	}
	text := Linearize(e.instrs)
	return text, e.instrs, nil
}

// ConstructMain emits the main program's command list followed by the
// trailing HALT (spec.md §4.7's "final line of a well-formed emission
// is HALT", §6).
func (e *Emitter) ConstructMain(prog *ast.Program) error {
	instrs, err := e.emitCommands(prog.MainBody)
	if err != nil {
		return err
	}
	e.instrs = append(e.instrs, instrs...)
	e.instrs = append(e.instrs, halt())
	return nil
}

// Symbols exposes the resolved symbol table for diagnostics (the CLI's
// --debug flag dumps it).
func (e *Emitter) Symbols() map[string]Storage {
	return e.symbols
}

// Instrs exposes the pre-linearization instruction stream (the CLI's
// --debug flag reports its expanded length).
func (e *Emitter) Instrs() []Instr {
	return e.instrs
}
