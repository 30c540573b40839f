// Package diag holds the ten semantic-error kinds spec.md §7 defines,
// plus the byte-offset-to-line translation used to report them. Every
// diag.Error is built with github.com/pkg/errors so it carries a stack
// trace for internal debugging, even though the user-facing message
// stays exactly the "ERROR: <detail> line: <n>" shape spec.md mandates.
package diag

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Kind is one of the ten semantic error kinds. Use-before-initialization
// is deliberately not here: spec.md §7 makes it a warning, not an error,
// so it never aborts compilation and is reported through logrus instead
// (see cmd/impc).
type Kind int

const (
	UndeclaredVariable Kind = iota
	UndeclaredProcedure
	IncorrectUseOfVariable
	IndexOutOfBounds
	ArrayUsedAsIndex
	WrongArgumentType
	DuplicateVariableDeclaration
	DuplicateProcedureDeclaration
	RecursiveProcedureCall
	WrongNumberOfArguments
)

var kindText = map[Kind]string{
	UndeclaredVariable:            "undeclared variable",
	UndeclaredProcedure:           "undeclared procedure",
	IncorrectUseOfVariable:        "incorrect use of variable",
	IndexOutOfBounds:              "index out of bounds",
	ArrayUsedAsIndex:              "array used as index",
	WrongArgumentType:             "wrong argument type",
	DuplicateVariableDeclaration:  "duplicate variable declaration",
	DuplicateProcedureDeclaration: "duplicate procedure declaration",
	RecursiveProcedureCall:        "recursive procedure call",
	WrongNumberOfArguments:        "wrong number of arguments",
}

func (k Kind) String() string {
	if s, ok := kindText[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is a single semantic-analysis failure. Name is the offending
// identifier as the emitter saw it (possibly "@proc"-qualified; Format
// strips the qualification); Offset is the source byte
// offset used for line-number translation. Compilation aborts on the
// first Error produced — there is no recovery or batching (spec.md §7).
type Error struct {
	Kind   Kind
	Name   string
	Offset int
	cause  error
}

// New builds a Kind-tagged error with a captured stack trace.
func New(kind Kind, name string, offset int) *Error {
	return &Error{
		Kind:   kind,
		Name:   name,
		Offset: offset,
		cause:  errors.Errorf("%s: %s", kind, name),
	}
}

func (e *Error) Error() string {
	return e.cause.Error()
}

// Unwrap exposes the pkg/errors-wrapped cause, so callers using
// errors.Is / errors.As (stdlib or pkg/errors) can inspect the stack.
func (e *Error) Unwrap() error {
	return e.cause
}

// Format renders the user-facing "ERROR: ..." message, translating
// Offset to a 1-based line number by counting newline bytes in src up
// to Offset. The unqualified source name is used (never the `@proc`
// qualified form), per spec.md §6.
func (e *Error) Format(src io.Reader) string {
	line := lineOf(src, e.Offset)
	name := unqualify(e.Name)
	switch e.Kind {
	case RecursiveProcedureCall, UndeclaredProcedure, WrongNumberOfArguments:
		return fmt.Sprintf("ERROR: %s `%s` line: %d", e.Kind, name, line)
	default:
		return fmt.Sprintf("ERROR: `%s` line: %d", name, line)
	}
}

// unqualify strips a trailing "@procedure" qualification so diagnostics
// always show the name as the user wrote it.
func unqualify(name string) string {
	for i := 0; i < len(name); i++ {
		if name[i] == '@' {
			return name[:i]
		}
	}
	return name
}

// lineOf counts newline bytes in src up to byteOffset and returns the
// 1-based line number. Falls back to 1 if src cannot be read.
func lineOf(src io.Reader, byteOffset int) int {
	r := bufio.NewReader(src)
	line := 1
	read := 0
	for read < byteOffset {
		b, err := r.ReadByte()
		if err != nil {
			break
		}
		read++
		if b == '\n' {
			line++
		}
	}
	return line
}
