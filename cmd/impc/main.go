// Command impc compiles imp source files (spec.md's source language)
// into the pseudo-assembly a register/memory virtual machine executes.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kdyakonov/impc/internal/codegen"
	"github.com/kdyakonov/impc/internal/diag"
	"github.com/kdyakonov/impc/internal/lexer"
	"github.com/kdyakonov/impc/internal/parser"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var debug bool

	rootCmd := &cobra.Command{
		Use:   "impc <input> <output>",
		Short: "Compile imp source to register-machine assembly",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0], args[1], debug)
		},
		SilenceUsage: true,
	}
	rootCmd.Flags().BoolVar(&debug, "debug", false, "print the resolved symbol table and instruction count before writing output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(inputPath, outputPath string, debug bool) error {
	src, err := os.ReadFile(inputPath)
	if err != nil {
		return errors.Wrapf(err, "reading %s", inputPath)
	}

	log := logrus.New()
	log.SetFormatter(codegen.WarningFormatter{})

	prog, err := parser.Parse(string(src))
	if err != nil {
		return reportAndExit(err, string(src))
	}

	e, err := codegen.New(prog)
	if err != nil {
		return reportAndExit(err, string(src))
	}
	e.Log = log

	if err := e.ConstructMain(prog); err != nil {
		return reportAndExit(err, string(src))
	}
	text := codegen.Linearize(e.Instrs())

	if debug {
		fmt.Fprintf(os.Stderr, "symbols:\n")
		for name, st := range e.Symbols() {
			fmt.Fprintf(os.Stderr, "  %s: %+v\n", name, st)
		}
		fmt.Fprintf(os.Stderr, "instructions (pre-fixup): %d\n", codegen.Len(e.Instrs()))
	}

	if err := os.WriteFile(outputPath, []byte(text), 0o644); err != nil {
		return errors.Wrapf(err, "writing %s", outputPath)
	}
	return nil
}

// reportAndExit prints the matching "ERROR: ..." message to stderr and
// returns a plain error so cobra exits non-zero without printing usage
// again (spec.md §6/§7).
func reportAndExit(err error, src string) error {
	switch e := err.(type) {
	case *diag.Error:
		fmt.Fprintln(os.Stderr, e.Format(strings.NewReader(src)))
	case *lexer.Error:
		fmt.Fprintln(os.Stderr, e.Error())
	case *parser.Error:
		fmt.Fprintln(os.Stderr, e.Error())
	default:
		fmt.Fprintln(os.Stderr, "ERROR:", err)
	}
	return errors.New("compilation failed")
}
