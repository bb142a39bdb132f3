package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/aledsdavies/bindc/runtime/compiler"
	"github.com/aledsdavies/bindc/runtime/parser"
)

var hints = map[compiler.ErrorKind]string{
	compiler.KindMainSection: "A config needs at least one binding, unbind, mode or include",
	compiler.KindCardinality: "Each trigger variant needs exactly one command variant",
	compiler.KindRange:       "Ranges run from a lower to an upper bound, like {a-z} or {1-9}",
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	var ce *compiler.CompileError
	if errors.As(err, &ce) {
		formatCompileError(w, ce, useColor)
		return
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
}

func formatCompileError(w io.Writer, err *compiler.CompileError, useColor bool) {
	_, _ = fmt.Fprint(w, Colorize("Error: ", ColorRed, useColor))

	f := parser.ErrorFormatter{Source: err.Source, Filename: err.Path, Color: useColor}
	switch perr, ok := err.ParseError(); {
	case ok:
		_, _ = fmt.Fprint(w, f.Format(perr))
	case err.Position.Line > 0:
		_, _ = fmt.Fprint(w, f.Format(parser.ParseError{
			Filename: err.Path,
			Position: err.Position,
			Message:  err.Message,
		}))
	default:
		_, _ = fmt.Fprintln(w, err.Error())
	}

	for _, key := range slices.Sorted(maps.Keys(err.Context)) {
		_, _ = fmt.Fprintf(w, "%s%s: %v\n", Colorize("  ", ColorGray, useColor), key, err.Context[key])
	}
	if hint, ok := hints[err.Kind]; ok {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), hint)
	}
}
