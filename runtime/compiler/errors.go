package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aledsdavies/bindc/runtime/lexer"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// ErrorKind classifies compile failures.
type ErrorKind int

const (
	KindGrammar     ErrorKind = iota + 1 // source does not match the grammar
	KindMainSection                      // parse tree has no content section
	KindCardinality                      // trigger and command variant counts differ
	KindRange                            // malformed, non-ASCII or inverted range
	KindReadConfig                       // a config file could not be read
)

var kindNames = map[ErrorKind]string{
	KindGrammar:     "GRAMMAR_ERROR",
	KindMainSection: "MAIN_SECTION_ERROR",
	KindCardinality: "CARDINALITY_ERROR",
	KindRange:       "RANGE_ERROR",
	KindReadConfig:  "READ_CONFIG_ERROR",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Sentinels for errors.Is. A *CompileError matches the sentinel of its kind.
var (
	ErrGrammar     = &CompileError{Kind: KindGrammar, Message: "unable to parse grammar from invalid contents"}
	ErrMainSection = &CompileError{Kind: KindMainSection, Message: "hotkey config must contain one and only one main section"}
	ErrCardinality = &CompileError{Kind: KindCardinality, Message: "binding and command variant counts differ"}
	ErrRange       = &CompileError{Kind: KindRange, Message: "invalid range"}
	ErrReadConfig  = &CompileError{Kind: KindReadConfig, Message: "unable to read config file"}
)

// CompileError is a located compile failure. Every failure aborts the whole
// compile; there is no partial result.
type CompileError struct {
	Kind     ErrorKind
	Path     string         // file the error belongs to; empty for inline input
	Position lexer.Position // zero when the error has no location
	Message  string
	Cause    error
	Context  map[string]any

	// Source is the text of Path, kept so callers can render a snippet.
	Source []byte
}

// Error renders path:line:col: message.
func (e *CompileError) Error() string {
	var b strings.Builder
	if loc := e.location(); loc != "" {
		b.WriteString(loc)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	// A grammar error's message already is the parse error text.
	if e.Cause != nil && e.Kind != KindGrammar {
		fmt.Fprintf(&b, " (caused by: %v)", e.Cause)
	}
	return b.String()
}

func (e *CompileError) location() string {
	switch {
	case e.Path != "" && e.Position.Line > 0:
		return fmt.Sprintf("%s:%d:%d", e.Path, e.Position.Line, e.Position.Column)
	case e.Path != "":
		return e.Path
	case e.Position.Line > 0:
		return fmt.Sprintf("%d:%d", e.Position.Line, e.Position.Column)
	}
	return ""
}

// Unwrap allows error unwrapping
func (e *CompileError) Unwrap() error {
	return e.Cause
}

// Is matches any *CompileError of the same kind.
func (e *CompileError) Is(target error) bool {
	t, ok := target.(*CompileError)
	return ok && t.Kind == e.Kind
}

// WithContext adds context information to the error
func (e *CompileError) WithContext(key string, value any) *CompileError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ParseError returns the underlying grammar error, if any.
func (e *CompileError) ParseError() (parser.ParseError, bool) {
	var perr parser.ParseError
	ok := errors.As(e.Cause, &perr)
	return perr, ok
}

func newError(kind ErrorKind, path string, source []byte, pos lexer.Position, format string, args ...any) *CompileError {
	return &CompileError{
		Kind:     kind,
		Path:     path,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
		Source:   source,
	}
}

func grammarError(path string, source []byte, err error) *CompileError {
	ce := &CompileError{Kind: KindGrammar, Path: path, Message: err.Error(), Cause: err, Source: source}
	var perr parser.ParseError
	if errors.As(err, &perr) {
		perr.Filename = path
		ce.Cause = perr
		ce.Position = perr.Position
		ce.Message = perr.Message
		if perr.Context != "" {
			ce.Message += " in " + perr.Context
		}
	}
	return ce
}

func readError(path, importedFrom string, err error) *CompileError {
	ce := &CompileError{
		Kind:    KindReadConfig,
		Path:    path,
		Message: ErrReadConfig.Message,
		Cause:   err,
	}
	if importedFrom != "" {
		ce.WithContext("imported_from", importedFrom)
	}
	return ce
}
