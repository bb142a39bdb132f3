package parser

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aledsdavies/bindc/runtime/lexer"
)

// ParseError represents a parsing error with location and context information
type ParseError struct {
	Filename   string
	Position   lexer.Position
	Message    string
	Context    string          // "trigger", "command", "mode header", ...
	Got        lexer.TokenType // offending token type
	Suggestion string          // how to fix it
	Note       string          // background on the rule that was broken
}

// Error returns the compact single-line form: file:line:col: message.
func (e ParseError) Error() string {
	msg := e.Message
	if e.Context != "" {
		msg += " in " + e.Context
	}
	if e.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Filename, e.Position.Line, e.Position.Column, msg)
	}
	return fmt.Sprintf("%d:%d: %s", e.Position.Line, e.Position.Column, msg)
}

const (
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
	colorReset  = "\033[0m"
)

// ErrorFormatter renders errors with a source snippet:
//
//	keys.conf:3:9: expected a modifier before '+', found 'k' in trigger
//	 3 | shift + k + m
//	   |         ^
//	   Only the last part of a trigger may be a key
type ErrorFormatter struct {
	Source   []byte
	Filename string
	Compact  bool // omit notes
	Color    bool
}

// Format renders a parse error.
func (f ErrorFormatter) Format(err ParseError) string {
	if err.Filename == "" {
		err.Filename = f.Filename
	}
	var b strings.Builder
	b.WriteString(f.paint(err.Error(), colorRed))
	b.WriteByte('\n')
	b.WriteString(f.snippet(err.Position))
	if err.Suggestion != "" {
		b.WriteString("   ")
		b.WriteString(f.paint(err.Suggestion, colorYellow))
		b.WriteByte('\n')
	}
	if !f.Compact && err.Note != "" {
		b.WriteString("   ")
		b.WriteString(f.paint("note: "+err.Note, colorGray))
		b.WriteByte('\n')
	}
	return b.String()
}

// snippet shows the source line at pos with a caret under the column.
func (f ErrorFormatter) snippet(pos lexer.Position) string {
	if len(f.Source) == 0 || pos.Line <= 0 {
		return ""
	}
	lines := strings.Split(string(f.Source), "\n")
	if pos.Line > len(lines) {
		return ""
	}
	content := strings.TrimRight(lines[pos.Line-1], "\r")

	gutter := len(fmt.Sprint(pos.Line)) + 1
	var b strings.Builder
	fmt.Fprintf(&b, "%*d | %s\n", gutter, pos.Line, content)
	b.WriteString(strings.Repeat(" ", gutter))
	b.WriteString(" | ")
	if pos.Column > 0 && pos.Column <= utf8.RuneCountInString(content)+1 {
		b.WriteString(strings.Repeat(" ", pos.Column-1))
		b.WriteString(f.paint("^", colorRed))
	}
	b.WriteByte('\n')
	return b.String()
}

func (f ErrorFormatter) paint(text, color string) string {
	if !f.Color {
		return text
	}
	return color + text + colorReset
}

func (p *Parser) errorAt(tok lexer.Token, context, format string, args ...any) ParseError {
	return ParseError{
		Filename: p.filename,
		Position: tok.Position,
		Message:  fmt.Sprintf(format, args...),
		Context:  context,
		Got:      tok.Type,
	}
}
