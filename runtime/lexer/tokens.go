package lexer

import "fmt"

// TokenType represents lexical tokens of the binding language.
type TokenType int

const (
	// Special tokens
	EOF TokenType = iota
	ILLEGAL

	// Layout
	NEWLINE // end of a source line
	INDENT  // leading whitespace of a command line
	COMMENT // a comment line or a line of a comment's indented body

	// Declaration lines
	WORD   // modifier, key, keyword, mode name or include path
	ESCAPE // backslash followed by one of { } , \ - + ~ @
	PLUS   // +
	COMMA  // ,
	LBRACE // {
	RBRACE // }
	DASH   // -
	TILDE  // ~ (send)
	AT     // @ (on release)

	// Command lines
	TEXT // raw command text
)

var tokenNames = [...]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",
	NEWLINE: "NEWLINE",
	INDENT:  "INDENT",
	COMMENT: "COMMENT",
	WORD:    "WORD",
	ESCAPE:  "ESCAPE",
	PLUS:    "PLUS",
	COMMA:   "COMMA",
	LBRACE:  "LBRACE",
	RBRACE:  "RBRACE",
	DASH:    "DASH",
	TILDE:   "TILDE",
	AT:      "AT",
	TEXT:    "TEXT",
}

// String returns a string representation of the token type
func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Position is a location in the source.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number (in runes)
	Offset int // 0-based byte offset
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token
type Token struct {
	Type     TokenType
	Text     string
	Position Position
	// HasSpaceBefore records whitespace between this token and the previous
	// one on the same line. The parser uses it to reject "shift+ {a, b}"
	// style splits inside a single key.
	HasSpaceBefore bool
}

// String returns the token text, or the token type for empty tokens
func (t Token) String() string {
	if t.Text != "" {
		return t.Text
	}
	return t.Type.String()
}

// Describe renders the token for error messages: `'super'`, `end of line`.
func (t Token) Describe() string {
	switch t.Type {
	case EOF:
		return "end of file"
	case NEWLINE:
		return "end of line"
	case INDENT:
		return "indented line"
	default:
		return fmt.Sprintf("'%s'", t.Text)
	}
}

// Escapable reports whether ch may follow a backslash.
func Escapable(ch byte) bool {
	switch ch {
	case '{', '}', ',', '\\', '-', '+', '~', '@':
		return true
	}
	return false
}
