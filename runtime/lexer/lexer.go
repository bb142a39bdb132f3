// Package lexer tokenizes hotkey binding files.
//
// The language is line oriented. A line starting at column 0 is a
// declaration (trigger, unbind, include, mode header) and is split into
// small tokens. An indented line is a command and is kept as raw TEXT, with
// only the shorthand braces and commas broken out. Comment lines, and the
// indented body of a column-0 comment, become COMMENT tokens.
package lexer

import (
	"bytes"
	"io"
	"log/slog"
	"unicode/utf8"
)

// DefaultCommentMarker starts a comment line.
const DefaultCommentMarker = "#"

// Keywords whose lines are split on whitespace only, so include paths and
// mode names can carry characters like '-' and '~'.
var rawLineKeywords = map[string]bool{
	"include": true,
	"import":  true,
	"mode":    true,
}

// LexerOpt represents a lexer configuration option
type LexerOpt func(*LexerConfig)

// LexerConfig holds lexer configuration
type LexerConfig struct {
	commentMarker string
	logger        *slog.Logger
}

// WithCommentMarker changes the comment marker (default "#").
func WithCommentMarker(marker string) LexerOpt {
	return func(c *LexerConfig) {
		if marker != "" {
			c.commentMarker = marker
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) LexerOpt {
	return func(c *LexerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Lexer turns source into tokens.
type Lexer struct {
	input  []byte
	config LexerConfig

	tokens     []Token
	tokenIndex int
	tokenized  bool

	inCommentBody bool // inside the indented body of a column-0 comment
	continuing    bool // previous command line ended with a line continuation
	braceDepth    int  // open shorthand braces on the current command
}

// NewLexer creates a new lexer instance with optional configuration
func NewLexer(input string, opts ...LexerOpt) *Lexer {
	config := LexerConfig{
		commentMarker: DefaultCommentMarker,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Lexer{
		input:  []byte(input),
		config: config,
		tokens: make([]Token, 0, len(input)/2+1),
	}
}

// NextToken returns the next token. After EOF it keeps returning EOF.
func (l *Lexer) NextToken() Token {
	tokens := l.Tokenize()
	if l.tokenIndex >= len(tokens) {
		return tokens[len(tokens)-1]
	}
	tok := tokens[l.tokenIndex]
	l.tokenIndex++
	return tok
}

// Tokenize lexes the whole input. The last token is always EOF.
func (l *Lexer) Tokenize() []Token {
	if l.tokenized {
		return l.tokens
	}
	l.tokenized = true

	lineNo := 0
	offset := 0
	for offset <= len(l.input) {
		lineNo++
		end := bytes.IndexByte(l.input[offset:], '\n')
		next := offset + end + 1
		if end < 0 {
			end = len(l.input) - offset
			next = len(l.input) + 1
		}
		text := l.input[offset : offset+end]
		text = bytes.TrimSuffix(text, []byte("\r"))
		l.lexLine(line{text: text, number: lineNo, offset: offset})
		offset = next
	}

	if l.continuing {
		// Input ended in the middle of a continued command.
		l.continuing = false
		l.emit(NEWLINE, "", Position{Line: lineNo, Column: 1, Offset: len(l.input)}, false)
	}
	l.emit(EOF, "", Position{Line: lineNo, Column: 1, Offset: len(l.input)}, false)

	l.config.logger.Debug("tokenized", "lines", lineNo, "tokens", len(l.tokens))
	return l.tokens
}

type line struct {
	text   []byte
	number int
	offset int
}

// pos returns the position of byte index i within ln.
func (ln line) pos(i int) Position {
	return Position{
		Line:   ln.number,
		Column: utf8.RuneCount(ln.text[:i]) + 1,
		Offset: ln.offset + i,
	}
}

func (l *Lexer) emit(typ TokenType, text string, pos Position, spaceBefore bool) {
	l.tokens = append(l.tokens, Token{Type: typ, Text: text, Position: pos, HasSpaceBefore: spaceBefore})
}

func (l *Lexer) lexLine(ln line) {
	text := ln.text
	indent := leadingWhitespace(text)

	if l.continuing {
		l.lexCommand(ln, indent)
		return
	}

	// Blank lines do not end a comment body.
	if indent == len(text) {
		if len(text) > 0 || ln.offset < len(l.input) {
			l.emit(NEWLINE, "", ln.pos(len(text)), false)
		}
		return
	}

	if bytes.HasPrefix(text[indent:], []byte(l.config.commentMarker)) {
		if indent == 0 {
			l.inCommentBody = true
		}
		l.emitComment(ln, indent)
		return
	}

	if indent > 0 {
		if l.inCommentBody {
			l.emitComment(ln, indent)
			return
		}
		l.emit(INDENT, string(text[:indent]), ln.pos(0), false)
		l.braceDepth = 0
		l.lexCommand(ln, indent)
		return
	}

	l.inCommentBody = false
	if rawLineKeywords[string(firstField(text))] {
		l.lexRawWords(ln)
	} else {
		l.lexDeclaration(ln)
	}
	l.emit(NEWLINE, "", ln.pos(len(text)), false)
}

func (l *Lexer) emitComment(ln line, start int) {
	l.emit(COMMENT, string(ln.text[start:]), ln.pos(start), start > 0)
	l.emit(NEWLINE, "", ln.pos(len(ln.text)), false)
}

// lexDeclaration splits a column-0 line into trigger tokens.
func (l *Lexer) lexDeclaration(ln line) {
	text := ln.text
	space := false
	for i := 0; i < len(text); {
		ch := text[i]
		switch {
		case ch == ' ' || ch == '\t':
			space = true
			i++
			continue
		case ch == '\\':
			if i+1 < len(text) && Escapable(text[i+1]) {
				l.emit(ESCAPE, string(text[i:i+2]), ln.pos(i), space)
				i += 2
			} else {
				// Report the backslash together with whatever follows it.
				j := i + 1
				if j < len(text) {
					_, size := utf8.DecodeRune(text[j:])
					j += size
				}
				l.emit(ILLEGAL, string(text[i:j]), ln.pos(i), space)
				i = j
			}
		case isPunct(ch):
			l.emit(punctTokens[ch], string(ch), ln.pos(i), space)
			i++
		default:
			start := i
			for i < len(text) && !isPunct(text[i]) && text[i] != '\\' && text[i] != ' ' && text[i] != '\t' {
				i++
			}
			l.emit(WORD, string(text[start:i]), ln.pos(start), space)
		}
		space = false
	}
}

// lexRawWords splits an include or mode header line on whitespace.
func (l *Lexer) lexRawWords(ln line) {
	text := ln.text
	space := false
	for i := 0; i < len(text); {
		if text[i] == ' ' || text[i] == '\t' {
			space = true
			i++
			continue
		}
		start := i
		for i < len(text) && text[i] != ' ' && text[i] != '\t' {
			i++
		}
		l.emit(WORD, string(text[start:i]), ln.pos(start), space)
		space = false
	}
}

// lexCommand lexes command text starting at byte start. A line whose last
// non-blank character is an unescaped backslash continues on the next line.
func (l *Lexer) lexCommand(ln line, start int) {
	text := ln.text
	end := len(bytes.TrimRight(text, " \t"))
	l.continuing = false
	if end > start && trailingBackslashes(text[start:end])%2 == 1 {
		l.continuing = true
		end--
	}

	textStart := start
	flush := func(i int) {
		if i > textStart {
			l.emit(TEXT, string(text[textStart:i]), ln.pos(textStart), false)
		}
	}

	for i := start; i < end; {
		ch := text[i]
		switch {
		case ch == '\\' && i+1 < end:
			i += 2
			continue
		case ch == '{':
			flush(i)
			l.emit(LBRACE, "{", ln.pos(i), false)
			l.braceDepth++
		case ch == ',' && l.braceDepth > 0:
			flush(i)
			l.emit(COMMA, ",", ln.pos(i), false)
		case ch == '}' && l.braceDepth > 0:
			flush(i)
			l.emit(RBRACE, "}", ln.pos(i), false)
			l.braceDepth--
		default:
			i++
			continue
		}
		i++
		textStart = i
	}
	// Whitespace before a continuation backslash is kept; it separates the
	// words of the joined command.
	flush(end)

	if !l.continuing {
		l.emit(NEWLINE, "", ln.pos(len(text)), false)
	}
}

var punctTokens = map[byte]TokenType{
	'+': PLUS,
	',': COMMA,
	'{': LBRACE,
	'}': RBRACE,
	'-': DASH,
	'~': TILDE,
	'@': AT,
}

func isPunct(ch byte) bool {
	_, ok := punctTokens[ch]
	return ok
}

func leadingWhitespace(text []byte) int {
	i := 0
	for i < len(text) && (text[i] == ' ' || text[i] == '\t') {
		i++
	}
	return i
}

func firstField(text []byte) []byte {
	fields := bytes.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	return fields[0]
}

func trailingBackslashes(text []byte) int {
	n := 0
	for i := len(text) - 1; i >= 0 && text[i] == '\\'; i-- {
		n++
	}
	return n
}
