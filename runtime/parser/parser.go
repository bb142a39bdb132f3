// Package parser turns binding files into syntax trees.
//
// The tree follows the shape the compiler expects: a NodeMain root holding
// one NodeContent section, whose children are the declarations in source
// order followed by NodeEOI. Comments never reach the tree.
package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/runtime/lexer"
)

// Parser builds a syntax tree from tokens.
type Parser struct {
	tokens   []lexer.Token
	pos      int
	filename string
	source   []byte
	config   ParserConfig
}

// Parse parses a whole file.
func Parse(filename string, source []byte, opts ...ParserOpt) (*Tree, error) {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	lx := lexer.NewLexer(string(source),
		lexer.WithCommentMarker(config.commentMarker),
		lexer.WithLogger(config.logger))

	p := &Parser{
		tokens:   lx.Tokenize(),
		filename: filename,
		source:   source,
		config:   config,
	}

	root, err := p.parseFile()
	if err != nil {
		return nil, err
	}

	config.logger.Debug("parsed",
		"file", filename,
		"declarations", len(root.Children[0].Children)-1)

	return &Tree{Filename: filename, Source: source, Root: root}, nil
}

func (p *Parser) current() lexer.Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) advance() lexer.Token {
	tok := p.current()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

// skipBlank skips empty lines and comments.
func (p *Parser) skipBlank() {
	for {
		switch p.current().Type {
		case lexer.NEWLINE, lexer.COMMENT:
			p.advance()
		default:
			return
		}
	}
}

// endOf returns the position just past tok on its line.
func endOf(tok lexer.Token) lexer.Position {
	return shift(tok.Position, tok.Text)
}

func shift(pos lexer.Position, s string) lexer.Position {
	return lexer.Position{
		Line:   pos.Line,
		Column: pos.Column + utf8.RuneCountInString(s),
		Offset: pos.Offset + len(s),
	}
}

// node creates a node whose text is the source between start and end.
func (p *Parser) node(kind NodeKind, start, end lexer.Position, children ...*Node) *Node {
	text := ""
	if start.Offset <= end.Offset && end.Offset <= len(p.source) {
		text = string(p.source[start.Offset:end.Offset])
	}
	return &Node{Kind: kind, Text: text, Start: start, End: end, Children: children}
}

func (p *Parser) leaf(kind NodeKind, tok lexer.Token) *Node {
	return &Node{Kind: kind, Text: tok.Text, Start: tok.Position, End: endOf(tok)}
}

func (p *Parser) parseFile() (*Node, error) {
	var decls []*Node
	for {
		p.skipBlank()
		tok := p.current()

		switch tok.Type {
		case lexer.EOF:
			decls = append(decls, &Node{Kind: NodeEOI, Start: tok.Position, End: tok.Position})
			start := lexer.Position{Line: 1, Column: 1}
			content := p.node(NodeContent, start, tok.Position, decls...)
			return p.node(NodeMain, start, tok.Position, content), nil
		case lexer.INDENT:
			return nil, p.unexpectedIndent(tok)
		}

		prev := p.pos
		decl, err := p.parseDeclaration(false)
		if err != nil {
			return nil, err
		}
		invariant.Invariant(p.pos > prev, "parser must advance past a declaration at %s", tok.Position)
		decls = append(decls, decl)
	}
}

func (p *Parser) parseDeclaration(inMode bool) (*Node, error) {
	tok := p.current()
	if tok.Type == lexer.WORD {
		switch tok.Text {
		case "include", "import":
			if inMode {
				return nil, p.errorAt(tok, "", "'%s' is not allowed inside a mode", tok.Text)
			}
			return p.parseImport()
		case "ignore":
			return p.parseUnbind()
		case "mode":
			if inMode {
				err := p.errorAt(tok, "", "modes cannot be nested")
				err.Suggestion = "Close the current mode with 'endmode' first"
				return nil, err
			}
			return p.parseMode()
		case "endmode":
			return nil, p.errorAt(tok, "", "'endmode' without a matching 'mode'")
		}
	}
	return p.parseBinding()
}

func (p *Parser) unexpectedIndent(tok lexer.Token) error {
	err := p.errorAt(tok, "", "unexpected indented line")
	err.Suggestion = "Commands go on the indented line directly below a trigger; declarations start at column 1"
	return err
}

// expectLineEnd consumes the NEWLINE ending a declaration line.
func (p *Parser) expectLineEnd(context string) error {
	tok := p.current()
	switch tok.Type {
	case lexer.NEWLINE:
		p.advance()
		return nil
	case lexer.EOF:
		return nil
	case lexer.ILLEGAL:
		return p.invalidEscape(tok, context)
	}
	return p.errorAt(tok, context, "unexpected %s", tok.Describe())
}

func (p *Parser) invalidEscape(tok lexer.Token, context string) error {
	err := p.errorAt(tok, context, "invalid escape %s", tok.Describe())
	err.Note = `only \{ \} \, \\ \- \+ \~ and \@ may be escaped`
	return err
}

// parseImport parses: include <path>...
func (p *Parser) parseImport() (*Node, error) {
	kw := p.advance()
	var files []*Node
	for p.current().Type == lexer.WORD {
		files = append(files, p.leaf(NodeImportFile, p.advance()))
	}
	if len(files) == 0 {
		return nil, p.errorAt(p.current(), kw.Text, "expected a file path after '%s'", kw.Text)
	}
	if err := p.expectLineEnd(kw.Text); err != nil {
		return nil, err
	}
	return p.node(NodeImport, kw.Position, files[len(files)-1].End, files...), nil
}

// parseUnbind parses: ignore <trigger>
func (p *Parser) parseUnbind() (*Node, error) {
	kw := p.advance()
	parts, end, err := p.parseTrigger()
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd("unbind"); err != nil {
		return nil, err
	}
	if tok := p.current(); tok.Type == lexer.INDENT {
		err := p.errorAt(tok, "unbind", "'ignore' does not take a command")
		err.Suggestion = "Remove the indented line or drop 'ignore' to make it a binding"
		return nil, err
	}
	return p.node(NodeUnbind, kw.Position, end, parts...), nil
}

// parseBinding parses a trigger line followed by an indented command.
func (p *Parser) parseBinding() (*Node, error) {
	start := p.current()
	parts, _, err := p.parseTrigger()
	if err != nil {
		return nil, err
	}
	if err := p.expectLineEnd("trigger"); err != nil {
		return nil, err
	}

	tok := p.current()
	if tok.Type != lexer.INDENT {
		err := p.errorAt(tok, "binding", "expected an indented command after the trigger, got %s", tok.Describe())
		err.Suggestion = "Put the command on the next line, indented"
		return nil, err
	}
	cmd, err := p.parseCommand()
	if err != nil {
		return nil, err
	}
	parts = append(parts, cmd)

	n := p.node(NodeBinding, start.Position, cmd.End, parts...)
	return n, nil
}

// parseMode parses a mode block up to and including 'endmode'.
func (p *Parser) parseMode() (*Node, error) {
	kw := p.advance()
	nameTok := p.current()
	if nameTok.Type != lexer.WORD {
		return nil, p.errorAt(nameTok, "mode header", "expected a mode name after 'mode'")
	}
	p.advance()
	children := []*Node{p.leaf(NodeModeName, nameTok)}

	seen := map[string]bool{}
	for p.current().Type == lexer.WORD {
		opt := p.advance()
		var kind NodeKind
		switch opt.Text {
		case "oneoff":
			kind = NodeOneoff
		case "swallow":
			kind = NodeSwallow
		default:
			err := p.errorAt(opt, "mode header", "unknown mode option '%s'", opt.Text)
			err.Suggestion = "Mode options are 'oneoff' and 'swallow'"
			return nil, err
		}
		if seen[opt.Text] {
			return nil, p.errorAt(opt, "mode header", "duplicate mode option '%s'", opt.Text)
		}
		seen[opt.Text] = true
		children = append(children, p.leaf(kind, opt))
	}
	if err := p.expectLineEnd("mode header"); err != nil {
		return nil, err
	}

	for {
		p.skipBlank()
		tok := p.current()
		switch {
		case tok.Type == lexer.EOF:
			err := p.errorAt(kw, "mode", "mode '%s' is missing 'endmode'", nameTok.Text)
			err.Suggestion = "Add 'endmode' on its own line after the mode's bindings"
			return nil, err
		case tok.Type == lexer.INDENT:
			return nil, p.unexpectedIndent(tok)
		case tok.Type == lexer.WORD && tok.Text == "endmode":
			p.advance()
			if err := p.expectLineEnd("endmode"); err != nil {
				return nil, err
			}
			return p.node(NodeMode, kw.Position, endOf(tok), children...), nil
		}

		decl, err := p.parseDeclaration(true)
		if err != nil {
			return nil, err
		}
		children = append(children, decl)
	}
}

// element is one '+'-separated part of a trigger before it is known to be a
// modifier or the key.
type element struct {
	start, end lexer.Position

	// single key or modifier
	send, release *lexer.Token
	base          *lexer.Token

	// brace group
	isGroup bool
	items   [][]lexer.Token
}

// parseTrigger parses `(modifier +)* key` and returns the trigger's parts.
func (p *Parser) parseTrigger() ([]*Node, lexer.Position, error) {
	var parts []*Node
	for {
		el, err := p.parseElement()
		if err != nil {
			return nil, lexer.Position{}, err
		}

		if p.current().Type == lexer.PLUS {
			p.advance()
			mod, err := p.asModifier(el)
			if err != nil {
				return nil, lexer.Position{}, err
			}
			parts = append(parts, mod)
			continue
		}

		key, err := p.asKey(el)
		if err != nil {
			return nil, lexer.Position{}, err
		}
		parts = append(parts, key)
		return parts, key.End, nil
	}
}

func (p *Parser) parseElement() (element, error) {
	tok := p.current()
	switch tok.Type {
	case lexer.LBRACE:
		return p.parseGroup()
	case lexer.TILDE, lexer.AT, lexer.WORD, lexer.ESCAPE:
		el := element{start: tok.Position}
		for {
			t := p.current()
			if t.Type == lexer.TILDE && el.send == nil {
				el.send = &t
			} else if t.Type == lexer.AT && el.release == nil {
				el.release = &t
			} else {
				break
			}
			p.advance()
		}
		t := p.current()
		if t.Type == lexer.ILLEGAL {
			return element{}, p.invalidEscape(t, "trigger")
		}
		if t.Type != lexer.WORD && t.Type != lexer.ESCAPE {
			return element{}, p.errorAt(t, "trigger", "expected a key, got %s", t.Describe())
		}
		p.advance()
		el.base = &t
		el.end = endOf(t)
		return el, nil
	case lexer.ILLEGAL:
		return element{}, p.invalidEscape(tok, "trigger")
	case lexer.NEWLINE, lexer.EOF:
		return element{}, p.errorAt(tok, "trigger", "expected a key, got %s", tok.Describe())
	}
	return element{}, p.unexpectedPunct(tok, "trigger")
}

func (p *Parser) unexpectedPunct(tok lexer.Token, context string) ParseError {
	err := p.errorAt(tok, context, "unexpected %s", tok.Describe())
	if len(tok.Text) == 1 && lexer.Escapable(tok.Text[0]) {
		err.Suggestion = fmt.Sprintf("Write '\\%s' to use it as a key", tok.Text)
	}
	return err
}

// parseGroup parses a brace group in a trigger into its raw items.
func (p *Parser) parseGroup() (element, error) {
	open := p.advance()
	el := element{start: open.Position, isGroup: true}
	var cur []lexer.Token
	for {
		tok := p.current()
		switch tok.Type {
		case lexer.COMMA, lexer.RBRACE:
			if len(cur) == 0 {
				return element{}, p.errorAt(tok, "shorthand", "empty item")
			}
			el.items = append(el.items, cur)
			cur = nil
			p.advance()
			if tok.Type == lexer.RBRACE {
				el.end = endOf(tok)
				return el, nil
			}
		case lexer.NEWLINE, lexer.EOF:
			err := p.errorAt(open, "shorthand", "unclosed '{'")
			err.Suggestion = "Close the shorthand with '}' on the same line"
			return element{}, err
		case lexer.ILLEGAL:
			return element{}, p.invalidEscape(tok, "shorthand")
		case lexer.LBRACE:
			return element{}, p.errorAt(tok, "shorthand", "nested '{' is not allowed")
		case lexer.PLUS:
			err := p.errorAt(tok, "shorthand", "unexpected '+'")
			err.Suggestion = `Write '\+' to use the plus key`
			return element{}, err
		default:
			cur = append(cur, p.advance())
		}
	}
}

func (p *Parser) asModifier(el element) (*Node, error) {
	if !el.isGroup {
		if el.send != nil || el.release != nil {
			tok := el.send
			if tok == nil {
				tok = el.release
			}
			return nil, p.errorAt(*tok, "trigger", "'%s' only applies to the key, not to a modifier", tok.Text)
		}
		if el.base.Type == lexer.WORD && IsModifier(el.base.Text) {
			return p.leaf(NodeModifier, *el.base), nil
		}
		return nil, p.notAModifier(*el.base)
	}

	kind := NodeModifierShorthand
	children := make([]*Node, 0, len(el.items))
	for _, item := range el.items {
		tok := item[0]
		if len(item) != 1 || tok.Type != lexer.WORD {
			return nil, p.errorAt(tok, "modifier shorthand", "expected a modifier, got %s", tok.Describe())
		}
		switch {
		case tok.Text == "_":
			kind = NodeModifierOmitShorthand
			children = append(children, p.leaf(NodeOmission, tok))
		case IsModifier(tok.Text):
			children = append(children, p.leaf(NodeModifier, tok))
		default:
			return nil, p.notAModifier(tok)
		}
	}
	return p.node(kind, el.start, el.end, children...), nil
}

func (p *Parser) notAModifier(tok lexer.Token) error {
	err := p.errorAt(tok, "trigger", "expected a modifier before '+', found %s", tok.Describe())
	if s := closestModifier(tok.Text); s != "" {
		err.Suggestion = fmt.Sprintf("Did you mean '%s'?", s)
	}
	err.Note = "only the last part of a trigger may be a key; modifiers are " + strings.Join(Modifiers, ", ")
	return err
}

func (p *Parser) asKey(el element) (*Node, error) {
	if !el.isGroup {
		return p.keyNode(NodeKeyNormal, el.start, el.send, el.release, *el.base), nil
	}

	children := make([]*Node, 0, len(el.items))
	for _, item := range el.items {
		n, err := p.shorthandKey(item)
		if err != nil {
			return nil, err
		}
		children = append(children, n)
	}
	return p.node(NodeShorthand, el.start, el.end, children...), nil
}

func (p *Parser) keyNode(kind NodeKind, start lexer.Position, send, release *lexer.Token, base lexer.Token) *Node {
	var children []*Node
	if send != nil {
		children = append(children, p.leaf(NodeSend, *send))
	}
	if release != nil {
		children = append(children, p.leaf(NodeOnRelease, *release))
	}
	children = append(children, p.leaf(NodeKeyBase, base))
	return p.node(kind, start, endOf(base), children...)
}

// shorthandKey classifies one item of a key shorthand: a range (a-z) or a
// key with optional attributes.
func (p *Parser) shorthandKey(item []lexer.Token) (*Node, error) {
	if len(item) == 3 && item[1].Type == lexer.DASH {
		lo, hi := item[0], item[2]
		if lo.Type != lexer.WORD || hi.Type != lexer.WORD {
			return nil, p.errorAt(item[0], "key range", "range bounds must be plain characters")
		}
		return p.node(NodeKeyRange, lo.Position, endOf(hi),
			p.leaf(NodeBound, lo), p.leaf(NodeBound, hi)), nil
	}

	var send, release *lexer.Token
	i := 0
	for ; i < len(item); i++ {
		t := item[i]
		if t.Type == lexer.TILDE && send == nil {
			send = &item[i]
		} else if t.Type == lexer.AT && release == nil {
			release = &item[i]
		} else {
			break
		}
	}
	switch {
	case i == len(item):
		last := item[len(item)-1]
		return nil, p.errorAt(last, "shorthand", "expected a key after %s", last.Describe())
	case item[i].Type != lexer.WORD && item[i].Type != lexer.ESCAPE:
		return nil, p.unexpectedPunct(item[i], "shorthand")
	case i < len(item)-1:
		return nil, p.unexpectedPunct(item[i+1], "shorthand")
	}
	return p.keyNode(NodeKeyInShorthand, item[0].Position, send, release, item[i]), nil
}

// parseCommand parses an indented command line, including continuation
// lines.
func (p *Parser) parseCommand() (*Node, error) {
	indent := p.advance()
	var parts []*Node
	var lit *Node

	for {
		tok := p.current()
		switch tok.Type {
		case lexer.TEXT:
			p.advance()
			if lit != nil {
				lit.Text += tok.Text
				lit.End = endOf(tok)
				continue
			}
			lit = p.leaf(NodeCommandStandalone, tok)
			parts = append(parts, lit)
		case lexer.LBRACE:
			lit = nil
			sh, err := p.parseCommandShorthand()
			if err != nil {
				return nil, err
			}
			parts = append(parts, sh)
		case lexer.NEWLINE, lexer.EOF:
			if len(parts) == 0 {
				return nil, p.errorAt(indent, "command", "empty command")
			}
			p.advance()
			var text strings.Builder
			for _, part := range parts {
				text.WriteString(part.Text)
			}
			return &Node{
				Kind:     NodeCommand,
				Text:     text.String(),
				Start:    parts[0].Start,
				End:      parts[len(parts)-1].End,
				Children: parts,
			}, nil
		default:
			return nil, p.errorAt(tok, "command", "unexpected %s", tok.Describe())
		}
	}
}

func (p *Parser) parseCommandShorthand() (*Node, error) {
	open := p.advance()
	var items []*Node
	var cur *lexer.Token

	for {
		tok := p.current()
		switch tok.Type {
		case lexer.TEXT:
			p.advance()
			if cur == nil {
				t := tok
				cur = &t
			} else {
				cur.Text += tok.Text
			}
		case lexer.COMMA, lexer.RBRACE:
			item, err := p.commandVariant(cur, tok)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			cur = nil
			p.advance()
			if tok.Type == lexer.RBRACE {
				return p.node(NodeCommandShorthand, open.Position, endOf(tok), items...), nil
			}
		case lexer.LBRACE:
			return nil, p.errorAt(tok, "command shorthand", "nested '{' is not allowed")
		default:
			err := p.errorAt(open, "command shorthand", "unclosed '{'")
			err.Suggestion = `Close the shorthand with '}' or write '\{' for a literal brace`
			return nil, err
		}
	}
}

// commandVariant builds one variant of a command shorthand. "_" is the empty
// variant; "X-Y" with single characters or digit runs is a range.
func (p *Parser) commandVariant(text *lexer.Token, at lexer.Token) (*Node, error) {
	if text == nil || strings.TrimSpace(text.Text) == "" {
		err := p.errorAt(at, "command shorthand", "empty variant")
		err.Suggestion = "Use '_' for an empty variant"
		return nil, err
	}

	lead := len(text.Text) - len(strings.TrimLeft(text.Text, " \t"))
	trimmed := strings.TrimSpace(text.Text)
	start := shift(text.Position, text.Text[:lead])
	end := shift(start, trimmed)

	if trimmed == "_" {
		return &Node{Kind: NodeCommandComponent, Text: "", Start: start, End: end}, nil
	}
	if lo, hi, ok := splitCommandRange(trimmed); ok {
		loEnd := shift(start, lo)
		hiStart := shift(loEnd, "-")
		return &Node{
			Kind:  NodeRange,
			Text:  trimmed,
			Start: start,
			End:   end,
			Children: []*Node{
				{Kind: NodeBound, Text: lo, Start: start, End: loEnd},
				{Kind: NodeBound, Text: hi, Start: hiStart, End: end},
			},
		}, nil
	}
	return &Node{Kind: NodeCommandComponent, Text: trimmed, Start: start, End: end}, nil
}

func splitCommandRange(s string) (string, string, bool) {
	if strings.Count(s, "-") != 1 || strings.ContainsAny(s, "\\ \t") {
		return "", "", false
	}
	lo, hi, _ := strings.Cut(s, "-")
	return lo, hi, isBound(lo) && isBound(hi)
}

func isBound(s string) bool {
	if utf8.RuneCountInString(s) == 1 {
		return true
	}
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
