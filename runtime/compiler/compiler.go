// Package compiler expands parsed binding files into concrete bindings.
//
// A compile reads the root input, expands every binding, unbind and mode it
// declares, then resolves its imports one file at a time until the import
// closure is exhausted. The first error aborts the compile.
package compiler

import (
	"io"
	"log/slog"
	"os"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/runtime/lexer"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// Grammar turns source text into a syntax tree. filename is used for error
// messages and may be empty for inline input.
type Grammar interface {
	Parse(filename string, source []byte) (*parser.Tree, error)
}

// Input is the root of a compile: inline text or a file path.
type Input struct {
	source string
	path   string
	isPath bool
}

// FromString compiles src directly. Relative imports resolve against the
// working directory.
func FromString(src string) Input {
	return Input{source: src}
}

// FromPath compiles the file at path.
func FromPath(path string) Input {
	return Input{path: path, isPath: true}
}

func (in Input) String() string {
	if in.isPath {
		return in.path
	}
	return "<inline>"
}

// Option configures a compile.
type Option func(*options)

type options struct {
	grammar     Grammar
	logger      *slog.Logger
	readFile    func(path string) ([]byte, error)
	maxImports  int
	maxVariants int
}

// DefaultMaxVariants caps how many variants one declaration may expand to.
const DefaultMaxVariants = 1 << 16

// WithGrammar replaces the built-in grammar.
func WithGrammar(g Grammar) Option {
	return func(o *options) {
		if g != nil {
			o.grammar = g
		}
	}
}

// WithLogger sets the debug logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithReadFile replaces os.ReadFile for the root file and every import.
func WithReadFile(read func(path string) ([]byte, error)) Option {
	return func(o *options) {
		if read != nil {
			o.readFile = read
		}
	}
}

// WithMaxImports caps the size of the import closure. Zero means no limit.
func WithMaxImports(n int) Option {
	return func(o *options) {
		o.maxImports = n
	}
}

// WithMaxVariants caps how many variants a single range, trigger or command
// may expand to. Values below one keep DefaultMaxVariants.
func WithMaxVariants(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxVariants = n
		}
	}
}

// Compile compiles input and everything it imports.
func Compile(input Input, opts ...Option) (*hotkey.Config, error) {
	o := options{
		grammar:     parser.Grammar{},
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		readFile:    os.ReadFile,
		maxVariants: DefaultMaxVariants,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &compilation{opts: o, res: newResolver(o.maxImports)}
	cfg := &hotkey.Config{
		Bindings: []hotkey.Binding{},
		Unbinds:  []hotkey.Definition{},
		Imports:  []string{},
		Modes:    []hotkey.Mode{},
	}

	var root *unit
	if input.isPath {
		path, err := expandPath(input.path, "")
		if err != nil {
			return nil, readError(input.path, "", err)
		}
		// A cycle back to the root must not merge the root twice.
		c.res.markSeen(path)
		source, err := o.readFile(path)
		if err != nil {
			return nil, readError(path, "", err)
		}
		root = &unit{path: path, source: source, maxVariants: o.maxVariants}
		cfg.Files = append(cfg.Files, path)
	} else {
		root = &unit{source: []byte(input.source), maxVariants: o.maxVariants}
	}

	if err := c.compileUnit(root, cfg); err != nil {
		return nil, err
	}
	if err := c.resolveImports(cfg); err != nil {
		return nil, err
	}

	cfg.Imports = c.res.closure()
	cfg.Files = append(cfg.Files, cfg.Imports...)

	o.logger.Debug("compile finished",
		"input", input.String(),
		"bindings", len(cfg.Bindings),
		"unbinds", len(cfg.Unbinds),
		"modes", len(cfg.Modes),
		"imports", len(cfg.Imports))
	return cfg, nil
}

type compilation struct {
	opts options
	res  *resolver
}

// unit is one source file being compiled. path is empty for inline input.
type unit struct {
	path        string
	source      []byte
	maxVariants int
}

func (u *unit) errorAt(kind ErrorKind, n *parser.Node, format string, args ...any) *CompileError {
	return newError(kind, u.path, u.source, n.Start, format, args...)
}

// compileUnit parses u and merges its declarations into cfg. Imports are
// queued on the resolver, not followed.
func (c *compilation) compileUnit(u *unit, cfg *hotkey.Config) error {
	tree, err := c.opts.grammar.Parse(u.path, u.source)
	if err != nil {
		return grammarError(u.path, u.source, err)
	}
	content := tree.Content()
	if content == nil {
		return newError(KindMainSection, u.path, u.source, lexer.Position{}, "%s", ErrMainSection.Message)
	}

	var bindings, unbinds, modes, imports int
	for _, decl := range content.Children {
		switch decl.Kind {
		case parser.NodeBinding:
			b, err := u.binding(decl)
			if err != nil {
				return err
			}
			cfg.Bindings = append(cfg.Bindings, b...)
			bindings += len(b)
		case parser.NodeUnbind:
			d, err := u.unbind(decl)
			if err != nil {
				return err
			}
			cfg.Unbinds = append(cfg.Unbinds, d...)
			unbinds += len(d)
		case parser.NodeMode:
			m, err := u.mode(decl)
			if err != nil {
				return err
			}
			cfg.Modes = append(cfg.Modes, m)
			modes++
		case parser.NodeImport:
			for _, f := range decl.Children {
				if f.Kind != parser.NodeImportFile {
					continue
				}
				path, err := expandPath(f.Text, u.path)
				if err != nil {
					return readError(f.Text, u.path, err)
				}
				c.res.add(path, u.path)
				imports++
			}
		case parser.NodeEOI:
		default:
			invariant.Invariant(false, "grammar produced unexpected declaration %s at %s", decl.Kind, decl.Start)
		}
	}

	c.opts.logger.Debug("compiled file",
		"path", u.displayName(),
		"bindings", bindings,
		"unbinds", unbinds,
		"modes", modes,
		"imports", imports)
	return nil
}

func (u *unit) displayName() string {
	if u.path == "" {
		return "<inline>"
	}
	return u.path
}

// resolveImports drains the pending imports in sorted order. Each file is
// read, compiled and merged before the next one is opened.
func (c *compilation) resolveImports(cfg *hotkey.Config) error {
	for {
		path, ok := c.res.next()
		if !ok {
			return nil
		}
		if err := c.res.checkLimit(path); err != nil {
			return err
		}
		c.opts.logger.Debug("resolving import", "path", path)

		source, err := c.opts.readFile(path)
		if err != nil {
			return readError(path, c.res.importedFrom(path), err)
		}
		if err := c.compileUnit(&unit{path: path, source: source, maxVariants: c.opts.maxVariants}, cfg); err != nil {
			return err
		}
	}
}
