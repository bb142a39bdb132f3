package parser

import (
	"io"
	"log/slog"

	"github.com/aledsdavies/bindc/runtime/lexer"
)

// ParserOpt represents a parser configuration option
type ParserOpt func(*ParserConfig)

// ParserConfig holds parser configuration
type ParserConfig struct {
	commentMarker string
	logger        *slog.Logger
}

func defaultConfig() ParserConfig {
	return ParserConfig{
		commentMarker: lexer.DefaultCommentMarker,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithCommentMarker sets the string that starts a comment line.
func WithCommentMarker(marker string) ParserOpt {
	return func(c *ParserConfig) {
		if marker != "" {
			c.commentMarker = marker
		}
	}
}

// WithLogger sets the debug logger shared by the parser and its lexer.
func WithLogger(logger *slog.Logger) ParserOpt {
	return func(c *ParserConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Grammar exposes Parse with a fixed set of options.
type Grammar struct {
	Options []ParserOpt
}

// Parse parses source. filename is only used in error messages.
func (g Grammar) Parse(filename string, source []byte) (*Tree, error) {
	return Parse(filename, source, g.Options...)
}
