package compiler

import (
	"iter"
	"strings"

	"github.com/aledsdavies/bindc/core/product"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// commandUncompiled holds the fragments of one command. A literal fragment
// has a single variant; a shorthand fragment has one per component, with
// ranges expanded.
type commandUncompiled struct {
	fragments [][]string
}

// ingest records the fragments of a NodeCommand.
func (c *commandUncompiled) ingest(u *unit, n *parser.Node) error {
	for _, part := range n.Children {
		switch part.Kind {
		case parser.NodeCommandStandalone:
			c.fragments = append(c.fragments, []string{part.Text})
		case parser.NodeCommandShorthand:
			variants, err := u.commandShorthand(part)
			if err != nil {
				return err
			}
			c.fragments = append(c.fragments, variants)
		}
	}
	return nil
}

func (u *unit) commandShorthand(n *parser.Node) ([]string, error) {
	var variants []string
	for _, c := range n.Children {
		switch c.Kind {
		case parser.NodeCommandComponent:
			variants = append(variants, c.Text)
		case parser.NodeRange:
			expanded, err := u.expandCommandRange(c)
			if err != nil {
				return nil, err
			}
			variants = append(variants, expanded...)
		}
	}
	return variants, nil
}

// count is the number of commands compile yields. ok is false when the
// count does not fit in an int.
func (c *commandUncompiled) count() (int, bool) {
	return product.Count(c.fragments)
}

// compile yields every command in fragment order, each tuple joined without
// a separator.
func (c *commandUncompiled) compile() iter.Seq[string] {
	return func(yield func(string) bool) {
		for tuple := range product.Of(c.fragments) {
			if !yield(strings.Join(tuple, "")) {
				return
			}
		}
	}
}
