package compiler

import (
	"unicode/utf8"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/core/product"
	"github.com/aledsdavies/bindc/runtime/lexer"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// definitionUncompiled accumulates the trigger side of one declaration
// before expansion. Each entry of modifiers is one slot of alternatives.
type definitionUncompiled struct {
	modifiers [][]hotkey.Modifier
	keys      []hotkey.Key
}

// ingest records one trigger child. Nodes that are not part of a trigger
// are ignored.
func (d *definitionUncompiled) ingest(u *unit, n *parser.Node) error {
	switch n.Kind {
	case parser.NodeModifier:
		d.modifiers = append(d.modifiers, []hotkey.Modifier{hotkey.Modifier(n.Text)})

	case parser.NodeModifierShorthand, parser.NodeModifierOmitShorthand:
		slot := make([]hotkey.Modifier, 0, len(n.Children))
		for _, c := range n.Children {
			slot = append(slot, hotkey.Modifier(c.Text))
		}
		d.modifiers = append(d.modifiers, slot)

	case parser.NodeShorthand:
		for _, c := range n.Children {
			switch c.Kind {
			case parser.NodeKeyInShorthand:
				d.keys = append(d.keys, parseKey(c))
			case parser.NodeKeyRange:
				expanded, err := u.expandKeyRange(c)
				if err != nil {
					return err
				}
				for _, k := range expanded {
					d.keys = append(d.keys, hotkey.Key{Key: k, Attribute: hotkey.AttrNone})
				}
			}
		}

	case parser.NodeKeyNormal:
		d.keys = append(d.keys, parseKey(n))
	}
	return nil
}

// count is the number of definitions compile will produce. ok is false
// when the count does not fit in an int.
func (d *definitionUncompiled) count() (n int, ok bool) {
	if len(d.modifiers) == 0 {
		return len(d.keys), true
	}
	slots, ok := product.Count(d.modifiers)
	if !ok {
		return 0, false
	}
	return product.Mul(slots, len(d.keys))
}

// compile expands the slots and keys. Modifier slots vary slowest, keys
// fastest, both in declaration order. Callers bound count first.
func (d *definitionUncompiled) compile() []hotkey.Definition {
	want, ok := d.count()
	invariant.Precondition(ok, "definition count overflows")
	out := make([]hotkey.Definition, 0, want)
	if len(d.modifiers) == 0 {
		for _, k := range d.keys {
			out = append(out, hotkey.Definition{Modifiers: []hotkey.Modifier{}, Key: k})
		}
		return out
	}
	for _, mods := range product.Collect(d.modifiers) {
		for _, k := range d.keys {
			out = append(out, hotkey.Definition{Modifiers: mods, Key: k})
		}
	}
	invariant.Postcondition(len(out) == want, "compiled %d definitions, expected %d", len(out), want)
	return out
}

// parseKey reads attributes and the unescaped key text of a key node.
func parseKey(n *parser.Node) hotkey.Key {
	var key hotkey.Key
	for _, c := range n.Children {
		switch c.Kind {
		case parser.NodeSend:
			key.Attribute |= hotkey.AttrSend
		case parser.NodeOnRelease:
			key.Attribute |= hotkey.AttrOnRelease
		case parser.NodeKeyBase:
			key.Key = unescape(c.Text)
		}
	}
	return key
}

// unescape turns a two-character escape like `\+` into its literal
// character. Any other text is returned unchanged.
func unescape(s string) string {
	r := []rune(s)
	if len(r) != 2 || r[0] != '\\' {
		return s
	}
	invariant.Invariant(r[1] < utf8.RuneSelf && lexer.Escapable(byte(r[1])), "grammar produced invalid escape %q", s)
	return string(r[1])
}

// unbind compiles an unbind declaration. Unbinds have no command side.
func (u *unit) unbind(n *parser.Node) ([]hotkey.Definition, error) {
	var d definitionUncompiled
	for _, c := range n.Children {
		if err := d.ingest(u, c); err != nil {
			return nil, err
		}
	}
	if err := u.checkVariants(n, "trigger", d.count); err != nil {
		return nil, err
	}
	return d.compile(), nil
}
