package compiler

import (
	"iter"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// binding compiles one binding declaration. The i-th trigger variant is
// paired with the i-th command variant; the counts must match.
func (u *unit) binding(n *parser.Node) ([]hotkey.Binding, error) {
	var defs definitionUncompiled
	var cmds commandUncompiled
	for _, c := range n.Children {
		if c.Kind == parser.NodeCommand {
			if err := cmds.ingest(u, c); err != nil {
				return nil, err
			}
			continue
		}
		if err := defs.ingest(u, c); err != nil {
			return nil, err
		}
	}

	if err := u.checkVariants(n, "trigger", defs.count); err != nil {
		return nil, err
	}
	if err := u.checkVariants(n, "command", cmds.count); err != nil {
		return nil, err
	}
	bindCount, _ := defs.count()
	cmdCount, _ := cmds.count()
	if bindCount != cmdCount {
		err := u.errorAt(KindCardinality, n,
			"the number of possible binding variants %d does not equal the number of possible command variants %d",
			bindCount, cmdCount)
		return nil, err.
			WithContext("binding_variants", bindCount).
			WithContext("command_variants", cmdCount)
	}

	bindings := zip(defs.compile(), cmds.compile())
	invariant.Postcondition(len(bindings) == bindCount, "zipped %d bindings, expected %d", len(bindings), bindCount)
	return bindings, nil
}

// zip pairs definitions and commands positionally, stopping at the shorter
// side.
func zip(definitions []hotkey.Definition, commands iter.Seq[string]) []hotkey.Binding {
	bindings := make([]hotkey.Binding, 0, len(definitions))
	for command := range commands {
		if len(bindings) == len(definitions) {
			break
		}
		def := definitions[len(bindings)]
		bindings = append(bindings, hotkey.Binding{Definition: def, Command: command})
	}
	return bindings
}

// checkVariants rejects a side of a declaration that expands to more than
// the variant limit.
func (u *unit) checkVariants(n *parser.Node, side string, count func() (int, bool)) error {
	c, ok := count()
	if ok && c <= u.maxVariants {
		return nil
	}
	return u.errorAt(KindCardinality, n,
		"the %s expands to more than %d variants", side, u.maxVariants).
		WithContext("limit", u.maxVariants)
}

// mode compiles a mode block.
func (u *unit) mode(n *parser.Node) (hotkey.Mode, error) {
	mode := hotkey.Mode{Bindings: []hotkey.Binding{}, Unbinds: []hotkey.Definition{}}
	for _, c := range n.Children {
		switch c.Kind {
		case parser.NodeModeName:
			mode.Name = c.Text
		case parser.NodeOneoff:
			mode.Oneoff = true
		case parser.NodeSwallow:
			mode.Swallow = true
		case parser.NodeBinding:
			bindings, err := u.binding(c)
			if err != nil {
				return hotkey.Mode{}, err
			}
			mode.Bindings = append(mode.Bindings, bindings...)
		case parser.NodeUnbind:
			defs, err := u.unbind(c)
			if err != nil {
				return hotkey.Mode{}, err
			}
			mode.Unbinds = append(mode.Unbinds, defs...)
		}
	}
	return mode, nil
}
