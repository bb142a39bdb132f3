package parser

import (
	"fmt"
	"strings"

	"github.com/aledsdavies/bindc/runtime/lexer"
)

// Tree is the result of parsing one source file.
type Tree struct {
	Filename string
	Source   []byte
	Root     *Node // NodeMain
}

// Content returns the single content section under the root, or nil when the
// tree has none.
func (t *Tree) Content() *Node {
	if t == nil || t.Root == nil {
		return nil
	}
	for _, child := range t.Root.Children {
		if child.Kind == NodeContent {
			return child
		}
	}
	return nil
}

// Node is a syntax node. Text is the exact source text the node covers.
type Node struct {
	Kind     NodeKind
	Text     string
	Start    lexer.Position
	End      lexer.Position
	Children []*Node
}

// Child returns the first child of the given kind, or nil.
func (n *Node) Child(kind NodeKind) *Node {
	for _, c := range n.Children {
		if c.Kind == kind {
			return c
		}
	}
	return nil
}

// Dump renders the subtree as an indented outline, for tests and --debug.
func (n *Node) Dump() string {
	var b strings.Builder
	n.dump(&b, 0)
	return b.String()
}

func (n *Node) dump(b *strings.Builder, depth int) {
	fmt.Fprintf(b, "%s%s", strings.Repeat("  ", depth), n.Kind)
	if len(n.Children) == 0 {
		fmt.Fprintf(b, " %q", n.Text)
	}
	b.WriteByte('\n')
	for _, c := range n.Children {
		c.dump(b, depth+1)
	}
}

// NodeKind represents syntax node types
type NodeKind uint32

const (
	NodeMain    NodeKind = iota // Whole file
	NodeContent                 // The single top-level section holding declarations
	NodeEOI                     // End of input marker, last child of NodeContent

	// Declarations
	NodeBinding // trigger + command
	NodeUnbind  // ignore <trigger>
	NodeMode    // mode <name> [oneoff] [swallow] ... endmode
	NodeImport  // include <path>...

	// Trigger parts
	NodeModifier              // super
	NodeModifierShorthand     // {ctrl,alt}
	NodeModifierOmitShorthand // {_,shift}
	NodeOmission              // _ inside an omit shorthand
	NodeShorthand             // {a,b,c-e} in key position
	NodeKeyInShorthand        // one key inside a key shorthand
	NodeKeyRange              // c-e inside a key shorthand
	NodeKeyNormal             // a plain key outside braces
	NodeSend                  // ~
	NodeOnRelease             // @
	NodeKeyBase               // the key text, possibly an escape

	// Command parts
	NodeCommand           // the indented command line(s)
	NodeCommandStandalone // literal command text
	NodeCommandShorthand  // {a,b,1-3} in a command
	NodeCommandComponent  // one literal variant inside a command shorthand
	NodeRange             // 1-3 inside a command shorthand
	NodeBound             // one end of a key or command range

	// Mode parts
	NodeModeName
	NodeOneoff
	NodeSwallow

	// Import parts
	NodeImportFile
)

var nodeNames = [...]string{
	NodeMain:                  "main",
	NodeContent:               "content",
	NodeEOI:                   "EOI",
	NodeBinding:               "binding",
	NodeUnbind:                "unbind",
	NodeMode:                  "mode",
	NodeImport:                "import",
	NodeModifier:              "modifier",
	NodeModifierShorthand:     "modifier_shorthand",
	NodeModifierOmitShorthand: "modifier_omit_shorthand",
	NodeOmission:              "omission",
	NodeShorthand:             "shorthand",
	NodeKeyInShorthand:        "key_in_shorthand",
	NodeKeyRange:              "key_range",
	NodeKeyNormal:             "key_normal",
	NodeSend:                  "send",
	NodeOnRelease:             "on_release",
	NodeKeyBase:               "key_base",
	NodeCommand:               "command",
	NodeCommandStandalone:     "command_standalone",
	NodeCommandShorthand:      "command_shorthand",
	NodeCommandComponent:      "command_component",
	NodeRange:                 "range",
	NodeBound:                 "bound",
	NodeModeName:              "modename",
	NodeOneoff:                "oneoff",
	NodeSwallow:               "swallow",
	NodeImportFile:            "import_file",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeNames) && nodeNames[k] != "" {
		return nodeNames[k]
	}
	return fmt.Sprintf("NodeKind(%d)", uint32(k))
}
