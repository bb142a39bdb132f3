package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func dumpContent(t *testing.T, input string, opts ...ParserOpt) string {
	t.Helper()
	tree, err := Parse("", []byte(input), opts...)
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	content := tree.Content()
	if content == nil {
		t.Fatal("Parse() produced no content section")
	}
	var b strings.Builder
	for _, decl := range content.Children {
		b.WriteString(decl.Dump())
	}
	return b.String()
}

func outline(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestParseTrees(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple binding",
			input: "super + 5\n    alacritty\n",
			want: outline(
				"binding",
				"  modifier \"super\"",
				"  key_normal",
				"    key_base \"5\"",
				"  command",
				"    command_standalone \"alacritty\"",
				"EOI \"\"",
			),
		},
		{
			name:  "shorthands in trigger and command",
			input: "super + {_,shift} + {a-c,~@x}\n    bspc {desktop -f,node -d} '^{1-3,_}'",
			want: outline(
				"binding",
				"  modifier \"super\"",
				"  modifier_omit_shorthand",
				"    omission \"_\"",
				"    modifier \"shift\"",
				"  shorthand",
				"    key_range",
				"      bound \"a\"",
				"      bound \"c\"",
				"    key_in_shorthand",
				"      send \"~\"",
				"      on_release \"@\"",
				"      key_base \"x\"",
				"  command",
				"    command_standalone \"bspc \"",
				"    command_shorthand",
				"      command_component \"desktop -f\"",
				"      command_component \"node -d\"",
				"    command_standalone \" '^\"",
				"    command_shorthand",
				"      range",
				"        bound \"1\"",
				"        bound \"3\"",
				"      command_component \"\"",
				"    command_standalone \"'\"",
				"EOI \"\"",
			),
		},
		{
			name:  "modifier shorthand without omission",
			input: "{ctrl,alt} + x\n    run",
			want: outline(
				"binding",
				"  modifier_shorthand",
				"    modifier \"ctrl\"",
				"    modifier \"alt\"",
				"  key_normal",
				"    key_base \"x\"",
				"  command",
				"    command_standalone \"run\"",
				"EOI \"\"",
			),
		},
		{
			name:  "mode block",
			input: "mode resize oneoff\nh\n    bspc node -z left\nignore super + h\nendmode\n",
			want: outline(
				"mode",
				"  modename \"resize\"",
				"  oneoff \"oneoff\"",
				"  binding",
				"    key_normal",
				"      key_base \"h\"",
				"    command",
				"      command_standalone \"bspc node -z left\"",
				"  unbind",
				"    modifier \"super\"",
				"    key_normal",
				"      key_base \"h\"",
				"EOI \"\"",
			),
		},
		{
			name:  "include",
			input: "include ~/a.conf ./b.conf\n",
			want: outline(
				"import",
				"  import_file \"~/a.conf\"",
				"  import_file \"./b.conf\"",
				"EOI \"\"",
			),
		},
		{
			name:  "comments never reach the tree",
			input: "# launch\n    not a command\n\nsuper + Return\n    alacritty",
			want: outline(
				"binding",
				"  modifier \"super\"",
				"  key_normal",
				"    key_base \"Return\"",
				"  command",
				"    command_standalone \"alacritty\"",
				"EOI \"\"",
			),
		},
		{
			name:  "escaped key",
			input: "~\\+\n    echo plus",
			want: outline(
				"binding",
				"  key_normal",
				"    send \"~\"",
				"    key_base \"\\\\+\"",
				"  command",
				"    command_standalone \"echo plus\"",
				"EOI \"\"",
			),
		},
		{
			name:  "continued command is one literal",
			input: "r\n    notify-send \\\n        hello",
			want: outline(
				"binding",
				"  key_normal",
				"    key_base \"r\"",
				"  command",
				"    command_standalone \"notify-send hello\"",
				"EOI \"\"",
			),
		},
		{
			name:  "empty file",
			input: "",
			want:  outline("EOI \"\""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dumpContent(t, tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tree mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseRootShape(t *testing.T) {
	tree, err := Parse("keys.conf", []byte("a\n    x\n"))
	if err != nil {
		t.Fatalf("Parse() unexpected error: %v", err)
	}
	if tree.Root.Kind != NodeMain {
		t.Fatalf("root kind = %s, want main", tree.Root.Kind)
	}
	content := tree.Content()
	if content == nil {
		t.Fatal("missing content")
	}
	last := content.Children[len(content.Children)-1]
	if last.Kind != NodeEOI {
		t.Errorf("last child = %s, want EOI", last.Kind)
	}
	cmd := content.Children[0].Child(NodeCommand)
	if cmd == nil || cmd.Text != "x" {
		t.Errorf("command = %+v, want text \"x\"", cmd)
	}
	if tree.Filename != "keys.conf" {
		t.Errorf("Filename = %q", tree.Filename)
	}
}

func TestCommentMarkerOption(t *testing.T) {
	got := dumpContent(t, "; off\n    skipped\n#a\n    run", WithCommentMarker(";"))
	want := outline(
		"binding",
		"  key_normal",
		"    key_base \"#a\"",
		"  command",
		"    command_standalone \"run\"",
		"EOI \"\"",
	)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestGrammarParse(t *testing.T) {
	g := Grammar{Options: []ParserOpt{WithCommentMarker("//")}}
	tree, err := g.Parse("x.conf", []byte("// c\nsuper + a\n    run"))
	if err != nil {
		t.Fatalf("Grammar.Parse() unexpected error: %v", err)
	}
	if n := len(tree.Content().Children); n != 2 {
		t.Errorf("declarations = %d, want 2 (binding and EOI)", n)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		want       string
		suggestion string
	}{
		{
			name:  "key used as modifier",
			input: "shift + k + m\n    x",
			want:  "1:9: expected a modifier before '+', found 'k' in trigger",
		},
		{
			name:       "misspelled modifier",
			input:      "supr + a\n    x",
			want:       "1:1: expected a modifier before '+', found 'supr' in trigger",
			suggestion: "Did you mean 'super'?",
		},
		{
			name:       "transposed modifier",
			input:      "sihft + a\n    x",
			want:       "1:1: expected a modifier before '+', found 'sihft' in trigger",
			suggestion: "Did you mean 'shift'?",
		},
		{
			name:       "unclosed trigger shorthand",
			input:      "super + {a,b\n    x",
			want:       "1:9: unclosed '{' in shorthand",
			suggestion: "Close the shorthand with '}' on the same line",
		},
		{
			name:       "missing endmode",
			input:      "mode resize\nh\n    x\n",
			want:       "1:1: mode 'resize' is missing 'endmode' in mode",
			suggestion: "Add 'endmode' on its own line after the mode's bindings",
		},
		{
			name:       "nested mode",
			input:      "mode a\nmode b\nendmode\nendmode",
			want:       "2:1: modes cannot be nested",
			suggestion: "Close the current mode with 'endmode' first",
		},
		{
			name:  "stray endmode",
			input: "endmode",
			want:  "1:1: 'endmode' without a matching 'mode'",
		},
		{
			name:       "unknown mode option",
			input:      "mode a sticky\nendmode",
			want:       "1:8: unknown mode option 'sticky' in mode header",
			suggestion: "Mode options are 'oneoff' and 'swallow'",
		},
		{
			name:       "unbind with command",
			input:      "ignore super + q\n    x",
			want:       "2:1: 'ignore' does not take a command in unbind",
			suggestion: "Remove the indented line or drop 'ignore' to make it a binding",
		},
		{
			name:       "binding without command",
			input:      "super + a\nsuper + b\n    x",
			want:       "2:1: expected an indented command after the trigger, got 'super' in binding",
			suggestion: "Put the command on the next line, indented",
		},
		{
			name:       "empty command variant",
			input:      "a\n    echo {x,}",
			want:       "2:13: empty variant in command shorthand",
			suggestion: "Use '_' for an empty variant",
		},
		{
			name:  "invalid escape",
			input: "\\q\n    x",
			want:  "1:1: invalid escape '\\q' in trigger",
		},
		{
			name:       "indented line without trigger",
			input:      "    x",
			want:       "1:1: unexpected indented line",
			suggestion: "Commands go on the indented line directly below a trigger; declarations start at column 1",
		},
		{
			name:  "attribute on modifier",
			input: "~super + a\n    x",
			want:  "1:1: '~' only applies to the key, not to a modifier in trigger",
		},
		{
			name:  "include inside mode",
			input: "mode a\ninclude b.conf\nendmode",
			want:  "2:1: 'include' is not allowed inside a mode",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("", []byte(tt.input))
			if err == nil {
				t.Fatal("Parse() expected an error")
			}
			if diff := cmp.Diff(tt.want, err.Error()); diff != "" {
				t.Errorf("error mismatch (-want +got):\n%s", diff)
			}
			var perr ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("error is %T, want ParseError", err)
			}
			if perr.Suggestion != tt.suggestion {
				t.Errorf("Suggestion = %q, want %q", perr.Suggestion, tt.suggestion)
			}
		})
	}
}

func TestErrorFilename(t *testing.T) {
	_, err := Parse("keys.conf", []byte("endmode"))
	if err == nil {
		t.Fatal("Parse() expected an error")
	}
	want := "keys.conf:1:1: 'endmode' without a matching 'mode'"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsModifier(t *testing.T) {
	for _, word := range []string{"super", "Super", "CTRL", "mod4", "any"} {
		if !IsModifier(word) {
			t.Errorf("IsModifier(%q) = false", word)
		}
	}
	for _, word := range []string{"", "_", "k", "Return"} {
		if IsModifier(word) {
			t.Errorf("IsModifier(%q) = true", word)
		}
	}
}
