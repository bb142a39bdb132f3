package lexer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type tokenSummary struct {
	Type TokenType
	Text string
}

func summarize(tokens []Token) []tokenSummary {
	out := make([]tokenSummary, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tokenSummary{Type: tok.Type, Text: tok.Text})
	}
	return out
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []tokenSummary
	}{
		{
			name:  "empty input",
			input: "",
			want:  []tokenSummary{{EOF, ""}},
		},
		{
			name:  "simple binding",
			input: "super + 5\n    alacritty\n",
			want: []tokenSummary{
				{WORD, "super"}, {PLUS, "+"}, {WORD, "5"}, {NEWLINE, ""},
				{INDENT, "    "}, {TEXT, "alacritty"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "shorthand trigger and command",
			input: "super + {_,shift} + {a-c,~@x}\n\tbspc {desktop -f,node -d} '^{1-3}'",
			want: []tokenSummary{
				{WORD, "super"}, {PLUS, "+"},
				{LBRACE, "{"}, {WORD, "_"}, {COMMA, ","}, {WORD, "shift"}, {RBRACE, "}"},
				{PLUS, "+"},
				{LBRACE, "{"}, {WORD, "a"}, {DASH, "-"}, {WORD, "c"}, {COMMA, ","},
				{TILDE, "~"}, {AT, "@"}, {WORD, "x"}, {RBRACE, "}"},
				{NEWLINE, ""},
				{INDENT, "\t"}, {TEXT, "bspc "},
				{LBRACE, "{"}, {TEXT, "desktop -f"}, {COMMA, ","}, {TEXT, "node -d"}, {RBRACE, "}"},
				{TEXT, " '^"}, {LBRACE, "{"}, {TEXT, "1-3"}, {RBRACE, "}"}, {TEXT, "'"},
				{NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "escapes stay whole",
			input: "\\+\n    echo \\{plus\\}",
			want: []tokenSummary{
				{ESCAPE, "\\+"}, {NEWLINE, ""},
				{INDENT, "    "}, {TEXT, "echo \\{plus\\}"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "invalid escape is illegal",
			input: "\\q",
			want: []tokenSummary{
				{ILLEGAL, "\\q"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "comment swallows its indented body",
			input: "#t\n    #/bin/firefox\n    still comment\n\nw\n    kitty",
			want: []tokenSummary{
				{COMMENT, "#t"}, {NEWLINE, ""},
				{COMMENT, "#/bin/firefox"}, {NEWLINE, ""},
				{COMMENT, "still comment"}, {NEWLINE, ""},
				{NEWLINE, ""},
				{WORD, "w"}, {NEWLINE, ""},
				{INDENT, "    "}, {TEXT, "kitty"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "include paths are raw words",
			input: "include ~/.config/my-keys.conf ./other-file",
			want: []tokenSummary{
				{WORD, "include"}, {WORD, "~/.config/my-keys.conf"}, {WORD, "./other-file"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "line continuation joins command lines",
			input: "r\n    notify-send \\\n        hello",
			want: []tokenSummary{
				{WORD, "r"}, {NEWLINE, ""},
				{INDENT, "    "}, {TEXT, "notify-send "}, {TEXT, "hello"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
		{
			name:  "escaped backslash does not continue",
			input: "r\n    echo \\\\\nw",
			want: []tokenSummary{
				{WORD, "r"}, {NEWLINE, ""},
				{INDENT, "    "}, {TEXT, "echo \\\\"}, {NEWLINE, ""},
				{WORD, "w"}, {NEWLINE, ""},
				{EOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := summarize(NewLexer(tt.input).Tokenize())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCustomCommentMarker(t *testing.T) {
	input := "// disabled\n    cmd\n#key\n    echo"
	got := summarize(NewLexer(input, WithCommentMarker("//")).Tokenize())
	want := []tokenSummary{
		{COMMENT, "// disabled"}, {NEWLINE, ""},
		{COMMENT, "cmd"}, {NEWLINE, ""},
		{WORD, "#key"}, {NEWLINE, ""},
		{INDENT, "    "}, {TEXT, "echo"}, {NEWLINE, ""},
		{EOF, ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Tokenize() mismatch (-want +got):\n%s", diff)
	}
}

func TestPositions(t *testing.T) {
	tokens := NewLexer("\nsuper + ä\n    run").Tokenize()

	want := map[string]Position{
		"super": {Line: 2, Column: 1, Offset: 1},
		"+":     {Line: 2, Column: 7, Offset: 7},
		"ä":     {Line: 2, Column: 9, Offset: 9},
		"run":   {Line: 3, Column: 5, Offset: 16},
	}
	for _, tok := range tokens {
		pos, ok := want[tok.Text]
		if !ok {
			continue
		}
		if diff := cmp.Diff(pos, tok.Position); diff != "" {
			t.Errorf("position of %q mismatch (-want +got):\n%s", tok.Text, diff)
		}
	}
}

func TestHasSpaceBefore(t *testing.T) {
	tokens := NewLexer("super+ a").Tokenize()
	got := []bool{tokens[0].HasSpaceBefore, tokens[1].HasSpaceBefore, tokens[2].HasSpaceBefore}
	if diff := cmp.Diff([]bool{false, false, true}, got); diff != "" {
		t.Errorf("HasSpaceBefore mismatch (-want +got):\n%s", diff)
	}
}

func TestNextTokenStopsAtEOF(t *testing.T) {
	l := NewLexer("a")
	var types []TokenType
	for i := 0; i < 4; i++ {
		types = append(types, l.NextToken().Type)
	}
	if diff := cmp.Diff([]TokenType{WORD, NEWLINE, EOF, EOF}, types); diff != "" {
		t.Errorf("NextToken() mismatch (-want +got):\n%s", diff)
	}
}
