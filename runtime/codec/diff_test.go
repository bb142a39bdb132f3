package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiff(t *testing.T) {
	before := compile(t, sample)
	after := compile(t, `super + 5
    kitty
ignore super + q
mode resize oneoff
h
    left
l
    right
endmode
`)

	result := Diff(before, after)
	assert.Equal(t, []string{
		"binding: [super, 5] → kitty",
		"mode resize oneoff: binding: [l] → right",
	}, result.Added)
	assert.Equal(t, []string{"binding: [super, 5] → alacritty"}, result.Removed)
	assert.False(t, result.Empty())

	out := FormatDiff(result, false)
	assert.Contains(t, out, "+ binding: [super, 5] → kitty\n")
	assert.Contains(t, out, "- binding: [super, 5] → alacritty\n")
}

func TestDiffIdentical(t *testing.T) {
	result := Diff(compile(t, sample), compile(t, sample))
	assert.True(t, result.Empty())
	assert.Equal(t, "No differences found.\n", FormatDiff(result, true))
}

func TestDiffFromNothing(t *testing.T) {
	result := Diff(nil, compile(t, "a\n    x\n"))
	assert.Equal(t, []string{"binding: [a] → x"}, result.Added)
	assert.Empty(t, result.Removed)
}
