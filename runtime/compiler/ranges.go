package compiler

import (
	"strconv"
	"unicode"

	"github.com/aledsdavies/bindc/core/invariant"
	"github.com/aledsdavies/bindc/runtime/parser"
)

// bounds returns the two NodeBound children of a range node.
func bounds(n *parser.Node) (lo, hi *parser.Node) {
	invariant.Precondition(len(n.Children) == 2, "%s at %s must have two bounds, has %d", n.Kind, n.Start, len(n.Children))
	return n.Children[0], n.Children[1]
}

// expandKeyRange expands `a-c` in a key shorthand to a, b, c. Both bounds
// must be single ASCII characters with lower < upper.
func (u *unit) expandKeyRange(n *parser.Node) ([]string, error) {
	lo, hi := bounds(n)
	l, err := u.asciiBound(lo)
	if err != nil {
		return nil, err
	}
	h, err := u.asciiBound(hi)
	if err != nil {
		return nil, err
	}
	return u.charRange(n, l, h)
}

// expandCommandRange expands a command range. Two digit runs form a numeric
// range ({1-10}); anything else must be a pair of single ASCII characters.
func (u *unit) expandCommandRange(n *parser.Node) ([]string, error) {
	lo, hi := bounds(n)
	if isDigits(lo.Text) && isDigits(hi.Text) && (len(lo.Text) > 1 || len(hi.Text) > 1) {
		return u.numericRange(n, lo, hi)
	}
	l, err := u.asciiBound(lo)
	if err != nil {
		return nil, err
	}
	h, err := u.asciiBound(hi)
	if err != nil {
		return nil, err
	}
	return u.charRange(n, l, h)
}

func (u *unit) asciiBound(n *parser.Node) (byte, error) {
	if len(n.Text) != 1 || n.Text[0] > unicode.MaxASCII {
		return 0, u.errorAt(KindRange, n, "range bound '%s' is not a single ASCII character", n.Text)
	}
	return n.Text[0], nil
}

func (u *unit) charRange(n *parser.Node, lo, hi byte) ([]string, error) {
	if lo >= hi {
		return nil, u.errorAt(KindRange, n,
			"range '%c-%c' is not ascending: the lower bound must come before the upper bound", lo, hi)
	}
	if err := u.checkWidth(n, int(hi-lo)); err != nil {
		return nil, err
	}
	out := make([]string, 0, int(hi-lo)+1)
	for c := int(lo); c <= int(hi); c++ {
		out = append(out, string(rune(c)))
	}
	return out, nil
}

func (u *unit) numericRange(n *parser.Node, lo, hi *parser.Node) ([]string, error) {
	l, err := strconv.Atoi(lo.Text)
	if err != nil {
		return nil, u.errorAt(KindRange, lo, "range bound '%s' is not a valid number", lo.Text)
	}
	h, err := strconv.Atoi(hi.Text)
	if err != nil {
		return nil, u.errorAt(KindRange, hi, "range bound '%s' is not a valid number", hi.Text)
	}
	if l >= h {
		return nil, u.errorAt(KindRange, n,
			"range '%d-%d' is not ascending: the lower bound must be less than the upper bound", l, h)
	}
	// 0 <= l < h, so h-l cannot overflow.
	if err := u.checkWidth(n, h-l); err != nil {
		return nil, err
	}
	out := make([]string, 0, h-l+1)
	for i := range h - l + 1 {
		out = append(out, strconv.Itoa(l+i))
	}
	return out, nil
}

// checkWidth rejects a range whose bounds are span apart when it would
// expand to more than the variant limit.
func (u *unit) checkWidth(n *parser.Node, span int) error {
	if span >= u.maxVariants {
		return u.errorAt(KindRange, n,
			"range '%s' expands to more than %d variants", n.Text, u.maxVariants).
			WithContext("limit", u.maxVariants)
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
