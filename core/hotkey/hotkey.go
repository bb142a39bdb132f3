// Package hotkey holds the compiled binding model consumed by a hotkey daemon.
//
// Values in this package are produced once per compile and never mutated
// afterwards. A config reload builds a fresh Config.
package hotkey

import (
	"fmt"
	"slices"
	"strings"
)

// KeyAttribute is a set of flags attached to a key. Send and OnRelease may
// both be present.
type KeyAttribute uint8

const (
	AttrNone      KeyAttribute = 0
	AttrSend      KeyAttribute = 1 << 0 // ~ : forward the key event to other consumers
	AttrOnRelease KeyAttribute = 1 << 1 // @ : fire on key release instead of press
)

// Has reports whether every flag in attr is set.
func (a KeyAttribute) Has(attr KeyAttribute) bool {
	return a&attr == attr
}

func (a KeyAttribute) String() string {
	if a == AttrNone {
		return "None"
	}
	var parts []string
	if a.Has(AttrSend) {
		parts = append(parts, "Send")
	}
	if a.Has(AttrOnRelease) {
		parts = append(parts, "OnRelease")
	}
	if rest := a &^ (AttrSend | AttrOnRelease); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint8(rest)))
	}
	return strings.Join(parts, "|")
}

// Key is a single concrete key with its attributes.
type Key struct {
	Key       string       `json:"key" yaml:"key" cbor:"1,keyasint"`
	Attribute KeyAttribute `json:"attribute" yaml:"attribute" cbor:"2,keyasint"`
}

func (k Key) String() string {
	var b strings.Builder
	if k.Attribute.Has(AttrSend) {
		b.WriteByte('~')
	}
	if k.Attribute.Has(AttrOnRelease) {
		b.WriteByte('@')
	}
	b.WriteString(k.Key)
	return b.String()
}

// Modifier is a modifier name exactly as written in the source.
type Modifier string

// OmitModifier is the placeholder produced by `{_,shift}` style groups. It
// stands for "no modifier in this slot".
const OmitModifier Modifier = "_"

// Definition is one concrete trigger.
type Definition struct {
	Modifiers []Modifier `json:"modifiers" yaml:"modifiers" cbor:"1,keyasint"`
	Key       Key        `json:"key" yaml:"key" cbor:"2,keyasint"`
}

// Equal compares modifiers (order-sensitive) and key.
func (d Definition) Equal(other Definition) bool {
	return d.Key == other.Key && slices.Equal(d.Modifiers, other.Modifiers)
}

// EffectiveModifiers returns the modifiers without omission placeholders.
func (d Definition) EffectiveModifiers() []Modifier {
	out := make([]Modifier, 0, len(d.Modifiers))
	for _, m := range d.Modifiers {
		if m != OmitModifier {
			out = append(out, m)
		}
	}
	return out
}

func (d Definition) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for _, m := range d.Modifiers {
		b.WriteString(string(m))
		b.WriteString(", ")
	}
	b.WriteString(d.Key.String())
	b.WriteByte(']')
	return b.String()
}

// Binding pairs a trigger with the command it runs.
type Binding struct {
	Definition Definition `json:"definition" yaml:"definition" cbor:"1,keyasint"`
	Command    string     `json:"command" yaml:"command" cbor:"2,keyasint"`
}

func (b Binding) String() string {
	return fmt.Sprintf("Binding %s → %s", b.Definition, b.Command)
}

// Mode is a named group of bindings. Oneoff modes exit after one binding
// fires; swallow modes do not forward the triggering key press.
type Mode struct {
	Name     string       `json:"name" yaml:"name" cbor:"1,keyasint"`
	Oneoff   bool         `json:"oneoff" yaml:"oneoff" cbor:"2,keyasint"`
	Swallow  bool         `json:"swallow" yaml:"swallow" cbor:"3,keyasint"`
	Bindings []Binding    `json:"bindings" yaml:"bindings" cbor:"4,keyasint"`
	Unbinds  []Definition `json:"unbinds" yaml:"unbinds" cbor:"5,keyasint"`
}

// Config is the aggregate result of compiling a root file and everything it
// imports. Bindings and Unbinds belong to the default (unnamed) mode.
type Config struct {
	Bindings []Binding    `json:"bindings" yaml:"bindings" cbor:"1,keyasint"`
	Unbinds  []Definition `json:"unbinds" yaml:"unbinds" cbor:"2,keyasint"`
	// Imports is the sorted, deduplicated import closure.
	Imports []string `json:"imports" yaml:"imports" cbor:"3,keyasint"`
	Modes   []Mode   `json:"modes" yaml:"modes" cbor:"4,keyasint"`

	// Files lists every file read during the compile: the root path (if the
	// input was a path) followed by the import closure.
	Files []string `json:"-" yaml:"-" cbor:"-"`
}

// BindingCount counts bindings across the default mode and every named mode.
func (c *Config) BindingCount() int {
	n := len(c.Bindings)
	for _, m := range c.Modes {
		n += len(m.Bindings)
	}
	return n
}
