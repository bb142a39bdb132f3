// Package codec writes compiled configs for people and for daemons.
//
// Text is for inspection, JSON and YAML for tooling, and canonical CBOR is
// the handoff format: equal configs always encode to equal bytes.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aledsdavies/bindc/core/hotkey"
)

// Format names an output encoding.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCBOR Format = "cbor"
)

// Formats lists every supported format.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCBOR}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(name)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (want one of text, json, yaml, cbor)", name)
}

// Encode writes cfg to w in the given format.
func Encode(w io.Writer, cfg *hotkey.Config, format Format) error {
	switch format {
	case FormatText:
		_, err := io.WriteString(w, Text(cfg))
		return err
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("JSON encoding failed: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return fmt.Errorf("YAML encoding failed: %w", err)
		}
		return enc.Close()
	case FormatCBOR:
		data, err := MarshalCanonical(cfg)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown format %q", format)
}

// Text returns a human-readable listing of cfg.
//
// Format:
//
//	binding: [super, 5] → alacritty
//	unbind: [super, q]
//	mode resize oneoff
//	  binding: [h] → bspc node -z left
//	import: /home/me/.config/bindc/common.conf
func Text(cfg *hotkey.Config) string {
	var b strings.Builder
	for _, line := range lines(cfg) {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func lines(cfg *hotkey.Config) []string {
	var out []string
	for _, bind := range cfg.Bindings {
		out = append(out, formatBinding(bind))
	}
	for _, def := range cfg.Unbinds {
		out = append(out, "unbind: "+formatDefinition(def))
	}
	for _, m := range cfg.Modes {
		out = append(out, modeHeader(m))
		for _, bind := range m.Bindings {
			out = append(out, "  "+formatBinding(bind))
		}
		for _, def := range m.Unbinds {
			out = append(out, "  unbind: "+formatDefinition(def))
		}
	}
	for _, path := range cfg.Imports {
		out = append(out, "import: "+path)
	}
	return out
}

func formatBinding(b hotkey.Binding) string {
	return fmt.Sprintf("binding: %s → %s", formatDefinition(b.Definition), b.Command)
}

// formatDefinition renders a trigger without omission placeholders.
func formatDefinition(d hotkey.Definition) string {
	return hotkey.Definition{Modifiers: d.EffectiveModifiers(), Key: d.Key}.String()
}

func modeHeader(m hotkey.Mode) string {
	header := "mode " + m.Name
	if m.Oneoff {
		header += " oneoff"
	}
	if m.Swallow {
		header += " swallow"
	}
	return header
}
