package codec

import (
	"crypto/sha256"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/aledsdavies/bindc/core/hotkey"
	"github.com/aledsdavies/bindc/core/invariant"
)

// CanonicalVersion is bumped whenever the canonical encoding changes shape.
const CanonicalVersion uint8 = 1

// canonicalConfig is the envelope written by MarshalCanonical.
type canonicalConfig struct {
	Version uint8          `cbor:"1,keyasint"`
	Config  *hotkey.Config `cbor:"2,keyasint"`
}

var canonicalEncMode = newCanonicalEncMode()

func newCanonicalEncMode() cbor.EncMode {
	em, err := cbor.CanonicalEncOptions().EncMode()
	invariant.ExpectNoError(err, "canonical CBOR options")
	return em
}

// MarshalCanonical produces deterministic CBOR encoding of cfg. Config.Files
// is not encoded.
func MarshalCanonical(cfg *hotkey.Config) ([]byte, error) {
	data, err := canonicalEncMode.Marshal(canonicalConfig{Version: CanonicalVersion, Config: cfg})
	if err != nil {
		return nil, fmt.Errorf("CBOR encoding failed: %w", err)
	}
	return data, nil
}

// UnmarshalCanonical decodes bytes written by MarshalCanonical.
func UnmarshalCanonical(data []byte) (*hotkey.Config, error) {
	var env canonicalConfig
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("CBOR decoding failed: %w", err)
	}
	if env.Version != CanonicalVersion {
		return nil, fmt.Errorf("unsupported canonical version %d (want %d)", env.Version, CanonicalVersion)
	}
	if env.Config == nil {
		return nil, fmt.Errorf("canonical data has no config")
	}
	return env.Config, nil
}

// Hash computes the SHA-256 hash of the canonical encoding. Two configs
// with the same bindings, unbinds, modes and imports hash equal.
func Hash(cfg *hotkey.Config) ([32]byte, error) {
	data, err := MarshalCanonical(cfg)
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(data), nil
}
