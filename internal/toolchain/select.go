package toolchain

import (
	"github.com/Norgate-AV/cpplab/internal/project"
)

// Select applies the toolchain policy, in order:
//
//  1. graphics pins the 32-bit toolchain, with no 64-bit substitute
//  2. a forced preference must be honoured exactly
//  3. auto prefers 64-bit and falls back to 32-bit
//
// It only consults reg and never touches the filesystem.
func Select(d *project.Descriptor, reg Registry) (Toolchain, error) {
	feats := d.EffectiveFeatures()

	if feats.Graphics {
		return required(reg, Bits32, "graphics.h support is only bundled with the 32-bit toolchain")
	}

	switch d.Toolchain {
	case project.PreferMinGW32:
		return required(reg, Bits32, "project forces the 32-bit toolchain")
	case project.PreferMinGW64:
		return required(reg, Bits64, "project forces the 64-bit toolchain")
	}

	if tc, ok := reg.Lookup(Bits64); ok {
		return tc, nil
	}

	if tc, ok := reg.Lookup(Bits32); ok {
		return tc, nil
	}

	return Toolchain{}, &NotFoundError{Bitness: Bits64, Reason: "no toolchain is installed"}
}

func required(reg Registry, bits Bitness, reason string) (Toolchain, error) {
	if tc, ok := reg.Lookup(bits); ok {
		return tc, nil
	}

	return Toolchain{}, &NotFoundError{Bitness: bits, Reason: reason}
}
