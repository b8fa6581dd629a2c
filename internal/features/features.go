// Package features describes the optional capabilities a build unit needs
// (graphics.h support, OpenMP) and infers them from loose source files.
//
// Inference is a best-effort substring heuristic, not a preprocessor. An
// include or pragma inside a comment or string literal still counts, and
// that false positive is accepted.
package features

import (
	"os"
	"strings"
)

// Origin records whether a Set was written by a person or inferred from source.
type Origin int

const (
	// Declared sets come from a persisted project sidecar.
	Declared Origin = iota
	// Detected sets come from scanning a single source file.
	Detected
)

func (o Origin) String() string {
	if o == Detected {
		return "detected"
	}

	return "declared"
}

const (
	// GraphicsHeader is the legacy BGI header that pins a unit to the 32-bit toolchain.
	GraphicsHeader = "graphics.h"

	// OpenMPMarker is the pragma prefix that opens a parallel region.
	OpenMPMarker = "#pragma omp"
)

// Set holds the feature flags of one build unit.
type Set struct {
	Graphics bool   `json:"graphics"`
	OpenMP   bool   `json:"openmp"`
	Origin   Origin `json:"-"`
}

// Effective applies the precedence rule: graphics wins and forces OpenMP off.
func (s Set) Effective() Set {
	if s.Graphics {
		s.OpenMP = false
	}

	return s
}

// Detect scans source text for the graphics include and the OpenMP pragma.
func Detect(source string) Set {
	return Set{
		Graphics: includesHeader(source, GraphicsHeader),
		OpenMP:   strings.Contains(source, OpenMPMarker),
		Origin:   Detected,
	}
}

// DetectFile reads path and runs Detect on its contents.
// Unreadable files yield an empty detected set.
func DetectFile(path string) Set {
	data, err := os.ReadFile(path)
	if err != nil {
		return Set{Origin: Detected}
	}

	return Detect(string(data))
}

func includesHeader(source, header string) bool {
	return strings.Contains(source, "#include <"+header+">") ||
		strings.Contains(source, `#include "`+header+`"`)
}
