package project

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Norgate-AV/cpplab/internal/features"
)

// SingleFileOptions are the collaborator-selected overrides for a loose source file
type SingleFileOptions struct {
	// Standard overrides the language default when non-empty
	Standard string
	// Toolchain defaults to PreferAuto
	Toolchain Preference
	// Layout defaults to LayoutBuildDir
	Layout Layout
}

// LanguageForPath infers the language from a source file extension
func LanguageForPath(path string) (Language, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".c":
		return C, true
	case ".cpp", ".cc", ".cxx", ".c++":
		return CPP, true
	}

	return "", false
}

// ForSingleFile wraps one source file in a fresh synthetic descriptor.
// Features are detected from the file contents; the result is never saved.
func ForSingleFile(path string, opts SingleFileOptions) (*Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve source path: %w", err)
	}

	lang, ok := LanguageForPath(abs)
	if !ok {
		return nil, invalid("files", "%q is not a C or C++ source file", filepath.Base(abs))
	}

	std := opts.Standard
	if std == "" {
		std = DefaultStandard(lang)
	}

	pref := opts.Toolchain
	if pref == "" {
		pref = PreferAuto
	}

	layout := opts.Layout
	if layout == "" {
		layout = LayoutBuildDir
	}

	base := filepath.Base(abs)
	detected := features.DetectFile(abs)

	kind := Console
	if detected.Graphics {
		kind = Graphics
	}

	return &Descriptor{
		Name:       strings.TrimSuffix(base, filepath.Ext(base)),
		Root:       filepath.Dir(abs),
		Language:   lang,
		Standard:   std,
		Kind:       kind,
		Features:   detected,
		Toolchain:  pref,
		Files:      []string{base},
		MainFile:   base,
		Standalone: true,
		Layout:     layout,
	}, nil
}
