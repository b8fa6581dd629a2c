// Package project defines the descriptor of a buildable unit: either a
// multi-file project persisted as a .cpplab.json sidecar, or a synthetic
// descriptor wrapped around a single loose source file.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Norgate-AV/cpplab/internal/features"
	"github.com/Norgate-AV/cpplab/internal/utils"
)

const (
	// SidecarName is the descriptor file kept in every project root
	SidecarName = ".cpplab.json"

	// BuildDir is the output directory, relative to the project root
	BuildDir = "build"
)

// Language selects the compiler front end
type Language string

const (
	C   Language = "c"
	CPP Language = "cpp"
)

// Kind is the project template family
type Kind string

const (
	Console  Kind = "console"
	Graphics Kind = "graphics"
)

// Preference is the user's toolchain choice. Graphics projects ignore it.
type Preference string

const (
	PreferAuto    Preference = "auto"
	PreferMinGW32 Preference = "mingw32"
	PreferMinGW64 Preference = "mingw64"
)

// Layout decides where a standalone file's artifact is written
type Layout string

const (
	// LayoutBuildDir puts the artifact in a build/ directory beside the source
	LayoutBuildDir Layout = "build"
	// LayoutBeside puts the artifact directly next to the source
	LayoutBeside Layout = "beside"
)

var standards = map[Language][]string{
	C:   {"c89", "c90", "c99", "c11", "c17", "c18", "c23"},
	CPP: {"c++98", "c++03", "c++11", "c++14", "c++17", "c++20", "c++23"},
}

// DefaultStandard returns the standard used when none is given
func DefaultStandard(lang Language) string {
	if lang == C {
		return "c11"
	}

	return "c++17"
}

// Standards lists the accepted standard tokens for lang
func Standards(lang Language) []string {
	return slices.Clone(standards[lang])
}

// ValidStandard reports whether std is accepted for lang
func ValidStandard(lang Language, std string) bool {
	return slices.Contains(standards[lang], std)
}

// ValidationError reports a structurally invalid descriptor
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid project %s: %s", e.Field, e.Reason)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Descriptor describes one buildable unit
type Descriptor struct {
	Name      string       `json:"name"`
	Root      string       `json:"path"`
	Language  Language     `json:"language"`
	Standard  string       `json:"standard"`
	Kind      Kind         `json:"project_type"`
	Features  features.Set `json:"features"`
	Toolchain Preference   `json:"toolchain_preference"`
	Files     []string     `json:"files"`
	MainFile  string       `json:"main_file"`

	// Standalone marks a synthetic single-file descriptor. Never persisted.
	Standalone bool `json:"-"`
	// Layout only applies to standalone descriptors
	Layout Layout `json:"-"`
}

// Validate checks the structural invariants of the descriptor
func (d *Descriptor) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return invalid("name", "must not be empty")
	}

	// The name becomes the artifact file name inside the output directory
	if strings.ContainsAny(d.Name, `/\`) || d.Name == "." || d.Name == ".." {
		return invalid("name", "%q must not contain path separators or be . or ..", d.Name)
	}

	if d.Root == "" {
		return invalid("path", "must not be empty")
	}

	if !filepath.IsAbs(d.Root) {
		return invalid("path", "%q is not an absolute path", d.Root)
	}

	if d.Language != C && d.Language != CPP {
		return invalid("language", "unknown language %q", d.Language)
	}

	if !ValidStandard(d.Language, d.Standard) {
		return invalid("standard", "%q is not a valid %s standard (allowed: %s)",
			d.Standard, d.Language, strings.Join(standards[d.Language], ", "))
	}

	if d.Kind != Console && d.Kind != Graphics {
		return invalid("project_type", "unknown project type %q", d.Kind)
	}

	switch d.Toolchain {
	case PreferAuto, PreferMinGW32, PreferMinGW64:
	default:
		return invalid("toolchain_preference", "unknown toolchain preference %q", d.Toolchain)
	}

	if len(d.Files) == 0 {
		return invalid("files", "source list is empty")
	}

	for i, f := range d.Files {
		if strings.TrimSpace(f) == "" {
			return invalid("files", "entry %d is empty", i)
		}
	}

	if !slices.Contains(d.Files, d.MainFile) {
		return invalid("main_file", "%q is not one of the project files", d.MainFile)
	}

	return nil
}

// EffectiveFeatures returns the features the build honours. A graphics
// project kind implies graphics, and graphics always forces OpenMP off.
func (d *Descriptor) EffectiveFeatures() features.Set {
	f := d.Features
	if d.Kind == Graphics {
		f.Graphics = true
	}

	return f.Effective()
}

// OutputDir is the directory holding the linked artifact
func (d *Descriptor) OutputDir() string {
	if d.Standalone && d.Layout == LayoutBeside {
		return d.Root
	}

	return filepath.Join(d.Root, BuildDir)
}

// OutputPath is the expected location of the linked artifact
func (d *Descriptor) OutputPath() string {
	return filepath.Join(d.OutputDir(), utils.ExecutableName(d.Name))
}

// SourcePaths resolves the declared files against the root, keeping their order
func (d *Descriptor) SourcePaths() []string {
	paths := make([]string, 0, len(d.Files))
	for _, f := range d.Files {
		p := filepath.FromSlash(f)
		if !filepath.IsAbs(p) {
			p = filepath.Join(d.Root, p)
		}

		paths = append(paths, p)
	}

	return paths
}

// Load reads the sidecar from dir. The returned descriptor is rooted at dir,
// so a project that was moved on disk keeps building in its new location.
func Load(dir string) (*Descriptor, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project directory: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(abs, SidecarName))
	if err != nil {
		return nil, fmt.Errorf("failed to read project file: %w", err)
	}

	d := &Descriptor{
		Language:  CPP,
		Kind:      Console,
		Toolchain: PreferAuto,
	}

	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", SidecarName, err)
	}

	if d.Standard == "" {
		d.Standard = DefaultStandard(d.Language)
	}

	d.Root = abs
	d.Features.Origin = features.Declared

	return d, nil
}

// Save validates the descriptor and writes it to <root>/.cpplab.json
func (d *Descriptor) Save() error {
	if d.Standalone {
		return fmt.Errorf("standalone descriptors are not persisted")
	}

	if err := d.Validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	if err := os.WriteFile(filepath.Join(d.Root, SidecarName), append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write project file: %w", err)
	}

	return nil
}

// IsProjectDir reports whether dir holds a sidecar
func IsProjectDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, SidecarName))
	return err == nil && !info.IsDir()
}
