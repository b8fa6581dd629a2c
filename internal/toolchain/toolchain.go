// Package toolchain discovers the bundled MinGW compilers and picks the one a
// build unit must use.
package toolchain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/Norgate-AV/cpplab/internal/utils"
)

// Bitness identifies a toolchain by target word size
type Bitness int

const (
	Bits32 Bitness = 32
	Bits64 Bitness = 64
)

// ID is the directory name the toolchain is shipped under
func (b Bitness) ID() string {
	return fmt.Sprintf("mingw%d", int(b))
}

func (b Bitness) String() string {
	return b.ID()
}

// ErrNotFound is wrapped by every NotFoundError
var ErrNotFound = errors.New("toolchain not found")

// NotFoundError reports that a required toolchain is missing from the registry
type NotFoundError struct {
	Bitness Bitness
	Reason  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("toolchain %s not found: %s", e.Bitness.ID(), e.Reason)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// Toolchain is a read-only description of one discovered compiler set
type Toolchain struct {
	Bitness     Bitness
	Root        string
	CCompiler   string
	CXXCompiler string

	// IncludeDir and LibDir carry the bundled graphics.h headers and libbgi
	IncludeDir string
	LibDir     string
}

// ID returns the toolchain's short name, e.g. mingw64
func (t Toolchain) ID() string {
	return t.Bitness.ID()
}

// BinDir is the directory holding the compiler executables and runtime DLLs
func (t Toolchain) BinDir() string {
	return filepath.Join(t.Root, "bin")
}

// New describes the toolchain rooted at root using the standard MinGW layout
func New(bits Bitness, root string) Toolchain {
	bin := filepath.Join(root, "bin")

	return Toolchain{
		Bitness:     bits,
		Root:        root,
		CCompiler:   filepath.Join(bin, utils.ExecutableName("gcc")),
		CXXCompiler: filepath.Join(bin, utils.ExecutableName("g++")),
		IncludeDir:  filepath.Join(root, "include"),
		LibDir:      filepath.Join(root, "lib"),
	}
}

// Registry maps bitness to the toolchains that were actually found
type Registry map[Bitness]Toolchain

// Lookup returns the toolchain for bits if it was discovered
func (r Registry) Lookup(bits Bitness) (Toolchain, bool) {
	tc, ok := r[bits]
	return tc, ok
}

// Available lists discovered toolchains, 64-bit first
func (r Registry) Available() []Toolchain {
	list := make([]Toolchain, 0, len(r))
	for _, tc := range r {
		list = append(list, tc)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].Bitness > list[j].Bitness
	})

	return list
}

// Discoverer produces a registry. Missing toolchains are simply absent.
type Discoverer interface {
	Discover() (Registry, error)
}

// DirDiscoverer looks for mingw32/ and mingw64/ under Root
type DirDiscoverer struct {
	Root string
}

// Discover scans the fixed subdirectories. A toolchain counts as present
// when its bin directory holds the C++ compiler.
func (d DirDiscoverer) Discover() (Registry, error) {
	info, err := os.Stat(d.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return Registry{}, nil
		}

		return nil, fmt.Errorf("failed to read compilers directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("compilers path %s is not a directory", d.Root)
	}

	reg := Registry{}
	for _, bits := range []Bitness{Bits32, Bits64} {
		tc := New(bits, filepath.Join(d.Root, bits.ID()))
		if isFile(tc.CXXCompiler) {
			reg[bits] = tc
		}
	}

	return reg, nil
}

// Missing lists the well-known toolchains absent from reg
func Missing(reg Registry) []Bitness {
	var missing []Bitness
	for _, bits := range []Bitness{Bits32, Bits64} {
		if _, ok := reg[bits]; !ok {
			missing = append(missing, bits)
		}
	}

	return missing
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
