// Package compiler composes the gcc/g++ invocation for a build unit.
package compiler

import (
	"github.com/Norgate-AV/cpplab/internal/project"
	"github.com/Norgate-AV/cpplab/internal/toolchain"
)

// Mode selects what the compiler is asked to produce
type Mode int

const (
	// CompileAndLink produces a linked executable
	CompileAndLink Mode = iota
	// SyntaxOnly only reports diagnostics and writes no artifact
	SyntaxOnly
)

func (m Mode) String() string {
	if m == SyntaxOnly {
		return "check"
	}

	return "build"
}

const (
	SyntaxOnlyFlag = "-fsyntax-only"
	OpenMPFlag     = "-fopenmp"
	OutputFlag     = "-o"
)

// GraphicsLibs are the WinBGIm support libraries, in link order
var GraphicsLibs = []string{"-lbgi", "-lgdi32", "-lcomdlg32", "-luuid", "-loleaut32", "-lole32"}

type ShellCommand struct {
	Path string
	Args []string
}

// Argv returns the executable followed by its arguments
func (c *ShellCommand) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Path)

	return append(argv, c.Args...)
}

// StandardFlag renders the -std flag for a validated standard token
func StandardFlag(std string) string {
	return "-std=" + std
}

// Compose builds the compiler command. It never fails: the descriptor must
// already have passed validation. outputPath is ignored in SyntaxOnly mode.
func Compose(d *project.Descriptor, tc toolchain.Toolchain, mode Mode, sources []string, outputPath string) *ShellCommand {
	exe := tc.CXXCompiler
	if d.Language == project.C {
		exe = tc.CCompiler
	}

	feats := d.EffectiveFeatures()

	var cmdArgs []string
	cmdArgs = append(cmdArgs, StandardFlag(d.Standard))

	switch mode {
	case SyntaxOnly:
		cmdArgs = append(cmdArgs, SyntaxOnlyFlag)
	default:
		cmdArgs = append(cmdArgs, OutputFlag, outputPath)
	}

	if feats.Graphics {
		cmdArgs = append(cmdArgs, "-I"+tc.IncludeDir)

		// Syntax checks never reach the linker
		if mode == CompileAndLink {
			cmdArgs = append(cmdArgs, "-L"+tc.LibDir)
			cmdArgs = append(cmdArgs, GraphicsLibs...)
		}
	}

	if feats.OpenMP {
		cmdArgs = append(cmdArgs, OpenMPFlag)
	}

	cmdArgs = append(cmdArgs, sources...)

	return &ShellCommand{
		Path: exe,
		Args: cmdArgs,
	}
}
