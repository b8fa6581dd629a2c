package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/kballard/go-shellquote"

	"github.com/Norgate-AV/cpplab/internal/builder"
	"github.com/Norgate-AV/cpplab/internal/diagnostics"
	"github.com/Norgate-AV/cpplab/internal/project"
)

var (
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	noteColor    = color.New(color.FgCyan)
	okColor      = color.New(color.FgGreen, color.Bold)
	dimColor     = color.New(color.Faint)
)

func severityColor(sev diagnostics.Severity) *color.Color {
	switch sev {
	case diagnostics.Error:
		return errorColor
	case diagnostics.Warning:
		return warningColor
	default:
		return noteColor
	}
}

// printDiagnostics renders diagnostics the way gcc does, with the severity coloured
func printDiagnostics(w io.Writer, diags []diagnostics.Diagnostic) {
	for _, d := range diags {
		loc := fmt.Sprintf("%s:%d", d.File, d.Line)
		if d.Column > 0 {
			loc = fmt.Sprintf("%s:%d", loc, d.Column)
		}

		fmt.Fprintf(w, "%s: %s %s\n", loc, severityColor(d.Severity).Sprintf("%s:", d.Severity), d.Message)
	}
}

// printCompileResult reports a build or check of d
func printCompileResult(w io.Writer, d *project.Descriptor, action string, res *builder.Result, verbose bool) {
	if verbose && len(res.Command) > 0 {
		dimColor.Fprintf(w, "$ %s\n", shellquote.Join(res.Command...))
	}

	printDiagnostics(w, res.Diagnostics)

	switch {
	case res.Skipped:
		fmt.Fprintf(w, "%s %s: up to date\n", okColor.Sprint("✓"), d.Name)
	case res.Success:
		fmt.Fprintf(w, "%s %s: %s succeeded (%s, %dms)\n", okColor.Sprint("✓"), d.Name, action, res.Toolchain, res.ElapsedMS())
	default:
		// Linker and launch errors never parse as diagnostics, so show the raw output
		if len(res.Diagnostics) == 0 && res.Stderr != "" {
			fmt.Fprint(w, res.Stderr)
			if res.Stderr[len(res.Stderr)-1] != '\n' {
				fmt.Fprintln(w)
			}
		}

		errs := diagnostics.Count(res.Diagnostics, diagnostics.Error)
		warns := diagnostics.Count(res.Diagnostics, diagnostics.Warning)
		fmt.Fprintf(w, "%s %s: %s failed (%s, %d error(s), %d warning(s))\n",
			errorColor.Sprint("✗"), d.Name, action, res.Failure, errs, warns)
	}
}
