package builder

import (
	"time"

	"github.com/Norgate-AV/cpplab/internal/diagnostics"
)

// FailureKind classifies an unsuccessful result
type FailureKind int

const (
	FailureNone FailureKind = iota
	// FailureCompile means the compiler ran and exited non-zero
	FailureCompile
	// FailureLaunch means the process could not be started
	FailureLaunch
	// FailureRunNotReady means run was asked for before any artifact existed
	FailureRunNotReady
	// FailureRun means the program ran and exited non-zero
	FailureRun
)

func (k FailureKind) String() string {
	switch k {
	case FailureCompile:
		return "compile failure"
	case FailureLaunch:
		return "launch failure"
	case FailureRunNotReady:
		return "no artifact"
	case FailureRun:
		return "run failure"
	default:
		return "none"
	}
}

// Result of one build, check or run. Built once and never modified.
type Result struct {
	Success bool
	Failure FailureKind

	// Command is the exact argv used, executable first
	Command []string
	Stdout  string
	Stderr  string

	// ExecutablePath is only set for successful builds and runs
	ExecutablePath string

	Elapsed time.Duration
	// Skipped is true when the artifact was already up to date
	Skipped bool

	ExitCode    int
	Diagnostics []diagnostics.Diagnostic

	// Toolchain is the id of the toolchain used
	Toolchain string

	// Detached runs report the child's pid and no output
	Detached bool
	PID      int
}

// ElapsedMS is the wall time in whole milliseconds
func (r *Result) ElapsedMS() int64 {
	return r.Elapsed.Milliseconds()
}
