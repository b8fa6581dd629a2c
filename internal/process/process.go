// Package process is the one platform-dependent boundary of the build core:
// launch an external program, capture its streams and exit status, and time
// it from creation to exit.
package process

import (
	"bytes"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Command describes one external process
type Command struct {
	Path  string
	Args  []string
	Dir   string
	Env   []string
	Stdin io.Reader
}

// Outcome of a process that was waited on
type Outcome struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Elapsed  time.Duration

	// Err is set when the process could not be launched at all.
	// A non-zero exit status is not an error.
	Err error
}

// Launched reports whether the process actually started
func (o Outcome) Launched() bool {
	return o.Err == nil
}

// Runner executes commands synchronously or detached
type Runner interface {
	// Run blocks until the process exits
	Run(cmd Command) Outcome
	// Start launches the process detached from the caller and returns its pid
	Start(cmd Command) (int, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	execCommand func(name string, args ...string) *exec.Cmd
}

// NewExecRunner creates a runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		execCommand: exec.Command,
	}
}

func (r *ExecRunner) prepare(cmd Command) *exec.Cmd {
	c := r.execCommand(cmd.Path, cmd.Args...)
	c.Dir = cmd.Dir
	c.Env = cmd.Env
	c.Stdin = cmd.Stdin

	return c
}

// Run executes cmd and captures stdout, stderr and the exit code
func (r *ExecRunner) Run(cmd Command) Outcome {
	c := r.prepare(cmd)

	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	start := time.Now()
	err := c.Run()
	elapsed := time.Since(start)

	out := Outcome{
		Stdout:  stdout.String(),
		Stderr:  stderr.String(),
		Elapsed: elapsed,
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out
		}

		out.ExitCode = -1
		out.Err = err
	}

	return out
}

// Start launches cmd in its own session (or console on Windows) and releases
// it, so the program outlives the caller's wait.
// The program never shares the caller's stdin.
func (r *ExecRunner) Start(cmd Command) (int, error) {
	cmd.Stdin = nil

	c := r.prepare(cmd)
	detach(c)

	if err := c.Start(); err != nil {
		return 0, err
	}

	pid := c.Process.Pid

	// Reap in the background so no zombie is left behind on POSIX
	go func() { _ = c.Wait() }()

	return pid, nil
}

// WithPath returns env with dir prepended to PATH
func WithPath(env []string, dir string) []string {
	out := make([]string, 0, len(env)+1)
	found := false

	for _, kv := range env {
		key, value, ok := strings.Cut(kv, "=")
		if ok && strings.EqualFold(key, "PATH") && !found {
			found = true
			if value == "" {
				kv = key + "=" + dir
			} else {
				kv = key + "=" + dir + string(filepath.ListSeparator) + value
			}
		}

		out = append(out, kv)
	}

	if !found {
		out = append(out, "PATH="+dir)
	}

	return out
}

// Environ is the current environment with dir prepended to PATH
func Environ(dir string) []string {
	return WithPath(os.Environ(), dir)
}
