// Package builder orchestrates builds, syntax checks and runs of a project.
//
// Every entry point is synchronous and blocks for the lifetime of the child
// process it starts. Callers that must stay responsive dispatch these calls
// onto their own goroutine. Two concurrent builds of the same descriptor race
// on the output artifact; serialising them is up to the caller.
//
// Structural problems (invalid descriptor, missing toolchain) are returned as
// errors before any process starts. Compile and run outcomes, including a
// compiler that cannot be launched, are always reported through Result.
package builder

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog"

	"github.com/Norgate-AV/cpplab/internal/cache"
	"github.com/Norgate-AV/cpplab/internal/compiler"
	"github.com/Norgate-AV/cpplab/internal/diagnostics"
	"github.com/Norgate-AV/cpplab/internal/process"
	"github.com/Norgate-AV/cpplab/internal/profiling"
	"github.com/Norgate-AV/cpplab/internal/project"
	"github.com/Norgate-AV/cpplab/internal/toolchain"
	"github.com/Norgate-AV/cpplab/internal/utils"
)

// Fingerprints remembers the command that produced each artifact
type Fingerprints interface {
	Get(output string) (*cache.Entry, error)
	Put(entry *cache.Entry) error
	Delete(output string) error
}

// Options wire the builder's collaborators. Zero values are usable.
type Options struct {
	// Runner defaults to process.NewExecRunner()
	Runner process.Runner

	// Profiler defaults to profiling.Nop
	Profiler profiling.Recorder

	// Cache is optional; without it only timestamps decide rebuilds
	Cache Fingerprints

	// Logger defaults to a disabled logger
	Logger *zerolog.Logger
}

// Builder runs the compiler and built programs
type Builder struct {
	runner   process.Runner
	profiler profiling.Recorder
	cache    Fingerprints
	log      zerolog.Logger
}

// New creates a builder from opts
func New(opts Options) *Builder {
	b := &Builder{
		runner:   opts.Runner,
		profiler: opts.Profiler,
		cache:    opts.Cache,
		log:      zerolog.Nop(),
	}

	if b.runner == nil {
		b.runner = process.NewExecRunner()
	}

	if b.profiler == nil {
		b.profiler = profiling.Nop{}
	}

	if opts.Logger != nil {
		b.log = *opts.Logger
	}

	return b
}

// Build compiles and links d unless the artifact is already up to date.
// force skips the up-to-date check.
func (b *Builder) Build(d *project.Descriptor, reg toolchain.Registry, force bool) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	tc, err := toolchain.Select(d, reg)
	if err != nil {
		return nil, err
	}

	output := d.OutputPath()
	sources := d.SourcePaths()
	cmd := compiler.Compose(d, tc, compiler.CompileAndLink, sources, output)
	argv := cmd.Argv()
	fingerprint := cache.Fingerprint(tc.ID(), argv)

	if !force && b.upToDate(output, sources, fingerprint) {
		b.log.Info().Str("project", d.Name).Str("output", output).Msg("up to date, skipping build")

		res := &Result{
			Success:        true,
			Command:        argv,
			ExecutablePath: output,
			Skipped:        true,
			Toolchain:      tc.ID(),
		}
		b.record(d, res, compiler.CompileAndLink)

		return res, nil
	}

	if err := os.MkdirAll(d.OutputDir(), 0o755); err != nil {
		res := &Result{
			Failure:   FailureLaunch,
			Command:   argv,
			Stderr:    fmt.Sprintf("failed to create output directory: %v", err),
			ExitCode:  -1,
			Toolchain: tc.ID(),
		}
		b.record(d, res, compiler.CompileAndLink)

		return res, nil
	}

	res := b.compile(d, tc, cmd)
	if res.Success {
		res.ExecutablePath = output
		b.remember(output, tc, res, fingerprint)
	}

	b.record(d, res, compiler.CompileAndLink)

	return res, nil
}

// Check runs the compiler in syntax-only mode. It never reads or updates
// incremental state and never produces an executable.
func (b *Builder) Check(d *project.Descriptor, reg toolchain.Registry) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	tc, err := toolchain.Select(d, reg)
	if err != nil {
		return nil, err
	}

	cmd := compiler.Compose(d, tc, compiler.SyntaxOnly, d.SourcePaths(), "")
	res := b.compile(d, tc, cmd)
	b.record(d, res, compiler.SyntaxOnly)

	return res, nil
}

func (b *Builder) compile(d *project.Descriptor, tc toolchain.Toolchain, cmd *compiler.ShellCommand) *Result {
	argv := cmd.Argv()
	b.log.Debug().Str("toolchain", tc.ID()).Msgf("running %s", shellquote.Join(argv...))

	out := b.runner.Run(process.Command{
		Path: cmd.Path,
		Args: cmd.Args,
		Dir:  d.Root,
		Env:  process.Environ(tc.BinDir()),
	})

	res := &Result{
		Command:   argv,
		Stdout:    out.Stdout,
		Stderr:    out.Stderr,
		Elapsed:   out.Elapsed,
		ExitCode:  out.ExitCode,
		Toolchain: tc.ID(),
	}

	switch {
	case !out.Launched():
		res.Failure = FailureLaunch
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("failed to launch compiler %s: %v", cmd.Path, out.Err))
	case out.ExitCode != 0:
		res.Failure = FailureCompile
	default:
		res.Success = true
	}

	res.Diagnostics = append(diagnostics.Parse(out.Stderr), diagnostics.Parse(out.Stdout)...)

	b.log.Debug().
		Bool("success", res.Success).
		Int("exit_code", res.ExitCode).
		Int64("elapsed_ms", res.ElapsedMS()).
		Int("diagnostics", len(res.Diagnostics)).
		Msg("compiler finished")

	return res
}

// upToDate applies the timestamp rule, then rejects artifacts whose recorded
// command differs from the one about to run.
func (b *Builder) upToDate(output string, sources []string, fingerprint string) bool {
	if !utils.UpToDate(output, sources) {
		return false
	}

	if b.cache == nil {
		return true
	}

	entry, err := b.cache.Get(output)
	if err != nil {
		b.log.Warn().Err(err).Msg("build cache unavailable, trusting timestamps")
		return true
	}

	if entry == nil {
		return true
	}

	if entry.Fingerprint != fingerprint {
		b.log.Debug().Str("output", output).Msg("compiler command changed since last build")
		return false
	}

	return true
}

func (b *Builder) remember(output string, tc toolchain.Toolchain, res *Result, fingerprint string) {
	if b.cache == nil {
		return
	}

	err := b.cache.Put(&cache.Entry{
		Output:      output,
		Fingerprint: fingerprint,
		Toolchain:   tc.ID(),
		Command:     res.Command,
		Timestamp:   time.Now().UTC(),
		ElapsedMS:   res.ElapsedMS(),
	})
	if err != nil {
		b.log.Warn().Err(err).Msg("failed to update build cache")
	}
}

func (b *Builder) record(d *project.Descriptor, res *Result, mode compiler.Mode) {
	b.profiler.Record(profiling.Record{
		Project:   d,
		Toolchain: res.Toolchain,
		Mode:      mode.String(),
		Success:   res.Success,
		Skipped:   res.Skipped,
		Elapsed:   res.Elapsed,
	})
}

// RunMode decides whether Run waits for the program
type RunMode int

const (
	// RunAuto detaches graphics and OpenMP programs and waits for the rest
	RunAuto RunMode = iota
	RunAttached
	RunDetached
)

// RunOptions configure a program run
type RunOptions struct {
	Mode RunMode
	// Args are passed to the program
	Args []string
	// Stdin feeds attached runs
	Stdin io.Reader
}

// Run starts the previously built artifact of d. It never builds implicitly.
func (b *Builder) Run(d *project.Descriptor, reg toolchain.Registry, opts RunOptions) (*Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	exe := d.OutputPath()
	if info, err := os.Stat(exe); err != nil || info.IsDir() {
		return &Result{
			Failure:  FailureRunNotReady,
			Stderr:   fmt.Sprintf("no executable at %s: build the project first", exe),
			ExitCode: -1,
		}, nil
	}

	tc, err := toolchain.Select(d, reg)
	if err != nil {
		return nil, err
	}

	cmd := process.Command{
		Path:  exe,
		Args:  opts.Args,
		Dir:   d.Root,
		Env:   process.Environ(tc.BinDir()),
		Stdin: opts.Stdin,
	}
	argv := append([]string{exe}, opts.Args...)

	if detached(d, opts.Mode) {
		start := time.Now()
		pid, err := b.runner.Start(cmd)
		elapsed := time.Since(start)

		if err != nil {
			return &Result{
				Failure:   FailureLaunch,
				Command:   argv,
				Stderr:    fmt.Sprintf("failed to start %s: %v", exe, err),
				Elapsed:   elapsed,
				ExitCode:  -1,
				Toolchain: tc.ID(),
				Detached:  true,
			}, nil
		}

		b.log.Debug().Int("pid", pid).Msgf("started %s", shellquote.Join(argv...))

		return &Result{
			Success:        true,
			Command:        argv,
			ExecutablePath: exe,
			Elapsed:        elapsed,
			Toolchain:      tc.ID(),
			Detached:       true,
			PID:            pid,
		}, nil
	}

	b.log.Debug().Msgf("running %s", shellquote.Join(argv...))
	out := b.runner.Run(cmd)

	res := &Result{
		Command:        argv,
		Stdout:         out.Stdout,
		Stderr:         out.Stderr,
		ExecutablePath: exe,
		Elapsed:        out.Elapsed,
		ExitCode:       out.ExitCode,
		Toolchain:      tc.ID(),
	}

	switch {
	case !out.Launched():
		res.Failure = FailureLaunch
		res.Stderr = appendLine(res.Stderr, fmt.Sprintf("failed to start %s: %v", exe, out.Err))
	case out.ExitCode != 0:
		res.Failure = FailureRun
	default:
		res.Success = true
	}

	return res, nil
}

func detached(d *project.Descriptor, mode RunMode) bool {
	switch mode {
	case RunAttached:
		return false
	case RunDetached:
		return true
	}

	feats := d.EffectiveFeatures()
	return feats.Graphics || feats.OpenMP
}

// Clean removes the build output of d and forgets its fingerprint.
// Projects lose their whole build directory, standalone files only the artifact.
func (b *Builder) Clean(d *project.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	output := d.OutputPath()

	if b.cache != nil {
		if err := b.cache.Delete(output); err != nil {
			b.log.Warn().Err(err).Msg("failed to drop build cache entry")
		}
	}

	if d.Standalone {
		if err := os.Remove(output); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove %s: %w", output, err)
		}

		return nil
	}

	dir := d.OutputDir()
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove build directory: %w", err)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to recreate build directory: %w", err)
	}

	return nil
}

func appendLine(s, line string) string {
	if s != "" && s[len(s)-1] != '\n' {
		s += "\n"
	}

	return s + line
}
