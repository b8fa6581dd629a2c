package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/builder"
	"github.com/Norgate-AV/cpplab/internal/cache"
	"github.com/Norgate-AV/cpplab/internal/config"
	"github.com/Norgate-AV/cpplab/internal/logging"
	"github.com/Norgate-AV/cpplab/internal/process"
	"github.com/Norgate-AV/cpplab/internal/profiling"
	"github.com/Norgate-AV/cpplab/internal/project"
	"github.com/Norgate-AV/cpplab/internal/toolchain"
)

// newRunner is swapped out in tests
var newRunner = func() process.Runner {
	return process.NewExecRunner()
}

// session holds everything a build-like command needs
type session struct {
	cfg      *config.Config
	log      zerolog.Logger
	registry toolchain.Registry
	builder  *builder.Builder
	cache    *cache.Cache
}

func loadConfig(cmd *cobra.Command, args []string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.NewLoader().LoadForCommand(cmd, args)
	if err != nil {
		return nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, logging.New(cmd.ErrOrStderr(), cfg.Verbose), nil
}

func newSession(cmd *cobra.Command, args []string) (*session, error) {
	cfg, log, err := loadConfig(cmd, args)
	if err != nil {
		return nil, err
	}

	log.Debug().Str("compilers", cfg.CompilersDir).Msg("discovering toolchains")

	reg, err := toolchain.DirDiscoverer{Root: cfg.CompilersDir}.Discover()
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		log:      log,
		registry: reg,
	}

	opts := builder.Options{
		Runner:   newRunner(),
		Profiler: profiling.New(cfg.Profiling, cfg.ProfileLog, log),
		Logger:   &s.log,
	}

	if !cfg.NoCache && cfg.CacheDir != "" {
		c, err := cache.New(cfg.CacheDir)
		if err != nil {
			log.Warn().Err(err).Msg("build cache unavailable, falling back to timestamps")
		} else {
			s.cache = c
			opts.Cache = c
		}
	}

	s.builder = builder.New(opts)

	return s, nil
}

func (s *session) Close() {
	if s.cache == nil {
		return
	}

	if err := s.cache.Close(); err != nil {
		s.log.Warn().Err(err).Msg("failed to close build cache")
	}
}

// resolve turns a path into a descriptor: project directories load their
// sidecar, source files get a synthetic descriptor.
func (s *session) resolve(path string) (*project.Descriptor, error) {
	return resolveTarget(path, s.cfg.SingleFileOptions())
}

// resolveAll resolves every path and drops repeated targets
func (s *session) resolveAll(paths []string) ([]*project.Descriptor, error) {
	var targets []*project.Descriptor

	for _, path := range paths {
		d, err := s.resolve(path)
		if err != nil {
			return nil, err
		}

		targets = append(targets, d)
	}

	return dedupe(targets)
}

func resolveTarget(path string, opts project.SingleFileOptions) (*project.Descriptor, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("cannot access %s: %w", path, err)
	}

	if !info.IsDir() {
		return project.ForSingleFile(abs, opts)
	}

	if !project.IsProjectDir(abs) {
		return nil, fmt.Errorf("%s is not a project directory (no %s)", path, project.SidecarName)
	}

	return project.Load(abs)
}

// dedupe drops targets that repeat an earlier one. Distinct targets that
// would write the same artifact are an error.
func dedupe(targets []*project.Descriptor) ([]*project.Descriptor, error) {
	seen := make(map[string]*project.Descriptor, len(targets))
	unique := make([]*project.Descriptor, 0, len(targets))

	for _, d := range targets {
		out := d.OutputPath()

		prev, ok := seen[out]
		if !ok {
			seen[out] = d
			unique = append(unique, d)
			continue
		}

		if !sameTarget(prev, d) {
			return nil, fmt.Errorf("%s and %s both build %s",
				describeTarget(prev), describeTarget(d), out)
		}
	}

	return unique, nil
}

func sameTarget(a, b *project.Descriptor) bool {
	return a.Root == b.Root && slices.Equal(a.SourcePaths(), b.SourcePaths())
}

func describeTarget(d *project.Descriptor) string {
	if d.Standalone {
		return d.SourcePaths()[0]
	}

	return d.Root
}

// targetArgs defaults to the current directory
func targetArgs(args []string) []string {
	if len(args) == 0 {
		return []string{"."}
	}

	return args
}
