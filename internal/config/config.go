package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Norgate-AV/cpplab/internal/project"
)

// Default configuration values
const (
	AppName            = "cpplab"
	DefaultLayout      = string(project.LayoutBuildDir)
	DefaultToolchain   = string(project.PreferAuto)
	DefaultNoCache     = false
	DefaultIncremental = true
	DefaultVerbose     = false

	// ProfileEnvVar enables build profiling when set to any non-empty value
	ProfileEnvVar = "CPPLAB_PROFILE_BUILDS"
)

// Holds the configuration options for cpplab
type Config struct {
	// Directory containing the mingw32/ and mingw64/ toolchains
	CompilersDir string

	// Directory holding the build fingerprint database
	CacheDir string
	// Disable the fingerprint database
	NoCache bool
	// Skip up-to-date artifacts. When false every build recompiles.
	Incremental bool

	// Profiling is read once from ProfileEnvVar at startup
	Profiling bool
	// Profile log location, empty for <project root>/build_profile.jsonl
	ProfileLog string

	// Overrides for loose source files
	Standard  string
	Toolchain string
	Layout    string

	// Enable verbose output
	Verbose bool
}

func Load() (*Config, error) {
	cfg := &Config{
		CompilersDir: viper.GetString("compilers_dir"),
		CacheDir:     viper.GetString("cache_dir"),
		NoCache:      viper.GetBool("no_cache"),
		Incremental:  !viper.IsSet("incremental") || viper.GetBool("incremental"),
		Profiling:    os.Getenv(ProfileEnvVar) != "",
		ProfileLog:   viper.GetString("profile_log"),
		Standard:     viper.GetString("standard"),
		Toolchain:    viper.GetString("toolchain"),
		Layout:       viper.GetString("layout"),
		Verbose:      viper.GetBool("verbose"),
	}

	// Apply defaults if not set
	if cfg.CompilersDir == "" {
		cfg.CompilersDir = DefaultCompilersDir()
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheDir()
	}

	if cfg.Toolchain == "" {
		cfg.Toolchain = DefaultToolchain
	}

	if cfg.Layout == "" {
		cfg.Layout = DefaultLayout
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if abs, err := filepath.Abs(c.CompilersDir); err == nil {
		c.CompilersDir = abs
	}

	if c.CacheDir != "" {
		abs, err := filepath.Abs(c.CacheDir)
		if err != nil {
			return fmt.Errorf("invalid cache directory: %v", err)
		}

		c.CacheDir = abs
	}

	if c.ProfileLog != "" {
		abs, err := filepath.Abs(c.ProfileLog)
		if err != nil {
			return fmt.Errorf("invalid profile log path: %v", err)
		}

		c.ProfileLog = abs
	}

	switch project.Layout(c.Layout) {
	case project.LayoutBuildDir, project.LayoutBeside:
	default:
		return fmt.Errorf("invalid layout: %s (expected build or beside)", c.Layout)
	}

	switch project.Preference(c.Toolchain) {
	case project.PreferAuto, project.PreferMinGW32, project.PreferMinGW64:
	default:
		return fmt.Errorf("invalid toolchain preference: %s (expected auto, mingw32 or mingw64)", c.Toolchain)
	}

	return nil
}

// SingleFileOptions returns the overrides for a synthetic single-file descriptor
func (c *Config) SingleFileOptions() project.SingleFileOptions {
	return project.SingleFileOptions{
		Standard:  c.Standard,
		Toolchain: project.Preference(c.Toolchain),
		Layout:    project.Layout(c.Layout),
	}
}

// DefaultCompilersDir is the compilers/ directory next to the executable
func DefaultCompilersDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "compilers"
	}

	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	return filepath.Join(filepath.Dir(exe), "compilers")
}

// DefaultCacheDir is the per-user cache directory, or empty when unknown
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, AppName)
}
