// Package profiling appends one JSON record per build to an opt-in log.
// Writing the log must never fail a build, so errors are only logged.
package profiling

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Norgate-AV/cpplab/internal/project"
)

// DefaultLogName is written in the project root when no path is configured
const DefaultLogName = "build_profile.jsonl"

// Record is everything one profiling line carries
type Record struct {
	Project   *project.Descriptor
	Toolchain string
	Mode      string
	Success   bool
	Skipped   bool
	Elapsed   time.Duration
}

// Recorder accepts build records
type Recorder interface {
	Record(rec Record)
}

// Nop discards records. Used when profiling is off.
type Nop struct{}

func (Nop) Record(Record) {}

// FileSink appends records to a JSON lines file
type FileSink struct {
	// Path overrides the per-project default log location
	Path string

	log zerolog.Logger
	mu  sync.Mutex
	now func() time.Time
}

// New returns a FileSink when enabled and Nop otherwise
func New(enabled bool, path string, log zerolog.Logger) Recorder {
	if !enabled {
		return Nop{}
	}

	return &FileSink{
		Path: path,
		log:  log,
		now:  time.Now,
	}
}

// LogPath returns where the record for d is written
func (s *FileSink) LogPath(d *project.Descriptor) string {
	if s.Path != "" {
		return s.Path
	}

	return filepath.Join(d.Root, DefaultLogName)
}

// Record appends one self-contained line. Failures are logged and dropped.
func (s *FileSink) Record(rec Record) {
	if rec.Project == nil {
		return
	}

	path := s.LogPath(rec.Project)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("profiling disabled for this build")
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("profiling disabled for this build")
		return
	}

	defer f.Close()

	d := rec.Project
	feats := d.EffectiveFeatures()

	line := zerolog.New(f)
	line.Log().
		Str("timestamp", s.now().UTC().Format(time.RFC3339Nano)).
		Str("project_name", d.Name).
		Str("project_root", d.Root).
		Str("language", string(d.Language)).
		Str("standard", d.Standard).
		Str("project_type", string(d.Kind)).
		Bool("graphics", feats.Graphics).
		Bool("openmp", feats.OpenMP).
		Str("feature_origin", d.Features.Origin.String()).
		Str("toolchain", rec.Toolchain).
		Str("mode", rec.Mode).
		Bool("success", rec.Success).
		Bool("skipped", rec.Skipped).
		Int64("elapsed_ms", rec.Elapsed.Milliseconds()).
		Send()
}
