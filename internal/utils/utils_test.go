package utils

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutableName(t *testing.T) {
	tests := []struct {
		base     string
		goos     string
		expected string
	}{
		{"hello", "windows", "hello.exe"},
		{"hello.exe", "windows", "hello.exe"},
		{"HELLO.EXE", "windows", "HELLO.EXE"},
		{"hello", "linux", "hello"},
		{"hello", "darwin", "hello"},
	}

	for _, test := range tests {
		result := executableName(test.base, test.goos)
		assert.Equal(t, test.expected, result, "executableName(%q, %q)", test.base, test.goos)
	}
}

func touch(t *testing.T, path string, mtime time.Time) {
	t.Helper()

	err := os.WriteFile(path, []byte("x"), 0o644)
	require.NoError(t, err)

	err = os.Chtimes(path, mtime, mtime)
	require.NoError(t, err)
}

func TestUpToDate(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour).Truncate(time.Second)

	src1 := filepath.Join(dir, "a.cpp")
	src2 := filepath.Join(dir, "b.cpp")
	out := filepath.Join(dir, "app")

	touch(t, src1, base)
	touch(t, src2, base.Add(time.Minute))

	// No artifact yet
	assert.False(t, UpToDate(out, []string{src1, src2}))

	// Artifact newer than every input
	touch(t, out, base.Add(2*time.Minute))
	assert.True(t, UpToDate(out, []string{src1, src2}))

	// Same timestamp is not older
	touch(t, out, base.Add(time.Minute))
	assert.True(t, UpToDate(out, []string{src1, src2}))

	// One input modified after the build
	touch(t, src1, base.Add(3*time.Minute))
	assert.False(t, UpToDate(out, []string{src1, src2}))

	// Missing input forces a rebuild
	touch(t, out, base.Add(5*time.Minute))
	assert.False(t, UpToDate(out, []string{src1, filepath.Join(dir, "gone.cpp")}))

	// A directory is never a valid artifact
	assert.False(t, UpToDate(dir, []string{src1}))
}
