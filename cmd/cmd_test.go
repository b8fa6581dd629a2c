package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/cpplab/internal/process"
	"github.com/Norgate-AV/cpplab/internal/project"
	"github.com/Norgate-AV/cpplab/internal/toolchain"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

// fakeRunner pretends to be gcc and the built program
type fakeRunner struct {
	mu       sync.Mutex
	runs     []process.Command
	program  func(cmd process.Command) process.Outcome
	compiler func(cmd process.Command) process.Outcome
}

func (f *fakeRunner) Run(cmd process.Command) process.Outcome {
	f.mu.Lock()
	f.runs = append(f.runs, cmd)
	f.mu.Unlock()

	if strings.Contains(filepath.Base(cmd.Path), "g++") || strings.Contains(filepath.Base(cmd.Path), "gcc") {
		if f.compiler != nil {
			return f.compiler(cmd)
		}

		if i := slices.Index(cmd.Args, "-o"); i >= 0 {
			_ = os.WriteFile(cmd.Args[i+1], []byte("binary"), 0o755)
		}

		return process.Outcome{}
	}

	if f.program != nil {
		return f.program(cmd)
	}

	return process.Outcome{}
}

func (f *fakeRunner) Start(cmd process.Command) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.runs = append(f.runs, cmd)
	return 4242, nil
}

func useFakeRunner(t *testing.T) *fakeRunner {
	t.Helper()

	fake := &fakeRunner{}
	original := newRunner
	newRunner = func() process.Runner { return fake }
	t.Cleanup(func() { newRunner = original })

	return fake
}

// fakeCompilers lays out toolchains for the given bitnesses
func fakeCompilers(t *testing.T, bits ...toolchain.Bitness) string {
	t.Helper()

	dir := t.TempDir()
	for _, b := range bits {
		tc := toolchain.New(b, filepath.Join(dir, b.ID()))
		require.NoError(t, os.MkdirAll(filepath.Dir(tc.CXXCompiler), 0o755))
		require.NoError(t, os.WriteFile(tc.CXXCompiler, []byte("g++"), 0o755))
		require.NoError(t, os.WriteFile(tc.CCompiler, []byte("gcc"), 0o755))
	}

	return dir
}

func resetFlags(fs *pflag.FlagSet) {
	fs.VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	})
}

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	viper.Reset()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	for _, c := range append([]*cobra.Command{rootCmd}, rootCmd.Commands()...) {
		resetFlags(c.Flags())
		resetFlags(c.PersistentFlags())
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return buf.String(), err
}

func newProject(t *testing.T, opts project.CreateOptions) *project.Descriptor {
	t.Helper()

	d, err := project.Create(t.TempDir(), "demo", opts)
	require.NoError(t, err)

	return d
}

func TestResolveTarget(t *testing.T) {
	d := newProject(t, project.CreateOptions{})

	src := filepath.Join(t.TempDir(), "hello.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(void) { return 0; }"), 0o644))

	t.Run("project directory loads sidecar", func(t *testing.T) {
		got, err := resolveTarget(d.Root, project.SingleFileOptions{})
		require.NoError(t, err)
		assert.Equal(t, "demo", got.Name)
		assert.False(t, got.Standalone)
	})

	t.Run("source file gets synthetic descriptor", func(t *testing.T) {
		got, err := resolveTarget(src, project.SingleFileOptions{Standard: "c99"})
		require.NoError(t, err)
		assert.Equal(t, "hello", got.Name)
		assert.Equal(t, "c99", got.Standard)
		assert.True(t, got.Standalone)
	})

	t.Run("plain directory is rejected", func(t *testing.T) {
		_, err := resolveTarget(t.TempDir(), project.SingleFileOptions{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a project directory")
	})

	t.Run("missing path is rejected", func(t *testing.T) {
		_, err := resolveTarget(filepath.Join(t.TempDir(), "nope.c"), project.SingleFileOptions{})
		assert.Error(t, err)
	})

	t.Run("non-source file is rejected", func(t *testing.T) {
		txt := filepath.Join(t.TempDir(), "notes.txt")
		require.NoError(t, os.WriteFile(txt, []byte("hi"), 0o644))

		_, err := resolveTarget(txt, project.SingleFileOptions{})
		assert.Error(t, err)
	})
}

func TestDedupe(t *testing.T) {
	a := &project.Descriptor{Name: "a", Root: "/p/a", Language: project.C, Standard: "c11", Kind: project.Console, Files: []string{"main.c"}, MainFile: "main.c"}
	b := &project.Descriptor{Name: "b", Root: "/p/b", Language: project.C, Standard: "c11", Kind: project.Console, Files: []string{"main.c"}, MainFile: "main.c"}
	again := *a

	got, err := dedupe([]*project.Descriptor{a, b, &again})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Same(t, a, got[0])
	assert.Same(t, b, got[1])

	// Same artifact, different sources
	other := *a
	other.Files = []string{"other.c"}
	other.MainFile = "other.c"

	_, err = dedupe([]*project.Descriptor{a, &other})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both build")
}

func TestTargetArgs(t *testing.T) {
	assert.Equal(t, []string{"."}, targetArgs(nil))
	assert.Equal(t, []string{"x.c", "y.c"}, targetArgs([]string{"x.c", "y.c"}))
}

func TestSplitProgramArgs(t *testing.T) {
	c := &cobra.Command{}
	require.NoError(t, c.Flags().Parse([]string{"main.c", "--", "-n", "3"}))

	paths, programArgs := splitProgramArgs(c, c.Flags().Args())
	assert.Equal(t, []string{"main.c"}, paths)
	assert.Equal(t, []string{"-n", "3"}, programArgs)

	c = &cobra.Command{}
	require.NoError(t, c.Flags().Parse([]string{"main.c"}))

	paths, programArgs = splitProgramArgs(c, c.Flags().Args())
	assert.Equal(t, []string{"main.c"}, paths)
	assert.Nil(t, programArgs)
}

func TestBuildCommand(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits32, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})

	out, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "demo: build succeeded (mingw64")
	assert.FileExists(t, d.OutputPath())
	require.Len(t, fake.runs, 1)

	out, err = executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "demo: up to date")
	assert.Len(t, fake.runs, 1)

	out, err = executeCommand(t, "build", "--compilers", compilers, "--no-cache", "--force", d.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "build succeeded")
	assert.Len(t, fake.runs, 2)
}

func TestBuildCommand_DuplicateTargetsBuildOnce(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})

	_, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", "--jobs", "4", d.Root, d.Root)
	require.NoError(t, err)
	assert.Len(t, fake.runs, 1)
}

func TestBuildCommand_OutputCollision(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)

	dir := t.TempDir()
	cSrc := filepath.Join(dir, "prog.c")
	cppSrc := filepath.Join(dir, "prog.cpp")
	require.NoError(t, os.WriteFile(cSrc, []byte("int main(void) { return 0; }"), 0o644))
	require.NoError(t, os.WriteFile(cppSrc, []byte("int main() { return 0; }"), 0o644))

	_, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", cSrc, cppSrc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "prog.c")
	assert.Contains(t, err.Error(), "prog.cpp")
	assert.Empty(t, fake.runs, "nothing is compiled when targets collide")
}

func TestBuildCommand_NonIncremental(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})
	require.NoError(t, os.WriteFile(filepath.Join(d.Root, ".cpplabrc.yml"), []byte("incremental: false\n"), 0o644))

	_, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)

	out, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "build succeeded")
	assert.NotContains(t, out, "up to date")
	assert.Len(t, fake.runs, 2)
}

func TestBuildCommand_CompileFailure(t *testing.T) {
	fake := useFakeRunner(t)
	fake.compiler = func(cmd process.Command) process.Outcome {
		return process.Outcome{
			ExitCode: 1,
			Stderr:   "src/main.cpp:3:5: error: expected ';' before '}' token\n",
		}
	}
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})

	out, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 build(s) failed")
	assert.Contains(t, out, "src/main.cpp:3:5: error: expected ';' before '}' token")
	assert.Contains(t, out, "compile failure, 1 error(s), 0 warning(s)")
}

func TestBuildCommand_MissingToolchain(t *testing.T) {
	useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{Kind: project.Graphics})

	_, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.Error(t, err)
	assert.ErrorIs(t, err, toolchain.ErrNotFound)
}

func TestBuildCommand_UsesCache(t *testing.T) {
	useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	cacheDir := t.TempDir()
	d := newProject(t, project.CreateOptions{})

	_, err := executeCommand(t, "build", "--compilers", compilers, "--cache-dir", cacheDir, d.Root)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(cacheDir, "builds.db"))
}

func TestCheckCommand(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)

	src := filepath.Join(t.TempDir(), "broken.c")
	require.NoError(t, os.WriteFile(src, []byte("int main(void) { return 0 }"), 0o644))

	fake.compiler = func(cmd process.Command) process.Outcome {
		return process.Outcome{ExitCode: 1, Stderr: src + ":1:27: error: expected ';' before '}' token\n"}
	}

	out, err := executeCommand(t, "check", "--compilers", compilers, "--no-cache", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "check of broken failed")
	assert.Contains(t, out, "error: expected ';'")

	require.Len(t, fake.runs, 1)
	assert.Contains(t, fake.runs[0].Args, "-fsyntax-only")
	assert.Contains(t, fake.runs[0].Args, "-std=c11")
}

func TestRunCommand(t *testing.T) {
	fake := useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})

	t.Run("not built yet", func(t *testing.T) {
		_, err := executeCommand(t, "run", "--compilers", compilers, "--no-cache", d.Root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "build the project first")
	})

	t.Run("build then run with arguments", func(t *testing.T) {
		fake.program = func(cmd process.Command) process.Outcome {
			return process.Outcome{Stdout: "hello " + strings.Join(cmd.Args, " ") + "\n"}
		}

		out, err := executeCommand(t, "run", "--compilers", compilers, "--no-cache", "--build", d.Root, "--", "a", "b")
		require.NoError(t, err)
		assert.Contains(t, out, "hello a b")
	})

	t.Run("crash is described", func(t *testing.T) {
		fake.program = func(cmd process.Command) process.Outcome {
			return process.Outcome{ExitCode: 139}
		}

		_, err := executeCommand(t, "run", "--compilers", compilers, "--no-cache", d.Root)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Segmentation fault")
	})

	t.Run("detached", func(t *testing.T) {
		out, err := executeCommand(t, "run", "--compilers", compilers, "--no-cache", "--detach", d.Root)
		require.NoError(t, err)
		assert.Contains(t, out, "started demo (pid 4242)")
	})

	t.Run("detach and attach conflict", func(t *testing.T) {
		_, err := executeCommand(t, "run", "--compilers", compilers, "--no-cache", "--detach", "--attach", d.Root)
		assert.Error(t, err)
	})
}

func TestCleanCommand(t *testing.T) {
	useFakeRunner(t)
	compilers := fakeCompilers(t, toolchain.Bits64)
	d := newProject(t, project.CreateOptions{})

	_, err := executeCommand(t, "build", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)
	require.FileExists(t, d.OutputPath())

	out, err := executeCommand(t, "clean", "--compilers", compilers, "--no-cache", d.Root)
	require.NoError(t, err)
	assert.Contains(t, out, "cleaned demo")
	assert.NoFileExists(t, d.OutputPath())
	assert.DirExists(t, d.OutputDir())
}

func TestDetectCommand(t *testing.T) {
	src := filepath.Join(t.TempDir(), "draw.cpp")
	content := "#include <graphics.h>\n#pragma omp parallel\nint main() {}\n"
	require.NoError(t, os.WriteFile(src, []byte(content), 0o644))

	out, err := executeCommand(t, "detect", src)
	require.NoError(t, err)
	assert.Contains(t, out, "graphics: yes")
	assert.Contains(t, out, "openmp:   yes (ignored")

	_, err = executeCommand(t, "detect", "README.md")
	assert.Error(t, err)
}

func TestToolchainsCommand(t *testing.T) {
	compilers := fakeCompilers(t, toolchain.Bits64)

	out, err := executeCommand(t, "toolchains", "--compilers", compilers)
	require.NoError(t, err)
	assert.Contains(t, out, "mingw64")
	assert.Contains(t, out, "mingw32  not installed")
}

func TestNewCommand(t *testing.T) {
	parent := t.TempDir()

	out, err := executeCommand(t, "new", "hello", "--lang", "c", "--openmp", "--dir", parent)
	require.NoError(t, err)
	assert.Contains(t, out, "created c project hello (c11)")

	d, err := project.Load(filepath.Join(parent, "hello"))
	require.NoError(t, err)
	assert.Equal(t, project.C, d.Language)
	assert.True(t, d.Features.OpenMP)

	_, err = executeCommand(t, "new", "hello", "--dir", parent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = executeCommand(t, "new", "bad", "--lang", "rust", "--dir", parent)
	assert.Error(t, err)
}
