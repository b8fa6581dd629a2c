package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Norgate-AV/cpplab/internal/builder"
)

var buildCmd = &cobra.Command{
	Use:   "build [path...]",
	Short: "Build projects or source files",
	Long: `Compile and link each project directory or source file. Targets that are
already up to date are skipped unless --force is given. Several targets are
built concurrently.`,
	RunE:         runBuild,
	SilenceUsage: true,
}

func init() {
	buildCmd.Flags().BoolP("force", "f", false, "Rebuild even if up to date")
	buildCmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Number of targets to build at once")
}

func runBuild(cmd *cobra.Command, args []string) error {
	args = targetArgs(args)

	force, _ := cmd.Flags().GetBool("force")
	jobs, _ := cmd.Flags().GetInt("jobs")
	if jobs < 1 {
		jobs = 1
	}

	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	if !s.cfg.Incremental {
		force = true
	}

	targets, err := s.resolveAll(args)
	if err != nil {
		return err
	}

	results := make([]*builder.Result, len(targets))

	var g errgroup.Group
	g.SetLimit(jobs)

	for i, d := range targets {
		g.Go(func() error {
			res, err := s.builder.Build(d, s.registry, force)
			if err != nil {
				return fmt.Errorf("%s: %w", d.Name, err)
			}

			results[i] = res
			return nil
		})
	}

	buildErr := g.Wait()

	out := cmd.OutOrStdout()
	failed := 0

	for i, res := range results {
		if res == nil {
			continue
		}

		printCompileResult(out, targets[i], "build", res, s.cfg.Verbose)
		if !res.Success {
			failed++
		}
	}

	if buildErr != nil {
		return buildErr
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d build(s) failed", failed, len(targets))
	}

	return nil
}
