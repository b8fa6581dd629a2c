package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/builder"
	"github.com/Norgate-AV/cpplab/internal/codes"
)

var runCmd = &cobra.Command{
	Use:   "run [path] [-- program args...]",
	Short: "Run the built program of a project or source file",
	Long: `Run the previously built executable. Graphics and OpenMP programs are
started in their own console and not waited for; everything else runs
attached with its output shown here. Use --build to build first.`,
	RunE:         runRun,
	SilenceUsage: true,
}

func init() {
	runCmd.Flags().Bool("detach", false, "Always start the program in its own console")
	runCmd.Flags().Bool("attach", false, "Always wait for the program and show its output")
	runCmd.Flags().BoolP("build", "b", false, "Build before running if out of date")
	runCmd.MarkFlagsMutuallyExclusive("detach", "attach")
}

// splitProgramArgs separates target paths from arguments after "--"
func splitProgramArgs(cmd *cobra.Command, args []string) ([]string, []string) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		return args, nil
	}

	return args[:dash], args[dash:]
}

func runMode(cmd *cobra.Command) builder.RunMode {
	if detach, _ := cmd.Flags().GetBool("detach"); detach {
		return builder.RunDetached
	}

	if attach, _ := cmd.Flags().GetBool("attach"); attach {
		return builder.RunAttached
	}

	return builder.RunAuto
}

func runRun(cmd *cobra.Command, args []string) error {
	paths, programArgs := splitProgramArgs(cmd, args)
	if len(paths) > 1 {
		return fmt.Errorf("run takes at most one path, got %d", len(paths))
	}

	paths = targetArgs(paths)
	buildFirst, _ := cmd.Flags().GetBool("build")

	s, err := newSession(cmd, paths)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.resolve(paths[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	if buildFirst {
		res, err := s.builder.Build(d, s.registry, !s.cfg.Incremental)
		if err != nil {
			return err
		}

		if !res.Success || s.cfg.Verbose {
			printCompileResult(out, d, "build", res, s.cfg.Verbose)
		}

		if !res.Success {
			return fmt.Errorf("build of %s failed", d.Name)
		}
	}

	res, err := s.builder.Run(d, s.registry, builder.RunOptions{
		Mode:  runMode(cmd),
		Args:  programArgs,
		Stdin: cmd.InOrStdin(),
	})
	if err != nil {
		return err
	}

	if res.Failure == builder.FailureRunNotReady {
		return errors.New(res.Stderr)
	}

	if res.Detached && res.Success {
		fmt.Fprintf(out, "%s started %s (pid %d)\n", okColor.Sprint("✓"), d.Name, res.PID)
		return nil
	}

	fmt.Fprint(out, res.Stdout)
	fmt.Fprint(cmd.ErrOrStderr(), res.Stderr)

	switch res.Failure {
	case builder.FailureNone:
		return nil
	case builder.FailureLaunch:
		return fmt.Errorf("failed to start %s", d.Name)
	default:
		return fmt.Errorf("%s exited with %s", d.Name, codes.Describe(res.ExitCode))
	}
}
