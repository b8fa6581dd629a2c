package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/features"
	"github.com/Norgate-AV/cpplab/internal/project"
)

var detectCmd = &cobra.Command{
	Use:          "detect <file>",
	Short:        "Show the features a source file uses",
	RunE:         runDetect,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

func runDetect(cmd *cobra.Command, args []string) error {
	file := args[0]

	if _, ok := project.LanguageForPath(file); !ok {
		return fmt.Errorf("%s is not a C or C++ source file", file)
	}

	detected := features.DetectFile(file)
	effective := detected.Effective()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "graphics: %s\n", yesNo(detected.Graphics))
	fmt.Fprintf(out, "openmp:   %s", yesNo(detected.OpenMP))
	if detected.OpenMP && !effective.OpenMP {
		fmt.Fprint(out, " (ignored, graphics programs build without OpenMP)")
	}
	fmt.Fprintln(out)

	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}

	return "no"
}
