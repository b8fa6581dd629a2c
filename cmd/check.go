package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:          "check [path]",
	Short:        "Check a project or source file for errors without building",
	RunE:         runCheck,
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
}

func runCheck(cmd *cobra.Command, args []string) error {
	args = targetArgs(args)

	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	d, err := s.resolve(args[0])
	if err != nil {
		return err
	}

	res, err := s.builder.Check(d, s.registry)
	if err != nil {
		return err
	}

	printCompileResult(cmd.OutOrStdout(), d, "check", res, s.cfg.Verbose)

	if !res.Success {
		return fmt.Errorf("check of %s failed", d.Name)
	}

	return nil
}
