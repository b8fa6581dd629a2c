package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cleanCmd = &cobra.Command{
	Use:          "clean [path...]",
	Short:        "Remove build output",
	RunE:         runClean,
	SilenceUsage: true,
}

func runClean(cmd *cobra.Command, args []string) error {
	args = targetArgs(args)

	s, err := newSession(cmd, args)
	if err != nil {
		return err
	}
	defer s.Close()

	targets, err := s.resolveAll(args)
	if err != nil {
		return err
	}

	for _, d := range targets {
		if err := s.builder.Clean(d); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "cleaned %s\n", d.Name)
	}

	return nil
}
