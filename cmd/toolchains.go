package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/toolchain"
)

var toolchainsCmd = &cobra.Command{
	Use:          "toolchains",
	Short:        "List the bundled toolchains that were found",
	RunE:         runToolchains,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func runToolchains(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	reg, err := toolchain.DirDiscoverer{Root: cfg.CompilersDir}.Discover()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "compilers directory: %s\n", cfg.CompilersDir)

	for _, tc := range reg.Available() {
		fmt.Fprintf(out, "%s %-8s %s\n", okColor.Sprint("✓"), tc.ID(), tc.Root)
	}

	for _, bits := range toolchain.Missing(reg) {
		fmt.Fprintf(out, "%s %-8s not installed\n", errorColor.Sprint("✗"), bits.ID())
	}

	return nil
}
