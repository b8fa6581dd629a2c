package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "cpplab",
	Short: "Build, check and run C/C++ projects with bundled MinGW toolchains",
	Long: `cpplab compiles C and C++ projects or loose source files with the
bundled 32-bit and 64-bit MinGW toolchains, including graphics.h and
OpenMP programs.`,
	SilenceUsage: true,
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().String("compilers", "", "Directory containing the mingw32 and mingw64 toolchains")
	rootCmd.PersistentFlags().String("cache-dir", "", "Directory for the build cache")
	rootCmd.PersistentFlags().Bool("no-cache", false, "Disable build cache")
	rootCmd.PersistentFlags().String("profile-log", "", "Build profile log (enable with CPPLAB_PROFILE_BUILDS=1)")
	rootCmd.PersistentFlags().String("std", "", "Language standard for loose source files (e.g. c11, c++17)")
	rootCmd.PersistentFlags().StringP("toolchain", "t", "", "Toolchain for loose source files (auto, mingw32, mingw64)")
	rootCmd.PersistentFlags().String("layout", "", "Output location for loose source files (build, beside)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(toolchainsCmd)
	rootCmd.AddCommand(newCmd)
}
