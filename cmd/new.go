package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cpplab/internal/project"
)

var newCmd = &cobra.Command{
	Use:          "new <name>",
	Short:        "Create a new project",
	RunE:         runNew,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

func init() {
	newCmd.Flags().String("lang", string(project.CPP), "Project language (c, cpp)")
	newCmd.Flags().String("kind", string(project.Console), "Project kind (console, graphics)")
	newCmd.Flags().Bool("graphics", false, "Use graphics.h")
	newCmd.Flags().Bool("openmp", false, "Use OpenMP")
	newCmd.Flags().String("dir", ".", "Parent directory of the new project")
}

func runNew(cmd *cobra.Command, args []string) error {
	name := args[0]
	lang, _ := cmd.Flags().GetString("lang")
	std, _ := cmd.Flags().GetString("std")
	kind, _ := cmd.Flags().GetString("kind")
	graphics, _ := cmd.Flags().GetBool("graphics")
	openmp, _ := cmd.Flags().GetBool("openmp")
	dir, _ := cmd.Flags().GetString("dir")
	pref, _ := cmd.Flags().GetString("toolchain")

	if project.IsProjectDir(filepath.Join(dir, name)) {
		return fmt.Errorf("project %s already exists in %s", name, dir)
	}

	d, err := project.Create(dir, name, project.CreateOptions{
		Language:  project.Language(lang),
		Standard:  std,
		Kind:      project.Kind(kind),
		Graphics:  graphics,
		OpenMP:    openmp,
		Toolchain: project.Preference(pref),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s created %s project %s (%s) in %s\n",
		okColor.Sprint("✓"), d.Language, d.Name, d.Standard, d.Root)

	return nil
}
