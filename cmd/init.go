package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/scaffold"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Creates a starter site",
	Long: `The init command writes a starter site into dir (default '.'): a site file
with example metadata and plugins, layouts, a sample blog post and static
assets. Existing files are never overwritten unless --force is given.`,
	Args: cobra.MaximumNArgs(1),
	// init must work before any config or site file exists.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		paths, err := scaffold.Write(dir, initForce)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, p := range paths {
			fmt.Fprintf(out, "  created %s\n", p)
		}
		fmt.Fprintf(out, "Starter site written to %s. Run 'devfolio serve' inside it to preview.\n", dir)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite existing files")
	rootCmd.AddCommand(initCmd)
}
