package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/build"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Builds the static site from the site file, content, layouts and static assets",
	Long: `The build command loads and validates the site file, maps its plugin list
onto build stages, renders Markdown from every content source through the
layouts in './layouts/' (including partials), copies './static/' and writes
the site, feed and web manifest into the output directory (default './public/').`,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := build.New(appConfig).Build(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Built %d pages and %d assets into %s in %s\n",
			res.Pages, res.Assets+res.StaticFiles, appConfig.OutputDir, res.Duration.Round(time.Millisecond))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
