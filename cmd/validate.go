package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/build"
	applog "github.com/maddran/portfolio/internal/log"
	"github.com/maddran/portfolio/internal/site"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Checks the site file without building",
	Long: `The validate command loads the site file and reports every schema problem:
required metadata, entry names and descriptions, link URLs and plugin
identifiers. It also checks that the plugin list maps onto build stages.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := site.Load(appConfig.SiteFile)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if err := cfg.Validate(); err != nil {
			var verr site.ValidationError
			if !errors.As(err, &verr) {
				return err
			}
			for _, fe := range verr.Errors() {
				fmt.Fprintf(out, "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%s: %d problem(s) found", appConfig.SiteFile, len(verr.Errors()))
		}

		pipeline, err := build.NewPipeline(cfg.Plugins, appConfig.SiteDir(), appConfig.Strict, applog.WithComponent("validate"))
		if err != nil {
			return fmt.Errorf("%s: %w", appConfig.SiteFile, err)
		}
		fmt.Fprintf(out, "%s is valid: %d plugins, %d content sources\n", appConfig.SiteFile, len(cfg.Plugins), len(pipeline.Sources))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
