package cmd

import (
	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/site"
)

var printFormat string

var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Prints the site file in canonical form",
	Long: `The print command loads the site file and writes it back out as YAML or
JSON. Printing the output again yields the same document, so print can be
used to convert between formats or normalise hand-written files.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := site.ParseFormat(printFormat)
		if err != nil {
			return err
		}
		cfg, err := site.Load(appConfig.SiteFile)
		if err != nil {
			return err
		}
		out, err := site.Marshal(cfg, format)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	printCmd.Flags().StringVarP(&printFormat, "format", "f", "yaml", "output format: yaml or json")
	rootCmd.AddCommand(printCmd)
}
