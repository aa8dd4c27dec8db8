package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/config"
	applog "github.com/maddran/portfolio/internal/log"
)

var cfgFile string
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "devfolio",
	Short: "devfolio - a declarative portfolio site generator",
	Long: `devfolio reads a site file (site metadata plus an ordered plugin list),
renders your Markdown content through HTML layouts and writes a static
website with its feed, web manifest and assets.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is ./devfolio.yaml)")
	pf.String("site", "", "site file with siteMetadata and plugins (default is ./site.yaml)")
	pf.StringP("output", "o", "", "output directory (default is ./public)")
	pf.String("base-url", "", "absolute URL overriding siteMetadata.siteUrl")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	pf.String("log-format", "", "log format: console or json")
	pf.Bool("strict", false, "fail on plugins without a build stage")
	pf.Int("workers", 0, "number of pages rendered in parallel")
}

func initializeConfig(cmd *cobra.Command) error {
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}
	appConfig = cfg

	applog.Configure(applog.Config{
		Level:   cfg.LogLevel,
		Output:  cmd.ErrOrStderr(),
		Console: cfg.LogFormat != "json",
	})
	if cfg.Source != "" {
		l := applog.WithComponent("config")
		l.Debug().Str("file", cfg.Source).Msg("using config file")
	}
	return nil
}
