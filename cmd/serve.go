package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/maddran/portfolio/internal/build"
	applog "github.com/maddran/portfolio/internal/log"
	"github.com/maddran/portfolio/internal/serve"
)

var serverPort int // For the --port flag

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the site locally and watches for changes",
	Long: `The serve command performs an initial build of your site, then starts a local
web server for your output directory. It watches the site file, content
sources, layouts and static directories and rebuilds the site on changes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := applog.WithComponent("serve")
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		builder := build.New(appConfig)
		log.Info().Msg("performing initial build")
		if _, err := builder.Build(ctx); err != nil {
			return fmt.Errorf("initial build failed, fix the issues and try again: %w", err)
		}

		rebuild := func(ctx context.Context) error {
			_, err := builder.Build(ctx)
			return err
		}
		watcher, err := serve.NewWatcher(rebuild, log)
		if err != nil {
			return fmt.Errorf("failed to create file watcher: %w", err)
		}
		for _, p := range builder.Inputs() {
			watcher.Add(p)
		}
		watchDone := make(chan struct{})
		go func() {
			defer close(watchDone)
			watcher.Run(ctx)
		}()

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", serverPort),
			Handler:           serve.NewHandler(appConfig.OutputDir, log),
			ReadHeaderTimeout: 10 * time.Second,
		}
		serveErr := make(chan error, 1)
		go func() {
			serveErr <- srv.ListenAndServe()
		}()
		log.Info().Str("dir", appConfig.OutputDir).Msgf("serving site on http://localhost:%d, press Ctrl+C to stop", serverPort)

		select {
		case err = <-serveErr:
			stop()
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = srv.Shutdown(shutdownCtx)
		}
		<-watchDone
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVarP(&serverPort, "port", "p", 1313, "Port to serve the site on")
	rootCmd.AddCommand(serveCmd)
}
