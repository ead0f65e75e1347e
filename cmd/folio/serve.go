package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/eringen/folio"
	"github.com/eringen/folio/logger"
)

func newServeCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			flush, err := logger.InitLogger(logConfig(v))
			if err != nil {
				return err
			}
			defer flush()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app := folio.New(siteConfig(v))
			if err := app.Run(ctx); err != nil {
				logger.Error("server stopped", logger.ErrorField(err))
				return err
			}
			logger.Info("server stopped")
			return nil
		},
	}

	flags := cmd.Flags()
	flags.String("addr", "", "listen address (env ADDR)")
	flags.String("content-dir", "", "directory for posts and JSON documents (env CONTENT_DIR)")
	flags.String("public-dir", "", "directory for uploaded files (env PUBLIC_DIR)")
	flags.String("log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	flags.Bool("metrics", false, "serve Prometheus metrics on /metrics (env METRICS_ENABLED)")
	flags.Bool("watch", false, "reload posts edited on disk (env WATCH_POSTS)")

	for key, flag := range map[string]string{
		"addr":            "addr",
		"content_dir":     "content-dir",
		"public_dir":      "public-dir",
		"log_level":       "log-level",
		"metrics_enabled": "metrics",
		"watch_posts":     "watch",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}
