// server/root.go
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vinizap/notas/server/config"
	"github.com/vinizap/notas/server/logging"
)

func newRootCommand() *cobra.Command {
	v := viper.New()
	var configFile, envFile string

	cmd := &cobra.Command{
		Use:          "notas",
		Short:        "Serve the notes HTTP API",
		Long:         "notas serves a small note-taking JSON API on / backed by SQLite or PostgreSQL.",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v, configFile, envFile)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, log)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&configFile, "config", "", "YAML config file (default ./config.yaml when present)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading NOTAS_* variables")
	flags.String(config.KeyHost, "", "listen host")
	flags.Int(config.KeyPort, 0, "listen port")
	flags.String(config.KeyDatabase, "", "SQLite file path or postgres:// URL")
	flags.String(config.KeyLogLevel, "", "log level (debug, info, warn, error)")
	flags.String(config.KeyLogFormat, "", "log format (json, console)")
	flags.String(config.KeyCORSOrigins, "", "comma separated allowed CORS origins")

	for _, key := range []string{
		config.KeyHost,
		config.KeyPort,
		config.KeyDatabase,
		config.KeyLogLevel,
		config.KeyLogFormat,
		config.KeyCORSOrigins,
	} {
		if err := v.BindPFlag(key, flags.Lookup(key)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", key, err))
		}
	}

	return cmd
}
