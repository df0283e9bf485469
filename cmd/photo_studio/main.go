package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"photo_studio/internal/app"
	"photo_studio/internal/config"
	"photo_studio/internal/lib/logger/handlers/slogpretty"
	"photo_studio/internal/lib/logger/sl"

	"github.com/spf13/cobra"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:          "photo_studio",
	Short:        "Photo studio back office: shared galleries, bookings and administration",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serveCmd.RunE(cmd, args)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.MustLoad(configPath)

		log := setupLogger(cfg.Env)
		log.Info("starting photo_studio", slog.String("env", cfg.Env))

		application, err := app.New(cmd.Context(), log, cfg)
		if err != nil {
			return err
		}

		if err := application.Repository.Migrate(cmd.Context()); err != nil {
			application.Stop()
			return err
		}

		application.HTTPServer.BuildRouters()

		go func() {
			application.HTTPServer.MustRun()
		}()

		// Graceful shutdown
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, syscall.SIGINT)

		<-stop
		if err := application.HTTPServer.Stop(); err != nil {
			log.Error("failed to stop http server", sl.Err(err))
		}
		application.Stop()

		log.Info("Gracefully stopped")

		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default $CONFIG_PATH)")
	rootCmd.AddCommand(serveCmd, migrateCmd, adminCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlog()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}

	return log
}

func setupPrettySlog() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
