package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/omarluq/cc-fallback/internal/di"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the cc-fallback relay server",
	Long: `Start the relay server that accepts Claude Code requests and serves each
one through the configured fallback candidate list.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	configPath := cfgFile
	if configPath == "" {
		configPath = findConfigFile()
	}

	container, err := di.NewContainer(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to create container")
		return err
	}

	defer func() {
		if err := container.Shutdown(); err != nil {
			log.Error().Err(err).Msg("container shutdown error")
		}
	}()

	loggerSvc, err := di.Invoke[*di.LoggerService](container)
	if err != nil {
		log.Error().Err(err).Str("path", configPath).Msg("failed to initialize")
		return err
	}

	log.Logger = *loggerSvc.Logger
	zerolog.DefaultContextLogger = loggerSvc.Logger

	serverSvc, err := di.Invoke[*di.ServerService](container)
	if err != nil {
		log.Error().Err(err).Msg("failed to build server")
		return err
	}

	// Activate config hot reload for the lifetime of the process.
	cfgSvc := di.MustInvoke[*di.ConfigService](container)
	watchCtx, stopWatching := context.WithCancel(cmd.Context())
	defer stopWatching()
	cfgSvc.StartWatching(watchCtx)

	server := serverSvc.Server

	// Graceful shutdown on SIGINT/SIGTERM
	done := make(chan struct{})
	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		log.Info().Msg("shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("shutdown error")
		}

		close(done)
	}()

	log.Info().Str("listen", server.Addr()).Msg("starting cc-fallback")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server error")
		return err
	}

	<-done
	log.Info().Msg("server stopped")

	return nil
}

// findConfigFile searches for config.yaml in the working directory, then
// under ~/.config/cc-fallback/.
func findConfigFile() string {
	if p := findConfigIn("."); p != "" {
		return p
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		if p := findConfigIn(filepath.Join(home, ".config", "cc-fallback")); p != "" {
			return p
		}
	}

	return defaultConfigFile // Default, will error if not found
}

// findConfigIn returns the config file path under dir, or "" when absent.
func findConfigIn(dir string) string {
	p := filepath.Join(dir, defaultConfigFile)
	if _, err := os.Stat(p); err == nil {
		return p
	}
	return ""
}
