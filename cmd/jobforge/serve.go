package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"jobforge/internal/api/handlers"
	"jobforge/internal/api/routes"
	"jobforge/pkg/utils"
)

// newServeCmd exposes the tailoring pipeline over HTTP.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the tailoring HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, client, err := setup(ctx)
			if err != nil {
				return err
			}
			logger := utils.GetLogger()
			logger.Info("Starting jobforge server")

			inputDoc, err := loadResume(cfg.Paths.Resume)
			if err != nil {
				return err
			}
			experiences, err := loadTextFile(cfg.Paths.Experiences)
			if err != nil {
				return err
			}

			deps := &handlers.TailorDeps{
				Invoker:             client,
				Writer:              newWriter(cfg),
				InputDocument:       inputDoc,
				ExperienceText:      experiences,
				SectionPaths:        cfg.Pipeline.SectionPaths,
				MaxRetries:          cfg.Pipeline.MaxValidationRetries,
				DishonestyThreshold: cfg.Pipeline.DishonestyThreshold,
				CompilePDF:          cfg.Compiler.Enabled,
			}

			e := echo.New()
			e.HideBanner = true
			routes.SetupRoutes(e, cfg, client, deps)

			// Graceful shutdown
			go func() {
				sigChan := make(chan os.Signal, 1)
				signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
				<-sigChan

				logger.Info("Shutting down server...")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				if err := e.Shutdown(shutdownCtx); err != nil {
					logger.WithError(err).Error("Error shutting down server")
				}
			}()

			address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			logger.WithField("address", address).Info("Server starting")
			if err := e.Start(address); err != nil {
				logger.WithError(err).Info("Server stopped")
			}
			return nil
		},
	}
}
