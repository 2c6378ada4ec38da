package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-consensus/internal/api/http"
	"github.com/i474232898/weather-consensus/internal/scheduler"
)

func newServeCmd(flags *globalFlags) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API and monitor configured locations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			if port != "" {
				cfg.Port = port
			}
			d := buildDeps(cfg)

			if cfg.WeatherKeyCount() == 0 {
				log.Printf("ERROR: no weather provider credentials configured; every analysis will fail")
			}
			log.Printf("INFO: narration providers available: %v", d.narrator.Providers())

			// Scheduler that periodically analyzes monitored locations.
			sched := scheduler.New(cfg.MonitorLocations, cfg.FetchInterval, cfg.RequestTimeout, d.orchestrator)
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()

			app := newHTTPApp(d)

			go func() {
				if err := app.Listen(":" + cfg.Port); err != nil {
					log.Printf("fiber server stopped: %v", err)
				}
			}()

			// Wait for termination signal
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				log.Printf("error during shutdown: %v", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	return cmd
}

func newHTTPApp(d *deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// Analyses may wait on providers and the narrator.
		WriteTimeout: d.cfg.RequestTimeout + 10*time.Second,
		ErrorHandler: httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Runner:    d.orchestrator,
		Results:   d.store,
		Providers: d.providers,
		Narration: d.narrator,
		Service:   serviceName,
	})
	return app
}
