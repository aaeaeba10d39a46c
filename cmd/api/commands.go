package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-sla/internal/api/dto"
	httptransport "github.com/spec-kit/helpdesk-sla/internal/api/http"
	"github.com/spec-kit/helpdesk-sla/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-sla/internal/service"
)

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "helpdesk-sla",
		Short:        "Help desk ticketing with business-hours SLA tracking",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP API and the breach monitor",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply database migrations and seed SLA targets from SLA_TARGETS_FILE",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "scan-breaches",
			Short: "Run one breach scan, print it as JSON and send notifications",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runScanBreaches(cmd.Context(), cmd)
			},
		},
	)
	return root
}

func runServe(parent context.Context) error {
	ctx, cancel := context.WithCancel(contextOrBackground(parent))
	defer cancel()

	a, err := bootstrap(ctx, bootstrapOptions{migrate: true})
	if err != nil {
		return err
	}
	defer a.Close()

	go a.monitor.Run(ctx)

	app := fiber.New(fiber.Config{AppName: a.cfg.App.Name})
	httptransport.RegisterMiddlewares(app, a.logger, a.metrics, a.cfg.App.RequestTimeout())

	deps := map[string]handlers.Pinger{"postgres": a.pg}
	if a.redis.Enabled() {
		deps["redis"] = a.redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(a.cfg.App.Name, a.cfg.App.Version, deps, a.metrics),
		Tickets:   handlers.NewTicketsHandler(a.tickets),
		Customers: handlers.NewCustomersHandler(a.customers),
		SLA:       handlers.NewSLAHandler(a.sla),
	})

	go func() {
		if err := app.Listen(a.cfg.App.Addr()); err != nil {
			a.logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(ctx, a.logger)
	cancel()

	return app.Shutdown()
}

func runMigrate(parent context.Context) error {
	ctx := contextOrBackground(parent)
	a, err := bootstrap(ctx, bootstrapOptions{migrate: true, forceMigrate: true, skipTargets: true})
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.SLA.TargetsFile == "" {
		a.logger.Info("no SLA_TARGETS_FILE set, skipping target seed")
		return nil
	}
	n, err := service.SeedTargets(ctx, a.targetStore, a.cfg.SLA.TargetsFile)
	if err != nil {
		return err
	}
	a.logger.Info("seeded sla targets", zap.Int("count", n), zap.String("file", a.cfg.SLA.TargetsFile))
	return nil
}

func runScanBreaches(parent context.Context, cmd *cobra.Command) error {
	ctx := contextOrBackground(parent)
	a, err := bootstrap(ctx, bootstrapOptions{})
	if err != nil {
		return err
	}
	defer a.Close()

	result, err := a.monitor.RunOnce(ctx)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(dto.NewBreachRecordResponses(result.Breaches)); err != nil {
		return fmt.Errorf("write breaches: %w", err)
	}
	a.logger.Info("breach scan finished", zap.Int("breaches", len(result.Breaches)), zap.Int("notified", result.Notified))
	return nil
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
}
