package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/groblegark/relay/internal/audit"
	"github.com/groblegark/relay/internal/broker"
	"github.com/groblegark/relay/internal/bus"
	"github.com/groblegark/relay/internal/collab"
	"github.com/groblegark/relay/internal/config"
	"github.com/groblegark/relay/internal/eventlog"
	"github.com/groblegark/relay/internal/registry"
	"github.com/groblegark/relay/internal/server"
	"github.com/groblegark/relay/internal/trigger"
	"github.com/groblegark/relay/internal/webhook"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Short:   "Start the relay broker server",
	GroupID: "system",
	// Override PersistentPreRunE so we don't create an HTTP client.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

		// Load configuration.
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		// Seed the subscription registry.
		reg := registry.New()
		if cfg.SubscriptionsFile != "" {
			if err := reg.SeedFile(cfg.SubscriptionsFile); err != nil {
				return err
			}
			logger.Info("subscriptions loaded", "file", cfg.SubscriptionsFile, "count", reg.Len())
		} else {
			reg.SeedDefaults()
			logger.Info("default subscriptions seeded", "count", reg.Len())
		}

		// Create event publisher. Bus connectivity is optional; a failed
		// connection downgrades to the noop publisher instead of aborting
		// the HTTP API, triggers, and webhook delivery.
		publisher, busUp := connectBus(cfg.NATSURL, logger)

		// Wire trigger actions to their collaborator services.
		crm := collab.NewCRMClient(cfg.CRMURL, cfg.ActionTimeout)
		tasks := collab.NewTaskClient(cfg.TasksURL, cfg.ActionTimeout)
		compliance := collab.NewComplianceClient(cfg.ComplianceURL, cfg.ActionTimeout)

		engine := trigger.NewEngine(trigger.DefaultRules(), logger)

		relayBroker := broker.New(broker.Config{
			Registry:        reg,
			Log:             eventlog.New(cfg.EventLogCapacity),
			Annotator:       audit.New(cfg.ComplianceDefault),
			Triggers:        engine,
			Bus:             publisher,
			Notifier:        webhook.New(reg, cfg.WebhookTimeout, logger),
			Logger:          logger,
			MaxCascadeDepth: cfg.MaxCascadeDepth,
		})

		engine.Register(&trigger.CreateCRMLead{CRM: crm})
		engine.Register(&trigger.CreateTask{Tasks: tasks})
		engine.Register(&trigger.EscalateTask{Tasks: tasks, Logger: logger})
		engine.Register(&trigger.UpdateCRMOpportunity{CRM: crm})
		engine.Register(&trigger.ComplianceCheck{
			Compliance: compliance,
			Cascader:   relayBroker,
			Logger:     logger,
		})
		engine.Register(&trigger.SendChatAlert{
			ActionName: trigger.ActionSendSlackAlert,
			Chat:       collab.NewChatClient(cfg.SlackWebhookURL, cfg.ActionTimeout),
		})
		engine.Register(&trigger.SendChatAlert{
			ActionName: trigger.ActionSendTeamsAlert,
			Chat:       collab.NewChatClient(cfg.TeamsWebhookURL, cfg.ActionTimeout),
		})

		// Start delivery consumers for the seeded systems. Skipped when the
		// bus is down for this run.
		var pool *bus.Pool
		if busUp {
			pool = startConsumers(context.Background(), cfg.NATSURL, reg.Systems(), relayBroker.HandleDelivery, logger)
		}

		// Start HTTP server.
		relayServer := server.NewRelayServer(relayBroker)
		httpServer := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: relayServer.NewHTTPHandler(cfg.AuthToken),
		}

		go func() {
			logger.Info("HTTP server listening", "addr", cfg.HTTPAddr)
			if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("HTTP server error", "err", err)
			}
		}()

		logger.Info("relay server started",
			"http_addr", cfg.HTTPAddr,
			"subscribers", reg.Len(),
		)

		// Wait for SIGINT or SIGTERM.
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		logger.Info("received signal, shutting down", "signal", sig)

		// Graceful shutdown.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", "err", err)
		}
		logger.Info("HTTP server stopped")

		if pool != nil {
			pool.Stop()
			logger.Info("delivery consumers stopped")
		}

		if err := publisher.Close(); err != nil {
			logger.Error("error closing publisher", "err", err)
		}

		logger.Info("shutdown complete")
		return nil
	},
}

// connectBus connects the JetStream publisher for the given URL. An empty
// URL means the bus is not configured; a connection failure is logged and
// downgraded to the noop publisher so the rest of the pipeline still runs.
// The second return reports whether a live bus connection exists.
func connectBus(url string, logger *slog.Logger) (bus.Publisher, bool) {
	if url == "" {
		logger.Info("bus disabled (RELAY_NATS_URL not set)")
		return &bus.NoopPublisher{}, false
	}
	pub, err := bus.NewNATSPublisher(url)
	if err != nil {
		logger.Warn("bus unreachable, publishing and consuming skipped this run",
			"nats_url", url, "err", err)
		return &bus.NoopPublisher{}, false
	}
	logger.Info("bus enabled", "nats_url", url)
	return pub, true
}

// startConsumers starts the per-system delivery consumer pool. Failures are
// logged and yield a nil pool; delivery is skipped for this run.
func startConsumers(ctx context.Context, url string, systems []string, handle bus.HandleFunc, logger *slog.Logger) *bus.Pool {
	pool, err := bus.NewPool(url, handle, logger)
	if err != nil {
		logger.Warn("delivery consumers unavailable", "err", err)
		return nil
	}
	if err := pool.Start(ctx, systems); err != nil {
		pool.Stop()
		logger.Warn("delivery consumers unavailable", "err", err)
		return nil
	}
	logger.Info("delivery consumers started", "systems", len(systems))
	return pool
}
