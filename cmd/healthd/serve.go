package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/agent"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/api"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/config"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/llm"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/store"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/telemetry"
	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/tools"
)

// serveCmd starts the HTTP server
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the healthd HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	engine, st, collector, err := buildEngine()
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("Failed to close store", zap.Error(closeErr))
		}
	}()

	if err := st.Ping(); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	logger.Info("Database connected", zap.String("path", cfg.Storage.DatabasePath))

	handler := api.NewHandler(engine, st, collector, cfg)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.TurnTimeoutDuration() + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Hot-reload logging settings on config file changes. Everything else
	// (ports, storage paths) requires a restart.
	stopWatch, err := config.Watch(configPath, func(next *config.Config) {
		logging.Apply(logging.Config{
			DebugMode:  next.Logging.DebugMode,
			Level:      next.Logging.Level,
			JSONFormat: next.Logging.JSONFormat,
			Categories: next.Logging.Categories,
		})
		logger.Info("Reloaded logging configuration")
	})
	if err != nil {
		logger.Warn("Config watch unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	logger.Info("Server stopped")
	return nil
}

// buildEngine wires the turn engine and its collaborators from config.
func buildEngine() (*agent.Engine, *store.Store, *telemetry.Collector, error) {
	st, err := store.Open(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to open store: %w", err)
	}

	client, err := llm.NewClient(llm.FactoryConfig{
		Provider: cfg.LLM.Provider,
		APIKey:   cfg.LLM.APIKey,
		Model:    cfg.LLM.Model,
		BaseURL:  cfg.LLM.BaseURL,
		Timeout:  cfg.LLM.TimeoutDuration(),
	})
	if err != nil {
		st.Close()
		return nil, nil, nil, err
	}

	collector := telemetry.NewCollector()

	registry := tools.NewRegistry(collector)
	tools.RegisterHealthTools(registry, st)

	sessions := agent.NewSessionStore(cfg.Agent.SessionTTLDuration(), cfg.Agent.HistoryWindow)
	profiles := agent.NewProfileLoader(st)
	cache := agent.NewContextCache(st, cfg.Agent.CacheTTLDuration(), cfg.Agent.ContextWindow(), collector)
	planner := agent.NewPlanner(client, cfg.Agent.RecentCheckinLimit)

	engine := agent.NewEngine(sessions, profiles, cache, planner, registry, st, collector)
	return engine, st, collector, nil
}
