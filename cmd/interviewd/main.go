// Interviewd is an adaptive interview orchestration daemon.
//
// It runs multi-turn spoken technical interviews: planning, question
// generation, per-turn evaluation, integrity analysis, and final
// reporting, with a per-session model-call budget and deterministic
// heuristic fallbacks.
//
// Usage:
//
//	# Start the server with defaults
//	interviewd serve
//
//	# Start with a config file
//	interviewd serve --config /etc/interviewd/config.yaml
//
//	# Configure via environment
//	INTERVIEWD_SERVER_PORT=9090 INTERVIEWD_LLM_PROVIDER=disabled interviewd serve
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/interviewd/internal/config"
	"github.com/fyrsmithlabs/interviewd/internal/httpapi"
	"github.com/fyrsmithlabs/interviewd/internal/interview"
	"github.com/fyrsmithlabs/interviewd/internal/llm"
	"github.com/fyrsmithlabs/interviewd/internal/logging"
	"github.com/fyrsmithlabs/interviewd/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	configPath string
	portFlag   int
)

var rootCmd = &cobra.Command{
	Use:     "interviewd",
	Short:   "Adaptive interview orchestration daemon",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the interviewd HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show detailed version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("interviewd by Fyrsmith Labs\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}

func init() {
	serveCmd.Flags().StringVar(&configPath, "config", "", "path to YAML config file")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "override the configured HTTP port")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// runServe starts the daemon and blocks until the context is cancelled.
//
// Initialization order:
//  1. Load and validate configuration
//  2. Initialize logger and telemetry
//  3. Build the model provider and budgeted gateway
//  4. Create the interview service
//  5. Start the HTTP server
//  6. Graceful shutdown on SIGINT/SIGTERM
func runServe(ctx context.Context) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() {
		_ = logger.Sync() // Best-effort sync on shutdown
	}()

	logger.Info("starting interviewd",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
	)

	tel, err := telemetry.New(ctx, cfg.Telemetry, version)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if err := tel.Shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown", zap.Error(err))
		}
	}()

	provider, err := llm.NewProvider(cfg.LLM)
	if err != nil {
		return fmt.Errorf("initializing llm provider: %w", err)
	}
	gateway := llm.NewGateway(provider, logger)

	svc, err := interview.NewService(cfg, gateway, logger)
	if err != nil {
		return fmt.Errorf("initializing interview service: %w", err)
	}

	server, err := httpapi.NewServer(svc, logger, &httpapi.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("initializing http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down",
		zap.Duration("timeout", cfg.Server.ShutdownTimeout.Duration()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		cfg.Server.ShutdownTimeout.Duration())
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
