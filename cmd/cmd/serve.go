package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"seoforge/internal/config"
	"seoforge/internal/logger"
	"seoforge/internal/scheduler"
	"seoforge/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP trigger server and the scheduling loop",
	Long: `Start the seoforge service: the HTTP trigger surface plus a
background loop that processes every due website once per tick
interval (default hourly).

Examples:
  # Start with defaults (0.0.0.0:8080, hourly ticks)
  seoforge serve

  # Start on a custom port
  seoforge serve --port 3000`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		host, _ := cmd.Flags().GetString("host")
		return runServe(cmd.Context(), port, host)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 0, "HTTP server port (default from config: 8080)")
	serveCmd.Flags().String("host", "", "HTTP server host (default from config: 0.0.0.0)")
}

func runServe(ctx context.Context, port int, host string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	sched, err := buildScheduler(cfg)
	if err != nil {
		return err
	}

	serverCfg := cfg.Server
	if port != 0 {
		serverCfg.Port = port
	}
	if host != "" {
		serverCfg.Host = host
	}

	srv := server.New(sched, serverCfg)

	tickCtx, cancelTicks := context.WithCancel(ctx)
	defer cancelTicks()
	go runTicker(tickCtx, sched, config.Duration(cfg.Server.TickInterval, time.Hour))

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info("shutdown initiated", "signal", sig.String())
		cancelTicks()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("server stopped")
	}
	return nil
}

// runTicker processes due websites once immediately and then on every
// tick until the context is cancelled.
func runTicker(ctx context.Context, sched *scheduler.Scheduler, interval time.Duration) {
	if _, err := sched.Tick(ctx, time.Now()); err != nil {
		logger.Error("tick failed", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := sched.Tick(ctx, now); err != nil {
				logger.Error("tick failed", err)
			}
		}
	}
}
