package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hytera-adk/hylink-adk/pkg/config"
	"github.com/hytera-adk/hylink-adk/pkg/logger"
	"github.com/hytera-adk/hylink-adk/pkg/sessions"
	"github.com/hytera-adk/hylink-adk/pkg/web"
)

var (
	// Version and BuildTime are set via -ldflags at release build time.
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "hylink-adk",
		Short: "A Hytera ADK-compatible repeater host",
		Long: `hylink-adk terminates the Hytera ADK protocol suite (HYT/HSTRP
framing, TxCtrl RCP/RRS/TMP, and RTP voice) over UDP/IP, running one
session per configured port and exposing a read-only monitoring
dashboard.`,
		Version: fmt.Sprintf("%s (built at %s)", Version, BuildTime),
		RunE:    runServer,
	}

	rootCmd.Flags().StringP("config", "c", "", "Configuration file path")
	rootCmd.Flags().Bool("debug", false, "Enable debug logging")

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	debug, _ := cmd.Flags().GetBool("debug")

	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logCfg := logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		File:        cfg.Logging.File,
		MaxSize:     cfg.Logging.MaxSize,
		MaxBackups:  cfg.Logging.MaxBackups,
		MaxAge:      cfg.Logging.MaxAge,
		Development: debug,
	}
	if debug {
		logCfg.Level = "debug"
	}
	log1, err := logger.FromConfig(logCfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer log1.Sync()

	log1.Info("hylink-adk starting",
		logger.String("version", Version),
		logger.String("build_time", BuildTime),
		logger.Int("ports", len(cfg.Ports)),
	)

	manager, err := sessions.New(cfg, log1)
	if err != nil {
		return fmt.Errorf("build session manager: %w", err)
	}

	dashboard := web.NewServer(cfg, log1, manager, Version, BuildTime)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log1.Info("shutdown signal received")
		cancel()
	}()

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("start session manager: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		if err := dashboard.Start(ctx); err != nil {
			errCh <- fmt.Errorf("dashboard: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		log1.Error("dashboard exited unexpectedly", logger.Error(err))
		cancel()
	}

	if err := manager.Stop(); err != nil {
		log1.Error("error stopping session manager", logger.Error(err))
	}
	if err := dashboard.Stop(); err != nil {
		log1.Error("error stopping dashboard", logger.Error(err))
	}

	log1.Info("hylink-adk stopped")
	return nil
}
