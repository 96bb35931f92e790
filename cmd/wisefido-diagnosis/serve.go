package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/service"

	logpkg "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, Redis Streams consumer and MQTT consumer",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd)
		},
	}
}

func runServe(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logpkg.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("Starting wisefido-diagnosis service",
		zap.String("http_addr", cfg.HTTP.Addr),
		zap.String("manifest", cfg.Diagnosis.ManifestPath),
		zap.String("input_stream", cfg.Diagnosis.Stream.Input),
		zap.Duration("predictor_timeout", cfg.Diagnosis.PredictorTimeout),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := service.NewApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to create diagnosis app", zap.Error(err))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Start(ctx)
	}()

	// 等待中断信号
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigChan:
		logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		if runErr != nil {
			logger.Error("Service exited with error", zap.Error(runErr))
		}
	}

	// 优雅关闭
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.Stop(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Service stopped")
	return runErr
}
