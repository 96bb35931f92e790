package main

import (
	"fmt"
	"os"

	"github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/config"

	logpkg "github.com/Mayuresh28/Navonmesh-2026-Dreamers/internal/common/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const serviceName = "wisefido-diagnosis"

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           serviceName,
		Short:         "Multi-signal health risk diagnosis service",
		Long:          "wisefido-diagnosis fuses six upstream predictors into a 9-class diagnosis with an ordered clinical rule engine.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().String("manifest", "", "Path to model manifest (overrides MODEL_MANIFEST env var)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug/info/warn/error (overrides LOG_LEVEL env var)")

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newPredictCmd())
	rootCmd.AddCommand(newModelsCmd())
	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig 环境变量配置 + 命令行覆盖
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if p, _ := cmd.Flags().GetString("manifest"); p != "" {
		cfg.Diagnosis.ManifestPath = p
	}
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		cfg.Log.Level = l
	}
	return cfg, nil
}

// newCLILogger 一次性命令使用 console 格式，默认只输出 warn 以上
func newCLILogger(cmd *cobra.Command) (*zap.Logger, error) {
	level := "warn"
	if l, _ := cmd.Flags().GetString("log-level"); l != "" {
		level = l
	}
	return logpkg.NewLogger(level, "console", serviceName)
}
