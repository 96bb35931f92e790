// Package logger zap 日志初始化
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger 创建 Logger
// level: debug/info/warn/error（默认 info）
// format: json/console（默认 json）
// serviceName: 作为 service_name 字段附加到每条日志
func NewLogger(level, format, serviceName string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == "console" {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		// 输出到标准输出，便于容器日志收集
		cfg.OutputPaths = []string{"stdout"}
		cfg.ErrorOutputPaths = []string{"stderr"}
	}
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	var fields []zap.Field
	if serviceName != "" {
		fields = append(fields, zap.String("service_name", serviceName))
	}
	if hostname, err := os.Hostname(); err == nil && hostname != "" {
		fields = append(fields, zap.String("hostname", hostname))
	}
	return l.With(fields...), nil
}

// ParseLevel 未知级别按 info 处理
func ParseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
