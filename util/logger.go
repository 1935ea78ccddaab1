package util

import (
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger 全局日志，未初始化时为 no-op
var Logger = zap.NewNop()

// InitLogger release 模式使用 JSON 生产配置，其它模式为带颜色的开发配置
func InitLogger(mode string) error {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := config.Build()
	if err != nil {
		return err
	}

	Logger = logger
	return nil
}

func Sync() {
	if Logger != nil {
		_ = Logger.Sync()
	}
}

// Trace 记录一段代码的耗时，用法：defer util.Trace("xxx")()
func Trace(msg string) func() {
	start := time.Now()
	Logger.Debug("enter", zap.String("trace", msg))
	return func() {
		Logger.Info("exit", zap.String("trace", msg), zap.Duration("cost", time.Since(start)))
	}
}
