package main

import (
	"fmt"
	"os"

	"github.com/Gobusters/ectoenv"
	"github.com/Gobusters/ectologger/zapadapter"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fairslice/pie/config"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// A missing .env file is fine; deployed environments inject real env vars.
	_ = godotenv.Load()

	cfg := &config.Config{}
	if err := ectoenv.BindEnv(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	zapLogger, err := newZapLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	logger := zapadapter.NewZapEctoLogger(zapLogger, nil)
	logger.WithField("version", version).Infof("Starting %s", cfg.AppName)

	if err := run(cfg, logger); err != nil {
		logger.WithError(err).Error("Server exited with error")
		os.Exit(1)
	}
}

func newZapLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.PrettyLogs {
		return zap.NewDevelopment()
	}

	zapConfig := zap.NewProductionConfig()
	if level, err := zap.ParseAtomicLevel(cfg.LogLevel); err == nil {
		zapConfig.Level = level
	}
	return zapConfig.Build()
}
