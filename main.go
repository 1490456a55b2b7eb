package main

import (
	"fmt"
	"time"

	"vidshare/api"
	"vidshare/config"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := makeLogger(cfg.App.LogLevel); err != nil {
		panic(err)
	}
	defer zap.L().Sync()

	a, err := api.NewRouter(cfg)
	if err != nil {
		zap.L().Fatal("Failed to initialize server", zap.Error(err))
	}
	defer a.Close()

	addr := fmt.Sprintf(":%d", cfg.Host.Port)
	zap.L().Info("Server starting", zap.String("addr", addr))

	if cfg.Host.SSL.Enabled {
		err = a.Router.RunTLS(addr, cfg.Host.SSL.CertificatePath, cfg.Host.SSL.CertificateKeyPath)
	} else {
		err = a.Router.Run(addr)
	}

	if err != nil {
		zap.L().Fatal("Server stopped", zap.Error(err))
	}
}

func makeLogger(level string) error {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level, %w", err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	log, err := cfg.Build()
	if err != nil {
		return err
	}

	zap.ReplaceGlobals(log)
	return nil
}
