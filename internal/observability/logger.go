package observability

import (
	"fmt"
	"strings"

	"github.com/railzwaylabs/parkwise/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the root logger. The returned level can be changed at
// runtime and is shared with the config watcher.
func NewLogger(cfg config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	level, err := zap.ParseAtomicLevel(strings.ToLower(strings.TrimSpace(cfg.Log.Level)))
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("parse log.level: %w", err)
	}

	var zcfg zap.Config
	if cfg.Log.Format == "console" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
		zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	zcfg.Level = level

	log, err := zcfg.Build(zap.Fields(
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
	))
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return log, level, nil
}
