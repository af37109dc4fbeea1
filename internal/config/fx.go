package config

import (
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Path is the --config flag value handed to the fx graph.
type Path string

var Module = fx.Module("config",
	fx.Provide(
		func(p Path) (*viper.Viper, error) { return New(string(p)) },
		Decode,
	),
	fx.Invoke(watch),
)

// watch logs config file changes and applies the new log level. Billing
// settings are read once at startup and need a restart.
func watch(v *viper.Viper, cfg Config, log *zap.Logger, level zap.AtomicLevel) {
	if cfg.File == "" {
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		log.Info("config file changed", zap.String("file", e.Name), zap.String("op", e.Op.String()))

		lvl, err := zap.ParseAtomicLevel(v.GetString("log.level"))
		if err != nil {
			log.Warn("ignoring invalid log.level", zap.Error(err))
			return
		}
		level.SetLevel(lvl.Level())
	})
	v.WatchConfig()
}
