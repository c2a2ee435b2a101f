package logger

import (
	"io"
	"os"

	"StandupBot/config"

	"github.com/inconshreveable/log15"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Init routes the root logger to stdout and, when configured, a rotating
// log file. Messages below the configured level are dropped.
func Init(cfg config.LogConfig) {
	lvl, err := log15.LvlFromString(cfg.Level)
	if err != nil {
		lvl = log15.LvlInfo
	}

	writers := []io.Writer{os.Stdout}
	if cfg.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			LocalTime:  true,
		})
	}

	h := log15.StreamHandler(io.MultiWriter(writers...), log15.LogfmtFormat())
	log15.Root().SetHandler(log15.LvlFilterHandler(lvl, h))
	log15.Root().Info("logger initialized", "level", lvl.String(), "file", cfg.File)
}

// New returns a child of the root logger tagged with the module name.
func New(module string, ctx ...interface{}) log15.Logger {
	return log15.New(append([]interface{}{"module", module}, ctx...)...)
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() log15.Logger {
	l := log15.New()
	l.SetHandler(log15.DiscardHandler())
	return l
}
