package log

import (
	"context"
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field is the structured log field type used across the codebase.
type Field = zap.Field

// Config controls logger construction. All fields have working defaults.
type Config struct {
	Name    string   `conf:"name" yaml:"name" json:"name"`
	Level   string   `conf:"level" yaml:"level" json:"level"`
	Format  string   `conf:"format" yaml:"format" json:"format"`
	Outputs []string `conf:"outputs" yaml:"outputs" json:"outputs"`
	File    File     `conf:"file" yaml:"file" json:"file"`
}

// File configures log file rotation.
type File struct {
	Path       string `conf:"path" yaml:"path" json:"path"`
	MaxSize    int    `conf:"max_size" yaml:"max_size" json:"max_size"`
	MaxBackups int    `conf:"max_backups" yaml:"max_backups" json:"max_backups"`
	MaxAge     int    `conf:"max_age" yaml:"max_age" json:"max_age"`
	Compress   bool   `conf:"compress" yaml:"compress" json:"compress"`
}

type Logger struct {
	zl    *zap.Logger
	level zap.AtomicLevel

	mu    sync.RWMutex
	hooks []Hook
}

// New builds a Logger from config. Unknown levels fall back to info.
func New(cfg Config) *Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if cfg.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Level); err == nil {
			level.SetLevel(parsed)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"stdout"}
	}

	var syncers []zapcore.WriteSyncer

	for _, out := range outputs {
		switch out {
		case "stdout":
			syncers = append(syncers, zapcore.AddSync(os.Stdout))
		case "stderr":
			syncers = append(syncers, zapcore.AddSync(os.Stderr))
		case "file":
			syncers = append(syncers, zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File.Path,
				MaxSize:    cfg.File.MaxSize,
				MaxBackups: cfg.File.MaxBackups,
				MaxAge:     cfg.File.MaxAge,
				Compress:   cfg.File.Compress,
			}))
		}
	}

	if len(syncers) == 0 {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}

	core := zapcore.NewCore(encoder, zapcore.NewMultiWriteSyncer(syncers...), level)

	zl := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))
	if cfg.Name != "" {
		zl = zl.Named(cfg.Name)
	}

	logger := &Logger{zl: zl, level: level}
	logger.AddHook(HookFunc(traceFields))

	return logger
}

// AddHook registers a hook applied to every log entry.
func (l *Logger) AddHook(h Hook) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.hooks = append(l.hooks, h)
}

func (l *Logger) applyHooks(ctx context.Context, msg string, fields []Field) []Field {
	l.mu.RLock()
	hooks := l.hooks
	l.mu.RUnlock()

	for _, h := range hooks {
		fields = h.Apply(ctx, msg, fields...)
	}

	return fields
}

func (l *Logger) log(ctx context.Context, lvl zapcore.Level, msg string, fields ...Field) {
	if !l.level.Enabled(lvl) {
		return
	}

	fields = l.applyHooks(ctx, msg, fields)

	switch lvl {
	case zapcore.DebugLevel:
		l.zl.Debug(msg, fields...)
	case zapcore.InfoLevel:
		l.zl.Info(msg, fields...)
	case zapcore.WarnLevel:
		l.zl.Warn(msg, fields...)
	case zapcore.ErrorLevel:
		l.zl.Error(msg, fields...)
	default:
		l.zl.Info(msg, fields...)
	}
}

func (l *Logger) Debug(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.DebugLevel, msg, fields...)
}

func (l *Logger) Info(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *Logger) Warn(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *Logger) Error(ctx context.Context, msg string, fields ...Field) {
	l.log(ctx, zapcore.ErrorLevel, msg, fields...)
}

// DebugEnabled reports whether debug logging is on, to skip expensive field construction.
func (l *Logger) DebugEnabled() bool {
	return l.level.Enabled(zapcore.DebugLevel)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

var (
	globalMu     sync.RWMutex
	globalLogger = New(Config{})
)

// SetGlobalConfig rebuilds the global logger from config.
func SetGlobalConfig(cfg Config) {
	SetDefault(New(cfg))
}

// SetDefault replaces the global logger.
func SetDefault(l *Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// GetGlobalLogger returns the global logger.
func GetGlobalLogger() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

func Debug(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Debug(ctx, msg, fields...)
}

func Info(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Info(ctx, msg, fields...)
}

func Warn(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Warn(ctx, msg, fields...)
}

func Error(ctx context.Context, msg string, fields ...Field) {
	GetGlobalLogger().Error(ctx, msg, fields...)
}

// DebugEnabled reports whether the global logger logs at debug level.
func DebugEnabled(ctx context.Context) bool {
	return GetGlobalLogger().DebugEnabled()
}
