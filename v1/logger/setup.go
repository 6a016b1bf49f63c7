package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around Uber's Zap logger. It satisfies
// database.Logger, so a connection created with database.WithLogger writes
// its statement and failure logs through it.
type Logger struct {
	// Zap is the underlying zap.Logger instance.
	Zap *zap.Logger

	tracingEnabled bool
}

// NewLoggerClient builds a JSON logger writing to stderr.
//
// Entries carry an ISO8601 "timestamp", the caller, and "pid" and
// "service" as initial fields. If the zap configuration cannot be built the
// process exits through log.Fatal.
//
// Example:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Debug, ServiceName: "inventory"})
//	conn, err := database.Connect(ctx, "sqlite:///var/lib/app/state.db", database.WithLogger(log))
func NewLoggerClient(cfg Config) *Logger {
	config := zap.Config{
		Level:             zap.NewAtomicLevelAt(levelOf(cfg.Level)),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Sampling:          nil,
		Encoding:          "json",
		EncoderConfig:     encoderConfig(),
		OutputPaths: []string{
			"stderr",
		},
		ErrorOutputPaths: []string{
			"stderr",
		},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": cfg.ServiceName,
		},
	}

	logger, err := config.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &Logger{
		Zap:            logger,
		tracingEnabled: cfg.EnableTracing,
	}
}

// NewFromCore wraps an existing zap core, for example a zaptest observer.
func NewFromCore(core zapcore.Core, cfg Config) *Logger {
	return &Logger{
		Zap:            zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)),
		tracingEnabled: cfg.EnableTracing,
	}
}

func encoderConfig() zapcore.EncoderConfig {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encoderCfg.EncodeDuration = zapcore.MillisDurationEncoder
	return encoderCfg
}

func levelOf(level string) zapcore.Level {
	switch level {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}
