package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options controls how the process logger is built.
type Options struct {
	Level  string // debug, info, warn or error
	Format string // console or json
	// Output is a zap sink such as "stdout", "stderr" or a file path.
	Output string
}

// OutputFor picks the log sink for a transport. Stdio based transports own
// stdout for protocol frames, so they log to stderr.
func OutputFor(transport string) string {
	switch transport {
	case "stdio", "mcp":
		return "stderr"
	default:
		return "stdout"
	}
}

// NewSugaredLogger builds a sugared zap logger from opts.
func NewSugaredLogger(opts Options) (*zap.SugaredLogger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(opts.Level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
	}

	encoding := opts.Format
	if encoding == "" {
		encoding = "console"
	}
	output := opts.Output
	if output == "" {
		output = "stdout"
	}
	levelEncoder := zapcore.CapitalLevelEncoder
	if encoding == "console" && (output == "stdout" || output == "stderr") {
		levelEncoder = zapcore.CapitalColorLevelEncoder
	}

	cfg := zap.Config{
		Level:             level,
		Development:       false,
		DisableCaller:     true,
		DisableStacktrace: true,
		Encoding:          encoding,
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:     "msg",
			LevelKey:       "level",
			TimeKey:        "time",
			NameKey:        "name",
			CallerKey:      "caller",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    levelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{output},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}
