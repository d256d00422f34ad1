package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type requestIDKey struct{}

// Config selects the log level and output encoding, plus the application name
// stamped on every entry.
type Config struct {
	Level    string
	Encoding string
	AppName  string
}

// New builds the process logger. JSON by default; "console" switches to a
// human-readable encoder for local development. An unknown level is a
// configuration error, not something to silently downgrade.
func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if err := level.Set(strings.ToLower(v)); err != nil {
			return nil, fmt.Errorf("logger: unknown level %q", cfg.Level)
		}
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "time"
	encoderCfg.EncodeTime = zapcore.RFC3339TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Encoding == "console" {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(zapcore.Lock(os.Stdout)),
		level,
	)

	opts := []zap.Option{zap.AddCaller()}
	if cfg.AppName != "" {
		opts = append(opts, zap.Fields(zap.String("app", cfg.AppName)))
	}
	return zap.New(core, opts...), nil
}

// ContextWithRequestID attaches a request ID to the provided context.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// WithRequestID enriches the logger with the request ID stored in the context.
func WithRequestID(ctx context.Context, base *zap.Logger) *zap.Logger {
	if ctx == nil || base == nil {
		return base
	}
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok && reqID != "" {
		return base.With(zap.String("request_id", reqID))
	}
	return base
}
