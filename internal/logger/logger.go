package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	HeaderRequestID = "X-Request-ID"
	contextKey      = "logger"
)

type Options struct {
	Production bool
	Level      string
	// File, when set, receives the log stream through a rotating writer.
	File string
}

// New builds a JSON logger for production and a console logger otherwise.
func New(opts Options) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Level != "" {
		var err error
		if level, err = zap.ParseAtomicLevel(opts.Level); err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
	}

	var encoder zapcore.Encoder
	if opts.Production {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "timestamp"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(ec)
	} else {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(ec)
	}

	sink := zapcore.AddSync(os.Stdout)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, fmt.Errorf("New: %w", err)
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100,
			MaxBackups: 3,
			MaxAge:     7,
			Compress:   true,
		})
	}

	zopts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if !opts.Production {
		zopts = append(zopts, zap.Development())
	}
	return zap.New(zapcore.NewCore(encoder, sink, level), zopts...), nil
}

// Middleware tags every request with an id, stores a request scoped logger in
// the echo context and logs the outcome once the handler returns.
func Middleware(base *zap.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			req := c.Request()
			requestID := req.Header.Get(HeaderRequestID)
			if requestID == "" {
				requestID = uuid.New().String()
				req.Header.Set(HeaderRequestID, requestID)
			}
			c.Response().Header().Set(HeaderRequestID, requestID)

			log := base.With(zap.String("request_id", requestID))
			c.Set(contextKey, log)

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", c.RealIP()),
			}
			switch status := c.Response().Status; {
			case status >= 500:
				log.Error("HTTP request", append(fields, zap.Error(err))...)
			case status >= 400:
				log.Warn("HTTP request", fields...)
			default:
				log.Info("HTTP request", fields...)
			}
			return nil
		}
	}
}

// FromEcho returns the request scoped logger, or a no-op logger outside of
// Middleware.
func FromEcho(c echo.Context) *zap.Logger {
	if log, ok := c.Get(contextKey).(*zap.Logger); ok {
		return log
	}
	return zap.NewNop()
}
