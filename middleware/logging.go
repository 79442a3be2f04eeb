package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/logger"
	"github.com/dmitrymomot/requestmapper/core/mapper"
)

type LoggingConfig struct {
	// Skip, when it returns true, leaves the request unlogged.
	Skip func(ctx handler.Context) bool

	// Logger defaults to slog.Default(). Build it with logger.New to get the
	// request ID on every record.
	Logger *slog.Logger

	// LogLevel is used for 2xx and 3xx responses. Defaults to info.
	LogLevel slog.Level

	// SlowRequestThreshold raises fast-path records to warn. Defaults to 5s.
	SlowRequestThreshold time.Duration

	// Component defaults to "http".
	Component string
}

// Logging creates a request logging middleware with default configuration.
func Logging[C handler.Context]() handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{})
}

// LoggingWithLogger creates a logging middleware with a custom logger.
func LoggingWithLogger[C handler.Context](log *slog.Logger) handler.Middleware[C] {
	return LoggingWithConfig[C](LoggingConfig{Logger: log})
}

// LoggingWithConfig creates a request logging middleware with custom configuration.
// One record is written per request once the response is rendered: 5xx at error
// level, 4xx and slow requests at warning level.
func LoggingWithConfig[C handler.Context](cfg LoggingConfig) handler.Middleware[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SlowRequestThreshold <= 0 {
		cfg.SlowRequestThreshold = 5 * time.Second
	}
	if cfg.Component == "" {
		cfg.Component = "http"
	}

	return func(next handler.HandlerFunc[C]) handler.HandlerFunc[C] {
		return func(ctx C) handler.Response {
			if cfg.Skip != nil && cfg.Skip(ctx) {
				return next(ctx)
			}

			start := time.Now()
			req := ctx.Request()
			response := next(ctx)

			return func(w http.ResponseWriter, r *http.Request) error {
				wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
				var err error
				if response != nil {
					err = response(wrapped, r)
				}
				duration := time.Since(start)

				status := wrapped.statusCode
				if err != nil && !wrapped.headerWritten {
					// The error handler renders after us; report the status it will use
					status = statusOf(err)
				}

				attrs := []slog.Attr{
					logger.Component(cfg.Component),
					logger.Method(req.Method),
					logger.Path(req.URL.Path),
					logger.StatusCode(status),
					logger.Latency(duration),
					logger.Error(err),
				}
				if verr, ok := mapper.AsValidationError(err); ok {
					attrs = append(attrs,
						logger.Location(verr.Location.String()),
						logger.Count("field_errors", len(verr.Errors)),
					)
				}

				level := cfg.LogLevel
				switch {
				case status >= 500:
					level = slog.LevelError
				case status >= 400, duration > cfg.SlowRequestThreshold:
					level = slog.LevelWarn
				}

				cfg.Logger.LogAttrs(r.Context(), level, "HTTP request completed", attrs...)
				return err
			}
		}
	}
}

func statusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode    int
	headerWritten bool
}

// WriteHeader captures the status code
func (rw *responseWriter) WriteHeader(statusCode int) {
	if !rw.headerWritten {
		rw.statusCode = statusCode
		rw.headerWritten = true
	}
	rw.ResponseWriter.WriteHeader(statusCode)
}

// Write marks the header as written
func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.headerWritten {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
