// Package logger provides slog construction and attribute helpers shared by the
// mapper and its HTTP integrations.
//
// # Creating a Logger
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("service", "api")),
//	)
//
// Loggers created by New add the request ID stored with ContextWithRequestID to
// every record logged through the *Context methods. More attributes can be taken
// from the context with WithContextExtractors.
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for empty input, which slog drops, so they
// are safe to pass unconditionally:
//
//	log.ErrorContext(ctx, "request binding failed",
//		logger.Component("mapper"),
//		logger.Handler(name),
//		logger.Error(err),
//	)
package logger
