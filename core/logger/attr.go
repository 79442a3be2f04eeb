package logger

import (
	"log/slog"
	"strconv"
	"time"
)

// Helpers that may receive nothing to log return the zero slog.Attr, which
// handlers drop, so callers never need a nil check around them.

// Group nests attrs under name.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors logs the non-nil errs as an "errors" group keyed by their argument
// position.
func Errors(errs ...error) slog.Attr {
	var group []slog.Attr
	for i, err := range errs {
		if err == nil {
			continue
		}
		group = append(group, slog.Any(strconv.Itoa(i), err))
	}
	if group == nil {
		return slog.Attr{}
	}
	return Group("errors", group...)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// binding

// Handler names the mapped handler, as reported by the runtime.
func Handler(name string) slog.Attr {
	if name == "" {
		return slog.Attr{}
	}
	return slog.String("handler", name)
}

// Location is the canonical tag of a request location, e.g. "query-string".
func Location(loc string) slog.Attr {
	return slog.String("location", loc)
}

// Position is the parameter index of a marker in the handler signature.
func Position(i int) slog.Attr {
	return slog.Int("position", i)
}

// http

func RequestID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("request_id", id)
}

func Method(method string) slog.Attr {
	return slog.String("method", method)
}

func Path(path string) slog.Attr {
	return slog.String("path", path)
}

func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Latency is the time spent serving a request.
func Latency(d time.Duration) slog.Attr {
	return slog.Duration("latency", d)
}

// misc

func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// Count logs n under key, e.g. Count("field_errors", 3).
func Count(key string, n int) slog.Attr {
	return slog.Int(key, n)
}
