package mapper

import (
	"log/slog"
	"sync/atomic"
)

// handle is the process-wide configuration installed by Setup.
type handle struct {
	integration Integrator
	converter   Converter
	logger      *slog.Logger
	parallel    bool
}

var active atomic.Pointer[handle]

// Option configures Setup.
type Option func(*handle)

// WithResponseConverter post-processes the first result of mapped handlers.
// See Converter for when it applies.
func WithResponseConverter(fn Converter) Option {
	return func(h *handle) {
		h.converter = fn
	}
}

// WithLogger sets the logger used for binding diagnostics (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(h *handle) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithParallelFetch lets context-aware handlers fetch all locations concurrently.
// Results are still validated in parameter order. Plain handlers ignore it.
func WithParallelFetch() Option {
	return func(h *handle) {
		h.parallel = true
	}
}

// Setup installs integration as the active integration and calls its SetUp.
// It replaces any previous configuration.
//
// Setup must run before mapped handlers serve traffic. Calling it while requests
// are in flight is a precondition violation: in-flight calls keep whichever
// configuration they already loaded.
func Setup(integration Integrator, opts ...Option) error {
	if integration == nil {
		return ErrInvalidIntegration
	}
	_, isPlain := integration.(Integration)
	_, isContext := integration.(ContextIntegration)
	if !isPlain && !isContext {
		return ErrInvalidIntegration
	}

	h := &handle{
		integration: integration,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}

	active.Store(h)
	integration.SetUp(MapRequest)
	return nil
}

// MustSetup is like Setup but panics on error. Useful at program start.
func MustSetup(integration Integrator, opts ...Option) {
	if err := Setup(integration, opts...); err != nil {
		panic(err)
	}
}

// Reset removes the active configuration.
func Reset() {
	active.Store(nil)
}
