package simple

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/requestmapper/core/config"
	"github.com/dmitrymomot/requestmapper/core/handler"
	"github.com/dmitrymomot/requestmapper/core/logger"
	"github.com/dmitrymomot/requestmapper/core/mapper"
	"github.com/dmitrymomot/requestmapper/core/response"
	"github.com/dmitrymomot/requestmapper/integration/httpctx"
	"github.com/dmitrymomot/requestmapper/middleware"
)

type App struct {
	config Config
	mux    *http.ServeMux
	notes  *NoteStore
	logger *slog.Logger
}

type AppOption func(*App) error

// NewApp loads the configuration, installs the request mapper and registers
// the routes. Only one App should be created per process because the mapper
// configuration is global.
func NewApp(opts ...AppOption) (*App, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return nil, err
	}
	if cfg.ConfigFile != "" {
		if err := config.LoadFile(cfg.ConfigFile, &cfg); err != nil {
			return nil, err
		}
	}

	app := &App{
		config: cfg,
		mux:    http.NewServeMux(),
		notes:  NewNoteStore(),
	}

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	if app.logger == nil {
		var level slog.Level
		if err := level.UnmarshalText([]byte(app.config.LogLevel)); err != nil {
			return nil, err
		}
		app.logger = logger.New(
			logger.WithLevel(level),
			logger.WithAttr(slog.String("app", app.config.AppName), slog.String("env", app.config.Env)),
		)
	}

	err := mapper.Setup(
		httpctx.New(app.config.Mapper, httpctx.WithLogger(app.logger)),
		mapper.WithLogger(app.logger),
		mapper.WithParallelFetch(),
		mapper.WithResponseConverter(mapper.ModelToMap),
	)
	if err != nil {
		return nil, err
	}

	app.routes()
	return app, nil
}

func WithLogger(logger *slog.Logger) AppOption {
	return func(app *App) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		app.logger = logger
		return nil
	}
}

func WithNoteStore(store *NoteStore) AppOption {
	return func(app *App) error {
		if store == nil {
			return errors.New("note store cannot be nil")
		}
		app.notes = store
		return nil
	}
}

func (a *App) routes() {
	serve := func(fn any) http.Handler {
		return httpctx.Serve(
			httpctx.Handler[*Context](fn),
			httpctx.WithContextFactory(a.newContext),
			httpctx.WithErrorHandler(response.JSONErrorHandler[*Context]),
			httpctx.WithMiddleware(
				middleware.RequestIDWithConfig[*Context](middleware.RequestIDConfig{
					HeaderName:  a.config.Mapper.RequestIDHeader,
					UseExisting: true,
				}),
				middleware.LoggingWithLogger[*Context](a.logger),
				middleware.Recover[*Context](a.logger),
			),
		)
	}

	a.mux.Handle("GET /{$}", serve(a.home))
	a.mux.Handle("GET /notes", serve(a.listNotes))
	a.mux.Handle("POST /notes", serve(a.createNote))
	a.mux.Handle("GET /notes/{id}", serve(a.getNote))
	a.mux.Handle("POST /notes/{id}/attachments", serve(a.attach))
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.mux
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort(a.config.HttpHost, a.config.HttpPort),
		Handler:           a.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server started", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}

var _ handler.Context = (*Context)(nil)
