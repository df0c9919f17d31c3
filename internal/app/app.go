package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/heartmarshall/wh40k-terms/internal/auth"
	"github.com/heartmarshall/wh40k-terms/internal/config"
	"github.com/heartmarshall/wh40k-terms/internal/transport/dataloader"
	"github.com/heartmarshall/wh40k-terms/internal/transport/middleware"
	"github.com/heartmarshall/wh40k-terms/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, wires the
// engine and serves HTTP until ctx is cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	svcs, err := NewServices(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer svcs.Close()

	go reloadOnHangup(ctx, logger, svcs)

	handler, stop := newHTTPHandler(cfg, logger, svcs)
	defer stop()

	return serve(ctx, logger, cfg.Server, handler)
}

// newHTTPHandler builds the routed, middleware-wrapped HTTP handler. The
// returned func stops the rate limiter's janitor.
func newHTTPHandler(cfg *config.Config, logger *slog.Logger, svcs *Services) (http.Handler, func()) {
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst, time.Minute)

	routes := rest.RouterConfig{
		Health:    rest.NewHealthHandler(svcs.Pool, svcs.Tables, BuildVersion()),
		Terms:     rest.NewTermsHandler(svcs.Resolver, logger),
		Feedback:  rest.NewFeedbackHandler(svcs.Feedback, logger),
		Metrics:   promhttp.Handler(),
		RateLimit: limiter.Middleware(),
		Batching:  dataloader.Middleware(svcs.Aliases),
	}
	if cfg.Auth.Enabled() {
		jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.TokenTTL)
		routes.ReviewerAuth = middleware.ReviewerAuth(jwtManager)
	} else {
		logger.Warn("reviewer auth disabled: feedback review endpoints are open")
	}

	handler := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.CORS(cfg.CORS),
	)(rest.NewRouter(routes))

	return handler, limiter.Stop
}

// reloadOnHangup drops cached candidates on SIGHUP so entities seeded into
// the store are visible before the TTL runs out.
func reloadOnHangup(ctx context.Context, logger *slog.Logger, svcs *Services) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			svcs.Index.Invalidate()
			logger.Info("candidate cache invalidated", slog.String("signal", "SIGHUP"))
		}
	}
}

// serve runs the HTTP server until ctx is done, then drains in-flight
// requests for up to ShutdownTimeout.
func serve(ctx context.Context, logger *slog.Logger, cfg config.ServerConfig, handler http.Handler) error {
	listener, err := net.Listen("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)))
	if err != nil {
		return fmt.Errorf("http listen: %w", err)
	}

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.ReadTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	logger.Info("http server listening", slog.String("address", listener.Addr().String()))

	select {
	case err := <-errCh:
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return <-errCh
}
