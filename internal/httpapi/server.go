package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/fx"

	"github.com/certsentry/certsentry/pkg/config"
)

// NewRouter builds the API router with CORS applied to every route.
func NewRouter(h *Handlers) *mux.Router {
	r := mux.NewRouter()
	r.Use(CORSMiddleware())
	h.Register(r)
	// Preflight requests never match the method-constrained routes above;
	// without this catch-all mux would answer 405 before the middleware runs.
	r.PathPrefix("/").Methods(http.MethodOptions).HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	return r
}

func registerServerHooks(lc fx.Lifecycle, cfg config.HTTPConfig, router *mux.Router, logger *slog.Logger) {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
			}
			logger.Info("HTTP API listening", "address", srv.Addr)
			go func() {
				if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down HTTP API")
			shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

var Module = fx.Module("httpapi",
	fx.Provide(NewHandlers, NewRouter),
	fx.Invoke(registerServerHooks),
)
