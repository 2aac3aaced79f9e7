package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/famfund/internal/auth"
	"github.com/mmynk/famfund/internal/config"
	"github.com/mmynk/famfund/internal/metrics"
	"github.com/mmynk/famfund/internal/middleware"
	"github.com/mmynk/famfund/internal/service"
	"github.com/mmynk/famfund/internal/storage"
	"github.com/mmynk/famfund/internal/storage/sqlite"
	"github.com/mmynk/famfund/pkg/api/apiconnect"
	"github.com/mmynk/famfund/pkg/logging"
)

const (
	apiPrefix       = "/famfund.v1."
	shutdownTimeout = 10 * time.Second
)

func newServeCmd() *cobra.Command {
	var (
		port       string
		dbPath     string
		staticPath string
		noMetrics  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Connect API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if cmd.Flags().Changed("db") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("static") {
				cfg.StaticPath = staticPath
			}
			if noMetrics {
				cfg.MetricsEnabled = false
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides PORT)")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (overrides DB_PATH)")
	cmd.Flags().StringVar(&staticPath, "static", "", "directory of frontend files to serve (overrides STATIC_PATH)")
	cmd.Flags().BoolVar(&noMetrics, "no-metrics", false, "disable the /metrics endpoint")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logging.SetupWithLevel(logging.ParseLevel(cfg.LogLevel))

	if err := cfg.Validate(); err != nil {
		return err
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}
	defer store.Close()
	slog.Info("Storage initialized", "database", cfg.DBPath)

	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
	}

	srv := &http.Server{
		Addr: cfg.Addr(),
		// h2c serves HTTP/2 without TLS, which Connect and gRPC clients need.
		Handler:           h2c.NewHandler(newHandler(cfg, store, m), &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Connect server starting", "address", srv.Addr, "metrics", m != nil)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// newHandler wires the services, interceptors and plain HTTP routes.
func newHandler(cfg *config.Config, store storage.Store, m *metrics.Metrics) http.Handler {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
	authenticator := auth.NewPasswordAuthenticator(store)

	// Metrics and logging run outermost so rejected calls are counted too.
	interceptors := connect.WithInterceptors(
		middleware.MetricsInterceptor(m),
		middleware.LoggingInterceptor(slog.Default()),
		middleware.RequireAuth(jwtManager, apiconnect.PublicProcedures),
	)

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(authenticator, jwtManager, store, slog.Default()), interceptors))
	mux.Handle(apiconnect.NewContributeServiceHandler(service.NewContributeService(store, m), interceptors))
	mux.Handle(apiconnect.NewFinanceServiceHandler(service.NewFinanceService(store), interceptors))

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	if m != nil {
		mux.Handle("GET /metrics", m.Handler())
	}
	if cfg.StaticPath != "" {
		mux.Handle("/", staticHandler(cfg.StaticPath))
	}

	return loggingMiddleware(corsMiddleware(mux))
}

// staticHandler serves the frontend build, falling back to index.html for
// unknown paths.
func staticHandler(dir string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, apiPrefix) {
			http.NotFound(w, r)
			return
		}

		urlPath := r.URL.Path
		if urlPath == "/" {
			urlPath = "/index.html"
		}
		filePath := filepath.Join(dir, filepath.Clean("/"+urlPath))
		if info, err := os.Stat(filePath); err != nil || info.IsDir() {
			http.ServeFile(w, r, filepath.Join(dir, "index.html"))
			return
		}
		http.ServeFile(w, r, filePath)
	})
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
