package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/heiheiheiha00/restaurant-order-system/internal/backend"
	"github.com/heiheiheiha00/restaurant-order-system/internal/domain/order"
	"github.com/heiheiheiha00/restaurant-order-system/internal/session"
	"github.com/heiheiheiha00/restaurant-order-system/internal/web"
	"github.com/heiheiheiha00/restaurant-order-system/pkg/health"
	"github.com/heiheiheiha00/restaurant-order-system/pkg/httpmiddleware"
)

// RunCustomer wires and serves the customer front end.
func RunCustomer(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	d := buildDeps(ctx, cfg)
	frontend := web.NewCustomer(d.sessions, d.client, d.orders)
	return serve(ctx, lg, m, cfg, "customer-frontend", frontend.Router())
}

// RunMerchant wires and serves the merchant front end.
func RunMerchant(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	d := buildDeps(ctx, cfg)
	frontend := web.NewMerchant(d.sessions, d.client, d.orders)
	return serve(ctx, lg, m, cfg, "merchant-frontend", frontend.Router())
}

// deps are the shared collaborators of both front ends.
type deps struct {
	client   *backend.Client
	sessions *session.Manager
	orders   *order.Controller
}

func buildDeps(ctx context.Context, cfg *Config) deps {
	client := backend.NewClient(cfg.BackendURL, cfg.BackendTimeout)
	store := session.NewMemoryStore(ctx, cfg.Session.TTL)
	return deps{
		client:   client,
		sessions: session.NewManager(store, cfg.Session.CookieName, cfg.Session.Secure),
		orders:   order.NewController(client, client),
	}
}

// serve starts the HTTP server for one front end and handles graceful
// shutdown. It is the single wiring point shared by both binaries.
func serve(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config, name string, router *mux.Router) error {
	lg.Info("Initializing",
		zap.String("frontend", name),
		zap.String("addr", cfg.Addr),
		zap.String("backend", cfg.BackendURL),
	)

	// Health check service. Readiness follows backend reachability: a front
	// end that cannot reach the order service has nothing to serve.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("backend", cfg.BackendTimeout,
		health.HTTPGetCheck(cfg.BackendURL+"/menu", cfg.BackendTimeout))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	// Route-aware middleware runs inside the router so the matched template
	// is available for metrics and logs.
	router.Use(
		httpmiddleware.Instrument(name, m),
		httpmiddleware.LogRequests(),
	)

	root := http.NewServeMux()
	root.HandleFunc("/livez", healthSvc.LiveEndpoint)
	root.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	root.Handle("/", router)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(root,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				AllowOrigins:     cfg.CORS.Origins,
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           86400,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Max:    cfg.RateLimit.Max,
				Window: cfg.RateLimit.Window,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
