package cmd

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/dmitrymomot/webauth"
	"github.com/dmitrymomot/webauth/pkg/auth"
	"github.com/dmitrymomot/webauth/pkg/authflow"
	"github.com/dmitrymomot/webauth/pkg/config"
	"github.com/dmitrymomot/webauth/pkg/cookie"
	"github.com/dmitrymomot/webauth/pkg/httpserver"
	"github.com/dmitrymomot/webauth/pkg/logger"
	"github.com/dmitrymomot/webauth/pkg/metrics"
	"github.com/dmitrymomot/webauth/pkg/session"
	"github.com/dmitrymomot/webauth/pkg/storage"
)

type gatewayConfig struct {
	ClientsFile   string `env:"AUTH_CLIENTS_FILE" envDefault:"clients.yaml" validate:"required"`
	CallbackURL   string `env:"AUTH_CALLBACK_URL" envDefault:"http://localhost:8080/auth/callback" validate:"url"`
	DefaultClient string `env:"AUTH_DEFAULT_CLIENT"`
	MetricsPath   string `env:"METRICS_PATH" envDefault:"/metrics" validate:"startswith=/"`
	AutoMigrate   bool   `env:"STORAGE_AUTO_MIGRATE" envDefault:"true"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context) error {
	var (
		logCfg     logger.Config
		gwCfg      gatewayConfig
		backendCfg backendConfig
		storeCfg   storage.Config
		sessCfg    session.Config
		cookieCfg  cookie.Config
		flowCfg    authflow.Config
		srvCfg     httpserver.Config
	)
	for _, load := range []func() error{
		func() error { return config.Load(&logCfg) },
		func() error { return config.Load(&gwCfg) },
		func() error { return config.Load(&backendCfg) },
		func() error { return config.Load(&storeCfg) },
		func() error { return config.Load(&sessCfg) },
		func() error { return config.Load(&cookieCfg) },
		func() error { return config.Load(&flowCfg) },
		func() error { return config.Load(&srvCfg) },
	} {
		if err := load(); err != nil {
			return err
		}
	}

	log := logger.NewFromConfig(logCfg, logger.WithContextExtractors(
		session.LogExtractor(sessCfg.IDAttribute),
		requestIDExtractor,
	))
	logger.SetAsDefault(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(reg)

	opened, err := openBackend(ctx, backendCfg, gwCfg.AutoMigrate, log)
	if err != nil {
		return err
	}
	if opened.sweep != nil {
		go opened.sweep(ctx)
	}
	backend := metrics.InstrumentBackend(opened.backend, m, opened.name)

	newStore := func(cfg storage.Config) *storage.Store {
		return storage.NewFromConfig(backend, cfg, storage.WithLogger(log))
	}
	holder := storage.NewHolder(func() *storage.Store { return newStore(storeCfg) })
	go reloadOnHangup(ctx, holder, newStore, log)

	cookies, err := cookie.NewFromConfig(cookieCfg)
	if err != nil {
		return err
	}
	sessions := session.NewFromConfig(cookies, sessCfg, session.WithLogger(log))
	resolver := session.NewResolver(
		session.WithAttribute(sessCfg.IDAttribute),
		session.WithResolverLogger(log),
	)

	defs, err := auth.LoadClients(gwCfg.ClientsFile,
		auth.WithOAuth2Logger(log),
		auth.WithStateSeparator(storeCfg.Separator),
	)
	if err != nil {
		return err
	}
	clients, err := auth.NewClients(gwCfg.CallbackURL, defs...)
	if err != nil {
		return err
	}

	flow, err := authflow.New(holder, resolver, clients,
		authflow.WithConfig(flowCfg),
		authflow.WithLogger(log),
		authflow.WithMetrics(m),
	)
	if err != nil {
		return err
	}

	handler := newRouter(routerDeps{
		log:           log,
		registry:      reg,
		metrics:       m,
		sessions:      sessions,
		flow:          flow,
		clients:       clients,
		defaultClient: gwCfg.DefaultClient,
		checks:        opened.checks,
		metricsPath:   gwCfg.MetricsPath,
	})

	srv := httpserver.NewFromConfig(srvCfg,
		httpserver.WithLogger(log),
		httpserver.WithStopHook(func(l *slog.Logger) {
			if err := opened.Close(context.Background()); err != nil {
				l.Error("failed to close storage backend", logger.Error(err))
			}
		}),
	)
	return srv.Run(ctx, handler)
}

type routerDeps struct {
	log           *slog.Logger
	registry      *prometheus.Registry
	metrics       *metrics.Metrics
	sessions      *session.Manager
	flow          *authflow.Flow
	clients       *auth.Clients
	defaultClient string
	checks        []httpserver.Check
	metricsPath   string
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware(d.metrics, d.metricsPath, "/healthz"))

	r.Get("/healthz", httpserver.HealthCheckHandler(d.log, d.checks...))
	r.Handle(d.metricsPath, promhttp.HandlerFor(d.registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(d.sessions.Middleware)
		r.Mount("/auth", d.flow.Router())

		names := d.clients.Names()
		for _, name := range names {
			r.With(d.flow.RequireAuth(name)).Get("/login/"+name, loggedIn)
		}

		defaultClient := d.defaultClient
		if defaultClient == "" && len(names) > 0 {
			defaultClient = names[0]
		}
		if defaultClient != "" {
			r.With(d.flow.RequireAuth(defaultClient)).Get("/me", me)
		}
	})

	return r
}

func loggedIn(w http.ResponseWriter, r *http.Request) {
	_ = webauth.Redirect(w, r, "/me")
}

func me(w http.ResponseWriter, r *http.Request) {
	p, ok := authflow.ProfileFromContext(r.Context())
	if !ok {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(p)
}

func requestIDExtractor(ctx context.Context) (slog.Attr, bool) {
	id := middleware.GetReqID(ctx)
	if id == "" {
		return slog.Attr{}, false
	}
	return logger.RequestID(id), true
}

// reloadOnHangup rebuilds the store from the environment on SIGHUP, so
// timeouts and the key prefix can change without a restart. Requests in
// flight finish on the previous store.
func reloadOnHangup(ctx context.Context, holder *storage.Holder, build func(storage.Config) *storage.Store, log *slog.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			var cfg storage.Config
			if err := config.Parse(&cfg); err != nil {
				log.ErrorContext(ctx, "store reload failed", logger.Error(err))
				continue
			}
			holder.Swap(build(cfg))
			log.InfoContext(ctx, "store reloaded",
				slog.Duration("session_timeout", cfg.SessionTimeout),
				slog.Duration("profile_timeout", cfg.ProfileTimeout),
			)
		}
	}
}
