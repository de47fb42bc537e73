package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"workforce/internal/db"
	"workforce/internal/domain/audit"
	"workforce/internal/domain/locum"
	"workforce/internal/domain/org"
	"workforce/internal/domain/payroll"
	"workforce/internal/platform/config"
	authhandler "workforce/internal/transport/http/handlers/auth"
	locumhandler "workforce/internal/transport/http/handlers/locum"
	payrollhandler "workforce/internal/transport/http/handlers/payroll"
	"workforce/internal/transport/http/middleware"
)

type App struct {
	Config config.Config
	DB     *pgxpool.Pool
	Router chi.Router
}

// New connects, migrates and seeds per config, then assembles the router.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := db.Connect(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("db connect: %w", err)
	}

	if cfg.RunMigrations {
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	if cfg.RunSeed {
		if err := db.Seed(ctx, pool, cfg); err != nil {
			pool.Close()
			return nil, fmt.Errorf("seed: %w", err)
		}
	}

	svcCfg, err := payrollServiceConfig(cfg)
	if err != nil {
		pool.Close()
		return nil, err
	}

	app := &App{Config: cfg, DB: pool}
	app.Router = buildRouter(cfg, pool, svcCfg)
	return app, nil
}

// payrollServiceConfig resolves the statutory rates override. A RATES_FILE
// that cannot be loaded fails startup: computing payroll from stale seeded
// rates while the operator believes an override is active is worse than not
// starting.
func payrollServiceConfig(cfg config.Config) (payroll.ServiceConfig, error) {
	svcCfg := payroll.ServiceConfig{
		StandardWorkdayHours:   cfg.StandardWorkdayHours,
		PayslipVisibilityDelay: cfg.PayslipVisibilityDelay,
	}
	if cfg.RatesFile != "" {
		rates, err := payroll.LoadRatesFile(cfg.RatesFile)
		if err != nil {
			return payroll.ServiceConfig{}, fmt.Errorf("rates file %s: %w", cfg.RatesFile, err)
		}
		svcCfg.RatesOverride = &rates
	}
	return svcCfg, nil
}

func buildRouter(cfg config.Config, pool *pgxpool.Pool, svcCfg payroll.ServiceConfig) chi.Router {
	payrollSvc := payroll.NewService(payroll.NewStore(pool), svcCfg)
	locumSvc := locum.NewService(locum.NewStore(pool))
	auditSvc := audit.New(pool)
	orgStore := org.NewStore(pool)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Logger)
	router.Use(chimw.Recoverer)
	router.Use(middleware.BodyLimit(cfg.MaxBodyBytes))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Auth(cfg.JWTSecret))

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := pool.Ping(ctx); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	router.Route("/api/v1", func(r chi.Router) {
		authHandler := authhandler.NewHandler(pool, cfg.JWTSecret)
		r.Post("/auth/login", authHandler.HandleLogin)

		payrollhandler.NewHandler(payrollSvc, auditSvc, orgStore).RegisterRoutes(r)
		locumhandler.NewHandler(locumSvc, auditSvc).RegisterRoutes(r)
	})

	return router
}

// migrationsDir walks up from the working directory so tests run from a
// package directory find the repo-level migrations.
func migrationsDir() string {
	dir := "migrations"
	for i := 0; i < 6; i++ {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
		dir = filepath.Join("..", dir)
	}
	return "migrations"
}

func (a *App) Run() error {
	return http.ListenAndServe(a.Config.Addr, a.Router)
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
