// Package app wires the campus auth server runtime: config, logging, the
// HTTP surface, and the background session sweeper.
package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"campusauth/cmd/directory"
	"campusauth/cmd/internal/auth/account"
	authapi "campusauth/cmd/internal/auth/api"
	"campusauth/cmd/internal/auth/session"
	"campusauth/cmd/security/password"
	"campusauth/cmd/security/token"

	"github.com/jackc/pgx/v5/pgxpool"
)

// App is the campus auth server runtime.
type App struct {
	cfg Config
	log Logger

	dbPool    *pgxpool.Pool
	dbEnabled bool

	sessions *session.Service
	sweeper  *session.Sweeper
	auth     *authapi.Handler
}

// New constructs a fully wired App instance from config and logger.
//
// Without CAMPUS_DATABASE_URL the app falls back to in-memory stores: useful
// for local development, never for production.
func New(ctx context.Context, cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel)
	}

	var (
		dbPool    *pgxpool.Pool
		dbEnabled bool
		dirStore  directory.Store
		sessStore session.Store
	)

	if cfg.DatabaseURL == "" {
		log.Info("db.disabled.inmemory_store")
		dirStore = directory.NewMemoryStore()
		sessStore = session.NewMemoryStore()
	} else {
		if cfg.MigrateOnStart {
			if err := Migrate(cfg, log); err != nil {
				return nil, err
			}
		}

		pool, err := NewDBPool(ctx, cfg)
		if err != nil {
			return nil, err
		}
		log.Info("db.enabled.postgres_store")

		dbPool = pool
		dbEnabled = true
		ds, err := directory.NewPostgresStore(pool)
		if err != nil {
			pool.Close()
			return nil, err
		}
		dirStore = ds
		sessStore = session.NewPostgresStore(pool)
	}

	sessCfg, err := session.LoadConfigFromEnv()
	if err != nil {
		closePool(dbPool)
		return nil, err
	}
	sessions := session.NewService(sessCfg, sessStore, log)

	pwCfg, err := password.FromEnv()
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	tokCfg, err := token.FromEnv()
	if err != nil {
		closePool(dbPool)
		return nil, err
	}
	issuer, err := token.NewIssuer(tokCfg)
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	accounts, err := account.NewService(dirStore, pwCfg, issuer, sessions, log)
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	authHandler, err := authapi.NewHandler(log, authapi.LoadConfigFromEnv(), accounts, sessions)
	if err != nil {
		closePool(dbPool)
		return nil, err
	}

	return &App{
		cfg:       cfg,
		log:       log,
		dbPool:    dbPool,
		dbEnabled: dbEnabled,
		sessions:  sessions,
		sweeper:   session.NewSweeper(sessions, sessCfg.SweepInterval, log),
		auth:      authHandler,
	}, nil
}

// Run starts the HTTP server and the session sweeper and blocks until
// context cancellation or a fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.log, a.cfg, a.dbPool, a.dbEnabled, a.auth)

	var handler http.Handler = mux
	handler = WithCORS(handler, a.cfg, a.log)
	handler = WithSecurityHeaders(handler)
	handler = WithRequestLogging(handler, a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start", "addr", a.cfg.HTTPAddr, "db_enabled", a.dbEnabled)

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		a.sweeper.Run(sweepCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		runErr = err
	}

	stopSweeper()
	wg.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		if runErr == nil {
			runErr = err
		}
	}

	closePool(a.dbPool)

	a.log.Info("server.stopped")
	return runErr
}

func closePool(pool *pgxpool.Pool) {
	if pool != nil {
		pool.Close()
	}
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
