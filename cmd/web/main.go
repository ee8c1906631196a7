package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexedwards/scs/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"hotel_editor/internal/adapters/hotelapi"
	server "hotel_editor/internal/adapters/http_server"
	"hotel_editor/internal/adapters/observability"
	redisad "hotel_editor/internal/adapters/redis"
	"hotel_editor/internal/adapters/session"
	"hotel_editor/internal/shared"
	mysqlstore "hotel_editor/internal/storage/mysql"
)

func main() {
	cfg, err := shared.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	// sessions: MySQL when configured, shared with the login service
	var store scs.Store
	if cfg.MySQLDSN != "" {
		db, err := sql.Open("mysql", cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("sql.Open failed")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Fatal().Err(err).Msg("db.Ping failed")
		}
		log.Info().Msg("database connection ok")
		sessions := mysqlstore.NewSessionStore(db)
		store = sessions
		g.Go(func() error { return sessions.RunCleanup(ctx, cfg.SessionCleanupInterval) })
	} else {
		log.Warn().Msg("MYSQL_DSN is empty, sessions are kept in memory")
	}
	sm := session.New(store, cfg.SessionLifetime, cfg.IsDev())

	// deps
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cache.Close()
	if err := cache.Ping(ctx); err != nil {
		log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("redis ping failed")
	}
	api, err := hotelapi.New(cfg.HotelAPIBase, cfg.HotelAPIKey, cfg.HotelAPIRPS, cfg.HotelAPITimeout)
	if err != nil {
		log.Fatal().Err(err).Msg("hotel api client")
	}
	views, err := server.NewRenderer(sm)
	if err != nil {
		log.Fatal().Err(err).Msg("templates")
	}

	// http
	srv := server.New(server.Options{
		Log:            log.Logger,
		Sessions:       sm,
		Timeout:        cfg.RequestTimeout,
		CSRFKey:        []byte(cfg.SessionSecret),
		TrustedOrigins: cfg.TrustedOrigins,
	})
	reg := observability.InitRegistry()
	if cfg.MetricsAddr == "" {
		srv.Mount("/metrics", observability.MetricsHandler(reg))
	}
	srv.MountHandlers(&server.Handlers{
		API:           api,
		Cache:         cache,
		Sessions:      sm,
		Views:         views,
		DraftTTL:      cfg.DraftTTL,
		SubmitLockTTL: cfg.SubmitLockTTL,
	})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("editor listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error { return observability.ServeMetrics(ctx, cfg.MetricsAddr, reg) })
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("editor stopped")
		os.Exit(1)
	}
	log.Info().Msg("editor stopped")
}
