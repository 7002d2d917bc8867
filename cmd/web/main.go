// cmd/web/main.go
//
// iSpora site API – HTTP entry point.
//
// Start-up sequence
// -----------------
//
//  1. Load configuration (.env → conf/api.yaml → ISPORA_ env, Vault refs).
//
//  2. Start the daily rotating logger (tees to console in a TTY).
//
//  3. Build shared dependencies:
//
//     • database factory   – lazy Supabase Postgres pool
//     • GeoIP locator      – optional GeoLite2-City reader
//     • rate limiter       – fixed window, bounded LRU
//     • admin guard        – optional Supabase JWT verification
//     • object store       – optional S3-compatible bucket for uploads
//
//  4. Mount every registered component under /api and serve.
//
//  5. On SIGINT/SIGTERM drain in-flight requests for http.shutdown_timeout.
//
// Large comment blocks are framed by blank “//” lines; inline comments use
// a single “//”.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/ispora/ispora-api/internal/auth"
	"github.com/ispora/ispora-api/internal/component"
	"github.com/ispora/ispora-api/internal/config"
	"github.com/ispora/ispora-api/internal/database"
	"github.com/ispora/ispora-api/internal/logger"
	"github.com/ispora/ispora-api/internal/middleware"
	"github.com/ispora/ispora-api/internal/objectstore"
	"github.com/ispora/ispora-api/internal/ratelimit"
	"github.com/ispora/ispora-api/internal/requestinfo"
	"github.com/ispora/ispora-api/internal/server"

	_ "github.com/ispora/ispora-api/components/blog"
	_ "github.com/ispora/ispora-api/components/contacts"
	_ "github.com/ispora/ispora-api/components/events"
	_ "github.com/ispora/ispora-api/components/joinrequests"
	_ "github.com/ispora/ispora-api/components/partners"
	_ "github.com/ispora/ispora-api/components/registrations"
	_ "github.com/ispora/ispora-api/components/uploads"
	_ "github.com/ispora/ispora-api/components/visits"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	logOut, err := logger.New(logger.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Console: cfg.Log.Console || runningInTTY(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = logOut.Sync() }()

	//
	// ── 1.  Database factory (connects on first use) ────────────────────
	//
	db := database.NewFactory(cfg.Database)
	if err := db.Err(); err != nil {
		// Keep serving: handlers answer 500 with a configuration hint.
		logOut.Warnw("database not configured", "err", err)
	}
	defer db.Close()

	//
	// ── 2.  Optional request enrichment and auth ───────────────────────
	//
	locator, err := requestinfo.OpenLocator(cfg.GeoIP.DBPath)
	if err != nil {
		return err
	}
	defer locator.Close()

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	if verifier == nil {
		logOut.Warn("auth not configured; admin routes are open")
	}

	deps := &component.Deps{
		Config: *cfg,
		DB:     db,
		Limiter: ratelimit.New(ratelimit.Options{
			Limit:   cfg.RateLimit.Limit,
			Window:  cfg.RateLimit.Window,
			MaxKeys: cfg.RateLimit.MaxKeys,
		}),
		Admin:   middleware.RequireAdmin(verifier, logOut),
		Locator: locator,
		Log:     logOut,
	}

	//
	// ── 3.  Object storage for uploads ─────────────────────────────────
	//
	bucket, err := objectstore.New(ctx, cfg.Storage)
	if err != nil {
		return err
	}
	if bucket != nil {
		deps.Objects = bucket
	} else {
		logOut.Info("storage not configured; uploads disabled")
	}

	//
	// ── 4.  Router and server ──────────────────────────────────────────
	//
	handler, err := server.NewRouter(deps, component.All())
	if err != nil {
		return err
	}
	srv := server.New(cfg.HTTP, handler, logOut)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logOut.Infow("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logOut.Infow("shutting down", "drain", cfg.HTTP.ShutdownTimeout)
		sctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}
