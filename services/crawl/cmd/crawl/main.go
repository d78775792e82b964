package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"bookapp/internal/runlock"
	"bookapp/internal/util"
	"bookapp/pkg/store"
	"bookapp/services/crawl/internal/app"
	"bookapp/services/crawl/internal/config"
	"bookapp/services/crawl/internal/sched"
	"bookapp/services/crawl/internal/server"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	util.InitLogger(cfg.LogLevel)

	dataStore, err := store.NewGormStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to init postgres store: %v", err)
	}

	// Runs left "running" by an abrupt exit of a previous process life are
	// terminal failures; sweep them before the scheduler can start new ones.
	if swept, err := dataStore.SweepOrphanedRuns(time.Now().UTC()); err != nil {
		log.Fatalf("failed to sweep orphaned runs: %v", err)
	} else if swept > 0 {
		slog.Warn("swept orphaned crawl runs", "count", swept)
	}

	appCore, err := app.New(app.Config{
		Store:           dataStore,
		NavTimeout:      time.Duration(cfg.NavTimeoutSeconds) * time.Second,
		RenderWait:      time.Duration(cfg.RenderWaitSeconds) * time.Second,
		DisableHeadless: cfg.DisableHeadless,
		CrawlDelay:      time.Duration(cfg.CrawlDelaySeconds) * time.Second,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	var lock *runlock.Lock
	if cfg.RedisAddr != "" {
		lock, err = runlock.New(cfg.RedisAddr, cfg.RedisPassword, "bookapp:crawl:lock",
			time.Duration(cfg.LockTTLSeconds)*time.Second)
		if err != nil {
			log.Fatalf("failed to init run lock: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	scheduler := sched.New(sched.Config{
		App:      appCore,
		Schedule: cfg.CrawlSchedule,
		Lock:     lock,
	})
	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}

	httpServer := server.New(server.Config{App: appCore})
	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: httpServer.Router(),
		// Trigger endpoints run a full browser pass synchronously.
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("crawl server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		scheduler.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("server error", "err", err)
	}
}
