package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/chomp/streetartctf/internal/chomp"
	"github.com/chomp/streetartctf/internal/config"
	"github.com/chomp/streetartctf/internal/database"
	"github.com/chomp/streetartctf/internal/game"
	"github.com/chomp/streetartctf/internal/handler/health"
	"github.com/chomp/streetartctf/internal/localstore"
	"github.com/chomp/streetartctf/internal/metrics"
	"github.com/chomp/streetartctf/internal/migrations"
	"github.com/chomp/streetartctf/internal/notify"
	"github.com/chomp/streetartctf/internal/remote"
	"github.com/chomp/streetartctf/internal/server"
	"github.com/chomp/streetartctf/internal/syncer"
)

const cooldownPurgeInterval = time.Minute

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- SQLite ---
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return fmt.Errorf("creating db dir: %w", err)
	}

	remotePath := filepath.Join(cfg.DBDir, "chomp.db")
	remoteDB, err := database.Open(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("opening shared store: %w", err)
	}
	defer remoteDB.Close()
	if err := migrations.Run(remoteDB); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	localPath := filepath.Join(cfg.DBDir, "local.db")
	localDB, err := database.Open(ctx, localPath, database.WithPragma("PRAGMA synchronous=NORMAL"))
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer localDB.Close()
	if err := migrations.RunLocal(localDB); err != nil {
		return fmt.Errorf("running local migrations: %w", err)
	}
	logger.Info("connected to sqlite", "remote", remotePath, "local", localPath)

	catalog, err := loadCatalog(cfg.CatalogPath)
	if err != nil {
		return err
	}
	logger.Info("catalog loaded", "pieces", catalog.Len(), "areas", len(catalog.Areas()))

	feed := remote.NewFeed()
	store := remote.NewDocStore(remoteDB, feed)

	if cfg.AdminPasswordHash == "" {
		logger.Warn("ADMIN_PASSWORD_HASH not set, admin login disabled until an admin exists")
	} else if err := store.SeedAdmin(ctx, strings.ToLower(cfg.AdminEmail), cfg.AdminPasswordHash); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}

	// --- Redis (optional) ---
	var (
		rdb       *redis.Client
		cooldowns remote.Cooldowns = store
	)
	if cfg.RedisURL != "" {
		rdb, err = openRedis(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		cooldowns = remote.NewRedisCooldowns(rdb)
		logger.Info("connected to redis")
	}

	// --- Game ---
	m := metrics.New()
	engine := game.NewEngine(ctx, game.Config{
		Catalog:     catalog,
		Local:       localstore.NewSQLStore(localDB),
		Remote:      store,
		Cooldowns:   cooldowns,
		CooldownTTL: cfg.ScanCooldown,
		Logger:      logger.With("component", "game"),
	})
	queue := notify.NewQueue(cfg.NotifyDismiss)
	adapter := syncer.New(store, catalog, engine, queue, feed.C(), cfg.SyncPollInterval, logger.With("component", "syncer"))

	broker := server.NewBroker()
	hub := server.NewHub(m.WSClients())

	engine.Observe(broker.PublishCapture)
	engine.Observe(m.ObserveCapture)
	adapter.OnSectorChange(broker.PublishSector)
	adapter.OnSectorChange(m.ObserveSectorChange)

	checks := map[string]health.Checker{
		"remote": dbChecker{remoteDB},
		"local":  dbChecker{localDB},
		"sync":   adapter,
	}
	if rdb != nil {
		checks["redis"] = redisChecker{rdb}
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Engine: engine,
		Store:  store,
		Broker: broker,
		Hub:    hub,
		SPADir: cfg.SPADir,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks, "sync").Routes())
		r.Handle("/metrics", m.Handler())
	})

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		return adapter.Run(gctx)
	})

	g.Go(func() error {
		events, cancel := queue.Subscribe()
		defer cancel()
		for {
			select {
			case <-gctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				broker.PublishNotification(ev)
				m.ObserveNotification(ev)
			}
		}
	})

	if rdb == nil {
		g.Go(func() error {
			purgeCooldowns(gctx, store, logger)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		hub.CloseAll()
		engine.Wait()
		queue.Close()
		return err
	})

	return g.Wait()
}

func loadCatalog(path string) (*chomp.Catalog, error) {
	if path == "" {
		return chomp.DefaultCatalog(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog: %w", err)
	}
	defer f.Close()
	c, err := chomp.LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// purgeCooldowns drops expired SQLite cooldown rows until ctx ends.
// Redis expires its own keys.
func purgeCooldowns(ctx context.Context, store *remote.DocStore, logger *slog.Logger) {
	ticker := time.NewTicker(cooldownPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeCooldowns(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warn("purging cooldowns", "error", err)
				}
				continue
			}
			if n > 0 {
				logger.Debug("purged cooldowns", "count", n)
			}
		}
	}
}

func openRedis(ctx context.Context, rawURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("pinging redis: %w", err)
	}
	return rdb, nil
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }

// redisChecker adapts *redis.Client to health.Checker.
type redisChecker struct{ client *redis.Client }

func (r redisChecker) Check(ctx context.Context) error { return r.client.Ping(ctx).Err() }
