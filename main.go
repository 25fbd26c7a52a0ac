// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/events"
	"github.com/danielhkuo/livepoll/export"
	"github.com/danielhkuo/livepoll/handlers"
	"github.com/danielhkuo/livepoll/refresh"
	"github.com/danielhkuo/livepoll/router"
	"github.com/danielhkuo/livepoll/s3blob"
	"github.com/danielhkuo/livepoll/simulate"
	"github.com/danielhkuo/livepoll/store"
	"github.com/danielhkuo/livepoll/vote"
	"github.com/danielhkuo/livepoll/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	setupLogging(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("livepoll stopped", "error", err)
		os.Exit(1)
	}
	slog.Info("livepoll stopped")
}

func setupLogging(cfg cliparse.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	if strings.EqualFold(cfg.LogFormat, "json") {
		h = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		h = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(h))
}

func run(ctx context.Context, cfg cliparse.Config) error {
	// Storage
	var kv store.KV
	var redisKV *store.RedisKV
	switch cfg.DatabaseType {
	case cliparse.DatabaseRedis:
		rkv, err := store.NewRedisKV(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return err
		}
		kv, redisKV = rkv, rkv
	default:
		conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer conn.Close()
		kv = store.NewSQLKV(conn)
	}
	defer kv.Close()
	slog.Info("Storage ready", "type", cfg.DatabaseType)

	st := store.New(kv)

	// Event bus; Redis lets several instances share notifications
	var bus events.Bus = events.NewMemoryBus()
	if cfg.Redis.Addr != "" {
		if redisKV == nil {
			rkv, err := store.NewRedisKV(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
			if err != nil {
				return err
			}
			defer rkv.Close()
			redisKV = rkv
		}
		bus = events.NewRedisBus(redisKV.Client())
		slog.Info("Using redis event bus", "addr", cfg.Redis.Addr, "channel", events.Channel)
	}

	policy := vote.PolicyFromConfig(cfg.Voting)
	proc := vote.NewProcessor(st, bus, policy, cfg.Currency)
	if cfg.Voting.SeedSamples {
		seeded, err := proc.Seed(ctx)
		if err != nil {
			return err
		}
		if seeded {
			slog.Info("Seeded sample polls")
		}
	}

	loop := refresh.NewLoop(st, cfg.Refresh.Interval.Duration)
	feed := events.NewFeed()
	hub := ws.NewHub(loop)
	loop.OnChange(hub.PublishSnapshot)

	// Each consumer gets its own subscription
	refreshEvents, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	feedEvents, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}
	hubEvents, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	var archiver *export.Archiver
	if cfg.S3.Bucket != "" {
		client, err := s3blob.New(ctx, cfg.S3)
		if err != nil {
			return err
		}
		if err := client.Health(ctx); err != nil {
			slog.Warn("s3 bucket not reachable", "bucket", client.Bucket(), "error", err)
		}
		archiver = export.NewArchiver(s3blob.NewWriter(client), st, cfg.Export.ArchivePrefix, cfg.Export.IncludeWeight)
	}

	deps := router.Deps{
		Config:    cfg,
		Processor: proc,
		Loop:      loop,
		Feed:      feed,
		Hub:       hub,
	}
	// A nil *Archiver must not become a non-nil interface
	if archiver != nil {
		deps.Archiver = handlers.Archiver(archiver)
	}

	server := &http.Server{
		Handler:           router.NewRouter(deps),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return loop.Run(ctx, refresh.Trigger(ctx, refreshEvents))
	})
	g.Go(func() error {
		feed.Follow(ctx, feedEvents)
		return nil
	})
	g.Go(func() error {
		hub.Follow(ctx, hubEvents)
		return nil
	})
	g.Go(func() error {
		return hub.Run(ctx)
	})

	if cfg.Simulation.Enabled {
		gen := simulate.NewGenerator(proc, loop, policy,
			cfg.Simulation.MinInterval.Duration, cfg.Simulation.MaxInterval.Duration,
			uint64(time.Now().UnixNano()))
		slog.Info("Vote simulation enabled",
			"min_interval", cfg.Simulation.MinInterval.Duration,
			"max_interval", cfg.Simulation.MaxInterval.Duration)
		g.Go(func() error {
			return gen.Run(ctx)
		})
	}

	if archiver != nil && cfg.Export.ArchiveInterval.Duration > 0 {
		g.Go(func() error {
			return archiver.Run(ctx, cfg.Export.ArchiveInterval.Duration)
		})
	}

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
