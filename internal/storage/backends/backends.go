// Package backends selects the Storage implementation named by configuration.
package backends

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"realtyhub/internal/cache"
	"realtyhub/internal/config"
	"realtyhub/internal/database"
	"realtyhub/internal/metrics"
	"realtyhub/internal/storage"
	"realtyhub/internal/storage/memory"
	"realtyhub/internal/storage/mongo"
	"realtyhub/internal/storage/relational"
)

const poolStatsInterval = 15 * time.Second

// backend runs extra cleanup after the wrapped Storage closes
type backend struct {
	storage.Storage
	closers []func() error
}

func (b *backend) Close(ctx context.Context) error {
	err := b.Storage.Close(ctx)
	for _, closeFn := range b.closers {
		if cerr := closeFn(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open connects the configured backend. Every call is instrumented, and the
// public reads are cached when the cache is enabled. A cache that cannot be
// reached is skipped with a warning; an unreachable backend is an error.
func Open(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	b := &backend{}

	var inner storage.Storage
	switch {
	case cfg.Storage.Driver == config.DriverMemory:
		log.Println("[STORAGE] Using in-memory storage; data is lost on restart")
		inner = memory.New()

	case cfg.Storage.Driver == config.DriverMongo:
		store, err := mongo.Connect(ctx, cfg.Storage.URL, cfg.Storage.MongoDatabase, cfg.Storage.ConnectTimeout)
		if err != nil {
			return nil, err
		}
		log.Printf("[STORAGE] Connected to MongoDB database %q", cfg.Storage.MongoDatabase)
		inner = store

	case cfg.Storage.IsRelational():
		db, err := database.Open(&cfg.Storage)
		if err != nil {
			return nil, storage.Unavailable("connect", err)
		}
		store, err := relational.New(db)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
		log.Printf("[STORAGE] Connected to %s database", cfg.Storage.Driver)
		inner = store

		stop := make(chan struct{})
		go reportPoolStats(store, stop)
		b.closers = append(b.closers, func() error {
			close(stop)
			return nil
		})

	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Storage.Driver)
	}

	var wrapped storage.Storage = storage.NewInstrumented(inner)

	if cfg.Cache.Enabled {
		redisCache, err := cache.NewRedis(ctx, &cfg.Cache)
		if err != nil {
			log.Printf("[CACHE] Warning: cache disabled: %v", err)
		} else {
			log.Printf("[CACHE] Caching public reads in Redis at %s (ttl=%v)", cfg.Cache.Addr, cfg.Cache.TTL)
			wrapped = storage.NewCached(wrapped, redisCache, cfg.Cache.TTL)
			b.closers = append(b.closers, redisCache.Close)
		}
	}

	b.Storage = wrapped
	return b, nil
}

type poolStatser interface {
	Stats() (*sql.DBStats, error)
}

func reportPoolStats(db poolStatser, stop <-chan struct{}) {
	ticker := time.NewTicker(poolStatsInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			stats, err := db.Stats()
			if err != nil {
				continue
			}
			metrics.UpdateDBConnections(stats.InUse, stats.Idle)
		}
	}
}
