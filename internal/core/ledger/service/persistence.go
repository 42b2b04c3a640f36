package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/LeJamon/goBountySplit/internal/config"
	"github.com/LeJamon/goBountySplit/internal/core/ledger"
	"github.com/LeJamon/goBountySplit/internal/metrics"
	"github.com/LeJamon/goBountySplit/internal/storage/compression"
	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb"
	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb/leveldb"
	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb/memorydb"
	"github.com/LeJamon/goBountySplit/internal/storage/keyValueDb/pebble"
	"github.com/LeJamon/goBountySplit/internal/storage/relationaldb"
)

// OpenState opens the ledger store described by the [database] section.
func OpenState(cfg config.DatabaseConfig, logger *zap.Logger) (*ledger.Store, error) {
	var (
		db  keyValueDb.DB
		err error
	)
	switch cfg.Backend {
	case config.BackendMemory:
		db = memorydb.New()
	case config.BackendPebble:
		db, err = pebble.Open(cfg.Path, cfg.CacheSize)
	case config.BackendLevelDB:
		db, err = leveldb.Open(cfg.Path, cfg.CacheSize)
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s database at %s: %w", cfg.Backend, cfg.Path, err)
	}

	if cfg.Compression != "" {
		compressor, err := compression.Get(cfg.Compression)
		if err != nil {
			db.Close()
			return nil, err
		}
		db = keyValueDb.Compressed(db, compressor)
	}

	store, err := ledger.NewStore(db, ledger.StoreConfig{
		CacheEntries: cfg.CacheEntries,
		Logger:       logger,
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenHistory opens the transaction history described by the [history]
// section. An empty driver disables the history.
func OpenHistory(ctx context.Context, cfg config.HistoryConfig) (relationaldb.HistoryStore, error) {
	if cfg.Driver == "" {
		return nil, nil
	}
	rcfg, err := cfg.RelationalConfig()
	if err != nil {
		return nil, err
	}
	store, err := relationaldb.Open(ctx, rcfg)
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", rcfg, err)
	}
	return store, nil
}

// Open builds a Service from a loaded configuration.
func Open(ctx context.Context, cfg *config.Config, m *metrics.Metrics, logger *zap.Logger, version string) (*Service, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	state, err := OpenState(cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	history, err := OpenHistory(ctx, cfg.History)
	if err != nil {
		state.Close()
		return nil, err
	}

	logger.Info("opened ledger",
		zap.String("backend", cfg.Database.Backend),
		zap.String("path", cfg.Database.Path),
		zap.String("compression", cfg.Database.Compression),
		zap.Bool("history", history != nil))

	svc, err := New(Config{
		State:                     state,
		History:                   history,
		Metrics:                   m,
		SkipSignatureVerification: cfg.Engine.SkipSignatureVerification,
		Version:                   version,
		Logger:                    logger,
	})
	if err != nil {
		if history != nil {
			history.Close()
		}
		state.Close()
		return nil, err
	}
	return svc, nil
}
