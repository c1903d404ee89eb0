package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/bankfront/internal/client/config"
	"github.com/dmitrijs2005/bankfront/internal/client/crosstab"
	"github.com/dmitrijs2005/bankfront/internal/client/repositories/storage"
	"github.com/dmitrijs2005/bankfront/internal/filex"
	"github.com/dmitrijs2005/bankfront/internal/logging"
	"github.com/google/uuid"
)

// Backend is the persistent store selected by configuration, plus the
// source of change notifications from other processes sharing it.
type Backend struct {
	Store storage.Store
	// Source is nil when the backend cannot report foreign writes.
	Source crosstab.Source
	close  func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// OpenBackend opens the storage backend named by c.StorageBackend.
func OpenBackend(ctx context.Context, c *config.Config, logger logging.Logger) (*Backend, error) {
	switch c.StorageBackend {
	case config.StorageSQLite:
		path, err := filex.EnsureParentDir(c.StoragePath)
		if err != nil {
			return nil, err
		}
		db, err := storage.OpenSQLite(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		b := &Backend{Store: storage.NewSQLiteStore(db), close: db.Close}
		if c.WatchStorage {
			b.Source = crosstab.NewFileSource(path, logger)
		}
		return b, nil

	case config.StorageKeyring:
		return &Backend{Store: storage.NewKeyringStore(c.KeyringService)}, nil

	case config.StorageRedis:
		rdb, err := storage.NewRedisClient(ctx, c.RedisAddr)
		if err != nil {
			return nil, err
		}
		origin := uuid.NewString()
		b := &Backend{
			Store: storage.NewRedisStore(rdb, storage.RedisOptions{
				Channel: c.RedisChannel,
				Origin:  origin,
			}),
			close: rdb.Close,
		}
		if c.WatchStorage {
			b.Source = crosstab.NewRedisSource(rdb, c.RedisChannel, origin, logger)
		}
		return b, nil

	case config.StorageMemory:
		return &Backend{Store: storage.NewMemoryStore()}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}
