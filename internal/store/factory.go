package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Store is a TokenStore holding a releasable resource.
type Store interface {
	carepoint.TokenStore
	Close() error
}

var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*FileStore)(nil)
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*RedisStore)(nil)
	_ Store = (*NATSStore)(nil)
)

// DefaultStoreConfig returns the in-memory configuration.
func DefaultStoreConfig() *carepoint.StoreConfig {
	return &carepoint.StoreConfig{Type: carepoint.StoreTypeMemory}
}

// DefaultPath returns ~/.carepoint/<name> for file backed stores.
func DefaultPath(storeType carepoint.StoreType) string {
	name := constants.DefaultStoreFile
	if storeType == carepoint.StoreTypeSQLite {
		name = constants.DefaultSQLiteFile
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(constants.ConfigDirName, name)
	}

	return filepath.Join(home, constants.ConfigDirName, name)
}

// NewStoreFromConfig creates a credential store from configuration.
func NewStoreFromConfig(ctx context.Context, config *carepoint.StoreConfig) (Store, error) {
	if config == nil {
		config = DefaultStoreConfig()
	}

	switch config.Type {
	case carepoint.StoreTypeMemory, "":
		return NewMemoryStore(), nil

	case carepoint.StoreTypeFile:
		path := config.Path
		if path == "" {
			path = DefaultPath(config.Type)
		}

		return NewFileStore(path)

	case carepoint.StoreTypeSQLite:
		path := config.Path
		if path == "" {
			path = DefaultPath(config.Type)
			if err := os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm); err != nil {
				return nil, fmt.Errorf("creating credential directory: %w", err)
			}
		}

		return OpenSQLiteStore(ctx, path)

	case carepoint.StoreTypeRedis:
		if config.Redis == nil {
			return nil, fmt.Errorf("%w: redis", constants.ErrStoreConfigRequired)
		}

		return DialRedisStore(ctx, config.Redis.Addr, config.Redis.Password, config.Redis.DB, config.Redis.Prefix)

	case carepoint.StoreTypeNATS:
		if config.NATS == nil {
			return nil, fmt.Errorf("%w: nats", constants.ErrStoreConfigRequired)
		}

		return DialNATSStore(config.NATS.URL, config.NATS.Bucket)

	default:
		return nil, fmt.Errorf("%w: %s", constants.ErrUnsupportedStoreType, config.Type)
	}
}

// Builder helps build store configurations.
type Builder struct {
	config *carepoint.StoreConfig
}

// NewBuilder creates a builder defaulting to the memory store.
func NewBuilder() *Builder {
	return &Builder{config: DefaultStoreConfig()}
}

// WithType sets the store type.
func (b *Builder) WithType(storeType carepoint.StoreType) *Builder {
	b.config.Type = storeType

	return b
}

// WithPath sets the file or database path.
func (b *Builder) WithPath(path string) *Builder {
	b.config.Path = path

	return b
}

// WithRedis sets Redis configuration.
func (b *Builder) WithRedis(config *carepoint.RedisStoreConfig) *Builder {
	b.config.Redis = config

	return b
}

// WithNATS sets NATS configuration.
func (b *Builder) WithNATS(config *carepoint.NATSStoreConfig) *Builder {
	b.config.NATS = config

	return b
}

// Config returns a copy of the configuration built so far.
func (b *Builder) Config() carepoint.StoreConfig {
	return *b.config
}

// Build creates the store from the configuration.
func (b *Builder) Build(ctx context.Context) (Store, error) {
	return NewStoreFromConfig(ctx, b.config)
}
