package carepoint

// StoreType represents the type of credential store backend.
type StoreType string

const (
	// StoreTypeMemory keeps credentials in process memory.
	StoreTypeMemory StoreType = "memory"

	// StoreTypeFile keeps credentials in a YAML file.
	StoreTypeFile StoreType = "file"

	// StoreTypeSQLite keeps credentials in a SQLite database.
	StoreTypeSQLite StoreType = "sqlite"

	// StoreTypeRedis keeps credentials in Redis.
	StoreTypeRedis StoreType = "redis"

	// StoreTypeNATS keeps credentials in a NATS JetStream key/value bucket.
	StoreTypeNATS StoreType = "nats"
)

// StoreConfig configures the credential store backend.
type StoreConfig struct {
	// Type is the store backend type.
	Type StoreType `json:"type" yaml:"type"`

	// Path is the file (file) or database (sqlite) location.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`

	// Redis backend configuration.
	Redis *RedisStoreConfig `json:"redis,omitempty" yaml:"redis,omitempty"`

	// NATS backend configuration.
	NATS *NATSStoreConfig `json:"nats,omitempty" yaml:"nats,omitempty"`
}

// RedisStoreConfig configures the Redis store.
type RedisStoreConfig struct {
	Addr     string `json:"addr"               yaml:"addr"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`
	DB       int    `json:"db"                 yaml:"db"`
	// Prefix namespaces keys, e.g. per user of a shared instance.
	Prefix string `json:"prefix,omitempty" yaml:"prefix,omitempty"`
}

// NATSStoreConfig configures the NATS key/value store.
type NATSStoreConfig struct {
	URL    string `json:"url"              yaml:"url"`
	Bucket string `json:"bucket,omitempty" yaml:"bucket,omitempty"`
}
