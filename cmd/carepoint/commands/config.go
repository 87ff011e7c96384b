package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/carepoint-health/carepoint-client/internal/constants"
	"github.com/carepoint-health/carepoint-client/pkg/carepoint"
)

// Config represents the CLI configuration.
type Config struct {
	API            string                `json:"api,omitempty"             yaml:"api,omitempty"`
	Output         string                `json:"output"                    yaml:"output"`
	RequestTimeout string                `json:"request_timeout,omitempty" yaml:"request_timeout,omitempty"`
	RetryMax       int                   `json:"retry_max,omitempty"       yaml:"retry_max,omitempty"`
	Store          carepoint.StoreConfig `json:"store"                     yaml:"store"`
}

// configSetters maps `config set` keys onto Config fields.
var configSetters = map[string]func(*Config, string) error{
	"api": func(c *Config, v string) error {
		c.API = v

		return nil
	},
	"output": func(c *Config, v string) error {
		if !isOutputFormat(v) {
			return fmt.Errorf("%w: %s", constants.ErrInvalidOutputValue, v)
		}

		c.Output = v

		return nil
	},
	"request_timeout": func(c *Config, v string) error {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}

		c.RequestTimeout = v

		return nil
	},
	"retry_max": func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid retry_max: %w", err)
		}

		c.RetryMax = n

		return nil
	},
	"store.type": func(c *Config, v string) error {
		c.Store.Type = carepoint.StoreType(v)

		return nil
	},
	"store.path": func(c *Config, v string) error {
		c.Store.Path = v

		return nil
	},
	"store.redis.addr": func(c *Config, v string) error {
		redisConfig(c).Addr = v

		return nil
	},
	"store.redis.prefix": func(c *Config, v string) error {
		redisConfig(c).Prefix = v

		return nil
	},
	"store.nats.url": func(c *Config, v string) error {
		natsConfig(c).URL = v

		return nil
	},
	"store.nats.bucket": func(c *Config, v string) error {
		natsConfig(c).Bucket = v

		return nil
	},
}

func redisConfig(c *Config) *carepoint.RedisStoreConfig {
	if c.Store.Redis == nil {
		c.Store.Redis = &carepoint.RedisStoreConfig{}
	}

	return c.Store.Redis
}

func natsConfig(c *Config) *carepoint.NATSStoreConfig {
	if c.Store.NATS == nil {
		c.Store.NATS = &carepoint.NATSStoreConfig{}
	}

	return c.Store.NATS
}

// EnvKeyReplacer maps nested keys such as store.type to STORE_TYPE.
func EnvKeyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// ConfigDir returns ~/.carepoint.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// NewConfigCommand creates the config command group.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show and change the Carepoint CLI configuration",
	}

	cmd.AddCommand(newConfigShowCommand())
	cmd.AddCommand(newConfigSetCommand())

	return cmd
}

func newConfigShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the effective CLI configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			config := loadConfig()

			return render(cmd, config, func(table *tablewriter.Table) {
				_ = table.Append("API", valueOr(config.API, carepoint.ResolveAPIEndpoint("")))
				_ = table.Append("Output", config.Output)
				_ = table.Append("Request Timeout", valueOr(config.RequestTimeout, constants.DefaultRequestTimeout.String()))
				_ = table.Append("Retry Max", strconv.Itoa(config.RetryMax))
				_ = table.Append("Store", string(config.Store.Type))

				if config.Store.Path != "" {
					_ = table.Append("Store Path", config.Store.Path)
				}

				if config.Store.Redis != nil {
					_ = table.Append("Redis", config.Store.Redis.Addr)
				}

				if config.Store.NATS != nil {
					_ = table.Append("NATS", config.Store.NATS.URL)
				}
			}, "Property", "Value")
		},
	}
}

func newConfigSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Set a configuration value",
		Long:  "Set a configuration value. Keys: " + strings.Join(configKeys(), ", "),
		Args:  cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]

			setter, ok := configSetters[key]
			if !ok {
				return fmt.Errorf("%w: %s", constants.ErrUnknownConfigKey, key)
			}

			config := loadConfig()
			if err := setter(config, value); err != nil {
				return err
			}

			if err := saveConfigStruct(config); err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Set %s\n", key)

			return nil
		},
	}
}

func configKeys() []string {
	return []string{
		"api", "output", "request_timeout", "retry_max",
		"store.type", "store.path", "store.redis.addr", "store.redis.prefix",
		"store.nats.url", "store.nats.bucket",
	}
}

// loadConfig reads the effective configuration from viper.
func loadConfig() *Config {
	config := &Config{
		API:            viper.GetString("api"),
		Output:         viper.GetString("output"),
		RequestTimeout: viper.GetString("request_timeout"),
		RetryMax:       viper.GetInt("retry_max"),
		Store: carepoint.StoreConfig{
			Type: carepoint.StoreType(viper.GetString("store.type")),
			Path: viper.GetString("store.path"),
		},
	}

	if config.Output == "" {
		config.Output = constants.FormatTable
	}

	if config.Store.Type == "" {
		config.Store.Type = carepoint.StoreTypeFile
	}

	if addr := viper.GetString("store.redis.addr"); addr != "" {
		config.Store.Redis = &carepoint.RedisStoreConfig{
			Addr:     addr,
			Password: viper.GetString("store.redis.password"),
			DB:       viper.GetInt("store.redis.db"),
			Prefix:   viper.GetString("store.redis.prefix"),
		}
	}

	if url := viper.GetString("store.nats.url"); url != "" {
		config.Store.NATS = &carepoint.NATSStoreConfig{
			URL:    url,
			Bucket: viper.GetString("store.nats.bucket"),
		}
	}

	return config
}

func saveConfigStruct(config *Config) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configDir, err := ConfigDir()
		if err != nil {
			return err
		}

		configFile = filepath.Join(configDir, "config.yml")
	}

	if err := os.MkdirAll(filepath.Dir(configFile), constants.ConfigDirPerm); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configFile, data, constants.ConfigFilePerm); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	viper.SetConfigFile(configFile)

	if err := viper.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to reload config: %w", err)
	}

	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}

	return value
}
