package cli

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/minbump/pkg/cache"
	"github.com/matzehuels/minbump/pkg/errors"
	"github.com/matzehuels/minbump/pkg/integrations/npm"
)

const (
	defaultCacheTTL = 24 * time.Hour
	defaultListen   = "127.0.0.1:8080"
)

// Config holds settings read from config.toml. Command-line flags override it.
type Config struct {
	Registry       string   `toml:"registry"`
	CacheBackend   string   `toml:"cache_backend"`
	CacheTTL       duration `toml:"cache_ttl"`
	RedisAddr      string   `toml:"redis_addr"`
	RedisPassword  string   `toml:"redis_password"`
	RedisDB        int      `toml:"redis_db"`
	RedisPrefix    string   `toml:"redis_prefix"`
	MongoURI       string   `toml:"mongo_uri"`
	MongoDatabase  string   `toml:"mongo_database"`
	Retries        int      `toml:"retries"`
	RetryDelay     duration `toml:"retry_delay"`
	MaxConcurrency int      `toml:"max_concurrency"`
	Listen         string   `toml:"listen"`
}

// duration decodes TOML strings such as "12h" or "30s".
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Registry:     npm.DefaultBaseURL,
		CacheBackend: cache.BackendFile,
		CacheTTL:     duration{defaultCacheTTL},
		RetryDelay:   duration{500 * time.Millisecond},
		Listen:       defaultListen,
	}
}

// LoadConfig reads path over DefaultConfig. An empty path means the default
// location, which may be absent; an explicit path must exist.
func LoadConfig(path string) (Config, []string, error) {
	cfg := DefaultConfig()
	explicit := path != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return cfg, nil, nil
		}
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return cfg, nil, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return cfg, nil, nil
		}
		return cfg, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
	}

	var unknown []string
	for _, key := range md.Undecoded() {
		unknown = append(unknown, key.String())
	}
	return cfg, unknown, cfg.Validate()
}

// Validate checks values that would otherwise fail deep inside a command.
func (c Config) Validate() error {
	if err := errors.ValidateURL(c.Registry); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "registry")
	}
	switch c.CacheBackend {
	case "", cache.BackendFile, cache.BackendRedis, cache.BackendMongo, cache.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "unknown cache_backend %q (want file, redis, mongo or none)", c.CacheBackend)
	}
	if c.CacheBackend == cache.BackendRedis && c.RedisAddr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_backend redis requires redis_addr")
	}
	if c.CacheBackend == cache.BackendMongo && (c.MongoURI == "" || c.MongoDatabase == "") {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_backend mongo requires mongo_uri and mongo_database")
	}
	if c.CacheTTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache_ttl must not be negative")
	}
	if c.Retries < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must not be negative")
	}
	if c.MaxConcurrency < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "max_concurrency must not be negative")
	}
	return nil
}

// cacheConfig translates the file settings into a cache.Config rooted at dir.
func (c Config) cacheConfig(dir string) cache.Config {
	return cache.Config{
		Backend: c.CacheBackend,
		Dir:     dir,
		Redis: cache.RedisConfig{
			Addr:     c.RedisAddr,
			Password: c.RedisPassword,
			DB:       c.RedisDB,
			Prefix:   c.RedisPrefix,
		},
		Mongo: cache.MongoConfig{
			URI:      c.MongoURI,
			Database: c.MongoDatabase,
		},
	}
}

// String renders the effective configuration as TOML, hiding secrets.
func (c Config) String() string {
	redacted := c
	if redacted.RedisPassword != "" {
		redacted.RedisPassword = "***"
	}
	if i := strings.Index(redacted.MongoURI, "@"); i > 0 {
		if j := strings.Index(redacted.MongoURI, "://"); j > 0 && j < i {
			redacted.MongoURI = redacted.MongoURI[:j+3] + "***" + redacted.MongoURI[i:]
		}
	}
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(redacted); err != nil {
		return fmt.Sprintf("%+v", redacted)
	}
	return b.String()
}

// configPath returns the config file location (~/.config/minbump/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
