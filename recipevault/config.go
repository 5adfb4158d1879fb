package recipevault

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Server  ServerConfig  `toml:"server"`
	DB      DBConfig      `toml:"db"`
	Auth    AuthConfig    `toml:"auth"`
	Storage StorageConfig `toml:"storage"`
	Spaces  SpacesConfig  `toml:"spaces"`
}

// LogConfig sets the minimum level; the level text form ("DEBUG",
// "INFO", ...) is accepted via slog.Level's TextUnmarshaler.
type LogConfig struct {
	Level slog.Level `toml:"level"`
}

type ServerConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	AllowOrigins string `toml:"allow_origins"`
}

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

type AuthConfig struct {
	TokenCacheSize int `toml:"token_cache_size"`
	TokenCacheTTL  int `toml:"token_cache_ttl"` // seconds
}

// StorageConfig selects where uploaded recipe images are kept.
// Driver is either "local" or "spaces".
type StorageConfig struct {
	Driver   string `toml:"driver"`
	LocalDir string `toml:"local_dir"`
	BaseURL  string `toml:"base_url"`
}

type SpacesConfig struct {
	Key       string `toml:"key"`
	Secret    string `toml:"secret"`
	Region    string `toml:"region"`
	Bucket    string `toml:"bucket"`
	MediaRoot string `toml:"media_root"`
}
