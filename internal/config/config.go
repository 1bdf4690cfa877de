package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "NEWSVERDICT_CONFIG"
	vectorizerPathEnv = "VECTORIZER_PATH"
	modelPathEnv      = "MODEL_PATH"
	httpAddrEnv       = "HTTP_ADDR"
	logLevelEnv       = "LOG_LEVEL"
	redisAddrEnv      = "REDIS_ADDR"
	redisPasswordEnv  = "REDIS_PASSWORD"
	historyDriverEnv  = "HISTORY_DRIVER"
	historyDSNEnv     = "HISTORY_DSN"
	awsRegionEnv      = "AWS_REGION"
)

// Config holds high-level settings required across the application.
type Config struct {
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Server    ServerConfig    `yaml:"server"`
	Logging   LoggingConfig   `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	History   HistoryConfig   `yaml:"history"`
	Language  LanguageConfig  `yaml:"language"`
	S3        S3Config        `yaml:"s3"`
}

// ArtifactsConfig points at the exported vectorizer and classifier. Locations
// are local paths or s3://bucket/key URIs.
type ArtifactsConfig struct {
	Vectorizer string `yaml:"vectorizer"`
	Model      string `yaml:"model"`
	BaseDir    string `yaml:"baseDir"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	MaxBodyBytes    int64         `yaml:"maxBodyBytes"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CacheConfig enables the Redis prediction cache when Addr is set.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
	Prefix   string        `yaml:"prefix"`
}

// Enabled reports whether a Redis address is configured.
func (c CacheConfig) Enabled() bool {
	return c.Addr != ""
}

// HistoryConfig enables the verdict history when Driver is set.
type HistoryConfig struct {
	Driver        string        `yaml:"driver"`
	DSN           string        `yaml:"dsn"`
	Retention     time.Duration `yaml:"retention"`
	PruneInterval time.Duration `yaml:"pruneInterval"`
}

// Enabled reports whether a history driver is configured.
func (h HistoryConfig) Enabled() bool {
	return h.Driver != ""
}

// LanguageConfig drives optional language detection.
type LanguageConfig struct {
	Enabled   bool     `yaml:"enabled"`
	Languages []string `yaml:"languages"`
}

// S3Config contains optional overrides for the AWS S3 client.
type S3Config struct {
	Region       string `yaml:"region"`
	Profile      string `yaml:"profile"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"usePathStyle"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg, err := LoadPath(os.Getenv(configPathEnv))
	if err != nil {
		log.Printf("config: %v (falling back to defaults)", err)
	}
	return cfg
}

// LoadPath merges the file at path (when set) over the defaults and applies
// environment overrides. On a file error the defaults are still returned.
func LoadPath(path string) (Config, error) {
	cfg := defaultConfig()

	var err error
	if path != "" {
		cfg, err = LoadFile(cfg, path)
	}

	cfg.applyEnvOverrides()
	return cfg, err
}

// LoadFile merges the YAML file at path over base.
func LoadFile(base Config, path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		return base, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	return mergeConfig(base, fileCfg), nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(vectorizerPathEnv); v != "" {
		c.Artifacts.Vectorizer = v
	}
	if v := os.Getenv(modelPathEnv); v != "" {
		c.Artifacts.Model = v
	}

	if v := os.Getenv(httpAddrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(redisAddrEnv); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv(redisPasswordEnv); v != "" {
		c.Cache.Password = v
	}

	if v := os.Getenv(historyDriverEnv); v != "" {
		c.History.Driver = strings.ToLower(v)
	}
	if v := os.Getenv(historyDSNEnv); v != "" {
		c.History.DSN = v
	}

	if v := os.Getenv(awsRegionEnv); v != "" {
		c.S3.Region = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Artifacts.Vectorizer != "" {
		base.Artifacts.Vectorizer = override.Artifacts.Vectorizer
	}
	if override.Artifacts.Model != "" {
		base.Artifacts.Model = override.Artifacts.Model
	}
	if override.Artifacts.BaseDir != "" {
		base.Artifacts.BaseDir = override.Artifacts.BaseDir
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.ReadTimeout > 0 {
		base.Server.ReadTimeout = override.Server.ReadTimeout
	}
	if override.Server.WriteTimeout > 0 {
		base.Server.WriteTimeout = override.Server.WriteTimeout
	}
	if override.Server.ShutdownTimeout > 0 {
		base.Server.ShutdownTimeout = override.Server.ShutdownTimeout
	}
	if override.Server.MaxBodyBytes > 0 {
		base.Server.MaxBodyBytes = override.Server.MaxBodyBytes
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	if override.Cache.Addr != "" {
		base.Cache.Addr = override.Cache.Addr
	}
	if override.Cache.Password != "" {
		base.Cache.Password = override.Cache.Password
	}
	if override.Cache.DB != 0 {
		base.Cache.DB = override.Cache.DB
	}
	if override.Cache.TTL > 0 {
		base.Cache.TTL = override.Cache.TTL
	}
	if override.Cache.Prefix != "" {
		base.Cache.Prefix = override.Cache.Prefix
	}

	if override.History.Driver != "" {
		base.History.Driver = strings.ToLower(override.History.Driver)
	}
	if override.History.DSN != "" {
		base.History.DSN = override.History.DSN
	}
	if override.History.Retention > 0 {
		base.History.Retention = override.History.Retention
	}
	if override.History.PruneInterval > 0 {
		base.History.PruneInterval = override.History.PruneInterval
	}

	if override.Language.Enabled {
		base.Language.Enabled = true
	}
	if len(override.Language.Languages) > 0 {
		base.Language.Languages = override.Language.Languages
	}

	if override.S3.Region != "" {
		base.S3.Region = override.S3.Region
	}
	if override.S3.Profile != "" {
		base.S3.Profile = override.S3.Profile
	}
	if override.S3.Endpoint != "" {
		base.S3.Endpoint = override.S3.Endpoint
	}
	if override.S3.UsePathStyle {
		base.S3.UsePathStyle = true
	}

	return base
}

// Default returns the built-in configuration.
func Default() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Artifacts: ArtifactsConfig{Vectorizer: "vectorizer.json", Model: "model.json"},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MaxBodyBytes:    4 << 20,
		},
		Logging: LoggingConfig{Level: "info"},
		Cache:   CacheConfig{TTL: 24 * time.Hour, Prefix: "newsverdict"},
		History: HistoryConfig{
			Retention:     30 * 24 * time.Hour,
			PruneInterval: time.Hour,
		},
		Language: LanguageConfig{Languages: []string{"en", "de", "fr", "es"}},
	}
}
