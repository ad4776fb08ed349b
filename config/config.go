// Package config provides configuration management for browsefs.
// It handles loading and validating configuration from YAML files and
// environment variables.
package config

import "time"

// AppConfig represents the complete application configuration
type AppConfig struct {
	Server     ServerConfig     `koanf:"server"`
	Auth       AuthConfig       `koanf:"auth"`
	Log        LogConfig        `koanf:"log"`
	Metrics    MetricsConfig    `koanf:"metrics"`
	Cache      CacheConfig      `koanf:"cache"`
	Connectors ConnectorsConfig `koanf:"connectors"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	ListenAddr     string        `koanf:"listen_addr"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	WalkTimeout    time.Duration `koanf:"walk_timeout"`
	RateLimit      float64       `koanf:"rate_limit"` // requests per second, 0 disables
	RateLimitBurst int           `koanf:"rate_limit_burst"`
}

// AuthConfig holds authentication configuration. An empty key list disables
// authentication, for trusted-network deployments.
type AuthConfig struct {
	APIKeys []string `koanf:"api_keys"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	ListenAddr string `koanf:"listen_addr"`
}

// CacheConfig holds listing page cache configuration. When RedisAddr is set
// the cache is shared through Redis; otherwise an in-memory cache is used.
type CacheConfig struct {
	Enabled       bool          `koanf:"enabled"`
	TTL           time.Duration `koanf:"ttl"`
	MaxEntries    int           `koanf:"max_entries"`
	RedisAddr     string        `koanf:"redis_addr"`
	RedisPassword string        `koanf:"redis_password"`
}

// ConnectorsConfig holds per-kind storage connector configuration. A kind
// with an empty root path is not registered.
type ConnectorsConfig struct {
	HDFS WebHDFSConfig `koanf:"hdfs"`
	OFS  WebHDFSConfig `koanf:"ofs"`
	S3   S3Config      `koanf:"s3"`
	ADLS AzureConfig   `koanf:"adls"`
	ABFS AzureConfig   `koanf:"abfs"`
}

// WebHDFSConfig holds settings for a WebHDFS-compatible endpoint, used for
// both HDFS namenodes and Ozone (ofs).
type WebHDFSConfig struct {
	URL      string `koanf:"url"`
	Username string `koanf:"username"`
	RootPath string `koanf:"root_path"`
}

// S3Config holds S3 connector configuration
type S3Config struct {
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"` // Custom S3 endpoint (e.g., for MinIO)
	RootPath  string `koanf:"root_path"`
	Enabled   bool   `koanf:"enabled"`
}

// AzureConfig holds ADLS Gen2 connector configuration, shared by the adls
// and abfs kinds.
type AzureConfig struct {
	AccountName    string `koanf:"account_name"`
	EndpointSuffix string `koanf:"endpoint_suffix"`
	AccessToken    string `koanf:"access_token"`
	Endpoint       string `koanf:"endpoint"` // Custom DFS endpoint (e.g., for Azurite)
	RootPath       string `koanf:"root_path"`
}
