package config

import "time"

// DefaultAppConfig returns an AppConfig struct with sensible default values
func DefaultAppConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{
			ListenAddr:     ":8080",
			ReadTimeout:    30 * time.Second,
			WriteTimeout:   30 * time.Second,
			WalkTimeout:    60 * time.Second,
			RateLimit:      100,
			RateLimitBurst: 200,
		},
		Auth: AuthConfig{
			APIKeys: nil,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Metrics: MetricsConfig{
			ListenAddr: ":9090",
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        30 * time.Second,
			MaxEntries: 10000,
		},
		Connectors: ConnectorsConfig{
			HDFS: WebHDFSConfig{
				RootPath: "/",
			},
			OFS: WebHDFSConfig{
				RootPath: "ofs://",
			},
			S3: S3Config{
				Region:   "us-east-1",
				RootPath: "s3a://",
			},
			ADLS: AzureConfig{
				EndpointSuffix: "dfs.core.windows.net",
				RootPath:       "adl://",
			},
			ABFS: AzureConfig{
				EndpointSuffix: "dfs.core.windows.net",
				RootPath:       "abfs://",
			},
		},
	}
}
