package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ebogdum/browsefs/auth"
	"github.com/ebogdum/browsefs/browser"
	"github.com/ebogdum/browsefs/cache"
	"github.com/ebogdum/browsefs/config"
	"github.com/ebogdum/browsefs/connectors"
	"github.com/ebogdum/browsefs/connectors/azdfs"
	"github.com/ebogdum/browsefs/connectors/noop"
	s3connector "github.com/ebogdum/browsefs/connectors/s3"
	"github.com/ebogdum/browsefs/connectors/webhdfs"
	"github.com/ebogdum/browsefs/server"
)

var rootCmd = &cobra.Command{
	Use:   "browsefs",
	Short: "browsefs - unified lazy tree view over remote storage backends",
	Long: `browsefs presents a unified, lazily-loaded tree view over HDFS, S3,
ADLS, ABFS and OFS, resolving arbitrary path strings down to the deepest
reachable node without fetching whole directory trees.`,
}

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the browsefs server",
	Long:  "Start the browsefs HTTP API with the configured storage connectors",
	RunE:  runServer,
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <path>",
	Short: "Resolve a path against the configured connectors",
	Long:  "Resolve a path string down to the deepest reachable node and print the result",
	Args:  cobra.ExactArgs(1),
	RunE:  runResolve,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration",
	Long:  "Validate the browsefs configuration and display the loaded settings",
	RunE:  validateConfig,
}

var configFilePath string

func main() {
	serverCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")
	resolveCmd.Flags().StringVarP(&configFilePath, "config", "c", "", "Path to configuration file")

	configCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(serverCmd, resolveCmd, configCmd)

	// If no command specified, default to server
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "server")
	}

	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// runServer starts the browsefs server
func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to sync logger: %v\n", err)
		}
	}()

	logger.Info("Starting browsefs server",
		zap.String("listen_addr", cfg.Server.ListenAddr))

	registry, store, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer registry.Close()
	if store != nil {
		defer store.Close()
	}

	resolver := browser.NewResolver(registry)

	var authenticator auth.Authenticator
	if len(cfg.Auth.APIKeys) > 0 {
		authenticator = auth.NewAPIKeyAuthenticator(cfg.Auth.APIKeys)
	} else {
		logger.Warn("API key authentication disabled (no keys configured)")
	}

	logger.Info("Initializing HTTP router")
	router := server.NewRouter(resolver, registry, authenticator, &cfg.Server, logger)

	srv := &http.Server{
		Addr:         cfg.Server.ListenAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.Server.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Serve Prometheus metrics on a dedicated listener
	metricsSrv := &http.Server{
		Addr:    cfg.Metrics.ListenAddr,
		Handler: promhttp.Handler(),
	}
	go func() {
		logger.Info("Starting metrics server", zap.String("addr", cfg.Metrics.ListenAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Metrics server stopped", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Metrics server forced to shutdown", zap.Error(err))
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}

// runResolve resolves one path from the command line and prints the result
func runResolve(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfigFromFile(configFilePath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := initializeLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	registry, store, err := buildRegistry(cfg, logger)
	if err != nil {
		return err
	}
	defer registry.Close()
	if store != nil {
		defer store.Close()
	}

	resolver := browser.NewResolver(registry)
	res, err := resolver.Resolve(args[0], "")
	if err != nil {
		return err
	}

	fetcher, ok := registry.FetcherFor(res.Kind)
	if !ok {
		return connectors.ErrUnresolvedConnector
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.WalkTimeout)
	defer cancel()

	tree := browser.NewTree(res.Kind, res.RootPath, fetcher, logger)
	reached := browser.NewWalker(logger).Descend(ctx, tree.Root(), res.Segments)

	out := struct {
		Kind     string   `json:"kind"`
		Reached  string   `json:"reached"`
		Segments []string `json:"segments"`
		Children []string `json:"children"`
	}{
		Kind:     string(res.Kind),
		Reached:  reached.Path(),
		Segments: reached.Hierarchy(),
	}
	for _, c := range reached.Children() {
		out.Children = append(out.Children, c.Name())
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// buildRegistry constructs the connector registry from configuration.
// Each kind is registered only when its connector has usable settings.
func buildRegistry(cfg config.AppConfig, logger *zap.Logger) (*connectors.Registry, cache.Store, error) {
	registry := connectors.NewRegistry()

	var store cache.Store
	if cfg.Cache.Enabled {
		if cfg.Cache.RedisAddr != "" {
			logger.Info("Initializing Redis listing cache", zap.String("addr", cfg.Cache.RedisAddr))
			redisStore, err := cache.NewRedisStore(cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.TTL, logger)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to initialize Redis cache: %w", err)
			}
			store = redisStore
		} else {
			logger.Info("Initializing in-memory listing cache")
			store = cache.NewLocalStore(cfg.Cache.TTL, cfg.Cache.MaxEntries)
		}
	}

	register := func(kind connectors.StorageKind, rootPath string, fetcher connectors.Fetcher) {
		wrapped := connectors.Fetcher(connectors.NewInstrumentedFetcher(fetcher, kind))
		if store != nil {
			wrapped = connectors.NewCachingFetcher(wrapped, store, logger)
		}
		registry.Register(connectors.Connector{Kind: kind, RootPath: rootPath, Fetcher: wrapped})
	}

	if cfg.Connectors.HDFS.URL != "" {
		logger.Info("Initializing HDFS connector", zap.String("url", cfg.Connectors.HDFS.URL))
		adapter, err := webhdfs.NewAdapter(cfg.Connectors.HDFS, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize HDFS connector: %w", err)
		}
		register(connectors.KindHDFS, cfg.Connectors.HDFS.RootPath, adapter)
	} else {
		logger.Info("HDFS connector disabled (no URL configured), registering noop")
		register(connectors.KindHDFS, cfg.Connectors.HDFS.RootPath, noop.NewAdapter())
	}

	if cfg.Connectors.OFS.URL != "" {
		logger.Info("Initializing OFS connector", zap.String("url", cfg.Connectors.OFS.URL))
		adapter, err := webhdfs.NewAdapter(cfg.Connectors.OFS, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize OFS connector: %w", err)
		}
		register(connectors.KindOFS, cfg.Connectors.OFS.RootPath, adapter)
	}

	if cfg.Connectors.S3.Enabled {
		logger.Info("Initializing S3 connector", zap.String("region", cfg.Connectors.S3.Region))
		adapter, err := s3connector.NewAdapter(cfg.Connectors.S3, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize S3 connector: %w", err)
		}
		register(connectors.KindS3, cfg.Connectors.S3.RootPath, adapter)
	}

	if cfg.Connectors.ADLS.AccountName != "" {
		logger.Info("Initializing ADLS connector", zap.String("account", cfg.Connectors.ADLS.AccountName))
		adapter, err := azdfs.NewAdapter(cfg.Connectors.ADLS, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize ADLS connector: %w", err)
		}
		register(connectors.KindADLS, cfg.Connectors.ADLS.RootPath, adapter)
	}

	if cfg.Connectors.ABFS.AccountName != "" {
		logger.Info("Initializing ABFS connector", zap.String("account", cfg.Connectors.ABFS.AccountName))
		adapter, err := azdfs.NewAdapter(cfg.Connectors.ABFS, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize ABFS connector: %w", err)
		}
		register(connectors.KindABFS, cfg.Connectors.ABFS.RootPath, adapter)
	}

	return registry, store, nil
}

// validateConfig validates the browsefs configuration and displays settings
func validateConfig(cmd *cobra.Command, args []string) error {
	fmt.Println("Validating configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	fmt.Println("Configuration is valid")
	fmt.Printf("Listen Address: %s\n", cfg.Server.ListenAddr)
	fmt.Printf("Metrics Address: %s\n", cfg.Metrics.ListenAddr)
	if cfg.Connectors.HDFS.URL != "" {
		fmt.Printf("HDFS: %s (root %s)\n", cfg.Connectors.HDFS.URL, cfg.Connectors.HDFS.RootPath)
	}
	if cfg.Connectors.OFS.URL != "" {
		fmt.Printf("OFS: %s (root %s)\n", cfg.Connectors.OFS.URL, cfg.Connectors.OFS.RootPath)
	}
	if cfg.Connectors.S3.Enabled {
		fmt.Printf("S3: region %s (root %s)\n", cfg.Connectors.S3.Region, cfg.Connectors.S3.RootPath)
	}
	if cfg.Connectors.ADLS.AccountName != "" {
		fmt.Printf("ADLS: account %s (root %s)\n", cfg.Connectors.ADLS.AccountName, cfg.Connectors.ADLS.RootPath)
	}
	if cfg.Connectors.ABFS.AccountName != "" {
		fmt.Printf("ABFS: account %s (root %s)\n", cfg.Connectors.ABFS.AccountName, cfg.Connectors.ABFS.RootPath)
	}

	return nil
}

// initializeLogger creates a zap logger based on configuration
func initializeLogger(logCfg config.LogConfig) (*zap.Logger, error) {
	var cfg zap.Config

	if logCfg.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}

	switch logCfg.Level {
	case "debug":
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		cfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}
