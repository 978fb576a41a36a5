package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values for the application
type Config struct {
	UpstreamTargetURL      string   `mapstructure:"upstream_target_url"`
	ServerPort             int      `mapstructure:"server_port"`
	ShutdownDrainSeconds   int      `mapstructure:"shutdown_drain_seconds"`
	ShutdownTimeoutSeconds int      `mapstructure:"shutdown_timeout_seconds"`
	AllowedOrigins         []string `mapstructure:"allowed_origins"`    // CORS allowed origins
	MaxRequestSizeMB       int      `mapstructure:"max_request_size_mb"` // Request body size limit in MB
	ReplayConcurrency      int      `mapstructure:"replay_concurrency"`  // Max concurrent replays when a login is confirmed
	UpstreamTimeoutSeconds int      `mapstructure:"upstream_timeout_seconds"`
	EventBufferSize        int      `mapstructure:"event_buffer_size"` // Per-subscriber event channel buffer
	AuthHeaderName         string   `mapstructure:"auth_header_name"`  // Header the confirmed credential is injected into
}

// Load reads configuration from config.toml file
// Returns error if configuration file is missing or required fields are not set
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("toml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	viper.SetDefault("server_port", 8080)
	viper.SetDefault("shutdown_drain_seconds", 2)
	viper.SetDefault("shutdown_timeout_seconds", 10)
	viper.SetDefault("allowed_origins", []string{"*"})
	viper.SetDefault("max_request_size_mb", 1)
	viper.SetDefault("replay_concurrency", 8)
	viper.SetDefault("upstream_timeout_seconds", 10)
	viper.SetDefault("event_buffer_size", 64)
	viper.SetDefault("auth_header_name", "Authorization")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate required configuration
	if config.UpstreamTargetURL == "" {
		return nil, fmt.Errorf("upstream_target_url is required in config file")
	}

	if config.ReplayConcurrency <= 0 {
		log.Printf("WARN:  replay_concurrency <= 0 (%d), defaulting to 8", config.ReplayConcurrency)
		config.ReplayConcurrency = 8
	}
	if config.EventBufferSize <= 0 {
		log.Printf("WARN:  event_buffer_size <= 0 (%d), defaulting to 64", config.EventBufferSize)
		config.EventBufferSize = 64
	}
	if config.AuthHeaderName == "" {
		config.AuthHeaderName = "Authorization"
	}

	log.Printf("INFO:  Configuration loaded successfully from %s", viper.ConfigFileUsed())
	log.Printf("INFO:    upstream_target_url: %s", config.UpstreamTargetURL)
	log.Printf("INFO:    server_port: %d", config.ServerPort)
	log.Printf("INFO:    shutdown_drain_seconds: %d", config.ShutdownDrainSeconds)
	log.Printf("INFO:    shutdown_timeout_seconds: %d", config.ShutdownTimeoutSeconds)
	log.Printf("INFO:    allowed_origins: %v", config.AllowedOrigins)
	log.Printf("INFO:    max_request_size_mb: %d", config.MaxRequestSizeMB)
	log.Printf("INFO:    replay_concurrency: %d", config.ReplayConcurrency)
	log.Printf("INFO:    upstream_timeout_seconds: %d", config.UpstreamTimeoutSeconds)
	log.Printf("INFO:    event_buffer_size: %d", config.EventBufferSize)
	log.Printf("INFO:    auth_header_name: %s", config.AuthHeaderName)

	return &config, nil
}
