package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string           `mapstructure:"environment"`
	LogLevel    string           `mapstructure:"log_level"`
	Server      ServerConfig     `mapstructure:"server"`
	Redis       RedisConfig      `mapstructure:"redis"`
	Upstream    UpstreamConfig   `mapstructure:"upstream"`
	MarketData  MarketDataConfig `mapstructure:"market_data"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// SourceConfig describes one upstream data source. The primary source is
// the data.gov.in mandi price feed; fallback sources share the same record
// contract under a different base URL and key.
type SourceConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

type UpstreamConfig struct {
	Primary         SourceConfig   `mapstructure:"primary"`
	FallbackSources []SourceConfig `mapstructure:"fallback_sources"`
	Timeout         int            `mapstructure:"timeout"`
	MaxRetries      int            `mapstructure:"max_retries"`
}

type MarketDataConfig struct {
	DefaultCommodity string `mapstructure:"default_commodity"`
	DefaultLimit     int    `mapstructure:"default_limit"`
	MaxLimit         int    `mapstructure:"max_limit"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	// Set default values
	setDefaults()

	// Enable environment variable support
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind specific environment variables
	if err := viper.BindEnv("upstream.primary.api_key", "DATA_GOV_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind DATA_GOV_API_KEY environment variable: %w", err)
	}

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Normalize environment to lowercase for consistent comparison
	config.Environment = strings.ToLower(config.Environment)

	if config.Upstream.MaxRetries < 1 {
		return nil, fmt.Errorf("upstream max_retries must be at least 1, got %d", config.Upstream.MaxRetries)
	}
	if config.MarketData.DefaultLimit < 1 || config.MarketData.DefaultLimit > config.MarketData.MaxLimit {
		return nil, fmt.Errorf("market_data default_limit must be between 1 and %d, got %d",
			config.MarketData.MaxLimit, config.MarketData.DefaultLimit)
	}

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Upstream
	viper.SetDefault("upstream.primary.name", "data.gov.in")
	viper.SetDefault("upstream.primary.base_url", "https://api.data.gov.in/resource/9ef84268-d588-465a-a308-a864a43d0070")
	viper.SetDefault("upstream.primary.api_key", "")
	viper.SetDefault("upstream.fallback_sources", []map[string]interface{}{})
	viper.SetDefault("upstream.timeout", 15)
	viper.SetDefault("upstream.max_retries", 3)

	// Market data
	viper.SetDefault("market_data.default_commodity", "Rice")
	viper.SetDefault("market_data.default_limit", 50)
	viper.SetDefault("market_data.max_limit", 200)
}
