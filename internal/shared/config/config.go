package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	API        APIConfig        `mapstructure:"api"`
	Cache      CacheConfig      `mapstructure:"cache"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client"`
	Breaker    BreakerConfig    `mapstructure:"breaker"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Log        LogConfig        `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Address      string        `mapstructure:"address"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
}

// APIConfig holds remote API and OAuth client configuration.
type APIConfig struct {
	BaseURL      string   `mapstructure:"base_url"`
	AuthBaseURL  string   `mapstructure:"auth_base_url"`
	ClientID     string   `mapstructure:"client_id"`
	ClientSecret string   `mapstructure:"client_secret"`
	RedirectURL  string   `mapstructure:"redirect_url"`
	Scopes       []string `mapstructure:"scopes"`
}

// CacheConfig holds user cache configuration.
type CacheConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

// HTTPClientConfig holds outbound HTTP client configuration.
type HTTPClientConfig struct {
	DialTimeout         time.Duration `mapstructure:"dial_timeout"`
	KeepAlive           time.Duration `mapstructure:"keep_alive"`
	MaxIdleConns        int           `mapstructure:"max_idle_conns"`
	MaxIdleConnsPerHost int           `mapstructure:"max_idle_conns_per_host"`
	MaxConnsPerHost     int           `mapstructure:"max_conns_per_host"`
	IdleConnTimeout     time.Duration `mapstructure:"idle_conn_timeout"`
	TLSHandshakeTimeout time.Duration `mapstructure:"tls_handshake_timeout"`
	ResponseTimeout     time.Duration `mapstructure:"response_timeout"`
}

// BreakerConfig holds circuit breaker configuration for the remote API.
type BreakerConfig struct {
	FailureThreshold    uint32        `mapstructure:"failure_threshold"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxHalfOpenRequests uint32        `mapstructure:"max_half_open_requests"`
}

// RedisConfig holds Redis configuration.
// An empty address keeps OAuth state in memory.
type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load loads configuration from file and environment.
func Load() (*Config, error) {
	return load(viper.New())
}

// LoadFile loads configuration from an explicit file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	if v.ConfigFileUsed() == "" {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/apiclient")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found, use defaults and env
	}

	v.SetEnvPrefix("APICLIENT")
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// Override with environment variables for sensitive values
	if secret := os.Getenv("APICLIENT_CLIENT_SECRET"); secret != "" {
		cfg.API.ClientSecret = secret
	}
	if password := os.Getenv("APICLIENT_REDIS_PASSWORD"); password != "" {
		cfg.Redis.Password = password
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)

	// API defaults
	v.SetDefault("api.base_url", "https://api.twitch.tv/helix")
	v.SetDefault("api.auth_base_url", "https://id.twitch.tv/oauth2")
	v.SetDefault("api.redirect_url", "http://localhost:8080/api/v1/auth/callback")
	v.SetDefault("api.scopes", []string{"user:read:email"})

	// Cache defaults
	v.SetDefault("cache.timeout", time.Hour)

	// HTTP client defaults
	v.SetDefault("http_client.dial_timeout", 5*time.Second)
	v.SetDefault("http_client.keep_alive", 30*time.Second)
	v.SetDefault("http_client.max_idle_conns", 100)
	v.SetDefault("http_client.max_idle_conns_per_host", 10)
	v.SetDefault("http_client.max_conns_per_host", 0)
	v.SetDefault("http_client.idle_conn_timeout", 90*time.Second)
	v.SetDefault("http_client.tls_handshake_timeout", 10*time.Second)
	v.SetDefault("http_client.response_timeout", 30*time.Second)

	// Breaker defaults
	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.timeout", 60*time.Second)
	v.SetDefault("breaker.max_half_open_requests", 1)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
