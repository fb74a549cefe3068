package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Store   StoreConfig   `mapstructure:"store"`
	Notify  NotifyConfig  `mapstructure:"notify"`
}

type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug or release
}

// GatewayConfig points at the managed backend. APIKey is sent with every
// REST call; JWTSecret verifies the HS256 access tokens the gateway issues.
type GatewayConfig struct {
	URL            string `mapstructure:"url"`
	RealtimeURL    string `mapstructure:"realtime_url"`
	APIKey         string `mapstructure:"api_key"`
	JWTSecret      string `mapstructure:"jwt_secret"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// AdminConfig is the statically configured credential pair for the local
// admin login path. Password may be either plaintext or a bcrypt hash
// (recognized by its $2 prefix).
type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type NotifyConfig struct {
	TCPAddr string `mapstructure:"tcp_addr"`
}

func (g GatewayConfig) Timeout() time.Duration {
	if g.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(g.TimeoutSeconds) * time.Second
}

// Load reads config.yaml (if present) and ANISTREAM_* environment
// overrides, e.g. ANISTREAM_SERVER_PORT=9090.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("gateway.url", "http://localhost:54321")
	v.SetDefault("gateway.realtime_url", "")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.jwt_secret", "")
	v.SetDefault("gateway.timeout_seconds", 10)
	v.SetDefault("admin.username", "admin")
	v.SetDefault("admin.password", "")
	v.SetDefault("store.path", "")
	v.SetDefault("notify.tcp_addr", ":7070")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if configPath != "" {
		v.AddConfigPath(configPath)
	}

	v.SetEnvPrefix("ANISTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		// no config file is fine, defaults + env apply
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}
