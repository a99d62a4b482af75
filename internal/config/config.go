package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName            string
	AppEnv             string
	AppPort            string
	DatabaseURL        string
	RedisURL           string
	NATSURL            string
	JWTSecret          string
	JWTRefreshSecret   string
	SweepBatchSize     int
	SweepBatchPause    time.Duration
	LeaderboardTTL     time.Duration
	GFGCheckerURL      string
	SSEKeepAlive       time.Duration
	NotificationPrefix string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("CODETRACK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "CodeTrack API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sweep.batch_size", 100)
	v.SetDefault("sweep.batch_pause_ms", 100)
	v.SetDefault("leaderboard.cache_ttl", "5m")
	v.SetDefault("sse.keepalive", "30s")
	v.SetDefault("notification.prefix", "codetrack")

	ttlString := v.GetString("leaderboard.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}
	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid leaderboard cache ttl: %w", err)
	}

	keepAliveString := v.GetString("sse.keepalive")
	if keepAliveString == "" {
		keepAliveString = "30s"
	}
	keepAlive, err := time.ParseDuration(keepAliveString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	pauseMs := v.GetInt("sweep.batch_pause_ms")
	if pauseMs < 0 {
		pauseMs = 100
	}

	cfg := Config{
		AppName:            v.GetString("app.name"),
		AppEnv:             v.GetString("app.env"),
		AppPort:            v.GetString("app.port"),
		DatabaseURL:        v.GetString("database.url"),
		RedisURL:           v.GetString("redis.url"),
		NATSURL:            v.GetString("nats.url"),
		JWTSecret:          v.GetString("jwt.secret"),
		JWTRefreshSecret:   v.GetString("jwt.refresh_secret"),
		SweepBatchSize:     v.GetInt("sweep.batch_size"),
		SweepBatchPause:    time.Duration(pauseMs) * time.Millisecond,
		LeaderboardTTL:     ttl,
		GFGCheckerURL:      v.GetString("gfg.checker_url"),
		SSEKeepAlive:       keepAlive,
		NotificationPrefix: v.GetString("notification.prefix"),
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}

	return cfg, nil
}
