package config

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host         string
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SecurityConfig struct {
	JWTSecret    string
	JWTAccessTTL time.Duration
	SessionTTL   time.Duration
	SealKey      string
}

type CacheConfig struct {
	TTL             time.Duration
	RefreshSchedule string
	DefaultPageSize int
}

type ScanConfig struct {
	IdleTimeout   time.Duration
	MaxFrameBytes int64
}

type RateLimitConfig struct {
	LoginPerMinute float64
	LoginBurst     int
}

type AppConfig struct {
	Environment      string
	HTTP             HTTPConfig
	Redis            RedisConfig
	Upstream         UpstreamConfig
	Security         SecurityConfig
	Cache            CacheConfig
	Scan             ScanConfig
	RateLimit        RateLimitConfig
	AllowCORSOrigins []string
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("../config")

	v.SetEnvPrefix("SYSTRACK")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "0.0.0.0")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.readtimeout", "10s")
	v.SetDefault("http.writetimeout", "15s")
	v.SetDefault("http.idletimeout", "60s")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("upstream.baseurl", "http://localhost:5000")
	v.SetDefault("upstream.timeout", "15s")

	v.SetDefault("security.jwtaccessttl", "12h")
	v.SetDefault("security.sessionttl", "720h") // 30 days

	v.SetDefault("cache.ttl", "10m")
	v.SetDefault("cache.refreshschedule", "0 */5 * * * *")
	v.SetDefault("cache.defaultpagesize", 10)

	v.SetDefault("scan.idletimeout", "2m")
	v.SetDefault("scan.maxframebytes", 8<<20)

	v.SetDefault("ratelimit.loginperminute", 20)
	v.SetDefault("ratelimit.loginburst", 10)
}
