package config

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	Auth      AuthConfig
	APIKey    APIKeyConfig    `mapstructure:"apiKey"`
	RateLimit RateLimitConfig `mapstructure:"rateLimit"`
	Storage   StorageConfig
	Worker    WorkerConfig
}

type ServerConfig struct {
	Port                 string        `mapstructure:"port"`
	ReadTimeout          time.Duration `mapstructure:"readTimeout"`
	WriteTimeout         time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout          time.Duration `mapstructure:"idleTimeout"`
	ShutdownPeriod       time.Duration `mapstructure:"shutdownPeriod"`
	AllowedOrigins       []string      `mapstructure:"allowedOrigins"`
	ExposeInternalErrors bool          `mapstructure:"exposeInternalErrors"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"maxOpenConns"`
	MaxIdleConns    int           `mapstructure:"maxIdleConns"`
	ConnMaxLifetime time.Duration `mapstructure:"connMaxLifetime"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// AuthConfig describes how session tokens issued by the identity provider are verified.
type AuthConfig struct {
	SessionCookie string `mapstructure:"sessionCookie"`
	JWTSecret     string `mapstructure:"jwtSecret"`
	Issuer        string `mapstructure:"issuer"`
	Audience      string `mapstructure:"audience"`
}

type APIKeyConfig struct {
	CacheTTL     time.Duration `mapstructure:"cacheTTL"`
	TouchEnabled bool          `mapstructure:"touchEnabled"`
}

type RateLimitConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	PublicRate string `mapstructure:"publicRate"`
}

type StorageConfig struct {
	BaseURL        string        `mapstructure:"baseURL"`
	ServiceKey     string        `mapstructure:"serviceKey"`
	Bucket         string        `mapstructure:"bucket"`
	MaxUploadBytes int64         `mapstructure:"maxUploadBytes"`
	Timeout        time.Duration `mapstructure:"timeout"`
}

type WorkerConfig struct {
	Concurrency   int    `mapstructure:"concurrency"`
	SweepSchedule string `mapstructure:"sweepSchedule"`
}

func LoadConfig(configPath string) (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found or error loading it, relying on environment variables and config file")
	}

	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 10*time.Second)
	v.SetDefault("server.idleTimeout", 120*time.Second)
	v.SetDefault("server.shutdownPeriod", 15*time.Second)
	v.SetDefault("server.allowedOrigins", []string{"http://localhost:3000"})
	v.SetDefault("server.exposeInternalErrors", false)

	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 25)
	v.SetDefault("database.connMaxLifetime", 5*time.Minute)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("auth.sessionCookie", "sb-access-token")
	v.SetDefault("auth.audience", "authenticated")

	v.SetDefault("apiKey.cacheTTL", 30*time.Second)
	v.SetDefault("apiKey.touchEnabled", true)

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.publicRate", "120-M")

	v.SetDefault("storage.bucket", "media")
	v.SetDefault("storage.maxUploadBytes", 5<<20)
	v.SetDefault("storage.timeout", 30*time.Second)

	v.SetDefault("worker.concurrency", 5)
	v.SetDefault("worker.sweepSchedule", "@every 15m")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AllowEmptyEnv(true)

	// keys without defaults are invisible to Unmarshal unless bound explicitly
	for _, key := range []string{
		"database.url",
		"redis.password",
		"auth.jwtSecret",
		"auth.issuer",
		"storage.baseURL",
		"storage.serviceKey",
	} {
		_ = v.BindEnv(key)
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			log.Printf("Warning: could not read config file: %s. Error: %v\n", configPath, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Database.URL == "" {
		errs = append(errs, errors.New("database.url is required"))
	}
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwtSecret is required"))
	}
	if c.Worker.Concurrency <= 0 {
		errs = append(errs, errors.New("worker.concurrency must be positive"))
	}
	return errors.Join(errs...)
}
