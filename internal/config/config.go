package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// RedisConfig holds connection settings for Redis
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type JWTConfig struct {
	SecretKey  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type OTPConfig struct {
	TTL             time.Duration
	SendLimit       int
	SendWindow      time.Duration
	RegistrationTTL time.Duration
}

// Config is the application configuration, read from the environment.
type Config struct {
	ServerPort          string
	DB                  *DBConfig
	Redis               RedisConfig
	MinIO               MinIOConfig
	JWT                 JWTConfig
	OTP                 OTPConfig
	ViewDedupTTL        time.Duration
	PublishPollInterval time.Duration
	InitialAdminPhone   string
	LogLevel            string
	LogFormat           string
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	dbCfg, err := LoadDBConfig()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DB:         dbCfg,
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "tam-media"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			PublicURL: getEnv("MINIO_PUBLIC_URL", ""),
		},
		JWT: JWTConfig{
			SecretKey:  getEnv("JWT_SECRET_KEY", ""),
			AccessTTL:  getEnvDuration("JWT_ACCESS_TTL", 7*24*time.Hour),
			RefreshTTL: getEnvDuration("JWT_REFRESH_TTL", 8*24*time.Hour),
		},
		OTP: OTPConfig{
			TTL:             getEnvDuration("OTP_TTL", 2*time.Minute),
			SendLimit:       getEnvInt("OTP_SEND_LIMIT", 5),
			SendWindow:      getEnvDuration("OTP_SEND_WINDOW", time.Hour),
			RegistrationTTL: getEnvDuration("REGISTRATION_TTL", 10*time.Minute),
		},
		ViewDedupTTL:        getEnvDuration("VIEW_DEDUP_TTL", 24*time.Hour),
		PublishPollInterval: getEnvDuration("PUBLISH_POLL_INTERVAL", 5*time.Second),
		InitialAdminPhone:   getEnv("INITIAL_ADMIN_PHONE", ""),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate reports every missing required value at once.
func (c *Config) Validate() error {
	var errs []error
	if c.JWT.SecretKey == "" {
		errs = append(errs, errors.New("JWT_SECRET_KEY is required"))
	}
	if c.MinIO.Endpoint == "" {
		errs = append(errs, errors.New("MINIO_ENDPOINT is required"))
	}
	if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
		errs = append(errs, errors.New("MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required"))
	}
	if c.OTP.TTL <= 0 {
		errs = append(errs, fmt.Errorf("OTP_TTL must be positive, got %s", c.OTP.TTL))
	}
	if c.PublishPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("PUBLISH_POLL_INTERVAL must be positive, got %s", c.PublishPollInterval))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
