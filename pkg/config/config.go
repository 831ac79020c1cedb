package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

const defaultJWTSecret = "dev_secret"

// Supported document store drivers.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

// Supported blob store drivers.
const (
	BlobDriverLocal = "local"
	BlobDriverS3    = "s3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Store         StoreConfig
	Database      DatabaseConfig
	Mongo         MongoConfig
	Redis         RedisConfig
	Cache         CacheConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Media         MediaConfig
	S3            S3Config
	Notifications NotificationConfig
}

// StoreConfig selects the document store backend.
type StoreConfig struct {
	Driver string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

// MongoConfig configures the MongoDB document store backend.
type MongoConfig struct {
	URI            string
	Database       string
	ConnectTimeout time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs caching of public list reads.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
	Issuer     string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// MediaConfig controls admin image uploads.
type MediaConfig struct {
	Driver           string
	StorageDir       string
	BaseURL          string
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// S3Config holds credentials for the S3 blob store.
type S3Config struct {
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string
}

// NotificationConfig toggles admin email notifications for public submissions.
type NotificationConfig struct {
	Enabled        bool
	SendGridAPIKey string
	FromName       string
	FromEmail      string
	AdminEmail     string
	Workers        int
	Retries        int
	RetryDelay     time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Store = StoreConfig{Driver: strings.ToLower(v.GetString("STORE_DRIVER"))}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Mongo = MongoConfig{
		URI:            v.GetString("MONGO_URI"),
		Database:       v.GetString("MONGO_DATABASE"),
		ConnectTimeout: parseDuration(v.GetString("MONGO_CONNECT_TIMEOUT"), 10*time.Second),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 12*time.Hour),
		Issuer:     v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxMediaSize := v.GetInt64("MEDIA_MAX_FILE_SIZE")
	if maxMediaSize <= 0 {
		maxMediaSize = 5 * 1024 * 1024
	}
	cfg.Media = MediaConfig{
		Driver:           strings.ToLower(v.GetString("BLOB_DRIVER")),
		StorageDir:       v.GetString("MEDIA_DIR"),
		BaseURL:          strings.TrimRight(v.GetString("MEDIA_BASE_URL"), "/"),
		MaxFileSizeBytes: maxMediaSize,
		AllowedMIMEs:     splitAndTrim(v.GetString("MEDIA_ALLOWED_MIME_TYPES")),
	}

	cfg.S3 = S3Config{
		Region:    v.GetString("S3_REGION"),
		Bucket:    v.GetString("S3_BUCKET"),
		AccessKey: v.GetString("S3_ACCESS_KEY"),
		SecretKey: v.GetString("S3_SECRET_KEY"),
		PublicURL: strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
	}

	cfg.Notifications = NotificationConfig{
		Enabled:        v.GetBool("ENABLE_NOTIFICATIONS"),
		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromName:       v.GetString("NOTIFY_FROM_NAME"),
		FromEmail:      v.GetString("NOTIFY_FROM_EMAIL"),
		AdminEmail:     v.GetString("NOTIFY_ADMIN_EMAIL"),
		Workers:        v.GetInt("NOTIFY_WORKERS"),
		Retries:        v.GetInt("NOTIFY_RETRIES"),
		RetryDelay:     parseDuration(v.GetString("NOTIFY_RETRY_DELAY"), 5*time.Second),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects driver names the server cannot open and settings that
// must not reach production with their development defaults.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMongo, StoreDriverMemory:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER: unsupported value %q", c.Store.Driver))
	}
	switch c.Media.Driver {
	case BlobDriverLocal:
	case BlobDriverS3:
		if c.S3.Bucket == "" {
			errs = append(errs, errors.New("S3_BUCKET: required when BLOB_DRIVER=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("BLOB_DRIVER: unsupported value %q", c.Media.Driver))
	}
	if c.Notifications.Enabled && c.Notifications.AdminEmail == "" {
		errs = append(errs, errors.New("NOTIFY_ADMIN_EMAIL: required when ENABLE_NOTIFICATIONS=true"))
	}
	if c.Env == EnvProduction {
		if c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret {
			errs = append(errs, errors.New("JWT_SECRET: must be set in production"))
		}
		if c.Store.Driver == StoreDriverMemory {
			errs = append(errs, errors.New("STORE_DRIVER: memory store is not allowed in production"))
		}
	}
	return errors.Join(errs...)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "mentor_site")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("MONGO_URI", "mongodb://localhost:27017/")
	v.SetDefault("MONGO_DATABASE", "mentor_site")
	v.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRATION", "12h")
	v.SetDefault("JWT_ISSUER", "mentor-site-api")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("BLOB_DRIVER", BlobDriverLocal)
	v.SetDefault("MEDIA_DIR", "./media")
	v.SetDefault("MEDIA_BASE_URL", "http://localhost:8080/media")
	v.SetDefault("MEDIA_MAX_FILE_SIZE", 5*1024*1024)
	v.SetDefault("MEDIA_ALLOWED_MIME_TYPES", "image/jpeg,image/png,image/webp,image/gif")

	v.SetDefault("S3_REGION", "ap-southeast-1")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_PUBLIC_URL", "")

	v.SetDefault("ENABLE_NOTIFICATIONS", false)
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("NOTIFY_FROM_NAME", "Mentor Site")
	v.SetDefault("NOTIFY_FROM_EMAIL", "no-reply@localhost")
	v.SetDefault("NOTIFY_ADMIN_EMAIL", "")
	v.SetDefault("NOTIFY_WORKERS", 1)
	v.SetDefault("NOTIFY_RETRIES", 3)
	v.SetDefault("NOTIFY_RETRY_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
