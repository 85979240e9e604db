package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// APIServerConfig 保存 API 服务器特有的配置。
type APIServerConfig struct {
	Host         string     `mapstructure:"HOST"`
	Port         string     `mapstructure:"PORT"`
	MediaBaseURL string     `mapstructure:"MEDIA_BASE_URL"` // 本地存储时静态文件的访问前缀
	CORS         CORSConfig `mapstructure:"CORS"`
}

// CORSConfig holds configuration for CORS.
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"ALLOWED_ORIGINS"`
	AllowedMethods   []string `mapstructure:"ALLOWED_METHODS"`
	AllowedHeaders   []string `mapstructure:"ALLOWED_HEADERS"`
	ExposedHeaders   []string `mapstructure:"EXPOSED_HEADERS"`
	AllowCredentials bool     `mapstructure:"ALLOW_CREDENTIALS"`
	MaxAge           int      `mapstructure:"MAX_AGE"`
}

// RedisConfig holds configuration for Redis.
// An empty Addr disables the token blacklist.
type RedisConfig struct {
	Addr     string `mapstructure:"ADDR"`
	Password string `mapstructure:"PASSWORD"`
	DB       int    `mapstructure:"DB"`
}

// Config holds all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	AppName    string          `mapstructure:"APP_NAME"`
	AppVersion string          `mapstructure:"APP_VERSION"`
	LogLevel   string          `mapstructure:"LOG_LEVEL"`
	Server     ServerConfig    `mapstructure:"SERVER"`
	APIServer  APIServerConfig `mapstructure:"API_SERVER"`
	Kafka      KafkaConfig     `mapstructure:"KAFKA"`
	Database   DatabaseConfig  `mapstructure:"DATABASE"`
	Storage    StorageConfig   `mapstructure:"STORAGE"`
	Auth       AuthConfig      `mapstructure:"AUTH"`
	Redis      RedisConfig     `mapstructure:"REDIS"`
	Feed       FeedConfig      `mapstructure:"FEED"`
}

// ServerConfig holds the HTTP server timeouts.
type ServerConfig struct {
	ReadTimeout     time.Duration `mapstructure:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `mapstructure:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `mapstructure:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	MaxHeaderBytes  int           `mapstructure:"MAX_HEADER_BYTES"`
}

// KafkaConfig holds configuration for Kafka.
// 目前只用于级联删除失败后的离线清理任务。
type KafkaConfig struct {
	Enabled       bool     `mapstructure:"ENABLED"`
	Brokers       []string `mapstructure:"BROKERS"`
	ClientID      string   `mapstructure:"CLIENT_ID"`
	CleanupTopic  string   `mapstructure:"CLEANUP_TOPIC"`
	ConsumerGroup string   `mapstructure:"CONSUMER_GROUP"`
	Protocol      string   `mapstructure:"PROTOCOL"`
}

// DatabaseConfig holds configuration for the database.
// Type "memory" runs against the in-process store (dev and tests only).
type DatabaseConfig struct {
	Type     string `mapstructure:"TYPE"`
	Host     string `mapstructure:"HOST"`
	Port     int    `mapstructure:"PORT"`
	User     string `mapstructure:"USER"`
	Password string `mapstructure:"PASSWORD"`
	DBName   string `mapstructure:"DB_NAME"`
	SSLMode  string `mapstructure:"SSL_MODE"`
	LogSQL   bool   `mapstructure:"LOG_SQL"`
}

// StorageConfig holds configuration for media storage.
type StorageConfig struct {
	Type          string   `mapstructure:"TYPE"` // "local", "s3"
	LocalPath     string   `mapstructure:"LOCAL_PATH"`
	MaxFileSizeMB int64    `mapstructure:"MAX_FILE_SIZE_MB"`
	MaxPostImages int      `mapstructure:"MAX_POST_IMAGES"`
	S3            S3Config `mapstructure:"S3"`
}

// S3Config holds configuration for AWS S3.
type S3Config struct {
	BucketName      string `mapstructure:"BUCKET_NAME"`
	Region          string `mapstructure:"REGION"`
	AccessKeyID     string `mapstructure:"ACCESS_KEY_ID"`
	SecretAccessKey string `mapstructure:"SECRET_ACCESS_KEY"`
	Endpoint        string `mapstructure:"ENDPOINT"` // For S3 compatible storage like MinIO
	PublicBaseURL   string `mapstructure:"PUBLIC_BASE_URL"`
}

// AuthConfig holds configuration for authentication (e.g., JWT).
type AuthConfig struct {
	JWTSecretKey string        `mapstructure:"JWT_SECRET_KEY"`
	JWTExpiry    time.Duration `mapstructure:"JWT_EXPIRY"`
	Issuer       string        `mapstructure:"ISSUER"`
	FrontendURL  string        `mapstructure:"FRONTEND_URL"` // OAuth 登录完成后的跳转地址
	Facebook     OAuthClient   `mapstructure:"FACEBOOK"`
}

// OAuthClient holds the credentials of an external identity provider.
// An empty ClientID disables the provider's routes.
type OAuthClient struct {
	ClientID     string `mapstructure:"CLIENT_ID"`
	ClientSecret string `mapstructure:"CLIENT_SECRET"`
	RedirectURL  string `mapstructure:"REDIRECT_URL"`
}

// FeedConfig holds pagination defaults for the listing endpoints.
type FeedConfig struct {
	DefaultPageSize int `mapstructure:"DEFAULT_PAGE_SIZE"`
	MaxPageSize     int `mapstructure:"MAX_PAGE_SIZE"`
	RecommendLimit  int `mapstructure:"RECOMMEND_LIMIT"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("APP_NAME", "social-go")
	v.SetDefault("APP_VERSION", "0.1.0")
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("SERVER.READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.WRITE_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER.IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER.SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER.MAX_HEADER_BYTES", 1<<20) // 1 MB

	v.SetDefault("API_SERVER.HOST", "0.0.0.0")
	v.SetDefault("API_SERVER.PORT", "8081")
	v.SetDefault("API_SERVER.MEDIA_BASE_URL", "/uploads")
	v.SetDefault("API_SERVER.CORS.ALLOWED_ORIGINS", []string{"http://localhost:5173"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("API_SERVER.CORS.ALLOWED_HEADERS", []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"})
	v.SetDefault("API_SERVER.CORS.EXPOSED_HEADERS", []string{"Content-Length"})
	v.SetDefault("API_SERVER.CORS.ALLOW_CREDENTIALS", true)
	v.SetDefault("API_SERVER.CORS.MAX_AGE", 300) // 5 minutes

	// Kafka Defaults
	v.SetDefault("KAFKA.ENABLED", false)
	v.SetDefault("KAFKA.BROKERS", []string{"localhost:9092"})
	v.SetDefault("KAFKA.CLIENT_ID", "social-go-api")
	v.SetDefault("KAFKA.CLEANUP_TOPIC", "social-content-cleanup")
	v.SetDefault("KAFKA.CONSUMER_GROUP", "social-cleanup-group")
	v.SetDefault("KAFKA.PROTOCOL", "plaintext")

	// Database Defaults (PostgreSQL)
	v.SetDefault("DATABASE.TYPE", "postgres")
	v.SetDefault("DATABASE.HOST", "localhost")
	v.SetDefault("DATABASE.PORT", 5432)
	v.SetDefault("DATABASE.USER", "postgres")
	v.SetDefault("DATABASE.PASSWORD", "password")
	v.SetDefault("DATABASE.DB_NAME", "social_go_db")
	v.SetDefault("DATABASE.SSL_MODE", "disable")
	v.SetDefault("DATABASE.LOG_SQL", false)

	// Storage Defaults
	v.SetDefault("STORAGE.TYPE", "local")
	v.SetDefault("STORAGE.LOCAL_PATH", "./uploads")
	v.SetDefault("STORAGE.MAX_FILE_SIZE_MB", 10)
	v.SetDefault("STORAGE.MAX_POST_IMAGES", 10)

	// Auth Defaults
	v.SetDefault("AUTH.JWT_SECRET_KEY", "a_very_secret_key_that_should_be_changed")
	v.SetDefault("AUTH.JWT_EXPIRY", 24*time.Hour)
	v.SetDefault("AUTH.ISSUER", "social-go")
	v.SetDefault("AUTH.FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("AUTH.FACEBOOK.CLIENT_ID", "")
	v.SetDefault("AUTH.FACEBOOK.CLIENT_SECRET", "")
	v.SetDefault("AUTH.FACEBOOK.REDIRECT_URL", "http://localhost:8081/auth/facebook/callback")

	// Redis Defaults
	v.SetDefault("REDIS.ADDR", "localhost:6379")
	v.SetDefault("REDIS.PASSWORD", "")
	v.SetDefault("REDIS.DB", 0)

	// Feed Defaults
	v.SetDefault("FEED.DEFAULT_PAGE_SIZE", 5)
	v.SetDefault("FEED.MAX_PAGE_SIZE", 100)
	v.SetDefault("FEED.RECOMMEND_LIMIT", 10)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	// 嵌套键通过下划线覆盖，例如 DATABASE_HOST 覆盖 Database.Host
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err = v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return
		}
		err = nil
	}

	err = v.Unmarshal(&config)
	return
}
