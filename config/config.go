// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"vidshare/util"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configDir = pflag.StringP("config", "c", ".", "Directory containing config.toml")

	validLogLevels      = []string{"debug", "info", "warn", "error", "fatal"}
	validDrivers        = []string{"sqlite", "postgres"}
	validPasswordHashes = []string{"argon2id", "bcrypt"}
	validMirrors        = []string{"", "s3", "r2"}
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Host       HostConfig       `mapstructure:"host"`
	Database   DatabaseConfig   `mapstructure:"database"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Security   SecurityConfig   `mapstructure:"security"`
	Media      MediaConfig      `mapstructure:"media"`
	Preview    PreviewConfig    `mapstructure:"preview"`
	FFmpeg     FFmpegConfig     `mapstructure:"ffmpeg"`
	FFprobe    FFprobeConfig    `mapstructure:"ffprobe"`
	Upload     UploadConfig     `mapstructure:"upload"`
	Storage    StorageConfig    `mapstructure:"storage"`
	AWS        AWSConfig        `mapstructure:"aws"`
	Cloudflare CloudflareConfig `mapstructure:"cloudflare"`
	Cache      CacheConfig      `mapstructure:"cache"`
}

type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

type HostConfig struct {
	Port        int       `mapstructure:"port"`
	CorsOrigins []string  `mapstructure:"cors_origins"`
	SSL         SSLConfig `mapstructure:"ssl"`
}

type SSLConfig struct {
	Enabled            bool   `mapstructure:"enabled"`
	CertificatePath    string `mapstructure:"certificate_path"`
	CertificateKeyPath string `mapstructure:"certificate_key_path"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

type JWTConfig struct {
	Secret string        `mapstructure:"secret"`
	Expiry time.Duration `mapstructure:"expiry"`
}

type SecurityConfig struct {
	PasswordHash string `mapstructure:"password_hash"`
}

type MediaConfig struct {
	Root string `mapstructure:"root"`
}

type PreviewConfig struct {
	Offset time.Duration `mapstructure:"offset"`
}

type FFmpegConfig struct {
	Path    string        `mapstructure:"path"`
	Workers int           `mapstructure:"workers"`
	MaxJobs int           `mapstructure:"max_jobs"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type FFprobeConfig struct {
	Path string `mapstructure:"path"`
}

type UploadConfig struct {
	// In MiB
	MaxSize      int64    `mapstructure:"max_size"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// MaxBytes is MaxSize in bytes
func (u UploadConfig) MaxBytes() int64 {
	return u.MaxSize << 20
}

type StorageConfig struct {
	Mirror string `mapstructure:"mirror"`
}

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	AccessKey       string `mapstructure:"access_key"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
}

type CloudflareConfig struct {
	AccountID       string `mapstructure:"account_id"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	Bucket          string `mapstructure:"bucket"`
}

type CacheConfig struct {
	// Zero disables caching of the public video listing
	VideosTTL time.Duration `mapstructure:"videos_ttl"`
	// Empty keeps cached responses in memory
	RedisURL string `mapstructure:"redis_url"`
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that. A missing config.toml is fine, defaults and environment
// variables are used instead.
func Setup() error {
	if !pflag.Parsed() {
		pflag.Parse()
	}
	v.BindPFlags(pflag.CommandLine)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(*configDir)

	// Variables already set in the environment win over the .env file
	if err := godotenv.Load(filepath.Join(*configDir, ".env")); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to read .env file, %w", err)
	}

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "APP_LOG_LEVEL")

	v.BindEnv("host.port", "HOST_PORT")
	v.BindEnv("host.cors_origins", "HOST_CORS_ORIGINS")
	v.BindEnv("host.ssl.enabled", "HOST_SSL_ENABLED")
	v.BindEnv("host.ssl.certificate_path", "HOST_SSL_CERTIFICATE_PATH")
	v.BindEnv("host.ssl.certificate_key_path", "HOST_SSL_CERTIFICATE_KEY_PATH")

	v.BindEnv("database.driver", "DATABASE_DRIVER")
	v.BindEnv("database.dsn", "DATABASE_DSN")

	v.BindEnv("jwt.secret", "JWT_SECRET")
	v.BindEnv("jwt.expiry", "JWT_EXPIRY")

	v.BindEnv("security.password_hash", "SECURITY_PASSWORD_HASH")

	v.BindEnv("media.root", "MEDIA_ROOT")
	v.BindEnv("preview.offset", "PREVIEW_OFFSET")

	v.BindEnv("ffmpeg.path", "FFMPEG_PATH")
	v.BindEnv("ffmpeg.workers", "FFMPEG_WORKERS")
	v.BindEnv("ffmpeg.max_jobs", "FFMPEG_MAX_JOBS")
	v.BindEnv("ffmpeg.timeout", "FFMPEG_TIMEOUT")
	v.BindEnv("ffprobe.path", "FFPROBE_PATH")

	v.BindEnv("upload.max_size", "UPLOAD_MAX_SIZE")
	v.BindEnv("upload.allowed_types", "UPLOAD_ALLOWED_TYPES")

	v.BindEnv("storage.mirror", "STORAGE_MIRROR")

	v.BindEnv("aws.region", "AWS_REGION")
	v.BindEnv("aws.access_key", "AWS_ACCESS_KEY")
	v.BindEnv("aws.secret_access_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("aws.bucket", "AWS_BUCKET")

	v.BindEnv("cloudflare.account_id", "CLOUDFLARE_ACCOUNT_ID")
	v.BindEnv("cloudflare.access_key_id", "CLOUDFLARE_ACCESS_KEY_ID")
	v.BindEnv("cloudflare.secret_access_key", "CLOUDFLARE_SECRET_ACCESS_KEY")
	v.BindEnv("cloudflare.bucket", "CLOUDFLARE_BUCKET")

	v.BindEnv("cache.videos_ttl", "CACHE_VIDEOS_TTL")
	v.BindEnv("cache.redis_url", "CACHE_REDIS_URL")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 5000)
	v.SetDefault("host.cors_origins", []string{"*"})
	v.SetDefault("host.ssl.enabled", false)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "data.db")

	v.SetDefault("jwt.expiry", 15*time.Minute)
	v.SetDefault("security.password_hash", "argon2id")

	v.SetDefault("media.root", "media")
	v.SetDefault("preview.offset", 5*time.Second)

	v.SetDefault("ffmpeg.path", "ffmpeg")
	v.SetDefault("ffmpeg.workers", 2)
	v.SetDefault("ffmpeg.max_jobs", 16)
	v.SetDefault("ffmpeg.timeout", time.Duration(0))
	v.SetDefault("ffprobe.path", "ffprobe")

	v.SetDefault("upload.max_size", 512)
	v.SetDefault("upload.allowed_types", []string{})

	v.SetDefault("storage.mirror", "")
	v.SetDefault("cache.videos_ttl", time.Duration(0))
	v.SetDefault("cache.redis_url", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound v.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file, %w", err)
		}
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if v.GetBool("host.ssl.enabled") {
		if v.GetString("host.ssl.certificate_path") == "" {
			return errors.New("no ssl certificate path provided")
		}

		if v.GetString("host.ssl.certificate_key_path") == "" {
			return errors.New("no ssl certificate key path provided")
		}
	}

	if !slices.Contains(validDrivers, v.GetString("database.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("database.dsn") == "" {
		return errors.New("database.dsn can't be empty")
	}

	if !slices.Contains(validPasswordHashes, v.GetString("security.password_hash")) {
		return errors.New("invalid password hash provided")
	}

	if v.GetDuration("jwt.expiry") < 0 {
		return errors.New("jwt.expiry can't be negative")
	}

	if v.GetDuration("preview.offset") < 0 {
		return errors.New("preview.offset can't be negative")
	}

	if v.GetInt64("upload.max_size") <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}

	if v.GetInt("ffmpeg.workers") <= 0 {
		return errors.New("ffmpeg.workers must be bigger than 0")
	}

	if v.GetInt("ffmpeg.max_jobs") < 0 {
		return errors.New("ffmpeg.max_jobs can't be negative")
	}

	if v.GetString("jwt.secret") == "" {
		secret, err := util.RandomHex(64)
		if err != nil {
			return fmt.Errorf("failed to generate jwt secret, %w", err)
		}

		v.Set("jwt.secret", secret)
		fmt.Fprintln(os.Stderr, "[WARNING]: No jwt.secret set, a random one was generated. Tokens won't survive a restart")
	}

	switch v.GetString("storage.mirror") {
	case "s3":
		if v.GetString("aws.region") == "" {
			return errors.New("aws region can't be empty")
		}
		if v.GetString("aws.access_key") == "" {
			return errors.New("aws access key can't be empty")
		}
		if v.GetString("aws.secret_access_key") == "" {
			return errors.New("aws secret access key can't be empty")
		}
		if v.GetString("aws.bucket") == "" {
			return errors.New("aws bucket can't be empty")
		}
	case "r2":
		if v.GetString("cloudflare.account_id") == "" {
			return errors.New("account id can't be empty")
		}
		if v.GetString("cloudflare.access_key_id") == "" {
			return errors.New("account access id can't be empty")
		}
		if v.GetString("cloudflare.secret_access_key") == "" {
			return errors.New("secret access key can't be empty")
		}
		if v.GetString("cloudflare.bucket") == "" {
			return errors.New("bucket can't be empty")
		}
	}

	if !slices.Contains(validMirrors, v.GetString("storage.mirror")) {
		return errors.New("invalid storage mirror provided")
	}

	return nil
}

// Load returns the configuration prepared by Setup
func Load() (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config, %w", err)
	}

	return &cfg, nil
}
