package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

const (
	StorageModeLocal = "local"
	StorageModeS3    = "s3"

	TrackerBackendRedis = "redis"
	TrackerBackendDB    = "db"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

type Config struct {
	DBDriver   string
	DSN        string
	SQLitePath string

	LogLevel     string
	LogFile      string
	LogMaxSizeMB int

	UploadRoot  string
	StorageMode string
	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string

	TrackerBackend string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int

	SweepSchedule   string
	JanitorSchedule string

	CleanupQueueSize int
	NumWorkers       int
	WorkQueueSize    int
	ShutdownTimeout  time.Duration

	MetricsAddr string
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) (int, error) {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(strValue)
	if err != nil {
		return 0, fmt.Errorf("env var %s: invalid integer value '%s'", key, strValue)
	}
	return value, nil
}

func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	strValue := getEnv(key, "")
	if strValue == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("env var %s: invalid duration value '%s'", key, strValue)
	}
	return value, nil
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	var err error

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", DBDriverPostgres))
	cfg.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=Asia/Jakarta",
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_USER", "user"),
		getEnv("DB_PASSWORD", "password"),
		getEnv("DB_NAME", "dbname"),
		getEnv("DB_PORT", "5432"),
	)
	cfg.SQLitePath = getEnv("SQLITE_PATH", "./data/attachments.db")

	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFile = getEnv("LOG_FILE", "")

	cfg.UploadRoot = getEnv("UPLOAD_ROOT", "./uploads")
	cfg.StorageMode = strings.ToLower(getEnv("STORAGE_MODE", StorageModeLocal))
	cfg.S3Bucket = getEnv("S3_BUCKET", "")
	cfg.S3Region = getEnv("S3_REGION", "ap-southeast-1")
	cfg.S3Endpoint = getEnv("S3_ENDPOINT", "")
	cfg.S3AccessKey = getEnv("S3_ACCESS_KEY", "")
	cfg.S3SecretKey = getEnv("S3_SECRET_KEY", "")

	cfg.TrackerBackend = strings.ToLower(getEnv("TRACKER_BACKEND", TrackerBackendRedis))
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")

	cfg.SweepSchedule = getEnv("SWEEP_SCHEDULE", "0 3 * * *")
	cfg.JanitorSchedule = getEnv("JANITOR_SCHEDULE", "")
	cfg.MetricsAddr = getEnv("METRICS_ADDR", ":9090")

	if cfg.LogMaxSizeMB, err = getEnvAsInt("LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if cfg.RedisDB, err = getEnvAsInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.CleanupQueueSize, err = getEnvAsInt("CLEANUP_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}
	if cfg.NumWorkers, err = getEnvAsInt("NUM_WORKERS", runtime.NumCPU()*2); err != nil {
		return nil, err
	}
	if cfg.WorkQueueSize, err = getEnvAsInt("WORK_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}
	if cfg.ShutdownTimeout, err = getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}

	if cfg.UploadRoot != "" {
		if cfg.StorageMode == StorageModeLocal {
			if cfg.UploadRoot, err = filepath.Abs(cfg.UploadRoot); err != nil {
				return nil, fmt.Errorf("gagal menentukan path absolut UPLOAD_ROOT: %w", err)
			}
		} else {
			// prefix objek s3 harus sama dengan path yang dibentuk filepath.Join saat upload
			cfg.UploadRoot = filepath.Clean(cfg.UploadRoot)
		}
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	switch cfg.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER tidak valid: '%s'. Gunakan postgres atau sqlite", cfg.DBDriver)
	}

	switch cfg.StorageMode {
	case StorageModeLocal:
	case StorageModeS3:
		if cfg.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET wajib diisi jika STORAGE_MODE=s3")
		}
	default:
		return fmt.Errorf("STORAGE_MODE tidak valid: '%s'. Gunakan local atau s3", cfg.StorageMode)
	}

	switch cfg.TrackerBackend {
	case TrackerBackendRedis:
		if cfg.RedisAddr == "" {
			return fmt.Errorf("REDIS_ADDR wajib diisi jika TRACKER_BACKEND=redis")
		}
	case TrackerBackendDB:
	default:
		return fmt.Errorf("TRACKER_BACKEND tidak valid: '%s'. Gunakan redis atau db", cfg.TrackerBackend)
	}

	if cfg.UploadRoot == "" {
		return fmt.Errorf("UPLOAD_ROOT tidak boleh kosong")
	}
	if cfg.CleanupQueueSize <= 0 {
		return fmt.Errorf("CLEANUP_QUEUE_SIZE harus lebih besar dari 0")
	}
	if cfg.NumWorkers <= 0 {
		return fmt.Errorf("NUM_WORKERS harus lebih besar dari 0")
	}
	if cfg.WorkQueueSize < 0 {
		return fmt.Errorf("WORK_QUEUE_SIZE tidak boleh negatif")
	}
	if cfg.LogMaxSizeMB <= 0 {
		return fmt.Errorf("LOG_MAX_SIZE_MB harus lebih besar dari 0")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	for key, spec := range map[string]string{"SWEEP_SCHEDULE": cfg.SweepSchedule, "JANITOR_SCHEDULE": cfg.JanitorSchedule} {
		if spec == "" {
			continue
		}
		if _, err := parser.Parse(spec); err != nil {
			return fmt.Errorf("%s tidak valid: '%s': %w", key, spec, err)
		}
	}

	validLogLevels := map[string]bool{"DEBUG": true, "INFO": true, "WARN": true, "ERROR": true}
	if !validLogLevels[strings.ToUpper(cfg.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL tidak valid: '%s'. Gunakan salah satu dari: debug, info, warn, error", cfg.LogLevel)
	}

	return nil
}
