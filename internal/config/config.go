package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Storage backends understood by STORAGE_BACKEND.
const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// Config holds the configuration values for the application.
// It is built once at process start and passed to every component that needs it.
type Config struct {
	ListenPort  string
	DatabaseURL string
	BaseURL     string
	LabName     string

	AdminUser         string
	AdminPass         string
	AdminPassHash     string
	AdminAuthRequired bool

	StorageBackend string
	StorageDir     string
	Minio          MinioConfig

	LogLevel  string
	LogFormat string

	CORSAllowOrigins       []string
	ShutdownTimeoutSeconds int
}

// MinioConfig holds the object storage settings used when StorageBackend is "minio".
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// LoadConfig loads configuration from environment variables or uses default values.
// A .env file in the working directory is read first when present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	adminAuthRequired, err := envBool("ADMIN_AUTH_REQUIRED", true)
	if err != nil {
		return nil, err
	}
	minioUseSSL, err := envBool("MINIO_USE_SSL", false)
	if err != nil {
		return nil, err
	}
	shutdownTimeout, err := envInt("SHUTDOWN_TIMEOUT_SECONDS", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ListenPort:        envString("LISTEN_PORT", "5000"),
		DatabaseURL:       envString("DATABASE_URL", "sqlite:///surya.db"),
		BaseURL:           strings.TrimRight(envString("BASE_URL", "http://localhost:5000"), "/"),
		LabName:           envString("LAB_NAME", "SURYA DIAGNOSTICS"),
		AdminUser:         os.Getenv("ADMIN_USER"),
		AdminPass:         os.Getenv("ADMIN_PASS"),
		AdminPassHash:     os.Getenv("ADMIN_PASS_HASH"),
		AdminAuthRequired: adminAuthRequired,
		StorageBackend:    strings.ToLower(envString("STORAGE_BACKEND", StorageLocal)),
		StorageDir:        envString("STORAGE_DIR", "storage"),
		Minio: MinioConfig{
			Endpoint:  os.Getenv("MINIO_ENDPOINT"),
			AccessKey: os.Getenv("MINIO_ACCESS_KEY"),
			SecretKey: os.Getenv("MINIO_SECRET_KEY"),
			Bucket:    envString("MINIO_BUCKET", "reports"),
			UseSSL:    minioUseSSL,
		},
		LogLevel:               envString("LOG_LEVEL", "info"),
		LogFormat:              envString("LOG_FORMAT", "json"),
		CORSAllowOrigins:       splitList(envString("CORS_ALLOW_ORIGINS", "*")),
		ShutdownTimeoutSeconds: shutdownTimeout,
	}

	switch cfg.StorageBackend {
	case StorageLocal:
	case StorageMinio:
		if cfg.Minio.Endpoint == "" {
			return nil, fmt.Errorf("MINIO_ENDPOINT is required when STORAGE_BACKEND=minio")
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	return cfg, nil
}

func envString(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func envBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func envInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return n, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
