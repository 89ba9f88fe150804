package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Web      WebConfig      `yaml:"web"`
	Service  ServiceConfig  `yaml:"service"`
	Progress ProgressConfig `yaml:"progress"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

type WebConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// ServiceConfig endpoint'ы удаленного сервиса анализа
type ServiceConfig struct {
	PrimaryURL  string        `yaml:"primary_url"`
	FallbackURL string        `yaml:"fallback_url"`
	ChatURL     string        `yaml:"chat_url"`
	Timeout     time.Duration `yaml:"timeout"`

	// MaxUploadBytes лимит размера одного файла улики
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

type ProgressConfig struct {
	Tick    time.Duration `yaml:"tick"`
	Timeout time.Duration `yaml:"timeout"`
}

// ArchiveConfig настройки архивирования улик в S3-совместимое хранилище
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

// Load собирает конфигурацию: дефолты → YAML файл (CONFIG_FILE) → .env/окружение
func Load() (*Config, error) {
	// .env опционален, его отсутствие не ошибка
	_ = godotenv.Load()

	cfg := &Config{
		Web: WebConfig{
			ListenAddr: ":8080",
		},
		Service: ServiceConfig{
			PrimaryURL:     "http://localhost:8000/verify_with_instructions",
			FallbackURL:    "http://localhost:8000/verify",
			ChatURL:        "http://localhost:8000/chat",
			Timeout:        2 * time.Minute,
			MaxUploadBytes: 200 << 20,
		},
		Progress: ProgressConfig{
			Tick:    400 * time.Millisecond,
			Timeout: 8 * time.Second,
		},
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnv(cfg)
	return cfg, nil
}

// applyEnv накладывает переменные окружения поверх текущих значений
func applyEnv(cfg *Config) {
	setString(&cfg.Web.ListenAddr, "WEB_LISTEN_ADDR")
	setString(&cfg.Service.PrimaryURL, "FORENSIC_PRIMARY_URL")
	setString(&cfg.Service.FallbackURL, "FORENSIC_FALLBACK_URL")
	setString(&cfg.Service.ChatURL, "FORENSIC_CHAT_URL")
	setDuration(&cfg.Service.Timeout, "FORENSIC_TIMEOUT")
	setInt64(&cfg.Service.MaxUploadBytes, "MAX_UPLOAD_BYTES")
	setDuration(&cfg.Progress.Tick, "PROGRESS_TICK")
	setDuration(&cfg.Progress.Timeout, "PROGRESS_TIMEOUT")

	setBool(&cfg.Archive.Enabled, "ARCHIVE_ENABLED")
	setString(&cfg.Archive.Endpoint, "S3_ENDPOINT")
	setString(&cfg.Archive.Region, "S3_REGION")
	setString(&cfg.Archive.AccessKey, "S3_ACCESS_KEY")
	setString(&cfg.Archive.SecretKey, "S3_SECRET_KEY")
	setString(&cfg.Archive.Bucket, "S3_BUCKET")
	setBool(&cfg.Archive.UseSSL, "S3_USE_SSL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
