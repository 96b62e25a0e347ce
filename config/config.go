package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Port           string         `yaml:"port"`
	CORSOrigins    []string       `yaml:"cors_origins"`
	Database       DBConfig       `yaml:"database"`
	JWT            JWTConfig      `yaml:"jwt"`
	RedisURL       string         `yaml:"redis_url"`
	Stats          StatsConfig    `yaml:"stats"`
	Supabase       SupabaseConfig `yaml:"supabase"`
	SMTP           SMTPConfig     `yaml:"smtp"`
	GoogleClientID string         `yaml:"google_client_id"`
}

type DBConfig struct {
	Driver     string `yaml:"driver"` // postgres | sqlite
	Host       string `yaml:"host"`
	Port       string `yaml:"port"`
	User       string `yaml:"user"`
	Password   string `yaml:"password"`
	Name       string `yaml:"name"`
	SSLMode    string `yaml:"sslmode"`
	TimeZone   string `yaml:"timezone"`
	SQLitePath string `yaml:"sqlite_path"`
	LogLevel   string `yaml:"log_level"`
}

type JWTConfig struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type StatsConfig struct {
	CacheTTL         time.Duration `yaml:"cache_ttl"`
	SnapshotInterval time.Duration `yaml:"snapshot_interval"`
}

type SupabaseConfig struct {
	URL    string `yaml:"url"`
	Key    string `yaml:"key"`
	Bucket string `yaml:"bucket"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type ConfigError struct {
	Field  string
	Reason string
}

func (e ConfigError) Error() string {
	return "config error: " + e.Field + " - " + e.Reason
}

func defaults() *Config {
	return &Config{
		Port:        "8080",
		CORSOrigins: []string{"http://localhost:8081"},
		Database: DBConfig{
			Driver:     "postgres",
			Port:       "5432",
			SSLMode:    "disable",
			TimeZone:   "Asia/Ho_Chi_Minh",
			SQLitePath: "sportcenter.db",
			LogLevel:   "warn",
		},
		JWT: JWTConfig{TTL: 72 * time.Hour},
		Stats: StatsConfig{
			CacheTTL:         time.Hour,
			SnapshotInterval: 24 * time.Hour,
		},
		Supabase: SupabaseConfig{Bucket: "uploads"},
		SMTP:     SMTPConfig{Host: "smtp.gmail.com", Port: "587"},
	}
}

// Load đọc .env, file YAML (CONFIG_FILE) rồi tới biến môi trường; env luôn thắng.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Không tìm thấy file .env")
	}

	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}
	applyEnv(cfg)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.Port = getEnv("PORT", cfg.Port)
	if origins := getEnv("CORS_ORIGINS", ""); origins != "" {
		cfg.CORSOrigins = strings.Split(origins, ",")
	}

	db := &cfg.Database
	db.Driver = getEnv("DB_DRIVER", db.Driver)
	db.Host = getEnv("DB_HOST", db.Host)
	db.Port = getEnv("DB_PORT", db.Port)
	db.User = getEnv("DB_USER", db.User)
	db.Password = getEnv("DB_PASSWORD", db.Password)
	db.Name = getEnv("DB_NAME", db.Name)
	db.SSLMode = getEnv("DB_SSLMODE", db.SSLMode)
	db.TimeZone = getEnv("DB_TIMEZONE", db.TimeZone)
	db.SQLitePath = getEnv("SQLITE_PATH", db.SQLitePath)
	db.LogLevel = getEnv("DB_LOG_LEVEL", db.LogLevel)

	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.TTL = getEnvAsDuration("JWT_TTL", cfg.JWT.TTL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.Stats.CacheTTL = getEnvAsDuration("STATS_CACHE_TTL", cfg.Stats.CacheTTL)
	cfg.Stats.SnapshotInterval = getEnvAsDuration("STATS_SNAPSHOT_INTERVAL", cfg.Stats.SnapshotInterval)
	cfg.Supabase.URL = getEnv("SUPABASE_URL", cfg.Supabase.URL)
	cfg.Supabase.Key = getEnv("SUPABASE_KEY", cfg.Supabase.Key)
	cfg.Supabase.Bucket = getEnv("SUPABASE_BUCKET", cfg.Supabase.Bucket)
	cfg.SMTP.Host = getEnv("SMTP_HOST", cfg.SMTP.Host)
	cfg.SMTP.Port = getEnv("SMTP_PORT", cfg.SMTP.Port)
	cfg.SMTP.Email = getEnv("SMTP_EMAIL", cfg.SMTP.Email)
	cfg.SMTP.Password = getEnv("SMTP_PASSWORD", cfg.SMTP.Password)
	cfg.GoogleClientID = getEnv("GOOGLE_CLIENT_ID", cfg.GoogleClientID)
}

func validate(cfg *Config) error {
	if cfg.JWT.Secret == "" {
		return ConfigError{Field: "JWT_SECRET", Reason: "không được để trống"}
	}
	switch cfg.Database.Driver {
	case "postgres":
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return ConfigError{Field: "DB_HOST/DB_NAME", Reason: "bắt buộc khi DB_DRIVER=postgres"}
		}
	case "sqlite":
	default:
		return ConfigError{Field: "DB_DRIVER", Reason: "chỉ hỗ trợ postgres hoặc sqlite"}
	}
	if cfg.Stats.CacheTTL <= 0 {
		return ConfigError{Field: "STATS_CACHE_TTL", Reason: "phải lớn hơn 0"}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsDuration chấp nhận "90m", "1h" hoặc số giây.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}
