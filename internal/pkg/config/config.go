package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the application configuration
// SSOT: 모든 설정은 .env 파일 또는 환경 변수에서 로드됨
// 각 컴포넌트는 생성 시점에 *Config 를 명시적으로 전달받는다 (전역 엔진 없음)
type Config struct {
	Database DatabaseConfig
	Logging  LoggingConfig
	KRX      KRXConfig
	Naver    NaverConfig
	Export   ExportConfig
	Pipeline PipelineConfig
}

type DatabaseConfig struct {
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	URL             string // SSOT: DATABASE_URL
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

type LoggingConfig struct {
	Level         string
	Format        string // json, pretty
	FileEnabled   bool
	FilePath      string
	RotationSize  int // MB
	RetentionDays int
}

type KRXConfig struct {
	BaseURL         string
	RequestInterval time.Duration // 요청 간 최소 간격
	Timeout         time.Duration
	RetryAttempts   int
	RetryBaseDelay  time.Duration
}

type NaverConfig struct {
	BaseURL string
	Timeout time.Duration
}

type ExportConfig struct {
	Dir string
}

// PipelineConfig 순매수 집계 파이프라인 설정
type PipelineConfig struct {
	CalendarStartDate    string // YYYYMMDD
	CombinedStreakPolicy string // count, streak
	RankCutoff           int
}

// Load loads configuration from .env file
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// .env 파일이 없어도 계속 진행 (환경 변수에서 로드 시도)
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}

	cfg := &Config{
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			Name:            getEnv("DB_NAME", "stock"),
			User:            getEnv("DB_USER", "stock"),
			Password:        getEnv("DB_PASSWORD", ""),
			URL:             getEnv("DATABASE_URL", "postgresql://stock@localhost:5432/stock?sslmode=disable"),
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
			MaxConnIdleTime: 30 * time.Minute,
		},
		Logging: LoggingConfig{
			Level:         getEnv("LOG_LEVEL", "info"),
			Format:        getEnv("LOG_FORMAT", "pretty"),
			FileEnabled:   getEnvBool("LOG_FILE_ENABLED", false),
			FilePath:      getEnv("LOG_PATH", "logs"),
			RotationSize:  getEnvInt("LOG_ROTATION_SIZE_MB", 50),
			RetentionDays: getEnvInt("LOG_RETENTION_DAYS", 14),
		},
		KRX: KRXConfig{
			BaseURL:         getEnv("KRX_BASE_URL", "http://data.krx.co.kr"),
			RequestInterval: getEnvDuration("KRX_REQUEST_INTERVAL", 1*time.Second),
			Timeout:         getEnvDuration("KRX_TIMEOUT", 30*time.Second),
			RetryAttempts:   getEnvInt("KRX_RETRY_ATTEMPTS", 3),
			RetryBaseDelay:  getEnvDuration("KRX_RETRY_BASE_DELAY", 1*time.Second),
		},
		Naver: NaverConfig{
			BaseURL: getEnv("NAVER_BASE_URL", "https://finance.naver.com"),
			Timeout: getEnvDuration("NAVER_TIMEOUT", 30*time.Second),
		},
		Export: ExportConfig{
			Dir: getEnv("EXPORT_DIR", "stock_file"),
		},
		Pipeline: PipelineConfig{
			CalendarStartDate:    getEnv("CALENDAR_START_DATE", "20250101"),
			CombinedStreakPolicy: getEnv("COMBINED_STREAK_POLICY", "count"),
			RankCutoff:           getEnvInt("RANK_CUTOFF", 51),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Pipeline.CombinedStreakPolicy {
	case "count", "streak":
	default:
		return fmt.Errorf("invalid COMBINED_STREAK_POLICY %q: want count or streak", c.Pipeline.CombinedStreakPolicy)
	}
	if c.KRX.RetryAttempts < 1 {
		return fmt.Errorf("invalid KRX_RETRY_ATTEMPTS %d: must be >= 1", c.KRX.RetryAttempts)
	}
	if c.Pipeline.RankCutoff < 1 {
		return fmt.Errorf("invalid RANK_CUTOFF %d: must be >= 1", c.Pipeline.RankCutoff)
	}
	if _, err := time.Parse("20060102", c.Pipeline.CalendarStartDate); err != nil {
		return fmt.Errorf("invalid CALENDAR_START_DATE %q: %w", c.Pipeline.CalendarStartDate, err)
	}
	return nil
}

// getEnv gets environment variable with fallback
func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
