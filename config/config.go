package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ayaka-hub/ayaka-learning-bot/pkg/timeutil"
)

// Environment represents the application environment.
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvProduction  Environment = "production"
)

// Config holds all application configuration.
type Config struct {
	// Application
	App AppConfig

	// Telegram Bot
	Telegram TelegramConfig

	// Gemini generation delegate
	Gemini GeminiConfig

	// Penalty ledger
	Penalty PenaltyConfig

	// Document storage
	Storage StorageConfig

	// Scheduler
	Scheduler SchedulerConfig

	// Video extractor
	Video VideoConfig

	// Feature Flags
	Features *FeatureFlags

	// Observability
	Observability ObservabilityConfig
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string
	Environment Environment
	Debug       bool
	Version     string

	// Timezone for the tribute schedule and day boundaries
	// (default: Asia/Kolkata).
	Timezone string
	Location *time.Location

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration
}

// TelegramConfig holds Telegram Bot settings.
type TelegramConfig struct {
	// Bot token from @BotFather
	Token string

	// Names the bot answers to when mentioned in a group.
	BotNames []string

	// LeaderID is the Telegram ID allowed to administer penalties and
	// the tribute toggle.
	LeaderID int64

	// Rate limiting
	UserRateLimit int // messages per minute per user
	UserBurstSize int

	// Update processing
	MaxConcurrentUpdates int
}

// GeminiConfig holds generation delegate settings.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
	RequestTimeout  time.Duration

	// Retry settings
	MaxRetries     int
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// Circuit breaker settings
	CircuitBreakerThreshold int
	CircuitBreakerTimeout   time.Duration
}

// PenaltyConfig holds the accountability ledger tunables.
type PenaltyConfig struct {
	// UnitRupees is the charge for one missed day.
	UnitRupees float64

	// DailyRatePercent is the daily interest on the outstanding amount.
	DailyRatePercent float64

	// EscalationThreshold is how many consecutive misses are tolerated
	// before the balance is written off as a donation.
	EscalationThreshold int
}

// StorageBackend selects where documents live.
type StorageBackend string

const (
	BackendJSON     StorageBackend = "json"
	BackendPostgres StorageBackend = "postgres"
	BackendRedis    StorageBackend = "redis"
)

// StorageConfig holds document persistence settings.
type StorageConfig struct {
	// Backend is json (default) or postgres. Postgres covers the
	// penalty ledger only; users, progress and content stay in flat
	// files either way.
	Backend StorageBackend

	// DataDir is where the json backend keeps its documents.
	DataDir string

	// PostgresURL is the connection string for the postgres backend.
	PostgresURL string

	// Postgres pool settings
	MaxConns        int
	ConnMaxLifetime time.Duration

	// MemoryBackend is json (default) or redis, for the conversation
	// memory windows.
	MemoryBackend StorageBackend

	// Redis settings for the redis memory backend.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// SchedulerConfig holds background job settings.
type SchedulerConfig struct {
	// Enable/disable the scheduler entirely
	Enabled bool

	// Daily tribute settings (in configured timezone)
	TributeHour    int // 0-23
	TributeMinute  int // 0-59
	TributeChatID  int64
	TributeMessage string
	TributeSticker string

	// Daily interest accrual time
	InterestHour   int
	InterestMinute int

	// Concurrency
	JobTimeout time.Duration
}

// VideoConfig holds yt-dlp extractor settings.
type VideoConfig struct {
	BinaryPath      string
	DownloadDir     string
	MaxFileSize     int64
	DownloadTimeout time.Duration
}

// ObservabilityConfig holds logging settings.
type ObservabilityConfig struct {
	LogLevel  string // debug, info, warn, error
	LogFormat string // json, text
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App:           loadAppConfig(),
		Telegram:      loadTelegramConfig(),
		Gemini:        loadGeminiConfig(),
		Penalty:       loadPenaltyConfig(),
		Storage:       loadStorageConfig(),
		Scheduler:     loadSchedulerConfig(),
		Video:         loadVideoConfig(),
		Features:      LoadFeatureFlags(),
		Observability: loadObservabilityConfig(),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

func loadAppConfig() AppConfig {
	env := Environment(getEnv("APP_ENV", "development"))
	timezone := getEnv("APP_TIMEZONE", "Asia/Kolkata")

	// Containers often ship without tzdata; IST is fixed-offset so the
	// fallback loses nothing for the default timezone.
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		loc = timeutil.IndiaTZ
	}

	return AppConfig{
		Name:            getEnv("APP_NAME", "ayaka-learning-bot"),
		Environment:     env,
		Debug:           env == EnvDevelopment || getEnvBool("APP_DEBUG", false),
		Version:         getEnv("APP_VERSION", "0.1.0"),
		Timezone:        timezone,
		Location:        loc,
		ShutdownTimeout: getEnvDuration("APP_SHUTDOWN_TIMEOUT", 30*time.Second),
	}
}

func loadTelegramConfig() TelegramConfig {
	return TelegramConfig{
		Token:                getEnv("TELEGRAM_BOT_TOKEN", ""),
		BotNames:             getEnvStringSlice("BOT_NAMES", []string{"ayaka"}),
		LeaderID:             getEnvInt64("LEADER_TELEGRAM_ID", 0),
		UserRateLimit:        getEnvInt("TELEGRAM_USER_RATE_LIMIT", 20),
		UserBurstSize:        getEnvInt("TELEGRAM_USER_BURST_SIZE", 5),
		MaxConcurrentUpdates: getEnvInt("TELEGRAM_MAX_CONCURRENT_UPDATES", 50),
	}
}

func loadGeminiConfig() GeminiConfig {
	return GeminiConfig{
		APIKey:                  getEnv("GEMINI_API_KEY", ""),
		Model:                   getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		Temperature:             getEnvFloat("GEMINI_TEMPERATURE", 0.7),
		MaxOutputTokens:         getEnvInt("GEMINI_MAX_OUTPUT_TOKENS", 1000),
		RequestTimeout:          getEnvDuration("GEMINI_REQUEST_TIMEOUT", 30*time.Second),
		MaxRetries:              getEnvInt("GEMINI_MAX_RETRIES", 3),
		RetryBaseDelay:          getEnvDuration("GEMINI_RETRY_BASE_DELAY", 500*time.Millisecond),
		RetryMaxDelay:           getEnvDuration("GEMINI_RETRY_MAX_DELAY", 10*time.Second),
		CircuitBreakerThreshold: getEnvInt("GEMINI_CB_THRESHOLD", 5),
		CircuitBreakerTimeout:   getEnvDuration("GEMINI_CB_TIMEOUT", 30*time.Second),
	}
}

func loadPenaltyConfig() PenaltyConfig {
	return PenaltyConfig{
		UnitRupees:          getEnvFloat("PENALTY_UNIT", 100),
		DailyRatePercent:    getEnvFloat("PENALTY_DAILY_RATE_PERCENT", 18),
		EscalationThreshold: getEnvInt("PENALTY_ESCALATION_THRESHOLD", 2),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Backend:         StorageBackend(getEnv("STORAGE_BACKEND", string(BackendJSON))),
		DataDir:         getEnv("DATA_DIR", "data"),
		PostgresURL:     getEnv("POSTGRES_URL", ""),
		MaxConns:        getEnvInt("POSTGRES_MAX_CONNS", 10),
		ConnMaxLifetime: getEnvDuration("POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		MemoryBackend:   StorageBackend(getEnv("MEMORY_BACKEND", string(BackendJSON))),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         getEnvInt("REDIS_DB", 0),
	}
}

func loadSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		Enabled:        getEnvBool("SCHEDULER_ENABLED", true),
		TributeHour:    getEnvInt("TRIBUTE_HOUR", 8),
		TributeMinute:  getEnvInt("TRIBUTE_MINUTE", 0),
		TributeChatID:  getEnvInt64("TRIBUTE_CHAT_ID", 0),
		TributeMessage: getEnv("TRIBUTE_MESSAGE", ""),
		TributeSticker: getEnv("TRIBUTE_STICKER_ID", ""),
		InterestHour:   getEnvInt("INTEREST_HOUR", 0),
		InterestMinute: getEnvInt("INTEREST_MINUTE", 5),
		JobTimeout:     getEnvDuration("SCHEDULER_JOB_TIMEOUT", 2*time.Minute),
	}
}

func loadVideoConfig() VideoConfig {
	return VideoConfig{
		BinaryPath:      getEnv("YTDLP_PATH", "yt-dlp"),
		DownloadDir:     getEnv("VIDEO_DOWNLOAD_DIR", "videos"),
		MaxFileSize:     getEnvInt64("VIDEO_MAX_FILE_SIZE", 50*1024*1024),
		DownloadTimeout: getEnvDuration("VIDEO_DOWNLOAD_TIMEOUT", 2*time.Minute),
	}
}

func loadObservabilityConfig() ObservabilityConfig {
	return ObservabilityConfig{
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}
}

// Validate checks if the configuration is valid. Missing credentials
// fail here, at startup, not at first use.
func (c *Config) Validate() error {
	var errs []string

	if c.Telegram.Token == "" {
		errs = append(errs, "TELEGRAM_BOT_TOKEN is required")
	}
	if c.Gemini.APIKey == "" {
		errs = append(errs, "GEMINI_API_KEY is required")
	}

	switch c.Storage.Backend {
	case BackendJSON, BackendPostgres:
	default:
		errs = append(errs, fmt.Sprintf("STORAGE_BACKEND %q is not one of json, postgres", c.Storage.Backend))
	}
	if c.Storage.Backend == BackendPostgres && c.Storage.PostgresURL == "" {
		errs = append(errs, "POSTGRES_URL is required with STORAGE_BACKEND=postgres")
	}
	switch c.Storage.MemoryBackend {
	case BackendJSON, BackendRedis:
	default:
		errs = append(errs, fmt.Sprintf("MEMORY_BACKEND %q is not one of json, redis", c.Storage.MemoryBackend))
	}

	if c.Scheduler.TributeHour < 0 || c.Scheduler.TributeHour > 23 {
		errs = append(errs, "TRIBUTE_HOUR must be 0-23")
	}
	if c.Scheduler.TributeMinute < 0 || c.Scheduler.TributeMinute > 59 {
		errs = append(errs, "TRIBUTE_MINUTE must be 0-59")
	}

	if c.Penalty.UnitRupees <= 0 {
		errs = append(errs, "PENALTY_UNIT must be positive")
	}
	if c.Penalty.DailyRatePercent < 0 {
		errs = append(errs, "PENALTY_DAILY_RATE_PERCENT must not be negative")
	}
	if c.Penalty.EscalationThreshold < 1 {
		errs = append(errs, "PENALTY_ESCALATION_THRESHOLD must be at least 1")
	}

	if c.Video.MaxFileSize <= 0 {
		errs = append(errs, "VIDEO_MAX_FILE_SIZE must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == EnvDevelopment
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// --- Helper functions for environment variable parsing ---

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}
	return d
}

func getEnvStringSlice(key string, defaultVal []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}

	parts := strings.Split(val, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			result = append(result, p)
		}
	}
	if len(result) == 0 {
		return defaultVal
	}
	return result
}
