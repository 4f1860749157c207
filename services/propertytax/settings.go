package propertytax

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"nhctax-backend/lib/scrapers/nhctax"

	"github.com/joho/godotenv"
)

// Settings is the environment-driven configuration surface. Every knob
// has a default matching the portal's tolerances, so an empty
// environment yields a working service.
type Settings struct {
	BaseUrl string
	DataDir string

	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	RetryBackoff   float64

	RateLimitEnabled bool
	RateLimitDelay   time.Duration

	CacheEnabled  bool
	CacheDuration time.Duration
	CacheMaxSize  int

	MaxResults int

	// ApiKey is enforced by transport middleware outside this service.
	ApiKey string
}

func LoadSettings() Settings {
	_ = godotenv.Load()

	s := Settings{
		BaseUrl:          getEnv("BASE_URL", nhctax.DefaultBaseUrl),
		DataDir:          getEnv("DATA_DIR", "./data"),
		RequestTimeout:   time.Second * 30,
		RetryAttempts:    getEnvInt("RETRY_ATTEMPTS", 3),
		RetryDelay:       getEnvSeconds("RETRY_DELAY", 2.0),
		RetryBackoff:     getEnvFloat("RETRY_BACKOFF", 2.0),
		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitDelay:   getEnvSeconds("RATE_LIMIT_DELAY", 1.0),
		CacheEnabled:     getEnvBool("CACHE_ENABLED", true),
		CacheDuration:    time.Hour * time.Duration(getEnvInt("CACHE_DURATION_HOURS", 24)),
		CacheMaxSize:     getEnvInt("CACHE_MAX_SIZE", 5000),
		MaxResults:       getEnvInt("MAX_RESULTS", 500),
		ApiKey:           os.Getenv("API_KEY"),
	}

	if err := os.MkdirAll(s.DataDir, 0755); err != nil {
		slog.Warn("failed to create data directory", "dir", s.DataDir, "err", err)
	}

	return s
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true"
	}
	return defaultVal
}

// env values for delays are fractional seconds, e.g. RETRY_DELAY=0.5
func getEnvSeconds(key string, defaultVal float64) time.Duration {
	return time.Duration(getEnvFloat(key, defaultVal) * float64(time.Second))
}
