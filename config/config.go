package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/yeremiapane/lunchorder/utils"
)

type Config struct {
	APIBaseURL string
	APITimeout time.Duration
	// APIRequestsPerSecond throttles outbound calls; 0 disables the limiter.
	APIRequestsPerSecond float64

	SessionDBPath string
	LogLevel      string
	Workdays      int

	// AvailabilityFailurePolicy is "keep" or "rollback".
	AvailabilityFailurePolicy string

	StubPort    string
	StubDBPath  string
	UploadDir   string
	CORSOrigins []string
	GinMode     string
}

// Load reads .env (if present) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		utils.InfoLogger.Debug("no .env file loaded")
	}

	return Config{
		APIBaseURL:                getEnv("LUNCH_API_URL", "http://localhost:5000/api"),
		APITimeout:                getDuration("LUNCH_API_TIMEOUT", 30*time.Second),
		APIRequestsPerSecond:      getFloat("LUNCH_API_RPS", 0),
		SessionDBPath:             getEnv("LUNCH_SESSION_DB", defaultSessionPath()),
		LogLevel:                  getEnv("LOG_LEVEL", "info"),
		Workdays:                  getInt("WORKDAYS_AHEAD", 5),
		AvailabilityFailurePolicy: getEnv("AVAILABILITY_FAILURE_POLICY", "keep"),
		StubPort:                  getEnv("STUB_PORT", "5000"),
		StubDBPath:                getEnv("STUB_DB", ":memory:"),
		UploadDir:                 getEnv("UPLOAD_DIR", filepath.Join(os.TempDir(), "lunchorder-uploads")),
		CORSOrigins:               getList("CORS_ORIGINS", "http://localhost:5173"),
		GinMode:                   os.Getenv("GIN_MODE"),
	}
}

// InitDB opens (and creates) a sqlite database through gorm.
func InitDB(path string) (*gorm.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, err
		}
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every new connection would get its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

func defaultSessionPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "lunchorder", "session.db")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getList(key, fallback string) []string {
	var out []string
	for _, v := range strings.Split(getEnv(key, fallback), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getFloat(key string, fallback float64) float64 {
	v, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	// Plain numbers are seconds.
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	utils.ErrorLogger.Warnf("invalid %s=%q, using %s", key, raw, fallback)
	return fallback
}
