package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultAPITimeout   = 15 * time.Second
	DefaultDismissDelay = 3 * time.Second
	DefaultWorkerCount  = 4
	DefaultGeminiModel  = "gemini-1.5-flash"
	maxGeminiKeys       = 4
)

// maxSeconds keeps n * time.Second inside time.Duration.
const maxSeconds = float64(math.MaxInt64 / int64(time.Second))

// Database holds the optional audit database settings
type Database struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether an audit database was configured.
func (d Database) Enabled() bool {
	return d.Host != ""
}

// DSN builds a lib/pq connection string.
func (d Database) DSN() string {
	port := d.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		d.Host, port, d.User, d.Password, d.Name)
}

type Config struct {
	APIURL       string
	APIToken     string
	APITimeout   time.Duration
	DismissDelay time.Duration
	WorkerCount  int
	GeminiKeys   []string
	GeminiModel  string
	DB           Database
}

// Load reads .env (if present) and the process environment.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Printf("Warning: no .env file loaded: %v", err)
	}
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, which keeps tests off the
// process environment.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Config{
		APIURL:      strings.TrimRight(strings.TrimSpace(getenv("HOSTEL_API_URL")), "/"),
		APIToken:    strings.TrimSpace(getenv("HOSTEL_API_TOKEN")),
		GeminiModel: getenv("GEMINI_MODEL"),
		DB: Database{
			Host:     getenv("DB_HOST"),
			Port:     getenv("DB_PORT"),
			User:     getenv("DB_USER"),
			Password: getenv("DB_PASSWORD"),
			Name:     getenv("DB_NAME"),
		},
	}
	if cfg.APIURL == "" {
		return Config{}, errors.New("HOSTEL_API_URL is not set")
	}
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = DefaultGeminiModel
	}

	var err error
	if cfg.APITimeout, err = seconds(getenv, "HOSTEL_API_TIMEOUT_SECONDS", DefaultAPITimeout); err != nil {
		return Config{}, err
	}
	if cfg.DismissDelay, err = seconds(getenv, "NOTIFY_DISMISS_SECONDS", DefaultDismissDelay); err != nil {
		return Config{}, err
	}

	cfg.WorkerCount = DefaultWorkerCount
	if v := getenv("WORKER_COUNT"); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil || count <= 0 {
			return Config{}, fmt.Errorf("WORKER_COUNT must be a positive integer, got %q", v)
		}
		cfg.WorkerCount = count
	}

	for i := 1; i <= maxGeminiKeys; i++ {
		if key := getenv(fmt.Sprintf("GEMINI_API_KEY_%d", i)); key != "" {
			cfg.GeminiKeys = append(cfg.GeminiKeys, key)
		}
	}
	if len(cfg.GeminiKeys) == 0 {
		if key := getenv("GEMINI_API_KEY"); key != "" {
			cfg.GeminiKeys = []string{key}
		}
	}

	return cfg, nil
}

func seconds(getenv func(string) string, key string, def time.Duration) (time.Duration, error) {
	v := getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) || n <= 0 || n >= maxSeconds {
		return 0, fmt.Errorf("%s must be a positive number of seconds, got %q", key, v)
	}
	return time.Duration(n * float64(time.Second)), nil
}
