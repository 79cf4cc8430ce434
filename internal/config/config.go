package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the movie search service.
type Config struct {
	DB       DBConfig
	Redis    RedisConfig
	Provider ProviderConfig
	Auth     AuthConfig
	Local    LocalStoreConfig
	Port     string
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// ProviderConfig selects and configures the upstream metadata provider.
type ProviderConfig struct {
	Active      string // "omdb" or "tmdb"
	OMDbAPIKey  string
	OMDbBaseURL string
	TMDBAPIKey  string
	TMDBBaseURL string
	TMDBImgBase string
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	JWTKey          string
	AccessTTL       time.Duration
	RefreshTTL      time.Duration
	TokenTTL        time.Duration // magic link / confirm / reset tokens
	LockoutAttempts int
	LockoutWindow   time.Duration
}

// LocalStoreConfig holds local (anonymous) favorites storage configuration.
type LocalStoreConfig struct {
	Path string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	lockAttempts, _ := strconv.Atoi(getEnv("AUTH_LOCKOUT_ATTEMPTS", "5"))
	lockWindow, _ := strconv.Atoi(getEnv("AUTH_LOCKOUT_WINDOW_SECONDS", "60"))

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_search"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Provider: ProviderConfig{
			Active:      getEnv("PROVIDER", "omdb"),
			OMDbAPIKey:  getEnv("OMDB_API_KEY", ""),
			OMDbBaseURL: getEnv("OMDB_BASE_URL", "https://www.omdbapi.com/"),
			TMDBAPIKey:  getEnv("TMDB_API_KEY", ""),
			TMDBBaseURL: getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			TMDBImgBase: getEnv("TMDB_IMG_BASE", "https://image.tmdb.org/t/p"),
		},
		Auth: AuthConfig{
			JWTKey:          getEnv("AUTH_JWT_KEY", ""),
			AccessTTL:       15 * time.Minute,
			RefreshTTL:      30 * 24 * time.Hour,
			TokenTTL:        15 * time.Minute,
			LockoutAttempts: lockAttempts,
			LockoutWindow:   time.Duration(lockWindow) * time.Second,
		},
		Local: LocalStoreConfig{
			Path: getEnv("LOCAL_FAVORITES_PATH", "data/movie_favorites_v1.json"),
		},
		Port: getEnv("SERVER_PORT", "8080"),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
