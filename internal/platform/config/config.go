package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	APIPort string
	JWTKey  []byte
	JWTExp  time.Duration

	StorageDriver string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSslMode     string
	DBConnStr     string

	// Empty RedisAddr disables the registration lock.
	RedisAddr                  string
	RedisPassword              string
	RedisDB                    int
	RegistrationLockTTLSeconds int

	EmailDomain             string
	CORSAllowedOrigins      []string
	LoginRateLimitPerMinute int

	StoreTimeout time.Duration
	HashTimeout  time.Duration
	BcryptCost   int
	LogLevel     string
}

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:                    getEnv("API_PORT", "3000"),
		JWTKey:                     []byte(getEnv("JWT_SECRET", "")),
		JWTExp:                     time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 72)) * time.Hour,
		StorageDriver:              getEnv("STORAGE_DRIVER", StorageDriverPostgres),
		DBHost:                     getEnv("DB_HOST", "localhost"),
		DBPort:                     getEnv("DB_PORT", "5432"),
		DBUser:                     getEnv("DB_USER", "user"),
		DBPassword:                 getEnv("DB_PASSWORD", "password"),
		DBName:                     getEnv("DB_NAME", "campus_portal"),
		DBSslMode:                  getEnv("DB_SSLMODE", "disable"),
		RedisAddr:                  getEnv("REDIS_ADDR", ""),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    getEnvAsInt("REDIS_DB", 0),
		RegistrationLockTTLSeconds: getEnvAsInt("REGISTRATION_LOCK_TTL_SECONDS", 10),
		EmailDomain:                getEnv("EMAIL_DOMAIN", "@rguktsklm.ac.in"),
		CORSAllowedOrigins:         getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		LoginRateLimitPerMinute:    getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 20),
		StoreTimeout:               time.Duration(getEnvAsInt("STORE_TIMEOUT_MS", 5000)) * time.Millisecond,
		HashTimeout:                time.Duration(getEnvAsInt("HASH_TIMEOUT_MS", 5000)) * time.Millisecond,
		BcryptCost:                 getEnvAsInt("BCRYPT_COST", 10),
		LogLevel:                   getEnv("LOG_LEVEL", "info"),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode

	return cfg
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if len(c.JWTKey) == 0 {
		return errors.New("JWT_SECRET must be set")
	}
	if c.JWTExp < 0 {
		return errors.New("JWT_EXPIRATION_HOURS must not be negative")
	}
	switch c.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return errors.New("STORAGE_DRIVER must be \"postgres\" or \"memory\"")
	}
	if c.StoreTimeout <= 0 || c.HashTimeout <= 0 {
		return errors.New("STORE_TIMEOUT_MS and HASH_TIMEOUT_MS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
