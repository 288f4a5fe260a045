package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Database driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Import   ImportConfig
	Rules    RulesConfig
	Security SecurityConfig
}

type ServerConfig struct {
	Port             string
	Host             string
	Environment      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	ShutdownTimeout  time.Duration
	CORSAllowOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	Path            string
	Host            string
	Port            string
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConnections  int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// ImportConfig describes the CSV export shape the importer expects.
// SeedFile, when set, names a CSV imported once at startup.
type ImportConfig struct {
	SeedFile          string
	Delimiter         string
	DateColumn        string
	MerchantColumn    string
	DescriptionColumn string
	AmountColumn      string
	DirectionColumn   string
	DateLayouts       []string
	DecimalComma      bool
	DebitMarkers      []string
}

type RulesConfig struct {
	SeedDefaults bool
}

type SecurityConfig struct {
	RateLimitPerSecond int
	RateLimitBurst     int
}

func Load() *Config {
	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Host:            getEnv("SERVER_HOST", "localhost"),
			Environment:     getEnv("APP_ENV", "development"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", DriverSQLite),
			Path:            getEnv("DB_PATH", "spendtrail.db"),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "5432"),
			User:            getEnv("DB_USER", "spendtrail_user"),
			Password:        getEnv("DB_PASSWORD", "spendtrail_password"),
			Name:            getEnv("DB_NAME", "spendtrail_db"),
			SSLMode:         getEnv("DB_SSL_MODE", "disable"),
			MaxConnections:  getIntEnv("DB_MAX_CONNECTIONS", 25),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		Import: ImportConfig{
			SeedFile:          getEnv("IMPORT_SEED_FILE", ""),
			Delimiter:         getEnv("IMPORT_DELIMITER", ";"),
			DateColumn:        getEnv("IMPORT_DATE_COLUMN", "Date"),
			MerchantColumn:    getEnv("IMPORT_MERCHANT_COLUMN", "Name / Description"),
			DescriptionColumn: getEnv("IMPORT_DESCRIPTION_COLUMN", "Notifications"),
			AmountColumn:      getEnv("IMPORT_AMOUNT_COLUMN", "Amount (EUR)"),
			DirectionColumn:   getEnv("IMPORT_DIRECTION_COLUMN", "Debit/credit"),
			DateLayouts:       getListEnv("IMPORT_DATE_LAYOUTS", []string{"20060102", "2006-01-02", "02-01-2006"}),
			DecimalComma:      getBoolEnv("IMPORT_DECIMAL_COMMA", true),
			DebitMarkers:      getListEnv("IMPORT_DEBIT_MARKERS", []string{"debit", "af"}),
		},
		Rules: RulesConfig{
			SeedDefaults: getBoolEnv("RULES_SEED_DEFAULTS", true),
		},
		Security: SecurityConfig{
			RateLimitPerSecond: getIntEnv("RATE_LIMIT_PER_SECOND", 20),
			RateLimitBurst:     getIntEnv("RATE_LIMIT_BURST", 40),
		},
	}

	config.Server.CORSAllowOrigins = getListEnv("CORS_ALLOW_ORIGINS", []string{"*"})

	return config
}

// DSN returns the postgres connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsTesting() bool {
	return c.Server.Environment == "testing"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	parts := strings.Split(value, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
