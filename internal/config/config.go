package config

import (
	"os"
	"strconv"
)

type Config struct {
	HTTPAddr  string
	RedisAddr string

	// MySQLDSN enables the audit database; empty means audit entries are
	// logged and dropped.
	MySQLDSN string

	FirstShare   float64
	NextShare    float64
	PayoutUpsert bool

	AuditQueueSize int
	AuditWorkers   int

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	return &Config{
		HTTPAddr:       getEnv("HTTP_ADDR", ":8080"),
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		MySQLDSN:       getEnv("MYSQL_DSN", ""),
		FirstShare:     getEnvFloat("FIRST_SHARE", 1.00),
		NextShare:      getEnvFloat("NEXT_SHARE", 0.40),
		PayoutUpsert:   getEnvBool("PAYOUT_UPSERT", false),
		AuditQueueSize: getEnvInt("AUDIT_QUEUE_SIZE", 1024),
		AuditWorkers:   getEnvInt("AUDIT_WORKERS", 2),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
	}
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
