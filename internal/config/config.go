package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Almacenes
	SQLitePath     string
	PostgresDSN    string
	MongoURI       string
	MongoDatabase  string
	ClickHouseAddr string
	ClickHouseDB   string

	// Cache y eventos
	RedisAddr           string
	KafkaBrokers        []string
	UseKafka            bool
	LocalDeployment     bool // true = SQLite local, false = Postgres
	CacheTTL            time.Duration
	OutboxPeriod        time.Duration
	OutboxLimit         int

	// Paginación
	PageDefaultLimit int
	PageMaxLimit     int
	CursorThreshold  int

	HTTPPort string
}

func LoadConfig() *Config {
	getEnv := func(key, fallback string) string {
		if v := os.Getenv(key); v != "" {
			return v
		}
		return fallback
	}
	getEnvInt := func(key string, fallback int) int {
		if v := os.Getenv(key); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return fallback
	}
	getEnvBool := func(key string, fallback bool) bool {
		if v := os.Getenv(key); v != "" {
			return v == "true" || v == "1"
		}
		return fallback
	}

	kafkaBrokers := strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ",")

	return &Config{
		SQLitePath:     getEnv("SQLITE_PATH", "./posalpro.db"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		MongoURI:       getEnv("MONGO_URI", ""),
		MongoDatabase:  getEnv("MONGO_DB", "posalpro"),
		ClickHouseAddr: getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDB:   getEnv("CLICKHOUSE_DB", "posalpro_metrics"),

		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers:    kafkaBrokers,
		UseKafka:        getEnvBool("USE_KAFKA", false),
		LocalDeployment: getEnvBool("LOCAL_DEPLOYMENT", true),
		CacheTTL:        5 * time.Minute,
		OutboxPeriod:    1 * time.Second,
		OutboxLimit:     10,

		PageDefaultLimit: getEnvInt("PAGE_DEFAULT_LIMIT", 20),
		PageMaxLimit:     getEnvInt("PAGE_MAX_LIMIT", 100),
		CursorThreshold:  getEnvInt("PAGE_CURSOR_THRESHOLD", 50),

		HTTPPort: getEnv("HTTP_PORT", "8080"),
	}
}
