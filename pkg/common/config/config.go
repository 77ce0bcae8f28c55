package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Kafka
	KafkaBrokers []string
	KafkaGroupID string

	// Pipeline topics
	RawRecordTopic    string
	StandardizedTopic string
	MergedTopic       string
	PipelineDLQTopic  string

	// Reference data
	ConditionCatalogPath string
	RefLookupCacheTTL    time.Duration

	// Merge engine
	MergeBatchConcurrency int

	// Provenance query
	ProvenanceDefaultPageSize int
	ProvenanceMaxPageSize     int
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "saudelink"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "saudelink123"),
		PostgresDB:       getEnv("POSTGRES_DB", "saudelink"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getIntEnv("REDIS_DB", 0),

		KafkaBrokers: getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID: getEnv("KAFKA_GROUP_ID", "saudelink-platform"),

		RawRecordTopic:    getEnv("RAW_RECORD_TOPIC", "raw-records"),
		StandardizedTopic: getEnv("STANDARDIZED_TOPIC", "standardized-records"),
		MergedTopic:       getEnv("MERGED_TOPIC", "merged-patients"),
		PipelineDLQTopic:  getEnv("PIPELINE_DLQ_TOPIC", "pipeline-dlq"),

		ConditionCatalogPath: getEnv("CONDITION_CATALOG_PATH", ""),
		RefLookupCacheTTL:    getDuration("REF_LOOKUP_CACHE_TTL", 10*time.Minute),

		MergeBatchConcurrency: getIntEnv("MERGE_BATCH_CONCURRENCY", 8),

		ProvenanceDefaultPageSize: getIntEnv("PROVENANCE_DEFAULT_PAGE_SIZE", 50),
		ProvenanceMaxPageSize:     getIntEnv("PROVENANCE_MAX_PAGE_SIZE", 500),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
