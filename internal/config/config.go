package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Inventory source kinds accepted by INVENTORY_SOURCE.
const (
	InventorySourceDemo   = "demo"
	InventorySourceSQLite = "sqlite"
	InventorySourceCSV    = "csv"
)

type Config struct {
	Port        string
	Environment string
	// JWT Configuration
	JWTSecret       string
	TokenTTLMinutes int
	// Users allowed to log in, parsed from "name:password" pairs
	AuthUsers map[string]string
	// Inventory snapshot source
	InventorySource string
	SQLitePath      string
	InventoryCSV    string
	// Compliance sources
	ShortageCSV       string
	FDAAPIURL         string
	FDAAPIKey         string
	FDARecallLimit    int
	FDATimeoutSeconds int
	UseFDAAPI         bool
	// Redis Configuration (optional - for the last-scan cache)
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	CacheTTL      int  // Cache TTL in seconds
	UseCache      bool // Whether to use Redis or the in-memory cache
	// Kafka Configuration (optional)
	KafkaBrokers        []string
	KafkaTopicScans     string
	KafkaTopicInventory string
	KafkaGroupID        string
	KafkaAutoCommit     bool
	UseKafka            bool
	// Rate limiting for POST /auth/login
	LoginRatePerMinute int
}

func Load() *Config {
	// .env file is optional, continue with environment variables
	_ = godotenv.Load()

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		// JWT Configuration
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production-at-least-32-chars"),
		TokenTTLMinutes: getEnvAsInt("TOKEN_TTL_MINUTES", 60),
		AuthUsers:       parseUsers(getEnv("AUTH_USERS", "pharmacist:rxbridge123,technician:tech123")),
		// Inventory
		InventorySource: strings.ToLower(getEnv("INVENTORY_SOURCE", InventorySourceDemo)),
		SQLitePath:      getEnv("SQLITE_PATH", "./rxbridge.db"),
		InventoryCSV:    getEnv("INVENTORY_CSV", "./data/inventory.csv"),
		// Compliance
		ShortageCSV:       getEnv("SHORTAGE_CSV", "./data/drug_shortages.csv"),
		FDAAPIURL:         getEnv("FDA_API_URL", "https://api.fda.gov"),
		FDAAPIKey:         getEnv("FDA_API_KEY", ""),
		FDARecallLimit:    getEnvAsInt("FDA_RECALL_LIMIT", 200),
		FDATimeoutSeconds: getEnvAsInt("FDA_TIMEOUT_SECONDS", 30),
		UseFDAAPI:         getEnvAsBool("USE_FDA_API", true),
		// Redis Configuration (optional)
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		CacheTTL:      getEnvAsInt("CACHE_TTL", 3600),
		UseCache:      getEnvAsBool("USE_CACHE", false),
		// Kafka Configuration (optional)
		KafkaBrokers:        splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopicScans:     getEnv("KAFKA_TOPIC_SCANS", "rxbridge.scans"),
		KafkaTopicInventory: getEnv("KAFKA_TOPIC_INVENTORY", "rxbridge.inventory"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "rxbridge-service"),
		KafkaAutoCommit:     getEnvAsBool("KAFKA_AUTO_COMMIT", true),
		UseKafka:            getEnvAsBool("USE_KAFKA", false),
		LoginRatePerMinute:  getEnvAsInt("LOGIN_RATE_PER_MINUTE", 10),
	}
}

// IsProduction reports whether the service runs with production logging and gin release mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseUsers(value string) map[string]string {
	users := make(map[string]string)
	for _, pair := range splitList(value) {
		name, password, ok := strings.Cut(pair, ":")
		if !ok || name == "" || password == "" {
			continue
		}
		users[strings.TrimSpace(name)] = strings.TrimSpace(password)
	}
	return users
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return strings.ToLower(value) == "true" || value == "1"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return result
}
