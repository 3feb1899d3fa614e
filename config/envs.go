package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHost         = "127.0.0.1"
	defaultPort         = 1337
	defaultMapPath      = "map.txt"
	defaultTickPeriod   = 500 * time.Millisecond
	defaultMongoDB      = "cman"
	defaultRedisPrefix  = "cman"
	defaultHistoryLimit = 20
)

// Config holds the application's configuration values.
type Config struct {
	Host             string        // Host IP the UDP server binds to
	Port             int           // UDP port of the game server
	MapPath          string        // Path of the textual map file
	TickPeriod       time.Duration // Server tick period
	ClientTickPeriod time.Duration // Client tick period
	IdleTimeout      time.Duration // Seat eviction timeout while waiting for players (0 disables)
	HTTPAddr         string        // Address of the HTTP status surface (empty disables)
	GinMode          string        // Mode for the Gin framework (e.g., release, debug, test)
	LogFile          string        // Rotating log file (empty logs to stdout only)
	LogLevel         string        // Minimum log level (debug, info, warn, error)
	MongoURI         string        // MongoDB URI for match history (empty disables)
	MongoDB          string        // MongoDB database name
	RedisAddr        string        // Redis address for the scoreboard (empty disables)
	RedisPassword    string        // Redis password
	RedisPrefix      string        // Key prefix for scoreboard keys
	HistoryLimit     int           // Default number of matches returned by the history endpoint
}

// Load loads environment variables from a .env file when present and builds the configuration.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("[APP] [INFO] .env file not found or could not be loaded: %v", err)
	}

	tick := getEnvAsDurationWithDefault("CMAN_TICK", defaultTickPeriod)
	return Config{
		Host:             getEnvWithDefault("CMAN_HOST", defaultHost),
		Port:             getEnvAsIntWithDefault("CMAN_PORT", defaultPort),
		MapPath:          getEnvWithDefault("CMAN_MAP", defaultMapPath),
		TickPeriod:       tick,
		ClientTickPeriod: getEnvAsDurationWithDefault("CMAN_CLIENT_TICK", tick),
		IdleTimeout:      getEnvAsDurationWithDefault("CMAN_IDLE_TIMEOUT", 0),
		HTTPAddr:         getEnvWithDefault("CMAN_HTTP_ADDR", ""),
		GinMode:          getEnvWithDefault("GIN_MODE", "release"),
		LogFile:          getEnvWithDefault("CMAN_LOG_FILE", ""),
		LogLevel:         getEnvWithDefault("CMAN_LOG_LEVEL", "info"),
		MongoURI:         getEnvWithDefault("MONGO_URI", ""),
		MongoDB:          getEnvWithDefault("MONGO_DB", defaultMongoDB),
		RedisAddr:        getEnvWithDefault("REDIS_ADDR", ""),
		RedisPassword:    getEnvWithDefault("REDIS_PASS", ""),
		RedisPrefix:      getEnvWithDefault("REDIS_PREFIX", defaultRedisPrefix),
		HistoryLimit:     getEnvAsIntWithDefault("CMAN_HISTORY_LIMIT", defaultHistoryLimit),
	}
}

// getEnvWithDefault retrieves the value of an environment variable or returns a default value if not set.
func getEnvWithDefault(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsIntWithDefault retrieves an integer environment variable.
// A value that cannot be parsed is reported and replaced by the default.
func getEnvAsIntWithDefault(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("[APP] [WARN] Environment variable %s must be an integer: %v", key, err)
		return defaultValue
	}
	return value
}

// getEnvAsDurationWithDefault retrieves a duration environment variable such as "500ms" or "2s".
func getEnvAsDurationWithDefault(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil || value < 0 {
		log.Printf("[APP] [WARN] Environment variable %s must be a non-negative duration: %v", key, err)
		return defaultValue
	}
	return value
}
