package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Port           string
	AllowedOrigins []string
	LogLevel       string

	// Event store
	DBDriver        string // mysql or postgres
	DBDSN           string
	StoreQueryShape string // twophase or exists
	DBMaxOpenConns  int

	// Report pipeline
	MinNumberLength     int
	CallbackWindow      time.Duration
	BatchChunkSize      int
	SLAThresholdSeconds int

	// Optional queue catalog
	QueuesFile string
	Queues     []QueueDef

	// Report delivery
	SMTPHost string
	SMTPPort int
	SMTPFrom string
	SMTPUser string
	SMTPPass string

	// Report-completed notifications
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string
}

// QueueDef names one PBX queue and how the UI should label it.
type QueueDef struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"displayName"`
}

type queueCatalog struct {
	Queues []QueueDef `yaml:"queues"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Port:            getEnv("PORT", "8080"),
		AllowedOrigins:  strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		DBDriver:        getEnv("DB_DRIVER", "mysql"),
		DBDSN:           getEnv("DB_DSN", ""),
		StoreQueryShape: getEnv("STORE_QUERY_SHAPE", "twophase"),
		QueuesFile:      getEnv("QUEUES_FILE", ""),
		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPFrom:        getEnv("SMTP_FROM", ""),
		SMTPUser:        getEnv("SMTP_USER", ""),
		SMTPPass:        getEnv("SMTP_PASS", ""),
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", "asterview"),
		MQTTTopic:       getEnv("MQTT_TOPIC", "asterview/reports"),
	}

	var err error
	if config.DBMaxOpenConns, err = getEnvInt("DB_MAX_OPEN_CONNS", 10); err != nil {
		return nil, err
	}
	if config.MinNumberLength, err = getEnvInt("MIN_NUMBER_LENGTH", 4); err != nil {
		return nil, err
	}
	if config.BatchChunkSize, err = getEnvInt("BATCH_CHUNK_SIZE", 1000); err != nil {
		return nil, err
	}
	if config.SLAThresholdSeconds, err = getEnvInt("SLA_THRESHOLD_SECONDS", 20); err != nil {
		return nil, err
	}
	if config.SMTPPort, err = getEnvInt("SMTP_PORT", 587); err != nil {
		return nil, err
	}

	windowHours, err := getEnvInt("CALLBACK_WINDOW_HOURS", 2)
	if err != nil {
		return nil, err
	}
	config.CallbackWindow = time.Duration(windowHours) * time.Hour

	if config.DBDriver != "mysql" && config.DBDriver != "postgres" {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: want mysql or postgres", config.DBDriver)
	}
	if config.StoreQueryShape != "twophase" && config.StoreQueryShape != "exists" {
		return nil, fmt.Errorf("invalid STORE_QUERY_SHAPE %q: want twophase or exists", config.StoreQueryShape)
	}

	if config.QueuesFile != "" {
		queues, err := loadQueueCatalog(config.QueuesFile)
		if err != nil {
			return nil, err
		}
		config.Queues = queues
	}

	// Trim spaces from allowed origins
	for i, origin := range config.AllowedOrigins {
		config.AllowedOrigins[i] = strings.TrimSpace(origin)
	}

	return config, nil
}

// loadQueueCatalog reads the optional YAML queue catalog.
func loadQueueCatalog(path string) ([]QueueDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read queue catalog: %w", err)
	}
	var catalog queueCatalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse queue catalog %s: %w", path, err)
	}
	return catalog.Queues, nil
}

// QueueNames returns the catalog queue names, or nil when no catalog is
// configured (meaning: no default queue scope).
func (c *Config) QueueNames() []string {
	if len(c.Queues) == 0 {
		return nil
	}
	names := make([]string, 0, len(c.Queues))
	for _, q := range c.Queues {
		names = append(names, q.Name)
	}
	return names
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with a fallback default
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
