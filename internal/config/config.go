package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Supported values for STORE_DRIVER.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config holds the process configuration of the report API.
type Config struct {
	Port string

	StoreDriver         string
	MongoURI            string
	MongoDatabase       string
	MongoCollection     string
	MongoConnectTimeout time.Duration

	AllowedOrigin string

	LogLevel  string
	LogFormat string

	MQTTBroker         string
	MQTTTopic          string
	MQTTClientID       string
	MQTTPublishTimeout time.Duration
}

// Load reads a .env file from the working directory if one exists, then
// builds the configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv builds the configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:            getenv("PORT", "3001"),
		StoreDriver:     strings.ToLower(getenv("STORE_DRIVER", DriverMongo)),
		MongoURI:        strings.TrimSpace(os.Getenv("MONGO_URI")),
		MongoDatabase:   getenv("MONGO_DB", "reports"),
		MongoCollection: getenv("MONGO_COLLECTION", "reports"),
		AllowedOrigin:   getenv("CORS_ALLOWED_ORIGIN", "https://map-mevn.vercel.app"),
		LogLevel:        strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat:       strings.ToLower(getenv("LOG_FORMAT", "json")),
		MQTTBroker:      strings.TrimSpace(os.Getenv("MQTT_BROKER")),
		MQTTTopic:       getenv("MQTT_TOPIC", "reports/created"),
		MQTTClientID:    getenv("MQTT_CLIENT_ID", "report-api"),
	}

	var err error
	if cfg.MongoConnectTimeout, err = durationEnv("MONGO_CONNECT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.MQTTPublishTimeout, err = durationEnv("MQTT_PUBLISH_TIMEOUT", 2*time.Second); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// FeedEnabled reports whether new reports are published to MQTT.
func (c *Config) FeedEnabled() bool {
	return c.MQTTBroker != ""
}

func (c *Config) validate() error {
	if n, err := strconv.Atoi(c.Port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid PORT %q", c.Port)
	}
	switch c.StoreDriver {
	case DriverMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("MONGO_URI is required when STORE_DRIVER=%s", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("invalid STORE_DRIVER %q", c.StoreDriver)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("invalid LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}
