package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"PORT", "STORE_DRIVER", "MONGO_URI", "MONGO_DB", "MONGO_COLLECTION",
	"MONGO_CONNECT_TIMEOUT", "CORS_ALLOWED_ORIGIN", "LOG_LEVEL", "LOG_FORMAT",
	"MQTT_BROKER", "MQTT_TOPIC", "MQTT_CLIENT_ID", "MQTT_PUBLISH_TIMEOUT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("MONGO_URI", "mongodb://localhost:27017")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "3001", cfg.Port)
	assert.Equal(t, ":3001", cfg.Addr())
	assert.Equal(t, DriverMongo, cfg.StoreDriver)
	assert.Equal(t, "reports", cfg.MongoDatabase)
	assert.Equal(t, "reports", cfg.MongoCollection)
	assert.Equal(t, 10*time.Second, cfg.MongoConnectTimeout)
	assert.Equal(t, "https://map-mevn.vercel.app", cfg.AllowedOrigin)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.FeedEnabled())
	assert.Equal(t, "reports/created", cfg.MQTTTopic)
	assert.Equal(t, 2*time.Second, cfg.MQTTPublishTimeout)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("CORS_ALLOWED_ORIGIN", "http://localhost:5173")
	t.Setenv("MQTT_BROKER", "tcp://mosquitto:1883")
	t.Setenv("MQTT_PUBLISH_TIMEOUT", "500ms")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverMemory, cfg.StoreDriver)
	assert.Equal(t, "http://localhost:5173", cfg.AllowedOrigin)
	assert.True(t, cfg.FeedEnabled())
	assert.Equal(t, 500*time.Millisecond, cfg.MQTTPublishTimeout)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing mongo uri", map[string]string{}},
		{"bad port", map[string]string{"MONGO_URI": "mongodb://x", "PORT": "http"}},
		{"port out of range", map[string]string{"MONGO_URI": "mongodb://x", "PORT": "70000"}},
		{"unknown driver", map[string]string{"STORE_DRIVER": "redis"}},
		{"bad timeout", map[string]string{"MONGO_URI": "mongodb://x", "MONGO_CONNECT_TIMEOUT": "soon"}},
		{"negative timeout", map[string]string{"STORE_DRIVER": "memory", "MQTT_PUBLISH_TIMEOUT": "-1s"}},
		{"bad log format", map[string]string{"STORE_DRIVER": "memory", "LOG_FORMAT": "xml"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cfg, err := FromEnv()
			assert.Error(t, err)
			assert.Nil(t, cfg)
		})
	}
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("MONGO_URI")
	os.Unsetenv("PORT")

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, ".env"), []byte("MONGO_URI=mongodb://from-dotenv:27017\nPORT=4000\n"), 0o600)
	require.NoError(t, err)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mongodb://from-dotenv:27017", cfg.MongoURI)
	assert.Equal(t, "4000", cfg.Port)
}
