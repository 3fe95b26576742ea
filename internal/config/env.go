package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Settings store backends.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Env is the daemon's environment-driven configuration.
type Env struct {
	ServerAddress  string
	DatabaseURL    string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string
	MQTTBroker     string
	APIBearerToken string
	PublicBaseURL  string
	LogLevel       string
	SettingsStore  string
	MosqueID       string
}

// LoadEnv reads the environment, optionally seeded from a .env file.
func LoadEnv() (Env, error) {
	_ = godotenv.Load() // ignore missing file

	env := Env{
		ServerAddress: ":8080",
		LogLevel:      "info",
		SettingsStore: StoreFile,
		MosqueID:      "default",
	}

	if v := getenv("SERVER_ADDRESS"); v != "" {
		env.ServerAddress = v
	}
	env.DatabaseURL = getenv("DATABASE_URL")
	env.RedisAddress = getenv("REDIS_ADDRESS")
	env.RedisUsername = getenv("REDIS_USERNAME")
	env.RedisPassword = getenv("REDIS_PASSWORD")
	env.MQTTBroker = getenv("MQTT_BROKER")
	env.APIBearerToken = getenv("API_BEARER_TOKEN")
	env.PublicBaseURL = strings.TrimSuffix(getenv("PUBLIC_BASE_URL"), "/")
	if v := getenv("LOG_LEVEL"); v != "" {
		env.LogLevel = strings.ToLower(v)
	}
	if v := getenv("MOSQUE_ID"); v != "" {
		env.MosqueID = v
	}

	if v := getenv("SETTINGS_STORE"); v != "" {
		env.SettingsStore = strings.ToLower(v)
	}
	switch env.SettingsStore {
	case StoreFile:
	case StorePostgres:
		if env.DatabaseURL == "" {
			return env, fmt.Errorf("SETTINGS_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if env.RedisAddress == "" {
			return env, fmt.Errorf("SETTINGS_STORE=redis requires REDIS_ADDRESS")
		}
	default:
		return env, fmt.Errorf("invalid SETTINGS_STORE: %s", env.SettingsStore)
	}

	return env, nil
}

func getenv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
