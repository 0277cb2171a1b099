package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr       string
	DatabaseURL    string
	OwnerOpenID    string
	JWTSecret      string
	JWTIssuer      string
	SessionCookie  string
	SessionTTL     time.Duration
	RedisAddr      string
	RedisPassword  string
	RabbitURL      string
	SensorQueue    string
	SensorExchange string
	SensorKey      string
	SensorPrefetch int
	GaugeInterval  time.Duration
}

// Load reads configuration from the environment. DATABASE_URL deliberately
// has no default: an empty value puts the store into degraded mode so local
// tooling can run without a database.
func Load() Config {
	return Config{
		HTTPAddr:       getenv("HTTP_ADDR", ":8080"),
		DatabaseURL:    getenv("DATABASE_URL", ""),
		OwnerOpenID:    getenv("OWNER_OPEN_ID", ""),
		JWTSecret:      getenv("JWT_SECRET", "dev-secret"),
		JWTIssuer:      getenv("JWT_ISSUER", "yitiflow-dashboard"),
		SessionCookie:  getenv("SESSION_COOKIE_NAME", "yitiflow_session"),
		SessionTTL:     getenvDuration("SESSION_TTL", 7*24*time.Hour),
		RedisAddr:      getenv("REDIS_ADDR", ""),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		RabbitURL:      getenv("RABBITMQ_URL", ""),
		SensorQueue:    getenv("RABBITMQ_SENSOR_QUEUE", "yitiflow.sensors.readings"),
		SensorExchange: getenv("RABBITMQ_SENSOR_EXCHANGE", "yitiflow.sensors"),
		SensorKey:      getenv("RABBITMQ_SENSOR_ROUTING_KEY", "sensor.reading"),
		SensorPrefetch: getenvInt("RABBITMQ_PREFETCH", 10),
		GaugeInterval:  getenvDuration("FLEET_GAUGE_INTERVAL", time.Minute),
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}
